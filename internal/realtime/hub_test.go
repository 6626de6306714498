package realtime

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/quidz-backend/internal/pkg/logger"
)

func recvMessage(t *testing.T, ch <-chan SSEMessage, timeout time.Duration) SSEMessage {
	t.Helper()
	select {
	case msg := <-ch:
		return msg
	case <-time.After(timeout):
		t.Fatalf("timed out waiting for SSE message")
	}
	return SSEMessage{}
}

func TestSSEHubDeliversInChannelOrder(t *testing.T) {
	hub := NewSSEHub(logger.Nop())
	channel := uuid.New().String()

	client := hub.NewSSEClient(uuid.New())
	hub.AddChannel(client, channel)

	hub.Broadcast(SSEMessage{Channel: channel, Event: SSEEventChatMessageCreated, Data: map[string]any{"seq": 1}})
	hub.Broadcast(SSEMessage{Channel: channel, Event: SSEEventChatMessageUpdated, Data: map[string]any{"seq": 2}})
	hub.Broadcast(SSEMessage{Channel: channel, Event: SSEEventChatMessageDeleted, Data: map[string]any{"seq": 3}})

	want := []SSEEvent{SSEEventChatMessageCreated, SSEEventChatMessageUpdated, SSEEventChatMessageDeleted}
	for i, ev := range want {
		got := recvMessage(t, client.Outbound, time.Second)
		if got.Event != ev {
			t.Fatalf("event %d: want=%s got=%s", i, ev, got.Event)
		}
	}
}

func TestSSEHubIgnoresOtherChannels(t *testing.T) {
	hub := NewSSEHub(logger.Nop())
	client := hub.NewSSEClient(uuid.New())
	hub.AddChannel(client, "a")

	hub.Broadcast(SSEMessage{Channel: "b", Event: SSEEventTaskAssigned})
	select {
	case msg := <-client.Outbound:
		t.Fatalf("unexpected message on unsubscribed channel: %+v", msg)
	case <-time.After(50 * time.Millisecond):
	}

	hub.RemoveChannel(client, "a")
	if n := hub.SubscriberCount("a"); n != 0 {
		t.Fatalf("subscribers after unsubscribe: want=0 got=%d", n)
	}
}

func TestSSEHubCloseClientIsIdempotent(t *testing.T) {
	hub := NewSSEHub(logger.Nop())
	channel := "staff"
	client := hub.NewSSEClient(uuid.New())
	hub.AddChannel(client, channel)

	hub.CloseClient(client)
	hub.CloseClient(client)

	if _, ok := <-client.Outbound; ok {
		t.Fatalf("outbound should be closed after CloseClient")
	}
	if n := hub.SubscriberCount(channel); n != 0 {
		t.Fatalf("subscribers after close: want=0 got=%d", n)
	}
	// Broadcasting to a closed client's former channel must not panic.
	hub.Broadcast(SSEMessage{Channel: channel, Event: SSEEventBadgeAwarded})
}

func TestSSEHubRefusesSubscribeAfterClose(t *testing.T) {
	hub := NewSSEHub(logger.Nop())
	client := hub.NewSSEClient(uuid.New())
	if !hub.AddChannel(client, "a") {
		t.Fatalf("open client should subscribe")
	}

	hub.CloseClient(client)
	if hub.AddChannel(client, StaffChannel) {
		t.Fatalf("closed client must not subscribe")
	}
	if n := hub.SubscriberCount(StaffChannel); n != 0 {
		t.Fatalf("subscribers after close: want=0 got=%d", n)
	}

	defer func() {
		if r := recover(); r != nil {
			t.Fatalf("broadcast to a closed client panicked: %v", r)
		}
	}()
	hub.Broadcast(SSEMessage{Channel: StaffChannel, Event: SSEEventTaskAssigned})
	hub.Broadcast(SSEMessage{Channel: "a", Event: SSEEventTaskAssigned})
}
