package realtime

type SSEEvent string

const (
	SSEEventUserNameChanged   SSEEvent = "UserNameChanged"
	SSEEventUserAvatarUpdated SSEEvent = "UserAvatarChanged"
	SSEEventUserRoleChanged   SSEEvent = "UserRoleChanged"

	SSEEventChatMessageCreated SSEEvent = "ChatMessageCreated"
	SSEEventChatMessageUpdated SSEEvent = "ChatMessageUpdated"
	SSEEventChatMessageDeleted SSEEvent = "ChatMessageDeleted"
	SSEEventChatMessagesRead   SSEEvent = "ChatMessagesRead"

	SSEEventTaskAssigned    SSEEvent = "TaskAssigned"
	SSEEventAbsenceReviewed SSEEvent = "AbsenceReviewed"
	SSEEventSkillReviewed   SSEEvent = "SkillReviewed"
	SSEEventBadgeAwarded    SSEEvent = "BadgeAwarded"
	SSEEventReportFinalized SSEEvent = "ReportFinalized"
)

// StaffChannel receives events every coach and admin should see.
const StaffChannel = "staff"

type SSEMessage struct {
	Channel string   `json:"channel"`
	Event   SSEEvent `json:"event"`
	Data    any      `json:"data,omitempty"`
}
