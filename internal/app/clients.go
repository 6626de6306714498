package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/yungbote/quidz-backend/internal/pkg/logger"
	"github.com/yungbote/quidz-backend/internal/platform/gcp"
	"github.com/yungbote/quidz-backend/internal/platform/openai"
	"github.com/yungbote/quidz-backend/internal/realtime/bus"
)

// Clients holds the optional integrations. A nil field means the feature is
// unconfigured and its endpoints answer 503.
type Clients struct {
	SSEBus       bus.Bus
	Bucket       gcp.BucketService
	OpenaiClient openai.Client
}

func wireClients(ctx context.Context, log *logger.Logger, cfg Config) (Clients, error) {
	log.Info("Wiring clients...")
	var out Clients

	// Redis
	if strings.TrimSpace(cfg.Redis.Addr) != "" {
		b, err := bus.NewRedisBus(log, cfg.Redis)
		if err != nil {
			return Clients{}, fmt.Errorf("init redis SSE bus: %w", err)
		}
		out.SSEBus = b
	} else {
		log.Info("REDIS_ADDR not set; realtime events stay on this instance")
	}

	// Gcs
	bucket, err := resolveBucketService(ctx, log, cfg)
	if err != nil {
		out.Close()
		return Clients{}, fmt.Errorf("init bucket client: %w", err)
	}
	out.Bucket = bucket

	// Openai
	if strings.TrimSpace(cfg.OpenAI.APIKey) != "" {
		c, err := openai.NewClient(log, cfg.OpenAI)
		if err != nil {
			out.Close()
			return Clients{}, fmt.Errorf("init openai client: %w", err)
		}
		out.OpenaiClient = c
	} else {
		log.Warn("OPENAI_API_KEY not set; assistant disabled")
	}

	return out, nil
}

func (c *Clients) Close() {
	if c == nil {
		return
	}
	if c.SSEBus != nil {
		_ = c.SSEBus.Close()
	}
	if c.Bucket != nil {
		_ = c.Bucket.Close()
	}
}
