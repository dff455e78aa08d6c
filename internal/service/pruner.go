package service

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"errors"
	"log/slog"
	"time"

	"github.com/studyzone/studyzone-api/internal/observability/statsd"
)

// chatPruneStore is the slice of the chat repository the pruner needs.
type chatPruneStore interface {
	PruneOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// ChatPrunerOptions groups dependencies for ChatPruner.
type ChatPrunerOptions struct {
	Messages  chatPruneStore
	Interval  time.Duration // defaults to 1h
	Retention time.Duration // defaults to 90 days
	Metrics   statsd.Sink   // optional
	Logger    *slog.Logger
}

// ChatPruner deletes chat messages older than the retention window on a
// fixed interval. Run as a background service next to the HTTP server.
type ChatPruner struct {
	messages  chatPruneStore
	interval  time.Duration
	retention time.Duration
	metrics   statsd.Sink
	log       *slog.Logger
}

// NewChatPruner constructs a new ChatPruner.
func NewChatPruner(opts ChatPrunerOptions) (*ChatPruner, error) {
	if opts.Messages == nil {
		return nil, errors.New("chat store is required")
	}

	interval := opts.Interval
	if interval <= 0 {
		interval = time.Hour
	}
	retention := opts.Retention
	if retention <= 0 {
		retention = 90 * 24 * time.Hour
	}
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}

	return &ChatPruner{
		messages:  opts.Messages,
		interval:  interval,
		retention: retention,
		metrics:   opts.Metrics,
		log:       log.With("component", "chat_pruner"),
	}, nil
}

// Run prunes on the configured interval until the context is cancelled.
// Returns nil on graceful shutdown.
func (p *ChatPruner) Run(ctx context.Context) error {
	p.log.InfoContext(ctx, "starting chat pruner",
		"interval", p.interval, "retention", p.retention)

	// Jitter the first run so multiple instances do not prune in lockstep.
	p.waitWithJitter(ctx)
	if ctx.Err() != nil {
		return nil
	}

	if err := p.PruneOnce(ctx); err != nil {
		p.log.ErrorContext(ctx, "chat prune failed", "error", err)
	}

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.log.InfoContext(ctx, "chat pruner stopping")
			return nil
		case <-ticker.C:
			if err := p.PruneOnce(ctx); err != nil {
				p.log.ErrorContext(ctx, "chat prune failed", "error", err)
			}
		}
	}
}

// PruneOnce deletes everything older than the retention window.
func (p *ChatPruner) PruneOnce(ctx context.Context) error {
	cutoff := time.Now().Add(-p.retention)
	pruned, err := p.messages.PruneOlderThan(ctx, cutoff)
	if err != nil {
		return err
	}

	if pruned > 0 {
		p.log.InfoContext(ctx, "pruned chat messages", "count", pruned, "cutoff", cutoff)
	}
	if p.metrics != nil {
		p.metrics.Count("chat.pruned", pruned, nil)
	}
	return nil
}

// waitWithJitter sleeps up to 10% of the interval.
func (p *ChatPruner) waitWithJitter(ctx context.Context) {
	maxJitter := int64(p.interval / 10)
	if maxJitter <= 0 {
		return
	}

	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return
	}
	jitter := time.Duration(int64(binary.BigEndian.Uint64(buf[:]) % uint64(maxJitter)))

	select {
	case <-time.After(jitter):
	case <-ctx.Done():
	}
}
