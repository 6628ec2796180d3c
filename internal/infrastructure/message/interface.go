// Package message defines the run-event publishing contract.
package message

import (
	"context"

	"github.com/openpbrl/openpbrl/pkg/types"
)

// EventPublisher emits run lifecycle events to downstream consumers.
// Publish is best-effort from the caller's perspective: implementations
// return an error but the relabeling run itself does not depend on delivery.
type EventPublisher interface {
	PublishRunEvent(ctx context.Context, event *types.RunEvent) error
	Close() error
}

// NopPublisher discards every event, used when messaging is disabled.
type NopPublisher struct{}

// PublishRunEvent drops the event
func (NopPublisher) PublishRunEvent(context.Context, *types.RunEvent) error { return nil }

// Close is a no-op
func (NopPublisher) Close() error { return nil }
