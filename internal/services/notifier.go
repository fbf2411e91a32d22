package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/yungbote/cardfolio-backend/internal/pkg/logger"
	"github.com/yungbote/cardfolio-backend/internal/realtime/bus"
	"github.com/yungbote/cardfolio-backend/internal/sse"
	"github.com/yungbote/cardfolio-backend/internal/types"
)

// busNotifier publishes directory and enrichment events onto the realtime
// bus, which forwards them to the SSE hub on every instance.
type busNotifier struct {
	log *logger.Logger
	bus bus.Bus
}

func NewBusNotifier(log *logger.Logger, b bus.Bus) *busNotifier {
	return &busNotifier{log: log.With("service", "BusNotifier"), bus: b}
}

var _ DirectoryNotifier = (*busNotifier)(nil)
var _ EnrichmentProgressNotifier = (*busNotifier)(nil)

func (n *busNotifier) RecordCreated(kind types.RecordKind, id uuid.UUID) {
	n.publish(recordEvent(kind, sse.SSEEventOrganizationCreated, sse.SSEEventPersonCreated), id)
}

func (n *busNotifier) RecordUpdated(kind types.RecordKind, id uuid.UUID) {
	n.publish(recordEvent(kind, sse.SSEEventOrganizationUpdated, sse.SSEEventPersonUpdated), id)
}

func (n *busNotifier) RecordDeleted(kind types.RecordKind, id uuid.UUID) {
	n.publish(recordEvent(kind, sse.SSEEventOrganizationDeleted, sse.SSEEventPersonDeleted), id)
}

func (n *busNotifier) EnrichmentStage(status EnrichmentStatus) {
	n.send(sse.SSEMessage{
		Channel: sse.ChannelDirectory,
		Event:   sse.SSEEventEnrichmentStage,
		Data: map[string]any{
			"status":   status,
			"progress": status.Progress(),
		},
	})
}

func (n *busNotifier) EnrichmentDone(status EnrichmentStatus) {
	n.send(sse.SSEMessage{
		Channel: sse.ChannelDirectory,
		Event:   sse.SSEEventEnrichmentDone,
		Data: map[string]any{
			"status":  status,
			"outcome": status.Outcome,
		},
	})
}

func recordEvent(kind types.RecordKind, orgEvent, personEvent sse.SSEEvent) sse.SSEEvent {
	if kind == types.RecordKindOrganization {
		return orgEvent
	}
	return personEvent
}

func (n *busNotifier) publish(event sse.SSEEvent, id uuid.UUID) {
	n.send(sse.SSEMessage{
		Channel: sse.ChannelDirectory,
		Event:   event,
		Data:    map[string]any{"id": id},
	})
}

func (n *busNotifier) send(msg sse.SSEMessage) {
	if n.bus == nil {
		return
	}
	if err := n.bus.Publish(context.Background(), msg); err != nil {
		n.log.Warn("Failed to publish realtime event", "event", msg.Event, "error", err)
	}
}
