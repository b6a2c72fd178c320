package events

import (
	"encoding/json"
	"testing"
	"time"
)

func TestNewBaseEvent(t *testing.T) {
	aggregateID := "alloc-123"

	before := time.Now().UTC()
	event := NewBaseEvent("blanket.allocation.completed", aggregateID, "BlanketAllocation")
	after := time.Now().UTC()

	if event.EventID() == "" {
		t.Error("expected non-empty event ID")
	}

	if event.EventType() != "blanket.allocation.completed" {
		t.Errorf("expected event type %q, got %q", "blanket.allocation.completed", event.EventType())
	}

	if event.AggregateID() != aggregateID {
		t.Errorf("expected aggregate ID %v, got %v", aggregateID, event.AggregateID())
	}

	if event.AggregateType() != "BlanketAllocation" {
		t.Errorf("expected aggregate type %q, got %q", "BlanketAllocation", event.AggregateType())
	}

	if event.OccurredAt().Before(before) || event.OccurredAt().After(after) {
		t.Errorf("expected occurredAt between %v and %v, got %v", before, after, event.OccurredAt())
	}
}

func TestBaseEventImplementsDomainEvent(t *testing.T) {
	var _ DomainEvent = BaseEvent{}
}

func TestNewBaseEventUniqueIDs(t *testing.T) {
	a := NewBaseEvent("E", "agg", "Aggregate")
	b := NewBaseEvent("E", "agg", "Aggregate")
	if a.EventID() == b.EventID() {
		t.Errorf("expected distinct event IDs, both were %q", a.EventID())
	}
}

type embeddingEvent struct {
	BaseEvent
	Feasible bool `json:"feasible"`
}

func TestNewOutboxEntry(t *testing.T) {
	aggregateID := "alloc-789"
	event := embeddingEvent{
		BaseEvent: NewBaseEvent("blanket.allocation.infeasible", aggregateID, "BlanketAllocation"),
		Feasible:  false,
	}

	entry, err := NewOutboxEntry(event)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if entry.ID != event.EventID() {
		t.Errorf("expected outbox ID %v, got %v", event.EventID(), entry.ID)
	}
	if entry.AggregateID != aggregateID {
		t.Errorf("expected aggregate ID %v, got %v", aggregateID, entry.AggregateID)
	}
	if entry.EventType != "blanket.allocation.infeasible" {
		t.Errorf("expected event type %q, got %q", "blanket.allocation.infeasible", entry.EventType)
	}

	var parsed map[string]interface{}
	if err := json.Unmarshal(entry.Payload, &parsed); err != nil {
		t.Fatalf("expected valid JSON payload, got error: %v", err)
	}
	if parsed["event_id"] != event.EventID() {
		t.Errorf("expected payload to carry the envelope, got %v", parsed)
	}
	if parsed["feasible"] != false {
		t.Errorf("expected payload to carry event fields, got %v", parsed)
	}

	if !entry.CreatedAt.Equal(event.OccurredAt()) {
		t.Errorf("expected created at %v, got %v", event.OccurredAt(), entry.CreatedAt)
	}
	if entry.PublishedAt != nil {
		t.Error("expected published at to be nil")
	}
}

func TestEventCollectorRecord(t *testing.T) {
	collector := &EventCollector{}

	collector.Record(NewBaseEvent("Event1", "agg", "Aggregate"))
	collector.Record(NewBaseEvent("Event2", "agg", "Aggregate"))

	events := collector.Events()
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	if events[0].EventType() != "Event1" {
		t.Errorf("expected first event type %q, got %q", "Event1", events[0].EventType())
	}
	if events[1].EventType() != "Event2" {
		t.Errorf("expected second event type %q, got %q", "Event2", events[1].EventType())
	}
}

func TestEventCollectorClearEvents(t *testing.T) {
	collector := &EventCollector{}
	collector.Record(NewBaseEvent("Event1", "agg", "Aggregate"))
	collector.Record(NewBaseEvent("Event2", "agg", "Aggregate"))

	cleared := collector.ClearEvents()

	if len(cleared) != 2 {
		t.Fatalf("expected ClearEvents to return 2 events, got %d", len(cleared))
	}
	if len(collector.Events()) != 0 {
		t.Errorf("expected internal slice to be empty after ClearEvents, got %d events", len(collector.Events()))
	}
	if again := collector.ClearEvents(); again != nil {
		t.Errorf("expected nil from ClearEvents on empty collector, got %v", again)
	}
}

func TestEventCollectorEventsIsACopy(t *testing.T) {
	collector := &EventCollector{}
	if collector.Events() != nil {
		t.Error("expected nil events from an empty collector")
	}
	collector.Record(NewBaseEvent("Event1", "agg", "Aggregate"))

	events := collector.Events()
	events[0] = NewBaseEvent("Replaced", "agg", "Aggregate")

	if got := collector.Events()[0].EventType(); got != "Event1" {
		t.Errorf("expected queued event to be unchanged, got %q", got)
	}
	if collector.Pending() != 1 {
		t.Errorf("expected 1 pending event, got %d", collector.Pending())
	}
}
