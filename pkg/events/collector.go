package events

// EventCollector buffers the events an aggregate raises until they are
// persisted or published. Embed it by value.
type EventCollector struct {
	pending []DomainEvent
}

// Record queues an event.
func (c *EventCollector) Record(event DomainEvent) {
	c.pending = append(c.pending, event)
}

// Events returns a copy of the queued events.
func (c *EventCollector) Events() []DomainEvent {
	if len(c.pending) == 0 {
		return nil
	}
	return append([]DomainEvent(nil), c.pending...)
}

// Pending reports how many events are queued.
func (c *EventCollector) Pending() int {
	return len(c.pending)
}

// ClearEvents drains the queue and returns what it held.
func (c *EventCollector) ClearEvents() []DomainEvent {
	drained := c.pending
	c.pending = nil
	return drained
}
