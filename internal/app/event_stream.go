package app

import (
	"sync"

	"leadboard/internal/types"
)

// EventStream carries push events from the channel reader goroutine to the
// UI loop. Events are queued in receipt order and drained on each tick.
// Transport notices travel on a separate best-effort queue so a full notice
// queue never holds back state updates.
type EventStream struct {
	events           chan types.PushEvent
	notices          chan types.PushEvent
	done             chan struct{}
	closeOnce        sync.Once
	maxEventsPerTick int
}

func NewEventStream(buffer, maxEventsPerTick int) *EventStream {
	if buffer <= 0 {
		buffer = 1
	}
	if maxEventsPerTick <= 0 {
		maxEventsPerTick = buffer
	}
	return &EventStream{
		events:           make(chan types.PushEvent, buffer),
		notices:          make(chan types.PushEvent, 16),
		done:             make(chan struct{}),
		maxEventsPerTick: maxEventsPerTick,
	}
}

// Handle queues event. It blocks while the queue is full and returns without
// queueing once the stream is closed.
func (s *EventStream) Handle(event types.PushEvent) {
	select {
	case s.events <- event:
	case <-s.done:
	}
}

// Notify queues a transport notice and drops it if the queue is full.
func (s *EventStream) Notify(event types.PushEvent) {
	select {
	case s.notices <- event:
	default:
	}
}

func (s *EventStream) Close() {
	s.closeOnce.Do(func() { close(s.done) })
}

// ConsumeTick returns up to maxEventsPerTick queued events in order.
func (s *EventStream) ConsumeTick() []types.PushEvent {
	var out []types.PushEvent
	for i := 0; i < s.maxEventsPerTick; i++ {
		select {
		case event := <-s.events:
			out = append(out, event)
		default:
			return out
		}
	}
	return out
}

func (s *EventStream) ConsumeNotices() []types.PushEvent {
	var out []types.PushEvent
	for {
		select {
		case event := <-s.notices:
			out = append(out, event)
		default:
			return out
		}
	}
}
