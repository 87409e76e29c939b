package app

import (
	"testing"
	"time"

	"leadboard/internal/types"
)

func TestEventStreamDrainsInOrderWithTickLimit(t *testing.T) {
	stream := NewEventStream(8, 2)
	for _, name := range []string{types.EventLogsUpdate, types.EventCompaniesUpdate, types.EventTokenUpdate} {
		stream.Handle(types.PushEvent{Name: name})
	}
	first := stream.ConsumeTick()
	if len(first) != 2 || first[0].Name != types.EventLogsUpdate || first[1].Name != types.EventCompaniesUpdate {
		t.Fatalf("unexpected first drain %+v", first)
	}
	second := stream.ConsumeTick()
	if len(second) != 1 || second[0].Name != types.EventTokenUpdate {
		t.Fatalf("unexpected second drain %+v", second)
	}
	if len(stream.ConsumeTick()) != 0 {
		t.Fatalf("expected empty drain")
	}
}

func TestEventStreamNoticesNeverBlock(t *testing.T) {
	stream := NewEventStream(1, 1)
	done := make(chan struct{})
	go func() {
		for i := 0; i < 100; i++ {
			stream.Notify(types.PushEvent{Name: types.EventDisconnect})
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("notify blocked")
	}
	if got := len(stream.ConsumeNotices()); got == 0 || got > 16 {
		t.Fatalf("unexpected notice count %d", got)
	}
}

func TestEventStreamCloseReleasesBlockedHandler(t *testing.T) {
	stream := NewEventStream(1, 1)
	stream.Handle(types.PushEvent{Name: types.EventLogsUpdate})
	released := make(chan struct{})
	go func() {
		stream.Handle(types.PushEvent{Name: types.EventLogsUpdate})
		close(released)
	}()
	stream.Close()
	select {
	case <-released:
	case <-time.After(time.Second):
		t.Fatalf("handler still blocked after close")
	}
}
