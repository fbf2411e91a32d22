package sse

import (
	"testing"

	"github.com/yungbote/cardfolio-backend/internal/pkg/logger"
)

func newTestHub(t *testing.T) *SSEHub {
	t.Helper()
	log, err := logger.New("test")
	if err != nil {
		t.Fatalf("init test logger: %v", err)
	}
	return NewSSEHub(log)
}

func TestBroadcastReachesSubscribers(t *testing.T) {
	hub := newTestHub(t)
	client := hub.NewSSEClient()
	hub.AddChannel(client, ChannelDirectory)

	hub.Broadcast(SSEMessage{Channel: ChannelDirectory, Event: SSEEventPersonCreated})

	select {
	case msg := <-client.Outbound:
		if msg.Event != SSEEventPersonCreated {
			t.Fatalf("event: want=%s got=%s", SSEEventPersonCreated, msg.Event)
		}
	default:
		t.Fatalf("no message delivered")
	}
}

func TestBroadcastSkipsOtherChannels(t *testing.T) {
	hub := newTestHub(t)
	client := hub.NewSSEClient()
	hub.AddChannel(client, "other")

	hub.Broadcast(SSEMessage{Channel: ChannelDirectory, Event: SSEEventPersonCreated})

	select {
	case msg := <-client.Outbound:
		t.Fatalf("unexpected delivery: %+v", msg)
	default:
	}
}

func TestBroadcastDropsWhenBufferFull(t *testing.T) {
	hub := newTestHub(t)
	client := hub.NewSSEClient()
	hub.AddChannel(client, ChannelDirectory)

	// Overfill the outbound buffer; extra messages are dropped, never blocked on.
	for i := 0; i < cap(client.Outbound)+5; i++ {
		hub.Broadcast(SSEMessage{Channel: ChannelDirectory, Event: SSEEventPersonUpdated})
	}
	if got := len(client.Outbound); got != cap(client.Outbound) {
		t.Fatalf("buffer: want=%d got=%d", cap(client.Outbound), got)
	}
}

func TestRemoveClientClosesDone(t *testing.T) {
	hub := newTestHub(t)
	client := hub.NewSSEClient()
	hub.AddChannel(client, ChannelDirectory)

	hub.RemoveClient(client)

	select {
	case <-client.Done():
	default:
		t.Fatalf("done channel not closed")
	}

	hub.Broadcast(SSEMessage{Channel: ChannelDirectory, Event: SSEEventPersonCreated})
	select {
	case msg := <-client.Outbound:
		t.Fatalf("removed client still receives: %+v", msg)
	default:
	}

	// Removing twice must not panic.
	hub.RemoveClient(client)
}
