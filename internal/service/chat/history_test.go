package chat

import (
	"context"
	"testing"

	"modelhub/internal/provider"
)

func TestMemoryHistory_MultiTurn(t *testing.T) {
	registry, _, _ := newTestRegistry()
	transport := &fakeTransport{chunks: []string{"answer"}}
	history := NewMemoryHistory()
	o, _ := NewOrchestrator(Options{Providers: registry, Store: &MemorySelectionStore{}, Transport: transport, History: history})

	noop := func(Event) error { return nil }
	o.Send(context.Background(), SendRequest{Message: "first", ConversationID: "cli"}, noop)
	o.Send(context.Background(), SendRequest{Message: "second", ConversationID: "cli"}, noop)

	want := []provider.Message{
		{Role: "user", Content: "first"},
		{Role: "assistant", Content: "answer"},
		{Role: "user", Content: "second"},
	}
	got := transport.last.Messages
	if len(got) != len(want) {
		t.Fatalf("Second call sent %d messages, want %d: %+v", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Message %d = %+v, want %+v", i, got[i], want[i])
		}
	}

	stored, _ := history.Messages("cli")
	if len(stored) != 4 {
		t.Errorf("Stored %d messages, want 4", len(stored))
	}
	if other, _ := history.Messages("other"); len(other) != 0 {
		t.Error("Conversations should be isolated")
	}
}
