package server

import (
	"strings"
	"testing"

	"github.com/Technochips/chipscraft/internal/chat"
	"github.com/Technochips/chipscraft/internal/protocol"
)

func wrapForTest(msg string) []string { return chat.Wrap(msg, 'f') }

func TestBroadcastSystemMessageUsesSentinelID(t *testing.T) {
	s := newTestServer(t)
	q := spawnTestClient(t, s, 0, "Alice", ModeNormal)
	<-q.recv() // drain the "Alice joined" system message
	<-q.recv() // drain Alice's own Spawn (self id -1)

	s.BroadcastSystemMessage(-1, "server says hi")

	p := <-q.recv()
	m, ok := p.(protocol.Message)
	if !ok || !strings.Contains(m.Message, "server says hi") {
		t.Fatalf("expected a system Message containing the text, got %#v", p)
	}
	if m.ID != -1 {
		t.Fatalf("system message ID = %d, want -1", m.ID)
	}
}

func TestSendMessageWrapsLongLines(t *testing.T) {
	s := newTestServer(t)
	q := spawnTestClient(t, s, 0, "Alice", ModeNormal)
	<-q.recv() // drain the "Alice joined" system message
	<-q.recv() // drain Alice's own Spawn (self id -1)

	long := strings.Repeat("a", 200)
	s.SendMessage(0, 0, long)

	wantLines := len(wrapForTest(long))
	for i := 0; i < wantLines; i++ {
		m, ok := (<-q.recv()).(protocol.Message)
		if !ok {
			t.Fatalf("expected a Message packet")
		}
		if len(m.Message) > 64 {
			t.Fatalf("wrapped line length %d exceeds 64", len(m.Message))
		}
	}
	if wantLines < 2 {
		t.Fatalf("test setup error: expected message to need multiple lines")
	}
}
