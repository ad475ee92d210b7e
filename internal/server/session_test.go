package server

import (
	"crypto/md5"
	"encoding/hex"
	"net"
	"testing"
	"time"

	"github.com/Technochips/chipscraft/internal/logging"
	"github.com/Technochips/chipscraft/internal/protocol"
)

func TestHandshakeRejectsWrongProtocolVersion(t *testing.T) {
	s := newTestServer(t)
	client, serverConn := net.Pipe()
	defer client.Close()

	done := make(chan struct{})
	go func() {
		Serve(s, serverConn, logging.New(logging.Config{}))
		close(done)
	}()

	client.SetWriteDeadline(time.Now().Add(time.Second))
	if err := protocol.Encode(client, protocol.Identification{Protocol: 6, Name: "a", Data: "", UserMode: 0}); err != nil {
		t.Fatalf("write identification: %v", err)
	}

	client.SetReadDeadline(time.Now().Add(time.Second))
	buf := make([]byte, 1)
	if _, err := client.Read(buf); err == nil {
		t.Fatalf("expected the connection to close with no further bytes on a protocol mismatch")
	}
	<-done
}

func TestHandshakeAcceptsAndStreamsLevel(t *testing.T) {
	s := newTestServer(t)
	client, serverConn := net.Pipe()
	defer client.Close()

	go Serve(s, serverConn, logging.New(logging.Config{}))

	client.SetWriteDeadline(time.Now().Add(time.Second))
	if err := protocol.Encode(client, protocol.Identification{Protocol: 7, Name: "Steve", Data: "", UserMode: 0}); err != nil {
		t.Fatalf("write identification: %v", err)
	}

	client.SetReadDeadline(time.Now().Add(time.Second))
	reply, err := protocol.Decode(client)
	if err != nil {
		t.Fatalf("decode reply: %v", err)
	}
	if _, ok := reply.(protocol.Identification); !ok {
		t.Fatalf("first reply = %T, want Identification", reply)
	}

	next, err := protocol.Decode(client)
	if err != nil {
		t.Fatalf("decode level start: %v", err)
	}
	if _, ok := next.(protocol.LevelStart); !ok {
		t.Fatalf("second reply = %T, want LevelStart", next)
	}
}

func TestHandshakeRejectsBadVerificationKey(t *testing.T) {
	s := newTestServer(t)
	s.Config.VerifyPlayers = true
	client, serverConn := net.Pipe()
	defer client.Close()

	go Serve(s, serverConn, logging.New(logging.Config{}))

	client.SetWriteDeadline(time.Now().Add(time.Second))
	if err := protocol.Encode(client, protocol.Identification{Protocol: 7, Name: "Steve", Data: "wrong-key", UserMode: 0}); err != nil {
		t.Fatalf("write identification: %v", err)
	}

	client.SetReadDeadline(time.Now().Add(time.Second))
	reply, err := protocol.Decode(client)
	if err != nil {
		t.Fatalf("decode reply: %v", err)
	}
	d, ok := reply.(protocol.Disconnect)
	if !ok {
		t.Fatalf("reply = %T, want Disconnect", reply)
	}
	if d.Reason == "" {
		t.Fatalf("expected a non-empty disconnect reason")
	}
}

func TestHandshakeAcceptsCorrectVerificationKey(t *testing.T) {
	s := newTestServer(t)
	s.Config.VerifyPlayers = true
	client, serverConn := net.Pipe()
	defer client.Close()

	go Serve(s, serverConn, logging.New(logging.Config{}))

	sum := md5.Sum([]byte(s.Salt() + "Steve"))
	key := hex.EncodeToString(sum[:])

	client.SetWriteDeadline(time.Now().Add(time.Second))
	if err := protocol.Encode(client, protocol.Identification{Protocol: 7, Name: "Steve", Data: key, UserMode: 0}); err != nil {
		t.Fatalf("write identification: %v", err)
	}

	client.SetReadDeadline(time.Now().Add(time.Second))
	reply, err := protocol.Decode(client)
	if err != nil {
		t.Fatalf("decode reply: %v", err)
	}
	if _, ok := reply.(protocol.Disconnect); ok {
		t.Fatalf("a correct verification key should not be rejected")
	}
}
