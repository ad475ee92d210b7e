package server

import (
	"testing"
	"time"

	"github.com/Technochips/chipscraft/internal/protocol"
)

// awaitMovement returns the first movement packet on q, skipping the join
// traffic (roster Spawns, join messages) queued ahead of it.
func awaitMovement(t *testing.T, q *packetQueue) protocol.Packet {
	t.Helper()
	timeout := time.After(time.Second)
	for {
		select {
		case p := <-q.recv():
			switch p.(type) {
			case protocol.SetPosAndLook, protocol.UpdatePosAndLook, protocol.UpdatePos, protocol.UpdateLook:
				return p
			}
		case <-timeout:
			t.Fatalf("expected a movement packet, none arrived")
			return nil
		}
	}
}

func TestMovePlayerSmallDeltaBroadcastsUpdatePos(t *testing.T) {
	s := newTestServer(t)
	spawnTestClient(t, s, 0, "Alice", ModeNormal)
	other := spawnTestClient(t, s, 1, "Bob", ModeNormal)

	c, _ := s.clientSnapshot(0)
	s.MovePlayer(0, -1, c.X, c.Y, c.Z+3, c.Yaw, c.Pitch)

	p := awaitMovement(t, other)
	if u, ok := p.(protocol.UpdatePos); !ok || u.ID != 0 || u.DX != 0 || u.DY != 0 || u.DZ != 3 {
		t.Fatalf("movement packet to the other client = %#v, want UpdatePos{ID:0 DX:0 DY:0 DZ:3}", p)
	}
}

func TestMovePlayerLargeDeltaFallsBackToSetPosAndLook(t *testing.T) {
	s := newTestServer(t)
	q := spawnTestClient(t, s, 0, "Alice", ModeNormal)

	c, _ := s.clientSnapshot(0)
	s.MovePlayer(0, -1, c.X+1000, c.Y, c.Z, c.Yaw, c.Pitch)

	updated, _ := s.clientSnapshot(0)
	if updated.X != c.X+1000 {
		t.Fatalf("stored X = %d, want %d", updated.X, c.X+1000)
	}
	p := awaitMovement(t, q)
	if sp, ok := p.(protocol.SetPosAndLook); !ok || sp.ID != -1 || sp.X != c.X+1000 {
		t.Fatalf("movement packet = %#v, want SetPosAndLook{ID:-1 X:%d}", p, c.X+1000)
	}
}

func TestFitDelta(t *testing.T) {
	if d, ok := fitDelta(1000, 1003); !ok || d != 3 {
		t.Fatalf("fitDelta(1000,1003) = %d,%v want 3,true", d, ok)
	}
	if _, ok := fitDelta(1000, 2000); ok {
		t.Fatalf("fitDelta(1000,2000) should not fit in i8")
	}
}
