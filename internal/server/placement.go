package server

import (
	"github.com/Technochips/chipscraft/internal/blockdef"
	"github.com/Technochips/chipscraft/internal/protocol"
)

// SetBlock validates and applies a placement request from placer_id (−1
// for server-originated edits, which are always Operator and
// unrestricted). On success it broadcasts every resulting cell change; if
// the requested cell wasn't among them and aware is set, the placer gets
// a corrective SetBlock so its optimistic client state reverts.
func (s *Server) SetBlock(placerID int8, x, y, z int16, b blockdef.ID, aware bool) {
	if !s.Level.InBounds(x, y, z) || !blockdef.Valid(b) {
		return
	}

	mode, restricted := s.placerPolicy(placerID)

	placed := blockdef.Get(b)
	current, _ := s.blockAt(x, y, z)
	replaced := blockdef.Get(current)

	allowed := !restricted && (mode == ModeOperator || (!placed.PlaceOpOnly && !replaced.DestroyOpOnly))
	if !allowed {
		if aware {
			s.SendPacket(placerID, protocol.SetBlock{X: x, Y: y, Z: z, Block: byte(current)})
		}
		return
	}

	changes := s.Level.PlaceBlock(x, y, z, b)
	foundRequested := false
	for _, c := range changes {
		if c.X == x && c.Y == y && c.Z == z {
			foundRequested = true
		}
		s.BroadcastPacket(-1, protocol.SetBlock{X: c.X, Y: c.Y, Z: c.Z, Block: byte(c.Block)})
	}

	if !foundRequested && aware {
		current, _ := s.blockAt(x, y, z)
		s.SendPacket(placerID, protocol.SetBlock{X: x, Y: y, Z: z, Block: byte(current)})
	}
}

// placerPolicy resolves the (mode, restricted) pair a placement decision
// needs: negative ids (server-originated) are Operator and unrestricted;
// unknown client ids fall back to Normal and restricted.
func (s *Server) placerPolicy(placerID int8) (mode byte, restricted bool) {
	if placerID < 0 {
		return ModeOperator, false
	}
	c, ok := s.clientSnapshot(placerID)
	if !ok {
		return ModeNormal, true
	}
	return c.Mode, c.Restricted
}
