package server

import "github.com/Technochips/chipscraft/internal/protocol"

// MovePlayer stores mover's new position/rotation and broadcasts the
// minimal packet describing the change, observing the store and the
// broadcast-kind decision atomically under the lock so two concurrent
// calls for the same client can never interleave into an inconsistent
// delta.
func (s *Server) MovePlayer(toMove, mover int8, x, y, z int16, yaw, pitch byte) {
	s.mu.Lock()
	c, ok := s.clients[toMove]
	if !ok {
		s.mu.Unlock()
		return
	}

	positionChanged := x != c.X || y != c.Y || z != c.Z
	rotationChanged := yaw != c.Yaw || pitch != c.Pitch

	dx, dy, dz, fits := int8(0), int8(0), int8(0), true
	if positionChanged {
		dx, fits = fitDelta(c.X, x)
		if fits {
			var fy, fz bool
			dy, fy = fitDelta(c.Y, y)
			dz, fz = fitDelta(c.Z, z)
			fits = fy && fz
		}
	}

	c.X, c.Y, c.Z = x, y, z
	c.Yaw, c.Pitch = yaw, pitch
	s.mu.Unlock()

	var pkt protocol.Packet
	switch {
	case positionChanged && !fits:
		pkt = protocol.SetPosAndLook{ID: toMove, X: x, Y: y, Z: z, Yaw: yaw, Pitch: pitch}
	case positionChanged && rotationChanged:
		pkt = protocol.UpdatePosAndLook{ID: toMove, DX: dx, DY: dy, DZ: dz, Yaw: yaw, Pitch: pitch}
	case positionChanged:
		pkt = protocol.UpdatePos{ID: toMove, DX: dx, DY: dy, DZ: dz}
	case rotationChanged:
		pkt = protocol.UpdateLook{ID: toMove, Yaw: yaw, Pitch: pitch}
	default:
		return
	}

	s.BroadcastPacket(mover, pkt)
}

// fitDelta reports whether to - from fits in a signed 8-bit delta,
// returning the delta. Only the difference is range-checked; the endpoints
// themselves may be any int16 value.
func fitDelta(from, to int16) (int8, bool) {
	diff := int32(to) - int32(from)
	if diff < -128 || diff > 127 {
		return 0, false
	}
	return int8(diff), true
}
