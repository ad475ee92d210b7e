package server

import (
	"github.com/Technochips/chipscraft/internal/chat"
	"github.com/Technochips/chipscraft/internal/protocol"
)

// SendMessage wraps msg under from's mode ('e' for system/server lines,
// 'f' for a user line) and pushes one Message per wrapped line to to.
func (s *Server) SendMessage(from, to int8, msg string) {
	mode := rune('f')
	if from < 0 {
		mode = 'e'
	}
	for _, line := range chat.Wrap(msg, mode) {
		s.SendPacket(to, protocol.Message{ID: from, Message: line})
	}
	s.logChatLine(from, msg)
}

// BroadcastMessage wraps msg under from's mode and broadcasts one Message
// per line to every connected client.
func (s *Server) BroadcastMessage(from int8, msg string) {
	mode := rune('f')
	if from < 0 {
		mode = 'e'
	}
	for _, line := range chat.Wrap(msg, mode) {
		s.BroadcastPacket(-1, protocol.Message{ID: from, Message: line})
	}
	s.logChatLine(from, msg)
}

// BroadcastSystemMessage is BroadcastMessage, but always wraps under mode
// 'e' and always sends with wire id −1, regardless of the logical from.
func (s *Server) BroadcastSystemMessage(from int8, msg string) {
	for _, line := range chat.Wrap(msg, 'e') {
		s.BroadcastPacket(-1, protocol.Message{ID: -1, Message: line})
	}
	s.logChatLine(from, msg)
}

func (s *Server) logChatLine(from int8, msg string) {
	if s.Log == nil {
		return
	}
	s.Log.Info("chat from=%d: %s", from, msg)
}
