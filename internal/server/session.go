package server

import (
	"bufio"
	"crypto/md5"
	"encoding/hex"
	"net"
	"strings"
	"time"

	"github.com/Technochips/chipscraft/internal/blockdef"
	"github.com/Technochips/chipscraft/internal/level"
	"github.com/Technochips/chipscraft/internal/logging"
	"github.com/Technochips/chipscraft/internal/protocol"
)

// idleTimeout bounds both the handshake and every steady-state read/write;
// a peer that goes silent for this long is assumed dead.
const idleTimeout = 10 * time.Second

// session is the per-connection state a handshake hands off to the
// reader/writer pair.
type session struct {
	conn     net.Conn
	br       *bufio.Reader
	bw       *bufio.Writer
	s        *Server
	log      *logging.Logger
	id       int8
	addr     string
	username string
	queue    *packetQueue
}

// Serve drives one accepted connection end to end: handshake, then the
// reader/writer pair, until either terminates, then deregisters the
// client from Server.
func Serve(s *Server, conn net.Conn, log *logging.Logger) {
	defer conn.Close()

	sess, ok := handshake(s, conn, log)
	if !ok {
		return
	}

	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		writerLoop(sess)
		// Wake a reader blocked on the connection so the writer ending
		// also ends the session.
		sess.conn.SetReadDeadline(time.Now())
	}()

	reason := readerLoop(sess)
	sess.log.Debug("session for %s ending: %s", sess.username, reason)
	sess.queue.push(protocol.Disconnect{Reason: reason})
	<-writerDone

	s.Disconnected(sess.id)
}

func handshake(s *Server, conn net.Conn, log *logging.Logger) (*session, bool) {
	br := bufio.NewReader(conn)
	bw := bufio.NewWriter(conn)

	conn.SetReadDeadline(time.Now().Add(idleTimeout))
	pkt, err := protocol.Decode(br)
	if err != nil {
		return nil, false
	}
	ident, ok := pkt.(protocol.Identification)
	if !ok || ident.Protocol != 7 {
		return nil, false
	}

	addr := remoteIP(conn)

	if s.Lists.Banned.Contains(ident.Name, addr) {
		writeDisconnect(conn, bw, "You are banned.")
		return nil, false
	}

	if s.Config.VerifyPlayers {
		sum := md5.Sum([]byte(s.Salt() + ident.Name))
		if ident.Data != hex.EncodeToString(sum[:]) {
			writeDisconnect(conn, bw, "Verification failed, please reconnect.")
			return nil, false
		}
	}

	id, ok := s.FirstFreeSpace()
	if !ok {
		writeDisconnect(conn, bw, "Too many players.")
		return nil, false
	}

	if _, ok := s.GetIndexFromUsername(ident.Name); ok {
		writeDisconnect(conn, bw, "Player already logged in.")
		return nil, false
	}

	mode := ModeNormal
	if s.Lists.Ops.Contains(ident.Name, addr) {
		mode = ModeOperator
	}

	conn.SetWriteDeadline(time.Now().Add(idleTimeout))
	if err := protocol.Encode(bw, protocol.Identification{
		Protocol: 7, Name: s.Config.Name, Data: s.Config.MOTD, UserMode: mode,
	}); err != nil {
		return nil, false
	}
	if err := protocol.Encode(bw, protocol.LevelStart{}); err != nil {
		return nil, false
	}
	if err := bw.Flush(); err != nil {
		return nil, false
	}

	queue := newPacketQueue()
	if err := s.Spawn(id, addr, ident.Name, mode, queue); err != nil {
		log.Warn("handshake: spawn failed for %s: %v", ident.Name, err)
		return nil, false
	}

	if err := streamLevel(s, bw, conn); err != nil {
		s.Disconnected(id)
		return nil, false
	}

	return &session{
		conn: conn, br: br, bw: bw, s: s,
		log: log.WithSession(), id: id, addr: addr, username: ident.Name,
		queue: queue,
	}, true
}

func writeDisconnect(conn net.Conn, bw *bufio.Writer, reason string) {
	conn.SetWriteDeadline(time.Now().Add(idleTimeout))
	if err := protocol.Encode(bw, protocol.Disconnect{Reason: reason}); err != nil {
		return
	}
	bw.Flush()
}

func remoteIP(conn net.Conn) string {
	host, _, err := net.SplitHostPort(conn.RemoteAddr().String())
	if err != nil {
		return conn.RemoteAddr().String()
	}
	return host
}

// streamLevel sends the gzip-framed network form of the level in
// 1024-byte chunks, each tagged with its completion percentage, followed
// by the final LevelSize.
func streamLevel(s *Server, bw *bufio.Writer, conn net.Conn) error {
	data, err := s.Level.Bytes(level.SaveNetwork)
	if err != nil {
		return err
	}

	total := (len(data) + 1023) / 1024
	if total == 0 {
		total = 1
	}
	for start, i := 0, 0; start < len(data); start, i = start+1024, i+1 {
		end := start + 1024
		if end > len(data) {
			end = len(data)
		}
		chunk := data[start:end]

		conn.SetWriteDeadline(time.Now().Add(idleTimeout))
		pkt := protocol.LevelData{
			Length:     int16(len(chunk)),
			Data:       chunk,
			Percentage: byte(i * 100 / total),
		}
		if err := protocol.Encode(bw, pkt); err != nil {
			return err
		}
	}
	if err := bw.Flush(); err != nil {
		return err
	}

	conn.SetWriteDeadline(time.Now().Add(idleTimeout))
	if err := protocol.Encode(bw, protocol.LevelSize{X: s.Level.SizeX, Y: s.Level.SizeY, Z: s.Level.SizeZ}); err != nil {
		return err
	}
	return bw.Flush()
}

// readerLoop accepts client-originated packets until a fatal condition
// and returns the disconnect reason to report.
func readerLoop(sess *session) string {
	for {
		sess.conn.SetReadDeadline(time.Now().Add(idleTimeout))
		pkt, err := protocol.Decode(sess.br)
		if err != nil {
			return "Connection lost."
		}

		switch v := pkt.(type) {
		case protocol.PlaceBlock:
			b := v.Block
			if v.Mode == 0 {
				b = byte(blockdef.Air)
			}
			sess.s.SetBlock(sess.id, v.X, v.Y, v.Z, blockdef.ID(b), true)

		case protocol.SetPosAndLook:
			sess.s.MovePlayer(sess.id, sess.id, v.X, v.Y, v.Z, v.Yaw, v.Pitch)

		case protocol.Message:
			handleChatLine(sess, v.Message)

		default:
			return "Unexpected packet."
		}
	}
}

func handleChatLine(sess *session, line string) {
	if strings.HasPrefix(line, "/") {
		fields := strings.Fields(strings.TrimPrefix(line, "/"))
		if len(fields) == 0 {
			return
		}
		sess.s.command(sess.id, fields[0], fields[1:])
		return
	}
	sess.s.BroadcastMessage(sess.id, line)
}

// writerLoop drains the session's packet queue to the wire until it is
// closed, a write fails, or a Disconnect packet is written — the latter
// always ends the loop with that packet's reason.
func writerLoop(sess *session) {
	defer sess.queue.close()

	for {
		pkt, ok := <-sess.queue.recv()
		if !ok {
			return
		}

		sess.conn.SetWriteDeadline(time.Now().Add(idleTimeout))
		err := protocol.Encode(sess.bw, pkt)
		if err == nil {
			err = sess.bw.Flush()
		}
		if err != nil {
			return
		}
		if _, ok := pkt.(protocol.Disconnect); ok {
			return
		}
	}
}
