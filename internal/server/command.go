package server

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Technochips/chipscraft/internal/blockdef"
	"github.com/Technochips/chipscraft/internal/config"
)

// Command is one entry in the name-keyed registry: an access policy plus
// the effect to run once that policy is satisfied.
type Command struct {
	Name             string
	OpsOnly          bool
	UnmutedOnly      bool
	UnrestrictedOnly bool
	Effect           func(s *Server, id int8, args []string) error
}

// command looks up name; if found and its access policy is satisfied, its
// effect runs and any returned error is delivered back to id as a system
// message. An unknown name gets the standard fallback message.
func (s *Server) command(id int8, name string, args []string) {
	cmd, ok := s.commands[name]
	if !ok {
		s.SendMessage(-1, id, "Unknown command. See /help.")
		return
	}

	c, known := s.clientSnapshot(id)
	if known {
		if cmd.OpsOnly && !c.Operator() {
			s.SendMessage(-1, id, "You are not allowed to use that command.")
			return
		}
		if cmd.UnmutedOnly && s.Lists.Muted.Contains(c.Username, c.Addr) {
			s.SendMessage(-1, id, "You are muted.")
			return
		}
		if cmd.UnrestrictedOnly && c.Restricted {
			s.SendMessage(-1, id, "You are restricted.")
			return
		}
	}

	if err := cmd.Effect(s, id, args); err != nil {
		s.SendMessage(-1, id, err.Error())
	}
}

func registerCommands(s *Server) {
	register := func(c Command) { s.commands[c.Name] = &c }

	register(Command{Name: "help", Effect: cmdHelp})
	register(Command{Name: "rules", Effect: cmdRules})
	register(Command{Name: "kick", OpsOnly: true, Effect: cmdKick})
	register(Command{Name: "ban", OpsOnly: true, Effect: cmdBan})
	register(Command{Name: "banip", OpsOnly: true, Effect: cmdBanIP})
	register(Command{Name: "unban", OpsOnly: true, Effect: cmdUnban})
	register(Command{Name: "mute", OpsOnly: true, Effect: cmdMute})
	register(Command{Name: "unmute", OpsOnly: true, Effect: cmdUnmute})
	register(Command{Name: "restrict", OpsOnly: true, Effect: cmdRestrict})
	register(Command{Name: "unrestrict", OpsOnly: true, Effect: cmdUnrestrict})
	register(Command{Name: "tp", UnrestrictedOnly: true, Effect: cmdTp})
	register(Command{Name: "tpo", OpsOnly: true, Effect: cmdTpo})
	register(Command{Name: "save", OpsOnly: true, Effect: cmdSave})
	register(Command{Name: "msg", UnmutedOnly: true, Effect: cmdMsg})
	register(Command{Name: "reload-config", OpsOnly: true, Effect: cmdReloadConfig})
	register(Command{Name: "cuboid", OpsOnly: true, UnrestrictedOnly: true, Effect: cmdCuboid})
}

func cmdHelp(s *Server, id int8, args []string) error {
	names := make([]string, 0, len(s.commands))
	for name := range s.commands {
		names = append(names, name)
	}
	for i := 1; i < len(names); i++ {
		for j := i; j > 0 && names[j-1] > names[j]; j-- {
			names[j-1], names[j] = names[j], names[j-1]
		}
	}
	s.SendMessage(-1, id, "Commands: "+strings.Join(names, ", "))
	return nil
}

func cmdRules(s *Server, id int8, args []string) error {
	s.SendMessage(-1, id, s.Config.Rules)
	return nil
}

func targetUsername(args []string) (string, error) {
	if len(args) < 1 || args[0] == "" {
		return "", fmt.Errorf("usage: <username>")
	}
	return args[0], nil
}

func cmdKick(s *Server, id int8, args []string) error {
	name, err := targetUsername(args)
	if err != nil {
		return err
	}
	target, ok := s.GetIndexFromUsername(name)
	if !ok {
		return fmt.Errorf("%s is not connected", name)
	}
	reason := "Kicked by operator."
	if len(args) > 1 {
		reason = strings.Join(args[1:], " ")
	}
	s.Kick(target, reason)
	s.BroadcastSystemMessage(-1, name+" was kicked.")
	return nil
}

func cmdBan(s *Server, id int8, args []string) error {
	name, err := targetUsername(args)
	if err != nil {
		return err
	}
	if err := s.Lists.Banned.AddUsername(name); err != nil {
		return fmt.Errorf("could not save ban list: %w", err)
	}
	if target, ok := s.GetIndexFromUsername(name); ok {
		s.Kick(target, "You have been banned.")
	}
	s.BroadcastSystemMessage(-1, name+" has been banned.")
	return nil
}

func cmdBanIP(s *Server, id int8, args []string) error {
	name, err := targetUsername(args)
	if err != nil {
		return err
	}
	target, ok := s.GetIndexFromUsername(name)
	if !ok {
		return fmt.Errorf("%s is not connected", name)
	}
	c, _ := s.clientSnapshot(target)
	if err := s.Lists.Banned.AddIP(c.Addr); err != nil {
		return fmt.Errorf("could not save ban list: %w", err)
	}
	s.Kick(target, "You have been banned.")
	s.BroadcastSystemMessage(-1, name+" has been banned.")
	return nil
}

func cmdUnban(s *Server, id int8, args []string) error {
	name, err := targetUsername(args)
	if err != nil {
		return err
	}
	if err := s.Lists.Banned.RemoveUsername(name); err != nil {
		return fmt.Errorf("could not save ban list: %w", err)
	}
	s.SendMessage(-1, id, name+" has been unbanned.")
	return nil
}

func cmdMute(s *Server, id int8, args []string) error {
	name, err := targetUsername(args)
	if err != nil {
		return err
	}
	if err := s.Lists.Muted.AddUsername(name); err != nil {
		return fmt.Errorf("could not save mute list: %w", err)
	}
	s.BroadcastSystemMessage(-1, name+" has been muted.")
	return nil
}

func cmdUnmute(s *Server, id int8, args []string) error {
	name, err := targetUsername(args)
	if err != nil {
		return err
	}
	if err := s.Lists.Muted.RemoveUsername(name); err != nil {
		return fmt.Errorf("could not save mute list: %w", err)
	}
	s.BroadcastSystemMessage(-1, name+" has been unmuted.")
	return nil
}

func cmdRestrict(s *Server, id int8, args []string) error {
	name, err := targetUsername(args)
	if err != nil {
		return err
	}
	if err := s.Lists.Restricted.AddUsername(name); err != nil {
		return fmt.Errorf("could not save restricted list: %w", err)
	}
	s.BroadcastSystemMessage(-1, name+" has been restricted.")
	return nil
}

func cmdUnrestrict(s *Server, id int8, args []string) error {
	name, err := targetUsername(args)
	if err != nil {
		return err
	}
	if err := s.Lists.Restricted.RemoveUsername(name); err != nil {
		return fmt.Errorf("could not save restricted list: %w", err)
	}
	s.BroadcastSystemMessage(-1, name+" has been unrestricted.")
	return nil
}

// Teleport coordinate bounds: |x|, |z| ≤ i16::MAX/32 and
// i16::MIN/32 ≤ y ≤ i16::MAX/32 − 1.
const (
	coordMax   = 32767 / 32
	coordYMin  = -32768 / 32
	coordYMaxO = 32767/32 - 1
)

func parseTeleportCoords(s *Server, args []string) (x, y, z int16, yaw, pitch byte, err error) {
	if len(args) == 1 {
		target, ok := s.GetIndexFromUsername(args[0])
		if !ok {
			err = fmt.Errorf("%s is not connected", args[0])
			return
		}
		c, _ := s.clientSnapshot(target)
		return c.X, c.Y, c.Z, c.Yaw, c.Pitch, nil
	}
	if len(args) < 3 {
		err = fmt.Errorf("usage: /tp <x> <y> <z> | <username>")
		return
	}
	bx, ex := strconv.Atoi(args[0])
	by, ey := strconv.Atoi(args[1])
	bz, ez := strconv.Atoi(args[2])
	if ex != nil || ey != nil || ez != nil {
		err = fmt.Errorf("coordinates must be integers")
		return
	}
	if bx < -coordMax || bx > coordMax || bz < -coordMax || bz > coordMax {
		err = fmt.Errorf("x/z out of range")
		return
	}
	if by < coordYMin || by > coordYMaxO {
		err = fmt.Errorf("y out of range")
		return
	}
	x = int16(bx*32 + 16)
	y = int16(by*32 + 61)
	z = int16(bz*32 + 16)
	yaw, pitch = 0, 0
	return
}

func cmdTp(s *Server, id int8, args []string) error {
	x, y, z, yaw, pitch, err := parseTeleportCoords(s, args)
	if err != nil {
		return err
	}
	c, ok := s.clientSnapshot(id)
	if ok && len(args) < 3 {
		yaw, pitch = c.Yaw, c.Pitch
	}
	s.MovePlayer(id, -1, x, y, z, yaw, pitch)
	return nil
}

func cmdTpo(s *Server, id int8, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: /tpo <username> [x y z | username]")
	}
	target, ok := s.GetIndexFromUsername(args[0])
	if !ok {
		return fmt.Errorf("%s is not connected", args[0])
	}
	x, y, z, yaw, pitch, err := parseTeleportCoords(s, args[1:])
	if err != nil {
		return err
	}
	if len(args[1:]) < 3 {
		c, _ := s.clientSnapshot(target)
		yaw, pitch = c.Yaw, c.Pitch
	}
	s.MovePlayer(target, -1, x, y, z, yaw, pitch)
	return nil
}

func cmdSave(s *Server, id int8, args []string) error {
	s.Level.Changed = true
	if err := s.Level.Save(); err != nil {
		return fmt.Errorf("save failed: %w", err)
	}
	s.SendMessage(-1, id, "Level saved.")
	return nil
}

func cmdMsg(s *Server, id int8, args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("usage: /msg <username> <message>")
	}
	target, ok := s.GetIndexFromUsername(args[0])
	if !ok {
		return fmt.Errorf("%s is not connected", args[0])
	}
	s.SendMessage(id, target, strings.Join(args[1:], " "))
	return nil
}

func cmdReloadConfig(s *Server, id int8, args []string) error {
	if s.ConfigPath == "" {
		return fmt.Errorf("no config file to reload from")
	}
	cfg, err := config.Load(s.ConfigPath)
	if err != nil {
		return fmt.Errorf("reload failed: %w", err)
	}
	s.mu.Lock()
	s.Config = cfg
	s.mu.Unlock()
	s.SendMessage(-1, id, "Config reloaded.")
	return nil
}

func cmdCuboid(s *Server, id int8, args []string) error {
	if len(args) < 7 {
		return fmt.Errorf("usage: /cuboid <x1> <y1> <z1> <x2> <y2> <z2> <block>")
	}
	coords := make([]int, 6)
	for i := 0; i < 6; i++ {
		v, err := strconv.Atoi(args[i])
		if err != nil {
			return fmt.Errorf("coordinates must be integers")
		}
		coords[i] = v
	}
	blockID, err := strconv.Atoi(args[6])
	if err != nil || !blockdef.Valid(blockdef.ID(blockID)) {
		return fmt.Errorf("invalid block id")
	}

	x1, y1, z1, x2, y2, z2 := coords[0], coords[1], coords[2], coords[3], coords[4], coords[5]
	if x1 > x2 {
		x1, x2 = x2, x1
	}
	if y1 > y2 {
		y1, y2 = y2, y1
	}
	if z1 > z2 {
		z1, z2 = z2, z1
	}

	for x := x1; x <= x2; x++ {
		for y := y1; y <= y2; y++ {
			for z := z1; z <= z2; z++ {
				if !s.Level.InBounds(int16(x), int16(y), int16(z)) {
					continue
				}
				s.SetBlock(-1, int16(x), int16(y), int16(z), blockdef.ID(blockID), false)
			}
		}
	}
	return nil
}
