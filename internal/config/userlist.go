package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// UserList is one of the four persisted moderation lists: usernames and
// IPs are tracked separately, and a username or IP in the list means
// membership for whatever policy the list backs (ops, banned, muted,
// restricted).
type UserList struct {
	path      string
	Usernames []string `yaml:"usernames"`
	IPs       []string `yaml:"ips"`
}

// LoadUserList reads path as YAML, returning an empty list (not an error)
// if the file doesn't exist yet.
func LoadUserList(path string) (*UserList, error) {
	l := &UserList{path: path}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return l, nil
		}
		return nil, fmt.Errorf("userlist: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, l); err != nil {
		return nil, fmt.Errorf("userlist: parse %s: %w", path, err)
	}
	l.path = path
	return l, nil
}

func (l *UserList) save() error {
	data, err := yaml.Marshal(l)
	if err != nil {
		return fmt.Errorf("userlist: marshal %s: %w", l.path, err)
	}
	if err := os.WriteFile(l.path, data, 0o644); err != nil {
		return fmt.Errorf("userlist: write %s: %w", l.path, err)
	}
	return nil
}

// ContainsUsername reports whether username is a member, case-sensitive.
func (l *UserList) ContainsUsername(username string) bool {
	for _, u := range l.Usernames {
		if u == username {
			return true
		}
	}
	return false
}

// ContainsIP reports whether ip is a member.
func (l *UserList) ContainsIP(ip string) bool {
	for _, i := range l.IPs {
		if i == ip {
			return true
		}
	}
	return false
}

// Contains reports whether either the username or the ip is a member.
func (l *UserList) Contains(username, ip string) bool {
	return l.ContainsUsername(username) || l.ContainsIP(ip)
}

// AddUsername adds username to the list and persists it, if not already
// present.
func (l *UserList) AddUsername(username string) error {
	if l.ContainsUsername(username) {
		return nil
	}
	l.Usernames = append(l.Usernames, username)
	return l.save()
}

// AddIP adds ip to the list and persists it, if not already present.
func (l *UserList) AddIP(ip string) error {
	if l.ContainsIP(ip) {
		return nil
	}
	l.IPs = append(l.IPs, ip)
	return l.save()
}

// RemoveUsername removes username from the list and persists it.
func (l *UserList) RemoveUsername(username string) error {
	for i, u := range l.Usernames {
		if u == username {
			l.Usernames = append(l.Usernames[:i], l.Usernames[i+1:]...)
			return l.save()
		}
	}
	return nil
}

// RemoveIP removes ip from the list and persists it.
func (l *UserList) RemoveIP(ip string) error {
	for i, v := range l.IPs {
		if v == ip {
			l.IPs = append(l.IPs[:i], l.IPs[i+1:]...)
			return l.save()
		}
	}
	return nil
}

// UserLists bundles the four moderation lists a Server consults during
// handshake and command dispatch.
type UserLists struct {
	Ops        *UserList
	Banned     *UserList
	Muted      *UserList
	Restricted *UserList
}

// LoadUserLists loads all four lists named in cfg.
func LoadUserLists(cfg *Config) (*UserLists, error) {
	ops, err := LoadUserList(cfg.OpsFile)
	if err != nil {
		return nil, err
	}
	banned, err := LoadUserList(cfg.BannedFile)
	if err != nil {
		return nil, err
	}
	muted, err := LoadUserList(cfg.MutedFile)
	if err != nil {
		return nil, err
	}
	restricted, err := LoadUserList(cfg.RestrictedFile)
	if err != nil {
		return nil, err
	}
	return &UserLists{Ops: ops, Banned: banned, Muted: muted, Restricted: restricted}, nil
}
