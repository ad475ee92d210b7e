package config

import (
	"path/filepath"
	"testing"
)

func TestUserListAddContainsRemove(t *testing.T) {
	path := filepath.Join(t.TempDir(), "banned.yaml")
	l, err := LoadUserList(path)
	if err != nil {
		t.Fatalf("LoadUserList: %v", err)
	}
	if l.Contains("bob", "1.2.3.4") {
		t.Fatalf("fresh list should contain nobody")
	}

	if err := l.AddUsername("bob"); err != nil {
		t.Fatalf("AddUsername: %v", err)
	}
	if err := l.AddIP("1.2.3.4"); err != nil {
		t.Fatalf("AddIP: %v", err)
	}
	if !l.ContainsUsername("bob") || !l.ContainsIP("1.2.3.4") {
		t.Fatalf("membership not recorded after add")
	}

	if err := l.RemoveUsername("bob"); err != nil {
		t.Fatalf("RemoveUsername: %v", err)
	}
	if l.ContainsUsername("bob") {
		t.Fatalf("username still present after remove")
	}
}

func TestUserListPersistsAcrossReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ops.yaml")
	l, err := LoadUserList(path)
	if err != nil {
		t.Fatalf("LoadUserList: %v", err)
	}
	if err := l.AddUsername("alice"); err != nil {
		t.Fatalf("AddUsername: %v", err)
	}

	reloaded, err := LoadUserList(path)
	if err != nil {
		t.Fatalf("reload LoadUserList: %v", err)
	}
	if !reloaded.ContainsUsername("alice") {
		t.Fatalf("reload did not preserve membership")
	}
}

func TestUserListMissingFileIsEmptyNotError(t *testing.T) {
	l, err := LoadUserList(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	if err != nil {
		t.Fatalf("LoadUserList on missing file: %v", err)
	}
	if l.ContainsUsername("anyone") {
		t.Fatalf("missing file should load empty")
	}
}
