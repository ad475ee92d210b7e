package level

import (
	"bytes"
	"compress/gzip"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/Technochips/chipscraft/internal/blockdef"
)

// SaveType selects which gzip framing Bytes produces.
type SaveType int

const (
	// SaveNetwork frames the payload the way LevelData expects it: a
	// big-endian u32 cell count followed by the raw block array.
	SaveNetwork SaveType = iota
	// SaveDisk frames the payload the way the on-disk .dat file expects
	// it: three big-endian i16 dimensions followed by the raw block
	// array.
	SaveDisk
)

// Bytes gzip-compresses l's block data in the framing savetype selects.
func (l *Level) Bytes(savetype SaveType) ([]byte, error) {
	var buf bytes.Buffer
	level := gzip.DefaultCompression
	if savetype == SaveNetwork {
		level = gzip.BestSpeed
	}
	w, err := gzip.NewWriterLevel(&buf, level)
	if err != nil {
		return nil, fmt.Errorf("level: gzip writer: %w", err)
	}

	switch savetype {
	case SaveNetwork:
		count := uint32(int(l.SizeX) * int(l.SizeY) * int(l.SizeZ))
		if err := binary.Write(w, binary.BigEndian, count); err != nil {
			return nil, fmt.Errorf("level: write cell count: %w", err)
		}
	case SaveDisk:
		dims := []int16{l.SizeX, l.SizeY, l.SizeZ}
		if err := binary.Write(w, binary.BigEndian, dims); err != nil {
			return nil, fmt.Errorf("level: write dimensions: %w", err)
		}
	}

	raw := make([]byte, len(l.data))
	for i, b := range l.data {
		raw[i] = byte(b)
	}
	if _, err := w.Write(raw); err != nil {
		return nil, fmt.Errorf("level: write blocks: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("level: close gzip writer: %w", err)
	}
	return buf.Bytes(), nil
}

// datPath returns the save-file path for a level named name.
func datPath(name string) string {
	return name + ".dat"
}

// LoadFrom populates l from the gzip-framed disk file at path.
func (l *Level) LoadFrom(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("level: open %s: %w", path, err)
	}

	gz, err := gzip.NewReader(bytes.NewReader(raw))
	if err != nil {
		return fmt.Errorf("level: gzip reader: %w", err)
	}
	defer gz.Close()

	var dims [3]int16
	if err := binary.Read(gz, binary.BigEndian, &dims); err != nil {
		return fmt.Errorf("level: read dimensions: %w", err)
	}
	sizeX, sizeY, sizeZ := dims[0], dims[1], dims[2]
	if sizeX <= 0 || sizeY <= 0 || sizeZ <= 0 {
		return fmt.Errorf("level: invalid size %dx%dx%d", sizeX, sizeY, sizeZ)
	}

	body, err := io.ReadAll(gz)
	if err != nil {
		return fmt.Errorf("level: read blocks: %w", err)
	}
	want := int(sizeX) * int(sizeY) * int(sizeZ)
	if len(body) != want {
		return fmt.Errorf("level: size and length do not match: have %d want %d", len(body), want)
	}

	l.SizeX, l.SizeY, l.SizeZ = sizeX, sizeY, sizeZ
	l.data = make([]blockdef.ID, want)
	for i, b := range body {
		l.data[i] = blockdef.ID(b)
	}
	l.ResetSpawn()
	return nil
}

// Load populates l from its default save path, <name>.dat.
func (l *Level) Load() error {
	return l.LoadFrom(datPath(l.Name))
}

// SaveTo gzip-compresses l in disk framing and writes it to path.
func (l *Level) SaveTo(path string) error {
	b, err := l.Bytes(SaveDisk)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("level: save %s: %w", path, err)
	}
	return nil
}

// Save writes l to its default save path if it has unsaved changes,
// first copying the existing file into backup/ with a timestamped name.
// A clean level is a no-op.
func (l *Level) Save() error {
	if !l.Changed {
		return nil
	}
	l.Changed = false
	if err := l.copyBackup(); err != nil {
		// A missing or unreadable previous save is not fatal: there may
		// simply be no prior file to back up yet.
		_ = err
	}
	return l.SaveTo(datPath(l.Name))
}

// copyBackup copies the level's current save file into backup/, tagged
// with the current local time, before it gets overwritten.
func (l *Level) copyBackup() error {
	if err := os.MkdirAll("backup", 0o755); err != nil {
		return fmt.Errorf("level: create backup dir: %w", err)
	}
	src := datPath(l.Name)
	if _, err := os.Stat(src); err != nil {
		return err
	}
	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	dst := filepath.Join("backup", fmt.Sprintf("%s-%s.dat", l.Name, time.Now().Format("20060102_150405")))
	return os.WriteFile(dst, data, 0o644)
}
