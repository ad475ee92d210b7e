package protocol

import (
	"bytes"
	"strings"
	"testing"
)

func roundTrip(t *testing.T, p Packet) Packet {
	t.Helper()
	var buf bytes.Buffer
	if err := Encode(&buf, p); err != nil {
		t.Fatalf("Encode(%#v): %v", p, err)
	}
	got, err := Decode(&buf)
	if err != nil {
		t.Fatalf("Decode after Encode(%#v): %v", p, err)
	}
	return got
}

func TestRoundTripFixedFields(t *testing.T) {
	cases := []Packet{
		Identification{Protocol: 7, Name: "server", Data: "motd", UserMode: 0x64},
		Ping{},
		LevelStart{},
		LevelSize{X: 64, Y: 64, Z: 64},
		PlaceBlock{X: 1, Y: 2, Z: 3, Mode: 1, Block: 12},
		SetBlock{X: -1, Y: 0, Z: 5, Block: 9},
		Spawn{ID: 3, Name: "steve", X: 100, Y: 200, Z: 300, Yaw: 10, Pitch: 20},
		SetPosAndLook{ID: -1, X: 1, Y: 2, Z: 3, Yaw: 1, Pitch: 2},
		UpdatePosAndLook{ID: 2, DX: 1, DY: -1, DZ: 3, Yaw: 4, Pitch: 5},
		UpdatePos{ID: 2, DX: 1, DY: -1, DZ: 3},
		UpdateLook{ID: 2, Yaw: 7, Pitch: 9},
		Despawn{ID: 4},
		Message{ID: -1, Message: "hello"},
		Disconnect{Reason: "bye"},
		UpdateUserMode{UserMode: 0x64},
	}

	for _, want := range cases {
		got := roundTrip(t, want)
		if got != want {
			t.Errorf("round trip mismatch: got %#v, want %#v", got, want)
		}
	}
}

func TestLevelDataRoundTrip(t *testing.T) {
	data := make([]byte, 1024)
	for i := range data {
		data[i] = byte(i)
	}
	want := LevelData{Length: 1024, Data: data, Percentage: 50}
	got := roundTrip(t, want).(LevelData)
	if got.Length != want.Length || got.Percentage != want.Percentage || !bytes.Equal(got.Data, want.Data) {
		t.Errorf("LevelData round trip mismatch")
	}
}

func TestUnknownOpcodeDecodesToUnknown(t *testing.T) {
	var buf bytes.Buffer
	buf.WriteByte(0xFF)
	p, err := Decode(&buf)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if _, ok := p.(Unknown); !ok {
		t.Fatalf("expected Unknown, got %T", p)
	}
}

func TestString64TruncationAndEllipsis(t *testing.T) {
	long := strings.Repeat("a", 100)
	var buf bytes.Buffer
	if err := WriteString64(&buf, long); err != nil {
		t.Fatal(err)
	}
	if buf.Len() != StringFieldSize {
		t.Fatalf("wrote %d bytes, want %d", buf.Len(), StringFieldSize)
	}
	raw := buf.Bytes()
	if string(raw[61:64]) != "..." {
		t.Fatalf("expected ellipsis at tail, got %q", raw[61:64])
	}
}

func TestString64TrailingAmpersandEscaped(t *testing.T) {
	// A message ending in a dangling color-code initiator must have its
	// trailing '&' rewritten to '%' once trailing spaces are accounted for.
	var buf bytes.Buffer
	if err := WriteString64(&buf, "hello&"); err != nil {
		t.Fatal(err)
	}
	raw := buf.Bytes()
	// Find the last non-space byte.
	i := len(raw) - 1
	for i >= 0 && raw[i] == 0x20 {
		i--
	}
	if raw[i] != '%' {
		t.Fatalf("expected trailing '&' rewritten to '%%', got %q at index %d", raw[i], i)
	}
}

func TestString64PadAndTrim(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteString64(&buf, "hi"); err != nil {
		t.Fatal(err)
	}
	if buf.Len() != StringFieldSize {
		t.Fatalf("wrote %d bytes, want %d", buf.Len(), StringFieldSize)
	}
	got, err := ReadString64(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if got != "hi" {
		t.Fatalf("got %q, want %q", got, "hi")
	}
}

func TestArray1024TooLong(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteArray1024(&buf, make([]byte, 1025)); err == nil {
		t.Fatal("expected error writing oversized array field")
	}
}
