package protocol

import (
	"encoding/binary"
	"fmt"
	"io"
)

// StringFieldSize is the fixed wire width of a str(64) field.
const StringFieldSize = 64

// ArrayFieldSize is the fixed wire width of an arr(1024) field.
const ArrayFieldSize = 1024

// ReadString64 reads a fixed 64-byte string field: exactly 64 bytes, then
// trailing 0x20/0x00 padding is trimmed before CP437 decoding.
func ReadString64(r io.Reader) (string, error) {
	var buf [StringFieldSize]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return "", fmt.Errorf("read string field: %w", err)
	}

	end := StringFieldSize
	for end > 0 && (buf[end-1] == 0x20 || buf[end-1] == 0x00) {
		end--
	}
	return decodeCP437(buf[:end]), nil
}

// WriteString64 writes a fixed 64-byte string field. Overlong input is
// truncated to 64 bytes with the last three overwritten by "...". The
// field is then space-padded; if the last non-space byte before padding
// would be '&' (a dangling color-code initiator once the peer trims
// trailing spaces) it is rewritten to '%'.
func WriteString64(w io.Writer, s string) error {
	b := encodeCP437(s)

	var buf [StringFieldSize]byte
	for i := range buf {
		buf[i] = 0x20
	}

	if len(b) > StringFieldSize {
		copy(buf[:], b[:StringFieldSize])
		buf[StringFieldSize-3] = '.'
		buf[StringFieldSize-2] = '.'
		buf[StringFieldSize-1] = '.'
	} else {
		copy(buf[:], b)
	}

	for i := StringFieldSize - 1; i >= 0; i-- {
		if buf[i] != 0x20 {
			if buf[i] == '&' {
				buf[i] = '%'
			}
			break
		}
	}

	_, err := w.Write(buf[:])
	return err
}

// ReadArray1024 reads a fixed 1024-byte array field verbatim.
func ReadArray1024(r io.Reader) ([]byte, error) {
	buf := make([]byte, ArrayFieldSize)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, fmt.Errorf("read array field: %w", err)
	}
	return buf, nil
}

// WriteArray1024 writes data as a fixed 1024-byte array field, zero-padded.
// It is an error for data to be longer than 1024 bytes.
func WriteArray1024(w io.Writer, data []byte) error {
	if len(data) > ArrayFieldSize {
		return fmt.Errorf("array field payload too long: %d > %d", len(data), ArrayFieldSize)
	}
	var buf [ArrayFieldSize]byte
	copy(buf[:], data)
	_, err := w.Write(buf[:])
	return err
}

// ReadU8 reads an unsigned 8-bit integer.
func ReadU8(r io.Reader) (byte, error) {
	var buf [1]byte
	_, err := io.ReadFull(r, buf[:])
	return buf[0], err
}

// WriteU8 writes an unsigned 8-bit integer.
func WriteU8(w io.Writer, v byte) error {
	_, err := w.Write([]byte{v})
	return err
}

// ReadI8 reads a signed 8-bit integer.
func ReadI8(r io.Reader) (int8, error) {
	v, err := ReadU8(r)
	return int8(v), err
}

// WriteI8 writes a signed 8-bit integer.
func WriteI8(w io.Writer, v int8) error {
	return WriteU8(w, byte(v))
}

// ReadI16 reads a big-endian signed 16-bit integer.
func ReadI16(r io.Reader) (int16, error) {
	var buf [2]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, err
	}
	return int16(binary.BigEndian.Uint16(buf[:])), nil
}

// WriteI16 writes a big-endian signed 16-bit integer.
func WriteI16(w io.Writer, v int16) error {
	var buf [2]byte
	binary.BigEndian.PutUint16(buf[:], uint16(v))
	_, err := w.Write(buf[:])
	return err
}
