// Package chat implements the word-wrap and color-code continuation logic
// applied to every chat line before it goes out as a Message packet.
package chat

import "strings"

// colorCode is the character that introduces a two-character color code
// (colorCode followed by a hex digit).
const colorCode = '&'

// maxLineLen is the maximum rendered length of one output line.
const maxLineLen = 64

type splitPoint struct {
	index       int  // rune index in the source this split point was recorded at
	mode        rune // mode in effect at the split point
	hasNewMode  bool
	newMode     rune
	stringLen   int // length (in runes) of the line buffer at the split point
}

// Wrap segments message into lines of at most 64 rendered characters,
// preserving color state across wrap and newline boundaries. defaultMode
// is the color character in effect entering the message.
func Wrap(message string, defaultMode rune) []string {
	runes := []rune(message)
	n := len(runes)

	var output []string
	mode := defaultMode
	hasNewMode := false
	var newMode rune
	spaces := 0
	i := 0
	var split *splitPoint
	newLen := 0
	var line []rune

	for i < n {
		c := runes[i]
		switch {
		case c == '\n':
			spaces = 0
			output = append(output, string(line))
			line = nil
			if !hasNewMode {
				hasNewMode = true
				newMode = mode
			}
			mode = defaultMode
			newLen = 0

		case c == ' ':
			split = &splitPoint{index: i, mode: mode, hasNewMode: hasNewMode, newMode: newMode, stringLen: len(line)}
			spaces++

		default:
			if c == colorCode && i+1 < n && isHexDigit(runes[i+1]) {
				hasNewMode = true
				newMode = toLowerHex(runes[i+1])
				i += 2
				continue
			}

			cost := 1 + spaces
			if hasNewMode && newMode != mode {
				cost += 2
			}
			newLen += cost

			if newLen > maxLineLen {
				if split != nil {
					i = split.index + 1
					mode = split.mode
					hasNewMode = split.hasNewMode
					newMode = split.newMode
					line = line[:split.stringLen]
					split = nil
				}
				output = append(output, string(line))
				line = nil
				spaces = 0
				if !hasNewMode {
					hasNewMode = true
					newMode = mode
				}
				mode = defaultMode
				if hasNewMode && newMode != mode {
					newLen = 3
				} else {
					newLen = 1
				}
				continue
			}

			if spaces > 0 {
				for k := 0; k < spaces; k++ {
					line = append(line, ' ')
				}
				spaces = 0
			}

			if hasNewMode {
				if newMode != mode {
					mode = newMode
					line = append(line, colorCode, mode)
				}
				hasNewMode = false
			}
			line = append(line, c)
		}

		i++
	}

	if len(line) > 0 {
		output = append(output, string(line))
	}
	return output
}

func isHexDigit(r rune) bool {
	return (r >= '0' && r <= '9') || (r >= 'a' && r <= 'f') || (r >= 'A' && r <= 'F')
}

func toLowerHex(r rune) rune {
	if r >= 'A' && r <= 'F' {
		return r - 'A' + 'a'
	}
	return r
}

// Strip removes every &X color code and newline from s, for comparing
// rendered text against its source (testable property: wrap round-trips
// the stripped message).
func Strip(s string) string {
	var b strings.Builder
	runes := []rune(s)
	for i := 0; i < len(runes); i++ {
		if runes[i] == colorCode && i+1 < len(runes) && isHexDigit(runes[i+1]) {
			i++
			continue
		}
		if runes[i] == '\n' {
			continue
		}
		b.WriteRune(runes[i])
	}
	return b.String()
}
