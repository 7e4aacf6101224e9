package engine

import "bytes"

// LineFramer reassembles complete lines from arbitrary byte chunks of a
// process output stream. Data after the last terminator is buffered until
// more input arrives or Flush is called. LF, CRLF and lone CR terminators
// are all recognized, including a CRLF split across two chunks.
type LineFramer struct {
	pending   bytes.Buffer
	pendingCR bool
}

// Feed consumes one chunk and returns the complete lines it finished.
// Terminators are stripped from the returned lines.
func (f *LineFramer) Feed(chunk []byte) []string {
	var lines []string

	for _, b := range chunk {
		if f.pendingCR {
			// A CR at the end of the previous chunk already
			// terminated a line; a following LF belongs to the
			// same terminator and is swallowed.
			f.pendingCR = false
			lines = append(lines, f.takeLine())
			if b == '\n' {
				continue
			}
		}
		switch b {
		case '\n':
			lines = append(lines, f.takeLine())
		case '\r':
			f.pendingCR = true
		default:
			f.pending.WriteByte(b)
		}
	}

	// A CR at the very end of the chunk stays pending so a leading LF
	// in the next chunk is folded into the same terminator.
	return lines
}

// Flush emits any buffered partial line and resets the framer.
// The second return value is false when nothing was buffered.
func (f *LineFramer) Flush() (string, bool) {
	if f.pendingCR {
		f.pendingCR = false
		return f.takeLine(), true
	}
	if f.pending.Len() == 0 {
		return "", false
	}
	return f.takeLine(), true
}

func (f *LineFramer) takeLine() string {
	line := f.pending.String()
	f.pending.Reset()
	return line
}
