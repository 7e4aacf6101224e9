package engine

import (
	"reflect"
	"testing"
)

func feedAll(f *LineFramer, chunks []string) []string {
	var lines []string
	for _, c := range chunks {
		lines = append(lines, f.Feed([]byte(c))...)
	}
	if line, ok := f.Flush(); ok {
		lines = append(lines, line)
	}
	return lines
}

func TestLineFramer_ChunkBoundaryIndependence(t *testing.T) {
	tests := []struct {
		name   string
		chunks []string
		want   []string
	}{
		{
			name:   "single chunk",
			chunks: []string{"one\ntwo\nthree\n"},
			want:   []string{"one", "two", "three"},
		},
		{
			name:   "line split across chunks",
			chunks: []string{"on", "e\ntw", "o\n"},
			want:   []string{"one", "two"},
		},
		{
			name:   "crlf terminators",
			chunks: []string{"one\r\ntwo\r\n"},
			want:   []string{"one", "two"},
		},
		{
			name:   "crlf split across chunks",
			chunks: []string{"one\r", "\ntwo\n"},
			want:   []string{"one", "two"},
		},
		{
			name:   "lone cr terminator",
			chunks: []string{"one\rtwo\r"},
			want:   []string{"one", "two"},
		},
		{
			name:   "cr at chunk end followed by text",
			chunks: []string{"one\r", "two\n"},
			want:   []string{"one", "two"},
		},
		{
			name:   "unterminated trailing line",
			chunks: []string{"one\ntwo"},
			want:   []string{"one", "two"},
		},
		{
			name:   "empty lines preserved",
			chunks: []string{"one\n\ntwo\n"},
			want:   []string{"one", "", "two"},
		},
		{
			name:   "byte at a time",
			chunks: []string{"a", "\r", "\n", "b", "\n"},
			want:   []string{"a", "b"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var f LineFramer
			got := feedAll(&f, tt.chunks)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestLineFramer_FlushClearsBuffer(t *testing.T) {
	var f LineFramer
	f.Feed([]byte("partial"))

	if line, ok := f.Flush(); !ok || line != "partial" {
		t.Fatalf("Flush() = %q, %v; want %q, true", line, ok, "partial")
	}
	if _, ok := f.Flush(); ok {
		t.Error("second Flush should report nothing buffered")
	}
}

func TestLineFramer_ReusableAfterFlush(t *testing.T) {
	var f LineFramer
	f.Feed([]byte("left"))
	f.Flush()

	got := f.Feed([]byte("fresh\n"))
	if len(got) != 1 || got[0] != "fresh" {
		t.Errorf("framer not clean after Flush: %q", got)
	}
}
