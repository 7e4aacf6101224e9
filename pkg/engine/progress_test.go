package engine

import "testing"

func TestExtractMarker(t *testing.T) {
	tests := []struct {
		name  string
		line  string
		want  Marker
		found bool
	}{
		{
			name:  "ubt compile step",
			line:  "[1/2743] Compiling Foo.cpp",
			want:  Marker{Current: 1, Total: 2743},
			found: true,
		},
		{
			name:  "marker mid-line",
			line:  "LogInit: step [12/40] done",
			want:  Marker{Current: 12, Total: 40},
			found: true,
		},
		{
			name:  "first marker wins",
			line:  "[3/10] then [9/10]",
			want:  Marker{Current: 3, Total: 10},
			found: true,
		},
		{name: "no marker", line: "Linking..."},
		{name: "zero total", line: "[5/0]"},
		{name: "empty line", line: ""},
		{name: "negative current", line: "[-1/10]"},
		{name: "not a pair", line: "[2743]"},
		{
			name:  "current beyond total clamped",
			line:  "[15/10]",
			want:  Marker{Current: 10, Total: 10},
			found: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, found := ExtractMarker(tt.line)
			if found != tt.found {
				t.Fatalf("found = %v, want %v", found, tt.found)
			}
			if found && got != tt.want {
				t.Errorf("marker = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestExtractMarker_Pure(t *testing.T) {
	line := "[7/20] Compile Module.Core.cpp"
	first, _ := ExtractMarker(line)
	second, _ := ExtractMarker(line)
	if first != second {
		t.Error("same line produced different markers")
	}
}

func TestMarker_Fraction(t *testing.T) {
	tests := []struct {
		marker Marker
		want   float64
	}{
		{Marker{Current: 0, Total: 10}, 0.0},
		{Marker{Current: 5, Total: 10}, 0.5},
		{Marker{Current: 10, Total: 10}, 1.0},
		{Marker{Current: 20, Total: 10}, 1.0},
	}
	for _, tt := range tests {
		if got := tt.marker.Fraction(); got != tt.want {
			t.Errorf("%+v: Fraction() = %v, want %v", tt.marker, got, tt.want)
		}
		if f := tt.marker.Fraction(); f < 0 || f > 1 {
			t.Errorf("%+v: fraction %v out of range", tt.marker, f)
		}
	}
}
