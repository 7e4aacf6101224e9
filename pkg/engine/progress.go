package engine

import (
	"regexp"
	"strconv"
)

// markerPattern matches the bracketed step counters UBT and UAT emit,
// e.g. "[1/2743] Compile Module.Foo.cpp".
var markerPattern = regexp.MustCompile(`\[(\d+)/(\d+)\]`)

// Marker is a (current, total) pair parsed from a single output line.
type Marker struct {
	Current uint64
	Total   uint64
}

// Fraction returns the progress fraction in [0, 1]. Current values beyond
// Total are clamped.
func (m Marker) Fraction() float64 {
	if m.Current > m.Total {
		return 1.0
	}
	return float64(m.Current) / float64(m.Total)
}

// ExtractMarker scans a line for a bracketed current/total pair. The first
// pair found wins. Lines without one, and pairs with a zero total, yield no
// marker; most log lines carry no progress and that is not an error.
func ExtractMarker(line string) (Marker, bool) {
	match := markerPattern.FindStringSubmatch(line)
	if match == nil {
		return Marker{}, false
	}

	current, err := strconv.ParseUint(match[1], 10, 64)
	if err != nil {
		return Marker{}, false
	}
	total, err := strconv.ParseUint(match[2], 10, 64)
	if err != nil || total == 0 {
		return Marker{}, false
	}

	if current > total {
		current = total
	}
	return Marker{Current: current, Total: total}, true
}
