package airportdb

import (
	"math"
	"strconv"
	"strings"
)

// Limits applied to parsed data.
const (
	MinElevation = -2000.0 // feet
	MaxElevation = 30000.0 // feet
	maxLatitude  = 80.0

	minRunwayLength = 10.0  // meters
	runwayGPALimit  = 10.0  // degrees
	runwayTCHLimit  = 200.0 // feet
	defaultTCH      = 50.0  // feet
)

// IsValidLat reports whether lat is usable for an airport. Polar regions are
// excluded.
func IsValidLat(lat float64) bool {
	return !math.IsNaN(lat) && math.Abs(lat) < maxLatitude
}

// IsValidLon reports whether lon is within [-180, 180].
func IsValidLon(lon float64) bool {
	return !math.IsNaN(lon) && math.Abs(lon) <= 180
}

// IsValidElev reports whether elev (feet) is within the plausible range.
func IsValidElev(elev float64) bool {
	return elev >= MinElevation && elev <= MaxElevation
}

func isValidTCH(tch float64) bool {
	return tch > 0 && tch < runwayTCHLimit
}

// IsValidICAO reports whether code is a well-formed ICAO airport code: four
// upper-case letters, not starting with I, J, Q or X.
func IsValidICAO(code string) bool {
	if len(code) != 4 {
		return false
	}
	for i := 0; i < 4; i++ {
		if code[i] < 'A' || code[i] > 'Z' {
			return false
		}
	}
	switch code[0] {
	case 'I', 'J', 'Q', 'X':
		return false
	}
	return true
}

// IsValidIATA reports whether code is three upper-case letters.
func IsValidIATA(code string) bool {
	if len(code) != 3 {
		return false
	}
	for i := 0; i < 3; i++ {
		if code[i] < 'A' || code[i] > 'Z' {
			return false
		}
	}
	return true
}

// IsValidRunwayID reports whether id is a two-digit runway number between
// 01 and 36 with an optional L, R or C suffix.
func IsValidRunwayID(id string) bool {
	if len(id) < 2 || len(id) > 3 || !isDigit(id[0]) || !isDigit(id[1]) {
		return false
	}
	num := int(id[0]-'0')*10 + int(id[1]-'0')
	if num == 0 || num > 36 {
		return false
	}
	if len(id) == 3 && id[2] != 'L' && id[2] != 'R' && id[2] != 'C' {
		return false
	}
	return true
}

// NormalizeRunwayID truncates id to three characters, drops a trailing true
// heading marker 'T' and zero-pads US single digit runway numbers.
// The result still needs IsValidRunwayID.
func NormalizeRunwayID(id string) string {
	if len(id) > 3 {
		id = id[:3]
	}
	if strings.HasSuffix(id, "T") {
		id = id[:len(id)-1]
	}
	if len(id) > 0 && id[0] >= '1' && id[0] <= '9' &&
		(len(id) == 1 || (len(id) == 2 && !isDigit(id[1]))) {
		id = "0" + id
	}
	return id
}

// runwayNumber returns the leading numeric part of a runway ID.
func runwayNumber(id string) int {
	n, _ := leadingInt(id)
	return n
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

// parseFloat parses s as a float, returning NaN if it is malformed.
func parseFloat(s string) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return math.NaN()
	}
	return f
}

// leadingInt parses an optionally signed integer prefix of s, ignoring
// leading whitespace.
func leadingInt(s string) (int, bool) {
	s = strings.TrimLeft(s, " \t")
	end := 0
	if end < len(s) && (s[end] == '-' || s[end] == '+') {
		end++
	}
	start := end
	for end < len(s) && isDigit(s[end]) {
		end++
	}
	if end == start {
		return 0, false
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0, false
	}
	return n, true
}

// atoi mirrors C atoi: 0 when there is no integer prefix.
func atoi(s string) int {
	n, _ := leadingInt(s)
	return n
}
