package airportdb

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/yegors/airportdb/internal/geo"
)

// IndexEntry is the compact, always resident record of an airport.
type IndexEntry struct {
	Ident          string       `json:"ident"`
	ICAO           string       `json:"icao,omitempty"`
	IATA           string       `json:"iata,omitempty"`
	CC             string       `json:"cc,omitempty"`
	Pos            geo.Position `json:"pos"` // elevation in feet
	MaxRunwayLenFt int          `json:"max_runway_len_ft"`
	TA             int          `json:"ta"`
	TL             int          `json:"tl"`
}

func newIndexEntry(a *Airport) *IndexEntry {
	return &IndexEntry{
		Ident:          a.Ident,
		ICAO:           a.ICAO,
		IATA:           a.IATA,
		CC:             a.CC,
		Pos:            a.RefPt,
		MaxRunwayLenFt: a.maxHardRunwayLengthFt(),
		TA:             int(a.TA),
		TL:             int(a.TL),
	}
}

func dashIfEmpty(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func emptyIfDash(s string) string {
	if s == "-" {
		return ""
	}
	return s
}

// writeTo emits the tab separated index.dat line for e.
func (e *IndexEntry) writeTo(w io.Writer) error {
	_, err := fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%f\t%f\t%.0f\t%d\t%d\t%d\n",
		e.Ident, dashIfEmpty(e.ICAO), dashIfEmpty(e.IATA), dashIfEmpty(e.CC),
		e.Pos.Lat, e.Pos.Lon, e.Pos.Elev, e.MaxRunwayLenFt, e.TA, e.TL)
	return err
}

// parseIndexLine parses one index.dat line.
func parseIndexLine(line string) (*IndexEntry, bool) {
	f := strings.Fields(line)
	if len(f) != 10 {
		return nil, false
	}
	e := &IndexEntry{
		Ident: f[0],
		ICAO:  emptyIfDash(f[1]),
		IATA:  emptyIfDash(f[2]),
		CC:    emptyIfDash(f[3]),
	}
	var err error
	if e.Pos.Lat, err = strconv.ParseFloat(f[4], 64); err != nil {
		return nil, false
	}
	if e.Pos.Lon, err = strconv.ParseFloat(f[5], 64); err != nil {
		return nil, false
	}
	if e.Pos.Elev, err = strconv.ParseFloat(f[6], 64); err != nil {
		return nil, false
	}
	if e.MaxRunwayLenFt, err = strconv.Atoi(f[7]); err != nil {
		return nil, false
	}
	if e.TA, err = strconv.Atoi(f[8]); err != nil {
		return nil, false
	}
	if e.TL, err = strconv.Atoi(f[9]); err != nil {
		return nil, false
	}
	return e, true
}

// globalIndex holds one entry per cached airport plus ICAO and IATA
// multimaps. The same code may map to several airports.
type globalIndex struct {
	entries *orderedMap[*IndexEntry]
	icao    map[string][]*IndexEntry
	iata    map[string][]*IndexEntry
}

func newGlobalIndex() *globalIndex {
	return &globalIndex{
		entries: newOrderedMap[*IndexEntry](),
		icao:    make(map[string][]*IndexEntry),
		iata:    make(map[string][]*IndexEntry),
	}
}

func (gi *globalIndex) reset() {
	gi.entries.Clear()
	gi.icao = make(map[string][]*IndexEntry)
	gi.iata = make(map[string][]*IndexEntry)
}

// add inserts e. It reports false if the ident is already indexed.
func (gi *globalIndex) add(e *IndexEntry) bool {
	if !gi.entries.Insert(e.Ident, e) {
		return false
	}
	if e.ICAO != "" {
		gi.icao[e.ICAO] = append(gi.icao[e.ICAO], e)
	}
	if e.IATA != "" {
		gi.iata[e.IATA] = append(gi.iata[e.IATA], e)
	}
	return true
}

func (gi *globalIndex) len() int {
	return gi.entries.Len()
}

// read loads index.dat content. Malformed lines are skipped; duplicate
// idents are reported through onDup and skipped.
func (gi *globalIndex) read(r io.Reader, onDup func(ident string)) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		e, ok := parseIndexLine(scanner.Text())
		if !ok {
			continue
		}
		if !gi.add(e) && onDup != nil {
			onDup(e.Ident)
		}
	}
	return scanner.Err()
}
