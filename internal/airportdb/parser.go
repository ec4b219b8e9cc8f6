package airportdb

import (
	"bufio"
	"os"
	"strconv"
	"strings"

	"github.com/yegors/airportdb/internal/geo"
	"github.com/yegors/airportdb/pkg/logger"
)

// aptDatParser holds the state of a single apt.dat parse.
type aptDatParser struct {
	tx   *Tx
	log  *logger.Logger
	path string
	nn   *nameNormalizer // nil for cache files
	fill bool

	version int
	lineNum int
	cur     *Airport // record being built
	dup     *Airport // existing record the skipped header refers to
	count   int
}

// readAptDat parses an apt.dat file into the primary index and returns the
// number of airports added. Names are transliterated when nn is set. With
// fillInDups, metadata rows of records whose ident is already known
// back-fill the existing airport.
func (tx *Tx) readAptDat(path string, failOK bool, nn *nameNormalizer, fillInDups bool) int {
	log := tx.db.logger.With(logger.String("path", path))

	f, err := os.Open(path)
	if err != nil {
		if !failOK {
			log.Error("can't open airport data file", logger.Error(err))
		}
		return 0
	}
	defer f.Close()

	p := &aptDatParser{tx: tx, log: log, path: path, nn: nn, fill: fillInDups}
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		p.lineNum++
		p.parseLine(strings.TrimRight(scanner.Text(), "\r"))
	}
	if err := scanner.Err(); err != nil {
		log.Warn("error reading airport data file", logger.Int("line", p.lineNum), logger.Error(err))
	}
	p.flush()
	return p.count
}

func (p *aptDatParser) parseLine(line string) {
	if p.lineNum == 2 {
		p.version = atoi(line)
		return
	}

	comps := strings.Fields(line)
	if len(comps) == 0 {
		p.flush()
		return
	}
	row, err := strconv.Atoi(comps[0])
	if err != nil {
		return
	}

	switch row {
	case 1, 16, 17:
		p.flush()
		if row == 1 {
			p.parseHeader(comps)
		}
		return
	}

	if p.cur == nil {
		if p.dup != nil && row == 1302 && len(comps) >= 3 {
			p.fillDup(comps)
		}
		return
	}

	switch {
	case row == 21:
		applyVGSI(p.cur, comps)
	case row >= 50 && row <= 56, row >= 1050 && row <= 1056:
		p.parseFreq(row, line)
	case row == 100:
		p.parseRunway(comps)
	case row == 1300:
		p.parseRampStart(comps)
	case row == 1302 && len(comps) >= 3:
		p.parseMeta(comps)
	}
}

// flush commits the current airport. Airports without runways are dropped.
func (p *aptDatParser) flush() {
	a := p.cur
	p.cur, p.dup = nil, nil
	if a == nil || a.NumRunways() == 0 {
		return
	}
	if p.tx.insertAirport(a) {
		p.count++
	}
}

// parseHeader handles `1 elev x x ident name...`.
func (p *aptDatParser) parseHeader(comps []string) {
	if len(comps) < 5 {
		p.log.Debug("airport header too short", logger.Int("line", p.lineNum))
		return
	}
	elev := parseFloat(comps[1])
	if !IsValidElev(elev) {
		p.log.Debug("airport elevation invalid", logger.Int("line", p.lineNum))
		return
	}
	ident := strings.ToUpper(comps[4])
	if existing, ok := p.tx.db.apts.Get(ident); ok {
		if p.fill {
			p.dup = existing
		}
		return
	}

	a := newAirport(ident, elev)
	name := strings.Join(comps[5:], " ")
	if p.nn != nil {
		a.NameOrig = name
		a.Name = p.nn.Normalize(name)
	} else {
		a.Name = name
	}
	p.cur = a
}

// parseRunway handles a land runway row. Cache files append
// GPA1: GPA2: TCH1: TCH2: TELEV1: TELEV2: annotations.
func (p *aptDatParser) parseRunway(comps []string) {
	a := p.cur
	if len(comps) < 8+9+5 {
		p.log.Debug("runway row too short", logger.String("ident", a.Ident), logger.Int("line", p.lineNum))
		return
	}
	surf := Surface(atoi(comps[2]))
	if p.tx.db.ifrOnly && !surf.IsHard() {
		return
	}

	rwy := &Runway{Width: parseFloat(comps[1]), Surface: surf}
	if !(rwy.Width > 0) {
		p.log.Debug("runway width invalid", logger.String("ident", a.Ident), logger.Int("line", p.lineNum))
		return
	}
	for i, off := range [2]int{8, 17} {
		rwy.Ends[i] = RunwayEnd{
			ID: NormalizeRunwayID(comps[off]),
			Threshold: geo.Position{
				Lat:  parseFloat(comps[off+1]),
				Lon:  parseFloat(comps[off+2]),
				Elev: a.RefPt.Elev,
			},
			Displ: parseFloat(comps[off+3]),
			Blast: parseFloat(comps[off+4]),
			TCH:   defaultTCH,
		}
	}
	rwy.JointID = rwy.Ends[0].ID + rwy.Ends[1].ID
	rwy.RevJointID = rwy.Ends[1].ID + rwy.Ends[0].ID

	if len(comps) >= 28 {
		parseRunwayAnnotations(rwy, comps[22:28])
	}

	for i := range rwy.Ends {
		if reason, ok := rwy.Ends[i].validate(); !ok {
			p.log.Debug("runway end rejected",
				logger.String("ident", a.Ident),
				logger.String("runway", rwy.Ends[i].ID),
				logger.String("reason", reason),
				logger.Int("line", p.lineNum))
			return
		}
	}

	t0, t1 := rwy.Ends[0].Threshold, rwy.Ends[1].Threshold
	ends := geo.Dist(geo.ToECEFFeet(t0.Lat, t0.Lon, t0.Elev), geo.ToECEFFeet(t1.Lat, t1.Lon, t1.Elev))
	if ends < minRunwayLength {
		p.log.Debug("runway too short", logger.String("ident", a.Ident), logger.String("runway", rwy.JointID))
		return
	}

	if !a.addRunway(rwy) {
		p.log.Debug("duplicate runway", logger.String("ident", a.Ident), logger.String("runway", rwy.JointID))
		return
	}

	if a.geom != nil {
		rwy.computeGeometry(a)
	} else if a.RefPt.IsNull() {
		a.autoRefPt()
	}
}

func parseRunwayAnnotations(rwy *Runway, comps []string) {
	prefixes := [...]string{"GPA1:", "GPA2:", "TCH1:", "TCH2:", "TELEV1:", "TELEV2:"}
	var vals [6]float64
	for i, prefix := range prefixes {
		v, ok := strings.CutPrefix(comps[i], prefix)
		if !ok {
			return
		}
		vals[i] = parseFloat(v)
	}
	rwy.Ends[0].GPA, rwy.Ends[1].GPA = vals[0], vals[1]
	rwy.Ends[0].TCH, rwy.Ends[1].TCH = vals[2], vals[3]
	rwy.Ends[0].Threshold.Elev, rwy.Ends[1].Threshold.Elev = vals[4], vals[5]
}

// parseRampStart handles `1300 lat lon hdg type classes name...`.
func (p *aptDatParser) parseRampStart(comps []string) {
	a := p.cur
	if len(comps) < 7 {
		return
	}

	var name string
	if p.tx.db.normalizeGateNames {
		for _, c := range comps[6:] {
			if isGateToken(c) {
				name = c
				break
			}
		}
		if name == "" {
			return
		}
	} else {
		name = strings.Join(comps[6:], " ")
	}
	if a.rampStarts.Has(name) {
		return
	}

	lat, lon, hdg := parseFloat(comps[1]), parseFloat(comps[2]), parseFloat(comps[3])
	if !IsValidLat(lat) || !IsValidLon(lon) || !geo.IsValidHeading(hdg) {
		p.log.Debug("ramp start invalid", logger.String("ident", a.Ident), logger.String("name", name))
		return
	}
	a.rampStarts.Insert(name, &RampStart{
		Name:    name,
		Pos:     geo.Position{Lat: lat, Lon: lon, Elev: a.RefPt.Elev},
		Heading: hdg,
		Type:    parseRampStartType(comps[4]),
	})
}

func isGateToken(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if !isDigit(s[i]) && (s[i] < 'A' || s[i] > 'Z') {
			return false
		}
	}
	return true
}

// parseFreq handles rows 50-56 (10 kHz units) and 1050-1056 (kHz units).
func (p *aptDatParser) parseFreq(row int, line string) {
	a := p.cur
	comps := strings.Fields(strings.NewReplacer("_", " ", "-", " ").Replace(line))
	// Unnamed frequencies are written back as `row freq`.
	if len(comps) < 2 {
		return
	}

	n, ok := leadingInt(comps[1])
	if !ok || n <= 0 {
		return
	}
	raw := uint64(n)
	f := Frequency{}
	if row >= 1050 {
		f.Type = FrequencyType(row - 1050)
		f.Freq = raw * 1000
	} else {
		f.Type = FrequencyType(row - 50)
		f.Freq = raw * 10000
	}

	var words []string
	for _, c := range comps[2:] {
		c = strings.ToUpper(c)
		if len(comps) > 3 && (c == a.ICAO || c == "FREQUENCY") {
			continue
		}
		words = append(words, c)
	}
	f.Name = strings.Join(words, " ")
	a.freqs = append(a.freqs, f)
}

// parseMeta handles `1302 key value...`.
func (p *aptDatParser) parseMeta(comps []string) {
	a := p.cur
	key, val := comps[1], comps[2]
	text := strings.Join(comps[2:], " ")

	switch key {
	case "icao_code":
		if IsValidICAO(val) {
			a.ICAO = val
		}
	case "iata_code":
		if IsValidIATA(val) {
			a.IATA = val
		}
	case "country":
		a.Country = p.countryName(val, text)
	case "city":
		a.City = text
	case "name_orig":
		a.NameOrig = text
	case "transition_alt":
		if ta, ok := parseTA(val); ok {
			a.TA = ta
		}
	case "transition_level":
		if tl, ok := parseTL(val); ok {
			a.TL = tl
		}
	case "datum_lat":
		lat := parseFloat(val)
		if !IsValidLat(lat) {
			p.log.Debug("airport datum latitude invalid", logger.String("ident", a.Ident))
			p.cur = nil
			return
		}
		a.RefPt.Lat = lat
	case "datum_lon":
		if lon := parseFloat(val); IsValidLon(lon) {
			a.RefPt.Lon = lon
		}
	case "region_code":
		if val != "-" {
			a.CC = val
		}
	}
}

// fillDup back-fills an existing airport from the metadata rows of a
// duplicate record.
func (p *aptDatParser) fillDup(comps []string) {
	a := p.dup
	key, val := comps[1], comps[2]
	text := strings.Join(comps[2:], " ")

	switch key {
	case "iata_code":
		if IsValidIATA(val) && !IsValidIATA(a.IATA) {
			a.IATA = val
		}
	case "transition_alt":
		if ta, ok := parseTA(val); ok && a.TA == 0 {
			a.TA = ta
		}
	case "transition_level":
		if tl, ok := parseTL(val); ok && a.TL == 0 {
			a.TL = tl
		}
	case "region_code":
		if val != "-" && a.CC == "" {
			a.CC = val
		}
	case "country":
		if val != "-" && a.Country == "" {
			a.Country = p.countryName(val, text)
		}
	case "city":
		if val != "-" && a.City == "" {
			a.City = text
		}
	}
}

// countryName expands 3-letter ISO 3166 codes found in newer files.
func (p *aptDatParser) countryName(code, text string) string {
	if p.version >= 1200 && IsValidIATA(code) {
		if name, ok := CountryName(code); ok {
			return name
		}
	}
	return text
}

func parseTA(val string) (float64, bool) {
	ta := float64(atoi(val))
	return ta, IsValidElev(ta)
}

// parseTL treats values below 600 as flight levels.
func parseTL(val string) (float64, bool) {
	tl := float64(atoi(val))
	if tl < 600 {
		tl *= 100
	}
	return tl, IsValidElev(tl)
}
