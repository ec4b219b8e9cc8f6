package airportdb

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/yegors/airportdb/pkg/logger"
)

// Cache directory entries
const (
	versionFile  = "version"
	airacFile    = "airac_cycle"
	manifestFile = "apt_dats"
	settingsFile = "settings.conf"
	indexFile    = "index.dat"
)

const tileFileHeader = "I\n1200 airportdb cache version 19\n\n"

// cacheSettings are the parse settings a cache was built with.
type cacheSettings struct {
	IFROnly            bool `toml:"ifr_only"`
	NormalizeGateNames bool `toml:"normalize_gate_names"`
}

func (db *Database) cachePath(elem ...string) string {
	return filepath.Join(append([]string{db.cache}, elem...)...)
}

func (db *Database) tilePath(k TileKey) string {
	return db.cachePath(k.bucket().String(), k.String())
}

func cacheVersion(appVersion int) int {
	return appVersion<<16 | cacheFormatVersion
}

// readIntFile returns the leading integer of a file, or -1.
func readIntFile(path string) int {
	data, err := os.ReadFile(path)
	if err != nil {
		return -1
	}
	n, ok := leadingInt(string(data))
	if !ok {
		return -1
	}
	return n
}

func (db *Database) checkCacheVersion(appVersion int) bool {
	version := readIntFile(db.cachePath(versionFile))
	if appVersion == 0 && version != -1 {
		version &= 0xffff
	}
	return version == cacheVersion(appVersion)
}

func (db *Database) checkAIRAC() bool {
	return readIntFile(db.cachePath(airacFile)) == db.airacCycle
}

func (db *Database) checkManifest(sources []string) bool {
	data, err := os.ReadFile(db.cachePath(manifestFile))
	if err != nil {
		return false
	}
	var cached []string
	for _, line := range strings.Split(string(data), "\n") {
		if line = strings.TrimRight(line, "\r"); line != "" {
			cached = append(cached, line)
		}
	}
	if len(cached) != len(sources) {
		return false
	}
	for i := range cached {
		if cached[i] != sources[i] {
			return false
		}
	}
	return true
}

// cacheUpToDate reports whether the cache was built by this format and
// application version, from the same navdata cycle and source files.
func (db *Database) cacheUpToDate(appVersion int, sources []string) bool {
	switch {
	case !db.checkCacheVersion(appVersion):
		db.logger.Info("cache version mismatch")
		return false
	case !db.checkAIRAC():
		db.logger.Info("cache AIRAC cycle mismatch", logger.Int("airac_cycle", db.airacCycle))
		return false
	case !db.checkManifest(sources):
		db.logger.Info("cache source list changed")
		return false
	}
	return true
}

// writeSkeleton recreates the cache directory with its AIRAC and manifest
// files. The version file is left out until commitCache, so a cache whose
// rebuild stopped half way is never taken as up to date.
func (db *Database) writeSkeleton(sources []string) error {
	if err := os.RemoveAll(db.cache); err != nil {
		return fmt.Errorf("failed to remove cache %s: %w", db.cache, err)
	}
	if err := os.MkdirAll(db.cache, 0o755); err != nil {
		return fmt.Errorf("failed to create cache %s: %w", db.cache, err)
	}

	manifest := ""
	if len(sources) > 0 {
		manifest = strings.Join(sources, "\n") + "\n"
	}
	files := []struct{ name, content string }{
		{airacFile, strconv.Itoa(db.airacCycle) + "\n"},
		{manifestFile, manifest},
	}
	for _, f := range files {
		if err := os.WriteFile(db.cachePath(f.name), []byte(f.content), 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", f.name, err)
		}
	}

	if db.overrideSettings {
		return db.writeSettings()
	}
	return nil
}

// commitCache writes the version file once the index and every tile are on
// disk.
func (db *Database) commitCache(appVersion int) error {
	content := strconv.Itoa(cacheVersion(appVersion)) + "\n"
	if err := os.WriteFile(db.cachePath(versionFile), []byte(content), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", versionFile, err)
	}
	return nil
}

func (db *Database) writeSettings() error {
	f, err := os.Create(db.cachePath(settingsFile))
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", settingsFile, err)
	}
	defer f.Close()

	s := cacheSettings{IFROnly: db.ifrOnly, NormalizeGateNames: db.normalizeGateNames}
	if err := toml.NewEncoder(f).Encode(s); err != nil {
		return fmt.Errorf("failed to encode %s: %w", settingsFile, err)
	}
	return nil
}

// readSettings applies the settings a cache was built with. A missing file
// leaves the current settings in place.
func (db *Database) readSettings() error {
	var s cacheSettings
	s.IFROnly = db.ifrOnly
	s.NormalizeGateNames = db.normalizeGateNames
	if _, err := toml.DecodeFile(db.cachePath(settingsFile), &s); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to parse %s: %w", settingsFile, err)
	}
	db.ifrOnly = s.IFROnly
	db.normalizeGateNames = s.NormalizeGateNames
	return nil
}

// readIndex loads index.dat into the global index.
func (db *Database) readIndex() error {
	if !db.overrideSettings {
		if err := db.readSettings(); err != nil {
			return err
		}
	}

	f, err := os.Open(db.cachePath(indexFile))
	if err != nil {
		return fmt.Errorf("failed to open index: %w", err)
	}
	defer f.Close()

	db.index.reset()
	err = db.index.read(f, func(ident string) {
		db.logger.Warn("duplicate airport in index", logger.String("ident", ident))
	})
	if err != nil {
		db.index.reset()
		return fmt.Errorf("failed to read index: %w", err)
	}
	if db.index.len() == 0 {
		return fmt.Errorf("index is empty")
	}
	return nil
}

// writeTileAirport appends a to its tile's cache file.
func (db *Database) writeTileAirport(a *Airport) error {
	k := TileKeyFor(a.RefPt.Lat, a.RefPt.Lon)
	path := db.tilePath(k)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create tile directory: %w", err)
	}

	_, statErr := os.Stat(path)
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open tile %s: %w", k, err)
	}
	w := bufio.NewWriter(f)
	if errors.Is(statErr, os.ErrNotExist) {
		w.WriteString(tileFileHeader)
	}
	writeAptDat(w, a)
	if err := w.Flush(); err != nil {
		f.Close()
		return fmt.Errorf("failed to write tile %s: %w", k, err)
	}
	return f.Close()
}

// writeAptDat emits a in the source grammar with the cache annotations.
func writeAptDat(w io.Writer, a *Airport) {
	fmt.Fprintf(w, "1 %.0f 0 0 %s %s\n", a.RefPt.Elev, a.Ident, a.Name)
	fmt.Fprintf(w, "1302 datum_lat %s\n", formatCoord(a.RefPt.Lat))
	fmt.Fprintf(w, "1302 datum_lon %s\n", formatCoord(a.RefPt.Lon))
	if a.NameOrig != "" {
		fmt.Fprintf(w, "1302 name_orig %s\n", a.NameOrig)
	}
	if a.ICAO != "" {
		fmt.Fprintf(w, "1302 icao_code %s\n", a.ICAO)
	}
	if a.IATA != "" {
		fmt.Fprintf(w, "1302 iata_code %s\n", a.IATA)
	}
	if a.Country != "" {
		fmt.Fprintf(w, "1302 country %s\n", a.Country)
	}
	if a.City != "" {
		fmt.Fprintf(w, "1302 city %s\n", a.City)
	}
	if a.TA != 0 {
		fmt.Fprintf(w, "1302 transition_alt %.0f\n", a.TA)
	}
	if a.TL != 0 {
		fmt.Fprintf(w, "1302 transition_level %.0f\n", a.TL)
	}
	if a.CC != "" {
		fmt.Fprintf(w, "1302 region_code %s\n", a.CC)
	}

	for _, rwy := range a.Runways() {
		e0, e1 := &rwy.Ends[0], &rwy.Ends[1]
		fmt.Fprintf(w, "100 %.2f %d 0 0 0 0 0 "+
			"%s %s %s %.1f %.1f 0 0 0 0 "+
			"%s %s %s %.1f %.1f "+
			"GPA1:%.2f GPA2:%.2f TCH1:%.0f TCH2:%.0f TELEV1:%.0f TELEV2:%.0f\n",
			rwy.Width, int(rwy.Surface),
			e0.ID, formatCoord(e0.Threshold.Lat), formatCoord(e0.Threshold.Lon), e0.Displ, e0.Blast,
			e1.ID, formatCoord(e1.Threshold.Lat), formatCoord(e1.Threshold.Lon), e1.Displ, e1.Blast,
			e0.GPA, e1.GPA, e0.TCH, e1.TCH, e0.Threshold.Elev, e1.Threshold.Elev)
	}
	for _, rs := range a.RampStarts() {
		fmt.Fprintf(w, "1300 %s %s %.2f %s all %s\n",
			formatCoord(rs.Pos.Lat), formatCoord(rs.Pos.Lon), rs.Heading, rs.Type, rs.Name)
	}
	for _, f := range a.freqs {
		fmt.Fprintf(w, "%d %d %s\n", int(f.Type)+1050, f.Freq/1000, f.Name)
	}
	fmt.Fprintln(w)
}

// formatCoord writes the shortest decimal that parses back to v, so a
// position next to a tile edge stays in its tile.
func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
