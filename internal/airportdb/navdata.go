package airportdb

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/yegors/airportdb/pkg/logger"
)

// AIRACCycle detects the navdata cycle installed in simDir, or returns -1.
func AIRACCycle(simDir string) int {
	for _, path := range []string{
		filepath.Join(simDir, "Custom Data", "earth_nav.dat"),
		filepath.Join(simDir, "Resources", "default data", "earth_nav.dat"),
	} {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if cycle, ok := cycleFromEarthNav(path); ok {
			return cycle
		}
		break
	}

	for _, path := range []string{
		filepath.Join(simDir, "Custom Data", "GNS430", "navdata", "cycle_info.txt"),
		filepath.Join(simDir, "Resources", "GNS430", "navdata", "cycle_info.txt"),
	} {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if cycle, ok := cycleFromCycleInfo(path); ok {
			return cycle
		}
		break
	}
	return -1
}

// cycleFromEarthNav looks for " data cycle N" in the header lines of an
// earth_nav.dat file.
func cycleFromEarthNav(path string) (int, bool) {
	f, err := os.Open(path)
	if err != nil {
		return 0, false
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for i := 0; i < 21 && scanner.Scan(); i++ {
		line := scanner.Text()
		if !strings.HasPrefix(line, "1100 ") && !strings.HasPrefix(line, "1150 ") {
			continue
		}
		_, rest, found := strings.Cut(line, " data cycle ")
		if !found {
			continue
		}
		if cycle, ok := leadingInt(rest); ok {
			return cycle, true
		}
	}
	return 0, false
}

// cycleFromCycleInfo parses "AIRAC cycle : N" from a GNS430 cycle_info.txt.
func cycleFromCycleInfo(path string) (int, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, false
	}
	_, rest, found := strings.Cut(string(data), "AIRAC cycle")
	if !found {
		return 0, false
	}
	_, rest, found = strings.Cut(rest, ": ")
	if !found {
		return 0, false
	}
	return leadingInt(rest)
}

// loadNavdata applies the CIFP supplement: custom procedures first, then
// the default set, which must exist.
func (tx *Tx) loadNavdata() error {
	db := tx.db

	custom := filepath.Join(db.simDir, "Custom Data", "CIFP")
	if info, err := os.Stat(custom); err == nil && info.IsDir() {
		if err := tx.loadCIFPDir(custom); err != nil {
			db.logger.Warn("custom CIFP data unusable", logger.String("dir", custom), logger.Error(err))
		}
	}

	def := filepath.Join(db.simDir, "Resources", "default data", "CIFP")
	if err := tx.loadCIFPDir(def); err != nil {
		return fmt.Errorf("%w: %w", ErrNavdata, err)
	}
	return nil
}

// loadCIFPDir reads <IDENT>.dat procedure files for airports in the primary
// index that no earlier directory supplied.
func (tx *Tx) loadCIFPDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", dir, err)
	}

	var failed int
	for _, entry := range entries {
		ident, ok := strings.CutSuffix(entry.Name(), ".dat")
		if !ok || entry.IsDir() {
			continue
		}
		a, ok := tx.db.apts.Get(strings.ToUpper(ident))
		if !ok || a.InNavDB {
			continue
		}
		if err := loadCIFP(a, filepath.Join(dir, entry.Name())); err != nil {
			tx.db.logger.Warn("failed to read CIFP file",
				logger.String("ident", ident), logger.Error(err))
			failed++
			continue
		}
		a.InNavDB = true
	}
	if failed > 0 {
		tx.db.logger.Debug("CIFP files skipped", logger.String("dir", dir), logger.Int("count", failed))
	}
	return nil
}

// loadCIFP reads approach glidepaths and runway threshold data for a from
// an ARINC 424 style procedure file.
func loadCIFP(a *Airport, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		switch {
		case strings.HasPrefix(line, "APPCH:"):
			parseCIFPApproach(a, line[len("APPCH:"):])
		case strings.HasPrefix(line, "RWY:"):
			parseCIFPRunway(a, line[len("RWY:"):])
		}
	}
	return scanner.Err()
}

func parseCIFPApproach(a *Airport, body string) {
	a.HaveIAPs = true

	comps := strings.Split(body, ",")
	if len(comps) < 29 || !strings.HasPrefix(comps[4], "RW") {
		return
	}
	gpa := parseFloat(comps[28])
	if !(gpa < 0 && gpa >= -1000) {
		return
	}
	id := NormalizeRunwayID(strings.TrimSpace(comps[4][2:]))
	if rwy, end, ok := a.FindRunway(id); ok {
		rwy.Ends[end].GPA = gpa / -100
	}
}

func parseCIFPRunway(a *Airport, body string) {
	comps := strings.Split(body, ",")
	if len(comps) != 8 {
		return
	}
	for i := range comps {
		comps[i] = strings.TrimSpace(comps[i])
	}
	if !strings.HasPrefix(comps[0], "RW") {
		return
	}
	rwy, end, ok := a.FindRunway(NormalizeRunwayID(comps[0][2:]))
	if !ok {
		return
	}
	if elev, ok := leadingInt(comps[3]); ok && IsValidElev(float64(elev)) {
		rwy.Ends[end].Threshold.Elev = float64(elev)
	}
	if tch, ok := leadingInt(comps[7]); ok && isValidTCH(float64(tch)) {
		rwy.Ends[end].TCH = float64(tch)
	}
}
