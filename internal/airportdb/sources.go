package airportdb

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"
)

const aptDatRelPath = "Earth nav data/apt.dat"

// FindSources lists the apt.dat files of a simulator installation in
// priority order: every scenery pack from scenery_packs.ini, then the global
// default airport data. Files are listed whether or not they exist.
func FindSources(simDir string) []string {
	var sources []string

	f, err := os.Open(filepath.Join(simDir, "Custom Scenery", "scenery_packs.ini"))
	if err == nil {
		scanner := bufio.NewScanner(f)
		for scanner.Scan() {
			pack, ok := strings.CutPrefix(scanner.Text(), "SCENERY_PACK ")
			if !ok {
				continue
			}
			pack = strings.TrimSpace(pack)
			if pack == "" {
				continue
			}
			sources = append(sources, filepath.Join(simDir, filepath.FromSlash(pack), aptDatRelPath))
		}
		f.Close()
	}

	global := filepath.Join(simDir, "Resources", "default scenery", "default apt dat", aptDatRelPath)
	if _, err := os.Stat(global); err != nil {
		global = filepath.Join(simDir, "Global Scenery", "Global Airports", aptDatRelPath)
	}
	return append(sources, global)
}
