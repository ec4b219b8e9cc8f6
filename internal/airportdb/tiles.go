package airportdb

import (
	"fmt"
	"math"
	"os"

	"github.com/yegors/airportdb/internal/geo"
	"github.com/yegors/airportdb/pkg/logger"
)

// TileKey identifies a 1x1 degree tile by the floor of its south-west
// corner.
type TileKey struct {
	Lat int `json:"lat"`
	Lon int `json:"lon"`
}

// TileKeyFor returns the tile containing (lat, lon). Longitudes wrap into
// [-180, 180).
func TileKeyFor(lat, lon float64) TileKey {
	return makeTileKey(int(math.Floor(lat)), int(math.Floor(lon)))
}

func makeTileKey(lat, lon int) TileKey {
	for lon >= 180 {
		lon -= 360
	}
	for lon < -180 {
		lon += 360
	}
	return TileKey{Lat: lat, Lon: lon}
}

func (k TileKey) String() string {
	return fmt.Sprintf("%+03d%+04d", k.Lat, k.Lon)
}

// bucket returns the 10x10 degree directory the tile is cached under.
func (k TileKey) bucket() TileKey {
	return TileKey{
		Lat: int(math.Floor(float64(k.Lat)/10)) * 10,
		Lon: int(math.Floor(float64(k.Lon)/10)) * 10,
	}
}

// tile is the set of resident airport idents in a 1x1 degree cell.
type tile struct {
	key      TileKey
	airports *orderedMap[struct{}]
}

func (tx *Tx) geoLink(a *Airport) {
	if a.geoLinked {
		return
	}
	key := TileKeyFor(a.RefPt.Lat, a.RefPt.Lon)
	t, ok := tx.db.tiles[key]
	if !ok {
		t = &tile{key: key, airports: newOrderedMap[struct{}]()}
		tx.db.tiles[key] = t
	}
	t.airports.Insert(a.Ident, struct{}{})
	a.geoLinked = true
}

func (tx *Tx) geoUnlink(a *Airport) {
	if !a.geoLinked {
		return
	}
	if t, ok := tx.db.tiles[TileKeyFor(a.RefPt.Lat, a.RefPt.Lon)]; ok {
		t.airports.Delete(a.Ident)
	}
	a.geoLinked = false
}

// loadTile makes tile k resident, reading its cache file on first use. It
// reports whether the tile was newly created.
func (tx *Tx) loadTile(k TileKey) bool {
	db := tx.db
	if _, ok := db.tiles[k]; ok {
		return false
	}
	db.tiles[k] = &tile{key: k, airports: newOrderedMap[struct{}]()}

	path := db.tilePath(k)
	if _, err := os.Stat(path); err == nil {
		n := tx.readAptDat(path, false, nil, false)
		db.logger.Debug("tile loaded", logger.String("tile", k.String()), logger.Int("airports", n))
	}
	return true
}

// freeTile drops tile k together with all of its airports.
func (tx *Tx) freeTile(k TileKey) {
	db := tx.db
	t, ok := db.tiles[k]
	if !ok {
		return
	}
	for _, ident := range t.airports.Keys() {
		if a, ok := db.apts.Get(ident); ok {
			a.unload()
			a.geoLinked = false
			db.apts.Delete(ident)
		}
	}
	delete(db.tiles, k)
}

// LoadNearestTiles makes the 3x3 tiles around (lat, lon) resident.
func (tx *Tx) LoadNearestTiles(lat, lon float64) {
	center := TileKeyFor(lat, lon)
	var loaded []string
	for i := -1; i <= 1; i++ {
		for j := -1; j <= 1; j++ {
			k := makeTileKey(center.Lat+i, center.Lon+j)
			if tx.loadTile(k) {
				loaded = append(loaded, k.String())
			}
		}
	}
	if len(loaded) > 0 {
		tx.db.metrics.tileEvent("load", len(loaded))
		tx.queue(EventTilesLoaded, loaded)
	}
}

// UnloadDistantTiles frees every tile more than one tile away from
// (lat, lon) in latitude or longitude.
func (tx *Tx) UnloadDistantTiles(lat, lon float64) {
	center := TileKeyFor(lat, lon)
	tx.unloadTiles(func(k TileKey) bool {
		return math.Abs(float64(k.Lat-center.Lat)) > 1 ||
			geo.LonDelta(float64(k.Lon), float64(center.Lon)) > 1
	}, true)
}

// UnloadAll frees every tile and airport. The global index stays resident.
func (tx *Tx) UnloadAll() {
	tx.unloadTiles(func(TileKey) bool { return true }, true)
}

func (tx *Tx) unloadTiles(match func(TileKey) bool, notify bool) {
	var freed []string
	for _, k := range tx.Tiles() {
		if match(k) {
			tx.freeTile(k)
			freed = append(freed, k.String())
		}
	}
	if len(freed) > 0 && notify {
		tx.db.metrics.tileEvent("unload", len(freed))
		tx.queue(EventTilesUnloaded, freed)
	}
}

// FindNearest returns the resident airports in the 3x3 tiles around
// (lat, lon) that lie within the load limit, loading each of them.
func (tx *Tx) FindNearest(lat, lon float64) []*Airport {
	db := tx.db
	pos := geo.ToECEF(lat, lon, 0)
	center := TileKeyFor(lat, lon)

	var out []*Airport
	for i := -1; i <= 1; i++ {
		for j := -1; j <= 1; j++ {
			t, ok := db.tiles[makeTileKey(center.Lat+i, center.Lon+j)]
			if !ok {
				continue
			}
			for _, ident := range t.airports.Keys() {
				a, ok := db.apts.Get(ident)
				if !ok {
					continue
				}
				ecef := geo.ToECEFFeet(a.RefPt.Lat, a.RefPt.Lon, a.RefPt.Elev)
				if geo.Dist(pos, ecef) < db.loadLimit && a.load() {
					out = append(out, a)
				}
			}
		}
	}
	return out
}
