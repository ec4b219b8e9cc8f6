package airportdb

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/yegors/airportdb/internal/geo"
	"github.com/yegors/airportdb/pkg/logger"
)

// Version of the cache layout; bumped whenever the cache format changes.
const cacheFormatVersion = 19

// DefaultLoadLimit is the radius within which FindNearest loads airports.
const DefaultLoadLimit = 8 * geo.NMToMeters

var (
	// ErrNoAirports is returned when no source file yielded an airport.
	ErrNoAirports = errors.New("no airports found in any source file")
	// ErrNavdata is returned when the navigation data supplement fails.
	ErrNavdata = errors.New("navigation data unavailable")
)

// Options configures a Database.
type Options struct {
	SimDir             string
	CacheDir           string
	IFROnly            bool
	NormalizeGateNames bool
	OverrideSettings   bool
	LoadLimit          float64 // meters
	Events             EventSink
	Metrics            *Metrics
}

// DefaultOptions returns options with IFR filtering on and the default
// load limit.
func DefaultOptions(simDir, cacheDir string) Options {
	return Options{
		SimDir:    simDir,
		CacheDir:  cacheDir,
		IFROnly:   true,
		LoadLimit: DefaultLoadLimit,
	}
}

// Database is the airport database. All access goes through a *Tx obtained
// from Lock or View.
type Database struct {
	mu sync.Mutex

	logger  *logger.Logger
	simDir  string
	cache   string
	events  EventSink
	metrics *Metrics

	ifrOnly            bool
	normalizeGateNames bool
	overrideSettings   bool
	loadLimit          float64
	airacCycle         int

	apts  *orderedMap[*Airport]
	tiles map[TileKey]*tile
	index *globalIndex

	pending []Event
}

// New creates an empty database. Call Open before use.
func New(opts Options, log *logger.Logger) (*Database, error) {
	if opts.SimDir == "" {
		return nil, fmt.Errorf("sim directory is required")
	}
	if opts.CacheDir == "" {
		return nil, fmt.Errorf("cache directory is required")
	}
	if log == nil {
		log = logger.NewNop()
	}
	if opts.LoadLimit <= 0 {
		opts.LoadLimit = DefaultLoadLimit
	}

	return &Database{
		logger:             log.Named("airportdb"),
		simDir:             opts.SimDir,
		cache:              opts.CacheDir,
		events:             opts.Events,
		metrics:            opts.Metrics,
		ifrOnly:            opts.IFROnly,
		normalizeGateNames: opts.NormalizeGateNames,
		overrideSettings:   opts.OverrideSettings,
		loadLimit:          opts.LoadLimit,
		airacCycle:         -1,
		apts:               newOrderedMap[*Airport](),
		tiles:              make(map[TileKey]*tile),
		index:              newGlobalIndex(),
	}, nil
}

// Tx is a lock token. Every query and lifecycle operation is a method on
// Tx, so it can only be reached while the database lock is held.
type Tx struct {
	db *Database
}

// Lock acquires the database lock.
func (db *Database) Lock() *Tx {
	db.mu.Lock()
	return &Tx{db: db}
}

// Unlock releases the lock and publishes lifecycle events queued while it
// was held. The Tx must not be used afterwards.
func (tx *Tx) Unlock() {
	db := tx.db
	tx.db = nil
	pending := db.pending
	db.pending = nil
	db.metrics.setResident(db.apts.Len(), len(db.tiles))
	db.metrics.setIndexEntries(db.index.len())
	db.mu.Unlock()

	if db.events == nil {
		return
	}
	for _, ev := range pending {
		db.events.Publish(ev)
	}
}

// View runs fn with the lock held.
func (db *Database) View(fn func(tx *Tx) error) error {
	tx := db.Lock()
	defer tx.Unlock()
	return fn(tx)
}

func (tx *Tx) queue(typ EventType, tiles []string) {
	tx.db.pending = append(tx.db.pending, Event{
		Type:     typ,
		Tiles:    tiles,
		Airports: tx.db.apts.Len(),
		Time:     time.Now(),
	})
}

// Open loads the cache, rebuilding it from the simulator's source files
// when it is stale. It must be called once, before concurrent use begins.
// On return no tiles are resident and only the global index is kept.
func (db *Database) Open(appVersion int) error {
	tx := db.Lock()
	defer tx.Unlock()

	start := time.Now()
	rebuilt, err := tx.open(appVersion)
	tx.unloadTiles(func(TileKey) bool { return true }, false)
	switch {
	case err != nil:
		db.index.reset()
		db.metrics.cacheOpened("failed", 0)
		return err
	case rebuilt:
		db.metrics.cacheOpened("rebuilt", time.Since(start))
		tx.queue(EventCacheRebuilt, nil)
	default:
		db.metrics.cacheOpened("cached", 0)
		tx.queue(EventCacheLoaded, nil)
	}
	db.logger.Info("airport database ready",
		logger.Int("index_entries", db.index.len()),
		logger.Int("airac_cycle", db.airacCycle),
		logger.Bool("rebuilt", rebuilt),
		logger.Duration("elapsed", time.Since(start)))
	return nil
}

func (tx *Tx) open(appVersion int) (bool, error) {
	db := tx.db
	sources := FindSources(db.simDir)
	db.airacCycle = AIRACCycle(db.simDir)

	if db.cacheUpToDate(appVersion, sources) {
		err := db.readIndex()
		if err == nil {
			return false, nil
		}
		db.logger.Warn("cache index unreadable, rebuilding", logger.Error(err))
	}

	if err := tx.rebuild(appVersion, sources); err != nil {
		return false, err
	}
	return true, nil
}

func (tx *Tx) rebuild(appVersion int, sources []string) error {
	db := tx.db
	db.logger.Info("rebuilding airport cache",
		logger.String("cache_dir", db.cache),
		logger.Int("sources", len(sources)))

	db.index.reset()
	nn := newNameNormalizer()
	for i, path := range sources {
		n := tx.readAptDat(path, true, nn, i == len(sources)-1)
		db.logger.Debug("source parsed", logger.String("path", path), logger.Int("airports", n))
	}

	if err := tx.loadNavdata(); err != nil {
		return err
	}
	if db.apts.Len() == 0 {
		return ErrNoAirports
	}

	if err := db.writeSkeleton(sources); err != nil {
		return err
	}

	idx, err := os.Create(db.cachePath(indexFile))
	if err != nil {
		return fmt.Errorf("failed to create index: %w", err)
	}
	for _, ident := range db.apts.Keys() {
		a, _ := db.apts.Get(ident)
		if db.ifrOnly && !a.HaveIAPs {
			tx.removeAirport(a)
			continue
		}
		a.load()
		e := newIndexEntry(a)
		db.index.add(e)
		if err := e.writeTo(idx); err != nil {
			idx.Close()
			return fmt.Errorf("failed to write index: %w", err)
		}
	}
	if err := idx.Close(); err != nil {
		return fmt.Errorf("failed to write index: %w", err)
	}

	for _, a := range db.apts.Values() {
		if err := db.writeTileAirport(a); err != nil {
			return err
		}
	}
	return db.commitCache(appVersion)
}

// insertAirport adds a parsed airport to the primary index and its tile.
func (tx *Tx) insertAirport(a *Airport) bool {
	if !tx.db.apts.Insert(a.Ident, a) {
		return false
	}
	tx.geoLink(a)
	return true
}

func (tx *Tx) removeAirport(a *Airport) {
	tx.geoUnlink(a)
	tx.db.apts.Delete(a.Ident)
}

// lookupAirport finds a resident airport and loads it.
func (tx *Tx) lookupAirport(ident string) (*Airport, bool) {
	a, ok := tx.db.apts.Get(strings.ToUpper(ident))
	if !ok {
		return nil, false
	}
	a.load()
	return a, true
}

// Lookup loads the tile containing (lat, lon) and returns the airport
// ident if it is resident.
func (tx *Tx) Lookup(ident string, lat, lon float64) (*Airport, bool) {
	tx.loadTile(TileKeyFor(lat, lon))
	return tx.lookupAirport(ident)
}

// LookupByIdent returns the airport with the given ident, loading its tile
// if needed.
func (tx *Tx) LookupByIdent(ident string) (*Airport, bool) {
	e, ok := tx.db.index.entries.Get(strings.ToUpper(ident))
	if !ok {
		return nil, false
	}
	return tx.Lookup(e.Ident, e.Pos.Lat, e.Pos.Lon)
}

func (tx *Tx) lookupEntries(entries []*IndexEntry, fn func(*Airport)) int {
	for _, e := range entries {
		a, ok := tx.Lookup(e.Ident, e.Pos.Lat, e.Pos.Lon)
		if !ok {
			tx.db.logger.Warn("airport database index is damaged",
				logger.String("ident", e.Ident),
				logger.String("tile", TileKeyFor(e.Pos.Lat, e.Pos.Lon).String()))
			tx.db.metrics.indexDamaged()
			continue
		}
		if fn != nil {
			fn(a)
		}
	}
	return len(entries)
}

// LookupByICAO calls fn for every airport with the given ICAO code and
// returns the number of index matches.
func (tx *Tx) LookupByICAO(icao string, fn func(*Airport)) int {
	return tx.lookupEntries(tx.db.index.icao[strings.ToUpper(icao)], fn)
}

// LookupByIATA calls fn for every airport with the given IATA code and
// returns the number of index matches.
func (tx *Tx) LookupByIATA(iata string, fn func(*Airport)) int {
	return tx.lookupEntries(tx.db.index.iata[strings.ToUpper(iata)], fn)
}

// LookupGlobal returns the last airport reported for icao.
func (tx *Tx) LookupGlobal(icao string) (*Airport, bool) {
	var found *Airport
	tx.LookupByICAO(icao, func(a *Airport) { found = a })
	return found, found != nil
}

// IndexEntry returns the index entry for ident.
func (tx *Tx) IndexEntry(ident string) (IndexEntry, bool) {
	e, ok := tx.db.index.entries.Get(strings.ToUpper(ident))
	if !ok {
		return IndexEntry{}, false
	}
	return *e, true
}

// WalkIndex visits every index entry in ident order and returns the number
// of entries.
func (tx *Tx) WalkIndex(fn func(e IndexEntry)) int {
	tx.db.index.entries.Each(func(_ string, e *IndexEntry) bool {
		if fn != nil {
			fn(*e)
		}
		return true
	})
	return tx.db.index.len()
}

// FindRunway returns the runway of a with an end named id, loading a so
// that the runway geometry is available.
func (tx *Tx) FindRunway(a *Airport, id string) (*Runway, int, bool) {
	a.load()
	return a.FindRunway(id)
}

// MatchingAirportInTileWithTATL returns the first airport in the tile at
// (lat, lon) that publishes a transition altitude or level and shares the
// ICAO country prefix of icao. An unknown prefix matches any airport.
func (tx *Tx) MatchingAirportInTileWithTATL(lat, lon float64, icao string) (*Airport, bool) {
	prefix := ICAOCountryPrefix(icao)
	key := TileKeyFor(lat, lon)
	tx.loadTile(key)
	t, ok := tx.db.tiles[key]
	if !ok {
		return nil, false
	}
	for _, ident := range t.airports.Keys() {
		a, ok := tx.db.apts.Get(ident)
		if !ok || (a.TA == 0 && a.TL == 0) {
			continue
		}
		if prefix == "" || prefix == ICAOCountryPrefix(a.ICAO) {
			a.load()
			return a, true
		}
	}
	return nil, false
}

// SetLoadLimit sets the FindNearest radius in meters.
func (tx *Tx) SetLoadLimit(limit float64) {
	tx.db.loadLimit = limit
}

// LoadLimit returns the FindNearest radius in meters.
func (tx *Tx) LoadLimit() float64 {
	return tx.db.loadLimit
}

// NumAirports returns the number of resident airports.
func (tx *Tx) NumAirports() int {
	return tx.db.apts.Len()
}

// IndexSize returns the number of global index entries.
func (tx *Tx) IndexSize() int {
	return tx.db.index.len()
}

// AIRACCycle returns the navdata cycle detected by Open, or -1.
func (tx *Tx) AIRACCycle() int {
	return tx.db.airacCycle
}

// Tiles returns the resident tiles in order.
func (tx *Tx) Tiles() []TileKey {
	keys := make([]TileKey, 0, len(tx.db.tiles))
	for k := range tx.db.tiles {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Lat != keys[j].Lat {
			return keys[i].Lat < keys[j].Lat
		}
		return keys[i].Lon < keys[j].Lon
	})
	return keys
}

// TileAirports returns the idents of the resident airports in tile k.
func (tx *Tx) TileAirports(k TileKey) []string {
	t, ok := tx.db.tiles[k]
	if !ok {
		return nil
	}
	return t.airports.Keys()
}
