package airportdb

import "time"

// EventType names a lifecycle event.
type EventType string

const (
	EventTilesLoaded   EventType = "tiles_loaded"
	EventTilesUnloaded EventType = "tiles_unloaded"
	EventCacheRebuilt  EventType = "cache_rebuilt"
	EventCacheLoaded   EventType = "cache_loaded"
)

// Event describes a change in the resident set or the cache.
type Event struct {
	Type     EventType `json:"type"`
	Tiles    []string  `json:"tiles,omitempty"`
	Airports int       `json:"airports"`
	Time     time.Time `json:"time"`
}

// EventSink receives lifecycle events. Publish is called without the
// database lock held.
type EventSink interface {
	Publish(Event)
}
