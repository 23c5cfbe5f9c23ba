package particles

import (
	"fmt"
	"strings"
	"sync"
)

// Event categories and keys recorded by a Field.
const (
	CategoryLifecycle = "lifecycle"
	CategoryParticle  = "particle"
	CategoryBounds    = "bounds"
	CategoryConfig    = "config"

	KeyStart    = "start"
	KeyStop     = "stop"
	KeyDegraded = "degraded"
	KeyRespawn  = "respawn"
	KeyResize   = "resize"
	KeyClamp    = "clamp"
)

// Event is one recorded field event.
type Event struct {
	Frame    uint64
	Slot     int    // pool index, or -1 for field-wide events
	Category string // lifecycle, particle, bounds, config
	Key      string
	Value    string
	NumVal   float64
}

// String formats the event as a fixed-width log line.
//
//	[F=000042] #07  particle  respawn   lifespan=312
func (e Event) String() string {
	slot := "--"
	if e.Slot >= 0 {
		slot = fmt.Sprintf("#%02d", e.Slot)
	}
	return fmt.Sprintf("[F=%06d] %-4s %-9s %-9s %s", e.Frame, slot, e.Category, e.Key, e.Value)
}

// EventLog collects structured field events. Unlike the zap logger it is
// unbounded and meant for machine inspection by the report command and tests.
// Per-particle events are only kept when verbose is set.
type EventLog struct {
	mu      sync.Mutex
	entries []Event
	verbose bool
}

// NewEventLog creates an EventLog.
func NewEventLog(verbose bool) *EventLog {
	return &EventLog{verbose: verbose}
}

// Add records an event.
func (el *EventLog) Add(frame uint64, slot int, category, key, value string, numVal float64) {
	if el == nil {
		return
	}
	el.mu.Lock()
	el.entries = append(el.entries, Event{
		Frame:    frame,
		Slot:     slot,
		Category: category,
		Key:      key,
		Value:    value,
		NumVal:   numVal,
	})
	el.mu.Unlock()
}

// AddVerbose records an event only in verbose mode.
func (el *EventLog) AddVerbose(frame uint64, slot int, category, key, value string, numVal float64) {
	if el == nil || !el.verbose {
		return
	}
	el.Add(frame, slot, category, key, value, numVal)
}

// Entries returns a copy of all recorded events.
func (el *EventLog) Entries() []Event {
	el.mu.Lock()
	defer el.mu.Unlock()
	return append([]Event(nil), el.entries...)
}

// Filter returns events matching category and key. Empty strings match any.
func (el *EventLog) Filter(category, key string) []Event {
	el.mu.Lock()
	defer el.mu.Unlock()
	var out []Event
	for _, e := range el.entries {
		if category != "" && e.Category != category {
			continue
		}
		if key != "" && e.Key != key {
			continue
		}
		out = append(out, e)
	}
	return out
}

// FilterSlot returns the events of one pool slot.
func (el *EventLog) FilterSlot(slot int) []Event {
	el.mu.Lock()
	defer el.mu.Unlock()
	var out []Event
	for _, e := range el.entries {
		if e.Slot == slot {
			out = append(out, e)
		}
	}
	return out
}

// Count returns how many events match category and key.
func (el *EventLog) Count(category, key string) int {
	return len(el.Filter(category, key))
}

// LastOf returns the most recent event matching category and key.
func (el *EventLog) LastOf(category, key string) (Event, bool) {
	entries := el.Filter(category, key)
	if len(entries) == 0 {
		return Event{}, false
	}
	return entries[len(entries)-1], true
}

// HasEntry reports whether an event matches category, key and value substring.
func (el *EventLog) HasEntry(category, key, valueSubstr string) bool {
	for _, e := range el.Filter(category, key) {
		if valueSubstr == "" || strings.Contains(e.Value, valueSubstr) {
			return true
		}
	}
	return false
}

// Format returns the whole log, one event per line.
func (el *EventLog) Format() string {
	var sb strings.Builder
	for _, e := range el.Entries() {
		sb.WriteString(e.String())
		sb.WriteByte('\n')
	}
	return sb.String()
}
