// Package lexicon provides thread-safe storage and matching for medication
// names. It keeps the raw names alongside lowercased and accent-folded
// variants for lookups, and publishes a compiled whole-word matcher through
// an atomic pointer so readers never block during reloads.
package lexicon

import (
	"regexp"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/yamasante/medtranslate-api/interfaces"
	"github.com/yamasante/medtranslate-api/logging"
)

// Compile-time check to ensure Lexicon implements LexiconStore
var _ interfaces.LexiconStore = (*Lexicon)(nil)

// neverMatch is the matcher published while the lexicon is empty.
// \b\B cannot hold at any position, so FindAllString always returns nil.
var neverMatch = regexp.MustCompile(`\b\B`)

// Lexicon holds the known medication names with atomic matcher publication
// for zero-downtime reloads
type Lexicon struct {
	mu         sync.RWMutex
	names      map[string]struct{} // raw forms, as added
	normalized map[string]struct{} // lowercased and accent-folded forms

	matcher    atomic.Value // *regexp.Regexp over the raw names
	dirty      atomic.Bool  // names changed since the matcher was compiled
	lastLoaded atomic.Value // time.Time
	reloading  atomic.Bool
}

// New creates an empty Lexicon
func New() *Lexicon {
	l := &Lexicon{
		names:      make(map[string]struct{}),
		normalized: make(map[string]struct{}),
	}
	l.matcher.Store(neverMatch)
	l.lastLoaded.Store(time.Time{})
	return l
}

// NewWithDefaults creates a Lexicon pre-seeded with the built-in list of
// common DCI and brand names circulating in West African pharmacies
func NewWithDefaults() *Lexicon {
	l := New()
	for _, name := range DefaultMedications {
		l.Add(name)
	}
	l.MarkLoaded()
	return l
}

// Normalize lowercases s and strips diacritics so that accented and plain
// spellings of the same name compare equal. The transform chain carries
// per-use buffers, so it is built per call; a shared instance would race
// under concurrent lookups.
func Normalize(s string) string {
	folder := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(folder, strings.ToLower(s))
	if err != nil {
		return strings.ToLower(s)
	}
	return folded
}

// Add registers a medication name. The raw form feeds the matcher, the
// lowercased and accent-folded forms feed IsKnown. Empty names are ignored.
func (l *Lexicon) Add(name string) {
	name = strings.TrimSpace(name)
	if name == "" {
		return
	}

	lower := strings.ToLower(name)
	folded := Normalize(name)

	l.mu.Lock()
	l.names[name] = struct{}{}
	l.normalized[lower] = struct{}{}
	if folded != lower {
		l.normalized[folded] = struct{}{}
	}
	l.mu.Unlock()

	l.dirty.Store(true)
}

// IsKnown reports whether word matches a known name, ignoring case and
// diacritics
func (l *Lexicon) IsKnown(word string) bool {
	word = strings.TrimSpace(word)
	if word == "" {
		return false
	}

	lower := strings.ToLower(word)
	folded := Normalize(word)

	l.mu.RLock()
	defer l.mu.RUnlock()
	if _, ok := l.normalized[lower]; ok {
		return true
	}
	_, ok := l.normalized[folded]
	return ok
}

// FindAll returns every non-overlapping whole-word match of a known name
// in text, in order of appearance. Longer names win over their prefixes
// because the matcher sorts alternatives by descending length.
func (l *Lexicon) FindAll(text string) []string {
	return l.matcherSnapshot().FindAllString(text, -1)
}

// matcherSnapshot returns the current compiled matcher, recompiling first
// if names changed since the last compilation.
func (l *Lexicon) matcherSnapshot() *regexp.Regexp {
	if l.dirty.Load() {
		l.recompile()
	}

	if v := l.matcher.Load(); v != nil {
		if re, ok := v.(*regexp.Regexp); ok {
			return re
		}
	}

	logging.Warn("Lexicon matcher is missing or invalid")
	return neverMatch
}

// recompile rebuilds the matcher from the current name set and publishes
// it atomically. Names are quoted and sorted by descending length so the
// alternation prefers the longest match at any position.
func (l *Lexicon) recompile() {
	l.mu.Lock()
	defer l.mu.Unlock()

	// Another reader may have recompiled while we waited for the lock
	if !l.dirty.Load() {
		return
	}

	if len(l.names) == 0 {
		l.matcher.Store(neverMatch)
		l.dirty.Store(false)
		return
	}

	names := make([]string, 0, len(l.names))
	for name := range l.names {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		if len(names[i]) != len(names[j]) {
			return len(names[i]) > len(names[j])
		}
		return names[i] < names[j]
	})

	quoted := make([]string, len(names))
	for i, name := range names {
		quoted[i] = regexp.QuoteMeta(name)
	}

	re, err := regexp.Compile(`(?i)\b(?:` + strings.Join(quoted, "|") + `)\b`)
	if err != nil {
		// Keep serving the previous matcher rather than none at all
		logging.Error("Failed to compile lexicon matcher", "error", err, "names", len(names))
		return
	}

	l.matcher.Store(re)
	l.dirty.Store(false)
}

// Len returns the number of raw names in the lexicon
func (l *Lexicon) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.names)
}

// Names returns the raw names in sorted order
func (l *Lexicon) Names() []string {
	l.mu.RLock()
	names := make([]string, 0, len(l.names))
	for name := range l.names {
		names = append(names, name)
	}
	l.mu.RUnlock()

	sort.Strings(names)
	return names
}

// LastLoaded returns the timestamp of the last completed load
func (l *Lexicon) LastLoaded() time.Time {
	if v := l.lastLoaded.Load(); v != nil {
		if t, ok := v.(time.Time); ok {
			return t
		}
	}

	logging.Warn("Could not get the lexicon last loaded value")
	return time.Time{}
}

// MarkLoaded records the current time as the last completed load
func (l *Lexicon) MarkLoaded() {
	l.lastLoaded.Store(time.Now())
}

// IsReloading returns true if a reload is currently in progress
func (l *Lexicon) IsReloading() bool {
	return l.reloading.Load()
}

// BeginReload marks the start of a reload operation
// Returns true if the reload can proceed, false if another one is in progress
func (l *Lexicon) BeginReload() bool {
	return l.reloading.CompareAndSwap(false, true)
}

// EndReload marks the end of a reload operation
func (l *Lexicon) EndReload() {
	l.reloading.Store(false)
}
