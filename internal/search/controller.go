// Package search drives the autocomplete flow: debounced keystroke
// handling, suggestion fetching, and stale-response discarding.
package search

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/aqipro/aqipro/internal/aqi"
	"github.com/aqipro/aqipro/internal/gateway"
	"github.com/aqipro/aqipro/internal/state"
)

// Phase is the controller's visible state.
type Phase int

const (
	// PhaseIdle: the search surface is not focused.
	PhaseIdle Phase = iota

	// PhaseShowingDefaults: empty input, favorites and recents shown.
	PhaseShowingDefaults

	// PhaseDebouncing: input changed, waiting out the debounce window.
	PhaseDebouncing

	// PhaseLoading: a suggestion fetch is in flight.
	PhaseLoading

	// PhaseShowingResults: suggestions for the current input are shown.
	PhaseShowingResults

	// PhaseClosed: the surface was dismissed; late responses are dropped.
	PhaseClosed
)

// MaxSuggestions caps the suggestion list.
const MaxSuggestions = 5

// MinQueryLength is the shortest input that triggers a suggestion
// fetch; anything shorter falls back to the defaults view.
const MinQueryLength = 2

// DefaultDebounce is the keystroke settling window.
const DefaultDebounce = 300 * time.Millisecond

// View receives display updates from the controller. Implementations
// must tolerate calls from the debounce timer's goroutine.
type View interface {
	// ShowDefaults presents favorites and recent searches.
	ShowDefaults(favorites, recents []string)

	// ShowSearching indicates a fetch is in flight.
	ShowSearching()

	// ShowSuggestions presents the suggestion list (possibly empty).
	ShowSuggestions(suggestions []aqi.Suggestion)

	// Hide dismisses the search surface.
	Hide()
}

// Config holds controller dependencies.
type Config struct {
	Gateway gateway.Gateway
	Store   state.Store
	View    View
	Logger  zerolog.Logger

	// Debounce overrides the keystroke settling window (default 300ms).
	Debounce time.Duration

	// FetchTimeout bounds a single suggestion fetch (default 5s).
	FetchTimeout time.Duration
}

// Controller owns the autocomplete state machine. Every input bumps a
// generation counter; timer fires and fetch completions carry the
// generation they were started for and are dropped when it has moved on.
type Controller struct {
	gw      gateway.Gateway
	store   state.Store
	view    View
	cache   *SuggestionCache
	log     zerolog.Logger
	settle  time.Duration
	timeout time.Duration

	mu        sync.Mutex
	phase     Phase
	gen       uint64
	timer     *time.Timer
	text      string
	visible   []aqi.Suggestion
	selection int
}

// NewController creates a Controller in PhaseIdle.
func NewController(cfg Config) *Controller {
	settle := cfg.Debounce
	if settle == 0 {
		settle = DefaultDebounce
	}
	timeout := cfg.FetchTimeout
	if timeout == 0 {
		timeout = 5 * time.Second
	}

	return &Controller{
		gw:        cfg.Gateway,
		store:     cfg.Store,
		view:      cfg.View,
		cache:     NewSuggestionCache(),
		log:       cfg.Logger,
		settle:    settle,
		timeout:   timeout,
		selection: -1,
	}
}

// Phase returns the current phase.
func (c *Controller) Phase() Phase {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.phase
}

// Selection returns the highlighted suggestion index, or -1 when
// nothing is highlighted.
func (c *Controller) Selection() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.selection
}

// Focus opens the search surface with defaults. With no favorites and
// no recents there is nothing to show, so the surface stays closed
// until the user types.
func (c *Controller) Focus(ctx context.Context) {
	c.mu.Lock()
	c.cancelTimerLocked()
	c.gen++
	gen := c.gen
	c.phase = PhaseShowingDefaults
	c.text = ""
	c.visible = nil
	c.selection = -1
	c.mu.Unlock()

	c.showDefaults(ctx, gen)
}

// Input handles one keystroke's worth of change to the query text.
// Every change resets the highlighted selection. The session cache is
// consulted only once the debounce window elapses, so retyping a known
// query still collapses rapid keystrokes the same way a fresh one does.
func (c *Controller) Input(ctx context.Context, text string) {
	query := strings.TrimSpace(text)

	c.mu.Lock()
	c.cancelTimerLocked()
	c.gen++
	gen := c.gen
	c.text = query
	c.visible = nil
	c.selection = -1

	if len([]rune(query)) < MinQueryLength {
		c.phase = PhaseShowingDefaults
		c.mu.Unlock()
		c.showDefaults(ctx, gen)
		return
	}

	c.phase = PhaseDebouncing
	c.timer = time.AfterFunc(c.settle, func() {
		c.fetch(query, gen)
	})
	c.mu.Unlock()
}

// MoveSelection shifts the highlighted item by delta, clamped to the
// list bounds without wrapping. The cursor works over fetched results
// and the defaults list alike; no-op when neither is visible.
func (c *Controller) MoveSelection(delta int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.listVisibleLocked() {
		return
	}

	sel := c.selection + delta
	if sel < 0 {
		sel = 0
	}
	if sel > len(c.visible)-1 {
		sel = len(c.visible) - 1
	}
	c.selection = sel
}

// Hover highlights the item at index i, sharing the cursor with
// keyboard navigation. Out-of-range indices are ignored.
func (c *Controller) Hover(i int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.listVisibleLocked() || i < 0 || i >= len(c.visible) {
		return
	}
	c.selection = i
}

// Submit resolves the current state to a dispatchable query: the
// highlighted item when one is selected, otherwise the typed text as a
// plain query. The surface closes either way. Returns false when there
// is nothing to dispatch.
func (c *Controller) Submit() (aqi.Query, bool) {
	c.mu.Lock()

	var q aqi.Query
	ok := false
	switch {
	case c.listVisibleLocked() && c.selection >= 0 && c.selection < len(c.visible):
		q = c.visible[c.selection].Query
		ok = true
	case c.text != "":
		q = aqi.ParseQuery(c.text)
		ok = true
	}

	if !ok {
		c.mu.Unlock()
		return aqi.Query{}, false
	}

	c.cancelTimerLocked()
	c.gen++
	c.phase = PhaseClosed
	c.text = ""
	c.visible = nil
	c.selection = -1
	c.mu.Unlock()

	c.view.Hide()
	return q, true
}

// Close dismisses the surface. Any in-flight fetch still completes and
// populates the cache, but its result is never displayed.
func (c *Controller) Close() {
	c.mu.Lock()
	c.cancelTimerLocked()
	c.gen++
	c.phase = PhaseClosed
	c.text = ""
	c.visible = nil
	c.selection = -1
	c.mu.Unlock()

	c.view.Hide()
}

// fetch runs on the debounce timer's goroutine.
func (c *Controller) fetch(query string, gen uint64) {
	c.mu.Lock()
	if gen != c.gen {
		c.mu.Unlock()
		return
	}

	if suggestions, ok := c.cache.Get(query); ok {
		c.phase = PhaseShowingResults
		c.visible = suggestions
		c.selection = -1
		c.mu.Unlock()
		c.view.ShowSuggestions(suggestions)
		return
	}

	c.phase = PhaseLoading
	c.mu.Unlock()

	c.view.ShowSearching()

	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	hits, err := c.gw.SearchStations(ctx, query)
	if err != nil {
		// Leave whatever is on screen in place.
		c.log.Warn().Err(err).Str("query", query).Msg("suggestion fetch failed")
		c.mu.Lock()
		if gen == c.gen {
			c.phase = PhaseShowingResults
		}
		c.mu.Unlock()
		return
	}

	suggestions := BuildSuggestions(hits)

	// Cache even when this response is stale; the user may retype the
	// same query and should get an instant answer.
	c.cache.Put(query, suggestions)

	c.mu.Lock()
	if gen != c.gen {
		c.mu.Unlock()
		return
	}
	c.phase = PhaseShowingResults
	c.visible = suggestions
	c.selection = -1
	c.mu.Unlock()

	c.view.ShowSuggestions(suggestions)
}

func (c *Controller) showDefaults(ctx context.Context, gen uint64) {
	favorites, err := c.store.Favorites(ctx)
	if err != nil {
		c.log.Warn().Err(err).Msg("favorites load failed")
	}
	recents, err := c.store.Recents(ctx)
	if err != nil {
		c.log.Warn().Err(err).Msg("recents load failed")
	}

	if len(favorites) == 0 && len(recents) == 0 {
		c.mu.Lock()
		if gen == c.gen && c.phase == PhaseShowingDefaults {
			c.phase = PhaseClosed
		}
		c.mu.Unlock()
		c.view.Hide()
		return
	}

	defaults := defaultSuggestions(favorites, recents)

	c.mu.Lock()
	if gen == c.gen && c.phase == PhaseShowingDefaults {
		c.visible = defaults
	}
	c.mu.Unlock()

	c.view.ShowDefaults(favorites, recents)
}

// listVisibleLocked reports whether a navigable list is on screen.
// Caller holds c.mu.
func (c *Controller) listVisibleLocked() bool {
	return (c.phase == PhaseShowingResults || c.phase == PhaseShowingDefaults) &&
		len(c.visible) > 0
}

// defaultSuggestions makes the favorites and recents sections navigable
// with the same cursor as fetched results. Each entry resolves as a
// plain-name lookup.
func defaultSuggestions(favorites, recents []string) []aqi.Suggestion {
	out := make([]aqi.Suggestion, 0, len(favorites)+len(recents))
	for _, name := range favorites {
		out = append(out, aqi.Suggestion{City: name, Query: aqi.ParseQuery(name), Rank: len(out)})
	}
	for _, name := range recents {
		out = append(out, aqi.Suggestion{City: name, Query: aqi.ParseQuery(name), Rank: len(out)})
	}
	return out
}

func (c *Controller) cancelTimerLocked() {
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}

// BuildSuggestions maps station hits to display suggestions, capped at
// MaxSuggestions.
func BuildSuggestions(hits []gateway.StationHit) []aqi.Suggestion {
	if len(hits) > MaxSuggestions {
		hits = hits[:MaxSuggestions]
	}

	suggestions := make([]aqi.Suggestion, 0, len(hits))
	for i, hit := range hits {
		suggestions = append(suggestions, aqi.Suggestion{
			City:    aqi.CityPart(hit.Name),
			Country: aqi.CountryPart(hit.Name),
			Query:   aqi.StationQuery(hit.UID),
			Rank:    i,
		})
	}
	return suggestions
}
