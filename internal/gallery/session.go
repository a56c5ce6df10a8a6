package gallery

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/lehigh-university-libraries/iiif-gallery/internal/iiif"
	"github.com/lehigh-university-libraries/iiif-gallery/internal/resolver"
)

var (
	// ErrNoCanvases is returned when a manifest has no canvases to show.
	ErrNoCanvases = errors.New("manifest does not contain any images (canvases)")
	// ErrItemNotFound is returned for an unknown item id.
	ErrItemNotFound = errors.New("item not found")
	// ErrInvalidOrder is returned when a reorder list names unknown or
	// repeated items.
	ErrInvalidOrder = errors.New("invalid item order")
)

// maxConcurrentFetches bounds how many manifests one request downloads at once.
const maxConcurrentFetches = 4

// Fetcher retrieves a manifest by URL.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*iiif.Manifest, error)
}

type collected struct {
	key      string
	manifest *iiif.Manifest
}

// Session is a user's gallery: the collected manifests and the cards derived
// from them, in display order. A collected manifest is only ever replaced,
// never modified, so manifests handed out stay valid.
type Session struct {
	ID        string
	CreatedAt time.Time

	resolver *resolver.Resolver

	mu        sync.RWMutex
	collected []*collected
	items     []Item
}

// NewSession creates an empty session. A nil resolver uses the defaults.
func NewSession(id string, r *resolver.Resolver) *Session {
	if r == nil {
		r = resolver.New()
	}
	return &Session{
		ID:        id,
		CreatedAt: time.Now(),
		resolver:  r,
	}
}

// Add collects m and appends a card for each of its canvases that has an
// image service.
func (s *Session) Add(m *iiif.Manifest) ([]Item, error) {
	if len(m.Canvases) == 0 {
		return nil, ErrNoCanvases
	}

	c := &collected{key: uuid.NewString(), manifest: m}
	items := BuildItems(s.resolver, c.key, m)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.collected = append(s.collected, c)
	s.items = append(s.items, items...)

	slog.Info("Added manifest to gallery", "session_id", s.ID, "manifest", m.ID, "cards", len(items))
	return items, nil
}

// AddPages collects only the given canvas indices of m. The fetched manifest
// is left as it was; an empty selection adds every canvas.
func (s *Session) AddPages(m *iiif.Manifest, pages []int) ([]Item, error) {
	if len(m.Canvases) == 0 {
		return nil, ErrNoCanvases
	}
	if len(pages) > 0 {
		subset, err := m.SelectCanvases(pages)
		if err != nil {
			return nil, err
		}
		m = subset
	}
	return s.Add(m)
}

// AddFailure records a manifest URL that could not be added.
type AddFailure struct {
	URL   string `json:"url"`
	Error string `json:"error"`

	Err error `json:"-"`
}

// AddFromURLs fetches the manifests concurrently and adds each one as it
// arrives, so cards land in completion order. A failure only affects its own
// URL.
func (s *Session) AddFromURLs(ctx context.Context, f Fetcher, urls []string, pages []int) ([]Item, []AddFailure) {
	var (
		mu       sync.Mutex
		added    []Item
		failures []AddFailure
	)

	g := new(errgroup.Group)
	g.SetLimit(maxConcurrentFetches)
	for _, u := range urls {
		g.Go(func() error {
			items, err := s.addURL(ctx, f, u, pages)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				slog.Error("Failed to add manifest", "session_id", s.ID, "url", u, "error", err)
				failures = append(failures, AddFailure{URL: u, Error: err.Error(), Err: err})
				return nil
			}
			added = append(added, items...)
			return nil
		})
	}
	_ = g.Wait()

	return added, failures
}

func (s *Session) addURL(ctx context.Context, f Fetcher, u string, pages []int) ([]Item, error) {
	m, err := f.Fetch(ctx, u)
	if err != nil {
		return nil, err
	}
	items, err := s.AddPages(m, pages)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", u, err)
	}
	return items, nil
}

// Items returns the cards in display order.
func (s *Session) Items() []Item {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Item(nil), s.items...)
}

// Item returns the card with the given id.
func (s *Session) Item(id string) (Item, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, item := range s.items {
		if item.ID == id {
			return item, true
		}
	}
	return Item{}, false
}

// Remove deletes a card. Its manifest is trimmed to the canvases that still
// have cards, and dropped once none are left.
func (s *Session) Remove(itemID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(itemID)
	if idx < 0 {
		return fmt.Errorf("%w: %s", ErrItemNotFound, itemID)
	}
	key := s.items[idx].ManifestKey

	items := make([]Item, 0, len(s.items)-1)
	items = append(items, s.items[:idx]...)
	items = append(items, s.items[idx+1:]...)

	return s.commit(items, key)
}

// Reorder moves the listed cards to the front in the given order. Cards not
// listed keep their relative order after them. Each manifest's canvases are
// rearranged to follow the new card order.
func (s *Session) Reorder(itemIDs []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	byID := make(map[string]Item, len(s.items))
	for _, item := range s.items {
		byID[item.ID] = item
	}

	items := make([]Item, 0, len(s.items))
	placed := make(map[string]bool, len(itemIDs))
	for _, id := range itemIDs {
		item, ok := byID[id]
		if !ok {
			return fmt.Errorf("%w: unknown item %s", ErrInvalidOrder, id)
		}
		if placed[id] {
			return fmt.Errorf("%w: item %s listed twice", ErrInvalidOrder, id)
		}
		placed[id] = true
		items = append(items, item)
	}
	for _, item := range s.items {
		if !placed[item.ID] {
			items = append(items, item)
		}
	}

	var keys []string
	seen := make(map[string]bool, len(s.collected))
	for _, item := range items {
		if !seen[item.ManifestKey] {
			seen[item.ManifestKey] = true
			keys = append(keys, item.ManifestKey)
		}
	}
	return s.commit(items, keys...)
}

// commit installs a new card list after rearranging the manifests named by
// keys. Nothing changes when a manifest cannot be rebuilt.
func (s *Session) commit(items []Item, keys ...string) error {
	replaced := make(map[string]*iiif.Manifest, len(keys))
	for _, key := range keys {
		c := s.find(key)
		if c == nil {
			continue
		}
		m, err := arrange(c.manifest, items, key)
		if err != nil {
			return fmt.Errorf("failed to rearrange manifest %s: %w", c.manifest.ID, err)
		}
		replaced[key] = m
	}

	// card positions follow the rebuilt manifests
	positions := make(map[string]int, len(replaced))
	for i := range items {
		if _, ok := replaced[items[i].ManifestKey]; !ok {
			continue
		}
		items[i].CanvasIndex = positions[items[i].ManifestKey]
		positions[items[i].ManifestKey]++
	}

	remaining := make([]*collected, 0, len(s.collected))
	for _, c := range s.collected {
		m, ok := replaced[c.key]
		switch {
		case ok && m == nil:
			continue
		case ok:
			remaining = append(remaining, &collected{key: c.key, manifest: m})
		default:
			remaining = append(remaining, c)
		}
	}

	s.collected = remaining
	s.items = items
	return nil
}

// arrange rebuilds m so its canvases follow the card order of key. Canvases
// without a card (no image service) are kept after them. A nil manifest
// means no card is left.
func arrange(m *iiif.Manifest, items []Item, key string) (*iiif.Manifest, error) {
	var indices []int
	carded := make(map[int]bool)
	for _, item := range items {
		if item.ManifestKey != key {
			continue
		}
		indices = append(indices, item.CanvasIndex)
		carded[item.CanvasIndex] = true
	}
	if len(indices) == 0 {
		return nil, nil
	}
	for i, canvas := range m.Canvases {
		if !carded[i] && canvas.ImageService == "" {
			indices = append(indices, i)
		}
	}

	if isIdentity(indices, len(m.Canvases)) {
		return m, nil
	}
	return m.ArrangeCanvases(indices)
}

func isIdentity(indices []int, n int) bool {
	if len(indices) != n {
		return false
	}
	for i, idx := range indices {
		if i != idx {
			return false
		}
	}
	return true
}

// Manifests returns the collected manifests in export order. Each contiguous
// run of cards from one manifest becomes its own entry, so a manifest whose
// cards are interleaved with another's is split into partial copies. Canvases
// without a card stay with the last run of their manifest. Manifests that
// have no cards come last.
func (s *Session) Manifests() []*iiif.Manifest {
	s.mu.RLock()
	defer s.mu.RUnlock()

	runs := s.runs()
	split := make(map[string]int, len(s.collected))
	for _, r := range runs {
		split[r.key]++
	}

	out := make([]*iiif.Manifest, 0, len(runs)+len(s.collected))
	for i, r := range runs {
		c := s.find(r.key)
		if c == nil {
			continue
		}
		if split[r.key] == 1 {
			out = append(out, c.manifest)
			continue
		}

		indices := r.indices
		if isLastRun(runs[i+1:], r.key) {
			indices = append(indices, uncarded(c.manifest, r.key, runs)...)
		}
		part, err := c.manifest.ArrangeCanvases(indices)
		if err != nil {
			slog.Error("Unable to split manifest for export", "manifest", c.manifest.ID, "err", err)
			continue
		}
		out = append(out, part)
	}
	for _, c := range s.collected {
		if split[c.key] == 0 {
			out = append(out, c.manifest)
		}
	}
	return out
}

type run struct {
	key     string
	indices []int
}

// runs groups the cards into contiguous runs of the same manifest.
func (s *Session) runs() []*run {
	var out []*run
	for _, item := range s.items {
		if n := len(out); n == 0 || out[n-1].key != item.ManifestKey {
			out = append(out, &run{key: item.ManifestKey})
		}
		last := out[len(out)-1]
		last.indices = append(last.indices, item.CanvasIndex)
	}
	return out
}

func isLastRun(rest []*run, key string) bool {
	for _, r := range rest {
		if r.key == key {
			return false
		}
	}
	return true
}

func uncarded(m *iiif.Manifest, key string, runs []*run) []int {
	carded := make(map[int]bool, len(m.Canvases))
	for _, r := range runs {
		if r.key != key {
			continue
		}
		for _, idx := range r.indices {
			carded[idx] = true
		}
	}
	var out []int
	for i := range m.Canvases {
		if !carded[i] {
			out = append(out, i)
		}
	}
	return out
}

// Export wraps the collected manifests in a Collection.
func (s *Session) Export(name string) *iiif.Collection {
	return iiif.NewCollection(name, s.Manifests())
}

// Import replaces the gallery with the manifests of an exported collection or
// a single manifest document. On error the gallery is left as it was.
func (s *Session) Import(data []byte) ([]Item, error) {
	manifests, err := iiif.ParseDocument(data)
	if err != nil {
		return nil, fmt.Errorf("failed to import: %w", err)
	}

	collectedList := make([]*collected, 0, len(manifests))
	var items []Item
	for _, m := range manifests {
		c := &collected{key: uuid.NewString(), manifest: m}
		collectedList = append(collectedList, c)
		items = append(items, BuildItems(s.resolver, c.key, m)...)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.collected = collectedList
	s.items = items

	slog.Info("Imported gallery", "session_id", s.ID, "manifests", len(manifests), "cards", len(items))
	return append([]Item(nil), items...), nil
}

// Clear empties the gallery.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.collected = nil
	s.items = nil
}

// Snapshot is the JSON view of a session.
type Snapshot struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	Manifests int       `json:"manifests"`
	Items     []Item    `json:"items"`
}

// Snapshot returns a copy of the session state.
func (s *Session) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := append([]Item{}, s.items...)
	return Snapshot{
		ID:        s.ID,
		CreatedAt: s.CreatedAt,
		Manifests: len(s.collected),
		Items:     items,
	}
}

func (s *Session) indexOf(itemID string) int {
	for i, item := range s.items {
		if item.ID == itemID {
			return i
		}
	}
	return -1
}

func (s *Session) find(key string) *collected {
	for _, c := range s.collected {
		if c.key == key {
			return c
		}
	}
	return nil
}
