package grid

import (
	"fmt"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/gridx/internal/services"
	"github.com/desertthunder/gridx/internal/shared"
)

// Panel is one grid cell bound to a single playlist's live view.
//
// Tracks is the authoritative local ordering; Version is a monotonic counter
// bumped on every local mutation and used to discard stale async results.
type Panel struct {
	ID         string
	PlaylistID string
	Tracks     []services.Track
	Cursor     Cursor
	Total      int
	Loading    bool
	Version    uint64
}

// Snapshot captures a panel's state before an optimistic mutation, for rollback.
//
// Version is the version the mutation produced; a rollback only applies while
// the panel is still at that version.
type Snapshot struct {
	PanelID    string
	PlaylistID string
	Tracks     []services.Track
	Cursor     Cursor
	Total      int
	Version    uint64
}

// Mutation is a removal/insertion rewrite of a panel's track list.
//
// Removals are positions in the current ordering (ascending); Insertions are
// placed at InsertAt in the post-removal ordering, clamped to its length.
type Mutation struct {
	Removals   []int
	Insertions []services.Track
	InsertAt   int
}

// LoadRequest tags an in-flight page load with the panel version it observed.
type LoadRequest struct {
	PanelID    string
	PlaylistID string
	Cursor     string
	Version    uint64
}

// Registry is the single source of truth for what each panel displays.
//
// All mutation goes through the registry; each panel owns a private copy of
// its track list, so two panels bound to the same playlist never alias.
type Registry struct {
	mu     sync.Mutex
	panels map[string]*Panel
	logger *log.Logger
}

// NewRegistry creates an empty panel registry scoped to one grid session.
func NewRegistry(logger *log.Logger) *Registry {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Registry{
		panels: make(map[string]*Panel),
		logger: logger,
	}
}

// Register adds an empty, unbound panel and returns its ID.
// A provided ID is used verbatim; an empty ID gets a generated one.
func (r *Registry) Register(panelID string) string {
	r.mu.Lock()
	defer r.mu.Unlock()

	if panelID == "" {
		panelID = shared.GenerateID()
	}
	r.panels[panelID] = &Panel{ID: panelID}
	return panelID
}

// Panel returns a copy of the panel's current state.
// Fails with [shared.ErrUnknownPanel] for unregistered IDs.
func (r *Registry) Panel(panelID string) (Panel, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.panels[panelID]
	if !ok {
		return Panel{}, fmt.Errorf("%w: %s", shared.ErrUnknownPanel, panelID)
	}
	return snapshotPanel(p), nil
}

// PanelIDs returns the registered panel IDs in no particular order.
func (r *Registry) PanelIDs() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	ids := make([]string, 0, len(r.panels))
	for id := range r.panels {
		ids = append(ids, id)
	}
	return ids
}

// Bind rebinds a panel to a playlist, replacing its track list and cursor
// with the initial page. The version bump invalidates any load or transfer
// still in flight against the previous binding.
func (r *Registry) Bind(panelID, playlistID string, initialPage *services.TrackPage) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.panels[panelID]
	if !ok {
		return fmt.Errorf("%w: %s", shared.ErrUnknownPanel, panelID)
	}

	p.PlaylistID = playlistID
	p.Tracks = nil
	p.Cursor = Cursor{}
	p.Total = 0
	if initialPage != nil {
		p.Tracks = append([]services.Track(nil), initialPage.Items...)
		p.Cursor = NewCursor(initialPage.NextCursor)
		p.Total = initialPage.Total
	}
	p.Loading = false
	p.Version++

	r.logger.Debug("panel bound", "panel", panelID, "playlist", playlistID, "tracks", len(p.Tracks), "version", p.Version)
	return nil
}

// ApplyOptimistic synchronously rewrites a panel's tracks per the mutation,
// bumps the version, and returns a snapshot of the prior state for rollback.
func (r *Registry) ApplyOptimistic(panelID string, m Mutation) (Snapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.panels[panelID]
	if !ok {
		return Snapshot{}, fmt.Errorf("%w: %s", shared.ErrUnknownPanel, panelID)
	}

	for i, pos := range m.Removals {
		if pos < 0 || pos >= len(p.Tracks) {
			return Snapshot{}, fmt.Errorf("%w: removal position %d out of range", shared.ErrInvalidArgument, pos)
		}
		if i > 0 && pos <= m.Removals[i-1] {
			return Snapshot{}, fmt.Errorf("%w: removal positions must be ascending", shared.ErrInvalidArgument)
		}
	}

	prior := snapshotPanel(p)

	tracks := make([]services.Track, 0, len(p.Tracks)-len(m.Removals)+len(m.Insertions))
	next := 0
	for i, t := range p.Tracks {
		if next < len(m.Removals) && m.Removals[next] == i {
			next++
			continue
		}
		tracks = append(tracks, t)
	}

	at := clamp(m.InsertAt, 0, len(tracks))
	tracks = append(tracks[:at:at], append(append([]services.Track(nil), m.Insertions...), tracks[at:]...)...)

	p.Tracks = tracks
	p.Total += len(m.Insertions) - len(m.Removals)
	p.Version++

	snap := Snapshot{
		PanelID:    prior.ID,
		PlaylistID: prior.PlaylistID,
		Tracks:     prior.Tracks,
		Cursor:     prior.Cursor,
		Total:      prior.Total,
		Version:    p.Version,
	}

	r.logger.Debug("optimistic mutation applied", "panel", panelID, "removed", len(m.Removals), "inserted", len(m.Insertions), "version", p.Version)
	return snap, nil
}

// Rollback restores the state captured in the snapshot.
//
// It is a no-op when the panel's version has advanced past the mutation that
// produced the snapshot: a stale rollback must not clobber a newer update.
// The return reports whether the rollback was applied.
func (r *Registry) Rollback(s Snapshot) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.panels[s.PanelID]
	if !ok {
		return false, fmt.Errorf("%w: %s", shared.ErrUnknownPanel, s.PanelID)
	}

	if p.Version != s.Version {
		r.logger.Debug("stale rollback discarded", "panel", s.PanelID, "snapshot", s.Version, "current", p.Version)
		return false, nil
	}

	p.PlaylistID = s.PlaylistID
	p.Tracks = append([]services.Track(nil), s.Tracks...)
	p.Cursor = s.Cursor
	p.Total = s.Total
	p.Version++

	r.logger.Debug("panel rolled back", "panel", s.PanelID, "version", p.Version)
	return true, nil
}

// BeginLoadMore marks the panel loading and returns the request for the next
// page. The second return is false when there is nothing to do: the cursor is
// exhausted, a load is already in flight, or the panel is unbound.
func (r *Registry) BeginLoadMore(panelID string) (LoadRequest, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.panels[panelID]
	if !ok {
		return LoadRequest{}, false, fmt.Errorf("%w: %s", shared.ErrUnknownPanel, panelID)
	}

	if p.PlaylistID == "" || p.Loading || !p.Cursor.HasMore() {
		return LoadRequest{}, false, nil
	}

	token, err := p.Cursor.Token()
	if err != nil {
		return LoadRequest{}, false, err
	}

	p.Loading = true
	return LoadRequest{
		PanelID:    panelID,
		PlaylistID: p.PlaylistID,
		Cursor:     token,
		Version:    p.Version,
	}, true, nil
}

// CompleteLoadMore appends a fetched page and advances the cursor, but only
// if the panel's version is unchanged since the request was issued; a stale
// response is discarded. The return reports whether the page was applied.
func (r *Registry) CompleteLoadMore(req LoadRequest, page *services.TrackPage) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.panels[req.PanelID]
	if !ok {
		return false
	}

	if p.Version != req.Version {
		r.logger.Debug("stale page discarded", "panel", req.PanelID, "issued", req.Version, "current", p.Version)
		return false
	}

	if page == nil {
		p.Loading = false
		return false
	}

	p.Tracks = append(p.Tracks, page.Items...)
	p.Cursor = NewCursor(page.NextCursor)
	if page.Total > 0 {
		p.Total = page.Total
	}
	p.Loading = false
	p.Version++
	return true
}

// FailLoadMore clears the loading flag after a failed page fetch, leaving the
// cursor in place for a retry. Stale failures are ignored.
func (r *Registry) FailLoadMore(req LoadRequest) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.panels[req.PanelID]
	if !ok || p.Version != req.Version {
		return
	}
	p.Loading = false
}

// snapshotPanel copies a panel; callers must hold the registry lock.
func snapshotPanel(p *Panel) Panel {
	cp := *p
	cp.Tracks = append([]services.Track(nil), p.Tracks...)
	return cp
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
