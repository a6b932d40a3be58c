package grid

import (
	"context"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/gridx/internal/cache"
	"github.com/desertthunder/gridx/internal/services"
	"github.com/desertthunder/gridx/internal/shared"
)

// State tracks a transfer through its lifecycle.
type State int

const (
	StatePlanned State = iota
	StateOptimisticApplied
	StateCommitting
	StateCommitted
	StateRolledBack
	// StateRecovered marks a partial failure resolved by re-fetching the
	// affected playlists from the remote service instead of rolling back.
	StateRecovered
)

func (s State) String() string {
	switch s {
	case StatePlanned:
		return "planned"
	case StateOptimisticApplied:
		return "optimistic_applied"
	case StateCommitting:
		return "committing"
	case StateCommitted:
		return "committed"
	case StateRolledBack:
		return "rolled_back"
	case StateRecovered:
		return "recovered"
	default:
		return ""
	}
}

// Result reports how a transfer resolved.
type Result struct {
	TransferID string
	Plan       *TransferPlan
	State      State
}

// Executor applies transfer plans: optimistic local updates through the
// registry, remote mutations through the playlist service, and cache
// invalidation through the keyspace on success.
//
// At most one transfer may touch a panel at a time; a drop on a panel with a
// transfer still committing is rejected with [shared.ErrStaleTransfer] before
// any state changes, so the UI can re-prompt it.
type Executor struct {
	registry *Registry
	svc      services.PlaylistService
	store    cache.Store
	logger   *log.Logger

	mu       sync.Mutex
	inflight map[string]string // panel ID -> transfer ID
}

// NewExecutor creates an executor over the given registry, remote service,
// and cache store. The store may be nil when no caching layer is attached.
func NewExecutor(registry *Registry, svc services.PlaylistService, store cache.Store, logger *log.Logger) *Executor {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Executor{
		registry: registry,
		svc:      svc,
		store:    store,
		logger:   logger,
		inflight: make(map[string]string),
	}
}

// Execute plans and commits a drop.
//
// The UI reflects the plan's final orderings immediately after the optimistic
// apply, before any remote round-trip. Failure during commit resolves to
// exactly one of: rollback to the pre-transfer snapshots ([shared.ErrRemoteOp]),
// or a recovery re-fetch of the affected playlists ([shared.ErrPartialTransfer])
// when a removal already landed remotely and blind rollback would resurrect
// deleted tracks.
func (e *Executor) Execute(ctx context.Context, payload *DragPayload, drop DropResult) (*Result, error) {
	if payload == nil || !payload.valid() {
		return nil, fmt.Errorf("%w: execute requires a constructed payload", shared.ErrInvalidPayload)
	}

	sourcePanel, err := e.registry.Panel(payload.SourcePanelID)
	if err != nil {
		return nil, err
	}
	targetPanel, err := e.registry.Panel(drop.TargetPanelID)
	if err != nil {
		return nil, err
	}

	if sourcePanel.PlaylistID != payload.SourcePlaylistID {
		return nil, fmt.Errorf("%w: source panel rebound since drag start", shared.ErrStaleTransfer)
	}
	if targetPanel.PlaylistID != drop.TargetPlaylistID {
		return nil, fmt.Errorf("%w: target panel rebound since drop", shared.ErrStaleTransfer)
	}

	plan, err := PlanTransfer(payload, drop, sourcePanel.Tracks, targetPanel.Tracks)
	if err != nil {
		return nil, err
	}

	res := &Result{
		TransferID: shared.GenerateID(),
		Plan:       plan,
		State:      StatePlanned,
	}

	if plan.NoOp() {
		e.logger.Debug("identity drop, nothing to do", "transfer", res.TransferID)
		res.State = StateCommitted
		return res, nil
	}

	panels := []string{drop.TargetPanelID}
	if !plan.IntraPanel {
		panels = append(panels, payload.SourcePanelID)
	}
	if !e.acquire(res.TransferID, panels) {
		return nil, fmt.Errorf("%w: another transfer is committing on an affected panel", shared.ErrStaleTransfer)
	}
	defer e.release(panels)

	snapshots, err := e.applyOptimistic(plan)
	if err != nil {
		return nil, err
	}
	res.State = StateOptimisticApplied

	res.State = StateCommitting
	for i, op := range plan.RemoteOps {
		if opErr := e.applyRemoteOp(ctx, op); opErr != nil {
			e.logger.Warn("remote op failed", "transfer", res.TransferID, "op", op.Kind.String(), "playlist", op.PlaylistID, "error", opErr)

			if destructiveApplied(plan.RemoteOps[:i]) {
				e.recover(ctx, plan)
				res.State = StateRecovered
				return res, fmt.Errorf("%w: %s failed after removal committed: %v", shared.ErrPartialTransfer, op.Kind, opErr)
			}

			for _, snap := range snapshots {
				if _, rbErr := e.registry.Rollback(snap); rbErr != nil {
					e.logger.Warn("rollback failed", "transfer", res.TransferID, "panel", snap.PanelID, "error", rbErr)
				}
			}
			res.State = StateRolledBack
			return res, fmt.Errorf("%w: %s on %s: %v", shared.ErrRemoteOp, op.Kind, op.PlaylistID, opErr)
		}
	}

	e.invalidate(plan)
	res.State = StateCommitted
	e.logger.Info("transfer committed",
		"transfer", res.TransferID,
		"mode", drop.Mode.String(),
		"tracks", len(payload.TrackIDs),
		"source", payload.SourcePlaylistID,
		"target", drop.TargetPlaylistID)
	return res, nil
}

// applyOptimistic rewrites the affected panels per the plan and returns their
// rollback snapshots, target last so rollbacks restore in reverse order.
func (e *Executor) applyOptimistic(plan *TransferPlan) ([]Snapshot, error) {
	var snapshots []Snapshot

	if plan.IntraPanel {
		snap, err := e.registry.ApplyOptimistic(plan.Drop.TargetPanelID, Mutation{
			Removals:   plan.Removals,
			Insertions: plan.Insertions,
			InsertAt:   plan.InsertAt,
		})
		if err != nil {
			return nil, err
		}
		return []Snapshot{snap}, nil
	}

	if len(plan.Removals) > 0 {
		snap, err := e.registry.ApplyOptimistic(plan.Payload.SourcePanelID, Mutation{
			Removals: plan.Removals,
		})
		if err != nil {
			return nil, err
		}
		snapshots = append(snapshots, snap)
	}

	snap, err := e.registry.ApplyOptimistic(plan.Drop.TargetPanelID, Mutation{
		Insertions: plan.Insertions,
		InsertAt:   plan.InsertAt,
	})
	if err != nil {
		// Undo the source rewrite so no partial optimistic state leaks out.
		for _, s := range snapshots {
			e.registry.Rollback(s)
		}
		return nil, err
	}
	snapshots = append(snapshots, snap)

	return snapshots, nil
}

func (e *Executor) applyRemoteOp(ctx context.Context, op RemoteOp) error {
	switch op.Kind {
	case OpReorder:
		return e.svc.ReorderTracks(ctx, op.PlaylistID, op.Positions, op.Index)
	case OpRemove:
		return e.svc.RemoveTracks(ctx, op.PlaylistID, op.URIs, op.Positions)
	case OpAdd:
		return e.svc.AddTracks(ctx, op.PlaylistID, op.URIs, op.Index)
	default:
		return fmt.Errorf("%w: unknown op kind %d", shared.ErrInvalidArgument, op.Kind)
	}
}

// recover re-fetches the affected playlists' current first page and rebinds
// the panels to the authoritative remote state. Used when a removal landed
// remotely but a later op failed: rolling back would resurrect tracks the
// remote service already deleted.
func (e *Executor) recover(ctx context.Context, plan *TransferPlan) {
	seen := map[string]string{
		plan.Payload.SourcePanelID: plan.Payload.SourcePlaylistID,
	}
	seen[plan.Drop.TargetPanelID] = plan.Drop.TargetPlaylistID

	for panelID, playlistID := range seen {
		page, err := e.svc.ListTracks(ctx, playlistID, "")
		if err != nil {
			e.logger.Warn("recovery fetch failed", "panel", panelID, "playlist", playlistID, "error", err)
			continue
		}
		if err := e.registry.Bind(panelID, playlistID, page); err != nil {
			e.logger.Warn("recovery rebind failed", "panel", panelID, "error", err)
		}
	}

	e.invalidate(plan)
}

// invalidate drops the cached views for both affected playlists so any other
// consumer bound to the same playlist refreshes on next read.
func (e *Executor) invalidate(plan *TransferPlan) {
	if e.store == nil {
		return
	}

	playlists := []string{plan.Drop.TargetPlaylistID}
	if plan.Payload.SourcePlaylistID != plan.Drop.TargetPlaylistID {
		playlists = append(playlists, plan.Payload.SourcePlaylistID)
	}

	for _, id := range playlists {
		for _, key := range []cache.Key{cache.TracksKey(id), cache.MetadataKey(id)} {
			if err := e.store.Invalidate(key); err != nil {
				e.logger.Warn("cache invalidation failed", "key", key, "error", err)
			}
		}
	}

	// Track counts in the playlist index change with every move or copy.
	if err := e.store.Invalidate(cache.LibraryKey()); err != nil {
		e.logger.Warn("cache invalidation failed", "key", cache.LibraryKey(), "error", err)
	}
}

func destructiveApplied(ops []RemoteOp) bool {
	for _, op := range ops {
		if op.Kind == OpRemove {
			return true
		}
	}
	return false
}

func (e *Executor) acquire(transferID string, panels []string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	for _, id := range panels {
		if _, busy := e.inflight[id]; busy {
			return false
		}
	}
	for _, id := range panels {
		e.inflight[id] = transferID
	}
	return true
}

func (e *Executor) release(panels []string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	for _, id := range panels {
		delete(e.inflight, id)
	}
}
