package grid

import (
	"fmt"

	"github.com/desertthunder/gridx/internal/services"
	"github.com/desertthunder/gridx/internal/shared"
)

// Mode selects between moving and copying the dragged tracks.
type Mode int

const (
	Move Mode = iota
	Copy
)

func (m Mode) String() string {
	if m == Copy {
		return "copy"
	}
	return "move"
}

// DropResult describes the target of a drop, created at drop time and
// consumed immediately by the planner.
type DropResult struct {
	TargetPanelID    string
	TargetPlaylistID string
	TargetIndex      int // Insertion position, clamped to the target's length
	Mode             Mode
}

// OpKind enumerates the remote mutation request types.
type OpKind int

const (
	OpReorder OpKind = iota
	OpRemove
	OpAdd
)

func (k OpKind) String() string {
	switch k {
	case OpReorder:
		return "reorder"
	case OpRemove:
		return "remove"
	case OpAdd:
		return "add"
	default:
		return ""
	}
}

// RemoteOp is one mutation request against the remote service.
type RemoteOp struct {
	Kind       OpKind
	PlaylistID string
	URIs       []string // remove, add
	Positions  []int    // remove (positional addressing), reorder (source indices)
	Index      int      // add position, reorder insertion point
}

// TransferPlan is the computed outcome of a transfer.
//
// Applying Removals to the source and Insertions at InsertAt to the target
// reproduces SourceFinalOrder and TargetFinalOrder exactly; the final orders
// drive optimistic rendering while RemoteOps drive the commit.
type TransferPlan struct {
	Payload *DragPayload
	Drop    DropResult

	Removals   []int // Source panel positions, empty for copy
	Insertions []services.Track
	InsertAt   int // Post-removal insertion index in the target

	SourceFinalOrder []services.Track
	TargetFinalOrder []services.Track

	RemoteOps []RemoteOp

	// IntraPanel marks the degenerate transfer where source and target are
	// the same panel and playlist.
	IntraPanel bool
}

// NoOp reports whether the drop changes nothing and no remote call is needed.
func (p *TransferPlan) NoOp() bool {
	return len(p.RemoteOps) == 0
}

// PlanTransfer computes the plan for dropping payload onto drop, given the
// source and target panels' current orderings. Pure: no I/O, no mutation.
//
// The payload's indices are checked against the source ordering; a payload
// that no longer matches (the panel moved on since drag start) reports
// [shared.ErrStaleTransfer] so the UI can re-prompt the drop.
func PlanTransfer(payload *DragPayload, drop DropResult, source, target []services.Track) (*TransferPlan, error) {
	if payload == nil || !payload.valid() {
		return nil, fmt.Errorf("%w: planner requires a constructed payload", shared.ErrInvalidPayload)
	}

	dragged := make([]services.Track, len(payload.SourceIndices))
	for k, idx := range payload.SourceIndices {
		if idx >= len(source) {
			return nil, fmt.Errorf("%w: source index %d beyond panel length %d", shared.ErrStaleTransfer, idx, len(source))
		}
		if source[idx].ID != payload.TrackIDs[k] {
			return nil, fmt.Errorf("%w: track at index %d changed since drag start", shared.ErrStaleTransfer, idx)
		}
		dragged[k] = source[idx]
	}

	plan := &TransferPlan{
		Payload:    payload,
		Drop:       drop,
		IntraPanel: drop.TargetPanelID == payload.SourcePanelID && drop.TargetPlaylistID == payload.SourcePlaylistID,
	}

	if plan.IntraPanel && drop.Mode == Move {
		planReorder(plan, dragged, source)
		return plan, nil
	}

	clamped := clamp(drop.TargetIndex, 0, len(target))
	plan.InsertAt = clamped
	plan.Insertions = dragged
	plan.TargetFinalOrder = insertBlock(target, dragged, clamped)

	uris := append([]string(nil), payload.TrackURIs...)

	if drop.Mode == Copy {
		// Copy leaves the source untouched. The target keeps any entries that
		// duplicate the dragged URIs: repetition is valid user intent and the
		// remote service permits it.
		plan.SourceFinalOrder = append([]services.Track(nil), source...)
		if plan.IntraPanel {
			plan.SourceFinalOrder = plan.TargetFinalOrder
		}
		plan.RemoteOps = []RemoteOp{{
			Kind:       OpAdd,
			PlaylistID: drop.TargetPlaylistID,
			URIs:       uris,
			Index:      clamped,
		}}
		return plan, nil
	}

	plan.Removals = append([]int(nil), payload.SourceIndices...)
	plan.SourceFinalOrder = removeAt(source, payload.SourceIndices)
	plan.RemoteOps = []RemoteOp{
		{
			Kind:       OpRemove,
			PlaylistID: payload.SourcePlaylistID,
			URIs:       uris,
			Positions:  append([]int(nil), payload.SourceIndices...),
		},
		{
			Kind:       OpAdd,
			PlaylistID: drop.TargetPlaylistID,
			URIs:       uris,
			Index:      clamped,
		},
	}
	return plan, nil
}

// planReorder fills in the intra-panel reorder branch: remove the dragged
// tracks, reinsert the contiguous block at the drop index adjusted downward
// by the removed positions preceding it.
func planReorder(plan *TransferPlan, dragged, source []services.Track) {
	payload := plan.Payload
	clamped := clamp(plan.Drop.TargetIndex, 0, len(source))

	adjusted := clamped
	for _, idx := range payload.SourceIndices {
		if idx < clamped {
			adjusted--
		}
	}

	final := insertBlock(removeAt(source, payload.SourceIndices), dragged, adjusted)

	plan.SourceFinalOrder = final
	plan.TargetFinalOrder = final

	if sameOrder(final, source) {
		// Identity drop: the block would land where it already sits. No
		// remote call, no optimistic rewrite, no flicker.
		return
	}

	plan.Removals = append([]int(nil), payload.SourceIndices...)
	plan.Insertions = dragged
	plan.InsertAt = adjusted
	plan.RemoteOps = []RemoteOp{{
		Kind:       OpReorder,
		PlaylistID: payload.SourcePlaylistID,
		Positions:  append([]int(nil), payload.SourceIndices...),
		Index:      adjusted,
	}}
}

// removeAt returns tracks minus the entries at the given ascending indices.
func removeAt(tracks []services.Track, indices []int) []services.Track {
	out := make([]services.Track, 0, len(tracks)-len(indices))
	next := 0
	for i, t := range tracks {
		if next < len(indices) && indices[next] == i {
			next++
			continue
		}
		out = append(out, t)
	}
	return out
}

// insertBlock returns tracks with block inserted at the given index, which
// must already be clamped to [0, len(tracks)].
func insertBlock(tracks, block []services.Track, at int) []services.Track {
	out := make([]services.Track, 0, len(tracks)+len(block))
	out = append(out, tracks[:at]...)
	out = append(out, block...)
	out = append(out, tracks[at:]...)
	return out
}

func sameOrder(a, b []services.Track) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].ID != b[i].ID {
			return false
		}
	}
	return true
}
