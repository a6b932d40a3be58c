package grid

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/desertthunder/gridx/internal/shared"
)

// DragDataKind tags serialized payloads so drops from unrelated drag sources
// (files, other applications) are rejected at the boundary.
const DragDataKind = "gridx/track-transfer"

// DragPayload describes the tracks being dragged. It is created at drag
// start, treated as immutable, and consumed on drop or discarded on cancel.
//
// The three sequences are parallel: entry k of TrackIDs, TrackURIs, and
// SourceIndices all describe the same logical track.
type DragPayload struct {
	Kind             string   `json:"kind"`
	TrackIDs         []string `json:"trackIds"`
	TrackURIs        []string `json:"trackUris"`
	SourcePlaylistID string   `json:"sourcePlaylistId"`
	SourcePanelID    string   `json:"sourcePanelId"`
	SourceIndices    []int    `json:"sourceIndices"`
}

// NewDragPayload constructs a payload for the given tracks.
//
// Fails with [shared.ErrInvalidPayload] when the parallel sequences differ in
// length, are empty, or contain a negative or duplicate index. Entries are
// normalized to ascending index order; inputs are copied, never retained.
func NewDragPayload(trackIDs, trackURIs []string, sourcePlaylistID, sourcePanelID string, sourceIndices []int) (*DragPayload, error) {
	if len(trackIDs) == 0 {
		return nil, fmt.Errorf("%w: empty selection", shared.ErrInvalidPayload)
	}
	if len(trackIDs) != len(trackURIs) || len(trackIDs) != len(sourceIndices) {
		return nil, fmt.Errorf("%w: trackIds(%d), trackUris(%d) and sourceIndices(%d) must be parallel",
			shared.ErrInvalidPayload, len(trackIDs), len(trackURIs), len(sourceIndices))
	}
	if sourcePlaylistID == "" || sourcePanelID == "" {
		return nil, fmt.Errorf("%w: missing source playlist or panel", shared.ErrInvalidPayload)
	}

	p := &DragPayload{
		Kind:             DragDataKind,
		TrackIDs:         append([]string(nil), trackIDs...),
		TrackURIs:        append([]string(nil), trackURIs...),
		SourcePlaylistID: sourcePlaylistID,
		SourcePanelID:    sourcePanelID,
		SourceIndices:    append([]int(nil), sourceIndices...),
	}

	order := make([]int, len(p.SourceIndices))
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool {
		return p.SourceIndices[order[a]] < p.SourceIndices[order[b]]
	})

	ids := make([]string, len(order))
	uris := make([]string, len(order))
	indices := make([]int, len(order))
	for i, o := range order {
		ids[i] = p.TrackIDs[o]
		uris[i] = p.TrackURIs[o]
		indices[i] = p.SourceIndices[o]
	}
	p.TrackIDs, p.TrackURIs, p.SourceIndices = ids, uris, indices

	for i, idx := range p.SourceIndices {
		if idx < 0 {
			return nil, fmt.Errorf("%w: negative source index %d", shared.ErrInvalidPayload, idx)
		}
		if i > 0 && idx == p.SourceIndices[i-1] {
			return nil, fmt.Errorf("%w: duplicate source index %d", shared.ErrInvalidPayload, idx)
		}
	}

	return p, nil
}

// Encode serializes the payload for the drag-data channel.
func (p *DragPayload) Encode() []byte {
	data, err := json.Marshal(p)
	if err != nil {
		// All payload fields are marshalable; this cannot happen for a
		// payload built by NewDragPayload.
		panic(fmt.Sprintf("failed to encode drag payload: %v", err))
	}
	return data
}

// DecodeDragData deserializes drag data from the drop boundary.
// The second return is false for anything that is not a valid payload.
func DecodeDragData(data []byte) (*DragPayload, bool) {
	var p DragPayload
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, false
	}
	if !p.valid() {
		return nil, false
	}
	return &p, true
}

// IsDragData is a total predicate over drop-boundary data: true iff the bytes
// are structurally a valid [DragPayload]. It never errors or panics.
func IsDragData(data []byte) bool {
	_, ok := DecodeDragData(data)
	return ok
}

func (p *DragPayload) valid() bool {
	if p.Kind != DragDataKind {
		return false
	}
	if len(p.TrackIDs) == 0 || len(p.TrackIDs) != len(p.TrackURIs) || len(p.TrackIDs) != len(p.SourceIndices) {
		return false
	}
	if p.SourcePlaylistID == "" || p.SourcePanelID == "" {
		return false
	}
	for i, idx := range p.SourceIndices {
		if idx < 0 || (i > 0 && idx <= p.SourceIndices[i-1]) {
			return false
		}
	}
	return true
}
