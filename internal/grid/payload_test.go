package grid

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/desertthunder/gridx/internal/shared"
)

func TestNewDragPayload(t *testing.T) {
	t.Run("Valid Selection", func(t *testing.T) {
		p, err := NewDragPayload(
			[]string{"t1", "t2"},
			[]string{"spotify:track:t1", "spotify:track:t2"},
			"pl1", "panel1",
			[]int{0, 2},
		)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if p.Kind != DragDataKind {
			t.Errorf("expected kind %q, got %q", DragDataKind, p.Kind)
		}
		if len(p.TrackIDs) != 2 || len(p.TrackURIs) != 2 || len(p.SourceIndices) != 2 {
			t.Errorf("expected parallel sequences of length 2, got %d/%d/%d",
				len(p.TrackIDs), len(p.TrackURIs), len(p.SourceIndices))
		}
	})

	t.Run("Normalizes Index Order", func(t *testing.T) {
		p, err := NewDragPayload(
			[]string{"t3", "t1"},
			[]string{"uri3", "uri1"},
			"pl1", "panel1",
			[]int{3, 1},
		)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if p.SourceIndices[0] != 1 || p.SourceIndices[1] != 3 {
			t.Errorf("expected indices [1 3], got %v", p.SourceIndices)
		}
		if p.TrackIDs[0] != "t1" || p.TrackIDs[1] != "t3" {
			t.Errorf("ids not reordered with indices: %v", p.TrackIDs)
		}
		if p.TrackURIs[0] != "uri1" || p.TrackURIs[1] != "uri3" {
			t.Errorf("uris not reordered with indices: %v", p.TrackURIs)
		}
	})

	t.Run("Does Not Retain Inputs", func(t *testing.T) {
		ids := []string{"t1"}
		p, err := NewDragPayload(ids, []string{"uri1"}, "pl1", "panel1", []int{0})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		ids[0] = "mutated"
		if p.TrackIDs[0] != "t1" {
			t.Error("payload aliases caller slice")
		}
	})

	t.Run("Invalid Construction", func(t *testing.T) {
		tests := []struct {
			name       string
			ids, uris  []string
			playlist   string
			panel      string
			indices    []int
		}{
			{"empty selection", nil, nil, "pl1", "panel1", nil},
			{"length mismatch ids/uris", []string{"t1"}, []string{"u1", "u2"}, "pl1", "panel1", []int{0}},
			{"length mismatch indices", []string{"t1"}, []string{"u1"}, "pl1", "panel1", []int{0, 1}},
			{"missing playlist", []string{"t1"}, []string{"u1"}, "", "panel1", []int{0}},
			{"missing panel", []string{"t1"}, []string{"u1"}, "pl1", "", []int{0}},
			{"negative index", []string{"t1"}, []string{"u1"}, "pl1", "panel1", []int{-1}},
			{"duplicate index", []string{"t1", "t2"}, []string{"u1", "u2"}, "pl1", "panel1", []int{1, 1}},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				_, err := NewDragPayload(tt.ids, tt.uris, tt.playlist, tt.panel, tt.indices)
				if !errors.Is(err, shared.ErrInvalidPayload) {
					t.Errorf("expected ErrInvalidPayload, got %v", err)
				}
			})
		}
	})
}

func TestIsDragData(t *testing.T) {
	valid, err := NewDragPayload(
		[]string{"t1", "t2"},
		[]string{"uri1", "uri2"},
		"pl1", "panel1",
		[]int{0, 1},
	)
	if err != nil {
		t.Fatalf("failed to build payload: %v", err)
	}

	t.Run("Accepts Every Constructed Payload", func(t *testing.T) {
		if !IsDragData(valid.Encode()) {
			t.Error("predicate rejected a valid payload")
		}

		decoded, ok := DecodeDragData(valid.Encode())
		if !ok {
			t.Fatal("failed to decode a valid payload")
		}
		if decoded.SourcePlaylistID != "pl1" || decoded.SourcePanelID != "panel1" {
			t.Errorf("decoded payload lost fields: %+v", decoded)
		}
	})

	t.Run("Rejects Foreign Drag Sources", func(t *testing.T) {
		tests := []struct {
			name string
			data []byte
		}{
			{"not JSON", []byte("file:///home/user/song.mp3")},
			{"empty", nil},
			{"JSON without tag", []byte(`{"trackIds":["t1"],"trackUris":["u1"],"sourcePlaylistId":"pl1","sourcePanelId":"p1","sourceIndices":[0]}`)},
			{"wrong tag", []byte(`{"kind":"other/app","trackIds":["t1"],"trackUris":["u1"],"sourcePlaylistId":"pl1","sourcePanelId":"p1","sourceIndices":[0]}`)},
			{"JSON array", []byte(`[1,2,3]`)},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				if IsDragData(tt.data) {
					t.Error("predicate accepted foreign data")
				}
			})
		}
	})

	t.Run("Rejects Payload With Missing Fields", func(t *testing.T) {
		var full map[string]any
		if err := json.Unmarshal(valid.Encode(), &full); err != nil {
			t.Fatalf("failed to unmarshal payload: %v", err)
		}

		for field := range full {
			t.Run(field, func(t *testing.T) {
				partial := make(map[string]any, len(full)-1)
				for k, v := range full {
					if k != field {
						partial[k] = v
					}
				}

				data, err := json.Marshal(partial)
				if err != nil {
					t.Fatalf("failed to marshal partial payload: %v", err)
				}
				if IsDragData(data) {
					t.Errorf("predicate accepted payload missing %q", field)
				}
			})
		}
	})
}
