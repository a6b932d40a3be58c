// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/desertthunder/gridx/internal/services"
)

// MockService is a test double for [services.PlaylistService]
//
// When Err is set, every remote call returns it.
type MockService struct {
	Playlists []services.Playlist
	Pages     map[string]*services.TrackPage
	Err       error
}

func (m *MockService) Authenticate(ctx context.Context, credentials map[string]string) error {
	return nil
}

func (m *MockService) GetPlaylists(ctx context.Context) ([]services.Playlist, error) {
	return m.Playlists, nil
}

func (m *MockService) GetPlaylist(ctx context.Context, playlistID string) (*services.Playlist, error) {
	for _, p := range m.Playlists {
		if p.ID == playlistID {
			return &p, nil
		}
	}
	return nil, errors.New("playlist not found")
}

func (m *MockService) ListTracks(ctx context.Context, playlistID, cursor string) (*services.TrackPage, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	if page, ok := m.Pages[playlistID]; ok {
		return page, nil
	}
	return &services.TrackPage{}, nil
}

func (m *MockService) ReorderTracks(ctx context.Context, playlistID string, fromIndices []int, insertBefore int) error {
	return m.Err
}

func (m *MockService) RemoveTracks(ctx context.Context, playlistID string, uris []string, positions []int) error {
	return m.Err
}

func (m *MockService) AddTracks(ctx context.Context, playlistID string, uris []string, position int) error {
	return m.Err
}

func (m *MockService) Name() string { return "mock" }

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}
