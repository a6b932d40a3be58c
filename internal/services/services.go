// package services defines interface PlaylistService for the remote music service
package services

import (
	"context"

	"golang.org/x/oauth2"
)

// PlaylistService defines the operations the grid engine needs from the
// remote music service of record.
type PlaylistService interface {
	// Authenticate performs OAuth or token authentication with the service.
	// Returns an error if authentication fails.
	Authenticate(ctx context.Context, credentials map[string]string) error

	// GetPlaylists retrieves all playlists for the authenticated user.
	GetPlaylists(ctx context.Context) ([]Playlist, error)

	// GetPlaylist retrieves a specific playlist by ID.
	GetPlaylist(ctx context.Context, playlistID string) (*Playlist, error)

	// ListTracks retrieves one page of a playlist's tracks.
	// An empty cursor requests the first page; the returned page carries the
	// cursor for the next page, or an empty cursor when exhausted.
	ListTracks(ctx context.Context, playlistID, cursor string) (*TrackPage, error)

	// ReorderTracks moves the tracks at fromIndices so the block sits at
	// insertBefore in the post-removal ordering.
	ReorderTracks(ctx context.Context, playlistID string, fromIndices []int, insertBefore int) error

	// RemoveTracks removes the given track URIs at the given positions.
	// Positions address duplicates unambiguously; len(uris) == len(positions).
	RemoveTracks(ctx context.Context, playlistID string, uris []string, positions []int) error

	// AddTracks inserts the given track URIs at the given position.
	AddTracks(ctx context.Context, playlistID string, uris []string, position int) error

	// Name returns the name of the service (e.g., "Spotify")
	Name() string
}

// OAuthService extends PlaylistService for providers using browser-based OAuth flows.
type OAuthService interface {
	PlaylistService

	// GetAuthURL returns the authorization URL for user login.
	GetAuthURL(state string) string

	// GetOAuthConfig returns the underlying OAuth2 configuration.
	GetOAuthConfig() *oauth2.Config

	// OAuthenticate installs a previously issued token.
	OAuthenticate(ctx context.Context, token *oauth2.Token) error
}

// Playlist represents a playlist on the remote service
type Playlist struct {
	ID          string
	Name        string
	Description string
	TrackCount  int
	Public      bool
	OwnerID     string
	Editable    bool
}

// Track represents a single playlist entry
type Track struct {
	ID         string
	URI        string // The service's addressable form, used for mutations
	Title      string
	Artist     string
	Album      string
	DurationMS int
}

// TrackPage is one page of a playlist's tracks.
//
// NextCursor is the opaque token for the following page; empty means the
// listing is exhausted.
type TrackPage struct {
	Items      []Track
	Total      int
	NextCursor string
}
