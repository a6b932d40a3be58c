// Spotify Web API implementation of [PlaylistService]
//
// Response types based on https://developer.spotify.com/documentation/web-api/reference/
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/desertthunder/gridx/internal/shared"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
)

const (
	spotifyAuthURL  = "https://accounts.spotify.com/authorize"
	spotifyTokenURL = "https://accounts.spotify.com/api/token"
	spotifyBaseURL  = "https://api.spotify.com/v1"

	defaultPageLimit = 50
)

// SpotifyTrack represents a Spotify track.
type SpotifyTrack struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	Artists    []SpotifyArtist `json:"artists"`
	Album      SpotifyAlbum    `json:"album"`
	DurationMS int             `json:"duration_ms"`
	URI        string          `json:"uri"`
}

// SpotifyArtist represents a Spotify artist.
type SpotifyArtist struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	URI  string `json:"uri"`
}

// SpotifyAlbum represents a Spotify album.
type SpotifyAlbum struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	URI  string `json:"uri"`
}

type Owner struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
}

type playlistTracksRef struct {
	Total int `json:"total"`
}

// SpotifySimplePlaylist represents a simplified playlist object (used in lists).
type SpotifySimplePlaylist struct {
	ID            string            `json:"id"`
	Name          string            `json:"name"`
	Description   string            `json:"description"`
	Owner         Owner             `json:"owner"`
	Public        bool              `json:"public"`
	Collaborative bool              `json:"collaborative"`
	Tracks        playlistTracksRef `json:"tracks"`
	URI           string            `json:"uri"`
}

// SpotifyPaginatedPlaylists represents a paginated response of playlists.
type SpotifyPaginatedPlaylists struct {
	Items  []SpotifySimplePlaylist `json:"items"`
	Total  int                     `json:"total"`
	Limit  int                     `json:"limit"`
	Offset int                     `json:"offset"`
	Next   *string                 `json:"next"`
}

// SpotifyPlaylistTrack represents a track within a playlist context.
type SpotifyPlaylistTrack struct {
	AddedAt string       `json:"added_at"`
	Track   SpotifyTrack `json:"track"`
}

// SpotifyPaginatedTracks represents a paginated response of playlist tracks.
type SpotifyPaginatedTracks struct {
	Items  []SpotifyPlaylistTrack `json:"items"`
	Total  int                    `json:"total"`
	Limit  int                    `json:"limit"`
	Offset int                    `json:"offset"`
	Next   *string                `json:"next"`
}

// SpotifyService implements [PlaylistService] for the Spotify Web API.
// Uses [oauth2] for authentication and a [rate.Limiter] to stay inside API limits.
type SpotifyService struct {
	config      *oauth2.Config
	token       *oauth2.Token
	httpClient  *http.Client
	credentials map[string]string
	limiter     *rate.Limiter
	userID      string
}

// NewSpotifyService creates a new Spotify service with the given OAuth2 credentials.
func NewSpotifyService(credentials map[string]string) (*SpotifyService, error) {
	clientID, ok := credentials["client_id"]
	if !ok || clientID == "" {
		return nil, fmt.Errorf("%w: missing client_id", shared.ErrMissingCredentials)
	}

	clientSecret, ok := credentials["client_secret"]
	if !ok || clientSecret == "" {
		return nil, fmt.Errorf("%w: missing client_secret", shared.ErrMissingCredentials)
	}

	redirectURI, ok := credentials["redirect_uri"]
	if !ok || redirectURI == "" {
		redirectURI = "http://localhost:3000/callback"
	}

	config := &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  redirectURI,
		Scopes: []string{
			"user-read-private",
			"playlist-read-private",
			"playlist-read-collaborative",
			"playlist-modify-public",
			"playlist-modify-private",
		},
		Endpoint: oauth2.Endpoint{
			AuthURL:  spotifyAuthURL,
			TokenURL: spotifyTokenURL,
		},
	}

	return &SpotifyService{
		config:      config,
		httpClient:  http.DefaultClient,
		credentials: credentials,
		limiter:     rate.NewLimiter(rate.Limit(5), 1),
	}, nil
}

// Authenticate performs OAuth2 authentication with Spotify. Expects either an "access_token" or "auth_code" in credentials.
func (s *SpotifyService) Authenticate(ctx context.Context, credentials map[string]string) error {
	if accessToken, ok := credentials["access_token"]; ok && accessToken != "" {
		token := &oauth2.Token{AccessToken: accessToken}
		if refresh, ok := credentials["refresh_token"]; ok {
			token.RefreshToken = refresh
		}
		return s.OAuthenticate(ctx, token)
	}

	if authCode, ok := credentials["auth_code"]; ok && authCode != "" {
		token, err := s.config.Exchange(ctx, authCode)
		if err != nil {
			return fmt.Errorf("%w: failed to exchange auth code: %v", shared.ErrAuthFailed, err)
		}
		return s.OAuthenticate(ctx, token)
	}

	return fmt.Errorf("%w: missing access_token or auth_code", shared.ErrMissingCredentials)
}

// OAuthenticate installs a previously issued [oauth2.Token].
// The derived client refreshes expired tokens automatically.
func (s *SpotifyService) OAuthenticate(ctx context.Context, token *oauth2.Token) error {
	if token == nil || token.AccessToken == "" {
		return fmt.Errorf("%w: empty token", shared.ErrMissingCredentials)
	}
	s.token = token
	s.httpClient = s.config.Client(ctx, token)
	return nil
}

func (s *SpotifyService) Name() string {
	return "Spotify"
}

// GetAuthURL returns the OAuth2 authorization URL for user login.
func (s *SpotifyService) GetAuthURL(state string) string {
	return s.config.AuthCodeURL(state, oauth2.AccessTypeOffline)
}

// GetOAuthConfig returns the underlying OAuth2 configuration.
func (s *SpotifyService) GetOAuthConfig() *oauth2.Config {
	return s.config
}

// doRequest performs an authenticated, rate-limited HTTP request to the Spotify API.
func (s *SpotifyService) doRequest(ctx context.Context, method, endpoint string, body any, result any) error {
	if s.token == nil {
		return fmt.Errorf("%w: call Authenticate first", shared.ErrNotAuthenticated)
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}

	apiURL := spotifyBaseURL + endpoint

	var reqBody *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	} else {
		reqBody = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, apiURL, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+s.token.AccessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return fmt.Errorf("%w: status %d", shared.ErrTokenExpired, resp.StatusCode)
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%w: status %d", shared.ErrPlaylistNotFound, resp.StatusCode)
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return fmt.Errorf("%w: spotify API status %d", shared.ErrAPIRequest, resp.StatusCode)
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}

// UserID retrieves and caches the authenticated user's ID.
func (s *SpotifyService) UserID(ctx context.Context) (string, error) {
	if s.userID != "" {
		return s.userID, nil
	}

	var user struct {
		ID string `json:"id"`
	}
	if err := s.doRequest(ctx, "GET", "/me", nil, &user); err != nil {
		return "", err
	}

	s.userID = user.ID
	return s.userID, nil
}

// GetPlaylists retrieves all playlists for the authenticated user.
func (s *SpotifyService) GetPlaylists(ctx context.Context) ([]Playlist, error) {
	userID, err := s.UserID(ctx)
	if err != nil {
		return nil, err
	}

	var allPlaylists []Playlist
	offset := 0

	for {
		endpoint := fmt.Sprintf("/me/playlists?limit=%d&offset=%d", defaultPageLimit, offset)

		var response SpotifyPaginatedPlaylists
		if err := s.doRequest(ctx, "GET", endpoint, nil, &response); err != nil {
			return nil, err
		}

		for _, sp := range response.Items {
			allPlaylists = append(allPlaylists, Playlist{
				ID:          sp.ID,
				Name:        sp.Name,
				Description: sp.Description,
				TrackCount:  sp.Tracks.Total,
				Public:      sp.Public,
				OwnerID:     sp.Owner.ID,
				Editable:    sp.Owner.ID == userID || sp.Collaborative,
			})
		}

		if response.Next == nil {
			break
		}
		offset += defaultPageLimit
	}

	return allPlaylists, nil
}

// GetPlaylist retrieves a playlist by ID.
func (s *SpotifyService) GetPlaylist(ctx context.Context, playlistID string) (*Playlist, error) {
	endpoint := fmt.Sprintf("/playlists/%s", playlistID)

	var sp SpotifySimplePlaylist
	if err := s.doRequest(ctx, "GET", endpoint, nil, &sp); err != nil {
		return nil, err
	}

	userID, _ := s.UserID(ctx)

	return &Playlist{
		ID:          sp.ID,
		Name:        sp.Name,
		Description: sp.Description,
		TrackCount:  sp.Tracks.Total,
		Public:      sp.Public,
		OwnerID:     sp.Owner.ID,
		Editable:    sp.Owner.ID == userID || sp.Collaborative,
	}, nil
}

// ListTracks retrieves one page of playlist tracks.
//
// The cursor is Spotify's own "next" URL, passed back verbatim; an empty
// cursor requests the first page.
func (s *SpotifyService) ListTracks(ctx context.Context, playlistID, cursor string) (*TrackPage, error) {
	endpoint := fmt.Sprintf("/playlists/%s/tracks?limit=%d&offset=0", playlistID, defaultPageLimit)
	if cursor != "" {
		if !strings.HasPrefix(cursor, spotifyBaseURL) {
			return nil, fmt.Errorf("%w: unrecognized cursor", shared.ErrInvalidArgument)
		}
		endpoint = strings.TrimPrefix(cursor, spotifyBaseURL)
	}

	var response SpotifyPaginatedTracks
	if err := s.doRequest(ctx, "GET", endpoint, nil, &response); err != nil {
		return nil, err
	}

	page := &TrackPage{Total: response.Total}
	for _, item := range response.Items {
		track := Track{
			ID:         item.Track.ID,
			URI:        item.Track.URI,
			Title:      item.Track.Name,
			Album:      item.Track.Album.Name,
			DurationMS: item.Track.DurationMS,
		}
		if len(item.Track.Artists) > 0 {
			track.Artist = item.Track.Artists[0].Name
		}
		page.Items = append(page.Items, track)
	}

	if response.Next != nil {
		page.NextCursor = *response.Next
	}

	return page, nil
}

// reorderRequest is the body of a PUT /playlists/{id}/tracks call.
type reorderRequest struct {
	RangeStart   int `json:"range_start"`
	RangeLength  int `json:"range_length"`
	InsertBefore int `json:"insert_before"`
}

// ReorderTracks moves the tracks at fromIndices so the block sits at
// insertBefore in the post-removal ordering.
//
// Spotify's reorder endpoint moves one contiguous range per call, so the
// index set is decomposed into the minimal sequence of range moves.
func (s *SpotifyService) ReorderTracks(ctx context.Context, playlistID string, fromIndices []int, insertBefore int) error {
	if len(fromIndices) == 0 {
		return nil
	}

	ops := reorderOps(fromIndices, insertBefore)

	endpoint := fmt.Sprintf("/playlists/%s/tracks", playlistID)
	for _, op := range ops {
		if err := s.doRequest(ctx, "PUT", endpoint, op, nil); err != nil {
			return err
		}
	}

	return nil
}

// reorderOps decomposes a move of the tracks at fromIndices (ascending) to
// insertBefore (post-removal index) into sequential Spotify range moves.
//
// The ops are derived by simulating the target ordering and greedily moving
// the longest contiguous run into place, mirroring how the API applies each
// call to the then-current list.
func reorderOps(fromIndices []int, insertBefore int) []reorderRequest {
	moved := make(map[int]bool, len(fromIndices))
	max := fromIndices[len(fromIndices)-1]
	for _, idx := range fromIndices {
		moved[idx] = true
	}

	n := max + 1
	if needed := insertBefore + len(fromIndices); needed > n {
		n = needed
	}

	// Current and desired orderings over sentinel positions.
	current := make([]int, n)
	for i := range current {
		current[i] = i
	}

	desired := make([]int, 0, n)
	for i := 0; i < n && len(desired) < insertBefore; i++ {
		if !moved[i] {
			desired = append(desired, i)
		}
	}
	desired = append(desired, fromIndices...)
	for i := 0; i < n; i++ {
		if !moved[i] && !contains(desired[:insertBefore], i) {
			desired = append(desired, i)
		}
	}

	var ops []reorderRequest
	for i := 0; i < n; i++ {
		if current[i] == desired[i] {
			continue
		}

		j := indexOf(current, desired[i])
		length := 1
		for i+length < n && j+length < n && current[j+length] == desired[i+length] {
			length++
		}

		ops = append(ops, reorderRequest{RangeStart: j, RangeLength: length, InsertBefore: i})

		// Apply the range move to the simulated list.
		block := append([]int(nil), current[j:j+length]...)
		rest := append([]int(nil), current[:j]...)
		rest = append(rest, current[j+length:]...)
		current = append(rest[:i:i], append(block, rest[i:]...)...)
	}

	return ops
}

func contains(s []int, v int) bool {
	for _, x := range s {
		if x == v {
			return true
		}
	}
	return false
}

func indexOf(s []int, v int) int {
	for i, x := range s {
		if x == v {
			return i
		}
	}
	return -1
}

// removeRequest is the body of a DELETE /playlists/{id}/tracks call.
type removeRequest struct {
	Tracks []removeTrack `json:"tracks"`
}

type removeTrack struct {
	URI       string `json:"uri"`
	Positions []int  `json:"positions"`
}

// RemoveTracks removes the given track URIs at the given positions.
func (s *SpotifyService) RemoveTracks(ctx context.Context, playlistID string, uris []string, positions []int) error {
	if len(uris) != len(positions) {
		return fmt.Errorf("%w: uris and positions must pair up", shared.ErrInvalidArgument)
	}
	if len(uris) == 0 {
		return nil
	}

	body := removeRequest{Tracks: make([]removeTrack, len(uris))}
	for i, uri := range uris {
		body.Tracks[i] = removeTrack{URI: uri, Positions: []int{positions[i]}}
	}

	endpoint := fmt.Sprintf("/playlists/%s/tracks", playlistID)
	return s.doRequest(ctx, "DELETE", endpoint, body, nil)
}

// addRequest is the body of a POST /playlists/{id}/tracks call.
type addRequest struct {
	URIs     []string `json:"uris"`
	Position int      `json:"position"`
}

// AddTracks inserts the given track URIs at the given position.
func (s *SpotifyService) AddTracks(ctx context.Context, playlistID string, uris []string, position int) error {
	if len(uris) == 0 {
		return nil
	}

	endpoint := fmt.Sprintf("/playlists/%s/tracks", playlistID)
	return s.doRequest(ctx, "POST", endpoint, addRequest{URIs: uris, Position: position}, nil)
}
