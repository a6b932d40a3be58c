package services

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"reflect"
	"strings"
	"sync"
	"testing"

	"github.com/desertthunder/gridx/internal/shared"
	"golang.org/x/oauth2"
)

func TestSpotifyService(t *testing.T) {
	t.Run("NewSpotifyService", func(t *testing.T) {
		t.Run("With Valid Credentials", func(t *testing.T) {
			credentials := map[string]string{
				"client_id":     "test_client_id",
				"client_secret": "test_client_secret",
				"redirect_uri":  "http://localhost:9999/callback",
			}

			srv, err := NewSpotifyService(credentials)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			if srv == nil {
				t.Fatal("expected service to be created")
			}

			if srv.Name() != "Spotify" {
				t.Errorf("expected service name 'Spotify', got %s", srv.Name())
			}
		})

		t.Run("Missing Client ID", func(t *testing.T) {
			credentials := map[string]string{
				"client_secret": "test_client_secret",
			}

			_, err := NewSpotifyService(credentials)
			if !errors.Is(err, shared.ErrMissingCredentials) {
				t.Errorf("expected ErrMissingCredentials for missing client_id, got %v", err)
			}
		})

		t.Run("Missing Client Secret", func(t *testing.T) {
			credentials := map[string]string{
				"client_id": "test_client_id",
			}

			_, err := NewSpotifyService(credentials)
			if !errors.Is(err, shared.ErrMissingCredentials) {
				t.Errorf("expected ErrMissingCredentials for missing client_secret, got %v", err)
			}
		})

		t.Run("Default Redirect URI", func(t *testing.T) {
			credentials := map[string]string{
				"client_id":     "test_client_id",
				"client_secret": "test_client_secret",
			}

			srv, err := NewSpotifyService(credentials)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			if srv.config.RedirectURL != "http://localhost:3000/callback" {
				t.Errorf("expected default redirect URI, got %s", srv.config.RedirectURL)
			}
		})
	})

	t.Run("Get AuthURL", func(t *testing.T) {
		credentials := map[string]string{
			"client_id":     "test_client_id",
			"client_secret": "test_client_secret",
		}

		srv, err := NewSpotifyService(credentials)
		if err != nil {
			t.Fatalf("failed to create service: %v", err)
		}

		authURL := srv.GetAuthURL("test_state")
		if authURL == "" {
			t.Error("expected auth URL to be generated")
		}

		if !strings.Contains(authURL, "accounts.spotify.com") {
			t.Error("auth URL should contain Spotify domain")
		}
		if !strings.Contains(authURL, "test_client_id") {
			t.Error("auth URL should contain client_id")
		}
		if !strings.Contains(authURL, "test_state") {
			t.Error("auth URL should contain state")
		}
	})

	t.Run("Authenticate", func(t *testing.T) {
		credentials := map[string]string{
			"client_id":     "test_client_id",
			"client_secret": "test_client_secret",
		}

		srv, err := NewSpotifyService(credentials)
		if err != nil {
			t.Fatalf("failed to create service: %v", err)
		}

		t.Run("With Access Token", func(t *testing.T) {
			authCreds := map[string]string{
				"access_token":  "test_access_token",
				"refresh_token": "test_refresh_token",
			}

			err := srv.Authenticate(context.Background(), authCreds)
			if err != nil {
				t.Errorf("expected no error with access token, got %v", err)
			}

			if srv.token == nil {
				t.Fatal("expected token to be set")
			}

			if srv.token.AccessToken != "test_access_token" {
				t.Errorf("expected access token to be 'test_access_token', got %s", srv.token.AccessToken)
			}
		})

		t.Run("Missing Credentials", func(t *testing.T) {
			err := srv.Authenticate(context.Background(), map[string]string{})
			if !errors.Is(err, shared.ErrMissingCredentials) {
				t.Errorf("expected ErrMissingCredentials, got %v", err)
			}
		})
	})

	t.Run("Service Interface", func(t *testing.T) {
		credentials := map[string]string{
			"client_id":     "test_client_id",
			"client_secret": "test_client_secret",
		}

		srv, err := NewSpotifyService(credentials)
		if err != nil {
			t.Fatalf("failed to create service: %v", err)
		}

		var _ PlaylistService = srv
		var _ OAuthService = srv
	})

	t.Run("Unauthenticated Request", func(t *testing.T) {
		srv, _ := NewSpotifyService(map[string]string{
			"client_id":     "test_client_id",
			"client_secret": "test_client_secret",
		})

		_, err := srv.ListTracks(context.Background(), "pl1", "")
		if !errors.Is(err, shared.ErrNotAuthenticated) {
			t.Errorf("expected ErrNotAuthenticated, got %v", err)
		}
	})
}

// authedService returns a service whose HTTP transport serves the queued
// responses and records requests.
func authedService(t *testing.T, rt *mockRoundTripper) *SpotifyService {
	t.Helper()

	srv, err := NewSpotifyService(map[string]string{
		"client_id":     "test_client_id",
		"client_secret": "test_client_secret",
	})
	if err != nil {
		t.Fatalf("failed to create service: %v", err)
	}

	srv.token = &oauth2.Token{AccessToken: "test_access_token"}
	srv.httpClient = &http.Client{Transport: rt}
	return srv
}

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(strings.NewReader(body)),
		Header:     http.Header{"Content-Type": []string{"application/json"}},
	}
}

// mockRoundTripper serves queued HTTP responses and records the requests it saw.
type mockRoundTripper struct {
	mu        sync.Mutex
	responses []*http.Response
	err       error
	Requests  []*http.Request
}

func newMockRoundTripper(responses []*http.Response, err error) *mockRoundTripper {
	return &mockRoundTripper{responses: responses, err: err}
}

func (m *mockRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Requests = append(m.Requests, req)
	if m.err != nil {
		return nil, m.err
	}
	if len(m.responses) == 0 {
		return nil, errors.New("no response queued")
	}
	resp := m.responses[0]
	m.responses = m.responses[1:]
	return resp, nil
}

func TestListTracks(t *testing.T) {
	t.Run("First Page", func(t *testing.T) {
		body := `{
			"items": [
				{"track": {"id": "t1", "uri": "spotify:track:t1", "name": "One", "artists": [{"name": "Artist"}], "album": {"name": "Album"}, "duration_ms": 1000}},
				{"track": {"id": "t2", "uri": "spotify:track:t2", "name": "Two", "artists": [], "album": {}, "duration_ms": 2000}}
			],
			"total": 120,
			"next": "https://api.spotify.com/v1/playlists/pl1/tracks?offset=50&limit=50"
		}`
		rt := newMockRoundTripper([]*http.Response{jsonResponse(200, body)}, nil)
		srv := authedService(t, rt)

		page, err := srv.ListTracks(context.Background(), "pl1", "")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if len(page.Items) != 2 || page.Total != 120 {
			t.Errorf("unexpected page: %+v", page)
		}
		if page.Items[0].Artist != "Artist" || page.Items[1].Artist != "" {
			t.Errorf("unexpected artist mapping: %+v", page.Items)
		}
		if page.NextCursor == "" {
			t.Error("expected a next cursor")
		}

		req := rt.Requests[0]
		if !strings.Contains(req.URL.Path, "/playlists/pl1/tracks") {
			t.Errorf("unexpected request path %s", req.URL.Path)
		}
		if req.Header.Get("Authorization") != "Bearer test_access_token" {
			t.Error("request missing bearer token")
		}
	})

	t.Run("Cursor Resumes At Next URL", func(t *testing.T) {
		rt := newMockRoundTripper([]*http.Response{jsonResponse(200, `{"items": [], "total": 120, "next": null}`)}, nil)
		srv := authedService(t, rt)

		cursor := "https://api.spotify.com/v1/playlists/pl1/tracks?offset=50&limit=50"
		page, err := srv.ListTracks(context.Background(), "pl1", cursor)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if page.NextCursor != "" {
			t.Errorf("expected exhausted cursor, got %q", page.NextCursor)
		}

		req := rt.Requests[0]
		if req.URL.Query().Get("offset") != "50" {
			t.Errorf("cursor offset not honored, url: %s", req.URL)
		}
	})

	t.Run("Foreign Cursor Rejected", func(t *testing.T) {
		srv := authedService(t, newMockRoundTripper(nil, nil))

		_, err := srv.ListTracks(context.Background(), "pl1", "https://evil.example.com/tracks")
		if !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})

	t.Run("Status Mapping", func(t *testing.T) {
		cases := []struct {
			name   string
			status int
			want   error
		}{
			{"Unauthorized", 401, shared.ErrTokenExpired},
			{"Not Found", 404, shared.ErrPlaylistNotFound},
			{"Server Error", 500, shared.ErrAPIRequest},
		}

		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				rt := newMockRoundTripper([]*http.Response{jsonResponse(tc.status, `{}`)}, nil)
				srv := authedService(t, rt)

				_, err := srv.ListTracks(context.Background(), "pl1", "")
				if !errors.Is(err, tc.want) {
					t.Errorf("expected %v, got %v", tc.want, err)
				}
			})
		}
	})
}

func TestRemoveTracks(t *testing.T) {
	t.Run("Pairs URIs With Positions", func(t *testing.T) {
		rt := newMockRoundTripper([]*http.Response{jsonResponse(200, `{}`)}, nil)
		srv := authedService(t, rt)

		err := srv.RemoveTracks(context.Background(), "pl1", []string{"spotify:track:a", "spotify:track:b"}, []int{0, 3})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		req := rt.Requests[0]
		if req.Method != "DELETE" {
			t.Errorf("expected DELETE, got %s", req.Method)
		}

		var body removeRequest
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
			t.Fatalf("failed to decode request body: %v", err)
		}
		want := removeRequest{Tracks: []removeTrack{
			{URI: "spotify:track:a", Positions: []int{0}},
			{URI: "spotify:track:b", Positions: []int{3}},
		}}
		if !reflect.DeepEqual(body, want) {
			t.Errorf("unexpected body %+v", body)
		}
	})

	t.Run("Mismatched Lengths Rejected", func(t *testing.T) {
		srv := authedService(t, newMockRoundTripper(nil, nil))

		err := srv.RemoveTracks(context.Background(), "pl1", []string{"spotify:track:a"}, []int{0, 1})
		if !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})

	t.Run("Empty Set Is A NoOp", func(t *testing.T) {
		rt := newMockRoundTripper(nil, nil)
		srv := authedService(t, rt)

		if err := srv.RemoveTracks(context.Background(), "pl1", nil, nil); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(rt.Requests) != 0 {
			t.Error("empty removal must not hit the API")
		}
	})
}

func TestAddTracks(t *testing.T) {
	rt := newMockRoundTripper([]*http.Response{jsonResponse(201, `{}`)}, nil)
	srv := authedService(t, rt)

	err := srv.AddTracks(context.Background(), "pl1", []string{"spotify:track:a"}, 2)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	req := rt.Requests[0]
	if req.Method != "POST" {
		t.Errorf("expected POST, got %s", req.Method)
	}

	var body addRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode request body: %v", err)
	}
	if !reflect.DeepEqual(body.URIs, []string{"spotify:track:a"}) || body.Position != 2 {
		t.Errorf("unexpected body %+v", body)
	}
}

// applyRangeMove simulates Spotify's reorder semantics on a slice.
func applyRangeMove(list []int, op reorderRequest) []int {
	block := append([]int(nil), list[op.RangeStart:op.RangeStart+op.RangeLength]...)
	rest := append([]int(nil), list[:op.RangeStart]...)
	rest = append(rest, list[op.RangeStart+op.RangeLength:]...)

	at := op.InsertBefore
	if at > op.RangeStart {
		at -= op.RangeLength
	}
	out := append([]int(nil), rest[:at]...)
	out = append(out, block...)
	return append(out, rest[at:]...)
}

func TestReorderOps(t *testing.T) {
	cases := []struct {
		name         string
		length       int
		fromIndices  []int
		insertBefore int
		want         []int
	}{
		{"single forward", 4, []int{1}, 2, []int{0, 2, 1, 3}},
		{"single backward", 4, []int{3}, 0, []int{3, 0, 1, 2}},
		{"contiguous block", 5, []int{1, 2}, 3, []int{0, 3, 4, 1, 2}},
		{"non contiguous", 5, []int{0, 2}, 3, []int{1, 3, 4, 0, 2}},
		{"to front", 5, []int{2, 4}, 0, []int{2, 4, 0, 1, 3}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ops := reorderOps(tc.fromIndices, tc.insertBefore)
			if len(ops) == 0 {
				t.Fatal("expected at least one range move")
			}

			list := make([]int, tc.length)
			for i := range list {
				list[i] = i
			}
			for _, op := range ops {
				list = applyRangeMove(list, op)
			}

			if !reflect.DeepEqual(list, tc.want) {
				t.Errorf("ops %v produced %v, want %v", ops, list, tc.want)
			}
		})
	}

	t.Run("Issues One Call Per Range", func(t *testing.T) {
		rt := newMockRoundTripper([]*http.Response{jsonResponse(200, `{}`), jsonResponse(200, `{}`)}, nil)
		srv := authedService(t, rt)

		if err := srv.ReorderTracks(context.Background(), "pl1", []int{0, 2}, 3); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if len(rt.Requests) == 0 {
			t.Fatal("expected reorder calls")
		}
		for _, req := range rt.Requests {
			if req.Method != "PUT" {
				t.Errorf("expected PUT, got %s", req.Method)
			}
		}
	})
}
