// Package services defines the [PlaylistService] interface for the remote
// music service of record and implements it for Spotify.
//
// # PlaylistService Interface
//
// The grid engine mutates playlists exclusively through this interface:
// paged track listing, positional reorder, positional removal, and indexed
// addition. Every method returns a plain error; callers treat any failure as
// recoverable and apply the executor's fault policy.
//
// # Spotify Implementation
//
// [SpotifyService] wraps the Spotify Web API:
//   - ListTracks maps offset pagination onto opaque cursor tokens
//   - ReorderTracks maps index sets onto range_start/range_length/insert_before
//     calls, one per contiguous run
//   - RemoveTracks sends uris with positions so duplicate entries are
//     addressed positionally
//   - AddTracks sends uris with an explicit insertion position
//
// Authentication uses [oauth2] with automatic token refresh; requests are
// throttled with a [rate.Limiter] to respect API limits.
//
// # Error Handling
//
// Services use typed errors from the shared package:
//   - [shared.ErrNotAuthenticated] : Authenticate() not called
//   - [shared.ErrTokenExpired] : OAuth token expired, reauthorization needed
//   - [shared.ErrAPIRequest] : HTTP request failed
//   - [shared.ErrPlaylistNotFound] : playlist ID not found
package services
