package ui

import (
	"github.com/desertthunder/gridx/internal/grid"
	"github.com/desertthunder/gridx/internal/services"
)

// playlistsFetchedMsg carries the user's playlist index for the picker.
type playlistsFetchedMsg struct {
	playlists []services.Playlist
	err       error
}

// panelBoundMsg carries the first page of a playlist selected for a panel.
type panelBoundMsg struct {
	panelID    string
	playlistID string
	page       *services.TrackPage
	err        error
}

// pageLoadedMsg carries one fetched page for a pending load request.
type pageLoadedMsg struct {
	req  grid.LoadRequest
	page *services.TrackPage
	err  error
}

// transferDoneMsg carries the outcome of an executed drop.
type transferDoneMsg struct {
	result *grid.Result
	err    error
}
