// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI presents a grid of playlist panels side by side:
//  1. [PickerView] : Bind the focused panel to one of the user's playlists
//  2. [GridView] : Browse panels, mark tracks, grab and drop them across panels
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern, receiving messages via typed msg structs.
// Panel state lives in the grid registry; drops run through the transfer executor in a background tea.Cmd, so the
// grid keeps rendering the optimistic ordering while the remote commit is in flight. Commit failures surface in a
// dismissable banner without blocking navigation.
//
// Keyboard navigation uses vim-style bindings (j/k, tab, space, g, m, c, esc, q) with contextual help displayed via charmbracelet/bubbles/help.
package ui
