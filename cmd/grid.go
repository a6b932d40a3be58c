package main

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/gridx/internal/cache"
	"github.com/desertthunder/gridx/internal/grid"
	"github.com/desertthunder/gridx/internal/services"
	"github.com/desertthunder/gridx/internal/shared"
	"github.com/desertthunder/gridx/internal/ui"
	"github.com/urfave/cli/v3"
)

// Grid launches the interactive panel grid.
func (r *Runner) Grid(ctx context.Context, cmd *cli.Command) error {
	if r.spotify == nil {
		return fmt.Errorf("%w: Spotify service not initialized, run 'gridx spotify auth' first", shared.ErrServiceUnavailable)
	}

	panels := int(cmd.Int("panels"))
	if panels == 0 {
		panels = r.config.Grid.Panels
	}

	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, err := shared.NewFileLogger("./tmp/gridx-tui.log")
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	r.SetLogger(fileLogger)

	store, db := r.openStore()
	if db != nil {
		defer db.Close()
	}

	registry := grid.NewRegistry(fileLogger)
	executor := grid.NewExecutor(registry, r.spotify, store, fileLogger)

	model := ui.NewModel(ctx, r.spotify, registry, executor, panels)
	p := tea.NewProgram(model, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}
	return model.Err()
}

// openStore opens the persistent cache, falling back to an in-memory store
// when the database is unavailable.
func (r *Runner) openStore() (cache.Store, *sql.DB) {
	db, err := shared.NewDatabase(r.config.Database.Path)
	if err != nil {
		r.logger.Warn("cache database unavailable, using in-memory cache", "error", err)
		return cache.NewMemoryStore(), nil
	}

	shared.ConfigureDatabase(db, r.config.Database.MaxOpenConns, r.config.Database.MaxIdleConns)

	if err := shared.RunMigrations(db); err != nil {
		r.logger.Warn("cache migrations failed, using in-memory cache", "error", err)
		db.Close()
		return cache.NewMemoryStore(), nil
	}

	return cache.NewSQLiteStore(db), db
}

// TransferMove moves tracks between playlists without the TUI.
func (r *Runner) TransferMove(ctx context.Context, cmd *cli.Command) error {
	return r.runTransfer(ctx, cmd, grid.Move)
}

// TransferCopy copies tracks between playlists without the TUI.
func (r *Runner) TransferCopy(ctx context.Context, cmd *cli.Command) error {
	return r.runTransfer(ctx, cmd, grid.Copy)
}

// runTransfer binds throwaway panels to the two playlists, builds a payload
// from the requested indices, and executes the drop end to end.
func (r *Runner) runTransfer(ctx context.Context, cmd *cli.Command, mode grid.Mode) error {
	if r.spotify == nil {
		return fmt.Errorf("%w: Spotify service not initialized, run 'gridx spotify auth' first", shared.ErrServiceUnavailable)
	}

	fromID := cmd.String("from")
	toID := cmd.String("to")
	at := int(cmd.Int("at"))

	indices, err := parseIndices(cmd.String("indices"))
	if err != nil {
		return err
	}

	store, db := r.openStore()
	if db != nil {
		defer db.Close()
	}

	registry := grid.NewRegistry(r.logger)
	executor := grid.NewExecutor(registry, r.spotify, store, r.logger)

	sourcePanel := registry.Register("")
	sourceTracks, err := r.bindAll(ctx, registry, sourcePanel, fromID, indices[len(indices)-1]+1)
	if err != nil {
		return err
	}

	targetPanel := sourcePanel
	if fromID != toID {
		targetPanel = registry.Register("")
		if _, err := r.bindAll(ctx, registry, targetPanel, toID, 0); err != nil {
			return err
		}
	}

	ids := make([]string, len(indices))
	uris := make([]string, len(indices))
	for k, idx := range indices {
		if idx >= len(sourceTracks) {
			return fmt.Errorf("%w: index %d beyond playlist length %d", shared.ErrInvalidArgument, idx, len(sourceTracks))
		}
		ids[k] = sourceTracks[idx].ID
		uris[k] = sourceTracks[idx].URI
	}

	payload, err := grid.NewDragPayload(ids, uris, fromID, sourcePanel, indices)
	if err != nil {
		return err
	}

	if at < 0 {
		target, err := registry.Panel(targetPanel)
		if err != nil {
			return err
		}
		at = len(target.Tracks)
	}

	drop := grid.DropResult{
		TargetPanelID:    targetPanel,
		TargetPlaylistID: toID,
		TargetIndex:      at,
		Mode:             mode,
	}

	result, err := executor.Execute(ctx, payload, drop)
	if err != nil {
		if result != nil {
			return fmt.Errorf("transfer failed (%s): %w", result.State, err)
		}
		return fmt.Errorf("transfer failed: %w", err)
	}

	if cmd.Bool("json") {
		return r.writeJSON(map[string]any{
			"transferId": result.TransferID,
			"state":      result.State.String(),
			"mode":       mode.String(),
			"tracks":     len(ids),
			"from":       fromID,
			"to":         toID,
		}, true)
	}

	r.writePlain("✓ %s committed: %d track(s) from %s to %s\n", mode, len(ids), fromID, toID)
	return nil
}

// bindAll binds a panel to a playlist and keeps paging until at least
// minTracks are loaded or the cursor is exhausted.
func (r *Runner) bindAll(ctx context.Context, registry *grid.Registry, panelID, playlistID string, minTracks int) ([]services.Track, error) {
	page, err := r.spotify.ListTracks(ctx, playlistID, "")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	if err := registry.Bind(panelID, playlistID, page); err != nil {
		return nil, err
	}

	for {
		panel, err := registry.Panel(panelID)
		if err != nil {
			return nil, err
		}
		if len(panel.Tracks) >= minTracks || !panel.Cursor.HasMore() {
			return panel.Tracks, nil
		}

		req, ok, err := registry.BeginLoadMore(panelID)
		if err != nil || !ok {
			return panel.Tracks, err
		}

		next, err := r.spotify.ListTracks(ctx, req.PlaylistID, req.Cursor)
		if err != nil {
			registry.FailLoadMore(req)
			return nil, fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
		}
		registry.CompleteLoadMore(req, next)
	}
}

// parseIndices parses a comma-separated index list into a sorted, unique slice.
func parseIndices(raw string) ([]int, error) {
	parts := strings.Split(raw, ",")
	seen := make(map[int]bool, len(parts))
	indices := make([]int, 0, len(parts))

	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		idx, err := strconv.Atoi(part)
		if err != nil || idx < 0 {
			return nil, fmt.Errorf("%w: bad index %q", shared.ErrInvalidArgument, part)
		}
		if seen[idx] {
			continue
		}
		seen[idx] = true
		indices = append(indices, idx)
	}

	if len(indices) == 0 {
		return nil, fmt.Errorf("%w: no track indices given", shared.ErrMissingArgument)
	}

	sort.Ints(indices)
	return indices, nil
}
