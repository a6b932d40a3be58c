package shared

import (
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/oauth2"
)

func TestConfig(t *testing.T) {
	t.Run("DefaultConfig", func(t *testing.T) {
		config := DefaultConfig()

		if config.Database.Path != "gridx.db" {
			t.Errorf("expected database path gridx.db, got %s", config.Database.Path)
		}

		if config.Server.Port != 3000 {
			t.Errorf("expected server port 3000, got %d", config.Server.Port)
		}

		if config.Grid.Panels != 2 {
			t.Errorf("expected 2 panels, got %d", config.Grid.Panels)
		}

		if config.Grid.PageSize != 50 {
			t.Errorf("expected page size 50, got %d", config.Grid.PageSize)
		}

		if config.Credentials.Spotify.RedirectURI != "http://localhost:3000/callback" {
			t.Errorf("unexpected redirect URI %s", config.Credentials.Spotify.RedirectURI)
		}
	})

	t.Run("CreateConfigFile", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.toml")

		if err := CreateConfigFile(configPath); err != nil {
			t.Fatalf("failed to create config file: %v", err)
		}

		if _, err := os.Stat(configPath); err != nil {
			t.Fatalf("config file should exist: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load created config: %v", err)
		}

		defaultConfig := DefaultConfig()
		if config.Database.Path != defaultConfig.Database.Path {
			t.Errorf("created config database path doesn't match default")
		}

		if err := CreateConfigFile(configPath); err == nil {
			t.Error("creating config file again should fail")
		}
	})

	t.Run("LoadConfig", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.toml")

		testConfig := `[database]
path = "/custom/path.db"
max_open_conns = 20
max_idle_conns = 10

[server]
host = "0.0.0.0"
port = 8080

[credentials.spotify]
client_id = "test_client_id"
client_secret = "test_secret"
redirect_uri = "http://localhost:3000/callback"

[grid]
panels = 3
page_size = 25
`
		if err := os.WriteFile(configPath, []byte(testConfig), 0644); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load config: %v", err)
		}

		if config.Database.Path != "/custom/path.db" {
			t.Errorf("expected custom database path, got %s", config.Database.Path)
		}

		if config.Server.Port != 8080 {
			t.Errorf("expected port 8080, got %d", config.Server.Port)
		}

		if config.Credentials.Spotify.ClientID != "test_client_id" {
			t.Errorf("expected test_client_id, got %s", config.Credentials.Spotify.ClientID)
		}

		if config.Grid.Panels != 3 || config.Grid.PageSize != 25 {
			t.Errorf("unexpected grid settings: %+v", config.Grid)
		}
	})

	t.Run("LoadConfig Missing File", func(t *testing.T) {
		if _, err := LoadConfig("/nonexistent/config.toml"); err == nil {
			t.Error("loading a missing config should fail")
		}
	})

	t.Run("SaveConfig Round Trip", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.toml")

		config := DefaultConfig()
		config.Credentials.Spotify.ClientID = "saved_client_id"
		config.Grid.PageSize = 100

		if err := SaveConfig(configPath, config); err != nil {
			t.Fatalf("failed to save config: %v", err)
		}

		loaded, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to reload config: %v", err)
		}

		if loaded.Credentials.Spotify.ClientID != "saved_client_id" {
			t.Errorf("client_id did not survive the round trip, got %s", loaded.Credentials.Spotify.ClientID)
		}

		if loaded.Grid.PageSize != 100 {
			t.Errorf("page_size did not survive the round trip, got %d", loaded.Grid.PageSize)
		}
	})
}

func TestSpotifyConfig(t *testing.T) {
	t.Run("Map", func(t *testing.T) {
		cfg := SpotifyConfig{
			ClientID:     "id",
			ClientSecret: "secret",
			RedirectURI:  "http://localhost:3000/callback",
			AccessToken:  "access",
		}

		m := cfg.Map()
		if m["client_id"] != "id" || m["client_secret"] != "secret" || m["access_token"] != "access" {
			t.Errorf("unexpected credential map: %v", m)
		}
	})

	t.Run("Update", func(t *testing.T) {
		cfg := SpotifyConfig{RefreshToken: "old_refresh"}

		if err := cfg.Update(&oauth2.Token{AccessToken: "new_access"}); err != nil {
			t.Fatalf("update failed: %v", err)
		}
		if cfg.AccessToken != "new_access" {
			t.Errorf("expected new_access, got %s", cfg.AccessToken)
		}
		if cfg.RefreshToken != "old_refresh" {
			t.Error("empty refresh token in update should keep the stored one")
		}

		if err := cfg.Update(&oauth2.Token{AccessToken: "x", RefreshToken: "new_refresh"}); err != nil {
			t.Fatalf("update failed: %v", err)
		}
		if cfg.RefreshToken != "new_refresh" {
			t.Errorf("expected new_refresh, got %s", cfg.RefreshToken)
		}

		if err := cfg.Update(nil); err == nil {
			t.Error("nil token should be rejected")
		}
		if err := cfg.Update(&oauth2.Token{}); err == nil {
			t.Error("empty token should be rejected")
		}
	})

	t.Run("Token", func(t *testing.T) {
		cfg := SpotifyConfig{AccessToken: "a", RefreshToken: "r"}
		tok := cfg.Token()
		if tok.AccessToken != "a" || tok.RefreshToken != "r" {
			t.Errorf("unexpected token: %+v", tok)
		}
	})
}
