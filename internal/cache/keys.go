package cache

import "fmt"

// Key is a derived cache key. Construct keys only through the functions
// below; the entity:field:id scheme keeps every cached view addressable.
type Key string

// TracksKey addresses a playlist's cached track listing.
func TracksKey(playlistID string) Key {
	return Key(fmt.Sprintf("playlist:tracks:%s", playlistID))
}

// MetadataKey addresses a playlist's cached metadata (name, counts, owner).
func MetadataKey(playlistID string) Key {
	return Key(fmt.Sprintf("playlist:meta:%s", playlistID))
}

// PermissionsKey addresses a playlist's cached edit permissions.
func PermissionsKey(playlistID string) Key {
	return Key(fmt.Sprintf("playlist:perms:%s", playlistID))
}

// LibraryKey addresses the authenticated user's cached playlist index.
func LibraryKey() Key {
	return Key("library:playlists")
}
