package grid

import "github.com/desertthunder/gridx/internal/shared"

// Cursor wraps the opaque pagination token returned by the remote service.
//
// The zero value is the exhausted cursor.
type Cursor struct {
	token string
}

// NewCursor wraps a token returned by the remote service. An empty token
// yields the exhausted cursor.
func NewCursor(token string) Cursor {
	return Cursor{token: token}
}

// HasMore reports whether another page can be fetched.
func (c Cursor) HasMore() bool {
	return c.token != ""
}

// Token returns the wrapped token for the next fetch.
// Fetching with an exhausted cursor is a programming error.
func (c Cursor) Token() (string, error) {
	if c.token == "" {
		return "", shared.ErrExhaustedCursor
	}
	return c.token, nil
}
