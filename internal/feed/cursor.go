package feed

import (
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/spotcheck/spotfeed/internal/store"
)

// EncodeCursor renders a page marker as an opaque cursor string.
func EncodeCursor(marker store.PageMarker) string {
	raw, _ := json.Marshal(marker)
	return base64.RawURLEncoding.EncodeToString(raw)
}

// DecodeCursor parses an opaque cursor string back into a page marker.
// An empty cursor means "from the beginning" and decodes to nil.
func DecodeCursor(cursor string) (*store.PageMarker, error) {
	if cursor == "" {
		return nil, nil
	}
	raw, err := base64.RawURLEncoding.DecodeString(cursor)
	if err != nil {
		return nil, fmt.Errorf("feed: malformed cursor: %w", err)
	}
	var marker store.PageMarker
	if err := json.Unmarshal(raw, &marker); err != nil {
		return nil, fmt.Errorf("feed: malformed cursor: %w", err)
	}
	return &marker, nil
}
