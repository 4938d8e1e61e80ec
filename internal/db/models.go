package db

import (
	"time"
)

// CacheEntry is one cached catalog response.
type CacheEntry struct {
	Key       string
	Payload   []byte // JSON-encoded result
	FetchedAt time.Time
}
