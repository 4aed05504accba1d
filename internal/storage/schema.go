package storage

import (
	"time"
)

const currentSchemaVersion = "1.0.0"

// Document is the on-disk representation of a file system store.
// The whole mapping is serialized as a single JSON object and replaced
// atomically on every write.
type Document struct {
	Version   string            `json:"version"`    // Schema version, e.g., "1.0.0".
	StoreID   string            `json:"store_id"`   // Random identifier assigned when the document is first written.
	UpdatedAt time.Time         `json:"updated_at"` // Timestamp of the last write.
	Entries   map[string]string `json:"entries"`
}
