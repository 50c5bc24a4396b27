package domain

import "time"

// Document represents a corpus document after normalisation.
// Documents are immutable once loaded.
type Document struct {
	// ID is the unique identifier for the document.
	ID string

	// Source identifies where the document came from (usually the file name).
	Source string

	// URI is the original location (file path).
	URI string

	// Title is the human-readable title.
	Title string

	// Content is the full text content after normalisation.
	// This is the complete document text before chunking.
	Content string

	// Metadata contains arbitrary key-value pairs.
	Metadata map[string]any

	// LoadedAt is when the document was read from the corpus.
	LoadedAt time.Time
}

// Chunk is a contiguous text span derived from exactly one Document.
type Chunk struct {
	// ID is the unique identifier for the chunk.
	ID string

	// DocumentID links to the parent Document.
	DocumentID string

	// Source is copied from the parent document for display and provenance.
	Source string

	// Content is the text content of this chunk.
	Content string

	// Position is the 0-based sequence index within the document.
	Position int

	// Start and End are rune offsets of Content within the document.
	Start int
	End   int

	// Metadata contains chunk-specific key-value pairs.
	Metadata map[string]any
}

// Len returns the chunk length in runes.
func (c Chunk) Len() int {
	return c.End - c.Start
}

// IndexEntry is the unit persisted in the vector index.
type IndexEntry struct {
	// Chunk is the text span and its provenance.
	Chunk Chunk

	// Vector is the embedding of Chunk.Content.
	Vector []float32
}

// IndexInfo describes the state of a vector index.
type IndexInfo struct {
	// Built is false until the index has been populated at least once
	// and after a Clear that was not followed by an Upsert.
	Built bool `json:"built"`

	// Entries is the number of stored entries.
	Entries int `json:"entries"`

	// Dimensions is the embedding size of stored vectors (0 when empty).
	Dimensions int `json:"dimensions"`

	// Model is the embedding model that produced the vectors, when known.
	Model string `json:"model,omitempty"`

	// BuiltAt is when the current contents were written.
	BuiltAt time.Time `json:"built_at,omitempty"`
}
