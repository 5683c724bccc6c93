package rag

import (
	"context"
	"time"
)

// Chunk is one embedded, retrievable unit of CV text, namespaced to a
// single interview (spec §9: "the CV index must be namespaced per
// interview").
type Chunk struct {
	ID          string
	InterviewID string
	Content     string
	Embedding   []float32
	Position    int
	CreatedAt   time.Time
}

// ScoredChunk is a Chunk returned from a similarity search, together with
// its cosine similarity score.
type ScoredChunk struct {
	Chunk Chunk
	Score float64
}

// Store is the vector-store abstraction: namespaced upsert, top-k cosine
// search, and namespace teardown.
type Store interface {
	// Upsert replaces all chunks for an interview namespace.
	Upsert(ctx context.Context, chunks []Chunk) error

	// Search returns the topK chunks in namespace interviewID closest to
	// query by cosine similarity, ordered most-similar first.
	Search(ctx context.Context, interviewID string, query []float32, topK int) ([]ScoredChunk, error)

	// Drop deletes every chunk in the given interview's namespace (spec
	// §9: "an explicit lifecycle hook to drop the namespace when the
	// interview is purged").
	Drop(ctx context.Context, interviewID string) error
}
