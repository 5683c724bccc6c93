// Package rag implements CV ingestion, chunking, embedding, and vector
// retrieval (spec §4.2): text extraction, an overlapping chunker, an
// embeddings provider abstraction, and a namespaced vector store.
package rag

import "context"

// EmbeddingsProvider is the abstraction over any text-embedding backend.
// All vectors a single Provider instance returns share the same
// dimensionality.
type EmbeddingsProvider interface {
	// Embed computes the embedding vector for a single text string.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch computes embedding vectors for a slice of texts in one
	// call. The returned slice has the same length as texts; on error the
	// entire result is nil.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions returns the fixed length of every embedding vector this
	// provider produces.
	Dimensions() int

	// ModelID returns the provider-specific model identifier, for logging.
	ModelID() string
}
