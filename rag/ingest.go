package rag

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/zidane0000/ai-interview-platform/utils"
)

// ErrEmptyDocument is returned when extraction succeeds but yields no usable
// text. Unlike ErrUnsupportedFormat, this is a recoverable downgrade at the
// Coordinator level: the interview proceeds without CV grounding rather than
// failing outright.
var ErrEmptyDocument = errors.New("rag: extracted document has no text")

// ErrIndexUnavailable wraps an embedding-backend or vector-store failure
// during ingest, and an embedding failure during retrieval. Like
// ErrEmptyDocument, the Coordinator treats this as a non-fatal warning.
var ErrIndexUnavailable = errors.New("rag: embedding index unavailable")

// Extractor pulls plain text out of a raw document. TikaExtractor is the
// production implementation.
type Extractor interface {
	Extract(ctx context.Context, fileName string, data []byte) (string, error)
}

// Index ties text extraction, chunking, embedding, and vector storage
// together behind the two operations spec §4.2 names: ingest and retrieve.
type Index struct {
	extractor  Extractor
	embeddings EmbeddingsProvider
	store      Store
}

func NewIndex(extractor Extractor, embeddings EmbeddingsProvider, store Store) *Index {
	return &Index{extractor: extractor, embeddings: embeddings, store: store}
}

// IngestCV extracts, chunks, embeds, and indexes fileName's contents under
// interviewID's namespace. It returns ErrUnsupportedFormat (a hard error),
// ErrEmptyDocument or ErrIndexUnavailable (both recoverable) for the three
// failure modes spec §4.2 describes; all other errors are unexpected
// plumbing failures.
func (idx *Index) IngestCV(ctx context.Context, interviewID, fileName string, data []byte) error {
	text, err := idx.extractor.Extract(ctx, fileName, data)
	if err != nil {
		if errors.Is(err, ErrUnsupportedFormat) {
			return err
		}
		return fmt.Errorf("rag: extract: %w", err)
	}

	pieces := Chunk(text)
	if len(pieces) == 0 {
		return ErrEmptyDocument
	}

	vectors, err := idx.embeddings.EmbedBatch(ctx, pieces)
	if err != nil {
		utils.Warningf("rag: embedding backend unavailable, proceeding without CV grounding: %v", err)
		return fmt.Errorf("%w: %v", ErrIndexUnavailable, err)
	}

	now := time.Now()
	chunks := make([]Chunk, 0, len(pieces))
	for i, p := range pieces {
		chunks = append(chunks, Chunk{
			ID:          fmt.Sprintf("%s-%d", interviewID, i),
			InterviewID: interviewID,
			Content:     p,
			Embedding:   vectors[i],
			Position:    i,
			CreatedAt:   now,
		})
	}

	if err := idx.store.Upsert(ctx, chunks); err != nil {
		return fmt.Errorf("%w: %v", ErrIndexUnavailable, err)
	}

	return nil
}

// Retrieve embeds query and returns the topK chunks most similar to it
// within interviewID's namespace (spec §4.2: retrieve(interview_id, query,
// k=5)).
func (idx *Index) Retrieve(ctx context.Context, interviewID, query string, topK int) ([]ScoredChunk, error) {
	if topK <= 0 {
		topK = 5
	}
	vec, err := idx.embeddings.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIndexUnavailable, err)
	}
	return idx.store.Search(ctx, interviewID, vec, topK)
}

// Drop removes interviewID's namespace entirely, for use when an interview
// is purged (spec §9).
func (idx *Index) Drop(ctx context.Context, interviewID string) error {
	return idx.store.Drop(ctx, interviewID)
}
