package rag

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	pgvector "github.com/pgvector/pgvector-go"
)

// PgvectorStore is the production Store backed by a PostgreSQL cv_chunks
// table with a pgvector column, namespaced per interview.
//
// All methods are safe for concurrent use.
type PgvectorStore struct {
	pool *pgxpool.Pool
}

func NewPgvectorStore(pool *pgxpool.Pool) *PgvectorStore {
	return &PgvectorStore{pool: pool}
}

// Upsert replaces the full set of chunks for chunks[0].InterviewID: existing
// rows in that namespace are deleted and the new chunks inserted, all inside
// one transaction.
func (s *PgvectorStore) Upsert(ctx context.Context, chunks []Chunk) error {
	if len(chunks) == 0 {
		return nil
	}
	interviewID := chunks[0].InterviewID

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("pgvector store: begin: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM cv_chunks WHERE interview_id = $1`, interviewID); err != nil {
		return fmt.Errorf("pgvector store: clear namespace: %w", err)
	}

	const q = `
		INSERT INTO cv_chunks (id, interview_id, content, embedding, position, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
		    interview_id = EXCLUDED.interview_id,
		    content      = EXCLUDED.content,
		    embedding    = EXCLUDED.embedding,
		    position     = EXCLUDED.position,
		    created_at   = EXCLUDED.created_at`

	for _, c := range chunks {
		vec := pgvector.NewVector(c.Embedding)
		if _, err := tx.Exec(ctx, q, c.ID, c.InterviewID, c.Content, vec, c.Position, c.CreatedAt); err != nil {
			return fmt.Errorf("pgvector store: upsert chunk %s: %w", c.ID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("pgvector store: commit: %w", err)
	}
	return nil
}

// Search finds the topK chunks in interviewID's namespace closest to query
// by cosine distance, ordered most-similar first.
func (s *PgvectorStore) Search(ctx context.Context, interviewID string, query []float32, topK int) ([]ScoredChunk, error) {
	queryVec := pgvector.NewVector(query)

	const q = `
		SELECT id, interview_id, content, embedding, position, created_at,
		       1 - (embedding <=> $1) AS score
		FROM   cv_chunks
		WHERE  interview_id = $2
		ORDER  BY embedding <=> $1
		LIMIT  $3`

	rows, err := s.pool.Query(ctx, q, queryVec, interviewID, topK)
	if err != nil {
		return nil, fmt.Errorf("pgvector store: search: %w", err)
	}

	results, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (ScoredChunk, error) {
		var (
			sc  ScoredChunk
			vec pgvector.Vector
		)
		if err := row.Scan(
			&sc.Chunk.ID,
			&sc.Chunk.InterviewID,
			&sc.Chunk.Content,
			&vec,
			&sc.Chunk.Position,
			&sc.Chunk.CreatedAt,
			&sc.Score,
		); err != nil {
			return ScoredChunk{}, err
		}
		sc.Chunk.Embedding = vec.Slice()
		return sc, nil
	})
	if err != nil {
		return nil, fmt.Errorf("pgvector store: scan rows: %w", err)
	}
	if results == nil {
		results = []ScoredChunk{}
	}
	return results, nil
}

// Drop deletes every chunk in interviewID's namespace.
func (s *PgvectorStore) Drop(ctx context.Context, interviewID string) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM cv_chunks WHERE interview_id = $1`, interviewID); err != nil {
		return fmt.Errorf("pgvector store: drop namespace: %w", err)
	}
	return nil
}
