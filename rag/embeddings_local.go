package rag

import (
	"context"
	"hash/fnv"
	"math"
	"strings"
)

// LocalDimensions is the fixed dimensionality spec §4.2 names ("a fixed
// 384-dimensional sentence encoder").
const LocalDimensions = 384

// LocalProvider is a deterministic, dependency-free embedding provider: a
// hashing-trick bag-of-words encoder, L2-normalised into a 384-dimensional
// vector. No real sentence-embedding model binary ships in this pack, so
// this stands in for one the same way the teacher's mock AI provider stands
// in for a real LLM — reproducible and good enough to drive cosine-
// similarity retrieval end to end; a production deployment points
// EmbeddingBaseURL at a real encoder and uses HTTPProvider instead.
type LocalProvider struct{}

func NewLocalProvider() *LocalProvider {
	return &LocalProvider{}
}

func (p *LocalProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	return hashEmbed(text), nil
}

func (p *LocalProvider) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = hashEmbed(t)
	}
	return out, nil
}

func (p *LocalProvider) Dimensions() int { return LocalDimensions }

func (p *LocalProvider) ModelID() string { return "local-hashing-v1" }

func hashEmbed(text string) []float32 {
	vec := make([]float64, LocalDimensions)
	tokens := strings.Fields(strings.ToLower(text))
	for _, tok := range tokens {
		h := fnv.New32a()
		_, _ = h.Write([]byte(tok))
		idx := h.Sum32() % LocalDimensions
		// a second hash seeds the sign, so the hashing trick doesn't bias
		// every token's contribution in the same direction
		sh := fnv.New32a()
		_, _ = sh.Write([]byte(tok + "#sign"))
		sign := 1.0
		if sh.Sum32()%2 == 0 {
			sign = -1.0
		}
		vec[idx] += sign
	}

	var norm float64
	for _, v := range vec {
		norm += v * v
	}
	norm = math.Sqrt(norm)

	out := make([]float32, LocalDimensions)
	if norm == 0 {
		return out
	}
	for i, v := range vec {
		out[i] = float32(v / norm)
	}
	return out
}
