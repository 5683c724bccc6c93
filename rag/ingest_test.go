package rag_test

import (
	"context"
	"errors"
	"testing"

	"github.com/zidane0000/ai-interview-platform/rag"
)

type fakeExtractor struct {
	text string
	err  error
}

func (f *fakeExtractor) Extract(ctx context.Context, fileName string, data []byte) (string, error) {
	return f.text, f.err
}

type fakeEmbeddings struct {
	dims int
	err  error
}

func (f *fakeEmbeddings) Embed(ctx context.Context, text string) ([]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	return make([]float32, f.dims), nil
}

func (f *fakeEmbeddings) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = make([]float32, f.dims)
	}
	return out, nil
}

func (f *fakeEmbeddings) Dimensions() int { return f.dims }
func (f *fakeEmbeddings) ModelID() string { return "fake" }

func TestIngestCV_Success(t *testing.T) {
	extractor := &fakeExtractor{text: "Experienced backend engineer.\n\nBuilt distributed systems at scale."}
	embeddings := &fakeEmbeddings{dims: 8}
	store := rag.NewMemoryStore()
	idx := rag.NewIndex(extractor, embeddings, store)

	if err := idx.IngestCV(context.Background(), "interview-1", "cv.txt", []byte("ignored, extractor is faked")); err != nil {
		t.Fatalf("IngestCV: %v", err)
	}

	results, err := store.Search(context.Background(), "interview-1", make([]float32, 8), 5)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) == 0 {
		t.Fatal("expected at least one indexed chunk")
	}
}

func TestIngestCV_UnsupportedFormat(t *testing.T) {
	extractor := &fakeExtractor{err: rag.ErrUnsupportedFormat}
	idx := rag.NewIndex(extractor, &fakeEmbeddings{dims: 8}, rag.NewMemoryStore())

	err := idx.IngestCV(context.Background(), "interview-1", "cv.exe", []byte("data"))
	if !errors.Is(err, rag.ErrUnsupportedFormat) {
		t.Fatalf("IngestCV err = %v, want ErrUnsupportedFormat", err)
	}
}

func TestIngestCV_EmptyDocument(t *testing.T) {
	extractor := &fakeExtractor{text: "   "}
	idx := rag.NewIndex(extractor, &fakeEmbeddings{dims: 8}, rag.NewMemoryStore())

	err := idx.IngestCV(context.Background(), "interview-1", "cv.txt", []byte("data"))
	if !errors.Is(err, rag.ErrEmptyDocument) {
		t.Fatalf("IngestCV err = %v, want ErrEmptyDocument", err)
	}
}

func TestIngestCV_IndexUnavailableOnEmbeddingFailure(t *testing.T) {
	extractor := &fakeExtractor{text: "Some real CV content worth indexing."}
	embeddings := &fakeEmbeddings{dims: 8, err: errors.New("backend down")}
	idx := rag.NewIndex(extractor, embeddings, rag.NewMemoryStore())

	err := idx.IngestCV(context.Background(), "interview-1", "cv.txt", []byte("data"))
	if !errors.Is(err, rag.ErrIndexUnavailable) {
		t.Fatalf("IngestCV err = %v, want ErrIndexUnavailable", err)
	}
}

func TestRetrieve_DefaultsTopKToFive(t *testing.T) {
	extractor := &fakeExtractor{text: "one\n\ntwo\n\nthree\n\nfour\n\nfive\n\nsix\n\nseven"}
	embeddings := &fakeEmbeddings{dims: 4}
	store := rag.NewMemoryStore()
	idx := rag.NewIndex(extractor, embeddings, store)

	if err := idx.IngestCV(context.Background(), "interview-1", "cv.txt", []byte("data")); err != nil {
		t.Fatalf("IngestCV: %v", err)
	}

	results, err := idx.Retrieve(context.Background(), "interview-1", "query text", 0)
	if err != nil {
		t.Fatalf("Retrieve: %v", err)
	}
	if len(results) > 5 {
		t.Fatalf("len(results) = %d, want <= 5", len(results))
	}
}

func TestRetrieve_EmbeddingFailureReturnsIndexUnavailable(t *testing.T) {
	embeddings := &fakeEmbeddings{dims: 4, err: errors.New("backend down")}
	idx := rag.NewIndex(&fakeExtractor{}, embeddings, rag.NewMemoryStore())

	_, err := idx.Retrieve(context.Background(), "interview-1", "query", 5)
	if !errors.Is(err, rag.ErrIndexUnavailable) {
		t.Fatalf("Retrieve err = %v, want ErrIndexUnavailable", err)
	}
}

func TestIndex_Drop(t *testing.T) {
	extractor := &fakeExtractor{text: "content to index"}
	embeddings := &fakeEmbeddings{dims: 4}
	store := rag.NewMemoryStore()
	idx := rag.NewIndex(extractor, embeddings, store)

	if err := idx.IngestCV(context.Background(), "interview-1", "cv.txt", []byte("data")); err != nil {
		t.Fatalf("IngestCV: %v", err)
	}
	if err := idx.Drop(context.Background(), "interview-1"); err != nil {
		t.Fatalf("Drop: %v", err)
	}

	results, err := store.Search(context.Background(), "interview-1", make([]float32, 4), 5)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 0 {
		t.Fatalf("expected namespace dropped, got %d results", len(results))
	}
}
