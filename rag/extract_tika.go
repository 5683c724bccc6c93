package rag

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"strings"
	"time"
)

// ErrUnsupportedFormat is returned when a document's extension isn't one of
// the dispatched formats (spec §4.2: PDF, DOCX, TXT).
var ErrUnsupportedFormat = fmt.Errorf("rag: unsupported document format")

// TikaExtractor is a minimal Apache Tika HTTP client: PUT /tika with
// Accept: text/plain, returning extracted plain text.
type TikaExtractor struct {
	baseURL    string
	httpClient *http.Client
}

func NewTikaExtractor(baseURL string) *TikaExtractor {
	return &TikaExtractor{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

// Extract dispatches on fileName's extension and returns normalised plain
// text extracted from data. TXT is returned as-is (still whitespace-
// normalised); PDF and DOCX are sent to the Tika server.
func (c *TikaExtractor) Extract(ctx context.Context, fileName string, data []byte) (string, error) {
	ext := strings.ToLower(filepath.Ext(fileName))
	switch ext {
	case ".pdf", ".docx":
		return c.extractViaTika(ctx, fileName, data)
	case ".txt":
		return normalizeWhitespace(string(data)), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
}

func (c *TikaExtractor) extractViaTika(ctx context.Context, fileName string, data []byte) (string, error) {
	u := c.baseURL
	if u == "" {
		u = "http://localhost:9998"
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, u+"/tika", bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("tika: create request: %w", err)
	}
	req.Header.Set("Accept", "text/plain")
	if ct := contentTypeFromExt(filepath.Ext(fileName)); ct != "" {
		req.Header.Set("Content-Type", ct)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("tika: request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("tika: server returned HTTP %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("tika: read response: %w", err)
	}

	return normalizeWhitespace(string(body)), nil
}

func contentTypeFromExt(ext string) string {
	switch strings.ToLower(ext) {
	case ".pdf":
		return "application/pdf"
	case ".docx":
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	case ".txt":
		return "text/plain"
	default:
		if ext != "" {
			return mime.TypeByExtension(ext)
		}
	}
	return ""
}

// normalizeWhitespace collapses runs of whitespace (including newlines) to
// single spaces, trimming the result (spec §4.2: "normalises whitespace").
// Paragraph boundaries are preserved as double newlines so the chunker can
// still split on them.
func normalizeWhitespace(s string) string {
	paragraphs := strings.Split(s, "\n\n")
	for i, p := range paragraphs {
		fields := strings.Fields(p)
		paragraphs[i] = strings.Join(fields, " ")
	}
	joined := strings.Join(paragraphs, "\n\n")
	return strings.TrimSpace(joined)
}
