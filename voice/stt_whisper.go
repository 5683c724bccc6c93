package voice

import (
	"bytes"
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"
)

const bitsPerSample = 16

// Option is a functional option for configuring a WhisperProvider.
type Option func(*WhisperProvider)

// WithModel sets the model identifier forwarded to the whisper.cpp server
// (e.g. "base.en"). Empty leaves the server's own default model in effect.
func WithModel(model string) Option {
	return func(p *WhisperProvider) { p.model = model }
}

// WithLanguage sets the BCP-47 language code sent to the server. Defaults
// to "en".
func WithLanguage(lang string) Option {
	return func(p *WhisperProvider) { p.language = lang }
}

// WithHTTPClient overrides the default HTTP client (e.g. for test doubles).
func WithHTTPClient(client *http.Client) Option {
	return func(p *WhisperProvider) { p.httpClient = client }
}

// WhisperProvider transcribes one answer's complete audio via a single
// batch POST to a running whisper.cpp server's /inference endpoint. Unlike
// a live captioning session, the spec's unit of work is one already-recorded
// answer, so there is no streaming/partial-result machinery here.
type WhisperProvider struct {
	serverURL  string
	model      string
	language   string
	httpClient *http.Client
}

func NewWhisperProvider(serverURL string, opts ...Option) *WhisperProvider {
	p := &WhisperProvider{
		serverURL:  serverURL,
		language:   "en",
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

// Transcribe encodes pcm (16kHz mono, 16-bit signed little-endian) as a WAV
// file and POSTs it to the whisper.cpp inference endpoint.
func (p *WhisperProvider) Transcribe(ctx context.Context, pcm []byte) (string, error) {
	wav := encodeWAV(pcm, TargetSampleRate, TargetChannels)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	fw, err := mw.CreateFormFile("file", "answer.wav")
	if err != nil {
		return "", fmt.Errorf("whisper: create form file: %w", err)
	}
	if _, err := fw.Write(wav); err != nil {
		return "", fmt.Errorf("whisper: write wav data: %w", err)
	}
	if p.language != "" {
		if err := mw.WriteField("language", p.language); err != nil {
			return "", fmt.Errorf("whisper: write language field: %w", err)
		}
	}
	if p.model != "" {
		if err := mw.WriteField("model", p.model); err != nil {
			return "", fmt.Errorf("whisper: write model field: %w", err)
		}
	}
	if err := mw.Close(); err != nil {
		return "", fmt.Errorf("whisper: close multipart writer: %w", err)
	}

	endpoint := p.serverURL + "/inference"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, &body)
	if err != nil {
		return "", fmt.Errorf("whisper: create request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("whisper: http request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("whisper: server returned HTTP %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("whisper: read response body: %w", err)
	}

	var result struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal(data, &result); err != nil {
		return "", fmt.Errorf("whisper: parse JSON response: %w", err)
	}

	return result.Text, nil
}

// encodeWAV wraps raw 16-bit signed little-endian PCM data in a standard
// RIFF/WAV container.
func encodeWAV(pcm []byte, sampleRate, channels int) []byte {
	bps := bitsPerSample
	byteRate := sampleRate * channels * bps / 8
	blockAlign := channels * bps / 8
	dataSize := len(pcm)

	buf := make([]byte, 44+dataSize)

	copy(buf[0:4], "RIFF")
	binary.LittleEndian.PutUint32(buf[4:8], uint32(36+dataSize))
	copy(buf[8:12], "WAVE")

	copy(buf[12:16], "fmt ")
	binary.LittleEndian.PutUint32(buf[16:20], 16)
	binary.LittleEndian.PutUint16(buf[20:22], 1)
	binary.LittleEndian.PutUint16(buf[22:24], uint16(channels))
	binary.LittleEndian.PutUint32(buf[24:28], uint32(sampleRate))
	binary.LittleEndian.PutUint32(buf[28:32], uint32(byteRate))
	binary.LittleEndian.PutUint16(buf[32:34], uint16(blockAlign))
	binary.LittleEndian.PutUint16(buf[34:36], uint16(bps))

	copy(buf[36:40], "data")
	binary.LittleEndian.PutUint32(buf[40:44], uint32(dataSize))
	copy(buf[44:], pcm)

	return buf
}
