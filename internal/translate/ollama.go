package translate

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/vidscribe/vidscribe/internal/subtitle"
	"go.uber.org/zap"
)

const (
	DefaultBaseURL = "http://localhost:11434"
	DefaultModel   = "qwen2.5:7b"
)

var ErrUnreachable = errors.New("ollama is not reachable")

// Client translates text through a local Ollama API.
type Client struct {
	BaseURL    string
	Model      string
	HTTPClient *http.Client
	Logger     *zap.Logger
}

func NewClient(baseURL, model string, logger *zap.Logger) *Client {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = DefaultBaseURL
	}
	if strings.TrimSpace(model) == "" {
		model = DefaultModel
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		Model:      model,
		HTTPClient: &http.Client{Timeout: 60 * time.Second},
		Logger:     logger,
	}
}

// Ping checks that the Ollama API answers before a batch of translation
// requests is started.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/api/tags", nil)
	if err != nil {
		return err
	}

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return c.wrapConnectionError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("ollama at %s answered with status %d", c.BaseURL, resp.StatusCode)
	}
	return nil
}

type generateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

type generateResponse struct {
	Response string `json:"response"`
}

// TranslateText translates a single string from sourceLang to targetLang.
// Languages are plain names ("English", "Chinese") or ISO codes; the model
// interprets them.
func (c *Client) TranslateText(ctx context.Context, text, sourceLang, targetLang string) (string, error) {
	prompt := fmt.Sprintf(
		"Translate the following from %s to %s. Only output the translation, nothing else:\n\n%s",
		sourceLang, targetLang, text,
	)

	payload, err := json.Marshal(generateRequest{Model: c.Model, Prompt: prompt, Stream: false})
	if err != nil {
		return "", fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/api/generate", bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return "", c.wrapConnectionError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("ollama answered with status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var parsed generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}

	return strings.TrimSpace(parsed.Response), nil
}

// TranslateTranscript translates every segment, preserving timestamps and
// order. onProgress, when non-nil, is called after each segment with the
// number of segments done and the total.
func (c *Client) TranslateTranscript(ctx context.Context, transcript subtitle.Transcript, sourceLang, targetLang string, onProgress func(done, total int)) (subtitle.Transcript, error) {
	translated := subtitle.Transcript{
		Language: targetLang,
		Segments: make([]subtitle.Segment, 0, len(transcript.Segments)),
	}

	total := len(transcript.Segments)
	for i, segment := range transcript.Segments {
		text, err := c.TranslateText(ctx, segment.Text, sourceLang, targetLang)
		if err != nil {
			return subtitle.Transcript{}, fmt.Errorf("translate segment %d of %d: %w", i+1, total, err)
		}

		translated.Segments = append(translated.Segments, subtitle.Segment{
			Start: segment.Start,
			End:   segment.End,
			Text:  text,
		})

		if onProgress != nil {
			onProgress(i+1, total)
		}
	}

	return translated, nil
}

func (c *Client) httpClient() *http.Client {
	if c.HTTPClient == nil {
		return &http.Client{Timeout: 60 * time.Second}
	}
	return c.HTTPClient
}

func (c *Client) wrapConnectionError(err error) error {
	var netErr *net.OpError
	if errors.As(err, &netErr) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w at %s (is `ollama serve` running?): %v", ErrUnreachable, c.BaseURL, err)
	}

	var urlErrTimeout interface{ Timeout() bool }
	if errors.As(err, &urlErrTimeout) && urlErrTimeout.Timeout() {
		return fmt.Errorf("%w at %s (request timed out): %v", ErrUnreachable, c.BaseURL, err)
	}

	return err
}
