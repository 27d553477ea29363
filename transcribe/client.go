package transcribe

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const (
	// DefaultBaseURL is where a locally started Whisper server listens
	DefaultBaseURL = "http://127.0.0.1:5000"

	// DefaultTimeout for the whole request (large models can be slow)
	DefaultTimeout = 10 * time.Minute

	// MaxUploadSize matches the server's 40MB content limit
	MaxUploadSize = 40 * 1024 * 1024

	transcribePath = "/transcribe"
)

// Client talks to the transcription endpoint
type Client struct {
	baseURL       string
	httpClient    *http.Client
	maxUploadSize int64
	debug         bool
}

// ClientOption configures the Client
type ClientOption func(*Client)

// WithHTTPClient sets a custom HTTP client
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = client
	}
}

// WithTimeout sets the HTTP client timeout
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// WithDebug enables debug logging
func WithDebug(debug bool) ClientOption {
	return func(c *Client) {
		c.debug = debug
	}
}

// WithMaxUploadSize overrides the local upload size check (0 disables it)
func WithMaxUploadSize(n int64) ClientOption {
	return func(c *Client) {
		c.maxUploadSize = n
	}
}

// NewClient creates a client for the server at baseURL
func NewClient(baseURL string, opts ...ClientOption) (*Client, error) {
	baseURL = strings.TrimSuffix(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, fmt.Errorf("server URL is required")
	}
	if !strings.HasPrefix(baseURL, "http://") && !strings.HasPrefix(baseURL, "https://") {
		return nil, fmt.Errorf("server URL must start with http:// or https://, got %q", baseURL)
	}

	c := &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		maxUploadSize: MaxUploadSize,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// NewClientFromConfig creates a client from loaded configuration
func NewClientFromConfig(cfg Config, opts ...ClientOption) (*Client, error) {
	base := []ClientOption{WithDebug(cfg.Debug)}
	if cfg.Timeout > 0 {
		base = append(base, WithTimeout(cfg.Timeout))
	}
	return NewClient(cfg.BaseURL, append(base, opts...)...)
}

// BaseURL returns the server URL the client posts to
func (c *Client) BaseURL() string {
	return c.baseURL
}

// PendingResponse is a response whose headers have arrived but whose body
// has not been decoded yet.
type PendingResponse struct {
	StatusCode int
	resp       *http.Response
	debug      bool
}

// Send uploads the request and returns as soon as the server answers.
// Exactly one HTTP request is issued; nothing is sent when validation fails.
func (c *Client) Send(ctx context.Context, req *Request) (*PendingResponse, error) {
	if req == nil || strings.TrimSpace(req.FilePath) == "" {
		return nil, ErrNoFile
	}

	info, err := os.Stat(req.FilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to access file: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory, not an audio file", req.FilePath)
	}
	if c.maxUploadSize > 0 && info.Size() > c.maxUploadSize {
		return nil, fmt.Errorf("file size %s exceeds the %s upload limit",
			FormatSize(info.Size()), FormatSize(c.maxUploadSize))
	}

	body, contentType, err := buildForm(req)
	if err != nil {
		return nil, err
	}

	url := c.baseURL + transcribePath
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, body)
	if err != nil {
		body.Close()
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", contentType)
	httpReq.Header.Set("Accept", "application/json")

	if c.debug {
		log.Printf("[DEBUG] POST %s", url)
		log.Printf("[DEBUG] file=%s language=%s model=%s size=%d",
			filepath.Base(req.FilePath), languageOrDefault(req.Language), req.Model, info.Size())
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}

	if c.debug {
		log.Printf("[DEBUG] Response status: %d", resp.StatusCode)
	}

	return &PendingResponse{StatusCode: resp.StatusCode, resp: resp, debug: c.debug}, nil
}

// Decode reads the JSON body and closes it. Non-success statuses are
// returned as *APIError.
func (p *PendingResponse) Decode() (*Response, error) {
	defer p.resp.Body.Close()

	respBody, err := io.ReadAll(p.resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if p.debug {
		if len(respBody) < 2000 {
			log.Printf("[DEBUG] Response body: %s", string(respBody))
		} else {
			log.Printf("[DEBUG] Response body (truncated): %s...", string(respBody[:2000]))
		}
	}

	if p.StatusCode < 200 || p.StatusCode > 299 {
		apiErr := &APIError{StatusCode: p.StatusCode}
		// An undecodable error body falls back to the default message
		_ = json.Unmarshal(respBody, apiErr)
		return nil, apiErr
	}

	var result *Response
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	if result == nil {
		return nil, fmt.Errorf("failed to parse response: empty payload")
	}

	return result, nil
}

// Transcribe uploads the file and waits for the decoded result
func (c *Client) Transcribe(ctx context.Context, req *Request) (*Response, error) {
	pending, err := c.Send(ctx, req)
	if err != nil {
		return nil, err
	}
	return pending.Decode()
}

// buildForm streams the multipart body through a pipe so the file is never
// held in memory. The returned reader is closed by the HTTP transport.
func buildForm(req *Request) (io.ReadCloser, string, error) {
	file, err := os.Open(req.FilePath)
	if err != nil {
		return nil, "", fmt.Errorf("failed to open file: %w", err)
	}

	pr, pw := io.Pipe()
	writer := multipart.NewWriter(pw)

	go func() {
		defer file.Close()
		pw.CloseWithError(writeForm(writer, file, req))
	}()

	return pr, writer.FormDataContentType(), nil
}

func writeForm(writer *multipart.Writer, file *os.File, req *Request) error {
	part, err := writer.CreateFormFile("audio", filepath.Base(req.FilePath))
	if err != nil {
		return fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return fmt.Errorf("failed to copy file to form: %w", err)
	}

	if err := writer.WriteField("language", languageOrDefault(req.Language)); err != nil {
		return fmt.Errorf("failed to write language: %w", err)
	}

	if req.Model != "" {
		if err := writer.WriteField("model", req.Model); err != nil {
			return fmt.Errorf("failed to write model: %w", err)
		}
	}

	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to close multipart writer: %w", err)
	}
	return nil
}

func languageOrDefault(lang string) string {
	if strings.TrimSpace(lang) == "" {
		return DefaultLanguage
	}
	return lang
}
