// Package gemini is a minimal client for the generateContent endpoint of the
// Gemini generative-language API.
package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/buger/jsonparser"

	"github.com/emailwriter/emailwriter/internal/config"
	"github.com/emailwriter/emailwriter/internal/logger"
	"github.com/emailwriter/emailwriter/internal/metrics"
	"github.com/emailwriter/emailwriter/internal/upstream"
)

const maxResponseBytes = 8 << 20

// ErrMalformedResponse is returned when the response body is not valid JSON
var ErrMalformedResponse = errors.New("malformed JSON response")

type generateRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

// Client calls the generative-language API
type Client struct {
	endpoint   string
	timeout    time.Duration
	httpClient *http.Client
	log        *logger.Logger
}

// NewClient creates a Client from cfg. httpClient may be nil.
func NewClient(cfg config.GeminiConfig, httpClient *http.Client, log *logger.Logger) (*Client, error) {
	u, err := url.Parse(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("gemini: invalid url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("gemini: url %q must be absolute", cfg.URL)
	}
	q := u.Query()
	q.Set("key", cfg.APIKey)
	u.RawQuery = q.Encode()

	if httpClient == nil {
		httpClient = &http.Client{}
	}

	return &Client{
		endpoint:   u.String(),
		timeout:    cfg.Timeout,
		httpClient: httpClient,
		log:        log.WithComponent("gemini"),
	}, nil
}

// GenerateReply sends prompt to the API and returns the first candidate's text
func (c *Client) GenerateReply(ctx context.Context, prompt string) (string, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	payload, err := json.Marshal(generateRequest{
		Contents: []content{{Parts: []part{{Text: prompt}}}},
	})
	if err != nil {
		return "", c.fail("encode", 0, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", c.fail("build request", 0, err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.record(0, time.Since(start), err)
		return "", c.fail("post", 0, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	c.record(resp.StatusCode, time.Since(start), err)
	if err != nil {
		return "", c.fail("read response", resp.StatusCode, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", c.fail("post", resp.StatusCode, apiError(body))
	}

	text, err := ExtractText(body)
	if err != nil {
		return "", c.fail("extract", resp.StatusCode, err)
	}
	return text, nil
}

// ExtractText returns candidates[0].content.parts[0].text from a
// generateContent response body. A missing candidate or part is an error.
// A part without text yields "", and scalar text values are returned in
// their JSON form ("42", "true", "null").
func ExtractText(body []byte) (string, error) {
	if !json.Valid(body) {
		return "", ErrMalformedResponse
	}

	part, partType, _, err := jsonparser.Get(body, "candidates", "[0]", "content", "parts", "[0]")
	if err != nil || partType != jsonparser.Object {
		return "", fmt.Errorf("candidates[0].content.parts[0]: %w", errMissing(err))
	}

	value, valueType, _, err := jsonparser.Get(part, "text")
	switch {
	case errors.Is(err, jsonparser.KeyPathNotFoundError):
		return "", nil
	case err != nil:
		return "", fmt.Errorf("candidates[0].content.parts[0].text: %w", err)
	}

	switch valueType {
	case jsonparser.String:
		return jsonparser.ParseString(value)
	case jsonparser.Number, jsonparser.Boolean, jsonparser.Null:
		return string(value), nil
	default:
		return "", nil
	}
}

func errMissing(err error) error {
	if err != nil {
		return err
	}
	return jsonparser.KeyPathNotFoundError
}

// apiError pulls the message out of a Google API error envelope
func apiError(body []byte) error {
	if msg, err := jsonparser.GetString(body, "error", "message"); err == nil && msg != "" {
		return errors.New(msg)
	}
	if len(body) > 200 {
		body = body[:200]
	}
	return fmt.Errorf("unexpected response: %s", bytes.TrimSpace(body))
}

func (c *Client) fail(op string, status int, err error) error {
	return &upstream.Error{Kind: upstream.KindGeneration, Op: op, StatusCode: status, Err: err}
}

func (c *Client) record(status int, d time.Duration, err error) {
	label := "error"
	if status != 0 {
		label = strconv.Itoa(status)
	}
	metrics.RecordUpstreamCall("gemini", label, d)
	c.log.UpstreamCall("gemini", status, d, err)
}
