// Package translate is a client for the Google Cloud Translation v2 API.
package translate

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/buger/jsonparser"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	htransport "google.golang.org/api/transport/http"

	"github.com/emailwriter/emailwriter/internal/config"
	"github.com/emailwriter/emailwriter/internal/logger"
	"github.com/emailwriter/emailwriter/internal/metrics"
	"github.com/emailwriter/emailwriter/internal/model"
	"github.com/emailwriter/emailwriter/internal/upstream"
)

const (
	cloudTranslationScope = "https://www.googleapis.com/auth/cloud-translation"
	maxResponseBytes      = 8 << 20
)

// translateRequest is the POST body. q carries one entry per text.
type translateRequest struct {
	Q      []string `json:"q"`
	Target string   `json:"target"`
}

// Client translates text through the translation API
type Client struct {
	endpoint   string
	httpClient *http.Client
	timeout    time.Duration
	log        *logger.Logger
}

// NewClient creates a Client from cfg. A service account in
// cfg.CredentialsJSON takes precedence over cfg.APIKey; with neither,
// requests are sent unauthenticated.
func NewClient(ctx context.Context, cfg config.TranslateConfig, log *logger.Logger) (*Client, error) {
	var opts []option.ClientOption
	switch {
	case cfg.CredentialsJSON != "":
		creds, err := google.CredentialsFromJSON(ctx, []byte(cfg.CredentialsJSON), cloudTranslationScope)
		if err != nil {
			return nil, fmt.Errorf("translate: failed to parse credentials: %w", err)
		}
		opts = append(opts, option.WithCredentials(creds))
	case cfg.APIKey != "":
		// The transport appends it as the key query parameter
		opts = append(opts, option.WithAPIKey(cfg.APIKey))
	default:
		// Keyless, e.g. an authenticating proxy in front of the API
		opts = append(opts, option.WithoutAuthentication())
	}

	httpClient, _, err := htransport.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("translate: failed to create http client: %w", err)
	}

	return &Client{
		endpoint:   cfg.URL,
		httpClient: httpClient,
		timeout:    cfg.Timeout,
		log:        log.WithComponent("translate"),
	}, nil
}

// TranslateText translates text into targetLanguage. Absent or English
// targets return text unchanged without calling the API.
func (c *Client) TranslateText(ctx context.Context, text, targetLanguage string) (string, error) {
	if !NeedsTranslation(targetLanguage) {
		return text, nil
	}
	out, err := c.translate(ctx, []string{text}, targetLanguage)
	if err != nil {
		return "", err
	}
	return out[0], nil
}

// TranslateAnalysis returns a copy of resp with all four fields
// translated in one request. A nil resp or an absent target returns resp
// as is.
func (c *Client) TranslateAnalysis(ctx context.Context, resp *model.EmailAnalysisResponse, targetLanguage string) (*model.EmailAnalysisResponse, error) {
	if resp == nil || !NeedsTranslation(targetLanguage) {
		return resp, nil
	}
	out, err := c.translate(ctx, resp.Fields(), targetLanguage)
	if err != nil {
		return nil, err
	}
	return resp.WithFields(out), nil
}

func (c *Client) translate(ctx context.Context, texts []string, targetLanguage string) ([]string, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	payload, err := json.Marshal(translateRequest{Q: texts, Target: NormalizeLanguage(targetLanguage)})
	if err != nil {
		return nil, fail("encode", 0, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fail("build request", 0, err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.record(0, time.Since(start), err)
		return nil, fail("post", 0, err)
	}
	defer resp.Body.Close()

	if err := googleapi.CheckResponse(resp); err != nil {
		c.record(resp.StatusCode, time.Since(start), err)
		return nil, fail("post", resp.StatusCode, apiMessage(err))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	c.record(resp.StatusCode, time.Since(start), err)
	if err != nil {
		return nil, fail("read response", resp.StatusCode, err)
	}

	out, err := extractTranslations(body)
	if err != nil {
		return nil, fail("extract", resp.StatusCode, err)
	}
	if len(out) != len(texts) {
		return nil, fail("extract", resp.StatusCode, fmt.Errorf("got %d translations for %d texts", len(out), len(texts)))
	}
	return out, nil
}

// extractTranslations returns data.translations[].translatedText in order.
// The API answers in html format by default, so entities are decoded.
func extractTranslations(body []byte) ([]string, error) {
	if !json.Valid(body) {
		return nil, errors.New("malformed JSON response")
	}

	var (
		out     []string
		itemErr error
	)
	_, err := jsonparser.ArrayEach(body, func(value []byte, _ jsonparser.ValueType, _ int, _ error) {
		if itemErr != nil {
			return
		}
		text, err := jsonparser.GetString(value, "translatedText")
		if err != nil {
			itemErr = fmt.Errorf("translations[%d].translatedText: %w", len(out), err)
			return
		}
		out = append(out, html.UnescapeString(text))
	}, "data", "translations")
	if err != nil {
		return nil, fmt.Errorf("data.translations: %w", err)
	}
	if itemErr != nil {
		return nil, itemErr
	}
	return out, nil
}

// apiMessage reduces a googleapi.Error to its message while keeping it
// matchable with errors.As.
func apiMessage(err error) error {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) && gerr.Message != "" {
		return &apiError{gerr: gerr}
	}
	return err
}

type apiError struct {
	gerr *googleapi.Error
}

func (e *apiError) Error() string { return e.gerr.Message }

func (e *apiError) Unwrap() error { return e.gerr }

func fail(op string, status int, err error) error {
	return &upstream.Error{Kind: upstream.KindTranslation, Op: op, StatusCode: status, Err: err}
}

func (c *Client) record(status int, d time.Duration, err error) {
	label := "error"
	if status != 0 {
		label = strconv.Itoa(status)
	}
	metrics.RecordUpstreamCall("translate", label, d)
	c.log.UpstreamCall("translate", status, d, err)
}
