// Package emailwriter is a client for the emailwriter HTTP API.
package emailwriter

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"
)

// Config holds the configuration for the emailwriter client.
type Config struct {
	// BaseURL is the root URL of the emailwriter server.
	// Example: "https://mail-assist.example.com"
	BaseURL string

	// CacheTTL controls how long analysis results are cached in memory.
	// Analysis is deterministic for a given email and language, generated
	// replies are never cached. Set to 0 to disable caching.
	CacheTTL time.Duration

	// HTTPClient is an optional custom HTTP client.
	// If nil, a default client with a 90s timeout is used.
	HTTPClient *http.Client
}

func (c *Config) defaults() {
	if c.HTTPClient == nil {
		c.HTTPClient = &http.Client{Timeout: 90 * time.Second}
	}
	c.BaseURL = strings.TrimSuffix(c.BaseURL, "/")
}

// Client calls the emailwriter API.
type Client struct {
	cfg   Config
	cache *analysisCache
}

// NewClient creates a new client with the given configuration.
func NewClient(cfg Config) *Client {
	cfg.defaults()
	return &Client{
		cfg:   cfg,
		cache: newAnalysisCache(),
	}
}

// Generate asks the server for a reply to req.EmailContent and returns it
// as plain text.
func (c *Client) Generate(ctx context.Context, req Request) (string, error) {
	body, err := c.post(ctx, "/api/email/generate", req, "text/plain")
	if err != nil {
		return "", err
	}
	return string(body), nil
}

// Analyze returns the sender, subject, key points and sentiment of an email.
func (c *Client) Analyze(ctx context.Context, req Request) (*Analysis, error) {
	key := cacheKey(req)
	if c.cfg.CacheTTL > 0 {
		if a, ok := c.cache.get(key); ok {
			return a, nil
		}
	}

	body, err := c.post(ctx, "/api/email/analyze", req, "application/json")
	if err != nil {
		return nil, err
	}

	var a Analysis
	if err := json.Unmarshal(body, &a); err != nil {
		return nil, fmt.Errorf("emailwriter: failed to parse analysis: %w", err)
	}

	if c.cfg.CacheTTL > 0 {
		c.cache.set(key, &a, c.cfg.CacheTTL)
	}
	return &a, nil
}

// Health returns nil when the server answers its health check.
func (c *Client) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+"/health", nil)
	if err != nil {
		return fmt.Errorf("emailwriter: failed to create request: %w", err)
	}
	resp, err := c.cfg.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("emailwriter: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return parseAPIError(resp.StatusCode, body)
	}
	return nil
}

// ClearCache drops every cached analysis.
func (c *Client) ClearCache() {
	c.cache.clear()
}

func (c *Client) post(ctx context.Context, path string, payload interface{}, accept string) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("emailwriter: failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+path, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("emailwriter: failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", accept)

	resp, err := c.cfg.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("emailwriter: request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("emailwriter: failed to read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return nil, parseAPIError(resp.StatusCode, body)
	}
	return body, nil
}

func cacheKey(req Request) string {
	h := sha256.New()
	h.Write([]byte(strings.ToLower(req.Language)))
	h.Write([]byte{0})
	h.Write([]byte(req.EmailContent))
	return hex.EncodeToString(h.Sum(nil))
}

// analysisCache is an in-memory TTL cache of analysis results.
type analysisCache struct {
	mu      sync.RWMutex
	entries map[string]*cacheEntry
}

type cacheEntry struct {
	analysis  *Analysis
	expiresAt time.Time
}

func newAnalysisCache() *analysisCache {
	return &analysisCache{entries: make(map[string]*cacheEntry)}
}

func (ac *analysisCache) get(key string) (*Analysis, bool) {
	ac.mu.RLock()
	entry, ok := ac.entries[key]
	ac.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if time.Now().After(entry.expiresAt) {
		ac.mu.Lock()
		delete(ac.entries, key)
		ac.mu.Unlock()
		return nil, false
	}
	a := *entry.analysis
	return &a, true
}

func (ac *analysisCache) set(key string, a *Analysis, ttl time.Duration) {
	cp := *a
	ac.mu.Lock()
	defer ac.mu.Unlock()
	ac.entries[key] = &cacheEntry{analysis: &cp, expiresAt: time.Now().Add(ttl)}
}

func (ac *analysisCache) clear() {
	ac.mu.Lock()
	defer ac.mu.Unlock()
	ac.entries = make(map[string]*cacheEntry)
}
