package pinecone

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/poiesic/packvault/core"
	"github.com/poiesic/packvault/storage"
)

const (
	// DefaultHost is the data plane address of a Pinecone Local index.
	DefaultHost = "http://localhost:5081"
	// DefaultDimension matches nomic-embed-text.
	DefaultDimension = 768
	// DefaultTimeout bounds a single request.
	DefaultTimeout = 30 * time.Second
)

// ErrRequestFailed indicates a non-200 response from the index.
var ErrRequestFailed = errors.New("pinecone request failed")

type vector struct {
	ID       string         `json:"id"`
	Values   []float32      `json:"values"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

type upsertRequest struct {
	Vectors   []vector `json:"vectors"`
	Namespace string   `json:"namespace,omitempty"`
}

type queryRequest struct {
	Vector          []float32      `json:"vector"`
	TopK            int            `json:"topK"`
	IncludeMetadata bool           `json:"includeMetadata"`
	Filter          map[string]any `json:"filter,omitempty"`
	Namespace       string         `json:"namespace,omitempty"`
}

type queryResponse struct {
	Matches []struct {
		ID       string         `json:"id"`
		Score    float32        `json:"score"`
		Metadata map[string]any `json:"metadata"`
	} `json:"matches"`
}

type statsResponse struct {
	Dimension        int `json:"dimension"`
	TotalVectorCount int `json:"totalVectorCount"`
	Namespaces       map[string]struct {
		VectorCount int `json:"vectorCount"`
	} `json:"namespaces"`
}

// Client is a storage.VectorStore backed by a Pinecone index.
type Client struct {
	host      string
	apiKey    string
	namespace string
	dimension int
	http      *http.Client
	logger    *slog.Logger
}

var _ storage.VectorStore = (*Client)(nil)

// Option configures a Client.
type Option func(*Client) error

// WithAPIKey sets the Api-Key header. Pinecone Local does not need one.
func WithAPIKey(key string) Option {
	return func(c *Client) error {
		c.apiKey = key
		return nil
	}
}

// WithNamespace scopes every request to a namespace.
func WithNamespace(namespace string) Option {
	return func(c *Client) error {
		c.namespace = namespace
		return nil
	}
}

// WithDimension sets the index dimension used for attribute-only queries.
func WithDimension(dimension int) Option {
	return func(c *Client) error {
		if dimension < 1 {
			return fmt.Errorf("pinecone: invalid dimension %d", dimension)
		}
		c.dimension = dimension
		return nil
	}
}

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) error {
		if client != nil {
			c.http = client
		}
		return nil
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) error {
		c.http = &http.Client{Timeout: timeout}
		return nil
	}
}

// NewClient creates a client for the index served at host.
func NewClient(host string, opts ...Option) (storage.VectorStore, error) {
	return newClient(host, opts...)
}

func newClient(host string, opts ...Option) (*Client, error) {
	if strings.TrimSpace(host) == "" {
		host = DefaultHost
	}
	c := &Client{
		host:      strings.TrimSuffix(host, "/"),
		dimension: DefaultDimension,
		http:      &http.Client{Timeout: DefaultTimeout},
		logger:    slog.Default().With("component", "pinecone-store"),
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Upsert implements storage.VectorStore.
func (c *Client) Upsert(ctx context.Context, id core.DocumentID, values []float32, attrs core.Attributes) error {
	if id == "" {
		return fmt.Errorf("%w: empty document id", storage.ErrInvalidQuery)
	}
	if len(values) == 0 {
		return storage.ErrEmptyVector
	}
	if len(values) != c.dimension {
		return fmt.Errorf("%w: got %d, want %d", storage.ErrDimensionMismatch, len(values), c.dimension)
	}

	req := upsertRequest{
		Vectors:   []vector{{ID: string(id), Values: values, Metadata: attrs}},
		Namespace: c.namespace,
	}
	if err := c.post(ctx, "/vectors/upsert", req, nil); err != nil {
		c.logger.Error("failed to upsert vector", "id", id, "err", err)
		return err
	}
	return nil
}

// Query implements storage.VectorStore. Pinecone has no attribute-only scan,
// so a zero vector query stands in for one; its result is capped at limit.
func (c *Client) Query(ctx context.Context, filter storage.Filter, limit int) ([]storage.Match, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("%w: limit must be positive", storage.ErrInvalidQuery)
	}
	return c.query(ctx, make([]float32, c.dimension), filter, limit)
}

// Search implements storage.VectorStore.
func (c *Client) Search(ctx context.Context, values []float32, filter storage.Filter, limit int) ([]storage.Match, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("%w: limit must be positive", storage.ErrInvalidQuery)
	}
	if len(values) == 0 {
		return nil, storage.ErrEmptyVector
	}
	return c.query(ctx, values, filter, limit)
}

// Count implements storage.VectorStore.
func (c *Client) Count(ctx context.Context) (int, error) {
	var stats statsResponse
	if err := c.do(ctx, http.MethodGet, "/describe_index_stats", nil, &stats); err != nil {
		return 0, err
	}
	if c.namespace != "" {
		return stats.Namespaces[c.namespace].VectorCount, nil
	}
	return stats.TotalVectorCount, nil
}

// Close implements storage.VectorStore.
func (c *Client) Close() error {
	c.http.CloseIdleConnections()
	return nil
}

func (c *Client) query(ctx context.Context, values []float32, filter storage.Filter, limit int) ([]storage.Match, error) {
	req := queryRequest{
		Vector:          values,
		TopK:            limit,
		IncludeMetadata: true,
		Filter:          translateFilter(filter),
		Namespace:       c.namespace,
	}
	var resp queryResponse
	if err := c.post(ctx, "/query", req, &resp); err != nil {
		return nil, err
	}

	matches := make([]storage.Match, 0, len(resp.Matches))
	for _, m := range resp.Matches {
		matches = append(matches, storage.Match{
			ID:         core.DocumentID(m.ID),
			Score:      m.Score,
			Attributes: decodeMetadata(m.Metadata),
		})
	}
	return matches, nil
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPost, path, body, out)
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.host+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("Api-Key", c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%w: %s %s: status %d: %s", ErrRequestFailed, method, path, resp.StatusCode, strings.TrimSpace(string(snippet)))
	}
	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// translateFilter turns equality conditions into Pinecone's $eq form.
func translateFilter(filter storage.Filter) map[string]any {
	if len(filter) == 0 {
		return nil
	}
	out := make(map[string]any, len(filter))
	for k, v := range filter {
		out[k] = map[string]any{"$eq": v}
	}
	return out
}

// decodeMetadata maps JSON metadata back onto attribute types:
// whole numbers become int64 and string lists become []string.
func decodeMetadata(metadata map[string]any) core.Attributes {
	attrs := make(core.Attributes, len(metadata))
	for k, v := range metadata {
		switch val := v.(type) {
		case float64:
			if val == math.Trunc(val) && math.Abs(val) < 1<<53 {
				attrs[k] = int64(val)
			} else {
				attrs[k] = val
			}
		case []any:
			list := make([]string, 0, len(val))
			for _, item := range val {
				list = append(list, fmt.Sprint(item))
			}
			attrs[k] = list
		default:
			attrs[k] = val
		}
	}
	return attrs
}
