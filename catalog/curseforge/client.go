package curseforge

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/poiesic/packvault/catalog"
	"github.com/poiesic/packvault/core"
)

// Name is the catalog name used in preference orders.
const Name = core.OriginCurseForge

// DefaultBaseURL is the public CurseForge API.
const DefaultBaseURL = "https://api.curseforge.com"

// ErrAPIKeyRequired is returned when the client is built without an API key.
var ErrAPIKeyRequired = errors.New("curseforge API key required")

type modResponse struct {
	Data struct {
		ID            int64  `json:"id"`
		Name          string `json:"name"`
		Summary       string `json:"summary"`
		DownloadCount int64  `json:"downloadCount"`
		Categories    []struct {
			Name string `json:"name"`
		} `json:"categories"`
	} `json:"data"`
}

type fileResponse struct {
	Data struct {
		ID           int64    `json:"id"`
		DisplayName  string   `json:"displayName"`
		FileName     string   `json:"fileName"`
		GameVersions []string `json:"gameVersions"`
	} `json:"data"`
}

// Client reads mod metadata from the CurseForge v1 API.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	logger  *slog.Logger
}

// Option configures a Client.
type Option func(*Client) error

// WithBaseURL overrides the API base URL.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) error {
		if _, err := url.Parse(baseURL); err != nil {
			return fmt.Errorf("curseforge: invalid base URL: %w", err)
		}
		c.baseURL = strings.TrimSuffix(baseURL, "/")
		return nil
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) error {
		c.http = catalog.NewHTTPClient(timeout)
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

// NewClient creates a CurseForge catalog.
func NewClient(apiKey string, opts ...Option) (catalog.Catalog, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, ErrAPIKeyRequired
	}
	c := &Client{
		baseURL: DefaultBaseURL,
		apiKey:  apiKey,
		http:    catalog.NewHTTPClient(0),
		logger:  slog.Default().With("component", "curseforge-catalog"),
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Name implements catalog.Catalog.
func (c *Client) Name() string {
	return Name
}

// Fetch implements catalog.Catalog. The file lookup supplies the version;
// when it fails the whole lookup fails so that distinct versions are never
// recorded under a placeholder.
func (c *Client) Fetch(ctx context.Context, ref core.ComponentReference) (*core.ExternalRecord, error) {
	if ref.FileID == "" {
		return nil, fmt.Errorf("curseforge: file id required for project %s", ref.ProjectID)
	}
	headers := map[string]string{"x-api-key": c.apiKey}

	var mod modResponse
	modURL := fmt.Sprintf("%s/v1/mods/%s", c.baseURL, url.PathEscape(ref.ProjectID))
	if err := catalog.GetJSON(ctx, c.http, modURL, headers, &mod); err != nil {
		return nil, err
	}

	var file fileResponse
	fileURL := fmt.Sprintf("%s/v1/mods/%s/files/%s", c.baseURL, url.PathEscape(ref.ProjectID), url.PathEscape(ref.FileID))
	if err := catalog.GetJSON(ctx, c.http, fileURL, headers, &file); err != nil {
		return nil, err
	}

	categories := make([]string, 0, len(mod.Data.Categories))
	for _, cat := range mod.Data.Categories {
		if cat.Name != "" {
			categories = append(categories, cat.Name)
		}
	}

	version := file.Data.DisplayName
	if version == "" {
		version = file.Data.FileName
	}

	c.logger.Debug("fetched mod", "project", ref.ProjectID, "file", ref.FileID, "version", version)

	return &core.ExternalRecord{
		ProjectID:     ref.ProjectID,
		FileID:        ref.FileID,
		Title:         mod.Data.Name,
		Description:   mod.Data.Summary,
		Version:       version,
		Categories:    categories,
		GameVersions:  file.Data.GameVersions,
		DownloadCount: mod.Data.DownloadCount,
		Source:        Name,
	}, nil
}
