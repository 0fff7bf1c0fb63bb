package modrinth

import (
	"context"
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
const Name = core.OriginModrinth

// DefaultBaseURL is the public Modrinth API.
const DefaultBaseURL = "https://api.modrinth.com"

type projectResponse struct {
	ID          string   `json:"id"`
	Slug        string   `json:"slug"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Categories  []string `json:"categories"`
	Downloads   int64    `json:"downloads"`
	ClientSide  string   `json:"client_side"`
	ServerSide  string   `json:"server_side"`
}

type versionResponse struct {
	ID            string   `json:"id"`
	ProjectID     string   `json:"project_id"`
	VersionNumber string   `json:"version_number"`
	GameVersions  []string `json:"game_versions"`
}

// Client reads project metadata from the Modrinth v2 API.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
	logger  *slog.Logger
}

// Option configures a Client.
type Option func(*Client) error

// WithBaseURL overrides the API base URL.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) error {
		if _, err := url.Parse(baseURL); err != nil {
			return fmt.Errorf("modrinth: invalid base URL: %w", err)
		}
		c.baseURL = strings.TrimSuffix(baseURL, "/")
		return nil
	}
}

// WithToken sets the Authorization token. Public data does not need one.
func WithToken(token string) Option {
	return func(c *Client) error {
		c.token = token
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

// NewClient creates a Modrinth catalog.
func NewClient(opts ...Option) (catalog.Catalog, error) {
	c := &Client{
		baseURL: DefaultBaseURL,
		http:    catalog.NewHTTPClient(0),
		logger:  slog.Default().With("component", "modrinth-catalog"),
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

// Fetch implements catalog.Catalog. With a file id the version comes from
// /version/{id}; without one the newest listed version is used.
func (c *Client) Fetch(ctx context.Context, ref core.ComponentReference) (*core.ExternalRecord, error) {
	headers := map[string]string{}
	if c.token != "" {
		headers["Authorization"] = c.token
	}

	var project projectResponse
	projectURL := fmt.Sprintf("%s/v2/project/%s", c.baseURL, url.PathEscape(ref.ProjectID))
	if err := catalog.GetJSON(ctx, c.http, projectURL, headers, &project); err != nil {
		return nil, err
	}

	version, err := c.version(ctx, ref, project.ID, headers)
	if err != nil {
		return nil, err
	}

	c.logger.Debug("fetched project", "project", ref.ProjectID, "version", version.VersionNumber)

	return &core.ExternalRecord{
		ProjectID:     ref.ProjectID,
		FileID:        ref.FileID,
		Title:         project.Title,
		Description:   project.Description,
		Version:       version.VersionNumber,
		Categories:    project.Categories,
		GameVersions:  version.GameVersions,
		DownloadCount: project.Downloads,
		Source:        Name,
		ClientSide:    project.ClientSide,
		ServerSide:    project.ServerSide,
	}, nil
}

// version resolves the version named by ref.FileID, or the newest one.
// A version owned by another project is reported as not found so the next
// catalog is tried.
func (c *Client) version(ctx context.Context, ref core.ComponentReference, projectID string, headers map[string]string) (*versionResponse, error) {
	if ref.FileID != "" {
		var v versionResponse
		versionURL := fmt.Sprintf("%s/v2/version/%s", c.baseURL, url.PathEscape(ref.FileID))
		if err := catalog.GetJSON(ctx, c.http, versionURL, headers, &v); err != nil {
			return nil, err
		}
		if v.ProjectID != projectID && v.ProjectID != ref.ProjectID {
			c.logger.Warn("version belongs to another project",
				"project", ref.ProjectID, "version", ref.FileID, "owner", v.ProjectID)
			return nil, fmt.Errorf("%w: version %s belongs to project %q, not %s",
				catalog.ErrNotFound, ref.FileID, v.ProjectID, ref.ProjectID)
		}
		return &v, nil
	}

	var versions []versionResponse
	listURL := fmt.Sprintf("%s/v2/project/%s/version", c.baseURL, url.PathEscape(ref.ProjectID))
	if err := catalog.GetJSON(ctx, c.http, listURL, headers, &versions); err != nil {
		return nil, err
	}
	if len(versions) == 0 {
		return nil, fmt.Errorf("%w: project %s has no versions", catalog.ErrNotFound, ref.ProjectID)
	}
	return &versions[0], nil
}
