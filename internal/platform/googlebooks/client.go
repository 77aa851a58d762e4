package googlebooks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"librarycat/internal/apperr"
	"librarycat/internal/catalog"

	"golang.org/x/time/rate"
)

const DefaultBaseURL = "https://www.googleapis.com/books/v1"

type Config struct {
	BaseURL   string
	APIKey    string
	UserAgent string
	Timeout   time.Duration
	RPS       float64
}

// Client talks to the Google Books volumes API. Every call is a single
// attempt; failures are reported to the caller, not retried.
type Client struct {
	httpClient *http.Client
	userAgent  string
	baseURL    string
	apiKey     string
	limiter    *rate.Limiter
}

func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	limit := rate.Inf
	if cfg.RPS > 0 {
		limit = rate.Limit(cfg.RPS)
	}
	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		userAgent:  cfg.UserAgent,
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		limiter:    rate.NewLimiter(limit, 1),
	}
}

type volume struct {
	ID         string     `json:"id"`
	VolumeInfo volumeInfo `json:"volumeInfo"`
}

type volumeInfo struct {
	Title       *string  `json:"title"`
	Subtitle    *string  `json:"subtitle"`
	Authors     []string `json:"authors"`
	Publisher   *string  `json:"publisher"`
	Description *string  `json:"description"`
	Categories  []string `json:"categories"`
	ImageLinks  *struct {
		Thumbnail      string `json:"thumbnail"`
		SmallThumbnail string `json:"smallThumbnail"`
	} `json:"imageLinks"`
}

type searchResponse struct {
	TotalItems int      `json:"totalItems"`
	Items      []volume `json:"items"`
}

var errNotFound = errors.New("volume not found")

// LookupByID fetches one volume. An unknown id is reported as NotFound.
func (c *Client) LookupByID(ctx context.Context, id string) (catalog.Volume, error) {
	u := c.baseURL + "/volumes/" + url.PathEscape(id) + c.query(nil)

	var v volume
	if err := c.get(ctx, u, &v); err != nil {
		if errors.Is(err, errNotFound) {
			return catalog.Volume{}, apperr.NotFound("Book does not exist").WithCause(err)
		}
		return catalog.Volume{}, apperr.ErrConnectionFailure.WithCause(err)
	}
	if v.ID == "" {
		v.ID = id
	}
	return v.normalize(), nil
}

// LookupByQuery runs a volumes search. Zero matches is an empty slice.
func (c *Client) LookupByQuery(ctx context.Context, query string) ([]catalog.Volume, error) {
	u := c.baseURL + "/volumes" + c.query(url.Values{"q": {query}})

	var res searchResponse
	if err := c.get(ctx, u, &res); err != nil {
		return nil, apperr.ErrConnectionFailure.WithCause(err)
	}

	out := make([]catalog.Volume, 0, len(res.Items))
	for _, v := range res.Items {
		out = append(out, v.normalize())
	}
	return out, nil
}

func (c *Client) query(q url.Values) string {
	if q == nil {
		q = url.Values{}
	}
	if c.apiKey != "" {
		q.Set("key", c.apiKey)
	}
	if len(q) == 0 {
		return ""
	}
	return "?" + q.Encode()
}

func (c *Client) get(ctx context.Context, url string, target interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return errNotFound
	case resp.StatusCode != http.StatusOK:
		return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (v volume) normalize() catalog.Volume {
	info := v.VolumeInfo
	out := catalog.Volume{
		ExternalID:  v.ID,
		Title:       info.Title,
		Subtitle:    info.Subtitle,
		Publisher:   info.Publisher,
		Description: info.Description,
		Authors:     info.Authors,
		Categories:  info.Categories,
	}
	if info.ImageLinks != nil {
		cover := info.ImageLinks.Thumbnail
		if cover == "" {
			cover = info.ImageLinks.SmallThumbnail
		}
		if cover != "" {
			out.CoverURL = &cover
		}
	}
	return out
}
