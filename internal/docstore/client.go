// Package docstore talks to a remote document store over its JSON HTTP API.
package docstore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ThaiNguyen-DEV/cinema-ticket-booking-app/internal/catalog"
	"github.com/ThaiNguyen-DEV/cinema-ticket-booking-app/internal/domain"
)

// ErrNotFound is returned when the store has no document with the given id.
var ErrNotFound = errors.New("docstore: not found")

// Client reads collections from a remote document store. It implements
// catalog.Source.
type Client struct {
	baseURL *url.URL
	apiKey  string
	client  *http.Client
	logger  *log.Logger
}

var _ catalog.Source = (*Client)(nil)

// NewClient constructs an HTTP-backed document store client.
func NewClient(baseURL, apiKey string, timeout time.Duration, logger *log.Logger) (*Client, error) {
	if logger == nil {
		logger = log.Default()
	}
	parsed, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse docstore url: %w", err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("parse docstore url: %q is not absolute", baseURL)
	}
	return &Client{
		baseURL: parsed,
		apiKey:  apiKey,
		client: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				Proxy: http.ProxyFromEnvironment,
				DialContext: (&net.Dialer{
					Timeout:   timeout,
					KeepAlive: 30 * time.Second,
				}).DialContext,
				TLSHandshakeTimeout:   timeout,
				ResponseHeaderTimeout: timeout,
				ExpectContinueTimeout: 1 * time.Second,
			},
		},
		logger: logger,
	}, nil
}

type documentsPayload struct {
	Documents []domain.Document `json:"documents"`
}

// List returns every document of a collection in store order.
func (c *Client) List(ctx context.Context, collection string) ([]domain.Document, error) {
	var payload documentsPayload
	if err := c.do(ctx, http.MethodGet, nil, &payload, "collections", collection, "documents"); err != nil {
		return nil, err
	}
	return nonNil(payload.Documents), nil
}

// Query posts a range spec to be evaluated by the store.
func (c *Client) Query(ctx context.Context, collection string, spec catalog.RangeSpec) ([]domain.Document, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	var payload documentsPayload
	if err := c.do(ctx, http.MethodPost, spec, &payload, "collections", collection, "query"); err != nil {
		return nil, err
	}
	return nonNil(payload.Documents), nil
}

// Get fetches one document.
func (c *Client) Get(ctx context.Context, collection, id string) (domain.Document, error) {
	var doc domain.Document
	if err := c.do(ctx, http.MethodGet, nil, &doc, "collections", collection, "documents", id); err != nil {
		return domain.Document{}, err
	}
	return doc, nil
}

// HealthCheck verifies the store answers.
func (c *Client) HealthCheck(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, nil, nil, "healthz")
}

// ListMovies returns every movie document.
func (c *Client) ListMovies(ctx context.Context) ([]domain.MovieRecord, error) {
	docs, err := c.List(ctx, domain.CollectionMovies)
	if err != nil {
		return nil, err
	}
	return moviesFromDocuments(docs), nil
}

// QueryMovies pushes a range query to the store.
func (c *Client) QueryMovies(ctx context.Context, spec catalog.RangeSpec) ([]domain.MovieRecord, error) {
	docs, err := c.Query(ctx, domain.CollectionMovies, spec)
	if err != nil {
		return nil, err
	}
	return moviesFromDocuments(docs), nil
}

// ListPromotions returns promotions in store order; callers sort them.
func (c *Client) ListPromotions(ctx context.Context) ([]domain.PromotionRecord, error) {
	docs, err := c.List(ctx, domain.CollectionPromotions)
	if err != nil {
		return nil, err
	}
	out := make([]domain.PromotionRecord, len(docs))
	for i, doc := range docs {
		out[i] = domain.PromotionFromDocument(doc)
	}
	return out, nil
}

// GetMovie fetches one movie.
func (c *Client) GetMovie(ctx context.Context, id string) (domain.MovieRecord, error) {
	doc, err := c.Get(ctx, domain.CollectionMovies, id)
	if err != nil {
		return domain.MovieRecord{}, err
	}
	return domain.MovieFromDocument(doc), nil
}

// GetArticle fetches one article.
func (c *Client) GetArticle(ctx context.Context, id string) (domain.ArticleRecord, error) {
	doc, err := c.Get(ctx, domain.CollectionArticles, id)
	if err != nil {
		return domain.ArticleRecord{}, err
	}
	return domain.ArticleFromDocument(doc), nil
}

func (c *Client) do(ctx context.Context, method string, body, out any, segments ...string) error {
	endpoint := c.baseURL.JoinPath(segments...)

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("docstore: encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint.String(), reader)
	if err != nil {
		return err
	}
	req.Header.Set("X-API-Key", c.apiKey)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		if out == nil {
			return nil
		}
		return decodeBody(resp.Body, out)
	case http.StatusNotFound:
		return ErrNotFound
	default:
		c.logger.Printf("docstore: unexpected status %d for %s %s", resp.StatusCode, method, endpoint.Path)
		return fmt.Errorf("docstore: upstream returned %d", resp.StatusCode)
	}
}

// decodeBody keeps numbers as json.Number so epoch milliseconds survive
// without float rounding.
func decodeBody(r io.Reader, out any) error {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	if err := dec.Decode(out); err != nil {
		return fmt.Errorf("docstore: decode response: %w", err)
	}
	return nil
}

func moviesFromDocuments(docs []domain.Document) []domain.MovieRecord {
	out := make([]domain.MovieRecord, len(docs))
	for i, doc := range docs {
		out[i] = domain.MovieFromDocument(doc)
	}
	return out
}

func nonNil(docs []domain.Document) []domain.Document {
	if docs == nil {
		return []domain.Document{}
	}
	return docs
}
