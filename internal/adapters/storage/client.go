// internal/adapters/storage/client.go
package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/biblioflow/inventory-update/internal/core/domain"
	"github.com/biblioflow/inventory-update/internal/core/ports"
	"github.com/biblioflow/inventory-update/internal/pkg/tenant"
)

// endpoint maps one entity kind to its storage path and the JSON property
// carrying the record list in collection responses.
type endpoint struct {
	path       string
	collection string
}

var endpoints = map[domain.EntityKind]endpoint{
	domain.KindInstance:             {"/instance-storage/instances", "instances"},
	domain.KindHoldingsRecord:       {"/holdings-storage/holdings", "holdingsRecords"},
	domain.KindItem:                 {"/item-storage/items", "items"},
	domain.KindInstanceRelationship: {"/instance-storage/instance-relationships", "instanceRelationships"},
	domain.KindTitleSuccession:      {"/preceding-succeeding-titles", "precedingSucceedingTitles"},
	domain.KindLocation:             {"/locations", "locations"},
}

// fetchLimit caps collection responses; bulk lookups are already chunked by
// the caller so this is a ceiling, not a page size.
const fetchLimit = 1000

// Config holds inventory storage client configuration
type Config struct {
	BaseURL        string
	Token          string
	Timeout        time.Duration
	RateLimitRPS   float64
	RateLimitBurst int
}

// Client talks to the remote inventory store over HTTP. Requests carry the
// tenant from the context and are throttled by a shared rate limiter so
// concurrent execution phases cannot stampede the store.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
	limiter *rate.Limiter
	logger  *slog.Logger
}

// Statically assert that *Client implements the StorageClient interface.
var _ ports.StorageClient = (*Client)(nil)

// NewClient creates the inventory storage client.
func NewClient(cfg Config, logger *slog.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	rps := cfg.RateLimitRPS
	if rps <= 0 {
		rps = 100
	}
	burst := cfg.RateLimitBurst
	if burst <= 0 {
		burst = 20
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		token:   cfg.Token,
		http:    &http.Client{Timeout: timeout},
		limiter: rate.NewLimiter(rate.Limit(rps), burst),
		logger:  logger.With(slog.String("component", "storage_client")),
	}
}

// FetchByIdentifiers implements ports.StorageClient using a disjunctive
// exact-match query over the given field.
func (c *Client) FetchByIdentifiers(ctx context.Context, kind domain.EntityKind, field string, values []string) ([]map[string]any, error) {
	if len(values) == 0 {
		return nil, nil
	}
	quoted := make([]string, 0, len(values))
	for _, v := range values {
		quoted = append(quoted, fmt.Sprintf("%q", v))
	}
	query := fmt.Sprintf("%s==(%s)", field, strings.Join(quoted, " or "))
	return c.FetchByQuery(ctx, kind, query)
}

// FetchByQuery implements ports.StorageClient.
func (c *Client) FetchByQuery(ctx context.Context, kind domain.EntityKind, query string) ([]map[string]any, error) {
	ep, err := endpointFor(kind)
	if err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("query", query)
	params.Set("limit", fmt.Sprintf("%d", fetchLimit))

	body, err := c.do(ctx, http.MethodGet, kind, ep.path+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}

	var parsed map[string]any
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, &ports.StorageError{Op: "fetch", Kind: kind, StatusCode: http.StatusOK,
			Message: fmt.Sprintf("malformed collection response: %v", err)}
	}
	raw, _ := parsed[ep.collection].([]any)
	records := make([]map[string]any, 0, len(raw))
	for _, e := range raw {
		if m, ok := e.(map[string]any); ok {
			records = append(records, m)
		}
	}
	return records, nil
}

// Create implements ports.StorageClient.
func (c *Client) Create(ctx context.Context, kind domain.EntityKind, record map[string]any) (map[string]any, error) {
	ep, err := endpointFor(kind)
	if err != nil {
		return nil, err
	}
	body, err := c.do(ctx, http.MethodPost, kind, ep.path, record)
	if err != nil {
		return nil, err
	}
	stored := map[string]any{}
	if len(body) > 0 {
		if err := json.Unmarshal(body, &stored); err != nil {
			// Some stores answer 201 with an empty or non-JSON body; the
			// record we sent is the best representation we have.
			return record, nil
		}
	}
	if len(stored) == 0 {
		return record, nil
	}
	return stored, nil
}

// Replace implements ports.StorageClient.
func (c *Client) Replace(ctx context.Context, kind domain.EntityKind, id string, record map[string]any) error {
	ep, err := endpointFor(kind)
	if err != nil {
		return err
	}
	_, err = c.do(ctx, http.MethodPut, kind, ep.path+"/"+id, record)
	return err
}

// Delete implements ports.StorageClient.
func (c *Client) Delete(ctx context.Context, kind domain.EntityKind, id string) error {
	ep, err := endpointFor(kind)
	if err != nil {
		return err
	}
	_, err = c.do(ctx, http.MethodDelete, kind, ep.path+"/"+id, nil)
	return err
}

// do issues one rate-limited request and returns the response body. Any
// non-2xx response or transport failure becomes a StorageError.
func (c *Client) do(ctx context.Context, method string, kind domain.EntityKind, path string, payload map[string]any) ([]byte, error) {
	op := strings.ToLower(method)

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, &ports.StorageError{Op: op, Kind: kind, Message: fmt.Sprintf("rate limiter: %v", err)}
	}

	var reqBody io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, &ports.StorageError{Op: op, Kind: kind, Message: fmt.Sprintf("marshalling request: %v", err)}
		}
		reqBody = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, &ports.StorageError{Op: op, Kind: kind, Message: fmt.Sprintf("building request: %v", err)}
	}
	req.Header.Set("Accept", "application/json, text/plain")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if t := tenant.From(ctx); t != "" {
		req.Header.Set("X-Tenant", t)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &ports.StorageError{Op: op, Kind: kind, Message: fmt.Sprintf("transport: %v", err)}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &ports.StorageError{Op: op, Kind: kind, StatusCode: resp.StatusCode,
			Message: fmt.Sprintf("reading response: %v", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.DebugContext(ctx, "storage request rejected",
			slog.String("method", method),
			slog.String("path", path),
			slog.Int("status", resp.StatusCode))
		return nil, &ports.StorageError{
			Op:         op,
			Kind:       kind,
			StatusCode: resp.StatusCode,
			Message:    http.StatusText(resp.StatusCode),
			Body:       string(body),
		}
	}
	return body, nil
}

func endpointFor(kind domain.EntityKind) (endpoint, error) {
	ep, ok := endpoints[kind]
	if !ok {
		return endpoint{}, fmt.Errorf("no storage endpoint for entity kind %s", kind)
	}
	return ep, nil
}
