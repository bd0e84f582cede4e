package estransport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/luqq/sonarqube/internal/search"
	"github.com/luqq/sonarqube/pkg/config"
	"github.com/luqq/sonarqube/pkg/logger"
	"github.com/luqq/sonarqube/pkg/resilience"
)

// Client implements the index layer's backend boundary on the official
// Elasticsearch client. Every call goes through a circuit breaker;
// timeout and cancellation policy belongs to the caller's context.
type Client struct {
	es      *elasticsearch.Client
	breaker *resilience.CircuitBreaker
	log     logger.Logger
}

var _ search.Client = (*Client)(nil)

func New(es *elasticsearch.Client, breakerCfg resilience.CircuitBreakerConfig, log logger.Logger) *Client {
	return &Client{
		es:      es,
		breaker: resilience.NewCircuitBreaker(breakerCfg),
		log:     log.With("component", "estransport"),
	}
}

// NewFromConfig builds the Elasticsearch client and wraps it.
func NewFromConfig(cfg config.ElasticsearchConfig, log logger.Logger) (*Client, error) {
	es, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: cfg.Addresses,
		Username:  cfg.Username,
		Password:  cfg.Password,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Elasticsearch client: %w", err)
	}

	breakerCfg := resilience.DefaultCircuitBreakerConfig("elasticsearch")
	if cfg.Breaker.MinRequests > 0 {
		breakerCfg.MaxRequests = cfg.Breaker.MaxRequests
		breakerCfg.Interval = cfg.Breaker.Interval
		breakerCfg.Timeout = cfg.Breaker.Timeout
		breakerCfg.FailureRatio = cfg.Breaker.FailureRatio
		breakerCfg.MinRequests = cfg.Breaker.MinRequests
	}
	return New(es, breakerCfg, log), nil
}

func (c *Client) IndexExists(ctx context.Context, index string) (bool, error) {
	result, err := c.breaker.ExecuteWithContext(ctx, func(ctx context.Context) (interface{}, error) {
		res, err := esapi.IndicesExistsRequest{Index: []string{index}}.Do(ctx, c.es)
		if err != nil {
			return nil, err
		}
		defer res.Body.Close()

		switch res.StatusCode {
		case http.StatusOK:
			return true, nil
		case http.StatusNotFound:
			return false, nil
		default:
			return nil, apiError("indices exists", res)
		}
	})
	if err != nil {
		return false, err
	}
	return result.(bool), nil
}

func (c *Client) CreateIndex(ctx context.Context, index string, settings map[string]any) error {
	body, err := json.Marshal(map[string]any{"settings": settings})
	if err != nil {
		return err
	}

	_, err = c.breaker.ExecuteWithContext(ctx, func(ctx context.Context) (interface{}, error) {
		res, err := esapi.IndicesCreateRequest{
			Index: index,
			Body:  bytes.NewReader(body),
		}.Do(ctx, c.es)
		if err != nil {
			return nil, err
		}
		defer res.Body.Close()

		// 400 means the index already exists, typically another process
		// instance won the bootstrap race.
		if res.IsError() && res.StatusCode != http.StatusBadRequest {
			return nil, apiError("indices create", res)
		}
		return nil, nil
	})
	return err
}

func (c *Client) PutMapping(ctx context.Context, index string, mapping map[string]any, ignoreConflicts bool) error {
	body, err := json.Marshal(mapping)
	if err != nil {
		return err
	}

	_, err = c.breaker.ExecuteWithContext(ctx, func(ctx context.Context) (interface{}, error) {
		res, err := esapi.IndicesPutMappingRequest{
			Index: []string{index},
			Body:  bytes.NewReader(body),
		}.Do(ctx, c.es)
		if err != nil {
			return nil, err
		}
		defer res.Body.Close()

		if res.IsError() {
			if ignoreConflicts && res.StatusCode == http.StatusBadRequest {
				c.log.Warn("Mapping conflict ignored", "index", index, "response", res.String())
				return nil, nil
			}
			return nil, apiError("indices put mapping", res)
		}
		return nil, nil
	})
	return err
}

func (c *Client) GetDocument(ctx context.Context, index, id, routing string) (map[string]any, bool, error) {
	type getResponse struct {
		Found  bool           `json:"found"`
		Source map[string]any `json:"_source"`
	}

	result, err := c.breaker.ExecuteWithContext(ctx, func(ctx context.Context) (interface{}, error) {
		res, err := esapi.GetRequest{
			Index:      index,
			DocumentID: id,
			Routing:    routing,
		}.Do(ctx, c.es)
		if err != nil {
			return nil, err
		}
		defer res.Body.Close()

		if res.StatusCode == http.StatusNotFound {
			return &getResponse{}, nil
		}
		if res.IsError() {
			return nil, apiError("get document", res)
		}

		var parsed getResponse
		if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
			return nil, err
		}
		return &parsed, nil
	})
	if err != nil {
		return nil, false, err
	}

	parsed := result.(*getResponse)
	return parsed.Source, parsed.Found, nil
}

func (c *Client) UpdateDocument(ctx context.Context, index, id string, doc map[string]any) error {
	body, err := json.Marshal(map[string]any{
		"doc":           doc,
		"doc_as_upsert": true,
	})
	if err != nil {
		return err
	}

	_, err = c.breaker.ExecuteWithContext(ctx, func(ctx context.Context) (interface{}, error) {
		res, err := esapi.UpdateRequest{
			Index:      index,
			DocumentID: id,
			Body:       bytes.NewReader(body),
		}.Do(ctx, c.es)
		if err != nil {
			return nil, err
		}
		defer res.Body.Close()

		if res.IsError() {
			return nil, apiError("update document", res)
		}
		return nil, nil
	})
	return err
}

func (c *Client) Bulk(ctx context.Context, ops []search.BulkOp) ([]search.BulkItemError, error) {
	body, err := encodeBulkBody(ops)
	if err != nil {
		return nil, err
	}

	result, err := c.breaker.ExecuteWithContext(ctx, func(ctx context.Context) (interface{}, error) {
		res, err := esapi.BulkRequest{Body: bytes.NewReader(body)}.Do(ctx, c.es)
		if err != nil {
			return nil, err
		}
		defer res.Body.Close()

		if res.IsError() {
			return nil, apiError("bulk", res)
		}

		var parsed bulkResponse
		if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
			return nil, err
		}
		return parsed.failedItems(), nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]search.BulkItemError), nil
}

func (c *Client) DeleteDocument(ctx context.Context, index, id string) error {
	_, err := c.breaker.ExecuteWithContext(ctx, func(ctx context.Context) (interface{}, error) {
		res, err := esapi.DeleteRequest{
			Index:      index,
			DocumentID: id,
		}.Do(ctx, c.es)
		if err != nil {
			return nil, err
		}
		defer res.Body.Close()

		// Deleting a document that is already gone is not a failure.
		if res.IsError() && res.StatusCode != http.StatusNotFound {
			return nil, apiError("delete document", res)
		}
		return nil, nil
	})
	return err
}

func (c *Client) RefreshIndex(ctx context.Context, index string) error {
	_, err := c.breaker.ExecuteWithContext(ctx, func(ctx context.Context) (interface{}, error) {
		res, err := esapi.IndicesRefreshRequest{Index: []string{index}}.Do(ctx, c.es)
		if err != nil {
			return nil, err
		}
		defer res.Body.Close()

		if res.IsError() {
			return nil, apiError("indices refresh", res)
		}
		return nil, nil
	})
	return err
}

func (c *Client) CountAll(ctx context.Context, index string) (int64, error) {
	result, err := c.breaker.ExecuteWithContext(ctx, func(ctx context.Context) (interface{}, error) {
		res, err := esapi.CountRequest{Index: []string{index}}.Do(ctx, c.es)
		if err != nil {
			return nil, err
		}
		defer res.Body.Close()

		if res.IsError() {
			return nil, apiError("count", res)
		}

		var parsed struct {
			Count int64 `json:"count"`
		}
		if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
			return nil, err
		}
		return parsed.Count, nil
	})
	if err != nil {
		return 0, err
	}
	return result.(int64), nil
}

func apiError(op string, res *esapi.Response) error {
	return fmt.Errorf("%s: %s", op, res.String())
}
