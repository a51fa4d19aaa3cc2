// Package search keeps an Elasticsearch index of products for free-text
// lookups. The database stays authoritative; the index only narrows ids.
package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/fekuna/omnipos-inventory-service/internal/model"
	"github.com/fekuna/omnipos-inventory-service/internal/product"
	"github.com/pkg/errors"
)

type Config struct {
	Addresses []string
	Username  string
	Password  string
	Index     string
}

type Client struct {
	es    *elasticsearch.Client
	index string
}

var _ product.SearchIndex = (*Client)(nil)

// NewClient connects and pings the cluster.
func NewClient(cfg *Config) (*Client, error) {
	es, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: cfg.Addresses,
		Username:  cfg.Username,
		Password:  cfg.Password,
	})
	if err != nil {
		return nil, errors.Wrap(err, "search.NewClient")
	}

	res, err := es.Info()
	if err != nil {
		return nil, errors.Wrap(err, "search.NewClient.Info")
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, fmt.Errorf("search.NewClient: %s", res.String())
	}

	return &Client{es: es, index: cfg.Index}, nil
}

type productDocument struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Category string `json:"category"`
	IsActive bool   `json:"is_active"`
}

func (c *Client) IndexProduct(ctx context.Context, p *model.Product) error {
	body, err := json.Marshal(productDocument{
		ID:       p.ID,
		Name:     p.Name,
		Category: p.Category,
		IsActive: p.IsActive,
	})
	if err != nil {
		return errors.Wrap(err, "search.IndexProduct.Marshal")
	}

	res, err := c.es.Index(c.index, bytes.NewReader(body),
		c.es.Index.WithContext(ctx),
		c.es.Index.WithDocumentID(p.ID),
	)
	if err != nil {
		return errors.Wrap(err, "search.IndexProduct")
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("search.IndexProduct %s: %s", p.ID, res.String())
	}
	return nil
}

// DeleteProduct removes the document; a missing document is not an error.
func (c *Client) DeleteProduct(ctx context.Context, id string) error {
	res, err := c.es.Delete(c.index, id, c.es.Delete.WithContext(ctx))
	if err != nil {
		return errors.Wrap(err, "search.DeleteProduct")
	}
	defer res.Body.Close()
	if res.IsError() && res.StatusCode != http.StatusNotFound {
		return fmt.Errorf("search.DeleteProduct %s: %s", id, res.String())
	}
	return nil
}

// SearchProductIDs matches query against name and category. The result is
// never nil so callers can tell "no matches" from "not searched".
func (c *Client) SearchProductIDs(ctx context.Context, query string, limit int) ([]string, error) {
	body, err := json.Marshal(searchQuery(query))
	if err != nil {
		return nil, errors.Wrap(err, "search.SearchProductIDs.Marshal")
	}

	res, err := c.es.Search(
		c.es.Search.WithContext(ctx),
		c.es.Search.WithIndex(c.index),
		c.es.Search.WithBody(bytes.NewReader(body)),
		c.es.Search.WithSize(limit),
		c.es.Search.WithSource("false"),
	)
	if err != nil {
		return nil, errors.Wrap(err, "search.SearchProductIDs")
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, fmt.Errorf("search.SearchProductIDs: %s", res.String())
	}
	return decodeIDs(res.Body)
}

func searchQuery(query string) map[string]interface{} {
	return map[string]interface{}{
		"query": map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":     strings.TrimSpace(query),
				"fields":    []string{"name^2", "category"},
				"fuzziness": "AUTO",
			},
		},
	}
}

type searchResponse struct {
	Hits struct {
		Hits []struct {
			ID string `json:"_id"`
		} `json:"hits"`
	} `json:"hits"`
}

func decodeIDs(r io.Reader) ([]string, error) {
	var resp searchResponse
	if err := json.NewDecoder(r).Decode(&resp); err != nil {
		return nil, errors.Wrap(err, "search.decodeIDs")
	}
	ids := make([]string, 0, len(resp.Hits.Hits))
	for _, h := range resp.Hits.Hits {
		ids = append(ids, h.ID)
	}
	return ids, nil
}
