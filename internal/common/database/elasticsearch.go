// internal/common/database/elasticsearch.go
package database

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"lead-distribution-workers/internal/common/config"

	"github.com/elastic/go-elasticsearch/v8"
)

// ElasticsearchClient wraps the official client for lifecycle management
// and index bootstrap. The indexing and search workers take the exported
// Client and issue their own requests.
type ElasticsearchClient struct {
	Client *elasticsearch.Client
}

func NewElasticsearch(cfg config.ElasticsearchConfig) (*ElasticsearchClient, error) {
	// Config may carry either an address list or a single URL.
	addresses := cfg.Addresses
	if len(addresses) == 0 && cfg.GetURL() != "" {
		addresses = []string{cfg.GetURL()}
	}

	esCfg := elasticsearch.Config{Addresses: addresses}
	if cfg.Username != "" {
		esCfg.Username = cfg.Username
		esCfg.Password = cfg.Password
	}

	es, err := elasticsearch.NewClient(esCfg)
	if err != nil {
		return nil, fmt.Errorf("create elasticsearch client: %w", err)
	}

	return &ElasticsearchClient{Client: es}, nil
}

// Ping verifies the cluster answers at all; index health is checked
// separately by EnsureIndex.
func (c *ElasticsearchClient) Ping() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	res, err := c.Client.Ping(c.Client.Ping.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("elasticsearch ping: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("elasticsearch ping returned %s", res.Status())
	}
	return nil
}

// EnsureIndex creates the named index with the given mapping unless it
// already exists.
func (c *ElasticsearchClient) EnsureIndex(ctx context.Context, name, mapping string) error {
	res, err := c.Client.Indices.Exists(
		[]string{name},
		c.Client.Indices.Exists.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("index existence check failed: %w", err)
	}
	defer res.Body.Close()

	switch res.StatusCode {
	case http.StatusOK:
		return nil
	case http.StatusNotFound:
		// Create below.
	default:
		return fmt.Errorf("index existence check returned %s", res.Status())
	}

	createRes, err := c.Client.Indices.Create(
		name,
		c.Client.Indices.Create.WithBody(strings.NewReader(mapping)),
		c.Client.Indices.Create.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("index create failed: %w", err)
	}
	defer createRes.Body.Close()

	if createRes.IsError() {
		// Another manager instance may have created it between the check
		// and now.
		if strings.Contains(createRes.String(), "resource_already_exists_exception") {
			return nil
		}
		return fmt.Errorf("index create returned %s", createRes.String())
	}

	return nil
}
