package store

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/opensearch-project/opensearch-go/v2"

	"github.com/data-ashita/monitor-dash/internal/models"
)

// maxFetchSize caps a single window fetch. The dashboard aggregates in
// memory, so runaway windows are bounded rather than paginated.
const maxFetchSize = 10000

// OpenSearchConfig captures OpenSearch connection settings.
type OpenSearchConfig struct {
	URL      string
	Username string
	Password string
	Insecure bool
	Index    string
}

// OpenSearchStore reads task log events from an OpenSearch index, for
// deployments that ship task logs into the event platform instead of
// Postgres.
type OpenSearchStore struct {
	client *opensearch.Client
	index  string
}

// NewOpenSearchStore creates and pings an OpenSearch-backed store.
func NewOpenSearchStore(cfg OpenSearchConfig) (*OpenSearchStore, error) {
	osCfg := opensearch.Config{
		Addresses: []string{cfg.URL},
		Username:  cfg.Username,
		Password:  cfg.Password,
		Transport: &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: cfg.Insecure},
		},
	}

	client, err := opensearch.NewClient(osCfg)
	if err != nil {
		return nil, fmt.Errorf("create opensearch client: %w", err)
	}

	info, err := client.Info()
	if err != nil {
		return nil, fmt.Errorf("ping opensearch: %w", err)
	}
	defer info.Body.Close()
	if info.IsError() {
		return nil, fmt.Errorf("opensearch returned error: %s", info.Status())
	}

	return &OpenSearchStore{client: client, index: cfg.Index}, nil
}

// Close is a no-op; the underlying transport needs no explicit teardown.
func (s *OpenSearchStore) Close() error { return nil }

// FetchEvents returns all events inside the window, newest first.
func (s *OpenSearchStore) FetchEvents(ctx context.Context, window models.TimeRange) ([]models.LogEvent, error) {
	query := buildWindowQuery(window)

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(query); err != nil {
		return nil, fmt.Errorf("encode query: %w", err)
	}

	res, err := s.client.Search(
		s.client.Search.WithContext(ctx),
		s.client.Search.WithIndex(s.index),
		s.client.Search.WithBody(&buf),
		s.client.Search.WithSize(maxFetchSize),
	)
	if err != nil {
		return nil, fmt.Errorf("search request: %w: %w", ErrUnavailable, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("search error: %w: %s", ErrUnavailable, res.String())
	}

	var searchResult struct {
		Hits struct {
			Hits []struct {
				Source models.LogEvent `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&searchResult); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	events := make([]models.LogEvent, 0, len(searchResult.Hits.Hits))
	for _, hit := range searchResult.Hits.Hits {
		events = append(events, hit.Source)
	}
	return events, nil
}

// buildWindowQuery constructs the range-filtered, descending-sorted
// search body for a fetch window.
func buildWindowQuery(window models.TimeRange) map[string]interface{} {
	return map[string]interface{}{
		"query": map[string]interface{}{
			"bool": map[string]interface{}{
				"filter": []interface{}{
					map[string]interface{}{
						"range": map[string]interface{}{
							"created_at": map[string]interface{}{
								"gte": window.From.Format("2006-01-02T15:04:05Z07:00"),
								"lte": window.To.Format("2006-01-02T15:04:05Z07:00"),
							},
						},
					},
				},
			},
		},
		"sort": []interface{}{
			map[string]interface{}{
				"created_at": map[string]interface{}{"order": "desc"},
			},
		},
	}
}
