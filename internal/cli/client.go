package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/data-ashita/monitor-dash/internal/models"
)

// apiClient talks to the dashboard HTTP API.
type apiClient struct {
	baseURL string
	http    *http.Client
}

func newAPIClient(baseURL string) *apiClient {
	return &apiClient{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *apiClient) snapshot(days int, refresh bool) (*models.Snapshot, error) {
	url := fmt.Sprintf("%s/api/v1/snapshot?days=%d", c.baseURL, days)
	if refresh {
		url += "&refresh=true"
	}
	resp, err := c.http.Get(url)
	if err != nil {
		return nil, fmt.Errorf("request snapshot: %w", err)
	}
	return decodeSnapshot(resp)
}

func (c *apiClient) refresh(days int) (*models.Snapshot, error) {
	url := fmt.Sprintf("%s/api/v1/refresh?days=%d", c.baseURL, days)
	resp, err := c.http.Post(url, "application/json", nil)
	if err != nil {
		return nil, fmt.Errorf("request refresh: %w", err)
	}
	return decodeSnapshot(resp)
}

func decodeSnapshot(resp *http.Response) (*models.Snapshot, error) {
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		var apiErr models.ErrorResponse
		if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Message != "" {
			return nil, fmt.Errorf("api error (%s): %s", apiErr.Code, apiErr.Message)
		}
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}

	var snap models.Snapshot
	if err := json.NewDecoder(resp.Body).Decode(&snap); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	return &snap, nil
}
