package reportapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/RobertKano/logisticapis/internal/models"
	"github.com/pkg/errors"
)

// Client ходит в report-api от имени панели: забирает свежий снапшот
// отчёта и проксирует правки памяток.
type Client struct {
	baseURL string
	httpc   *http.Client
}

func New(baseURL string) *Client {
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}
	return &Client{
		baseURL: baseURL,
		httpc: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

func (c *Client) Latest(ctx context.Context) (models.ReportSnapshot, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/latest", nil)
	if err != nil {
		return models.ReportSnapshot{}, errors.Wrap(err, "new request")
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return models.ReportSnapshot{}, errors.Wrap(err, "do request")
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		return models.ReportSnapshot{}, fmt.Errorf("report api http %d", resp.StatusCode)
	}

	var snap models.ReportSnapshot
	if err := json.NewDecoder(resp.Body).Decode(&snap); err != nil {
		return models.ReportSnapshot{}, errors.Wrap(err, "decode snapshot")
	}
	return snap, nil
}

func (c *Client) AddManual(ctx context.Context, rec models.ShipmentRecord) error {
	return c.postJSON(ctx, "/admin/add-manual", rec)
}

func (c *Client) UpdateManual(ctx context.Context, rec models.ShipmentRecord) error {
	return c.postJSON(ctx, "/admin/update-manual", rec)
}

func (c *Client) DeleteManual(ctx context.Context, id string) error {
	u := c.baseURL + "/admin/delete-manual/" + url.PathEscape(id)
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, u, nil)
	if err != nil {
		return errors.Wrap(err, "new request")
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return errors.Wrap(err, "do request")
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		return fmt.Errorf("report api http %d", resp.StatusCode)
	}
	return nil
}

func (c *Client) postJSON(ctx context.Context, path string, payload any) error {
	b, err := json.Marshal(payload)
	if err != nil {
		return errors.Wrap(err, "marshal payload")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(b))
	if err != nil {
		return errors.Wrap(err, "new request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return errors.Wrap(err, "do request")
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		return fmt.Errorf("report api http %d", resp.StatusCode)
	}
	return nil
}
