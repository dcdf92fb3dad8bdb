package dellinhttp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/RobertKano/logisticapis/internal/integrations/carrier"
	"github.com/RobertKano/logisticapis/internal/models"
	"github.com/pkg/errors"
)

const tkLabel = "Деловые Линии"

type Client struct {
	baseURL string
	appKey  string
	session string
	httpc   *http.Client
}

func New(baseURL, appKey, session string) *Client {
	if baseURL == "" {
		baseURL = "https://api.dellin.ru"
	}
	return &Client{
		baseURL: baseURL,
		appKey:  appKey,
		session: session,
		httpc: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

func (c *Client) Name() string { return "dellin" }

type dellinOrder struct {
	OrderID         string `json:"orderId"`
	StateName       string `json:"stateName"`
	ProgressPercent int    `json:"progressPercent"`
	IsPaid          bool   `json:"isPaid"`
	Sender          struct {
		Name string `json:"name"`
	} `json:"sender"`
	Freight struct {
		Places json.Number `json:"places"`
		Weight json.Number `json:"weight"`
		Volume json.Number `json:"volume"`
	} `json:"freight"`
	OrderDates struct {
		ArrivalToOspReceiver string `json:"arrivalToOspReceiver"`
	} `json:"orderDates"`
	Derival struct {
		City string `json:"city"`
	} `json:"derival"`
	Arrival struct {
		City string `json:"city"`
	} `json:"arrival"`
}

type dellinResp struct {
	Orders []dellinOrder `json:"orders"`
}

func (c *Client) FetchOrders(ctx context.Context) ([]models.ShipmentRecord, error) {
	body, err := json.Marshal(map[string]string{
		"appkey":    c.appKey,
		"sessionID": c.session,
	})
	if err != nil {
		return nil, errors.Wrap(err, "marshal request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v3/orders", bytes.NewReader(body))
	if err != nil {
		return nil, errors.Wrap(err, "new request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "do request")
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		return nil, fmt.Errorf("dellin http %d", resp.StatusCode)
	}

	var r dellinResp
	if err := json.NewDecoder(resp.Body).Decode(&r); err != nil {
		return nil, errors.Wrap(err, "decode")
	}

	recs := make([]models.ShipmentRecord, 0, len(r.Orders))
	for _, o := range r.Orders {
		payment := "Не оплачено"
		if o.IsPaid {
			payment = "Оплачено"
		}

		recs = append(recs, models.ShipmentRecord{
			ID:      o.OrderID,
			TK:      tkLabel,
			Sender:  carrier.CleanName(o.Sender.Name),
			Status:  fmt.Sprintf("%s (%d%%)", o.StateName, o.ProgressPercent),
			Params:  fmt.Sprintf("%sм/ %sкг/ %sм3", o.Freight.Places, o.Freight.Weight, o.Freight.Volume),
			Arrival: o.OrderDates.ArrivalToOspReceiver,
			Payment: payment,
			Route:   carrier.CleanCity(o.Derival.City) + " -> " + carrier.CleanCity(o.Arrival.City),
		})
	}
	return recs, nil
}
