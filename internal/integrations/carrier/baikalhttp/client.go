package baikalhttp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/RobertKano/logisticapis/internal/integrations/carrier"
	"github.com/RobertKano/logisticapis/internal/models"
	"github.com/pkg/errors"
)

const tkLabel = "Байкал Сервис"

type Client struct {
	baseURL string
	appKey  string
	httpc   *http.Client
}

func New(baseURL, appKey string) *Client {
	if baseURL == "" {
		baseURL = "https://api.baikalsr.ru"
	}
	return &Client{
		baseURL: baseURL,
		appKey:  appKey,
		httpc: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

func (c *Client) Name() string { return "baikal" }

type baikalCargo struct {
	Places json.Number `json:"places"`
	Weight json.Number `json:"weight"`
	Volume json.Number `json:"volume"`
}

type baikalCargoItem struct {
	Cargo     baikalCargo `json:"cargo"`
	Consignor struct {
		Name string `json:"name"`
	} `json:"consignor"`
	Departure struct {
		Name string `json:"name"`
	} `json:"departure"`
	Destination struct {
		Name string `json:"name"`
	} `json:"destination"`
	DateArrivalPlane string `json:"dateArrivalPlane"`
}

type baikalOrder struct {
	Number           string            `json:"number"`
	Status           string            `json:"status"`
	OrderStatus      string            `json:"orderstatus"`
	PaidStatus       string            `json:"paidStatus"`
	DateArrivalPlane string            `json:"dateArrivalPlane"`
	CargoList        []baikalCargoItem `json:"cargoList"`
}

func (c *Client) FetchOrders(ctx context.Context) ([]models.ShipmentRecord, error) {
	body, err := json.Marshal(map[string]string{"appkey": c.appKey})
	if err != nil {
		return nil, errors.Wrap(err, "marshal request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/orders/list", bytes.NewReader(body))
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
		return nil, fmt.Errorf("baikal http %d", resp.StatusCode)
	}

	var orders []baikalOrder
	if err := json.NewDecoder(resp.Body).Decode(&orders); err != nil {
		return nil, errors.Wrap(err, "decode")
	}

	recs := make([]models.ShipmentRecord, 0, len(orders))
	for _, o := range orders {
		// Заглушки пустого кабинета API иногда присылает как отдельные заказы.
		if o.Status == "empty" {
			continue
		}

		var first baikalCargoItem
		if len(o.CargoList) > 0 {
			first = o.CargoList[0]
		}

		places := 0
		weight, volume := 0.0, 0.0
		for _, item := range o.CargoList {
			if v, err := item.Cargo.Places.Int64(); err == nil {
				places += int(v)
			}
			if v, err := item.Cargo.Weight.Float64(); err == nil {
				weight += v
			}
			if v, err := item.Cargo.Volume.Float64(); err == nil {
				volume += v
			}
		}

		id := o.Number
		if id == "" {
			id = "Н/Д"
		}
		status := o.OrderStatus
		if status == "" {
			status = "Н/Д"
		}
		payment := o.PaidStatus
		if payment == "" {
			payment = "Н/Д"
		}
		arrival := first.DateArrivalPlane
		if arrival == "" {
			arrival = o.DateArrivalPlane
		}

		recs = append(recs, models.ShipmentRecord{
			ID:      id,
			TK:      tkLabel,
			Sender:  carrier.CleanName(first.Consignor.Name),
			Status:  status,
			Params:  fmt.Sprintf("%dм/ %sкг/ %sм3", places, formatNum(weight), formatNum(volume)),
			Arrival: arrival,
			Payment: payment,
			Route:   carrier.CleanCity(first.Departure.Name) + " -> " + carrier.CleanCity(first.Destination.Name),
		})
	}
	return recs, nil
}

func formatNum(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
