package pecomhttp

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/RobertKano/logisticapis/internal/integrations/carrier"
	"github.com/RobertKano/logisticapis/internal/models"
	"github.com/pkg/errors"
)

const tkLabel = "ПЭК"

type Client struct {
	baseURL string
	login   string
	apiKey  string
	httpc   *http.Client
}

func New(baseURL, login, apiKey string) *Client {
	if baseURL == "" {
		baseURL = "https://kabinet.pecom.ru/api/v1"
	}
	return &Client{
		baseURL: baseURL,
		login:   login,
		apiKey:  apiKey,
		httpc: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

func (c *Client) Name() string { return "pecom" }

type pecomCargo struct {
	CargoBarCode string      `json:"cargoBarCode"`
	Amount       json.Number `json:"amount"`
	Weight       json.Number `json:"weight"`
	Volume       json.Number `json:"volume"`
}

type pecomItem struct {
	Cargo pecomCargo `json:"cargo"`
	Info  struct {
		CargoStatus         string `json:"cargoStatus"`
		ArrivalPlanDateTime string `json:"arrivalPlanDateTime"`
	} `json:"info"`
	Services struct {
		Debt float64 `json:"debt"`
	} `json:"services"`
	Sender struct {
		Sender     string `json:"sender"`
		BranchInfo struct {
			City string `json:"city"`
		} `json:"branchInfo"`
	} `json:"sender"`
	Receiver struct {
		Branch struct {
			City string `json:"city"`
		} `json:"branch"`
	} `json:"receiver"`
}

type pecomResp struct {
	Cargos []pecomItem `json:"cargos"`
}

func (c *Client) FetchOrders(ctx context.Context) ([]models.ShipmentRecord, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/cargos/all", strings.NewReader("{}"))
	if err != nil {
		return nil, errors.Wrap(err, "new request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(c.login, c.apiKey)

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "do request")
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		return nil, fmt.Errorf("pecom http %d", resp.StatusCode)
	}

	var r pecomResp
	if err := json.NewDecoder(resp.Body).Decode(&r); err != nil {
		return nil, errors.Wrap(err, "decode")
	}

	recs := make([]models.ShipmentRecord, 0, len(r.Cargos))
	for _, i := range r.Cargos {
		payment := "Оплачено"
		if i.Services.Debt > 0 {
			payment = "Долг: " + strconv.FormatFloat(i.Services.Debt, 'f', -1, 64)
		}

		recs = append(recs, models.ShipmentRecord{
			ID:      i.Cargo.CargoBarCode,
			TK:      tkLabel,
			Sender:  carrier.CleanName(i.Sender.Sender),
			Status:  i.Info.CargoStatus,
			Params:  fmt.Sprintf("%sм/ %sкг/ %sм3", i.Cargo.Amount, i.Cargo.Weight, i.Cargo.Volume),
			Arrival: i.Info.ArrivalPlanDateTime,
			Payment: payment,
			Route:   carrier.CleanCity(i.Sender.BranchInfo.City) + " -> " + carrier.CleanCity(i.Receiver.Branch.City),
		})
	}
	return recs, nil
}
