package dellinhttp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClient_FetchOrders_OK(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v3/orders", r.URL.Path)

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, "app", body["appkey"])
		require.Equal(t, "sess", body["sessionID"])

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
  "orders": [
    {
      "orderId": "25-00001",
      "stateName": "В пути",
      "progressPercent": 60,
      "isPaid": true,
      "sender": {"name": "ИП Петров"},
      "freight": {"places": 1, "weight": 38, "volume": 0.2},
      "orderDates": {"arrivalToOspReceiver": "2026-03-05"},
      "derival": {"city": "Казань"},
      "arrival": {"city": "Астрахань"}
    },
    {
      "orderId": "25-00002",
      "stateName": "Прибыл",
      "progressPercent": 100,
      "isPaid": false,
      "sender": {"name": "АО Вектор"},
      "freight": {"places": 2, "weight": 500, "volume": 2.1},
      "orderDates": {},
      "derival": {"city": "Москва"},
      "arrival": {"city": "Астрахань"}
    }
  ]
}`))
	}))
	defer srv.Close()

	c := New(srv.URL, "app", "sess")
	require.Equal(t, "dellin", c.Name())

	recs, err := c.FetchOrders(context.Background())
	require.NoError(t, err)
	require.Len(t, recs, 2)

	require.Equal(t, "25-00001", recs[0].ID)
	require.Equal(t, "Деловые Линии", recs[0].TK)
	require.Equal(t, "ИП ПЕТРОВ", recs[0].Sender)
	require.Equal(t, "В пути (60%)", recs[0].Status)
	require.Equal(t, "1м/ 38кг/ 0.2м3", recs[0].Params)
	require.Equal(t, "Оплачено", recs[0].Payment)
	require.Equal(t, "КЗН -> АСТРА", recs[0].Route)

	require.Equal(t, "Прибыл (100%)", recs[1].Status)
	require.Equal(t, "Не оплачено", recs[1].Payment)
	require.Empty(t, recs[1].Arrival)
}

func TestClient_FetchOrders_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	_, err := New(srv.URL, "a", "s").FetchOrders(context.Background())
	require.Error(t, err)
	require.Contains(t, err.Error(), "dellin http 401")
}
