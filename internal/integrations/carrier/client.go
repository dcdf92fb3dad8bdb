package carrier

import (
	"context"

	"github.com/RobertKano/logisticapis/internal/models"
)

// Client опрашивает кабинет одной транспортной компании и приводит
// её заказы к общему виду записи отчёта.
type Client interface {
	// Name - короткий ключ ТК для логов и rate limiter'а ("baikal", "pecom"...).
	Name() string
	FetchOrders(ctx context.Context) ([]models.ShipmentRecord, error)
}
