package fake

import (
	"context"
	"fmt"
	"hash/fnv"
	"time"

	"github.com/RobertKano/logisticapis/internal/models"
)

// FakeClient — заглушка кабинета ТК для локальной разработки без ключей.
// Отдаёт детерминированный набор заказов, часть из них "выдана", чтобы
// было что архивировать.
type FakeClient struct {
	name string
	tk   string
}

func New(name, tk string) *FakeClient {
	return &FakeClient{name: name, tk: tk}
}

func (f *FakeClient) Name() string { return f.name }

func (f *FakeClient) FetchOrders(ctx context.Context) ([]models.ShipmentRecord, error) {
	day := time.Now().UTC().Format("2006-01-02")

	recs := make([]models.ShipmentRecord, 0, 4)
	for i := 1; i <= 4; i++ {
		id := fmt.Sprintf("%s-%03d", f.name, i)

		h := fnv.New32a()
		_, _ = h.Write([]byte(id))
		v := h.Sum32()

		status := "В пути"
		payment := "Не оплачено"
		switch v % 4 {
		case 0:
			status = "Выдан получателю"
			payment = "Оплачено"
		case 1:
			status = "Прибыл на терминал"
			payment = "Оплачено"
		}

		recs = append(recs, models.ShipmentRecord{
			ID:      id,
			TK:      f.tk,
			Sender:  fmt.Sprintf("ООО ПОСТАВЩИК %d", i),
			Status:  status,
			Params:  fmt.Sprintf("%dм/ %dкг/ 0.%dм3", i, i*40, i),
			Arrival: day,
			Payment: payment,
			Route:   "МСК -> АСТРА",
		})
	}
	return recs, nil
}
