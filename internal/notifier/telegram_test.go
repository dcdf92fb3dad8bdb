package notifier

import (
	"context"
	"log/slog"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/require"

	"github.com/RobertKano/logisticapis/internal/models"
)

type fakeSender struct {
	sent []tgbotapi.MessageConfig
	err  error
}

func (f *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	if f.err != nil {
		return tgbotapi.Message{}, f.err
	}
	f.sent = append(f.sent, c.(tgbotapi.MessageConfig))
	return tgbotapi.Message{}, nil
}

type memCache struct {
	data map[string][]byte
}

func newMemCache() *memCache { return &memCache{data: map[string][]byte{}} }

func (m *memCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *memCache) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	m.data[key] = value
	return nil
}

func (m *memCache) Del(_ context.Context, key string) error {
	delete(m.data, key)
	return nil
}

func testSnapshot() models.ReportSnapshot {
	return models.ReportSnapshot{
		Metadata: models.ReportMetadata{CreatedAt: "27.02.2026 12:00:00"},
		Active: []models.ShipmentRecord{
			{ID: "1", TK: "ПЭК", Sender: "ООО РОМАШКА", Route: "МСК -> АСТРА", Status: "Прибыл на терминал", Payment: "Оплачено", Params: "1м | 10кг | 0.1м3"},
			{ID: "2", TK: "ПЭК", Sender: "ЮЖНЫЙ ФОРПОСТ", Route: "МСК -> АСТРА", Status: "Прибыл", Payment: "Оплачено"},
			{ID: "3", TK: "Деловые Линии", Sender: "ИП ПЕТРОВ", Route: "АСТРА -> ПЕНЗА", Status: "Прибыл", Payment: "Оплачено"},
			{ID: "4", TK: "Деловые Линии", Sender: "ИП СИДОРОВ", Route: "КЗН -> АСТРА", Status: "В пути", Payment: "Не оплачено"},
			{ID: "5", TK: "Деловые Линии", Sender: "АО ВЕКТОР", Route: "КЗН -> АСТРА", Status: "Готов к выдаче", Payment: "Долг: 500"},
		},
	}
}

func newTestNotifier(api tgSender, c *memCache) *Notifier {
	log := slog.New(slog.DiscardHandler)
	return newWithSender(api, []int64{100, 200}, []string{"ЮЖНЫЙ ФОРПОСТ"}, "АСТРА", c, log)
}

func TestSendSummary_FiltersAndGroups(t *testing.T) {
	api := &fakeSender{}
	n := newTestNotifier(api, newMemCache())

	require.NoError(t, n.SendSummary(context.Background(), testSnapshot(), false))
	require.Len(t, api.sent, 2)

	msg := api.sent[0].Text
	// попали только чужие грузы до дома со статусом готовности
	require.Contains(t, msg, "№1")
	require.Contains(t, msg, "№5")
	require.NotContains(t, msg, "№2") // собственный отправитель
	require.NotContains(t, msg, "№3") // едет не к нам
	require.NotContains(t, msg, "№4") // ещё в пути
	require.Contains(t, msg, "Всего к выдаче: **2** шт.")
	require.Contains(t, msg, "⚠️ *ДОЛГ: 500*")
	require.Contains(t, msg, "✅ *Оплачено*")
}

func TestSendSummary_HashDedupe(t *testing.T) {
	api := &fakeSender{}
	c := newMemCache()
	n := newTestNotifier(api, c)
	ctx := context.Background()

	require.NoError(t, n.SendSummary(ctx, testSnapshot(), false))
	require.Len(t, api.sent, 2)

	// тот же состав, отправки нет
	require.NoError(t, n.SendSummary(ctx, testSnapshot(), false))
	require.Len(t, api.sent, 2)

	// force игнорирует хеш
	require.NoError(t, n.SendSummary(ctx, testSnapshot(), true))
	require.Len(t, api.sent, 4)

	// смена оплаты меняет хеш
	snap := testSnapshot()
	snap.Active[0].Payment = "Долг: 100"
	require.NoError(t, n.SendSummary(ctx, snap, false))
	require.Len(t, api.sent, 6)
}

func TestSendSummary_NothingReady(t *testing.T) {
	api := &fakeSender{}
	n := newTestNotifier(api, newMemCache())

	snap := models.ReportSnapshot{Active: []models.ShipmentRecord{
		{ID: "1", TK: "ПЭК", Sender: "ООО РОМАШКА", Route: "МСК -> АСТРА", Status: "В пути", Payment: "Не оплачено"},
	}}
	require.NoError(t, n.SendSummary(context.Background(), snap, false))
	require.Len(t, api.sent, 2)
	require.Contains(t, api.sent[0].Text, "готовых к выдаче, на данный момент нет")
}

func TestSendSummary_AllChatsFail(t *testing.T) {
	api := &fakeSender{err: context.DeadlineExceeded}
	c := newMemCache()
	n := newTestNotifier(api, c)

	require.Error(t, n.SendSummary(context.Background(), testSnapshot(), false))
	// хеш не записан, следующая попытка отправит заново
	_, ok, err := c.Get(context.Background(), hashKey)
	require.NoError(t, err)
	require.False(t, ok)
}
