package report

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClassifyStatus_Families(t *testing.T) {
	cases := []struct {
		raw      string
		category string
		label    string
		arrived  bool
	}{
		{"Прибыл на терминал", CategoryArrived, DisplayArrived, true},
		{"Готов к выдаче", CategoryArrived, DisplayArrived, true},
		{"Платное хранение", CategoryArrived, DisplayArrived, true},
		{"Груз в пути", CategoryInTransit, DisplayInTransit, false},
		{"Транзит через МСК", CategoryInTransit, DisplayInTransit, false},
		{"Принят к перевозке", CategoryInTransit, DisplayInTransit, false},
		{"Выполняется адресная доставка", CategoryOutForDelivery, DisplayDelivery, true},
		{"Везём до адреса", CategoryOutForDelivery, DisplayDelivery, true},
	}
	for _, c := range cases {
		got := ClassifyStatus(c.raw, "active")
		require.Equal(t, c.category, got.Category, c.raw)
		require.Equal(t, c.label, got.Label, c.raw)
		require.Equal(t, c.arrived, got.Arrived, c.raw)
	}
}

func TestClassifyStatus_OrderMatters(t *testing.T) {
	// Свободный текст может содержать токены двух семейств: побеждает
	// первое правило.
	got := ClassifyStatus("Прибыл, был в пути", "active")
	require.Equal(t, CategoryArrived, got.Category)
}

func TestClassifyStatus_UnknownFallbacks(t *testing.T) {
	// Неизвестный статус показываем как есть.
	got := ClassifyStatus("Изъят на таможне", "active")
	require.Equal(t, CategoryUnknown, got.Category)
	require.Equal(t, "Изъят на таможне", got.Label)

	// Пустой статус: дефолт зависит от представления.
	require.Equal(t, DisplayCompleted, ClassifyStatus("", "archive").Label)
	require.Equal(t, Placeholder, ClassifyStatus("", "active").Label)
}

func TestClassifySize(t *testing.T) {
	th := DefaultSizeThresholds()

	// Абсолютный порог: 200кг на 10 мест — всего 20кг/место, но 200 > 150.
	got := ClassifySize(CargoParams{Units: 10, Weight: 200, Volume: 0.5}, th)
	require.True(t, got.Heavy)
	require.False(t, got.Oversize)

	got = ClassifySize(CargoParams{Units: 4, Weight: 200, Volume: 0.5}, th)
	require.True(t, got.Heavy)
	require.False(t, got.Oversize)

	// Порог на место: 140кг на 2 места = 70кг/место.
	got = ClassifySize(CargoParams{Units: 2, Weight: 140, Volume: 0.5}, th)
	require.True(t, got.Heavy)
	require.False(t, got.Oversize)

	// Лёгкий, но габаритный.
	got = ClassifySize(CargoParams{Units: 1, Weight: 50, Volume: 2.0}, th)
	require.False(t, got.Heavy)
	require.True(t, got.Oversize)

	// Оба порога не задеты.
	got = ClassifySize(CargoParams{Units: 2, Weight: 60, Volume: 1.5}, th)
	require.False(t, got.Heavy)
	require.False(t, got.Oversize)
}

func TestClassifySize_ZeroUnitsTreatedAsOne(t *testing.T) {
	got := ClassifySize(CargoParams{Units: 0, Weight: 40, Volume: 0}, DefaultSizeThresholds())
	require.True(t, got.Heavy)
}
