package report

import (
	"testing"
	"time"

	"github.com/RobertKano/logisticapis/internal/models"
	"github.com/stretchr/testify/require"
)

func TestParseSortDate_ArrivalEncodings(t *testing.T) {
	want := time.Date(2026, 2, 25, 0, 0, 0, 0, time.UTC)

	// ISO с временем и без — одна и та же календарная дата.
	require.Equal(t, want, ParseSortDate(models.ShipmentRecord{Arrival: "2026-02-25"}))
	require.Equal(t, want, ParseSortDate(models.ShipmentRecord{Arrival: "2026-02-25T10:00:00Z"}))
}

func TestParseSortDate_ArchiveFormats(t *testing.T) {
	dotted := ParseSortDate(models.ShipmentRecord{ArchivedAt: "25.02.2026"})
	iso := ParseSortDate(models.ShipmentRecord{ArchivedAt: "2026-02-25"})
	require.Equal(t, iso, dotted)
}

func TestParseSortDate_PrefersArrival(t *testing.T) {
	got := ParseSortDate(models.ShipmentRecord{Arrival: "2026-01-10", ArchivedAt: "25.02.2026"})
	require.Equal(t, time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC), got)
}

func TestParseSortDate_Degrades(t *testing.T) {
	// Нет дат вообще.
	require.Equal(t, SortDateMin, ParseSortDate(models.ShipmentRecord{}))
	// Мусор не должен паниковать и не должен давать ошибку.
	require.Equal(t, SortDateMin, ParseSortDate(models.ShipmentRecord{Arrival: "когда-нибудь"}))
	require.Equal(t, SortDateMin, ParseSortDate(models.ShipmentRecord{ArchivedAt: "99.99.9999"}))
}

func TestDateKey(t *testing.T) {
	require.Equal(t, "2026-02-25", DateKey(models.ShipmentRecord{Arrival: "2026-02-25T10:00:00Z"}))
	require.Equal(t, "2026-02-25", DateKey(models.ShipmentRecord{ArchivedAt: "25.02.2026"}))
	require.Equal(t, "0000-00-00", DateKey(models.ShipmentRecord{}))
}

func TestParseParams(t *testing.T) {
	got := ParseParams("3м | 10.5кг | 0.1м3")
	require.Equal(t, CargoParams{Units: 3, Weight: 10.5, Volume: 0.1}, got)

	// Пустая строка — дефолты: 1 место, нулевые вес и объём.
	require.Equal(t, CargoParams{Units: 1}, ParseParams(""))

	// Формат коллектора "Nм/ Nкг/ Nм3" тоже разбирается.
	got = ParseParams("2м/ 140кг/ 0.5м3")
	require.Equal(t, CargoParams{Units: 2, Weight: 140, Volume: 0.5}, got)

	// Частично заданные параметры.
	got = ParseParams("5кг")
	require.Equal(t, CargoParams{Units: 1, Weight: 5}, got)
}

func TestPaymentPaid(t *testing.T) {
	require.True(t, PaymentPaid("Оплачено"))
	require.True(t, PaymentPaid("оплачен полностью"))

	// Подстрока "к " перебивает префикс: частичный долг = не оплачено.
	require.False(t, PaymentPaid("Оплачено, 500 к оплате"))
	require.False(t, PaymentPaid("К оплате 1000"))
	require.False(t, PaymentPaid(""))
	require.False(t, PaymentPaid("Долг: 300"))
}
