package report

import (
	"testing"
	"time"

	"github.com/RobertKano/logisticapis/internal/models"
	"github.com/stretchr/testify/require"
)

func rowsFrom(recs ...models.ShipmentRecord) []Row {
	return newTestNormalizer().Rows(recs, models.ViewActive)
}

func ids(rows []Row) []string {
	out := make([]string, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.ID)
	}
	return out
}

func TestSortRows_DirectionSymmetric(t *testing.T) {
	rows := rowsFrom(
		models.ShipmentRecord{ID: "b", Arrival: "2026-03-01"},
		models.ShipmentRecord{ID: "a", Arrival: "2026-01-15"},
		models.ShipmentRecord{ID: "c", Arrival: "2026-05-20"},
	)

	asc := SortRows(rows, models.SortAsc)
	desc := SortRows(rows, models.SortDesc)
	require.Equal(t, []string{"a", "b", "c"}, ids(asc))

	// asc, развёрнутый задом наперёд, совпадает с desc (даты различны).
	for i := range asc {
		require.Equal(t, asc[len(asc)-1-i].ID, desc[i].ID)
	}
}

func TestSortRows_StableAndMissingDatesOldest(t *testing.T) {
	rows := rowsFrom(
		models.ShipmentRecord{ID: "x", Arrival: "2026-02-25"},
		models.ShipmentRecord{ID: "no1"},
		models.ShipmentRecord{ID: "no2"},
		models.ShipmentRecord{ID: "y", Arrival: "2026-02-25T09:00:00Z"},
	)

	asc := SortRows(rows, models.SortAsc)
	// Записи без даты — самые старые, их относительный порядок сохранён.
	require.Equal(t, []string{"no1", "no2", "x", "y"}, ids(asc))
	// Исходный срез не тронут.
	require.Equal(t, "x", rows[0].ID)
}

func TestFilterRows_TextOnUnderlyingData(t *testing.T) {
	rows := rowsFrom(
		models.ShipmentRecord{ID: "1", Sender: "Иванов"},
		models.ShipmentRecord{ID: "2", Sender: `ООО "Южный Форпост"`},
	)

	got := FilterRows(rows, Filter{Search: "иванов"})
	require.Equal(t, []string{"1"}, ids(got))
}

func TestFilterRows_ExactDate(t *testing.T) {
	rows := rowsFrom(
		models.ShipmentRecord{ID: "1", Arrival: "2026-02-25T10:00:00Z"},
		models.ShipmentRecord{ID: "2", Arrival: "2026-02-26"},
	)

	got := FilterRows(rows, Filter{Date: "2026-02-25"})
	require.Equal(t, []string{"1"}, ids(got))
}

func TestFilterRows_QuickRanges(t *testing.T) {
	// Полночь, чтобы границы диапазонов попадали ровно на даты записей:
	// диапазон включительный с обеих сторон.
	now := time.Date(2026, 2, 25, 0, 0, 0, 0, time.UTC)
	rows := rowsFrom(
		models.ShipmentRecord{ID: "today", Arrival: "2026-02-25"},
		models.ShipmentRecord{ID: "week-edge", Arrival: "2026-02-18"},
		models.ShipmentRecord{ID: "old", Arrival: "2026-01-01"},
		models.ShipmentRecord{ID: "nodate"},
	)

	got := FilterRows(rows, Filter{QuickRange: models.QuickRangeWeek, Now: now})
	require.Equal(t, []string{"today", "week-edge"}, ids(got))

	got = FilterRows(rows, Filter{QuickRange: models.QuickRangeMonth, Now: now})
	require.Equal(t, []string{"today", "week-edge"}, ids(got))

	// all: проходят все, включая записи без даты.
	got = FilterRows(rows, Filter{QuickRange: models.QuickRangeAll, Now: now})
	require.Len(t, got, 4)
}

func TestFilterRows_TextAndDateBothRequired(t *testing.T) {
	rows := rowsFrom(
		models.ShipmentRecord{ID: "1", Sender: "Иванов", Arrival: "2026-02-25"},
		models.ShipmentRecord{ID: "2", Sender: "Иванов", Arrival: "2026-02-26"},
	)

	got := FilterRows(rows, Filter{Search: "иванов", Date: "2026-02-26"})
	require.Equal(t, []string{"2"}, ids(got))
}

func TestComputeStats(t *testing.T) {
	active := []models.ShipmentRecord{
		{ID: "1", Status: "Прибыл на склад", Payment: "К оплате 500"},
		{ID: "2", Status: "В пути"},
		{ID: "3", Status: "Готов к выдаче", Payment: "Оплачено"},
		{ID: "4", Status: "Принят к перевозке", Payment: "Долг: 100"},
		{ID: "5", IsManual: true},
	}

	st := ComputeStats(active)
	require.Equal(t, Stats{Total: 5, Ready: 2, Transit: 2, Debt: 2}, st)
}

func TestStatKeyword(t *testing.T) {
	require.Equal(t, "Прибыл", StatKeyword(StatReady))
	require.Equal(t, "В пути", StatKeyword(StatTransit))
	require.Equal(t, "К ОПЛАТЕ", StatKeyword(StatDebt))
	require.Equal(t, "", StatKeyword(StatTotal))
}
