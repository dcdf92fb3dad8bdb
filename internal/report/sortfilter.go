package report

import (
	"sort"
	"strings"
	"time"

	"github.com/RobertKano/logisticapis/internal/models"
)

// SortRows возвращает копию rows, стабильно отсортированную по производной
// дате. Равные даты сохраняют исходный относительный порядок.
func SortRows(rows []Row, direction string) []Row {
	out := make([]Row, len(rows))
	copy(out, rows)
	desc := direction == models.SortDesc
	sort.SliceStable(out, func(i, j int) bool {
		if desc {
			return out[i].SortDate.After(out[j].SortDate)
		}
		return out[i].SortDate.Before(out[j].SortDate)
	})
	return out
}

// Filter — комбинированный предикат видимости. Точная дата и быстрый диапазон
// взаимоисключающие: контроллер сбрасывает один при установке другого.
type Filter struct {
	Search     string
	Date       string    // YYYY-MM-DD, точное совпадение
	QuickRange string    // all | week | month
	Now        time.Time // для тестов; нулевое значение = time.Now()
}

// FilterRows оставляет строки, прошедшие и текстовый, и датовый предикаты.
func FilterRows(rows []Row, f Filter) []Row {
	now := f.Now
	if now.IsZero() {
		now = time.Now()
	}
	var cutoff time.Time
	switch f.QuickRange {
	case models.QuickRangeWeek:
		cutoff = now.AddDate(0, 0, -7)
	case models.QuickRangeMonth:
		cutoff = now.AddDate(0, -1, 0)
	}

	search := strings.ToLower(f.Search)
	out := make([]Row, 0, len(rows))
	for _, r := range rows {
		if search != "" && !strings.Contains(r.SearchPool, search) {
			continue
		}
		if f.Date != "" {
			if r.DateKey != f.Date {
				continue
			}
		} else if !cutoff.IsZero() {
			// Диапазон включительный с обеих сторон.
			if r.SortDate.Before(cutoff) || r.SortDate.After(now) {
				continue
			}
		}
		out = append(out, r)
	}
	return out
}

// VisibleRows — сортировка + фильтрация одним вызовом, для контроллера.
func VisibleRows(rows []Row, direction string, f Filter) []Row {
	return FilterRows(SortRows(rows, direction), f)
}

// Stats — счётчики плиток. Считаются по сырым записям активного списка,
// до нормализации: тут важны исходные строки статуса и оплаты.
type Stats struct {
	Total   int `json:"total"`
	Ready   int `json:"ready"`
	Transit int `json:"transit"`
	Debt    int `json:"debt"`
}

func ComputeStats(active []models.ShipmentRecord) Stats {
	st := Stats{Total: len(active)}
	for _, r := range active {
		s := strings.ToLower(r.Status)
		if containsAny(s, ReadyStatTokens) {
			st.Ready++
		}
		if containsAny(s, TransitStatTokens) {
			st.Transit++
		}
		p := strings.ToLower(r.Payment)
		if containsAny(p, DebtStatTokens) {
			st.Debt++
		}
	}
	return st
}

// Имена плиток статистики.
const (
	StatTotal   = "total"
	StatReady   = "ready"
	StatTransit = "transit"
	StatDebt    = "debt"
)

// StatKeyword — сахар "клик по плитке": подставляет каноническое ключевое
// слово в текстовый фильтр. Нового механизма фильтрации плитки не вводят.
func StatKeyword(stat string) string {
	switch stat {
	case StatReady:
		return "Прибыл"
	case StatTransit:
		return "В пути"
	case StatDebt:
		return "К ОПЛАТЕ"
	default:
		return ""
	}
}
