package report

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/RobertKano/logisticapis/internal/models"
)

// SortDateMin — сентинел для записей без даты (и для мусора в полях дат):
// при сортировке asc такие записи уходят в самый низ.
var SortDateMin = time.Unix(0, 0).UTC()

// Известные текстовые кодировки дат в отчётах ТК.
const (
	dateLayoutISO = "2006-01-02"
	dateLayoutDot = "02.01.2006"
)

// ParseSortDate выводит ключ сортировки записи: сначала arrival, потом
// archived_at, иначе сентинел. Никогда не возвращает ошибку — кривые даты
// деградируют до сентинела.
func ParseSortDate(r models.ShipmentRecord) time.Time {
	if t, ok := parseReportDate(r.Arrival); ok {
		return t
	}
	if t, ok := parseReportDate(r.ArchivedAt); ok {
		return t
	}
	return SortDateMin
}

// parseReportDate понимает ISO с хвостом времени ("2026-02-25T10:00:00Z"),
// формат с точками "25.02.2026" и голый "2026-02-25".
func parseReportDate(val string) (time.Time, bool) {
	val = strings.TrimSpace(val)
	if val == "" {
		return SortDateMin, false
	}
	if i := strings.IndexByte(val, 'T'); i >= 0 {
		val = val[:i]
	}
	layout := dateLayoutISO
	if strings.Contains(val, ".") {
		layout = dateLayoutDot
	}
	t, err := time.ParseInLocation(layout, val, time.UTC)
	if err != nil {
		return SortDateMin, false
	}
	return t, true
}

// DateKey возвращает производную дату записи строкой YYYY-MM-DD
// (для точного фильтра по дню). "0000-00-00" если даты нет.
func DateKey(r models.ShipmentRecord) string {
	if t, ok := parseReportDate(r.Arrival); ok {
		return t.Format(dateLayoutISO)
	}
	if t, ok := parseReportDate(r.ArchivedAt); ok {
		return t.Format(dateLayoutISO)
	}
	return "0000-00-00"
}

// CargoParams — структурные параметры груза, выдранные из строки вида
// "3м | 10.5кг | 0.1м3".
type CargoParams struct {
	Units  int
	Weight float64
	Volume float64
}

var (
	weightRe = regexp.MustCompile(`([\d.]+)\s*кг`)
	volumeRe = regexp.MustCompile(`([\d.]+)\s*м3`)
	unitsRe  = regexp.MustCompile(`(\d+)\s*м`)
)

// ParseParams берёт первое совпадение каждого шаблона независимо.
// Дефолты: вес/объём 0, мест 1.
func ParseParams(params string) CargoParams {
	out := CargoParams{Units: 1}
	if m := weightRe.FindStringSubmatch(params); m != nil {
		if v, err := strconv.ParseFloat(m[1], 64); err == nil {
			out.Weight = v
		}
	}
	if m := volumeRe.FindStringSubmatch(params); m != nil {
		if v, err := strconv.ParseFloat(m[1], 64); err == nil {
			out.Volume = v
		}
	}
	if m := unitsRe.FindStringSubmatch(params); m != nil {
		if v, err := strconv.Atoi(m[1]); err == nil && v > 0 {
			out.Units = v
		}
	}
	return out
}

// Токены статуса оплаты. Правило несимметричное: префикс даёт "оплачено",
// но подстрока "к " (как в "к оплате") перебивает его в "не оплачено".
// Поэтому "Оплачено, 500 к оплате" — это долг, а не оплата.
const (
	paidPrefix = "оплаче"
	dueMarker  = "к "
)

// PaymentPaid классифицирует свободный текст статуса оплаты.
func PaymentPaid(payment string) bool {
	low := strings.ToLower(payment)
	return strings.HasPrefix(low, paidPrefix) && !strings.Contains(low, dueMarker)
}
