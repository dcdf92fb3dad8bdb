package report

import (
	"strings"
	"time"

	"github.com/RobertKano/logisticapis/internal/models"
)

// Подписи для ручных памяток.
const (
	MemoCarrierLabel  = "📝 ПАМЯТКА"
	MemoDefaultStatus = "Заметка"
	PaymentUnclear    = "уточнить"
	PaymentPaidLabel  = "✅ Оплачено"
)

// Row — запись после нормализации: все дефолты подставлены, производные поля
// посчитаны. Ниже по конвейеру (сортировка, фильтры, презентация) никто не
// проверяет наличие полей.
type Row struct {
	ID        string // полный id, для точечного поиска
	DisplayID string // без служебного суффикса после "_"

	TK        string
	Sender    string
	Recipient string
	Route     string
	Params    string

	SenderOwn    bool // отправитель из списка "своих" имён
	RecipientOwn bool

	StatusRaw     string
	DisplayStatus string
	Category      string
	Arrived       bool

	Payment        string
	Paid           bool
	PaymentDisplay string

	PayerType string
	IsManual  bool
	Priority  string

	SortDate    time.Time
	DateKey     string // YYYY-MM-DD, "0000-00-00" если даты нет
	DisplayDate string

	Heavy    bool
	Oversize bool

	// Поисковый пул: весь отображаемый текст плюс исходные имена
	// отправителя/получателя. Поиск идёт по данным, а не по подменённой
	// презентации.
	SearchPool string
}

// Normalizer превращает сырые записи снапшота в Row. Чистый: снапшот не
// мутируется, один и тот же вход даёт один и тот же выход на каждом рендере.
type Normalizer struct {
	ownNames   []string // в нижнем регистре
	thresholds SizeThresholds
}

func NewNormalizer(ownNames []string, t SizeThresholds) *Normalizer {
	low := make([]string, 0, len(ownNames))
	for _, n := range ownNames {
		n = strings.TrimSpace(strings.ToLower(n))
		if n != "" {
			low = append(low, n)
		}
	}
	return &Normalizer{ownNames: low, thresholds: t}
}

// Rows нормализует список записей выбранного представления.
func (n *Normalizer) Rows(recs []models.ShipmentRecord, view string) []Row {
	out := make([]Row, 0, len(recs))
	for _, r := range recs {
		out = append(out, n.row(r, view))
	}
	return out
}

func (n *Normalizer) row(r models.ShipmentRecord, view string) Row {
	row := Row{
		ID:        r.ID,
		DisplayID: strings.SplitN(r.ID, "_", 2)[0],
		TK:        r.TK,
		Sender:    orPlaceholder(r.Sender),
		Recipient: orPlaceholder(r.Recipient),
		Route:     orPlaceholder(r.Route),
		Params:    orPlaceholder(r.Params),
		StatusRaw: r.Status,
		Payment:   r.Payment,
		PayerType: r.PayerType,
		IsManual:  r.IsManual,
		Priority:  r.Priority,
	}

	row.SenderOwn = n.isOwn(r.Sender)
	row.RecipientOwn = n.isOwn(r.Recipient)

	if row.TK == "" {
		if r.IsManual {
			row.TK = MemoCarrierLabel
		} else {
			row.TK = Placeholder
		}
	}

	// Памятки идут нейтральным путём: эвристики статусов/оплаты ТК к ним
	// не применяются.
	if r.IsManual {
		row.DisplayStatus = r.Status
		if row.DisplayStatus == "" {
			row.DisplayStatus = MemoDefaultStatus
		}
		row.Category = CategoryUnknown
		row.PaymentDisplay = PaymentUnclear
	} else {
		sc := ClassifyStatus(r.Status, view)
		row.DisplayStatus = sc.Label
		row.Category = sc.Category
		row.Arrived = sc.Arrived

		row.Paid = PaymentPaid(r.Payment)
		if row.Paid {
			row.PaymentDisplay = PaymentPaidLabel
		} else if r.Payment != "" {
			row.PaymentDisplay = "⚠️ " + r.Payment
		} else {
			row.PaymentDisplay = "⚠️ " + PaymentUnclear
		}
	}

	row.SortDate = ParseSortDate(r)
	row.DateKey = DateKey(r)
	row.DisplayDate = displayDate(r)

	size := ClassifySize(ParseParams(r.Params), n.thresholds)
	row.Heavy = size.Heavy
	row.Oversize = size.Oversize

	row.SearchPool = strings.ToLower(strings.Join([]string{
		row.TK, row.DisplayID, row.Route, row.Params,
		row.DisplayStatus, row.DisplayDate, row.PaymentDisplay,
		r.Sender, r.Recipient,
	}, " "))

	return row
}

func (n *Normalizer) isOwn(name string) bool {
	if name == "" {
		return false
	}
	low := strings.ToLower(name)
	for _, own := range n.ownNames {
		if strings.Contains(low, own) {
			return true
		}
	}
	return false
}

func orPlaceholder(s string) string {
	if strings.TrimSpace(s) == "" {
		return Placeholder
	}
	return s
}

// displayDate показывает arrival без времени, иначе archived_at как есть.
func displayDate(r models.ShipmentRecord) string {
	if r.Arrival != "" {
		if i := strings.IndexByte(r.Arrival, 'T'); i >= 0 {
			return r.Arrival[:i]
		}
		return r.Arrival
	}
	if r.ArchivedAt != "" {
		return r.ArchivedAt
	}
	return Placeholder
}
