package models

// Представления отчёта.
const (
	ViewActive  = "active"
	ViewArchive = "archive"
)

// Направления сортировки по дате прибытия.
const (
	SortAsc  = "asc"
	SortDesc = "desc"
)

// Быстрые диапазоны фильтра ("за 7 дней" / "за 30 дней").
const (
	QuickRangeAll   = "all"
	QuickRangeWeek  = "week"
	QuickRangeMonth = "month"
)

// Приоритеты ручных памяток.
const (
	PriorityHigh   = "high"
	PriorityMedium = "medium"
	PriorityLow    = "low"
)

// Типы плательщика.
const (
	PayerRecipient = "recipient"
	PayerSender    = "sender"
)

// ShipmentRecord — одна запись отчёта в том виде, в котором она ходит по
// проводам: либо груз из API ТК, либо ручная памятка (IsManual).
// Поля свободного формата, дефолты подставляет нормализатор.
type ShipmentRecord struct {
	ID         string `json:"id"`
	TK         string `json:"tk,omitempty"`
	Sender     string `json:"sender,omitempty"`
	Recipient  string `json:"recipient,omitempty"`
	Route      string `json:"route,omitempty"`
	Params     string `json:"params,omitempty"`
	Status     string `json:"status,omitempty"`
	Payment    string `json:"payment,omitempty"`
	PayerType  string `json:"payer_type,omitempty"`
	Arrival    string `json:"arrival,omitempty"`
	ArchivedAt string `json:"archived_at,omitempty"`
	IsManual   bool   `json:"is_manual,omitempty"`
	Priority   string `json:"priority,omitempty"`
}

type ReportMetadata struct {
	CreatedAt    string `json:"created_at"`
	ActiveCount  int    `json:"active_count"`
	ArchiveCount int    `json:"archive_count"`
}

// ReportSnapshot — полный набор active+archive из одного цикла сборки.
// Потребитель всегда заменяет его целиком, без слияния.
type ReportSnapshot struct {
	Metadata ReportMetadata   `json:"metadata"`
	Active   []ShipmentRecord `json:"active"`
	Archive  []ShipmentRecord `json:"archive"`
}
