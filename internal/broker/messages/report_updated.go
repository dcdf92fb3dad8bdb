package messages

// ReportUpdated публикуется коллектором после записи свежего состояния в
// БД. API по этому событию пересобирает снапшот и обновляет кэш.
type ReportUpdated struct {
	CreatedAt    string `json:"created_at"`
	ActiveCount  int    `json:"active_count"`
	ArchiveCount int    `json:"archive_count"`
	ArchivedNow  int    `json:"archived_now,omitempty"`
}
