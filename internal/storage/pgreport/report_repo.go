package pgreport

import (
	"context"
	"encoding/json"
	"time"

	"github.com/RobertKano/logisticapis/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/pkg/errors"
)

// SaveActiveState перезаписывает активный список последнего прогона целиком.
func (s *Storage) SaveActiveState(ctx context.Context, recs []models.ShipmentRecord, createdAt time.Time) error {
	if recs == nil {
		recs = []models.ShipmentRecord{}
	}
	b, err := json.Marshal(recs)
	if err != nil {
		return errors.Wrap(err, "marshal active state")
	}
	_, err = s.db.Exec(ctx, `
INSERT INTO report_state (id, payload, created_at)
VALUES (TRUE, $1, $2)
ON CONFLICT (id) DO UPDATE SET payload = EXCLUDED.payload, created_at = EXCLUDED.created_at
`, b, createdAt.UTC())
	return errors.Wrap(err, "save active state")
}

// LastActiveState возвращает активный список последнего прогона. Если
// коллектор ещё ни разу не отработал — пустой список и нулевое время.
func (s *Storage) LastActiveState(ctx context.Context) ([]models.ShipmentRecord, time.Time, error) {
	var b []byte
	var createdAt time.Time
	err := s.db.QueryRow(ctx, `SELECT payload, created_at FROM report_state WHERE id`).Scan(&b, &createdAt)
	if err == pgx.ErrNoRows {
		return []models.ShipmentRecord{}, time.Time{}, nil
	}
	if err != nil {
		return nil, time.Time{}, errors.Wrap(err, "select active state")
	}

	var recs []models.ShipmentRecord
	if err := json.Unmarshal(b, &recs); err != nil {
		return nil, time.Time{}, errors.Wrap(err, "unmarshal active state")
	}
	return recs, createdAt, nil
}

// AppendArchive дописывает завершённые грузы в вечный архив. Записи
// с уже существующим id молча пропускаются. Возвращает число реально
// добавленных.
func (s *Storage) AppendArchive(ctx context.Context, recs []models.ShipmentRecord) (int, error) {
	if len(recs) == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return 0, errors.Wrap(err, "begin tx")
	}
	defer func() { _ = tx.Rollback(ctx) }()

	now := time.Now().UTC()
	added := 0
	for _, r := range recs {
		if r.ID == "" {
			continue
		}
		b, err := json.Marshal(r)
		if err != nil {
			return 0, errors.Wrap(err, "marshal archive record")
		}
		tag, err := tx.Exec(ctx, `
INSERT INTO archive_records (record_id, payload, created_at)
VALUES ($1, $2, $3)
ON CONFLICT (record_id) DO NOTHING
`, r.ID, b, now)
		if err != nil {
			return 0, errors.Wrap(err, "insert archive record")
		}
		added += int(tag.RowsAffected())
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, errors.Wrap(err, "commit tx")
	}
	return added, nil
}

// ListArchive отдаёт архив в порядке добавления.
func (s *Storage) ListArchive(ctx context.Context) ([]models.ShipmentRecord, error) {
	rows, err := s.db.Query(ctx, `SELECT payload FROM archive_records ORDER BY seq`)
	if err != nil {
		return nil, errors.Wrap(err, "select archive")
	}
	defer rows.Close()

	out := []models.ShipmentRecord{}
	for rows.Next() {
		var b []byte
		if err := rows.Scan(&b); err != nil {
			return nil, errors.Wrap(err, "scan archive record")
		}
		var r models.ShipmentRecord
		if err := json.Unmarshal(b, &r); err != nil {
			return nil, errors.Wrap(err, "unmarshal archive record")
		}
		out = append(out, r)
	}
	if rows.Err() != nil {
		return nil, errors.Wrap(rows.Err(), "rows")
	}
	return out, nil
}
