package pgreport

import (
	"context"
	"encoding/json"
	"time"

	"github.com/RobertKano/logisticapis/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/pkg/errors"
)

var ErrManualNotFound = errors.New("manual record not found")

// CreateManual сохраняет памятку. Повторный вызов с тем же id
// перезаписывает содержимое.
func (s *Storage) CreateManual(ctx context.Context, rec models.ShipmentRecord) error {
	if rec.ID == "" {
		return errors.New("manual record without id")
	}
	b, err := json.Marshal(rec)
	if err != nil {
		return errors.Wrap(err, "marshal manual record")
	}
	now := time.Now().UTC()
	_, err = s.db.Exec(ctx, `
INSERT INTO manual_records (record_id, payload, created_at, updated_at)
VALUES ($1, $2, $3, $3)
ON CONFLICT (record_id) DO UPDATE SET payload = EXCLUDED.payload, updated_at = EXCLUDED.updated_at
`, rec.ID, b, now)
	return errors.Wrap(err, "insert manual record")
}

func (s *Storage) GetManual(ctx context.Context, id string) (models.ShipmentRecord, error) {
	var b []byte
	err := s.db.QueryRow(ctx, `SELECT payload FROM manual_records WHERE record_id = $1`, id).Scan(&b)
	if err == pgx.ErrNoRows {
		return models.ShipmentRecord{}, ErrManualNotFound
	}
	if err != nil {
		return models.ShipmentRecord{}, errors.Wrap(err, "select manual record")
	}

	var rec models.ShipmentRecord
	if err := json.Unmarshal(b, &rec); err != nil {
		return models.ShipmentRecord{}, errors.Wrap(err, "unmarshal manual record")
	}
	return rec, nil
}

func (s *Storage) UpdateManual(ctx context.Context, rec models.ShipmentRecord) error {
	b, err := json.Marshal(rec)
	if err != nil {
		return errors.Wrap(err, "marshal manual record")
	}
	tag, err := s.db.Exec(ctx, `
UPDATE manual_records SET payload = $2, updated_at = $3 WHERE record_id = $1
`, rec.ID, b, time.Now().UTC())
	if err != nil {
		return errors.Wrap(err, "update manual record")
	}
	if tag.RowsAffected() == 0 {
		return ErrManualNotFound
	}
	return nil
}

func (s *Storage) DeleteManual(ctx context.Context, id string) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM manual_records WHERE record_id = $1`, id)
	if err != nil {
		return errors.Wrap(err, "delete manual record")
	}
	if tag.RowsAffected() == 0 {
		return ErrManualNotFound
	}
	return nil
}

// ListManual отдаёт памятки в порядке создания.
func (s *Storage) ListManual(ctx context.Context) ([]models.ShipmentRecord, error) {
	rows, err := s.db.Query(ctx, `SELECT payload FROM manual_records ORDER BY created_at, record_id`)
	if err != nil {
		return nil, errors.Wrap(err, "select manual records")
	}
	defer rows.Close()

	out := []models.ShipmentRecord{}
	for rows.Next() {
		var b []byte
		if err := rows.Scan(&b); err != nil {
			return nil, errors.Wrap(err, "scan manual record")
		}
		var rec models.ShipmentRecord
		if err := json.Unmarshal(b, &rec); err != nil {
			return nil, errors.Wrap(err, "unmarshal manual record")
		}
		out = append(out, rec)
	}
	if rows.Err() != nil {
		return nil, errors.Wrap(rows.Err(), "rows")
	}
	return out, nil
}
