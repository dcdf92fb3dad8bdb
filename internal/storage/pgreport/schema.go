package pgreport

import (
	"context"

	"github.com/pkg/errors"
)

func (s *Storage) initSchema(ctx context.Context) error {
	stmts := []string{
		// "Память" коллектора: активный список последнего прогона, одной
		// строкой. По нему следующий прогон находит пропавшие из API грузы.
		`
CREATE TABLE IF NOT EXISTS report_state (
  id BOOLEAN PRIMARY KEY DEFAULT TRUE CHECK (id),
  payload JSONB NOT NULL,
  created_at TIMESTAMPTZ NOT NULL
)`,
		// Вечный архив: завершённые грузы, дедупликация по id записи.
		`
CREATE TABLE IF NOT EXISTS archive_records (
  record_id TEXT PRIMARY KEY,
  seq BIGSERIAL,
  payload JSONB NOT NULL,
  created_at TIMESTAMPTZ NOT NULL
)`,
		`CREATE INDEX IF NOT EXISTS idx_archive_records_seq ON archive_records(seq)`,
		// Ручные памятки админа.
		`
CREATE TABLE IF NOT EXISTS manual_records (
  record_id TEXT PRIMARY KEY,
  payload JSONB NOT NULL,
  created_at TIMESTAMPTZ NOT NULL,
  updated_at TIMESTAMPTZ NOT NULL
)`,
	}

	for _, q := range stmts {
		if _, err := s.db.Exec(ctx, q); err != nil {
			return errors.Wrap(err, "init schema")
		}
	}
	return nil
}
