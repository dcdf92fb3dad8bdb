package reports

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/pkg/errors"

	"github.com/RobertKano/logisticapis/internal/broker/messages"
	"github.com/RobertKano/logisticapis/internal/cache"
	"github.com/RobertKano/logisticapis/internal/models"
	"github.com/RobertKano/logisticapis/internal/report"
)

const (
	snapshotKey    = "report:latest"
	metadataLayout = "02.01.2006 15:04:05"
	arrivalDefault = "2006-01-02"
)

type Repository interface {
	LastActiveState(ctx context.Context) ([]models.ShipmentRecord, time.Time, error)
	ListArchive(ctx context.Context) ([]models.ShipmentRecord, error)
	CreateManual(ctx context.Context, rec models.ShipmentRecord) error
	GetManual(ctx context.Context, id string) (models.ShipmentRecord, error)
	UpdateManual(ctx context.Context, rec models.ShipmentRecord) error
	DeleteManual(ctx context.Context, id string) error
	ListManual(ctx context.Context) ([]models.ShipmentRecord, error)
}

// Service собирает снапшот отчёта для панели: активные грузы последнего
// прогона коллектора, личные памятки и вечный архив. Снапшот кэшируется
// целиком как JSON.
type Service struct {
	repo        Repository
	cache       cache.BytesCache
	snapshotTTL time.Duration
	now         func() time.Time
}

func New(repo Repository, c cache.BytesCache, snapshotTTL time.Duration) *Service {
	return &Service{repo: repo, cache: c, snapshotTTL: snapshotTTL, now: time.Now}
}

func (s *Service) Latest(ctx context.Context) (models.ReportSnapshot, error) {
	if s.cache != nil && s.snapshotTTL > 0 {
		if b, ok, err := s.cache.Get(ctx, snapshotKey); err == nil && ok {
			var snap models.ReportSnapshot
			if json.Unmarshal(b, &snap) == nil {
				return snap, nil
			}
		}
	}
	return s.rebuild(ctx)
}

// ApplyUpdate вызывается на сообщение коллектора из kafka: снапшот в
// кэше устарел, пересобираем его из БД.
func (s *Service) ApplyUpdate(ctx context.Context, msg messages.ReportUpdated) error {
	_, err := s.rebuild(ctx)
	return err
}

func (s *Service) AddManual(ctx context.Context, rec models.ShipmentRecord) (models.ShipmentRecord, error) {
	if rec.ID == "" {
		rec.ID = fmt.Sprintf("MEMO-%d", s.now().UnixMilli())
	}
	rec.IsManual = true
	if rec.TK == "" {
		rec.TK = report.MemoCarrierLabel
	}
	if rec.Status == "" {
		rec.Status = report.MemoDefaultStatus
	}
	if rec.Arrival == "" {
		rec.Arrival = s.now().Format(arrivalDefault)
	}

	if err := s.repo.CreateManual(ctx, rec); err != nil {
		return models.ShipmentRecord{}, err
	}
	_, _ = s.rebuild(ctx)
	return rec, nil
}

func (s *Service) UpdateManual(ctx context.Context, rec models.ShipmentRecord) (models.ShipmentRecord, error) {
	if rec.ID == "" {
		return models.ShipmentRecord{}, errors.New("id is required")
	}

	existing, err := s.repo.GetManual(ctx, rec.ID)
	if err != nil {
		return models.ShipmentRecord{}, err
	}

	rec.IsManual = true
	if rec.TK == "" {
		rec.TK = existing.TK
	}
	if rec.Status == "" {
		rec.Status = existing.Status
	}
	// Дата прибытия при правке сохраняется, если явно не переписана.
	if rec.Arrival == "" {
		rec.Arrival = existing.Arrival
	}
	if rec.Arrival == "" {
		rec.Arrival = s.now().Format(arrivalDefault)
	}

	if err := s.repo.UpdateManual(ctx, rec); err != nil {
		return models.ShipmentRecord{}, err
	}
	_, _ = s.rebuild(ctx)
	return rec, nil
}

func (s *Service) DeleteManual(ctx context.Context, id string) error {
	if id == "" {
		return errors.New("id is required")
	}
	if err := s.repo.DeleteManual(ctx, id); err != nil {
		return err
	}
	_, _ = s.rebuild(ctx)
	return nil
}

func (s *Service) rebuild(ctx context.Context) (models.ReportSnapshot, error) {
	active, createdAt, err := s.repo.LastActiveState(ctx)
	if err != nil {
		return models.ReportSnapshot{}, errors.Wrap(err, "load active state")
	}
	manual, err := s.repo.ListManual(ctx)
	if err != nil {
		return models.ReportSnapshot{}, errors.Wrap(err, "load manual records")
	}
	archive, err := s.repo.ListArchive(ctx)
	if err != nil {
		return models.ReportSnapshot{}, errors.Wrap(err, "load archive")
	}

	// Памятки живут среди активных грузов.
	active = append(active, manual...)

	if createdAt.IsZero() {
		createdAt = s.now()
	}
	snap := models.ReportSnapshot{
		Metadata: models.ReportMetadata{
			CreatedAt:    createdAt.Local().Format(metadataLayout),
			ActiveCount:  len(active),
			ArchiveCount: len(archive),
		},
		Active:  active,
		Archive: archive,
	}

	if s.cache != nil && s.snapshotTTL > 0 {
		if b, err := json.Marshal(snap); err == nil {
			_ = s.cache.Set(ctx, snapshotKey, b, s.snapshotTTL)
		}
	}
	return snap, nil
}
