package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"

	"github.com/RobertKano/logisticapis/internal/broker/messages"
	"github.com/RobertKano/logisticapis/internal/integrations/carrier"
	"github.com/RobertKano/logisticapis/internal/models"
)

const (
	autoArchiveStatus = "Выдан (автоархив)"
	archivedAtLayout  = "02.01.2006"
	createdAtLayout   = "02.01.2006 15:04:05"
)

// Статусы, при которых груз считается завершённым и уходит в архив.
var excludeTokens = []string{"выдан", "доставлен", "завершен", "архив", "выдача", "получен"}

type Repository interface {
	LastActiveState(ctx context.Context) ([]models.ShipmentRecord, time.Time, error)
	SaveActiveState(ctx context.Context, recs []models.ShipmentRecord, createdAt time.Time) error
	AppendArchive(ctx context.Context, recs []models.ShipmentRecord) (int, error)
	ListArchive(ctx context.Context) ([]models.ShipmentRecord, error)
}

type Producer interface {
	Publish(ctx context.Context, topic string, key, value []byte) error
}

type RateLimiter interface {
	Allow(ctx context.Context, key string, limit int64, window time.Duration) (bool, int64, error)
}

type Notifier interface {
	SendSummary(ctx context.Context, snap models.ReportSnapshot, force bool) error
}

// Collector по расписанию опрашивает кабинеты ТК, сводит заказы в общий
// отчёт, архивирует завершённые и пропавшие из API грузы и оповещает
// подписчиков через kafka и telegram.
type Collector struct {
	repo     Repository
	clients  []carrier.Client
	producer Producer
	rl       RateLimiter
	notifier Notifier

	topic string

	pollInterval       time.Duration
	rateLimitPerMinute int64

	triggerCh chan struct{}

	startedAtUnixNano   int64
	lastCycleUnixNano   atomic.Int64
	lastTriggerUnixNano atomic.Int64
	totalCycles         atomic.Int64
	totalFetched        atomic.Int64
	totalArchived       atomic.Int64
	totalErrors         atomic.Int64
	lastErrorMu         sync.Mutex
	lastError           string
}

func New(repo Repository, clients []carrier.Client, producer Producer, rl RateLimiter, topic string) *Collector {
	return &Collector{
		repo: repo, clients: clients, producer: producer, rl: rl, topic: topic,
		pollInterval:       10 * time.Minute,
		rateLimitPerMinute: 30,
		triggerCh:          make(chan struct{}, 1),
		startedAtUnixNano:  time.Now().UTC().UnixNano(),
	}
}

func (c *Collector) WithSettings(pollInterval time.Duration, rlPerMin int64) *Collector {
	if pollInterval > 0 {
		c.pollInterval = pollInterval
	}
	if rlPerMin > 0 {
		c.rateLimitPerMinute = rlPerMin
	}
	return c
}

func (c *Collector) WithNotifier(n Notifier) *Collector {
	c.notifier = n
	return c
}

// Trigger forces an immediate collect cycle (best-effort, non-blocking).
func (c *Collector) Trigger() {
	c.lastTriggerUnixNano.Store(time.Now().UTC().UnixNano())
	select {
	case c.triggerCh <- struct{}{}:
	default:
	}
}

type Stats struct {
	StartedAt     time.Time  `json:"startedAt"`
	LastCycleAt   *time.Time `json:"lastCycleAt,omitempty"`
	LastTriggerAt *time.Time `json:"lastTriggerAt,omitempty"`
	TotalCycles   int64      `json:"totalCycles"`
	TotalFetched  int64      `json:"totalFetched"`
	TotalArchived int64      `json:"totalArchived"`
	TotalErrors   int64      `json:"totalErrors"`
	LastError     string     `json:"lastError,omitempty"`
}

func (c *Collector) Stats() Stats {
	st := Stats{
		StartedAt:     time.Unix(0, c.startedAtUnixNano).UTC(),
		TotalCycles:   c.totalCycles.Load(),
		TotalFetched:  c.totalFetched.Load(),
		TotalArchived: c.totalArchived.Load(),
		TotalErrors:   c.totalErrors.Load(),
	}
	if n := c.lastCycleUnixNano.Load(); n > 0 {
		t := time.Unix(0, n).UTC()
		st.LastCycleAt = &t
	}
	if n := c.lastTriggerUnixNano.Load(); n > 0 {
		t := time.Unix(0, n).UTC()
		st.LastTriggerAt = &t
	}
	c.lastErrorMu.Lock()
	st.LastError = c.lastError
	c.lastErrorMu.Unlock()
	return st
}

func (c *Collector) Run(ctx context.Context) error {
	t := time.NewTicker(c.pollInterval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
			c.runOnce(ctx)
		case <-c.triggerCh:
			c.runOnce(ctx)
		}
	}
}

func (c *Collector) runOnce(ctx context.Context) {
	now := time.Now()
	c.lastCycleUnixNano.Store(now.UTC().UnixNano())
	c.totalCycles.Add(1)

	raw, err := c.fetchAll(ctx)
	if err != nil {
		c.fail(err)
		return
	}
	c.totalFetched.Add(int64(len(raw)))

	// "Память": грузы, которые были активны в прошлый прогон, но
	// пропали из API, считаем выданными.
	lastActive, _, err := c.repo.LastActiveState(ctx)
	if err != nil {
		c.fail(errors.Wrap(err, "load last state"))
		return
	}

	currentIDs := make(map[string]struct{}, len(raw))
	for _, r := range raw {
		currentIDs[r.ID] = struct{}{}
	}

	var missing []models.ShipmentRecord
	for _, item := range lastActive {
		if _, ok := currentIDs[item.ID]; !ok {
			item.Status = autoArchiveStatus
			missing = append(missing, item)
		}
	}

	active := make([]models.ShipmentRecord, 0, len(raw))
	justFinished := []models.ShipmentRecord{}
	for _, r := range raw {
		if containsAnyToken(strings.ToLower(r.Status), excludeTokens) {
			justFinished = append(justFinished, r)
		} else {
			active = append(active, r)
		}
	}
	sort.SliceStable(active, func(i, j int) bool {
		return arrivalKey(active[i]) < arrivalKey(active[j])
	})

	toArchive := append(justFinished, missing...)
	archivedAt := now.Format(archivedAtLayout)
	for i := range toArchive {
		if toArchive[i].ArchivedAt == "" {
			toArchive[i].ArchivedAt = archivedAt
		}
	}

	added, err := c.repo.AppendArchive(ctx, toArchive)
	if err != nil {
		c.fail(errors.Wrap(err, "append archive"))
		return
	}
	c.totalArchived.Add(int64(added))

	if err := c.repo.SaveActiveState(ctx, active, now.UTC()); err != nil {
		c.fail(errors.Wrap(err, "save active state"))
		return
	}

	archive, err := c.repo.ListArchive(ctx)
	if err != nil {
		c.fail(errors.Wrap(err, "list archive"))
		return
	}

	createdAt := now.Format(createdAtLayout)
	if err := c.publish(ctx, messages.ReportUpdated{
		CreatedAt:    createdAt,
		ActiveCount:  len(active),
		ArchiveCount: len(archive),
		ArchivedNow:  added,
	}); err != nil {
		c.fail(err)
		return
	}

	slog.Info("collect cycle done", "active", len(active), "archived_now", added, "archive_total", len(archive))

	// Сводка водителю идёт по принципу "лучшего усилия": сбой telegram
	// не должен ронять цикл.
	if c.notifier != nil {
		snap := models.ReportSnapshot{
			Metadata: models.ReportMetadata{
				CreatedAt:    createdAt,
				ActiveCount:  len(active),
				ArchiveCount: len(archive),
			},
			Active:  active,
			Archive: archive,
		}
		if err := c.notifier.SendSummary(ctx, snap, false); err != nil {
			slog.Warn("tg summary failed", "error", err.Error())
		}
	}
}

// fetchAll опрашивает все ТК. Любой сбой отменяет цикл целиком: на
// частичных данных логика "памяти" записала бы живые грузы в архив.
func (c *Collector) fetchAll(ctx context.Context) ([]models.ShipmentRecord, error) {
	type result struct {
		recs []models.ShipmentRecord
		err  error
	}

	results := make([]result, len(c.clients))
	var wg sync.WaitGroup
	for i, cl := range c.clients {
		wg.Add(1)
		go func(i int, cl carrier.Client) {
			defer wg.Done()
			recs, err := c.fetchOne(ctx, cl)
			results[i] = result{recs: recs, err: err}
		}(i, cl)
	}
	wg.Wait()

	var all []models.ShipmentRecord
	for i, res := range results {
		if res.err != nil {
			return nil, errors.Wrapf(res.err, "fetch %s", c.clients[i].Name())
		}
		all = append(all, res.recs...)
	}
	return all, nil
}

func (c *Collector) fetchOne(ctx context.Context, cl carrier.Client) ([]models.ShipmentRecord, error) {
	if c.rl != nil && c.rateLimitPerMinute > 0 {
		for {
			minuteKey := fmt.Sprintf("rl:carrier:%s:%s", cl.Name(), time.Now().UTC().Format("200601021504"))
			allowed, n, err := c.rl.Allow(ctx, minuteKey, c.rateLimitPerMinute, 70*time.Second)
			if err != nil {
				return nil, err
			}
			if allowed {
				break
			}
			// Лимит минуты выбран: пережидаем, пока окно не сменится.
			slog.Warn("rate limit exceeded", "carrier", cl.Name(), "count", n)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(500 * time.Millisecond):
			}
		}
	}
	return cl.FetchOrders(ctx)
}

func (c *Collector) publish(ctx context.Context, msg messages.ReportUpdated) error {
	b, err := json.Marshal(msg)
	if err != nil {
		return errors.Wrap(err, "marshal kafka msg")
	}

	// Kafka может быть не готова сразу после старта docker compose.
	var pubErr error
	for i := 0; i < 10; i++ {
		if err := c.producer.Publish(ctx, c.topic, []byte("report"), b); err == nil {
			return nil
		} else {
			pubErr = err
			time.Sleep(time.Duration(150*(i+1)) * time.Millisecond)
		}
	}
	return pubErr
}

func (c *Collector) fail(err error) {
	c.totalErrors.Add(1)
	c.lastErrorMu.Lock()
	c.lastError = err.Error()
	c.lastErrorMu.Unlock()
	slog.Error("collect cycle failed", "error", err.Error())
}

func arrivalKey(r models.ShipmentRecord) string {
	if r.Arrival == "" {
		return "9999"
	}
	return r.Arrival
}

func containsAnyToken(s string, tokens []string) bool {
	for _, t := range tokens {
		if strings.Contains(s, t) {
			return true
		}
	}
	return false
}
