package dashboard

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/RobertKano/logisticapis/internal/cache"
	"github.com/RobertKano/logisticapis/internal/models"
	"github.com/RobertKano/logisticapis/internal/report"
)

type State string

const (
	StateIdle     State = "idle"
	StateLoading  State = "loading"
	StateRendered State = "rendered"
	StateError    State = "error"
)

const sortDirKey = "dashboard:sort_dir"

type SnapshotClient interface {
	Latest(ctx context.Context) (models.ReportSnapshot, error)
}

type AdminClient interface {
	AddManual(ctx context.Context, rec models.ShipmentRecord) error
	UpdateManual(ctx context.Context, rec models.ShipmentRecord) error
	DeleteManual(ctx context.Context, id string) error
}

// Controller держит состояние панели целиком: снапшот отчёта, выбранную
// вкладку, сортировку и фильтры. Все переходы идут через его методы,
// прямых записей в поля снаружи нет.
type Controller struct {
	api       SnapshotClient
	admin     AdminClient
	durable   cache.BytesCache
	norm      *report.Normalizer
	ownEntity string

	refreshInterval time.Duration
	triggerCh       chan struct{}
	now             func() time.Time

	mu      sync.Mutex
	state   State
	snap    models.ReportSnapshot
	stats   report.Stats
	view    string
	sortDir string
	search  string
	date    string
	quick   string

	// Номера запросов: ответ старше уже применённого отбрасывается,
	// иначе перекрытие тикера и ручного обновления может откатить
	// таблицу к устаревшему снапшоту.
	nextSeq     uint64
	appliedSeq  uint64
	hasSnapshot bool
}

func New(api SnapshotClient, admin AdminClient, durable cache.BytesCache, norm *report.Normalizer, ownEntity string) *Controller {
	return &Controller{
		api:             api,
		admin:           admin,
		durable:         durable,
		norm:            norm,
		ownEntity:       ownEntity,
		refreshInterval: 60 * time.Second,
		triggerCh:       make(chan struct{}, 1),
		now:             time.Now,
		state:           StateIdle,
		view:            models.ViewActive,
		sortDir:         models.SortAsc,
		quick:           models.QuickRangeAll,
	}
}

func (c *Controller) WithRefreshInterval(d time.Duration) *Controller {
	if d > 0 {
		c.refreshInterval = d
	}
	return c
}

// LoadSortDirection восстанавливает направление сортировки прошлой
// сессии. Вызывается один раз на старте.
func (c *Controller) LoadSortDirection(ctx context.Context) {
	if c.durable == nil {
		return
	}
	b, ok, err := c.durable.Get(ctx, sortDirKey)
	if err != nil {
		slog.Warn("sort direction load failed", "error", err.Error())
		return
	}
	if !ok {
		return
	}
	if dir := string(b); dir == models.SortAsc || dir == models.SortDesc {
		c.mu.Lock()
		c.sortDir = dir
		c.mu.Unlock()
	}
}

func (c *Controller) Run(ctx context.Context) error {
	t := time.NewTicker(c.refreshInterval)
	defer t.Stop()

	c.Refresh(ctx)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
			c.Refresh(ctx)
		case <-c.triggerCh:
			c.Refresh(ctx)
		}
	}
}

// Trigger forces an immediate refresh (best-effort, non-blocking).
func (c *Controller) Trigger() {
	select {
	case c.triggerCh <- struct{}{}:
	default:
	}
}

// Refresh забирает свежий снапшот. При сбое таблица остаётся прежней,
// но счётчики обнуляются: лучше устаревшие строки, чем пустой экран.
func (c *Controller) Refresh(ctx context.Context) {
	c.mu.Lock()
	c.nextSeq++
	seq := c.nextSeq
	c.state = StateLoading
	c.mu.Unlock()

	snap, err := c.api.Latest(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()

	if seq < c.appliedSeq {
		// Пока этот запрос летел, применили более новый ответ.
		return
	}
	c.appliedSeq = seq

	if err != nil {
		slog.Warn("snapshot fetch failed", "error", err.Error())
		c.stats = report.Stats{}
		c.state = StateError
		return
	}

	c.snap = snap
	c.hasSnapshot = true
	c.stats = report.ComputeStats(snap.Active)
	c.state = StateRendered
}

func (c *Controller) SetView(view string) {
	if view != models.ViewActive && view != models.ViewArchive {
		return
	}
	c.mu.Lock()
	c.view = view
	c.mu.Unlock()
}

func (c *Controller) ToggleSort(ctx context.Context) string {
	c.mu.Lock()
	if c.sortDir == models.SortAsc {
		c.sortDir = models.SortDesc
	} else {
		c.sortDir = models.SortAsc
	}
	dir := c.sortDir
	c.mu.Unlock()

	if c.durable != nil {
		if err := c.durable.Set(ctx, sortDirKey, []byte(dir), 0); err != nil {
			slog.Warn("sort direction save failed", "error", err.Error())
		}
	}
	return dir
}

func (c *Controller) SetSearch(q string) {
	c.mu.Lock()
	c.search = q
	c.mu.Unlock()
}

// SetDateFilter ставит точный фильтр по дате и сбрасывает быстрый
// диапазон: они взаимоисключающие.
func (c *Controller) SetDateFilter(date string) {
	c.mu.Lock()
	c.date = date
	if date != "" {
		c.quick = models.QuickRangeAll
	}
	c.mu.Unlock()
}

// SetQuickRange работает как кнопка-переключатель: повторный выбор того
// же диапазона возвращает "all". Точный фильтр по дате сбрасывается.
func (c *Controller) SetQuickRange(r string) {
	if r != models.QuickRangeAll && r != models.QuickRangeWeek && r != models.QuickRangeMonth {
		return
	}
	c.mu.Lock()
	if c.quick == r {
		c.quick = models.QuickRangeAll
	} else {
		c.quick = r
	}
	c.date = ""
	c.mu.Unlock()
}

// SelectStat подставляет в поиск ключевое слово плитки статистики.
// Плитка "всего" просто очищает поиск.
func (c *Controller) SelectStat(stat string) {
	c.mu.Lock()
	c.search = report.StatKeyword(stat)
	c.mu.Unlock()
}

// ManualInput — поля формы памятки как их вводит админ.
type ManualInput struct {
	ID        string `json:"id"`
	Sender    string `json:"sender"`
	RouteFrom string `json:"route_from"`
	RouteTo   string `json:"route_to"`
	Units     string `json:"units"`
	Weight    string `json:"weight"`
	Volume    string `json:"volume"`
	Status    string `json:"status"`
	Priority  string `json:"priority"`
}

func (c *Controller) AddManual(ctx context.Context, in ManualInput) (models.ShipmentRecord, error) {
	rec := c.buildManualRecord(in)
	if rec.Arrival == "" {
		rec.Arrival = c.now().Format("2006-01-02")
	}

	if err := c.admin.AddManual(ctx, rec); err != nil {
		return models.ShipmentRecord{}, errors.Wrap(err, "add manual")
	}
	c.Trigger()
	return rec, nil
}

func (c *Controller) UpdateManual(ctx context.Context, in ManualInput) (models.ShipmentRecord, error) {
	if in.ID == "" {
		return models.ShipmentRecord{}, errors.New("id is required")
	}
	rec := c.buildManualRecord(in)

	// Дата прибытия при правке не трогается: берём её у старой записи.
	c.mu.Lock()
	for _, old := range c.snap.Active {
		if old.ID == in.ID {
			rec.Arrival = old.Arrival
			break
		}
	}
	c.mu.Unlock()
	if rec.Arrival == "" {
		rec.Arrival = c.now().Format("2006-01-02")
	}

	if err := c.admin.UpdateManual(ctx, rec); err != nil {
		return models.ShipmentRecord{}, errors.Wrap(err, "update manual")
	}
	c.Trigger()
	return rec, nil
}

// DeleteManual удаляет памятку навсегда, поэтому без явного
// подтверждения запрос не уходит.
func (c *Controller) DeleteManual(ctx context.Context, id string, confirmed bool) error {
	if id == "" {
		return errors.New("id is required")
	}
	if !confirmed {
		return errors.New("delete requires confirmation")
	}
	if err := c.admin.DeleteManual(ctx, id); err != nil {
		return errors.Wrap(err, "delete manual")
	}
	c.Trigger()
	return nil
}

func (c *Controller) buildManualRecord(in ManualInput) models.ShipmentRecord {
	id := in.ID
	if id == "" {
		ms := strconv.FormatInt(c.now().UnixMilli(), 10)
		id = "MEMO-" + ms[len(ms)-4:]
	}
	sender := in.Sender
	if sender == "" {
		sender = "ЛИЧНАЯ ЗАМЕТКА"
	}

	units := in.Units
	if units == "" {
		units = "1"
	}
	weight := decimalOrZero(in.Weight)
	volume := decimalOrZero(in.Volume)

	from := in.RouteFrom
	if from == "" {
		from = report.Placeholder
	}
	to := in.RouteTo
	if to == "" {
		to = report.Placeholder
	}

	return models.ShipmentRecord{
		ID:        id,
		TK:        report.MemoCarrierLabel,
		Sender:    sender,
		Recipient: c.ownEntity,
		Route:     strings.ToUpper(from) + " ➡️ " + strings.ToUpper(to),
		Params:    fmt.Sprintf("%sм | %sкг | %sм3", units, weight, volume),
		Status:    in.Status,
		Priority:  in.Priority,
		IsManual:  true,
	}
}

// ClipboardText собирает текст карточки груза для копирования. Запись
// ищется и в активе, и в архиве.
func (c *Controller) ClipboardText(id string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var item *models.ShipmentRecord
	for i := range c.snap.Active {
		if c.snap.Active[i].ID == id {
			item = &c.snap.Active[i]
			break
		}
	}
	if item == nil {
		for i := range c.snap.Archive {
			if c.snap.Archive[i].ID == id {
				item = &c.snap.Archive[i]
				break
			}
		}
	}
	if item == nil {
		return "", false
	}

	tk := defaultStr(item.TK, "ТК")
	route := defaultStr(item.Route, "Маршрут не указан")
	sender := defaultStr(item.Sender, "Отправитель не указан")
	params := defaultStr(item.Params, "Параметры не заданы")

	var payStatus string
	if item.IsManual {
		payStatus = "📝 СТАТУС: " + defaultStr(item.Status, report.MemoDefaultStatus)
	} else if report.PaymentPaid(item.Payment) {
		payStatus = "✅ Оплачено"
	} else {
		payStatus = "⚠️ " + strings.ToUpper(item.Payment)
	}

	return fmt.Sprintf("%s (%s)\n%s (%s)\n%s\n%s", tk, route, sender, item.ID, params, payStatus), true
}

// View — рассчитанное состояние панели для отдачи наружу.
type View struct {
	State         State                 `json:"state"`
	View          string                `json:"view"`
	SortDirection string                `json:"sort_direction"`
	Search        string                `json:"search"`
	DateFilter    string                `json:"date_filter,omitempty"`
	QuickRange    string                `json:"quick_range"`
	Metadata      models.ReportMetadata `json:"metadata"`
	Rows          []report.Row          `json:"rows"`
	Stats         report.Stats          `json:"stats"`
}

func (c *Controller) View() View {
	c.mu.Lock()
	defer c.mu.Unlock()

	recs := c.snap.Active
	if c.view == models.ViewArchive {
		recs = c.snap.Archive
	}

	rows := c.norm.Rows(recs, c.view)
	rows = report.VisibleRows(rows, c.sortDir, report.Filter{
		Search:     c.search,
		Date:       c.date,
		QuickRange: c.quick,
		Now:        c.now(),
	})

	return View{
		State:         c.state,
		View:          c.view,
		SortDirection: c.sortDir,
		Search:        c.search,
		DateFilter:    c.date,
		QuickRange:    c.quick,
		Metadata:      c.snap.Metadata,
		Rows:          rows,
		Stats:         c.stats,
	}
}

func decimalOrZero(s string) string {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", "."))
	if s == "" {
		return "0"
	}
	return s
}

func defaultStr(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
