package notifier

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/pkg/errors"

	"github.com/RobertKano/logisticapis/internal/cache"
	"github.com/RobertKano/logisticapis/internal/models"
	"github.com/RobertKano/logisticapis/internal/report"
)

const hashKey = "notifier:last_hash"

// Маркеры того, что груз реально можно забирать.
var readyTokens = []string{"прибыл", "готов", "выдаче", "терминал", "хранение", "складе"}

type tgSender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Notifier шлёт водителю сводку по грузам, готовым к выдаче. Чтобы не
// спамить каждый прогон коллектора, состав сводки хешируется и
// повторная отправка идёт только при изменении.
type Notifier struct {
	api        tgSender
	chatIDs    []int64
	ownSenders []string
	homeMark   string
	hashes     cache.BytesCache
	log        *slog.Logger
}

func New(token string, chatIDs []int64, ownSenders []string, homeMark string, hashes cache.BytesCache, log *slog.Logger) (*Notifier, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, errors.Wrap(err, "telegram bot init")
	}
	return newWithSender(api, chatIDs, ownSenders, homeMark, hashes, log), nil
}

func newWithSender(api tgSender, chatIDs []int64, ownSenders []string, homeMark string, hashes cache.BytesCache, log *slog.Logger) *Notifier {
	upper := make([]string, 0, len(ownSenders))
	for _, s := range ownSenders {
		upper = append(upper, strings.ToUpper(s))
	}
	return &Notifier{
		api:        api,
		chatIDs:    chatIDs,
		ownSenders: upper,
		homeMark:   strings.ToUpper(homeMark),
		hashes:     hashes,
		log:        log,
	}
}

// SendSummary собирает сводку по активным грузам и рассылает по чатам.
// При force хеш игнорируется.
func (n *Notifier) SendSummary(ctx context.Context, snap models.ReportSnapshot, force bool) error {
	tkOrder, grouped, readyCount := n.groupReady(snap.Active)
	msg := n.buildMessage(snap, tkOrder, grouped, readyCount)

	hash := contentHash(grouped)
	if !force {
		prev, ok, err := n.hashes.Get(ctx, hashKey)
		if err != nil {
			n.log.Warn("notifier hash read failed", "err", err)
		}
		if ok && string(prev) == hash {
			n.log.Info("notifier skip, content unchanged")
			return nil
		}
	}

	sentAny := false
	for _, chatID := range n.chatIDs {
		m := tgbotapi.NewMessage(chatID, msg)
		m.ParseMode = tgbotapi.ModeMarkdown
		if _, err := n.api.Send(m); err != nil {
			n.log.Warn("notifier send failed", "chat_id", chatID, "err", err)
			continue
		}
		sentAny = true
	}
	if !sentAny {
		return errors.New("notifier: no chat accepted the message")
	}

	// Хеш запоминаем только после успешной доставки хотя бы в один чат,
	// иначе при сбое сводка потеряется насовсем.
	if err := n.hashes.Set(ctx, hashKey, []byte(hash), 0); err != nil {
		n.log.Warn("notifier hash write failed", "err", err)
	}
	return nil
}

func (n *Notifier) groupReady(active []models.ShipmentRecord) ([]string, map[string][]models.ShipmentRecord, int) {
	grouped := map[string][]models.ShipmentRecord{}
	tkOrder := []string{}
	readyCount := 0

	for _, item := range active {
		status := strings.ToLower(item.Status)
		sender := strings.ToUpper(item.Sender)
		route := strings.ToUpper(item.Route)

		// Собственные отправления водителю не нужны.
		if n.isOwnSender(sender) {
			continue
		}
		// Груз должен ехать к нам, смотрим хвост маршрута.
		if !n.routeEndsHome(route) {
			continue
		}
		if !containsAnyToken(status, readyTokens) {
			continue
		}

		if _, seen := grouped[item.TK]; !seen {
			tkOrder = append(tkOrder, item.TK)
		}
		grouped[item.TK] = append(grouped[item.TK], item)
		readyCount++
	}
	return tkOrder, grouped, readyCount
}

func (n *Notifier) isOwnSender(sender string) bool {
	for _, own := range n.ownSenders {
		if own != "" && strings.Contains(sender, own) {
			return true
		}
	}
	return false
}

func (n *Notifier) routeEndsHome(route string) bool {
	if n.homeMark == "" {
		return true
	}
	tail := route
	if parts := strings.Split(route, "->"); len(parts) > 1 {
		tail = parts[len(parts)-1]
	} else if parts := strings.Split(route, "➡️"); len(parts) > 1 {
		tail = parts[len(parts)-1]
	}
	return strings.Contains(tail, n.homeMark)
}

func (n *Notifier) buildMessage(snap models.ReportSnapshot, tkOrder []string, grouped map[string][]models.ShipmentRecord, readyCount int) string {
	if len(grouped) == 0 {
		return "🚚 **Сводка ТК:** Грузов, готовых к выдаче, на данный момент нет."
	}

	var b strings.Builder
	fmt.Fprintf(&b, "✅ **Грузы ГОТОВЫ к забору** (%s):\n\n", snap.Metadata.CreatedAt)

	for _, tk := range tkOrder {
		fmt.Fprintf(&b, "📦 **%s**:\n", tk)
		for _, item := range grouped[tk] {
			route := strings.ReplaceAll(item.Route, "->", "➡️")
			paid := report.PaymentPaid(item.Payment)
			payIcon, payInfo := "⚠️", strings.ToUpper(item.Payment)
			if paid {
				payIcon, payInfo = "✅", "Оплачено"
			}
			fmt.Fprintf(&b, "  ├ **№%s**\n", item.ID)
			fmt.Fprintf(&b, "  ├ 🚛 _%s_\n", item.Sender)
			fmt.Fprintf(&b, "  ├ 📍 _%s_\n", route)
			fmt.Fprintf(&b, "  ├ ⚖️ _%s_\n", item.Params)
			fmt.Fprintf(&b, "  ├ %s *%s*\n", payIcon, payInfo)
			fmt.Fprintf(&b, "  └ 🏷 Статус: *%s*\n", item.Status)
		}
		b.WriteString("\n")
	}

	b.WriteString("---")
	fmt.Fprintf(&b, "\n_Всего к выдаче: **%d** шт._", readyCount)
	return b.String()
}

// В хеш идёт только значимое: номер и оплата. Смена формулировки
// статуса сама по себе не повод будить водителя.
func contentHash(grouped map[string][]models.ShipmentRecord) string {
	keys := make([]string, 0, len(grouped))
	for tk := range grouped {
		keys = append(keys, tk)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, tk := range keys {
		for _, item := range grouped[tk] {
			b.WriteString(item.ID)
			b.WriteString(item.Payment)
		}
	}
	sum := md5.Sum([]byte(b.String()))
	return hex.EncodeToString(sum[:])
}

func containsAnyToken(s string, tokens []string) bool {
	for _, t := range tokens {
		if strings.Contains(s, t) {
			return true
		}
	}
	return false
}
