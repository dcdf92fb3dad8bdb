package report

import "strings"

// Категории статусов после нормализации.
const (
	CategoryArrived        = "arrived"
	CategoryInTransit      = "in_transit"
	CategoryOutForDelivery = "out_for_delivery"
	CategoryUnknown        = "unknown"
)

// Отображаемые статусы.
const (
	DisplayArrived   = "✅ Прибыл в ТК"
	DisplayInTransit = "🚚 В пути"
	DisplayDelivery  = "🚚 Доставка ТК ➡️ СКЛАД"
	DisplayCompleted = "Завершен"
	Placeholder      = "—"
)

// Семейства русских статусных токенов ТК. Проверка — подстрока без учёта
// регистра.
var (
	ArrivedTokens  = []string{"прибыл", "готов", "хранение"}
	TransitTokens  = []string{"пути", "транзит", "принят"}
	DeliveryTokens = []string{"оставк", "до адреса"}
)

// Токены для плиток статистики (чуть шире, чем семейства статусов).
var (
	ReadyStatTokens   = []string{"прибыл", "готов", "хранение", "склад"}
	TransitStatTokens = []string{"пути", "транзит", "принят"}
	DebtStatTokens    = []string{"к оплате", "долг"}
)

type statusRule struct {
	tokens   []string
	category string
	label    string
	arrived  bool // строка визуально считается "прибывшей"
}

// Правила проверяются сверху вниз, побеждает первое совпадение: статус,
// содержащий и "прибыл", и "транзит", классифицируется как прибывший.
var statusRules = []statusRule{
	{tokens: ArrivedTokens, category: CategoryArrived, label: DisplayArrived, arrived: true},
	{tokens: TransitTokens, category: CategoryInTransit, label: DisplayInTransit},
	{tokens: DeliveryTokens, category: CategoryOutForDelivery, label: DisplayDelivery, arrived: true},
}

// StatusClass — результат классификации статуса ТК.
type StatusClass struct {
	Label    string
	Category string
	Arrived  bool
}

// ClassifyStatus нормализует свободный текст статуса ТК. Для неизвестных
// статусов показывается исходная строка, а при её отсутствии — дефолт
// представления: "Завершен" в архиве, плейсхолдер в активе.
func ClassifyStatus(rawStatus, view string) StatusClass {
	low := strings.ToLower(rawStatus)
	for _, rule := range statusRules {
		if containsAny(low, rule.tokens) {
			return StatusClass{Label: rule.label, Category: rule.category, Arrived: rule.arrived}
		}
	}
	label := rawStatus
	if label == "" {
		if view == "archive" {
			label = DisplayCompleted
		} else {
			label = Placeholder
		}
	}
	return StatusClass{Label: label, Category: CategoryUnknown}
}

func containsAny(low string, tokens []string) bool {
	for _, tok := range tokens {
		if strings.Contains(low, tok) {
			return true
		}
	}
	return false
}

// SizeThresholds — бизнес-константы габаритов. Пороги слегка гуляли между
// ревизиями отчёта, поэтому они конфигурируемые, с дефолтами последней.
type SizeThresholds struct {
	HeavyPerUnitKg  float64
	HeavyAbsoluteKg float64
	OversizeM3      float64
}

func DefaultSizeThresholds() SizeThresholds {
	return SizeThresholds{
		HeavyPerUnitKg:  35,
		HeavyAbsoluteKg: 150,
		OversizeM3:      1.5,
	}
}

// CargoSize — флаги "тяжёлый" и "габаритный".
type CargoSize struct {
	Heavy    bool
	Oversize bool
}

// ClassifySize помечает груз тяжёлым при перегрузе на место ИЛИ по
// абсолютному весу (это два разных порога), габаритным — по объёму.
func ClassifySize(p CargoParams, t SizeThresholds) CargoSize {
	units := p.Units
	if units < 1 {
		units = 1
	}
	return CargoSize{
		Heavy:    p.Weight/float64(units) > t.HeavyPerUnitKg || p.Weight > t.HeavyAbsoluteKg,
		Oversize: p.Volume > t.OversizeM3,
	}
}
