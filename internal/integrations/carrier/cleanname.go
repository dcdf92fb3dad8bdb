package carrier

import (
	"regexp"
	"strings"
)

const unknownName = "???"

var parensRe = regexp.MustCompile(`\(.*?\)`)

// Сокращения городов для компактного маршрута в таблице.
var cityMap = map[string]string{
	"астрахань":       "АСТРА",
	"санкт-петербург": "СПБ",
	"новосибирск":     "НСК",
	"екатеринбург":    "ЕКБ",
	"нижний новгород": "Н.НОВ",
	"краснодар":       "КРД",
	"ростов-на-дону":  "РНД",
	"домодедово":      "ДМД",
	"одинцово":        "ОДИН",
	"пермь":           "ПРМ",
	"казань":          "КЗН",
	"челябинск":       "ЧЛБ",
	"красноярск":      "КРЯ",
	"москва":          "МСК",
	"владивосток":     "ВЛД",
}

var cityTrash = []string{"г. ", "город ", "пгт. ", "поселок ", "область", "обл.", " край", " р-н", " мо", " г "}

var cityShort = [][2]string{
	{"восток", "ВСТ"},
	{"запад", "ЗПД"},
	{"север", "СЕВ"},
	{"юг", "ЮГ"},
	{"терминал", "ТЕРМ"},
	{"склад", "СКЛ"},
	{"центральный", "ЦЕНТР"},
}

var legalForms = [][2]string{
	{"общество с ограниченной ответственностью", "ООО"},
	{"индивидуальный предприниматель", "ИП"},
	{"акционерное общество", "АО"},
}

// CleanName приводит название контрагента к короткой форме в верхнем
// регистре: убирает скобки и кавычки, сворачивает правовые формы.
func CleanName(text string) string {
	return clean(text, false)
}

// CleanCity то же для городов и терминалов: срезает "г.", "область" и
// прочий мусор, сокращает стороны света и известные города.
func CleanCity(text string) string {
	return clean(text, true)
}

func clean(text string, isCity bool) string {
	if text == "" {
		return unknownName
	}
	cleaned := strings.ToLower(parensRe.ReplaceAllString(text, ""))

	if isCity {
		for _, trash := range cityTrash {
			cleaned = strings.ReplaceAll(cleaned, trash, "")
		}
		for _, p := range cityShort {
			cleaned = strings.ReplaceAll(cleaned, p[0], p[1])
		}
		cleaned = strings.TrimSpace(cleaned)
		for full, short := range cityMap {
			cleaned = strings.ReplaceAll(cleaned, full, short)
		}
	} else {
		for _, p := range legalForms {
			cleaned = strings.ReplaceAll(cleaned, p[0], p[1])
		}
	}

	cleaned = strings.NewReplacer(`"`, "", "«", "", "»", "").Replace(cleaned)
	return strings.ToUpper(strings.Join(strings.Fields(cleaned), " "))
}
