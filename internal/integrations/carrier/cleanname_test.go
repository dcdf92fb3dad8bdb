package carrier

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCleanName(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{`Общество с ограниченной ответственностью "Ромашка"`, "ООО РОМАШКА"},
		{"Индивидуальный предприниматель Иванов И.И. (основной)", "ИП ИВАНОВ И.И."},
		{`АО «Вектор»`, "АО ВЕКТОР"},
		{"", "???"},
	}
	for _, c := range cases {
		require.Equal(t, c.want, CleanName(c.in), c.in)
	}
}

func TestCleanCity(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"г. Москва", "МСК"},
		{"Санкт-Петербург (Парнас)", "СПБ"},
		{"Екатеринбург Восток", "ЕКБ ВСТ"},
		{"город Астрахань", "АСТРА"},
		{"Новосибирск терминал", "НСК ТЕРМ"},
		{"", "???"},
	}
	for _, c := range cases {
		require.Equal(t, c.want, CleanCity(c.in), c.in)
	}
}
