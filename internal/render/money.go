package render

import (
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

// money formats amounts in one currency. PDF core fonts cannot draw most
// currency symbols, so documents use ISO codes and emails use symbols.
type money struct {
	symbol string
	scale  int32
}

func newMoney(code string, kind currency.Formatter) money {
	unit, err := currency.ParseISO(code)
	if err != nil {
		return money{symbol: code, scale: 2}
	}

	scale, _ := currency.Standard.Rounding(unit)

	return money{symbol: printer.Sprint(kind(unit)), scale: int32(scale)}
}

// format renders d exactly, rounded half away from zero to the currency's
// minor unit and grouped in thousands.
func (m money) format(d decimal.Decimal) string {
	return m.symbol + " " + group(d.StringFixed(m.scale))
}

func group(s string) string {
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}

	whole, frac, hasFrac := strings.Cut(s, ".")

	var sb strings.Builder
	sb.WriteString(sign)

	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			sb.WriteByte(',')
		}

		sb.WriteRune(r)
	}

	if hasFrac {
		sb.WriteByte('.')
		sb.WriteString(frac)
	}

	return sb.String()
}
