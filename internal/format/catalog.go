package format

import (
	"fmt"

	"golang.org/x/text/language"
	"golang.org/x/text/message/catalog"
)

// Message keys. English text doubles as the key, so locales without a
// translation fall back to English.
const (
	msgNoTransactions  = "No transactions"
	msgUnknownCategory = "Unknown category"
	msgDayOfMonth      = "%s of %s"
	msgFromFirstDay    = "01 to %s"
	msgMonthYear       = "%s, %s"
)

var portugueseMessages = map[string]string{
	msgNoTransactions:  "Não há transações",
	msgUnknownCategory: "Categoria desconhecida",
	msgDayOfMonth:      "%s de %s",
	msgFromFirstDay:    "01 a %s",
	msgMonthYear:       "%s, %s",

	"January":   "janeiro",
	"February":  "fevereiro",
	"March":     "março",
	"April":     "abril",
	"May":       "maio",
	"June":      "junho",
	"July":      "julho",
	"August":    "agosto",
	"September": "setembro",
	"October":   "outubro",
	"November":  "novembro",
	"December":  "dezembro",
}

func newCatalog() (*catalog.Builder, error) {
	b := catalog.NewBuilder(catalog.Fallback(language.English))
	for _, tag := range []language.Tag{language.Portuguese, language.BrazilianPortuguese} {
		for key, msg := range portugueseMessages {
			if err := b.SetString(tag, key, msg); err != nil {
				return nil, fmt.Errorf("catalog %s %q: %w", tag, key, err)
			}
		}
	}
	return b, nil
}
