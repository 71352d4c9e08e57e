// Package format turns raw transactions and totals into localized display
// strings.
package format

import (
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"gofinances/internal/category"
	"gofinances/internal/core"
)

// DefaultLocale and DefaultCurrencySymbol match the original mobile client.
const (
	DefaultLocale         = "pt-BR"
	DefaultCurrencySymbol = "R$"
)

// Formatter renders amounts, dates and categories for one locale. It holds
// no mutable state and is safe for concurrent use.
type Formatter struct {
	tag        language.Tag
	printer    *message.Printer
	decimalSep string
	groupSep   string
	symbol     string
	registry   *category.Registry
	loc        *time.Location
}

// New builds a formatter for the given BCP 47 locale tag. Dates are rendered
// in loc; a nil loc means UTC.
func New(locale, currencySymbol string, registry *category.Registry, loc *time.Location) (*Formatter, error) {
	tag, err := language.Parse(locale)
	if err != nil {
		return nil, fmt.Errorf("parse locale %q: %w", locale, err)
	}
	if registry == nil {
		registry = category.Default()
	}
	if loc == nil {
		loc = time.UTC
	}
	cat, err := newCatalog()
	if err != nil {
		return nil, err
	}
	printer := message.NewPrinter(tag, message.Catalog(cat))
	decimalSep, groupSep := separators(printer)
	return &Formatter{
		tag:        tag,
		printer:    printer,
		decimalSep: decimalSep,
		groupSep:   groupSep,
		symbol:     strings.TrimSpace(currencySymbol),
		registry:   registry,
		loc:        loc,
	}, nil
}

func (f *Formatter) Locale() language.Tag { return f.tag }

func (f *Formatter) Location() *time.Location { return f.loc }

func (f *Formatter) Registry() *category.Registry { return f.registry }

// Currency renders d with the currency symbol and exactly two fraction
// digits, e.g. "R$ 1.200,50". Negative amounts put the sign before the
// symbol.
func (f *Formatter) Currency(d decimal.Decimal) string {
	d = d.Round(2)
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Neg()
	}
	n := f.number(d)
	if f.symbol == "" {
		return sign + n
	}
	return sign + f.symbol + " " + n
}

// number renders a non-negative d with two fraction digits. Only the integer
// part goes through the printer, so no digit is lost to float conversion.
func (f *Formatter) number(d decimal.Decimal) string {
	fixed := d.StringFixed(2)
	intDigits, frac, _ := strings.Cut(fixed, ".")

	var intPart string
	if i := d.Truncate(0).BigInt(); i.IsInt64() {
		intPart = f.printer.Sprintf("%v", number.Decimal(i.Int64()))
	} else {
		intPart = groupDigits(intDigits, f.groupSep)
	}
	return intPart + f.decimalSep + frac
}

func groupDigits(digits, sep string) string {
	if len(digits) <= 3 {
		return digits
	}
	var b strings.Builder
	head := len(digits) % 3
	if head > 0 {
		b.WriteString(digits[:head])
	}
	for i := head; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteString(sep)
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}

// separators asks the printer for the locale's decimal and grouping marks.
func separators(p *message.Printer) (decimalSep, groupSep string) {
	decimalSep = nonDigits(p.Sprintf("%v", number.Decimal(1.5, number.Scale(1))))
	marks := nonDigits(p.Sprintf("%v", number.Decimal(1000000)))
	return decimalSep, marks[:len(marks)/2]
}

func nonDigits(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) {
			return -1
		}
		return r
	}, s)
}

// ShortDate renders t as dd/mm/yy.
func (f *Formatter) ShortDate(t time.Time) string {
	return t.In(f.loc).Format("02/01/06")
}

// MonthName returns the localized name of m.
func (f *Formatter) MonthName(m time.Month) string {
	return f.printer.Sprintf(m.String())
}

// DayOfMonth renders t as "13 de abril".
func (f *Formatter) DayOfMonth(t time.Time) string {
	lt := t.In(f.loc)
	return f.printer.Sprintf(msgDayOfMonth, strconv.Itoa(lt.Day()), f.MonthName(lt.Month()))
}

// MonthToDate renders the span from the first of the month to t, as in
// "01 a 13 de abril".
func (f *Formatter) MonthToDate(t time.Time) string {
	return f.printer.Sprintf(msgFromFirstDay, f.DayOfMonth(t))
}

// MonthYear renders the period header, as in "abril, 2024".
func (f *Formatter) MonthYear(p core.Period) string {
	return f.printer.Sprintf(msgMonthYear, f.MonthName(p.Month), strconv.Itoa(p.Year))
}

// NoTransactions is the sentinel shown instead of a last-transaction date.
func (f *Formatter) NoTransactions() string {
	return f.printer.Sprintf(msgNoTransactions)
}

// Category resolves key through the registry. Unknown keys resolve to the
// translated category.Unknown entry.
func (f *Formatter) Category(key string) core.CategoryView {
	c := f.registry.Resolve(key)
	name := c.Name
	if c.Key == category.UnknownKey {
		name = f.printer.Sprintf(msgUnknownCategory)
	}
	return core.CategoryView{Key: c.Key, Name: name, Icon: c.Icon, Color: c.Color}
}

// Transaction converts a stored transaction to its display row.
func (f *Formatter) Transaction(tx core.Transaction) core.TransactionView {
	return core.TransactionView{
		ID:       tx.ID,
		Name:     tx.Name,
		Type:     tx.Type,
		Amount:   f.Currency(tx.Amount),
		Date:     f.ShortDate(tx.Date),
		Category: f.Category(tx.Category),
	}
}
