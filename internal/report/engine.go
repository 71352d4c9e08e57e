// Package report computes dashboard and resume figures from a transaction
// log. Every call is a pure function of its inputs; nothing is cached.
package report

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"gofinances/internal/core"
	"gofinances/internal/format"
)

var thousand = decimal.NewFromInt(1000)

// Engine aggregates transactions using the formatter's registry, locale and
// location.
type Engine struct {
	fmt *format.Formatter
}

func NewEngine(f *format.Formatter) *Engine {
	return &Engine{fmt: f}
}

type partition struct {
	sum   decimal.Decimal
	last  time.Time
	count int
}

func (p *partition) add(tx core.Transaction) {
	p.sum = p.sum.Add(tx.Amount)
	if p.count == 0 || tx.Date.After(p.last) {
		p.last = tx.Date
	}
	p.count++
}

// Summary computes the entries, exits and net total cards.
func (e *Engine) Summary(txs []core.Transaction) core.Summary {
	var entries, exits, all partition
	for _, tx := range txs {
		switch tx.Type {
		case core.Entry:
			entries.add(tx)
		case core.Exit:
			exits.add(tx)
		default:
			continue
		}
		all.add(tx)
	}

	total := entries.sum.Sub(exits.sum)
	s := core.Summary{
		Entries: e.card(entries.sum, entries),
		Exits:   e.card(exits.sum, exits),
		Total:   e.card(total, all),
	}
	if all.count > 0 {
		s.Total.LastTransaction = e.fmt.MonthToDate(all.last)
	}
	return s
}

func (e *Engine) card(amount decimal.Decimal, p partition) core.HighlightCard {
	c := core.HighlightCard{
		Amount:          amount,
		AmountFormatted: e.fmt.Currency(amount),
		HasTransactions: p.count > 0,
	}
	if p.count == 0 {
		c.LastTransaction = e.fmt.NoTransactions()
	} else {
		c.LastTransaction = e.fmt.DayOfMonth(p.last)
	}
	return c
}

// Breakdown sums exits of period per registry category. Categories without
// exits are omitted and the result follows registry order. Exits with a key
// missing from the registry are left out of the total as well.
func (e *Engine) Breakdown(txs []core.Transaction, period core.Period) []core.CategoryTotal {
	registry := e.fmt.Registry()
	loc := e.fmt.Location()

	sums := make(map[string]decimal.Decimal, registry.Len())
	total := decimal.Zero
	for _, tx := range txs {
		if tx.Type != core.Exit || !period.Contains(tx.Date, loc) {
			continue
		}
		if !registry.Contains(tx.Category) {
			continue
		}
		sums[tx.Category] = sums[tx.Category].Add(tx.Amount)
		total = total.Add(tx.Amount)
	}

	out := []core.CategoryTotal{}
	if total.IsZero() {
		return out
	}
	var parts []decimal.Decimal
	for _, c := range registry.All() {
		sum, ok := sums[c.Key]
		if !ok || !sum.IsPositive() {
			continue
		}
		parts = append(parts, sum)
		out = append(out, core.CategoryTotal{
			Key:            c.Key,
			Name:           c.Name,
			Icon:           c.Icon,
			Color:          c.Color,
			Total:          sum,
			TotalFormatted: e.fmt.Currency(sum),
		})
	}
	for i, share := range Shares(parts, total) {
		out[i].Percent = share
	}
	return out
}

// Shares renders each part's percentage of total with one decimal place.
// Tenths are apportioned by largest remainder, so when parts add up to total
// the shares add up to exactly 100.0%. Ties go to the earlier part.
func Shares(parts []decimal.Decimal, total decimal.Decimal) []string {
	out := make([]string, len(parts))
	if total.IsZero() {
		for i := range out {
			out[i] = "0.0%"
		}
		return out
	}

	tenths := make([]int64, len(parts))
	remainders := make([]decimal.Decimal, len(parts))
	var assigned int64
	for i, p := range parts {
		exact := p.Mul(thousand).Div(total)
		floor := exact.Floor()
		tenths[i] = floor.IntPart()
		remainders[i] = exact.Sub(floor)
		assigned += tenths[i]
	}

	order := make([]int, len(parts))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return remainders[order[a]].GreaterThan(remainders[order[b]])
	})
	for k := 0; assigned < 1000 && k < len(order); k++ {
		tenths[order[k]]++
		assigned++
	}

	for i, t := range tenths {
		out[i] = decimal.New(t, -1).StringFixed(1) + "%"
	}
	return out
}

// Transactions formats the log for display, newest first. Transactions on
// the same instant keep their log order.
func (e *Engine) Transactions(txs []core.Transaction) []core.TransactionView {
	sorted := append([]core.Transaction(nil), txs...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.After(sorted[j].Date)
	})
	out := make([]core.TransactionView, 0, len(sorted))
	for _, tx := range sorted {
		out = append(out, e.fmt.Transaction(tx))
	}
	return out
}
