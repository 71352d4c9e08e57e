package core

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Period is a calendar month selected for the report view.
type Period struct {
	Year  int
	Month time.Month
}

// HighlightCard is one of the three dashboard totals.
type HighlightCard struct {
	Amount          decimal.Decimal `json:"amount"`
	AmountFormatted string          `json:"amount_formatted"`
	LastTransaction string          `json:"last_transaction"`
	HasTransactions bool            `json:"has_transactions"`
}

// Summary groups the entries, exits and net total cards.
type Summary struct {
	Entries HighlightCard `json:"entries"`
	Exits   HighlightCard `json:"exits"`
	Total   HighlightCard `json:"total"`
}

// CategoryTotal is the exit sum of one category within a period.
type CategoryTotal struct {
	Key            string          `json:"key"`
	Name           string          `json:"name"`
	Icon           string          `json:"icon"`
	Color          string          `json:"color"`
	Total          decimal.Decimal `json:"total"`
	TotalFormatted string          `json:"total_formatted"`
	Percent        string          `json:"percent"`
}

// CategoryView is the display form of a resolved category.
type CategoryView struct {
	Key   string `json:"key"`
	Name  string `json:"name"`
	Icon  string `json:"icon"`
	Color string `json:"color"`
}

// TransactionView is a display-ready transaction row.
type TransactionView struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Type     TransactionType `json:"type"`
	Amount   string          `json:"amount"`
	Date     string          `json:"date"`
	Category CategoryView    `json:"category"`
}

// NewPeriod returns the period for year and month, validating the month.
func NewPeriod(year, month int) (Period, error) {
	if month < 1 || month > 12 {
		return Period{}, fmt.Errorf("invalid month: %d", month)
	}
	if year < 1 {
		return Period{}, fmt.Errorf("invalid year: %d", year)
	}
	return Period{Year: year, Month: time.Month(month)}, nil
}

// CurrentPeriod returns the month containing now in loc.
func CurrentPeriod(now time.Time, loc *time.Location) Period {
	t := now.In(loc)
	return Period{Year: t.Year(), Month: t.Month()}
}

func (p Period) Next() Period {
	if p.Month == time.December {
		return Period{Year: p.Year + 1, Month: time.January}
	}
	return Period{Year: p.Year, Month: p.Month + 1}
}

func (p Period) Previous() Period {
	if p.Month == time.January {
		return Period{Year: p.Year - 1, Month: time.December}
	}
	return Period{Year: p.Year, Month: p.Month - 1}
}

// Contains reports whether t falls in the same calendar month and year,
// evaluated in loc.
func (p Period) Contains(t time.Time, loc *time.Location) bool {
	lt := t.In(loc)
	return lt.Year() == p.Year && lt.Month() == p.Month
}

func (p Period) String() string {
	return fmt.Sprintf("%04d-%02d", p.Year, int(p.Month))
}
