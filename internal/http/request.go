package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"gofinances/internal/core"
)

const maxBodyBytes = 64 << 10

// amountField accepts the amount as a JSON string ("12,34") or number (12.34).
type amountField string

func (a *amountField) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*a = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*a = amountField(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("amount must be a string or a number")
	}
	*a = amountField(n.String())
	return nil
}

type createTransactionRequest struct {
	Name     string               `json:"name"`
	Amount   amountField          `json:"amount"`
	Category string               `json:"category"`
	Type     core.TransactionType `json:"type"`
}

// decodeTransactionForm reads the JSON body of a registration request.
func decodeTransactionForm(w http.ResponseWriter, r *http.Request) (core.TransactionForm, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	var req createTransactionRequest
	if err := dec.Decode(&req); err != nil {
		return core.TransactionForm{}, fmt.Errorf("decode body: %w", err)
	}
	if dec.More() {
		return core.TransactionForm{}, errors.New("decode body: trailing data")
	}
	return core.TransactionForm{
		Name:     sanitizeInput(req.Name),
		Amount:   strings.TrimSpace(string(req.Amount)),
		Category: strings.TrimSpace(req.Category),
		Type:     core.TransactionType(strings.TrimSpace(string(req.Type))),
	}, nil
}

// parsePeriod reads the year and month query parameters. Missing values
// default to the corresponding part of current.
func parsePeriod(r *http.Request, current core.Period) (core.Period, error) {
	year, month := current.Year, int(current.Month)
	if v := strings.TrimSpace(r.URL.Query().Get("year")); v != "" {
		y, err := strconv.Atoi(v)
		if err != nil {
			return core.Period{}, fmt.Errorf("invalid year: %q", v)
		}
		year = y
	}
	if v := strings.TrimSpace(r.URL.Query().Get("month")); v != "" {
		m, err := strconv.Atoi(v)
		if err != nil {
			return core.Period{}, fmt.Errorf("invalid month: %q", v)
		}
		month = m
	}
	if year > 9999 {
		return core.Period{}, fmt.Errorf("invalid year: %d", year)
	}
	p, err := core.NewPeriod(year, month)
	if err != nil {
		return core.Period{}, err
	}
	return p, nil
}

// sanitizeInput drops control characters other than tab and newlines and
// trims whitespace.
func sanitizeInput(s string) string {
	return strings.Map(func(r rune) rune {
		if r < 32 && r != '\t' && r != '\n' && r != '\r' {
			return -1
		}
		return r
	}, strings.TrimSpace(s))
}
