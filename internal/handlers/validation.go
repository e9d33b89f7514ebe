package handlers

import (
	"errors"
	"time"

	"egabank/internal/money"
)

const (
	timeLayout = time.RFC3339
	dateLayout = "2006-01-02"
)

var (
	errInvalidAmount = errors.New("invalid amount")
	errInvalidDate   = errors.New("invalid date, expected yyyy-mm-dd")
	errReversedRange = errors.New("from must not be after to")
)

func parseAmountMinor(raw string) (int64, error) {
	amount, err := money.ParseMinor(raw)
	if err != nil || amount <= 0 {
		return 0, errInvalidAmount
	}
	return amount, nil
}

// parseDateRange turns yyyy-mm-dd bounds into an inclusive UTC window;
// the `to` day runs through its last nanosecond.
func parseDateRange(fromRaw, toRaw string) (time.Time, time.Time, error) {
	from, err := time.ParseInLocation(dateLayout, fromRaw, time.UTC)
	if err != nil {
		return time.Time{}, time.Time{}, errInvalidDate
	}
	to, err := time.ParseInLocation(dateLayout, toRaw, time.UTC)
	if err != nil {
		return time.Time{}, time.Time{}, errInvalidDate
	}
	if to.Before(from) {
		return time.Time{}, time.Time{}, errReversedRange
	}
	to = to.Add(24*time.Hour - time.Nanosecond)
	return from, to, nil
}
