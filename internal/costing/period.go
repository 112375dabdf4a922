package costing

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Period is a reporting window ending today.
type Period string

const (
	PeriodWeek      Period = "semana"
	PeriodFortnight Period = "quincena"
	PeriodMonth     Period = "mes"
	PeriodQuarter   Period = "trimestre"
)

// ErrUnknownPeriod is returned by ParsePeriod for unsupported names.
var ErrUnknownPeriod = errors.New("unknown period")

// Periods lists the supported windows, shortest first.
var Periods = []Period{PeriodWeek, PeriodFortnight, PeriodMonth, PeriodQuarter}

// ParsePeriod accepts Spanish or English names; empty means a week.
func ParsePeriod(value string) (Period, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "semana", "week":
		return PeriodWeek, nil
	case "quincena", "fortnight", "15d":
		return PeriodFortnight, nil
	case "mes", "month":
		return PeriodMonth, nil
	case "trimestre", "quarter", "3m":
		return PeriodQuarter, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownPeriod, value)
	}
}

// Title is the human label used in messages and exports.
func (p Period) Title() string {
	switch p {
	case PeriodFortnight:
		return "Últimos 15 días"
	case PeriodMonth:
		return "Último mes"
	case PeriodQuarter:
		return "Últimos 3 meses"
	default:
		return "Última semana"
	}
}

// Window returns the first and last calendar day covered by p, both inclusive.
// A week spans 7 days and a fortnight 15, today included.
func Window(p Period, now time.Time) (time.Time, time.Time) {
	to := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	switch p {
	case PeriodFortnight:
		return to.AddDate(0, 0, -14), to
	case PeriodMonth:
		return to.AddDate(0, -1, 1), to
	case PeriodQuarter:
		return to.AddDate(0, -3, 1), to
	default:
		return CurrentWeek(now)
	}
}

// CurrentWeek returns the seven calendar days ending today, which is the
// window of the weekly production table.
func CurrentWeek(now time.Time) (time.Time, time.Time) {
	to := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return to.AddDate(0, 0, -6), to
}
