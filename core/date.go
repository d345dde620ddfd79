package core

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/pkg/errors"
)

// DateLayout is the calendar date format used at every gateway boundary.
const DateLayout = "2006-01-02"

var (
	NowFunc = time.Now // mockable

	errInvalidDate = errors.New("invalid date, expected YYYY-MM-DD")
)

// Date is a calendar day without time component nor time zone.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// DateOf returns the calendar day of t, read from t's own (local) calendar fields.
// It is never normalized to UTC: 23:30 on the 4th in Lima is the 4th.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// Today returns the current local calendar day.
func Today() Date {
	return DateOf(NowFunc())
}

// ParseDate parses a "YYYY-MM-DD" string.
func ParseDate(s string) (Date, error) {
	t, err := time.ParseInLocation(DateLayout, CleanString(s), time.Local)
	if err != nil {
		return Date{}, errInvalidDate
	}
	return DateOf(t), nil
}

// FormatDate formats t as "YYYY-MM-DD" using its local calendar fields.
func FormatDate(t time.Time) string {
	return DateOf(t).String()
}

func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

func (d Date) IsZero() bool { return d == Date{} }

// Time returns midnight of d in the local time zone.
func (d Date) Time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.Local)
}

// AddDays returns d shifted by n calendar days.
func (d Date) AddDays(n int) Date {
	return DateOf(d.Time().AddDate(0, 0, n))
}

// AddMonths returns d shifted by n months, normalized like time.AddDate.
func (d Date) AddMonths(n int) Date {
	return DateOf(d.Time().AddDate(0, n, 0))
}

func (d Date) Before(o Date) bool { return d.Time().Before(o.Time()) }
func (d Date) After(o Date) bool  { return d.Time().After(o.Time()) }

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return errInvalidDate
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Value sends the date to SQL drivers as "YYYY-MM-DD".
func (d Date) Value() (driver.Value, error) {
	return d.String(), nil
}

// Scan reads "YYYY-MM-DD" strings or time.Time values.
func (d *Date) Scan(src interface{}) error {
	switch v := src.(type) {
	case time.Time:
		// drivers return DATE columns as UTC midnight, keep the calendar fields
		*d = Date{Year: v.Year(), Month: v.Month(), Day: v.Day()}
		return nil
	case string:
		parsed, err := ParseDate(v)
		if err != nil {
			return err
		}
		*d = parsed
		return nil
	case []byte:
		return d.Scan(string(v))
	default:
		return errors.Errorf("core.Date: cannot scan %T", src)
	}
}
