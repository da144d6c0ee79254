package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/datatypes"
)

// DateLayout is the wire and display format of Date.
const DateLayout = "2006-01-02"

// Date is a calendar day without time of day or zone. It is encoded as
// "2006-01-02" in JSON; RFC 3339 timestamps are accepted on input and
// truncated to their day.
type Date struct {
	time.Time
}

// NewDate returns the day of t, at midnight UTC.
func NewDate(t time.Time) Date {
	y, m, d := t.Date()
	return Date{time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

// ParseDateString parses "2006-01-02" or an RFC 3339 timestamp.
func ParseDateString(s string) (Date, error) {
	if t, err := time.Parse(DateLayout, s); err == nil {
		return Date{t}, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", s)
	}
	return NewDate(t), nil
}

func (d Date) String() string {
	return d.Format(DateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.Format(DateLayout))
}

func (d *Date) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("date must be a string: %w", err)
	}
	parsed, err := ParseDateString(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Value stores the day as a SQL date.
func (d Date) Value() (driver.Value, error) {
	return datatypes.Date(NewDate(d.Time).Time).Value()
}

func (d *Date) Scan(v interface{}) error {
	switch v := v.(type) {
	case string:
		return d.scanString(v)
	case []byte:
		return d.scanString(string(v))
	}
	var dd datatypes.Date
	if err := dd.Scan(v); err != nil {
		return fmt.Errorf("cannot scan %T into Date: %w", v, err)
	}
	if time.Time(dd).IsZero() {
		*d = Date{}
		return nil
	}
	*d = NewDate(time.Time(dd))
	return nil
}

// scanString covers drivers that hand back date columns as text.
func (d *Date) scanString(s string) error {
	for _, layout := range []string{DateLayout, time.RFC3339Nano, "2006-01-02 15:04:05.999999999-07:00", "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			*d = NewDate(t)
			return nil
		}
	}
	return fmt.Errorf("cannot scan %q into Date", s)
}

// GormDataType maps Date to a SQL date column.
func (Date) GormDataType() string {
	return datatypes.Date{}.GormDataType()
}
