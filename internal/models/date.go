package models

import (
	"bytes"
	"encoding/json"
	"time"

	"watts-backend/internal/timeutil"
)

// Date is a request-side timestamp that also accepts plain "2006-01-02"
// values as sent by date pickers.
type Date struct {
	time.Time
}

func NewDate(t time.Time) *Date { return &Date{Time: t} }

func (d *Date) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	t, err := timeutil.ParseDate(s)
	if err != nil {
		return err
	}
	d.Time = t
	return nil
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.Time)
}

// dateOrZero unwraps an optional request date.
func dateOrZero(d *Date) time.Time {
	if d == nil {
		return time.Time{}
	}
	return d.Time
}
