package model

import (
	"fmt"
	"strconv"
	"time"
)

const DATE_LAYOUT string = "2006-01-02"

// ParseDate reads a calendar date from the YYYY-MM-DD prefix of value.
func ParseDate(value string) (time.Time, error) {
	if len(value) > len(DATE_LAYOUT) {
		value = value[:len(DATE_LAYOUT)]
	}
	date, err := time.Parse(DATE_LAYOUT, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("date %q is not in %v format", value, DATE_LAYOUT)
	}
	return date, nil
}

func FormatDate(date *time.Time) string {
	if date == nil {
		return ""
	}
	return date.Format(DATE_LAYOUT)
}

// Clock is a time of day encoded as HHMM (930 is 09:30). Ordering of Clock
// values matches ordering of the times they represent.
type Clock int

// ParseClock keeps the first four decimal digits of value and reads them as HHMM.
func ParseClock(value int) (Clock, error) {
	if value < 0 {
		return 0, fmt.Errorf("time %v is negative", value)
	}
	digits := strconv.Itoa(value)
	if len(digits) > 4 {
		digits = digits[:4]
	}
	hhmm, _ := strconv.Atoi(digits)

	clock := Clock(hhmm)
	if clock.Hour() > 23 || clock.Minute() > 59 {
		return 0, fmt.Errorf("time %v is not a valid HHMM value", value)
	}
	return clock, nil
}

func (c Clock) Hour() int {
	return int(c) / 100
}

func (c Clock) Minute() int {
	return int(c) % 100
}

func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour(), c.Minute())
}
