package model

import (
	"fmt"
	"strings"
	"time"
)

// DateFormat is the layout used for every date the books write.
const DateFormat = "2006-01-02"

var dateLayouts = []string{
	DateFormat,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05Z07:00",
	"2006/01/02",
	"2/1/2006",
}

// ParseDate accepts the ISO layout plus the variants spreadsheet exports
// produce, truncated to the day.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return Day(t), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised date %q", s)
}
