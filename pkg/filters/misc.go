// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package filters

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"carvel.dev/liquid/pkg/template/core"
)

var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05 -0700",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	time.RFC1123Z,
	time.RFC1123,
	"January 2, 2006",
	"Jan 2, 2006",
}

type miscFilters struct {
	// Now is used for the "now" and "today" inputs of the date filter.
	Now func() time.Time
}

func (b miscFilters) register(t *Table) {
	t.Register("default", b.Default)
	t.Register("date", b.Date)
}

// Default replaces nil, false and empty values. With allow_false: true a
// false value is kept.
func (miscFilters) Default(val core.Value, args []core.Value, kwargs map[string]core.Value) (core.Value, error) {
	if err := expectArgs(args, 1, 1); err != nil {
		return nil, err
	}
	if err := checkKwargNames(kwargs, "allow_false"); err != nil {
		return nil, err
	}

	fallback := args[0]

	switch typedVal := val.(type) {
	case nil, core.NilValue, core.EmptyDrop:
		return fallback, nil
	case core.Bool:
		if !bool(typedVal) && !boolKwarg(kwargs, "allow_false", false) {
			return fallback, nil
		}
	case core.String, core.List, *core.Map:
		if size, _ := core.Len(typedVal); size == 0 {
			return fallback, nil
		}
	}
	return val, nil
}

// Date formats timestamps with a strftime pattern. Input that cannot be read
// as a time is returned unchanged.
func (b miscFilters) Date(val core.Value, args []core.Value, _ map[string]core.Value) (core.Value, error) {
	if err := expectArgs(args, 1, 1); err != nil {
		return nil, err
	}

	format := stringArg(args, 0)
	if len(format) == 0 {
		return val, nil
	}

	ts, ok := b.parseTime(val)
	if !ok {
		return val, nil
	}
	return core.String(strftime(ts, format)), nil
}

func (b miscFilters) parseTime(val core.Value) (time.Time, bool) {
	switch typedVal := val.(type) {
	case core.Int:
		return time.Unix(int64(typedVal), 0).UTC(), true
	case core.Float:
		return time.Unix(int64(typedVal), 0).UTC(), true
	case core.String:
		str := strings.TrimSpace(string(typedVal))
		switch str {
		case "":
			return time.Time{}, false
		case "now", "today":
			if b.Now != nil {
				return b.Now(), true
			}
			return time.Now(), true
		}
		if secs, err := strconv.ParseInt(str, 10, 64); err == nil {
			return time.Unix(secs, 0).UTC(), true
		}
		for _, layout := range dateLayouts {
			if ts, err := time.Parse(layout, str); err == nil {
				return ts, true
			}
		}
	}
	return time.Time{}, false
}

func strftime(ts time.Time, format string) string {
	var sb strings.Builder

	for i := 0; i < len(format); i++ {
		if format[i] != '%' || i+1 >= len(format) {
			sb.WriteByte(format[i])
			continue
		}
		i++

		switch format[i] {
		case 'Y':
			sb.WriteString(strconv.Itoa(ts.Year()))
		case 'y':
			fmt.Fprintf(&sb, "%02d", ts.Year()%100)
		case 'm':
			fmt.Fprintf(&sb, "%02d", int(ts.Month()))
		case 'd':
			fmt.Fprintf(&sb, "%02d", ts.Day())
		case 'e':
			fmt.Fprintf(&sb, "%2d", ts.Day())
		case 'j':
			fmt.Fprintf(&sb, "%03d", ts.YearDay())
		case 'H':
			fmt.Fprintf(&sb, "%02d", ts.Hour())
		case 'I':
			hour := ts.Hour() % 12
			if hour == 0 {
				hour = 12
			}
			fmt.Fprintf(&sb, "%02d", hour)
		case 'M':
			fmt.Fprintf(&sb, "%02d", ts.Minute())
		case 'S':
			fmt.Fprintf(&sb, "%02d", ts.Second())
		case 'L':
			fmt.Fprintf(&sb, "%03d", ts.Nanosecond()/int(time.Millisecond))
		case 'p':
			sb.WriteString(ts.Format("PM"))
		case 'b', 'h':
			sb.WriteString(ts.Format("Jan"))
		case 'B':
			sb.WriteString(ts.Format("January"))
		case 'a':
			sb.WriteString(ts.Format("Mon"))
		case 'A':
			sb.WriteString(ts.Format("Monday"))
		case 'Z':
			sb.WriteString(ts.Format("MST"))
		case 'z':
			sb.WriteString(ts.Format("-0700"))
		case 's':
			sb.WriteString(strconv.FormatInt(ts.Unix(), 10))
		case 'F':
			sb.WriteString(ts.Format("2006-01-02"))
		case 'T':
			sb.WriteString(ts.Format("15:04:05"))
		case 'D':
			sb.WriteString(ts.Format("01/02/06"))
		case '%':
			sb.WriteByte('%')
		default:
			sb.WriteByte('%')
			sb.WriteByte(format[i])
		}
	}

	return sb.String()
}
