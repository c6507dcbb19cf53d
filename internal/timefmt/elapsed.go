// Package timefmt renders stored timestamps as human-readable ages
// for the dashboard ("1 Hour, 45 Minutes ago").
package timefmt

import (
	"fmt"
	"strings"
	"time"

	"github.com/arcadecheck/arcadecheck/internal/domain"
)

var intervals = []struct {
	name string
	secs int
}{
	{"Years", 31536000},
	{"Months", 2592000},
	{"Weeks", 604800},
	{"Days", 86400},
	{"Hours", 3600},
	{"Minutes", 60},
	{"Seconds", 1},
}

// ElapsedSince renders the age of a timestamp in domain.TimestampLayout.
// Unparseable input is returned unchanged.
func ElapsedSince(ts, suffix string) string {
	then, err := time.ParseInLocation(domain.TimestampLayout, ts, time.Local)
	if err != nil {
		return ts
	}
	return render(parts(int(time.Since(then).Seconds())), suffix)
}

// ElapsedSinceDate renders the age of a date in domain.DateLayout, with
// Today and Yesterday shortcuts. Unparseable input is returned unchanged.
func ElapsedSinceDate(date, suffix string) string {
	then, err := time.ParseInLocation(domain.DateLayout, date, time.Local)
	if err != nil {
		return date
	}

	now := time.Now()
	if sameDay(then, now) {
		return render([]string{"Today"}, suffix)
	}
	if sameDay(then, now.AddDate(0, 0, -1)) {
		return render([]string{"Yesterday"}, suffix)
	}
	return render(parts(int(now.Sub(then).Seconds())), suffix)
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// parts splits a duration in seconds into at most two bucket strings,
// largest bucket first. Values of 1 lose the plural s.
func parts(seconds int) []string {
	if seconds < 0 {
		seconds = 0
	}
	var out []string
	for _, iv := range intervals {
		v := seconds / iv.secs
		if v == 0 {
			continue
		}
		seconds -= v * iv.secs
		name := iv.name
		if v == 1 {
			name = strings.TrimSuffix(name, "s")
		}
		out = append(out, fmt.Sprintf("%d %s", v, name))
		if len(out) == 2 {
			break
		}
	}
	if len(out) == 0 {
		out = []string{"0 Seconds"}
	}
	return out
}

func render(ps []string, suffix string) string {
	s := strings.Join(ps, ", ")
	if suffix != "" {
		s += " " + suffix
	}
	return s
}
