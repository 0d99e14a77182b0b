// Package compliance derives record statuses and candidate-level compliance
// scores. Everything here is pure: callers inject "today" (via the request
// clock), so results are deterministic and never cached across requests.
package compliance

import (
	"strings"
	"time"
)

// Status is a record's effective status as shown to users.
type Status string

const (
	StatusActive       Status = "active"
	StatusExpiringSoon Status = "expiring_soon"
	StatusExpired      Status = "expired"
	StatusPending      Status = "pending"
)

// Color is the UI tag paired with a status.
type Color string

const (
	ColorGreen  Color = "green"
	ColorYellow Color = "yellow"
	ColorRed    Color = "red"
	ColorGray   Color = "gray"
)

// ExpiringSoonWindow is the inclusive look-ahead for the expiring_soon
// status and the aggregator's expiring-soon bookkeeping.
const ExpiringSoonWindow = 30

// overrideColors maps the kind-specific manual override vocabularies to
// their colors. Unknown overrides render gray rather than erroring: the
// override column is free text and must round-trip verbatim.
var overrideColors = map[string]Color{
	"verified":        ColorGreen,
	"valid":           ColorGreen,
	"up_to_date":      ColorGreen,
	"active":          ColorGreen,
	"expiring_soon":   ColorYellow,
	"pending_renewal": ColorYellow,
	"pending":         ColorYellow,
	"failed":          ColorRed,
	"expired":         ColorRed,
}

// DeriveStatus computes a record's effective status and color.
//
// Rules, in order:
//  1. A non-empty manual override is returned verbatim with its vocabulary
//     color; no date logic is consulted.
//  2. No expiry date: pending / gray.
//  3. Expiry on or before today: expired / red (the boundary day belongs
//     to expired).
//  4. Expiry within the next 30 days, inclusive: expiring_soon / yellow.
//  5. Otherwise: active / green.
//
// Only calendar dates matter: each time contributes its year, month, and
// day, so partial days and time zones never shift a boundary.
func DeriveStatus(today time.Time, expiry *time.Time, manualOverride string) (Status, Color) {
	if override := strings.TrimSpace(manualOverride); override != "" {
		color, ok := overrideColors[strings.ToLower(override)]
		if !ok {
			color = ColorGray
		}
		return Status(override), color
	}

	if expiry == nil {
		return StatusPending, ColorGray
	}

	days := DaysUntil(today, *expiry)
	switch {
	case days <= 0:
		return StatusExpired, ColorRed
	case days <= ExpiringSoonWindow:
		return StatusExpiringSoon, ColorYellow
	default:
		return StatusActive, ColorGreen
	}
}

// DaysUntil returns the whole-day difference between today's calendar date
// and expiry's calendar date. Negative when expiry is in the past.
//
// Each time is read in its own location. An expiry date is a calendar date,
// not an instant: "2026-03-11" parsed at UTC midnight must stay March 11
// even when today's clock runs in a zone west of UTC, where converting the
// instant would land it on March 10 and report the record expired a day
// early. Comparing UTC-anchored calendar dates also keeps DST transitions
// (23- and 25-hour days) from shifting the boundary.
func DaysUntil(today, expiry time.Time) int {
	return int(calendarDate(expiry).Sub(calendarDate(today)).Hours() / 24)
}

// calendarDate pins a time's own year, month, and day to UTC midnight so
// differences are exact multiples of 24 hours.
func calendarDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
