// Package timeutil formats timestamps and durations for CLI display.
package timeutil

import (
	"fmt"
	"time"
)

// localStamp is the layout for absolute times shown to the user.
const localStamp = "Mon Jan 2 15:04:05 2006"

// Local converts an RFC3339 timestamp to the local absolute form. Strings
// that do not parse come back unchanged so raw server values still display.
func Local(timestamp string) string {
	t, err := time.Parse(time.RFC3339, timestamp)
	if err != nil {
		return timestamp
	}
	return t.Local().Format(localStamp)
}

// Uptime renders a Go duration string ("72h30m15s") as "3d 0h 30m 15s",
// dropping leading units that are zero. Unparseable input comes back
// unchanged.
func Uptime(uptime string) string {
	d, err := time.ParseDuration(uptime)
	if err != nil {
		return uptime
	}

	days := int(d.Hours()) / 24
	hours := int(d.Hours()) % 24
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60

	switch {
	case days > 0:
		return fmt.Sprintf("%dd %dh %dm %ds", days, hours, minutes, seconds)
	case hours > 0:
		return fmt.Sprintf("%dh %dm %ds", hours, minutes, seconds)
	case minutes > 0:
		return fmt.Sprintf("%dm %ds", minutes, seconds)
	}
	return fmt.Sprintf("%ds", seconds)
}

// Ago renders how long ago t was, coarsely: "just now" under five seconds,
// then seconds, minutes, hours, days. Device and file listings use this
// because a relative age reads faster than a stamp while the hub is live.
func Ago(t time.Time) string {
	return ago(t, time.Now())
}

func ago(t, now time.Time) string {
	d := now.Sub(t)
	switch {
	case d < 5*time.Second:
		return "just now"
	case d < time.Minute:
		return fmt.Sprintf("%ds ago", int(d.Seconds()))
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	}
	return fmt.Sprintf("%dd ago", int(d.Hours())/24)
}
