// Package templates holds the templ components for the prayer-time board.
//
// The *_templ.go files are generated from the .templ files by templ generate.
package templates

import (
	"time"

	"github.com/JonMunkholm/prayerboard/internal/schedule"
)

// UnnamedMosque is shown for rows that have times but no name.
const UnnamedMosque = "Unnamed mosque"

// SyncedMessage confirms a successful manual refresh.
const SyncedMessage = "Prayer times and notes synced successfully."

// PageData is everything the schedule page shows.
type PageData struct {
	LastUpdated string
	FetchedAt   time.Time
	Filter      schedule.Filter
	Areas       []string
	MosqueNames []string
	Groups      []schedule.AreaGroup
	FooterNotes []string

	// Synced is set once after the refresh button succeeded.
	Synced bool

	// Notice is set when the latest refresh failed but older data is shown.
	Notice *Alert
}

// Alert is a user-facing error message with a support code.
type Alert struct {
	Message string
	Action  string
	Code    string
}

func displayName(m schedule.Mosque) string {
	if m.NameEn == "" {
		return UnnamedMosque
	}
	return m.NameEn
}

func isoTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func displayTime(t time.Time) string {
	return t.Format("2 Jan 2006 15:04")
}
