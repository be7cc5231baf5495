package web

import (
	"net/http"
	"net/url"
	"time"

	"github.com/a-h/templ"

	"github.com/JonMunkholm/prayerboard/internal/logging"
	"github.com/JonMunkholm/prayerboard/internal/schedule"
	"github.com/JonMunkholm/prayerboard/internal/web/templates"
)

// ScheduleResponse is the JSON form of the current snapshot, filtered.
type ScheduleResponse struct {
	SnapshotID    string                 `json:"snapshot_id"`
	FetchedAt     time.Time              `json:"fetched_at"`
	Source        string                 `json:"source"`
	LastUpdated   *string                `json:"last_updated,omitempty"`
	PrayerContext schedule.PrayerContext `json:"prayer_context"`
	Area          string                 `json:"area"`
	Mosque        string                 `json:"mosque"`
	Groups        []schedule.AreaGroup   `json:"groups"`
	FooterNotes   []string               `json:"footer_notes"`
}

// RefreshResponse reports a successful manual refresh.
type RefreshResponse struct {
	SnapshotID string    `json:"snapshot_id"`
	FetchedAt  time.Time `json:"fetched_at"`
	Source     string    `json:"source"`
	Mosques    int       `json:"mosques"`
}

// handlePage renders the schedule page. Before the first successful load it
// shows the error panel with a retry button instead.
func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	snap, err := s.service.EnsureLoaded(r.Context())
	if err != nil {
		s.respondError(w, r, err, http.StatusServiceUnavailable)
		return
	}

	mosques := snap.Result.Mosques
	filter := filterFromQuery(r.URL.Query(), mosques)

	data := templates.PageData{
		Synced:      takeFlash(w, r) == flashSynced,
		FetchedAt:   snap.FetchedAt,
		Filter:      filter,
		Areas:       schedule.Areas(mosques),
		MosqueNames: schedule.MosqueNames(mosques, filter.Area),
		Groups:      schedule.GroupByArea(mosques, filter),
		FooterNotes: snap.Result.FooterNotes,
	}
	if snap.Result.LastUpdated != nil {
		data.LastUpdated = *snap.Result.LastUpdated
	}
	if st := s.service.Status(); st.LastError != nil {
		a := alertFrom(*st.LastError)
		data.Notice = &a
	}

	logging.WithFields(r.Context(), "area", filter.Area, "mosque", filter.Mosque).
		Debug("schedule page rendered", "snapshot_id", snap.ID, "synced", data.Synced)

	renderHTML(w, r, http.StatusOK, templates.SchedulePage(data))
}

// handleSchedule returns the filtered snapshot as JSON.
func (s *Server) handleSchedule(w http.ResponseWriter, r *http.Request) {
	snap, err := s.service.EnsureLoaded(r.Context())
	if err != nil {
		s.respondError(w, r, err, http.StatusServiceUnavailable)
		return
	}

	filter := filterFromQuery(r.URL.Query(), snap.Result.Mosques)
	groups := schedule.GroupByArea(snap.Result.Mosques, filter)
	if groups == nil {
		groups = []schedule.AreaGroup{}
	}

	writeJSON(w, http.StatusOK, ScheduleResponse{
		SnapshotID:    snap.ID,
		FetchedAt:     snap.FetchedAt,
		Source:        snap.Source,
		LastUpdated:   snap.Result.LastUpdated,
		PrayerContext: snap.Result.PrayerContext,
		Area:          filter.Area,
		Mosque:        filter.Mosque,
		Groups:        groups,
		FooterNotes:   snap.Result.FooterNotes,
	})
}

// handleAreas returns the area dropdown options.
func (s *Server) handleAreas(w http.ResponseWriter, r *http.Request) {
	snap, err := s.service.EnsureLoaded(r.Context())
	if err != nil {
		s.respondError(w, r, err, http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"all":   schedule.AllAreas,
		"areas": nonNil(schedule.Areas(snap.Result.Mosques)),
	})
}

// handleMosques returns the mosque dropdown options for ?area=.
func (s *Server) handleMosques(w http.ResponseWriter, r *http.Request) {
	snap, err := s.service.EnsureLoaded(r.Context())
	if err != nil {
		s.respondError(w, r, err, http.StatusServiceUnavailable)
		return
	}
	filter := filterFromQuery(r.URL.Query(), snap.Result.Mosques)
	writeJSON(w, http.StatusOK, map[string]any{
		"area":    filter.Area,
		"all":     schedule.AllMosques,
		"mosques": nonNil(schedule.MosqueNames(snap.Result.Mosques, filter.Area)),
	})
}

// handleRefresh fetches the schedule now and reports the outcome as JSON.
func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	logging.FromContext(r.Context()).Info("manual refresh requested")

	snap, err := s.service.Refresh(r.Context())
	if err != nil {
		s.respondError(w, r, err, http.StatusBadGateway)
		return
	}

	writeJSON(w, http.StatusOK, RefreshResponse{
		SnapshotID: snap.ID,
		FetchedAt:  snap.FetchedAt,
		Source:     snap.Source,
		Mosques:    len(snap.Result.Mosques),
	})
}

// handleRefreshForm is the page's refresh button. It always redirects back to
// the page. Success leaves a one-time flash for the confirmation banner; a
// failure shows up there as a notice or the error panel.
func (s *Server) handleRefreshForm(w http.ResponseWriter, r *http.Request) {
	logger := logging.WithFields(r.Context(), "via", "form")
	logger.Info("manual refresh requested")

	// errors are logged by Refresh and surfaced through Status
	if snap, err := s.service.Refresh(r.Context()); err == nil {
		setFlash(w, flashSynced)
		logger.Debug("manual refresh succeeded", "snapshot_id", snap.ID)
	}

	target := "/"
	if err := r.ParseForm(); err == nil {
		q := url.Values{}
		for _, key := range []string{"area", "mosque"} {
			if v := r.PostForm.Get(key); v != "" {
				q.Set(key, v)
			}
		}
		if len(q) > 0 {
			target += "?" + q.Encode()
		}
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// handleStatus reports refresh health.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.service.Status())
}

// handleHealthz is the liveness probe; it does not depend on the upstream sheet.
func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"ready":  s.service.Status().Ready,
	})
}

const (
	flashCookie = "prayerboard_flash"
	flashSynced = "synced"
)

// setFlash stores a message for the next page view only.
func setFlash(w http.ResponseWriter, value string) {
	http.SetCookie(w, &http.Cookie{
		Name:     flashCookie,
		Value:    value,
		Path:     "/",
		MaxAge:   60,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// takeFlash returns the pending flash, if any, and clears it.
func takeFlash(w http.ResponseWriter, r *http.Request) string {
	c, err := r.Cookie(flashCookie)
	if err != nil {
		return ""
	}
	http.SetCookie(w, &http.Cookie{
		Name:     flashCookie,
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return c.Value
}

func filterFromQuery(q url.Values, mosques []schedule.Mosque) schedule.Filter {
	return schedule.NormalizeFilter(mosques, schedule.Filter{
		Area:   q.Get("area"),
		Mosque: q.Get("mosque"),
	})
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// renderHTML renders c with status. Render errors after the header is sent
// can only be logged.
func renderHTML(w http.ResponseWriter, r *http.Request, status int, c templ.Component) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := c.Render(r.Context(), w); err != nil {
		logging.FromContext(r.Context()).Error("render failed", "path", r.URL.Path, "error", err)
	}
}

