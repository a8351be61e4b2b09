package web

import (
	"fmt"
	"net/http"
	"time"

	"shepherd/internal/adapters/http/perf"
	"shepherd/internal/application/orchestrators"
	"shepherd/internal/application/projections"
)

type reportQuery struct {
	Year  int `json:"year" validate:"min=1,max=9999"`
	Month int `json:"month" validate:"min=0,max=12"`
}

type digestRequest struct {
	Year int `json:"year" validate:"omitempty,min=1,max=9999"`
}

type digestResponse struct {
	Subject string `json:"subject"`
	Sent    int    `json:"sent"`
}

// parseReportQuery reads ?year=&month=; year defaults to the current year in the congregation zone.
func (a *api) parseReportQuery(r *http.Request) (reportQuery, error) {
	var q reportQuery
	var err error
	if q.Year, err = queryInt(r, "year", timeNow().In(a.loc).Year()); err != nil {
		return q, err
	}
	if q.Month, err = queryInt(r, "month", 0); err != nil {
		return q, err
	}
	return q, validate.Struct(q)
}

// handleFirstTimerReport handles GET /api/reports/first-timers?year=&month=
func (a *api) handleFirstTimerReport(w http.ResponseWriter, r *http.Request) {
	q, err := a.parseReportQuery(r)
	if err != nil {
		writeError(w, err)
		return
	}

	result, err := projections.QueryGetFirstTimerReport(r.Context(),
		projections.GetFirstTimerReportQuery{Year: q.Year, Month: time.Month(q.Month)},
		projections.GetFirstTimerReportDeps{
			FirstTimerStore: a.stores.FirstTimerStore,
			FollowUpStore:   a.stores.FollowUpStore,
		})
	if err != nil {
		internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// handleAttendanceReport handles GET /api/reports/attendance?year=&month=
func (a *api) handleAttendanceReport(w http.ResponseWriter, r *http.Request) {
	q, err := a.parseReportQuery(r)
	if err != nil {
		writeError(w, err)
		return
	}

	result, err := projections.QueryGetAttendanceReport(r.Context(),
		projections.GetAttendanceReportQuery{Year: q.Year, Month: time.Month(q.Month)},
		projections.GetAttendanceReportDeps{AttendanceStore: a.stores.AttendanceStore})
	if err != nil {
		internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// handleSendDigest handles POST /api/admin/digest (body optional: {"year": 2026})
func (a *api) handleSendDigest(w http.ResponseWriter, r *http.Request) {
	var req digestRequest
	if err := decodeJSON(w, r, &req, true); err != nil {
		writeError(w, err)
		return
	}

	res, err := orchestrators.ExecuteSendEngagementDigest(r.Context(),
		orchestrators.SendEngagementDigestInput{Year: req.Year},
		orchestrators.SendEngagementDigestDeps{
			FirstTimerStore: a.stores.FirstTimerStore,
			FollowUpStore:   a.stores.FollowUpStore,
			Sender:          a.opts.Sender,
			Recipients:      a.opts.DigestRecipients,
			From:            a.opts.EmailFrom,
			Now:             func() time.Time { return timeNow().In(a.loc) },
		})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, digestResponse{Subject: res.Subject, Sent: res.Sent})
}

// handlePerf handles GET /api/admin/perf?since=1h
func (a *api) handlePerf(w http.ResponseWriter, r *http.Request) {
	if a.opts.Collector == nil {
		writeJSON(w, http.StatusOK, perf.Snapshot{})
		return
	}

	window := time.Hour
	if raw := r.URL.Query().Get("since"); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil || d <= 0 {
			writeError(w, fmt.Errorf("%w: since must be a positive duration such as 15m", errBadRequest))
			return
		}
		window = d
	}
	// Entries carry wall-clock timestamps, not the injectable clock.
	writeJSON(w, http.StatusOK, a.opts.Collector.Snapshot(time.Now().Add(-window), 10))
}
