// Package web serves the JSON API for attendance marking, follow-up and reports.
package web

import (
	"context"
	"net/http"
	"time"

	"shepherd/internal/adapters/email"
	"shepherd/internal/adapters/http/middleware"
	"shepherd/internal/adapters/http/perf"
	attendanceStore "shepherd/internal/adapters/storage/attendance"
	firstTimerStore "shepherd/internal/adapters/storage/firsttimer"
	followUpStore "shepherd/internal/adapters/storage/followup"
	memberStore "shepherd/internal/adapters/storage/member"
	serviceStore "shepherd/internal/adapters/storage/service"
)

// timeNow is a variable for testability.
var timeNow = time.Now

// Stores holds all storage dependencies.
type Stores struct {
	ServiceStore    serviceStore.Store
	MemberStore     memberStore.Store
	AttendanceStore attendanceStore.Store
	FirstTimerStore firstTimerStore.Store
	FollowUpStore   followUpStore.Store
}

// Options configures the API surface and its middleware.
type Options struct {
	Location           *time.Location // congregation time zone; nil uses UTC
	CSRFKey            []byte         // 32 bytes
	SecureCookies      bool
	TrustedOrigins     []string
	AdminToken         string                  // empty disables the admin check
	RateLimitPerSecond int                     // used when Limiter is nil
	Limiter            *middleware.RateLimiter // shared limiter, so the caller can sweep idle clients
	SlowRequestMs      int
	BulkConcurrency    int
	Sender             email.Sender // nil uses a noop sender
	EmailFrom          string
	DigestRecipients   []string
	Collector          *perf.Collector             // nil disables timing capture
	Ping               func(context.Context) error // database health check; nil skips it
}

// api carries handler dependencies.
type api struct {
	stores Stores
	opts   Options
	loc    *time.Location
}

// NewMux wires HTTP handlers for the app.
// PRE: every store in s is non-nil; opts.CSRFKey is 32 bytes
// POST: Returns a handler with security headers, CSRF, rate limiting and timing applied
func NewMux(s Stores, opts Options) http.Handler {
	a := &api{stores: s, opts: opts, loc: opts.Location}
	if a.loc == nil {
		a.loc = time.UTC
	}
	if a.opts.Sender == nil {
		a.opts.Sender = email.NewNoopSender()
	}
	if a.opts.RateLimitPerSecond <= 0 {
		a.opts.RateLimitPerSecond = 10
	}

	mux := http.NewServeMux()
	a.registerRoutes(mux)

	limiter := a.opts.Limiter
	if limiter == nil {
		limiter = middleware.NewRateLimiter(a.opts.RateLimitPerSecond, time.Second)
	}

	// Timing -> RateLimit -> CSRF -> SecurityHeaders -> Mux
	return middleware.Chain(mux,
		middleware.SecurityHeaders,
		middleware.CSRF(opts.CSRFKey, middleware.CSRFOptions{
			Secure:         opts.SecureCookies,
			TrustedOrigins: opts.TrustedOrigins,
		}),
		middleware.RateLimit(limiter),
		middleware.Timing(opts.Collector, opts.SlowRequestMs),
	)
}

func (a *api) registerRoutes(mux *http.ServeMux) {
	admin := middleware.RequireToken(a.opts.AdminToken)
	adminFunc := func(h http.HandlerFunc) http.Handler { return admin(h) }

	mux.HandleFunc("GET /healthz", a.handleHealth)

	// Self check-in
	mux.HandleFunc("GET /api/services/match", a.handleMatchService)
	mux.HandleFunc("POST /api/attendance", a.handleMarkAttendance)

	// Attendance administration
	mux.Handle("POST /api/admin/attendance/bulk", adminFunc(a.handleMarkBulk))
	mux.Handle("POST /api/admin/attendance/absentees", adminFunc(a.handleMarkAbsentees))

	// Catalog
	mux.Handle("GET /api/admin/services", adminFunc(a.handleListServices))
	mux.Handle("PUT /api/admin/services/{id}", adminFunc(a.handleSaveService))
	mux.Handle("DELETE /api/admin/services/{id}", adminFunc(a.handleDeleteService))
	mux.Handle("GET /api/admin/follow-up-statuses", adminFunc(a.handleListStatuses))
	mux.Handle("PUT /api/admin/follow-up-statuses", adminFunc(a.handleReplaceStatuses))

	// Members
	mux.Handle("GET /api/admin/members", adminFunc(a.handleListMembers))
	mux.Handle("POST /api/admin/members", adminFunc(a.handleRegisterMember))
	mux.Handle("GET /api/admin/members/{id}/attendance", adminFunc(a.handleMemberAttendance))
	mux.Handle("POST /api/admin/members/{id}/archive", adminFunc(a.handleArchiveMember))
	mux.Handle("POST /api/admin/members/{id}/restore", adminFunc(a.handleRestoreMember))

	// First-timer follow-up
	mux.Handle("POST /api/first-timers", adminFunc(a.handleRecordFirstTimer))
	mux.Handle("GET /api/first-timers/{id}", adminFunc(a.handleGetFirstTimer))
	mux.Handle("POST /api/first-timers/{id}/feedback", adminFunc(a.handleAddFeedback))
	mux.Handle("PATCH /api/first-timers/{id}/status", adminFunc(a.handleUpdateStatus))

	// Reports
	mux.Handle("GET /api/reports/first-timers", adminFunc(a.handleFirstTimerReport))
	mux.Handle("GET /api/reports/attendance", adminFunc(a.handleAttendanceReport))
	mux.Handle("POST /api/admin/digest", adminFunc(a.handleSendDigest))
	mux.Handle("GET /api/admin/perf", adminFunc(a.handlePerf))
}

// handleHealth handles GET /healthz
func (a *api) handleHealth(w http.ResponseWriter, r *http.Request) {
	if a.opts.Ping != nil {
		if err := a.opts.Ping(r.Context()); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
