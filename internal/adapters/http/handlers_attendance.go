package web

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"shepherd/internal/application/orchestrators"
	"shepherd/internal/application/projections"
	"shepherd/internal/domain/attendance"
	"shepherd/internal/domain/window"
)

type matchQuery struct {
	Date string `json:"date" validate:"omitempty,datetime=2006-01-02"`
}

type markRequest struct {
	PersonID string `json:"personId" validate:"required,max=64"`
	Status   string `json:"status" validate:"omitempty,oneof=present absent"`
	Mode     string `json:"mode" validate:"required,oneof=onsite online"`
}

type bulkEntry struct {
	PersonID string `json:"personId"`
	Status   string `json:"status"`
	Mode     string `json:"mode"`
}

type bulkRequest struct {
	Date     string      `json:"date" validate:"required,datetime=2006-01-02"`
	MarkedBy string      `json:"markedBy" validate:"max=100"`
	Entries  []bulkEntry `json:"entries" validate:"required,min=1,max=2000"`
}

type absenteesRequest struct {
	Date     string `json:"date" validate:"required,datetime=2006-01-02"`
	MarkedBy string `json:"markedBy" validate:"max=100"`
}

type markResultJSON struct {
	Index    int    `json:"index"`
	PersonID string `json:"personId"`
	EntryID  string `json:"entryId,omitempty"`
	Error    string `json:"error,omitempty"`
}

type markSummaryJSON struct {
	ServiceID   string           `json:"serviceId"`
	ServiceDate string           `json:"serviceDate"`
	Marked      int              `json:"marked"`
	Failed      int              `json:"failed"`
	Results     []markResultJSON `json:"results"`
}

// serviceFor resolves the instance and window for date ("" is today in the congregation zone).
func (a *api) serviceFor(ctx context.Context, date string) (projections.GetServiceForDateResult, error) {
	return projections.QueryGetServiceForDate(ctx,
		projections.GetServiceForDateQuery{Date: date, Now: timeNow(), Location: a.loc},
		projections.GetServiceForDateDeps{ServiceStore: a.stores.ServiceStore},
	)
}

func (a *api) markDeps() orchestrators.MarkAttendanceDeps {
	return orchestrators.MarkAttendanceDeps{
		MemberStore:     a.stores.MemberStore,
		AttendanceStore: a.stores.AttendanceStore,
		Now:             timeNow,
	}
}

func writeNoService(w http.ResponseWriter, date string) {
	writeJSON(w, http.StatusNotFound, errorBody{
		Error: "no service is scheduled on " + date,
		State: string(window.StateNoService),
	})
}

// summarize converts per-entry results, hiding internal failures from the client.
func summarize(serviceID, serviceDate string, results []orchestrators.MarkResult) markSummaryJSON {
	out := markSummaryJSON{ServiceID: serviceID, ServiceDate: serviceDate, Results: make([]markResultJSON, len(results))}
	for i, res := range results {
		j := markResultJSON{Index: res.Index, PersonID: res.PersonID, EntryID: res.EntryID}
		switch {
		case res.OK():
			out.Marked++
		case errors.Is(res.Err, orchestrators.ErrInvalidInput),
			errors.Is(res.Err, orchestrators.ErrUnknownMember),
			errors.Is(res.Err, orchestrators.ErrArchivedMember):
			out.Failed++
			j.Error = res.Err.Error()
		default:
			out.Failed++
			slog.Error("internal_error", "error", res.Err.Error(), "person_id", res.PersonID)
			j.Error = "internal error"
		}
		out.Results[i] = j
	}
	return out
}

// handleMatchService handles GET /api/services/match?date=YYYY-MM-DD
func (a *api) handleMatchService(w http.ResponseWriter, r *http.Request) {
	q := matchQuery{Date: r.URL.Query().Get("date")}
	if err := validate.Struct(q); err != nil {
		writeError(w, err)
		return
	}

	res, err := a.serviceFor(r.Context(), q.Date)
	if err != nil {
		internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// handleMarkAttendance handles POST /api/attendance (self check-in for today's service)
func (a *api) handleMarkAttendance(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req markRequest
	if err := decodeJSON(w, r, &req, false); err != nil {
		writeError(w, err)
		return
	}
	if req.Status == "" {
		req.Status = attendance.StatusPresent
	}

	res, err := a.serviceFor(ctx, "")
	if err != nil {
		internalError(w, err)
		return
	}
	if !res.Window.CanMark() {
		writeJSON(w, http.StatusConflict, errorBody{
			Error: "attendance window is not open",
			State: string(res.Window.State),
		})
		return
	}

	entry, err := orchestrators.ExecuteMarkAttendance(ctx, orchestrators.MarkAttendanceInput{
		PersonID: req.PersonID,
		Instance: *res.Instance,
		Status:   req.Status,
		Mode:     req.Mode,
		MarkedBy: "self",
	}, a.markDeps())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, entry)
}

// handleMarkBulk handles POST /api/admin/attendance/bulk (backfill, no window check)
func (a *api) handleMarkBulk(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req bulkRequest
	if err := decodeJSON(w, r, &req, false); err != nil {
		writeError(w, err)
		return
	}

	res, err := a.serviceFor(ctx, req.Date)
	if err != nil {
		internalError(w, err)
		return
	}
	if res.Instance == nil {
		writeNoService(w, req.Date)
		return
	}

	inputs := make([]orchestrators.MarkAttendanceInput, len(req.Entries))
	for i, e := range req.Entries {
		inputs[i] = orchestrators.MarkAttendanceInput{
			PersonID: e.PersonID,
			Instance: *res.Instance,
			Status:   e.Status,
			Mode:     e.Mode,
			MarkedBy: req.MarkedBy,
		}
	}
	results := orchestrators.ExecuteMarkBulk(ctx, inputs, orchestrators.MarkBulkDeps{
		Mark:        a.markDeps(),
		Concurrency: a.opts.BulkConcurrency,
	})
	writeJSON(w, http.StatusOK, summarize(res.Instance.ServiceID, res.Instance.DateKey(), results))
}

// handleMarkAbsentees handles POST /api/admin/attendance/absentees
func (a *api) handleMarkAbsentees(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req absenteesRequest
	if err := decodeJSON(w, r, &req, false); err != nil {
		writeError(w, err)
		return
	}

	res, err := a.serviceFor(ctx, req.Date)
	if err != nil {
		internalError(w, err)
		return
	}
	if res.Instance == nil {
		writeNoService(w, req.Date)
		return
	}

	swept, err := orchestrators.ExecuteMarkAbsentees(ctx, orchestrators.MarkAbsenteesInput{
		Instance: *res.Instance,
		MarkedBy: req.MarkedBy,
	}, orchestrators.MarkAbsenteesDeps{
		MemberStore:     a.stores.MemberStore,
		AttendanceStore: a.stores.AttendanceStore,
		Concurrency:     a.opts.BulkConcurrency,
		Now:             timeNow,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summarize(res.Instance.ServiceID, res.Instance.DateKey(), swept.Results))
}

// handleMemberAttendance handles GET /api/admin/members/{id}/attendance
func (a *api) handleMemberAttendance(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := r.PathValue("id")

	if _, err := a.stores.MemberStore.GetByID(ctx, id); err != nil {
		writeError(w, err)
		return
	}
	entries, err := a.stores.AttendanceStore.ListByPerson(ctx, id)
	if err != nil {
		internalError(w, err)
		return
	}
	if entries == nil {
		entries = []attendance.Entry{}
	}
	writeJSON(w, http.StatusOK, entries)
}
