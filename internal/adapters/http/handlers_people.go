package web

import (
	"fmt"
	"net/http"
	"time"

	memberStore "shepherd/internal/adapters/storage/member"
	"shepherd/internal/application/orchestrators"
	"shepherd/internal/domain/firsttimer"
	"shepherd/internal/domain/member"
	"shepherd/internal/domain/service"
)

type memberRequest struct {
	ID     string `json:"id" validate:"max=64"`
	Name   string `json:"name" validate:"required,max=100"`
	Email  string `json:"email" validate:"omitempty,email"`
	Phone  string `json:"phone" validate:"max=40"`
	Status string `json:"status" validate:"omitempty,oneof=active inactive archived"`
}

type memberListQuery struct {
	Status string `json:"status" validate:"omitempty,oneof=active inactive archived"`
	Limit  int    `json:"limit" validate:"min=0,max=1000"`
	Offset int    `json:"offset" validate:"min=0"`
}

type firstTimerRequest struct {
	Name      string `json:"name" validate:"required,max=100"`
	Email     string `json:"email" validate:"omitempty,email"`
	Phone     string `json:"phone" validate:"max=40"`
	VisitDate string `json:"visitDate" validate:"omitempty,datetime=2006-01-02"`
	Status    string `json:"status" validate:"max=100"`
}

type feedbackRequest struct {
	Note   string `json:"note" validate:"required,max=2000"`
	Author string `json:"author" validate:"max=100"`
}

type statusRequest struct {
	Status string `json:"status" validate:"required,max=100"`
}

type serviceRequest struct {
	Name              string `json:"name" validate:"required,max=100"`
	Recurring         bool   `json:"recurring"`
	Day               string `json:"day" validate:"omitempty,oneof=monday tuesday wednesday thursday friday saturday sunday"`
	Date              string `json:"date" validate:"omitempty,datetime=2006-01-02"`
	StartTime         string `json:"startTime" validate:"omitempty,datetime=15:04"`
	OpenLeadMinutes   *int   `json:"openLeadMinutes" validate:"omitempty,min=0,max=1440"`
	CloseAfterMinutes *int   `json:"closeAfterMinutes" validate:"omitempty,min=0,max=1440"`
	Position          int    `json:"position"`
}

type taxonomyRequest struct {
	Labels []string `json:"labels" validate:"required,min=1,max=50,dive,required,max=100"`
}

func (a *api) firstTimerDeps() orchestrators.FirstTimerDeps {
	return orchestrators.FirstTimerDeps{
		FirstTimerStore: a.stores.FirstTimerStore,
		FollowUpStore:   a.stores.FollowUpStore,
		Now:             timeNow,
	}
}

// handleListMembers handles GET /api/admin/members?status=&limit=&offset=
func (a *api) handleListMembers(w http.ResponseWriter, r *http.Request) {
	q := memberListQuery{Status: r.URL.Query().Get("status")}
	var err error
	if q.Limit, err = queryInt(r, "limit", 0); err != nil {
		writeError(w, err)
		return
	}
	if q.Offset, err = queryInt(r, "offset", 0); err != nil {
		writeError(w, err)
		return
	}
	if err := validate.Struct(q); err != nil {
		writeError(w, err)
		return
	}

	members, err := a.stores.MemberStore.List(r.Context(), memberStore.ListFilter{Status: q.Status, Limit: q.Limit, Offset: q.Offset})
	if err != nil {
		internalError(w, err)
		return
	}
	if members == nil {
		members = []member.Member{}
	}
	writeJSON(w, http.StatusOK, members)
}

// handleRegisterMember handles POST /api/admin/members (create or update)
func (a *api) handleRegisterMember(w http.ResponseWriter, r *http.Request) {
	var req memberRequest
	if err := decodeJSON(w, r, &req, false); err != nil {
		writeError(w, err)
		return
	}

	m, err := orchestrators.ExecuteRegisterMember(r.Context(), orchestrators.RegisterMemberInput{
		ID:     req.ID,
		Name:   req.Name,
		Email:  req.Email,
		Phone:  req.Phone,
		Status: req.Status,
	}, orchestrators.RegisterMemberDeps{MemberStore: a.stores.MemberStore})
	if err != nil {
		writeError(w, err)
		return
	}

	status := http.StatusOK
	if req.ID == "" {
		status = http.StatusCreated
	}
	writeJSON(w, status, m)
}

// handleArchiveMember handles POST /api/admin/members/{id}/archive
func (a *api) handleArchiveMember(w http.ResponseWriter, r *http.Request) {
	m, err := orchestrators.ExecuteArchiveMember(r.Context(),
		orchestrators.ArchiveMemberInput{MemberID: r.PathValue("id")},
		orchestrators.ArchiveMemberDeps{MemberStore: a.stores.MemberStore})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

// handleRestoreMember handles POST /api/admin/members/{id}/restore
func (a *api) handleRestoreMember(w http.ResponseWriter, r *http.Request) {
	m, err := orchestrators.ExecuteRestoreMember(r.Context(),
		orchestrators.ArchiveMemberInput{MemberID: r.PathValue("id")},
		orchestrators.ArchiveMemberDeps{MemberStore: a.stores.MemberStore})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

// handleRecordFirstTimer handles POST /api/first-timers
func (a *api) handleRecordFirstTimer(w http.ResponseWriter, r *http.Request) {
	var req firstTimerRequest
	if err := decodeJSON(w, r, &req, false); err != nil {
		writeError(w, err)
		return
	}

	input := orchestrators.RecordFirstTimerInput{
		Name:   req.Name,
		Email:  req.Email,
		Phone:  req.Phone,
		Status: req.Status,
	}
	if req.VisitDate != "" {
		visit, err := service.ParseDate(req.VisitDate, a.loc)
		if err != nil {
			writeError(w, fmt.Errorf("%w: %v", errBadRequest, err))
			return
		}
		input.VisitDate = visit
	} else {
		input.VisitDate = timeNow().In(a.loc)
	}

	rec, err := orchestrators.ExecuteRecordFirstTimer(r.Context(), input, a.firstTimerDeps())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, rec)
}

// handleGetFirstTimer handles GET /api/first-timers/{id}
func (a *api) handleGetFirstTimer(w http.ResponseWriter, r *http.Request) {
	rec, err := a.stores.FirstTimerStore.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	if rec.Feedback == nil {
		rec.Feedback = []firsttimer.Feedback{}
	}
	writeJSON(w, http.StatusOK, rec)
}

// handleAddFeedback handles POST /api/first-timers/{id}/feedback
func (a *api) handleAddFeedback(w http.ResponseWriter, r *http.Request) {
	var req feedbackRequest
	if err := decodeJSON(w, r, &req, false); err != nil {
		writeError(w, err)
		return
	}

	f, err := orchestrators.ExecuteAddFollowUpFeedback(r.Context(), orchestrators.AddFollowUpFeedbackInput{
		FirstTimerID: r.PathValue("id"),
		Note:         req.Note,
		Author:       req.Author,
	}, a.firstTimerDeps())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, f)
}

// handleUpdateStatus handles PATCH /api/first-timers/{id}/status
func (a *api) handleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req statusRequest
	if err := decodeJSON(w, r, &req, false); err != nil {
		writeError(w, err)
		return
	}

	err := orchestrators.ExecuteUpdateFollowUpStatus(r.Context(), orchestrators.UpdateFollowUpStatusInput{
		FirstTimerID: r.PathValue("id"),
		Status:       req.Status,
	}, a.firstTimerDeps())
	if err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleListServices handles GET /api/admin/services
func (a *api) handleListServices(w http.ResponseWriter, r *http.Request) {
	services, err := a.stores.ServiceStore.List(r.Context())
	if err != nil {
		internalError(w, err)
		return
	}
	if services == nil {
		services = []service.Service{}
	}
	writeJSON(w, http.StatusOK, services)
}

// handleSaveService handles PUT /api/admin/services/{id}
func (a *api) handleSaveService(w http.ResponseWriter, r *http.Request) {
	var req serviceRequest
	if err := decodeJSON(w, r, &req, false); err != nil {
		writeError(w, err)
		return
	}

	s := service.Service{
		ID:                r.PathValue("id"),
		Name:              req.Name,
		Recurring:         req.Recurring,
		Day:               req.Day,
		StartTime:         req.StartTime,
		OpenLeadMinutes:   req.OpenLeadMinutes,
		CloseAfterMinutes: req.CloseAfterMinutes,
		Position:          req.Position,
	}
	if req.Date != "" {
		d, err := time.Parse(service.DateLayout, req.Date)
		if err != nil {
			writeError(w, fmt.Errorf("%w: %v", errBadRequest, err))
			return
		}
		s.Date = d
	}

	saved, err := orchestrators.ExecuteSaveService(r.Context(), s, orchestrators.CatalogDeps{ServiceStore: a.stores.ServiceStore})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, saved)
}

// handleDeleteService handles DELETE /api/admin/services/{id}
func (a *api) handleDeleteService(w http.ResponseWriter, r *http.Request) {
	err := orchestrators.ExecuteDeleteService(r.Context(), r.PathValue("id"), orchestrators.CatalogDeps{ServiceStore: a.stores.ServiceStore})
	if err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleListStatuses handles GET /api/admin/follow-up-statuses
func (a *api) handleListStatuses(w http.ResponseWriter, r *http.Request) {
	taxonomy, err := a.stores.FollowUpStore.List(r.Context())
	if err != nil {
		internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]string{"labels": taxonomy.Labels()})
}

// handleReplaceStatuses handles PUT /api/admin/follow-up-statuses
func (a *api) handleReplaceStatuses(w http.ResponseWriter, r *http.Request) {
	var req taxonomyRequest
	if err := decodeJSON(w, r, &req, false); err != nil {
		writeError(w, err)
		return
	}

	taxonomy, err := orchestrators.ExecuteReplaceTaxonomy(r.Context(), req.Labels, a.stores.FollowUpStore)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]string{"labels": taxonomy.Labels()})
}
