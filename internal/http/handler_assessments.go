package httpapi

import (
	"encoding/json"
	"net/http"

	"assessment-service/internal/domain"
	"assessment-service/internal/service"
)

// AssessmentHandlers содержит HTTP-обработчики, связанные с оценками.
type AssessmentHandlers struct {
	svc *service.AssessmentService
}

// NewAssessmentHandlers создаёт набор HTTP-обработчиков для работы с оценками.
func NewAssessmentHandlers(svc *service.AssessmentService) *AssessmentHandlers {
	return &AssessmentHandlers{svc: svc}
}

// Create обрабатывает запрос на создание оценки.
func (h *AssessmentHandlers) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateAssessmentRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, err)
		return
	}

	a, err := h.svc.Create(r.Context(), service.CreateInput{
		EmployeeID:       req.EmployeeID,
		CompetencyID:     req.CompetencyID,
		AssessorID:       req.AssessorID,
		CycleID:          req.CycleID,
		Type:             domain.AssessmentType(req.AssessmentType),
		Rating:           req.Rating,
		Comments:         req.Comments,
		DevelopmentNotes: req.DevelopmentNotes,
		UpdateExisting:   req.UpdateExisting,
	}, ActorFromContext(r.Context()))

	if err != nil {
		WriteError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, AssessmentResponse{Assessment: mapAssessmentToDTO(a)})
}

// Get возвращает оценку по идентификатору из query-параметра id.
func (h *AssessmentHandlers) Get(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")

	if id == "" {
		WriteError(w, domain.NewDomainError(domain.ErrorCodeNotFound, domain.ErrNotFound))
		return
	}

	a, err := h.svc.Get(r.Context(), id, ActorFromContext(r.Context()))

	if err != nil {
		WriteError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, AssessmentResponse{Assessment: mapAssessmentToDTO(a)})
}

// History возвращает журнал действий по оценке, новые записи первыми.
func (h *AssessmentHandlers) History(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")

	if id == "" {
		WriteError(w, domain.NewDomainError(domain.ErrorCodeNotFound, domain.ErrNotFound))
		return
	}

	entries, err := h.svc.History(r.Context(), id, ActorFromContext(r.Context()))

	if err != nil {
		WriteError(w, err)
		return
	}

	resp := HistoryResponse{
		AssessmentID: id,
		Entries:      make([]AuditEntryDTO, 0, len(entries)),
	}

	for _, e := range entries {
		resp.Entries = append(resp.Entries, mapAuditEntryToDTO(e))
	}

	writeJSON(w, http.StatusOK, resp)
}

// ListByCycle возвращает оценки цикла, видимые актору.
func (h *AssessmentHandlers) ListByCycle(w http.ResponseWriter, r *http.Request) {
	cycleID := r.URL.Query().Get("cycle_id")

	if cycleID == "" {
		WriteError(w, domain.NewDomainError(domain.ErrorCodeNotFound, domain.ErrNotFound))
		return
	}

	list, err := h.svc.ListByCycle(r.Context(), cycleID, ActorFromContext(r.Context()))

	if err != nil {
		WriteError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, mapAssessmentList(list))
}

// ListByAssessor возвращает оценки, назначенные оценщику.
func (h *AssessmentHandlers) ListByAssessor(w http.ResponseWriter, r *http.Request) {
	assessorID := r.URL.Query().Get("assessor_id")

	if assessorID == "" {
		WriteError(w, domain.NewDomainError(domain.ErrorCodeNotFound, domain.ErrNotFound))
		return
	}

	list, err := h.svc.ListByAssessor(r.Context(), assessorID, ActorFromContext(r.Context()))

	if err != nil {
		WriteError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, mapAssessmentList(list))
}

// Update обрабатывает правку черновика.
func (h *AssessmentHandlers) Update(w http.ResponseWriter, r *http.Request) {
	var req UpdateAssessmentRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, err)
		return
	}

	a, err := h.svc.Update(r.Context(), req.AssessmentID, service.UpdateFields{
		Rating:           req.Rating,
		Comments:         req.Comments,
		DevelopmentNotes: req.DevelopmentNotes,
		EvidenceFiles:    req.EvidenceFiles,
	}, ActorFromContext(r.Context()))

	if err != nil {
		WriteError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, AssessmentResponse{Assessment: mapAssessmentToDTO(a)})
}

// Submit обрабатывает отправку оценки на согласование.
func (h *AssessmentHandlers) Submit(w http.ResponseWriter, r *http.Request) {
	var req SubmitAssessmentRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, err)
		return
	}

	a, err := h.svc.Submit(r.Context(), req.AssessmentID, service.SubmitInput{
		Rating:           req.Rating,
		Comments:         req.Comments,
		DevelopmentNotes: req.DevelopmentNotes,
	}, ActorFromContext(r.Context()))

	if err != nil {
		WriteError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, AssessmentResponse{Assessment: mapAssessmentToDTO(a)})
}

// Approve обрабатывает согласование оценки.
func (h *AssessmentHandlers) Approve(w http.ResponseWriter, r *http.Request) {
	var req ApproveAssessmentRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, err)
		return
	}

	a, err := h.svc.Approve(r.Context(), req.AssessmentID, ActorFromContext(r.Context()), req.Notes)

	if err != nil {
		WriteError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, AssessmentResponse{Assessment: mapAssessmentToDTO(a)})
}

// Reject обрабатывает отклонение оценки.
func (h *AssessmentHandlers) Reject(w http.ResponseWriter, r *http.Request) {
	var req RejectAssessmentRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, err)
		return
	}

	a, err := h.svc.Reject(r.Context(), req.AssessmentID, ActorFromContext(r.Context()), req.Reason)

	if err != nil {
		WriteError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, AssessmentResponse{Assessment: mapAssessmentToDTO(a)})
}

// Reassign обрабатывает смену оценщика.
func (h *AssessmentHandlers) Reassign(w http.ResponseWriter, r *http.Request) {
	var req ReassignAssessmentRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, err)
		return
	}

	a, err := h.svc.Reassign(r.Context(), req.AssessmentID, ActorFromContext(r.Context()), req.NewAssessorID, req.Reason)

	if err != nil {
		WriteError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, AssessmentResponse{Assessment: mapAssessmentToDTO(a)})
}

// ExtendDeadline обрабатывает продление дедлайна оценки.
func (h *AssessmentHandlers) ExtendDeadline(w http.ResponseWriter, r *http.Request) {
	var req ExtendDeadlineRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, err)
		return
	}

	a, err := h.svc.ExtendDeadline(r.Context(), req.AssessmentID, ActorFromContext(r.Context()), req.NewDeadline, req.Reason)

	if err != nil {
		WriteError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, AssessmentResponse{Assessment: mapAssessmentToDTO(a)})
}

// Delete обрабатывает удаление черновика.
func (h *AssessmentHandlers) Delete(w http.ResponseWriter, r *http.Request) {
	var req DeleteAssessmentRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, err)
		return
	}

	if err := h.svc.Delete(r.Context(), req.AssessmentID, ActorFromContext(r.Context())); err != nil {
		WriteError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func mapAssessmentToDTO(a domain.Assessment) AssessmentDTO {
	return AssessmentDTO{
		AssessmentID:     a.ID,
		EmployeeID:       a.EmployeeID,
		CompetencyID:     a.CompetencyID,
		AssessorID:       a.AssessorID,
		CycleID:          a.CycleID,
		AssessmentType:   string(a.Type),
		Rating:           a.Rating,
		Comments:         a.Comments,
		DevelopmentNotes: a.DevelopmentNotes,
		Status:           string(a.Status),
		SubmittedAt:      a.SubmittedAt,
		ExtendedDeadline: a.ExtendedDeadline,
		EvidenceFiles:    a.EvidenceFiles,
		CreatedAt:        a.CreatedAt,
		UpdatedAt:        a.UpdatedAt,
	}
}

func mapAssessmentList(list []domain.Assessment) AssessmentListResponse {
	resp := AssessmentListResponse{Assessments: make([]AssessmentDTO, 0, len(list))}

	for _, a := range list {
		resp.Assessments = append(resp.Assessments, mapAssessmentToDTO(a))
	}

	return resp
}

func mapAuditEntryToDTO(e domain.AuditEntry) AuditEntryDTO {
	switch {
	case e.StatusChange != nil:
		return AuditEntryDTO{
			Type:      "status_change",
			OldStatus: string(e.StatusChange.OldStatus),
			NewStatus: string(e.StatusChange.NewStatus),
			Actor:     e.StatusChange.ChangedBy,
			Reason:    e.StatusChange.Reason,
			At:        e.StatusChange.At,
		}

	case e.DeadlineExtension != nil:
		return AuditEntryDTO{
			Type:        "deadline_extension",
			OldDeadline: e.DeadlineExtension.OldDeadline,
			NewDeadline: &e.DeadlineExtension.NewDeadline,
			Actor:       e.DeadlineExtension.ExtendedBy,
			Reason:      e.DeadlineExtension.Reason,
			At:          e.DeadlineExtension.At,
		}

	case e.Reassignment != nil:
		return AuditEntryDTO{
			Type:          "reassignment",
			OldAssessorID: e.Reassignment.OldAssessorID,
			NewAssessorID: e.Reassignment.NewAssessorID,
			Actor:         e.Reassignment.ReassignedBy,
			Reason:        e.Reassignment.Reason,
			At:            e.Reassignment.At,
		}
	}

	return AuditEntryDTO{}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
