package httpapi

import (
	"encoding/json"
	"net/http"

	"assessment-service/internal/domain"
	"assessment-service/internal/service"
)

// CycleHandlers содержит HTTP-обработчики, связанные с циклами оценки.
type CycleHandlers struct {
	svc *service.CycleService
}

// NewCycleHandlers создаёт набор HTTP-обработчиков для работы с циклами.
func NewCycleHandlers(svc *service.CycleService) *CycleHandlers {
	return &CycleHandlers{svc: svc}
}

// Create обрабатывает создание цикла.
func (h *CycleHandlers) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateCycleRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, err)
		return
	}

	types := make([]domain.AssessmentType, 0, len(req.AssessmentTypes))

	for _, t := range req.AssessmentTypes {
		types = append(types, domain.AssessmentType(t))
	}

	c, err := h.svc.Create(r.Context(), service.CreateCycleInput{
		Name:            req.Name,
		StartDate:       req.StartDate,
		EndDate:         req.EndDate,
		TargetEmployees: req.TargetEmployees,
		AssessmentTypes: types,
		Description:     req.Description,
	}, ActorFromContext(r.Context()))

	if err != nil {
		WriteError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, CycleResponse{Cycle: mapCycleToDTO(c)})
}

// Get возвращает цикл по идентификатору из query-параметра id.
func (h *CycleHandlers) Get(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")

	if id == "" {
		WriteError(w, domain.NewDomainError(domain.ErrorCodeNotFound, domain.ErrNotFound))
		return
	}

	c, err := h.svc.Get(r.Context(), id)

	if err != nil {
		WriteError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, CycleResponse{Cycle: mapCycleToDTO(c)})
}

// Start обрабатывает запуск цикла.
func (h *CycleHandlers) Start(w http.ResponseWriter, r *http.Request) {
	var req StartCycleRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, err)
		return
	}

	c, err := h.svc.Start(r.Context(), req.CycleID, ActorFromContext(r.Context()), req.AdminOverride)

	if err != nil {
		WriteError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, CycleResponse{Cycle: mapCycleToDTO(c)})
}

// Complete обрабатывает завершение цикла.
func (h *CycleHandlers) Complete(w http.ResponseWriter, r *http.Request) {
	var req CompleteCycleRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, err)
		return
	}

	c, err := h.svc.Complete(r.Context(), req.CycleID, ActorFromContext(r.Context()), req.Force)

	if err != nil {
		WriteError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, CycleResponse{Cycle: mapCycleToDTO(c)})
}

// Cancel обрабатывает отмену цикла.
func (h *CycleHandlers) Cancel(w http.ResponseWriter, r *http.Request) {
	var req CancelCycleRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, err)
		return
	}

	c, err := h.svc.Cancel(r.Context(), req.CycleID, ActorFromContext(r.Context()), req.Reason)

	if err != nil {
		WriteError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, CycleResponse{Cycle: mapCycleToDTO(c)})
}

// ExtendDeadline обрабатывает продление дедлайна цикла.
func (h *CycleHandlers) ExtendDeadline(w http.ResponseWriter, r *http.Request) {
	var req ExtendCycleDeadlineRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, err)
		return
	}

	c, err := h.svc.ExtendDeadline(r.Context(), req.CycleID, ActorFromContext(r.Context()), req.NewEndDate, req.Reason)

	if err != nil {
		WriteError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, CycleResponse{Cycle: mapCycleToDTO(c)})
}

// Delete обрабатывает удаление цикла без привязанных оценок.
func (h *CycleHandlers) Delete(w http.ResponseWriter, r *http.Request) {
	var req DeleteCycleRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, err)
		return
	}

	if err := h.svc.Delete(r.Context(), req.CycleID, ActorFromContext(r.Context())); err != nil {
		WriteError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Stats возвращает производную статистику завершённости цикла.
func (h *CycleHandlers) Stats(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")

	if id == "" {
		WriteError(w, domain.NewDomainError(domain.ErrorCodeNotFound, domain.ErrNotFound))
		return
	}

	stats, err := h.svc.Stats(r.Context(), id)

	if err != nil {
		WriteError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, CycleStatsResponse{
		CycleID:           id,
		Total:             stats.Total,
		Draft:             stats.Draft,
		Submitted:         stats.Submitted,
		Approved:          stats.Approved,
		Rejected:          stats.Rejected,
		CompletionPercent: stats.CompletionPercent,
	})
}

func mapCycleToDTO(c domain.AssessmentCycle) CycleDTO {
	types := make([]string, 0, len(c.AssessmentTypes))

	for _, t := range c.AssessmentTypes {
		types = append(types, string(t))
	}

	return CycleDTO{
		CycleID:         c.ID,
		Name:            c.Name,
		Status:          string(c.Status),
		StartDate:       c.StartDate,
		EndDate:         c.EndDate,
		TargetEmployees: c.TargetEmployees,
		AssessmentTypes: types,
		Description:     c.Description,
		CreatedAt:       c.CreatedAt,
		UpdatedAt:       c.UpdatedAt,
	}
}
