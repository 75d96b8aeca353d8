package httpapi

import (
	"encoding/json"
	"net/http"

	"assessment-service/internal/domain"
	"assessment-service/internal/service"
)

// BatchHandlers содержит HTTP-обработчики пакетных операций.
type BatchHandlers struct {
	svc *service.BatchService
}

// NewBatchHandlers создаёт набор HTTP-обработчиков пакетных операций.
func NewBatchHandlers(svc *service.BatchService) *BatchHandlers {
	return &BatchHandlers{svc: svc}
}

// Apply применяет операцию к списку оценок. Частичный успех — штатный
// результат: ответ всегда 200 с разбиением на succeeded/failed.
func (h *BatchHandlers) Apply(w http.ResponseWriter, r *http.Request) {
	var req BatchRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, err)
		return
	}

	result, err := h.svc.ApplyBatch(r.Context(), req.AssessmentIDs, service.BatchAction(req.Action),
		ActorFromContext(r.Context()), service.BatchOptions{
			Reason:        req.Reason,
			Notes:         req.Notes,
			NewAssessorID: req.NewAssessorID,
			NewDeadline:   req.NewDeadline,
		})

	if err != nil {
		WriteError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, mapBatchResult(result))
}

// BulkCreate создаёт оценки цикла пакетом.
func (h *BatchHandlers) BulkCreate(w http.ResponseWriter, r *http.Request) {
	var req BulkCreateRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, err)
		return
	}

	items := make([]service.BulkCreateItem, 0, len(req.Items))

	for _, it := range req.Items {
		items = append(items, service.BulkCreateItem{
			EmployeeID:   it.EmployeeID,
			CompetencyID: it.CompetencyID,
			AssessorID:   it.AssessorID,
			Type:         domain.AssessmentType(it.AssessmentType),
		})
	}

	result, err := h.svc.BulkCreate(r.Context(), req.CycleID, items, ActorFromContext(r.Context()))

	if err != nil {
		WriteError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, mapBatchResult(result))
}

func mapBatchResult(result service.BatchResult) BatchResponse {
	resp := BatchResponse{
		Succeeded: result.Succeeded,
		Failed:    make([]BatchFailureDTO, 0, len(result.Failed)),
		Summary: BatchSummaryDTO{
			Total:     result.Summary.Total,
			Succeeded: result.Summary.Succeeded,
			Failed:    result.Summary.Failed,
			Message:   result.Summary.Message,
		},
	}

	if resp.Succeeded == nil {
		resp.Succeeded = []string{}
	}

	for _, f := range result.Failed {
		resp.Failed = append(resp.Failed, BatchFailureDTO{
			ID:             f.ID,
			Code:           f.Code,
			Message:        f.Message,
			EmployeeName:   f.EmployeeName,
			AssessorName:   f.AssessorName,
			CompetencyName: f.CompetencyName,
		})
	}

	return resp
}
