package httpapi

import (
	nethttp "net/http"

	"github.com/go-chi/chi/v5"

	"assessment-service/internal/logging"
	"assessment-service/internal/service"
)

// NewRouter настраивает HTTP-маршруты и middleware сервиса.
func NewRouter(
	assessmentSvc *service.AssessmentService,
	cycleSvc *service.CycleService,
	batchSvc *service.BatchService,
	logger *logging.Logger,
) nethttp.Handler {
	r := chi.NewRouter()

	r.Use(LoggingMiddleware(logger))
	r.Use(RecoveryMiddleware(logger))
	r.Use(ActorMiddleware)

	assessmentHandlers := NewAssessmentHandlers(assessmentSvc)
	cycleHandlers := NewCycleHandlers(cycleSvc)
	batchHandlers := NewBatchHandlers(batchSvc)

	r.Get("/health", HealthHandler)

	r.Route("/assessments", func(r chi.Router) {
		r.Post("/create", assessmentHandlers.Create)
		r.Post("/update", assessmentHandlers.Update)
		r.Get("/get", assessmentHandlers.Get)
		r.Get("/history", assessmentHandlers.History)
		r.Get("/listByCycle", assessmentHandlers.ListByCycle)
		r.Get("/listByAssessor", assessmentHandlers.ListByAssessor)
		r.Post("/submit", assessmentHandlers.Submit)
		r.Post("/approve", assessmentHandlers.Approve)
		r.Post("/reject", assessmentHandlers.Reject)
		r.Post("/reassign", assessmentHandlers.Reassign)
		r.Post("/extendDeadline", assessmentHandlers.ExtendDeadline)
		r.Post("/delete", assessmentHandlers.Delete)
		r.Post("/batch", batchHandlers.Apply)
		r.Post("/bulkCreate", batchHandlers.BulkCreate)
	})

	r.Route("/cycles", func(r chi.Router) {
		r.Post("/create", cycleHandlers.Create)
		r.Get("/get", cycleHandlers.Get)
		r.Get("/stats", cycleHandlers.Stats)
		r.Post("/start", cycleHandlers.Start)
		r.Post("/complete", cycleHandlers.Complete)
		r.Post("/cancel", cycleHandlers.Cancel)
		r.Post("/extendDeadline", cycleHandlers.ExtendDeadline)
		r.Post("/delete", cycleHandlers.Delete)
	})

	return r
}
