// Package notify — хук уведомлений, вызываемый оркестратором после успешных
// переходов статуса. Доставка — забота внешней инфраструктуры, поэтому
// интерфейс fire-and-forget: ошибки отправки не влияют на результат операции.
package notify

import (
	"context"

	"assessment-service/internal/domain"
	"assessment-service/internal/logging"
)

// Sender задаёт интерфейс отправки уведомлений о событиях оценки.
type Sender interface {
	AssessmentSubmitted(ctx context.Context, a domain.Assessment)
	AssessmentApproved(ctx context.Context, a domain.Assessment)
	AssessmentRejected(ctx context.Context, a domain.Assessment)
}

// LogSender — реализация Sender, пишущая события в лог.
// Используется, пока не подключён реальный канал доставки.
type LogSender struct {
	logger *logging.Logger
}

// NewLogSender создаёт новый LogSender.
func NewLogSender(logger *logging.Logger) *LogSender {
	return &LogSender{logger: logger}
}

// AssessmentSubmitted логирует отправку оценки на согласование.
func (s *LogSender) AssessmentSubmitted(ctx context.Context, a domain.Assessment) {
	s.logger.Info("notify: assessment submitted",
		"assessment_id", a.ID,
		"employee_id", a.EmployeeID,
		"assessor_id", a.AssessorID,
	)
}

// AssessmentApproved логирует согласование оценки.
func (s *LogSender) AssessmentApproved(ctx context.Context, a domain.Assessment) {
	s.logger.Info("notify: assessment approved",
		"assessment_id", a.ID,
		"employee_id", a.EmployeeID,
	)
}

// AssessmentRejected логирует отклонение оценки.
func (s *LogSender) AssessmentRejected(ctx context.Context, a domain.Assessment) {
	s.logger.Info("notify: assessment rejected",
		"assessment_id", a.ID,
		"employee_id", a.EmployeeID,
	)
}
