package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"assessment-service/internal/domain"
)

// ErrorBody — обёртка для объекта ошибки в HTTP-ответе.
type ErrorBody struct {
	Error ErrorItem `json:"error"`
}

// ErrorItem описывает код, сообщение и, для ошибок валидации, проблемное поле.
type ErrorItem struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

// WriteError мапит доменные ошибки в HTTP-статусы и JSON-ответ.
func WriteError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	code := domain.ErrorCodeInternal
	msg := "internal error"
	field := ""

	var derr *domain.DomainError

	if errors.As(err, &derr) {
		code = derr.Code
		field = derr.Field

		if derr.Err != nil {
			msg = derr.Err.Error()
		}

		switch derr.Code {
		case domain.ErrorCodeValidation:
			status = http.StatusBadRequest

		case domain.ErrorCodeAuthorization:
			status = http.StatusForbidden

		case domain.ErrorCodeStateConflict,
			domain.ErrorCodeConstraint:
			status = http.StatusConflict

		case domain.ErrorCodeNotFound:
			status = http.StatusNotFound

		default:
			status = http.StatusInternalServerError
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	_ = json.NewEncoder(w).Encode(ErrorBody{
		Error: ErrorItem{
			Code:    code,
			Message: msg,
			Field:   field,
		},
	})
}
