package domain

import "errors"

// ErrorCodeValidation указывает на нарушение правил заполнения полей.
// Остальные коды описывают классы доменных ошибок для HTTP-слоя.
const (
	ErrorCodeValidation    = "VALIDATION"
	ErrorCodeAuthorization = "AUTHORIZATION"
	ErrorCodeStateConflict = "STATE_CONFLICT"
	ErrorCodeNotFound      = "NOT_FOUND"
	ErrorCodeConstraint    = "CONSTRAINT"
	ErrorCodeInternal      = "INTERNAL"
)

// ErrNotFound возвращается, когда сущность не найдена.
// Остальные ошибки описывают типовые доменные ситуации без привязки к коду.
var (
	ErrNotFound           = errors.New("not found")
	ErrRatingRequired     = errors.New("rating is required for submission")
	ErrRatingOutOfRange   = errors.New("rating must be between 1 and 5")
	ErrCommentsRequired   = errors.New("comments are required for extreme ratings")
	ErrReasonRequired     = errors.New("reason is required")
	ErrAccessDenied       = errors.New("access denied")
	ErrSelfApproval       = errors.New("assessor cannot approve own assessment")
	ErrIllegalTransition  = errors.New("illegal status transition")
	ErrStaleState         = errors.New("assessment was changed by a concurrent request")
	ErrDuplicate          = errors.New("assessment already exists for this combination")
	ErrCycleNotActive     = errors.New("assessment cycle is not active")
	ErrDeadlineNotLater   = errors.New("new deadline must be after the current one")
	ErrCycleHasDrafts     = errors.New("cycle has assessments still in draft")
	ErrCycleNotStarted    = errors.New("cycle start date has not been reached")
	ErrCycleHasAssessment = errors.New("cycle has associated assessments")
	ErrNotDraft           = errors.New("assessment is no longer a draft")
)

// DomainError оборачивает доменную ошибку с кодом для HTTP-слоя.
// Field заполняется для ошибок валидации, чтобы отдать полевую детализацию.
//
//revive:disable-next-line:exported
type DomainError struct {
	Code  string
	Field string
	Err   error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}

	return e.Code
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError создаёт новую DomainError с указанным кодом и исходной ошибкой.
func NewDomainError(code string, err error) *DomainError {
	return &DomainError{
		Code: code,
		Err:  err,
	}
}

// NewValidationError создаёт ошибку валидации с указанием проблемного поля.
func NewValidationError(field string, err error) *DomainError {
	return &DomainError{
		Code:  ErrorCodeValidation,
		Field: field,
		Err:   err,
	}
}

// ErrorCodeOf возвращает доменный код ошибки или INTERNAL для неизвестных.
func ErrorCodeOf(err error) string {
	var derr *DomainError

	if errors.As(err, &derr) {
		return derr.Code
	}

	if errors.Is(err, ErrNotFound) {
		return ErrorCodeNotFound
	}

	return ErrorCodeInternal
}
