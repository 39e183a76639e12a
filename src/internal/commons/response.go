package commons

import "github.com/api-sage/business-credits/src/internal/domain"

type Response[T any] struct {
	Success bool     `json:"success"`
	Message string   `json:"message"`
	Data    *T       `json:"data,omitempty"`
	Errors  []string `json:"errors,omitempty"`
	Failure *Failure `json:"failure,omitempty"`
}

// Failure is the client-visible classification of a failed workflow.
type Failure struct {
	Kind        domain.FailureKind `json:"kind"`
	Step        string             `json:"step"`
	Recoverable bool               `json:"recoverable"`
	Reference   string             `json:"reference,omitempty"`
}

func SuccessResponse[T any](message string, data T) Response[T] {
	return Response[T]{
		Success: true,
		Message: message,
		Data:    &data,
	}
}

func ErrorResponse[T any](message string, errors ...string) Response[T] {
	return Response[T]{
		Success: false,
		Message: message,
		Errors:  errors,
	}
}

// WorkflowErrorResponse builds the failure envelope for err. Errors that are not
// a *domain.WorkflowError carry no failure block.
func WorkflowErrorResponse[T any](message string, err error) Response[T] {
	response := ErrorResponse[T](message)
	if err != nil {
		response.Errors = []string{err.Error()}
	}

	wfErr, ok := domain.AsWorkflowError(err)
	if !ok {
		return response
	}

	if wfErr.Err != nil {
		response.Errors = []string{wfErr.Err.Error()}
	}
	response.Failure = &Failure{
		Kind:        wfErr.Kind,
		Step:        wfErr.Step,
		Recoverable: wfErr.Recoverable,
		Reference:   wfErr.Reference,
	}
	return response
}
