package services

import (
	"github.com/api-sage/business-credits/src/internal/commons"
	"github.com/api-sage/business-credits/src/internal/domain"
)

const outcomeSuccess = "success"

const messageValidationFailed = "validation failed"

func invalidRequest[T any](err error) (commons.Response[T], error) {
	wfErr := &domain.WorkflowError{Kind: domain.FailureInvalidRequest, Step: "validate", Err: err}
	return commons.WorkflowErrorResponse[T](messageValidationFailed, wfErr), wfErr
}

func featureDisabled[T any](feature string) (commons.Response[T], error) {
	wfErr := &domain.WorkflowError{Kind: domain.FailureFeatureDisabled, Step: feature}
	return commons.WorkflowErrorResponse[T](feature+" is disabled", wfErr), wfErr
}
