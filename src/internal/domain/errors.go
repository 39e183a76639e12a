package domain

import (
	"errors"
	"fmt"
)

var ErrRecordNotFound = errors.New("Record not found")
var ErrRemoteUnknown = errors.New("remote call outcome unknown")
var ErrInvalidTransition = errors.New("invalid swap state transition")
var ErrStaleIntent = errors.New("swap intent was modified concurrently")
var ErrDuplicateIntent = errors.New("swap intent already exists")

type FailureKind string

const (
	FailureInvalidRequest                FailureKind = "InvalidRequest"
	FailureFeatureDisabled               FailureKind = "FeatureDisabled"
	FailureAccountExists                 FailureKind = "AccountExists"
	FailureDeploymentFailed              FailureKind = "DeploymentFailed"
	FailureTokenInitFailed               FailureKind = "TokenInitFailed"
	FailureMainAccountRegistrationFailed FailureKind = "MainAccountRegistrationFailed"
	FailureOnboardingFailed              FailureKind = "OnboardingFailed"
	FailureTransferFailed                FailureKind = "TransferFailed"
	FailureGasFundingFailed              FailureKind = "GasFundingFailed"
	FailureTransferToMainFailed          FailureKind = "TransferToMainFailed"
	FailureTransferToUserFailed          FailureKind = "TransferToUserFailed"
	FailureRefundFailed                  FailureKind = "RefundFailed"
	FailureBalanceUnavailable            FailureKind = "BalanceUnavailable"
	FailureBusinessUnavailable           FailureKind = "BusinessUnavailable"
	FailureRemoteUnknown                 FailureKind = "RemoteUnknown"
	FailureIntentLogUnavailable          FailureKind = "IntentLogUnavailable"
	FailureSwapNotFound                  FailureKind = "SwapNotFound"
	FailureInvalidTransition             FailureKind = "InvalidTransition"
)

// WorkflowError classifies a failed workflow for callers. Step names the remote
// step that failed; Reference carries a swap id when one was recorded.
type WorkflowError struct {
	Kind        FailureKind
	Step        string
	Recoverable bool
	Reference   string
	Err         error
}

func (e *WorkflowError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s at %s", e.Kind, e.Step)
	}
	return fmt.Sprintf("%s at %s: %v", e.Kind, e.Step, e.Err)
}

func (e *WorkflowError) Unwrap() error {
	return e.Err
}

func NewWorkflowError(kind FailureKind, step string, err error) *WorkflowError {
	return &WorkflowError{Kind: kind, Step: step, Err: err}
}

// RemoteOutcome picks RemoteUnknown over the definite kind when err says the
// remote call may still have landed.
func RemoteOutcome(definite FailureKind, step string, err error) *WorkflowError {
	if errors.Is(err, ErrRemoteUnknown) {
		return &WorkflowError{Kind: FailureRemoteUnknown, Step: step, Err: err}
	}
	return &WorkflowError{Kind: definite, Step: step, Err: err}
}

func AsWorkflowError(err error) (*WorkflowError, bool) {
	var wfErr *WorkflowError
	if errors.As(err, &wfErr) {
		return wfErr, true
	}
	return nil, false
}
