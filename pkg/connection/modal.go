package connection

import (
	"errors"

	"github.com/Preyash-NEU/InsightIQ/pkg/apperrors"
	"github.com/Preyash-NEU/InsightIQ/pkg/models"
)

// Step is the visible stage of the connection modal.
type Step string

const (
	StepForm    Step = "form"
	StepTesting Step = "testing"
	StepSuccess Step = "success"
)

// Op is the request a modal is waiting on.
type Op string

const (
	OpTest    Op = "test"
	OpConnect Op = "connect"
)

// Token identifies one outstanding request. Events carrying any other token
// are stale and leave the state unchanged.
type Token uint64

// Generic messages used when the backend gives no explanation.
const (
	FallbackTestMessage    = "Connection test failed"
	FallbackConnectMessage = "Connection failed"
)

var (
	// ErrClosed is returned when an action targets a closed modal.
	ErrClosed = errors.New("connection modal is closed")
	// ErrAlreadyConnected is returned once the connect step has succeeded.
	ErrAlreadyConnected = errors.New("database already connected")
)

// ModalState is an immutable snapshot of the connection modal. Every
// transition returns a new value.
type ModalState struct {
	Step  Step
	Form  Form
	Error string

	// TestResult is the last successful test, shown inline until the next request.
	TestResult *models.ConnectionTestResult
	// Created is the data source returned by a successful connect.
	Created *models.DataSource

	Op     Op    // request in flight, empty when idle
	Seq    Token // token of the latest request
	Closed bool
}

// NewModal returns the initial modal state.
func NewModal() ModalState {
	return ModalState{Step: StepForm, Form: NewForm()}
}

// Busy reports whether test and connect controls must be disabled.
func (s ModalState) Busy() bool {
	return s.Step != StepForm || s.Closed
}

// CanSubmit reports whether test and connect controls are enabled.
func (s ModalState) CanSubmit() bool {
	return !s.Busy() && s.Form.Submittable()
}

// Edit applies fn to the form. Any edit clears the displayed error.
func (s ModalState) Edit(fn func(*Form)) ModalState {
	if s.Closed || s.Step == StepSuccess {
		return s
	}
	fn(&s.Form)
	s.Error = ""
	return s
}

// Begin starts a test or connect request.
func (s ModalState) Begin(op Op) (ModalState, Token, error) {
	switch {
	case s.Closed:
		return s, 0, ErrClosed
	case s.Step == StepSuccess:
		return s, 0, ErrAlreadyConnected
	case s.Step == StepTesting:
		return s, 0, apperrors.ErrOperationInFlight
	}
	if err := s.Form.Validate(); err != nil {
		return s, 0, err
	}
	if op == OpConnect {
		if err := CheckTableName(s.Form.TableName); err != nil {
			return s, 0, err
		}
	}

	s.Seq++
	s.Step = StepTesting
	s.Op = op
	s.Error = ""
	s.TestResult = nil
	return s, s.Seq, nil
}

func (s ModalState) current(tok Token, op Op) bool {
	return !s.Closed && tok == s.Seq && s.Op == op && s.Step == StepTesting
}

// TestSucceeded records a test response. A non-success status is a failure
// even though the request itself completed. On success the modal stays in
// the testing step until ConfirmElapsed.
func (s ModalState) TestSucceeded(tok Token, res *models.ConnectionTestResult) ModalState {
	if !s.current(tok, OpTest) || s.TestResult != nil {
		return s
	}
	if !res.Succeeded() {
		msg := FallbackTestMessage
		if res != nil && res.Message != "" {
			msg = res.Message
		}
		return s.TestFailed(tok, msg)
	}
	s.TestResult = res
	return s
}

// ConfirmElapsed returns to the form after the success confirmation,
// keeping every entered field.
func (s ModalState) ConfirmElapsed(tok Token) ModalState {
	if !s.current(tok, OpTest) || s.TestResult == nil {
		return s
	}
	s.Step = StepForm
	s.Op = ""
	return s
}

// TestFailed returns to the form with msg.
func (s ModalState) TestFailed(tok Token, msg string) ModalState {
	if !s.current(tok, OpTest) || s.TestResult != nil {
		return s
	}
	return s.fail(msg, FallbackTestMessage)
}

// ConnectSucceeded moves to the success step.
func (s ModalState) ConnectSucceeded(tok Token, created *models.DataSource) ModalState {
	if !s.current(tok, OpConnect) {
		return s
	}
	s.Step = StepSuccess
	s.Op = ""
	s.Created = created
	return s
}

// ConnectFailed returns to the form with msg.
func (s ModalState) ConnectFailed(tok Token, msg string) ModalState {
	if !s.current(tok, OpConnect) {
		return s
	}
	return s.fail(msg, FallbackConnectMessage)
}

func (s ModalState) fail(msg, fallback string) ModalState {
	if msg == "" {
		msg = fallback
	}
	s.Step = StepForm
	s.Op = ""
	s.Error = msg
	return s
}

// Close retires the modal. Responses that arrive afterwards are ignored.
func (s ModalState) Close() ModalState {
	s.Closed = true
	s.Seq++
	s.Op = ""
	return s
}
