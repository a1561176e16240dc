package connection

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Preyash-NEU/InsightIQ/pkg/apperrors"
	"github.com/Preyash-NEU/InsightIQ/pkg/client"
	"github.com/Preyash-NEU/InsightIQ/pkg/logging"
	"github.com/Preyash-NEU/InsightIQ/pkg/models"
)

// Default pacing of the modal.
const (
	DefaultConfirmDelay = 2 * time.Second
	DefaultSuccessDelay = 1500 * time.Millisecond
)

// Backend is the part of the API the tester needs.
type Backend interface {
	TestConnection(ctx context.Context, conn models.DatabaseConnection) (*models.ConnectionTestResult, error)
	ConnectDatabase(ctx context.Context, req models.DatabaseConnectRequest) (*models.DataSource, error)
}

// AfterFunc schedules f to run once after d.
type AfterFunc func(d time.Duration, f func())

func timeAfterFunc(d time.Duration, f func()) {
	time.AfterFunc(d, f)
}

// Tester drives a ModalState against the backend. It is safe for
// concurrent use; requests run on the caller's goroutine without holding
// the lock.
type Tester struct {
	backend Backend
	logger  *zap.Logger

	confirmDelay time.Duration
	successDelay time.Duration
	afterFunc    AfterFunc
	onSuccess    func(*models.DataSource)
	onChange     func(ModalState)

	mu    sync.Mutex
	state ModalState
}

// Option configures a Tester.
type Option func(*Tester)

// WithDelays overrides the confirmation and success delays.
func WithDelays(confirm, success time.Duration) Option {
	return func(t *Tester) {
		t.confirmDelay = confirm
		t.successDelay = success
	}
}

// WithAfterFunc replaces the timer used for delayed transitions.
func WithAfterFunc(fn AfterFunc) Option {
	return func(t *Tester) {
		t.afterFunc = fn
	}
}

// OnSuccess registers the completion callback run after a successful connect.
func OnSuccess(fn func(*models.DataSource)) Option {
	return func(t *Tester) {
		t.onSuccess = fn
	}
}

// OnChange registers an observer called with every new state.
func OnChange(fn func(ModalState)) Option {
	return func(t *Tester) {
		t.onChange = fn
	}
}

// NewTester creates a tester with a fresh modal.
func NewTester(backend Backend, logger *zap.Logger, opts ...Option) *Tester {
	t := &Tester{
		backend:      backend,
		logger:       logger.Named("connection"),
		confirmDelay: DefaultConfirmDelay,
		successDelay: DefaultSuccessDelay,
		afterFunc:    timeAfterFunc,
		state:        NewModal(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// State returns the current snapshot.
func (t *Tester) State() ModalState {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// update applies fn under the lock and notifies the observer outside it.
func (t *Tester) update(fn func(ModalState) ModalState) ModalState {
	t.mu.Lock()
	t.state = fn(t.state)
	s := t.state
	t.mu.Unlock()

	if t.onChange != nil {
		t.onChange(s)
	}
	return s
}

// Edit changes form fields.
func (t *Tester) Edit(fn func(*Form)) ModalState {
	return t.update(func(s ModalState) ModalState { return s.Edit(fn) })
}

// SetField changes one form field by name.
func (t *Tester) SetField(field, value string) error {
	var err error
	t.Edit(func(f *Form) { err = f.SetField(field, value) })
	return err
}

func (t *Tester) begin(op Op) (ModalState, Token, error) {
	t.mu.Lock()
	next, tok, err := t.state.Begin(op)
	if err == nil {
		t.state = next
	}
	t.mu.Unlock()

	if err == nil && t.onChange != nil {
		t.onChange(next)
	}
	return next, tok, err
}

// Test checks the form's connection. Validation failures and in-flight
// requests are refused before any network call. A failed test returns a
// ConnectionError whose message is also shown on the form.
func (t *Tester) Test(ctx context.Context) (*models.ConnectionTestResult, error) {
	s, tok, err := t.begin(OpTest)
	if err != nil {
		return nil, err
	}
	conn := s.Form.DatabaseConnection

	t.logger.Info("Testing database connection", logging.ConnectionFields(conn)...)

	res, err := t.backend.TestConnection(ctx, conn)
	if err != nil {
		msg := failureMessage(err, FallbackTestMessage)
		t.logger.Warn("Database connection test failed",
			zap.String("db_type", string(conn.DBType)),
			zap.String("error", logging.SanitizeError(err)))
		t.update(func(s ModalState) ModalState { return s.TestFailed(tok, msg) })
		return nil, &apperrors.ConnectionError{Message: msg, Err: err}
	}

	after := t.update(func(s ModalState) ModalState { return s.TestSucceeded(tok, res) })
	if !res.Succeeded() {
		msg := FallbackTestMessage
		if res != nil && res.Message != "" {
			msg = res.Message
		}
		return res, &apperrors.ConnectionError{Message: msg}
	}

	if after.Seq == tok && after.TestResult == res {
		t.afterFunc(t.confirmDelay, func() {
			t.update(func(s ModalState) ModalState { return s.ConfirmElapsed(tok) })
		})
	}
	return res, nil
}

// Connect registers the form's database as a data source. On success the
// modal shows the success step and the completion callback runs after the
// success delay unless the modal was closed in the meantime.
func (t *Tester) Connect(ctx context.Context) (*models.DataSource, error) {
	s, tok, err := t.begin(OpConnect)
	if err != nil {
		return nil, err
	}
	req := s.Form.ConnectRequest()

	t.logger.Info("Connecting database",
		append(logging.ConnectionFields(req.DatabaseConnection), zap.String("name", req.Name))...)

	created, err := t.backend.ConnectDatabase(ctx, req)
	if err != nil {
		msg := failureMessage(err, FallbackConnectMessage)
		t.logger.Warn("Database connect failed",
			zap.String("db_type", string(req.DBType)),
			zap.String("error", logging.SanitizeError(err)))
		t.update(func(s ModalState) ModalState { return s.ConnectFailed(tok, msg) })
		return nil, &apperrors.ConnectionError{Message: msg, Err: err}
	}

	after := t.update(func(s ModalState) ModalState { return s.ConnectSucceeded(tok, created) })
	if after.Step == StepSuccess && after.Seq == tok {
		t.afterFunc(t.successDelay, func() {
			if t.State().Closed {
				return
			}
			if t.onSuccess != nil {
				t.onSuccess(created)
			}
		})
	}
	return created, nil
}

// Close retires the modal; in-flight responses are discarded when they arrive.
func (t *Tester) Close() {
	t.update(func(s ModalState) ModalState { return s.Close() })
}

// failureMessage prefers the backend's explanation over the generic fallback.
func failureMessage(err error, fallback string) string {
	if detail, ok := client.DetailOf(err); ok {
		return logging.Redact(detail)
	}
	return fallback
}
