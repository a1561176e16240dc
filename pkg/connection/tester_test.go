package connection

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Preyash-NEU/InsightIQ/pkg/apperrors"
	"github.com/Preyash-NEU/InsightIQ/pkg/client"
	"github.com/Preyash-NEU/InsightIQ/pkg/models"
)

type mockBackend struct {
	mu          sync.Mutex
	testCalls   int
	connectReqs []models.DatabaseConnectRequest

	testResult *models.ConnectionTestResult
	testErr    error
	created    *models.DataSource
	connectErr error

	// block, when set, holds requests until closed
	block chan struct{}
}

func (m *mockBackend) TestConnection(ctx context.Context, conn models.DatabaseConnection) (*models.ConnectionTestResult, error) {
	m.mu.Lock()
	m.testCalls++
	block := m.block
	m.mu.Unlock()
	if block != nil {
		<-block
	}
	return m.testResult, m.testErr
}

func (m *mockBackend) ConnectDatabase(ctx context.Context, req models.DatabaseConnectRequest) (*models.DataSource, error) {
	m.mu.Lock()
	m.connectReqs = append(m.connectReqs, req)
	block := m.block
	m.mu.Unlock()
	if block != nil {
		<-block
	}
	return m.created, m.connectErr
}

// fakeTimer records scheduled callbacks so tests decide when time passes.
type fakeTimer struct {
	mu     sync.Mutex
	delays []time.Duration
	funcs  []func()
}

func (f *fakeTimer) AfterFunc(d time.Duration, fn func()) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.delays = append(f.delays, d)
	f.funcs = append(f.funcs, fn)
}

func (f *fakeTimer) fire() {
	f.mu.Lock()
	funcs := f.funcs
	f.funcs = nil
	f.mu.Unlock()
	for _, fn := range funcs {
		fn()
	}
}

func newFilledTester(backend Backend, timer *fakeTimer, opts ...Option) *Tester {
	opts = append([]Option{WithAfterFunc(timer.AfterFunc)}, opts...)
	tester := NewTester(backend, zap.NewNop(), opts...)
	tester.Edit(func(f *Form) {
		f.SetDBType(models.DBMySQL)
		f.Host = "db.local"
		f.Database = "sales"
		f.Username = "u"
		f.Password = "p"
		f.Name = "Sales DB"
	})
	return tester
}

func TestTester_TestSuccess(t *testing.T) {
	backend := &mockBackend{testResult: &models.ConnectionTestResult{Status: "success", Message: "ok", Version: "8.0"}}
	timer := &fakeTimer{}
	tester := newFilledTester(backend, timer)
	before := tester.State().Form

	res, err := tester.Test(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "8.0", res.Version)

	s := tester.State()
	assert.Equal(t, StepTesting, s.Step)
	assert.NotNil(t, s.TestResult)
	require.Len(t, timer.delays, 1)
	assert.Equal(t, DefaultConfirmDelay, timer.delays[0])

	timer.fire()
	s = tester.State()
	assert.Equal(t, StepForm, s.Step)
	assert.Equal(t, before, s.Form)
	assert.Empty(t, s.Error)
	assert.Equal(t, 1, backend.testCalls)
}

func TestTester_TestNonSuccessStatus(t *testing.T) {
	backend := &mockBackend{testResult: &models.ConnectionTestResult{Status: "error", Message: "bad credentials"}}
	timer := &fakeTimer{}
	tester := newFilledTester(backend, timer)

	_, err := tester.Test(context.Background())
	var connErr *apperrors.ConnectionError
	require.ErrorAs(t, err, &connErr)
	assert.Equal(t, "bad credentials", connErr.Message)

	s := tester.State()
	assert.Equal(t, StepForm, s.Step)
	assert.Equal(t, "bad credentials", s.Error)
	assert.Empty(t, timer.delays)
}

func TestTester_TestTransportErrorUsesDetail(t *testing.T) {
	backend := &mockBackend{testErr: &client.APIError{Status: http.StatusBadRequest, Detail: "Database connection failed: password=hunter2 rejected"}}
	tester := newFilledTester(backend, &fakeTimer{})

	_, err := tester.Test(context.Background())
	require.Error(t, err)
	assert.Equal(t, "Database connection failed: password=[REDACTED] rejected", err.Error())
	assert.Equal(t, err.Error(), tester.State().Error)

	var apiErr *client.APIError
	assert.ErrorAs(t, err, &apiErr)
}

func TestTester_TestTransportErrorFallback(t *testing.T) {
	backend := &mockBackend{testErr: errors.New("dial tcp: connection refused")}
	tester := newFilledTester(backend, &fakeTimer{})

	_, err := tester.Test(context.Background())
	require.Error(t, err)
	assert.Equal(t, FallbackTestMessage, tester.State().Error)
}

func TestTester_ValidationBlocksNetwork(t *testing.T) {
	backend := &mockBackend{}
	tester := NewTester(backend, zap.NewNop(), WithAfterFunc((&fakeTimer{}).AfterFunc))

	_, err := tester.Test(context.Background())
	assert.True(t, apperrors.IsValidation(err))
	_, err = tester.Connect(context.Background())
	assert.True(t, apperrors.IsValidation(err))

	assert.Zero(t, backend.testCalls)
	assert.Empty(t, backend.connectReqs)
	assert.Empty(t, tester.State().Error)
}

func TestTester_RefusesSecondRequestWhileTesting(t *testing.T) {
	backend := &mockBackend{
		testResult: &models.ConnectionTestResult{Status: "success"},
		block:      make(chan struct{}),
	}
	tester := newFilledTester(backend, &fakeTimer{})

	done := make(chan error, 1)
	go func() {
		_, err := tester.Test(context.Background())
		done <- err
	}()

	require.Eventually(t, func() bool { return tester.State().Step == StepTesting }, time.Second, time.Millisecond)

	_, err := tester.Connect(context.Background())
	assert.ErrorIs(t, err, apperrors.ErrOperationInFlight)
	_, err = tester.Test(context.Background())
	assert.ErrorIs(t, err, apperrors.ErrOperationInFlight)

	close(backend.block)
	require.NoError(t, <-done)
	assert.Equal(t, 1, backend.testCalls)
	assert.Empty(t, backend.connectReqs)
}

func TestTester_ConnectSuccessRunsCallbackAfterDelay(t *testing.T) {
	created := &models.DataSource{ID: uuid.New(), Name: "Sales DB", Type: models.TypeDatabaseMySQL}
	backend := &mockBackend{created: created}
	timer := &fakeTimer{}

	var got *models.DataSource
	tester := newFilledTester(backend, timer,
		WithDelays(time.Second, 3*time.Second),
		OnSuccess(func(ds *models.DataSource) { got = ds }))

	ds, err := tester.Connect(context.Background())
	require.NoError(t, err)
	assert.Same(t, created, ds)
	assert.Equal(t, StepSuccess, tester.State().Step)

	require.Len(t, backend.connectReqs, 1)
	assert.Equal(t, "Sales DB", backend.connectReqs[0].Name)
	assert.Equal(t, 3306, backend.connectReqs[0].Port)

	assert.Nil(t, got, "callback must wait for the success delay")
	require.Equal(t, []time.Duration{3 * time.Second}, timer.delays)
	timer.fire()
	assert.Same(t, created, got)
}

func TestTester_ConnectFailure(t *testing.T) {
	backend := &mockBackend{connectErr: &client.APIError{Status: http.StatusBadRequest, Detail: "Table 'x' not found"}}
	timer := &fakeTimer{}
	tester := newFilledTester(backend, timer)

	_, err := tester.Connect(context.Background())
	require.Error(t, err)

	s := tester.State()
	assert.Equal(t, StepForm, s.Step)
	assert.Equal(t, "Table 'x' not found", s.Error)
	assert.Empty(t, timer.delays)

	// recoverable: edit then retry
	tester.Edit(func(f *Form) { f.TableName = "orders" })
	assert.Empty(t, tester.State().Error)
	backend.connectErr = nil
	backend.created = &models.DataSource{ID: uuid.New()}
	_, err = tester.Connect(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "orders", backend.connectReqs[1].TableName)
}

func TestTester_CloseDiscardsLateConnect(t *testing.T) {
	backend := &mockBackend{
		created: &models.DataSource{ID: uuid.New()},
		block:   make(chan struct{}),
	}
	timer := &fakeTimer{}
	called := false
	tester := newFilledTester(backend, timer, OnSuccess(func(*models.DataSource) { called = true }))

	done := make(chan struct{})
	go func() {
		defer close(done)
		tester.Connect(context.Background())
	}()
	require.Eventually(t, func() bool { return tester.State().Step == StepTesting }, time.Second, time.Millisecond)

	tester.Close()
	close(backend.block)
	<-done

	s := tester.State()
	assert.True(t, s.Closed)
	assert.NotEqual(t, StepSuccess, s.Step)
	assert.Nil(t, s.Created)
	timer.fire()
	assert.False(t, called)
}

func TestTester_CloseSuppressesPendingCallback(t *testing.T) {
	backend := &mockBackend{created: &models.DataSource{ID: uuid.New()}}
	timer := &fakeTimer{}
	called := false
	tester := newFilledTester(backend, timer, OnSuccess(func(*models.DataSource) { called = true }))

	_, err := tester.Connect(context.Background())
	require.NoError(t, err)
	tester.Close()
	timer.fire()
	assert.False(t, called)
}

func TestTester_OnChangeSeesTransitions(t *testing.T) {
	backend := &mockBackend{testResult: &models.ConnectionTestResult{Status: "success"}}
	timer := &fakeTimer{}

	var mu sync.Mutex
	var steps []Step
	tester := newFilledTester(backend, timer, OnChange(func(s ModalState) {
		mu.Lock()
		steps = append(steps, s.Step)
		mu.Unlock()
	}))
	steps = nil

	_, err := tester.Test(context.Background())
	require.NoError(t, err)
	timer.fire()

	assert.Equal(t, []Step{StepTesting, StepTesting, StepForm}, steps)
}
