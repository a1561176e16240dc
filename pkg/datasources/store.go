// Package datasources keeps the client's view of the user's data sources in
// step with the backend.
package datasources

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Preyash-NEU/InsightIQ/pkg/apperrors"
	"github.com/Preyash-NEU/InsightIQ/pkg/client"
	"github.com/Preyash-NEU/InsightIQ/pkg/logging"
	"github.com/Preyash-NEU/InsightIQ/pkg/models"
	"github.com/Preyash-NEU/InsightIQ/pkg/workers"
)

// DefaultPageSize matches the backend's default list limit.
const DefaultPageSize = 100

// Backend is the part of the API the store needs.
type Backend interface {
	ListDataSources(ctx context.Context, skip, limit int) ([]*models.DataSource, error)
	Reprocess(ctx context.Context, id uuid.UUID) (*models.ReprocessResult, error)
	DeleteDataSource(ctx context.Context, id uuid.UUID) (*models.DeleteResult, error)
	UpdateDataSource(ctx context.Context, id uuid.UUID, update models.DataSourceUpdate) (*models.DataSource, error)
}

// Store holds the authoritative list plus per-operation flags. Independent
// operations may overlap: refreshes are sequenced, reprocess markers are kept
// per id.
type Store struct {
	backend  Backend
	pool     *workers.Pool
	logger   *zap.Logger
	pageSize int
	onChange func()

	mu           sync.Mutex
	sources      []*models.DataSource
	refreshing   int
	startedSeq   uint64
	appliedSeq   uint64
	reprocessing map[uuid.UUID]bool
	failures     map[uuid.UUID]*apperrors.ProcessingError
}

// Option configures a Store.
type Option func(*Store)

// WithPageSize sets the page size used when listing.
func WithPageSize(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.pageSize = n
		}
	}
}

// WithPool sets the pool used by ReprocessAll.
func WithPool(p *workers.Pool) Option {
	return func(s *Store) {
		s.pool = p
	}
}

// OnChange registers a callback run after every state change.
func OnChange(fn func()) Option {
	return func(s *Store) {
		s.onChange = fn
	}
}

func NewStore(backend Backend, logger *zap.Logger, opts ...Option) *Store {
	s := &Store{
		backend:      backend,
		logger:       logger.Named("datasources"),
		pageSize:     DefaultPageSize,
		reprocessing: make(map[uuid.UUID]bool),
		failures:     make(map[uuid.UUID]*apperrors.ProcessingError),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.pool == nil {
		s.pool = workers.NewPool(workers.Config{}, logger)
	}
	return s
}

func (s *Store) changed() {
	if s.onChange != nil {
		s.onChange()
	}
}

// List returns copies of the known data sources in server order.
func (s *Store) List() []*models.DataSource {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*models.DataSource, len(s.sources))
	for i, ds := range s.sources {
		out[i] = ds.Clone()
	}
	return out
}

// Get returns a copy of one data source.
func (s *Store) Get(id uuid.UUID) (*models.DataSource, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.indexOf(id); i >= 0 {
		return s.sources[i].Clone(), true
	}
	return nil, false
}

// Loading reports whether a refresh is in flight.
func (s *Store) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.refreshing > 0
}

// IsReprocessing reports whether id has a reprocess in flight.
func (s *Store) IsReprocessing(id uuid.UUID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reprocessing[id]
}

// ReprocessError returns the failure of the last reprocess of id, if any.
func (s *Store) ReprocessError(id uuid.UUID) *apperrors.ProcessingError {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.failures[id]
}

func (s *Store) indexOf(id uuid.UUID) int {
	return slices.IndexFunc(s.sources, func(ds *models.DataSource) bool { return ds.ID == id })
}

// Refresh refetches the full list. A response that arrives after a newer
// refresh has been applied is discarded.
func (s *Store) Refresh(ctx context.Context) error {
	s.mu.Lock()
	s.startedSeq++
	seq := s.startedSeq
	s.refreshing++
	s.mu.Unlock()
	s.changed()

	sources, err := s.fetchAll(ctx)

	s.mu.Lock()
	s.refreshing--
	applied := false
	if err == nil && seq > s.appliedSeq {
		s.sources = sources
		s.appliedSeq = seq
		applied = true
	}
	s.mu.Unlock()
	s.changed()

	if err != nil {
		return fmt.Errorf("failed to list data sources: %w", err)
	}
	if !applied {
		s.logger.Debug("Discarded stale data source list", zap.Uint64("seq", seq))
	}
	return nil
}

func (s *Store) fetchAll(ctx context.Context) ([]*models.DataSource, error) {
	var all []*models.DataSource
	for skip := 0; ; skip += s.pageSize {
		page, err := s.backend.ListDataSources(ctx, skip, s.pageSize)
		if err != nil {
			return nil, err
		}
		for _, ds := range page {
			if err := ds.CheckQualityInvariant(); err != nil {
				s.logger.Warn("Inconsistent quality fields from server", zap.Error(err))
			}
		}
		all = append(all, page...)
		if len(page) < s.pageSize {
			return all, nil
		}
	}
}

// Reprocess reruns the server pipeline for one source and then refetches the
// list. A second reprocess of the same id while one is in flight is refused;
// other ids are unaffected. A failed run returns a *apperrors.ProcessingError
// and leaves the previously known quality fields in place.
func (s *Store) Reprocess(ctx context.Context, id uuid.UUID) (*models.ReprocessResult, error) {
	if err := s.beginReprocess(id); err != nil {
		return nil, err
	}
	prev, _ := s.Get(id)

	res, procErr := s.reprocess(ctx, id)

	if err := s.Refresh(ctx); err != nil {
		s.logger.Warn("Failed to refresh after reprocess",
			zap.String("data_source_id", id.String()),
			zap.String("error", logging.SanitizeError(err)))
	}
	s.finishReprocess(id, procErr, map[uuid.UUID]*models.DataSource{id: prev})

	if procErr != nil {
		return res, procErr
	}
	return res, nil
}

// ReprocessAll reprocesses ids with bounded concurrency, then refetches the
// list once. Results are in id order; ids already in flight are refused
// individually.
func (s *Store) ReprocessAll(ctx context.Context, ids []uuid.UUID, onProgress func(done, total int)) []workers.Result[*models.ReprocessResult] {
	out := make([]workers.Result[*models.ReprocessResult], len(ids))
	prev := make(map[uuid.UUID]*models.DataSource, len(ids))
	jobs := make([]workers.Job[*models.ReprocessResult], 0, len(ids))
	slots := make([]int, 0, len(ids))

	for i, id := range ids {
		out[i].ID = id.String()
		if err := s.beginReprocess(id); err != nil {
			out[i].Err = err
			continue
		}
		prev[id], _ = s.Get(id)
		slots = append(slots, i)
		jobs = append(jobs, workers.Job[*models.ReprocessResult]{
			ID: id.String(),
			Run: func(ctx context.Context) (*models.ReprocessResult, error) {
				res, procErr := s.reprocess(ctx, id)
				if procErr != nil {
					return res, procErr
				}
				return res, nil
			},
		})
	}
	if len(jobs) == 0 {
		return out
	}

	results := workers.Run(ctx, s.pool, jobs, onProgress)

	if err := s.Refresh(ctx); err != nil {
		s.logger.Warn("Failed to refresh after batch reprocess", zap.String("error", logging.SanitizeError(err)))
	}
	for k, r := range results {
		id := ids[slots[k]]
		var procErr *apperrors.ProcessingError
		if r.Err != nil && !errors.As(r.Err, &procErr) {
			procErr = &apperrors.ProcessingError{SourceID: id.String(), Message: r.Err.Error(), Err: r.Err}
		}
		s.finishReprocess(id, procErr, prev)
		out[slots[k]] = r
	}
	return out
}

func (s *Store) beginReprocess(id uuid.UUID) error {
	s.mu.Lock()
	if s.reprocessing[id] {
		s.mu.Unlock()
		return fmt.Errorf("reprocess %s: %w", id, apperrors.ErrOperationInFlight)
	}
	s.reprocessing[id] = true
	delete(s.failures, id)
	s.mu.Unlock()
	s.changed()
	return nil
}

// finishReprocess clears the marker for id. On failure it records the error
// and restores quality fields the refetch may have dropped.
func (s *Store) finishReprocess(id uuid.UUID, procErr *apperrors.ProcessingError, prev map[uuid.UUID]*models.DataSource) {
	s.mu.Lock()
	delete(s.reprocessing, id)
	if procErr != nil {
		s.failures[id] = procErr
		if i := s.indexOf(id); i >= 0 {
			s.sources[i] = keepQuality(s.sources[i], prev[id])
		}
	}
	s.mu.Unlock()
	s.changed()
}

// keepQuality carries the last known-good quality fields over a record that
// no longer has them.
func keepQuality(current, prev *models.DataSource) *models.DataSource {
	if prev == nil || !prev.Processed() || current.Processed() {
		return current
	}
	c := current.Clone()
	c.QualityScore = prev.QualityScore
	c.QualityLevel = prev.QualityLevel
	return c
}

// reprocess performs the call. A transport failure and a success:false body
// both yield a ProcessingError.
func (s *Store) reprocess(ctx context.Context, id uuid.UUID) (*models.ReprocessResult, *apperrors.ProcessingError) {
	s.logger.Info("Reprocessing data source", zap.String("data_source_id", id.String()))

	res, err := s.backend.Reprocess(ctx, id)
	if err != nil {
		msg := err.Error()
		if detail, ok := client.DetailOf(err); ok {
			msg = detail
		}
		s.logger.Error("Reprocess request failed",
			zap.String("data_source_id", id.String()),
			zap.String("error", logging.SanitizeError(err)))
		return nil, &apperrors.ProcessingError{SourceID: id.String(), Message: logging.Redact(msg), Err: err}
	}
	if !res.Success {
		s.logger.Warn("Reprocess pipeline failed",
			zap.String("data_source_id", id.String()),
			zap.String("error_type", res.ErrorType))
		return res, &apperrors.ProcessingError{SourceID: id.String(), Message: res.Error, ErrorType: res.ErrorType}
	}

	s.logger.Info("Reprocess complete",
		zap.String("data_source_id", id.String()),
		zap.Any("quality_score", res.QualityScore))
	return res, nil
}

// Delete removes a data source. The local list only changes once the server
// has confirmed.
func (s *Store) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.backend.DeleteDataSource(ctx, id); err != nil {
		return fmt.Errorf("failed to delete data source %s: %w", id, err)
	}

	s.mu.Lock()
	if i := s.indexOf(id); i >= 0 {
		s.sources = slices.Delete(slices.Clone(s.sources), i, i+1)
	}
	delete(s.failures, id)
	s.mu.Unlock()
	s.changed()
	return nil
}

// Update applies patch locally, sends it, and then either adopts the server's
// record or restores the previous one.
func (s *Store) Update(ctx context.Context, id uuid.UUID, patch models.DataSourceUpdate) (*models.DataSource, error) {
	s.mu.Lock()
	i := s.indexOf(id)
	if i < 0 {
		s.mu.Unlock()
		return nil, fmt.Errorf("data source %s: %w", id, apperrors.ErrNotFound)
	}
	prev := s.sources[i]
	optimistic := prev.Clone()
	patch.Apply(optimistic)
	s.sources = slices.Clone(s.sources)
	s.sources[i] = optimistic
	s.mu.Unlock()
	s.changed()

	updated, err := s.backend.UpdateDataSource(ctx, id, patch)

	s.mu.Lock()
	// only touch the entry if nothing replaced it meanwhile
	if j := s.indexOf(id); j >= 0 && s.sources[j] == optimistic {
		s.sources = slices.Clone(s.sources)
		if err != nil {
			s.sources[j] = prev
		} else {
			s.sources[j] = updated
		}
	}
	s.mu.Unlock()
	s.changed()

	if err != nil {
		return nil, fmt.Errorf("failed to update data source %s: %w", id, err)
	}
	return updated.Clone(), nil
}
