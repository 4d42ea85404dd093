package service

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/carelink/carelink-ai/internal/domain/prescription"
)

const archiveBufferSize = 1_000

// ArchiveService persists extraction records asynchronously so that the
// extraction endpoint never blocks on the database.
type ArchiveService struct {
	repo    prescription.Repository
	log     *zap.Logger
	records chan *prescription.Record
	done    chan struct{}

	// mu orders StoreAsync against Shutdown so a handler that outlives
	// the shutdown deadline cannot send on the closed channel.
	mu     sync.RWMutex
	closed bool
}

func NewArchiveService(repo prescription.Repository, log *zap.Logger) *ArchiveService {
	svc := &ArchiveService{
		repo:    repo,
		log:     log,
		records: make(chan *prescription.Record, archiveBufferSize),
		done:    make(chan struct{}),
	}
	go svc.worker()
	return svc
}

// StoreAsync enqueues a record for async persistence. If the buffer is
// full or the service has been shut down, the record is dropped and a
// warning is emitted.
func (s *ArchiveService) StoreAsync(rec *prescription.Record) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		s.log.Warn("archive service stopped, dropping record",
			zap.String("record_id", rec.ID.String()),
		)
		return
	}

	select {
	case s.records <- rec:
	default:
		s.log.Warn("archive buffer full, dropping record",
			zap.String("record_id", rec.ID.String()),
			zap.String("quality", string(rec.Quality)),
		)
	}
}

func (s *ArchiveService) Shutdown() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	close(s.records)
	s.mu.Unlock()

	select {
	case <-s.done:
	case <-time.After(10 * time.Second):
		s.log.Warn("archive service shutdown timed out; some records may be lost")
	}
}

func (s *ArchiveService) worker() {
	defer close(s.done)
	for rec := range s.records {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := s.repo.Create(ctx, rec); err != nil {
			s.log.Error("failed to persist prescription record", zap.Error(err))
		}
		cancel()
	}
}
