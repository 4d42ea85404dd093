package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/carelink/carelink-ai/internal/domain/prescription"
)

type memoryRepo struct {
	mu      sync.Mutex
	records []*prescription.Record
}

func (r *memoryRepo) Create(_ context.Context, rec *prescription.Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, rec)
	return nil
}

func (r *memoryRepo) GetByID(_ context.Context, id uuid.UUID) (*prescription.Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, rec := range r.records {
		if rec.ID == id {
			return rec, nil
		}
	}
	return nil, prescription.ErrRecordNotFound
}

func (r *memoryRepo) List(context.Context, *prescription.ListRecordsQuery) (*prescription.PagedRecords, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return &prescription.PagedRecords{Records: r.records, TotalCount: int64(len(r.records))}, nil
}

func (r *memoryRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.records)
}

func TestArchiveServicePersistsAsync(t *testing.T) {
	repo := &memoryRepo{}
	svc := NewArchiveService(repo, zap.NewNop())

	for i := 0; i < 5; i++ {
		svc.StoreAsync(&prescription.Record{ID: uuid.New(), FullText: "text"})
	}
	svc.Shutdown()

	if got := repo.count(); got != 5 {
		t.Errorf("persisted %d records, want 5", got)
	}
}

func TestArchiveServiceShutdownDrains(t *testing.T) {
	repo := &memoryRepo{}
	svc := NewArchiveService(repo, zap.NewNop())

	rec := &prescription.Record{ID: uuid.New()}
	svc.StoreAsync(rec)

	done := make(chan struct{})
	go func() {
		svc.Shutdown()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("shutdown did not complete")
	}

	if _, err := repo.GetByID(context.Background(), rec.ID); err != nil {
		t.Errorf("record not persisted before shutdown returned: %v", err)
	}
}

func TestArchiveServiceStoreAfterShutdown(t *testing.T) {
	repo := &memoryRepo{}
	svc := NewArchiveService(repo, zap.NewNop())
	svc.Shutdown()

	// A straggler request finishing after shutdown must be dropped,
	// not panic on the closed channel.
	svc.StoreAsync(&prescription.Record{ID: uuid.New()})

	if got := repo.count(); got != 0 {
		t.Errorf("persisted %d records after shutdown, want 0", got)
	}

	// Shutdown is idempotent.
	svc.Shutdown()
}
