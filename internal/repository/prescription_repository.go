// Package repository provides the GORM-backed persistence implementations
// for the domain repository interfaces.
package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/carelink/carelink-ai/internal/domain/prescription"
)

type prescriptionRepository struct {
	db *gorm.DB
}

// NewPrescriptionRepository returns a prescription.Repository backed by the
// given database handle.
func NewPrescriptionRepository(db *gorm.DB) prescription.Repository {
	return &prescriptionRepository{db: db}
}

func (r *prescriptionRepository) Create(ctx context.Context, rec *prescription.Record) error {
	if err := r.db.WithContext(ctx).Create(rec).Error; err != nil {
		return fmt.Errorf("creating prescription record: %w", err)
	}
	return nil
}

func (r *prescriptionRepository) GetByID(ctx context.Context, id uuid.UUID) (*prescription.Record, error) {
	var rec prescription.Record
	err := r.db.WithContext(ctx).
		Preload("Medications").
		First(&rec, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, prescription.ErrRecordNotFound
		}
		return nil, fmt.Errorf("fetching prescription record: %w", err)
	}
	return &rec, nil
}

func (r *prescriptionRepository) List(ctx context.Context, q *prescription.ListRecordsQuery) (*prescription.PagedRecords, error) {
	page := q.Page
	if page < 1 {
		page = 1
	}
	pageSize := q.PageSize
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	var total int64
	if err := r.db.WithContext(ctx).Model(&prescription.Record{}).Count(&total).Error; err != nil {
		return nil, fmt.Errorf("counting prescription records: %w", err)
	}

	var recs []*prescription.Record
	err := r.db.WithContext(ctx).
		Preload("Medications").
		Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&recs).Error
	if err != nil {
		return nil, fmt.Errorf("listing prescription records: %w", err)
	}

	totalPages := int(total) / pageSize
	if int(total)%pageSize != 0 {
		totalPages++
	}

	return &prescription.PagedRecords{
		Records:    recs,
		TotalCount: total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}, nil
}
