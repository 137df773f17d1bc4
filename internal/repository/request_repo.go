package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/Hillarymukuka/Procurehub-sub000/internal/entity"
)

// RequestRepository purchase request storage
type RequestRepository struct {
	db *gorm.DB
}

func NewRequestRepository(db *gorm.DB) *RequestRepository {
	return &RequestRepository{db: db}
}

func (r *RequestRepository) FindAll(ctx context.Context, page, pageSize int, filters map[string]string) ([]entity.PurchaseRequest, int64, error) {
	var items []entity.PurchaseRequest
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.PurchaseRequest{})

	if status := filters["status"]; status != "" {
		// Accept the legacy "denied" spelling as a filter alias.
		if status == "denied" {
			status = string(entity.RequestRejectedByProcurement)
		}
		query = query.Where("status = ?", status)
	}
	if deptID := filters["department_id"]; deptID != "" {
		query = query.Where("department_id = ?", deptID)
	}
	if requesterID := filters["requester_id"]; requesterID != "" {
		query = query.Where("requester_id = ?", requesterID)
	}
	if search := filters["search"]; search != "" {
		like := "%" + search + "%"
		query = query.Where("title LIKE ? OR request_number LIKE ?", like, like)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.
		Preload("Department").
		Preload("Requester").
		Order("created_at DESC").
		Offset(offset).
		Limit(pageSize).
		Find(&items).Error

	return items, total, err
}

func (r *RequestRepository) FindByID(ctx context.Context, id uint) (*entity.PurchaseRequest, error) {
	var pr entity.PurchaseRequest
	err := r.db.WithContext(ctx).
		Preload("Department").
		Preload("Requester").
		First(&pr, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &pr, nil
}

func (r *RequestRepository) Create(ctx context.Context, pr *entity.PurchaseRequest) error {
	return r.db.WithContext(ctx).Create(pr).Error
}

func (r *RequestRepository) Update(ctx context.Context, pr *entity.PurchaseRequest) error {
	return r.db.WithContext(ctx).Save(pr).Error
}

// GenerateNumber produces the next yearly request number REQ-YYYY-NNNN.
func (r *RequestRepository) GenerateNumber(ctx context.Context, now time.Time) (string, error) {
	year := now.Format("2006")
	prefix := fmt.Sprintf("REQ-%s-", year)

	var count int64
	err := r.db.WithContext(ctx).
		Model(&entity.PurchaseRequest{}).
		Where("request_number LIKE ?", prefix+"%").
		Count(&count).Error
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s%04d", prefix, count+1), nil
}

// CountByStatus groups request totals for analytics.
func (r *RequestRepository) CountByStatus(ctx context.Context) (map[string]int64, error) {
	type row struct {
		Status string
		Total  int64
	}
	var rows []row
	err := r.db.WithContext(ctx).
		Model(&entity.PurchaseRequest{}).
		Select("status, COUNT(*) AS total").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make(map[string]int64, len(rows))
	for _, rw := range rows {
		out[rw.Status] = rw.Total
	}
	return out, nil
}
