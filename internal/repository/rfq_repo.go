package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/Hillarymukuka/Procurehub-sub000/internal/entity"
)

// RFQRepository RFQ and invitation storage
type RFQRepository struct {
	db *gorm.DB
}

func NewRFQRepository(db *gorm.DB) *RFQRepository {
	return &RFQRepository{db: db}
}

func (r *RFQRepository) FindAll(ctx context.Context, page, pageSize int, filters map[string]string) ([]entity.RFQ, int64, error) {
	var items []entity.RFQ
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.RFQ{})

	if status := filters["status"]; status != "" {
		query = query.Where("status = ?", status)
	}
	if category := filters["category"]; category != "" {
		query = query.Where("category = ?", category)
	}
	if search := filters["search"]; search != "" {
		like := "%" + search + "%"
		query = query.Where("title LIKE ? OR rfq_number LIKE ?", like, like)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.
		Preload("Invitations").
		Order("created_at DESC").
		Offset(offset).
		Limit(pageSize).
		Find(&items).Error

	return items, total, err
}

// FindForSupplier lists RFQs the supplier is invited to, optionally only
// open ones with a live deadline.
func (r *RFQRepository) FindForSupplier(ctx context.Context, supplierID uint, activeOnly bool) ([]entity.RFQ, error) {
	var items []entity.RFQ
	query := r.db.WithContext(ctx).
		Joins("JOIN rfq_invitations ON rfq_invitations.rfq_id = rfqs.id").
		Where("rfq_invitations.supplier_id = ?", supplierID)
	if activeOnly {
		query = query.Where("rfqs.status = ? AND rfqs.deadline > ?", entity.RFQOpen, time.Now())
	}
	err := query.Order("rfqs.created_at DESC").Find(&items).Error
	return items, err
}

func (r *RFQRepository) FindByID(ctx context.Context, id uint) (*entity.RFQ, error) {
	var q entity.RFQ
	err := r.db.WithContext(ctx).
		Preload("Invitations").
		Preload("Invitations.Supplier").
		Preload("Request").
		First(&q, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &q, nil
}

func (r *RFQRepository) FindByRequestID(ctx context.Context, requestID uint) (*entity.RFQ, error) {
	var q entity.RFQ
	err := r.db.WithContext(ctx).
		Preload("Invitations").
		Where("request_id = ?", requestID).
		First(&q).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &q, nil
}

func (r *RFQRepository) Create(ctx context.Context, q *entity.RFQ) error {
	return r.db.WithContext(ctx).Create(q).Error
}

func (r *RFQRepository) Update(ctx context.Context, q *entity.RFQ) error {
	return r.db.WithContext(ctx).Save(q).Error
}

func (r *RFQRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&entity.RFQ{}, id).Error
}

func (r *RFQRepository) FindInvitation(ctx context.Context, rfqID, supplierID uint) (*entity.Invitation, error) {
	var inv entity.Invitation
	err := r.db.WithContext(ctx).
		Where("rfq_id = ? AND supplier_id = ?", rfqID, supplierID).
		First(&inv).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &inv, nil
}

func (r *RFQRepository) FindInvitationsForSupplier(ctx context.Context, supplierID uint) ([]entity.Invitation, error) {
	var items []entity.Invitation
	err := r.db.WithContext(ctx).
		Where("supplier_id = ?", supplierID).
		Order("invited_at DESC").
		Find(&items).Error
	return items, err
}

// FindExpired returns open RFQs whose deadline has passed.
func (r *RFQRepository) FindExpired(ctx context.Context, now time.Time) ([]entity.RFQ, error) {
	var items []entity.RFQ
	err := r.db.WithContext(ctx).
		Where("status = ? AND deadline <= ?", entity.RFQOpen, now).
		Find(&items).Error
	return items, err
}

// GenerateNumber produces RFQNNN_MMYYYY from a sequence and issue date. The
// sequence comes from the highest issued number, not a row count, so numbers
// freed by discarded drafts are never reused.
func (r *RFQRepository) GenerateNumber(ctx context.Context, now time.Time) (string, error) {
	var last string
	err := r.db.WithContext(ctx).
		Model(&entity.RFQ{}).
		Select("rfq_number").
		Order("LENGTH(rfq_number) DESC, rfq_number DESC").
		Limit(1).
		Scan(&last).Error
	if err != nil {
		return "", err
	}
	seq := 0
	if i := strings.IndexByte(last, '_'); i > 3 {
		if n, err := strconv.Atoi(last[3:i]); err == nil {
			seq = n
		}
	}
	return fmt.Sprintf("RFQ%03d_%s", seq+1, now.Format("012006")), nil
}

// CountByStatus groups RFQ totals for analytics.
func (r *RFQRepository) CountByStatus(ctx context.Context) (map[string]int64, error) {
	type row struct {
		Status string
		Total  int64
	}
	var rows []row
	err := r.db.WithContext(ctx).
		Model(&entity.RFQ{}).
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
