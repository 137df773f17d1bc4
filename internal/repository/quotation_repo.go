package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/Hillarymukuka/Procurehub-sub000/internal/entity"
)

// QuotationRepository supplier bid storage
type QuotationRepository struct {
	db *gorm.DB
}

func NewQuotationRepository(db *gorm.DB) *QuotationRepository {
	return &QuotationRepository{db: db}
}

func (r *QuotationRepository) FindByRFQ(ctx context.Context, rfqID uint) ([]entity.Quotation, error) {
	var items []entity.Quotation
	err := r.db.WithContext(ctx).
		Preload("Supplier").
		Where("rfq_id = ?", rfqID).
		Order("submitted_at ASC").
		Find(&items).Error
	return items, err
}

func (r *QuotationRepository) FindByID(ctx context.Context, id uint) (*entity.Quotation, error) {
	var q entity.Quotation
	err := r.db.WithContext(ctx).
		Preload("Supplier").
		Preload("RFQ").
		First(&q, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &q, nil
}

func (r *QuotationRepository) FindBySupplierAndRFQ(ctx context.Context, supplierID, rfqID uint) (*entity.Quotation, error) {
	var q entity.Quotation
	err := r.db.WithContext(ctx).
		Where("supplier_id = ? AND rfq_id = ?", supplierID, rfqID).
		First(&q).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &q, nil
}

// FindApprovedByRFQ returns the winning quotation for an RFQ, ErrNotFound
// when none is approved yet.
func (r *QuotationRepository) FindApprovedByRFQ(ctx context.Context, rfqID uint) (*entity.Quotation, error) {
	var q entity.Quotation
	err := r.db.WithContext(ctx).
		Where("rfq_id = ? AND status = ?", rfqID, entity.QuotationApproved).
		First(&q).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &q, nil
}

// FindApproved lists approved quotations, the purchase order read model.
func (r *QuotationRepository) FindApproved(ctx context.Context, page, pageSize int, supplierID uint) ([]entity.Quotation, int64, error) {
	var items []entity.Quotation
	var total int64

	query := r.db.WithContext(ctx).
		Model(&entity.Quotation{}).
		Where("status = ?", entity.QuotationApproved)
	if supplierID != 0 {
		query = query.Where("supplier_id = ?", supplierID)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.
		Preload("Supplier").
		Preload("RFQ").
		Order("approved_at DESC").
		Offset(offset).
		Limit(pageSize).
		Find(&items).Error

	return items, total, err
}

func (r *QuotationRepository) Create(ctx context.Context, q *entity.Quotation) error {
	return r.db.WithContext(ctx).Create(q).Error
}

func (r *QuotationRepository) Update(ctx context.Context, q *entity.Quotation) error {
	return r.db.WithContext(ctx).Save(q).Error
}
