package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/Hillarymukuka/Procurehub-sub000/internal/entity"
)

// SupplierRepository vendor profile storage
type SupplierRepository struct {
	db *gorm.DB
}

func NewSupplierRepository(db *gorm.DB) *SupplierRepository {
	return &SupplierRepository{db: db}
}

func (r *SupplierRepository) FindAll(ctx context.Context, page, pageSize int, filters map[string]string) ([]entity.Supplier, int64, error) {
	var items []entity.Supplier
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.Supplier{})

	if active := filters["active"]; active != "" {
		query = query.Where("is_active = ?", active == "true")
	}
	if category := filters["category"]; category != "" {
		query = query.Where("categories LIKE ?", "%"+category+"%")
	}
	if search := filters["search"]; search != "" {
		like := "%" + search + "%"
		query = query.Where("company_name LIKE ? OR supplier_number LIKE ?", like, like)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.
		Preload("User").
		Order("created_at DESC").
		Offset(offset).
		Limit(pageSize).
		Find(&items).Error

	return items, total, err
}

func (r *SupplierRepository) FindByID(ctx context.Context, id uint) (*entity.Supplier, error) {
	var s entity.Supplier
	err := r.db.WithContext(ctx).
		Preload("User").
		Preload("Documents").
		First(&s, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &s, nil
}

func (r *SupplierRepository) FindByUserID(ctx context.Context, userID uint) (*entity.Supplier, error) {
	var s entity.Supplier
	err := r.db.WithContext(ctx).
		Preload("User").
		Preload("Documents").
		Where("user_id = ?", userID).
		First(&s).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &s, nil
}

func (r *SupplierRepository) FindByIDs(ctx context.Context, ids []uint) ([]entity.Supplier, error) {
	var items []entity.Supplier
	err := r.db.WithContext(ctx).Preload("User").Where("id IN ?", ids).Find(&items).Error
	return items, err
}

// FindCandidates selects active suppliers serving a category, least
// invited first, for automatic RFQ invitation.
func (r *SupplierRepository) FindCandidates(ctx context.Context, category string, limit int) ([]entity.Supplier, error) {
	var items []entity.Supplier
	query := r.db.WithContext(ctx).
		Preload("User").
		Where("is_active = ?", true)
	if category != "" {
		query = query.Where("categories LIKE ?", "%"+category+"%")
	}
	err := query.
		Order("invitations_sent ASC").
		Order("last_invited_at ASC").
		Limit(limit).
		Find(&items).Error
	return items, err
}

func (r *SupplierRepository) Create(ctx context.Context, s *entity.Supplier) error {
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *SupplierRepository) Update(ctx context.Context, s *entity.Supplier) error {
	return r.db.WithContext(ctx).Save(s).Error
}

func (r *SupplierRepository) AddDocument(ctx context.Context, d *entity.SupplierDocument) error {
	return r.db.WithContext(ctx).Create(d).Error
}

func (r *SupplierRepository) FindDocument(ctx context.Context, supplierID, docID uint) (*entity.SupplierDocument, error) {
	var d entity.SupplierDocument
	err := r.db.WithContext(ctx).
		Where("supplier_id = ? AND id = ?", supplierID, docID).
		First(&d).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &d, nil
}

// GenerateNumber produces the next daily supplier number SUP-YYYYMMDD-NNNN.
func (r *SupplierRepository) GenerateNumber(ctx context.Context, now time.Time) (string, error) {
	day := now.Format("20060102")
	prefix := fmt.Sprintf("SUP-%s-", day)

	var count int64
	err := r.db.WithContext(ctx).
		Model(&entity.Supplier{}).
		Where("supplier_number LIKE ?", prefix+"%").
		Count(&count).Error
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s%04d", prefix, count+1), nil
}
