package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/Hillarymukuka/Procurehub-sub000/internal/entity"
)

// DepartmentRepository department storage
type DepartmentRepository struct {
	db *gorm.DB
}

func NewDepartmentRepository(db *gorm.DB) *DepartmentRepository {
	return &DepartmentRepository{db: db}
}

func (r *DepartmentRepository) FindAll(ctx context.Context) ([]entity.Department, error) {
	var items []entity.Department
	err := r.db.WithContext(ctx).Order("name ASC").Find(&items).Error
	return items, err
}

func (r *DepartmentRepository) FindByID(ctx context.Context, id uint) (*entity.Department, error) {
	var d entity.Department
	err := r.db.WithContext(ctx).First(&d, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &d, nil
}

func (r *DepartmentRepository) FindByName(ctx context.Context, name string) (*entity.Department, error) {
	var d entity.Department
	err := r.db.WithContext(ctx).Where("name = ?", name).First(&d).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &d, nil
}

func (r *DepartmentRepository) Create(ctx context.Context, d *entity.Department) error {
	return r.db.WithContext(ctx).Create(d).Error
}

func (r *DepartmentRepository) Update(ctx context.Context, d *entity.Department) error {
	return r.db.WithContext(ctx).Save(d).Error
}

func (r *DepartmentRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&entity.Department{}, id).Error
}

// CountRequests counts purchase requests referencing the department.
func (r *DepartmentRepository) CountRequests(ctx context.Context, id uint) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).
		Model(&entity.PurchaseRequest{}).
		Where("department_id = ?", id).
		Count(&total).Error
	return total, err
}
