package repository

import (
	"errors"
	"time"

	"github.com/eskept/pricing-engine/internal/models"

	"gorm.io/gorm"
)

// AvailabilityRuleRepository is the durable store for per-day capacity rules.
type AvailabilityRuleRepository interface {
	GetByID(id uint) (*models.AvailabilityRule, error)
	ListByRange(productIDs []uint, start, end time.Time) ([]models.AvailabilityRule, error)
	ProductIDsWithRules(start, end time.Time) ([]uint, error)
	BulkCreate(rules []*models.AvailabilityRule) error
	DeleteRange(productIDs []uint, start, end time.Time) (int64, error)
	List(filter AvailabilityRuleListFilter) ([]models.AvailabilityRule, int64, error)
	LastCodeForPrefix(prefix string) (string, error)
	Transaction(fn func(tx *gorm.DB) error) error
	WithTx(tx *gorm.DB) *GormAvailabilityRuleRepository
}

// AvailabilityRuleListFilter narrows availability rule listings.
type AvailabilityRuleListFilter struct {
	ProductID uint
	Type      string
	Search    string
	Page      int
	PageSize  int
}

// GormAvailabilityRuleRepository is the GORM implementation.
type GormAvailabilityRuleRepository struct {
	db *gorm.DB
}

// NewAvailabilityRuleRepository creates an availability rule repository.
func NewAvailabilityRuleRepository(db *gorm.DB) *GormAvailabilityRuleRepository {
	return &GormAvailabilityRuleRepository{db: db}
}

// Transaction runs fn inside a database transaction.
func (r *GormAvailabilityRuleRepository) Transaction(fn func(tx *gorm.DB) error) error {
	return r.db.Transaction(fn)
}

// WithTx binds the repository to a transaction.
func (r *GormAvailabilityRuleRepository) WithTx(tx *gorm.DB) *GormAvailabilityRuleRepository {
	if tx == nil {
		return r
	}
	return &GormAvailabilityRuleRepository{db: tx}
}

// GetByID fetches a rule by id, returning nil when absent.
func (r *GormAvailabilityRuleRepository) GetByID(id uint) (*models.AvailabilityRule, error) {
	var rule models.AvailabilityRule
	if err := r.db.First(&rule, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &rule, nil
}

// ListByRange fetches rules for the given products within [start, end].
// An empty product set means no product filter.
func (r *GormAvailabilityRuleRepository) ListByRange(productIDs []uint, start, end time.Time) ([]models.AvailabilityRule, error) {
	var rules []models.AvailabilityRule
	query := r.db.Where("day >= ? AND day <= ?", start, end)
	if len(productIDs) > 0 {
		query = query.Where("product_id IN ?", productIDs)
	}
	if err := query.Order("day asc, product_id asc").Find(&rules).Error; err != nil {
		return nil, err
	}
	return rules, nil
}

// ProductIDsWithRules returns the distinct product ids carrying any rule
// within [start, end].
func (r *GormAvailabilityRuleRepository) ProductIDsWithRules(start, end time.Time) ([]uint, error) {
	var ids []uint
	err := r.db.Model(&models.AvailabilityRule{}).
		Where("day >= ? AND day <= ?", start, end).
		Distinct("product_id").
		Order("product_id asc").
		Pluck("product_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// BulkCreate inserts rules in one batch.
func (r *GormAvailabilityRuleRepository) BulkCreate(rules []*models.AvailabilityRule) error {
	if len(rules) == 0 {
		return nil
	}
	return r.db.Create(rules).Error
}

// DeleteRange soft-deletes every rule for the given products within
// [start, end], returning the number of affected rows. An empty product
// set deletes across all products.
func (r *GormAvailabilityRuleRepository) DeleteRange(productIDs []uint, start, end time.Time) (int64, error) {
	query := r.db.Where("day >= ? AND day <= ?", start, end)
	if len(productIDs) > 0 {
		query = query.Where("product_id IN ?", productIDs)
	}
	result := query.Delete(&models.AvailabilityRule{})
	return result.RowsAffected, result.Error
}

// List fetches rules with filtering and pagination.
func (r *GormAvailabilityRuleRepository) List(filter AvailabilityRuleListFilter) ([]models.AvailabilityRule, int64, error) {
	var rules []models.AvailabilityRule
	query := r.db.Model(&models.AvailabilityRule{})

	if filter.ProductID != 0 {
		query = query.Where("product_id = ?", filter.ProductID)
	}
	if filter.Type != "" {
		query = query.Where("type = ?", filter.Type)
	}
	if filter.Search != "" {
		query = query.Where("code LIKE ?", "%"+filter.Search+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)
	if err := query.Order("day desc, product_id asc").Find(&rules).Error; err != nil {
		return nil, 0, err
	}
	return rules, total, nil
}

// LastCodeForPrefix returns the highest existing code with the given
// prefix, including soft-deleted rows so sequences never collide.
func (r *GormAvailabilityRuleRepository) LastCodeForPrefix(prefix string) (string, error) {
	var rule models.AvailabilityRule
	err := r.db.Unscoped().Where("code LIKE ?", prefix+"%").Order("code desc").First(&rule).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return rule.Code, nil
}
