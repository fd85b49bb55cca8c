package repository

import (
	"errors"

	"github.com/eskept/pricing-engine/internal/models"

	"gorm.io/gorm"
)

// PriceRuleRepository is the durable store for price adjustment rules.
type PriceRuleRepository interface {
	GetByID(id uint) (*models.PriceRule, error)
	ListActive() ([]models.PriceRule, error)
	Create(rule *models.PriceRule) error
	Update(rule *models.PriceRule) error
	ReplaceProducts(rule *models.PriceRule, products []models.Product) error
	SetActive(id uint, active bool) error
	Delete(id uint) error
	List(filter PriceRuleListFilter) ([]models.PriceRule, int64, error)
	LastCodeForPrefix(prefix string) (string, error)
	WithTx(tx *gorm.DB) *GormPriceRuleRepository
}

// PriceRuleListFilter narrows rule listings.
type PriceRuleListFilter struct {
	Search         string
	AdjustmentType string
	TimeRangeType  string
	IsActive       *bool
	Page           int
	PageSize       int
}

// GormPriceRuleRepository is the GORM implementation.
type GormPriceRuleRepository struct {
	db *gorm.DB
}

// NewPriceRuleRepository creates a price rule repository.
func NewPriceRuleRepository(db *gorm.DB) *GormPriceRuleRepository {
	return &GormPriceRuleRepository{db: db}
}

// WithTx binds the repository to a transaction.
func (r *GormPriceRuleRepository) WithTx(tx *gorm.DB) *GormPriceRuleRepository {
	if tx == nil {
		return r
	}
	return &GormPriceRuleRepository{db: tx}
}

// GetByID fetches a rule with its product scope, returning nil when absent.
func (r *GormPriceRuleRepository) GetByID(id uint) (*models.PriceRule, error) {
	var rule models.PriceRule
	if err := r.db.Preload("Products").First(&rule, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &rule, nil
}

// ListActive fetches all active non-deleted rules with their product scope.
// Resolution candidates come from this single scan.
func (r *GormPriceRuleRepository) ListActive() ([]models.PriceRule, error) {
	var rules []models.PriceRule
	if err := r.db.Preload("Products").Where("is_active = ?", true).Order("id asc").Find(&rules).Error; err != nil {
		return nil, err
	}
	return rules, nil
}

// Create inserts a rule together with its product scope.
func (r *GormPriceRuleRepository) Create(rule *models.PriceRule) error {
	return r.db.Create(rule).Error
}

// Update saves rule fields without touching the product scope.
func (r *GormPriceRuleRepository) Update(rule *models.PriceRule) error {
	return r.db.Omit("Products").Save(rule).Error
}

// ReplaceProducts replaces the rule's product scope wholesale.
func (r *GormPriceRuleRepository) ReplaceProducts(rule *models.PriceRule, products []models.Product) error {
	if rule == nil {
		return errors.New("rule is nil")
	}
	return r.db.Model(rule).Association("Products").Replace(products)
}

// SetActive toggles the activation flag.
func (r *GormPriceRuleRepository) SetActive(id uint, active bool) error {
	return r.db.Model(&models.PriceRule{}).Where("id = ?", id).Update("is_active", active).Error
}

// Delete soft-deletes a rule, excluding it from all future resolution.
func (r *GormPriceRuleRepository) Delete(id uint) error {
	return r.db.Delete(&models.PriceRule{}, id).Error
}

// List fetches rules with filtering and pagination.
func (r *GormPriceRuleRepository) List(filter PriceRuleListFilter) ([]models.PriceRule, int64, error) {
	var rules []models.PriceRule
	query := r.db.Model(&models.PriceRule{})

	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		query = query.Where("code LIKE ? OR name LIKE ?", like, like)
	}
	if filter.AdjustmentType != "" {
		query = query.Where("adjustment_type = ?", filter.AdjustmentType)
	}
	if filter.TimeRangeType != "" {
		query = query.Where("time_range_type = ?", filter.TimeRangeType)
	}
	if filter.IsActive != nil {
		query = query.Where("is_active = ?", *filter.IsActive)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)
	if err := query.Preload("Products").Order("id desc").Find(&rules).Error; err != nil {
		return nil, 0, err
	}
	return rules, total, nil
}

// LastCodeForPrefix returns the highest existing code with the given
// prefix, including soft-deleted rows so sequences never collide.
func (r *GormPriceRuleRepository) LastCodeForPrefix(prefix string) (string, error) {
	var rule models.PriceRule
	err := r.db.Unscoped().Where("code LIKE ?", prefix+"%").Order("code desc").First(&rule).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return rule.Code, nil
}
