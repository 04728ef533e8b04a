package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/matehackers/badges-engine/core"
	"github.com/matehackers/badges-engine/ports"
	"github.com/matehackers/badges-engine/internal/database/models"
)

// GormStore is a SQL implementation of the AssertionStore interface.
// The database must be opened with TranslateError so unique violations surface as gorm.ErrDuplicatedKey.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore creates a new SQL store
func NewGormStore(db *gorm.DB) ports.AssertionStore {
	return &GormStore{db: db}
}

// Create inserts the assertion; the (badge_id, user_id) unique index rejects duplicates
func (s *GormStore) Create(ctx context.Context, assertion *core.Assertion) error {
	row := models.Assertion{
		ID:       uuid.New().String(),
		BadgeID:  assertion.BadgeID,
		UserID:   assertion.UserID,
		Token:    assertion.Token,
		Evidence: assertion.Evidence,
		Expires:  assertion.Expires,
		IssuedOn: assertion.IssuedOn,
	}

	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return core.ErrAssertionExists
		}
		return fmt.Errorf("failed to create assertion: %w", err)
	}

	assertion.ID = row.ID
	return nil
}

// Get loads an assertion by ID
func (s *GormStore) Get(ctx context.Context, id string) (*core.Assertion, error) {
	var row models.Assertion
	if err := s.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, core.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get assertion: %w", err)
	}
	return toCoreAssertion(row), nil
}

// FindByBadgeAndUser loads an assertion by its unique pair
func (s *GormStore) FindByBadgeAndUser(ctx context.Context, badgeID, userID string) (*core.Assertion, error) {
	var row models.Assertion
	err := s.db.WithContext(ctx).
		Where("badge_id = ? AND user_id = ?", badgeID, userID).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, core.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find assertion: %w", err)
	}
	return toCoreAssertion(row), nil
}

// MarkBaked updates is_baked only while it is still false
func (s *GormStore) MarkBaked(ctx context.Context, id string) (bool, error) {
	res := s.db.WithContext(ctx).
		Model(&models.Assertion{}).
		Where("id = ? AND is_baked = ?", id, false).
		Update("is_baked", true)
	if res.Error != nil {
		return false, fmt.Errorf("failed to mark assertion baked: %w", res.Error)
	}
	if res.RowsAffected == 1 {
		return true, nil
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Assertion{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check assertion: %w", err)
	}
	if count == 0 {
		return false, core.ErrNotFound
	}
	return false, nil
}

func toCoreAssertion(row models.Assertion) *core.Assertion {
	return &core.Assertion{
		ID:       row.ID,
		BadgeID:  row.BadgeID,
		UserID:   row.UserID,
		Token:    row.Token,
		IsBaked:  row.IsBaked,
		Evidence: row.Evidence,
		Expires:  row.Expires,
		IssuedOn: row.IssuedOn,
	}
}

// GormBadges reads badges from the badges table
type GormBadges struct {
	db *gorm.DB
}

// NewGormBadges creates a SQL badge repository
func NewGormBadges(db *gorm.DB) *GormBadges {
	return &GormBadges{db: db}
}

// Get loads a badge by ID
func (r *GormBadges) Get(ctx context.Context, id string) (core.Badge, error) {
	var row models.Badge
	if err := r.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return core.Badge{}, core.ErrNotFound
		}
		return core.Badge{}, fmt.Errorf("failed to get badge: %w", err)
	}

	return core.Badge{
		ID:          row.ID,
		Version:     row.Version,
		Name:        row.Name,
		Image:       row.Image,
		Description: row.Description,
		Criteria:    row.Criteria,
		Issuer: core.Issuer{
			Origin:  row.IssuerOrigin,
			Name:    row.IssuerName,
			Org:     row.IssuerOrg,
			Contact: row.IssuerContact,
		},
	}, nil
}

// GormUsers resolves emails from the host application's user table
type GormUsers struct {
	db          *gorm.DB
	table       string
	emailColumn string
}

// NewGormUsers reads emailColumn from table, matching rows on their id column
func NewGormUsers(db *gorm.DB, table, emailColumn string) *GormUsers {
	return &GormUsers{db: db, table: table, emailColumn: emailColumn}
}

// ResolveEmail returns the user's email; a NULL email resolves to the empty string
func (u *GormUsers) ResolveEmail(ctx context.Context, userID string) (string, error) {
	var emails []sql.NullString
	err := u.db.WithContext(ctx).
		Table(u.table).
		Where("id = ?", userID).
		Limit(1).
		Pluck(u.emailColumn, &emails).Error
	if err != nil {
		return "", fmt.Errorf("failed to resolve email: %w", err)
	}
	if len(emails) == 0 {
		return "", core.ErrNotFound
	}
	return emails[0].String, nil
}
