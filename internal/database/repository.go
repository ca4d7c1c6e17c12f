package database

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

// RadioUserRepository provides database operations for protocol-tagged
// RID records, generalized from the teacher's DMR-only repository.
type RadioUserRepository struct {
	db *gorm.DB
}

// NewRadioUserRepository creates a new repository instance.
func NewRadioUserRepository(db *gorm.DB) *RadioUserRepository {
	return &RadioUserRepository{db: db}
}

// GetByRadioID finds a user by protocol and radio ID.
func (r *RadioUserRepository) GetByRadioID(protocol string, radioID uint32) (*RadioUser, error) {
	var user RadioUser
	err := r.db.Where("protocol = ? AND radio_id = ?", protocol, radioID).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetByCallsign finds a user by protocol and callsign.
func (r *RadioUserRepository) GetByCallsign(protocol, callsign string) (*RadioUser, error) {
	var user RadioUser
	err := r.db.Where("protocol = ? AND callsign = ?", protocol, callsign).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Upsert creates or updates a single radio user.
func (r *RadioUserRepository) Upsert(user *RadioUser) error {
	if user == nil {
		return fmt.Errorf("user cannot be nil")
	}
	if !user.IsValid() {
		return fmt.Errorf("user is not valid: radio_id=%d, protocol=%s, callsign=%s", user.RadioID, user.Protocol, user.Callsign)
	}
	user.SanitizeFields()
	user.UpdatedAt = time.Now()
	return r.db.Save(user).Error
}

// UpsertBatch creates or updates multiple radio users in transactional
// batches.
func (r *RadioUserRepository) UpsertBatch(users []RadioUser) error {
	if len(users) == 0 {
		return nil
	}

	const batchSize = 1000
	for i := 0; i < len(users); i += batchSize {
		end := i + batchSize
		if end > len(users) {
			end = len(users)
		}
		batch := users[i:end]

		validUsers := make([]RadioUser, 0, len(batch))
		for _, user := range batch {
			user.SanitizeFields()
			if user.IsValid() {
				user.UpdatedAt = time.Now()
				validUsers = append(validUsers, user)
			}
		}
		if len(validUsers) == 0 {
			continue
		}

		err := r.db.Transaction(func(tx *gorm.DB) error {
			for _, user := range validUsers {
				if err := tx.Save(&user).Error; err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			return fmt.Errorf("batch upsert failed at batch starting at index %d: %w", i, err)
		}
	}
	return nil
}

// Count returns the total number of radio users.
func (r *RadioUserRepository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&RadioUser{}).Count(&count).Error
	return count, err
}

// All loads every radio user, used by the lookup table to build a fresh
// in-memory snapshot on reload.
func (r *RadioUserRepository) All() ([]RadioUser, error) {
	var users []RadioUser
	err := r.db.Find(&users).Error
	return users, err
}

// GetRecentlyUpdated returns users updated after the specified time.
func (r *RadioUserRepository) GetRecentlyUpdated(since time.Time, limit int) ([]RadioUser, error) {
	var users []RadioUser
	err := r.db.Where("updated_at > ?", since).
		Order("updated_at DESC").
		Limit(limit).
		Find(&users).Error
	return users, err
}

// HealthCheck verifies the repository is working correctly.
func (r *RadioUserRepository) HealthCheck() error {
	var count int64
	return r.db.Model(&RadioUser{}).Count(&count).Error
}

// TGRuleRepository provides database operations for talkgroup ACL rules.
type TGRuleRepository struct {
	db *gorm.DB
}

// NewTGRuleRepository creates a new TG rule repository instance.
func NewTGRuleRepository(db *gorm.DB) *TGRuleRepository {
	return &TGRuleRepository{db: db}
}

// All loads every TG rule.
func (r *TGRuleRepository) All() ([]TGRule, error) {
	var rules []TGRule
	err := r.db.Find(&rules).Error
	return rules, err
}

// Upsert creates or updates a single TG rule.
func (r *TGRuleRepository) Upsert(rule *TGRule) error {
	if rule == nil {
		return fmt.Errorf("rule cannot be nil")
	}
	return r.db.Save(rule).Error
}
