package storage

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/MarkoPoloResearchLab/widget_svc/internal/model"
)

const (
	appScopeUserID = ""

	errorMessageVersionConflict  = "storage: config version conflict"
	errorMessageConfigRead       = "storage: read config entry"
	errorMessageConfigWrite      = "storage: write config entry"
	errorMessageConfigDelete     = "storage: delete config entry"
	errorMessageConfigListKeys   = "storage: list config keys"
	errorMessageMissingConfigKey = "storage: missing config key"
)

var (
	// ErrVersionConflict indicates a compare-and-swap write lost against a concurrent writer.
	ErrVersionConflict = errors.New(errorMessageVersionConflict)
	// ErrMissingConfigKey indicates an empty configuration key.
	ErrMissingConfigKey = errors.New(errorMessageMissingConfigKey)
)

// AppConfigStore persists scoped key/value configuration entries. Entries with
// an empty user id are app-global; entries with a user id are per-user.
type AppConfigStore struct {
	database *gorm.DB
}

// NewAppConfigStore creates an AppConfigStore backed by the given database.
func NewAppConfigStore(database *gorm.DB) *AppConfigStore {
	return &AppConfigStore{database: database}
}

// GetAppValue returns the app-global value for key, or defaultValue when the
// key is absent or unreadable.
func (store *AppConfigStore) GetAppValue(key string, defaultValue string) string {
	return store.scopedValue(appScopeUserID, key, defaultValue)
}

// SetAppValue writes an app-global value, bumping the entry version.
func (store *AppConfigStore) SetAppValue(key string, value string) error {
	return store.setScopedValue(appScopeUserID, key, value)
}

// DeleteAppValue removes an app-global entry. Deleting an absent key is not an error.
func (store *AppConfigStore) DeleteAppValue(key string) error {
	return store.deleteScopedValue(appScopeUserID, key)
}

// AppKeys enumerates all app-global configuration keys.
func (store *AppConfigStore) AppKeys() ([]string, error) {
	var keys []string
	queryErr := store.database.Model(&model.ConfigEntry{}).
		Where("user_id = ?", appScopeUserID).
		Order("key asc").
		Pluck("key", &keys).Error
	if queryErr != nil {
		return nil, fmt.Errorf("%s: %w", errorMessageConfigListKeys, queryErr)
	}
	return keys, nil
}

// GetUserValue returns the per-user value for key, or defaultValue when absent.
func (store *AppConfigStore) GetUserValue(userID string, key string, defaultValue string) string {
	return store.scopedValue(userID, key, defaultValue)
}

// SetUserValue writes a per-user value.
func (store *AppConfigStore) SetUserValue(userID string, key string, value string) error {
	return store.setScopedValue(userID, key, value)
}

// DeleteUserValue removes a per-user entry. Deleting an absent key is not an error.
func (store *AppConfigStore) DeleteUserValue(userID string, key string) error {
	return store.deleteScopedValue(userID, key)
}

// GetVersioned returns the app-global value together with its version. Absent
// keys report version zero with an empty value.
func (store *AppConfigStore) GetVersioned(key string) (string, int64, error) {
	if key == "" {
		return "", 0, ErrMissingConfigKey
	}

	var entry model.ConfigEntry
	queryErr := store.database.
		Where("user_id = ? AND key = ?", appScopeUserID, key).
		First(&entry).Error
	if queryErr != nil {
		if errors.Is(queryErr, gorm.ErrRecordNotFound) {
			return "", 0, nil
		}
		return "", 0, fmt.Errorf("%s: %w", errorMessageConfigRead, queryErr)
	}

	return entry.Value, entry.Version, nil
}

// CompareAndSwap writes an app-global value only when the stored version still
// matches expectedVersion. Version zero addresses a not-yet-existing entry.
func (store *AppConfigStore) CompareAndSwap(key string, value string, expectedVersion int64) error {
	if key == "" {
		return ErrMissingConfigKey
	}

	if expectedVersion == 0 {
		entry := model.ConfigEntry{
			UserID:  appScopeUserID,
			Key:     key,
			Value:   value,
			Version: 1,
		}
		createErr := store.database.Clauses(clause.OnConflict{DoNothing: true}).Create(&entry).Error
		if createErr != nil {
			return fmt.Errorf("%s: %w", errorMessageConfigWrite, createErr)
		}
		var persisted model.ConfigEntry
		if readErr := store.database.Where("user_id = ? AND key = ?", appScopeUserID, key).First(&persisted).Error; readErr != nil {
			return fmt.Errorf("%s: %w", errorMessageConfigRead, readErr)
		}
		if persisted.Version != 1 || persisted.Value != value {
			return ErrVersionConflict
		}
		return nil
	}

	result := store.database.Model(&model.ConfigEntry{}).
		Where("user_id = ? AND key = ? AND version = ?", appScopeUserID, key, expectedVersion).
		Updates(map[string]any{
			"value":   value,
			"version": expectedVersion + 1,
		})
	if result.Error != nil {
		return fmt.Errorf("%s: %w", errorMessageConfigWrite, result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrVersionConflict
	}

	return nil
}

func (store *AppConfigStore) scopedValue(userID string, key string, defaultValue string) string {
	if key == "" {
		return defaultValue
	}

	var entry model.ConfigEntry
	queryErr := store.database.
		Where("user_id = ? AND key = ?", userID, key).
		First(&entry).Error
	if queryErr != nil {
		return defaultValue
	}

	return entry.Value
}

func (store *AppConfigStore) setScopedValue(userID string, key string, value string) error {
	if key == "" {
		return ErrMissingConfigKey
	}

	entry := model.ConfigEntry{
		UserID:  userID,
		Key:     key,
		Value:   value,
		Version: 1,
	}
	writeErr := store.database.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "key"}},
		DoUpdates: clause.Set{
			{Column: clause.Column{Name: "value"}, Value: value},
			{Column: clause.Column{Name: "version"}, Value: gorm.Expr("version + 1")},
		},
	}).Create(&entry).Error
	if writeErr != nil {
		return fmt.Errorf("%s: %w", errorMessageConfigWrite, writeErr)
	}

	return nil
}

func (store *AppConfigStore) deleteScopedValue(userID string, key string) error {
	if key == "" {
		return ErrMissingConfigKey
	}

	deleteErr := store.database.
		Where("user_id = ? AND key = ?", userID, key).
		Delete(&model.ConfigEntry{}).Error
	if deleteErr != nil {
		return fmt.Errorf("%s: %w", errorMessageConfigDelete, deleteErr)
	}

	return nil
}
