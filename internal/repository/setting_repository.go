package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/avdwerf/Holdings-Tracker-Backend/internal/apperrors"
	"github.com/avdwerf/Holdings-Tracker-Backend/internal/model"
)

// SettingRepository provides data access methods for the system_setting table.
type SettingRepository struct {
	db DBTX
}

// NewSettingRepository creates a new SettingRepository with the provided database connection.
func NewSettingRepository(db *sql.DB) *SettingRepository {
	return &SettingRepository{db: db}
}

// GetSetting retrieves a setting by its key.
func (s *SettingRepository) GetSetting(key string) (model.Setting, error) {
	var setting model.Setting
	var updatedAt sql.NullString

	err := s.db.QueryRow(`
		SELECT id, "key", value, updated_at
		FROM system_setting
		WHERE "key" = ?
	`, key).Scan(&setting.ID, &setting.Key, &setting.Value, &updatedAt)
	if err == sql.ErrNoRows {
		return model.Setting{}, apperrors.ErrSettingNotFound
	}
	if err != nil {
		return model.Setting{}, fmt.Errorf("failed to scan system_setting table results: %w", err)
	}
	if updatedAt.Valid {
		setting.UpdatedAt, _ = ParseTime(updatedAt.String)
	}

	return setting, nil
}

// UpsertSetting stores a setting value, replacing any previous value for the key.
func (s *SettingRepository) UpsertSetting(id, key, value string) error {
	_, err := s.db.Exec(`
		INSERT INTO system_setting (id, "key", value, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT("key") DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`, id, key, value, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to upsert setting: %w", err)
	}
	return nil
}
