package service

import (
	"fmt"

	"github.com/fernet/fernet-go"
	"github.com/google/uuid"

	"github.com/avdwerf/Holdings-Tracker-Backend/internal/model"
	"github.com/avdwerf/Holdings-Tracker-Backend/internal/repository"
)

// SettingService stores and retrieves system settings. Secret values such
// as the EODHD API token are fernet-encrypted at rest with the key from
// the server configuration.
type SettingService struct {
	settingRepo *repository.SettingRepository
	key         *fernet.Key
}

// NewSettingService creates a SettingService using the given base64
// fernet key.
func NewSettingService(settingRepo *repository.SettingRepository, encryptionKey string) (*SettingService, error) {
	key, err := fernet.DecodeKey(encryptionKey)
	if err != nil {
		return nil, fmt.Errorf("invalid encryption key: %w", err)
	}
	return &SettingService{settingRepo: settingRepo, key: key}, nil
}

// GetSetting returns a plain, unencrypted setting value.
func (s *SettingService) GetSetting(key string) (model.Setting, error) {
	return s.settingRepo.GetSetting(key)
}

// SetEODToken encrypts and stores the EODHD API token.
func (s *SettingService) SetEODToken(token string) error {
	encrypted, err := fernet.EncryptAndSign([]byte(token), s.key)
	if err != nil {
		return fmt.Errorf("failed to encrypt token: %w", err)
	}
	return s.settingRepo.UpsertSetting(uuid.New().String(), model.SettingEODAPIToken, string(encrypted))
}

// EODToken decrypts and returns the stored EODHD API token.
func (s *SettingService) EODToken() (string, error) {
	setting, err := s.settingRepo.GetSetting(model.SettingEODAPIToken)
	if err != nil {
		return "", err
	}

	// ttl 0 disables token expiry; the value is a secret at rest, not a
	// session token.
	plain := fernet.VerifyAndDecrypt([]byte(setting.Value), 0, []*fernet.Key{s.key})
	if plain == nil {
		return "", fmt.Errorf("failed to decrypt stored token")
	}
	return string(plain), nil
}
