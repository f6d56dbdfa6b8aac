package model

import "time"

// Setting keys known to the system.
const (
	SettingEODAPIToken = "eod_api_token"
)

// Setting is a single key/value system setting. Secret values (API tokens)
// are stored fernet-encrypted; see service.SettingService.
type Setting struct {
	ID        string    `json:"id"`
	Key       string    `json:"key"`
	Value     string    `json:"value"`
	UpdatedAt time.Time `json:"updatedAt"`
}
