package request

type CreateAccountRequest struct {
	Nickname    string `json:"nickname"`
	Description string `json:"description"`
	Currency    string `json:"currency"`
}

type OpenPositionRequest struct {
	AccountID string `json:"accountId"`
	AssetID   string `json:"assetId"`
}
