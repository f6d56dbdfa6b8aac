package request

type CreateAssetRequest struct {
	Isin      string `json:"isin"`
	Symbol    string `json:"symbol"`
	Name      string `json:"name"`
	Currency  string `json:"currency"`
	Exchange  string `json:"exchange"`
	AssetType string `json:"assetType"`
}
