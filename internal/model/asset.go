package model

// Asset type constants. Crypto assets are priced against USD by the
// price collector; everything else is priced on its listing exchange.
const (
	AssetTypeStock  = "STOCK"
	AssetTypeCrypto = "CRYPTO"
)

// Asset represents a tradeable instrument. The currency is the currency the
// asset is priced in, which may differ from the account currency of any
// position holding it.
type Asset struct {
	ID        string `json:"id"`
	Isin      string `json:"isin"`
	Symbol    string `json:"symbol"`
	Name      string `json:"name"`
	Currency  string `json:"currency"`
	Exchange  string `json:"exchange"`
	AssetType string `json:"assetType"`
}
