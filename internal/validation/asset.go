package validation

import (
	"fmt"
	"strings"

	"github.com/avdwerf/Holdings-Tracker-Backend/internal/api/request"
	"github.com/avdwerf/Holdings-Tracker-Backend/internal/model"
)

// ValidAssetType contains the allowed asset type values.
var ValidAssetType = map[string]bool{
	model.AssetTypeStock: true, model.AssetTypeCrypto: true,
}

// ValidateCreateAsset validates an asset creation request.
//
// Required fields:
//   - symbol: Must be non-empty
//   - name: Must be non-empty
//   - currency: Must be a 3-letter code (GBX is accepted for pence-quoted listings)
//
// Optional fields:
//   - assetType: Must be one of: STOCK, CRYPTO if provided
//
// Returns a validation Error with field-specific error messages if validation fails.
func ValidateCreateAsset(req request.CreateAssetRequest) error {
	errors := make(map[string]string)

	if strings.TrimSpace(req.Symbol) == "" {
		errors["symbol"] = "symbol is required"
	}
	if strings.TrimSpace(req.Name) == "" {
		errors["name"] = "name is required"
	}
	if err := validateCurrencyCode(req.Currency); err != "" {
		errors["currency"] = err
	}
	if req.AssetType != "" && !ValidAssetType[req.AssetType] {
		errors["assetType"] = fmt.Sprintf("invalid asset type: %s", req.AssetType)
	}

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}
	return nil
}
