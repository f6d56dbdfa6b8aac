package service

import (
	"github.com/google/uuid"

	"github.com/avdwerf/Holdings-Tracker-Backend/internal/model"
	"github.com/avdwerf/Holdings-Tracker-Backend/internal/repository"
)

// AssetService handles the asset catalog.
type AssetService struct {
	assetRepo *repository.AssetRepository
}

// NewAssetService creates a new AssetService with the provided repository.
func NewAssetService(assetRepo *repository.AssetRepository) *AssetService {
	return &AssetService{assetRepo: assetRepo}
}

// GetAssets returns all known assets.
func (s *AssetService) GetAssets() ([]model.Asset, error) {
	return s.assetRepo.GetAssets()
}

// GetAsset returns one asset by ID.
func (s *AssetService) GetAsset(assetID string) (model.Asset, error) {
	return s.assetRepo.GetAsset(assetID)
}

// CreateAsset stores a new asset.
func (s *AssetService) CreateAsset(a *model.Asset) error {
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	if a.AssetType == "" {
		a.AssetType = model.AssetTypeStock
	}
	return s.assetRepo.InsertAsset(a)
}
