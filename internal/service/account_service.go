package service

import (
	"github.com/google/uuid"

	"github.com/avdwerf/Holdings-Tracker-Backend/internal/model"
	"github.com/avdwerf/Holdings-Tracker-Backend/internal/repository"
)

// AccountService handles brokerage account management and the position
// listings hanging off an account.
type AccountService struct {
	accountRepo  *repository.AccountRepository
	positionRepo *repository.PositionRepository
}

// NewAccountService creates a new AccountService with the provided repositories.
func NewAccountService(accountRepo *repository.AccountRepository, positionRepo *repository.PositionRepository) *AccountService {
	return &AccountService{
		accountRepo:  accountRepo,
		positionRepo: positionRepo,
	}
}

// GetAccounts returns all accounts.
func (s *AccountService) GetAccounts() ([]model.Account, error) {
	return s.accountRepo.GetAccounts()
}

// GetAccount returns one account by ID.
func (s *AccountService) GetAccount(accountID string) (model.Account, error) {
	return s.accountRepo.GetAccount(accountID)
}

// CreateAccount stores a new account.
func (s *AccountService) CreateAccount(a *model.Account) error {
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	return s.accountRepo.InsertAccount(a)
}

// GetPositions returns every position of an account with its asset and
// currency details.
func (s *AccountService) GetPositions(accountID string) ([]model.PositionDetail, error) {
	if _, err := s.accountRepo.GetAccount(accountID); err != nil {
		return nil, err
	}
	return s.positionRepo.GetPositionsForAccount(accountID)
}

// GetPosition returns one position with its asset and currency details.
func (s *AccountService) GetPosition(positionID string) (model.PositionDetail, error) {
	return s.positionRepo.GetPositionDetail(positionID)
}

// OpenPosition finds or creates the position of an account in an asset.
func (s *AccountService) OpenPosition(accountID, assetID string) (model.Position, error) {
	if _, err := s.accountRepo.GetAccount(accountID); err != nil {
		return model.Position{}, err
	}
	return s.positionRepo.GetOrCreatePosition(uuid.New().String(), accountID, assetID)
}
