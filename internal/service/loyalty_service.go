package service

import (
	"context"
	"fmt"

	"glowdesk/internal/loyalty"
	"glowdesk/internal/model"
	"glowdesk/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// loyaltyService implements LoyaltyService.
type loyaltyService struct {
	loyaltyRepo repository.LoyaltyRepository
	tiers       []model.LoyaltyTier
	logger      zerolog.Logger
}

// NewLoyaltyService creates a new loyalty service.
func NewLoyaltyService(loyaltyRepo repository.LoyaltyRepository, tiers []model.LoyaltyTier, logger zerolog.Logger) LoyaltyService {
	if len(tiers) == 0 {
		tiers = loyalty.DefaultTiers()
	}
	return &loyaltyService{
		loyaltyRepo: loyaltyRepo,
		tiers:       tiers,
		logger:      logger.With().Str("service", "loyalty").Logger(),
	}
}

// Summary derives the tier view for a customer. A customer without an
// account gets a zero-point summary in the base tier rather than an error.
func (s *loyaltyService) Summary(ctx context.Context, customerID uuid.UUID) (*model.LoyaltySummary, error) {
	account, err := s.loyaltyRepo.GetAccount(ctx, customerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get loyalty account: %w", err)
	}
	if account == nil {
		account = &model.LoyaltyAccount{CustomerID: customerID}
	}

	return &model.LoyaltySummary{
		Account:          *account,
		Tier:             loyalty.DetermineTier(account.LifetimePoints, s.tiers),
		PointsToNextTier: loyalty.PointsToNextTier(account.LifetimePoints, s.tiers),
		TierProgress:     loyalty.TierProgress(account.LifetimePoints, s.tiers),
	}, nil
}
