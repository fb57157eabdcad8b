package auction

import (
	"errors"
	"fmt"
	"time"

	"auction-service/internal/auctionerrors"
	"auction-service/internal/models"
	"auction-service/internal/notifier"
	"auction-service/internal/repository"
	"auction-service/utils"
)

const (
	// retries for bids that lose the per-auction compare-and-swap race
	maxBidAttempts = 3

	defaultExtendMinutes = 10
)

// AuctionService implements the auction lifecycle: creation, joining, the
// bid-acceptance state machine and closing.
type AuctionService struct {
	repo     repository.AuctionDB
	users    repository.UserDB
	notifier notifier.Notifier
}

// NewAuctionService creates a new AuctionService instance
func NewAuctionService(repo repository.AuctionDB, users repository.UserDB, sink notifier.Notifier) *AuctionService {
	return &AuctionService{
		repo:     repo,
		users:    users,
		notifier: sink,
	}
}

// CreateAuctionInput carries the fields needed to open a new auction
type CreateAuctionInput struct {
	ProductName        string
	ProductDescription string
	ProductSize        string
	ProductImages      []string
	StartingBid        float64
	MinimumIncrement   float64
	DurationMinutes    int
	AuctionType        string
	ExtendTime         int
}

// UpdateAuctionInput carries the administratively editable auction fields;
// nil pointers leave the stored value unchanged
type UpdateAuctionInput struct {
	ProductName        *string
	ProductDescription *string
	ProductSize        *string
	ProductImages      []string
}

// CloseResult reports the outcome of closing an auction
type CloseResult struct {
	AuctionID  string  `json:"auction_id"`
	Status     string  `json:"status"`
	Winner     string  `json:"winner"`
	WinningBid float64 `json:"winning_bid"`
}

// CreateAuction validates the input and opens a new auction with the current
// bid at the starting bid and the deadline at startTime+duration
func (s *AuctionService) CreateAuction(input CreateAuctionInput) (models.Auction, error) {
	if err := validateAuctionInput(input); err != nil {
		return models.Auction{}, err
	}

	extendTime := input.ExtendTime
	if extendTime <= 0 {
		extendTime = defaultExtendMinutes
	}

	now := time.Now().UTC()
	auction := models.Auction{
		AuctionID:          utils.GenerateID(),
		ProductName:        input.ProductName,
		ProductDescription: input.ProductDescription,
		ProductSize:        input.ProductSize,
		ProductImages:      input.ProductImages,
		StartingBid:        input.StartingBid,
		MinimumIncrement:   input.MinimumIncrement,
		CurrentBid:         input.StartingBid,
		HighestBidder:      "",
		Bids:               []models.BidEntry{},
		StartTime:          now,
		EndsIn:             now.Add(time.Duration(input.DurationMinutes) * time.Minute),
		AuctionType:        input.AuctionType,
		ExtendTime:         extendTime,
		Status:             models.AuctionStatusOpen,
	}

	if err := s.repo.CreateAuction(auction); err != nil {
		return models.Auction{}, fmt.Errorf("service: failed to create auction: %w", err)
	}
	return auction, nil
}

// validateAuctionInput checks required fields for auction creation
func validateAuctionInput(input CreateAuctionInput) error {
	switch {
	case input.ProductName == "":
		return fmt.Errorf("service: %w - missing product name", auctionerrors.ErrValidation)
	case input.StartingBid < 0:
		return fmt.Errorf("service: %w - negative starting bid", auctionerrors.ErrValidation)
	case input.MinimumIncrement <= 0:
		return fmt.Errorf("service: %w - minimum increment must be positive", auctionerrors.ErrValidation)
	case input.DurationMinutes <= 0:
		return fmt.Errorf("service: %w - duration must be positive", auctionerrors.ErrValidation)
	case len(input.ProductImages) == 0:
		return fmt.Errorf("service: %w - at least one product image is required", auctionerrors.ErrValidation)
	case input.AuctionType != models.AuctionTypeAutoExtend && input.AuctionType != models.AuctionTypeFixedTime:
		return fmt.Errorf("service: %w - auction type must be %s or %s", auctionerrors.ErrValidation,
			models.AuctionTypeAutoExtend, models.AuctionTypeFixedTime)
	}
	return nil
}

// GetAuction returns a single auction by ID
func (s *AuctionService) GetAuction(auctionID string) (models.Auction, error) {
	if auctionID == "" {
		return models.Auction{}, fmt.Errorf("service: %w - empty auction ID", auctionerrors.ErrValidation)
	}
	auction, err := s.repo.GetAuction(auctionID)
	if err != nil {
		return models.Auction{}, fmt.Errorf("service: failed to get auction %s: %w", auctionID, err)
	}
	return auction, nil
}

// ListAuctions returns all auctions
func (s *AuctionService) ListAuctions() ([]models.Auction, error) {
	auctions, err := s.repo.ListAuctions()
	if err != nil {
		return nil, fmt.Errorf("service: failed to list auctions: %w", err)
	}
	return auctions, nil
}

// UpdateAuction applies administrative edits to an auction's product fields
func (s *AuctionService) UpdateAuction(auctionID string, input UpdateAuctionInput) (models.Auction, error) {
	if auctionID == "" {
		return models.Auction{}, fmt.Errorf("service: %w - empty auction ID", auctionerrors.ErrValidation)
	}

	auction, err := s.repo.GetAuction(auctionID)
	if err != nil {
		return models.Auction{}, fmt.Errorf("service: failed to get auction %s: %w", auctionID, err)
	}

	if input.ProductName != nil {
		auction.ProductName = *input.ProductName
	}
	if input.ProductDescription != nil {
		auction.ProductDescription = *input.ProductDescription
	}
	if input.ProductSize != nil {
		auction.ProductSize = *input.ProductSize
	}
	if len(input.ProductImages) > 0 {
		auction.ProductImages = input.ProductImages
	}

	if err := s.repo.UpdateAuction(auction); err != nil {
		return models.Auction{}, fmt.Errorf("service: failed to update auction %s: %w", auctionID, err)
	}
	return auction, nil
}

// DeleteAuction removes an auction. Administrative escape hatch only.
func (s *AuctionService) DeleteAuction(auctionID string) error {
	if auctionID == "" {
		return fmt.Errorf("service: %w - empty auction ID", auctionerrors.ErrValidation)
	}
	if err := s.repo.DeleteAuction(auctionID); err != nil {
		return fmt.Errorf("service: failed to delete auction %s: %w", auctionID, err)
	}
	return nil
}

// JoinAuction registers a user as a participant of an auction. Joining twice
// is a no-op success that returns the existing participant.
func (s *AuctionService) JoinAuction(auctionID, userID, participantName string) (models.Participant, error) {
	if auctionID == "" || userID == "" {
		return models.Participant{}, fmt.Errorf("service: %w - missing auctionID or userID", auctionerrors.ErrValidation)
	}
	participant, err := s.repo.GetOrCreateParticipant(auctionID, userID, participantName)
	if err != nil {
		return models.Participant{}, fmt.Errorf("service: failed to join auction %s: %w", auctionID, err)
	}
	return participant, nil
}

// PlaceBid validates a bid against the auction's price floor and deadline and
// commits it through the single atomic write path. A bid that loses the
// compare-and-swap race to a concurrent bid is re-validated against the
// fresher floor before giving up, so it can never overwrite a higher bid.
// Rejected bids leave no side effects.
func (s *AuctionService) PlaceBid(auctionID, userID, bidderName string, amount float64) (models.Auction, models.Participant, error) {
	if auctionID == "" || userID == "" {
		return models.Auction{}, models.Participant{}, fmt.Errorf("service: %w - missing auctionID or userID", auctionerrors.ErrInvalidBid)
	}
	if amount <= 0 {
		return models.Auction{}, models.Participant{}, fmt.Errorf("service: %w - non-positive bid amount", auctionerrors.ErrInvalidBid)
	}

	for attempt := 0; attempt < maxBidAttempts; attempt++ {
		auction, err := s.repo.GetAuction(auctionID)
		if err != nil {
			return models.Auction{}, models.Participant{}, fmt.Errorf("service: failed to load auction %s: %w", auctionID, err)
		}

		// join-on-first-bid fallback
		if _, err := s.repo.GetOrCreateParticipant(auctionID, userID, bidderName); err != nil {
			return models.Auction{}, models.Participant{}, fmt.Errorf("service: failed to resolve participant for auction %s: %w", auctionID, err)
		}

		now := time.Now().UTC()
		if auction.Status == models.AuctionStatusClosed || now.After(auction.EndsIn) {
			return models.Auction{}, models.Participant{}, fmt.Errorf("service: %w", auctionerrors.ErrAuctionEnded)
		}

		// both comparisons are kept explicit; the increment check only
		// subsumes the first while the increment is non-negative
		if amount <= auction.CurrentBid || amount < auction.CurrentBid+auction.MinimumIncrement {
			return models.Auction{}, models.Participant{}, fmt.Errorf("service: %w - must be at least %.2f",
				auctionerrors.ErrBidTooLow, auction.CurrentBid+auction.MinimumIncrement)
		}

		expectedBid := auction.CurrentBid
		auction.CurrentBid = amount
		auction.HighestBidder = bidderName
		auction.Bids = append(auction.Bids, models.BidEntry{BidderName: bidderName, BidAmount: amount, BidTime: now})
		extendAuctionTime(&auction, now)

		bid := models.Bid{
			BidID:      utils.GenerateID(),
			AuctionID:  auctionID,
			UserID:     userID,
			BidderName: bidderName,
			Amount:     amount,
			CreatedAt:  now,
		}

		err = s.repo.RecordBid(auction, expectedBid, bid)
		if errors.Is(err, auctionerrors.ErrConcurrentUpdate) {
			// a concurrent bid moved the floor; re-validate against it
			continue
		}
		if err != nil {
			return models.Auction{}, models.Participant{}, fmt.Errorf("service: failed to record bid for auction %s by user %s: %w", auctionID, userID, err)
		}

		participant, err := s.repo.GetParticipant(auctionID, userID)
		if err != nil {
			return models.Auction{}, models.Participant{}, fmt.Errorf("service: failed to load participant for auction %s: %w", auctionID, err)
		}
		return auction, participant, nil
	}

	return models.Auction{}, models.Participant{}, fmt.Errorf("service: bid for auction %s lost %d races: %w",
		auctionID, maxBidAttempts, auctionerrors.ErrConcurrentUpdate)
}

// extendAuctionTime pushes the deadline forward when a bid lands inside the
// trailing extend window. Only auto_extend auctions are affected and the
// deadline never moves backward.
func extendAuctionTime(auction *models.Auction, now time.Time) {
	if auction.AuctionType != models.AuctionTypeAutoExtend {
		return
	}
	window := time.Duration(auction.ExtendTime) * time.Minute
	if auction.EndsIn.Sub(now) <= window {
		auction.EndsIn = now.Add(window)
	}
}

// ListBids returns the full ledger for an auction joined with auction context
func (s *AuctionService) ListBids(auctionID string) ([]models.BidView, error) {
	if auctionID == "" {
		return nil, fmt.Errorf("service: %w - empty auction ID", auctionerrors.ErrValidation)
	}
	views, err := s.repo.GetBidsByAuction(auctionID)
	if err != nil {
		return nil, fmt.Errorf("service: failed to get bids for auction %s: %w", auctionID, err)
	}
	return views, nil
}

// CloseAuction freezes bidding and declares a winner from the ledger. Closing
// an already-closed auction returns the recorded winner without recomputing
// or re-notifying; the same holds for a close that loses the persist race to
// a concurrent close. An auction without bids closes without a winner.
func (s *AuctionService) CloseAuction(auctionID string) (CloseResult, error) {
	if auctionID == "" {
		return CloseResult{}, fmt.Errorf("service: %w - empty auction ID", auctionerrors.ErrValidation)
	}

	auction, err := s.repo.GetAuction(auctionID)
	if err != nil {
		return CloseResult{}, fmt.Errorf("service: failed to load auction %s: %w", auctionID, err)
	}

	if auction.Status == models.AuctionStatusClosed {
		return recordedCloseResult(auction), nil
	}

	winning, err := s.repo.GetWinningBid(auctionID)
	if errors.Is(err, auctionerrors.ErrNoBids) {
		auction.Status = models.AuctionStatusClosed
		auction.Winner = ""
		if err := s.repo.MarkAuctionClosed(auction); err != nil {
			if errors.Is(err, auctionerrors.ErrConcurrentUpdate) {
				return s.concurrentCloseResult(auctionID)
			}
			return CloseResult{}, fmt.Errorf("service: failed to close auction %s: %w", auctionID, err)
		}
		utils.Info("auction closed without winner", map[string]any{"auction_id": auctionID})
		return CloseResult{AuctionID: auctionID, Status: models.AuctionStatusClosed}, nil
	}
	if err != nil {
		return CloseResult{}, fmt.Errorf("service: failed to get winning bid for auction %s: %w", auctionID, err)
	}

	participant, err := s.repo.GetParticipant(auctionID, winning.UserID)
	if err != nil {
		utils.Error("winning bid has no matching participant", map[string]any{
			"auction_id": auctionID,
			"user_id":    winning.UserID,
			"error":      err.Error(),
		})
		return CloseResult{}, fmt.Errorf("service: winning bidder %s has no participant record for auction %s: %w",
			winning.UserID, auctionID, auctionerrors.ErrInconsistentState)
	}

	auction.Status = models.AuctionStatusClosed
	auction.Winner = winning.BidderName
	if err := s.repo.MarkAuctionClosed(auction); err != nil {
		if errors.Is(err, auctionerrors.ErrConcurrentUpdate) {
			return s.concurrentCloseResult(auctionID)
		}
		return CloseResult{}, fmt.Errorf("service: failed to close auction %s: %w", auctionID, err)
	}

	s.notifyWinner(auction, winning, participant)

	return CloseResult{
		AuctionID:  auctionID,
		Status:     models.AuctionStatusClosed,
		Winner:     winning.BidderName,
		WinningBid: winning.Amount,
	}, nil
}

// recordedCloseResult reports the outcome persisted by a previous close
func recordedCloseResult(auction models.Auction) CloseResult {
	return CloseResult{
		AuctionID:  auction.AuctionID,
		Status:     auction.Status,
		Winner:     auction.Winner,
		WinningBid: auction.CurrentBid,
	}
}

// concurrentCloseResult resolves a close that lost the persist race: the
// winning close already committed and notified, so this one only reports
// what was recorded
func (s *AuctionService) concurrentCloseResult(auctionID string) (CloseResult, error) {
	auction, err := s.repo.GetAuction(auctionID)
	if err != nil {
		return CloseResult{}, fmt.Errorf("service: failed to load auction %s after close race: %w", auctionID, err)
	}
	return recordedCloseResult(auction), nil
}

// notifyWinner dispatches the winner email after the close has committed.
// Notification is best-effort: a missing address or a delivery failure is
// logged and never fails the close.
func (s *AuctionService) notifyWinner(auction models.Auction, winning models.Bid, participant models.Participant) {
	user, err := s.users.GetUserByID(winning.UserID)
	if err != nil || user.Email == "" {
		utils.Warn("winner notification undeliverable", map[string]any{
			"auction_id": auction.AuctionID,
			"user_id":    winning.UserID,
		})
		return
	}

	go func() {
		err := s.notifier.Notify(user.Email, notifier.TemplateAuctionWon, map[string]any{
			"participant_name": participant.ParticipantName,
			"product_name":     auction.ProductName,
			"winning_bid":      winning.Amount,
		})
		if err != nil {
			utils.Error("failed to send winner notification", map[string]any{
				"auction_id": auction.AuctionID,
				"email":      user.Email,
				"error":      err.Error(),
			})
		}
	}()
}
