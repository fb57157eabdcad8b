package repository

import (
	"fmt"
	"sync"

	"auction-service/internal/auctionerrors"
	model "auction-service/internal/models"
	"auction-service/utils"
)

// AuctionDB defines the auction, participant and bid-ledger storage interface
type AuctionDB interface {
	CreateAuction(auction model.Auction) error
	GetAuction(auctionID string) (model.Auction, error)
	UpdateAuction(auction model.Auction) error
	DeleteAuction(auctionID string) error
	ListAuctions() ([]model.Auction, error)
	MarkAuctionClosed(auction model.Auction) error

	GetOrCreateParticipant(auctionID, userID, participantName string) (model.Participant, error)
	GetParticipant(auctionID, userID string) (model.Participant, error)

	RecordBid(auction model.Auction, expectedBid float64, bid model.Bid) error
	GetWinningBid(auctionID string) (model.Bid, error)
	GetBidsByAuction(auctionID string) ([]model.BidView, error)
}

// UserDB defines user account storage for the identity service
type UserDB interface {
	CreateUser(user model.User) error
	GetUserByID(userID string) (model.User, error)
	GetUserByEmail(email string) (model.User, error)
	GetUserByVerificationToken(token string) (model.User, error)
	UpdateUser(user model.User) error
}

// MemoryRepo is a concurrency-safe in-memory implementation of AuctionDB and UserDB
type MemoryRepo struct {
	mu           sync.RWMutex
	auctions     map[string]model.Auction     // key: auctionID -> auction
	participants map[string]model.Participant // key: auctionID/userID -> participant
	bids         map[string][]model.Bid       // key: auctionID -> ledger entries in insertion order
	users        map[string]model.User        // key: userID -> user
}

// NewMemoryRepo creates a new in-memory repository instance
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		auctions:     make(map[string]model.Auction),
		participants: make(map[string]model.Participant),
		bids:         make(map[string][]model.Bid),
		users:        make(map[string]model.User),
	}
}

func participantKey(auctionID, userID string) string {
	return auctionID + "/" + userID
}

// CreateAuction stores a new auction record
func (r *MemoryRepo) CreateAuction(auction model.Auction) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.auctions[auction.AuctionID] = auction
	return nil
}

// GetAuction returns the auction with the given ID
func (r *MemoryRepo) GetAuction(auctionID string) (model.Auction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	auction, ok := r.auctions[auctionID]
	if !ok {
		return model.Auction{}, fmt.Errorf("get auction %s: %w", auctionID, auctionerrors.ErrAuctionNotFound)
	}
	return auction, nil
}

// UpdateAuction overwrites an existing auction record
func (r *MemoryRepo) UpdateAuction(auction model.Auction) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.auctions[auction.AuctionID]; !ok {
		return fmt.Errorf("update auction %s: %w", auction.AuctionID, auctionerrors.ErrAuctionNotFound)
	}
	r.auctions[auction.AuctionID] = auction
	return nil
}

// DeleteAuction removes an auction record. Administrative escape hatch only.
func (r *MemoryRepo) DeleteAuction(auctionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.auctions[auctionID]; !ok {
		return fmt.Errorf("delete auction %s: %w", auctionID, auctionerrors.ErrAuctionNotFound)
	}
	delete(r.auctions, auctionID)
	return nil
}

// ListAuctions returns all auction records
func (r *MemoryRepo) ListAuctions() ([]model.Auction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	auctions := make([]model.Auction, 0, len(r.auctions))
	for _, auction := range r.auctions {
		auctions = append(auctions, auction)
	}
	return auctions, nil
}

// MarkAuctionClosed persists the closed auction only if the stored record is
// still open. Losing this race to a concurrent close returns
// ErrConcurrentUpdate so only one close ever commits a winner.
func (r *MemoryRepo) MarkAuctionClosed(auction model.Auction) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.auctions[auction.AuctionID]
	if !ok {
		return fmt.Errorf("close auction %s: %w", auction.AuctionID, auctionerrors.ErrAuctionNotFound)
	}
	if stored.Status != model.AuctionStatusOpen {
		return fmt.Errorf("close auction %s: %w", auction.AuctionID, auctionerrors.ErrConcurrentUpdate)
	}
	r.auctions[auction.AuctionID] = auction
	return nil
}

// GetOrCreateParticipant returns the join record for (auctionID, userID),
// creating it if this is the user's first contact with the auction. Repeated
// calls return the existing record unchanged; concurrent first joins collapse
// to a single record.
func (r *MemoryRepo) GetOrCreateParticipant(auctionID, userID, participantName string) (model.Participant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.auctions[auctionID]; !ok {
		return model.Participant{}, fmt.Errorf("join auction %s: %w", auctionID, auctionerrors.ErrAuctionNotFound)
	}

	key := participantKey(auctionID, userID)
	if participant, ok := r.participants[key]; ok {
		return participant, nil
	}

	participant := model.Participant{
		ParticipantID:   utils.GenerateID(),
		AuctionID:       auctionID,
		UserID:          userID,
		ParticipantName: participantName,
		Bids:            []model.ParticipantBid{},
	}
	r.participants[key] = participant
	return participant, nil
}

// GetParticipant returns the join record for (auctionID, userID)
func (r *MemoryRepo) GetParticipant(auctionID, userID string) (model.Participant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	participant, ok := r.participants[participantKey(auctionID, userID)]
	if !ok {
		return model.Participant{}, fmt.Errorf("get participant %s for auction %s: %w", userID, auctionID, auctionerrors.ErrParticipantNotFound)
	}
	return participant, nil
}

// RecordBid commits an accepted bid: it persists the updated auction only if
// the stored record is still open and its current bid still equals
// expectedBid, appends the ledger entry and appends to the bidder's
// participant history. A mismatch on expectedBid means a concurrent bid won
// the race and the caller must re-validate; a closed record means a close
// committed after the caller's read and the bid is refused outright.
func (r *MemoryRepo) RecordBid(auction model.Auction, expectedBid float64, bid model.Bid) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.auctions[auction.AuctionID]
	if !ok {
		return fmt.Errorf("record bid for auction %s: %w", auction.AuctionID, auctionerrors.ErrAuctionNotFound)
	}
	if stored.Status != model.AuctionStatusOpen {
		return fmt.Errorf("record bid for auction %s: %w", auction.AuctionID, auctionerrors.ErrAuctionEnded)
	}
	if stored.CurrentBid != expectedBid {
		return fmt.Errorf("record bid for auction %s: %w", auction.AuctionID, auctionerrors.ErrConcurrentUpdate)
	}

	key := participantKey(bid.AuctionID, bid.UserID)
	participant, ok := r.participants[key]
	if !ok {
		return fmt.Errorf("record bid for auction %s: %w", auction.AuctionID, auctionerrors.ErrParticipantNotFound)
	}

	r.auctions[auction.AuctionID] = auction
	r.bids[bid.AuctionID] = append(r.bids[bid.AuctionID], bid)

	participant.Bids = append(participant.Bids, model.ParticipantBid{BidAmount: bid.Amount, BidTime: bid.CreatedAt})
	r.participants[key] = participant

	return nil
}

// GetWinningBid returns the ledger entry with the highest amount for an
// auction; ties go to the earliest bid.
func (r *MemoryRepo) GetWinningBid(auctionID string) (model.Bid, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	bids, ok := r.bids[auctionID]
	if !ok || len(bids) == 0 {
		return model.Bid{}, fmt.Errorf("get winning bid for auction %s: %w", auctionID, auctionerrors.ErrNoBids)
	}

	winning := bids[0]
	for _, b := range bids[1:] {
		if b.Amount > winning.Amount || (b.Amount == winning.Amount && b.CreatedAt.Before(winning.CreatedAt)) {
			winning = b
		}
	}
	return winning, nil
}

// GetBidsByAuction returns all ledger entries for an auction, each joined
// with minimal auction context for display
func (r *MemoryRepo) GetBidsByAuction(auctionID string) ([]model.BidView, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	auction, ok := r.auctions[auctionID]
	if !ok {
		return nil, fmt.Errorf("get bids for auction %s: %w", auctionID, auctionerrors.ErrAuctionNotFound)
	}

	bids, ok := r.bids[auctionID]
	if !ok || len(bids) == 0 {
		return nil, fmt.Errorf("get bids for auction %s: %w", auctionID, auctionerrors.ErrNoBids)
	}

	views := make([]model.BidView, 0, len(bids))
	for _, b := range bids {
		views = append(views, model.BidView{
			BidID:              b.BidID,
			BidderName:         b.BidderName,
			Amount:             b.Amount,
			CreatedAt:          b.CreatedAt,
			ProductName:        auction.ProductName,
			ProductDescription: auction.ProductDescription,
			StartingBid:        auction.StartingBid,
		})
	}
	return views, nil
}

// CreateUser stores a new user account
func (r *MemoryRepo) CreateUser(user model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.users[user.UserID] = user
	return nil
}

// GetUserByID returns the user with the given ID
func (r *MemoryRepo) GetUserByID(userID string) (model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.users[userID]
	if !ok {
		return model.User{}, fmt.Errorf("get user %s: %w", userID, auctionerrors.ErrUserNotFound)
	}
	return user, nil
}

// GetUserByEmail returns the user registered with the given email
func (r *MemoryRepo) GetUserByEmail(email string) (model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, user := range r.users {
		if user.Email == email {
			return user, nil
		}
	}
	return model.User{}, fmt.Errorf("get user by email %s: %w", email, auctionerrors.ErrUserNotFound)
}

// GetUserByVerificationToken returns the user holding a pending verification token
func (r *MemoryRepo) GetUserByVerificationToken(token string) (model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, user := range r.users {
		if user.VerificationToken != "" && user.VerificationToken == token {
			return user, nil
		}
	}
	return model.User{}, fmt.Errorf("get user by verification token: %w", auctionerrors.ErrUserNotFound)
}

// UpdateUser overwrites an existing user account
func (r *MemoryRepo) UpdateUser(user model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[user.UserID]; !ok {
		return fmt.Errorf("update user %s: %w", user.UserID, auctionerrors.ErrUserNotFound)
	}
	r.users[user.UserID] = user
	return nil
}
