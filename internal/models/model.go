package models

import "time"

// Auction lifecycle status values
const (
	AuctionStatusOpen   = "open"
	AuctionStatusClosed = "closed"
)

// Auction timing policies
const (
	AuctionTypeAutoExtend = "auto_extend"
	AuctionTypeFixedTime  = "fixed_time"
)

// Auction represents a timed sale of one item accepting successive bids.
// CurrentBid and HighestBidder are a materialized view of the bid ledger;
// both are updated through a single atomic write path alongside each ledger
// append and must never diverge from it.
type Auction struct {
	AuctionID          string     `json:"auction_id" bson:"_id"`
	ProductName        string     `json:"product_name" bson:"product_name"`
	ProductDescription string     `json:"product_description" bson:"product_description"`
	ProductSize        string     `json:"product_size" bson:"product_size"`
	ProductImages      []string   `json:"product_images" bson:"product_images"`
	StartingBid        float64    `json:"starting_bid" bson:"starting_bid"`
	MinimumIncrement   float64    `json:"minimum_increment" bson:"minimum_increment"`
	CurrentBid         float64    `json:"current_bid" bson:"current_bid"`
	HighestBidder      string     `json:"highest_bidder" bson:"highest_bidder"`
	Bids               []BidEntry `json:"bids" bson:"bids"`
	StartTime          time.Time  `json:"start_time" bson:"start_time"`
	EndsIn             time.Time  `json:"ends_in" bson:"ends_in"`
	AuctionType        string     `json:"auction_type" bson:"auction_type"`
	ExtendTime         int        `json:"extend_time" bson:"extend_time"`
	Status             string     `json:"status" bson:"status"`
	Winner             string     `json:"winner" bson:"winner"`
}

// BidEntry is one entry of the denormalized bid history embedded in an Auction
type BidEntry struct {
	BidderName string    `json:"bidder_name" bson:"bidder_name"`
	BidAmount  float64   `json:"bid_amount" bson:"bid_amount"`
	BidTime    time.Time `json:"bid_time" bson:"bid_time"`
}

// Participant represents a user's registered involvement in one auction.
// The (AuctionID, UserID) pair is unique.
type Participant struct {
	ParticipantID   string           `json:"participant_id" bson:"_id"`
	AuctionID       string           `json:"auction_id" bson:"auction_id"`
	UserID          string           `json:"user_id" bson:"user_id"`
	ParticipantName string           `json:"participant_name" bson:"participant_name"`
	Bids            []ParticipantBid `json:"bids" bson:"bids"`
}

// ParticipantBid is one entry of a participant's own bid history
type ParticipantBid struct {
	BidAmount float64   `json:"bid_amount" bson:"bid_amount"`
	BidTime   time.Time `json:"bid_time" bson:"bid_time"`
}

// Bid is one ledger entry. The ledger is append-only and is the source of
// truth for who placed what, when.
type Bid struct {
	BidID      string    `json:"bid_id" bson:"_id"`
	AuctionID  string    `json:"auction_id" bson:"auction_id"`
	UserID     string    `json:"user_id" bson:"user_id"`
	BidderName string    `json:"bidder_name" bson:"bidder_name"`
	Amount     float64   `json:"amount" bson:"amount"`
	CreatedAt  time.Time `json:"created_at" bson:"created_at"`
}

// BidView is a ledger entry joined with minimal auction context for display
type BidView struct {
	BidID              string    `json:"bid_id"`
	BidderName         string    `json:"bidder_name"`
	Amount             float64   `json:"amount"`
	CreatedAt          time.Time `json:"created_at"`
	ProductName        string    `json:"product_name"`
	ProductDescription string    `json:"product_description"`
	StartingBid        float64   `json:"starting_bid"`
}

// User represents a registered account
type User struct {
	UserID            string   `json:"user_id" bson:"_id"`
	Name              string   `json:"name" bson:"name"`
	Email             string   `json:"email" bson:"email"`
	Phone             string   `json:"phone" bson:"phone"`
	PasswordHash      string   `json:"-" bson:"password_hash"`
	IsVerified        bool     `json:"is_verified" bson:"is_verified"`
	VerificationToken string   `json:"-" bson:"verification_token"`
	Tokens            []string `json:"-" bson:"tokens"`
}
