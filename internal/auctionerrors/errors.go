package auctionerrors

import "errors"

// Repository-level errors
var (
	ErrAuctionNotFound     = errors.New("auction not found")
	ErrParticipantNotFound = errors.New("participant not found")
	ErrUserNotFound        = errors.New("user not found")
	ErrNoBids              = errors.New("no bids found for auction")
	ErrConcurrentUpdate    = errors.New("auction was updated concurrently")
)

// business logic errors
var (
	ErrValidation        = errors.New("invalid auction details")
	ErrInvalidBid        = errors.New("invalid bid")
	ErrBidTooLow         = errors.New("bid amount too low")
	ErrAuctionEnded      = errors.New("auction has ended")
	ErrInconsistentState = errors.New("auction state is inconsistent")
)

// identity errors
var (
	ErrEmailTaken        = errors.New("email already exists")
	ErrInvalidCredential = errors.New("invalid credentials")
	ErrEmailNotVerified  = errors.New("email not verified")
	ErrInvalidToken      = errors.New("invalid or expired verification token")
)
