package helpers

import (
	model "auction-service/internal/models"
)

// Request/Response DTOs
type RegisterRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
	Phone    string `json:"phone"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	Token string `json:"token"`
}

type LogoutRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type CreateAuctionRequest struct {
	ProductName        string   `json:"product_name" binding:"required"`
	ProductDescription string   `json:"product_description"`
	ProductSize        string   `json:"product_size"`
	ProductImages      []string `json:"product_images" binding:"required,min=1"`
	StartingBid        float64  `json:"starting_bid" binding:"gte=0"`
	MinimumIncrement   float64  `json:"minimum_increment" binding:"required,gt=0"`
	DurationMinutes    int      `json:"duration_minutes" binding:"required,gt=0"`
	AuctionType        string   `json:"auction_type" binding:"required,oneof=auto_extend fixed_time"`
	ExtendTime         int      `json:"extend_time" binding:"gte=0"`
}

type UpdateAuctionRequest struct {
	ProductName        *string  `json:"product_name"`
	ProductDescription *string  `json:"product_description"`
	ProductSize        *string  `json:"product_size"`
	ProductImages      []string `json:"product_images"`
}

type PlaceBidRequest struct {
	Amount float64 `json:"amount" binding:"required,gt=0"`
}

type PlaceBidResponse struct {
	Auction     model.Auction     `json:"auction"`
	Participant model.Participant `json:"participant"`
}
