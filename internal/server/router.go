package server

import (
	auction "auction-service/internal/auctionService"
	"auction-service/internal/identity"
	handler "auction-service/services/auction/handler"

	"github.com/gin-gonic/gin"
)

// SetupRouter configures all Gin routes for the application
func SetupRouter(auctionService *auction.AuctionService, identityService *identity.Service) *gin.Engine {
	router := gin.New() // New router without default middleware for full control over middleware and logging

	router.Use(gin.Recovery())          // recover from panics
	router.Use(RequestLoggerMiddleware) // custom request logging

	auctionHandler := handler.NewAuctionHandler(auctionService)
	authHandler := handler.NewAuthHandler(identityService)

	auth := router.Group("/auth")
	{
		auth.POST("/register", authHandler.RegisterHandler)
		auth.GET("/verify", authHandler.VerifyEmailHandler)
		auth.POST("/login", authHandler.LoginHandler)
		auth.POST("/logout", authHandler.LogoutHandler)
	}

	auctions := router.Group("/auctions")
	{
		auctions.POST("", auctionHandler.CreateAuctionHandler)
		auctions.GET("", auctionHandler.ListAuctionsHandler)
		auctions.GET("/:auction_id", auctionHandler.GetAuctionHandler)
		auctions.PUT("/:auction_id", auctionHandler.UpdateAuctionHandler)
		auctions.DELETE("/:auction_id", auctionHandler.DeleteAuctionHandler)
		auctions.GET("/:auction_id/bids", auctionHandler.GetBidsByAuctionHandler)
		auctions.POST("/:auction_id/close", auctionHandler.CloseAuctionHandler)

		authed := auctions.Group("")
		authed.Use(AuthRequiredMiddleware(identityService))
		{
			authed.POST("/:auction_id/join", auctionHandler.JoinAuctionHandler)
			authed.POST("/:auction_id/bid", auctionHandler.PlaceBidHandler)
		}
	}

	return router
}
