package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"auction-service/internal/auctionerrors"
	model "auction-service/internal/models"
	"auction-service/utils"
)

const mongoOpTimeout = 5 * time.Second

// MongoRepo is a MongoDB-backed implementation of AuctionDB and UserDB.
// The per-auction compare-and-swap in RecordBid relies on a conditional
// update against the stored current_bid; the participant registry relies on
// a unique compound index over (auction_id, user_id).
type MongoRepo struct {
	client       *mongo.Client
	auctions     *mongo.Collection
	participants *mongo.Collection
	bids         *mongo.Collection
	users        *mongo.Collection
}

// NewMongoRepo connects to MongoDB and prepares the collections and indexes
func NewMongoRepo(ctx context.Context, uri, dbName string) (*MongoRepo, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect to mongodb: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("ping mongodb: %w", err)
	}

	db := client.Database(dbName)
	repo := &MongoRepo{
		client:       client,
		auctions:     db.Collection("auctions"),
		participants: db.Collection("participants"),
		bids:         db.Collection("bids"),
		users:        db.Collection("users"),
	}
	if err := repo.ensureIndexes(ctx); err != nil {
		return nil, err
	}
	return repo, nil
}

// Close disconnects the underlying client
func (r *MongoRepo) Close(ctx context.Context) error {
	return r.client.Disconnect(ctx)
}

func (r *MongoRepo) ensureIndexes(ctx context.Context) error {
	// one participant record per user per auction; concurrent first joins
	// collapse onto this constraint
	_, err := r.participants.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "auction_id", Value: 1}, {Key: "user_id", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("create participant index: %w", err)
	}

	_, err = r.bids.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "auction_id", Value: 1}, {Key: "amount", Value: -1}, {Key: "created_at", Value: 1}},
	})
	if err != nil {
		return fmt.Errorf("create bid index: %w", err)
	}

	_, err = r.users.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("create user index: %w", err)
	}
	return nil
}

func opCtx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), mongoOpTimeout)
}

// CreateAuction stores a new auction record
func (r *MongoRepo) CreateAuction(auction model.Auction) error {
	ctx, cancel := opCtx()
	defer cancel()

	if _, err := r.auctions.InsertOne(ctx, auction); err != nil {
		return fmt.Errorf("create auction %s: %w", auction.AuctionID, err)
	}
	return nil
}

// GetAuction returns the auction with the given ID
func (r *MongoRepo) GetAuction(auctionID string) (model.Auction, error) {
	ctx, cancel := opCtx()
	defer cancel()

	var auction model.Auction
	err := r.auctions.FindOne(ctx, bson.M{"_id": auctionID}).Decode(&auction)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return model.Auction{}, fmt.Errorf("get auction %s: %w", auctionID, auctionerrors.ErrAuctionNotFound)
	}
	if err != nil {
		return model.Auction{}, fmt.Errorf("get auction %s: %w", auctionID, err)
	}
	return auction, nil
}

// UpdateAuction overwrites an existing auction record
func (r *MongoRepo) UpdateAuction(auction model.Auction) error {
	ctx, cancel := opCtx()
	defer cancel()

	res, err := r.auctions.ReplaceOne(ctx, bson.M{"_id": auction.AuctionID}, auction)
	if err != nil {
		return fmt.Errorf("update auction %s: %w", auction.AuctionID, err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("update auction %s: %w", auction.AuctionID, auctionerrors.ErrAuctionNotFound)
	}
	return nil
}

// DeleteAuction removes an auction record. Administrative escape hatch only.
func (r *MongoRepo) DeleteAuction(auctionID string) error {
	ctx, cancel := opCtx()
	defer cancel()

	res, err := r.auctions.DeleteOne(ctx, bson.M{"_id": auctionID})
	if err != nil {
		return fmt.Errorf("delete auction %s: %w", auctionID, err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("delete auction %s: %w", auctionID, auctionerrors.ErrAuctionNotFound)
	}
	return nil
}

// ListAuctions returns all auction records
func (r *MongoRepo) ListAuctions() ([]model.Auction, error) {
	ctx, cancel := opCtx()
	defer cancel()

	cursor, err := r.auctions.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("list auctions: %w", err)
	}
	var auctions []model.Auction
	if err := cursor.All(ctx, &auctions); err != nil {
		return nil, fmt.Errorf("list auctions: %w", err)
	}
	return auctions, nil
}

// MarkAuctionClosed persists the closed auction only if the stored record is
// still open, so two concurrent closes cannot both commit a winner
func (r *MongoRepo) MarkAuctionClosed(auction model.Auction) error {
	ctx, cancel := opCtx()
	defer cancel()

	res, err := r.auctions.ReplaceOne(ctx,
		bson.M{"_id": auction.AuctionID, "status": model.AuctionStatusOpen}, auction)
	if err != nil {
		return fmt.Errorf("close auction %s: %w", auction.AuctionID, err)
	}
	if res.MatchedCount == 0 {
		count, err := r.auctions.CountDocuments(ctx, bson.M{"_id": auction.AuctionID})
		if err != nil {
			return fmt.Errorf("close auction %s: %w", auction.AuctionID, err)
		}
		if count == 0 {
			return fmt.Errorf("close auction %s: %w", auction.AuctionID, auctionerrors.ErrAuctionNotFound)
		}
		return fmt.Errorf("close auction %s: %w", auction.AuctionID, auctionerrors.ErrConcurrentUpdate)
	}
	return nil
}

// GetOrCreateParticipant upserts the join record for (auctionID, userID).
// The upsert is atomic on the unique compound index, so concurrent first
// joins all observe the same record.
func (r *MongoRepo) GetOrCreateParticipant(auctionID, userID, participantName string) (model.Participant, error) {
	ctx, cancel := opCtx()
	defer cancel()

	err := r.auctions.FindOne(ctx, bson.M{"_id": auctionID}).Err()
	if errors.Is(err, mongo.ErrNoDocuments) {
		return model.Participant{}, fmt.Errorf("join auction %s: %w", auctionID, auctionerrors.ErrAuctionNotFound)
	}
	if err != nil {
		return model.Participant{}, fmt.Errorf("join auction %s: %w", auctionID, err)
	}

	filter := bson.M{"auction_id": auctionID, "user_id": userID}
	update := bson.M{"$setOnInsert": bson.M{
		"_id":              utils.GenerateID(),
		"participant_name": participantName,
		"bids":             []model.ParticipantBid{},
	}}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var participant model.Participant
	if err := r.participants.FindOneAndUpdate(ctx, filter, update, opts).Decode(&participant); err != nil {
		return model.Participant{}, fmt.Errorf("join auction %s as user %s: %w", auctionID, userID, err)
	}
	return participant, nil
}

// GetParticipant returns the join record for (auctionID, userID)
func (r *MongoRepo) GetParticipant(auctionID, userID string) (model.Participant, error) {
	ctx, cancel := opCtx()
	defer cancel()

	var participant model.Participant
	err := r.participants.FindOne(ctx, bson.M{"auction_id": auctionID, "user_id": userID}).Decode(&participant)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return model.Participant{}, fmt.Errorf("get participant %s for auction %s: %w", userID, auctionID, auctionerrors.ErrParticipantNotFound)
	}
	if err != nil {
		return model.Participant{}, fmt.Errorf("get participant %s for auction %s: %w", userID, auctionID, err)
	}
	return participant, nil
}

// RecordBid commits an accepted bid. The auction write is conditional on the
// stored record still being open with current_bid matching expectedBid, so a
// bid can never overwrite a higher concurrent bid or reopen a concurrent
// close; the ledger append is commutative and follows the auction write.
func (r *MongoRepo) RecordBid(auction model.Auction, expectedBid float64, bid model.Bid) error {
	ctx, cancel := opCtx()
	defer cancel()

	res, err := r.auctions.UpdateOne(ctx,
		bson.M{"_id": auction.AuctionID, "current_bid": expectedBid, "status": model.AuctionStatusOpen},
		bson.M{"$set": bson.M{
			"current_bid":    auction.CurrentBid,
			"highest_bidder": auction.HighestBidder,
			"bids":           auction.Bids,
			"ends_in":        auction.EndsIn,
		}},
	)
	if err != nil {
		return fmt.Errorf("record bid for auction %s: %w", auction.AuctionID, err)
	}
	if res.MatchedCount == 0 {
		var stored model.Auction
		err := r.auctions.FindOne(ctx, bson.M{"_id": auction.AuctionID}).Decode(&stored)
		if errors.Is(err, mongo.ErrNoDocuments) {
			return fmt.Errorf("record bid for auction %s: %w", auction.AuctionID, auctionerrors.ErrAuctionNotFound)
		}
		if err != nil {
			return fmt.Errorf("record bid for auction %s: %w", auction.AuctionID, err)
		}
		if stored.Status != model.AuctionStatusOpen {
			return fmt.Errorf("record bid for auction %s: %w", auction.AuctionID, auctionerrors.ErrAuctionEnded)
		}
		return fmt.Errorf("record bid for auction %s: %w", auction.AuctionID, auctionerrors.ErrConcurrentUpdate)
	}

	if _, err := r.bids.InsertOne(ctx, bid); err != nil {
		return fmt.Errorf("record bid %s in ledger: %w", bid.BidID, err)
	}

	_, err = r.participants.UpdateOne(ctx,
		bson.M{"auction_id": bid.AuctionID, "user_id": bid.UserID},
		bson.M{"$push": bson.M{"bids": model.ParticipantBid{BidAmount: bid.Amount, BidTime: bid.CreatedAt}}},
	)
	if err != nil {
		return fmt.Errorf("record bid %s in participant history: %w", bid.BidID, err)
	}
	return nil
}

// GetWinningBid returns the ledger entry with the highest amount for an
// auction; ties go to the earliest bid.
func (r *MongoRepo) GetWinningBid(auctionID string) (model.Bid, error) {
	ctx, cancel := opCtx()
	defer cancel()

	opts := options.FindOne().SetSort(bson.D{{Key: "amount", Value: -1}, {Key: "created_at", Value: 1}})
	var bid model.Bid
	err := r.bids.FindOne(ctx, bson.M{"auction_id": auctionID}, opts).Decode(&bid)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return model.Bid{}, fmt.Errorf("get winning bid for auction %s: %w", auctionID, auctionerrors.ErrNoBids)
	}
	if err != nil {
		return model.Bid{}, fmt.Errorf("get winning bid for auction %s: %w", auctionID, err)
	}
	return bid, nil
}

// GetBidsByAuction returns all ledger entries for an auction, each joined
// with minimal auction context for display
func (r *MongoRepo) GetBidsByAuction(auctionID string) ([]model.BidView, error) {
	ctx, cancel := opCtx()
	defer cancel()

	var auction model.Auction
	err := r.auctions.FindOne(ctx, bson.M{"_id": auctionID}).Decode(&auction)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("get bids for auction %s: %w", auctionID, auctionerrors.ErrAuctionNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get bids for auction %s: %w", auctionID, err)
	}

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	cursor, err := r.bids.Find(ctx, bson.M{"auction_id": auctionID}, opts)
	if err != nil {
		return nil, fmt.Errorf("get bids for auction %s: %w", auctionID, err)
	}
	var bids []model.Bid
	if err := cursor.All(ctx, &bids); err != nil {
		return nil, fmt.Errorf("get bids for auction %s: %w", auctionID, err)
	}
	if len(bids) == 0 {
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
func (r *MongoRepo) CreateUser(user model.User) error {
	ctx, cancel := opCtx()
	defer cancel()

	if _, err := r.users.InsertOne(ctx, user); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("create user %s: %w", user.UserID, auctionerrors.ErrEmailTaken)
		}
		return fmt.Errorf("create user %s: %w", user.UserID, err)
	}
	return nil
}

// GetUserByID returns the user with the given ID
func (r *MongoRepo) GetUserByID(userID string) (model.User, error) {
	return r.findUser(bson.M{"_id": userID}, fmt.Sprintf("get user %s", userID))
}

// GetUserByEmail returns the user registered with the given email
func (r *MongoRepo) GetUserByEmail(email string) (model.User, error) {
	return r.findUser(bson.M{"email": email}, fmt.Sprintf("get user by email %s", email))
}

// GetUserByVerificationToken returns the user holding a pending verification token
func (r *MongoRepo) GetUserByVerificationToken(token string) (model.User, error) {
	return r.findUser(bson.M{"verification_token": token, "is_verified": false}, "get user by verification token")
}

func (r *MongoRepo) findUser(filter bson.M, op string) (model.User, error) {
	ctx, cancel := opCtx()
	defer cancel()

	var user model.User
	err := r.users.FindOne(ctx, filter).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return model.User{}, fmt.Errorf("%s: %w", op, auctionerrors.ErrUserNotFound)
	}
	if err != nil {
		return model.User{}, fmt.Errorf("%s: %w", op, err)
	}
	return user, nil
}

// UpdateUser overwrites an existing user account
func (r *MongoRepo) UpdateUser(user model.User) error {
	ctx, cancel := opCtx()
	defer cancel()

	res, err := r.users.ReplaceOne(ctx, bson.M{"_id": user.UserID}, user)
	if err != nil {
		return fmt.Errorf("update user %s: %w", user.UserID, err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("update user %s: %w", user.UserID, auctionerrors.ErrUserNotFound)
	}
	return nil
}
