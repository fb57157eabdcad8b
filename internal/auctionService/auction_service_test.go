package auction

import (
	"testing"
	"time"

	"auction-service/internal/auctionerrors"
	"auction-service/internal/models"
	"auction-service/internal/notifier"
	"auction-service/internal/repository"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/require"
)

func validCreateInput() CreateAuctionInput {
	return CreateAuctionInput{
		ProductName:        "Vintage Watch",
		ProductDescription: "A vintage watch",
		ProductSize:        "small",
		ProductImages:      []string{"watch.jpg"},
		StartingBid:        100,
		MinimumIncrement:   10,
		DurationMinutes:    60,
		AuctionType:        models.AuctionTypeAutoExtend,
		ExtendTime:         10,
	}
}

func openAuction(endsIn time.Time) models.Auction {
	return models.Auction{
		AuctionID:        "auction1",
		ProductName:      "Vintage Watch",
		StartingBid:      100,
		MinimumIncrement: 10,
		CurrentBid:       100,
		Bids:             []models.BidEntry{},
		StartTime:        time.Now().UTC().Add(-time.Hour),
		EndsIn:           endsIn,
		AuctionType:      models.AuctionTypeAutoExtend,
		ExtendTime:       10,
		Status:           models.AuctionStatusOpen,
	}
}

func TestAuctionService_CreateAuction(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		mutate     func(*CreateAuctionInput)
		wantErr    error
		wantExtend int
	}{
		{
			name:       "valid_input",
			mutate:     func(in *CreateAuctionInput) {},
			wantExtend: 10,
		},
		{
			name:       "zero_extend_time_defaults",
			mutate:     func(in *CreateAuctionInput) { in.ExtendTime = 0 },
			wantExtend: defaultExtendMinutes,
		},
		{
			name:    "missing_product_name",
			mutate:  func(in *CreateAuctionInput) { in.ProductName = "" },
			wantErr: auctionerrors.ErrValidation,
		},
		{
			name:    "negative_starting_bid",
			mutate:  func(in *CreateAuctionInput) { in.StartingBid = -1 },
			wantErr: auctionerrors.ErrValidation,
		},
		{
			name:    "non_positive_increment",
			mutate:  func(in *CreateAuctionInput) { in.MinimumIncrement = 0 },
			wantErr: auctionerrors.ErrValidation,
		},
		{
			name:    "non_positive_duration",
			mutate:  func(in *CreateAuctionInput) { in.DurationMinutes = 0 },
			wantErr: auctionerrors.ErrValidation,
		},
		{
			name:    "no_images",
			mutate:  func(in *CreateAuctionInput) { in.ProductImages = nil },
			wantErr: auctionerrors.ErrValidation,
		},
		{
			name:    "unknown_auction_type",
			mutate:  func(in *CreateAuctionInput) { in.AuctionType = "dutch" },
			wantErr: auctionerrors.ErrValidation,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			ctrl := gomock.NewController(t)
			defer ctrl.Finish()
			repo := repository.NewMockAuctionDB(ctrl)
			svc := NewAuctionService(repo, repository.NewMockUserDB(ctrl), notifier.LogNotifier{})

			input := validCreateInput()
			tt.mutate(&input)

			var stored models.Auction
			if tt.wantErr == nil {
				repo.EXPECT().CreateAuction(gomock.Any()).
					DoAndReturn(func(a models.Auction) error {
						stored = a
						return nil
					})
			}

			auction, err := svc.CreateAuction(input)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			require.NotEmpty(t, auction.AuctionID)
			require.Equal(t, models.AuctionStatusOpen, auction.Status)
			require.Equal(t, input.StartingBid, auction.CurrentBid)
			require.Equal(t, tt.wantExtend, auction.ExtendTime)
			require.WithinDuration(t, time.Now().UTC().Add(60*time.Minute), auction.EndsIn, 5*time.Second)
			require.Equal(t, auction, stored)
		})
	}
}

func TestAuctionService_PlaceBid(t *testing.T) {
	t.Parallel()

	participant := models.Participant{
		ParticipantID:   "participant1",
		AuctionID:       "auction1",
		UserID:          "user1",
		ParticipantName: "User One",
	}

	tests := []struct {
		name    string
		auction models.Auction
		amount  float64
		wantErr error
	}{
		{
			name:    "deadline_passed",
			auction: openAuction(time.Now().UTC().Add(-time.Minute)),
			amount:  200,
			wantErr: auctionerrors.ErrAuctionEnded,
		},
		{
			name: "already_closed",
			auction: func() models.Auction {
				a := openAuction(time.Now().UTC().Add(time.Hour))
				a.Status = models.AuctionStatusClosed
				return a
			}(),
			amount:  200,
			wantErr: auctionerrors.ErrAuctionEnded,
		},
		{
			name:    "equal_to_current_bid",
			auction: openAuction(time.Now().UTC().Add(time.Hour)),
			amount:  100,
			wantErr: auctionerrors.ErrBidTooLow,
		},
		{
			name:    "below_current_bid",
			auction: openAuction(time.Now().UTC().Add(time.Hour)),
			amount:  90,
			wantErr: auctionerrors.ErrBidTooLow,
		},
		{
			name:    "above_floor_but_below_increment",
			auction: openAuction(time.Now().UTC().Add(time.Hour)),
			amount:  105,
			wantErr: auctionerrors.ErrBidTooLow,
		},
		{
			name:    "exactly_floor_plus_increment",
			auction: openAuction(time.Now().UTC().Add(time.Hour)),
			amount:  110,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			ctrl := gomock.NewController(t)
			defer ctrl.Finish()
			repo := repository.NewMockAuctionDB(ctrl)
			svc := NewAuctionService(repo, repository.NewMockUserDB(ctrl), notifier.LogNotifier{})

			repo.EXPECT().GetAuction("auction1").Return(tt.auction, nil)
			repo.EXPECT().GetOrCreateParticipant("auction1", "user1", "User One").Return(participant, nil)

			if tt.wantErr == nil {
				repo.EXPECT().RecordBid(gomock.Any(), tt.auction.CurrentBid, gomock.Any()).
					DoAndReturn(func(a models.Auction, expected float64, bid models.Bid) error {
						require.Equal(t, tt.amount, a.CurrentBid)
						require.Equal(t, "User One", a.HighestBidder)
						require.Len(t, a.Bids, 1)
						require.Equal(t, tt.amount, bid.Amount)
						require.Equal(t, "user1", bid.UserID)
						require.NotEmpty(t, bid.BidID)
						return nil
					})
				repo.EXPECT().GetParticipant("auction1", "user1").Return(participant, nil)
			}

			auction, got, err := svc.PlaceBid("auction1", "user1", "User One", tt.amount)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.amount, auction.CurrentBid)
			require.Equal(t, participant, got)
		})
	}

	t.Run("rejects_invalid_input", func(t *testing.T) {
		t.Parallel()

		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		svc := NewAuctionService(repository.NewMockAuctionDB(ctrl), repository.NewMockUserDB(ctrl), notifier.LogNotifier{})

		_, _, err := svc.PlaceBid("", "user1", "User One", 110)
		require.ErrorIs(t, err, auctionerrors.ErrInvalidBid)

		_, _, err = svc.PlaceBid("auction1", "", "User One", 110)
		require.ErrorIs(t, err, auctionerrors.ErrInvalidBid)

		_, _, err = svc.PlaceBid("auction1", "user1", "User One", 0)
		require.ErrorIs(t, err, auctionerrors.ErrInvalidBid)
	})

	t.Run("missing_auction", func(t *testing.T) {
		t.Parallel()

		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		repo := repository.NewMockAuctionDB(ctrl)
		svc := NewAuctionService(repo, repository.NewMockUserDB(ctrl), notifier.LogNotifier{})

		repo.EXPECT().GetAuction("auctionX").Return(models.Auction{}, auctionerrors.ErrAuctionNotFound)

		_, _, err := svc.PlaceBid("auctionX", "user1", "User One", 110)
		require.ErrorIs(t, err, auctionerrors.ErrAuctionNotFound)
	})

	t.Run("revalidates_after_losing_race", func(t *testing.T) {
		t.Parallel()

		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		repo := repository.NewMockAuctionDB(ctrl)
		svc := NewAuctionService(repo, repository.NewMockUserDB(ctrl), notifier.LogNotifier{})

		// first read sees floor 100, the write loses the race; the second
		// read sees the fresher floor 120 which the bid no longer clears
		stale := openAuction(time.Now().UTC().Add(time.Hour))
		fresh := stale
		fresh.CurrentBid = 120
		fresh.HighestBidder = "Someone Else"

		gomock.InOrder(
			repo.EXPECT().GetAuction("auction1").Return(stale, nil),
			repo.EXPECT().GetOrCreateParticipant("auction1", "user1", "User One").Return(participant, nil),
			repo.EXPECT().RecordBid(gomock.Any(), 100.0, gomock.Any()).Return(auctionerrors.ErrConcurrentUpdate),
			repo.EXPECT().GetAuction("auction1").Return(fresh, nil),
			repo.EXPECT().GetOrCreateParticipant("auction1", "user1", "User One").Return(participant, nil),
		)

		_, _, err := svc.PlaceBid("auction1", "user1", "User One", 125)
		require.ErrorIs(t, err, auctionerrors.ErrBidTooLow)
	})

	t.Run("retries_and_wins_against_fresher_floor", func(t *testing.T) {
		t.Parallel()

		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		repo := repository.NewMockAuctionDB(ctrl)
		svc := NewAuctionService(repo, repository.NewMockUserDB(ctrl), notifier.LogNotifier{})

		stale := openAuction(time.Now().UTC().Add(time.Hour))
		fresh := stale
		fresh.CurrentBid = 120

		gomock.InOrder(
			repo.EXPECT().GetAuction("auction1").Return(stale, nil),
			repo.EXPECT().GetOrCreateParticipant("auction1", "user1", "User One").Return(participant, nil),
			repo.EXPECT().RecordBid(gomock.Any(), 100.0, gomock.Any()).Return(auctionerrors.ErrConcurrentUpdate),
			repo.EXPECT().GetAuction("auction1").Return(fresh, nil),
			repo.EXPECT().GetOrCreateParticipant("auction1", "user1", "User One").Return(participant, nil),
			repo.EXPECT().RecordBid(gomock.Any(), 120.0, gomock.Any()).Return(nil),
			repo.EXPECT().GetParticipant("auction1", "user1").Return(participant, nil),
		)

		auction, _, err := svc.PlaceBid("auction1", "user1", "User One", 200)
		require.NoError(t, err)
		require.Equal(t, 200.0, auction.CurrentBid)
	})

	t.Run("gives_up_after_max_attempts", func(t *testing.T) {
		t.Parallel()

		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		repo := repository.NewMockAuctionDB(ctrl)
		svc := NewAuctionService(repo, repository.NewMockUserDB(ctrl), notifier.LogNotifier{})

		auction := openAuction(time.Now().UTC().Add(time.Hour))
		repo.EXPECT().GetAuction("auction1").Return(auction, nil).Times(maxBidAttempts)
		repo.EXPECT().GetOrCreateParticipant("auction1", "user1", "User One").Return(participant, nil).Times(maxBidAttempts)
		repo.EXPECT().RecordBid(gomock.Any(), 100.0, gomock.Any()).Return(auctionerrors.ErrConcurrentUpdate).Times(maxBidAttempts)

		_, _, err := svc.PlaceBid("auction1", "user1", "User One", 200)
		require.ErrorIs(t, err, auctionerrors.ErrConcurrentUpdate)
	})
}

func TestAuctionService_PlaceBid_AutoExtend(t *testing.T) {
	t.Parallel()

	participant := models.Participant{ParticipantID: "participant1", AuctionID: "auction1", UserID: "user1"}

	tests := []struct {
		name        string
		auctionType string
		endsIn      time.Duration
		wantExtend  bool
	}{
		{
			name:        "inside_window_extends",
			auctionType: models.AuctionTypeAutoExtend,
			endsIn:      5 * time.Minute,
			wantExtend:  true,
		},
		{
			name:        "outside_window_unchanged",
			auctionType: models.AuctionTypeAutoExtend,
			endsIn:      25 * time.Minute,
			wantExtend:  false,
		},
		{
			name:        "fixed_time_never_extends",
			auctionType: models.AuctionTypeFixedTime,
			endsIn:      5 * time.Minute,
			wantExtend:  false,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			ctrl := gomock.NewController(t)
			defer ctrl.Finish()
			repo := repository.NewMockAuctionDB(ctrl)
			svc := NewAuctionService(repo, repository.NewMockUserDB(ctrl), notifier.LogNotifier{})

			deadline := time.Now().UTC().Add(tt.endsIn)
			auction := openAuction(deadline)
			auction.AuctionType = tt.auctionType

			repo.EXPECT().GetAuction("auction1").Return(auction, nil)
			repo.EXPECT().GetOrCreateParticipant("auction1", "user1", "User One").Return(participant, nil)
			repo.EXPECT().RecordBid(gomock.Any(), 100.0, gomock.Any()).Return(nil)
			repo.EXPECT().GetParticipant("auction1", "user1").Return(participant, nil)

			got, _, err := svc.PlaceBid("auction1", "user1", "User One", 110)
			require.NoError(t, err)

			if tt.wantExtend {
				require.WithinDuration(t, time.Now().UTC().Add(10*time.Minute), got.EndsIn, 5*time.Second)
			} else {
				require.Equal(t, deadline, got.EndsIn)
			}
		})
	}
}

func TestAuctionService_CloseAuction(t *testing.T) {
	t.Parallel()

	t.Run("declares_highest_bidder_winner", func(t *testing.T) {
		t.Parallel()

		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		repo := repository.NewMockAuctionDB(ctrl)
		users := repository.NewMockUserDB(ctrl)
		sink := notifier.NewMockNotifier(ctrl)
		svc := NewAuctionService(repo, users, sink)

		auction := openAuction(time.Now().UTC().Add(-time.Minute))
		auction.CurrentBid = 150
		winning := models.Bid{
			BidID: "bid2", AuctionID: "auction1", UserID: "user2",
			BidderName: "User Two", Amount: 150, CreatedAt: time.Now().UTC(),
		}
		participant := models.Participant{
			ParticipantID: "participant2", AuctionID: "auction1",
			UserID: "user2", ParticipantName: "User Two",
		}

		repo.EXPECT().GetAuction("auction1").Return(auction, nil)
		repo.EXPECT().GetWinningBid("auction1").Return(winning, nil)
		repo.EXPECT().GetParticipant("auction1", "user2").Return(participant, nil)
		repo.EXPECT().MarkAuctionClosed(gomock.Any()).
			DoAndReturn(func(a models.Auction) error {
				require.Equal(t, models.AuctionStatusClosed, a.Status)
				require.Equal(t, "User Two", a.Winner)
				return nil
			})
		users.EXPECT().GetUserByID("user2").Return(models.User{UserID: "user2", Email: "two@example.com"}, nil)

		notified := make(chan struct{})
		sink.EXPECT().Notify("two@example.com", notifier.TemplateAuctionWon, gomock.Any()).
			DoAndReturn(func(email, template string, data map[string]any) error {
				require.Equal(t, 150.0, data["winning_bid"])
				close(notified)
				return nil
			})

		result, err := svc.CloseAuction("auction1")
		require.NoError(t, err)
		require.Equal(t, CloseResult{
			AuctionID:  "auction1",
			Status:     models.AuctionStatusClosed,
			Winner:     "User Two",
			WinningBid: 150,
		}, result)

		select {
		case <-notified:
		case <-time.After(time.Second):
			t.Fatal("winner notification was not dispatched")
		}
	})

	t.Run("no_bids_closes_without_winner", func(t *testing.T) {
		t.Parallel()

		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		repo := repository.NewMockAuctionDB(ctrl)
		svc := NewAuctionService(repo, repository.NewMockUserDB(ctrl), notifier.LogNotifier{})

		auction := openAuction(time.Now().UTC().Add(-time.Minute))
		repo.EXPECT().GetAuction("auction1").Return(auction, nil)
		repo.EXPECT().GetWinningBid("auction1").Return(models.Bid{}, auctionerrors.ErrNoBids)
		repo.EXPECT().MarkAuctionClosed(gomock.Any()).
			DoAndReturn(func(a models.Auction) error {
				require.Equal(t, models.AuctionStatusClosed, a.Status)
				require.Empty(t, a.Winner)
				return nil
			})

		result, err := svc.CloseAuction("auction1")
		require.NoError(t, err)
		require.Equal(t, models.AuctionStatusClosed, result.Status)
		require.Empty(t, result.Winner)
	})

	t.Run("already_closed_returns_recorded_winner", func(t *testing.T) {
		t.Parallel()

		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		repo := repository.NewMockAuctionDB(ctrl)
		sink := notifier.NewMockNotifier(ctrl)
		svc := NewAuctionService(repo, repository.NewMockUserDB(ctrl), sink)

		auction := openAuction(time.Now().UTC().Add(-time.Hour))
		auction.Status = models.AuctionStatusClosed
		auction.Winner = "User Two"
		auction.CurrentBid = 150

		// no winner recomputation, no persistence, no second notification
		repo.EXPECT().GetAuction("auction1").Return(auction, nil)

		result, err := svc.CloseAuction("auction1")
		require.NoError(t, err)
		require.Equal(t, CloseResult{
			AuctionID:  "auction1",
			Status:     models.AuctionStatusClosed,
			Winner:     "User Two",
			WinningBid: 150,
		}, result)
	})

	t.Run("losing_close_race_reports_recorded_winner", func(t *testing.T) {
		t.Parallel()

		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		repo := repository.NewMockAuctionDB(ctrl)
		sink := notifier.NewMockNotifier(ctrl)
		svc := NewAuctionService(repo, repository.NewMockUserDB(ctrl), sink)

		open := openAuction(time.Now().UTC().Add(-time.Minute))
		winning := models.Bid{BidID: "bid1", AuctionID: "auction1", UserID: "user2", BidderName: "User Two", Amount: 150}
		participant := models.Participant{ParticipantID: "participant2", AuctionID: "auction1", UserID: "user2"}

		committed := open
		committed.Status = models.AuctionStatusClosed
		committed.Winner = "User Two"
		committed.CurrentBid = 150

		// a concurrent close persists first; this close must not notify
		gomock.InOrder(
			repo.EXPECT().GetAuction("auction1").Return(open, nil),
			repo.EXPECT().GetWinningBid("auction1").Return(winning, nil),
			repo.EXPECT().GetParticipant("auction1", "user2").Return(participant, nil),
			repo.EXPECT().MarkAuctionClosed(gomock.Any()).Return(auctionerrors.ErrConcurrentUpdate),
			repo.EXPECT().GetAuction("auction1").Return(committed, nil),
		)

		result, err := svc.CloseAuction("auction1")
		require.NoError(t, err)
		require.Equal(t, CloseResult{
			AuctionID:  "auction1",
			Status:     models.AuctionStatusClosed,
			Winner:     "User Two",
			WinningBid: 150,
		}, result)
	})

	t.Run("missing_participant_is_inconsistent_state", func(t *testing.T) {
		t.Parallel()

		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		repo := repository.NewMockAuctionDB(ctrl)
		svc := NewAuctionService(repo, repository.NewMockUserDB(ctrl), notifier.LogNotifier{})

		auction := openAuction(time.Now().UTC().Add(-time.Minute))
		winning := models.Bid{BidID: "bid1", AuctionID: "auction1", UserID: "user2", Amount: 150}

		repo.EXPECT().GetAuction("auction1").Return(auction, nil)
		repo.EXPECT().GetWinningBid("auction1").Return(winning, nil)
		repo.EXPECT().GetParticipant("auction1", "user2").Return(models.Participant{}, auctionerrors.ErrParticipantNotFound)

		_, err := svc.CloseAuction("auction1")
		require.ErrorIs(t, err, auctionerrors.ErrInconsistentState)
	})

	t.Run("missing_winner_email_still_closes", func(t *testing.T) {
		t.Parallel()

		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		repo := repository.NewMockAuctionDB(ctrl)
		users := repository.NewMockUserDB(ctrl)
		sink := notifier.NewMockNotifier(ctrl)
		svc := NewAuctionService(repo, users, sink)

		auction := openAuction(time.Now().UTC().Add(-time.Minute))
		winning := models.Bid{BidID: "bid1", AuctionID: "auction1", UserID: "user2", BidderName: "User Two", Amount: 150}
		participant := models.Participant{ParticipantID: "participant2", AuctionID: "auction1", UserID: "user2"}

		repo.EXPECT().GetAuction("auction1").Return(auction, nil)
		repo.EXPECT().GetWinningBid("auction1").Return(winning, nil)
		repo.EXPECT().GetParticipant("auction1", "user2").Return(participant, nil)
		repo.EXPECT().MarkAuctionClosed(gomock.Any()).Return(nil)
		users.EXPECT().GetUserByID("user2").Return(models.User{}, auctionerrors.ErrUserNotFound)

		result, err := svc.CloseAuction("auction1")
		require.NoError(t, err)
		require.Equal(t, "User Two", result.Winner)
	})

	t.Run("missing_auction", func(t *testing.T) {
		t.Parallel()

		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		repo := repository.NewMockAuctionDB(ctrl)
		svc := NewAuctionService(repo, repository.NewMockUserDB(ctrl), notifier.LogNotifier{})

		repo.EXPECT().GetAuction("auctionX").Return(models.Auction{}, auctionerrors.ErrAuctionNotFound)

		_, err := svc.CloseAuction("auctionX")
		require.ErrorIs(t, err, auctionerrors.ErrAuctionNotFound)
	})
}

func TestAuctionService_ListBids(t *testing.T) {
	t.Parallel()

	t.Run("returns_views", func(t *testing.T) {
		t.Parallel()

		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		repo := repository.NewMockAuctionDB(ctrl)
		svc := NewAuctionService(repo, repository.NewMockUserDB(ctrl), notifier.LogNotifier{})

		views := []models.BidView{{BidID: "bid1", BidderName: "User One", Amount: 110, ProductName: "Vintage Watch"}}
		repo.EXPECT().GetBidsByAuction("auction1").Return(views, nil)

		got, err := svc.ListBids("auction1")
		require.NoError(t, err)
		require.Equal(t, views, got)
	})

	t.Run("empty_auction_id", func(t *testing.T) {
		t.Parallel()

		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		svc := NewAuctionService(repository.NewMockAuctionDB(ctrl), repository.NewMockUserDB(ctrl), notifier.LogNotifier{})

		_, err := svc.ListBids("")
		require.ErrorIs(t, err, auctionerrors.ErrValidation)
	})

	t.Run("propagates_no_bids", func(t *testing.T) {
		t.Parallel()

		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		repo := repository.NewMockAuctionDB(ctrl)
		svc := NewAuctionService(repo, repository.NewMockUserDB(ctrl), notifier.LogNotifier{})

		repo.EXPECT().GetBidsByAuction("auction1").Return(nil, auctionerrors.ErrNoBids)

		_, err := svc.ListBids("auction1")
		require.ErrorIs(t, err, auctionerrors.ErrNoBids)
	})
}

func TestAuctionService_JoinAuction(t *testing.T) {
	t.Parallel()

	t.Run("joins", func(t *testing.T) {
		t.Parallel()

		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		repo := repository.NewMockAuctionDB(ctrl)
		svc := NewAuctionService(repo, repository.NewMockUserDB(ctrl), notifier.LogNotifier{})

		want := models.Participant{ParticipantID: "participant1", AuctionID: "auction1", UserID: "user1", ParticipantName: "User One"}
		repo.EXPECT().GetOrCreateParticipant("auction1", "user1", "User One").Return(want, nil)

		got, err := svc.JoinAuction("auction1", "user1", "User One")
		require.NoError(t, err)
		require.Equal(t, want, got)
	})

	t.Run("missing_ids", func(t *testing.T) {
		t.Parallel()

		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		svc := NewAuctionService(repository.NewMockAuctionDB(ctrl), repository.NewMockUserDB(ctrl), notifier.LogNotifier{})

		_, err := svc.JoinAuction("", "user1", "User One")
		require.ErrorIs(t, err, auctionerrors.ErrValidation)

		_, err = svc.JoinAuction("auction1", "", "User One")
		require.ErrorIs(t, err, auctionerrors.ErrValidation)
	})
}

func TestAuctionService_UpdateAuction(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	repo := repository.NewMockAuctionDB(ctrl)
	svc := NewAuctionService(repo, repository.NewMockUserDB(ctrl), notifier.LogNotifier{})

	stored := openAuction(time.Now().UTC().Add(time.Hour))
	stored.ProductDescription = "old description"

	repo.EXPECT().GetAuction("auction1").Return(stored, nil)
	repo.EXPECT().UpdateAuction(gomock.Any()).
		DoAndReturn(func(a models.Auction) error {
			require.Equal(t, "new description", a.ProductDescription)
			require.Equal(t, stored.ProductName, a.ProductName)
			return nil
		})

	desc := "new description"
	got, err := svc.UpdateAuction("auction1", UpdateAuctionInput{ProductDescription: &desc})
	require.NoError(t, err)
	require.Equal(t, "new description", got.ProductDescription)
}

func TestAuctionService_DeleteAuction(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	repo := repository.NewMockAuctionDB(ctrl)
	svc := NewAuctionService(repo, repository.NewMockUserDB(ctrl), notifier.LogNotifier{})

	repo.EXPECT().DeleteAuction("auction1").Return(nil)
	require.NoError(t, svc.DeleteAuction("auction1"))

	repo.EXPECT().DeleteAuction("auctionX").Return(auctionerrors.ErrAuctionNotFound)
	err := svc.DeleteAuction("auctionX")
	require.ErrorIs(t, err, auctionerrors.ErrAuctionNotFound)

	require.ErrorIs(t, svc.DeleteAuction(""), auctionerrors.ErrValidation)
}
