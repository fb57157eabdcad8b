package integrationtests

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	auction "auction-service/internal/auctionService"
	"auction-service/internal/identity"
	"auction-service/internal/notifier"
	"auction-service/internal/repository"
	"auction-service/internal/server"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

// SetupTestRouter initializes the router with the in-memory repository for
// integration testing. The repository is returned so tests can seed state and
// read verification tokens directly.
func SetupTestRouter() (*gin.Engine, *repository.MemoryRepo) {
	gin.SetMode(gin.TestMode)
	repo := repository.NewMemoryRepo()
	sink := notifier.LogNotifier{}

	auctionService := auction.NewAuctionService(repo, repo, sink)
	identityService := identity.NewService(repo, sink, "integration-test-secret")

	return server.SetupRouter(auctionService, identityService), repo
}

// ExecuteRequest executes an HTTP request and returns the response recorder.
// An empty token leaves the request unauthenticated.
func ExecuteRequest(t *testing.T, router *gin.Engine, method, url, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reqBody []byte
	switch v := body.(type) {
	case nil:
	case []byte:
		reqBody = v
	case string:
		reqBody = []byte(v)
	default:
		var err error
		reqBody, err = json.Marshal(v)
		require.NoError(t, err)
	}

	req := httptest.NewRequest(method, url, bytes.NewReader(reqBody))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

// ExecuteRequestAndParse executes an HTTP request and parses the response envelope
func ExecuteRequestAndParse(t *testing.T, router *gin.Engine, method, url, token string, body any) (map[string]any, *httptest.ResponseRecorder) {
	t.Helper()

	w := ExecuteRequest(t, router, method, url, token, body)

	var resp map[string]any
	if len(w.Body.Bytes()) > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	}
	return resp, w
}

// RegisterAndLogin drives the full registration flow and returns a bearer
// token: register, verify via the token stored on the account, then login.
func RegisterAndLogin(t *testing.T, router *gin.Engine, repo *repository.MemoryRepo, name, email, password string) string {
	t.Helper()

	_, w := ExecuteRequestAndParse(t, router, http.MethodPost, "/auth/register", "", gin.H{
		"name":     name,
		"email":    email,
		"password": password,
	})
	require.Equal(t, http.StatusCreated, w.Code)

	user, err := repo.GetUserByEmail(email)
	require.NoError(t, err)

	_, w = ExecuteRequestAndParse(t, router, http.MethodGet, "/auth/verify?token="+user.VerificationToken, "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	resp, w := ExecuteRequestAndParse(t, router, http.MethodPost, "/auth/login", "", gin.H{
		"email":    email,
		"password": password,
	})
	require.Equal(t, http.StatusOK, w.Code)

	data := resp["data"].(map[string]any)
	token := data["token"].(string)
	require.NotEmpty(t, token)
	return token
}

// CreateAuctionViaAPI creates an auction over HTTP and returns its ID
func CreateAuctionViaAPI(t *testing.T, router *gin.Engine, productName string, startingBid, increment float64) string {
	t.Helper()

	resp, w := ExecuteRequestAndParse(t, router, http.MethodPost, "/auctions", "", gin.H{
		"product_name":      productName,
		"product_images":    []string{productName + ".jpg"},
		"starting_bid":      startingBid,
		"minimum_increment": increment,
		"duration_minutes":  60,
		"auction_type":      "auto_extend",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	data := resp["data"].(map[string]any)
	auctionID := data["auction_id"].(string)
	require.NotEmpty(t, auctionID)
	return auctionID
}
