package e2e

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	goredis "github.com/go-redis/redis/v8"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/nkiryanov/tripplanner/internal/handlers"
	"github.com/nkiryanov/tripplanner/internal/logger"
	"github.com/nkiryanov/tripplanner/internal/repository/postgres"
	"github.com/nkiryanov/tripplanner/internal/repository/redis"
	"github.com/nkiryanov/tripplanner/internal/service/auth"
	"github.com/nkiryanov/tripplanner/internal/service/auth/tokenmanager"
	"github.com/nkiryanov/tripplanner/internal/service/user"
	"github.com/nkiryanov/tripplanner/internal/testutil"
)

const (
	AccessTTL  = 15 * time.Minute
	RefreshTTL = 24 * time.Hour
)

type Services struct {
	AuthService  *auth.AuthService
	UserService  *user.UserService
	TokenManager *tokenmanager.TokenManager
}

// Create db transaction, flush redis and run server with that connection (one connection cause one transaction)
// Database changes are rolled back when fn returns
func ServeWithTx(dbpool *pgxpool.Pool, rdb *goredis.Client, t *testing.T, fn func(srvURL string, services Services)) {
	testutil.WithTx(dbpool, t, func(tx pgx.Tx) {
		testutil.WithCleanRedis(rdb, t, func(rdb *goredis.Client) {
			// Initialize repositories
			storage := postgres.NewStorage(tx)
			ledger := redis.NewLedger(rdb)

			// Initialize services
			tokenManager, err := tokenmanager.New(tokenmanager.Config{
				SecretKey:  "test-secret",
				AccessTTL:  AccessTTL,
				RefreshTTL: RefreshTTL,
			})
			require.NoError(t, err, "token manager should be created without errors")

			as, err := auth.NewService(auth.Config{Hasher: auth.BcryptHasher{Cost: bcrypt.MinCost}}, tokenManager, storage, ledger)
			require.NoError(t, err, "auth service starting error")

			us := user.NewService(storage)

			// Run http server with the router in transaction
			srv := httptest.NewServer(handlers.NewRouter(as, us, logger.NewNoOpLogger()))
			defer srv.Close()

			fn(srv.URL, Services{
				AuthService:  as,
				UserService:  us,
				TokenManager: tokenManager,
			})
		})
	})
}

// Envelope of every API response
type Response struct {
	Code    string          `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// Do sends json body with bearer token (if not empty) and decodes response envelope
func Do(t *testing.T, method string, url string, body string, bearer string) (int, Response) {
	t.Helper()

	req, err := http.NewRequestWithContext(t.Context(), method, url, strings.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	var res Response
	require.NoErrorf(t, json.Unmarshal(raw, &res), "response is not json envelope. Body: %s", string(raw))

	return resp.StatusCode, res
}

// Pair decodes token pair from response data
func (r Response) Pair(t *testing.T) TokenPair {
	t.Helper()

	var pair TokenPair
	require.NoError(t, json.Unmarshal(r.Data, &pair))
	require.NotEmpty(t, pair.AccessToken)
	require.NotEmpty(t, pair.RefreshToken)
	return pair
}
