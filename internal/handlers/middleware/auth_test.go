package middleware

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nkiryanov/tripplanner/internal/apperrors"
	"github.com/nkiryanov/tripplanner/internal/handlers/userctx"
	"github.com/nkiryanov/tripplanner/internal/models"
)

// Allow to use a function as auth service
type authFunc func(ctx context.Context, accessToken string) (models.User, error)

func (f authFunc) Authenticate(ctx context.Context, accessToken string) (models.User, error) {
	return f(ctx, accessToken)
}

// Logger that just counts messages
type countLogger struct {
	debug int
	error int
}

func (l *countLogger) Debug(string, ...any) { l.debug++ }
func (l *countLogger) Error(string, ...any) { l.error++ }

type response struct {
	status int
	body   string
}

func get(t *testing.T, h http.Handler, header string) response {
	t.Helper()

	srv := httptest.NewServer(h)
	defer srv.Close()

	req, err := http.NewRequestWithContext(t.Context(), http.MethodGet, srv.URL+"/test", nil)
	require.NoError(t, err)
	if header != "" {
		req.Header.Set("Authorization", header)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err, "should make request to test server")
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err, "should read response body")
	defer resp.Body.Close() // nolint:errcheck

	return response{status: resp.StatusCode, body: string(body)}
}

func TestAuthenticate(t *testing.T) {
	// Simple handler that writes user email or 'anonymous' to response
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body := "anonymous"
		if user, ok := userctx.FromContext(r.Context()); ok {
			body = user.Email
		}

		w.WriteHeader(http.StatusOK)
		_, err := w.Write([]byte(body))
		require.NoError(t, err, "should write response")
	})

	// Auth service knows 'good-token' and 'logged-out' tokens
	service := authFunc(func(_ context.Context, token string) (models.User, error) {
		switch token {
		case "good-token":
			return models.User{Email: "a@x.com"}, nil
		case "logged-out":
			return models.User{}, apperrors.ErrTokenBlacklisted
		case "broken-store":
			return models.User{}, errors.New("connection refused")
		default:
			return models.User{}, fmt.Errorf("%w: token is malformed", apperrors.ErrUnauthorized)
		}
	})

	tests := []struct {
		name         string
		header       string
		expectedCode int
		expectedBody string
		debugLogs    int
		errorLogs    int
	}{
		{
			name:         "valid token",
			header:       "Bearer good-token",
			expectedCode: http.StatusOK,
			expectedBody: "a@x.com",
		},
		{
			name:         "no header",
			header:       "",
			expectedCode: http.StatusOK,
			expectedBody: "anonymous",
		},
		{
			name:         "other scheme",
			header:       "Basic good-token",
			expectedCode: http.StatusOK,
			expectedBody: "anonymous",
		},
		{
			name:         "scheme is case sensitive",
			header:       "bearer good-token",
			expectedCode: http.StatusOK,
			expectedBody: "anonymous",
		},
		{
			name:         "empty token",
			header:       "Bearer ",
			expectedCode: http.StatusOK,
			expectedBody: "anonymous",
		},
		{
			name:         "invalid token",
			header:       "Bearer garbage",
			expectedCode: http.StatusOK,
			expectedBody: "anonymous",
			debugLogs:    1,
		},
		{
			name:         "logged out token",
			header:       "Bearer logged-out",
			expectedCode: http.StatusUnauthorized,
			expectedBody: `{"code":"A006","message":"Token is logged out","data":null}`,
		},
		{
			name:         "store fault",
			header:       "Bearer broken-store",
			expectedCode: http.StatusInternalServerError,
			expectedBody: `{"code":"C002","message":"Internal server error","data":null}`,
			errorLogs:    1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := &countLogger{}
			h := Authenticate(service, l)(handler)

			resp := get(t, h, tt.header)

			require.Equalf(t, tt.expectedCode, resp.status, "not expected status. Resp: %s", resp.body)
			if tt.expectedCode == http.StatusOK {
				require.Equal(t, tt.expectedBody, resp.body)
			} else {
				require.JSONEq(t, tt.expectedBody, resp.body)
			}
			require.Equal(t, tt.debugLogs, l.debug, "debug logs count")
			require.Equal(t, tt.errorLogs, l.error, "error logs count")
		})
	}
}

func TestRequireUser(t *testing.T) {
	called := false
	handler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	})

	service := authFunc(func(_ context.Context, token string) (models.User, error) {
		if token == "good-token" {
			return models.User{Email: "a@x.com"}, nil
		}
		return models.User{}, apperrors.ErrUnauthorized
	})
	h := Authenticate(service, &countLogger{})(RequireUser(handler))

	t.Run("anonymous rejected", func(t *testing.T) {
		called = false

		resp := get(t, h, "Bearer garbage")

		require.Equal(t, http.StatusUnauthorized, resp.status)
		require.JSONEq(t, `{"code":"A005","message":"Authentication required","data":null}`, resp.body)
		require.False(t, called, "handler must not be called")
	})

	t.Run("authenticated passed", func(t *testing.T) {
		called = false

		resp := get(t, h, "Bearer good-token")

		require.Equal(t, http.StatusOK, resp.status)
		require.True(t, called, "handler should be called")
	})
}

func TestBearerToken(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("Authorization", "Bearer some.jwt.token")

	token, ok := BearerToken(r)

	require.True(t, ok)
	require.Equal(t, "some.jwt.token", token)
}
