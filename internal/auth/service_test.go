package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogin(t *testing.T) {
	verifier := NewVerifier(testSecret)

	t.Run("user login", func(t *testing.T) {
		token := signToken(t, testSecret, "7", "TEAM_MEMBER", time.Hour)
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/users/login", r.URL.Path)
			assert.Equal(t, http.MethodPost, r.Method)

			var creds Credentials
			require.NoError(t, json.NewDecoder(r.Body).Decode(&creds))
			assert.Equal(t, "jdoe", creds.UserName)

			w.Header().Set("Content-Type", "application/json")
			// The advisory identity is deliberately wrong, the token wins.
			_ = json.NewEncoder(w).Encode(LoginResponse{Token: token, UserID: 999, Role: "ADMIN"})
		}))
		defer server.Close()

		service := NewAuthService(server.URL, verifier)
		resp, err := service.Login(context.Background(), Credentials{Role: "TEAM_MEMBER", UserName: "jdoe", Password: "secret"})
		require.NoError(t, err)
		assert.Equal(t, token, resp.Token)
		assert.Equal(t, int64(7), resp.UserID)
		assert.Equal(t, "TEAM_MEMBER", resp.Role)
	})

	t.Run("admin login uses the admin endpoint", func(t *testing.T) {
		token := signToken(t, testSecret, "1", "ADMIN", time.Hour)
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/admin/login", r.URL.Path)
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(LoginResponse{Token: token})
		}))
		defer server.Close()

		service := NewAuthService(server.URL, verifier)
		resp, err := service.Login(context.Background(), Credentials{Role: "admin", UserName: "root", Password: "secret"})
		require.NoError(t, err)
		assert.Equal(t, int64(1), resp.UserID)
		assert.Equal(t, "ADMIN", resp.Role)
	})

	t.Run("bad credentials", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		}))
		defer server.Close()

		service := NewAuthService(server.URL, verifier)
		_, err := service.Login(context.Background(), Credentials{Role: "TEAM_MEMBER", UserName: "jdoe", Password: "wrong"})
		assert.Error(t, err)
	})

	t.Run("token signed with another secret is rejected", func(t *testing.T) {
		token := signToken(t, "other-secret", "7", "TEAM_MEMBER", time.Hour)
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(LoginResponse{Token: token})
		}))
		defer server.Close()

		service := NewAuthService(server.URL, verifier)
		_, err := service.Login(context.Background(), Credentials{Role: "TEAM_MEMBER", UserName: "jdoe", Password: "secret"})
		assert.ErrorIs(t, err, ErrNoSession)
	})
}

func TestRegister(t *testing.T) {
	verifier := NewVerifier(testSecret)

	signup := Registration{
		FirstName:   "Jane",
		LastName:    "Doe",
		Email:       "jane@example.com",
		PhoneNumber: "555-0100",
		Address:     "1 Main St",
		Gender:      "F",
		UserName:    "jdoe",
		Password:    "secret",
		CountryName: "Australia",
	}

	t.Run("user registration", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/users/registration", r.URL.Path)
			assert.Equal(t, http.MethodPost, r.Method)

			var reg Registration
			require.NoError(t, json.NewDecoder(r.Body).Decode(&reg))
			assert.Equal(t, "jdoe", reg.UserName)
			assert.Equal(t, "Australia", reg.CountryName)

			w.WriteHeader(http.StatusCreated)
			_, _ = w.Write([]byte("User registered successfully"))
		}))
		defer server.Close()

		service := NewAuthService(server.URL, verifier)
		msg, err := service.Register(context.Background(), signup)
		require.NoError(t, err)
		assert.Equal(t, "User registered successfully", msg)
	})

	t.Run("admin registration uses the admin endpoint", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/admin/registration", r.URL.Path)
			_, _ = w.Write([]byte("Admin registered successfully"))
		}))
		defer server.Close()

		admin := signup
		admin.CountryName = ""
		admin.Role = "ADMIN"

		service := NewAuthService(server.URL, verifier)
		msg, err := service.Register(context.Background(), admin)
		require.NoError(t, err)
		assert.Equal(t, "Admin registered successfully", msg)
	})

	t.Run("rejection surfaces the service message", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte("userName already taken"))
		}))
		defer server.Close()

		service := NewAuthService(server.URL, verifier)
		_, err := service.Register(context.Background(), signup)
		require.Error(t, err)

		var regErr *RegistrationError
		require.ErrorAs(t, err, &regErr)
		assert.Equal(t, http.StatusBadRequest, regErr.Status)
		assert.Equal(t, "userName already taken", regErr.Message)
	})
}

func TestRegisterHandlerValidation(t *testing.T) {
	handler := RegisterHandlerFunc(Service{})

	body := bytes.NewBufferString(`{"firstName":"Jane","userName":"jdoe"}`)
	req := httptest.NewRequest(http.MethodPost, "/registration", body)
	rec := httptest.NewRecorder()

	handler(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
