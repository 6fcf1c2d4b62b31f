package auth

import (
	"encoding/json"
	"errors"
	"net/http"

	log "github.com/sirupsen/logrus"

	"github.com/smartleave/leave-composer/internal/util"
)

func LoginHandlerFunc(handler LoginHandler) func(w http.ResponseWriter, r *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		contextLogger := log.WithContext(ctx)

		var creds Credentials
		if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
			contextLogger.WithError(err).Error("Failed to parse login request body")
			util.WithBodyAndStatus(nil, http.StatusBadRequest, w)
			return
		}

		if creds.UserName == "" || creds.Password == "" {
			util.WithBodyAndStatus("userName and password are required", http.StatusBadRequest, w)
			return
		}

		resp, err := handler.Login(ctx, creds)
		if err != nil {
			contextLogger.WithError(err).Error("Login failed")
			util.WithBodyAndStatus("Invalid credentials", http.StatusUnauthorized, w)
			return
		}

		util.WithBodyAndStatus(resp, http.StatusOK, w)
	}
}

func RegisterHandlerFunc(handler RegisterHandler) func(w http.ResponseWriter, r *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		contextLogger := log.WithContext(ctx)

		var reg Registration
		if err := json.NewDecoder(r.Body).Decode(&reg); err != nil {
			contextLogger.WithError(err).Error("Failed to parse registration request body")
			util.WithBodyAndStatus(nil, http.StatusBadRequest, w)
			return
		}

		if reg.UserName == "" || reg.Password == "" || reg.Email == "" {
			util.WithBodyAndStatus("userName, password and email are required", http.StatusBadRequest, w)
			return
		}

		msg, err := handler.Register(ctx, reg)
		if err != nil {
			contextLogger.WithError(err).Error("Registration failed")
			var regErr *RegistrationError
			if errors.As(err, &regErr) {
				util.WithBodyAndStatus(regErr.Message, http.StatusBadRequest, w)
				return
			}
			util.WithBodyAndStatus("Registration failed", http.StatusBadGateway, w)
			return
		}

		util.WithBodyAndStatus(msg, http.StatusCreated, w)
	}
}
