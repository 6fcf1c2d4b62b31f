package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io/ioutil"
	"net/http"
	"strings"

	log "github.com/sirupsen/logrus"
)

// Credentials is the login payload from the web client.
type Credentials struct {
	Role     string `json:"role"`
	UserName string `json:"userName"`
	Password string `json:"password"`
}

// LoginResponse carries the bearer token and the identity resolved from it.
type LoginResponse struct {
	Token  string `json:"token"`
	UserID int64  `json:"userId"`
	Role   string `json:"role"`
}

// Registration is the signup payload forwarded to the leave service. Admin
// signups carry the ADMIN role, user signups a country for the holiday
// calendar.
type Registration struct {
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phoneNumber"`
	Address     string `json:"address"`
	Gender      string `json:"gender"`
	UserName    string `json:"userName"`
	Password    string `json:"password"`
	CountryName string `json:"countryName,omitempty"`
	Role        string `json:"role,omitempty"`
}

// RegistrationError carries the message the leave service rejected a signup
// with, so the form can show it to the user.
type RegistrationError struct {
	Status  int
	Message string
}

func (e *RegistrationError) Error() string {
	return fmt.Sprintf("registration rejected with status %d: %s", e.Status, e.Message)
}

type Service struct {
	authEndpoint string
	verifier     *Verifier
}

func NewAuthService(endpoint string, verifier *Verifier) *Service {
	return &Service{
		authEndpoint: endpoint,
		verifier:     verifier,
	}
}

// Login exchanges credentials for a session token with the leave service.
// Admin logins go through the admin endpoint, everything else through users.
func (service Service) Login(ctx context.Context, creds Credentials) (*LoginResponse, error) {
	ctxLogger := log.WithContext(ctx)

	loginPath := "/users/login"
	if strings.EqualFold(creds.Role, "admin") {
		loginPath = "/admin/login"
	}

	payload, err := json.Marshal(creds)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequest(http.MethodPost, service.authEndpoint+loginPath, bytes.NewBuffer(payload))
	if err != nil {
		ctxLogger.WithError(err).Error("could not create HTTP request")
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	httpClient := http.Client{}
	res, err := httpClient.Do(req.WithContext(ctx))
	if err != nil {
		ctxLogger.WithError(err).Error("could not send HTTP request")
		return nil, err
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		ctxLogger.Infof("status returned from leave auth service is %s", res.Status)
		return nil, fmt.Errorf("leave auth service returned status: %s", res.Status)
	}

	var resp *LoginResponse
	if err := json.NewDecoder(res.Body).Decode(&resp); err != nil {
		ctxLogger.WithError(err).Error("could not parse JSON response")
		return nil, err
	}

	// The identity reported by the service is advisory, the token is the
	// source of truth.
	sess, err := service.verifier.Verify(resp.Token)
	if err != nil {
		ctxLogger.WithError(err).Error("login token failed verification")
		return nil, err
	}
	resp.UserID = sess.UserID
	resp.Role = string(sess.Role)

	return resp, nil
}

// Register creates an account with the leave service and returns its
// confirmation message. Admin signups go through the admin endpoint.
func (service Service) Register(ctx context.Context, reg Registration) (string, error) {
	ctxLogger := log.WithContext(ctx)

	registerPath := "/users/registration"
	if strings.EqualFold(reg.Role, "admin") {
		registerPath = "/admin/registration"
	}

	payload, err := json.Marshal(reg)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequest(http.MethodPost, service.authEndpoint+registerPath, bytes.NewBuffer(payload))
	if err != nil {
		ctxLogger.WithError(err).Error("could not create HTTP request")
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	httpClient := http.Client{}
	res, err := httpClient.Do(req.WithContext(ctx))
	if err != nil {
		ctxLogger.WithError(err).Error("could not send HTTP request")
		return "", err
	}
	defer res.Body.Close()

	// The service replies with a plain text message either way.
	body, err := ioutil.ReadAll(res.Body)
	if err != nil {
		ctxLogger.WithError(err).Error("could not read the registration response")
		return "", err
	}

	if res.StatusCode != http.StatusOK && res.StatusCode != http.StatusCreated {
		ctxLogger.Infof("status returned from leave auth service is %s", res.Status)
		return "", &RegistrationError{Status: res.StatusCode, Message: strings.TrimSpace(string(body))}
	}
	return strings.TrimSpace(string(body)), nil
}
