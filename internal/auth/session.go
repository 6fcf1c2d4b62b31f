package auth

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/smartleave/leave-composer/internal/model"
)

// ErrNoSession indicates a missing or unverifiable user identity. Handlers
// translate it to a 401 so the web client redirects to login.
var ErrNoSession = errors.New("missing or invalid session")

// Session is the authenticated identity passed explicitly to every component
// that calls the leave API on the user's behalf.
type Session struct {
	UserID int64
	Role   model.Role
	Token  string
}

func (s Session) Valid() bool {
	return s.UserID > 0 && s.Token != ""
}

type sessionClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Verifier checks bearer tokens issued by the leave service and builds
// sessions out of them.
type Verifier struct {
	secret []byte
}

func NewVerifier(secret string) *Verifier {
	return &Verifier{secret: []byte(secret)}
}

// Verify validates the token signature and extracts the session identity.
func (v *Verifier) Verify(tokenString string) (Session, error) {
	claims := &sessionClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return v.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return Session{}, ErrNoSession
	}

	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil || userID <= 0 {
		return Session{}, ErrNoSession
	}

	role, err := model.ParseRole(claims.Role)
	if err != nil {
		return Session{}, ErrNoSession
	}

	return Session{UserID: userID, Role: role, Token: tokenString}, nil
}

// FromRequest builds the session for a protected route. The userID from the
// route path must match the token identity unless the caller is a manager.
func (v *Verifier) FromRequest(r *http.Request, userID int64) (Session, error) {
	header := r.Header.Get("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return Session{}, ErrNoSession
	}

	sess, err := v.Verify(strings.TrimPrefix(header, "Bearer "))
	if err != nil {
		return Session{}, err
	}

	if sess.UserID != userID && !sess.Role.Manager() {
		return Session{}, ErrNoSession
	}
	return sess, nil
}
