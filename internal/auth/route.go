package auth

import (
	"context"
	"net/http"

	"github.com/smartleave/leave-composer/internal/config"
)

type LoginHandler interface {
	Login(ctx context.Context, creds Credentials) (*LoginResponse, error)
}

type RegisterHandler interface {
	Register(ctx context.Context, reg Registration) (string, error)
}

// Handler combines the session-free auth operations.
type Handler interface {
	LoginHandler
	RegisterHandler
}

func Routes(handler Handler) []config.Route {
	return []config.Route{
		{
			Path:    "/login",
			Method:  http.MethodPost,
			Handler: LoginHandlerFunc(handler),
		},
		{
			Path:    "/registration",
			Method:  http.MethodPost,
			Handler: RegisterHandlerFunc(handler),
		},
	}
}
