package internal

import (
	"fmt"
	"net/http"

	"github.com/aws/aws-sdk-go/service/ses"

	"github.com/smartleave/leave-composer/internal/admin"
	"github.com/smartleave/leave-composer/internal/auth"
	"github.com/smartleave/leave-composer/internal/calendar"
	"github.com/smartleave/leave-composer/internal/config"
	"github.com/smartleave/leave-composer/internal/leave"
	"github.com/smartleave/leave-composer/internal/middlewares"
)

//StatusRoute health check route
func StatusRoute() (route config.Route) {
	route = config.Route{
		Path:    "/health",
		Method:  http.MethodGet,
		Handler: middlewares.RuntimeHealthCheck(),
	}
	return route
}

type ServerConfig interface {
	Version() string
	LeaveEndpoint() leave.ClientInterface
	LeaveAPIBaseURL() string
	JWTSecret() string
	EmailClient() *ses.SES
	EmailFrom() string
	HolidayRefreshSchedule() string
}

func SetupServer(cfg ServerConfig) (*config.Server, error) {
	basePath := fmt.Sprintf("/%v", cfg.Version())

	verifier := auth.NewVerifier(cfg.JWTSecret())
	calendars, err := calendar.NewCache(cfg.LeaveEndpoint(), cfg.HolidayRefreshSchedule())
	if err != nil {
		return nil, fmt.Errorf("invalid holiday refresh schedule: %w", err)
	}

	service := NewService(cfg.LeaveEndpoint(), calendars, cfg.EmailClient(), cfg.EmailFrom())
	authService := auth.NewAuthService(cfg.LeaveAPIBaseURL(), verifier)
	adminService := admin.NewAdminService(cfg.LeaveEndpoint())

	routes := auth.Routes(authService)
	routes = append(routes, Routes(verifier, service)...)
	routes = append(routes, admin.Routes(verifier, adminService)...)

	server := config.NewServer().
		WithRoutes(
			"", StatusRoute(),
		).
		WithRoutes(
			basePath,
			routes...,
		)
	return server, nil
}
