package config

import (
	"errors"
	"net/http"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/ses"

	"github.com/smartleave/leave-composer/internal/customhttp"
	"github.com/smartleave/leave-composer/internal/leave"
)

type ApplicationConfig struct {
	envValues   *envConfig
	leaveClient leave.ClientInterface
	emailClient *ses.SES
}

//LogLevel returns the configured log level
func (cfg *ApplicationConfig) LogLevel() string {
	return cfg.envValues.LogLevel
}

//Version returns application version
func (cfg *ApplicationConfig) Version() string {
	return cfg.envValues.Version
}

//ServerPort returns the port no to listen for requests
func (cfg *ApplicationConfig) ServerPort() int {
	return cfg.envValues.ServerPort
}

//LeaveEndpoint returns the leave management API client
func (cfg *ApplicationConfig) LeaveEndpoint() leave.ClientInterface {
	return cfg.leaveClient
}

//LeaveAPIBaseURL returns the base URL of the leave management API
func (cfg *ApplicationConfig) LeaveAPIBaseURL() string {
	return cfg.envValues.LeaveAPIEndpoint
}

//JWTSecret returns the shared secret used to verify session tokens
func (cfg *ApplicationConfig) JWTSecret() string {
	return cfg.envValues.JWTSecret
}

//EmailClient returns the ses client with config
func (cfg *ApplicationConfig) EmailClient() *ses.SES {
	return cfg.emailClient
}

//EmailFrom returns the From email address for confirmations
func (cfg *ApplicationConfig) EmailFrom() string {
	return cfg.envValues.EmailFrom
}

//HolidayRefreshSchedule returns the cron schedule for the holiday cache refresh
func (cfg *ApplicationConfig) HolidayRefreshSchedule() string {
	return cfg.envValues.HolidayRefreshSchedule
}

//NewApplicationConfig loads config values from environment and initialises config
func NewApplicationConfig() (*ApplicationConfig, error) {
	envValues := NewEnvironmentConfig()
	if envValues.LeaveAPIEndpoint == "" {
		return nil, errors.New("LEAVE_API_ENDPOINT is required")
	}
	if envValues.JWTSecret == "" {
		return nil, errors.New("JWT_SECRET is required")
	}

	httpCommand := NewHTTPCommand()
	leaveClient := leave.NewClient(envValues.LeaveAPIEndpoint, httpCommand)
	leaveClient.RateLimitTimeout = time.Duration(envValues.RateLimitTimeout) * time.Minute
	emailClient := ses.New(session.New(), aws.NewConfig().WithRegion("ap-southeast-2"))
	return &ApplicationConfig{
		envValues:   envValues,
		leaveClient: leaveClient,
		emailClient: emailClient,
	}, nil
}

// NewHTTPCommand returns the HTTP client
func NewHTTPCommand() customhttp.HTTPCommand {
	httpCommand := customhttp.New(
		customhttp.WithHTTPClient(&http.Client{Timeout: 5 * time.Second}),
		customhttp.WithRequestID(),
	).Build()

	return httpCommand
}
