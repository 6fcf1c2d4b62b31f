package leave

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/ioutil"
	"net/http"
	"time"

	"github.com/googleapis/gax-go/v2"
	log "github.com/sirupsen/logrus"

	"github.com/smartleave/leave-composer/internal/customhttp"
	"github.com/smartleave/leave-composer/internal/model"
)

// ClientInterface is the surface of the remote leave management API consumed
// by this service. The bearer token of the calling session is passed per call.
type ClientInterface interface {
	GetLeaveBalance(ctx context.Context, token string, userID int64) (*model.LeaveBalance, error)
	NewDurationRequest(ctx context.Context, token string, userID int64, r model.DateRange) (*ReusableRequest, error)
	CalculateDuration(ctx context.Context, req *ReusableRequest) (int, error)
	GetLeaveRequests(ctx context.Context, token string, userID int64) ([]model.LeaveRequest, error)
	GetTeamLeaveRequests(ctx context.Context, token string, userID int64) ([]model.LeaveRequest, error)
	ApplyLeave(ctx context.Context, token string, userID int64, draft model.LeaveRequestDraft) (*ApplyLeaveResponse, error)
	CancelLeaveRequest(ctx context.Context, token string, userID int64, leaveID int64) error
	GetHolidayCalendar(ctx context.Context, token string, userID int64) ([]model.Holiday, error)
	GetUserDetails(ctx context.Context, token string, userID int64) (*model.UserProfile, error)

	GetAllUsers(ctx context.Context, token string, adminID int64) ([]model.UserProfile, error)
	GetAllLeaveRequests(ctx context.Context, token string, adminID int64) ([]model.LeaveRequest, error)
	ApproveLeave(ctx context.Context, token string, adminID int64, leaveID int64) (string, error)
	RejectLeave(ctx context.Context, token string, adminID int64, leaveID int64) (string, error)
	AddRole(ctx context.Context, token string, adminID int64, role model.RoleDefinition) (string, error)
	AddLeavePolicy(ctx context.Context, token string, adminID int64, policy model.LeavePolicy) (string, error)
	AddCountryCalendar(ctx context.Context, token string, adminID int64, holiday model.Holiday) (string, error)
}

func NewClient(endpoint string, c customhttp.HTTPCommand) *client {
	return &client{
		URL:              endpoint,
		Client:           c,
		RateLimitBackoff: defaultRateLimitBackoff,
		RateLimitTimeout: defaultRateLimitTimeout,
	}
}

type client struct {
	URL              string
	Client           customhttp.HTTPCommand
	RateLimitBackoff *gax.Backoff
	RateLimitTimeout time.Duration
}

// ReusableRequest wraps a prepared HTTP request so it can be retried.
type ReusableRequest struct {
	Request *http.Request
}

// rewind restores the request body from its snapshot so the request can be
// issued again. Executing a request drains its body, so every attempt after
// the first needs a fresh copy. Requests without a body need no rewinding.
func (r *ReusableRequest) rewind() error {
	if r.Request == nil || r.Request.GetBody == nil {
		return nil
	}
	body, err := r.Request.GetBody()
	if err != nil {
		return err
	}
	r.Request.Body = body
	return nil
}

var defaultRateLimitBackoff = &gax.Backoff{
	Initial:    2 * time.Second,
	Max:        30 * time.Second,
	Multiplier: 2,
}

const defaultRateLimitTimeout = 2 * time.Minute

var (
	unauthorized      = errors.New("unauthorized")
	exceededRateLimit = errors.New("rate limit exceeded")
	nonRetryable      = errors.New("non retryable")
)

// Unauthorized reports whether the error came back as a 401/403 from the leave API.
func Unauthorized(err error) bool {
	return errors.Is(err, unauthorized)
}

func getHTTPStatusCode(ctx context.Context, res *http.Response, apiName string) error {
	switch res.StatusCode {
	case http.StatusOK, http.StatusCreated:
		return nil
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("failed to call %s with cause %d %w", apiName, res.StatusCode, unauthorized)
	case http.StatusTooManyRequests:
		return fmt.Errorf("failed to call %s with cause %d %w", apiName, res.StatusCode, exceededRateLimit)
	default:
		return fmt.Errorf("failed to call %s with cause %d %w", apiName, res.StatusCode, nonRetryable)
	}
}

func newRetry(ctx context.Context, backOff *gax.Backoff, timeout time.Duration) (context.Context, context.CancelFunc, *gax.Backoff) {
	retryCtx, cancel := context.WithTimeout(ctx, timeout)
	b := *backOff
	return retryCtx, cancel, &b
}

func (c *client) newRequest(ctx context.Context, method string, url string, token string, payload interface{}) (*http.Request, error) {
	contextLogger := log.WithContext(ctx)

	var body *bytes.Buffer
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		body = bytes.NewBuffer(raw)
	}

	var httpRequest *http.Request
	var err error
	if body != nil {
		httpRequest, err = http.NewRequest(method, url, body)
	} else {
		httpRequest, err = http.NewRequest(method, url, nil)
	}
	if err != nil {
		contextLogger.WithError(err).Errorf("failed to build HTTP request")
		return nil, err
	}

	httpRequest.Header.Set("Authorization", "Bearer "+token)
	httpRequest.Header.Set("Accept", "application/json")
	if payload != nil {
		httpRequest.Header.Set("Content-Type", "application/json")
	}
	return httpRequest.WithContext(ctx), nil
}

// invoke executes the request, checks the status and unmarshals the response
// body into out when out is non nil.
func (c *client) invoke(ctx context.Context, apiName string, httpRequest *http.Request, out interface{}) error {
	contextLogger := log.WithContext(ctx)

	resp, err := c.Client.Do(httpRequest)
	if err != nil {
		contextLogger.WithError(err).Errorf("there was an error calling the leave API (%s). %v", apiName, err)
		return err
	}

	defer func() {
		if err = resp.Body.Close(); err != nil {
			contextLogger.WithError(err).Errorf("Error closing the ioReader. %v", err)
		}
	}()

	if err := getHTTPStatusCode(ctx, resp, apiName); err != nil {
		contextLogger.Infof("status returned from leave service %s ", resp.Status)
		return err
	}

	if out == nil {
		return nil
	}

	body, err := ioutil.ReadAll(resp.Body)
	if err != nil {
		contextLogger.WithError(err).Errorf("error reading leave API resp body (%s)", body)
		return err
	}

	if err := json.Unmarshal(body, out); err != nil {
		contextLogger.WithError(err).Errorf("there was an error un marshalling the leave API resp. %v", err)
		return err
	}
	return nil
}

func (c *client) buildUserEndpoint(op string, userID int64) string {
	return fmt.Sprintf("%s/users/%s/%d", c.URL, op, userID)
}

func (c *client) buildAdminEndpoint(op string, adminID int64) string {
	return fmt.Sprintf("%s/admin/%s/%d", c.URL, op, adminID)
}
