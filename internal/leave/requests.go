package leave

import (
	"context"
	"encoding/json"
	"fmt"
	"io/ioutil"
	"net/http"

	log "github.com/sirupsen/logrus"

	"github.com/smartleave/leave-composer/internal/model"
)

// ApplyLeaveResponse is the outcome of a leave submission. Older deployments
// of the leave service answer with a plain status message instead of the
// created record, in which case LeaveID is zero.
type ApplyLeaveResponse struct {
	LeaveID int64  `json:"leaveId"`
	Message string `json:"message"`
}

// GetLeaveRequests returns the user's own leave requests.
func (c *client) GetLeaveRequests(ctx context.Context, token string, userID int64) ([]model.LeaveRequest, error) {
	contextLogger := log.WithContext(ctx)
	contextLogger.Info("Fetching leave requests for user: ", userID)

	httpRequest, err := c.newRequest(ctx, http.MethodGet, c.buildUserEndpoint("get-leave-requests", userID), token, nil)
	if err != nil {
		return nil, err
	}

	var response []model.LeaveRequest
	if err := c.invoke(ctx, "GetLeaveRequests", httpRequest, &response); err != nil {
		return nil, err
	}
	return response, nil
}

// GetTeamLeaveRequests returns the requests visible to a manager through the
// users surface of the leave API.
func (c *client) GetTeamLeaveRequests(ctx context.Context, token string, userID int64) ([]model.LeaveRequest, error) {
	contextLogger := log.WithContext(ctx)
	contextLogger.Info("Fetching team leave requests for user: ", userID)

	httpRequest, err := c.newRequest(ctx, http.MethodGet, c.buildUserEndpoint("get-all-leave-requests", userID), token, nil)
	if err != nil {
		return nil, err
	}

	var response []model.LeaveRequest
	if err := c.invoke(ctx, "GetTeamLeaveRequests", httpRequest, &response); err != nil {
		return nil, err
	}
	return response, nil
}

// ApplyLeave submits one leave request draft.
func (c *client) ApplyLeave(ctx context.Context, token string, userID int64, draft model.LeaveRequestDraft) (*ApplyLeaveResponse, error) {
	contextLogger := log.WithContext(ctx)
	contextLogger.Infof("Submitting %v leave request %v..%v for user %d", draft.LeaveType, draft.StartDate, draft.EndDate, userID)

	httpRequest, err := c.newRequest(ctx, http.MethodPost, c.buildUserEndpoint("apply-leave", userID), token, draft)
	if err != nil {
		return nil, err
	}

	resp, err := c.Client.Do(httpRequest)
	if err != nil {
		contextLogger.WithError(err).Errorf("there was an error calling the leave API (ApplyLeave). %v", err)
		return nil, err
	}

	defer func() {
		if err = resp.Body.Close(); err != nil {
			contextLogger.WithError(err).Errorf("Error closing the ioReader. %v", err)
		}
	}()

	if err := getHTTPStatusCode(ctx, resp, "ApplyLeave"); err != nil {
		contextLogger.Infof("status returned from leave service %s ", resp.Status)
		return nil, err
	}

	body, err := ioutil.ReadAll(resp.Body)
	if err != nil {
		contextLogger.WithError(err).Errorf("error reading leave API resp body (%s)", body)
		return nil, err
	}

	response := &ApplyLeaveResponse{}
	if err := json.Unmarshal(body, response); err != nil {
		// Plain text status message from an older leave service deployment.
		response.Message = string(body)
	}
	return response, nil
}

// CancelLeaveRequest cancels a persisted leave request. Also used as the
// compensating action when the fallback leg of a split submission fails.
func (c *client) CancelLeaveRequest(ctx context.Context, token string, userID int64, leaveID int64) error {
	contextLogger := log.WithContext(ctx)
	contextLogger.Infof("Cancelling leave request %d for user %d", leaveID, userID)

	url := fmt.Sprintf("%s/%d", c.buildUserEndpoint("cancel-leave-request", userID), leaveID)
	httpRequest, err := c.newRequest(ctx, http.MethodPost, url, token, nil)
	if err != nil {
		return err
	}
	return c.invoke(ctx, "CancelLeaveRequest", httpRequest, nil)
}
