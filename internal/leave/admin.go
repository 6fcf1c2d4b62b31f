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

// GetAllUsers returns every registered user. Admin only.
func (c *client) GetAllUsers(ctx context.Context, token string, adminID int64) ([]model.UserProfile, error) {
	contextLogger := log.WithContext(ctx)
	contextLogger.Info("Fetching all users for admin: ", adminID)

	httpRequest, err := c.newRequest(ctx, http.MethodGet, c.buildAdminEndpoint("get-all-users", adminID), token, nil)
	if err != nil {
		return nil, err
	}

	var response []model.UserProfile
	if err := c.invoke(ctx, "GetAllUsers", httpRequest, &response); err != nil {
		return nil, err
	}
	return response, nil
}

// GetAllLeaveRequests returns every leave request in the system. Admin only.
func (c *client) GetAllLeaveRequests(ctx context.Context, token string, adminID int64) ([]model.LeaveRequest, error) {
	contextLogger := log.WithContext(ctx)
	contextLogger.Info("Fetching all leave requests for admin: ", adminID)

	httpRequest, err := c.newRequest(ctx, http.MethodGet, c.buildAdminEndpoint("get-all-leave-requests", adminID), token, nil)
	if err != nil {
		return nil, err
	}

	var response []model.LeaveRequest
	if err := c.invoke(ctx, "GetAllLeaveRequests", httpRequest, &response); err != nil {
		return nil, err
	}
	return response, nil
}

// ApproveLeave approves a pending request on behalf of the admin.
func (c *client) ApproveLeave(ctx context.Context, token string, adminID int64, leaveID int64) (string, error) {
	return c.actionLeave(ctx, "approve", token, adminID, leaveID)
}

// RejectLeave rejects a pending request on behalf of the admin.
func (c *client) RejectLeave(ctx context.Context, token string, adminID int64, leaveID int64) (string, error) {
	return c.actionLeave(ctx, "reject", token, adminID, leaveID)
}

func (c *client) actionLeave(ctx context.Context, action string, token string, adminID int64, leaveID int64) (string, error) {
	contextLogger := log.WithContext(ctx)
	contextLogger.Infof("Actioning (%s) leave request %d by admin %d", action, leaveID, adminID)

	url := fmt.Sprintf("%s/%d", c.buildAdminEndpoint(action, adminID), leaveID)
	httpRequest, err := c.newRequest(ctx, http.MethodPost, url, token, struct{}{})
	if err != nil {
		return "", err
	}
	return c.invokeMessage(ctx, "ActionLeave", httpRequest)
}

// AddRole registers a new role definition.
func (c *client) AddRole(ctx context.Context, token string, adminID int64, role model.RoleDefinition) (string, error) {
	httpRequest, err := c.newRequest(ctx, http.MethodPost, c.buildAdminEndpoint("add-newrole", adminID), token, role)
	if err != nil {
		return "", err
	}
	return c.invokeMessage(ctx, "AddRole", httpRequest)
}

// AddLeavePolicy sets the per-role leave entitlements.
func (c *client) AddLeavePolicy(ctx context.Context, token string, adminID int64, policy model.LeavePolicy) (string, error) {
	httpRequest, err := c.newRequest(ctx, http.MethodPost, c.buildAdminEndpoint("add-new-leave-policies", adminID), token, policy)
	if err != nil {
		return "", err
	}
	return c.invokeMessage(ctx, "AddLeavePolicy", httpRequest)
}

// AddCountryCalendar adds one holiday entry to a country calendar.
func (c *client) AddCountryCalendar(ctx context.Context, token string, adminID int64, holiday model.Holiday) (string, error) {
	httpRequest, err := c.newRequest(ctx, http.MethodPost, c.buildAdminEndpoint("add-new-country-calendar", adminID), token, holiday)
	if err != nil {
		return "", err
	}
	return c.invokeMessage(ctx, "AddCountryCalendar", httpRequest)
}

// invokeMessage executes the request and returns the server's textual status
// message, tolerating both JSON strings and plain text bodies.
func (c *client) invokeMessage(ctx context.Context, apiName string, httpRequest *http.Request) (string, error) {
	contextLogger := log.WithContext(ctx)

	resp, err := c.Client.Do(httpRequest)
	if err != nil {
		contextLogger.WithError(err).Errorf("there was an error calling the leave API (%s). %v", apiName, err)
		return "", err
	}

	defer func() {
		if err = resp.Body.Close(); err != nil {
			contextLogger.WithError(err).Errorf("Error closing the ioReader. %v", err)
		}
	}()

	if err := getHTTPStatusCode(ctx, resp, apiName); err != nil {
		contextLogger.Infof("status returned from leave service %s ", resp.Status)
		return "", err
	}

	body, err := ioutil.ReadAll(resp.Body)
	if err != nil {
		contextLogger.WithError(err).Errorf("error reading leave API resp body (%s)", body)
		return "", err
	}

	var message string
	if err := json.Unmarshal(body, &message); err != nil {
		message = string(body)
	}
	return message, nil
}
