package leave

import (
	"context"
	"net/http"

	log "github.com/sirupsen/logrus"

	"github.com/smartleave/leave-composer/internal/model"
)

// GetHolidayCalendar returns the country holiday calendar applicable to the user.
func (c *client) GetHolidayCalendar(ctx context.Context, token string, userID int64) ([]model.Holiday, error) {
	contextLogger := log.WithContext(ctx)
	contextLogger.Info("Fetching holiday calendar for user: ", userID)

	httpRequest, err := c.newRequest(ctx, http.MethodGet, c.buildUserEndpoint("get-holiday-calendar", userID), token, nil)
	if err != nil {
		return nil, err
	}

	var response []model.Holiday
	if err := c.invoke(ctx, "GetHolidayCalendar", httpRequest, &response); err != nil {
		return nil, err
	}
	return response, nil
}

// GetUserDetails returns the profile record for the user.
func (c *client) GetUserDetails(ctx context.Context, token string, userID int64) (*model.UserProfile, error) {
	contextLogger := log.WithContext(ctx)
	contextLogger.Info("Fetching user details for user: ", userID)

	httpRequest, err := c.newRequest(ctx, http.MethodGet, c.buildUserEndpoint("get-user-details", userID), token, nil)
	if err != nil {
		return nil, err
	}

	response := &model.UserProfile{}
	if err := c.invoke(ctx, "GetUserDetails", httpRequest, response); err != nil {
		return nil, err
	}
	return response, nil
}
