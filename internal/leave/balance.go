package leave

import (
	"context"
	"fmt"
	"net/http"

	log "github.com/sirupsen/logrus"

	"github.com/smartleave/leave-composer/internal/model"
)

const balanceApiName = "GetLeaveBalance"

// GetLeaveBalance fetches the per-type balances for the user. The remote API
// wraps the record in a one element array.
func (c *client) GetLeaveBalance(ctx context.Context, token string, userID int64) (*model.LeaveBalance, error) {
	contextLogger := log.WithContext(ctx)
	contextLogger.Info("Fetching leave balance for user: ", userID)

	httpRequest, err := c.newRequest(ctx, http.MethodGet, c.buildUserEndpoint("get-leave-balance", userID), token, nil)
	if err != nil {
		return nil, err
	}

	var response []model.LeaveBalance
	if err := c.invoke(ctx, balanceApiName, httpRequest, &response); err != nil {
		return nil, err
	}

	if len(response) == 0 {
		return nil, fmt.Errorf("leave service (%s) returned an empty balance for user %d", balanceApiName, userID)
	}
	return &response[0], nil
}
