package internal

import (
	"net/http"

	"github.com/smartleave/leave-composer/internal/auth"
	"github.com/smartleave/leave-composer/internal/config"
)

// Routes wires the user-facing leave endpoints. Every route carries the
// subject user in the path so the session check can compare it against the
// token identity.
func Routes(verifier *auth.Verifier, handler LeaveAPIHandler) []config.Route {
	return []config.Route{
		{
			Path:    "/users/apply-leave/{userID}",
			Method:  http.MethodPost,
			Handler: applyLeaveHandler(verifier, handler),
		},
		{
			Path:    "/users/leave-balance/{userID}",
			Method:  http.MethodGet,
			Handler: leaveBalanceHandler(verifier, handler),
		},
		{
			Path:    "/users/leave-requests/{userID}",
			Method:  http.MethodGet,
			Handler: leaveRequestsHandler(verifier, handler),
		},
		{
			Path:    "/users/team-leave-requests/{userID}",
			Method:  http.MethodGet,
			Handler: teamLeaveRequestsHandler(verifier, handler),
		},
		{
			Path:    "/users/calculate-duration/{userID}",
			Method:  http.MethodPost,
			Handler: calculateDurationHandler(verifier, handler),
		},
		{
			Path:    "/users/holiday-calendar/{userID}",
			Method:  http.MethodGet,
			Handler: holidayCalendarHandler(verifier, handler),
		},
		{
			Path:    "/users/cancel-leave-request/{userID}/{leaveID}",
			Method:  http.MethodPost,
			Handler: cancelLeaveHandler(verifier, handler),
		},
		{
			Path:    "/users/profile/{userID}",
			Method:  http.MethodGet,
			Handler: profileHandler(verifier, handler),
		},
	}
}
