package admin

import (
	"net/http"

	"github.com/smartleave/leave-composer/internal/auth"
	"github.com/smartleave/leave-composer/internal/config"
)

// Routes wires the admin endpoints. Every route is parameterised on the
// acting admin so the session check can compare the path identity against
// the token.
func Routes(verifier *auth.Verifier, handler APIHandler) []config.Route {
	return []config.Route{
		{
			Path:    "/admin/users/{adminID}",
			Method:  http.MethodGet,
			Handler: usersHandler(verifier, handler),
		},
		{
			Path:    "/admin/leave-requests/{adminID}",
			Method:  http.MethodGet,
			Handler: leaveRequestsHandler(verifier, handler),
		},
		{
			Path:    "/admin/approve/{adminID}/{leaveID}",
			Method:  http.MethodPost,
			Handler: actionHandler(verifier, handler.Approve),
		},
		{
			Path:    "/admin/reject/{adminID}/{leaveID}",
			Method:  http.MethodPost,
			Handler: actionHandler(verifier, handler.Reject),
		},
		{
			Path:    "/admin/roles/{adminID}",
			Method:  http.MethodPost,
			Handler: addRoleHandler(verifier, handler),
		},
		{
			Path:    "/admin/leave-policies/{adminID}",
			Method:  http.MethodPost,
			Handler: addLeavePolicyHandler(verifier, handler),
		},
		{
			Path:    "/admin/country-calendars/{adminID}",
			Method:  http.MethodPost,
			Handler: addCountryCalendarHandler(verifier, handler),
		},
	}
}
