package admin

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"github.com/smartleave/leave-composer/internal/auth"
	"github.com/smartleave/leave-composer/internal/leave"
	"github.com/smartleave/leave-composer/internal/model"
	"github.com/smartleave/leave-composer/internal/util"
)

// APIHandler is the admin service surface consumed by the HTTP handlers.
type APIHandler interface {
	Users(ctx context.Context, sess auth.Session) ([]model.UserProfile, error)
	LeaveRequests(ctx context.Context, sess auth.Session) ([]model.LeaveRequest, error)
	Approve(ctx context.Context, sess auth.Session, leaveID int64) (string, error)
	Reject(ctx context.Context, sess auth.Session, leaveID int64) (string, error)
	AddRole(ctx context.Context, sess auth.Session, role model.RoleDefinition) (string, error)
	AddLeavePolicy(ctx context.Context, sess auth.Session, policy model.LeavePolicy) (string, error)
	AddCountryCalendar(ctx context.Context, sess auth.Session, holiday model.Holiday) (string, error)
}

func writeError(res http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, auth.ErrNoSession) || leave.Unauthorized(err):
		util.WithBodyAndStatus(err.Error(), http.StatusUnauthorized, res)
	default:
		util.WithBodyAndStatus(err.Error(), http.StatusBadGateway, res)
	}
}

func sessionFrom(res http.ResponseWriter, req *http.Request, verifier *auth.Verifier) (auth.Session, bool) {
	adminID, err := strconv.ParseInt(mux.Vars(req)["adminID"], 10, 64)
	if err != nil {
		util.WithBodyAndStatus("invalid admin id", http.StatusBadRequest, res)
		return auth.Session{}, false
	}

	sess, err := verifier.FromRequest(req, adminID)
	if err != nil {
		util.WithBodyAndStatus("missing or invalid session", http.StatusUnauthorized, res)
		return auth.Session{}, false
	}
	return sess, true
}

func usersHandler(verifier *auth.Verifier, handler APIHandler) http.HandlerFunc {
	return func(res http.ResponseWriter, req *http.Request) {
		ctx := req.Context()
		sess, ok := sessionFrom(res, req, verifier)
		if !ok {
			return
		}

		users, err := handler.Users(ctx, sess)
		if err != nil {
			log.WithContext(ctx).WithError(err).Error("Failed to fetch the user list")
			writeError(res, err)
			return
		}
		util.WithBodyAndStatus(users, http.StatusOK, res)
	}
}

func leaveRequestsHandler(verifier *auth.Verifier, handler APIHandler) http.HandlerFunc {
	return func(res http.ResponseWriter, req *http.Request) {
		ctx := req.Context()
		sess, ok := sessionFrom(res, req, verifier)
		if !ok {
			return
		}

		requests, err := handler.LeaveRequests(ctx, sess)
		if err != nil {
			log.WithContext(ctx).WithError(err).Error("Failed to fetch all leave requests")
			writeError(res, err)
			return
		}
		util.WithBodyAndStatus(requests, http.StatusOK, res)
	}
}

func actionHandler(verifier *auth.Verifier, action func(ctx context.Context, sess auth.Session, leaveID int64) (string, error)) http.HandlerFunc {
	return func(res http.ResponseWriter, req *http.Request) {
		ctx := req.Context()
		sess, ok := sessionFrom(res, req, verifier)
		if !ok {
			return
		}

		leaveID, err := strconv.ParseInt(mux.Vars(req)["leaveID"], 10, 64)
		if err != nil {
			util.WithBodyAndStatus("invalid leave id", http.StatusBadRequest, res)
			return
		}

		msg, err := action(ctx, sess, leaveID)
		if err != nil {
			log.WithContext(ctx).WithError(err).Errorf("Failed to action leave request %d", leaveID)
			writeError(res, err)
			return
		}
		util.WithBodyAndStatus(msg, http.StatusOK, res)
	}
}

func addRoleHandler(verifier *auth.Verifier, handler APIHandler) http.HandlerFunc {
	return func(res http.ResponseWriter, req *http.Request) {
		ctx := req.Context()
		sess, ok := sessionFrom(res, req, verifier)
		if !ok {
			return
		}

		var role model.RoleDefinition
		if err := json.NewDecoder(req.Body).Decode(&role); err != nil {
			log.WithContext(ctx).WithError(err).Error("Failed to parse request body")
			util.WithBodyAndStatus("invalid request body", http.StatusBadRequest, res)
			return
		}

		msg, err := handler.AddRole(ctx, sess, role)
		if err != nil {
			log.WithContext(ctx).WithError(err).Error("Failed to add the new role")
			writeError(res, err)
			return
		}
		util.WithBodyAndStatus(msg, http.StatusOK, res)
	}
}

func addLeavePolicyHandler(verifier *auth.Verifier, handler APIHandler) http.HandlerFunc {
	return func(res http.ResponseWriter, req *http.Request) {
		ctx := req.Context()
		sess, ok := sessionFrom(res, req, verifier)
		if !ok {
			return
		}

		var policy model.LeavePolicy
		if err := json.NewDecoder(req.Body).Decode(&policy); err != nil {
			log.WithContext(ctx).WithError(err).Error("Failed to parse request body")
			util.WithBodyAndStatus("invalid request body", http.StatusBadRequest, res)
			return
		}

		msg, err := handler.AddLeavePolicy(ctx, sess, policy)
		if err != nil {
			log.WithContext(ctx).WithError(err).Error("Failed to add the leave policy")
			writeError(res, err)
			return
		}
		util.WithBodyAndStatus(msg, http.StatusOK, res)
	}
}

func addCountryCalendarHandler(verifier *auth.Verifier, handler APIHandler) http.HandlerFunc {
	return func(res http.ResponseWriter, req *http.Request) {
		ctx := req.Context()
		sess, ok := sessionFrom(res, req, verifier)
		if !ok {
			return
		}

		var holiday model.Holiday
		if err := json.NewDecoder(req.Body).Decode(&holiday); err != nil {
			log.WithContext(ctx).WithError(err).Error("Failed to parse request body")
			util.WithBodyAndStatus("invalid request body", http.StatusBadRequest, res)
			return
		}

		msg, err := handler.AddCountryCalendar(ctx, sess, holiday)
		if err != nil {
			log.WithContext(ctx).WithError(err).Error("Failed to add the country calendar entry")
			writeError(res, err)
			return
		}
		util.WithBodyAndStatus(msg, http.StatusOK, res)
	}
}
