package internal

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"github.com/smartleave/leave-composer/internal/auth"
	"github.com/smartleave/leave-composer/internal/composer"
	"github.com/smartleave/leave-composer/internal/leave"
	"github.com/smartleave/leave-composer/internal/model"
	"github.com/smartleave/leave-composer/internal/util"
)

// LeaveAPIHandler is the service surface consumed by the HTTP handlers.
type LeaveAPIHandler interface {
	ApplyLeave(ctx context.Context, sess auth.Session, req ApplyLeaveRequest) (*ApplyLeaveResult, error)
	LeaveBalance(ctx context.Context, sess auth.Session) (*model.LeaveBalance, error)
	LeaveRequests(ctx context.Context, sess auth.Session) ([]model.LeaveRequest, error)
	TeamLeaveRequests(ctx context.Context, sess auth.Session) ([]model.LeaveRequest, error)
	CalculateDuration(ctx context.Context, sess auth.Session, r model.DateRange) (int, error)
	HolidayCalendar(ctx context.Context, sess auth.Session) ([]model.Holiday, error)
	CancelLeave(ctx context.Context, sess auth.Session, leaveID int64) error
	Profile(ctx context.Context, sess auth.Session) (*model.UserProfile, error)
}

func writeError(res http.ResponseWriter, err error) {
	switch {
	case composer.IsValidation(err):
		util.WithBodyAndStatus(err.Error(), http.StatusBadRequest, res)
	case composer.IsConflict(err) || errors.Is(err, composer.ErrSubmitInFlight):
		util.WithBodyAndStatus(err.Error(), http.StatusConflict, res)
	case errors.Is(err, auth.ErrNoSession) || leave.Unauthorized(err):
		util.WithBodyAndStatus(err.Error(), http.StatusUnauthorized, res)
	default:
		util.WithBodyAndStatus(err.Error(), http.StatusBadGateway, res)
	}
}

func sessionFrom(res http.ResponseWriter, req *http.Request, verifier *auth.Verifier) (auth.Session, bool) {
	userID, err := strconv.ParseInt(mux.Vars(req)["userID"], 10, 64)
	if err != nil {
		util.WithBodyAndStatus("invalid user id", http.StatusBadRequest, res)
		return auth.Session{}, false
	}

	sess, err := verifier.FromRequest(req, userID)
	if err != nil {
		util.WithBodyAndStatus("missing or invalid session", http.StatusUnauthorized, res)
		return auth.Session{}, false
	}
	// Requests made on behalf of a report keep the report as the subject.
	sess.UserID = userID
	return sess, true
}

func applyLeaveHandler(verifier *auth.Verifier, handler LeaveAPIHandler) http.HandlerFunc {
	return func(res http.ResponseWriter, req *http.Request) {
		ctx := req.Context()
		contextLogger := log.WithContext(ctx)
		sess, ok := sessionFrom(res, req, verifier)
		if !ok {
			return
		}

		var body ApplyLeaveRequest
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
			contextLogger.WithError(err).Error("Failed to parse request body")
			util.WithBodyAndStatus("invalid request body", http.StatusBadRequest, res)
			return
		}

		result, err := handler.ApplyLeave(ctx, sess, body)
		if err != nil {
			contextLogger.WithError(err).Error("Failed to apply leave")
			writeError(res, err)
			return
		}
		util.WithBodyAndStatus(result, http.StatusCreated, res)
	}
}

func leaveBalanceHandler(verifier *auth.Verifier, handler LeaveAPIHandler) http.HandlerFunc {
	return func(res http.ResponseWriter, req *http.Request) {
		ctx := req.Context()
		sess, ok := sessionFrom(res, req, verifier)
		if !ok {
			return
		}

		balance, err := handler.LeaveBalance(ctx, sess)
		if err != nil {
			log.WithContext(ctx).WithError(err).Error("Failed to fetch the leave balance")
			writeError(res, err)
			return
		}
		util.WithBodyAndStatus(balance, http.StatusOK, res)
	}
}

func leaveRequestsHandler(verifier *auth.Verifier, handler LeaveAPIHandler) http.HandlerFunc {
	return func(res http.ResponseWriter, req *http.Request) {
		ctx := req.Context()
		sess, ok := sessionFrom(res, req, verifier)
		if !ok {
			return
		}

		requests, err := handler.LeaveRequests(ctx, sess)
		if err != nil {
			log.WithContext(ctx).WithError(err).Error("Failed to fetch the leave requests")
			writeError(res, err)
			return
		}
		util.WithBodyAndStatus(requests, http.StatusOK, res)
	}
}

func teamLeaveRequestsHandler(verifier *auth.Verifier, handler LeaveAPIHandler) http.HandlerFunc {
	return func(res http.ResponseWriter, req *http.Request) {
		ctx := req.Context()
		sess, ok := sessionFrom(res, req, verifier)
		if !ok {
			return
		}

		requests, err := handler.TeamLeaveRequests(ctx, sess)
		if err != nil {
			log.WithContext(ctx).WithError(err).Error("Failed to fetch the team leave requests")
			writeError(res, err)
			return
		}
		util.WithBodyAndStatus(requests, http.StatusOK, res)
	}
}

func calculateDurationHandler(verifier *auth.Verifier, handler LeaveAPIHandler) http.HandlerFunc {
	return func(res http.ResponseWriter, req *http.Request) {
		ctx := req.Context()
		contextLogger := log.WithContext(ctx)
		sess, ok := sessionFrom(res, req, verifier)
		if !ok {
			return
		}

		var r model.DateRange
		if err := json.NewDecoder(req.Body).Decode(&r); err != nil {
			contextLogger.WithError(err).Error("Failed to parse request body")
			util.WithBodyAndStatus("invalid request body", http.StatusBadRequest, res)
			return
		}

		days, err := handler.CalculateDuration(ctx, sess, r)
		if err != nil {
			contextLogger.WithError(err).Error("Failed to calculate the leave duration")
			writeError(res, err)
			return
		}
		util.WithBodyAndStatus(days, http.StatusOK, res)
	}
}

func holidayCalendarHandler(verifier *auth.Verifier, handler LeaveAPIHandler) http.HandlerFunc {
	return func(res http.ResponseWriter, req *http.Request) {
		ctx := req.Context()
		sess, ok := sessionFrom(res, req, verifier)
		if !ok {
			return
		}

		holidays, err := handler.HolidayCalendar(ctx, sess)
		if err != nil {
			log.WithContext(ctx).WithError(err).Error("Failed to fetch the holiday calendar")
			writeError(res, err)
			return
		}
		util.WithBodyAndStatus(holidays, http.StatusOK, res)
	}
}

func cancelLeaveHandler(verifier *auth.Verifier, handler LeaveAPIHandler) http.HandlerFunc {
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

		if err := handler.CancelLeave(ctx, sess, leaveID); err != nil {
			log.WithContext(ctx).WithError(err).Errorf("Failed to cancel leave request %d", leaveID)
			writeError(res, err)
			return
		}
		util.WithBodyAndStatus("Leave request cancelled", http.StatusOK, res)
	}
}

func profileHandler(verifier *auth.Verifier, handler LeaveAPIHandler) http.HandlerFunc {
	return func(res http.ResponseWriter, req *http.Request) {
		ctx := req.Context()
		sess, ok := sessionFrom(res, req, verifier)
		if !ok {
			return
		}

		profile, err := handler.Profile(ctx, sess)
		if err != nil {
			log.WithContext(ctx).WithError(err).Error("Failed to fetch the user profile")
			writeError(res, err)
			return
		}
		util.WithBodyAndStatus(profile, http.StatusOK, res)
	}
}
