package internal

import (
	"bytes"
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/ses"
	log "github.com/sirupsen/logrus"
	"gopkg.in/gomail.v2"

	"github.com/smartleave/leave-composer/internal/auth"
	"github.com/smartleave/leave-composer/internal/calendar"
	"github.com/smartleave/leave-composer/internal/composer"
	icontext "github.com/smartleave/leave-composer/internal/context"
	"github.com/smartleave/leave-composer/internal/leave"
	"github.com/smartleave/leave-composer/internal/model"
)

// ApplyLeaveRequest is the submission payload from the web client.
type ApplyLeaveRequest struct {
	LeaveType          string     `json:"leaveType"`
	SecondaryLeaveType string     `json:"secondaryLeaveType,omitempty"`
	StartDate          model.Date `json:"startDate"`
	EndDate            model.Date `json:"endDate"`
	Comments           string     `json:"comments"`
}

// ApplyLeaveResult is returned to the client after a successful submission.
type ApplyLeaveResult struct {
	TotalDays int               `json:"totalDays"`
	Requests  []SubmittedLeave  `json:"requests"`
	Balance   LeaveBalanceNote  `json:"balance"`
}

// SubmittedLeave is one persisted leg of a submission.
type SubmittedLeave struct {
	LeaveID   int64      `json:"leaveId"`
	LeaveType string     `json:"leaveType"`
	StartDate model.Date `json:"startDate"`
	EndDate   model.Date `json:"endDate"`
	Days      int        `json:"days"`
}

// LeaveBalanceNote flags a submission that had to borrow from a fallback type.
type LeaveBalanceNote struct {
	Split bool `json:"split"`
}

type Service struct {
	client      leave.ClientInterface
	calendars   *calendar.Cache
	emailClient *ses.SES
	emailFrom   string
}

func NewService(c leave.ClientInterface, calendars *calendar.Cache, ec *ses.SES, emailFrom string) *Service {
	return &Service{
		client:      c,
		calendars:   calendars,
		emailClient: ec,
		emailFrom:   emailFrom,
	}
}

// ApplyLeave runs the full submission sequence for one request: resolve the
// duration, validate against the balance and the existing requests, then
// submit one or two legs through the composer.
func (service Service) ApplyLeave(ctx context.Context, sess auth.Session, req ApplyLeaveRequest) (*ApplyLeaveResult, error) {
	ctxLogger := log.WithContext(ctx)

	leaveType, err := model.ParseLeaveType(req.LeaveType)
	if err != nil {
		return nil, &composer.ValidationError{Reason: err.Error()}
	}
	if req.StartDate.Before(model.Today()) {
		return nil, &composer.ValidationError{Reason: "start date must not be in the past"}
	}

	c := composer.New(sess, service.client)
	c.Refresh(ctx)
	c.SetLeaveType(leaveType)
	c.SetComments(req.Comments)
	if req.SecondaryLeaveType != "" {
		secondary, err := model.ParseLeaveType(req.SecondaryLeaveType)
		if err != nil {
			return nil, &composer.ValidationError{Reason: err.Error()}
		}
		c.SetSecondaryLeaveType(secondary)
	}

	c.StageDates(req.StartDate, req.EndDate)
	if err := c.EnsureDuration(ctx); err != nil {
		if composer.IsValidation(err) {
			return nil, err
		}
		ctxLogger.WithError(err).Error("Failed to calculate the leave duration")
		return nil, fmt.Errorf("failed to calculate the leave duration: %w", err)
	}

	result, err := c.Submit(ctx)
	if err != nil {
		return nil, err
	}

	out := &ApplyLeaveResult{
		TotalDays: result.TotalDays,
		Balance:   LeaveBalanceNote{Split: result.Fallback != nil},
	}
	for _, leg := range []*composer.Leg{result.Primary, result.Fallback} {
		if leg == nil {
			continue
		}
		out.Requests = append(out.Requests, SubmittedLeave{
			LeaveID:   leg.LeaveID,
			LeaveType: leg.LeaveType.String(),
			StartDate: leg.Range.Start,
			EndDate:   leg.Range.End,
			Days:      leg.Days,
		})
	}

	// The confirmation email must not delay or fail the response.
	go service.sendConfirmation(icontext.Detach(ctx), sess, out)

	return out, nil
}

// LeaveBalance returns the user's remaining balances per leave type.
func (service Service) LeaveBalance(ctx context.Context, sess auth.Session) (*model.LeaveBalance, error) {
	return service.client.GetLeaveBalance(ctx, sess.Token, sess.UserID)
}

// LeaveRequests returns the user's own leave request history.
func (service Service) LeaveRequests(ctx context.Context, sess auth.Session) ([]model.LeaveRequest, error) {
	return service.client.GetLeaveRequests(ctx, sess.Token, sess.UserID)
}

// TeamLeaveRequests returns the requests raised by the caller's reports.
// Restricted to managing roles.
func (service Service) TeamLeaveRequests(ctx context.Context, sess auth.Session) ([]model.LeaveRequest, error) {
	if !sess.Role.Manager() && sess.Role != model.RoleTeamLead {
		return nil, auth.ErrNoSession
	}
	return service.client.GetTeamLeaveRequests(ctx, sess.Token, sess.UserID)
}

// CalculateDuration resolves the chargeable day count for a date range,
// excluding weekends and the user's holiday calendar on the service side.
func (service Service) CalculateDuration(ctx context.Context, sess auth.Session, r model.DateRange) (int, error) {
	if !r.Valid() {
		return 0, &composer.ValidationError{Reason: "a valid date range is required"}
	}
	req, err := service.client.NewDurationRequest(ctx, sess.Token, sess.UserID, r)
	if err != nil {
		return 0, err
	}
	return service.client.CalculateDuration(ctx, req)
}

// HolidayCalendar returns the user's holiday calendar, cached.
func (service Service) HolidayCalendar(ctx context.Context, sess auth.Session) ([]model.Holiday, error) {
	return service.calendars.Holidays(ctx, sess)
}

// CancelLeave withdraws one of the user's own leave requests.
func (service Service) CancelLeave(ctx context.Context, sess auth.Session, leaveID int64) error {
	return service.client.CancelLeaveRequest(ctx, sess.Token, sess.UserID, leaveID)
}

// Profile returns the user detail record.
func (service Service) Profile(ctx context.Context, sess auth.Session) (*model.UserProfile, error) {
	return service.client.GetUserDetails(ctx, sess.Token, sess.UserID)
}

func (service Service) sendConfirmation(ctx context.Context, sess auth.Session, result *ApplyLeaveResult) {
	contextLogger := log.WithContext(ctx)
	if service.emailClient == nil || service.emailFrom == "" {
		return
	}

	profile, err := service.client.GetUserDetails(ctx, sess.Token, sess.UserID)
	if err != nil {
		contextLogger.WithError(err).Error("Failed to fetch the user profile for the confirmation email")
		return
	}
	if profile.Email == "" {
		return
	}

	body := fmt.Sprintf("Hi %s,\n\nYour leave application for %d day(s) was submitted:\n", profile.FirstName, result.TotalDays)
	for _, r := range result.Requests {
		body += fmt.Sprintf("  %s from %v to %v (%d day(s))\n", r.LeaveType, r.StartDate, r.EndDate, r.Days)
	}
	if result.Balance.Split {
		body += "\nYour balance could not cover the full duration, the remainder was applied on the fallback leave type.\n"
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", service.emailFrom)
	msg.SetHeader("To", profile.Email)
	msg.SetHeader("Subject", "Leave application submitted")
	msg.SetBody("text/plain", body)

	var emailRaw bytes.Buffer
	if _, err := msg.WriteTo(&emailRaw); err != nil {
		contextLogger.WithError(err).Error("Error when writing email data")
		return
	}

	message := ses.RawMessage{Data: emailRaw.Bytes()}
	emailParams := ses.SendRawEmailInput{
		Source:     aws.String(service.emailFrom),
		RawMessage: &message,
	}
	emailParams.SetDestinations([]*string{aws.String(profile.Email)})

	if _, err := service.emailClient.SendRawEmail(&emailParams); err != nil {
		contextLogger.WithError(err).Error("Error when sending email")
		return
	}
	contextLogger.Infof("Confirmation email sent for user %d", sess.UserID)
}
