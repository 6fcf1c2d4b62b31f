// Package admin exposes the administrative surface of the leave service:
// user listing, request approval and the role, policy and calendar setup.
package admin

import (
	"context"

	"github.com/smartleave/leave-composer/internal/auth"
	"github.com/smartleave/leave-composer/internal/model"
)

// ClientInterface is the admin slice of the leave API client.
type ClientInterface interface {
	GetAllUsers(ctx context.Context, token string, adminID int64) ([]model.UserProfile, error)
	GetAllLeaveRequests(ctx context.Context, token string, adminID int64) ([]model.LeaveRequest, error)
	ApproveLeave(ctx context.Context, token string, adminID int64, leaveID int64) (string, error)
	RejectLeave(ctx context.Context, token string, adminID int64, leaveID int64) (string, error)
	AddRole(ctx context.Context, token string, adminID int64, role model.RoleDefinition) (string, error)
	AddLeavePolicy(ctx context.Context, token string, adminID int64, policy model.LeavePolicy) (string, error)
	AddCountryCalendar(ctx context.Context, token string, adminID int64, holiday model.Holiday) (string, error)
}

type Service struct {
	client ClientInterface
}

func NewAdminService(client ClientInterface) *Service {
	return &Service{client: client}
}

func (service Service) requireAdmin(sess auth.Session) error {
	if sess.Role != model.RoleAdmin {
		return auth.ErrNoSession
	}
	return nil
}

// Users lists every registered user.
func (service Service) Users(ctx context.Context, sess auth.Session) ([]model.UserProfile, error) {
	if err := service.requireAdmin(sess); err != nil {
		return nil, err
	}
	return service.client.GetAllUsers(ctx, sess.Token, sess.UserID)
}

// LeaveRequests lists every leave request across the organisation.
func (service Service) LeaveRequests(ctx context.Context, sess auth.Session) ([]model.LeaveRequest, error) {
	if err := service.requireAdmin(sess); err != nil {
		return nil, err
	}
	return service.client.GetAllLeaveRequests(ctx, sess.Token, sess.UserID)
}

// Approve marks a pending request approved.
func (service Service) Approve(ctx context.Context, sess auth.Session, leaveID int64) (string, error) {
	if err := service.requireAdmin(sess); err != nil {
		return "", err
	}
	return service.client.ApproveLeave(ctx, sess.Token, sess.UserID, leaveID)
}

// Reject marks a pending request rejected.
func (service Service) Reject(ctx context.Context, sess auth.Session, leaveID int64) (string, error) {
	if err := service.requireAdmin(sess); err != nil {
		return "", err
	}
	return service.client.RejectLeave(ctx, sess.Token, sess.UserID, leaveID)
}

// AddRole registers a new user role.
func (service Service) AddRole(ctx context.Context, sess auth.Session, role model.RoleDefinition) (string, error) {
	if err := service.requireAdmin(sess); err != nil {
		return "", err
	}
	return service.client.AddRole(ctx, sess.Token, sess.UserID, role)
}

// AddLeavePolicy registers the leave entitlements for a role.
func (service Service) AddLeavePolicy(ctx context.Context, sess auth.Session, policy model.LeavePolicy) (string, error) {
	if err := service.requireAdmin(sess); err != nil {
		return "", err
	}
	return service.client.AddLeavePolicy(ctx, sess.Token, sess.UserID, policy)
}

// AddCountryCalendar registers a holiday on a country calendar.
func (service Service) AddCountryCalendar(ctx context.Context, sess auth.Session, holiday model.Holiday) (string, error) {
	if err := service.requireAdmin(sess); err != nil {
		return "", err
	}
	return service.client.AddCountryCalendar(ctx, sess.Token, sess.UserID, holiday)
}
