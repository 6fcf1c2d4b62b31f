package internal

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/smartleave/leave-composer/internal/auth"
	"github.com/smartleave/leave-composer/internal/calendar"
	"github.com/smartleave/leave-composer/internal/composer"
	"github.com/smartleave/leave-composer/internal/leave"
	"github.com/smartleave/leave-composer/internal/model"
)

type MockLeaveClient struct {
	mock.Mock
}

var testSession = auth.Session{UserID: 7, Role: model.RoleTeamMember, Token: "token-1"}

func newTestService(t *testing.T, client leave.ClientInterface) *Service {
	t.Helper()
	calendars, err := calendar.NewCache(client, "")
	require.NoError(t, err)
	return NewService(client, calendars, nil, "")
}

func TestApplyLeaveSingle(t *testing.T) {
	start := model.Today().AddDays(10)
	end := start.AddDays(2)

	mockClient := new(MockLeaveClient)
	mockClient.On("GetLeaveBalance", mock.Anything, "token-1", int64(7)).
		Return(&model.LeaveBalance{CasualLeave: 10}, nil)
	mockClient.On("GetLeaveRequests", mock.Anything, "token-1", int64(7)).
		Return([]model.LeaveRequest{}, nil)
	mockClient.On("NewDurationRequest", mock.Anything, "token-1", int64(7), mock.Anything).
		Return(&leave.ReusableRequest{}, nil)
	mockClient.On("CalculateDuration", mock.Anything, mock.Anything).
		Return(3, nil)
	mockClient.On("ApplyLeave", mock.Anything, "token-1", int64(7), mock.Anything).
		Return(&leave.ApplyLeaveResponse{LeaveID: 55}, nil)

	service := newTestService(t, mockClient)
	result, err := service.ApplyLeave(context.Background(), testSession, ApplyLeaveRequest{
		LeaveType: "CASUAL",
		StartDate: start,
		EndDate:   end,
		Comments:  "family function",
	})
	require.NoError(t, err)

	assert.Equal(t, 3, result.TotalDays)
	assert.False(t, result.Balance.Split)
	require.Len(t, result.Requests, 1)
	assert.Equal(t, int64(55), result.Requests[0].LeaveID)
	assert.Equal(t, "CASUAL", result.Requests[0].LeaveType)
	assert.Equal(t, start, result.Requests[0].StartDate)
	assert.Equal(t, end, result.Requests[0].EndDate)

	// One submission resolves the duration exactly once.
	mockClient.AssertNumberOfCalls(t, "NewDurationRequest", 1)
	mockClient.AssertNumberOfCalls(t, "CalculateDuration", 1)
}

func TestApplyLeaveFullyBorrowedReportsSplit(t *testing.T) {
	start := model.Today().AddDays(10)
	end := start.AddDays(1)

	mockClient := new(MockLeaveClient)
	mockClient.On("GetLeaveBalance", mock.Anything, "token-1", int64(7)).
		Return(&model.LeaveBalance{SickLeave: 0, EarnedLeave: 10}, nil)
	mockClient.On("GetLeaveRequests", mock.Anything, "token-1", int64(7)).
		Return([]model.LeaveRequest{}, nil)
	mockClient.On("NewDurationRequest", mock.Anything, "token-1", int64(7), mock.Anything).
		Return(&leave.ReusableRequest{}, nil)
	mockClient.On("CalculateDuration", mock.Anything, mock.Anything).
		Return(2, nil)
	mockClient.On("ApplyLeave", mock.Anything, "token-1", int64(7), mock.Anything).
		Return(&leave.ApplyLeaveResponse{LeaveID: 42}, nil)

	service := newTestService(t, mockClient)
	result, err := service.ApplyLeave(context.Background(), testSession, ApplyLeaveRequest{
		LeaveType:          "SICK",
		SecondaryLeaveType: "EARNED",
		StartDate:          start,
		EndDate:            end,
		Comments:           "away",
	})
	require.NoError(t, err)

	// The whole range went on the fallback type, the response must say so.
	assert.True(t, result.Balance.Split)
	require.Len(t, result.Requests, 1)
	assert.Equal(t, "EARNED", result.Requests[0].LeaveType)
	assert.Equal(t, 2, result.Requests[0].Days)
}

func TestApplyLeaveSplit(t *testing.T) {
	start := model.Today().AddDays(10)
	end := start.AddDays(4)

	mockClient := new(MockLeaveClient)
	mockClient.On("GetLeaveBalance", mock.Anything, "token-1", int64(7)).
		Return(&model.LeaveBalance{SickLeave: 3, EarnedLeave: 12}, nil)
	mockClient.On("GetLeaveRequests", mock.Anything, "token-1", int64(7)).
		Return([]model.LeaveRequest{}, nil)
	mockClient.On("NewDurationRequest", mock.Anything, "token-1", int64(7), mock.Anything).
		Return(&leave.ReusableRequest{}, nil)
	mockClient.On("CalculateDuration", mock.Anything, mock.Anything).
		Return(5, nil)
	mockClient.On("ApplyLeave", mock.Anything, "token-1", int64(7), mock.MatchedBy(func(d model.LeaveRequestDraft) bool {
		return d.LeaveType == model.SickLeave
	})).Return(&leave.ApplyLeaveResponse{LeaveID: 11}, nil)
	mockClient.On("ApplyLeave", mock.Anything, "token-1", int64(7), mock.MatchedBy(func(d model.LeaveRequestDraft) bool {
		return d.LeaveType == model.EarnedLeave
	})).Return(&leave.ApplyLeaveResponse{LeaveID: 12}, nil)

	service := newTestService(t, mockClient)
	result, err := service.ApplyLeave(context.Background(), testSession, ApplyLeaveRequest{
		LeaveType:          "SICK",
		SecondaryLeaveType: "EARNED",
		StartDate:          start,
		EndDate:            end,
		Comments:           "flu",
	})
	require.NoError(t, err)

	assert.Equal(t, 5, result.TotalDays)
	assert.True(t, result.Balance.Split)
	require.Len(t, result.Requests, 2)
	assert.Equal(t, int64(11), result.Requests[0].LeaveID)
	assert.Equal(t, 3, result.Requests[0].Days)
	assert.Equal(t, int64(12), result.Requests[1].LeaveID)
	assert.Equal(t, 2, result.Requests[1].Days)
}

func TestApplyLeaveValidation(t *testing.T) {
	tests := []struct {
		name string
		req  ApplyLeaveRequest
	}{
		{
			name: "unknown leave type",
			req: ApplyLeaveRequest{
				LeaveType: "SABBATICAL",
				StartDate: model.Today().AddDays(1),
				EndDate:   model.Today().AddDays(2),
			},
		},
		{
			name: "start date in the past",
			req: ApplyLeaveRequest{
				LeaveType: "SICK",
				StartDate: model.Today().AddDays(-1),
				EndDate:   model.Today().AddDays(2),
			},
		},
		{
			name: "unknown secondary leave type",
			req: ApplyLeaveRequest{
				LeaveType:          "SICK",
				SecondaryLeaveType: "SABBATICAL",
				StartDate:          model.Today().AddDays(1),
				EndDate:            model.Today().AddDays(2),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockClient := new(MockLeaveClient)
			mockClient.On("GetLeaveBalance", mock.Anything, "token-1", int64(7)).
				Return(&model.LeaveBalance{SickLeave: 10}, nil)
			mockClient.On("GetLeaveRequests", mock.Anything, "token-1", int64(7)).
				Return([]model.LeaveRequest{}, nil)

			service := newTestService(t, mockClient)
			_, err := service.ApplyLeave(context.Background(), testSession, tt.req)
			require.Error(t, err)
			assert.True(t, composer.IsValidation(err), "expected validation error, got %v", err)
			mockClient.AssertNotCalled(t, "ApplyLeave", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestApplyLeaveConflict(t *testing.T) {
	start := model.Today().AddDays(10)

	mockClient := new(MockLeaveClient)
	mockClient.On("GetLeaveBalance", mock.Anything, "token-1", int64(7)).
		Return(&model.LeaveBalance{EarnedLeave: 20}, nil)
	mockClient.On("GetLeaveRequests", mock.Anything, "token-1", int64(7)).
		Return([]model.LeaveRequest{
			{
				LeaveID:     3,
				LeaveType:   "EARNED",
				StartDate:   start,
				EndDate:     start.AddDays(4),
				LeaveStatus: model.StatusPending,
			},
		}, nil)
	mockClient.On("NewDurationRequest", mock.Anything, "token-1", int64(7), mock.Anything).
		Return(&leave.ReusableRequest{}, nil)
	mockClient.On("CalculateDuration", mock.Anything, mock.Anything).
		Return(4, nil)

	service := newTestService(t, mockClient)
	_, err := service.ApplyLeave(context.Background(), testSession, ApplyLeaveRequest{
		LeaveType: "EARNED",
		StartDate: start.AddDays(2),
		EndDate:   start.AddDays(6),
	})
	require.Error(t, err)
	assert.True(t, composer.IsConflict(err))
	mockClient.AssertNotCalled(t, "ApplyLeave", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestCalculateDuration(t *testing.T) {
	mockClient := new(MockLeaveClient)
	r := model.DateRange{Start: model.NewDate(2026, 10, 1), End: model.NewDate(2026, 10, 7)}
	mockClient.On("NewDurationRequest", mock.Anything, "token-1", int64(7), r).
		Return(&leave.ReusableRequest{}, nil)
	mockClient.On("CalculateDuration", mock.Anything, mock.Anything).
		Return(5, nil)

	service := newTestService(t, mockClient)
	days, err := service.CalculateDuration(context.Background(), testSession, r)
	require.NoError(t, err)
	assert.Equal(t, 5, days)
}

func TestCalculateDurationInvalidRange(t *testing.T) {
	service := newTestService(t, new(MockLeaveClient))
	_, err := service.CalculateDuration(context.Background(), testSession, model.DateRange{
		Start: model.NewDate(2026, 10, 7),
		End:   model.NewDate(2026, 10, 1),
	})
	require.Error(t, err)
	assert.True(t, composer.IsValidation(err))
}

func TestTeamLeaveRequestsRequiresManagingRole(t *testing.T) {
	mockClient := new(MockLeaveClient)
	service := newTestService(t, mockClient)

	_, err := service.TeamLeaveRequests(context.Background(), testSession)
	assert.ErrorIs(t, err, auth.ErrNoSession)
	mockClient.AssertNotCalled(t, "GetTeamLeaveRequests", mock.Anything, mock.Anything, mock.Anything)

	lead := auth.Session{UserID: 9, Role: model.RoleTeamLead, Token: "token-2"}
	mockClient.On("GetTeamLeaveRequests", mock.Anything, "token-2", int64(9)).
		Return([]model.LeaveRequest{}, nil)
	_, err = service.TeamLeaveRequests(context.Background(), lead)
	assert.NoError(t, err)
}

func TestCancelLeave(t *testing.T) {
	mockClient := new(MockLeaveClient)
	mockClient.On("CancelLeaveRequest", mock.Anything, "token-1", int64(7), int64(991)).
		Return(nil)

	service := newTestService(t, mockClient)
	assert.NoError(t, service.CancelLeave(context.Background(), testSession, 991))

	mockClient.ExpectedCalls = nil
	mockClient.On("CancelLeaveRequest", mock.Anything, "token-1", int64(7), int64(991)).
		Return(errors.New("not found"))
	assert.Error(t, service.CancelLeave(context.Background(), testSession, 991))
}

func (m *MockLeaveClient) GetLeaveBalance(ctx context.Context, token string, userID int64) (*model.LeaveBalance, error) {
	args := m.Called(ctx, token, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.LeaveBalance), args.Error(1)
}

func (m *MockLeaveClient) NewDurationRequest(ctx context.Context, token string, userID int64, r model.DateRange) (*leave.ReusableRequest, error) {
	args := m.Called(ctx, token, userID, r)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*leave.ReusableRequest), args.Error(1)
}

func (m *MockLeaveClient) CalculateDuration(ctx context.Context, req *leave.ReusableRequest) (int, error) {
	args := m.Called(ctx, req)
	return args.Int(0), args.Error(1)
}

func (m *MockLeaveClient) GetLeaveRequests(ctx context.Context, token string, userID int64) ([]model.LeaveRequest, error) {
	args := m.Called(ctx, token, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.LeaveRequest), args.Error(1)
}

func (m *MockLeaveClient) GetTeamLeaveRequests(ctx context.Context, token string, userID int64) ([]model.LeaveRequest, error) {
	args := m.Called(ctx, token, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.LeaveRequest), args.Error(1)
}

func (m *MockLeaveClient) ApplyLeave(ctx context.Context, token string, userID int64, draft model.LeaveRequestDraft) (*leave.ApplyLeaveResponse, error) {
	args := m.Called(ctx, token, userID, draft)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*leave.ApplyLeaveResponse), args.Error(1)
}

func (m *MockLeaveClient) CancelLeaveRequest(ctx context.Context, token string, userID int64, leaveID int64) error {
	args := m.Called(ctx, token, userID, leaveID)
	return args.Error(0)
}

func (m *MockLeaveClient) GetHolidayCalendar(ctx context.Context, token string, userID int64) ([]model.Holiday, error) {
	args := m.Called(ctx, token, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Holiday), args.Error(1)
}

func (m *MockLeaveClient) GetUserDetails(ctx context.Context, token string, userID int64) (*model.UserProfile, error) {
	args := m.Called(ctx, token, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.UserProfile), args.Error(1)
}

func (m *MockLeaveClient) GetAllUsers(ctx context.Context, token string, adminID int64) ([]model.UserProfile, error) {
	args := m.Called(ctx, token, adminID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.UserProfile), args.Error(1)
}

func (m *MockLeaveClient) GetAllLeaveRequests(ctx context.Context, token string, adminID int64) ([]model.LeaveRequest, error) {
	args := m.Called(ctx, token, adminID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.LeaveRequest), args.Error(1)
}

func (m *MockLeaveClient) ApproveLeave(ctx context.Context, token string, adminID int64, leaveID int64) (string, error) {
	args := m.Called(ctx, token, adminID, leaveID)
	return args.String(0), args.Error(1)
}

func (m *MockLeaveClient) RejectLeave(ctx context.Context, token string, adminID int64, leaveID int64) (string, error) {
	args := m.Called(ctx, token, adminID, leaveID)
	return args.String(0), args.Error(1)
}

func (m *MockLeaveClient) AddRole(ctx context.Context, token string, adminID int64, role model.RoleDefinition) (string, error) {
	args := m.Called(ctx, token, adminID, role)
	return args.String(0), args.Error(1)
}

func (m *MockLeaveClient) AddLeavePolicy(ctx context.Context, token string, adminID int64, policy model.LeavePolicy) (string, error) {
	args := m.Called(ctx, token, adminID, policy)
	return args.String(0), args.Error(1)
}

func (m *MockLeaveClient) AddCountryCalendar(ctx context.Context, token string, adminID int64, holiday model.Holiday) (string, error) {
	args := m.Called(ctx, token, adminID, holiday)
	return args.String(0), args.Error(1)
}
