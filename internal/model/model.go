package model

import (
	"fmt"
	"strings"
	"time"
)

// LeaveType is one of the leave categories recognised by the leave management API.
type LeaveType string

const (
	SickLeave      LeaveType = "SICK"
	EarnedLeave    LeaveType = "EARNED"
	CasualLeave    LeaveType = "CASUAL"
	PaternityLeave LeaveType = "PATERNITY"
	MaternityLeave LeaveType = "MATERNITY"
)

// LeaveTypes lists every recognised leave category.
var LeaveTypes = []LeaveType{SickLeave, EarnedLeave, CasualLeave, PaternityLeave, MaternityLeave}

// ParseLeaveType resolves a leave type code. The web client historically sent
// codes suffixed with _LEAVE (for ex: SICK_LEAVE) so both spellings are accepted.
func ParseLeaveType(s string) (LeaveType, error) {
	code := strings.TrimSuffix(strings.ToUpper(strings.TrimSpace(s)), "_LEAVE")
	for _, t := range LeaveTypes {
		if string(t) == code {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown leave type: %v", s)
}

// BalanceKey returns the key under which the remote balance API reports this
// leave type, for ex: sickLeave for SICK.
func (t LeaveType) BalanceKey() string {
	return strings.ToLower(string(t)) + "Leave"
}

func (t LeaveType) String() string {
	return string(t)
}

// Role is a user role as agreed with the identity service. TEAM_LEADER was used
// interchangeably with TEAM_LEAD by older clients and is normalised on parse.
type Role string

const (
	RoleAdmin       Role = "ADMIN"
	RoleHRManager   Role = "HR_MANAGER"
	RoleTeamManager Role = "TEAM_MANAGER"
	RoleTeamLead    Role = "TEAM_LEAD"
	RoleTeamMember  Role = "TEAM_MEMBER"
)

func ParseRole(s string) (Role, error) {
	code := strings.ToUpper(strings.TrimSpace(s))
	if code == "TEAM_LEADER" {
		code = string(RoleTeamLead)
	}
	switch Role(code) {
	case RoleAdmin, RoleHRManager, RoleTeamManager, RoleTeamLead, RoleTeamMember:
		return Role(code), nil
	}
	return "", fmt.Errorf("unknown role: %v", s)
}

// Manager reports whether the role may view and action requests raised by others.
func (r Role) Manager() bool {
	return r == RoleAdmin || r == RoleHRManager || r == RoleTeamManager
}

const dateLayout = "2006-01-02"

// Date is a calendar date without a time component. The zero value is "unset".
type Date struct {
	t time.Time
}

func NewDate(year int, month time.Month, day int) Date {
	return Date{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// Today returns the current calendar date.
func Today() Date {
	now := time.Now().UTC()
	return NewDate(now.Year(), now.Month(), now.Day())
}

func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD: %v", s, err)
	}
	return Date{t: t}, nil
}

func (d Date) IsZero() bool       { return d.t.IsZero() }
func (d Date) Before(o Date) bool { return d.t.Before(o.t) }
func (d Date) After(o Date) bool  { return d.t.After(o.t) }
func (d Date) Equal(o Date) bool  { return d.t.Equal(o.t) }

// AddDays returns the date n calendar days after d. n may be negative.
func (d Date) AddDays(n int) Date {
	return Date{t: d.t.AddDate(0, 0, n)}
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.t.Format(dateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

func (d *Date) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		*d = Date{}
		return nil
	}
	// Older API responses carry a full timestamp, keep the date part only.
	if len(s) > len(dateLayout) {
		s = s[:len(dateLayout)]
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// DateRange is an inclusive calendar date interval.
type DateRange struct {
	Start Date `json:"startDate"`
	End   Date `json:"endDate"`
}

// Valid reports whether both dates are set and End is not before Start.
func (r DateRange) Valid() bool {
	return !r.Start.IsZero() && !r.End.IsZero() && !r.End.Before(r.Start)
}

// Overlaps reports whether the two ranges intersect, inclusive on both ends.
func (r DateRange) Overlaps(o DateRange) bool {
	return !r.Start.After(o.End) && !r.End.Before(o.Start)
}

func (r DateRange) String() string {
	return r.Start.String() + ".." + r.End.String()
}

// LeaveBalance holds the remaining day counts per leave type for one user, as
// reported by the balance API.
type LeaveBalance struct {
	SickLeave      float64 `json:"sickLeave"`
	EarnedLeave    float64 `json:"earnedLeave"`
	CasualLeave    float64 `json:"casualLeave"`
	PaternityLeave float64 `json:"paternityLeave"`
	MaternityLeave float64 `json:"maternityLeave"`
	LossOfPay      float64 `json:"lossOfPay"`
	TotalLeaves    float64 `json:"totalLeaves"`
}

// Remaining returns the balance for the given leave type, 0 for an unknown type.
func (b LeaveBalance) Remaining(t LeaveType) float64 {
	switch t {
	case SickLeave:
		return b.SickLeave
	case EarnedLeave:
		return b.EarnedLeave
	case CasualLeave:
		return b.CasualLeave
	case PaternityLeave:
		return b.PaternityLeave
	case MaternityLeave:
		return b.MaternityLeave
	}
	return 0
}

// AllLapsed reports whether every leave type balance is exhausted.
func (b LeaveBalance) AllLapsed() bool {
	for _, t := range LeaveTypes {
		if b.Remaining(t) > 0 {
			return false
		}
	}
	return true
}

// LeaveStatus is the lifecycle state of a persisted leave request.
type LeaveStatus string

const (
	StatusPending   LeaveStatus = "PENDING"
	StatusApproved  LeaveStatus = "APPROVED"
	StatusRejected  LeaveStatus = "REJECTED"
	StatusCancelled LeaveStatus = "CANCELLED"
)

// Blocking reports whether a request in this state blocks new overlapping requests.
func (s LeaveStatus) Blocking() bool {
	return s != StatusCancelled && s != StatusRejected
}

// LeaveRequest is an existing leave request as returned by the leave API.
type LeaveRequest struct {
	LeaveID     int64       `json:"leaveId"`
	LeaveType   string      `json:"leaveType"`
	StartDate   Date        `json:"startDate"`
	EndDate     Date        `json:"endDate"`
	LeaveStatus LeaveStatus `json:"leaveStatus"`
	Approver    string      `json:"approver"`
	Comments    string      `json:"comments"`
	UserRole    string      `json:"userRole"`
}

// Range returns the request's date interval.
func (r LeaveRequest) Range() DateRange {
	return DateRange{Start: r.StartDate, End: r.EndDate}
}

// LeaveRequestDraft is the unit submitted to the leave application endpoint.
type LeaveRequestDraft struct {
	LeaveType LeaveType `json:"leaveType"`
	StartDate Date      `json:"startDate"`
	EndDate   Date      `json:"endDate"`
	Comments  string    `json:"comments"`
}

// Holiday is one country calendar entry.
type Holiday struct {
	CountryName  string `json:"countryName"`
	CalendarYear int    `json:"calendarYear"`
	HolidayName  string `json:"holidayName"`
	HolidayDate  Date   `json:"holidayDate"`
	HolidayDay   string `json:"holidayDay"`
}

// UserProfile is the user detail record served by the leave API.
type UserProfile struct {
	UserID      int64  `json:"userId"`
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	Email       string `json:"email"`
	UserName    string `json:"userName"`
	PhoneNumber string `json:"phoneNumber"`
	Address     string `json:"address"`
	CountryName string `json:"countryName"`
	Gender      string `json:"gender"`
	UserRole    string `json:"userRole"`
}

// RoleDefinition is the admin payload for registering a new role.
type RoleDefinition struct {
	RoleName    string `json:"roleName"`
	Description string `json:"description"`
}

// LeavePolicy is the per-role leave entitlement set by an admin.
type LeavePolicy struct {
	Role           string  `json:"role"`
	SickLeave      float64 `json:"sickLeave"`
	EarnedLeave    float64 `json:"earnedLeave"`
	CasualLeave    float64 `json:"casualLeave"`
	PaternityLeave float64 `json:"paternityLeave"`
	MaternityLeave float64 `json:"maternityLeave"`
	LossOfPay      float64 `json:"lossOfPay"`
	TotalLeaves    float64 `json:"totalLeaves"`
}
