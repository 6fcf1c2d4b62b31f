// Package composer turns a user's leave selection into one or two validated
// leave request submissions, splitting across a fallback leave type when the
// primary balance cannot cover the requested duration.
package composer

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	log "github.com/sirupsen/logrus"

	"github.com/smartleave/leave-composer/internal/auth"
	"github.com/smartleave/leave-composer/internal/leave"
	"github.com/smartleave/leave-composer/internal/model"
)

const (
	primaryCommentSuffix  = " (Primary)"
	fallbackCommentSuffix = " (Fallback)"
)

// Composer holds the draft state of one leave application form for one
// authenticated user. Setters may be called from UI-driven handlers in any
// order; Submit runs the full validation and submission sequence.
type Composer struct {
	sess   auth.Session
	client leave.ClientInterface

	mu           sync.Mutex
	leaveType    model.LeaveType
	secondary    model.LeaveType
	dates        model.DateRange
	comments     string
	duration     *int
	calculating  bool
	balance      model.LeaveBalance
	balanceKnown bool
	existing     []model.LeaveRequest

	durationSeq uint64 // bumped on every date edit, stale fetches are dropped
	submitting  int32  // submit in-flight guard
}

// Leg is one persisted part of a submission.
type Leg struct {
	LeaveType model.LeaveType
	Days      int
	Range     model.DateRange
	LeaveID   int64
}

// Result summarises a successful submission.
type Result struct {
	TotalDays int
	Primary   *Leg
	Fallback  *Leg
}

func New(sess auth.Session, client leave.ClientInterface) *Composer {
	return &Composer{
		sess:   sess,
		client: client,
	}
}

func (c *Composer) SetLeaveType(t model.LeaveType) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.leaveType = t
}

func (c *Composer) SetSecondaryLeaveType(t model.LeaveType) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.secondary = t
}

func (c *Composer) SetComments(s string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.comments = s
}

// SetDates updates the requested range and kicks off an asynchronous duration
// recalculation. Any earlier in-flight calculation is superseded and its
// result dropped when it lands.
func (c *Composer) SetDates(ctx context.Context, start, end model.Date) {
	r := model.DateRange{Start: start, End: end}

	c.mu.Lock()
	c.dates = r
	c.duration = nil
	seq := atomic.AddUint64(&c.durationSeq, 1)
	c.calculating = r.Valid()
	c.mu.Unlock()

	if !r.Valid() {
		return
	}
	go c.fetchDuration(ctx, seq, r)
}

// StageDates records the requested range without starting the reactive
// recalculation. Callers that resolve the duration themselves in the same
// request cycle pair this with EnsureDuration so only one calculation runs.
func (c *Composer) StageDates(start, end model.Date) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.dates = model.DateRange{Start: start, End: end}
	c.duration = nil
	atomic.AddUint64(&c.durationSeq, 1)
	c.calculating = false
}

// EnsureDuration resolves the duration synchronously when it is not already
// known. Used by callers that submit in the same request cycle as the date
// edit and cannot wait on the reactive path.
func (c *Composer) EnsureDuration(ctx context.Context) error {
	c.mu.Lock()
	if c.duration != nil {
		c.mu.Unlock()
		return nil
	}
	r := c.dates
	seq := atomic.AddUint64(&c.durationSeq, 1)
	c.calculating = r.Valid()
	c.mu.Unlock()

	if !r.Valid() {
		return &ValidationError{Reason: "a valid date range is required before the duration can be calculated"}
	}
	return c.fetchDuration(ctx, seq, r)
}

func (c *Composer) fetchDuration(ctx context.Context, seq uint64, r model.DateRange) error {
	ctxLogger := log.WithContext(ctx)

	req, err := c.client.NewDurationRequest(ctx, c.sess.Token, c.sess.UserID, r)
	var days int
	if err == nil {
		days, err = c.client.CalculateDuration(ctx, req)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if seq != atomic.LoadUint64(&c.durationSeq) {
		// A newer date edit superseded this request.
		return nil
	}
	c.calculating = false
	if err != nil {
		ctxLogger.WithError(err).Errorf("Failed to calculate leave duration for %v", r)
		return err
	}
	c.duration = &days
	return nil
}

// Refresh loads the balance and the existing requests concurrently. Either
// fetch failing is tolerated: a missing balance reads as zero and missing
// requests as none, matching how the form degrades in the web client.
func (c *Composer) Refresh(ctx context.Context) {
	ctxLogger := log.WithContext(ctx)
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		balance, err := c.client.GetLeaveBalance(ctx, c.sess.Token, c.sess.UserID)
		if err != nil {
			ctxLogger.WithError(err).Error("Failed to fetch leave balance, treating balances as zero")
			return
		}
		c.mu.Lock()
		c.balance = *balance
		c.balanceKnown = true
		c.mu.Unlock()
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		existing, err := c.client.GetLeaveRequests(ctx, c.sess.Token, c.sess.UserID)
		if err != nil {
			ctxLogger.WithError(err).Error("Failed to fetch existing leave requests, overlap check degraded")
			return
		}
		c.mu.Lock()
		c.existing = existing
		c.mu.Unlock()
	}()

	wg.Wait()
}

// Duration returns the resolved chargeable day count, false while unknown.
func (c *Composer) Duration() (int, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.duration == nil {
		return 0, false
	}
	return *c.duration, true
}

// Calculating reports whether a duration request is in flight.
func (c *Composer) Calculating() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calculating
}

// PrimaryAvailable returns the balance left on the selected primary type.
func (c *Composer) PrimaryAvailable() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.balance.Remaining(c.leaveType)
}

// InsufficientBalance reports whether the primary balance cannot cover the
// resolved duration. False while the duration is unknown.
func (c *Composer) InsufficientBalance() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.duration != nil && c.balance.Remaining(c.leaveType) < float64(*c.duration)
}

// AllLapsed reports whether the user has exhausted every leave type. The form
// stays usable, the flag only drives an informational banner.
func (c *Composer) AllLapsed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.balanceKnown && c.balance.AllLapsed()
}

// Submit validates the draft and sends one submission, or two when the
// primary balance is insufficient. A second call while a submission is
// pending returns ErrSubmitInFlight without touching the network.
func (c *Composer) Submit(ctx context.Context) (*Result, error) {
	if !atomic.CompareAndSwapInt32(&c.submitting, 0, 1) {
		return nil, ErrSubmitInFlight
	}
	defer atomic.StoreInt32(&c.submitting, 0)

	c.mu.Lock()
	sess := c.sess
	leaveType := c.leaveType
	secondary := c.secondary
	dates := c.dates
	comments := c.comments
	duration := c.duration
	balance := c.balance
	existing := append([]model.LeaveRequest(nil), c.existing...)
	c.mu.Unlock()

	if !sess.Valid() {
		return nil, auth.ErrNoSession
	}
	if leaveType == "" {
		return nil, &ValidationError{Reason: "a leave type is required"}
	}
	if dates.Start.IsZero() || dates.End.IsZero() {
		return nil, &ValidationError{Reason: "both start and end dates are required"}
	}
	if !dates.Valid() {
		return nil, &ValidationError{Reason: "end date must not be before start date"}
	}
	if duration == nil {
		return nil, &ValidationError{Reason: "the leave duration has not been calculated yet"}
	}

	for _, req := range existing {
		if req.LeaveStatus.Blocking() && dates.Overlaps(req.Range()) {
			return nil, &ConflictError{Existing: req.Range()}
		}
	}

	total := *duration
	available := balance.Remaining(leaveType)

	if float64(total) <= available {
		return c.submitSingle(ctx, leaveType, dates, comments, total, false)
	}

	if secondary == "" {
		return nil, &ValidationError{Reason: "the " + leaveType.String() + " balance is insufficient, choose a secondary leave type"}
	}
	if secondary == leaveType {
		return nil, &ValidationError{Reason: "the secondary leave type must differ from the primary"}
	}

	primaryDays := int(available)
	if primaryDays < 0 {
		primaryDays = 0
	}
	if primaryDays > total {
		primaryDays = total
	}

	if primaryDays == 0 {
		// Nothing left on the primary type: the whole range goes on the
		// fallback rather than submitting an empty primary draft.
		return c.submitSingle(ctx, secondary, dates, comments+fallbackCommentSuffix, total, true)
	}

	return c.submitSplit(ctx, leaveType, secondary, dates, comments, total, primaryDays)
}

// submitSingle sends the whole range as one draft. The fallback flag marks a
// submission that borrowed entirely from the secondary type, so the result
// reports it as the fallback leg rather than a primary one.
func (c *Composer) submitSingle(ctx context.Context, t model.LeaveType, dates model.DateRange, comments string, total int, fallback bool) (*Result, error) {
	draft := model.LeaveRequestDraft{
		LeaveType: t,
		StartDate: dates.Start,
		EndDate:   dates.End,
		Comments:  comments,
	}

	resp, err := c.client.ApplyLeave(ctx, c.sess.Token, c.sess.UserID, draft)
	if err != nil {
		return nil, err
	}

	leg := &Leg{LeaveType: t, Days: total, Range: dates, LeaveID: resp.LeaveID}
	result := &Result{TotalDays: total}
	if fallback {
		result.Fallback = leg
	} else {
		result.Primary = leg
	}
	c.completeSubmit(result)
	return result, nil
}

func (c *Composer) submitSplit(ctx context.Context, primary, secondary model.LeaveType, dates model.DateRange, comments string, total, primaryDays int) (*Result, error) {
	ctxLogger := log.WithContext(ctx)

	midDate := dates.Start.AddDays(primaryDays - 1)
	splitStart := midDate.AddDays(1)
	fallbackDays := total - primaryDays

	primaryDraft := model.LeaveRequestDraft{
		LeaveType: primary,
		StartDate: dates.Start,
		EndDate:   midDate,
		Comments:  comments + primaryCommentSuffix,
	}
	fallbackDraft := model.LeaveRequestDraft{
		LeaveType: secondary,
		StartDate: splitStart,
		EndDate:   dates.End,
		Comments:  comments + fallbackCommentSuffix,
	}

	primaryResp, err := c.client.ApplyLeave(ctx, c.sess.Token, c.sess.UserID, primaryDraft)
	if err != nil {
		return nil, err
	}

	fallbackResp, err := c.client.ApplyLeave(ctx, c.sess.Token, c.sess.UserID, fallbackDraft)
	if err != nil {
		// Compensate so the user is not left with half an application. When
		// the service did not return the created record the primary cannot be
		// cancelled automatically and the user must review their requests.
		if primaryResp.LeaveID == 0 {
			ctxLogger.Error("Fallback submission failed and the primary leg cannot be cancelled automatically")
			return nil, fmt.Errorf("the %v leg failed after the %v leg was applied, please review your leave requests: %w",
				secondary, primary, err)
		}
		if cancelErr := c.client.CancelLeaveRequest(ctx, c.sess.Token, c.sess.UserID, primaryResp.LeaveID); cancelErr != nil {
			ctxLogger.WithError(cancelErr).Errorf("Failed to cancel primary leg %d after fallback failure", primaryResp.LeaveID)
			return nil, fmt.Errorf("the %v leg failed and cancelling the %v leg also failed, please review your leave requests: %w",
				secondary, primary, err)
		}
		return nil, fmt.Errorf("the %v leg failed, the %v leg was cancelled: %w", secondary, primary, err)
	}

	result := &Result{
		TotalDays: total,
		Primary: &Leg{
			LeaveType: primary,
			Days:      primaryDays,
			Range:     model.DateRange{Start: dates.Start, End: midDate},
			LeaveID:   primaryResp.LeaveID,
		},
		Fallback: &Leg{
			LeaveType: secondary,
			Days:      fallbackDays,
			Range:     model.DateRange{Start: splitStart, End: dates.End},
			LeaveID:   fallbackResp.LeaveID,
		},
	}
	c.completeSubmit(result)
	return result, nil
}

// completeSubmit clears the form, decrements the local balance and records
// the new requests so an immediate resubmission overlap-checks against them.
// The remote balance is refetched on the next Refresh.
func (c *Composer) completeSubmit(result *Result) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, leg := range []*Leg{result.Primary, result.Fallback} {
		if leg == nil {
			continue
		}
		c.applyLegLocked(leg)
	}

	c.leaveType = ""
	c.secondary = ""
	c.dates = model.DateRange{}
	c.comments = ""
	c.duration = nil
	atomic.AddUint64(&c.durationSeq, 1)
}

func (c *Composer) applyLegLocked(leg *Leg) {
	remaining := c.balance.Remaining(leg.LeaveType) - float64(leg.Days)
	if remaining < 0 {
		remaining = 0
	}
	switch leg.LeaveType {
	case model.SickLeave:
		c.balance.SickLeave = remaining
	case model.EarnedLeave:
		c.balance.EarnedLeave = remaining
	case model.CasualLeave:
		c.balance.CasualLeave = remaining
	case model.PaternityLeave:
		c.balance.PaternityLeave = remaining
	case model.MaternityLeave:
		c.balance.MaternityLeave = remaining
	}

	c.existing = append(c.existing, model.LeaveRequest{
		LeaveID:     leg.LeaveID,
		LeaveType:   leg.LeaveType.String(),
		StartDate:   leg.Range.Start,
		EndDate:     leg.Range.End,
		LeaveStatus: model.StatusPending,
	})
}
