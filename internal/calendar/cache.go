// Package calendar caches each user's holiday calendar so date range edits do
// not hit the leave service on every keystroke. Entries are refreshed on a
// cron schedule since the calendar changes at most a few times a year.
package calendar

import (
	"context"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"

	"github.com/smartleave/leave-composer/internal/auth"
	"github.com/smartleave/leave-composer/internal/model"
)

// HolidayFetcher is the slice of the leave API client the cache needs.
type HolidayFetcher interface {
	GetHolidayCalendar(ctx context.Context, token string, userID int64) ([]model.Holiday, error)
}

type entry struct {
	sess      auth.Session
	holidays  []model.Holiday
	fetchedAt time.Time
}

// Cache is a per-user holiday calendar cache. Concurrent refreshes for the
// same user are resolved latest-write-wins, a stale fetch never replaces a
// fresher one.
type Cache struct {
	client HolidayFetcher
	cron   *cron.Cron

	mu      sync.RWMutex
	entries map[int64]*entry
}

// NewCache builds the cache and schedules the periodic refresh. An empty
// schedule disables the background refresh, entries then only update on demand.
func NewCache(client HolidayFetcher, schedule string) (*Cache, error) {
	c := &Cache{
		client:  client,
		entries: make(map[int64]*entry),
	}

	if schedule != "" {
		c.cron = cron.New()
		if _, err := c.cron.AddFunc(schedule, c.refreshAll); err != nil {
			return nil, err
		}
		c.cron.Start()
	}
	return c, nil
}

// Stop halts the background refresh. Entries stay readable.
func (c *Cache) Stop() {
	if c.cron != nil {
		c.cron.Stop()
	}
}

// Holidays returns the cached calendar for the session's user, fetching it on
// first use.
func (c *Cache) Holidays(ctx context.Context, sess auth.Session) ([]model.Holiday, error) {
	c.mu.RLock()
	e, ok := c.entries[sess.UserID]
	c.mu.RUnlock()
	if ok {
		return e.holidays, nil
	}
	return c.Refresh(ctx, sess)
}

// Refresh fetches the calendar and stores it, tracking the session so the
// scheduled refresh can renew the entry later.
func (c *Cache) Refresh(ctx context.Context, sess auth.Session) ([]model.Holiday, error) {
	holidays, err := c.client.GetHolidayCalendar(ctx, sess.Token, sess.UserID)
	if err != nil {
		return nil, err
	}
	fetched := time.Now()

	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.entries[sess.UserID]; ok && e.fetchedAt.After(fetched) {
		// A concurrent refresh stored a fresher calendar already.
		return e.holidays, nil
	}
	c.entries[sess.UserID] = &entry{sess: sess, holidays: holidays, fetchedAt: fetched}
	return holidays, nil
}

// IsHoliday reports whether the given date is a holiday on the user's cached
// calendar. Unknown users read as no holidays.
func (c *Cache) IsHoliday(userID int64, d model.Date) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[userID]
	if !ok {
		return false
	}
	for _, h := range e.holidays {
		if h.HolidayDate.Equal(d) {
			return true
		}
	}
	return false
}

func (c *Cache) refreshAll() {
	c.mu.RLock()
	sessions := make([]auth.Session, 0, len(c.entries))
	for _, e := range c.entries {
		sessions = append(sessions, e.sess)
	}
	c.mu.RUnlock()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	for _, sess := range sessions {
		if _, err := c.Refresh(ctx, sess); err != nil {
			log.WithContext(ctx).WithError(err).Errorf("Failed to refresh holiday calendar for user %d", sess.UserID)
		}
	}
}
