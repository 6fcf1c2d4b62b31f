package leave

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/ioutil"
	"net/http"
	"time"

	"github.com/googleapis/gax-go/v2"
	log "github.com/sirupsen/logrus"

	"github.com/smartleave/leave-composer/internal/model"
)

const durationApiName = "CalculateDuration"

// NewDurationRequest builds the chargeable-day calculation request for the
// given date range. The request is reusable so CalculateDuration can retry it.
func (c *client) NewDurationRequest(ctx context.Context, token string, userID int64, r model.DateRange) (*ReusableRequest, error) {
	contextLogger := log.WithContext(ctx)
	contextLogger.Info("Building duration request for user: ", userID)

	req, err := c.newRequest(ctx, http.MethodPost, c.buildUserEndpoint("calculate-duration", userID), token, r)
	if err != nil {
		return nil, err
	}
	return &ReusableRequest{Request: req}, nil
}

// CalculateDuration asks the leave service for the chargeable day count of a
// date range. Holidays and weekends are excluded server side. Rate limited
// responses are retried with backoff until the retry budget expires.
func (c *client) CalculateDuration(ctx context.Context, req *ReusableRequest) (int, error) {
	var d time.Duration

	retryCtx, cancel, backOff := newRetry(ctx, c.RateLimitBackoff, c.RateLimitTimeout)
	defer cancel()

	for {
		if err := req.rewind(); err != nil {
			return 0, fmt.Errorf("failed to restore %s request body. cause: %v %w", durationApiName, err, nonRetryable)
		}

		res, err := c.calculateDuration(ctx, req.Request)
		if err != nil {
			if errors.Is(err, unauthorized) {
				return 0, err
			}

			if errors.Is(err, exceededRateLimit) {
				d = backOff.Pause()
			}

			if !errors.Is(err, nonRetryable) {
				if innerErr := gax.Sleep(retryCtx, d); innerErr != nil {
					return 0, fmt.Errorf("failed, retry limit expired: %v", err)
				}
				continue
			}
			return 0, err
		}
		return res, nil
	}
}

func (c *client) calculateDuration(ctx context.Context, req *http.Request) (int, error) {
	contextLogger := log.WithContext(ctx)

	res, err := c.Client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("failed to execute %s request. Cause %v, %w", durationApiName, err, nonRetryable)
	}

	defer func() {
		if err = res.Body.Close(); err != nil {
			contextLogger.WithError(err).Errorf("Error closing the ioReader. %v", err)
		}
	}()

	if err := getHTTPStatusCode(ctx, res, durationApiName); err != nil {
		return 0, err
	}

	body, err := ioutil.ReadAll(res.Body)
	if err != nil {
		contextLogger.WithError(err).Errorf("error reading leave API resp body (%s)", body)
		return 0, fmt.Errorf("error reading leave API resp body. cause: %v %w", err, nonRetryable)
	}

	var days int
	if err := json.Unmarshal(body, &days); err != nil {
		contextLogger.WithError(err).Errorf("there was an error un marshalling the duration resp. %v", err)
		return 0, fmt.Errorf("there was an error un marshalling the duration resp. cause: %v %w", err, nonRetryable)
	}

	if days < 0 {
		return 0, fmt.Errorf("leave service (%s) returned a negative day count %d %w", durationApiName, days, nonRetryable)
	}
	return days, nil
}
