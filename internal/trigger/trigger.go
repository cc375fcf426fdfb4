// Package trigger implements the pre-token-generation hook that stamps the
// caller's company ids onto issued tokens.
package trigger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/terraincognita07/kgjournal/internal/logging"
	"github.com/terraincognita07/kgjournal/internal/models"
)

const (
	SetCompanyIDName = "setCompanyId"
	DefaultTimeout   = 3 * time.Second
)

var (
	ErrTriggerTimeout = errors.New("trigger timed out")
	ErrTriggerFailed  = errors.New("trigger failed")
)

type Event = events.CognitoEventUserPoolsPreTokenGen

// ClaimMapper derives the claims to add or override from the user's
// attributes.
type ClaimMapper func(ctx context.Context, attributes map[string]string) (map[string]string, error)

type HandlerFunc func(ctx context.Context, event Event) (Event, error)

// CopyAttributes copies every named attribute with a non-empty value to a
// claim of the same name.
func CopyAttributes(logger *slog.Logger, names ...string) ClaimMapper {
	logger = logging.OrDiscard(logger)
	return func(ctx context.Context, attributes map[string]string) (map[string]string, error) {
		claims := make(map[string]string, len(names))
		for _, name := range names {
			value := attributes[name]
			if value == "" {
				logger.DebugContext(ctx, "attribute not set, claim left unchanged", "attribute", name)
				continue
			}
			claims[name] = value
		}
		return claims, nil
	}
}

// Handler wraps a mapper as a pre-token-generation handler. Claims already
// present in the response are kept unless the mapper overrides them.
func Handler(mapper ClaimMapper) HandlerFunc {
	return func(ctx context.Context, event Event) (Event, error) {
		claims, err := mapper(ctx, event.Request.UserAttributes)
		if err != nil {
			return event, fmt.Errorf("%w: %v", ErrTriggerFailed, err)
		}

		details := &event.Response.ClaimsOverrideDetails
		if len(claims) > 0 && details.ClaimsToAddOrOverride == nil {
			details.ClaimsToAddOrOverride = make(map[string]string, len(claims))
		}
		for name, value := range claims {
			details.ClaimsToAddOrOverride[name] = value
		}
		return event, nil
	}
}

// SetCompanyID is the deployed trigger.
func SetCompanyID(logger *slog.Logger) HandlerFunc {
	logger = logging.OrDiscard(logger)
	handler := Handler(CopyAttributes(logger, models.AttributeOwnerID, models.AttributeCustomerID))
	return func(ctx context.Context, event Event) (Event, error) {
		result, err := handler(ctx, event)
		if err != nil {
			logger.ErrorContext(ctx, "set company id failed", "user", event.UserName, "error", err)
			return result, err
		}
		logger.InfoContext(ctx, "set company id",
			"user", event.UserName,
			"trigger_source", event.TriggerSource,
			"claims", len(result.Response.ClaimsOverrideDetails.ClaimsToAddOrOverride),
		)
		return result, nil
	}
}

// Invoke runs handler once under timeout. The handler keeps running in the
// background after a timeout but its result is discarded.
func Invoke(ctx context.Context, timeout time.Duration, handler HandlerFunc, event Event) (Event, error) {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	invokeCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	type outcome struct {
		event Event
		err   error
	}
	done := make(chan outcome, 1)
	go func() {
		result, err := handler(invokeCtx, event)
		done <- outcome{event: result, err: err}
	}()

	select {
	case result := <-done:
		if result.err != nil {
			if errors.Is(result.err, context.DeadlineExceeded) {
				return event, ErrTriggerTimeout
			}
			return event, result.err
		}
		return result.event, nil
	case <-invokeCtx.Done():
		if errors.Is(invokeCtx.Err(), context.DeadlineExceeded) {
			return event, ErrTriggerTimeout
		}
		return event, invokeCtx.Err()
	}
}

// NewEvent builds the event passed to the trigger at sign-in.
func NewEvent(userPoolID string, userName string, attributes map[string]string, groups []string) Event {
	event := Event{}
	event.Version = "1"
	event.TriggerSource = "TokenGeneration_Authentication"
	event.UserPoolID = userPoolID
	event.UserName = userName
	event.Request.UserAttributes = attributes
	event.Request.GroupConfiguration.GroupsToOverride = append([]string(nil), groups...)
	return event
}

// ApplyOverrides returns claims with the trigger's response applied, and the
// groups the token should carry.
func ApplyOverrides(claims map[string]any, groups []string, event Event) (map[string]any, []string) {
	details := event.Response.ClaimsOverrideDetails

	result := make(map[string]any, len(claims)+len(details.ClaimsToAddOrOverride))
	for name, value := range claims {
		result[name] = value
	}
	for name, value := range details.ClaimsToAddOrOverride {
		result[name] = value
	}
	for _, name := range details.ClaimsToSuppress {
		delete(result, name)
	}

	if details.GroupOverrideDetails.GroupsToOverride != nil {
		groups = append([]string(nil), details.GroupOverrideDetails.GroupsToOverride...)
	}
	return result, groups
}
