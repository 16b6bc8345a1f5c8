package tracker

import (
	"context"

	goerrors "github.com/goliatone/go-errors"
)

// ServiceOption configures the resource services
type ServiceOption func(*serviceBase)

// WithServiceLogger sets the logger
func WithServiceLogger(logger Logger) ServiceOption {
	return func(s *serviceBase) {
		if logger != nil {
			s.logger = logger
			s.activity.logger = logger
		}
	}
}

// WithServiceMetrics records policy denials in m
func WithServiceMetrics(m *Metrics) ServiceOption {
	return func(s *serviceBase) {
		s.metrics = m
	}
}

// WithActivitySink forwards service events to sink
func WithActivitySink(sink ActivitySink) ServiceOption {
	return func(s *serviceBase) {
		s.activity.sink = normalizeActivitySink(sink)
	}
}

type serviceBase struct {
	logger   Logger
	metrics  *Metrics
	activity activityRecorder
}

func newServiceBase(opts ...ServiceOption) serviceBase {
	s := serviceBase{
		logger: defLogger{},
		activity: activityRecorder{
			sink:   noopActivitySink{},
			logger: defLogger{},
		},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&s)
		}
	}
	return s
}

// guard checks the context and the caller before any work happens
func (s serviceBase) guard(ctx context.Context, caller Caller, operation string) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(ctx.Err(), goerrors.CategoryOperation, "context cancelled during "+operation)
	default:
	}

	if caller.IsZero() {
		return ErrUnauthenticated
	}
	return nil
}

func (s serviceBase) deny(ctx context.Context, caller Caller, resource, action, message string, objectID string) error {
	s.metrics.RecordDenial(resource, action)
	s.logger.Warn("access denied",
		"resource", resource,
		"action", action,
		"caller", caller.UserID,
		"role", caller.Role,
		"object_id", objectID,
	)
	s.activity.emit(ctx, ActivityEventAccessDenied, actorFromCaller(caller), resource, objectID, map[string]any{
		"action": action,
	})
	return AccessDeniedError(message, map[string]any{
		"resource": resource,
		"action":   action,
	})
}
