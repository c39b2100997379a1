package services

import (
	"context"

	"jobportal/internal/events"

	"go.uber.org/zap"
)

// Option configures optional collaborators of a service
type Option func(*serviceOptions)

type serviceOptions struct {
	events events.EventBus
}

// WithEventBus makes the service publish its lifecycle events to bus
func WithEventBus(bus events.EventBus) Option {
	return func(o *serviceOptions) {
		o.events = bus
	}
}

func applyOptions(opts []Option) serviceOptions {
	var o serviceOptions
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// publish queues an event. A full or stopped bus is logged and otherwise
// ignored; the operation that raised the event has already succeeded.
func publish(ctx context.Context, bus events.EventBus, logger *zap.Logger, event events.Event) {
	if bus == nil {
		return
	}
	if err := bus.PublishAsync(ctx, event); err != nil {
		logger.Warn("Failed to publish event",
			zap.String("event_type", event.GetEventType()),
			zap.Error(err),
		)
	}
}

// activityLog writes every lifecycle event to the log
func activityLog(logger *zap.Logger) events.EventHandler {
	return events.NewEventHandlerFunc("activity-log", func(_ context.Context, event events.Event) error {
		fields := []zap.Field{
			zap.String("event_id", event.GetEventID()),
			zap.String("event_type", event.GetEventType()),
			zap.String("user_id", event.GetUserID()),
			zap.Time("at", event.GetTimestamp()),
		}

		switch e := event.(type) {
		case *events.JobPostedEvent:
			fields = append(fields, zap.Int64("job_id", e.JobID), zap.String("employer_id", e.EmployerID))
		case *events.JobDeletedEvent:
			fields = append(fields, zap.Int64("job_id", e.JobID))
		case *events.ApplicationEvent:
			fields = append(fields, zap.Int64("application_id", e.ApplicationID), zap.Int64("job_id", e.JobID))
			if e.To != "" {
				fields = append(fields, zap.String("from", e.From), zap.String("to", e.To))
			}
		}

		logger.Info("Activity", fields...)
		return nil
	})
}
