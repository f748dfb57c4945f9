package leads

import (
	"context"

	"lead-hunter/internal/common/logger"
	"lead-hunter/internal/common/metrics"
	"lead-hunter/internal/models"
)

// Store is the system of record.
type Store interface {
	Insert(ctx context.Context, lead *models.Lead) error
}

// Mirror receives a copy of every lead the primary store accepted.
type Mirror interface {
	Name() string
	Mirror(ctx context.Context, lead *models.Lead) error
}

// Fanout writes to the primary store and then to each mirror. Only the
// primary decides the outcome; mirror failures are logged and counted.
type Fanout struct {
	primary Store
	mirrors []Mirror
	log     logger.Logger
}

func NewFanout(primary Store, log logger.Logger, mirrors ...Mirror) *Fanout {
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &Fanout{primary: primary, mirrors: mirrors, log: log.Named("lead-fanout")}
}

func (f *Fanout) Insert(ctx context.Context, lead *models.Lead) error {
	if err := f.primary.Insert(ctx, lead); err != nil {
		return err
	}

	for _, m := range f.mirrors {
		if err := m.Mirror(ctx, lead); err != nil {
			metrics.MirrorFailures.WithLabelValues(m.Name()).Inc()
			f.log.Warn("lead mirror failed", map[string]interface{}{
				"mirror": m.Name(),
				"leadId": lead.ID,
				"error":  err.Error(),
			})
		}
	}
	return nil
}
