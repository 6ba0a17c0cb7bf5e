package feeding

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/herdbook/internal/domain/models"
	"github.com/mamadbah2/herdbook/internal/recurrence"
	"github.com/mamadbah2/herdbook/pkg/clients/calculator"
)

// FallbackDelay is added to the reference instant when the remote
// calculation is unavailable.
const FallbackDelay = 24 * time.Hour

// Resolver computes next occurrences, preferring the remote calculator when one
// is configured and falling back to a non-authoritative estimate when it fails.
type Resolver struct {
	remote calculator.Client
	logger *zap.Logger
}

// NewResolver wires a resolver. A nil remote makes the local engine authoritative.
func NewResolver(remote calculator.Client, logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{remote: remote, logger: logger}
}

// Next resolves the next occurrence of rule at or after reference.
// Configuration errors are returned before any remote call is made.
func (r *Resolver) Next(ctx context.Context, rule recurrence.Rule, reference time.Time) (models.NextOccurrence, error) {
	if err := recurrence.Validate(rule); err != nil {
		return models.NextOccurrence{}, err
	}

	if r.remote == nil {
		next, err := recurrence.Next(rule, reference)
		if err != nil {
			return models.NextOccurrence{}, err
		}
		return models.NextOccurrence{Value: next, Authoritative: true}, nil
	}

	next, err := r.remote.CalculateNextFeedingDate(ctx, calculator.Request{
		Frequency:   string(rule.Frequency),
		FeedingTime: rule.FeedingTime.String(),
		DaysOfWeek:  rule.DayNames(),
	})
	if err != nil {
		fallback := reference.Add(FallbackDelay)
		r.logger.Warn("remote next feeding computation failed, using fallback",
			zap.Error(err),
			zap.String("frequency", string(rule.Frequency)),
			zap.Time("fallback", fallback))
		return models.NextOccurrence{Value: fallback, Authoritative: false}, nil
	}

	return models.NextOccurrence{Value: next.In(reference.Location()), Authoritative: true}, nil
}
