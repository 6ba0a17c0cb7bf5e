package commands

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/herdbook/internal/domain/models"
	"github.com/mamadbah2/herdbook/internal/repository"
	"github.com/mamadbah2/herdbook/internal/service/feeding"
)

// ErrInvalidArguments indicates the command payload could not be parsed.
var ErrInvalidArguments = errors.New("invalid command arguments")

// ErrUnknownSender indicates no profile is registered for the sender's phone number.
var ErrUnknownSender = errors.New("unknown sender")

const (
	timeFormat = "Mon 02 Jan 15:04"

	// HelpMessage lists the supported staff commands.
	HelpMessage = "Supported commands:\n" +
		"/fed <schedule-id> [kg] records a feeding against a schedule\n" +
		"/next lists upcoming and overdue feedings"

	// UsageFed explains the /fed syntax.
	UsageFed = "Usage: /fed <schedule-id> [kg], e.g. /fed 3f2a 2.5"
)

// FeedingService is the subset of the feeding service used by staff commands.
type FeedingService interface {
	GetSchedule(ctx context.Context, userID, id string) (models.FeedingSchedule, error)
	RecordFeeding(ctx context.Context, userID string, in models.FeedingInput) (feeding.RecordResult, error)
	DueFeedings(ctx context.Context, userID string) (models.DueFeedings, error)
}

// Dispatcher executes parsed commands on behalf of the sending user.
type Dispatcher interface {
	HandleCommand(ctx context.Context, cmd models.Command, sender string) (string, error)
}

// Service implements the Dispatcher interface.
type Service struct {
	feeding  FeedingService
	profiles repository.ProfileRepository
	loc      *time.Location
	logger   *zap.Logger
}

// NewService constructs a command dispatcher. Times in replies are rendered in loc.
func NewService(feedingSvc FeedingService, profiles repository.ProfileRepository, loc *time.Location, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Service{
		feeding:  feedingSvc,
		profiles: profiles,
		loc:      loc,
		logger:   logger,
	}
}

// HandleCommand resolves the sender to a user and runs the command, returning
// the reply text.
func (s *Service) HandleCommand(ctx context.Context, cmd models.Command, sender string) (string, error) {
	s.logger.Debug("dispatching command", zap.String("command", string(cmd.Type)), zap.String("sender", sender), zap.Strings("args", cmd.Args))

	switch cmd.Type {
	case models.CommandFed, models.CommandNext:
	default:
		return HelpMessage, nil
	}

	profile, err := s.resolveSender(ctx, sender)
	if err != nil {
		return "", err
	}

	if cmd.Type == models.CommandFed {
		return s.recordFed(ctx, profile.UserID, cmd)
	}
	return s.listDue(ctx, profile.UserID)
}

func (s *Service) resolveSender(ctx context.Context, sender string) (models.Profile, error) {
	phone := strings.TrimSpace(sender)
	if phone == "" {
		return models.Profile{}, ErrUnknownSender
	}

	candidates := []string{phone}
	if strings.HasPrefix(phone, "+") {
		candidates = append(candidates, strings.TrimPrefix(phone, "+"))
	} else {
		candidates = append(candidates, "+"+phone)
	}

	for _, candidate := range candidates {
		profile, err := s.profiles.FindProfileByPhone(ctx, candidate)
		if err == nil {
			return profile, nil
		}
		if !errors.Is(err, repository.ErrNotFound) {
			return models.Profile{}, fmt.Errorf("resolve sender: %w", err)
		}
	}
	return models.Profile{}, ErrUnknownSender
}

func (s *Service) recordFed(ctx context.Context, userID string, cmd models.Command) (string, error) {
	if len(cmd.Args) == 0 {
		return "", ErrInvalidArguments
	}

	schedule, err := s.feeding.GetSchedule(ctx, userID, cmd.Args[0])
	if err != nil {
		return "", err
	}

	quantity := schedule.Quantity
	if len(cmd.Args) > 1 {
		quantity, err = strconv.ParseFloat(strings.TrimSuffix(strings.ToLower(cmd.Args[1]), "kg"), 64)
		if err != nil {
			return "", ErrInvalidArguments
		}
	}

	result, err := s.feeding.RecordFeeding(ctx, userID, models.FeedingInput{
		AnimalID:   schedule.AnimalID,
		ScheduleID: schedule.ID,
		FeedType:   schedule.FeedType,
		Quantity:   quantity,
		Notes:      "recorded via WhatsApp",
	})
	if err != nil {
		return "", err
	}

	message := fmt.Sprintf("Feeding recorded: %skg of %s.", formatQuantity(result.Record.Quantity), result.Record.FeedType)
	if result.Schedule != nil && result.Schedule.NextFeedingDate != nil {
		message += fmt.Sprintf(" Next feeding: %s", s.formatNext(*result.Schedule))
	}
	return message, nil
}

func (s *Service) listDue(ctx context.Context, userID string) (string, error) {
	due, err := s.feeding.DueFeedings(ctx, userID)
	if err != nil {
		return "", err
	}

	if len(due.Overdue) == 0 && len(due.Upcoming) == 0 {
		return "No feedings due in the next 2 hours.", nil
	}

	var b strings.Builder
	if len(due.Overdue) > 0 {
		b.WriteString("Overdue:")
		for _, item := range due.Overdue {
			b.WriteString("\n" + s.dueLine(item))
		}
	}
	if len(due.Upcoming) > 0 {
		if b.Len() > 0 {
			b.WriteString("\n")
		}
		b.WriteString("Upcoming:")
		for _, item := range due.Upcoming {
			b.WriteString("\n" + s.dueLine(item))
		}
	}
	return b.String(), nil
}

func (s *Service) dueLine(item models.DueFeeding) string {
	return fmt.Sprintf("- %s: %skg of %s at %s", item.Schedule.ID, formatQuantity(item.Schedule.Quantity), item.Schedule.FeedType, s.formatNext(item.Schedule))
}

func (s *Service) formatNext(schedule models.FeedingSchedule) string {
	text := schedule.NextFeedingDate.In(s.loc).Format(timeFormat)
	if !schedule.NextFeedingAuthoritative {
		text += " (estimated)"
	}
	return text
}

func formatQuantity(q float64) string {
	return strconv.FormatFloat(q, 'f', -1, 64)
}
