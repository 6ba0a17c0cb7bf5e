package reporting

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/herdbook/internal/domain/models"
	"github.com/mamadbah2/herdbook/internal/repository"
	"github.com/mamadbah2/herdbook/internal/repository/sheets"
)

const (
	dateLayout         = "2006-01-02"
	feedingExportRange = "Feeding!A:G"

	// DefaultPeriod is used when no or an unknown period is requested.
	DefaultPeriod = "last-30-days"
	// AllSpecies disables the species filter.
	AllSpecies = "all"
)

// ErrExportDisabled is returned when no spreadsheet exporter is configured.
var ErrExportDisabled = errors.New("report export is not configured")

var periodDays = map[string]int{
	"last-7-days":  7,
	"last-30-days": 30,
	"last-90-days": 90,
	"last-year":    365,
}

// NormalizePeriod maps unknown or empty periods to DefaultPeriod.
func NormalizePeriod(period string) string {
	if _, ok := periodDays[period]; ok {
		return period
	}
	return DefaultPeriod
}

// Service builds nutrition reports from the feeding, weight and health data of a user.
type Service struct {
	records      repository.RecordRepository
	weights      repository.WeightRepository
	animals      repository.AnimalRepository
	vaccinations repository.VaccinationRepository
	exporter     sheets.Exporter
	logger       *zap.Logger
	now          func() time.Time
}

// NewService wires a new reporting service instance. exporter may be nil, in
// which case exports fail with ErrExportDisabled.
func NewService(store repository.Store, exporter sheets.Exporter, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		records:      store,
		weights:      store,
		animals:      store,
		vaccinations: store,
		exporter:     exporter,
		logger:       logger,
		now:          time.Now,
	}
}

func (s *Service) periodStart(period string) time.Time {
	return s.now().AddDate(0, 0, -periodDays[NormalizePeriod(period)])
}

// FeedingSummary groups the feedings since the period start by feed type.
// species filters on the fed animal; empty or AllSpecies keeps everything.
func (s *Service) FeedingSummary(ctx context.Context, userID, period, species string) ([]models.FeedingReport, error) {
	records, err := s.records.ListRecordsSince(ctx, userID, s.periodStart(period))
	if err != nil {
		return nil, fmt.Errorf("load feeding records: %w", err)
	}

	keep, err := s.speciesFilter(ctx, userID, species)
	if err != nil {
		return nil, err
	}

	type stats struct {
		quantity float64
		count    int
		animals  map[string]struct{}
	}
	byFeed := make(map[string]*stats)

	for _, record := range records {
		if !keep(record.AnimalID) {
			continue
		}
		st, ok := byFeed[record.FeedType]
		if !ok {
			st = &stats{animals: make(map[string]struct{})}
			byFeed[record.FeedType] = st
		}
		st.quantity += record.Quantity
		st.count++
		st.animals[record.AnimalID] = struct{}{}
	}

	reports := make([]models.FeedingReport, 0, len(byFeed))
	for feedType, st := range byFeed {
		reports = append(reports, models.FeedingReport{
			FeedType:      feedType,
			TotalQuantity: st.quantity,
			FeedingCount:  st.count,
			AnimalsFed:    len(st.animals),
		})
	}
	sort.Slice(reports, func(i, j int) bool { return reports[i].FeedType < reports[j].FeedType })
	return reports, nil
}

// GrowthSeries returns the weighings since the period start per animal, with
// the gain between the first and last weighing and the gain per day.
func (s *Service) GrowthSeries(ctx context.Context, userID, period, species string) ([]models.GrowthData, error) {
	weights, err := s.weights.ListWeightsSince(ctx, userID, s.periodStart(period))
	if err != nil {
		return nil, fmt.Errorf("load weight records: %w", err)
	}

	animals, err := s.animalIndex(ctx, userID)
	if err != nil {
		return nil, err
	}
	keep := speciesMatcher(animals, species)

	byAnimal := make(map[string]*models.GrowthData)
	var order []string
	for _, w := range weights {
		if !keep(w.AnimalID) {
			continue
		}
		data, ok := byAnimal[w.AnimalID]
		if !ok {
			name := "Unknown"
			if animal, found := animals[w.AnimalID]; found {
				name = animal.Name
			}
			data = &models.GrowthData{AnimalID: w.AnimalID, AnimalName: name}
			byAnimal[w.AnimalID] = data
			order = append(order, w.AnimalID)
		}
		data.Weights = append(data.Weights, models.GrowthPoint{Weight: w.Weight, Date: w.RecordedAt})
	}

	series := make([]models.GrowthData, 0, len(order))
	for _, id := range order {
		data := byAnimal[id]
		sort.SliceStable(data.Weights, func(i, j int) bool { return data.Weights[i].Date.Before(data.Weights[j].Date) })

		days := 1.0
		if n := len(data.Weights); n > 1 {
			first, last := data.Weights[0], data.Weights[n-1]
			data.WeightGain = last.Weight - first.Weight
			days = last.Date.Sub(first.Date).Hours() / 24
		}
		data.GrowthRate = data.WeightGain / math.Max(days, 1)
		series = append(series, *data)
	}
	return series, nil
}

// HealthSummary counts animals by health status and vaccinations by state.
func (s *Service) HealthSummary(ctx context.Context, userID string) (models.HealthSummary, error) {
	animals, err := s.animals.ListAnimals(ctx, userID)
	if err != nil {
		return models.HealthSummary{}, fmt.Errorf("load animals: %w", err)
	}
	vaccinations, err := s.vaccinations.ListVaccinations(ctx, userID)
	if err != nil {
		return models.HealthSummary{}, fmt.Errorf("load vaccinations: %w", err)
	}

	summary := models.HealthSummary{TotalAnimals: len(animals)}
	for _, animal := range animals {
		if animal.HealthStatus == models.HealthStatusHealthy {
			summary.HealthyAnimals++
		}
	}
	summary.AnimalsNeedingAttention = summary.TotalAnimals - summary.HealthyAnimals

	for _, v := range vaccinations {
		switch v.Status {
		case models.VaccinationCompleted:
			summary.CompletedVaccinations++
		case models.VaccinationScheduled:
			summary.PendingVaccinations++
		}
	}
	return summary, nil
}

// ExportFeedingSummary appends the feeding summary to the report spreadsheet,
// one row per feed type, and returns the exported rows.
func (s *Service) ExportFeedingSummary(ctx context.Context, userID, period, species string) ([]models.FeedingReport, error) {
	if s.exporter == nil {
		return nil, ErrExportDisabled
	}

	reports, err := s.FeedingSummary(ctx, userID, period, species)
	if err != nil {
		return nil, err
	}

	generated := s.now().Format(dateLayout)
	period = NormalizePeriod(period)
	rows := make([][]interface{}, 0, len(reports))
	for _, r := range reports {
		rows = append(rows, []interface{}{generated, userID, period, r.FeedType, r.TotalQuantity, r.FeedingCount, r.AnimalsFed})
	}

	if err := s.exporter.AppendRows(ctx, feedingExportRange, rows); err != nil {
		return nil, fmt.Errorf("export feeding summary: %w", err)
	}
	s.logger.Info("feeding summary exported", zap.String("user_id", userID), zap.String("period", period), zap.Int("rows", len(rows)))
	return reports, nil
}

func (s *Service) speciesFilter(ctx context.Context, userID, species string) (func(string) bool, error) {
	if isAllSpecies(species) {
		return func(string) bool { return true }, nil
	}
	animals, err := s.animalIndex(ctx, userID)
	if err != nil {
		return nil, err
	}
	return speciesMatcher(animals, species), nil
}

func (s *Service) animalIndex(ctx context.Context, userID string) (map[string]models.Animal, error) {
	list, err := s.animals.ListAnimals(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load animals: %w", err)
	}
	index := make(map[string]models.Animal, len(list))
	for _, animal := range list {
		index[animal.ID] = animal
	}
	return index, nil
}

func speciesMatcher(animals map[string]models.Animal, species string) func(string) bool {
	if isAllSpecies(species) {
		return func(string) bool { return true }
	}
	return func(animalID string) bool {
		animal, ok := animals[animalID]
		return ok && strings.EqualFold(animal.Species, species)
	}
}

func isAllSpecies(species string) bool {
	species = strings.TrimSpace(species)
	return species == "" || strings.EqualFold(species, AllSpecies)
}
