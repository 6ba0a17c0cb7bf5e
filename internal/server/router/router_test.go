package router

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/herdbook/internal/domain/models"
	"github.com/mamadbah2/herdbook/internal/repository/memory"
	"github.com/mamadbah2/herdbook/internal/server/handlers"
	"github.com/mamadbah2/herdbook/internal/service/feeding"
	"github.com/mamadbah2/herdbook/internal/service/registry"
	"github.com/mamadbah2/herdbook/internal/service/reporting"
)

const testUser = "user-1"

func newTestEngine(t *testing.T) *gin.Engine {
	t.Helper()

	store := memory.NewStore()
	return New(Handlers{
		Feeding:  handlers.NewFeedingHandler(feeding.NewService(store, store, store, nil, time.UTC, nil), nil),
		Registry: handlers.NewRegistryHandler(registry.NewService(store, nil), nil),
		Reports:  handlers.NewReportHandler(reporting.NewService(store, nil, nil), nil),
	}, nil)
}

func do(t *testing.T, engine *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(handlers.UserIDHeader, testUser)

	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func createAnimal(t *testing.T, engine *gin.Engine) models.Animal {
	t.Helper()
	rec := do(t, engine, http.MethodPost, "/api/animals", map[string]any{"name": "Bella", "species": "cattle"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[models.Animal](t, rec)
}

func TestHealthz(t *testing.T) {
	engine := newTestEngine(t)

	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestAPIRequiresUser(t *testing.T) {
	engine := newTestEngine(t)

	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/schedules", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestWebhookRoutesOptional(t *testing.T) {
	engine := newTestEngine(t)

	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/webhook", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestScheduleLifecycle(t *testing.T) {
	engine := newTestEngine(t)
	animal := createAnimal(t, engine)

	rec := do(t, engine, http.MethodPost, "/api/schedules", map[string]any{
		"animal_id":    animal.ID,
		"feed_type":    "Hay",
		"quantity":     2.5,
		"feeding_time": "07:30",
		"frequency":    "weekly",
		"days_of_week": []string{"Monday", "thursday"},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[models.FeedingSchedule](t, rec)
	require.NotNil(t, created.NextFeedingDate)
	assert.True(t, created.NextFeedingAuthoritative)
	assert.Equal(t, []string{"monday", "thursday"}, created.DaysOfWeek)

	rec = do(t, engine, http.MethodGet, "/api/schedules/"+created.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, engine, http.MethodPatch, "/api/schedules/"+created.ID, map[string]any{"notes": "split in two"})
	require.Equal(t, http.StatusOK, rec.Code)
	patched := decode[models.FeedingSchedule](t, rec)
	assert.Equal(t, "split in two", patched.Notes)
	assert.True(t, created.NextFeedingDate.Equal(*patched.NextFeedingDate))

	rec = do(t, engine, http.MethodGet, "/api/schedules", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]models.FeedingSchedule](t, rec), 1)

	rec = do(t, engine, http.MethodGet, "/api/schedules/due", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	due := decode[map[string]json.RawMessage](t, rec)
	assert.Contains(t, due, "upcoming")
	assert.Contains(t, due, "overdue")

	rec = do(t, engine, http.MethodDelete, "/api/schedules/"+created.ID, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(t, engine, http.MethodGet, "/api/schedules/"+created.ID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestScheduleValidationErrors(t *testing.T) {
	engine := newTestEngine(t)
	animal := createAnimal(t, engine)

	cases := []struct {
		name  string
		body  map[string]any
		field string
	}{
		{"unknown frequency", map[string]any{"animal_id": animal.ID, "feed_type": "Hay", "quantity": 1, "feeding_time": "07:00", "frequency": "hourly"}, "frequency"},
		{"weekly without days", map[string]any{"animal_id": animal.ID, "feed_type": "Hay", "quantity": 1, "feeding_time": "07:00", "frequency": "weekly"}, "days_of_week"},
		{"bad time", map[string]any{"animal_id": animal.ID, "feed_type": "Hay", "quantity": 1, "feeding_time": "7pm", "frequency": "daily"}, "feeding_time"},
		{"zero quantity", map[string]any{"animal_id": animal.ID, "feed_type": "Hay", "quantity": 0, "feeding_time": "07:00", "frequency": "daily"}, "quantity"},
		{"missing animal", map[string]any{"feed_type": "Hay", "quantity": 1, "feeding_time": "07:00", "frequency": "daily"}, "animal_id"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := do(t, engine, http.MethodPost, "/api/schedules", tc.body)
			require.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
			assert.Equal(t, tc.field, decode[map[string]string](t, rec)["field"])
		})
	}

	rec := do(t, engine, http.MethodGet, "/api/schedules", nil)
	assert.Empty(t, decode[[]models.FeedingSchedule](t, rec))
}

func TestRecordFeedingAndReports(t *testing.T) {
	engine := newTestEngine(t)
	animal := createAnimal(t, engine)

	rec := do(t, engine, http.MethodPost, "/api/schedules", map[string]any{
		"animal_id": animal.ID, "feed_type": "Hay", "quantity": 2, "feeding_time": "06:00", "frequency": "daily",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	schedule := decode[models.FeedingSchedule](t, rec)

	rec = do(t, engine, http.MethodPost, "/api/records", map[string]any{
		"animal_id": animal.ID, "schedule_id": schedule.ID, "feed_type": "Hay", "quantity": 2,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	result := decode[feeding.RecordResult](t, rec)
	require.NotNil(t, result.Schedule)
	assert.True(t, result.Schedule.NextFeedingDate.After(time.Now()))

	rec = do(t, engine, http.MethodGet, "/api/records?limit=10", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]models.FeedingRecord](t, rec), 1)

	rec = do(t, engine, http.MethodGet, "/api/records?limit=lots", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, engine, http.MethodGet, "/api/reports/feeding?period=last-7-days", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	feedingReport := decode[struct {
		Period  string                 `json:"period"`
		Reports []models.FeedingReport `json:"reports"`
	}](t, rec)
	assert.Equal(t, "last-7-days", feedingReport.Period)
	assert.Equal(t, []models.FeedingReport{{FeedType: "Hay", TotalQuantity: 2, FeedingCount: 1, AnimalsFed: 1}}, feedingReport.Reports)

	rec = do(t, engine, http.MethodGet, "/api/reports/health", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, decode[models.HealthSummary](t, rec).HealthyAnimals)

	rec = do(t, engine, http.MethodPost, "/api/reports/feeding/export", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestRegistryRoutes(t *testing.T) {
	engine := newTestEngine(t)
	animal := createAnimal(t, engine)

	rec := do(t, engine, http.MethodPost, "/api/animals/"+animal.ID+"/weights", map[string]any{"weight": 420.5})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = do(t, engine, http.MethodPost, "/api/animals/missing/weights", map[string]any{"weight": 10})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, engine, http.MethodGet, "/api/reports/growth", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, engine, http.MethodPost, "/api/vaccinations", map[string]any{
		"animal_id": animal.ID, "vaccine_name": "Anthrax", "scheduled_date": time.Now().AddDate(0, 0, 7).Format(time.RFC3339),
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, models.VaccinationScheduled, decode[models.Vaccination](t, rec).Status)

	rec = do(t, engine, http.MethodGet, "/api/vaccinations", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]models.Vaccination](t, rec), 1)

	rec = do(t, engine, http.MethodGet, "/api/profile", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, engine, http.MethodPut, "/api/profile", map[string]any{"username": "aminata", "phone_number": "+224600000001", "notification_feeding": true})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	profile := decode[models.Profile](t, rec)
	assert.Equal(t, testUser, profile.UserID)

	rec = do(t, engine, http.MethodPut, "/api/profile", map[string]any{"username": "aminata"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "phone_number", decode[map[string]string](t, rec)["field"])
}

func TestRegistryUpdateRoutes(t *testing.T) {
	engine := newTestEngine(t)
	animal := createAnimal(t, engine)

	rec := do(t, engine, http.MethodPatch, "/api/animals/"+animal.ID, map[string]any{"health_status": "sick", "breed": "N'Dama"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	patched := decode[models.Animal](t, rec)
	assert.Equal(t, "sick", patched.HealthStatus)
	assert.Equal(t, "Bella", patched.Name)

	rec = do(t, engine, http.MethodGet, "/api/animals/"+animal.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "N'Dama", decode[models.Animal](t, rec).Breed)

	rec = do(t, engine, http.MethodPatch, "/api/animals/"+animal.ID, map[string]any{"name": ""})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "name", decode[map[string]string](t, rec)["field"])

	rec = do(t, engine, http.MethodPost, "/api/vaccinations", map[string]any{
		"animal_id": animal.ID, "vaccine_name": "Anthrax", "scheduled_date": time.Now().AddDate(0, 0, 7).Format(time.RFC3339),
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	vaccination := decode[models.Vaccination](t, rec)

	rec = do(t, engine, http.MethodPatch, "/api/vaccinations/"+vaccination.ID, map[string]any{"notes": "booster"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "booster", decode[models.Vaccination](t, rec).Notes)

	rec = do(t, engine, http.MethodPost, "/api/vaccinations/"+vaccination.ID+"/complete", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	completed := decode[models.Vaccination](t, rec)
	assert.Equal(t, models.VaccinationCompleted, completed.Status)
	assert.NotNil(t, completed.CompletedDate)

	rec = do(t, engine, http.MethodPost, "/api/vaccinations/missing/complete", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, engine, http.MethodDelete, "/api/vaccinations/"+vaccination.ID, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(t, engine, http.MethodDelete, "/api/animals/"+animal.ID, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(t, engine, http.MethodGet, "/api/animals/"+animal.ID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, engine, http.MethodPost, "/api/records", map[string]any{"animal_id": animal.ID, "feed_type": "Hay", "quantity": 1})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "animal_id", decode[map[string]string](t, rec)["field"])
}
