package api

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
	"golang.org/x/time/rate"

	"daytrack-backend/config"
	"daytrack-backend/internal/clock"
	"daytrack-backend/internal/geo"
	"daytrack-backend/internal/model"
	"daytrack-backend/internal/mw"
	"daytrack-backend/internal/smartguess"
	"daytrack-backend/internal/store"
	"daytrack-backend/internal/timeline"
	"daytrack-backend/internal/tracker"
)

var morning = time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC)

type testServer struct {
	router   *gin.Engine
	clock    *clock.Manual
	timeline *timeline.Service
	cache    *mw.TimelineCache
}

func setupRouter(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	c := clock.NewManual(morning)
	tl := timeline.NewService(store.NewMemoryTimeSlotStore(), c, time.UTC)
	engine := smartguess.NewEngine(store.NewMemorySmartGuessStore(), c, config.SmartGuessConfig{BaselineConfidence: 1})
	location := &geo.LastKnown{}
	cache := mw.NewTimelineCache(time.Minute)
	h := NewHandler(tl, engine, tracker.New(tl, engine, location, c), location, cache)

	return &testServer{router: NewRouter(h, mw.NewIPRateLimiter(rate.Limit(1000), 1000)), clock: c, timeline: tl, cache: cache}
}

func (s *testServer) do(method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	s.router.ServeHTTP(w, req)
	return w
}

func TestStartSlot(t *testing.T) {
	s := setupRouter(t)

	w := s.do(http.MethodPost, "/api/slots", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"invalid request"}`, w.Body.String())

	w = s.do(http.MethodPost, "/api/slots", gin.H{"category": "napping"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(http.MethodPost, "/api/slots", gin.H{"category": "work"})
	require.Equal(t, http.StatusCreated, w.Code)
	var slot model.TimeSlot
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &slot))
	assert.Equal(t, model.CategoryWork, slot.Category)
	assert.True(t, slot.StartTime.Equal(morning))

	// Same instant again violates the ordering.
	w = s.do(http.MethodPost, "/api/slots", gin.H{"category": "food"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = s.do(http.MethodGet, "/api/slots/last", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &slot))
	assert.Equal(t, model.CategoryWork, slot.Category)
}

func TestGetLastSlot_Empty(t *testing.T) {
	s := setupRouter(t)
	w := s.do(http.MethodGet, "/api/slots/last", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestLocationAndPredict(t *testing.T) {
	s := setupRouter(t)

	w := s.do(http.MethodGet, "/api/guesses/predict?lat=41.97&lng=-71.02", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"category":null}`, w.Body.String())

	w = s.do(http.MethodPut, "/api/location", gin.H{"latitude": 100, "longitude": 0})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(http.MethodPut, "/api/location", gin.H{"latitude": 41.97, "longitude": -71.02})
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = s.do(http.MethodPost, "/api/slots", gin.H{"category": "work"})
	require.Equal(t, http.StatusCreated, w.Code)

	w = s.do(http.MethodGet, "/api/guesses/predict?lat=41.9701&lng=-71.0201", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var resp predictResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.Category)
	assert.Equal(t, "work", *resp.Category)
	assert.NotNil(t, resp.GuessID)

	w = s.do(http.MethodGet, "/api/guesses/predict?lat=abc&lng=0", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// An arrival starts a guessed slot.
	s.clock.Advance(2 * time.Hour)
	w = s.do(http.MethodPut, "/api/location", gin.H{"latitude": 41.97, "longitude": -71.02, "arrived": true})
	require.Equal(t, http.StatusCreated, w.Code)
	var slot model.TimeSlot
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &slot))
	assert.Equal(t, model.CategoryWork, slot.Category)
	assert.False(t, slot.CategoryWasSetByUser)
	assert.NotNil(t, slot.SmartGuessID)
}

func TestCorrectSlot(t *testing.T) {
	s := setupRouter(t)
	require.Equal(t, http.StatusCreated, s.do(http.MethodPost, "/api/slots", gin.H{"category": "work"}).Code)

	path := "/api/slots/" + morning.Format(time.RFC3339) + "/category"
	w := s.do(http.MethodPut, path, gin.H{"category": "leisure"})
	require.Equal(t, http.StatusOK, w.Code)
	var slot model.TimeSlot
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &slot))
	assert.Equal(t, model.CategoryLeisure, slot.Category)
	assert.True(t, slot.CategoryWasSetByUser)

	w = s.do(http.MethodPut, "/api/slots/"+morning.Add(time.Minute).Format(time.RFC3339)+"/category", gin.H{"category": "leisure"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(http.MethodPut, "/api/slots/yesterday/category", gin.H{"category": "leisure"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetTimeline(t *testing.T) {
	s := setupRouter(t)
	for _, step := range []struct {
		at       time.Duration
		category string
	}{
		{-2 * time.Hour, "leisure"},
		{0, "work"},
		{30 * time.Minute, "commute"},
		{time.Hour, "work"},
	} {
		s.clock.Set(morning.Add(step.at))
		require.Equal(t, http.StatusCreated, s.do(http.MethodPost, "/api/slots", gin.H{"category": step.category}).Code)
	}
	s.clock.Set(morning.Add(2 * time.Hour))

	w := s.do(http.MethodGet, "/api/timeline/today", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var resp timelineResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "2026-10-18", resp.Date)
	require.Len(t, resp.Items, 4)
	assert.Equal(t, model.CategoryLeisure, resp.Items[0].Category)
	assert.Equal(t, 2*time.Hour, resp.Items[0].Duration)
	assert.True(t, resp.Items[3].IsRunning)
	assert.Equal(t, time.Hour, resp.Items[3].Duration)

	w = s.do(http.MethodGet, "/api/slots?from=2026-10-18", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var slots struct {
		Slots []model.TimeSlot `json:"slots"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &slots))
	assert.Len(t, slots.Slots, 4)

	w = s.do(http.MethodGet, "/api/timeline/not-a-day", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = s.do(http.MethodGet, "/api/slots?from=2026-10-18&to=2026-10-17", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetTimeline_PastDaysCachedUntilChanged(t *testing.T) {
	s := setupRouter(t)
	require.Equal(t, http.StatusCreated, s.do(http.MethodPost, "/api/slots", gin.H{"category": "work"}).Code)

	s.clock.Set(morning.AddDate(0, 0, 1))
	require.Equal(t, http.StatusCreated, s.do(http.MethodPost, "/api/slots", gin.H{"category": "food"}).Code)

	path := "/api/timeline/2026-10-18"
	first := s.do(http.MethodGet, path, nil)
	require.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, 1, s.cache.ItemCount())

	var resp timelineResponse
	require.NoError(t, json.Unmarshal(first.Body.Bytes(), &resp))
	require.Len(t, resp.Items, 1)
	assert.True(t, resp.Items[0].IsLastInPastDay)
	assert.Equal(t, 15*time.Hour, resp.Items[0].Duration)

	// Correcting a slot of that day drops the cached rendering.
	w := s.do(http.MethodPut, "/api/slots/"+morning.Format(time.RFC3339)+"/category", gin.H{"category": "hobby"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 0, s.cache.ItemCount())

	second := s.do(http.MethodGet, path, nil)
	require.NoError(t, json.Unmarshal(second.Body.Bytes(), &resp))
	assert.Equal(t, model.CategoryHobby, resp.Items[0].Category)

	// Today is never cached.
	s.do(http.MethodGet, "/api/timeline/today", nil)
	assert.Equal(t, 1, s.cache.ItemCount())
}
