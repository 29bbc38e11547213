package main

import (
	"fmt"
	"log"

	"daytrack-backend/config"
	"daytrack-backend/internal/clock"
	"daytrack-backend/internal/db"
	"daytrack-backend/internal/geo"
	"daytrack-backend/internal/smartguess"
	"daytrack-backend/internal/store"
	"daytrack-backend/internal/timeline"
	"daytrack-backend/internal/tracker"
)

// app is the wired object graph shared by all commands.
type app struct {
	cfg      *config.Config
	timeline *timeline.Service
	engine   *smartguess.Engine
	tracker  *tracker.Tracker
	location *geo.LastKnown
	close    func() error
}

func newApp(cfg *config.Config, logger *log.Logger) (*app, error) {
	var (
		slots   store.TimeSlotStore
		guesses store.SmartGuessStore
		closeFn = func() error { return nil }
	)

	if cfg.Database.Driver == config.DriverMemory {
		logger.Println("using in-memory storage; data is lost on exit")
		slots = store.NewMemoryTimeSlotStore()
		guesses = store.NewMemorySmartGuessStore()
	} else {
		gormDB, err := db.Init(&cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		sqlDB, err := gormDB.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to get sql.DB: %w", err)
		}
		logger.Println("database initialized successfully")
		slots = store.NewGormTimeSlotStore(gormDB)
		guesses = store.NewGormSmartGuessStore(gormDB)
		closeFn = sqlDB.Close
	}

	c := clock.System{}
	location := &geo.LastKnown{}
	tl := timeline.NewService(slots, c, cfg.Timeline.Location)
	engine := smartguess.NewEngine(guesses, c, cfg.SmartGuess)

	return &app{
		cfg:      cfg,
		timeline: tl,
		engine:   engine,
		tracker:  tracker.New(tl, engine, location, c),
		location: location,
		close:    closeFn,
	}, nil
}
