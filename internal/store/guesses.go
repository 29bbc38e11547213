package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"daytrack-backend/internal/model"
)

// SmartGuessStore defines the persistence operations for smart guesses.
type SmartGuessStore interface {
	Get(ctx context.Context, id string) (*model.SmartGuess, error)
	// GetAll returns every guess in creation order.
	GetAll(ctx context.Context) ([]model.SmartGuess, error)
	// Create assigns a UUID when g.ID is empty.
	Create(ctx context.Context, g *model.SmartGuess) error
	Update(ctx context.Context, id string, mutate func(*model.SmartGuess)) (*model.SmartGuess, error)
}

type gormSmartGuessStore struct {
	db *gorm.DB
}

// NewGormSmartGuessStore creates a new GORM-backed smart guess store.
func NewGormSmartGuessStore(db *gorm.DB) SmartGuessStore {
	return &gormSmartGuessStore{db: db}
}

func (s *gormSmartGuessStore) Get(ctx context.Context, id string) (*model.SmartGuess, error) {
	var g model.SmartGuess
	err := s.db.WithContext(ctx).Where("id = ?", id).Take(&g).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch smart guess %s: %w", id, err)
	}
	return &g, nil
}

func (s *gormSmartGuessStore) GetAll(ctx context.Context) ([]model.SmartGuess, error) {
	var guesses []model.SmartGuess
	if err := s.db.WithContext(ctx).Order("created_at ASC, id ASC").Find(&guesses).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch smart guesses: %w", err)
	}
	return guesses, nil
}

func (s *gormSmartGuessStore) Create(ctx context.Context, g *model.SmartGuess) error {
	if g.ID == "" {
		g.ID = uuid.NewString()
	}
	g.LastUsed = g.LastUsed.UTC()
	if err := s.db.WithContext(ctx).Create(g).Error; err != nil {
		return fmt.Errorf("failed to create smart guess: %w", err)
	}
	return nil
}

func (s *gormSmartGuessStore) Update(ctx context.Context, id string, mutate func(*model.SmartGuess)) (*model.SmartGuess, error) {
	var updated *model.SmartGuess
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var g model.SmartGuess
		if err := tx.Where("id = ?", id).Take(&g).Error; err != nil {
			return err
		}
		mutate(&g)
		g.LastUsed = g.LastUsed.UTC()
		if err := tx.Save(&g).Error; err != nil {
			return err
		}
		updated = &g
		return nil
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update smart guess %s: %w", id, err)
	}
	return updated, nil
}
