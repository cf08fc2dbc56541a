package repo

import (
	"context"
	"encoding/json"
	"errors"
	"time"
)

var (
	ErrNotFound  = errors.New("not found")
	ErrUserTaken = errors.New("login already taken")
)

// SavedCalculation is one stored copy of a calculator session.
type SavedCalculation struct {
	ID             int             `json:"id"`
	CalculatorID   string          `json:"calculator_id"`
	CalculatorName string          `json:"calculator_name"`
	IconKey        string          `json:"icon_key"`
	InputSnapshot  json.RawMessage `json:"input"`
	OutputSnapshot json.RawMessage `json:"output"`
	CreatedAt      time.Time       `json:"created_at"`
}

type Favorite struct {
	CalculatorID   string `json:"calculator_id"`
	CalculatorName string `json:"calculator_name"`
	IconKey        string `json:"icon_key"`
	Category       string `json:"category"`
}

type Repository interface {
	CreateUser(ctx context.Context, login, email, password string) (int, error)
	// GetBylogin returns ErrNotFound when no user has the login.
	GetBylogin(ctx context.Context, login string) (int, string, error)

	SaveCalculation(ctx context.Context, userID int, c SavedCalculation) (int, error)
	ListSaved(ctx context.Context, userID int) ([]SavedCalculation, error)
	// ToggleFavorite flips the favorite flag and reports the new value.
	ToggleFavorite(ctx context.Context, userID int, f Favorite) (bool, error)
	CheckFavorite(ctx context.Context, userID int, calculatorID string) (bool, error)
}
