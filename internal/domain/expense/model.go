package expense

import (
	"errors"
	"strings"
	"time"
)

// Expense type constants
const (
	TypeEquipment = "equipment"
	TypeRent      = "rent"
	TypeUtilities = "utilities"
	TypeOther     = "other"
)

// MaxDescriptionLength caps the free-text description.
const MaxDescriptionLength = 500

// Domain errors
var (
	ErrInvalidType     = errors.New("type must be 'equipment', 'rent', 'utilities', or 'other'")
	ErrInvalidAmount   = errors.New("expense amount must be positive")
	ErrDescriptionSize = errors.New("expense description must be 1-500 characters")
)

// Expense is money spent running the gym.
type Expense struct {
	ID          string    `json:"id"`
	Type        string    `json:"type"`
	Description string    `json:"description"`
	Amount      int64     `json:"amount,string"`
	Timestamp   time.Time `json:"timestamp"`
}

// Validate checks if the Expense has valid data.
// PRE: Expense struct is initialized
// POST: Returns error if validation fails, nil otherwise
func (e *Expense) Validate() error {
	switch e.Type {
	case TypeEquipment, TypeRent, TypeUtilities, TypeOther:
	default:
		return ErrInvalidType
	}
	if e.Amount <= 0 {
		return ErrInvalidAmount
	}
	d := strings.TrimSpace(e.Description)
	if d == "" || len(d) > MaxDescriptionLength {
		return ErrDescriptionSize
	}
	return nil
}
