package membership

import (
	"errors"
	"strings"
	"time"
)

// Max length constants for user-editable fields.
const (
	MaxNameLength     = 100
	MaxBenefitsLength = 4000
	MaxDurationMonths = 120
)

// Domain errors
var (
	ErrEmptyName       = errors.New("plan name cannot be empty")
	ErrNameTooLong     = errors.New("plan name cannot exceed 100 characters")
	ErrBenefitsTooLong = errors.New("plan benefits cannot exceed 4000 characters")
	ErrInvalidDuration = errors.New("plan duration must be between 1 and 120 months")
	ErrNegativePrice   = errors.New("plan price cannot be negative")
)

// Plan is a purchasable membership tier.
// Benefits is markdown.
type Plan struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	DurationMonths int64  `json:"durationMonths,string"`
	Benefits       string `json:"benefits"`
	Price          int64  `json:"price,string"`
}

// Validate checks if the Plan has valid data.
// PRE: Plan struct is initialized
// POST: Returns error if validation fails, nil otherwise
func (p *Plan) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return ErrEmptyName
	}
	if len(p.Name) > MaxNameLength {
		return ErrNameTooLong
	}
	if len(p.Benefits) > MaxBenefitsLength {
		return ErrBenefitsTooLong
	}
	if p.DurationMonths < 1 || p.DurationMonths > MaxDurationMonths {
		return ErrInvalidDuration
	}
	if p.Price < 0 {
		return ErrNegativePrice
	}
	return nil
}

// EndDate returns the date a membership bought at start runs out.
// INVARIANT: Plan fields are not mutated
func (p *Plan) EndDate(start time.Time) time.Time {
	return start.AddDate(0, int(p.DurationMonths), 0)
}
