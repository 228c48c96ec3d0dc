package fitness

import (
	"errors"
	"strings"
)

// Domain errors
var (
	ErrEmptyPlanName     = errors.New("plan name cannot be empty")
	ErrInvalidWeeks      = errors.New("workout duration must be at least one week")
	ErrEmptyExercise     = errors.New("exercise name cannot be empty")
	ErrNegativeExercise  = errors.New("exercise sets, reps and weight cannot be negative")
	ErrEmptyMeal         = errors.New("meal name cannot be empty")
	ErrNegativeNutrition = errors.New("nutrition values cannot be negative")
)

// Exercise is one movement in a workout plan.
type Exercise struct {
	Name     string `json:"name"`
	Sets     int64  `json:"sets,string"`
	Reps     int64  `json:"reps,string"`
	WeightKg int64  `json:"weightKg,string"`
}

// WorkoutPlan is assigned to a member by an admin.
type WorkoutPlan struct {
	ID            string     `json:"id"`
	Name          string     `json:"name"`
	Description   string     `json:"description"`
	DurationWeeks int64      `json:"durationWeeks,string"`
	Exercises     []Exercise `json:"exercises"`
}

// Validate checks if the WorkoutPlan has valid data.
// PRE: WorkoutPlan struct is initialized
// POST: Returns error if validation fails, nil otherwise
func (w *WorkoutPlan) Validate() error {
	if strings.TrimSpace(w.Name) == "" {
		return ErrEmptyPlanName
	}
	if w.DurationWeeks < 1 {
		return ErrInvalidWeeks
	}
	for _, e := range w.Exercises {
		if strings.TrimSpace(e.Name) == "" {
			return ErrEmptyExercise
		}
		if e.Sets < 0 || e.Reps < 0 || e.WeightKg < 0 {
			return ErrNegativeExercise
		}
	}
	return nil
}

// TotalVolumeKg returns sets x reps x weight summed over all exercises.
func (w *WorkoutPlan) TotalVolumeKg() int64 {
	var total int64
	for _, e := range w.Exercises {
		total += e.Sets * e.Reps * e.WeightKg
	}
	return total
}

// Macros is a calorie and macronutrient breakdown.
type Macros struct {
	Calories int64 `json:"calories,string"`
	ProteinG int64 `json:"proteinG,string"`
	CarbsG   int64 `json:"carbsG,string"`
	FatG     int64 `json:"fatG,string"`
}

func (m Macros) negative() bool {
	return m.Calories < 0 || m.ProteinG < 0 || m.CarbsG < 0 || m.FatG < 0
}

// Meal is one entry of a diet plan.
type Meal struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Macros
}

// DietPlan is a daily nutrition target with suggested meals.
type DietPlan struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Macros
	Meals []Meal `json:"meals"`
}

// Validate checks if the DietPlan has valid data.
// PRE: DietPlan struct is initialized
// POST: Returns error if validation fails, nil otherwise
func (d *DietPlan) Validate() error {
	if strings.TrimSpace(d.Name) == "" {
		return ErrEmptyPlanName
	}
	if d.Macros.negative() {
		return ErrNegativeNutrition
	}
	for _, m := range d.Meals {
		if strings.TrimSpace(m.Name) == "" {
			return ErrEmptyMeal
		}
		if m.Macros.negative() {
			return ErrNegativeNutrition
		}
	}
	return nil
}

// MealTotals sums the macros of every meal.
// INVARIANT: DietPlan fields are not mutated
func (d *DietPlan) MealTotals() Macros {
	var t Macros
	for _, m := range d.Meals {
		t.Calories += m.Calories
		t.ProteinG += m.ProteinG
		t.CarbsG += m.CarbsG
		t.FatG += m.FatG
	}
	return t
}
