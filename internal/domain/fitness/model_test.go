package fitness_test

import (
	"encoding/json"
	"strings"
	"testing"

	"primefit/internal/domain/fitness"
)

// TestWorkoutPlanValidation tests validation of WorkoutPlan.
func TestWorkoutPlanValidation(t *testing.T) {
	tests := []struct {
		name    string
		plan    fitness.WorkoutPlan
		wantErr error
	}{
		{"valid", fitness.WorkoutPlan{Name: "Strength", DurationWeeks: 8, Exercises: []fitness.Exercise{{Name: "Squat", Sets: 5, Reps: 5, WeightKg: 100}}}, nil},
		{"no name", fitness.WorkoutPlan{DurationWeeks: 8}, fitness.ErrEmptyPlanName},
		{"zero weeks", fitness.WorkoutPlan{Name: "Strength"}, fitness.ErrInvalidWeeks},
		{"blank exercise", fitness.WorkoutPlan{Name: "Strength", DurationWeeks: 1, Exercises: []fitness.Exercise{{}}}, fitness.ErrEmptyExercise},
		{"negative reps", fitness.WorkoutPlan{Name: "Strength", DurationWeeks: 1, Exercises: []fitness.Exercise{{Name: "Row", Reps: -1}}}, fitness.ErrNegativeExercise},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.plan.Validate(); err != tt.wantErr {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

// TestWorkoutTotalVolume tests TotalVolumeKg.
func TestWorkoutTotalVolume(t *testing.T) {
	w := fitness.WorkoutPlan{Exercises: []fitness.Exercise{
		{Name: "Squat", Sets: 5, Reps: 5, WeightKg: 100},
		{Name: "Press", Sets: 3, Reps: 10, WeightKg: 40},
	}}
	if got := w.TotalVolumeKg(); got != 3700 {
		t.Errorf("TotalVolumeKg() = %d, want 3700", got)
	}
}

// TestDietPlanMealTotals tests validation and totals of DietPlan.
func TestDietPlanMealTotals(t *testing.T) {
	d := fitness.DietPlan{
		Name:   "Cut",
		Macros: fitness.Macros{Calories: 2000},
		Meals: []fitness.Meal{
			{Name: "Oats", Macros: fitness.Macros{Calories: 400, ProteinG: 20, CarbsG: 60, FatG: 8}},
			{Name: "Chicken", Macros: fitness.Macros{Calories: 600, ProteinG: 60, CarbsG: 40, FatG: 15}},
		},
	}
	if err := d.Validate(); err != nil {
		t.Fatalf("Validate() unexpected error: %v", err)
	}
	got := d.MealTotals()
	want := fitness.Macros{Calories: 1000, ProteinG: 80, CarbsG: 100, FatG: 23}
	if got != want {
		t.Errorf("MealTotals() = %+v, want %+v", got, want)
	}

	d.Meals[0].FatG = -1
	if err := d.Validate(); err != fitness.ErrNegativeNutrition {
		t.Errorf("Validate() = %v, want ErrNegativeNutrition", err)
	}
}

// TestDietPlanJSONStringifiesIntegers checks the big-integer wire convention.
func TestDietPlanJSONStringifiesIntegers(t *testing.T) {
	d := fitness.DietPlan{Name: "Bulk", Macros: fitness.Macros{Calories: 3000}}
	out, err := json.Marshal(d)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if !strings.Contains(string(out), `"calories":"3000"`) {
		t.Errorf("expected stringified calories, got %s", out)
	}
}
