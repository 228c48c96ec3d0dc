package session

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"primefit/internal/domain/fitness"
	"primefit/internal/domain/member"
	"primefit/internal/domain/membership"
	"primefit/internal/domain/principal"
)

// Profile is either a LocalProfile read from the session cache or a
// RemoteProfile loaded from the store. Normalize turns either into a member.
type Profile interface {
	isProfile()
}

// RemoteProfile wraps a profile that already has native types.
type RemoteProfile struct {
	Member member.Member
}

func (RemoteProfile) isProfile() {}

// LocalProfile is the cached wire form: every integer is a decimal string
// and every time is a decimal count of nanoseconds since the Unix epoch.
type LocalProfile struct {
	ID               string            `json:"id"`
	Principal        string            `json:"principal"`
	Name             string            `json:"name"`
	Email            string            `json:"email"`
	Phone            string            `json:"phone"`
	MembershipStatus string            `json:"membershipStatus"`
	StartDate        string            `json:"startDate"`
	EndDate          string            `json:"endDate"`
	MembershipPlan   LocalPlan         `json:"membershipPlan"`
	WorkoutPlan      *LocalWorkoutPlan `json:"workoutPlan,omitempty"`
	DietPlan         *LocalDietPlan    `json:"dietPlan,omitempty"`
	ProfilePic       string            `json:"profilePic,omitempty"`
}

func (LocalProfile) isProfile() {}

// LocalPlan is the wire form of a membership plan.
type LocalPlan struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	DurationMonths string `json:"durationMonths"`
	Benefits       string `json:"benefits"`
	Price          string `json:"price"`
}

// LocalExercise is the wire form of an exercise.
type LocalExercise struct {
	Name     string `json:"name"`
	Sets     string `json:"sets"`
	Reps     string `json:"reps"`
	WeightKg string `json:"weightKg"`
}

// LocalWorkoutPlan is the wire form of a workout plan.
type LocalWorkoutPlan struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	Description   string          `json:"description"`
	DurationWeeks string          `json:"durationWeeks"`
	Exercises     []LocalExercise `json:"exercises"`
}

// LocalMacros is the wire form of a macronutrient breakdown.
type LocalMacros struct {
	Calories string `json:"calories"`
	ProteinG string `json:"proteinG"`
	CarbsG   string `json:"carbsG"`
	FatG     string `json:"fatG"`
}

// LocalMeal is the wire form of a meal.
type LocalMeal struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	LocalMacros
}

// LocalDietPlan is the wire form of a diet plan.
type LocalDietPlan struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	LocalMacros
	Meals []LocalMeal `json:"meals"`
}

// DecodeLocalProfile parses the cached value stored under KeyMemberProfileCache.
// PRE: raw is the stored value
// POST: Returns ErrCorrupted if raw is not JSON of the expected shape
func DecodeLocalProfile(raw string) (LocalProfile, error) {
	var p LocalProfile
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return LocalProfile{}, fmt.Errorf("%w: %v", ErrCorrupted, err)
	}
	return p, nil
}

// Encode renders the profile as stored.
func (p LocalProfile) Encode() (string, error) {
	b, err := json.Marshal(p)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Normalize converts either profile shape into a member.
// PRE: p is a LocalProfile, RemoteProfile or nil
// POST: Returns ErrNoProfile for nil and ErrCorrupted for unparseable fields
// INVARIANT: Normalize(Serialize(m)) reproduces m (times compared with Equal),
// keeping empty lists empty and nil lists nil
func Normalize(p Profile) (member.Member, error) {
	switch v := p.(type) {
	case RemoteProfile:
		return v.Member, nil
	case *RemoteProfile:
		if v == nil {
			return member.Member{}, ErrNoProfile
		}
		return v.Member, nil
	case LocalProfile:
		return v.normalize()
	case *LocalProfile:
		if v == nil {
			return member.Member{}, ErrNoProfile
		}
		return v.normalize()
	default:
		return member.Member{}, ErrNoProfile
	}
}

// Serialize converts a member into the cached wire form.
// PasswordHash is never serialized.
func Serialize(m member.Member) LocalProfile {
	lp := LocalProfile{
		ID:               formatInt(m.ID),
		Principal:        m.Principal.String(),
		Name:             m.Name,
		Email:            m.Email,
		Phone:            m.Phone,
		MembershipStatus: m.MembershipStatus,
		StartDate:        formatTime(m.StartDate),
		EndDate:          formatTime(m.EndDate),
		MembershipPlan: LocalPlan{
			ID:             m.MembershipPlan.ID,
			Name:           m.MembershipPlan.Name,
			DurationMonths: formatInt(m.MembershipPlan.DurationMonths),
			Benefits:       m.MembershipPlan.Benefits,
			Price:          formatInt(m.MembershipPlan.Price),
		},
		ProfilePic: m.ProfilePicURL,
	}
	if w := m.WorkoutPlan; w != nil {
		lw := &LocalWorkoutPlan{
			ID:            w.ID,
			Name:          w.Name,
			Description:   w.Description,
			DurationWeeks: formatInt(w.DurationWeeks),
		}
		if w.Exercises != nil {
			lw.Exercises = make([]LocalExercise, 0, len(w.Exercises))
		}
		for _, e := range w.Exercises {
			lw.Exercises = append(lw.Exercises, LocalExercise{
				Name:     e.Name,
				Sets:     formatInt(e.Sets),
				Reps:     formatInt(e.Reps),
				WeightKg: formatInt(e.WeightKg),
			})
		}
		lp.WorkoutPlan = lw
	}
	if d := m.DietPlan; d != nil {
		ld := &LocalDietPlan{
			ID:          d.ID,
			Name:        d.Name,
			Description: d.Description,
			LocalMacros: serializeMacros(d.Macros),
		}
		if d.Meals != nil {
			ld.Meals = make([]LocalMeal, 0, len(d.Meals))
		}
		for _, meal := range d.Meals {
			ld.Meals = append(ld.Meals, LocalMeal{
				Name:        meal.Name,
				Description: meal.Description,
				LocalMacros: serializeMacros(meal.Macros),
			})
		}
		lp.DietPlan = ld
	}
	return lp
}

func (p LocalProfile) normalize() (member.Member, error) {
	var pr fieldParser
	m := member.Member{
		ID:               pr.int("id", p.ID),
		Name:             p.Name,
		Email:            p.Email,
		Phone:            p.Phone,
		MembershipStatus: p.MembershipStatus,
		StartDate:        pr.time("startDate", p.StartDate),
		EndDate:          pr.time("endDate", p.EndDate),
		MembershipPlan: membership.Plan{
			ID:             p.MembershipPlan.ID,
			Name:           p.MembershipPlan.Name,
			DurationMonths: pr.int("membershipPlan.durationMonths", p.MembershipPlan.DurationMonths),
			Benefits:       p.MembershipPlan.Benefits,
			Price:          pr.int("membershipPlan.price", p.MembershipPlan.Price),
		},
		ProfilePicURL: p.ProfilePic,
	}
	if p.Principal == "" {
		m.Principal = principal.Anonymous()
	} else if parsed, err := principal.FromText(p.Principal); err != nil {
		pr.fail("principal", err)
	} else {
		m.Principal = parsed
	}

	if w := p.WorkoutPlan; w != nil {
		wp := &fitness.WorkoutPlan{
			ID:            w.ID,
			Name:          w.Name,
			Description:   w.Description,
			DurationWeeks: pr.int("workoutPlan.durationWeeks", w.DurationWeeks),
		}
		if w.Exercises != nil {
			wp.Exercises = make([]fitness.Exercise, 0, len(w.Exercises))
		}
		for i, e := range w.Exercises {
			field := fmt.Sprintf("workoutPlan.exercises[%d]", i)
			wp.Exercises = append(wp.Exercises, fitness.Exercise{
				Name:     e.Name,
				Sets:     pr.int(field+".sets", e.Sets),
				Reps:     pr.int(field+".reps", e.Reps),
				WeightKg: pr.int(field+".weightKg", e.WeightKg),
			})
		}
		m.WorkoutPlan = wp
	}
	if d := p.DietPlan; d != nil {
		dp := &fitness.DietPlan{
			ID:          d.ID,
			Name:        d.Name,
			Description: d.Description,
			Macros:      pr.macros("dietPlan", d.LocalMacros),
		}
		if d.Meals != nil {
			dp.Meals = make([]fitness.Meal, 0, len(d.Meals))
		}
		for i, meal := range d.Meals {
			dp.Meals = append(dp.Meals, fitness.Meal{
				Name:        meal.Name,
				Description: meal.Description,
				Macros:      pr.macros(fmt.Sprintf("dietPlan.meals[%d]", i), meal.LocalMacros),
			})
		}
		m.DietPlan = dp
	}

	if pr.err != nil {
		return member.Member{}, pr.err
	}
	return m, nil
}

// fieldParser keeps the first conversion failure so normalize reads linearly.
type fieldParser struct {
	err error
}

func (f *fieldParser) fail(field string, err error) {
	if f.err == nil {
		f.err = fmt.Errorf("%w: field %s: %v", ErrCorrupted, field, err)
	}
}

func (f *fieldParser) int(field, s string) int64 {
	if s == "" {
		return 0
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		f.fail(field, err)
		return 0
	}
	return n
}

func (f *fieldParser) time(field, s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	ns := f.int(field, s)
	return time.Unix(0, ns).UTC()
}

func (f *fieldParser) macros(prefix string, m LocalMacros) fitness.Macros {
	return fitness.Macros{
		Calories: f.int(prefix+".calories", m.Calories),
		ProteinG: f.int(prefix+".proteinG", m.ProteinG),
		CarbsG:   f.int(prefix+".carbsG", m.CarbsG),
		FatG:     f.int(prefix+".fatG", m.FatG),
	}
}

func serializeMacros(m fitness.Macros) LocalMacros {
	return LocalMacros{
		Calories: formatInt(m.Calories),
		ProteinG: formatInt(m.ProteinG),
		CarbsG:   formatInt(m.CarbsG),
		FatG:     formatInt(m.FatG),
	}
}

func formatInt(n int64) string {
	return strconv.FormatInt(n, 10)
}

// formatTime renders t as Unix nanoseconds; the zero time renders empty.
func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return strconv.FormatInt(t.UnixNano(), 10)
}
