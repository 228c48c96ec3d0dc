package notification

import (
	"fmt"
	"sort"
	"time"

	"github.com/samber/lo"

	"primefit/internal/domain/booking"
	"primefit/internal/domain/member"
	"primefit/internal/domain/payment"
)

// Priority levels; lower sorts first.
const (
	PriorityUrgent = 1
	PriorityHigh   = 2
	PriorityNormal = 3
)

// Colors used by the member banner.
const (
	ColorDanger  = "#FF6347"
	ColorWarning = "#FFA500"
	ColorInfo    = "#4682B4"
)

// ReminderWindow is how far ahead booked classes produce a reminder.
const ReminderWindow = 24 * time.Hour

// Action is a labelled link shown under a notification.
type Action struct {
	Label string `json:"label"`
	URL   string `json:"url"`
}

// Notification is a derived, never-stored message for a member.
type Notification struct {
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Icon      string    `json:"icon"`
	Color     string    `json:"color"`
	Priority  int64     `json:"priority,string"`
	Actions   []Action  `json:"actions"`
	Timestamp time.Time `json:"timestamp"`
}

// Key identifies a notification for dismissal.
func (n Notification) Key() string {
	return n.Title + n.Message
}

// Derive builds the notifications a member should see at now.
// PRE: payments and bookings belong to m
// POST: Returns notifications ordered by priority then title
// INVARIANT: inputs are not mutated
func Derive(m member.Member, payments []payment.Payment, bookings []booking.Booking, now time.Time) []Notification {
	var out []Notification

	switch {
	case m.IsExpired(now):
		out = append(out, Notification{
			Title:     "Membership Expired",
			Message:   fmt.Sprintf("Your %s membership ended on %s. Renew to keep training.", m.MembershipPlan.Name, m.EndDate.Format("2 Jan 2006")),
			Icon:      "⚠️",
			Color:     ColorDanger,
			Priority:  PriorityUrgent,
			Actions:   []Action{{Label: "Renew membership", URL: "/member/plans"}},
			Timestamp: now,
		})
	case m.IsExpiringSoon(now):
		days := int(m.EndDate.Sub(now).Hours() / 24)
		out = append(out, Notification{
			Title:     "Membership Expiring Soon",
			Message:   fmt.Sprintf("Your %s membership ends in %d day(s).", m.MembershipPlan.Name, days),
			Icon:      "⏰",
			Color:     ColorWarning,
			Priority:  PriorityHigh,
			Actions:   []Action{{Label: "Renew membership", URL: "/member/plans"}},
			Timestamp: now,
		})
	}

	pending := lo.Filter(payments, func(p payment.Payment, _ int) bool {
		return p.Status == payment.StatusPending
	})
	if len(pending) > 0 {
		due := lo.SumBy(pending, func(p payment.Payment) int64 { return p.Amount })
		out = append(out, Notification{
			Title:     "Payment Due",
			Message:   fmt.Sprintf("You have %d pending payment(s) totalling %d.", len(pending), due),
			Icon:      "💰",
			Color:     ColorDanger,
			Priority:  PriorityUrgent,
			Actions:   []Action{{Label: "View payments", URL: "/member/payments"}},
			Timestamp: now,
		})
	}

	failed := lo.CountBy(payments, func(p payment.Payment) bool {
		return p.Status == payment.StatusFailed
	})
	if failed > 0 {
		out = append(out, Notification{
			Title:     "Payment Failed",
			Message:   fmt.Sprintf("%d payment(s) could not be processed. Please contact the front desk.", failed),
			Icon:      "💰",
			Color:     ColorWarning,
			Priority:  PriorityHigh,
			Timestamp: now,
		})
	}

	for _, b := range bookings {
		if b.Status != booking.StatusBooked || b.Date.Before(now) || b.Date.Sub(now) > ReminderWindow {
			continue
		}
		out = append(out, Notification{
			Title:     "Upcoming Class",
			Message:   fmt.Sprintf("Your %s class starts at %s.", b.ClassType, b.Date.Format("15:04 on 2 Jan")),
			Icon:      "📅",
			Color:     ColorInfo,
			Priority:  PriorityNormal,
			Actions:   []Action{{Label: "My bookings", URL: "/member/bookings"}},
			Timestamp: now,
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Priority != out[j].Priority {
			return out[i].Priority < out[j].Priority
		}
		return out[i].Title < out[j].Title
	})
	return out
}
