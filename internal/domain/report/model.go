package report

import (
	"sort"
	"time"

	"github.com/samber/lo"

	"primefit/internal/domain/expense"
	"primefit/internal/domain/member"
	"primefit/internal/domain/payment"
)

// MemberLine is one row of the admin report.
type MemberLine struct {
	Member         member.Member `json:"member"`
	IsExpired      bool          `json:"isExpired"`
	IsExpiringSoon bool          `json:"isExpiringSoon"`
	MoneyDue       int64         `json:"moneyDue,string"`
}

// Summary is the financial and membership overview.
type Summary struct {
	Members        []MemberLine `json:"members"`
	TotalPayments  int64        `json:"totalPayments,string"`
	TotalExpenses  int64        `json:"totalExpenses,string"`
	Profit         int64        `json:"profit,string"`
	MonthlyRevenue int64        `json:"monthlyRevenue,string"`
}

// Summarize computes the report at now.
// PRE: none
// POST: Members ordered by MoneyDue descending then name; Profit = TotalPayments - TotalExpenses
// INVARIANT: inputs are not mutated
//
// A member owes the sum of their pending payments. An expired member with
// nothing pending owes the price of their plan.
func Summarize(members []member.Member, payments []payment.Payment, expenses []expense.Expense, now time.Time) Summary {
	paid := lo.Filter(payments, func(p payment.Payment, _ int) bool { return p.IsPaid() })
	pendingByMember := lo.GroupBy(
		lo.Filter(payments, func(p payment.Payment, _ int) bool { return p.Status == payment.StatusPending }),
		func(p payment.Payment) int64 { return p.MemberID },
	)

	lines := lo.Map(members, func(m member.Member, _ int) MemberLine {
		due := lo.SumBy(pendingByMember[m.ID], func(p payment.Payment) int64 { return p.Amount })
		expired := m.IsExpired(now)
		if expired && due == 0 {
			due = m.MembershipPlan.Price
		}
		return MemberLine{
			Member:         m,
			IsExpired:      expired,
			IsExpiringSoon: m.IsExpiringSoon(now),
			MoneyDue:       due,
		}
	})
	sort.SliceStable(lines, func(i, j int) bool {
		if lines[i].MoneyDue != lines[j].MoneyDue {
			return lines[i].MoneyDue > lines[j].MoneyDue
		}
		return lines[i].Member.Name < lines[j].Member.Name
	})

	totalPayments := lo.SumBy(paid, func(p payment.Payment) int64 { return p.Amount })
	totalExpenses := lo.SumBy(expenses, func(e expense.Expense) int64 { return e.Amount })
	monthly := lo.SumBy(paid, func(p payment.Payment) int64 {
		if sameMonth(p.Timestamp, now) {
			return p.Amount
		}
		return 0
	})

	return Summary{
		Members:        lines,
		TotalPayments:  totalPayments,
		TotalExpenses:  totalExpenses,
		Profit:         totalPayments - totalExpenses,
		MonthlyRevenue: monthly,
	}
}

func sameMonth(a, b time.Time) bool {
	a = a.In(b.Location())
	return a.Year() == b.Year() && a.Month() == b.Month()
}
