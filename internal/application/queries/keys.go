// Package queries is the cached read/write facade the HTTP layer talks to.
// Reads go through a query cache keyed hierarchically; every write
// invalidates the key families its result can change.
package queries

import (
	"strconv"

	"primefit/internal/application/querycache"
	"primefit/internal/domain/principal"
)

// Cache key families.
const (
	KeyMembers             = "members"
	KeyMembershipPlans     = "membershipPlans"
	KeyPayments            = "payments"
	KeyMemberPayments      = "memberPayments"
	KeyExpenses            = "expenses"
	KeyReports             = "reports"
	KeyMemberAttendance    = "memberAttendance"
	KeyMemberClassBookings = "memberClassBookings"
	KeyMemberNotifications = "memberNotifications"
	KeyCurrentUserProfile  = "currentUserProfile"
	KeyUserRole            = "userRole"
	KeyMemberProfile       = "memberProfile"
	KeyRegisteredMembers   = "registeredMembers"
	KeyCommunicationLogs   = "communicationLogs"
	KeyApprovals           = "approvals"
)

func memberKey(family string, id int64) string {
	return querycache.Key(family, strconv.FormatInt(id, 10))
}

func principalKey(family string, p principal.Principal) string {
	return querycache.Key(family, p.String())
}

// Invalidation sets per kind of write.
var (
	memberWrites     = []string{KeyMembers, KeyMemberProfile, KeyRegisteredMembers, KeyReports, KeyMemberNotifications}
	paymentWrites    = []string{KeyPayments, KeyMemberPayments, KeyReports, KeyMemberNotifications}
	expenseWrites    = []string{KeyExpenses, KeyReports}
	attendanceWrites = []string{KeyMemberAttendance}
	bookingWrites    = []string{KeyMemberClassBookings, KeyMemberNotifications}
	planWrites       = []string{KeyMembershipPlans}
	commWrites       = []string{KeyCommunicationLogs}
	approvalWrites   = []string{KeyApprovals}
)
