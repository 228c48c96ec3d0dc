package web

import (
	"net/http"
)

// registerAPI wires the JSON API. Every handler authorizes through the
// caller resolved for the request; the query service enforces roles.
func (s *server) registerAPI(mux *http.ServeMux) {
	// Members
	mux.HandleFunc("GET /api/members", s.handleListMembers)
	mux.HandleFunc("POST /api/members", s.handleAddMember)
	mux.HandleFunc("POST /api/members/generated", s.handleCreateMemberWithCredentials)
	mux.HandleFunc("GET /api/members/minimal", s.handleMinimalMembers)
	mux.HandleFunc("GET /api/members/registered", s.handleRegisteredMembers)
	mux.HandleFunc("GET /api/members/{id}", s.handleGetMember)
	mux.HandleFunc("PUT /api/members/{id}", s.handleUpdateMember)
	mux.HandleFunc("DELETE /api/members/{id}", s.handleDeleteMember)
	mux.HandleFunc("PUT /api/members/{id}/workout-plan", s.handleUpdateWorkoutPlan)
	mux.HandleFunc("PUT /api/members/{id}/diet-plan", s.handleUpdateDietPlan)
	mux.HandleFunc("GET /api/members/{id}/payments", s.handleMemberPayments)
	mux.HandleFunc("GET /api/members/{id}/attendance", s.handleMemberAttendance)
	mux.HandleFunc("GET /api/members/{id}/bookings", s.handleMemberBookings)
	mux.HandleFunc("GET /api/members/{id}/notifications", s.handleMemberNotifications)
	mux.HandleFunc("POST /api/members/{id}/qrcode", s.handleGenerateQRCode)
	mux.HandleFunc("GET /api/members/{id}/qrcode.png", s.handleMemberQRCodePNG)

	// Signed-in member
	mux.HandleFunc("GET /api/me/profile", s.handleMyProfile)
	mux.HandleFunc("PUT /api/me/profile", s.handleUpdateMyProfile)
	mux.HandleFunc("POST /api/me/password", s.handleChangePassword)
	mux.HandleFunc("GET /api/me/qrcode", s.handleMyQRCode)
	mux.HandleFunc("GET /api/me/qrcode.png", s.handleMyQRCodePNG)
	mux.HandleFunc("GET /api/me/dashboard", s.handleMyDashboard)

	// Plans, payments, expenses
	mux.HandleFunc("GET /api/plans", s.handleListPlans)
	mux.HandleFunc("POST /api/plans", s.handleAddPlan)
	mux.HandleFunc("GET /api/plans/{id}", s.handleGetPlan)
	mux.HandleFunc("PUT /api/plans/{id}", s.handleUpdatePlan)
	mux.HandleFunc("DELETE /api/plans/{id}", s.handleDeletePlan)
	mux.HandleFunc("GET /api/payments", s.handleListPayments)
	mux.HandleFunc("POST /api/payments", s.handleAddPayment)
	mux.HandleFunc("POST /api/payments/by-identifier", s.handleAddPaymentByIdentifier)
	mux.HandleFunc("GET /api/payments/{id}", s.handleGetPayment)
	mux.HandleFunc("PUT /api/payments/{id}", s.handleUpdatePayment)
	mux.HandleFunc("DELETE /api/payments/{id}", s.handleDeletePayment)
	mux.HandleFunc("GET /api/expenses", s.handleListExpenses)
	mux.HandleFunc("POST /api/expenses", s.handleAddExpense)
	mux.HandleFunc("DELETE /api/expenses/{id}", s.handleDeleteExpense)
	mux.HandleFunc("GET /api/reports", s.handleReports)
	mux.HandleFunc("GET /api/admin/dashboard", s.handleAdminDashboard)

	// Attendance and bookings
	mux.HandleFunc("GET /api/attendance", s.handleAttendanceByStatus)
	mux.HandleFunc("POST /api/attendance", s.handleAddAttendance)
	mux.HandleFunc("POST /api/attendance/check-in", s.handleCheckIn)
	mux.HandleFunc("POST /api/attendance/check-out", s.handleCheckOut)
	mux.HandleFunc("POST /api/attendance/scan", s.handleScanCheckIn)
	mux.HandleFunc("GET /api/bookings", s.handleBookingsByStatus)
	mux.HandleFunc("POST /api/bookings", s.handleAddBooking)
	mux.HandleFunc("PUT /api/bookings/{id}", s.handleUpdateBooking)
	mux.HandleFunc("POST /api/qrcodes/validate", s.handleValidateQRCode)

	// Accounts
	mux.HandleFunc("POST /api/login", s.handleAPILogin)
	mux.HandleFunc("POST /api/logout", s.handleAPILogout)
	mux.HandleFunc("GET /api/identity", s.handleIdentity)
	mux.HandleFunc("GET /api/user/profile", s.handleCallerProfile)
	mux.HandleFunc("PUT /api/user/profile", s.handleSaveCallerProfile)
	mux.HandleFunc("GET /api/user/role", s.handleCallerRole)
	mux.HandleFunc("GET /api/user/is-admin", s.handleIsCallerAdmin)
	mux.HandleFunc("GET /api/user/approved", s.handleIsCallerApproved)
	mux.HandleFunc("POST /api/user/approval-request", s.handleRequestApproval)
	mux.HandleFunc("GET /api/users/{principal}/profile", s.handleUserProfile)
	mux.HandleFunc("GET /api/users/{principal}/role", s.handleUserRole)
	mux.HandleFunc("PUT /api/users/{principal}/role", s.handleAssignRole)
	mux.HandleFunc("GET /api/admin-registered", s.handleAdminRegistered)
	mux.HandleFunc("GET /api/approvals", s.handleListApprovals)
	mux.HandleFunc("PUT /api/approvals/{principal}", s.handleSetApproval)

	// Communications and payments gateway
	mux.HandleFunc("GET /api/communications", s.handleListCommunications)
	mux.HandleFunc("POST /api/communications", s.handleLogCommunication)
	mux.HandleFunc("GET /api/stripe/configured", s.handleStripeConfigured)
	mux.HandleFunc("PUT /api/stripe/config", s.handleSetStripeConfig)
	mux.HandleFunc("POST /api/stripe/checkout", s.handleCreateCheckout)
	mux.HandleFunc("GET /api/stripe/sessions/{id}", s.handleStripeSessionStatus)
}

// respond writes v as JSON, or the error when err is non-nil.
func respond(w http.ResponseWriter, r *http.Request, status int, v any, err error) {
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, status, v)
}
