package web

import (
	"net/http"

	"primefit/internal/application/orchestrators"
	"primefit/internal/domain/membership"
	"primefit/internal/domain/payment"
)

func (s *server) handleListPlans(w http.ResponseWriter, r *http.Request) {
	plans, err := s.svc.MembershipPlans(r.Context(), s.caller(r))
	respond(w, r, http.StatusOK, list(plans), err)
}

func (s *server) handleAddPlan(w http.ResponseWriter, r *http.Request) {
	var p membership.Plan
	if !decode(w, r, &p) {
		return
	}
	p, err := s.svc.AddMembershipPlan(r.Context(), s.caller(r), p)
	respond(w, r, http.StatusCreated, p, err)
}

func (s *server) handleGetPlan(w http.ResponseWriter, r *http.Request) {
	p, err := s.svc.MembershipPlan(r.Context(), s.caller(r), r.PathValue("id"))
	respond(w, r, http.StatusOK, p, err)
}

func (s *server) handleUpdatePlan(w http.ResponseWriter, r *http.Request) {
	var p membership.Plan
	if !decode(w, r, &p) {
		return
	}
	p.ID = r.PathValue("id")
	p, err := s.svc.UpdateMembershipPlan(r.Context(), s.caller(r), p)
	respond(w, r, http.StatusOK, p, err)
}

func (s *server) handleDeletePlan(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.DeleteMembershipPlan(r.Context(), s.caller(r), r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *server) handleListPayments(w http.ResponseWriter, r *http.Request) {
	payments, err := s.svc.Payments(r.Context(), s.caller(r))
	respond(w, r, http.StatusOK, list(payments), err)
}

func (s *server) handleAddPayment(w http.ResponseWriter, r *http.Request) {
	var input orchestrators.AddPaymentInput
	if !decode(w, r, &input) {
		return
	}
	p, err := s.svc.AddPayment(r.Context(), s.caller(r), input)
	respond(w, r, http.StatusCreated, p, err)
}

// handleAddPaymentByIdentifier records a payment for the member whose id or
// email matches the identifier.
func (s *server) handleAddPaymentByIdentifier(w http.ResponseWriter, r *http.Request) {
	var input orchestrators.AddPaymentByIdentifierInput
	if !decode(w, r, &input) {
		return
	}
	p, err := s.svc.AddPaymentByIdentifier(r.Context(), s.caller(r), input)
	respond(w, r, http.StatusCreated, p, err)
}

func (s *server) handleGetPayment(w http.ResponseWriter, r *http.Request) {
	p, err := s.svc.Payment(r.Context(), s.caller(r), r.PathValue("id"))
	respond(w, r, http.StatusOK, p, err)
}

func (s *server) handleUpdatePayment(w http.ResponseWriter, r *http.Request) {
	var p payment.Payment
	if !decode(w, r, &p) {
		return
	}
	p.ID = r.PathValue("id")
	p, err := s.svc.UpdatePayment(r.Context(), s.caller(r), p)
	respond(w, r, http.StatusOK, p, err)
}

func (s *server) handleDeletePayment(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.DeletePayment(r.Context(), s.caller(r), r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	expenses, err := s.svc.Expenses(r.Context(), s.caller(r))
	respond(w, r, http.StatusOK, list(expenses), err)
}

func (s *server) handleAddExpense(w http.ResponseWriter, r *http.Request) {
	var input orchestrators.AddExpenseInput
	if !decode(w, r, &input) {
		return
	}
	e, err := s.svc.AddExpense(r.Context(), s.caller(r), input)
	respond(w, r, http.StatusCreated, e, err)
}

func (s *server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.DeleteExpense(r.Context(), s.caller(r), r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *server) handleReports(w http.ResponseWriter, r *http.Request) {
	sum, err := s.svc.Reports(r.Context(), s.caller(r))
	respond(w, r, http.StatusOK, sum, err)
}

func (s *server) handleAdminDashboard(w http.ResponseWriter, r *http.Request) {
	d, err := s.svc.AdminDashboard(r.Context(), s.caller(r))
	respond(w, r, http.StatusOK, d, err)
}

type configuredBody struct {
	Configured bool `json:"configured"`
}

func (s *server) handleStripeConfigured(w http.ResponseWriter, r *http.Request) {
	ok, err := s.svc.IsStripeConfigured(r.Context())
	respond(w, r, http.StatusOK, configuredBody{Configured: ok}, err)
}

func (s *server) handleSetStripeConfig(w http.ResponseWriter, r *http.Request) {
	var input orchestrators.SetStripeConfigurationInput
	if !decode(w, r, &input) {
		return
	}
	if err := s.svc.SetStripeConfiguration(r.Context(), s.caller(r), input); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *server) handleCreateCheckout(w http.ResponseWriter, r *http.Request) {
	var input orchestrators.CheckoutInput
	if !decode(w, r, &input) {
		return
	}
	sess, err := s.svc.CreateCheckoutSession(r.Context(), s.caller(r), input)
	respond(w, r, http.StatusCreated, sess, err)
}

func (s *server) handleStripeSessionStatus(w http.ResponseWriter, r *http.Request) {
	st, err := s.svc.StripeSessionStatus(r.Context(), s.caller(r), r.PathValue("id"))
	respond(w, r, http.StatusOK, st, err)
}
