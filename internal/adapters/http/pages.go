package web

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"primefit/internal/adapters/http/middleware"
	"primefit/internal/application/listutil"
	"primefit/internal/application/orchestrators"
	"primefit/internal/application/projections"
	"primefit/internal/domain/account"
	"primefit/internal/domain/identity"
	"primefit/internal/domain/member"
	"primefit/internal/domain/payment"
)

func (s *server) registerPages(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", s.handleHome)
	mux.HandleFunc("GET /login", s.handleLoginForm)
	mux.HandleFunc("POST /login", s.handleLogin)
	mux.HandleFunc("POST /login/dev", s.handleDevLogin)
	mux.HandleFunc("POST /logout", s.handleLogout)
	mux.HandleFunc("POST /profile", s.handleSaveProfile)
	mux.HandleFunc("GET /admin/members", s.handleAdminMembers)
	mux.HandleFunc("GET /admin/payments", s.handleAdminPayments)
	mux.HandleFunc("GET /member/profile", s.handleMemberProfile)
	mux.HandleFunc("POST /member/check-in", s.handleMemberCheckIn)
	mux.HandleFunc("POST /member/check-out", s.handleMemberCheckOut)
	mux.Handle("GET /metrics", s.collector.Handler())
	static := http.FileServerFS(staticFS)
	if s.opts.StaticDir != "" {
		static = http.StripPrefix("/static/", http.FileServer(http.Dir(s.opts.StaticDir)))
	}
	mux.Handle("GET /static/", static)
}

// statusPage is the body of the views that carry only a message.
type statusPage struct {
	Heading string
	Message string
	// Refresh reloads the page after a moment.
	Refresh bool
	// SignOut offers a sign-out button.
	SignOut bool
}

var statusPages = map[identity.View]struct {
	code int
	page statusPage
}{
	identity.ViewLoading: {http.StatusOK, statusPage{
		Heading: "Loading your account",
		Message: "This is taking longer than usual.",
		Refresh: true,
	}},
	identity.ViewConnectionError: {http.StatusServiceUnavailable, statusPage{
		Heading: "Connection problem",
		Message: "We could not reach Prime Fit. Please try again shortly.",
		Refresh: true,
	}},
	identity.ViewMemberProfileNotFound: {http.StatusNotFound, statusPage{
		Heading: "Member profile not found",
		Message: "Your membership record could not be found. Please contact the front desk.",
		SignOut: true,
	}},
	identity.ViewProfileError: {http.StatusServiceUnavailable, statusPage{
		Heading: "Could not load your profile",
		Message: "Something went wrong while loading your account.",
		Refresh: true,
		SignOut: true,
	}},
	identity.ViewAccessDenied: {http.StatusForbidden, statusPage{
		Heading: "Access denied",
		Message: "Your account has not been granted access yet. Ask an administrator to approve it.",
		SignOut: true,
	}},
}

// handleHome renders whatever the request's identity resolves to.
func (s *server) handleHome(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	res := s.resolve(r)
	switch res.View {
	case identity.ViewLogin:
		renderTemplate(w, http.StatusOK, "login.html", s.page(r, "Sign in", res, nil))
	case identity.ViewNoProfile:
		renderTemplate(w, http.StatusOK, "no_profile.html", s.page(r, "Create your profile", res, nil))
	case identity.ViewMemberDashboard:
		d, err := s.svc.MemberDashboard(ctx, res.Caller, res.Cached)
		if err != nil {
			s.pageError(w, r, res, err)
			return
		}
		renderTemplate(w, http.StatusOK, "member_dashboard.html", s.page(r, "Dashboard", res, d))
	case identity.ViewAdminDashboard:
		d, err := s.svc.AdminDashboard(ctx, res.Caller)
		if err != nil {
			s.pageError(w, r, res, err)
			return
		}
		renderTemplate(w, http.StatusOK, "admin_dashboard.html", s.page(r, "Admin dashboard", res, d))
	default:
		sp, ok := statusPages[res.View]
		if !ok {
			internalError(w, errors.New("unhandled view "+res.View.String()))
			return
		}
		renderTemplate(w, sp.code, "status.html", s.page(r, sp.page.Heading, res, sp.page))
	}
}

func guestIdentity() projections.IdentityResult {
	return projections.IdentityResult{Caller: account.Guest()}
}

// pageError renders err on the status page.
func (s *server) pageError(w http.ResponseWriter, r *http.Request, res projections.IdentityResult, err error) {
	code := statusFor(err)
	if code == http.StatusInternalServerError {
		internalError(w, err)
		return
	}
	sp := statusPage{Heading: http.StatusText(code), Message: err.Error(), SignOut: code == http.StatusForbidden}
	renderTemplate(w, code, "status.html", s.page(r, sp.Heading, res, sp))
}

func (s *server) handleLoginForm(w http.ResponseWriter, r *http.Request) {
	res := s.resolve(r)
	if res.View != identity.ViewLogin {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	renderTemplate(w, http.StatusOK, "login.html", s.page(r, "Sign in", res, nil))
}

// handleLogin signs a member in from the login form.
func (s *server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}
	email := strings.TrimSpace(r.FormValue("email"))
	if _, err := s.loginMember(w, r, email, r.FormValue("password")); err != nil {
		if !errors.Is(err, orchestrators.ErrInvalidCredentials) {
			internalError(w, err)
			return
		}
		data := s.page(r, "Sign in", guestIdentity(), map[string]string{"Email": email})
		data.Error = err.Error()
		renderTemplate(w, http.StatusUnauthorized, "login.html", data)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// handleDevLogin stands in for the external identity provider outside
// production: it mints a delegation token for the submitted name.
func (s *server) handleDevLogin(w http.ResponseWriter, r *http.Request) {
	if !s.opts.DevLogin {
		http.NotFound(w, r)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}
	anchor := strings.TrimSpace(r.FormValue("anchor"))
	if anchor == "" {
		data := s.page(r, "Sign in", guestIdentity(), nil)
		data.Error = "Enter an identity name"
		renderTemplate(w, http.StatusBadRequest, "login.html", data)
		return
	}
	ctx := r.Context()
	p, token, expires, err := s.signer.MintForAnchor(anchor)
	if err != nil {
		internalError(w, err)
		return
	}
	if sess, ok := middleware.SessionFromContext(ctx); ok {
		if err := sess.Invalidate(ctx); err != nil {
			internalError(w, err)
			return
		}
	}
	middleware.SetIdentityCookie(w, token, expires)
	slog.Info("auth_event", "event", "identity_login", "principal", p.String())
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if err := s.logout(w, r); err != nil {
		internalError(w, err)
		return
	}
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

// handleSaveProfile saves the identity provider user's own profile.
func (s *server) handleSaveProfile(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}
	res := s.resolve(r)
	input := orchestrators.SaveUserProfileInput{
		Name:    strings.TrimSpace(r.FormValue("name")),
		Email:   strings.TrimSpace(r.FormValue("email")),
		AppRole: r.FormValue("role"),
	}
	if _, err := s.svc.SaveCallerUserProfile(r.Context(), res.Caller, input); err != nil {
		code := statusFor(err)
		if code == http.StatusInternalServerError {
			internalError(w, err)
			return
		}
		data := s.page(r, "Create your profile", res, input)
		data.Error = err.Error()
		renderTemplate(w, code, "no_profile.html", data)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

var memberColumns = []string{"name", "email", "status", "end"}

var memberListSpec = listutil.Spec[member.Member]{
	Text: func(m member.Member) string { return m.Name + " " + m.Email + " " + m.Phone },
	Filter: func(m member.Member, status string) bool {
		return m.MembershipStatus == status
	},
	Less: map[string]func(a, b member.Member) bool{
		"name":   func(a, b member.Member) bool { return strings.ToLower(a.Name) < strings.ToLower(b.Name) },
		"email":  func(a, b member.Member) bool { return a.Email < b.Email },
		"status": func(a, b member.Member) bool { return a.MembershipStatus < b.MembershipStatus },
		"end":    func(a, b member.Member) bool { return a.EndDate.Before(b.EndDate) },
	},
}

// listPage is the body of the admin list pages.
type listPage[T any] struct {
	Rows    []T
	Info    listutil.PageInfo
	Params  listutil.Params
	Filters []string
}

func (s *server) handleAdminMembers(w http.ResponseWriter, r *http.Request) {
	res := s.resolve(r)
	members, err := s.svc.Members(r.Context(), res.Caller)
	if err != nil {
		s.pageError(w, r, res, err)
		return
	}
	params := listutil.Parse(r.URL.Query(), memberColumns)
	rows, info := listutil.Apply(members, params, memberListSpec)
	renderTemplate(w, http.StatusOK, "admin_members.html", s.page(r, "Members", res, listPage[member.Member]{
		Rows:    rows,
		Info:    info,
		Params:  params,
		Filters: []string{member.StatusActive, member.StatusPending, member.StatusExpired},
	}))
}

// paymentRow is a payment with its member's name.
type paymentRow struct {
	payment.Payment
	MemberName string
}

var paymentColumns = []string{"date", "amount", "status", "member"}

var paymentListSpec = listutil.Spec[paymentRow]{
	Text: func(p paymentRow) string { return p.MemberName + " " + p.ID },
	Filter: func(p paymentRow, status string) bool {
		return p.Status == status
	},
	Less: map[string]func(a, b paymentRow) bool{
		"date":   func(a, b paymentRow) bool { return a.Timestamp.Before(b.Timestamp) },
		"amount": func(a, b paymentRow) bool { return a.Amount < b.Amount },
		"status": func(a, b paymentRow) bool { return a.Status < b.Status },
		"member": func(a, b paymentRow) bool { return strings.ToLower(a.MemberName) < strings.ToLower(b.MemberName) },
	},
}

func (s *server) handleAdminPayments(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	res := s.resolve(r)
	payments, err := s.svc.Payments(ctx, res.Caller)
	if err != nil {
		s.pageError(w, r, res, err)
		return
	}
	names, err := s.svc.MinimalMembers(ctx, res.Caller)
	if err != nil {
		s.pageError(w, r, res, err)
		return
	}
	byID := make(map[int64]string, len(names))
	for _, m := range names {
		byID[m.ID] = m.Name
	}
	all := make([]paymentRow, 0, len(payments))
	for _, p := range payments {
		all = append(all, paymentRow{Payment: p, MemberName: byID[p.MemberID]})
	}
	params := listutil.Parse(r.URL.Query(), paymentColumns)
	rows, info := listutil.Apply(all, params, paymentListSpec)
	renderTemplate(w, http.StatusOK, "admin_payments.html", s.page(r, "Payments", res, listPage[paymentRow]{
		Rows:    rows,
		Info:    info,
		Params:  params,
		Filters: []string{payment.StatusPaid, payment.StatusPending, payment.StatusFailed},
	}))
}

func (s *server) handleMemberProfile(w http.ResponseWriter, r *http.Request) {
	res := s.resolve(r)
	m, err := s.svc.MemberProfile(r.Context(), res.Caller, res.Cached)
	if err != nil {
		s.pageError(w, r, res, err)
		return
	}
	renderTemplate(w, http.StatusOK, "member_profile.html", s.page(r, "My profile", res, m))
}

func (s *server) handleMemberCheckIn(w http.ResponseWriter, r *http.Request) {
	_, err := s.svc.CheckIn(r.Context(), s.caller(r))
	s.afterVisitAction(w, r, "Checked in", err)
}

func (s *server) handleMemberCheckOut(w http.ResponseWriter, r *http.Request) {
	_, err := s.svc.CheckOut(r.Context(), s.caller(r))
	s.afterVisitAction(w, r, "Checked out", err)
}

// afterVisitAction sends browsers back to the dashboard with a notice.
func (s *server) afterVisitAction(w http.ResponseWriter, r *http.Request, done string, err error) {
	if !isHTMLRequest(r) {
		if err != nil {
			writeError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
		return
	}
	notice := done
	if err != nil {
		if statusFor(err) == http.StatusInternalServerError {
			internalError(w, err)
			return
		}
		notice = err.Error()
	}
	http.Redirect(w, r, "/?notice="+url.QueryEscape(notice), http.StatusSeeOther)
}
