package web

import (
	"log/slog"
	"net/http"

	"primefit/internal/adapters/http/middleware"
	"primefit/internal/application/orchestrators"
	"primefit/internal/domain/account"
	"primefit/internal/domain/member"
	"primefit/internal/domain/principal"
)

type loginBody struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// handleAPILogin signs a member in with email and password and stores the
// member records in the request's session.
func (s *server) handleAPILogin(w http.ResponseWriter, r *http.Request) {
	var body loginBody
	if !decode(w, r, &body) {
		return
	}
	m, err := s.loginMember(w, r, body.Email, body.Password)
	respond(w, r, http.StatusOK, m, err)
}

// loginMember checks credentials and binds the member to the session. Any
// identity provider handle is dropped so the member mode applies.
func (s *server) loginMember(w http.ResponseWriter, r *http.Request, email, password string) (member.Member, error) {
	ctx := r.Context()
	m, err := s.svc.MemberLogin(ctx, orchestrators.MemberLoginInput{Email: email, Password: password})
	if err != nil {
		return member.Member{}, err
	}
	sess, ok := middleware.SessionFromContext(ctx)
	if !ok {
		return member.Member{}, errNoSession
	}
	if err := sess.CreateMember(ctx, m); err != nil {
		return member.Member{}, err
	}
	middleware.ClearIdentityCookie(w)
	slog.Info("auth_event", "event", "member_login", "member_id", m.ID)
	return m, nil
}

// logout removes both identity handles.
func (s *server) logout(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()
	middleware.ClearIdentityCookie(w)
	if sess, ok := middleware.SessionFromContext(ctx); ok {
		if err := sess.Invalidate(ctx); err != nil {
			return err
		}
	}
	slog.Info("auth_event", "event", "logout")
	return nil
}

func (s *server) handleAPILogout(w http.ResponseWriter, r *http.Request) {
	if err := s.logout(w, r); err != nil {
		internalError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type identityBody struct {
	View      string               `json:"view"`
	Mode      string               `json:"mode"`
	Role      string               `json:"role"`
	Principal *principal.Principal `json:"principal,omitempty"`
	MemberID  int64                `json:"memberId,string,omitempty"`
	Profile   *account.UserProfile `json:"profile,omitempty"`
	Member    *member.Member       `json:"member,omitempty"`
}

// handleIdentity reports what the request resolves to.
func (s *server) handleIdentity(w http.ResponseWriter, r *http.Request) {
	res := s.resolve(r)
	body := identityBody{
		View:     res.View.String(),
		Mode:     res.Mode.String(),
		Role:     res.Caller.Role,
		MemberID: res.Caller.MemberID,
		Profile:  res.Profile,
		Member:   res.Member,
	}
	if !res.Caller.Principal.IsAnonymous() {
		p := res.Caller.Principal
		body.Principal = &p
	}
	writeJSON(w, http.StatusOK, body)
}

func (s *server) handleCallerProfile(w http.ResponseWriter, r *http.Request) {
	p, err := s.svc.CallerUserProfile(r.Context(), s.caller(r))
	respond(w, r, http.StatusOK, p, err)
}

func (s *server) handleSaveCallerProfile(w http.ResponseWriter, r *http.Request) {
	var input orchestrators.SaveUserProfileInput
	if !decode(w, r, &input) {
		return
	}
	res, err := s.svc.SaveCallerUserProfile(r.Context(), s.caller(r), input)
	respond(w, r, http.StatusOK, res, err)
}

type roleBody struct {
	Role string `json:"role"`
}

type flagBody struct {
	Value bool `json:"value"`
}

func (s *server) handleCallerRole(w http.ResponseWriter, r *http.Request) {
	role, err := s.svc.CallerUserRole(r.Context(), s.caller(r))
	respond(w, r, http.StatusOK, roleBody{Role: role}, err)
}

func (s *server) handleIsCallerAdmin(w http.ResponseWriter, r *http.Request) {
	ok, err := s.svc.IsCallerAdmin(r.Context(), s.caller(r))
	respond(w, r, http.StatusOK, flagBody{Value: ok}, err)
}

func (s *server) handleIsCallerApproved(w http.ResponseWriter, r *http.Request) {
	ok, err := s.svc.IsCallerApproved(r.Context(), s.caller(r))
	respond(w, r, http.StatusOK, flagBody{Value: ok}, err)
}

func (s *server) handleRequestApproval(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.RequestApproval(r.Context(), s.caller(r)); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

func (s *server) handleAdminRegistered(w http.ResponseWriter, r *http.Request) {
	ok, err := s.svc.IsAdminRegistered(r.Context())
	respond(w, r, http.StatusOK, flagBody{Value: ok}, err)
}

// pathPrincipal parses the principal path value.
func pathPrincipal(w http.ResponseWriter, r *http.Request) (principal.Principal, bool) {
	p, err := principal.FromText(r.PathValue("principal"))
	if err != nil {
		badRequest(w, "invalid principal: "+err.Error())
		return principal.Principal{}, false
	}
	return p, true
}

func (s *server) handleUserProfile(w http.ResponseWriter, r *http.Request) {
	target, ok := pathPrincipal(w, r)
	if !ok {
		return
	}
	p, err := s.svc.UserProfile(r.Context(), s.caller(r), target)
	respond(w, r, http.StatusOK, p, err)
}

func (s *server) handleUserRole(w http.ResponseWriter, r *http.Request) {
	target, ok := pathPrincipal(w, r)
	if !ok {
		return
	}
	role, err := s.svc.UserRole(r.Context(), s.caller(r), target)
	respond(w, r, http.StatusOK, roleBody{Role: role}, err)
}

func (s *server) handleAssignRole(w http.ResponseWriter, r *http.Request) {
	target, ok := pathPrincipal(w, r)
	if !ok {
		return
	}
	var body roleBody
	if !decode(w, r, &body) {
		return
	}
	if err := s.svc.AssignRole(r.Context(), s.caller(r), target, body.Role); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *server) handleListApprovals(w http.ResponseWriter, r *http.Request) {
	approvals, err := s.svc.Approvals(r.Context(), s.caller(r))
	respond(w, r, http.StatusOK, list(approvals), err)
}

type approvalBody struct {
	Status string `json:"status"`
}

func (s *server) handleSetApproval(w http.ResponseWriter, r *http.Request) {
	target, ok := pathPrincipal(w, r)
	if !ok {
		return
	}
	var body approvalBody
	if !decode(w, r, &body) {
		return
	}
	a := account.Approval{Principal: target, Status: body.Status}
	if err := s.svc.SetApproval(r.Context(), s.caller(r), a); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleListCommunications lists the communication log, narrowed to one
// recipient with ?email=.
func (s *server) handleListCommunications(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller := s.caller(r)
	if email := r.URL.Query().Get("email"); email != "" {
		logs, err := s.svc.CommunicationLogsByEmail(ctx, caller, email)
		respond(w, r, http.StatusOK, list(logs), err)
		return
	}
	logs, err := s.svc.CommunicationLogs(ctx, caller)
	respond(w, r, http.StatusOK, list(logs), err)
}

func (s *server) handleLogCommunication(w http.ResponseWriter, r *http.Request) {
	var input orchestrators.LogCommunicationInput
	if !decode(w, r, &input) {
		return
	}
	e, err := s.svc.LogCommunication(r.Context(), s.caller(r), input)
	respond(w, r, http.StatusCreated, e, err)
}
