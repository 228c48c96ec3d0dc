package web

import (
	"errors"
	"log/slog"
	"net/http"

	"primefit/internal/adapters/http/middleware"
	"primefit/internal/adapters/qrcode"
	"primefit/internal/application/orchestrators"
	"primefit/internal/application/sessionctx"
	"primefit/internal/domain/fitness"
)

func (s *server) handleListMembers(w http.ResponseWriter, r *http.Request) {
	members, err := s.svc.Members(r.Context(), s.caller(r))
	respond(w, r, http.StatusOK, list(members), err)
}

// handleAddMember creates a member with admin-chosen credentials.
func (s *server) handleAddMember(w http.ResponseWriter, r *http.Request) {
	var input orchestrators.AddMemberInput
	if !decode(w, r, &input) {
		return
	}
	res, err := s.svc.AddMemberWithManualCredentials(r.Context(), s.caller(r), input)
	respond(w, r, http.StatusCreated, res, err)
}

// handleCreateMemberWithCredentials creates a member with generated credentials
// and sends them to the member.
func (s *server) handleCreateMemberWithCredentials(w http.ResponseWriter, r *http.Request) {
	var input orchestrators.CreateMemberInput
	if !decode(w, r, &input) {
		return
	}
	res, err := s.svc.CreateMemberWithCredentials(r.Context(), s.caller(r), input)
	respond(w, r, http.StatusCreated, res, err)
}

func (s *server) handleMinimalMembers(w http.ResponseWriter, r *http.Request) {
	members, err := s.svc.MinimalMembers(r.Context(), s.caller(r))
	respond(w, r, http.StatusOK, list(members), err)
}

func (s *server) handleRegisteredMembers(w http.ResponseWriter, r *http.Request) {
	members, err := s.svc.RegisteredMembers(r.Context(), s.caller(r))
	respond(w, r, http.StatusOK, list(members), err)
}

func (s *server) handleGetMember(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	m, err := s.svc.Member(r.Context(), s.caller(r), id)
	respond(w, r, http.StatusOK, m, err)
}

func (s *server) handleUpdateMember(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var input orchestrators.UpdateMemberInput
	if !decode(w, r, &input) {
		return
	}
	input.ID = id
	m, err := s.svc.UpdateMember(r.Context(), s.caller(r), input)
	respond(w, r, http.StatusOK, m, err)
}

func (s *server) handleDeleteMember(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := s.svc.DeleteMember(r.Context(), s.caller(r), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleUpdateWorkoutPlan replaces a member's workout plan. A null body clears it.
func (s *server) handleUpdateWorkoutPlan(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var plan *fitness.WorkoutPlan
	if !decode(w, r, &plan) {
		return
	}
	m, err := s.svc.UpdateMemberWorkoutPlan(r.Context(), s.caller(r), id, plan)
	respond(w, r, http.StatusOK, m, err)
}

// handleUpdateDietPlan replaces a member's diet plan. A null body clears it.
func (s *server) handleUpdateDietPlan(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var plan *fitness.DietPlan
	if !decode(w, r, &plan) {
		return
	}
	m, err := s.svc.UpdateMemberDietPlan(r.Context(), s.caller(r), id, plan)
	respond(w, r, http.StatusOK, m, err)
}

func (s *server) handleMemberPayments(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	payments, err := s.svc.MemberPayments(r.Context(), s.caller(r), id)
	respond(w, r, http.StatusOK, list(payments), err)
}

func (s *server) handleMemberAttendance(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	records, err := s.svc.MemberAttendance(r.Context(), s.caller(r), id)
	respond(w, r, http.StatusOK, list(records), err)
}

func (s *server) handleMemberBookings(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	bookings, err := s.svc.MemberClassBookings(r.Context(), s.caller(r), id)
	respond(w, r, http.StatusOK, list(bookings), err)
}

func (s *server) handleMemberNotifications(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	notes, err := s.svc.MemberNotifications(r.Context(), s.caller(r), id)
	respond(w, r, http.StatusOK, list(notes), err)
}

type codeBody struct {
	Code string `json:"code"`
}

func (s *server) handleGenerateQRCode(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	code, err := s.svc.GenerateQRCode(r.Context(), s.caller(r), id)
	respond(w, r, http.StatusOK, codeBody{Code: code}, err)
}

func (s *server) handleMemberQRCodePNG(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	code, err := s.svc.GenerateQRCode(r.Context(), s.caller(r), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writePNG(w, code)
}

func (s *server) handleMyProfile(w http.ResponseWriter, r *http.Request) {
	res := s.resolve(r)
	m, err := s.svc.MemberProfile(r.Context(), res.Caller, res.Cached)
	respond(w, r, http.StatusOK, m, err)
}

// handleUpdateMyProfile saves the member's own profile and refreshes the
// session's profile cache when the member signed in with a password.
func (s *server) handleUpdateMyProfile(w http.ResponseWriter, r *http.Request) {
	var input orchestrators.UpdateMemberProfileInput
	if !decode(w, r, &input) {
		return
	}
	ctx := r.Context()
	m, err := s.svc.UpdateMemberProfile(ctx, s.caller(r), input)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if sess, ok := middleware.SessionFromContext(ctx); ok {
		if err := sess.UpdateProfile(ctx, m); err != nil && !errors.Is(err, sessionctx.ErrNotMemberSession) {
			slog.Warn("auth_event", "event", "profile_cache_update_failed", "member_id", m.ID, "error", err)
		}
	}
	writeJSON(w, http.StatusOK, m)
}

func (s *server) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	var input orchestrators.ChangePasswordInput
	if !decode(w, r, &input) {
		return
	}
	if err := s.svc.ChangePassword(r.Context(), s.caller(r), input); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *server) handleMyQRCode(w http.ResponseWriter, r *http.Request) {
	code, err := s.svc.MyQRCode(r.Context(), s.caller(r))
	respond(w, r, http.StatusOK, codeBody{Code: code}, err)
}

func (s *server) handleMyQRCodePNG(w http.ResponseWriter, r *http.Request) {
	code, err := s.svc.MyQRCode(r.Context(), s.caller(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writePNG(w, code)
}

func (s *server) handleMyDashboard(w http.ResponseWriter, r *http.Request) {
	res := s.resolve(r)
	d, err := s.svc.MemberDashboard(r.Context(), res.Caller, res.Cached)
	respond(w, r, http.StatusOK, d, err)
}

func writePNG(w http.ResponseWriter, code string) {
	png, err := qrcode.PNG(code, qrcode.DefaultSize)
	if err != nil {
		internalError(w, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	w.Write(png)
}
