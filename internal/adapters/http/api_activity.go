package web

import (
	"net/http"

	"primefit/internal/application/orchestrators"
)

// handleAttendanceByStatus lists attendance of members in the ?status= membership status.
func (s *server) handleAttendanceByStatus(w http.ResponseWriter, r *http.Request) {
	records, err := s.svc.AttendanceByMemberStatus(r.Context(), s.caller(r), r.URL.Query().Get("status"))
	respond(w, r, http.StatusOK, list(records), err)
}

func (s *server) handleAddAttendance(w http.ResponseWriter, r *http.Request) {
	var input orchestrators.AddAttendanceInput
	if !decode(w, r, &input) {
		return
	}
	rec, err := s.svc.AddAttendance(r.Context(), s.caller(r), input)
	respond(w, r, http.StatusCreated, rec, err)
}

func (s *server) handleCheckIn(w http.ResponseWriter, r *http.Request) {
	rec, err := s.svc.CheckIn(r.Context(), s.caller(r))
	respond(w, r, http.StatusCreated, rec, err)
}

func (s *server) handleCheckOut(w http.ResponseWriter, r *http.Request) {
	rec, err := s.svc.CheckOut(r.Context(), s.caller(r))
	respond(w, r, http.StatusOK, rec, err)
}

// handleScanCheckIn checks in the member a scanned QR code belongs to.
func (s *server) handleScanCheckIn(w http.ResponseWriter, r *http.Request) {
	var body codeBody
	if !decode(w, r, &body) {
		return
	}
	rec, err := s.svc.CheckInByCode(r.Context(), s.caller(r), body.Code)
	respond(w, r, http.StatusCreated, rec, err)
}

func (s *server) handleBookingsByStatus(w http.ResponseWriter, r *http.Request) {
	bookings, err := s.svc.ClassBookingsByStatus(r.Context(), s.caller(r), r.URL.Query().Get("status"))
	respond(w, r, http.StatusOK, list(bookings), err)
}

func (s *server) handleAddBooking(w http.ResponseWriter, r *http.Request) {
	var input orchestrators.AddClassBookingInput
	if !decode(w, r, &input) {
		return
	}
	b, err := s.svc.AddClassBooking(r.Context(), s.caller(r), input)
	respond(w, r, http.StatusCreated, b, err)
}

func (s *server) handleUpdateBooking(w http.ResponseWriter, r *http.Request) {
	var input orchestrators.UpdateClassBookingInput
	if !decode(w, r, &input) {
		return
	}
	input.ID = r.PathValue("id")
	b, err := s.svc.UpdateClassBooking(r.Context(), s.caller(r), input)
	respond(w, r, http.StatusOK, b, err)
}

type memberIDBody struct {
	MemberID int64 `json:"memberId,string"`
}

func (s *server) handleValidateQRCode(w http.ResponseWriter, r *http.Request) {
	var body codeBody
	if !decode(w, r, &body) {
		return
	}
	id, err := s.svc.ValidateQRCode(r.Context(), s.caller(r), body.Code)
	respond(w, r, http.StatusOK, memberIDBody{MemberID: id}, err)
}
