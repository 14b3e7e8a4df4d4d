package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/clinichub/clinic-api/internal/auth"
	"github.com/clinichub/clinic-api/internal/clinic"
	"github.com/clinichub/clinic-api/internal/redisclient"
)

var validate = validator.New()

// Availability

func appointmentOptionsHandler(svc *clinic.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		date := r.URL.Query().Get("date")

		options, err := svc.AvailableOptions(r.Context(), date)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
			return
		}

		writeJSON(w, http.StatusOK, options)
	}
}

func treatmentNamesHandler(svc *clinic.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		names, err := svc.TreatmentNames(r.Context())
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
			return
		}

		resp := make([]TreatmentNameResponse, 0, len(names))
		for _, name := range names {
			resp = append(resp, TreatmentNameResponse{Name: name})
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

// Bookings

func createBookingHandler(svc *clinic.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreateBookingRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}
		if err := validate.Struct(req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_booking", err.Error())
			return
		}

		candidate := clinic.Booking{
			AppointmentDate: req.AppointmentDate,
			Email:           req.Email,
			Treatment:       req.Treatment,
			Slot:            req.Slot,
			PatientName:     req.PatientName,
			Phone:           req.Phone,
		}

		ack, err := svc.CreateBooking(r.Context(), candidate)
		if err != nil {
			handleBookingError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, ack)
	}
}

func handleBookingError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, clinic.ErrDuplicateBooking):
		// A duplicate is a normal outcome for the caller, not a failure.
		writeJSON(w, http.StatusOK, clinic.WriteAck{
			Acknowledged: false,
			Message:      err.Error(),
		})
	case errors.Is(err, clinic.ErrUnknownTreatment):
		writeError(w, http.StatusNotFound, "treatment_not_found", err.Error())
	case errors.Is(err, clinic.ErrSlotUnknown):
		writeError(w, http.StatusConflict, "slot_not_offered", err.Error())
	case errors.Is(err, clinic.ErrSlotTaken):
		writeError(w, http.StatusConflict, "slot_already_booked", err.Error())
	case errors.Is(err, redisclient.ErrLockNotAcquired):
		writeError(w, http.StatusConflict, "slot_being_booked", "slot is currently being booked, please retry shortly")
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
	}
}

func listBookingsHandler(svc *clinic.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		email := r.URL.Query().Get("email")

		// The token identity must match the patient being queried.
		if email != auth.EmailFromContext(r.Context()) {
			writeError(w, http.StatusForbidden, "forbidden", "token does not match requested email")
			return
		}

		bookings, err := svc.BookingsForPatient(r.Context(), email)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
			return
		}

		writeJSON(w, http.StatusOK, bookings)
	}
}

// Tokens

func issueTokenHandler(svc *clinic.Service, issuer *auth.TokenIssuer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		email := r.URL.Query().Get("email")

		exists, err := svc.UserExists(r.Context(), email)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
			return
		}
		if !exists {
			writeJSON(w, http.StatusForbidden, AccessTokenResponse{AccessToken: ""})
			return
		}

		token, err := issuer.Issue(email)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
			return
		}

		writeJSON(w, http.StatusOK, AccessTokenResponse{AccessToken: token})
	}
}

// Users

func createUserHandler(svc *clinic.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreateUserRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}
		if err := validate.Struct(req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_user", err.Error())
			return
		}

		ack, err := svc.CreateUser(r.Context(), clinic.User{
			Name:  req.Name,
			Email: req.Email,
			Role:  clinic.Role(req.Role),
		})
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
			return
		}

		writeJSON(w, http.StatusOK, ack)
	}
}

func listUsersHandler(svc *clinic.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		users, err := svc.Users(r.Context())
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
			return
		}
		writeJSON(w, http.StatusOK, users)
	}
}

func promoteUserHandler(svc *clinic.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		ack, err := svc.PromoteToAdmin(r.Context(), id)
		if err != nil {
			if errors.Is(err, clinic.ErrBadRecordID) {
				writeError(w, http.StatusBadRequest, "invalid_record_id", "id must be a valid object id")
				return
			}
			writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
			return
		}

		writeJSON(w, http.StatusOK, ack)
	}
}

func adminCheckHandler(svc *clinic.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		email := chi.URLParam(r, "email")

		isAdmin, err := svc.HasRole(r.Context(), email, clinic.RoleAdmin)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
			return
		}

		writeJSON(w, http.StatusOK, AdminCheckResponse{IsAdmin: isAdmin})
	}
}

func doctorCheckHandler(svc *clinic.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		email := chi.URLParam(r, "email")

		isDoctor, err := svc.HasRole(r.Context(), email, clinic.RoleDoctor)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
			return
		}

		writeJSON(w, http.StatusOK, DoctorCheckResponse{IsDoctor: isDoctor})
	}
}

// Doctors

func createDoctorHandler(svc *clinic.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreateDoctorRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}
		if err := validate.Struct(req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_doctor", err.Error())
			return
		}

		ack, err := svc.AddDoctor(r.Context(), clinic.Doctor{
			Name:      req.Name,
			Email:     req.Email,
			Specialty: req.Specialty,
		})
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
			return
		}

		writeJSON(w, http.StatusOK, ack)
	}
}

func listDoctorsHandler(svc *clinic.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		doctors, err := svc.Doctors(r.Context())
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
			return
		}
		writeJSON(w, http.StatusOK, doctors)
	}
}

func deleteDoctorHandler(svc *clinic.Service) http.HandlerFunc {
	return deleteHandler(func(r *http.Request, id string) (clinic.WriteAck, error) {
		return svc.RemoveDoctor(r.Context(), id)
	})
}

// Prescriptions

func createPrescriptionHandler(svc *clinic.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreatePrescriptionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}
		if err := validate.Struct(req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_prescription", err.Error())
			return
		}

		ack, err := svc.AddPrescription(r.Context(), clinic.Prescription{
			Email:    req.Email,
			Medicine: req.Medicine,
			Dosage:   req.Dosage,
			Notes:    req.Notes,
		})
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
			return
		}

		writeJSON(w, http.StatusOK, ack)
	}
}

func listPrescriptionsHandler(svc *clinic.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		prescriptions, err := svc.PrescriptionsForPatient(r.Context(), r.URL.Query().Get("email"))
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
			return
		}
		writeJSON(w, http.StatusOK, prescriptions)
	}
}

func deletePrescriptionHandler(svc *clinic.Service) http.HandlerFunc {
	return deleteHandler(func(r *http.Request, id string) (clinic.WriteAck, error) {
		return svc.RemovePrescription(r.Context(), id)
	})
}

// Reports

func createReportHandler(svc *clinic.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreateReportRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}
		if err := validate.Struct(req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_report", err.Error())
			return
		}

		ack, err := svc.AddReport(r.Context(), clinic.Report{
			Email: req.Email,
			Title: req.Title,
			Link:  req.Link,
		})
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
			return
		}

		writeJSON(w, http.StatusOK, ack)
	}
}

func listReportsHandler(svc *clinic.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		reports, err := svc.ReportsForPatient(r.Context(), r.URL.Query().Get("email"))
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
			return
		}
		writeJSON(w, http.StatusOK, reports)
	}
}

func deleteReportHandler(svc *clinic.Service) http.HandlerFunc {
	return deleteHandler(func(r *http.Request, id string) (clinic.WriteAck, error) {
		return svc.RemoveReport(r.Context(), id)
	})
}

// deleteHandler maps the shared delete outcomes: bad ids are client
// errors, a missing record is 404, and any store failure surfaces as a
// fixed-message 500.
func deleteHandler(remove func(r *http.Request, id string) (clinic.WriteAck, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		ack, err := remove(r, id)
		if err != nil {
			handleRecordError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, ack)
	}
}

func handleRecordError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, clinic.ErrBadRecordID):
		writeError(w, http.StatusBadRequest, "invalid_record_id", "id must be a valid object id")
	case errors.Is(err, clinic.ErrRecordNotFound):
		writeError(w, http.StatusNotFound, "record_not_found", "no record with this id")
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", "failed to delete record")
	}
}
