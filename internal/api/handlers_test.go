package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/clinichub/clinic-api/internal/auth"
	"github.com/clinichub/clinic-api/internal/clinic"
)

// stubRepo serves canned collections so router tests exercise the full
// handler chain without a live store.
type stubRepo struct {
	catalog  []clinic.AppointmentOption
	bookings []clinic.Booking
	users    []clinic.User
	doctors  []clinic.Doctor

	insertedBookings []clinic.Booking
}

func (s *stubRepo) ListAppointmentOptions(ctx context.Context) ([]clinic.AppointmentOption, error) {
	return s.catalog, nil
}

func (s *stubRepo) ListBookingsByDate(ctx context.Context, date string) ([]clinic.Booking, error) {
	var out []clinic.Booking
	for _, b := range s.bookings {
		if b.AppointmentDate == date {
			out = append(out, b)
		}
	}
	return out, nil
}

func (s *stubRepo) ListBookingsByEmail(ctx context.Context, email string) ([]clinic.Booking, error) {
	var out []clinic.Booking
	for _, b := range s.bookings {
		if b.Email == email {
			out = append(out, b)
		}
	}
	return out, nil
}

func (s *stubRepo) FindBookingTriple(ctx context.Context, date, email, treatment string) ([]clinic.Booking, error) {
	var out []clinic.Booking
	for _, b := range s.bookings {
		if b.AppointmentDate == date && b.Email == email && b.Treatment == treatment {
			out = append(out, b)
		}
	}
	return out, nil
}

func (s *stubRepo) InsertBooking(ctx context.Context, b clinic.Booking) (clinic.WriteAck, error) {
	s.insertedBookings = append(s.insertedBookings, b)
	s.bookings = append(s.bookings, b)
	return clinic.WriteAck{Acknowledged: true, InsertedID: "stub-id"}, nil
}

func (s *stubRepo) InsertUser(ctx context.Context, u clinic.User) (clinic.WriteAck, error) {
	s.users = append(s.users, u)
	return clinic.WriteAck{Acknowledged: true}, nil
}

func (s *stubRepo) ListUsers(ctx context.Context) ([]clinic.User, error) {
	return s.users, nil
}

func (s *stubRepo) FindUserByEmail(ctx context.Context, email string) (*clinic.User, error) {
	for i := range s.users {
		if s.users[i].Email == email {
			return &s.users[i], nil
		}
	}
	return nil, clinic.ErrUserNotFound
}

func (s *stubRepo) PromoteUserToAdmin(ctx context.Context, id string) (clinic.WriteAck, error) {
	return clinic.WriteAck{Acknowledged: true}, nil
}

func (s *stubRepo) InsertDoctor(ctx context.Context, d clinic.Doctor) (clinic.WriteAck, error) {
	s.doctors = append(s.doctors, d)
	return clinic.WriteAck{Acknowledged: true}, nil
}

func (s *stubRepo) ListDoctors(ctx context.Context) ([]clinic.Doctor, error) {
	return s.doctors, nil
}

func (s *stubRepo) DeleteDoctor(ctx context.Context, id string) (clinic.WriteAck, error) {
	if len(id) != 24 {
		return clinic.WriteAck{}, clinic.ErrBadRecordID
	}
	return clinic.WriteAck{Acknowledged: true}, nil
}

func (s *stubRepo) InsertPrescription(ctx context.Context, p clinic.Prescription) (clinic.WriteAck, error) {
	return clinic.WriteAck{Acknowledged: true}, nil
}

func (s *stubRepo) ListPrescriptionsByEmail(ctx context.Context, email string) ([]clinic.Prescription, error) {
	return nil, nil
}

func (s *stubRepo) DeletePrescription(ctx context.Context, id string) (clinic.WriteAck, error) {
	return clinic.WriteAck{}, clinic.ErrRecordNotFound
}

func (s *stubRepo) InsertReport(ctx context.Context, r clinic.Report) (clinic.WriteAck, error) {
	return clinic.WriteAck{Acknowledged: true}, nil
}

func (s *stubRepo) ListReportsByEmail(ctx context.Context, email string) ([]clinic.Report, error) {
	return []clinic.Report{{Email: email, Title: "blood work"}}, nil
}

func (s *stubRepo) DeleteReport(ctx context.Context, id string) (clinic.WriteAck, error) {
	return clinic.WriteAck{Acknowledged: true}, nil
}

type passLocker struct{}

func (passLocker) WithSlotLock(ctx context.Context, key string, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func newTestRouter(repo *stubRepo) (http.Handler, *auth.TokenIssuer) {
	issuer := auth.NewTokenIssuer("test-secret", time.Hour)
	svc := clinic.NewService(repo, passLocker{}, zap.NewNop())

	router := NewRouter(RouterConfig{
		Service: svc,
		Issuer:  issuer,
		Log:     zap.NewNop(),
		Env:     "test",
		Version: "test",
	})
	return router, issuer
}

func seededRepo() *stubRepo {
	return &stubRepo{
		catalog: []clinic.AppointmentOption{
			{Name: "Checkup", Price: 30, Slots: []string{"9am", "10am"}},
		},
		bookings: []clinic.Booking{
			{AppointmentDate: "2024-01-05", Email: "a@x.com", Treatment: "Checkup", Slot: "9am"},
		},
		users: []clinic.User{
			{Email: "admin@x.com", Role: clinic.RoleAdmin},
			{Email: "a@x.com", Role: clinic.RolePatient},
		},
	}
}

func TestLivenessRoot(t *testing.T) {
	router, _ := newTestRouter(seededRepo())

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "clinic api is running", rec.Body.String())
}

func TestAppointmentOptionsNarrowsSlots(t *testing.T) {
	router, _ := newTestRouter(seededRepo())

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/appointmentOptions?date=2024-01-05", nil))

	assert.Equal(t, http.StatusOK, rec.Code)

	var options []clinic.AppointmentOption
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &options))
	assert.Len(t, options, 1)
	assert.Equal(t, []string{"10am"}, options[0].Slots)
}

func TestAppointmentOptionsOtherDateUnchanged(t *testing.T) {
	router, _ := newTestRouter(seededRepo())

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/appointmentOptions?date=2024-02-01", nil))

	var options []clinic.AppointmentOption
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &options))
	assert.Equal(t, []string{"9am", "10am"}, options[0].Slots)
}

func TestTreatmentNames(t *testing.T) {
	router, _ := newTestRouter(seededRepo())

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/appointmentSpecialty", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[{"name":"Checkup"}]`, rec.Body.String())
}

func postJSON(router http.Handler, path string, body any) *httptest.ResponseRecorder {
	raw, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestCreateBooking(t *testing.T) {
	t.Run("accepted", func(t *testing.T) {
		repo := seededRepo()
		router, _ := newTestRouter(repo)

		rec := postJSON(router, "/bookings", CreateBookingRequest{
			AppointmentDate: "2024-01-05",
			Email:           "b@x.com",
			Treatment:       "Checkup",
			Slot:            "10am",
		})

		assert.Equal(t, http.StatusOK, rec.Code)

		var ack clinic.WriteAck
		assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &ack))
		assert.True(t, ack.Acknowledged)
		assert.Len(t, repo.insertedBookings, 1)
	})

	t.Run("duplicate triple reported without persisting", func(t *testing.T) {
		repo := seededRepo()
		router, _ := newTestRouter(repo)

		rec := postJSON(router, "/bookings", CreateBookingRequest{
			AppointmentDate: "2024-01-05",
			Email:           "a@x.com",
			Treatment:       "Checkup",
			Slot:            "10am",
		})

		assert.Equal(t, http.StatusOK, rec.Code)

		var ack clinic.WriteAck
		assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &ack))
		assert.False(t, ack.Acknowledged)
		assert.Contains(t, ack.Message, "2024-01-05")
		assert.Empty(t, repo.insertedBookings)
	})

	t.Run("slot already committed", func(t *testing.T) {
		router, _ := newTestRouter(seededRepo())

		rec := postJSON(router, "/bookings", CreateBookingRequest{
			AppointmentDate: "2024-01-05",
			Email:           "b@x.com",
			Treatment:       "Checkup",
			Slot:            "9am",
		})

		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("missing fields rejected", func(t *testing.T) {
		router, _ := newTestRouter(seededRepo())

		rec := postJSON(router, "/bookings", CreateBookingRequest{Email: "b@x.com"})

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestIssueToken(t *testing.T) {
	router, issuer := newTestRouter(seededRepo())

	t.Run("known user gets a verifiable token", func(t *testing.T) {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/jwt?email=a@x.com", nil))

		assert.Equal(t, http.StatusOK, rec.Code)

		var resp AccessTokenResponse
		assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

		email, err := issuer.Verify(resp.AccessToken)
		assert.NoError(t, err)
		assert.Equal(t, "a@x.com", email)
	})

	t.Run("unknown user gets 403 and an empty token", func(t *testing.T) {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/jwt?email=ghost@x.com", nil))

		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.JSONEq(t, `{"accessToken":""}`, rec.Body.String())
	})
}

func TestRoleChecks(t *testing.T) {
	router, _ := newTestRouter(seededRepo())

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/users/admin/admin@x.com", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"isAdmin":true}`, rec.Body.String())

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/users/admin/ghost@x.com", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"isAdmin":false}`, rec.Body.String())

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/user/doctor/admin@x.com", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"isDoctor":false}`, rec.Body.String())
}

func TestPrivilegedRoutesRequireToken(t *testing.T) {
	router, issuer := newTestRouter(seededRepo())

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/users", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	token, err := issuer.Issue("admin@x.com")
	assert.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/users", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	var users []clinic.User
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &users))
	assert.Len(t, users, 2)
}

func TestListBookingsMatchesTokenIdentity(t *testing.T) {
	router, issuer := newTestRouter(seededRepo())

	token, err := issuer.Issue("a@x.com")
	assert.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/bookings?email=a@x.com", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var bookings []clinic.Booking
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &bookings))
	assert.Len(t, bookings, 1)

	// A token for one patient cannot read another patient's bookings.
	req = httptest.NewRequest(http.MethodGet, "/bookings?email=b@x.com", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestDeleteRecordErrorMapping(t *testing.T) {
	router, issuer := newTestRouter(seededRepo())
	token, err := issuer.Issue("admin@x.com")
	assert.NoError(t, err)

	del := func(path string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodDelete, path, nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec
	}

	// stubRepo treats short ids as malformed.
	assert.Equal(t, http.StatusBadRequest, del("/doctors/short").Code)
	assert.Equal(t, http.StatusOK, del("/doctors/65a000000000000000000001").Code)
	assert.Equal(t, http.StatusNotFound, del("/prescriptions/65a000000000000000000001").Code)
}

func TestReportsSearchAlias(t *testing.T) {
	router, issuer := newTestRouter(seededRepo())
	token, err := issuer.Issue("a@x.com")
	assert.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/reports/search?email=a@x.com", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var reports []clinic.Report
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &reports))
	assert.Len(t, reports, 1)
	assert.Equal(t, "blood work", reports[0].Title)
}
