package clinic

import (
	"context"
	"errors"
)

var (
	ErrUserNotFound   = errors.New("user not found")
	ErrRecordNotFound = errors.New("record not found")
	ErrBadRecordID    = errors.New("record id is not a valid object id")
)

// Repository contains all store interactions needed by the service.
// One implementation per document database; handlers never touch it
// directly.
type Repository interface {
	// Catalog
	ListAppointmentOptions(ctx context.Context) ([]AppointmentOption, error)

	// Bookings
	ListBookingsByDate(ctx context.Context, date string) ([]Booking, error)
	ListBookingsByEmail(ctx context.Context, email string) ([]Booking, error)
	FindBookingTriple(ctx context.Context, date, email, treatment string) ([]Booking, error)
	InsertBooking(ctx context.Context, b Booking) (WriteAck, error)

	// Users
	InsertUser(ctx context.Context, u User) (WriteAck, error)
	ListUsers(ctx context.Context) ([]User, error)
	FindUserByEmail(ctx context.Context, email string) (*User, error)
	PromoteUserToAdmin(ctx context.Context, id string) (WriteAck, error)

	// Doctors
	InsertDoctor(ctx context.Context, d Doctor) (WriteAck, error)
	ListDoctors(ctx context.Context) ([]Doctor, error)
	DeleteDoctor(ctx context.Context, id string) (WriteAck, error)

	// Prescriptions
	InsertPrescription(ctx context.Context, p Prescription) (WriteAck, error)
	ListPrescriptionsByEmail(ctx context.Context, email string) ([]Prescription, error)
	DeletePrescription(ctx context.Context, id string) (WriteAck, error)

	// Reports
	InsertReport(ctx context.Context, r Report) (WriteAck, error)
	ListReportsByEmail(ctx context.Context, email string) ([]Report, error)
	DeleteReport(ctx context.Context, id string) (WriteAck, error)
}
