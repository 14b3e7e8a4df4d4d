package clinic

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/clinichub/clinic-api/internal/redisclient"
)

var (
	ErrDuplicateBooking = errors.New("booking already exists for this date and treatment")
	ErrUnknownTreatment = errors.New("treatment is not in the catalog")
	ErrSlotUnknown      = errors.New("slot is not offered for this treatment")
	ErrSlotTaken        = errors.New("slot already has a booking, please pick another")
)

type Service struct {
	repo   Repository
	locker redisclient.Locker
	log    *zap.Logger
}

func NewService(repo Repository, locker redisclient.Locker, log *zap.Logger) *Service {
	return &Service{
		repo:   repo,
		locker: locker,
		log:    log,
	}
}

// AvailableOptions resolves the catalog against the day's bookings.
func (s *Service) AvailableOptions(ctx context.Context, date string) ([]AppointmentOption, error) {
	catalog, err := s.repo.ListAppointmentOptions(ctx)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	bookings, err := s.repo.ListBookingsByDate(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("load bookings for date: %w", err)
	}
	return ResolveAvailability(date, catalog, bookings), nil
}

// TreatmentNames projects the catalog down to treatment names.
func (s *Service) TreatmentNames(ctx context.Context) ([]string, error) {
	catalog, err := s.repo.ListAppointmentOptions(ctx)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	names := make([]string, 0, len(catalog))
	for _, opt := range catalog {
		names = append(names, opt.Name)
	}
	return names, nil
}

// CreateBooking applies the duplicate guard and commits the candidate.
// The commit runs under a per-slot distributed lock and re-checks that
// the requested slot is still free, so two concurrent requests for the
// same (date, treatment, slot) cannot both insert.
func (s *Service) CreateBooking(ctx context.Context, candidate Booking) (WriteAck, error) {
	existing, err := s.repo.FindBookingTriple(ctx,
		candidate.AppointmentDate, candidate.Email, candidate.Treatment)
	if err != nil {
		return WriteAck{}, fmt.Errorf("check existing bookings: %w", err)
	}
	if len(existing) > 0 {
		return WriteAck{}, fmt.Errorf("%w: you already have a booking on %s",
			ErrDuplicateBooking, candidate.AppointmentDate)
	}

	var ack WriteAck

	key := slotLockKey(candidate)
	err = s.locker.WithSlotLock(ctx, key, func(lockCtx context.Context) error {
		// Inside the critical section re-check the slot against the
		// catalog and the day's committed bookings.
		if err := s.checkSlotFree(lockCtx, candidate); err != nil {
			return err
		}

		inserted, err := s.repo.InsertBooking(lockCtx, candidate)
		if err != nil {
			return fmt.Errorf("insert booking: %w", err)
		}
		ack = inserted

		s.log.Info("booking created",
			zap.String("date", candidate.AppointmentDate),
			zap.String("treatment", candidate.Treatment),
			zap.String("slot", candidate.Slot),
		)
		return nil
	})
	if err != nil {
		return WriteAck{}, err
	}

	return ack, nil
}

func (s *Service) checkSlotFree(ctx context.Context, candidate Booking) error {
	catalog, err := s.repo.ListAppointmentOptions(ctx)
	if err != nil {
		return fmt.Errorf("load catalog: %w", err)
	}

	var option *AppointmentOption
	for i := range catalog {
		if catalog[i].Name == candidate.Treatment {
			option = &catalog[i]
			break
		}
	}
	if option == nil {
		return ErrUnknownTreatment
	}

	offered := false
	for _, slot := range option.Slots {
		if slot == candidate.Slot {
			offered = true
			break
		}
	}
	if !offered {
		return ErrSlotUnknown
	}

	booked, err := s.repo.ListBookingsByDate(ctx, candidate.AppointmentDate)
	if err != nil {
		return fmt.Errorf("load bookings for date: %w", err)
	}
	for _, b := range booked {
		if b.Treatment == candidate.Treatment && b.Slot == candidate.Slot {
			return ErrSlotTaken
		}
	}
	return nil
}

// slotLockKey must be stable across processes for the same slot. The
// separator keeps "a|b c" and "a b|c" style collisions out of play as
// long as fields never contain a pipe, which dates, treatment names
// and slot labels do not.
func slotLockKey(b Booking) string {
	return strings.Join([]string{b.AppointmentDate, b.Treatment, b.Slot}, "|")
}

// BookingsForPatient lists a patient's bookings across all dates.
func (s *Service) BookingsForPatient(ctx context.Context, email string) ([]Booking, error) {
	bookings, err := s.repo.ListBookingsByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("list bookings by email: %w", err)
	}
	return bookings, nil
}

// Users and roles

func (s *Service) CreateUser(ctx context.Context, u User) (WriteAck, error) {
	role, err := ParseRole(string(u.Role))
	if err != nil {
		return WriteAck{}, err
	}
	u.Role = role
	return s.repo.InsertUser(ctx, u)
}

func (s *Service) Users(ctx context.Context) ([]User, error) {
	return s.repo.ListUsers(ctx)
}

func (s *Service) PromoteToAdmin(ctx context.Context, id string) (WriteAck, error) {
	ack, err := s.repo.PromoteUserToAdmin(ctx, id)
	if err != nil {
		return WriteAck{}, err
	}
	s.log.Info("user promoted to admin", zap.String("user_id", id))
	return ack, nil
}

// UserExists reports whether an account with this email is registered.
func (s *Service) UserExists(ctx context.Context, email string) (bool, error) {
	_, err := s.repo.FindUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// HasRole reports whether the user holds the role. A missing user or an
// unset role field is false, not an error.
func (s *Service) HasRole(ctx context.Context, email string, role Role) (bool, error) {
	user, err := s.repo.FindUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return false, nil
		}
		return false, err
	}
	return user.Role == role, nil
}

// Doctors

func (s *Service) AddDoctor(ctx context.Context, d Doctor) (WriteAck, error) {
	return s.repo.InsertDoctor(ctx, d)
}

func (s *Service) Doctors(ctx context.Context) ([]Doctor, error) {
	return s.repo.ListDoctors(ctx)
}

func (s *Service) RemoveDoctor(ctx context.Context, id string) (WriteAck, error) {
	return s.repo.DeleteDoctor(ctx, id)
}

// Prescriptions

func (s *Service) AddPrescription(ctx context.Context, p Prescription) (WriteAck, error) {
	return s.repo.InsertPrescription(ctx, p)
}

func (s *Service) PrescriptionsForPatient(ctx context.Context, email string) ([]Prescription, error) {
	return s.repo.ListPrescriptionsByEmail(ctx, email)
}

func (s *Service) RemovePrescription(ctx context.Context, id string) (WriteAck, error) {
	return s.repo.DeletePrescription(ctx, id)
}

// Reports

func (s *Service) AddReport(ctx context.Context, r Report) (WriteAck, error) {
	return s.repo.InsertReport(ctx, r)
}

func (s *Service) ReportsForPatient(ctx context.Context, email string) ([]Report, error) {
	return s.repo.ListReportsByEmail(ctx, email)
}

func (s *Service) RemoveReport(ctx context.Context, id string) (WriteAck, error) {
	return s.repo.DeleteReport(ctx, id)
}
