package clinic

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

const testDate = "2024-01-05"

func catalogCheckup() []AppointmentOption {
	return []AppointmentOption{
		{Name: "Checkup", Price: 30, Slots: []string{"9am", "10am"}},
	}
}

func TestResolveAvailability(t *testing.T) {
	cases := []struct {
		name     string
		date     string
		catalog  []AppointmentOption
		bookings []Booking
		expected [][]string
	}{
		{
			name:     "no bookings leaves catalog unchanged",
			date:     testDate,
			catalog:  catalogCheckup(),
			bookings: nil,
			expected: [][]string{{"9am", "10am"}},
		},
		{
			name:    "booked slot is removed",
			date:    testDate,
			catalog: catalogCheckup(),
			bookings: []Booking{
				{AppointmentDate: testDate, Treatment: "Checkup", Slot: "9am"},
			},
			expected: [][]string{{"10am"}},
		},
		{
			name:    "booking on another date is ignored",
			date:    testDate,
			catalog: catalogCheckup(),
			bookings: []Booking{
				{AppointmentDate: "2024-01-06", Treatment: "Checkup", Slot: "9am"},
			},
			expected: [][]string{{"9am", "10am"}},
		},
		{
			name:    "booking for unknown treatment is ignored",
			date:    testDate,
			catalog: catalogCheckup(),
			bookings: []Booking{
				{AppointmentDate: testDate, Treatment: "Dental Cleaning", Slot: "9am"},
			},
			expected: [][]string{{"9am", "10am"}},
		},
		{
			name: "fully booked option keeps its place with empty slots",
			date: testDate,
			catalog: []AppointmentOption{
				{Name: "Checkup", Slots: []string{"9am", "10am"}},
				{Name: "Dental Cleaning", Slots: []string{"9am"}},
			},
			bookings: []Booking{
				{AppointmentDate: testDate, Treatment: "Dental Cleaning", Slot: "9am"},
			},
			expected: [][]string{{"9am", "10am"}, {}},
		},
		{
			name: "slot order preserved after mid-list removal",
			date: testDate,
			catalog: []AppointmentOption{
				{Name: "Checkup", Slots: []string{"8am", "9am", "10am", "11am"}},
			},
			bookings: []Booking{
				{AppointmentDate: testDate, Treatment: "Checkup", Slot: "9am"},
				{AppointmentDate: testDate, Treatment: "Checkup", Slot: "11am"},
			},
			expected: [][]string{{"8am", "10am"}},
		},
		{
			name:     "empty catalog resolves to empty",
			date:     testDate,
			catalog:  nil,
			bookings: []Booking{{AppointmentDate: testDate, Treatment: "Checkup", Slot: "9am"}},
			expected: [][]string{},
		},
		{
			name:    "treatment match is case-sensitive",
			date:    testDate,
			catalog: catalogCheckup(),
			bookings: []Booking{
				{AppointmentDate: testDate, Treatment: "checkup", Slot: "9am"},
			},
			expected: [][]string{{"9am", "10am"}},
		},
		{
			name:    "absent date matches no booking",
			date:    "",
			catalog: catalogCheckup(),
			bookings: []Booking{
				{AppointmentDate: testDate, Treatment: "Checkup", Slot: "9am"},
			},
			expected: [][]string{{"9am", "10am"}},
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			resolved := ResolveAvailability(c.date, c.catalog, c.bookings)

			assert.Len(t, resolved, len(c.catalog))
			for i, opt := range resolved {
				assert.Equal(t, c.catalog[i].Name, opt.Name, "option order must be preserved")
				assert.Equal(t, c.expected[i], opt.Slots)
			}
		})
	}
}

func TestResolveAvailabilityDoesNotMutateInputs(t *testing.T) {
	catalog := catalogCheckup()
	bookings := []Booking{
		{AppointmentDate: testDate, Treatment: "Checkup", Slot: "9am"},
	}

	_ = ResolveAvailability(testDate, catalog, bookings)

	assert.Equal(t, []string{"9am", "10am"}, catalog[0].Slots)
}

func TestResolveAvailabilityIdempotent(t *testing.T) {
	catalog := []AppointmentOption{
		{Name: "Checkup", Slots: []string{"8am", "9am", "10am"}},
		{Name: "Dental Cleaning", Slots: []string{"9am", "11am"}},
	}
	bookings := []Booking{
		{AppointmentDate: testDate, Treatment: "Checkup", Slot: "9am"},
		{AppointmentDate: testDate, Treatment: "Dental Cleaning", Slot: "11am"},
	}

	once := ResolveAvailability(testDate, catalog, bookings)
	twice := ResolveAvailability(testDate, once, bookings)

	assert.Equal(t, once, twice)
}

func TestResolveAvailabilityKeepsOtherOptionFields(t *testing.T) {
	catalog := []AppointmentOption{
		{Name: "Checkup", Price: 45.5, Slots: []string{"9am"}},
	}

	resolved := ResolveAvailability(testDate, catalog, nil)

	assert.Equal(t, 45.5, resolved[0].Price)
}
