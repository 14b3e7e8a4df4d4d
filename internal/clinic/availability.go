package clinic

// ResolveAvailability narrows each catalog option's slot list to the
// slots not yet consumed by a booking for the given date and treatment.
//
// Bookings whose appointmentDate differs from date are skipped, so the
// function is correct whether the caller pre-filtered by date or passed
// the whole collection. Treatment names join by exact, case-sensitive
// equality; a booking for a treatment absent from the catalog is
// ignored. Options are never dropped, slot order is preserved, and the
// inputs are not mutated.
func ResolveAvailability(date string, catalog []AppointmentOption, bookings []Booking) []AppointmentOption {
	consumed := make(map[string]map[string]struct{})
	for _, b := range bookings {
		if b.AppointmentDate != date {
			continue
		}
		slots, ok := consumed[b.Treatment]
		if !ok {
			slots = make(map[string]struct{})
			consumed[b.Treatment] = slots
		}
		slots[b.Slot] = struct{}{}
	}

	resolved := make([]AppointmentOption, len(catalog))
	for i, opt := range catalog {
		resolved[i] = opt
		resolved[i].Slots = remainingSlots(opt.Slots, consumed[opt.Name])
	}
	return resolved
}

// remainingSlots returns the stable-order subsequence of template not
// present in booked. The result is always a fresh slice so callers
// never alias the stored catalog document.
func remainingSlots(template []string, booked map[string]struct{}) []string {
	remaining := make([]string, 0, len(template))
	for _, slot := range template {
		if _, taken := booked[slot]; taken {
			continue
		}
		remaining = append(remaining, slot)
	}
	return remaining
}
