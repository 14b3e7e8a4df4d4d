package api

type CreateBookingRequest struct {
	AppointmentDate string `json:"appointmentDate" validate:"required"`
	Email           string `json:"email" validate:"required,email"`
	Treatment       string `json:"treatment" validate:"required"`
	Slot            string `json:"slot" validate:"required"`
	PatientName     string `json:"patientName"`
	Phone           string `json:"phone"`
}

type CreateUserRequest struct {
	Name  string `json:"name"`
	Email string `json:"email" validate:"required,email"`
	Role  string `json:"role" validate:"omitempty,oneof=patient doctor admin"`
}

type CreateDoctorRequest struct {
	Name      string `json:"name" validate:"required"`
	Email     string `json:"email" validate:"required,email"`
	Specialty string `json:"specialty"`
}

type CreatePrescriptionRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Medicine string `json:"medicine"`
	Dosage   string `json:"dosage"`
	Notes    string `json:"notes"`
}

type CreateReportRequest struct {
	Email string `json:"email" validate:"required,email"`
	Title string `json:"title"`
	Link  string `json:"link"`
}

type TreatmentNameResponse struct {
	Name string `json:"name"`
}

type AccessTokenResponse struct {
	AccessToken string `json:"accessToken"`
}

type AdminCheckResponse struct {
	IsAdmin bool `json:"isAdmin"`
}

type DoctorCheckResponse struct {
	IsDoctor bool `json:"isDoctor"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
