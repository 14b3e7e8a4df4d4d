package clinic

import (
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Role is the closed set of user roles. Patient is the default for
// accounts created without an explicit role; there is no demotion path.
type Role string

const (
	RolePatient Role = "patient"
	RoleDoctor  Role = "doctor"
	RoleAdmin   Role = "admin"
)

// ParseRole validates a stored or submitted role string. The empty
// string maps to patient to match records written before roles existed.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RolePatient, "":
		return RolePatient, nil
	case RoleDoctor:
		return RoleDoctor, nil
	case RoleAdmin:
		return RoleAdmin, nil
	}
	return "", fmt.Errorf("unknown role %q", s)
}

// AppointmentOption is one treatment type with its template slot list.
// Slots are the full capacity for any date; the resolver narrows them
// per date. Slot order is meaningful and preserved everywhere.
type AppointmentOption struct {
	ID    primitive.ObjectID `bson:"_id,omitempty" json:"_id,omitempty"`
	Name  string             `bson:"name" json:"name"`
	Price float64            `bson:"price" json:"price"`
	Slots []string           `bson:"slots" json:"slots"`
}

// Booking is a patient's reservation of one slot for one treatment on
// one date. Immutable once created; delete is the only mutation.
type Booking struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"_id,omitempty"`
	AppointmentDate string             `bson:"appointmentDate" json:"appointmentDate"`
	Email           string             `bson:"email" json:"email"`
	Treatment       string             `bson:"treatment" json:"treatment"`
	Slot            string             `bson:"slot" json:"slot"`
	PatientName     string             `bson:"patientName,omitempty" json:"patientName,omitempty"`
	Phone           string             `bson:"phone,omitempty" json:"phone,omitempty"`
}

type User struct {
	ID    primitive.ObjectID `bson:"_id,omitempty" json:"_id,omitempty"`
	Name  string             `bson:"name,omitempty" json:"name,omitempty"`
	Email string             `bson:"email" json:"email"`
	Role  Role               `bson:"role,omitempty" json:"role,omitempty"`
}

type Doctor struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"_id,omitempty"`
	Name      string             `bson:"name" json:"name"`
	Email     string             `bson:"email" json:"email"`
	Specialty string             `bson:"specialty,omitempty" json:"specialty,omitempty"`
}

type Prescription struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"_id,omitempty"`
	Email    string             `bson:"email" json:"email"`
	Medicine string             `bson:"medicine,omitempty" json:"medicine,omitempty"`
	Dosage   string             `bson:"dosage,omitempty" json:"dosage,omitempty"`
	Notes    string             `bson:"notes,omitempty" json:"notes,omitempty"`
}

type Report struct {
	ID    primitive.ObjectID `bson:"_id,omitempty" json:"_id,omitempty"`
	Email string             `bson:"email" json:"email"`
	Title string             `bson:"title,omitempty" json:"title,omitempty"`
	Link  string             `bson:"link,omitempty" json:"link,omitempty"`
}

// WriteAck mirrors the store's acknowledgment of a mutation. Handlers
// return it instead of the mutated record.
type WriteAck struct {
	Acknowledged bool   `json:"acknowledged"`
	InsertedID   string `json:"insertedId,omitempty"`
	Message      string `json:"message,omitempty"`
}
