package clinic

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	collAppointmentOptions = "appointmentOption"
	collBookings           = "bookings"
	collUsers              = "users"
	collDoctors            = "doctors"
	collPrescriptions      = "prescriptions"
	collReports            = "reports"
)

type MongoRepository struct {
	db *mongo.Database
}

func NewMongoRepository(client *mongo.Client, dbName string) *MongoRepository {
	return &MongoRepository{db: client.Database(dbName)}
}

// Catalog

func (r *MongoRepository) ListAppointmentOptions(ctx context.Context) ([]AppointmentOption, error) {
	cur, err := r.db.Collection(collAppointmentOptions).Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("find appointment options: %w", err)
	}
	var opts []AppointmentOption
	if err := cur.All(ctx, &opts); err != nil {
		return nil, fmt.Errorf("decode appointment options: %w", err)
	}
	return opts, nil
}

// Bookings

func (r *MongoRepository) ListBookingsByDate(ctx context.Context, date string) ([]Booking, error) {
	return r.findBookings(ctx, bson.M{"appointmentDate": date})
}

func (r *MongoRepository) ListBookingsByEmail(ctx context.Context, email string) ([]Booking, error) {
	return r.findBookings(ctx, bson.M{"email": email})
}

// FindBookingTriple returns the bookings matching the duplicate-guard
// key exactly: same date, same patient, same treatment.
func (r *MongoRepository) FindBookingTriple(ctx context.Context, date, email, treatment string) ([]Booking, error) {
	return r.findBookings(ctx, bson.M{
		"appointmentDate": date,
		"email":           email,
		"treatment":       treatment,
	})
}

func (r *MongoRepository) findBookings(ctx context.Context, filter bson.M) ([]Booking, error) {
	cur, err := r.db.Collection(collBookings).Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("find bookings: %w", err)
	}
	var bookings []Booking
	if err := cur.All(ctx, &bookings); err != nil {
		return nil, fmt.Errorf("decode bookings: %w", err)
	}
	return bookings, nil
}

func (r *MongoRepository) InsertBooking(ctx context.Context, b Booking) (WriteAck, error) {
	return r.insert(ctx, collBookings, b)
}

// Users

func (r *MongoRepository) InsertUser(ctx context.Context, u User) (WriteAck, error) {
	// Role strings are validated before they reach the store.
	role, err := ParseRole(string(u.Role))
	if err != nil {
		return WriteAck{}, err
	}
	u.Role = role
	return r.insert(ctx, collUsers, u)
}

func (r *MongoRepository) ListUsers(ctx context.Context) ([]User, error) {
	cur, err := r.db.Collection(collUsers).Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("find users: %w", err)
	}
	var users []User
	if err := cur.All(ctx, &users); err != nil {
		return nil, fmt.Errorf("decode users: %w", err)
	}
	return users, nil
}

func (r *MongoRepository) FindUserByEmail(ctx context.Context, email string) (*User, error) {
	var user User
	err := r.db.Collection(collUsers).FindOne(ctx, bson.M{"email": email}).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("find user by email: %w", err)
	}
	return &user, nil
}

func (r *MongoRepository) PromoteUserToAdmin(ctx context.Context, id string) (WriteAck, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return WriteAck{}, ErrBadRecordID
	}
	update := bson.M{"$set": bson.M{"role": RoleAdmin}}
	res, err := r.db.Collection(collUsers).UpdateOne(ctx,
		bson.M{"_id": objectID}, update, options.Update().SetUpsert(true))
	if err != nil {
		return WriteAck{}, fmt.Errorf("promote user: %w", err)
	}
	return WriteAck{Acknowledged: res.MatchedCount > 0 || res.UpsertedCount > 0}, nil
}

// Doctors

func (r *MongoRepository) InsertDoctor(ctx context.Context, d Doctor) (WriteAck, error) {
	return r.insert(ctx, collDoctors, d)
}

func (r *MongoRepository) ListDoctors(ctx context.Context) ([]Doctor, error) {
	cur, err := r.db.Collection(collDoctors).Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("find doctors: %w", err)
	}
	var doctors []Doctor
	if err := cur.All(ctx, &doctors); err != nil {
		return nil, fmt.Errorf("decode doctors: %w", err)
	}
	return doctors, nil
}

func (r *MongoRepository) DeleteDoctor(ctx context.Context, id string) (WriteAck, error) {
	return r.deleteByID(ctx, collDoctors, id)
}

// Prescriptions

func (r *MongoRepository) InsertPrescription(ctx context.Context, p Prescription) (WriteAck, error) {
	return r.insert(ctx, collPrescriptions, p)
}

func (r *MongoRepository) ListPrescriptionsByEmail(ctx context.Context, email string) ([]Prescription, error) {
	cur, err := r.db.Collection(collPrescriptions).Find(ctx, emailFilter(email))
	if err != nil {
		return nil, fmt.Errorf("find prescriptions: %w", err)
	}
	var prescriptions []Prescription
	if err := cur.All(ctx, &prescriptions); err != nil {
		return nil, fmt.Errorf("decode prescriptions: %w", err)
	}
	return prescriptions, nil
}

func (r *MongoRepository) DeletePrescription(ctx context.Context, id string) (WriteAck, error) {
	return r.deleteByID(ctx, collPrescriptions, id)
}

// Reports

func (r *MongoRepository) InsertReport(ctx context.Context, rep Report) (WriteAck, error) {
	return r.insert(ctx, collReports, rep)
}

func (r *MongoRepository) ListReportsByEmail(ctx context.Context, email string) ([]Report, error) {
	cur, err := r.db.Collection(collReports).Find(ctx, emailFilter(email))
	if err != nil {
		return nil, fmt.Errorf("find reports: %w", err)
	}
	var reports []Report
	if err := cur.All(ctx, &reports); err != nil {
		return nil, fmt.Errorf("decode reports: %w", err)
	}
	return reports, nil
}

func (r *MongoRepository) DeleteReport(ctx context.Context, id string) (WriteAck, error) {
	return r.deleteByID(ctx, collReports, id)
}

// Helpers

// emailFilter matches everything when email is empty so list handlers
// can serve both the all-records and the per-patient query.
func emailFilter(email string) bson.M {
	if email == "" {
		return bson.M{}
	}
	return bson.M{"email": email}
}

func (r *MongoRepository) insert(ctx context.Context, coll string, doc any) (WriteAck, error) {
	res, err := r.db.Collection(coll).InsertOne(ctx, doc)
	if err != nil {
		return WriteAck{}, fmt.Errorf("insert into %s: %w", coll, err)
	}
	ack := WriteAck{Acknowledged: true}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		ack.InsertedID = oid.Hex()
	}
	return ack, nil
}

func (r *MongoRepository) deleteByID(ctx context.Context, coll, id string) (WriteAck, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return WriteAck{}, ErrBadRecordID
	}
	res, err := r.db.Collection(coll).DeleteOne(ctx, bson.M{"_id": objectID})
	if err != nil {
		return WriteAck{}, fmt.Errorf("delete from %s: %w", coll, err)
	}
	if res.DeletedCount == 0 {
		return WriteAck{}, ErrRecordNotFound
	}
	return WriteAck{Acknowledged: true}, nil
}
