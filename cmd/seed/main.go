package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/clinichub/clinic-api/internal/clinic"
	"github.com/clinichub/clinic-api/internal/store"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("seed starting")

	uri := os.Getenv("MONGO_URI")
	if uri == "" {
		log.Fatal("MONGO_URI is required")
	}
	dbName := os.Getenv("MONGO_DATABASE")
	if dbName == "" {
		dbName = "patientReportHub"
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := store.ConnectMongo(ctx, uri)
	if err != nil {
		log.Fatalf("connect mongo: %v", err)
	}
	defer func() { _ = client.Disconnect(context.Background()) }()

	db := client.Database(dbName)

	gofakeit.Seed(time.Now().UnixNano())

	if err := seedCatalog(context.Background(), db); err != nil {
		log.Fatalf("seed catalog: %v", err)
	}
	if err := seedUsers(context.Background(), db, 50); err != nil {
		log.Fatalf("seed users: %v", err)
	}
	if err := seedDoctors(context.Background(), db, 10); err != nil {
		log.Fatalf("seed doctors: %v", err)
	}

	log.Println("seed complete")
}

// seedCatalog upserts one option per treatment so reruns never
// duplicate catalog entries.
func seedCatalog(ctx context.Context, db *mongo.Database) error {
	slots := []string{
		"8:00 AM - 8:30 AM",
		"8:30 AM - 9:00 AM",
		"9:00 AM - 9:30 AM",
		"9:30 AM - 10:00 AM",
		"10:00 AM - 10:30 AM",
		"10:30 AM - 11:00 AM",
		"11:00 AM - 11:30 AM",
		"2:00 PM - 2:30 PM",
		"2:30 PM - 3:00 PM",
		"3:00 PM - 3:30 PM",
	}

	catalog := []clinic.AppointmentOption{
		{Name: "Teeth Orthodontics", Price: 80, Slots: slots},
		{Name: "Cosmetic Dentistry", Price: 120, Slots: slots},
		{Name: "Teeth Cleaning", Price: 60, Slots: slots},
		{Name: "Cavity Protection", Price: 50, Slots: slots},
		{Name: "Pediatric Dental", Price: 70, Slots: slots},
		{Name: "Oral Surgery", Price: 200, Slots: slots},
	}

	log.Printf("seeding %d appointment options", len(catalog))

	coll := db.Collection("appointmentOption")
	for _, option := range catalog {
		update := bson.M{"$set": bson.M{"price": option.Price, "slots": option.Slots}}
		_, err := coll.UpdateOne(ctx, bson.M{"name": option.Name}, update,
			options.Update().SetUpsert(true))
		if err != nil {
			return err
		}
	}
	return nil
}

func seedUsers(ctx context.Context, db *mongo.Database, count int) error {
	log.Printf("seeding %d users", count)

	docs := make([]any, 0, count+1)
	for i := 0; i < count; i++ {
		docs = append(docs, clinic.User{
			Name:  gofakeit.Name(),
			Email: gofakeit.Email(),
			Role:  clinic.RolePatient,
		})
	}
	docs = append(docs, clinic.User{
		Name:  "Clinic Admin",
		Email: "admin@clinichub.test",
		Role:  clinic.RoleAdmin,
	})

	_, err := db.Collection("users").InsertMany(ctx, docs)
	return err
}

func seedDoctors(ctx context.Context, db *mongo.Database, count int) error {
	log.Printf("seeding %d doctors", count)

	specialties := []string{
		"Orthodontics",
		"Cosmetic Dentistry",
		"Pediatric Dental",
		"Oral Surgery",
		"Periodontics",
	}

	docs := make([]any, 0, count)
	for i := 0; i < count; i++ {
		docs = append(docs, clinic.Doctor{
			Name:      gofakeit.Name(),
			Email:     gofakeit.Email(),
			Specialty: specialties[i%len(specialties)],
		})
	}

	_, err := db.Collection("doctors").InsertMany(ctx, docs)
	return err
}
