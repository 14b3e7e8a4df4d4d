package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/clinichub/clinic-api/internal/auth"
	"github.com/clinichub/clinic-api/internal/clinic"
)

type RouterConfig struct {
	Service *clinic.Service
	Issuer  *auth.TokenIssuer
	Mongo   *mongo.Client
	Redis   *redis.Client
	Log     *zap.Logger
	Env     string
	Version string
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(RequestIDMiddleware)
	r.Use(LoggingMiddleware(cfg.Log))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
	}))

	// Health endpoints
	health := NewHealthHandler(cfg.Mongo, cfg.Redis, cfg.Env, cfg.Version)
	r.Get("/", health.Liveness)
	r.Get("/health/live", health.Liveness)
	r.Get("/health/ready", health.Readiness)

	// Public clinic endpoints
	r.Get("/appointmentOptions", appointmentOptionsHandler(cfg.Service))
	r.Get("/appointmentSpecialty", treatmentNamesHandler(cfg.Service))
	r.Post("/bookings", createBookingHandler(cfg.Service))
	r.Get("/jwt", issueTokenHandler(cfg.Service, cfg.Issuer))
	r.Post("/users", createUserHandler(cfg.Service))
	r.Get("/users/admin/{email}", adminCheckHandler(cfg.Service))
	r.Get("/user/doctor/{email}", doctorCheckHandler(cfg.Service))

	// Privileged endpoints behind the bearer token
	r.Group(func(r chi.Router) {
		r.Use(auth.RequireToken(cfg.Issuer))

		r.Get("/bookings", listBookingsHandler(cfg.Service))
		r.Get("/users", listUsersHandler(cfg.Service))
		r.Put("/users/admin/{id}", promoteUserHandler(cfg.Service))

		r.Post("/doctors", createDoctorHandler(cfg.Service))
		r.Get("/doctors", listDoctorsHandler(cfg.Service))
		r.Delete("/doctors/{id}", deleteDoctorHandler(cfg.Service))

		r.Post("/prescriptions", createPrescriptionHandler(cfg.Service))
		r.Get("/prescriptions", listPrescriptionsHandler(cfg.Service))
		r.Delete("/prescriptions/{id}", deletePrescriptionHandler(cfg.Service))

		r.Post("/reports", createReportHandler(cfg.Service))
		r.Get("/reports", listReportsHandler(cfg.Service))
		r.Get("/reports/search", listReportsHandler(cfg.Service))
		r.Delete("/reports/{id}", deleteReportHandler(cfg.Service))
	})

	return r
}
