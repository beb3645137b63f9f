// cmd/main.go is the application entry point.
// It wires together all layers and starts the HTTP server.
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"

	"github.com/edutech-labs/course-booking/internal/database"
	"github.com/edutech-labs/course-booking/internal/handler"
	"github.com/edutech-labs/course-booking/internal/mail"
	"github.com/edutech-labs/course-booking/internal/repository"
	"github.com/edutech-labs/course-booking/internal/service"
)

func main() {
	ctx := context.Background()

	// .env is optional; real deployments set the environment directly.
	if err := godotenv.Load(); err == nil {
		log.Println("✓ Loaded .env")
	}

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		log.Fatal("JWT_SECRET must be set")
	}
	adminEmail := getEnv("ADMIN_NOTIFICATION_EMAIL", "admin@edutech.example")

	// ── 1. Connect to PostgreSQL ──────────────────────────────────────────
	pool, err := database.NewPool(ctx)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer pool.Close()
	log.Println("✓ Connected to PostgreSQL")

	// ── 2. Wire up layers ────────────────────────────────────────────────
	courseRepo := repository.NewCourseRepository(pool)
	enrollRepo := repository.NewEnrollmentRepository(pool)
	teamRepo := repository.NewTeamRepository(pool)
	categoryRepo := repository.NewCategoryRepository(pool)
	adminRepo := repository.NewAdminRepository(pool)
	emailRepo := repository.NewEmailRepository(pool)

	mailer := mail.New(emailRepo, emailRepo, adminEmail)
	courseSvc := service.NewCourseService(courseRepo)
	bookingSvc := service.NewBookingService(courseRepo, enrollRepo, mailer)
	adminSvc := service.NewAdminService(adminRepo, teamRepo, categoryRepo, enrollRepo, emailRepo, jwtSecret)

	publicHandler := handler.NewPublicHandler(courseSvc, bookingSvc, adminSvc)
	adminHandler := handler.NewAdminHandler(courseSvc, adminSvc)
	emailHandler := handler.NewEmailHandler(mailer, emailRepo)

	// ── 3. Build the router ───────────────────────────────────────────────
	r := chi.NewRouter()

	// Global middleware stack
	r.Use(chimiddleware.Recoverer) // recover from panics, return 500
	r.Use(chimiddleware.RequestID) // attach request IDs
	r.Use(chimiddleware.RealIP)    // trust X-Forwarded-For
	r.Use(handler.Logger)          // structured access log
	r.Use(handler.CORS(os.Getenv("CORS_ORIGIN")))

	// Health
	r.Get("/health", handler.HealthCheck)

	// Public API
	r.Route("/api", func(r chi.Router) {
		r.Route("/courses", func(r chi.Router) {
			r.Get("/", publicHandler.ListCourses)
			r.Get("/{id}", publicHandler.GetCourse)
			r.Post("/{id}/book", publicHandler.SubmitBooking)
		})
		r.Get("/categories", publicHandler.ListCategories)
		r.Get("/team", publicHandler.ListTeam)
		r.Post("/emails/booking", emailHandler.SendBookingEmails)

		// Back office
		r.Route("/admin", func(r chi.Router) {
			r.Post("/login", adminHandler.Login)

			r.Group(func(r chi.Router) {
				r.Use(handler.RequireAdmin(jwtSecret))

				r.Route("/courses", func(r chi.Router) {
					r.Get("/", adminHandler.ListCourses)
					r.Post("/", adminHandler.CreateCourse)
					r.Put("/{id}", adminHandler.UpdateCourse)
					r.Delete("/{id}", adminHandler.DeleteCourse)
				})
				r.Route("/team", func(r chi.Router) {
					r.Get("/", adminHandler.ListTeam)
					r.Post("/", adminHandler.CreateTeamMember)
					r.Put("/{id}", adminHandler.UpdateTeamMember)
					r.Delete("/{id}", adminHandler.DeleteTeamMember)
				})
				r.Route("/categories", func(r chi.Router) {
					r.Get("/", adminHandler.ListCategories)
					r.Post("/", adminHandler.CreateCategory)
					r.Put("/{id}", adminHandler.RenameCategory)
					r.Delete("/{id}", adminHandler.DeleteCategory)
				})
				r.Route("/attendees", func(r chi.Router) {
					r.Get("/", adminHandler.ListAttendees)
					r.Post("/bulk-delete", adminHandler.BulkDeleteAttendees)
					r.Put("/{id}/payment-status", adminHandler.SetPaymentStatus)
					r.Delete("/{id}", adminHandler.DeleteAttendee)
				})
				r.Get("/email-config", adminHandler.GetEmailConfig)
				r.Put("/email-config", adminHandler.SaveEmailConfig)
				r.Route("/email", func(r chi.Router) {
					r.Post("/test-config", emailHandler.TestConfig)
					r.Post("/test", emailHandler.TestEmail)
					r.Get("/logs", emailHandler.ListLogs)
				})
			})
		})
	})

	// ── 4. Start server with graceful shutdown ────────────────────────────
	port := getEnv("PORT", "8080")
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Run in background goroutine so we can listen for shutdown signal.
	go func() {
		log.Printf("✓ Server listening on http://localhost:%s", port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	// Block until SIGINT or SIGTERM.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down server…")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("graceful shutdown failed: %v", err)
	}
	log.Println("server stopped")
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
