package main

import (
	"log"
	"net/http"
	"os"

	"wastewatch-backend/internal/database"
	"wastewatch-backend/internal/handlers"
	"wastewatch-backend/internal/middleware"
	"wastewatch-backend/internal/models"
	"wastewatch-backend/internal/services"
	"wastewatch-backend/internal/websocket"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
)

func main() {
	log.Println("═══════════════════════════════════════════════════════════════════")
	log.Println("🚀 WASTEWATCH BACKEND SERVER STARTING")
	log.Println("═══════════════════════════════════════════════════════════════════")

	// Load .env file
	log.Println("📂 Loading environment variables...")
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  Warning: .env file not found, using environment variables from system")
	} else {
		log.Println("✅ .env file loaded successfully")
	}

	// Get database URL
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Println("❌ FATAL ERROR: DATABASE_URL environment variable is required")
		log.Fatal("DATABASE_URL environment variable is required")
	}

	if os.Getenv("APP_JWT_SECRET") == "" {
		log.Fatal("APP_JWT_SECRET environment variable is required")
	}

	// Connect to database
	db, err := database.Connect(dbURL)
	if err != nil {
		log.Println("❌ FATAL ERROR: Database connection failed")
		log.Fatal(err)
	}
	defer db.Close()

	// Run migrations
	log.Println("🔄 Running database migrations...")
	if err := database.Migrate(db); err != nil {
		log.Println("❌ FATAL ERROR: Database migrations failed")
		log.Fatal(err)
	}
	log.Println("✅ Database migrations completed")

	// Seed default accounts
	log.Println("🌱 Seeding database with initial data...")
	if err := database.SeedUsers(db); err != nil {
		log.Println("❌ FATAL ERROR: User seeding failed")
		log.Fatal(err)
	}

	// Initialize Firebase Cloud Messaging for municipal push alerts.
	// Supports both file path and base64-encoded credentials (for Railway/cloud deployments)
	var fcmService *services.FCMService
	if fcmCredsBase64 := os.Getenv("FIREBASE_CREDENTIALS_BASE64"); fcmCredsBase64 != "" {
		fcmService, err = services.NewFCMServiceFromBase64(fcmCredsBase64)
		if err != nil {
			log.Printf("⚠️  Failed to initialize FCM from base64: %v (push notifications disabled)", err)
			fcmService = nil
		} else {
			log.Println("✅ Firebase Cloud Messaging initialized from base64 credentials")
		}
	} else {
		fcmCredentialsFile := os.Getenv("FIREBASE_CREDENTIALS_FILE")
		if fcmCredentialsFile == "" {
			fcmCredentialsFile = "./firebase-service-account.json"
		}

		fcmService, err = services.NewFCMService(fcmCredentialsFile)
		if err != nil {
			log.Printf("⚠️  Failed to initialize FCM from file: %v (push notifications disabled)", err)
			fcmService = nil
		} else {
			log.Println("✅ Firebase Cloud Messaging initialized from file")
		}
	}

	// Image storage for report photos
	uploadDir := os.Getenv("UPLOAD_DIR")
	if uploadDir == "" {
		uploadDir = "./uploads"
	}
	imageStore, err := services.NewLocalImageStore(uploadDir)
	if err != nil {
		log.Println("❌ FATAL ERROR: Failed to initialize image store")
		log.Fatal(err)
	}
	log.Printf("✅ Image store ready at %s", uploadDir)

	// Initialize WebSocket hub
	wsHub := websocket.NewHub()
	go wsHub.Run()
	log.Println("✅ WebSocket hub started")

	// Mock classifier until the vision model is wired in
	classifier := services.NewMockClassifier()

	// Alert dispatcher (persists alerts, fans out ws events and FCM pushes)
	dispatcher := services.NewAlertDispatcher(db, wsHub, fcmService)

	// Create router
	r := chi.NewRouter()

	// Middleware
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)

	// CORS
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	// Authentication routes (no auth required)
	r.Post("/api/auth/register", handlers.Register(db))
	r.Post("/api/auth/login", handlers.Login(db))

	// WebSocket endpoint (authentication handled in handler via query param)
	r.Get("/ws", websocket.HandleWebSocket(wsHub))

	// Uploaded report images
	fileServer := http.StripPrefix("/uploads/", http.FileServer(http.Dir(uploadDir)))
	r.Get("/uploads/*", fileServer.ServeHTTP)

	// API routes
	r.Route("/api", func(r chi.Router) {
		// Any authenticated user
		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth)

			r.Get("/auth/status", handlers.GetAuthStatus(db))
			r.Get("/gamification/leaderboard", handlers.GetLeaderboard(db))
		})

		// Citizen endpoints
		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth)
			r.Use(middleware.RequireRole(models.RoleCitizen))

			r.Post("/citizen/reports", handlers.SubmitReport(db, classifier, imageStore, dispatcher))
			r.Get("/citizen/reports", handlers.GetMyReports(db))
			r.Get("/citizen/gamification/stats", handlers.GetGamificationStats(db))
		})

		// Municipal endpoints
		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth)
			r.Use(middleware.RequireRole(models.RoleMunicipal))

			r.Get("/municipal/reports", handlers.GetAllReports(db))
			r.Get("/municipal/reports/active", handlers.GetActiveReports(db))
			r.Get("/municipal/reports/history", handlers.GetReportHistory(db))
			r.Patch("/municipal/reports/{id}", handlers.UpdateReportStatus(db, dispatcher))
			r.Post("/municipal/fcm-token", handlers.RegisterFCMToken(db))
		})

		// Admin endpoints
		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth)
			r.Use(middleware.RequireRole(models.RoleAdmin))

			r.Get("/admin/users", handlers.GetUsers(db))
			r.Delete("/admin/users/{id}", handlers.DeleteUser(db))
			r.Get("/admin/reports", handlers.GetAllReports(db))
			r.Get("/admin/analytics", handlers.GetAnalytics(db))
		})

		// Alert feed (municipal and admin)
		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth)
			r.Use(middleware.RequireRole(models.RoleMunicipal, models.RoleAdmin))

			r.Get("/alerts", handlers.GetAlerts(dispatcher))
		})
	})

	// Get port
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
		log.Printf("⚠️  PORT not set, using default: %s", port)
	}

	log.Println("═══════════════════════════════════════════════════════════════════")
	log.Println("✅ ALL INITIALIZATION COMPLETE")
	log.Printf("🚀 Server starting on http://localhost:%s", port)
	log.Println("🔌 Ready to accept requests!")
	log.Println("═══════════════════════════════════════════════════════════════════")

	// Start server
	if err := http.ListenAndServe(":"+port, r); err != nil {
		log.Println("❌ FATAL ERROR: Server failed to start")
		log.Fatal(err)
	}
}
