package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"time"

	clerk "github.com/clerk/clerk-sdk-go/v2"
	gorilllaHandlers "github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"venueBookerAPI/handlers"
	"venueBookerAPI/internal/notification"
	"venueBookerAPI/middleware"
	"venueBookerAPI/services"
)

var (
	dbPool          *pgxpool.Pool
	hub             *services.Hub
	pushDispatcher  *services.PushDispatcher
	bookingService  *services.BookingService
	venueService    *services.VenueService
	reviewService   *services.ReviewService
	messageService  *services.MessageService
	operatorService *services.OperatorService
	nearestService  *services.NearestService
)

func init() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	clerkSecretKey := os.Getenv("CLERK_SECRET_KEY")
	if clerkSecretKey == "" {
		log.Fatal("CLERK_SECRET_KEY environment variable is not set")
	}
	clerk.SetKey(clerkSecretKey)
	log.Println("Clerk initialized successfully")

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL environment variable is not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	poolConfig, err := pgxpool.ParseConfig(dbURL)
	if err != nil {
		log.Fatal("Failed to parse database URL:", err)
	}

	poolConfig.MaxConns = 25
	poolConfig.MinConns = 5
	poolConfig.MaxConnLifetime = time.Hour
	poolConfig.MaxConnIdleTime = 30 * time.Minute
	poolConfig.HealthCheckPeriod = time.Minute

	dbPool, err = pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		log.Fatal("Failed to create connection pool:", err)
	}

	if err := dbPool.Ping(ctx); err != nil {
		log.Fatal("Failed to ping database:", err)
	}

	log.Println("Successfully connected to database")

	hub = services.NewHub()
	pushDispatcher = services.NewPushDispatcher()

	fcmService, err := notification.NewFCMService("./serviceAccountKey.json")
	if err != nil {
		log.Printf("Warning: Could not initialize FCM: %v", err)
	} else {
		pushDispatcher.SetPushProvider(fcmService)
		log.Println("FCM Push Provider initialized successfully")
	}

	var routeProvider services.RouteProvider
	if baseURL := os.Getenv("ROUTING_BASE_URL"); baseURL != "" {
		routeProvider = services.NewOSRMProvider(baseURL)
		log.Printf("Routing provider configured: %s", baseURL)
	} else {
		log.Println("ROUTING_BASE_URL not set, paths will fall back to straight lines")
	}

	bookingService = services.NewBookingService(dbPool)
	venueService = services.NewVenueService(dbPool, hub)
	reviewService = services.NewReviewService(dbPool, hub)
	messageService = services.NewMessageService(dbPool, hub, pushDispatcher)
	operatorService = services.NewOperatorService(dbPool, hub)
	nearestService = services.NewNearestService(dbPool, routeProvider)

	middleware.InitPrometheus()
}

func main() {
	defer func() {
		log.Println("Closing database connection pool...")
		dbPool.Close()
	}()

	hubCtx, hubCancel := context.WithCancel(context.Background())
	defer hubCancel()
	go hub.Run(hubCtx)
	defer pushDispatcher.Stop()

	bookingHandler := handlers.NewBookingHandler(bookingService)
	venueHandler := handlers.NewVenueHandler(venueService)
	reviewHandler := handlers.NewReviewHandler(reviewService)
	messageHandler := handlers.NewMessageHandler(messageService)
	operatorHandler := handlers.NewOperatorHandler(operatorService, nearestService)
	wsHandler := handlers.NewWSHandler(hub)

	r := mux.NewRouter()

	// The websocket endpoint stays outside the rate limiter and monitoring
	// wrappers; its lifetime is the connection, not a request.
	r.Handle("/ws", middleware.OptionalAuthMiddleware(http.HandlerFunc(wsHandler.Connect)))

	standardRouter := r.PathPrefix("/").Subrouter()

	go middleware.CleanupVisitors()

	standardRouter.Use(middleware.RateLimitMiddleware)
	standardRouter.Use(middleware.MonitorMiddleware)

	standardRouter.Handle("/metrics", middleware.BasicAuthMiddleware(promhttp.Handler()))

	standardRouter.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := dbPool.Ping(ctx); err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"status": "unhealthy", "error": "database connection failed"}`))
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "healthy", "service": "venue-booker-api"}`))
	}).Methods("GET")

	api := standardRouter.PathPrefix("/api/v1").Subrouter()

	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.ClerkAuthMiddleware)

	protected.HandleFunc("/bookings", bookingHandler.CreateBooking).Methods("POST")
	protected.HandleFunc("/bookings", bookingHandler.ListMyBookings).Methods("GET")
	protected.HandleFunc("/bookings/{id}", bookingHandler.GetBooking).Methods("GET")
	protected.HandleFunc("/bookings/{id}", bookingHandler.UpdateBooking).Methods("PATCH")
	protected.HandleFunc("/bookings/{id}/status", bookingHandler.SetStatus).Methods("POST")
	protected.HandleFunc("/bookings/{id}/payments", bookingHandler.ApplyPayment).Methods("POST")
	protected.HandleFunc("/bookings/{id}/cancel", bookingHandler.CancelBooking).Methods("POST")

	protected.HandleFunc("/venues", venueHandler.CreateVenue).Methods("POST")
	protected.HandleFunc("/venues", venueHandler.GetAllVenues).Methods("GET")
	protected.HandleFunc("/venues/{id}", venueHandler.GetVenue).Methods("GET")
	protected.HandleFunc("/venues/{id}", venueHandler.DeleteVenue).Methods("DELETE")
	protected.HandleFunc("/venues/{id}/like", venueHandler.LikeVenue).Methods("POST")
	protected.HandleFunc("/venues/{id}/verify", venueHandler.VerifyVenue).Methods("POST")

	protected.HandleFunc("/venues/{id}/reviews", reviewHandler.CreateReview).Methods("POST")
	protected.HandleFunc("/venues/{id}/reviews", reviewHandler.GetVenueReviews).Methods("GET")

	protected.HandleFunc("/messages", messageHandler.SendMessage).Methods("POST")
	protected.HandleFunc("/messages/latest", messageHandler.GetLatestMessages).Methods("GET")
	protected.HandleFunc("/messages/thread", messageHandler.GetThread).Methods("GET")
	protected.HandleFunc("/messages/register-device", messageHandler.RegisterDevice).Methods("POST")

	protected.HandleFunc("/operators", operatorHandler.CreateOperator).Methods("POST")
	protected.HandleFunc("/operators", operatorHandler.GetAllOperators).Methods("GET")
	protected.HandleFunc("/operators/nearest", operatorHandler.FindNearestOperator).Methods("GET")
	protected.HandleFunc("/operators/{id}", operatorHandler.DeleteOperator).Methods("DELETE")
	protected.HandleFunc("/operators/{id}/bookings", operatorHandler.BookOperator).Methods("POST")

	corsHandler := gorilllaHandlers.CORS(
		gorilllaHandlers.AllowedOrigins([]string{"*"}),
		gorilllaHandlers.AllowedMethods([]string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}),
		gorilllaHandlers.AllowedHeaders([]string{"Content-Type", "Authorization"}),
		gorilllaHandlers.ExposedHeaders([]string{"Content-Length"}),
		gorilllaHandlers.AllowCredentials(),
	)

	port := os.Getenv("PORT")
	if port == "" {
		port = "3333"
	}
	port = ":" + port

	server := http.Server{
		Addr:         port,
		Handler:      corsHandler(r),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Printf("Starting server on port %s", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Error starting server:", err)
		}
	}()

	// Graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt)

	sig := <-sigChan
	log.Println("Got signal:", sig)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}

	log.Println("Server shutdown complete")
}
