package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	"github.com/kmoran/personal-library/auth"
	"github.com/kmoran/personal-library/config"
	"github.com/kmoran/personal-library/handlers"
	"github.com/kmoran/personal-library/middleware"
	"github.com/kmoran/personal-library/models"
	"github.com/kmoran/personal-library/store"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("config:", err)
	}

	ctx := context.Background()
	db, err := store.NewMongoDB(ctx, cfg.MongoURI, cfg.DBName)
	if err != nil {
		log.Fatal("mongodb:", err)
	}
	defer func() {
		if err := db.Disconnect(context.Background()); err != nil {
			log.Println("mongodb disconnect:", err)
		}
	}()
	if err := db.EnsureIndexes(ctx); err != nil {
		log.Fatal("indexes:", err)
	}

	authService := auth.NewService(db, cfg.JWTSecret, time.Duration(cfg.JWTTTLHours)*time.Hour)
	google := auth.NewGoogle(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.OAuthRedirectURL, db)
	if google == nil {
		log.Println("warning: GOOGLE_CLIENT_ID not set; Google sign-in disabled")
	}

	authHandler := &handlers.AuthHandler{
		DB:        db,
		Auth:      authService,
		Google:    google,
		ClientURL: cfg.ClientURL,
	}
	authorsHandler := &handlers.AuthorsHandler{DB: db}
	booksHandler := &handlers.BooksHandler{DB: db}
	loansHandler := &handlers.LoansHandler{DB: db}

	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{cfg.ClientURL},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))
	r.Use(chimw.Logger)
	r.Use(middleware.Recover)
	r.Use(chimw.RealIP)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"success":false,"error":"Route not found"}`))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusMethodNotAllowed)
		w.Write([]byte(`{"success":false,"error":"Method not allowed"}`))
	})

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"message":"Welcome to the Personal Library API"}`))
	})
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	requireAuth := middleware.Auth(authService)
	anyUser := middleware.RequireRole(models.RoleUser, models.RoleAdmin)
	adminOnly := middleware.RequireRole(models.RoleAdmin)

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", authHandler.Register)
			r.Post("/login", authHandler.Login)
			r.Get("/logout", authHandler.Logout)
			r.Get("/google", authHandler.GoogleRedirect)
			r.Get("/google/callback", authHandler.GoogleCallback)
			r.Group(func(r chi.Router) {
				r.Use(requireAuth)
				r.Get("/me", authHandler.Me)
			})
		})

		r.Route("/authors", func(r chi.Router) {
			r.Get("/", authorsHandler.List)
			r.Get("/stats", authorsHandler.Stats)
			r.Get("/{id}", authorsHandler.Get)
			r.Group(func(r chi.Router) {
				r.Use(requireAuth, anyUser)
				r.Post("/", authorsHandler.Create)
				r.Put("/{id}", authorsHandler.Update)
			})
			r.Group(func(r chi.Router) {
				r.Use(requireAuth, adminOnly)
				r.Delete("/{id}", authorsHandler.Delete)
			})
		})

		r.Route("/books", func(r chi.Router) {
			r.Get("/", booksHandler.List)
			r.Get("/stats", booksHandler.Stats)
			r.Get("/{id}", booksHandler.Get)
			r.Group(func(r chi.Router) {
				r.Use(requireAuth, anyUser)
				r.Post("/", booksHandler.Create)
				r.Put("/{id}", booksHandler.Update)
			})
			r.Group(func(r chi.Router) {
				r.Use(requireAuth, adminOnly)
				r.Delete("/{id}", booksHandler.Delete)
			})
		})

		r.Route("/loans", func(r chi.Router) {
			r.Use(requireAuth, anyUser)
			r.Get("/", loansHandler.List)
			r.Get("/stats", loansHandler.Stats)
			r.Get("/{id}", loansHandler.Get)
			r.Post("/", loansHandler.Create)
			r.Put("/{id}", loansHandler.Update)
			r.Delete("/{id}", loansHandler.Delete)
		})
	})

	server := &http.Server{Addr: ":" + cfg.Port, Handler: r}
	go func() {
		log.Println("server listening on :" + cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal(err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Println("shutdown:", err)
	}
}
