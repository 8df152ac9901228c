package main

import (
	"context"
	"errors"
	"expvar"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"shiksha/docs" //this is required to generate swagger docs
	"shiksha/internal/auth"
	"shiksha/internal/domain/payments"
	"shiksha/internal/mailer"
	"shiksha/internal/ratelimiter"
	"shiksha/internal/session"
	"shiksha/internal/store"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"go.uber.org/zap"
)

type application struct {
	config        config
	store         store.Storage
	sessions      *session.Cache
	logger        *zap.SugaredLogger
	cld           *cloudinary.Cloudinary
	mailer        mailer.Client
	authenticator auth.Authenticator
	rateLimiter   ratelimiter.Limiter
	receipts      *payments.ReceiptNumberGenerator
}

type config struct {
	addr        string
	db          dbConfig
	env         string
	apiURL      string
	mail        mailConfig
	frontendURL string
	auth        authConfig
	rateLimiter ratelimiter.Config
	receiptSalt string
	sessionTTL  time.Duration
}

type authConfig struct {
	basic basicConfig
	token tokenConfig
}

type tokenConfig struct {
	refreshSecret   string
	secret          string
	accessTokenExp  time.Duration
	refreshTokenExp time.Duration
	iss             string
}

type basicConfig struct {
	user string
	pass string
}

type mailConfig struct {
	fromEmail string
	smtp      smtpConfig
}

type smtpConfig struct {
	host     string
	port     int
	username string
	password string
}

type dbConfig struct {
	addr        string
	maxConns    int
	maxIdleTime time.Duration
}

func (app *application) mount() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{app.config.frontendURL},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Use(middleware.Timeout(60 * time.Second))

	r.With(app.BasicAuthMiddleware()).Get("/health", app.healthCheckHandler)
	r.With(app.BasicAuthMiddleware()).Get("/debug/vars", expvar.Handler().ServeHTTP)

	docsURL := fmt.Sprintf("%s/swagger/doc.json", app.config.addr)
	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL(docsURL)))

	// Token lifecycle endpoints sit outside the guard: they are not page
	// navigations, and an unapproved actor must still be able to sign out.
	r.Group(func(r chi.Router) {
		r.Use(app.AuthContextMiddleware)
		r.Post("/auth/refresh", app.refreshTokenHandler)
		r.Post("/auth/logout", app.logoutHandler)
	})

	// Everything below passes through the route guard: the token middleware
	// only identifies the actor, the guard decides whether the navigation is
	// allowed, and handlers run only after an Allow.
	r.Group(func(r chi.Router) {
		r.Use(app.AuthContextMiddleware)
		r.Use(app.RouteGuardMiddleware)

		r.Get("/", app.homeHandler)
		r.Get("/403", app.forbiddenPageHandler)

		r.Route("/auth", func(r chi.Router) {
			r.With(app.RateLimiterMiddleware).Post("/register", app.registerHandler)
			r.With(app.RateLimiterMiddleware).Post("/login", app.loginHandler)
			r.Get("/pending-approval", app.pendingApprovalHandler)
		})

		r.Route("/users", func(r chi.Router) {
			r.Get("/", app.listUsersHandler)
			// An empty id would otherwise fall through to the router's 404;
			// a missing id is a client error, so answer 400 here.
			r.Delete("/", app.missingUserIDHandler)
			r.Route("/{userID}", func(r chi.Router) {
				r.Get("/", app.getUserHandler)
				r.Patch("/approval", app.setUserApprovalHandler)
				r.Patch("/role", app.setUserRoleHandler)
				r.Patch("/sales-id", app.setUserSalesIDHandler)
				r.Delete("/", app.deleteUserHandler)
			})
		})

		// Teaching-staff namespace. Sales staff reach the same student
		// records under /sales; the two prefixes carry separate entries in
		// the permission table on purpose.
		r.Route("/students", app.mountStudentRoutes)
		r.Route("/sales/students", app.mountStudentRoutes)

		r.Route("/tariffs", func(r chi.Router) {
			r.Get("/", app.listTariffsHandler)
			r.Post("/", app.createTariffHandler)
			r.Route("/{tariffID}", func(r chi.Router) {
				r.Get("/", app.getTariffHandler)
				r.Patch("/", app.updateTariffHandler)
				r.Delete("/", app.deleteTariffHandler)
			})
		})

		r.Get("/reports/payments", app.paymentsReportHandler)
	})

	return r
}

// mountStudentRoutes wires the student CRUD plus nested payments; it is
// mounted under both the teaching and the sales prefixes.
func (app *application) mountStudentRoutes(r chi.Router) {
	r.Get("/", app.listStudentsHandler)
	r.Post("/", app.createStudentHandler)
	r.Route("/{studentID}", func(r chi.Router) {
		r.Get("/", app.getStudentHandler)
		r.Patch("/", app.updateStudentHandler)
		r.Delete("/", app.deleteStudentHandler)

		r.Route("/payments", func(r chi.Router) {
			r.Get("/", app.listPaymentsHandler)
			r.Post("/", app.createPaymentHandler)
			r.Route("/{paymentID}", func(r chi.Router) {
				r.Get("/", app.getPaymentHandler)
				r.Delete("/", app.deletePaymentHandler)
				r.Post("/receipt", app.uploadReceiptHandler)
			})
		})
	})
}

func (app *application) run(mux http.Handler) error {
	// Docs
	docs.SwaggerInfo.Version = version
	docs.SwaggerInfo.Host = app.config.apiURL
	docs.SwaggerInfo.BasePath = "/"

	srv := &http.Server{
		Addr:         app.config.addr,
		Handler:      mux,
		WriteTimeout: time.Second * 30,
		ReadTimeout:  time.Second * 10,
		IdleTimeout:  time.Minute,
	}

	// Implementing graceful shutdown
	shutdown := make(chan error)

	go func() {
		quit := make(chan os.Signal, 1)

		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		s := <-quit

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		app.logger.Infow("signal caught", "signal", s.String())

		shutdown <- srv.Shutdown(ctx)
	}()

	app.logger.Infow("server has started", "addr", app.config.addr, "env", app.config.env)

	err := srv.ListenAndServe()
	if !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	err = <-shutdown
	if err != nil {
		return err
	}

	app.logger.Infow("server has stopped", "addr", app.config.addr)

	return nil
}
