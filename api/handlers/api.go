package handlers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/linesmerrill/casetrack-api/api"
	"github.com/linesmerrill/casetrack-api/cases"
	"github.com/linesmerrill/casetrack-api/config"
	"github.com/linesmerrill/casetrack-api/databases"
	"github.com/linesmerrill/casetrack-api/feed"
	"github.com/linesmerrill/casetrack-api/models"
	"github.com/linesmerrill/casetrack-api/notify"
)

const indexTimeout = 30 * time.Second

// App stores the router and the services behind it, so it can be reused
type App struct {
	Router *mux.Router
	Config config.Config

	client   databases.ClientHelper
	dbHelper databases.DatabaseHelper

	users               databases.UserDatabase
	cases               *cases.Service
	dispatcher          *notify.Dispatcher
	hub                 *NotificationHub
	caseChanges         *feed.Feed
	notificationChanges *feed.Feed
}

// New creates a new mux router and all the routes
func (a *App) New() *mux.Router {
	authn := api.NewAuthenticator(a.users, a.Config.JWTSecret, a.Config.TokenTTL)
	validate := NewValidator()

	au := Auth{DB: a.users, Validate: validate}
	c := Case{Cases: a.cases, Validate: validate}
	n := Notification{Dispatcher: a.dispatcher, Hub: a.hub, Changes: a.notificationChanges}
	cf := CaseFeed{Changes: a.caseChanges}

	victims := api.RequireRole(models.RoleVictim)
	staff := api.RequireRole(models.RolePolice, models.RoleAdmin)
	admins := api.RequireRole(models.RoleAdmin)
	secured := func(h http.HandlerFunc, gates ...func(http.Handler) http.Handler) http.Handler {
		var out http.Handler = h
		for i := len(gates) - 1; i >= 0; i-- {
			out = gates[i](out)
		}
		return authn.Middleware(out)
	}

	r := mux.NewRouter()
	r.Use(api.LoggingMiddleware)

	// healthchex
	r.HandleFunc("/health", healthCheckHandler)

	ws := r.PathPrefix("/ws").Subrouter()
	ws.Use(api.TokenFromQuery)
	ws.Handle("/cases", secured(cf.CasesWebSocketHandler)).Methods("GET")
	ws.Handle("/notifications", secured(n.NotificationsWebSocketHandler)).Methods("GET")

	apiCreate := r.PathPrefix("/api/v1").Subrouter()
	apiCreate.Use(api.TimeoutMiddleware(a.Config.RequestTimeout))

	apiCreate.Handle("/auth/register", http.HandlerFunc(au.RegisterHandler)).Methods("POST")
	apiCreate.Handle("/auth/token", secured(authn.CreateToken)).Methods("POST")
	apiCreate.Handle("/auth/logout", secured(authn.RevokeToken)).Methods("DELETE")
	apiCreate.Handle("/users", secured(au.CreateStaffHandler, admins)).Methods("POST")

	apiCreate.Handle("/cases", secured(c.CreateCaseHandler, victims)).Methods("POST")
	apiCreate.Handle("/cases", secured(c.CasesHandler, staff)).Methods("GET")
	apiCreate.Handle("/cases/mine", secured(c.MyCasesHandler, victims)).Methods("GET")
	apiCreate.Handle("/cases/{case_id}", secured(c.CaseByIDHandler)).Methods("GET")
	apiCreate.Handle("/cases/{case_id}/status", secured(c.UpdateStatusHandler, staff)).Methods("PUT")
	apiCreate.Handle("/cases/{case_id}/escalate", secured(c.EscalateHandler, admins)).Methods("POST")
	apiCreate.Handle("/cases/{case_id}/officer", secured(c.AssignOfficerHandler, staff)).Methods("PUT")
	apiCreate.Handle("/cases/{case_id}/stalled", secured(c.StalledHandler, admins)).Methods("PUT")
	apiCreate.Handle("/cases/{case_id}/report", secured(c.CaseReportHandler)).Methods("GET")
	apiCreate.Handle("/stats", secured(c.StatsHandler, staff)).Methods("GET")

	apiCreate.Handle("/notifications", secured(n.NotificationsHandler)).Methods("GET")
	apiCreate.Handle("/notifications/{notification_id}/read", secured(n.MarkNotificationAsReadHandler)).Methods("PUT")

	return r
}

// Initialize is invoked by main to connect with the database and create a router
func (a *App) Initialize() error {
	var (
		caseDB         databases.CaseDatabase
		notificationDB databases.NotificationDatabase
	)

	switch a.Config.Store {
	case config.StoreMemory:
		caseDB = databases.NewMemoryCaseDatabase()
		notificationDB = databases.NewMemoryNotificationDatabase()
		a.users = databases.NewMemoryUserDatabase()
		zap.S().Info("casetrack-api is using the in-memory store")

	default:
		client, err := databases.NewClient(&a.Config)
		if err != nil {
			zap.S().Errorw("failed to create new client", "error", err)
			return err
		}
		ctx, cancel := context.WithTimeout(context.Background(), indexTimeout)
		defer cancel()
		if err := client.Connect(ctx); err != nil {
			zap.S().Errorw("failed to connect to database", "error", err)
			return err
		}
		a.client = client
		a.dbHelper = databases.NewDatabase(&a.Config, client)
		zap.S().Info("casetrack-api has connected to the database")

		caseDB = databases.NewCaseDatabase(a.dbHelper)
		notificationDB = databases.NewNotificationDatabase(a.dbHelper)
		a.users = databases.NewUserDatabase(a.dbHelper)

		for _, ensure := range []func(context.Context) error{
			caseDB.EnsureIndexes,
			notificationDB.EnsureIndexes,
			a.users.EnsureIndexes,
		} {
			if err := ensure(ctx); err != nil {
				return fmt.Errorf("failed to create indexes: %w", err)
			}
		}
	}

	a.caseChanges = feed.New()
	a.notificationChanges = feed.New()
	a.hub = NewNotificationHub()

	a.dispatcher = notify.NewDispatcher(notificationDB, a.notificationChanges)
	a.dispatcher.Pusher = a.hub
	if a.Config.SendgridAPIKey != "" {
		a.dispatcher.Mailer = notify.NewSendgridMailer(a.Config.SendgridAPIKey, a.Config.MailFrom, a.Config.BaseURL, a.users)
	} else {
		zap.S().Warn("SENDGRID_API_KEY is not set, notifications will not be e-mailed")
	}

	a.cases = cases.NewService(caseDB, a.dispatcher, a.caseChanges)

	// initialize api router
	a.initializeRoutes()
	return nil
}

// Close disconnects from the database
func (a *App) Close(ctx context.Context) error {
	if a.client == nil {
		return nil
	}
	return a.client.Disconnect(ctx)
}

func (a *App) initializeRoutes() {
	a.Router = a.New()
}

func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, models.HealthCheckResponse{Alive: true})
}
