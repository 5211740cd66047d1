package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/linesmerrill/casetrack-api/api"
	"github.com/linesmerrill/casetrack-api/config"
	"github.com/linesmerrill/casetrack-api/databases"
	"github.com/linesmerrill/casetrack-api/models"
)

// Auth exposes registration
type Auth struct {
	DB       databases.UserDatabase
	Validate *Validator
}

// RegisterHandler creates a victim account. Users registering without an
// e-mail address log in with <saId>@casetrack.saps.gov.za.
func (a Auth) RegisterHandler(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if err := decodeBody(r, &req, a.Validate); err != nil {
		errorResponse("invalid registration", w, err)
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" {
		email = req.IDNumber + "@" + models.EmailDomain
	}

	a.createUser(w, r, models.User{
		FullName:  strings.TrimSpace(req.FullName),
		IDNumber:  req.IDNumber,
		Phone:     req.Phone,
		Email:     email,
		Role:      models.RoleVictim,
		Anonymous: req.Anonymous,
	}, req.Password)
}

// CreateStaffHandler lets an administrator create a police or admin account
func (a Auth) CreateStaffHandler(w http.ResponseWriter, r *http.Request) {
	var req models.StaffRequest
	if err := decodeBody(r, &req, a.Validate); err != nil {
		errorResponse("invalid staff account", w, err)
		return
	}

	a.createUser(w, r, models.User{
		FullName: strings.TrimSpace(req.FullName),
		IDNumber: req.IDNumber,
		Phone:    req.Phone,
		Email:    strings.ToLower(strings.TrimSpace(req.Email)),
		Role:     req.Role,
	}, req.Password)
}

func (a Auth) createUser(w http.ResponseWriter, r *http.Request, user models.User, password string) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		config.ErrorStatus("failed to hash password", http.StatusInternalServerError, w, err)
		return
	}
	user.ID = uuid.NewString()
	user.PasswordHash = string(hash)
	user.CreatedAt = time.Now()

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	if err := a.DB.InsertOne(ctx, user); err != nil {
		errorResponse("failed to register user", w, err)
		return
	}
	if p, ok := api.PrincipalFrom(r.Context()); ok {
		zap.S().Infow("user registered", "userId", user.ID, "role", user.Role, "createdBy", p.ID)
	} else {
		zap.S().Infow("user registered", "userId", user.ID, "role", user.Role)
	}

	writeJSON(w, http.StatusCreated, user)
}
