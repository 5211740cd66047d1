package config

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/caarlos0/env/v11"
	"go.uber.org/zap"

	"github.com/linesmerrill/casetrack-api/models"
)

// Store backends
const (
	StoreMongo  = "mongo"
	StoreMemory = "memory"
)

// Config holds the project config values
type Config struct {
	URL            string        `env:"DB_URI"`
	DatabaseName   string        `env:"DB_NAME" envDefault:"casetrack"`
	BaseURL        string        `env:"BASE_URL"`
	Port           string        `env:"PORT" envDefault:"8080"`
	Environment    string        `env:"ENVIRONMENT" envDefault:"local"`
	Store          string        `env:"STORE" envDefault:"mongo"`
	JWTSecret      string        `env:"JWT_SECRET,required,notEmpty"`
	TokenTTL       time.Duration `env:"TOKEN_TTL" envDefault:"24h"`
	SendgridAPIKey string        `env:"SENDGRID_API_KEY"`
	MailFrom       string        `env:"MAIL_FROM" envDefault:"no-reply@casetrack.saps.gov.za"`
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT" envDefault:"30s"`
}

// New sets up all config related services
func New() (*Config, error) {
	conf := &Config{}
	if err := env.Parse(conf); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	switch conf.Store {
	case StoreMongo, StoreMemory:
	default:
		return nil, fmt.Errorf("unknown STORE %q, want %q or %q", conf.Store, StoreMongo, StoreMemory)
	}

	//setup zap logger and replace default logger
	logger, err := setLogger(conf.Environment)
	if err != nil {
		return nil, err
	}
	_ = zap.ReplaceGlobals(logger)

	return conf, nil
}

// ErrorStatus is a useful function that will log, write http headers and body for a
// give message, status code and err
func ErrorStatus(message string, httpStatusCode int, w http.ResponseWriter, err error) {
	zap.S().Errorw(message, "error", err)
	errText := ""
	if err != nil {
		errText = err.Error()
	}
	b, _ := json.Marshal(models.ErrorMessageResponse{Response: models.MessageError{Message: message, Error: errText}})
	w.WriteHeader(httpStatusCode)
	w.Write(b)
}
