package config

import (
	"fmt"

	"go.uber.org/zap"
)

// setLogger builds the zap logger used for the given environment
func setLogger(environment string) (*zap.Logger, error) {
	switch environment {
	case "local":
		return zap.NewExample(), nil
	case "development":
		return zap.NewDevelopment()
	case "production":
		return zap.NewProduction()
	}
	return nil, fmt.Errorf("unknown environment %q", environment)
}
