// Package firestoredb provides Cloud Firestore client management.
package firestoredb

import (
	"context"
	"errors"
	"fmt"
	"os"

	"cloud.google.com/go/firestore"
)

// ErrProjectRequired is returned when no project ID is configured.
var ErrProjectRequired = errors.New("firestore project id is required")

// Config holds Firestore connection configuration.
type Config struct {
	ProjectID string
	// DatabaseID selects a named database; empty means "(default)".
	DatabaseID string
}

// ConfigFromEnv creates a Config from environment variables.
// FIRESTORE_EMULATOR_HOST is read by the client library itself.
func ConfigFromEnv() Config {
	return Config{
		ProjectID:  getEnvOrDefault("FIRESTORE_PROJECT_ID", os.Getenv("GOOGLE_CLOUD_PROJECT")),
		DatabaseID: os.Getenv("FIRESTORE_DATABASE_ID"),
	}
}

// Connect creates a Firestore client.
func Connect(ctx context.Context, cfg Config) (*firestore.Client, error) {
	if cfg.ProjectID == "" {
		return nil, ErrProjectRequired
	}

	var (
		client *firestore.Client
		err    error
	)
	if cfg.DatabaseID != "" {
		client, err = firestore.NewClientWithDatabase(ctx, cfg.ProjectID, cfg.DatabaseID)
	} else {
		client, err = firestore.NewClient(ctx, cfg.ProjectID)
	}
	if err != nil {
		return nil, fmt.Errorf("create firestore client: %w", err)
	}
	return client, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
