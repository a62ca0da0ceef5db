package config

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/kelseyhightower/envconfig"

	"github.com/projecta/notifier/internal/repository/firestore"
)

// FirebaseEnv is a service account spread over FIREBASE_* variables, the way
// hosting platforms usually inject it.
type FirebaseEnv struct {
	ProjectID    string `envconfig:"PROJECT_ID"`
	DatabaseURL  string `envconfig:"DATABASE_URL"`
	PrivateKeyID string `envconfig:"PRIVATE_KEY_ID"`
	PrivateKey   string `envconfig:"PRIVATE_KEY"`
	ClientEmail  string `envconfig:"CLIENT_EMAIL"`
	ClientID     string `envconfig:"CLIENT_ID"`
	TokenURI     string `envconfig:"TOKEN_URI" default:"https://oauth2.googleapis.com/token"`
}

type serviceAccount struct {
	Type         string `json:"type"`
	ProjectID    string `json:"project_id"`
	PrivateKeyID string `json:"private_key_id"`
	PrivateKey   string `json:"private_key"`
	ClientEmail  string `json:"client_email"`
	ClientID     string `json:"client_id"`
	TokenURI     string `json:"token_uri"`
}

func LoadFirebaseEnv() (*FirebaseEnv, error) {
	var env FirebaseEnv
	if err := envconfig.Process("firebase", &env); err != nil {
		return nil, fmt.Errorf("failed to read firebase environment: %w", err)
	}
	return &env, nil
}

// CredentialsJSON renders the variables as a service-account document. It
// returns nil when no private key is set.
func (e *FirebaseEnv) CredentialsJSON() ([]byte, error) {
	if e.PrivateKey == "" || e.ClientEmail == "" {
		return nil, nil
	}
	return json.Marshal(serviceAccount{
		Type:         "service_account",
		ProjectID:    e.ProjectID,
		PrivateKeyID: e.PrivateKeyID,
		// keys pasted into env files usually carry literal \n
		PrivateKey:  strings.ReplaceAll(e.PrivateKey, `\n`, "\n"),
		ClientEmail: e.ClientEmail,
		ClientID:    e.ClientID,
		TokenURI:    e.TokenURI,
	})
}

// ToFirestoreConfig prefers the credentials file from the config and falls
// back to the FIREBASE_* environment.
func (c *StoreConfig) ToFirestoreConfig() (firestore.Config, error) {
	cfg := firestore.Config{
		ProjectID:       c.Firebase.ProjectID,
		DatabaseURL:     c.Firebase.DatabaseURL,
		CredentialsFile: c.Firebase.CredentialsFile,
	}
	if cfg.CredentialsFile != "" {
		return cfg, nil
	}

	env, err := LoadFirebaseEnv()
	if err != nil {
		return cfg, err
	}
	if cfg.ProjectID == "" {
		cfg.ProjectID = env.ProjectID
	}
	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = env.DatabaseURL
	}
	creds, err := env.CredentialsJSON()
	if err != nil {
		return cfg, fmt.Errorf("failed to encode firebase credentials: %w", err)
	}
	cfg.CredentialsJSON = creds
	return cfg, nil
}
