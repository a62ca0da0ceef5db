package firestore

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go/v4"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/projecta/notifier/internal/repository"
	"github.com/projecta/notifier/pkg/metrics"
)

// Collection names shared with the main application.
const (
	collectionProjects      = "projects"
	collectionNotifications = "notifications"
	collectionSettings      = "notification_settings"
)

type Config struct {
	ProjectID       string
	DatabaseURL     string
	CredentialsFile string
	CredentialsJSON []byte
}

// Store is a Firestore-backed implementation of the repositories.
type Store struct {
	client  *firestore.Client
	metrics *metrics.Metrics
}

// NewClient builds a Firebase app and returns its Firestore client.
// With neither a credentials file nor JSON, application default credentials
// (or FIRESTORE_EMULATOR_HOST) are used.
func NewClient(ctx context.Context, cfg Config) (*firestore.Client, error) {
	var opts []option.ClientOption
	switch {
	case cfg.CredentialsFile != "":
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	case len(cfg.CredentialsJSON) > 0:
		opts = append(opts, option.WithCredentialsJSON(cfg.CredentialsJSON))
	}

	app, err := firebase.NewApp(ctx, &firebase.Config{
		ProjectID:   cfg.ProjectID,
		DatabaseURL: cfg.DatabaseURL,
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create firebase app: %w", err)
	}

	client, err := app.Firestore(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create firestore client: %w", err)
	}
	return client, nil
}

func NewStore(client *firestore.Client, m *metrics.Metrics) *Store {
	return &Store{client: client, metrics: m}
}

// Repositories exposes the store through the repository interfaces.
func (s *Store) Repositories() *repository.Store {
	return &repository.Store{
		Projects:      &projectRepository{s},
		ProjectWriter: s,
		Settings:      &settingsRepository{s},
		Notifications: &notificationRepository{s},
		Ping:          s.ping,
		Close:         s.client.Close,
	}
}

func (s *Store) ping(ctx context.Context) error {
	_, err := s.client.Collection(collectionSettings).Limit(1).Documents(ctx).GetAll()
	return err
}

func (s *Store) track(operation string) func(*error) {
	return func(errp *error) {
		if s.metrics == nil {
			return
		}
		st := "success"
		if *errp != nil {
			st = "error"
		}
		s.metrics.DatabaseOperations.WithLabelValues(operation, st).Inc()
	}
}

func isNotFound(err error) bool {
	return status.Code(err) == codes.NotFound
}
