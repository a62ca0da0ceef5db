package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/projecta/notifier/internal/model"
	"github.com/projecta/notifier/internal/repository"
)

// Store keeps projects, settings and notifications in process memory.
type Store struct {
	mu            sync.RWMutex
	projects      map[string]*model.Project
	settings      map[string]*model.NotificationSettings
	notifications map[string]*model.Notification
}

func NewStore() *Store {
	return &Store{
		projects:      make(map[string]*model.Project),
		settings:      make(map[string]*model.NotificationSettings),
		notifications: make(map[string]*model.Notification),
	}
}

// Repositories exposes the store through the repository interfaces.
func (s *Store) Repositories() *repository.Store {
	return &repository.Store{
		Projects:      projectRepository{s},
		ProjectWriter: s,
		Settings:      settingsRepository{s},
		Notifications: notificationRepository{s},
		Ping:          func(context.Context) error { return nil },
		Close:         func() error { return nil },
	}
}

// SaveProject inserts or replaces a project.
func (s *Store) SaveProject(_ context.Context, project *model.Project) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.projects[project.ID] = cloneProject(project)
	return nil
}

type projectRepository struct{ s *Store }

func (r projectRepository) ListForUser(_ context.Context, userID string) ([]*model.Project, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var out []*model.Project
	for _, p := range r.s.projects {
		if p.HasMember(userID) {
			out = append(out, cloneProject(p))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r projectRepository) Get(_ context.Context, projectID string) (*model.Project, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	p, ok := r.s.projects[projectID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return cloneProject(p), nil
}

func (r projectRepository) ListActiveUserIDs(_ context.Context) ([]string, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	seen := make(map[string]bool)
	var out []string
	for _, p := range r.s.projects {
		for _, id := range p.Team() {
			if !seen[id] {
				seen[id] = true
				out = append(out, id)
			}
		}
	}
	sort.Strings(out)
	return out, nil
}

type settingsRepository struct{ s *Store }

func (r settingsRepository) Get(_ context.Context, userID string) (*model.NotificationSettings, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	st, ok := r.s.settings[userID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *st
	return &cp, nil
}

func (r settingsRepository) Save(_ context.Context, userID string, settings *model.NotificationSettings) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	cp := *settings
	r.s.settings[userID] = &cp
	return nil
}

type notificationRepository struct{ s *Store }

func (r notificationRepository) Create(_ context.Context, n *model.Notification) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	r.s.notifications[n.ID] = cloneNotification(n)
	return nil
}

func (r notificationRepository) ListByUser(_ context.Context, userID string) ([]*model.Notification, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var out []*model.Notification
	for _, n := range r.s.notifications {
		if n.UserID == userID {
			out = append(out, cloneNotification(n))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (r notificationRepository) MarkRead(_ context.Context, userID, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	n, ok := r.s.notifications[id]
	if !ok || n.UserID != userID {
		return repository.ErrNotFound
	}
	n.IsRead = true
	return nil
}

func (r notificationRepository) MarkAllRead(_ context.Context, userID string) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var count int64
	for _, n := range r.s.notifications {
		if n.UserID == userID && !n.IsRead {
			n.IsRead = true
			count++
		}
	}
	return count, nil
}

func (r notificationRepository) Delete(_ context.Context, userID, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	n, ok := r.s.notifications[id]
	if !ok || n.UserID != userID {
		return repository.ErrNotFound
	}
	delete(r.s.notifications, id)
	return nil
}

func (r notificationRepository) DeleteReadBefore(_ context.Context, cutoff time.Time) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var count int64
	for id, n := range r.s.notifications {
		if n.IsRead && n.CreatedAt.Before(cutoff) {
			delete(r.s.notifications, id)
			count++
		}
	}
	return count, nil
}

func cloneProject(p *model.Project) *model.Project {
	cp := *p
	cp.Members = append([]string(nil), p.Members...)
	cp.Tasks = make([]model.Task, len(p.Tasks))
	for i, t := range p.Tasks {
		t.Assignees = append([]string(nil), t.Assignees...)
		if t.DueDate != nil {
			d := *t.DueDate
			t.DueDate = &d
		}
		cp.Tasks[i] = t
	}
	return &cp
}

func cloneNotification(n *model.Notification) *model.Notification {
	cp := *n
	if n.Data != nil {
		cp.Data = make(map[string]interface{}, len(n.Data))
		for k, v := range n.Data {
			cp.Data[k] = v
		}
	}
	return &cp
}
