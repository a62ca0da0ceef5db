package model

import (
	"strings"
	"time"
)

type TaskStatus string

const (
	TaskStatusPending   TaskStatus = "pending"
	TaskStatusActive    TaskStatus = "active"
	TaskStatusCompleted TaskStatus = "completed"
)

// Task is read-only here; the main application owns its lifecycle.
// DueDate is a calendar date: only its year, month and day are significant.
type Task struct {
	ID        string     `json:"id" db:"id" firestore:"id"`
	Title     string     `json:"title" db:"title" firestore:"title"`
	Status    TaskStatus `json:"status" db:"status" firestore:"status"`
	DueDate   *time.Time `json:"due_date,omitempty" db:"due_date" firestore:"due_date,omitempty"`
	Assignees []string   `json:"assignees,omitempty" db:"-" firestore:"assignees,omitempty"`
}

type Project struct {
	ID        string    `json:"id" db:"id" firestore:"id"`
	Title     string    `json:"title" db:"title" firestore:"title"`
	OwnerID   string    `json:"owner_id" db:"owner_id" firestore:"owner_id"`
	Members   []string  `json:"members,omitempty" db:"-" firestore:"members,omitempty"`
	Tasks     []Task    `json:"tasks,omitempty" db:"-" firestore:"tasks,omitempty"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at" firestore:"updated_at"`
}

// Team returns the owner and members, owner first, without duplicates.
func (p *Project) Team() []string {
	team := make([]string, 0, len(p.Members)+1)
	seen := make(map[string]bool, len(p.Members)+1)
	for _, id := range append([]string{p.OwnerID}, p.Members...) {
		key := NormalizeIdentity(id)
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		team = append(team, id)
	}
	return team
}

// Task looks up a task by id.
func (p *Project) Task(id string) (*Task, bool) {
	for i := range p.Tasks {
		if p.Tasks[i].ID == id {
			return &p.Tasks[i], true
		}
	}
	return nil, false
}

// HasMember reports whether userID is the owner or a member.
func (p *Project) HasMember(userID string) bool {
	want := NormalizeIdentity(userID)
	for _, id := range p.Team() {
		if NormalizeIdentity(id) == want {
			return true
		}
	}
	return false
}

// IsAssignee reports whether userID is among the task's assignees.
func (t *Task) IsAssignee(userID string) bool {
	want := NormalizeIdentity(userID)
	if want == "" {
		return false
	}
	for _, a := range t.Assignees {
		if NormalizeIdentity(a) == want {
			return true
		}
	}
	return false
}

// NormalizeIdentity folds a user identifier (id, name or email) to its comparison form.
func NormalizeIdentity(id string) string {
	return strings.ToLower(strings.TrimSpace(id))
}
