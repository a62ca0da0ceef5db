package sqlstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/projecta/notifier/internal/model"
	"github.com/projecta/notifier/internal/repository"
)

type projectRepository struct {
	*DB
}

type taskRow struct {
	ProjectID string     `db:"project_id"`
	ID        string     `db:"id"`
	Title     string     `db:"title"`
	Status    string     `db:"status"`
	DueDate   *time.Time `db:"due_date"`
	Assignees string     `db:"assignees"`
}

type memberRow struct {
	ProjectID string `db:"project_id"`
	UserID    string `db:"user_id"`
}

func (r *projectRepository) ListForUser(ctx context.Context, userID string) (projects []*model.Project, err error) {
	defer r.track("list_projects")(&err)

	query := r.db.Rebind(`
		SELECT id, title, owner_id, updated_at FROM projects
		WHERE LOWER(owner_id) = LOWER(?)
		   OR id IN (SELECT project_id FROM project_members WHERE LOWER(user_id) = LOWER(?))
		ORDER BY id`)
	if err = r.db.SelectContext(ctx, &projects, query, userID, userID); err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	if err = r.loadChildren(ctx, projects); err != nil {
		return nil, err
	}
	return projects, nil
}

func (r *projectRepository) Get(ctx context.Context, projectID string) (project *model.Project, err error) {
	defer r.track("get_project")(&err)

	project = &model.Project{}
	query := r.db.Rebind(`SELECT id, title, owner_id, updated_at FROM projects WHERE id = ?`)
	if err = r.db.GetContext(ctx, project, query, projectID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get project: %w", err)
	}
	if err = r.loadChildren(ctx, []*model.Project{project}); err != nil {
		return nil, err
	}
	return project, nil
}

func (r *projectRepository) ListActiveUserIDs(ctx context.Context) (ids []string, err error) {
	defer r.track("list_active_users")(&err)

	const query = `
		SELECT owner_id AS user_id FROM projects
		UNION
		SELECT user_id FROM project_members
		ORDER BY user_id`
	if err = r.db.SelectContext(ctx, &ids, query); err != nil {
		return nil, fmt.Errorf("failed to list active users: %w", err)
	}
	return ids, nil
}

func (r *projectRepository) loadChildren(ctx context.Context, projects []*model.Project) error {
	if len(projects) == 0 {
		return nil
	}

	byID := make(map[string]*model.Project, len(projects))
	ids := make([]string, 0, len(projects))
	for _, p := range projects {
		byID[p.ID] = p
		ids = append(ids, p.ID)
	}

	query, args, err := sqlx.In(`SELECT project_id, user_id FROM project_members WHERE project_id IN (?) ORDER BY user_id`, ids)
	if err != nil {
		return fmt.Errorf("failed to build members query: %w", err)
	}
	var members []memberRow
	if err := r.db.SelectContext(ctx, &members, r.db.Rebind(query), args...); err != nil {
		return fmt.Errorf("failed to load project members: %w", err)
	}
	for _, m := range members {
		p := byID[m.ProjectID]
		p.Members = append(p.Members, m.UserID)
	}

	query, args, err = sqlx.In(`
		SELECT project_id, id, title, status, due_date, assignees
		FROM tasks WHERE project_id IN (?) ORDER BY project_id, position`, ids)
	if err != nil {
		return fmt.Errorf("failed to build tasks query: %w", err)
	}
	var tasks []taskRow
	if err := r.db.SelectContext(ctx, &tasks, r.db.Rebind(query), args...); err != nil {
		return fmt.Errorf("failed to load tasks: %w", err)
	}
	for _, row := range tasks {
		task := model.Task{
			ID:      row.ID,
			Title:   row.Title,
			Status:  model.TaskStatus(row.Status),
			DueDate: row.DueDate,
		}
		if err := json.Unmarshal([]byte(row.Assignees), &task.Assignees); err != nil {
			return fmt.Errorf("failed to decode assignees of task %s: %w", row.ID, err)
		}
		p := byID[row.ProjectID]
		p.Tasks = append(p.Tasks, task)
	}
	return nil
}

// SaveProject inserts or replaces a project together with its members and tasks.
// The main application owns projects; this is used by the seed tool and tests.
func (s *DB) SaveProject(ctx context.Context, project *model.Project) (err error) {
	defer s.track("save_project")(&err)

	err = s.WithTx(ctx, func(tx *sqlx.Tx) error {
		updatedAt := project.UpdatedAt
		if updatedAt.IsZero() {
			updatedAt = time.Now()
		}
		_, err := tx.ExecContext(ctx, tx.Rebind(`
			INSERT INTO projects (id, title, owner_id, updated_at) VALUES (?, ?, ?, ?)
			ON CONFLICT (id) DO UPDATE SET title = excluded.title, owner_id = excluded.owner_id, updated_at = excluded.updated_at`),
			project.ID, project.Title, project.OwnerID, updatedAt.UTC())
		if err != nil {
			return fmt.Errorf("failed to upsert project: %w", err)
		}

		if _, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM project_members WHERE project_id = ?`), project.ID); err != nil {
			return fmt.Errorf("failed to clear members: %w", err)
		}
		if _, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM tasks WHERE project_id = ?`), project.ID); err != nil {
			return fmt.Errorf("failed to clear tasks: %w", err)
		}

		seen := make(map[string]bool)
		for _, member := range project.Members {
			if seen[member] {
				continue
			}
			seen[member] = true
			if _, err := tx.ExecContext(ctx, tx.Rebind(`INSERT INTO project_members (project_id, user_id) VALUES (?, ?)`), project.ID, member); err != nil {
				return fmt.Errorf("failed to insert member %s: %w", member, err)
			}
		}

		for i, task := range project.Tasks {
			assignees := task.Assignees
			if assignees == nil {
				assignees = []string{}
			}
			encoded, err := json.Marshal(assignees)
			if err != nil {
				return fmt.Errorf("failed to encode assignees of task %s: %w", task.ID, err)
			}
			var due *time.Time
			if task.DueDate != nil {
				d := time.Date(task.DueDate.Year(), task.DueDate.Month(), task.DueDate.Day(), 0, 0, 0, 0, time.UTC)
				due = &d
			}
			_, err = tx.ExecContext(ctx, tx.Rebind(`
				INSERT INTO tasks (project_id, id, position, title, status, due_date, assignees)
				VALUES (?, ?, ?, ?, ?, ?, ?)`),
				project.ID, task.ID, i, task.Title, string(task.Status), due, string(encoded))
			if err != nil {
				return fmt.Errorf("failed to insert task %s: %w", task.ID, err)
			}
		}
		return nil
	})
	return err
}
