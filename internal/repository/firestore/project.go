package firestore

import (
	"context"
	"fmt"
	"sort"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"

	"github.com/projecta/notifier/internal/model"
	"github.com/projecta/notifier/internal/repository"
)

type projectRepository struct {
	*Store
}

func (r *projectRepository) ListForUser(ctx context.Context, userID string) (projects []*model.Project, err error) {
	defer r.track("list_projects")(&err)

	col := r.client.Collection(collectionProjects)
	seen := make(map[string]bool)

	for _, q := range []firestore.Query{
		col.Where("owner_id", "==", userID),
		col.Where("members", "array-contains", userID),
	} {
		found, err := r.collect(ctx, q)
		if err != nil {
			return nil, err
		}
		for _, p := range found {
			if seen[p.ID] {
				continue
			}
			seen[p.ID] = true
			projects = append(projects, p)
		}
	}

	sort.Slice(projects, func(i, j int) bool { return projects[i].ID < projects[j].ID })
	return projects, nil
}

func (r *projectRepository) Get(ctx context.Context, projectID string) (project *model.Project, err error) {
	defer r.track("get_project")(&err)

	doc, err := r.client.Collection(collectionProjects).Doc(projectID).Get(ctx)
	if err != nil {
		if isNotFound(err) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get project: %w", err)
	}

	project = &model.Project{}
	if err := doc.DataTo(project); err != nil {
		return nil, fmt.Errorf("failed to parse project: %w", err)
	}
	project.ID = doc.Ref.ID
	return project, nil
}

func (r *projectRepository) ListActiveUserIDs(ctx context.Context) (ids []string, err error) {
	defer r.track("list_active_users")(&err)

	projects, err := r.collect(ctx, r.client.Collection(collectionProjects).Select("owner_id", "members"))
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	for _, p := range projects {
		for _, id := range p.Team() {
			if !seen[id] {
				seen[id] = true
				ids = append(ids, id)
			}
		}
	}
	sort.Strings(ids)
	return ids, nil
}

func (r *projectRepository) collect(ctx context.Context, q firestore.Query) ([]*model.Project, error) {
	iter := q.Documents(ctx)
	defer iter.Stop()

	var result []*model.Project
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to get projects: %w", err)
		}

		var project model.Project
		if err := doc.DataTo(&project); err != nil {
			return nil, fmt.Errorf("failed to parse project %s: %w", doc.Ref.ID, err)
		}
		project.ID = doc.Ref.ID
		result = append(result, &project)
	}
	return result, nil
}
