package access

import (
	"context"

	"taskboard/internal/models"
)

// refs loads the identity snippets for every id in one store call.
func refs(ctx context.Context, users UserStore, ids ...[]string) (map[string]models.UserRef, error) {
	var all []string
	seen := map[string]struct{}{}
	for _, group := range ids {
		for _, id := range group {
			if _, ok := seen[id]; ok || id == "" {
				continue
			}
			seen[id] = struct{}{}
			all = append(all, id)
		}
	}

	found, err := users.UsersByID(ctx, all)
	if err != nil {
		return nil, err
	}
	out := make(map[string]models.UserRef, len(found))
	for id, u := range found {
		out[id] = u.Ref()
	}
	return out, nil
}

func refPtr(m map[string]models.UserRef, id string) *models.UserRef {
	if r, ok := m[id]; ok {
		return &r
	}
	return nil
}

func enrichProject(p *models.Project, m map[string]models.UserRef) {
	p.Creator = refPtr(m, p.CreatedBy)
	p.Members = make([]models.UserRef, 0, len(p.TeamMembers))
	for _, id := range p.TeamMembers {
		if r, ok := m[id]; ok {
			p.Members = append(p.Members, r)
		}
	}
}

func enrichTasks(tasks []models.Task, m map[string]models.UserRef) {
	for i := range tasks {
		tasks[i].Assignee = refPtr(m, tasks[i].AssignedTo)
		tasks[i].Creator = refPtr(m, tasks[i].CreatedBy)
	}
}

func taskUserIDs(tasks []models.Task) []string {
	ids := make([]string, 0, 2*len(tasks))
	for _, t := range tasks {
		ids = append(ids, t.AssignedTo, t.CreatedBy)
	}
	return ids
}
