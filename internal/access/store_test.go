package access

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sort"
	"strings"
	"testing"
	"time"

	"taskboard/internal/domain"
	"taskboard/internal/models"
)

// memStore is an in-memory Store. WithinTx snapshots all maps and restores
// them when fn fails, which is enough to observe unit-of-work behaviour.
type memStore struct {
	users    map[string]models.User
	projects map[string]models.Project
	tasks    map[string]models.Task
	clock    time.Time

	failDeleteTasks   error
	failDeleteProject error
}

func newMemStore() *memStore {
	return &memStore{
		users:    map[string]models.User{},
		projects: map[string]models.Project{},
		tasks:    map[string]models.Task{},
		clock:    time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func (m *memStore) tick() time.Time {
	m.clock = m.clock.Add(time.Second)
	return m.clock
}

func (m *memStore) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	users, projects, tasks := cloneMap(m.users), cloneMap(m.projects), cloneMap(m.tasks)
	if err := fn(ctx); err != nil {
		m.users, m.projects, m.tasks = users, projects, tasks
		return err
	}
	return nil
}

func cloneMap[V any](in map[string]V) map[string]V {
	out := make(map[string]V, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func (m *memStore) GetUser(_ context.Context, id string) (models.User, error) {
	u, ok := m.users[id]
	if !ok {
		return models.User{}, domain.NotFound("user", id)
	}
	return u, nil
}

func (m *memStore) ListUsers(context.Context) ([]models.User, error) {
	out := make([]models.User, 0, len(m.users))
	for _, u := range m.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *memStore) UsersByID(_ context.Context, ids []string) (map[string]models.User, error) {
	out := map[string]models.User{}
	for _, id := range ids {
		if u, ok := m.users[id]; ok {
			out[id] = u
		}
	}
	return out, nil
}

func (m *memStore) UpdateUser(_ context.Context, u models.User) error {
	if _, ok := m.users[u.ID]; !ok {
		return domain.NotFound("user", u.ID)
	}
	m.users[u.ID] = u
	return nil
}

func (m *memStore) DeleteUser(_ context.Context, id string) error {
	if _, ok := m.users[id]; !ok {
		return domain.NotFound("user", id)
	}
	delete(m.users, id)
	return nil
}

func (m *memStore) ListProjects(_ context.Context, f models.ProjectFilter) ([]models.Project, error) {
	var out []models.Project
	for _, p := range m.projects {
		switch {
		case f.CreatorOrMemberID != "":
			if p.CreatedBy != f.CreatorOrMemberID && !p.HasMember(f.CreatorOrMemberID) {
				continue
			}
		case f.MemberID != "":
			if !p.HasMember(f.MemberID) {
				continue
			}
		}
		p.TeamMembers = append([]string(nil), p.TeamMembers...)
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *memStore) GetProject(_ context.Context, id string) (models.Project, error) {
	p, ok := m.projects[id]
	if !ok {
		return models.Project{}, domain.NotFound("project", id)
	}
	p.TeamMembers = append([]string(nil), p.TeamMembers...)
	return p, nil
}

func (m *memStore) CreateProject(_ context.Context, p *models.Project) error {
	p.ID = models.NewID()
	p.CreatedAt = m.tick()
	p.UpdatedAt = p.CreatedAt
	if p.TeamMembers == nil {
		p.TeamMembers = []string{}
	}
	m.projects[p.ID] = *p
	return nil
}

func (m *memStore) UpdateProject(_ context.Context, p *models.Project) error {
	if _, ok := m.projects[p.ID]; !ok {
		return domain.NotFound("project", p.ID)
	}
	p.UpdatedAt = m.tick()
	stored := *p
	stored.Creator, stored.Members = nil, nil
	m.projects[p.ID] = stored
	return nil
}

func (m *memStore) DeleteProject(_ context.Context, id string) error {
	if m.failDeleteProject != nil {
		return m.failDeleteProject
	}
	if _, ok := m.projects[id]; !ok {
		return domain.NotFound("project", id)
	}
	for _, t := range m.tasks {
		if t.ProjectID == id {
			return domain.Store("delete project", errors.New("FOREIGN KEY constraint failed"))
		}
	}
	delete(m.projects, id)
	return nil
}

func (m *memStore) ListTasks(_ context.Context, f models.TaskFilter) ([]models.Task, error) {
	out := []models.Task{}
	for _, t := range m.tasks {
		if f.ProjectID != "" && t.ProjectID != f.ProjectID {
			continue
		}
		if f.AssignedTo != "" && t.AssignedTo != f.AssignedTo {
			continue
		}
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *memStore) GetTask(_ context.Context, id string) (models.Task, error) {
	t, ok := m.tasks[id]
	if !ok {
		return models.Task{}, domain.NotFound("task", id)
	}
	return t, nil
}

func (m *memStore) CreateTask(_ context.Context, t *models.Task) error {
	t.ID = models.NewID()
	t.CreatedAt = m.tick()
	t.UpdatedAt = t.CreatedAt
	m.tasks[t.ID] = *t
	return nil
}

func (m *memStore) UpdateTask(_ context.Context, t *models.Task) error {
	if _, ok := m.tasks[t.ID]; !ok {
		return domain.NotFound("task", t.ID)
	}
	t.UpdatedAt = m.tick()
	stored := *t
	stored.Assignee, stored.Creator = nil, nil
	m.tasks[t.ID] = stored
	return nil
}

func (m *memStore) DeleteTask(_ context.Context, id string) error {
	if _, ok := m.tasks[id]; !ok {
		return domain.NotFound("task", id)
	}
	delete(m.tasks, id)
	return nil
}

func (m *memStore) DeleteProjectTasks(_ context.Context, projectID string) (int64, error) {
	if m.failDeleteTasks != nil {
		return 0, m.failDeleteTasks
	}
	var n int64
	for id, t := range m.tasks {
		if t.ProjectID == projectID {
			delete(m.tasks, id)
			n++
		}
	}
	return n, nil
}

func (m *memStore) addUser(name string, role models.Role) models.User {
	u := models.User{
		ID:        models.NewID(),
		Name:      name,
		Email:     name + "@example.com",
		Role:      role,
		CreatedAt: m.tick(),
	}
	m.users[u.ID] = u
	return u
}

// fixture is a small organisation shared by the access tests.
type fixture struct {
	store    *memStore
	projects *Projects
	tasks    *Tasks
	users    *Users

	admin    models.User
	manager  models.User
	manager2 models.User
	alice    models.User
	bob      models.User
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	store := newMemStore()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	projects := NewProjects(store, log)
	return &fixture{
		store:    store,
		projects: projects,
		tasks:    NewTasks(store, projects, log),
		users:    NewUsers(store, log),
		admin:    store.addUser("admin", models.RoleAdmin),
		manager:  store.addUser("manager", models.RoleManager),
		manager2: store.addUser("manager2", models.RoleManager),
		alice:    store.addUser("alice", models.RoleMember),
		bob:      store.addUser("bob", models.RoleMember),
	}
}

func (f *fixture) project(t *testing.T, owner models.User, name string, members ...models.User) models.Project {
	t.Helper()
	ids := make([]string, len(members))
	for i, m := range members {
		ids[i] = m.ID
	}
	p, err := f.projects.Create(context.Background(), owner, ProjectInput{Name: name, TeamMembers: ids})
	if err != nil {
		t.Fatalf("create project %q: %v", name, err)
	}
	return p
}

func (f *fixture) task(t *testing.T, creator models.User, p models.Project, assignee models.User, title string) models.Task {
	t.Helper()
	task, err := f.tasks.Create(context.Background(), creator, TaskInput{
		Title:      title,
		ProjectID:  p.ID,
		AssignedTo: assignee.ID,
	})
	if err != nil {
		t.Fatalf("create task %q: %v", title, err)
	}
	return task
}

func expectKind(t *testing.T, err, kind error) {
	t.Helper()
	if !errors.Is(err, kind) {
		t.Fatalf("expected %v, got %v", kind, err)
	}
}

func repeat(n int) string {
	return strings.Repeat("x", n)
}
