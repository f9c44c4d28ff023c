package access

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"taskboard/internal/domain"
	"taskboard/internal/models"
)

func projectNames(ps []models.Project) []string {
	names := make([]string, len(ps))
	for i, p := range ps {
		names[i] = p.Name
	}
	return names
}

func TestListProjectsByRole(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.project(t, f.admin, "admin-only")
	f.project(t, f.admin, "with-manager", f.manager)
	f.project(t, f.manager, "manager-own")
	f.project(t, f.manager2, "other-manager", f.alice)

	cases := []struct {
		user models.User
		want []string
	}{
		{f.admin, []string{"other-manager", "manager-own", "with-manager", "admin-only"}},
		{f.manager, []string{"manager-own", "with-manager"}},
		{f.alice, []string{"other-manager"}},
		{f.bob, []string{}},
	}
	for _, tc := range cases {
		got, err := f.projects.List(ctx, tc.user)
		if err != nil {
			t.Fatalf("List(%s): %v", tc.user.Name, err)
		}
		if names := projectNames(got); !reflect.DeepEqual(names, tc.want) {
			t.Fatalf("List(%s) = %v, want %v", tc.user.Name, names, tc.want)
		}
	}
}

func TestListProjectsUnknownRoleSeesNothing(t *testing.T) {
	f := newFixture(t)
	f.project(t, f.admin, "p")

	got, err := f.projects.List(context.Background(), models.User{ID: f.admin.ID, Role: "owner"})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected no projects for unknown role, got %d", len(got))
	}
}

func TestGetProjectVisibility(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.project(t, f.manager, "Launch", f.alice)

	if _, err := f.projects.Get(ctx, f.bob, p.ID); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("member outside team: expected forbidden, got %v", err)
	}
	for _, u := range []models.User{f.alice, f.admin, f.manager, f.manager2} {
		if _, err := f.projects.Get(ctx, u, p.ID); err != nil {
			t.Fatalf("Get as %s: %v", u.Name, err)
		}
	}
	_, err := f.projects.Get(ctx, f.admin, models.NewID())
	expectKind(t, err, domain.ErrNotFound)
}

func TestGetProjectIncludesTasksNewestFirst(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.project(t, f.manager, "Launch", f.alice)
	f.task(t, f.manager, p, f.alice, "first")
	f.task(t, f.manager, p, f.bob, "second")

	details, err := f.projects.Get(ctx, f.alice, p.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if len(details.Tasks) != 2 || details.Tasks[0].Title != "second" || details.Tasks[1].Title != "first" {
		t.Fatalf("unexpected task order: %+v", details.Tasks)
	}
	if details.Project.Creator == nil || details.Project.Creator.ID != f.manager.ID {
		t.Fatalf("creator not enriched: %+v", details.Project.Creator)
	}
	if len(details.Project.Members) != 1 || details.Project.Members[0].Email != f.alice.Email {
		t.Fatalf("members not enriched: %+v", details.Project.Members)
	}
	if details.Tasks[0].Assignee == nil || details.Tasks[0].Assignee.ID != f.bob.ID {
		t.Fatalf("assignee not enriched: %+v", details.Tasks[0].Assignee)
	}

	again, err := f.projects.Get(ctx, f.alice, p.ID)
	if err != nil {
		t.Fatalf("second Get: %v", err)
	}
	if !reflect.DeepEqual(details, again) {
		t.Fatalf("Get is not repeatable:\n%+v\n%+v", details, again)
	}
}

func TestCreateProjectPermissions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.projects.Create(ctx, f.alice, ProjectInput{Name: "mine"})
	expectKind(t, err, domain.ErrForbidden)

	for _, u := range []models.User{f.admin, f.manager} {
		p, err := f.projects.Create(ctx, u, ProjectInput{Name: "  spaced  "})
		if err != nil {
			t.Fatalf("Create as %s: %v", u.Name, err)
		}
		if p.CreatedBy != u.ID || p.Name != "spaced" {
			t.Fatalf("unexpected project: %+v", p)
		}
		if p.TeamMembers == nil || len(p.TeamMembers) != 0 {
			t.Fatalf("team should default to empty, got %#v", p.TeamMembers)
		}
	}
}

func TestCreateProjectValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	cases := []struct {
		name  string
		in    ProjectInput
		field string
	}{
		{"blank name", ProjectInput{Name: "   "}, "name"},
		{"name too long", ProjectInput{Name: repeat(101)}, "name"},
		{"description too long", ProjectInput{Name: "ok", Description: repeat(501)}, "description"},
		{"malformed member id", ProjectInput{Name: "ok", TeamMembers: []string{"nope"}}, "team_members"},
		{"unknown member", ProjectInput{Name: "ok", TeamMembers: []string{models.NewID()}}, "team_members"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.projects.Create(ctx, f.manager, tc.in)
			expectKind(t, err, domain.ErrValidation)
			if _, ok := domain.FieldErrors(err)[tc.field]; !ok {
				t.Fatalf("expected field %q in %v", tc.field, domain.FieldErrors(err))
			}
		})
	}

	if _, err := f.projects.Create(ctx, f.manager, ProjectInput{Name: repeat(100), Description: repeat(500)}); err != nil {
		t.Fatalf("limits should be inclusive: %v", err)
	}
}

func TestCreateProjectDropsDuplicateMembers(t *testing.T) {
	f := newFixture(t)
	p, err := f.projects.Create(context.Background(), f.manager, ProjectInput{
		Name:        "team",
		TeamMembers: []string{f.bob.ID, f.alice.ID, f.bob.ID},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if want := []string{f.bob.ID, f.alice.ID}; !reflect.DeepEqual(p.TeamMembers, want) {
		t.Fatalf("TeamMembers = %v, want %v", p.TeamMembers, want)
	}
}

func TestUpdateProjectCreatorOrAdminOnly(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.project(t, f.manager, "Launch", f.manager2)
	name := "Renamed"

	_, err := f.projects.Update(ctx, f.manager2, p.ID, ProjectPatch{Name: &name})
	expectKind(t, err, domain.ErrForbidden)
	_, err = f.projects.Update(ctx, f.alice, p.ID, ProjectPatch{Name: &name})
	expectKind(t, err, domain.ErrForbidden)

	got, err := f.projects.Update(ctx, f.manager, p.ID, ProjectPatch{Name: &name})
	if err != nil {
		t.Fatalf("creator update: %v", err)
	}
	if got.Name != name || got.CreatedBy != f.manager.ID {
		t.Fatalf("unexpected project: %+v", got)
	}

	again := "Admin rename"
	if _, err := f.projects.Update(ctx, f.admin, p.ID, ProjectPatch{Name: &again}); err != nil {
		t.Fatalf("admin update: %v", err)
	}
	if f.store.projects[p.ID].CreatedBy != f.manager.ID {
		t.Fatal("created_by changed on update")
	}

	_, err = f.projects.Update(ctx, f.admin, models.NewID(), ProjectPatch{Name: &name})
	expectKind(t, err, domain.ErrNotFound)
}

func TestUpdateProjectOnlyTouchesSuppliedFields(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p, err := f.projects.Create(ctx, f.manager, ProjectInput{Name: "Launch", Description: "desc", TeamMembers: []string{f.alice.ID}})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	blank := "  "
	_, err = f.projects.Update(ctx, f.manager, p.ID, ProjectPatch{Name: &blank})
	expectKind(t, err, domain.ErrValidation)

	empty := ""
	got, err := f.projects.Update(ctx, f.manager, p.ID, ProjectPatch{Description: &empty})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if got.Name != "Launch" || got.Description != "" || !reflect.DeepEqual(got.TeamMembers, []string{f.alice.ID}) {
		t.Fatalf("unexpected project after description update: %+v", got)
	}

	got, err = f.projects.Update(ctx, f.manager, p.ID, ProjectPatch{TeamMembers: []string{}})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if len(got.TeamMembers) != 0 {
		t.Fatalf("team should be cleared, got %v", got.TeamMembers)
	}
}

func TestDeleteProjectCascadesTasks(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.project(t, f.manager, "Launch", f.alice)
	keep := f.project(t, f.manager, "Keep", f.alice)
	f.task(t, f.manager, p, f.alice, "a")
	f.task(t, f.manager, p, f.bob, "b")
	kept := f.task(t, f.manager, keep, f.alice, "c")

	expectKind(t, f.projects.Delete(ctx, f.manager2, p.ID), domain.ErrForbidden)

	if err := f.projects.Delete(ctx, f.admin, p.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, ok := f.store.projects[p.ID]; ok {
		t.Fatal("project still stored")
	}
	for _, task := range f.store.tasks {
		if _, ok := f.store.projects[task.ProjectID]; !ok {
			t.Fatalf("orphaned task %s", task.ID)
		}
	}
	if _, ok := f.store.tasks[kept.ID]; !ok {
		t.Fatal("task of another project was deleted")
	}

	expectKind(t, f.projects.Delete(ctx, f.admin, p.ID), domain.ErrNotFound)
}

func TestDeleteProjectKeepsProjectWhenTaskDeletionFails(t *testing.T) {
	f := newFixture(t)
	p := f.project(t, f.manager, "Launch")
	f.task(t, f.manager, p, f.alice, "a")
	f.store.failDeleteTasks = domain.Store("delete project tasks", errors.New("disk full"))

	err := f.projects.Delete(context.Background(), f.manager, p.ID)
	expectKind(t, err, domain.ErrStore)
	if _, ok := f.store.projects[p.ID]; !ok {
		t.Fatal("project deleted although its tasks were not")
	}
	if len(f.store.tasks) != 1 {
		t.Fatalf("expected task to survive, have %d", len(f.store.tasks))
	}
}

func TestDeleteProjectRestoresTasksWhenProjectDeletionFails(t *testing.T) {
	f := newFixture(t)
	p := f.project(t, f.manager, "Launch")
	f.task(t, f.manager, p, f.alice, "a")
	f.store.failDeleteProject = domain.Store("delete project", errors.New("locked"))

	err := f.projects.Delete(context.Background(), f.admin, p.ID)
	expectKind(t, err, domain.ErrStore)
	if len(f.store.tasks) != 1 {
		t.Fatalf("tasks should be rolled back, have %d", len(f.store.tasks))
	}
}
