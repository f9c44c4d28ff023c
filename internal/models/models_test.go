package models

import "testing"

func TestNewBoardKeepsEveryColumn(t *testing.T) {
	tasks := []Task{
		{ID: "1", Status: StatusDone},
		{ID: "2", Status: StatusTodo},
		{ID: "3", Status: StatusDone},
	}
	board := NewBoard(Project{ID: "p"}, tasks)

	if len(board.Columns) != 3 {
		t.Fatalf("expected 3 columns, got %d", len(board.Columns))
	}
	if got := board.Columns[StatusInProgress]; got == nil || len(got) != 0 {
		t.Fatalf("empty column should be an empty slice, got %#v", got)
	}
	done := board.Columns[StatusDone]
	if len(done) != 2 || done[0].ID != "1" || done[1].ID != "3" {
		t.Fatalf("done column out of order: %+v", done)
	}
}

func TestIDs(t *testing.T) {
	id := NewID()
	if !ValidID(id) {
		t.Fatalf("NewID produced invalid id %q", id)
	}
	if ValidID("") || ValidID("project-1") {
		t.Fatal("accepted malformed id")
	}
	if NewID() == id {
		t.Fatal("ids repeat")
	}
}

func TestHasMember(t *testing.T) {
	p := Project{TeamMembers: []string{"a", "b"}}
	if !p.HasMember("b") || p.HasMember("c") {
		t.Fatal("HasMember mismatch")
	}
}
