package resolver

import (
	"context"
	"fmt"
	"testing"

	"github.com/haneul/studydesk/internal/models"
)

// fakeStore keeps groups and subgroups in memory.
type fakeStore struct {
	groups    []models.LinkGroup
	subgroups []models.LinkSubgroup
	inserts   int
}

func (f *fakeStore) ListLinkGroups(_ context.Context, userID string) ([]models.LinkGroup, error) {
	var out []models.LinkGroup
	for _, g := range f.groups {
		if g.UserID == userID {
			out = append(out, g)
		}
	}
	return out, nil
}

func (f *fakeStore) InsertLinkGroup(_ context.Context, userID, name string, sortOrder int) (string, error) {
	f.inserts++
	id := fmt.Sprintf("newg%d", f.inserts)
	f.groups = append(f.groups, models.LinkGroup{ID: id, UserID: userID, Name: name, SortOrder: sortOrder})
	return id, nil
}

func (f *fakeStore) ListLinkSubgroups(_ context.Context, userID string) ([]models.LinkSubgroup, error) {
	var out []models.LinkSubgroup
	for _, sg := range f.subgroups {
		if sg.UserID == userID {
			out = append(out, sg)
		}
	}
	return out, nil
}

func (f *fakeStore) InsertLinkSubgroup(_ context.Context, groupID, userID, name string, sortOrder int) (string, error) {
	f.inserts++
	id := fmt.Sprintf("newsg%d", f.inserts)
	f.subgroups = append(f.subgroups, models.LinkSubgroup{ID: id, GroupID: groupID, UserID: userID, Name: name, SortOrder: sortOrder})
	return id, nil
}

func TestResolveGroup_EmptyNameNoWrite(t *testing.T) {
	f := &fakeStore{}
	r := New(f)

	for _, raw := range []string{"", "   ", "\t"} {
		id, groups, err := r.ResolveGroup(context.Background(), nil, "u1", raw)
		if err != nil {
			t.Fatal(err)
		}
		if id != "" {
			t.Errorf("id = %q for blank name, want empty", id)
		}
		if groups != nil {
			t.Errorf("groups changed for blank name")
		}
	}
	if f.inserts != 0 {
		t.Errorf("inserts = %d, want 0", f.inserts)
	}
}

func TestResolveGroup_ExactMatchReused(t *testing.T) {
	f := &fakeStore{groups: []models.LinkGroup{
		{ID: "g1", UserID: "u1", Name: "Algorithms", SortOrder: 0},
	}}
	r := New(f)

	groups, _ := f.ListLinkGroups(context.Background(), "u1")
	id, _, err := r.ResolveGroup(context.Background(), groups, "u1", "  Algorithms  ")
	if err != nil {
		t.Fatal(err)
	}
	if id != "g1" {
		t.Errorf("id = %q, want g1", id)
	}
	if f.inserts != 0 {
		t.Errorf("matched name should not insert")
	}
}

func TestResolveGroup_CreatesAtEnd(t *testing.T) {
	f := &fakeStore{groups: []models.LinkGroup{
		{ID: "g1", UserID: "u1", Name: "Algorithms", SortOrder: 4},
	}}
	r := New(f)

	groups, _ := f.ListLinkGroups(context.Background(), "u1")
	id, refreshed, err := r.ResolveGroup(context.Background(), groups, "u1", "Systems")
	if err != nil {
		t.Fatal(err)
	}
	if id == "" {
		t.Fatal("expected new group id")
	}
	if len(refreshed) != 2 {
		t.Fatalf("refreshed len = %d, want 2", len(refreshed))
	}
	var created models.LinkGroup
	for _, g := range refreshed {
		if g.ID == id {
			created = g
		}
	}
	if created.SortOrder != 5 {
		t.Errorf("new group rank = %d, want max+1 = 5", created.SortOrder)
	}
}

func TestResolveGroup_SequentialResolveIsIdempotent(t *testing.T) {
	f := &fakeStore{}
	r := New(f)

	id1, refreshed, err := r.ResolveGroup(context.Background(), nil, "u1", "Papers")
	if err != nil {
		t.Fatal(err)
	}
	// Second resolve sees the refreshed collection and reuses the row.
	id2, _, err := r.ResolveGroup(context.Background(), refreshed, "u1", "Papers")
	if err != nil {
		t.Fatal(err)
	}
	if id1 != id2 {
		t.Errorf("ids differ: %q vs %q", id1, id2)
	}
	if f.inserts != 1 {
		t.Errorf("inserts = %d, want 1", f.inserts)
	}
}

func TestResolveSubgroup_ScopedToGroup(t *testing.T) {
	f := &fakeStore{subgroups: []models.LinkSubgroup{
		{ID: "sg1", GroupID: "gA", UserID: "u1", Name: "Videos", SortOrder: 0},
		{ID: "sg2", GroupID: "gB", UserID: "u1", Name: "Videos", SortOrder: 3},
	}}
	r := New(f)

	subs, _ := f.ListLinkSubgroups(context.Background(), "u1")

	// Same name, matching group: reused.
	id, _, err := r.ResolveSubgroup(context.Background(), subs, "u1", "gA", "Videos")
	if err != nil {
		t.Fatal(err)
	}
	if id != "sg1" {
		t.Errorf("id = %q, want sg1", id)
	}

	// Same name, different group: a fresh row ranked inside that group only.
	id, refreshed, err := r.ResolveSubgroup(context.Background(), subs, "u1", "gC", "Videos")
	if err != nil {
		t.Fatal(err)
	}
	if id == "sg1" || id == "sg2" {
		t.Errorf("reused a foreign group's subgroup: %q", id)
	}
	for _, sg := range refreshed {
		if sg.ID == id && sg.SortOrder != 0 {
			t.Errorf("rank = %d, want 0 (empty scope)", sg.SortOrder)
		}
	}
}

func TestResolveSubgroup_MissingGroupNoWrite(t *testing.T) {
	f := &fakeStore{}
	r := New(f)

	id, _, err := r.ResolveSubgroup(context.Background(), nil, "u1", "", "Videos")
	if err != nil {
		t.Fatal(err)
	}
	if id != "" || f.inserts != 0 {
		t.Errorf("subgroup without a group should resolve to nothing")
	}
}
