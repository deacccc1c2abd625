package linkservice

import (
	"context"
	"errors"
	"testing"

	"github.com/haneul/studydesk/internal/apperr"
	"github.com/haneul/studydesk/internal/models"
	"github.com/haneul/studydesk/internal/testutil"
)

type fakeNotifier struct {
	events []string
}

func (f *fakeNotifier) PublishChange(table, userID string) {
	f.events = append(f.events, table+":"+userID)
}

func (f *fakeNotifier) has(event string) bool {
	for _, e := range f.events {
		if e == event {
			return true
		}
	}
	return false
}

var owner = models.User{ID: "u1", Email: "u1@example.com"}

func newTestService(t *testing.T) (*Service, *fakeNotifier) {
	t.Helper()
	db := testutil.TestDB(t)
	n := &fakeNotifier{}
	return NewService(db, n, nil), n
}

func TestCreateLink_Validation(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	cases := []struct {
		name string
		in   LinkInput
	}{
		{"missing title", LinkInput{URL: "https://go.dev"}},
		{"missing url", LinkInput{Title: "Go"}},
		{"bad url", LinkInput{Title: "Go", URL: "not a url"}},
	}
	for _, tc := range cases {
		if _, err := svc.CreateLink(ctx, owner, tc.in); !errors.Is(err, apperr.ErrValidation) {
			t.Errorf("%s: err = %v, want ErrValidation", tc.name, err)
		}
	}
}

func TestCreateLink_ResolvesNames(t *testing.T) {
	svc, notify := newTestService(t)
	ctx := context.Background()

	id, err := svc.CreateLink(ctx, owner, LinkInput{
		Title:        "Go tour",
		URL:          "https://go.dev/tour",
		GroupName:    "Go",
		SubgroupName: "Basics",
	})
	if err != nil {
		t.Fatal(err)
	}
	if id == "" {
		t.Fatal("empty link id")
	}

	groups, _ := svc.Groups(ctx, owner)
	if len(groups) != 1 || groups[0].Name != "Go" {
		t.Fatalf("groups = %+v", groups)
	}
	subs, _ := svc.Subgroups(ctx, owner)
	if len(subs) != 1 || subs[0].Name != "Basics" || subs[0].GroupID != groups[0].ID {
		t.Fatalf("subgroups = %+v", subs)
	}

	links, _ := svc.Links(ctx, owner)
	if links[0].GroupID != groups[0].ID || links[0].SubgroupID != subs[0].ID {
		t.Errorf("link not wired to resolved ids: %+v", links[0])
	}

	if !notify.has("study_links:u1") || !notify.has("link_groups:u1") {
		t.Errorf("events = %v", notify.events)
	}

	// A second link with the same names reuses both rows.
	if _, err := svc.CreateLink(ctx, owner, LinkInput{
		Title: "Spec", URL: "https://go.dev/ref/spec", GroupName: " Go ", SubgroupName: "Basics",
	}); err != nil {
		t.Fatal(err)
	}
	groups, _ = svc.Groups(ctx, owner)
	subs, _ = svc.Subgroups(ctx, owner)
	if len(groups) != 1 || len(subs) != 1 {
		t.Errorf("duplicate rows created: %d groups, %d subgroups", len(groups), len(subs))
	}
}

func TestCreateLink_SubgroupWithoutGroupIgnored(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	if _, err := svc.CreateLink(ctx, owner, LinkInput{
		Title: "Loose", URL: "https://example.test", SubgroupName: "Orphan",
	}); err != nil {
		t.Fatal(err)
	}
	subs, _ := svc.Subgroups(ctx, owner)
	if len(subs) != 0 {
		t.Errorf("subgroup created without a group: %+v", subs)
	}
	links, _ := svc.Links(ctx, owner)
	if links[0].GroupID != "" || links[0].SubgroupID != "" {
		t.Errorf("link = %+v, want ungrouped", links[0])
	}
}

func TestUpdateLink_MovesBetweenGroups(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	id, _ := svc.CreateLink(ctx, owner, LinkInput{
		Title: "Doc", URL: "https://example.test", GroupName: "Old",
	})
	if err := svc.UpdateLink(ctx, owner, id, LinkInput{
		Title: "Doc", URL: "https://example.test", GroupName: "New",
	}); err != nil {
		t.Fatal(err)
	}

	groups, _ := svc.Groups(ctx, owner)
	if len(groups) != 2 {
		t.Fatalf("groups = %+v", groups)
	}
	var newID string
	for _, g := range groups {
		if g.Name == "New" {
			newID = g.ID
		}
	}
	links, _ := svc.Links(ctx, owner)
	if links[0].GroupID != newID {
		t.Errorf("link group = %q, want %q", links[0].GroupID, newID)
	}
}

func TestGroupedLinks(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, _ = svc.CreateLink(ctx, owner, LinkInput{Title: "a", URL: "https://a.test", GroupName: "G1"})
	_, _ = svc.CreateLink(ctx, owner, LinkInput{Title: "b", URL: "https://b.test"})

	tree, err := svc.GroupedLinks(ctx, owner)
	if err != nil {
		t.Fatal(err)
	}
	if len(tree) != 2 {
		t.Fatalf("buckets = %d, want 2", len(tree))
	}
	if tree[0].Group == nil || tree[0].Group.Name != "G1" {
		t.Errorf("first bucket = %+v", tree[0].Group)
	}
	if tree[1].Group != nil {
		t.Errorf("last bucket should be ungrouped")
	}
}

func TestGroupOrdering(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	for _, g := range []string{"A", "B", "C"} {
		_, err := svc.CreateLink(ctx, owner, LinkInput{Title: g, URL: "https://x.test", GroupName: g})
		if err != nil {
			t.Fatal(err)
		}
	}

	if err := svc.MoveGroup(ctx, owner, 1, "down"); err != nil {
		t.Fatal(err)
	}
	groups, _ := svc.Groups(ctx, owner)
	if groups[1].Name != "C" || groups[2].Name != "B" {
		t.Errorf("after move: %s %s %s", groups[0].Name, groups[1].Name, groups[2].Name)
	}

	if err := svc.ReorderGroups(ctx, owner, 2, 0); err != nil {
		t.Fatal(err)
	}
	groups, _ = svc.Groups(ctx, owner)
	if groups[0].Name != "B" {
		t.Errorf("after reorder first = %s", groups[0].Name)
	}
	for i, g := range groups {
		if g.SortOrder != i {
			t.Errorf("rank[%d] = %d", i, g.SortOrder)
		}
	}
}

func TestSubgroupOrdering_ScopedToGroup(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	// Two groups, two subgroups each.
	for _, pair := range [][2]string{{"G1", "S1"}, {"G1", "S2"}, {"G2", "T1"}, {"G2", "T2"}} {
		_, err := svc.CreateLink(ctx, owner, LinkInput{
			Title: pair[1], URL: "https://x.test", GroupName: pair[0], SubgroupName: pair[1],
		})
		if err != nil {
			t.Fatal(err)
		}
	}
	groups, _ := svc.Groups(ctx, owner)
	var g1 string
	for _, g := range groups {
		if g.Name == "G1" {
			g1 = g.ID
		}
	}

	// Swap S1 and S2 inside G1; G2's subgroups must be untouched.
	if err := svc.MoveSubgroup(ctx, owner, g1, 0, "down"); err != nil {
		t.Fatal(err)
	}
	subs, _ := svc.Subgroups(ctx, owner)
	byName := make(map[string]models.LinkSubgroup)
	for _, sg := range subs {
		byName[sg.Name] = sg
	}
	if byName["S1"].SortOrder != 1 || byName["S2"].SortOrder != 0 {
		t.Errorf("G1 ranks: S1=%d S2=%d", byName["S1"].SortOrder, byName["S2"].SortOrder)
	}
	if byName["T1"].SortOrder != 0 || byName["T2"].SortOrder != 1 {
		t.Errorf("G2 ranks disturbed: T1=%d T2=%d", byName["T1"].SortOrder, byName["T2"].SortOrder)
	}
}

func TestDeleteLink(t *testing.T) {
	svc, notify := newTestService(t)
	ctx := context.Background()

	id, _ := svc.CreateLink(ctx, owner, LinkInput{Title: "a", URL: "https://a.test"})
	if err := svc.DeleteLink(ctx, owner, id); err != nil {
		t.Fatal(err)
	}
	links, _ := svc.Links(ctx, owner)
	if len(links) != 0 {
		t.Errorf("links = %d after delete", len(links))
	}
	if !notify.has("study_links:u1") {
		t.Error("change not published")
	}

	if err := svc.DeleteLink(ctx, owner, id); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("double delete = %v, want ErrNotFound", err)
	}
}
