// Package projection derives display views from in-memory collections.
// Everything here is a pure function over already-fetched rows; no I/O.
package projection

import (
	"sort"

	"github.com/haneul/studydesk/internal/models"
)

// Sentinel bucket keys for the absence of an explicit parent.
const (
	// KeyNone buckets uncategorized notes, ungrouped links, and links
	// without a subgroup.
	KeyNone = "_none"
	// KeyFavorites buckets favorite notes in category counts.
	KeyFavorites = "_favorites"
)

// EffectiveCategoryIDs computes a note's effective category set.
// Relation rows win: when any row exists for the note, the set is
// exactly those category ids, regardless of the legacy field. With no
// rows, a non-empty legacy category_id yields a singleton set; an empty
// one yields the empty set. This fallback order lets data predating the
// many-to-many model coexist with new data.
func EffectiveCategoryIDs(note models.Note, rows []models.NoteCategory) []string {
	var ids []string
	for _, r := range rows {
		if r.NoteID == note.ID {
			ids = append(ids, r.CategoryID)
		}
	}
	if len(ids) > 0 {
		return ids
	}
	if note.CategoryID != "" {
		return []string{note.CategoryID}
	}
	return nil
}

// SubgroupBucket holds the links of one subgroup within a group.
// Subgroup is nil for the no-subgroup bucket.
type SubgroupBucket struct {
	Subgroup *models.LinkSubgroup
	Links    []models.StudyLink
}

// GroupBucket holds one displayed group and its subgroup buckets.
// Group is nil for the trailing ungrouped bucket. The no-subgroup
// bucket, when non-empty, always comes first.
type GroupBucket struct {
	Group     *models.LinkGroup
	Subgroups []SubgroupBucket
}

// GroupLinks buckets a flat link list into the two-level
// group→subgroup→links tree. Groups appear in canonical order
// (sort_order asc, created_at asc) and only when they hold at least one
// link; subgroups are ordered the same way within their group. Links
// keep their fetch order (created_at asc) inside each bucket. Links
// with no group land in a final bucket with a nil Group.
func GroupLinks(links []models.StudyLink, groups []models.LinkGroup, subgroups []models.LinkSubgroup) []GroupBucket {
	byGroup := make(map[string]map[string][]models.StudyLink)
	for _, l := range links {
		gid, sgid := l.GroupID, l.SubgroupID
		if gid == "" {
			// A subgroup id without a group id cannot render in the
			// tree; the link counts as plain ungrouped.
			gid, sgid = KeyNone, KeyNone
		}
		if sgid == "" {
			sgid = KeyNone
		}
		if byGroup[gid] == nil {
			byGroup[gid] = make(map[string][]models.StudyLink)
		}
		byGroup[gid][sgid] = append(byGroup[gid][sgid], l)
	}

	sortedGroups := make([]models.LinkGroup, 0, len(groups))
	for _, g := range groups {
		if len(byGroup[g.ID]) > 0 {
			sortedGroups = append(sortedGroups, g)
		}
	}
	sort.SliceStable(sortedGroups, func(i, j int) bool {
		a, b := sortedGroups[i], sortedGroups[j]
		if a.SortOrder != b.SortOrder {
			return a.SortOrder < b.SortOrder
		}
		return a.CreatedAt.Before(b.CreatedAt)
	})

	var out []GroupBucket
	for i := range sortedGroups {
		g := sortedGroups[i]
		buckets := byGroup[g.ID]

		var gb GroupBucket
		gb.Group = &g
		if ls := buckets[KeyNone]; len(ls) > 0 {
			gb.Subgroups = append(gb.Subgroups, SubgroupBucket{Links: ls})
		}

		scoped := make([]models.LinkSubgroup, 0)
		for _, sg := range subgroups {
			if sg.GroupID == g.ID && len(buckets[sg.ID]) > 0 {
				scoped = append(scoped, sg)
			}
		}
		sort.SliceStable(scoped, func(i, j int) bool {
			a, b := scoped[i], scoped[j]
			if a.SortOrder != b.SortOrder {
				return a.SortOrder < b.SortOrder
			}
			return a.CreatedAt.Before(b.CreatedAt)
		})
		for k := range scoped {
			sg := scoped[k]
			gb.Subgroups = append(gb.Subgroups, SubgroupBucket{Subgroup: &sg, Links: buckets[sg.ID]})
		}
		out = append(out, gb)
	}

	if ungrouped := byGroup[KeyNone]; len(ungrouped[KeyNone]) > 0 {
		out = append(out, GroupBucket{
			Subgroups: []SubgroupBucket{{Links: ungrouped[KeyNone]}},
		})
	}
	return out
}

// NotesCountByCategory recomputes per-category note counts from the
// current collections. A note counts once per effective category,
// under KeyNone when it has none, and additionally under KeyFavorites
// when flagged. Recomputing from scratch on every call avoids drift
// from incremental bookkeeping.
func NotesCountByCategory(notes []models.Note, rows []models.NoteCategory) map[string]int {
	counts := make(map[string]int)
	for _, n := range notes {
		ids := EffectiveCategoryIDs(n, rows)
		if len(ids) == 0 {
			counts[KeyNone]++
		}
		for _, id := range ids {
			counts[id]++
		}
		if n.IsFavorite {
			counts[KeyFavorites]++
		}
	}
	return counts
}
