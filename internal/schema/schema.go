package schema

import (
	"fmt"
	"sort"

	"go-recruitment-datalayer/internal/domain"
)

// Table describes where a family lives in each backend and which families
// its rows reference by foreign key.
type Table struct {
	Family      domain.Family
	NewTable    string
	LegacyTable string
	ConflictKey string
	References  []domain.Family
}

// registry is in declaration order; DependencyOrder breaks ties with it.
var registry = []Table{
	{Family: domain.FamilyAgencies, NewTable: "agencies", LegacyTable: "companies", ConflictKey: "id"},
	{Family: domain.FamilyCandidates, NewTable: "candidates", LegacyTable: "users", ConflictKey: "id"},
	{Family: domain.FamilyProfiles, NewTable: "candidate_profiles", LegacyTable: "user_profiles", ConflictKey: "candidate_id",
		References: []domain.Family{domain.FamilyCandidates}},
	{Family: domain.FamilyJobs, NewTable: "jobs", LegacyTable: "job_postings", ConflictKey: "id",
		References: []domain.Family{domain.FamilyAgencies}},
	{Family: domain.FamilyResumes, NewTable: "resumes", LegacyTable: "resumes", ConflictKey: "id",
		References: []domain.Family{domain.FamilyCandidates}},
	{Family: domain.FamilyApplications, NewTable: "applications", LegacyTable: "job_applications", ConflictKey: "id",
		References: []domain.Family{domain.FamilyCandidates, domain.FamilyJobs, domain.FamilyResumes}},
	{Family: domain.FamilyAssessments, NewTable: "assessment_sessions", LegacyTable: "assessment_sessions", ConflictKey: "id",
		References: []domain.Family{domain.FamilyCandidates}},
}

// Families returns every registered family in declaration order.
func Families() []domain.Family {
	out := make([]domain.Family, len(registry))
	for i, t := range registry {
		out[i] = t.Family
	}
	return out
}

// Lookup returns the table description for family.
func Lookup(family domain.Family) (Table, bool) {
	for _, t := range registry {
		if t.Family == family {
			return t, true
		}
	}
	return Table{}, false
}

// MustLookup panics on an unregistered family; use only with the constants.
func MustLookup(family domain.Family) Table {
	t, ok := Lookup(family)
	if !ok {
		panic(fmt.Sprintf("schema: unregistered family %q", family))
	}
	return t
}

// DependencyOrder sorts families so every referenced family precedes the
// families referencing it. Only edges between requested families count; a
// referenced family that is not requested is assumed to exist already.
func DependencyOrder(families []domain.Family) ([]domain.Family, error) {
	rank := make(map[domain.Family]int, len(registry))
	for i, t := range registry {
		rank[t.Family] = i
	}

	requested := make(map[domain.Family]bool, len(families))
	for _, f := range families {
		if _, ok := rank[f]; !ok {
			return nil, fmt.Errorf("schema: unknown family %q", f)
		}
		requested[f] = true
	}

	indegree := make(map[domain.Family]int, len(requested))
	children := make(map[domain.Family][]domain.Family)
	for f := range requested {
		if _, ok := indegree[f]; !ok {
			indegree[f] = 0
		}
		for _, parent := range MustLookup(f).References {
			if !requested[parent] || parent == f {
				continue
			}
			indegree[f]++
			children[parent] = append(children[parent], f)
		}
	}

	var ready []domain.Family
	for f, d := range indegree {
		if d == 0 {
			ready = append(ready, f)
		}
	}

	order := make([]domain.Family, 0, len(requested))
	for len(ready) > 0 {
		sort.Slice(ready, func(i, j int) bool { return rank[ready[i]] < rank[ready[j]] })
		next := ready[0]
		ready = ready[1:]
		order = append(order, next)
		for _, child := range children[next] {
			indegree[child]--
			if indegree[child] == 0 {
				ready = append(ready, child)
			}
		}
	}

	if len(order) != len(requested) {
		return nil, fmt.Errorf("schema: foreign key cycle among %v", families)
	}
	return order, nil
}
