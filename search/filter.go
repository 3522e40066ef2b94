package search

import (
	"slices"
	"strings"

	"github.com/poiesic/facultyhub/core"
)

const (
	// AllDepartments disables the department criterion.
	AllDepartments = "All"

	// DefaultFilterLimit caps filter results when no limit is given.
	DefaultFilterLimit = 200
)

// FilterCriteria selects faculty records for structured browsing.
// Empty fields match everything.
type FilterCriteria struct {
	Department string // exact, case-insensitive; "All" matches any
	Name       string // substring, case-insensitive
	Interest   string // substring or every query word present
	College    string // substring, case-insensitive
	Limit      int    // <= 0 means DefaultFilterLimit
}

// Filter returns records matching every criterion, in input order, up to the limit.
func Filter(records []core.FacultyRecord, criteria FilterCriteria) []core.FacultyRecord {
	limit := criteria.Limit
	if limit <= 0 {
		limit = DefaultFilterLimit
	}

	department := strings.TrimSpace(criteria.Department)
	if strings.EqualFold(department, AllDepartments) {
		department = ""
	}
	name := strings.TrimSpace(criteria.Name)
	interest := strings.TrimSpace(criteria.Interest)
	college := strings.TrimSpace(criteria.College)

	out := make([]core.FacultyRecord, 0)
	for i := range records {
		rec := &records[i]
		if department != "" && !matchesDepartment(rec.Department, department) {
			continue
		}
		if name != "" && !containsFold(rec.Name, name) {
			continue
		}
		if interest != "" && !containsFold(rec.ResearchInterests, interest) &&
			!containsAllQueryWords(rec.ResearchInterests, interest) {
			continue
		}
		if college != "" && !containsFold(rec.CollegeName, college) {
			continue
		}

		out = append(out, rec.Clone())
		if len(out) == limit {
			break
		}
	}
	return out
}

// matchesDepartment compares against the whole field and each merged part.
func matchesDepartment(field, want string) bool {
	if strings.EqualFold(strings.TrimSpace(field), want) {
		return true
	}
	for _, part := range core.SplitDepartments(field) {
		if strings.EqualFold(part, want) {
			return true
		}
	}
	return false
}

// Departments lists the distinct departments across records, sorted.
// Merged department fields contribute each of their parts.
func Departments(records []core.FacultyRecord) []string {
	seen := make(map[string]struct{})
	for i := range records {
		for _, part := range core.SplitDepartments(records[i].Department) {
			seen[part] = struct{}{}
		}
	}
	return sortedKeys(seen)
}

// Colleges lists the distinct college names across records, sorted.
func Colleges(records []core.FacultyRecord) []string {
	seen := make(map[string]struct{})
	for i := range records {
		if c := strings.TrimSpace(records[i].CollegeName); c != "" {
			seen[c] = struct{}{}
		}
	}
	return sortedKeys(seen)
}

func sortedKeys(m map[string]struct{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
