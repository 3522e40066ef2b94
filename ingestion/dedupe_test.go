package ingestion

import (
	"testing"

	"github.com/poiesic/facultyhub/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNameKey(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"Dr. Anil Kumar", "anil kumar"},
		{"Prof. Anil Kumar", "anil kumar"},
		{"Professor   Anil  Kumar", "anil kumar"},
		{"prof anil kumar", "anil kumar"},
		{"Dr.Anil Kumar", "anil kumar"},
		{"Prof. Dr. Anil Kumar", "anil kumar"},
		{"Drew Carey", "drew carey"},
		{"Profulla Sen", "profulla sen"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NameKey(tt.name))
		})
	}
}

func TestEmailKey(t *testing.T) {
	assert.Equal(t, "a.b@iitgn.ac.in", EmailKey("  A.B@IITGN.ac.in "))
	assert.Empty(t, EmailKey("   "))
}

func TestDeduplicate_EmailMatch(t *testing.T) {
	records := []core.FacultyRecord{
		{Name: "A. Rao", Email: "rao@iitgn.ac.in", ResearchInterests: "A, B", Department: "CSE"},
		{Name: "Anita Rao", Email: "RAO@iitgn.ac.in", ResearchInterests: "B, C", Department: "EE"},
	}

	out := Deduplicate(records)
	require.Len(t, out, 1)

	assert.Equal(t, "Anita Rao", out[0].Name)
	assert.Equal(t, "A, B, C", out[0].ResearchInterests)
	assert.Equal(t, "CSE | EE", out[0].Department)
}

func TestDeduplicate_HonorificScenario(t *testing.T) {
	n := NewNormalizer()
	sources := Sources{
		"iitgn": {{"name": "Dr. X", "department": "CSE", "research_interests": "AI, Robotics"}},
		"iitgn_faculty": {{"name": "Prof. X", "department": "CSE", "research_interests": "Vision, AI"}},
	}

	out := normalizeAndDedupe(n, sources)
	require.Len(t, out, 1)
	assert.Equal(t, "AI, Robotics, Vision", out[0].ResearchInterests)
	assert.Equal(t, "Prof. X", out[0].Name)
}

func TestDeduplicate_FuzzyDepartment(t *testing.T) {
	records := []core.FacultyRecord{
		{Name: "Dr. Neha Jain", Department: "Computer Science and Engineering", ResearchInterests: "Networks"},
		{Name: "Neha Jain", Department: "computer science", ResearchInterests: "Security"},
	}

	out := Deduplicate(records)
	require.Len(t, out, 1)
	assert.Equal(t, "Networks, Security", out[0].ResearchInterests)
	assert.Equal(t, "Computer Science and Engineering | computer science", out[0].Department)
}

func TestDeduplicate_KeepsDistinctPeople(t *testing.T) {
	records := []core.FacultyRecord{
		{Name: "Neha Jain", Department: "Physics"},
		{Name: "Neha Jain", Department: "Chemistry"},
		{Name: "Neha Jain", Email: "nj@iitd.ac.in", Department: "Physics Education"},
		{Name: "", Department: "Physics"},
		{Name: "", Department: "Physics"},
	}

	out := Deduplicate(records)
	// The emailed record never takes the fuzzy path and the nameless records
	// have no identity key, so nothing merges.
	assert.Len(t, out, 5)
}

func TestDeduplicate_EmptyDepartmentsMergeOnName(t *testing.T) {
	records := []core.FacultyRecord{
		{Name: "Dr. Z", ResearchInterests: "Optics"},
		{Name: "Z", ResearchInterests: "Lasers"},
	}

	out := Deduplicate(records)
	require.Len(t, out, 1)
	assert.Equal(t, "Lasers, Optics", out[0].ResearchInterests)
}

func TestDeduplicate_MissingDepartmentJoinsSameName(t *testing.T) {
	t.Run("incoming without department", func(t *testing.T) {
		out := Deduplicate([]core.FacultyRecord{
			{Name: "Dr. X", Department: "CSE", ResearchInterests: "AI"},
			{Name: "X", ResearchInterests: "Robotics"},
		})
		require.Len(t, out, 1)
		assert.Equal(t, "CSE", out[0].Department)
		assert.Equal(t, "AI, Robotics", out[0].ResearchInterests)
	})

	t.Run("existing without department", func(t *testing.T) {
		out := Deduplicate([]core.FacultyRecord{
			{Name: "X", ResearchInterests: "Robotics"},
			{Name: "Prof. X", Department: "EE", ResearchInterests: "Power"},
		})
		require.Len(t, out, 1)
		assert.Equal(t, "EE", out[0].Department)
	})

	t.Run("first same-name identity wins", func(t *testing.T) {
		out := Deduplicate([]core.FacultyRecord{
			{Name: "Neha Jain", Department: "Physics"},
			{Name: "Neha Jain", Department: "Chemistry"},
			{Name: "Dr. Neha Jain", ResearchInterests: "Optics"},
		})
		require.Len(t, out, 2)
		assert.Equal(t, "Physics", out[0].Department)
		assert.Equal(t, "Optics", out[0].ResearchInterests)
		assert.Empty(t, out[1].ResearchInterests)
	})

	t.Run("emailed listings never match on name", func(t *testing.T) {
		out := Deduplicate([]core.FacultyRecord{
			{Name: "Dr. X", Department: "CSE"},
			{Name: "X", Email: "x@iitj.ac.in"},
		})
		assert.Len(t, out, 2)
	})
}

func TestDeduplicate_MergeRules(t *testing.T) {
	records := []core.FacultyRecord{
		{
			Name:                 "Dr. Q",
			Email:                "q@iitj.ac.in",
			Designation:          "Professor",
			ProfileURL:           core.DefaultProfileURL,
			Photo:                "",
			SelectedPublications: core.Publications{"Short"},
			Extra:                map[string]any{"phone": "1", "room": "A1"},
		},
		{
			Name:                 "Q",
			Email:                "q@iitj.ac.in",
			Designation:          "Prof",
			ProfileURL:           "https://iitj.ac.in/q",
			Photo:                "q.jpg",
			SelectedPublications: core.Publications{"A much longer publication title", "Another"},
			Extra:                map[string]any{"phone": "2", "lab": "L3"},
		},
	}

	out := Deduplicate(records)
	require.Len(t, out, 1)
	m := out[0]

	assert.Equal(t, "Dr. Q", m.Name)
	assert.Equal(t, "Professor", m.Designation)
	assert.Equal(t, "https://iitj.ac.in/q", m.ProfileURL)
	assert.Equal(t, "q.jpg", m.Photo)
	assert.Equal(t, core.Publications{"A much longer publication title", "Another"}, m.SelectedPublications)
	assert.Equal(t, map[string]any{"phone": "1", "room": "A1", "lab": "L3"}, m.Extra)
}

func TestDeduplicate_Idempotent(t *testing.T) {
	records := []core.FacultyRecord{
		{Name: "Dr. A", Email: "a@x.in", Department: "CSE", ResearchInterests: "ML"},
		{Name: "B", Department: "EE", ResearchInterests: "Power"},
		{Name: "Prof. A", Department: "CSE", ResearchInterests: "Vision"},
		{Name: "A", Email: "a2@x.in", Department: "CSE | EE", ResearchInterests: "Robotics"},
		{Name: "B", Department: "Electrical EE", ResearchInterests: "Grids"},
		{Name: "", ResearchInterests: "Orphan"},
	}

	once := Deduplicate(records)
	twice := Deduplicate(once)
	assert.Equal(t, once, twice)
}

func TestDeduplicate_UniqueIdentityKeys(t *testing.T) {
	records := []core.FacultyRecord{
		{Name: "Dr. A", Email: "a@x.in", Department: "CSE"},
		{Name: "A", Department: "CSE"},
		{Name: "Prof A", Email: "A@X.IN", Department: "ME"},
		{Name: "C", Email: "c@x.in"},
		{Name: "c", Email: "c@x.in"},
	}

	out := Deduplicate(records)

	emails := make(map[string]bool)
	composites := make(map[compositeKey]bool)
	for _, r := range out {
		if ek := EmailKey(r.Email); ek != "" {
			assert.False(t, emails[ek], "duplicate email key %q", ek)
			emails[ek] = true
		}
		if nk := NameKey(r.Name); nk != "" {
			ck := compositeKey{nk, departmentKey(r.Department)}
			assert.False(t, composites[ck], "duplicate composite key %v", ck)
			composites[ck] = true
		}
	}
}

func TestDeduplicate_DoesNotMutateInput(t *testing.T) {
	records := []core.FacultyRecord{
		{Name: "A", Email: "a@x.in", ResearchInterests: "X", Extra: map[string]any{"k": 1}},
		{Name: "A", Email: "a@x.in", ResearchInterests: "Y", Extra: map[string]any{"j": 2}},
	}

	Deduplicate(records)

	assert.Equal(t, "X", records[0].ResearchInterests)
	assert.Len(t, records[0].Extra, 1)
}
