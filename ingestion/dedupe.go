package ingestion

import (
	"regexp"
	"strings"

	"github.com/poiesic/facultyhub/core"
)

// honorific matches one leading title such as "Dr.", "Prof " or "Professor".
var honorific = regexp.MustCompile(`^(?:professor|prof|dr)(?:\.\s*|\s+)`)

// EmailKey is the identity key derived from an email address.
func EmailKey(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// NameKey lowercases a name, strips leading titles and collapses whitespace.
func NameKey(name string) string {
	key := strings.ToLower(strings.TrimSpace(name))
	for {
		stripped := honorific.ReplaceAllString(key, "")
		if stripped == key {
			break
		}
		key = strings.TrimSpace(stripped)
	}
	return strings.Join(strings.Fields(key), " ")
}

func departmentKey(department string) string {
	return strings.Join(strings.Fields(strings.ToLower(department)), " ")
}

type compositeKey struct {
	name       string
	department string
}

// Deduplicate merges records that describe the same person. Identity is the
// normalized email when present, otherwise the title-free name together with
// the department. Passes repeat until nothing merges, so the result is stable
// under a second call.
func Deduplicate(records []core.FacultyRecord) []core.FacultyRecord {
	out := make([]core.FacultyRecord, len(records))
	for i := range records {
		out[i] = records[i].Clone()
	}
	for {
		var merged int
		out, merged = dedupePass(out)
		if merged == 0 {
			return out
		}
	}
}

func dedupePass(records []core.FacultyRecord) ([]core.FacultyRecord, int) {
	identities := make([]core.FacultyRecord, 0, len(records))
	byEmail := make(map[string]int)
	byComposite := make(map[compositeKey]int)
	merges := 0

	register := func(idx int) {
		r := &identities[idx]
		if ek := EmailKey(r.Email); ek != "" {
			if _, ok := byEmail[ek]; !ok {
				byEmail[ek] = idx
			}
		}
		if nk := NameKey(r.Name); nk != "" {
			ck := compositeKey{name: nk, department: departmentKey(r.Department)}
			if _, ok := byComposite[ck]; !ok {
				byComposite[ck] = idx
			}
		}
	}

	for _, r := range records {
		idx := resolveIdentity(r, identities, byEmail, byComposite)
		if idx < 0 {
			identities = append(identities, r)
			register(len(identities) - 1)
			continue
		}
		identities[idx] = mergeRecords(identities[idx], r)
		merges++
		register(idx)
	}
	return identities, merges
}

// resolveIdentity returns the index of the identity r belongs to, or -1.
func resolveIdentity(r core.FacultyRecord, identities []core.FacultyRecord, byEmail map[string]int, byComposite map[compositeKey]int) int {
	ek := EmailKey(r.Email)
	if ek != "" {
		if idx, ok := byEmail[ek]; ok {
			return idx
		}
	}

	nk := NameKey(r.Name)
	if nk == "" {
		return -1
	}
	dk := departmentKey(r.Department)
	if idx, ok := byComposite[compositeKey{name: nk, department: dk}]; ok {
		return idx
	}

	if ek != "" {
		return -1
	}
	// An empty department is contained in every other one, so a listing
	// without a department joins the first person of the same name.
	for idx := range identities {
		if NameKey(identities[idx].Name) != nk {
			continue
		}
		other := departmentKey(identities[idx].Department)
		if strings.Contains(other, dk) || strings.Contains(dk, other) {
			return idx
		}
	}
	return -1
}

// mergeRecords folds incoming into existing.
func mergeRecords(existing, incoming core.FacultyRecord) core.FacultyRecord {
	m := existing.Clone()

	m.Name = pickScalar(m.Name, incoming.Name)
	m.Designation = pickScalar(m.Designation, incoming.Designation)
	m.Email = pickScalar(m.Email, incoming.Email)
	m.Website = pickScalar(m.Website, incoming.Website)
	m.CollegeName = pickScalar(m.CollegeName, incoming.CollegeName)
	m.Photo = pickScalar(m.Photo, incoming.Photo)
	m.ProfileURL = pickScalar(m.ProfileURL, incoming.ProfileURL)
	m.AcademicBackground = pickScalar(m.AcademicBackground, incoming.AcademicBackground)
	m.WorkExperience = pickScalar(m.WorkExperience, incoming.WorkExperience)

	m.ResearchInterests = core.MergeInterests(m.ResearchInterests, incoming.ResearchInterests)
	m.Department = core.MergeDepartments(m.Department, incoming.Department)

	if incoming.SelectedPublications.TextLength() > m.SelectedPublications.TextLength() {
		m.SelectedPublications = append(core.Publications(nil), incoming.SelectedPublications...)
	}

	for k, v := range incoming.Extra {
		if m.Extra == nil {
			m.Extra = make(map[string]any)
		}
		if _, ok := m.Extra[k]; !ok {
			m.Extra[k] = v
		}
	}
	return m
}

// pickScalar keeps existing unless it is empty or incoming is strictly longer.
func pickScalar(existing, incoming string) string {
	if incoming == "" {
		return existing
	}
	if existing == "" || len(incoming) > len(existing) {
		return incoming
	}
	return existing
}
