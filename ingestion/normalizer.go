package ingestion

import (
	"log/slog"
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/poiesic/facultyhub/core"
)

// UnknownCollege labels records whose source matches no known institution.
const UnknownCollege = "Unknown"

// DefaultColleges maps source identifiers to institution names.
var DefaultColleges = map[string]string{
	"iitgn":  "IIT Gandhinagar",
	"iitj":   "IIT Jodhpur",
	"iitg":   "IIT Guwahati",
	"iitr":   "IIT Roorkee",
	"iitbhu": "IIT BHU (Varanasi)",
	"iith":   "IIT Hyderabad",
	"iiti":   "IIT Indore",
	"iitd":   "IIT Delhi",
}

// Normalizer canonicalizes raw scraped records.
type Normalizer struct {
	colleges map[string]string
	keys     []string // college keys, longest first
	logger   *slog.Logger
}

// NormalizerOption configures a Normalizer.
type NormalizerOption func(*Normalizer)

// WithColleges replaces the source to college table.
func WithColleges(colleges map[string]string) NormalizerOption {
	return func(n *Normalizer) {
		if len(colleges) > 0 {
			n.colleges = maps.Clone(colleges)
		}
	}
}

// WithNormalizerLogger sets a custom logger.
func WithNormalizerLogger(logger *slog.Logger) NormalizerOption {
	return func(n *Normalizer) {
		if logger != nil {
			n.logger = logger
		}
	}
}

// NewNormalizer creates a normalizer using DefaultColleges unless overridden.
func NewNormalizer(opts ...NormalizerOption) *Normalizer {
	n := &Normalizer{
		colleges: maps.Clone(DefaultColleges),
		logger:   slog.Default().With("component", "normalizer"),
	}
	for _, opt := range opts {
		opt(n)
	}

	normalized := make(map[string]string, len(n.colleges))
	for k, v := range n.colleges {
		normalized[strings.ToLower(strings.TrimSpace(k))] = v
	}
	n.colleges = normalized
	n.keys = slices.Collect(maps.Keys(n.colleges))
	slices.SortFunc(n.keys, func(a, b string) int {
		if len(a) != len(b) {
			return len(b) - len(a)
		}
		return strings.Compare(a, b)
	})
	return n
}

// College resolves a source identifier to an institution name. An exact match
// wins; otherwise the longest table key contained in the identifier is used.
func (n *Normalizer) College(source string) string {
	id := strings.ToLower(strings.TrimSpace(source))
	if name, ok := n.colleges[id]; ok {
		return name
	}
	for _, key := range n.keys {
		if key != "" && strings.Contains(id, key) {
			return n.colleges[key]
		}
	}
	return UnknownCollege
}

// Normalize converts one source's raw records into FacultyRecords.
// Nil entries are skipped. Unknown keys are kept in Extra.
func (n *Normalizer) Normalize(source string, raw []map[string]any) []core.FacultyRecord {
	college := n.College(source)
	out := make([]core.FacultyRecord, 0, len(raw))
	for _, entry := range raw {
		if entry == nil {
			n.logger.Warn("skipping empty entry", "source", source)
			continue
		}
		out = append(out, normalizeRecord(entry, college))
	}
	return out
}

func normalizeRecord(raw map[string]any, college string) core.FacultyRecord {
	r := core.FacultyRecord{CollegeName: college}
	for key, value := range raw {
		switch key {
		case "name":
			r.Name = scalarText(value)
		case "designation":
			r.Designation = scalarText(value)
		case "email":
			r.Email = scalarText(value)
		case "website":
			r.Website = scalarText(value)
		case "research_interests":
			r.ResearchInterests = scalarText(value)
		case "department":
			r.Department = scalarText(value)
		case "photo":
			r.Photo = scalarText(value)
		case "profile_url":
			r.ProfileURL = scalarText(value)
		case "academic_background":
			r.AcademicBackground = scalarText(value)
		case "work_experience":
			r.WorkExperience = scalarText(value)
		case "selected_publications":
			r.SelectedPublications = publications(value)
		case "college_name":
			// Assigned from the source only.
		default:
			if r.Extra == nil {
				r.Extra = make(map[string]any)
			}
			r.Extra[key] = value
		}
	}

	if r.ProfileURL == "" {
		r.ProfileURL = core.DefaultProfileURL
	}
	r.ProfileURL = strings.ReplaceAll(r.ProfileURL, " ", "%20")
	return r
}

// scalarText renders a JSON scalar as trimmed text. Nested values become "".
func scalarText(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	case bool:
		return strconv.FormatBool(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case uint64:
		return strconv.FormatUint(t, 10)
	case interface{ String() string }:
		// json.Number and similar
		return strings.TrimSpace(t.String())
	default:
		return ""
	}
}

func publications(v any) core.Publications {
	switch t := v.(type) {
	case []any:
		items := make([]string, 0, len(t))
		for _, item := range t {
			if s := scalarText(item); s != "" {
				items = append(items, s)
			}
		}
		return core.PublicationsFromList(items)
	case []string:
		return core.PublicationsFromList(t)
	default:
		return core.PublicationsFromString(scalarText(v))
	}
}
