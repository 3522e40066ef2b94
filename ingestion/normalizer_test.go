package ingestion

import (
	"testing"

	"github.com/poiesic/facultyhub/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizer_College(t *testing.T) {
	n := NewNormalizer()

	tests := []struct {
		source string
		want   string
	}{
		{"iitgn", "IIT Gandhinagar"},
		{"IITJ", "IIT Jodhpur"},
		{"iitgn_faculty", "IIT Gandhinagar"},
		{"iitg_faculty", "IIT Guwahati"},
		{"iitbhu_profs", "IIT BHU (Varanasi)"},
		{"data_iith", "IIT Hyderabad"},
		{"iitd", "IIT Delhi"},
		{"nitk", UnknownCollege},
		{"", UnknownCollege},
	}

	for _, tt := range tests {
		t.Run(tt.source, func(t *testing.T) {
			assert.Equal(t, tt.want, n.College(tt.source))
		})
	}
}

func TestNormalizer_CustomColleges(t *testing.T) {
	n := NewNormalizer(WithColleges(map[string]string{"IITK": "IIT Kanpur"}))

	assert.Equal(t, "IIT Kanpur", n.College("iitk_faculty"))
	assert.Equal(t, UnknownCollege, n.College("iitgn"))
}

func TestNormalizer_Defaults(t *testing.T) {
	n := NewNormalizer()

	records := n.Normalize("iitgn", []map[string]any{{"email": " a@iitgn.ac.in "}})
	require.Len(t, records, 1)

	r := records[0]
	assert.Equal(t, "a@iitgn.ac.in", r.Email)
	assert.Equal(t, "IIT Gandhinagar", r.CollegeName)
	assert.Equal(t, core.DefaultProfileURL, r.ProfileURL)
	assert.Empty(t, r.Name)
	assert.Empty(t, r.Department)
	assert.Empty(t, r.ResearchInterests)
	assert.Empty(t, r.SelectedPublications)
	assert.Nil(t, r.Extra)
}

func TestNormalizer_FieldHandling(t *testing.T) {
	n := NewNormalizer()

	raw := map[string]any{
		"name":                  "  Dr. Meera Shah ",
		"designation":           42.0,
		"website":               true,
		"department":            map[string]any{"nested": "value"},
		"profile_url":           "https://iitr.ac.in/Departments/Computer Science/Pages/Shah.html",
		"college_name":          "Somewhere Else",
		"selected_publications": []any{"Paper A", 7.0, "", map[string]any{}},
		"phone":                 "+91 79 0000",
	}

	records := n.Normalize("iitr", []map[string]any{raw, nil})
	require.Len(t, records, 1)
	r := records[0]

	assert.Equal(t, "Dr. Meera Shah", r.Name)
	assert.Equal(t, "42", r.Designation)
	assert.Equal(t, "true", r.Website)
	assert.Empty(t, r.Department)
	assert.Equal(t, "IIT Roorkee", r.CollegeName)
	assert.Equal(t, "https://iitr.ac.in/Departments/Computer%20Science/Pages/Shah.html", r.ProfileURL)
	assert.Equal(t, core.Publications{"Paper A", "7"}, r.SelectedPublications)
	assert.Equal(t, "+91 79 0000", r.Extra["phone"])
}

func TestNormalizer_PublicationString(t *testing.T) {
	n := NewNormalizer()

	records := n.Normalize("iitj", []map[string]any{{"selected_publications": " One paper "}})
	require.Len(t, records, 1)
	assert.Equal(t, core.Publications{"One paper"}, records[0].SelectedPublications)
}
