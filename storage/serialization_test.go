package storage

import (
	"testing"
	"time"

	"github.com/poiesic/facultyhub/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalUnmarshalID(t *testing.T) {
	tests := []struct {
		name string
		id   core.ID
	}{
		{"zero ID", core.ID(0)},
		{"small ID", core.ID(42)},
		{"large ID", core.ID(18446744073709551615)}, // max uint64
		{"content-based ID", core.IDFromContent("test content")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := MarshalID(tt.id)
			require.NotEmpty(t, data)

			decoded, err := UnmarshalID(data)
			require.NoError(t, err)
			assert.Equal(t, tt.id, decoded)
		})
	}
}

func TestUnmarshalID_Invalid(t *testing.T) {
	_, err := UnmarshalID([]byte{})
	assert.ErrorIs(t, err, ErrSerializationFailed)
}

func TestMarshalUnmarshalIndexedDocument(t *testing.T) {
	tests := []struct {
		name string
		doc  *core.IndexedDocument
	}{
		{"without vector", &core.IndexedDocument{Tag: 0, Interest: "Machine Learning"}},
		{"with vector", &core.IndexedDocument{Tag: 17, Interest: "AI, Robotics", Vector: []float32{0.6, 0.8, 0}}},
		{"sentinel", &core.IndexedDocument{Tag: 3, Interest: core.NoInterestsSentinel}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			decoded, err := UnmarshalIndexedDocument(MarshalIndexedDocument(tt.doc))
			require.NoError(t, err)
			assert.Equal(t, tt.doc.Tag, decoded.Tag)
			assert.Equal(t, tt.doc.Interest, decoded.Interest)
			assert.Equal(t, len(tt.doc.Vector), len(decoded.Vector))
			for i := range tt.doc.Vector {
				assert.InDelta(t, tt.doc.Vector[i], decoded.Vector[i], 1e-7)
			}
		})
	}
}

func TestUnmarshalIndexedDocument_Invalid(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"empty data", []byte{}},
		{"invalid data", []byte{0xFF, 0xFF, 0xFF}},
		{"partial data", []byte{1, 2, 3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := UnmarshalIndexedDocument(tt.data)
			assert.ErrorIs(t, err, ErrSerializationFailed)
		})
	}
}

func TestMarshalUnmarshalManifest(t *testing.T) {
	manifest := &core.IndexManifest{
		ContentHash: core.ContentHash("0 AI", "1 Robotics"),
		Documents:   2,
		Embedder:    "openai:embeddinggemma",
		BuiltAt:     time.Now().UTC().Truncate(time.Microsecond),
	}

	decoded, err := UnmarshalManifest(MarshalManifest(manifest))
	require.NoError(t, err)
	assert.Equal(t, manifest, decoded)
}

func TestMarshalUnmarshalInteraction(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Microsecond)

	interaction := &core.Interaction{
		Id:                12,
		StudentName:       "Asha",
		ProfessorName:     "Dr. Rao",
		ProfessorEmail:    "rao@example.edu",
		ProfessorInterest: "Control Systems",
		Goal:              "Research Internship",
		EmailText:         "Dear Professor Rao,",
		SentAt:            now,
		FollowupAt:        now.Add(5 * 24 * time.Hour),
	}

	decoded, err := UnmarshalInteraction(MarshalInteraction(interaction))
	require.NoError(t, err)
	assert.Equal(t, interaction, decoded)
}

func TestUnmarshalInteraction_Invalid(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"empty data", []byte{}},
		{"invalid data", []byte{0xFF, 0xFF, 0xFF}},
		{"partial data", []byte{1, 2, 3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := UnmarshalInteraction(tt.data)
			assert.Error(t, err)
		})
	}
}
