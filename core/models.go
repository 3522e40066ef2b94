// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package core

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"maps"
	"strconv"
	"strings"
	"time"

	"github.com/go-crypt/x/blake2b"
	json "github.com/goccy/go-json"
)

// NoInterestsSentinel stands in for empty research interests when tagging.
// All records without interests share the tag of this text.
const NoInterestsSentinel = "no research interests specified"

// DefaultProfileURL is the placeholder used when a record has no profile link.
const DefaultProfileURL = "#"

// ID is a unique identifier for stored entities.
// It is generated using content-based hashing or database sequences.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// This ensures that identical content produces identical IDs.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// ContentHash returns a hex encoded BLAKE2b-256 digest over the given parts.
// Parts are length-prefixed so that ("ab", "c") and ("a", "bc") differ.
func ContentHash(parts ...string) string {
	h, _ := blake2b.New(32, nil)
	for _, p := range parts {
		h.Write([]byte(strconv.Itoa(len(p))))
		h.Write([]byte{':'})
		h.Write([]byte(p))
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Publications holds a record's selected publications.
// Sources provide either a single string or a list of strings; both decode here.
type Publications []string

// UnmarshalJSON accepts a string, an array of strings, or null.
func (p *Publications) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		*p = PublicationsFromString(single)
		return nil
	}
	var list []string
	if err := json.Unmarshal(data, &list); err != nil {
		return err
	}
	*p = PublicationsFromList(list)
	return nil
}

// MarshalJSON writes a single publication as a plain string and several as an array.
func (p Publications) MarshalJSON() ([]byte, error) {
	switch len(p) {
	case 0:
		return []byte(`""`), nil
	case 1:
		return json.Marshal(p[0])
	default:
		return json.Marshal([]string(p))
	}
}

// PublicationsFromString wraps a single publication string.
func PublicationsFromString(s string) Publications {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return Publications{s}
}

// PublicationsFromList trims entries and drops empty ones.
func PublicationsFromList(list []string) Publications {
	var out Publications
	for _, item := range list {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// TextLength is the total number of bytes across all publications.
func (p Publications) TextLength() int {
	n := 0
	for _, item := range p {
		n += len(item)
	}
	return n
}

// FacultyRecord is one person at one institution.
type FacultyRecord struct {
	Name                 string       `json:"name"`
	Designation          string       `json:"designation"`
	Email                string       `json:"email"`
	Website              string       `json:"website,omitempty"`
	ResearchInterests    string       `json:"research_interests"`
	Department           string       `json:"department"`
	CollegeName          string       `json:"college_name"`
	Photo                string       `json:"photo"`
	ProfileURL           string       `json:"profile_url"`
	AcademicBackground   string       `json:"academic_background"`
	WorkExperience       string       `json:"work_experience"`
	SelectedPublications Publications `json:"selected_publications"`

	// Extra holds source keys that have no dedicated field.
	Extra map[string]any `json:"extra,omitempty"`
}

// Clone returns a copy that shares no mutable state with r.
func (r *FacultyRecord) Clone() FacultyRecord {
	c := *r
	if r.SelectedPublications != nil {
		c.SelectedPublications = append(Publications(nil), r.SelectedPublications...)
	}
	if r.Extra != nil {
		c.Extra = maps.Clone(r.Extra)
	}
	return c
}

// Interests splits the record's research interests into trimmed items.
func (r *FacultyRecord) Interests() []string {
	return SplitInterests(r.ResearchInterests)
}

// Tag identifies one distinct normalized research interest string in a corpus.
type Tag int

// IndexedDocument is the unit stored in the embedding index.
// There is one document per distinct tag.
type IndexedDocument struct {
	Tag      Tag
	Interest string
	Vector   []float32 // Unit-normalized embedding (populated by the index builder)
}

// Text renders the document as "<tag> <interest>", the form that is embedded
// and returned by searches.
func (d *IndexedDocument) Text() string {
	return fmt.Sprintf("%d %s", d.Tag, d.Interest)
}

// ParseDocumentTag extracts the leading tag token from a document text.
// Surrounding double quotes are ignored. Returns false when the text is empty
// or the first token is not a non-negative integer.
func ParseDocumentTag(text string) (Tag, bool) {
	content := strings.Trim(text, `"`)
	fields := strings.Fields(content)
	if len(fields) == 0 {
		return 0, false
	}
	token := fields[0]
	for _, r := range token {
		if r < '0' || r > '9' {
			return 0, false
		}
	}
	n, err := strconv.Atoi(token)
	if err != nil {
		return 0, false
	}
	return Tag(n), true
}

// SearchResult pairs an indexed document with its similarity to a query.
type SearchResult struct {
	Document *IndexedDocument
	Score    float32
}

// IndexManifest describes a persisted embedding index.
type IndexManifest struct {
	ContentHash string    // Hash of the corpus documents and embedder the index was built from
	Documents   int       // Number of indexed documents
	Embedder    string    // Embedder identity used to build the vectors
	BuiltAt     time.Time // When the index was built
}

// Interaction is one logged outreach email to a professor.
type Interaction struct {
	Id                ID
	StudentName       string
	ProfessorName     string
	ProfessorEmail    string
	ProfessorInterest string
	Goal              string
	ExtraNote         string
	EmailText         string
	SentAt            time.Time
	FollowupAt        time.Time
	Responded         bool
}
