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

import "fmt"

// Corpus is the immutable, tagged view of a deduplicated record set.
// It is safe for concurrent readers.
type Corpus struct {
	records   []FacultyRecord
	tags      []Tag
	documents []IndexedDocument
	byTag     map[Tag][]int
	hash      string
}

// NewCorpus assembles a corpus from deduplicated records, the tag of each
// record, and one document per tag in tag order.
//
// Returns an error if the tag slice does not line up with the records, if
// documents are not numbered 0..n-1, or if a record references an unknown tag.
func NewCorpus(records []FacultyRecord, tags []Tag, documents []IndexedDocument) (*Corpus, error) {
	if len(records) != len(tags) {
		return nil, fmt.Errorf("%w: %d records but %d tags", ErrInvalidCorpus, len(records), len(tags))
	}
	for i, doc := range documents {
		if doc.Tag != Tag(i) {
			return nil, fmt.Errorf("%w: document %d carries tag %d", ErrInvalidCorpus, i, doc.Tag)
		}
	}

	c := &Corpus{
		records:   make([]FacultyRecord, len(records)),
		tags:      append([]Tag(nil), tags...),
		documents: make([]IndexedDocument, len(documents)),
		byTag:     make(map[Tag][]int, len(documents)),
	}
	for i := range records {
		c.records[i] = records[i].Clone()
		tag := tags[i]
		if tag < 0 || int(tag) >= len(documents) {
			return nil, fmt.Errorf("%w: record %d references unknown tag %d", ErrInvalidCorpus, i, tag)
		}
		c.byTag[tag] = append(c.byTag[tag], i)
	}

	texts := make([]string, len(documents))
	for i, doc := range documents {
		c.documents[i] = IndexedDocument{Tag: doc.Tag, Interest: doc.Interest}
		texts[i] = c.documents[i].Text()
	}
	c.hash = ContentHash(texts...)
	return c, nil
}

// Len returns the number of records.
func (c *Corpus) Len() int {
	return len(c.records)
}

// Records returns copies of all records in corpus order.
func (c *Corpus) Records() []FacultyRecord {
	out := make([]FacultyRecord, len(c.records))
	for i := range c.records {
		out[i] = c.records[i].Clone()
	}
	return out
}

// Record returns a copy of the record at position i.
func (c *Corpus) Record(i int) (FacultyRecord, bool) {
	if i < 0 || i >= len(c.records) {
		return FacultyRecord{}, false
	}
	return c.records[i].Clone(), true
}

// TagOf returns the tag assigned to the record at position i.
func (c *Corpus) TagOf(i int) (Tag, bool) {
	if i < 0 || i >= len(c.tags) {
		return 0, false
	}
	return c.tags[i], true
}

// Documents returns the indexed documents in tag order, without vectors.
func (c *Corpus) Documents() []IndexedDocument {
	return append([]IndexedDocument(nil), c.documents...)
}

// DocumentCount returns the number of distinct tags.
func (c *Corpus) DocumentCount() int {
	return len(c.documents)
}

// HasTag reports whether tag belongs to this corpus.
func (c *Corpus) HasTag(tag Tag) bool {
	return tag >= 0 && int(tag) < len(c.documents)
}

// RecordsForTag returns copies of every record carrying tag, in corpus order.
func (c *Corpus) RecordsForTag(tag Tag) []FacultyRecord {
	positions := c.byTag[tag]
	out := make([]FacultyRecord, 0, len(positions))
	for _, i := range positions {
		out = append(out, c.records[i].Clone())
	}
	return out
}

// Hash identifies the document set. Two corpora with the same tagged
// interest texts share a hash.
func (c *Corpus) Hash() string {
	return c.hash
}
