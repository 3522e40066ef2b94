package ingestion

import "github.com/poiesic/facultyhub/core"

// AssignTags numbers each distinct normalized interest string in order of
// first occurrence, starting from 0, and builds the corpus.
func AssignTags(records []core.FacultyRecord) (*core.Corpus, error) {
	tags := make([]core.Tag, len(records))
	seen := make(map[string]core.Tag)
	var docs []core.IndexedDocument

	for i := range records {
		interest := core.NormalizeInterest(records[i].ResearchInterests)
		tag, ok := seen[interest]
		if !ok {
			tag = core.Tag(len(docs))
			seen[interest] = tag
			docs = append(docs, core.IndexedDocument{Tag: tag, Interest: interest})
		}
		tags[i] = tag
	}
	return core.NewCorpus(records, tags, docs)
}
