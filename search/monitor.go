package search

import "github.com/poiesic/facultyhub/core"

// RetrievalMonitor provides hooks to observe the retrieval process.
// Implement this interface to track intermediate steps and results.
type RetrievalMonitor interface {
	Start(query string, topK int)
	AfterIndexSearch(texts []string)
	SkippedDocument(text string, reason string)
	AfterTagSelection(tags []core.Tag)
	Finish(records []core.FacultyRecord)
}

// Skip reasons reported to SkippedDocument.
const (
	SkipUnparseable = "unparseable tag"
	SkipUnknownTag  = "tag not in corpus"
	SkipDuplicate   = "duplicate tag"
)

// noopMonitor is a no-op implementation of RetrievalMonitor
type noopMonitor struct{}

var _ RetrievalMonitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ string, _ int)              {}
func (n *noopMonitor) AfterIndexSearch(_ []string)        {}
func (n *noopMonitor) SkippedDocument(_ string, _ string) {}
func (n *noopMonitor) AfterTagSelection(_ []core.Tag)     {}
func (n *noopMonitor) Finish(_ []core.FacultyRecord)      {}
