// Package ingestion turns scraped faculty listings into a tagged corpus.
//
// The stages run in a fixed order:
//   - Loader reads one JSON file per institution from a directory
//   - Normalizer fills defaults and labels each record with its college
//   - Deduplicate merges listings of the same person across sources
//   - AssignTags groups records by interest text into a core.Corpus
//
// Pipeline chains all four. Malformed source files are logged and skipped so
// a single bad scrape never blocks the rest of the directory.
package ingestion
