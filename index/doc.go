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


// Package index maintains the persistent embedding index over a corpus of
// interest documents.
//
// The index stores one document per tag, with text "<tag> <interest>" and a
// unit-normalized embedding. A manifest records the content hash of the
// corpus documents and the embedder that produced the vectors. Opening an
// index over a corpus reuses the stored vectors when the manifest matches and
// rebuilds them otherwise.
//
// Builds embed documents in batches on an ants worker pool. Each batch is
// retried with exponential backoff, and progress can be reported to any
// io.Writer. The manifest is written only after every batch is stored, so an
// interrupted build is detected and redone on the next open.
//
// Basic usage:
//
//	idx, err := index.Open(ctx, repo, embedder, corpus,
//	    index.WithBatchSize(32),
//	    index.WithProgress(os.Stderr),
//	)
//	texts, err := idx.Search(ctx, "machine learning", 10)
package index
