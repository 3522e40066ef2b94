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


// Package search turns free-text queries into faculty recommendations.
//
// The Retriever runs a query against the embedding index, reads the tag
// leading each returned document, keeps the first topK distinct tags known
// to the corpus, and expands each tag to every faculty record carrying it.
// Records come back grouped by tag rank and, within a tag, in corpus order.
//
// Retrieval never fails loudly: a missing index, an embedding error, or a
// non-positive topK yields an empty result and a log line. Unparseable result
// documents are skipped one by one.
//
// Filter offers structured browsing of the same records by department, name,
// research interest and college.
package search
