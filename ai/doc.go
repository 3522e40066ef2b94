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


// Package ai provides abstractions for the AI services used by facultyhub.
//
// The package defines interfaces for text embeddings, which back the research
// interest index, and text generation, which drafts outreach emails. Domain
// packages depend on these interfaces rather than on concrete clients.
//
// # Interfaces
//
//   - Embedder: Generates vector embeddings from text
//   - Generator: Produces text from a prompt
//   - AIProvider: Aggregates both for convenient initialization
//
// Two optional interfaces refine an Embedder. CorpusPreparer is implemented by
// embedders that must see every document before embedding (ai/tfidf), and
// Identifier names the model so an index can tell when stored vectors are stale.
//
// # Implementation Packages
//
//   - ai/openai: OpenAI-compatible APIs through langchaingo (Ollama, vLLM, OpenAI)
//   - ai/gemini: Google Gemini, guarded by a circuit breaker and rate limiter
//   - ai/tfidf: Offline TF-IDF embeddings with no generator
//   - ai/mock: Test doubles for unit testing without external dependencies
//
// Public constructors return interface types. Mock constructors return
// concrete types so tests can inject behavior and inspect call counts.
//
// # Usage Example
//
//	config := ai.NewConfig(ai.WithProvider(ai.ProviderGemini), ai.WithAPIKey(key))
//	provider, err := gemini.NewProvider(ctx, config)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer provider.Close()
//
//	vector, err := provider.Embedder().EmbedText(ctx, "machine learning")
//	email, err := provider.Generator().Generate(ctx, prompt)
package ai
