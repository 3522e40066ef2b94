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
// Package gemini implements ai.AIProvider on Google's Gemini API using the
// generative-ai-go client.
//
// Every remote call passes through a token bucket rate limiter and a circuit
// breaker shared by the embedder and the generator, so a failing or throttled
// API degrades to fast errors instead of stalling index builds.
//
// # Usage
//
//	config := ai.NewConfig(
//	    ai.WithProvider(ai.ProviderGemini),
//	    ai.WithAPIKey(os.Getenv("GEMINI_API_KEY")),
//	)
//	provider, err := gemini.NewProvider(ctx, config)
package gemini
