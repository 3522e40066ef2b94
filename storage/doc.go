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


// Package storage provides the storage abstraction layer for facultyhub.
//
// This package defines repository interfaces that decouple the index builder
// and the outreach tracker from the storage implementation.
//
// # Architecture
//
// The storage layer follows the Repository pattern:
//
//   - Repository: transaction support and resource release
//   - IndexRepository: embedded interest documents and the index manifest
//   - OutreachRepository: the append-only interaction log
//
// # Usage
//
// Open a backend and build repositories over it:
//
//	backend, err := badger.OpenBackend("/path/to/db", false)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer backend.Close()
//
//	index, err := badger.NewIndexRepository(backend)
//
// Use in tests with in-memory storage:
//
//	index, outreach, backend, err := badger.NewMemoryRepositories()
//
// # Thread Safety
//
// All repository implementations must be thread-safe and support
// concurrent access from multiple goroutines.
//
// # Context Support
//
// All repository methods accept context.Context for cancellation
// and timeout support.
package storage
