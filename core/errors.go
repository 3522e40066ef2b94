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

import "errors"

// Domain validation errors
var (
	// ErrInvalidCorpus indicates records, tags and documents do not line up.
	ErrInvalidCorpus = errors.New("invalid corpus")

	// ErrInvalidInteraction indicates an Interaction failed validation.
	ErrInvalidInteraction = errors.New("invalid interaction")

	// ErrInvalidDocument indicates an IndexedDocument failed validation.
	ErrInvalidDocument = errors.New("invalid indexed document")

	// ErrEmptyProfessorName indicates the professor name is empty.
	ErrEmptyProfessorName = errors.New("professor name cannot be empty")

	// ErrEmptyStudentName indicates the student name is empty.
	ErrEmptyStudentName = errors.New("student name cannot be empty")

	// ErrEmptyContent indicates a text field that must carry content is empty.
	ErrEmptyContent = errors.New("content cannot be empty")

	// ErrInvalidTimestamp indicates a timestamp is in the future.
	ErrInvalidTimestamp = errors.New("timestamp cannot be in the future")

	// ErrFollowupBeforeSend indicates a follow-up scheduled before the send time.
	ErrFollowupBeforeSend = errors.New("follow-up cannot precede send time")

	// ErrMalformedValue indicates a serialized value could not be decoded.
	ErrMalformedValue = errors.New("malformed value")
)
