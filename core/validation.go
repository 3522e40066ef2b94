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

import (
	"fmt"
	"strings"
	"time"
)

// ValidateInteraction validates an Interaction according to domain rules.
//
// Validation rules:
//   - StudentName and ProfessorName must not be empty
//   - EmailText must not be empty
//   - SentAt must not be in the future
//   - FollowupAt, when set, must not precede SentAt
//
// NOT validated:
//   - Id (assigned by the repository on save)
//   - ProfessorEmail (many scraped records have none)
func ValidateInteraction(interaction *Interaction) error {
	if interaction == nil {
		return fmt.Errorf("%w: interaction is nil", ErrInvalidInteraction)
	}

	if strings.TrimSpace(interaction.StudentName) == "" {
		return fmt.Errorf("%w: %w", ErrInvalidInteraction, ErrEmptyStudentName)
	}

	if strings.TrimSpace(interaction.ProfessorName) == "" {
		return fmt.Errorf("%w: %w", ErrInvalidInteraction, ErrEmptyProfessorName)
	}

	if strings.TrimSpace(interaction.EmailText) == "" {
		return fmt.Errorf("%w: %w", ErrInvalidInteraction, ErrEmptyContent)
	}

	if !IsValidTimestamp(interaction.SentAt) {
		return fmt.Errorf("%w: %w", ErrInvalidInteraction, ErrInvalidTimestamp)
	}

	if !interaction.FollowupAt.IsZero() && interaction.FollowupAt.Before(interaction.SentAt) {
		return fmt.Errorf("%w: %w", ErrInvalidInteraction, ErrFollowupBeforeSend)
	}

	return nil
}

// ValidateIndexedDocument checks that a document can be stored in the index.
func ValidateIndexedDocument(doc *IndexedDocument) error {
	if doc == nil {
		return fmt.Errorf("%w: document is nil", ErrInvalidDocument)
	}
	if doc.Tag < 0 {
		return fmt.Errorf("%w: negative tag %d", ErrInvalidDocument, doc.Tag)
	}
	if strings.TrimSpace(doc.Interest) == "" {
		return fmt.Errorf("%w: %w", ErrInvalidDocument, ErrEmptyContent)
	}
	return nil
}

// IsValidTimestamp checks if a timestamp is valid (not in the future).
func IsValidTimestamp(ts time.Time) bool {
	return !ts.After(time.Now())
}
