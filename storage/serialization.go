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


package storage

import (
	"fmt"

	"github.com/poiesic/facultyhub/core"
)

// MarshalID serializes an ID to bytes.
func MarshalID(id core.ID) []byte {
	buf := make([]byte, core.IDMUS.Size(id))
	core.IDMUS.Marshal(id, buf)
	return buf
}

// UnmarshalID deserializes an ID from bytes.
func UnmarshalID(data []byte) (core.ID, error) {
	id, _, err := core.IDMUS.Unmarshal(data)
	if err != nil {
		return 0, fmt.Errorf("%w: id: %v", ErrSerializationFailed, err)
	}
	return id, nil
}

// MarshalIndexedDocument serializes an IndexedDocument to bytes.
func MarshalIndexedDocument(doc *core.IndexedDocument) []byte {
	buf := make([]byte, core.IndexedDocumentMUS.Size(*doc))
	core.IndexedDocumentMUS.Marshal(*doc, buf)
	return buf
}

// UnmarshalIndexedDocument deserializes an IndexedDocument from bytes.
func UnmarshalIndexedDocument(data []byte) (*core.IndexedDocument, error) {
	doc, _, err := core.IndexedDocumentMUS.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: document: %v", ErrSerializationFailed, err)
	}
	return &doc, nil
}

// MarshalManifest serializes an IndexManifest to bytes.
func MarshalManifest(manifest *core.IndexManifest) []byte {
	buf := make([]byte, core.IndexManifestMUS.Size(*manifest))
	core.IndexManifestMUS.Marshal(*manifest, buf)
	return buf
}

// UnmarshalManifest deserializes an IndexManifest from bytes.
func UnmarshalManifest(data []byte) (*core.IndexManifest, error) {
	manifest, _, err := core.IndexManifestMUS.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: manifest: %v", ErrSerializationFailed, err)
	}
	return &manifest, nil
}

// MarshalInteraction serializes an Interaction to bytes.
func MarshalInteraction(interaction *core.Interaction) []byte {
	buf := make([]byte, core.InteractionMUS.Size(*interaction))
	core.InteractionMUS.Marshal(*interaction, buf)
	return buf
}

// UnmarshalInteraction deserializes an Interaction from bytes.
func UnmarshalInteraction(data []byte) (*core.Interaction, error) {
	interaction, _, err := core.InteractionMUS.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: interaction: %v", ErrSerializationFailed, err)
	}
	return &interaction, nil
}
