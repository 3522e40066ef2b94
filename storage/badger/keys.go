package badger

import (
	"encoding/binary"
	"fmt"
	"time"

	"github.com/poiesic/facultyhub/core"
)

// Key prefixes for different data types
const (
	indexDocumentPrefix     = "idxdoc:"
	indexManifestKey        = "idxman"
	indexGenerationKey      = "idxgen"
	interactionPrefix       = "outrec:"
	interactionFollowPrefix = "outrecf:"
	interactionIDSeq        = "outrecseq"
)

// makeIndexDocumentPrefix returns the key prefix of one index generation.
func makeIndexDocumentPrefix(gen uint64) []byte {
	buf := make([]byte, len(indexDocumentPrefix)+8)
	offset := copy(buf, indexDocumentPrefix)
	binary.BigEndian.PutUint64(buf[offset:], gen)
	return buf
}

// makeIndexDocumentKey generates a key for an index document.
// Format: prefix:generation:tag, big-endian so iteration follows tag order.
func makeIndexDocumentKey(gen uint64, tag core.Tag) []byte {
	buf := make([]byte, len(indexDocumentPrefix)+16)
	offset := copy(buf, indexDocumentPrefix)
	binary.BigEndian.PutUint64(buf[offset:], gen)
	offset += 8
	binary.BigEndian.PutUint64(buf[offset:], uint64(tag))
	return buf
}

// makeInteractionKey generates a key for an interaction by ID.
func makeInteractionKey(id core.ID) []byte {
	return []byte(fmt.Sprintf("%s%d", interactionPrefix, id))
}

// makeFollowupKey generates a composite key for the follow-up index.
// Format: prefix:timestamp:id
func makeFollowupKey(followupAt time.Time, id core.ID) []byte {
	buf := make([]byte, len(interactionFollowPrefix)+16)
	offset := copy(buf, interactionFollowPrefix)
	// BigEndian so lexicographic order matches time order
	binary.BigEndian.PutUint64(buf[offset:], uint64(followupAt.UnixMicro()))
	offset += 8
	binary.BigEndian.PutUint64(buf[offset:], uint64(id))
	return buf
}

// makePartialFollowupKey generates a partial key for follow-up range scans.
func makePartialFollowupKey(followupAt time.Time) []byte {
	buf := make([]byte, len(interactionFollowPrefix)+8)
	offset := copy(buf, interactionFollowPrefix)
	binary.BigEndian.PutUint64(buf[offset:], uint64(followupAt.UnixMicro()))
	return buf
}
