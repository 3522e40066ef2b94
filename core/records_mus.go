package core

import (
	"fmt"
	"time"

	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/raw"
	"github.com/mus-format/mus-go/varint"
)

// Binary serializers for persisted values. Each follows the mus-go shape:
// Size reports the encoded length, Marshal writes into a buffer of at least
// that length and returns bytes written, Unmarshal returns the value, bytes
// read and any error.

var (
	IDMUS              = idMUS{}
	IndexedDocumentMUS = indexedDocumentMUS{}
	IndexManifestMUS   = indexManifestMUS{}
	InteractionMUS     = interactionMUS{}
)

type idMUS struct{}

func (idMUS) Marshal(v ID, bs []byte) (n int) {
	return varint.Uint64.Marshal(uint64(v), bs)
}

func (idMUS) Unmarshal(bs []byte) (v ID, n int, err error) {
	u, n, err := varint.Uint64.Unmarshal(bs)
	return ID(u), n, err
}

func (idMUS) Size(v ID) (size int) {
	return varint.Uint64.Size(uint64(v))
}

// timeMUS stores a time as Unix microseconds. The zero time round-trips.
type timeMUS struct{}

func (timeMUS) Marshal(v time.Time, bs []byte) (n int) {
	return varint.Int64.Marshal(timeToMicro(v), bs)
}

func (timeMUS) Unmarshal(bs []byte) (v time.Time, n int, err error) {
	us, n, err := varint.Int64.Unmarshal(bs)
	if err != nil {
		return time.Time{}, n, err
	}
	if us == 0 {
		return time.Time{}, n, nil
	}
	return time.UnixMicro(us).UTC(), n, nil
}

func (timeMUS) Size(v time.Time) (size int) {
	return varint.Int64.Size(timeToMicro(v))
}

func timeToMicro(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixMicro()
}

// vectorMUS stores a length prefix followed by fixed-width float32 values.
type vectorMUS struct{}

func (vectorMUS) Marshal(v []float32, bs []byte) (n int) {
	n = varint.PositiveInt.Marshal(len(v), bs)
	for _, f := range v {
		n += raw.Float32.Marshal(f, bs[n:])
	}
	return n
}

func (vectorMUS) Unmarshal(bs []byte) (v []float32, n int, err error) {
	length, n, err := varint.PositiveInt.Unmarshal(bs)
	if err != nil {
		return nil, n, err
	}
	if length < 0 || length > len(bs)-n {
		return nil, n, fmt.Errorf("%w: vector length %d", ErrMalformedValue, length)
	}
	if length == 0 {
		return nil, n, nil
	}
	v = make([]float32, length)
	for i := range v {
		f, m, err := raw.Float32.Unmarshal(bs[n:])
		n += m
		if err != nil {
			return nil, n, err
		}
		v[i] = f
	}
	return v, n, nil
}

func (vectorMUS) Size(v []float32) (size int) {
	size = varint.PositiveInt.Size(len(v))
	for _, f := range v {
		size += raw.Float32.Size(f)
	}
	return size
}

type indexedDocumentMUS struct{}

func (indexedDocumentMUS) Marshal(v IndexedDocument, bs []byte) (n int) {
	n = varint.Int.Marshal(int(v.Tag), bs)
	n += ord.String.Marshal(v.Interest, bs[n:])
	n += vectorMUS{}.Marshal(v.Vector, bs[n:])
	return n
}

func (indexedDocumentMUS) Unmarshal(bs []byte) (v IndexedDocument, n int, err error) {
	tag, n, err := varint.Int.Unmarshal(bs)
	if err != nil {
		return
	}
	v.Tag = Tag(tag)
	var m int
	v.Interest, m, err = ord.String.Unmarshal(bs[n:])
	n += m
	if err != nil {
		return
	}
	v.Vector, m, err = vectorMUS{}.Unmarshal(bs[n:])
	n += m
	return
}

func (indexedDocumentMUS) Size(v IndexedDocument) (size int) {
	size = varint.Int.Size(int(v.Tag))
	size += ord.String.Size(v.Interest)
	return size + vectorMUS{}.Size(v.Vector)
}

type indexManifestMUS struct{}

func (indexManifestMUS) Marshal(v IndexManifest, bs []byte) (n int) {
	n = ord.String.Marshal(v.ContentHash, bs)
	n += varint.Int.Marshal(v.Documents, bs[n:])
	n += ord.String.Marshal(v.Embedder, bs[n:])
	n += timeMUS{}.Marshal(v.BuiltAt, bs[n:])
	return n
}

func (indexManifestMUS) Unmarshal(bs []byte) (v IndexManifest, n int, err error) {
	v.ContentHash, n, err = ord.String.Unmarshal(bs)
	if err != nil {
		return
	}
	var m int
	v.Documents, m, err = varint.Int.Unmarshal(bs[n:])
	n += m
	if err != nil {
		return
	}
	v.Embedder, m, err = ord.String.Unmarshal(bs[n:])
	n += m
	if err != nil {
		return
	}
	v.BuiltAt, m, err = timeMUS{}.Unmarshal(bs[n:])
	n += m
	return
}

func (indexManifestMUS) Size(v IndexManifest) (size int) {
	size = ord.String.Size(v.ContentHash)
	size += varint.Int.Size(v.Documents)
	size += ord.String.Size(v.Embedder)
	return size + timeMUS{}.Size(v.BuiltAt)
}

type interactionMUS struct{}

func (interactionMUS) Marshal(v Interaction, bs []byte) (n int) {
	n = IDMUS.Marshal(v.Id, bs)
	for _, s := range v.textFields() {
		n += ord.String.Marshal(*s, bs[n:])
	}
	n += timeMUS{}.Marshal(v.SentAt, bs[n:])
	n += timeMUS{}.Marshal(v.FollowupAt, bs[n:])
	n += ord.Bool.Marshal(v.Responded, bs[n:])
	return n
}

func (interactionMUS) Unmarshal(bs []byte) (v Interaction, n int, err error) {
	v.Id, n, err = IDMUS.Unmarshal(bs)
	if err != nil {
		return
	}
	var m int
	for _, s := range v.textFields() {
		*s, m, err = ord.String.Unmarshal(bs[n:])
		n += m
		if err != nil {
			return
		}
	}
	v.SentAt, m, err = timeMUS{}.Unmarshal(bs[n:])
	n += m
	if err != nil {
		return
	}
	v.FollowupAt, m, err = timeMUS{}.Unmarshal(bs[n:])
	n += m
	if err != nil {
		return
	}
	v.Responded, m, err = ord.Bool.Unmarshal(bs[n:])
	n += m
	return
}

func (interactionMUS) Size(v Interaction) (size int) {
	size = IDMUS.Size(v.Id)
	for _, s := range v.textFields() {
		size += ord.String.Size(*s)
	}
	size += timeMUS{}.Size(v.SentAt)
	size += timeMUS{}.Size(v.FollowupAt)
	return size + ord.Bool.Size(v.Responded)
}

// textFields lists the string fields in wire order.
func (i *Interaction) textFields() []*string {
	return []*string{
		&i.StudentName,
		&i.ProfessorName,
		&i.ProfessorEmail,
		&i.ProfessorInterest,
		&i.Goal,
		&i.ExtraNote,
		&i.EmailText,
	}
}
