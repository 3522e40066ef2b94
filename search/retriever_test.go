package search

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/poiesic/facultyhub/ai/tfidf"
	"github.com/poiesic/facultyhub/core"
	"github.com/poiesic/facultyhub/index"
	"github.com/poiesic/facultyhub/ingestion"
	"github.com/poiesic/facultyhub/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeIndex returns canned search results.
type fakeIndex struct {
	texts       []string
	err         error
	count       int
	calls       int
	lastK       int
	hadDeadline bool
}

func (f *fakeIndex) Search(ctx context.Context, query string, k int) ([]string, error) {
	f.calls++
	f.lastK = k
	_, f.hadDeadline = ctx.Deadline()
	if f.err != nil {
		return nil, f.err
	}
	return f.texts, nil
}

func (f *fakeIndex) Count() int { return f.count }

func testCorpus(t *testing.T) *core.Corpus {
	t.Helper()
	corpus, err := ingestion.AssignTags([]core.FacultyRecord{
		{Name: "Asha", ResearchInterests: "AI"},
		{Name: "Bala", ResearchInterests: "Robotics"},
		{Name: "Chen", ResearchInterests: "Vision"},
		{Name: "Devi", ResearchInterests: "AI"},
	})
	require.NoError(t, err)
	return corpus
}

func names(records []core.FacultyRecord) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.Name
	}
	return out
}

func TestNewRetriever(t *testing.T) {
	_, err := NewRetriever(&fakeIndex{}, nil)
	assert.ErrorIs(t, err, ErrCorpusRequired)

	_, err = NewRetriever(&fakeIndex{}, testCorpus(t), WithTimeout(-time.Second))
	assert.ErrorIs(t, err, ErrInvalidTimeout)

	r, err := NewRetriever(nil, testCorpus(t), WithLogger(nil))
	require.NoError(t, err)
	assert.NotNil(t, r.logger)
}

func TestRetrieve_OrdersByTagRankThenCorpusOrder(t *testing.T) {
	idx := &fakeIndex{
		count: 3,
		texts: []string{`"2 Vision"`, "0 AI", "1 Robotics"},
	}
	r, err := NewRetriever(idx, testCorpus(t))
	require.NoError(t, err)

	got := r.Retrieve(context.Background(), "vision", 2)
	assert.Equal(t, []string{"Chen", "Asha", "Devi"}, names(got))
}

func TestRetrieve_SkipsBadDocuments(t *testing.T) {
	idx := &fakeIndex{
		count: 3,
		texts: []string{"", "abc Vision", "-1 AI", "7 Unknown", "1 Robotics", "1 Robotics", "0 AI"},
	}
	r, err := NewRetriever(idx, testCorpus(t))
	require.NoError(t, err)

	got := r.Retrieve(context.Background(), "robots", 5)
	assert.Equal(t, []string{"Bala", "Asha", "Devi"}, names(got))
}

func TestRetrieve_CapsDistinctTags(t *testing.T) {
	idx := &fakeIndex{count: 3, texts: []string{"0 AI", "1 Robotics", "2 Vision"}}
	r, err := NewRetriever(idx, testCorpus(t))
	require.NoError(t, err)

	got := r.Retrieve(context.Background(), "anything", 1)
	assert.Equal(t, []string{"Asha", "Devi"}, names(got))

	// K far beyond the corpus returns every tag without sizing anything by K
	idx = &fakeIndex{count: 3, texts: []string{"0 AI", "1 Robotics"}}
	r, err = NewRetriever(idx, testCorpus(t))
	require.NoError(t, err)
	require.NotPanics(t, func() {
		got = r.Retrieve(context.Background(), "ai", 1<<46)
	})
	assert.Equal(t, []string{"Asha", "Devi", "Bala"}, names(got))
	assert.Equal(t, 3, idx.lastK)
}

func TestRetrieve_OverFetch(t *testing.T) {
	tests := []struct {
		name  string
		count int
		topK  int
		wantK int
	}{
		{"bounded by count", 3, 1, 3},
		{"ten per tag", 100, 2, 20},
		{"exact", 10, 1, 10},
		{"huge topK", 50, math.MaxInt / 2, 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			idx := &fakeIndex{count: tt.count}
			r, err := NewRetriever(idx, testCorpus(t))
			require.NoError(t, err)

			r.Retrieve(context.Background(), "q", tt.topK)
			assert.Equal(t, tt.wantK, idx.lastK)
		})
	}
}

func TestRetrieve_SoftFailures(t *testing.T) {
	ctx := context.Background()
	corpus := testCorpus(t)

	t.Run("non-positive topK", func(t *testing.T) {
		idx := &fakeIndex{count: 3, texts: []string{"0 AI"}}
		r, err := NewRetriever(idx, corpus)
		require.NoError(t, err)

		got := r.Retrieve(ctx, "AI", 0)
		assert.NotNil(t, got)
		assert.Empty(t, got)
		assert.Zero(t, idx.calls)
	})

	t.Run("nil index", func(t *testing.T) {
		r, err := NewRetriever(nil, corpus)
		require.NoError(t, err)
		assert.Empty(t, r.Retrieve(ctx, "AI", 3))
	})

	t.Run("empty index", func(t *testing.T) {
		r, err := NewRetriever(&fakeIndex{}, corpus)
		require.NoError(t, err)
		assert.Empty(t, r.Retrieve(ctx, "AI", 3))
	})

	t.Run("search error", func(t *testing.T) {
		r, err := NewRetriever(&fakeIndex{count: 3, err: errors.New("embedding backend down")}, corpus)
		require.NoError(t, err)
		got := r.Retrieve(ctx, "AI", 3)
		assert.NotNil(t, got)
		assert.Empty(t, got)
	})
}

func TestRetrieve_Timeout(t *testing.T) {
	idx := &fakeIndex{count: 1, texts: []string{"0 AI"}}

	r, err := NewRetriever(idx, testCorpus(t))
	require.NoError(t, err)
	r.Retrieve(context.Background(), "AI", 1)
	assert.False(t, idx.hadDeadline)

	r, err = NewRetriever(idx, testCorpus(t), WithTimeout(time.Second))
	require.NoError(t, err)
	r.Retrieve(context.Background(), "AI", 1)
	assert.True(t, idx.hadDeadline)
}

func TestRetrieve_ReturnsCopies(t *testing.T) {
	corpus := testCorpus(t)
	r, err := NewRetriever(&fakeIndex{count: 3, texts: []string{"0 AI"}}, corpus)
	require.NoError(t, err)

	got := r.Retrieve(context.Background(), "AI", 1)
	require.NotEmpty(t, got)
	got[0].Name = "changed"

	again := r.Retrieve(context.Background(), "AI", 1)
	assert.Equal(t, "Asha", again[0].Name)
}

type recordingMonitor struct {
	started  string
	searched []string
	skipped  map[string]string
	tags     []core.Tag
	finished []core.FacultyRecord
}

func (m *recordingMonitor) Start(query string, topK int)    { m.started = query }
func (m *recordingMonitor) AfterIndexSearch(texts []string) { m.searched = texts }
func (m *recordingMonitor) SkippedDocument(text string, reason string) {
	if m.skipped == nil {
		m.skipped = make(map[string]string)
	}
	m.skipped[text] = reason
}
func (m *recordingMonitor) AfterTagSelection(tags []core.Tag)    { m.tags = tags }
func (m *recordingMonitor) Finish(records []core.FacultyRecord) { m.finished = records }

func TestRetrieveWithMonitor(t *testing.T) {
	idx := &fakeIndex{count: 3, texts: []string{"x AI", "9 Unknown", "2 Vision", "2 Vision"}}
	r, err := NewRetriever(idx, testCorpus(t))
	require.NoError(t, err)

	monitor := &recordingMonitor{}
	got := r.RetrieveWithMonitor(context.Background(), "vision", 3, monitor)

	assert.Equal(t, "vision", monitor.started)
	assert.Len(t, monitor.searched, 4)
	assert.Equal(t, []core.Tag{2}, monitor.tags)
	assert.Equal(t, SkipUnparseable, monitor.skipped["x AI"])
	assert.Equal(t, SkipUnknownTag, monitor.skipped["9 Unknown"])
	assert.Equal(t, SkipDuplicate, monitor.skipped["2 Vision"])
	assert.Equal(t, got, monitor.finished)
}

func TestRetrieve_EndToEndWithTFIDF(t *testing.T) {
	ctx := context.Background()
	records := ingestion.NormalizeAndDedupe(map[string][]map[string]any{
		"iit_a": {
			{"name": "Dr. X", "email": "x@a.edu", "research_interests": "AI, Robotics", "department": "CSE"},
			{"name": "Silent One", "department": "ME"},
		},
		"iit_b": {
			{"name": "Prof. X", "email": "x@a.edu", "research_interests": "Vision", "department": "CSE"},
			{"name": "Grid Person", "research_interests": "Power Systems, Smart Grids", "department": "EE"},
			{"name": "Silent Two", "department": "CE"},
		},
	})
	require.Len(t, records, 4)

	corpus, err := ingestion.AssignTags(records)
	require.NoError(t, err)

	indexRepo, outreachRepo, backend, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	defer func() {
		outreachRepo.Close()
		indexRepo.Close()
		backend.Close()
	}()

	idx, err := index.Open(ctx, indexRepo, tfidf.NewEmbedder(), corpus)
	require.NoError(t, err)

	r, err := NewRetriever(idx, corpus)
	require.NoError(t, err)

	got := r.Retrieve(ctx, "robotics and vision", 1)
	require.Len(t, got, 1)
	assert.Equal(t, "AI, Robotics, Vision", got[0].ResearchInterests)

	// Records without interests share one tag and trail the matching group
	all := r.Retrieve(ctx, "smart grids", 3)
	require.Len(t, all, 4)
	assert.Equal(t, "Grid Person", all[0].Name)
	assert.Equal(t, []string{"Silent One", "Silent Two"}, names(all[2:]))
}
