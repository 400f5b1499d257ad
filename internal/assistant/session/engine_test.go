package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smartshopper/internal/assistant/intent"
	"smartshopper/internal/assistant/planner"
	"smartshopper/internal/catalog"
	"smartshopper/internal/common/logger"
	"smartshopper/internal/models"
)

// fakeQuerier backs tests with canned results and remembers the intent it was
// last queried with.
type fakeQuerier struct {
	mu         sync.Mutex
	result     *catalog.Result
	err        error
	lastIntent intent.Intent
	calls      int
}

func (f *fakeQuerier) Query(ctx context.Context, it intent.Intent) (*catalog.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastIntent = it
	f.calls++
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

type fakeRecorder struct {
	mu       sync.Mutex
	recorded []*models.Interaction
	err      error
	done     chan struct{}
}

func newFakeRecorder() *fakeRecorder {
	return &fakeRecorder{done: make(chan struct{}, 16)}
}

func (f *fakeRecorder) Record(ctx context.Context, in *models.Interaction) error {
	f.mu.Lock()
	f.recorded = append(f.recorded, in)
	err := f.err
	f.mu.Unlock()
	f.done <- struct{}{}
	return err
}

func (f *fakeRecorder) waitForRecord(t *testing.T) *models.Interaction {
	t.Helper()
	select {
	case <-f.done:
	case <-time.After(2 * time.Second):
		t.Fatal("interaction was never recorded")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.recorded[len(f.recorded)-1]
}

func newTestEngine(q catalog.Querier, rec *fakeRecorder) *Engine {
	pl := planner.New(planner.DefaultQuestions())
	if rec == nil {
		return NewEngine(nil, mustExtractor(), pl, q, nil, nil, logger.NewNoOpLogger())
	}
	return NewEngine(nil, mustExtractor(), pl, q, rec, nil, logger.NewNoOpLogger())
}

func mustExtractor() *intent.Extractor {
	ex, err := intent.NewExtractor(intent.DefaultVocabulary())
	if err != nil {
		panic(err)
	}
	return ex
}

func shoesResult() *catalog.Result {
	return &catalog.Result{
		Products: []models.Product{
			{ID: "1", Name: "Running Shoes", Category: "shoes", Price: 89.99},
			{ID: "2", Name: "Trail Shoes", Category: "shoes", Price: 79.99},
		},
		AvailableAttributes: catalog.NewAttributeSet(catalog.AttrColor, catalog.AttrSize),
	}
}

func TestEngine_NewSession(t *testing.T) {
	e := newTestEngine(&fakeQuerier{result: shoesResult()}, nil)

	sess := e.NewSession()

	assert.NotEmpty(t, sess.ID)
	assert.True(t, sess.Intent.IsEmpty())
	require.Len(t, sess.Utterances, 1)
	assert.Equal(t, models.RoleAgent, sess.Utterances[0].Role)
	assert.Equal(t, "Hi! What are you looking for today?", sess.Utterances[0].Text)

	other := e.NewSession()
	assert.NotEqual(t, sess.ID, other.ID)
}

func TestEngine_HandleTurn_AccumulatesIntentAcrossTurns(t *testing.T) {
	q := &fakeQuerier{result: shoesResult()}
	e := newTestEngine(q, nil)
	sess := e.NewSession()

	sess, res, err := e.HandleTurn(context.Background(), sess, "blue shoes please")
	require.NoError(t, err)
	assert.Equal(t, intent.Intent{Category: "shoes", Color: "blue"}, sess.Intent)
	assert.Equal(t, planner.DefaultQuestions().Size, res.Reply)

	sess, res, err = e.HandleTurn(context.Background(), sess, "size M")
	require.NoError(t, err)
	assert.Equal(t, intent.Intent{Category: "shoes", Color: "blue", Size: "M"}, sess.Intent)
	assert.Equal(t, planner.DefaultQuestions().PriceMax, res.Reply)

	// The catalog saw the merged intent, not just the last utterance's.
	assert.Equal(t, intent.Intent{Category: "shoes", Color: "blue", Size: "M"}, q.lastIntent)
}

func TestEngine_HandleTurn_PresentsResults(t *testing.T) {
	q := &fakeQuerier{result: &catalog.Result{
		Products:            shoesResult().Products,
		AvailableAttributes: catalog.NewAttributeSet(),
	}}
	e := newTestEngine(q, nil)
	sess := e.NewSession()

	sess, res, err := e.HandleTurn(context.Background(), sess, "blue shoes size M under $100")
	require.NoError(t, err)

	assert.Equal(t, "Great! Here are some options for you.", res.Reply)
	assert.Len(t, res.Products, 2)
	assert.Empty(t, res.FollowUp)
	assert.Equal(t, intent.Intent{Category: "shoes", Color: "blue", Size: "M", PriceMax: 100}, res.Intent)
}

func TestEngine_HandleTurn_ContradictionLastWins(t *testing.T) {
	q := &fakeQuerier{result: shoesResult()}
	e := newTestEngine(q, nil)
	sess := e.NewSession()

	sess, _, err := e.HandleTurn(context.Background(), sess, "a red jacket")
	require.NoError(t, err)
	sess, _, err = e.HandleTurn(context.Background(), sess, "actually make it blue")
	require.NoError(t, err)

	assert.Equal(t, intent.Intent{Category: "jacket", Color: "blue"}, sess.Intent)
}

func TestEngine_HandleTurn_GarbageUtteranceReAsks(t *testing.T) {
	q := &fakeQuerier{result: shoesResult()}
	e := newTestEngine(q, nil)
	sess := e.NewSession()

	sess, res1, err := e.HandleTurn(context.Background(), sess, "shoes")
	require.NoError(t, err)
	before := sess.Intent

	sess, res2, err := e.HandleTurn(context.Background(), sess, "hmm, not sure")
	require.NoError(t, err)

	assert.Equal(t, before, sess.Intent)
	assert.Equal(t, res1.Reply, res2.Reply)
}

func TestEngine_HandleTurn_NoMatch(t *testing.T) {
	q := &fakeQuerier{result: &catalog.Result{AvailableAttributes: catalog.NewAttributeSet(catalog.AttrColor)}}
	e := newTestEngine(q, nil)
	sess := e.NewSession()

	sess, res, err := e.HandleTurn(context.Background(), sess, "a purple laptop")
	require.NoError(t, err)

	assert.Contains(t, res.Reply, "Sorry, I couldn't find any matching products.")
	assert.Empty(t, res.Products)
	// Intent still advanced: an empty result is a real answer.
	assert.Equal(t, intent.Intent{Category: "laptop", Color: "purple"}, sess.Intent)
}

func TestEngine_HandleTurn_QueryFailureDegradesToNoMatch(t *testing.T) {
	q := &fakeQuerier{err: catalog.ErrQueryFailed}
	e := newTestEngine(q, nil)
	sess := e.NewSession()

	sess, res, err := e.HandleTurn(context.Background(), sess, "red shoes")
	require.NoError(t, err)

	assert.Contains(t, res.Reply, "Sorry, I couldn't find any matching products.")
	assert.Equal(t, intent.Intent{Category: "shoes", Color: "red"}, sess.Intent)
}

func TestEngine_HandleTurn_CancellationAbortsUnchanged(t *testing.T) {
	q := &fakeQuerier{result: shoesResult()}
	e := newTestEngine(q, nil)
	sess := e.NewSession()

	sess, _, err := e.HandleTurn(context.Background(), sess, "shoes")
	require.NoError(t, err)
	before := sess

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	after, res, err := e.HandleTurn(ctx, sess, "blue")
	assert.Error(t, err)
	assert.Nil(t, res)
	assert.Equal(t, before, after)
}

func TestEngine_HandleTurn_DoesNotMutateInputSession(t *testing.T) {
	q := &fakeQuerier{result: shoesResult()}
	e := newTestEngine(q, nil)
	sess := e.NewSession()
	historyLen := len(sess.Utterances)

	next, _, err := e.HandleTurn(context.Background(), sess, "shoes")
	require.NoError(t, err)

	assert.Len(t, sess.Utterances, historyLen)
	assert.True(t, sess.Intent.IsEmpty())
	assert.Len(t, next.Utterances, historyLen+2)
	assert.Equal(t, models.RoleUser, next.Utterances[historyLen].Role)
	assert.Equal(t, models.RoleAgent, next.Utterances[historyLen+1].Role)
}

func TestEngine_HandleTurn_RecordsInteraction(t *testing.T) {
	rec := newFakeRecorder()
	e := newTestEngine(&fakeQuerier{result: shoesResult()}, rec)
	sess := e.NewSession()

	_, res, err := e.HandleTurn(context.Background(), sess, "blue shoes")
	require.NoError(t, err)

	in := rec.waitForRecord(t)
	assert.Equal(t, sess.ID, in.SessionID)
	assert.Equal(t, "blue shoes", in.Question)
	assert.Equal(t, res.Reply, in.Response)
	assert.Equal(t, intent.Intent{Category: "shoes", Color: "blue"}, in.Intent)
	assert.NotEmpty(t, in.ID)
}

func TestEngine_HandleTurn_RecorderFailureIsHarmless(t *testing.T) {
	rec := newFakeRecorder()
	rec.err = errors.New("db down")
	e := newTestEngine(&fakeQuerier{result: shoesResult()}, rec)
	sess := e.NewSession()

	_, res, err := e.HandleTurn(context.Background(), sess, "blue shoes")
	require.NoError(t, err)
	require.NotNil(t, res)

	rec.waitForRecord(t)
}

func TestEngine_ParallelSessionsAreIndependent(t *testing.T) {
	q := &fakeQuerier{result: shoesResult()}
	e := newTestEngine(q, nil)

	a := e.NewSession()
	b := e.NewSession()

	a, _, err := e.HandleTurn(context.Background(), a, "red shoes")
	require.NoError(t, err)
	b, _, err = e.HandleTurn(context.Background(), b, "a black jacket")
	require.NoError(t, err)

	assert.Equal(t, intent.Intent{Category: "shoes", Color: "red"}, a.Intent)
	assert.Equal(t, intent.Intent{Category: "jacket", Color: "black"}, b.Intent)
}
