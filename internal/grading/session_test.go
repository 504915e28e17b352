package grading

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	updates []RecipeUpdate
	failErr error
}

func (s *fakeStore) UpdateRecord(_ context.Context, _ uint, update RecipeUpdate) error {
	if s.failErr != nil {
		return s.failErr
	}
	s.updates = append(s.updates, update)
	return nil
}

type fakeRenderer struct {
	failErr error
	calls   int
}

func (r *fakeRenderer) Render(record *AdjustmentRecord, _ ExportFlags) (string, error) {
	r.calls++
	if r.failErr != nil {
		return "", r.failErr
	}
	return fmt.Sprintf("preset(masks=%d)", len(record.Masks)), nil
}

func newTestSession(snap RecipeSnapshot, store Store, renderer Renderer) *EditSession {
	return NewEditSession(snap, newTestPipeline(), store, renderer)
}

func skySnapshot() RecipeSnapshot {
	return RecipeSnapshot{
		ID:   42,
		Name: "Golden Hour",
		Base: &AdjustmentRecord{
			Contrast: fptr(10),
			Masks:    []Mask{{Name: "Sky", Type: MaskSky, Adjustments: MaskAdjustments{Exposure: fptr(0)}}},
		},
	}
}

func TestEditSession_ProposeOverwritesPriorBundle(t *testing.T) {
	s := newTestSession(skySnapshot(), &fakeStore{}, &fakeRenderer{})

	require.NoError(t, s.Propose(&PendingModification{
		StylePatch: &StyleOverride{Contrast: fptr(20)},
	}))
	require.NoError(t, s.Propose(&PendingModification{
		StylePatch: &StyleOverride{Contrast: fptr(35)},
	}))

	assert.Equal(t, StateProposed, s.State())
	eff := s.Effective()
	assert.Equal(t, 35.0, *eff.Contrast, "a new proposal replaces, never stacks")
}

func TestEditSession_ProposeNil(t *testing.T) {
	s := newTestSession(skySnapshot(), &fakeStore{}, &fakeRenderer{})
	assert.ErrorIs(t, s.Propose(nil), ErrNilProposal)
}

func TestEditSession_PreviewIsAcceptedPlusProposal(t *testing.T) {
	s := newTestSession(skySnapshot(), &fakeStore{}, &fakeRenderer{})

	require.NoError(t, s.Propose(&PendingModification{
		MaskOps: []MaskOverrideOp{
			{Op: OpUpdate, Mask: Mask{Name: "Sky", Adjustments: MaskAdjustments{Exposure: fptr(-0.3)}}},
		},
	}))

	eff := s.Effective()
	require.Len(t, eff.Masks, 1)
	assert.Equal(t, -0.3, *eff.Masks[0].Adjustments.Exposure)
}

func TestEditSession_RejectRevertsPreview(t *testing.T) {
	store := &fakeStore{}
	s := newTestSession(skySnapshot(), store, &fakeRenderer{})

	before := s.Effective()

	require.NoError(t, s.Propose(&PendingModification{
		GlobalPatch: &AdjustmentRecord{Exposure: fptr(1.5)},
		MaskOps:     []MaskOverrideOp{{Op: OpRemoveAll}},
	}))
	s.Reject()

	assert.Equal(t, StateIdle, s.State())
	assert.False(t, s.HasPending())
	assert.Equal(t, before, s.Effective(), "effective record reverts to its pre-propose value")
	assert.Empty(t, store.updates, "persisted tiers are untouched")
}

func TestEditSession_AcceptCommitsAtomically(t *testing.T) {
	store := &fakeStore{}
	s := newTestSession(skySnapshot(), store, &fakeRenderer{})

	require.NoError(t, s.Propose(&PendingModification{
		StylePatch:  &StyleOverride{Vibrance: fptr(18)},
		GlobalPatch: &AdjustmentRecord{Temperature: fptr(-5)},
		MaskOps: []MaskOverrideOp{
			{Op: OpUpdate, Mask: Mask{Name: "Sky", Adjustments: MaskAdjustments{Exposure: fptr(0.4)}}},
		},
		TextPatch: TextPatch{Name: sptr("Golden Hour II"), Description: sptr("warmer skies")},
	}))
	require.NoError(t, s.Accept(context.Background()))

	assert.Equal(t, StateIdle, s.State())
	assert.False(t, s.HasPending())

	require.Len(t, store.updates, 1, "one atomic persistence write")
	update := store.updates[0]
	assert.Equal(t, "Golden Hour II", *update.Name)
	assert.Equal(t, "warmer skies", *update.Description)
	assert.Equal(t, 18.0, *update.StyleOverride.Vibrance)
	assert.Equal(t, -5.0, *update.GlobalOverride.Temperature)
	require.Len(t, update.MaskOverrides, 1)
	require.NotNil(t, update.PresetText)
	assert.Equal(t, "preset(masks=1)", *update.PresetText)

	// Post-accept the effective record comes from persisted tiers alone.
	eff := s.Effective()
	assert.Equal(t, 18.0, *eff.Vibrance)
	assert.Equal(t, -5.0, *eff.Temperature)
	require.Len(t, eff.Masks, 1)
	assert.Equal(t, 0.4, *eff.Masks[0].Adjustments.Exposure)
}

func TestEditSession_MaskOpsAccumulateAcrossAcceptCycles(t *testing.T) {
	store := &fakeStore{}
	s := newTestSession(skySnapshot(), store, &fakeRenderer{})

	require.NoError(t, s.Propose(&PendingModification{
		MaskOps: []MaskOverrideOp{{Op: OpAdd, Mask: Mask{Name: "Water", Type: MaskWater}}},
	}))
	require.NoError(t, s.Accept(context.Background()))

	require.NoError(t, s.Propose(&PendingModification{
		MaskOps: []MaskOverrideOp{{Op: OpAdd, Mask: Mask{Name: "Hills", Type: MaskMountains}}},
	}))
	require.NoError(t, s.Accept(context.Background()))

	require.Len(t, store.updates, 2)
	assert.Len(t, store.updates[0].MaskOverrides, 1)
	assert.Len(t, store.updates[1].MaskOverrides, 2, "accepted tier appends, never replaces")
	assert.Len(t, s.Effective().Masks, 3)
}

func TestEditSession_AcceptPersistenceFailureKeepsPending(t *testing.T) {
	store := &fakeStore{failErr: errors.New("connection reset")}
	s := newTestSession(skySnapshot(), store, &fakeRenderer{})

	require.NoError(t, s.Propose(&PendingModification{
		StylePatch: &StyleOverride{Contrast: fptr(50)},
	}))

	err := s.Accept(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection reset")

	assert.True(t, s.HasPending(), "pending modification survives for retry")
	assert.Equal(t, StateProposed, s.State())
	assert.Equal(t, 50.0, *s.Effective().Contrast, "preview is not rolled back")

	// Retry succeeds once the store recovers.
	store.failErr = nil
	require.NoError(t, s.Accept(context.Background()))
	assert.False(t, s.HasPending())
}

func TestEditSession_AcceptExportFailureKeepsPending(t *testing.T) {
	renderer := &fakeRenderer{failErr: errors.New("template exploded")}
	store := &fakeStore{}
	s := newTestSession(skySnapshot(), store, renderer)

	require.NoError(t, s.Propose(&PendingModification{
		StylePatch: &StyleOverride{Contrast: fptr(50)},
	}))

	err := s.Accept(context.Background())
	require.Error(t, err)
	assert.True(t, s.HasPending())
	assert.Empty(t, store.updates, "nothing persisted when render fails")
}

func TestEditSession_AcceptWithoutProposal(t *testing.T) {
	s := newTestSession(skySnapshot(), &fakeStore{}, &fakeRenderer{})
	assert.ErrorIs(t, s.Accept(context.Background()), ErrNothingPending)
}

func TestEditSession_ProposeDuringAcceptIsRefused(t *testing.T) {
	store := &fakeStore{}
	s := newTestSession(skySnapshot(), store, &fakeRenderer{})
	require.NoError(t, s.Propose(&PendingModification{}))

	// Simulate the in-flight window of Accept.
	s.state = StateAccepting
	err := s.Propose(&PendingModification{})
	assert.ErrorIs(t, err, ErrAcceptInFlight)
}

// blockingStore parks UpdateRecord until released, holding the session
// in the accepting state.
type blockingStore struct {
	fakeStore
	entered chan struct{}
	release chan struct{}
}

func (s *blockingStore) UpdateRecord(ctx context.Context, recipeID uint, update RecipeUpdate) error {
	close(s.entered)
	<-s.release
	return s.fakeStore.UpdateRecord(ctx, recipeID, update)
}

func TestEditSession_ConcurrentProposeDuringCommitIsRefused(t *testing.T) {
	store := &blockingStore{entered: make(chan struct{}), release: make(chan struct{})}
	s := newTestSession(skySnapshot(), store, &fakeRenderer{})

	require.NoError(t, s.Propose(&PendingModification{
		StylePatch: &StyleOverride{Contrast: fptr(20)},
	}))

	acceptDone := make(chan error, 1)
	go func() { acceptDone <- s.Accept(context.Background()) }()
	<-store.entered

	// A proposal racing the in-flight commit is refused, not queued, so
	// it cannot land in the tiers the commit is writing.
	err := s.Propose(&PendingModification{
		StylePatch: &StyleOverride{Contrast: fptr(99)},
	})
	assert.ErrorIs(t, err, ErrAcceptInFlight)
	assert.NotNil(t, s.Effective(), "previews stay readable mid-commit")

	close(store.release)
	require.NoError(t, <-acceptDone)

	assert.Equal(t, StateIdle, s.State())
	assert.False(t, s.HasPending())
	assert.Equal(t, 20.0, *s.Effective().Contrast, "the refused proposal left no trace")
	require.Len(t, store.updates, 1)
	assert.Equal(t, 20.0, *store.updates[0].StyleOverride.Contrast)
}

func TestEditSession_ParallelLifecycleCalls(t *testing.T) {
	s := newTestSession(skySnapshot(), &fakeStore{}, &fakeRenderer{})

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				_ = s.Propose(&PendingModification{
					StylePatch: &StyleOverride{Contrast: fptr(float64(i))},
				})
				_ = s.Effective()
				_ = s.Accept(context.Background())
				s.Reject()
			}
		}()
	}
	wg.Wait()

	assert.Contains(t, []SessionState{StateIdle, StateProposed}, s.State())
	assert.NotNil(t, s.Effective())
}

func TestEditSession_ProposeNormalizesBundle(t *testing.T) {
	s := newTestSession(skySnapshot(), &fakeStore{}, &fakeRenderer{})

	bundle := &PendingModification{
		MaskOps: []MaskOverrideOp{
			{Op: " Update ", Mask: Mask{Name: "Sky", Adjustments: MaskAdjustments{Exposure: fptr(3.0)}}},
		},
	}
	require.NoError(t, s.Propose(bundle))

	assert.Equal(t, OpUpdate, bundle.MaskOps[0].Op)
	assert.Equal(t, 1.0, *bundle.MaskOps[0].Adjustments.Exposure, "local adjustments clamp to [-1,1]")
}
