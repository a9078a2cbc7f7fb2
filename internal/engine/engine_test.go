package engine

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/bakelab/levain/internal/domain"
	"github.com/bakelab/levain/internal/logger"
	"github.com/bakelab/levain/internal/snapshot"
)

type stubRecipes struct {
	recipe *domain.Recipe
}

func (s stubRecipes) List(ctx context.Context) ([]domain.RecipeSummary, error) {
	return []domain.RecipeSummary{{ID: s.recipe.ID, Name: s.recipe.Name}}, nil
}

func (s stubRecipes) Get(ctx context.Context, id string) (*domain.Recipe, error) {
	if s.recipe != nil && id == s.recipe.ID {
		return s.recipe, nil
	}
	return nil, domain.ErrRecipeNotFound
}

type recordingNotifier struct {
	mu     sync.Mutex
	normal []string
	urgent []string
}

func (n *recordingNotifier) Notify(ctx context.Context, msg string) error {
	n.mu.Lock()
	n.normal = append(n.normal, msg)
	n.mu.Unlock()
	return nil
}

func (n *recordingNotifier) NotifyUrgent(ctx context.Context, msg string) error {
	n.mu.Lock()
	n.urgent = append(n.urgent, msg)
	n.mu.Unlock()
	return nil
}

func (n *recordingNotifier) urgentCount() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.urgent)
}

func testRecipe() *domain.Recipe {
	return &domain.Recipe{
		ID:   "test-loaf",
		Name: "Test Loaf",
		Ingredients: []domain.Ingredient{
			{ID: "bread-flour", Name: "Bread Flour", Unit: "g", DefaultAmount: 500},
			{ID: "water", Name: "Water", Unit: "g", DefaultAmount: 350},
			{ID: "salt", Name: "Salt", Unit: "g", DefaultAmount: 10},
		},
		Stages: []domain.Stage{
			{ID: "prep", Name: "Prep", IngredientInputs: []string{"bread-flour", "water"}},
			{ID: "autolyse", Name: "Autolyse", DurationMinutes: 45},
			{ID: "folds", Name: "Folds", ColorGroup: "bulk", SubStages: []domain.Stage{
				{ID: "fold-1", Name: "Fold 1", DurationMinutes: 30, HelperTimerMinutes: 4, IngredientInputs: []string{"salt"}},
				{ID: "fold-2", Name: "Fold 2", DurationMinutes: 30},
			}},
			{ID: "bake", Name: "Bake", DurationMinutes: 45},
		},
	}
}

// newTestEngine builds an engine on a fake clock driven through *current.
// The hour-long tick interval keeps countdown goroutines inert so every
// assertion is deterministic.
func newTestEngine(t *testing.T, current *time.Time) (*Engine, *snapshot.MemoryStore, *recordingNotifier) {
	t.Helper()
	store := snapshot.NewMemoryStore()
	notif := &recordingNotifier{}
	e := New(stubRecipes{testRecipe()}, store, notif, logger.New(logger.LevelOff, nil),
		WithClock(func() time.Time { return *current }),
		WithTickInterval(time.Hour),
	)
	if _, err := e.SelectRecipe(context.Background(), "test-loaf"); err != nil {
		t.Fatalf("selecting recipe: %v", err)
	}
	return e, store, notif
}

// startReady starts a bake whose starter was fed exactly on target, so it
// lands directly on the first stage.
func startReady(t *testing.T, e *Engine, now time.Time) *State {
	t.Helper()
	st, err := e.StartBake(context.Background(), now.Add(-targetStarterWait), 1)
	if err != nil {
		t.Fatalf("starting bake: %v", err)
	}
	if st.Phase != PhaseStage {
		t.Fatalf("phase after start = %s, want stage", st.Phase)
	}
	return st
}

func TestStartBakeStarterTolerance(t *testing.T) {
	base := time.Date(2025, 6, 7, 8, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		fedBefore time.Duration
		wantPhase Phase
		wantExtra time.Duration
		wantWait  time.Duration
	}{
		{"exactly on target", 2 * time.Hour, PhaseStage, 0, 0},
		{"one minute early", 2*time.Hour - time.Minute, PhaseStage, 0, 0},
		{"ten minutes late", 2*time.Hour + 10*time.Minute, PhaseStage, 0, 0},
		{"just past late tolerance", 2*time.Hour + 10*time.Minute + time.Second, PhaseStage, 10*time.Minute + time.Second, 0},
		{"an hour late", 3 * time.Hour, PhaseStage, time.Hour, 0},
		{"fed ten minutes ago", 10 * time.Minute, PhaseStarterWait, 0, time.Hour + 50*time.Minute},
		{"just under early tolerance", 2*time.Hour - time.Minute - time.Second, PhaseStarterWait, 0, time.Minute + time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			current := base
			e, _, _ := newTestEngine(t, &current)

			st, err := e.StartBake(context.Background(), current.Add(-tt.fedBefore), 1)
			if err != nil {
				t.Fatalf("StartBake: %v", err)
			}
			if st.Phase != tt.wantPhase {
				t.Fatalf("phase = %s, want %s", st.Phase, tt.wantPhase)
			}
			if st.StarterExtraTime != tt.wantExtra {
				t.Fatalf("extra time = %v, want %v", st.StarterExtraTime, tt.wantExtra)
			}
			if tt.wantPhase == PhaseStarterWait && st.StarterRemaining != tt.wantWait {
				t.Fatalf("starter remaining = %v, want %v", st.StarterRemaining, tt.wantWait)
			}
		})
	}
}

func TestStarterWaitIsNeverLogged(t *testing.T) {
	current := time.Date(2025, 6, 7, 8, 0, 0, 0, time.UTC)
	e, _, _ := newTestEngine(t, &current)

	st, err := e.StartBake(context.Background(), current.Add(-10*time.Minute), 1)
	if err != nil {
		t.Fatalf("StartBake: %v", err)
	}
	if st.Phase != PhaseStarterWait {
		t.Fatalf("phase = %s, want starter-wait", st.Phase)
	}

	// Proceed early, before the wait elapses.
	current = current.Add(30 * time.Minute)
	st, err = e.StarterReady(context.Background())
	if err != nil {
		t.Fatalf("StarterReady: %v", err)
	}
	if st.Phase != PhaseStage {
		t.Fatalf("phase = %s, want stage", st.Phase)
	}
	if st.Cursor != 0 {
		t.Fatalf("cursor = %d, want 0", st.Cursor)
	}
	if n := len(e.BakeLog().Stages); n != 0 {
		t.Fatalf("stage records = %d, want 0 (the wait is not a stage)", n)
	}
}

func TestStarterReadyOutsideWaitRejected(t *testing.T) {
	current := time.Date(2025, 6, 7, 8, 0, 0, 0, time.UTC)
	e, _, _ := newTestEngine(t, &current)
	startReady(t, e, current)

	if _, err := e.StarterReady(context.Background()); !errors.Is(err, domain.ErrInvalidNavigation) {
		t.Fatalf("err = %v, want ErrInvalidNavigation", err)
	}
}

func TestCompleteInstantStageAdvancesSynchronously(t *testing.T) {
	current := time.Date(2025, 6, 7, 8, 0, 0, 0, time.UTC)
	e, _, _ := newTestEngine(t, &current)
	startReady(t, e, current)

	st, err := e.CompleteStage(context.Background(), map[string]int{"bread-flour": 480})
	if err != nil {
		t.Fatalf("CompleteStage: %v", err)
	}
	if st.Cursor != 1 {
		t.Fatalf("cursor = %d, want 1", st.Cursor)
	}
	if st.Phase != PhaseStage {
		t.Fatalf("phase = %s, want stage (no timer for zero duration)", st.Phase)
	}

	log := e.BakeLog()
	rec := log.LastStage()
	if rec == nil || rec.Open() {
		t.Fatal("expected a closed stage record")
	}
	if *rec.Duration != 0 {
		t.Fatalf("duration = %v, want 0", *rec.Duration)
	}
	if rec.TimerDifference != nil {
		t.Fatal("instant stage must not log a timer difference")
	}

	flour := log.Ingredients["bread-flour"]
	if flour.Amount != 480 || flour.IsDefault {
		t.Fatalf("bread-flour = %+v, want amount 480 user-entered", flour)
	}
	water := log.Ingredients["water"]
	if water.Amount != 350 || !water.IsDefault {
		t.Fatalf("water = %+v, want scaled default 350", water)
	}
}

func TestIngredientScalingWithMultiplier(t *testing.T) {
	current := time.Date(2025, 6, 7, 8, 0, 0, 0, time.UTC)
	e, _, _ := newTestEngine(t, &current)

	if _, err := e.StartBake(context.Background(), current.Add(-targetStarterWait), 1.5); err != nil {
		t.Fatalf("StartBake: %v", err)
	}
	if _, err := e.CompleteStage(context.Background(), nil); err != nil {
		t.Fatalf("CompleteStage: %v", err)
	}

	water := e.BakeLog().Ingredients["water"]
	if water.Amount != 525 || water.DefaultAmount != 525 {
		t.Fatalf("water = %+v, want 525 (350 x 1.5)", water)
	}
}

func TestCompleteStageStartsTimer(t *testing.T) {
	current := time.Date(2025, 6, 7, 8, 0, 0, 0, time.UTC)
	e, store, _ := newTestEngine(t, &current)
	startReady(t, e, current)

	mustComplete(t, e, nil) // prep, instant

	st, err := e.CompleteStage(context.Background(), nil) // autolyse, 45m
	if err != nil {
		t.Fatalf("CompleteStage: %v", err)
	}
	if st.Phase != PhaseStageTimer {
		t.Fatalf("phase = %s, want stage-timer", st.Phase)
	}
	if st.TimerRemaining != 45*time.Minute {
		t.Fatalf("remaining = %v, want 45m", st.TimerRemaining)
	}

	// Double completion while the timer runs is rejected.
	if _, err := e.CompleteStage(context.Background(), nil); !errors.Is(err, domain.ErrInvalidNavigation) {
		t.Fatalf("err = %v, want ErrInvalidNavigation", err)
	}

	snap, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("loading snapshot: %v", err)
	}
	wantDeadline := current.Add(45 * time.Minute)
	if snap.TimerDeadline == nil || !snap.TimerDeadline.Equal(wantDeadline) {
		t.Fatalf("persisted deadline = %v, want %v", snap.TimerDeadline, wantDeadline)
	}
	if snap.TimerDuration != 45*time.Minute {
		t.Fatalf("persisted duration = %v, want 45m", snap.TimerDuration)
	}
}

func TestTimerDifferenceSignedUnclamped(t *testing.T) {
	tests := []struct {
		name     string
		ackAfter time.Duration
		want     time.Duration
	}{
		{"one minute early", 44 * time.Minute, -time.Minute},
		{"one millisecond early", 45*time.Minute - time.Millisecond, -time.Millisecond},
		{"exactly on time", 45 * time.Minute, 0},
		{"one millisecond late", 45*time.Minute + time.Millisecond, time.Millisecond},
		{"an hour late", 105 * time.Minute, time.Hour},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			current := time.Date(2025, 6, 7, 8, 0, 0, 0, time.UTC)
			e, _, _ := newTestEngine(t, &current)
			startReady(t, e, current)
			mustComplete(t, e, nil) // prep
			mustComplete(t, e, nil) // autolyse, 45m timer

			current = current.Add(tt.ackAfter)
			st, err := e.Advance(context.Background())
			if err != nil {
				t.Fatalf("Advance: %v", err)
			}
			if st.Cursor != 2 {
				t.Fatalf("cursor = %d, want 2", st.Cursor)
			}

			rec := e.BakeLog().StageByID("autolyse")
			if rec.TimerDifference == nil {
				t.Fatal("timer difference not recorded")
			}
			if *rec.TimerDifference != tt.want {
				t.Fatalf("timer difference = %v, want %v", *rec.TimerDifference, tt.want)
			}
			if *rec.Duration != tt.ackAfter {
				t.Fatalf("duration = %v, want %v", *rec.Duration, tt.ackAfter)
			}
		})
	}
}

func TestSkipStageRunsTimerAndKeepsDefaults(t *testing.T) {
	current := time.Date(2025, 6, 7, 8, 0, 0, 0, time.UTC)
	e, _, _ := newTestEngine(t, &current)
	startReady(t, e, current)
	mustComplete(t, e, nil) // prep
	mustComplete(t, e, nil) // autolyse
	current = current.Add(45 * time.Minute)
	mustAdvance(t, e) // cursor 2: fold-1

	st, err := e.SkipStage(context.Background())
	if err != nil {
		t.Fatalf("SkipStage: %v", err)
	}
	if st.Phase != PhaseStageTimer {
		t.Fatalf("phase = %s, want stage-timer (skipping does not skip the rest)", st.Phase)
	}

	rec := e.BakeLog().StageByID("fold-1")
	if rec == nil || !rec.Skipped {
		t.Fatal("expected a skipped record for fold-1")
	}
	salt := e.BakeLog().Ingredients["salt"]
	if salt.Amount != 10 || !salt.IsDefault {
		t.Fatalf("salt = %+v, want default 10", salt)
	}
}

func TestSkipNeverOverwritesRecordedIngredient(t *testing.T) {
	current := time.Date(2025, 6, 7, 8, 0, 0, 0, time.UTC)
	e, _, _ := newTestEngine(t, &current)
	startReady(t, e, current)
	mustComplete(t, e, map[string]int{"bread-flour": 480, "water": 340})

	// Jump over fold-1 whose input (salt) is unrecorded, after recording
	// water by hand: water must survive, salt gets its default.
	if _, err := e.JumpTo(context.Background(), 4, true); err != nil {
		t.Fatalf("JumpTo: %v", err)
	}

	log := e.BakeLog()
	if got := log.Ingredients["water"].Amount; got != 340 {
		t.Fatalf("water = %d, want the recorded 340", got)
	}
	if salt := log.Ingredients["salt"]; salt.Amount != 10 || !salt.IsDefault {
		t.Fatalf("salt = %+v, want default 10", salt)
	}
}

func TestJumpSynthesizesSkippedRecords(t *testing.T) {
	current := time.Date(2025, 6, 7, 8, 0, 0, 0, time.UTC)
	e, _, _ := newTestEngine(t, &current)
	startReady(t, e, current)

	if _, err := e.JumpTo(context.Background(), 3, false); !errors.Is(err, domain.ErrConfirmationRequired) {
		t.Fatalf("unconfirmed jump err = %v, want ErrConfirmationRequired", err)
	}
	if n := len(e.BakeLog().Stages); n != 0 {
		t.Fatalf("unconfirmed jump mutated the log: %d records", n)
	}

	st, err := e.JumpTo(context.Background(), 3, true)
	if err != nil {
		t.Fatalf("JumpTo: %v", err)
	}
	if st.Cursor != 3 {
		t.Fatalf("cursor = %d, want 3", st.Cursor)
	}

	log := e.BakeLog()
	if n := len(log.Stages); n != 3 {
		t.Fatalf("synthesized records = %d, want 3", n)
	}
	for _, rec := range log.Stages {
		if !rec.Skipped {
			t.Fatalf("record %s not marked skipped", rec.ID)
		}
		if rec.Open() || *rec.Duration != 0 {
			t.Fatalf("record %s: want closed with zero duration", rec.ID)
		}
	}
}

func TestJumpValidation(t *testing.T) {
	current := time.Date(2025, 6, 7, 8, 0, 0, 0, time.UTC)
	e, _, _ := newTestEngine(t, &current)
	startReady(t, e, current)
	if _, err := e.JumpTo(context.Background(), 2, true); err != nil {
		t.Fatalf("JumpTo: %v", err)
	}

	for _, target := range []int{0, 1, 2, 5, -1} {
		if _, err := e.JumpTo(context.Background(), target, true); !errors.Is(err, domain.ErrInvalidNavigation) {
			t.Fatalf("JumpTo(%d) err = %v, want ErrInvalidNavigation", target, err)
		}
	}
	if e.State().Cursor != 2 {
		t.Fatal("rejected jumps moved the cursor")
	}
}

func TestJumpStartsBakeImplicitly(t *testing.T) {
	current := time.Date(2025, 6, 7, 8, 0, 0, 0, time.UTC)
	e, _, _ := newTestEngine(t, &current)

	st, err := e.JumpTo(context.Background(), 2, true)
	if err != nil {
		t.Fatalf("JumpTo: %v", err)
	}
	if st.Phase != PhaseStage {
		t.Fatalf("phase = %s, want stage", st.Phase)
	}

	log := e.BakeLog()
	if !log.Started() {
		t.Fatal("implicit jump did not start the bake")
	}
	if n := len(log.Stages); n != 2 {
		t.Fatalf("records = %d, want 2", n)
	}
}

func TestJumpCancelsTimerSilently(t *testing.T) {
	current := time.Date(2025, 6, 7, 8, 0, 0, 0, time.UTC)
	e, store, notif := newTestEngine(t, &current)
	startReady(t, e, current)
	mustComplete(t, e, nil) // prep
	mustComplete(t, e, nil) // autolyse timer running

	current = current.Add(5 * time.Minute)
	if _, err := e.JumpTo(context.Background(), 3, true); err != nil {
		t.Fatalf("JumpTo: %v", err)
	}

	// The stage caught mid-timer closes as skipped with its real elapsed
	// time; fold-1 gets a synthesized zero-duration record.
	log := e.BakeLog()
	if n := len(log.Stages); n != 3 {
		t.Fatalf("records = %d, want 3", n)
	}
	auto := log.StageByID("autolyse")
	if !auto.Skipped || auto.Open() || *auto.Duration != 5*time.Minute {
		t.Fatalf("autolyse = %+v, want skipped, closed after 5m", auto)
	}
	fold := log.StageByID("fold-1")
	if !fold.Skipped || *fold.Duration != 0 {
		t.Fatalf("fold-1 = %+v, want synthesized zero-duration skip", fold)
	}

	snap, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("loading snapshot: %v", err)
	}
	if snap.TimerDeadline != nil {
		t.Fatal("cancelled timer deadline still persisted")
	}

	// Give a mistaken completion a moment to surface.
	time.Sleep(20 * time.Millisecond)
	if n := notif.urgentCount(); n != 0 {
		t.Fatalf("cancelled timer raised %d alert(s)", n)
	}
}

func TestBackwardNavigationIsNoOp(t *testing.T) {
	current := time.Date(2025, 6, 7, 8, 0, 0, 0, time.UTC)
	e, _, _ := newTestEngine(t, &current)
	startReady(t, e, current)

	if _, err := e.Advance(context.Background()); !errors.Is(err, domain.ErrInvalidNavigation) {
		t.Fatalf("Advance with nothing open: err = %v, want ErrInvalidNavigation", err)
	}
	if _, err := e.ViewStage(0); !errors.Is(err, domain.ErrInvalidNavigation) {
		t.Fatalf("viewing the cursor stage: err = %v, want ErrInvalidNavigation", err)
	}
	if e.State().Cursor != 0 {
		t.Fatal("no-op navigation moved the cursor")
	}
}

func TestViewStageIsNonMutating(t *testing.T) {
	current := time.Date(2025, 6, 7, 8, 0, 0, 0, time.UTC)
	e, _, _ := newTestEngine(t, &current)
	startReady(t, e, current)
	mustComplete(t, e, nil) // prep
	mustComplete(t, e, nil) // autolyse timer running

	before := len(e.BakeLog().Stages)

	st, err := e.ViewStage(0)
	if err != nil {
		t.Fatalf("ViewStage: %v", err)
	}
	if st.Viewing == nil || st.Viewing.Index != 0 {
		t.Fatalf("viewing = %+v, want index 0", st.Viewing)
	}
	if !st.Viewing.Completed {
		t.Fatal("prep should show as completed")
	}
	if st.Cursor != 1 {
		t.Fatalf("cursor = %d, want unchanged 1", st.Cursor)
	}
	if got := len(e.BakeLog().Stages); got != before {
		t.Fatalf("viewing mutated the log: %d -> %d records", before, got)
	}

	// Mutating operations are rejected while viewing.
	if _, err := e.CompleteStage(context.Background(), nil); !errors.Is(err, domain.ErrInvalidNavigation) {
		t.Fatalf("CompleteStage while viewing: err = %v, want ErrInvalidNavigation", err)
	}

	back := e.Back()
	if back.Phase != PhaseStageTimer {
		t.Fatalf("phase after back = %s, want stage-timer", back.Phase)
	}
	if back.TimerRemaining != 45*time.Minute {
		t.Fatalf("timer remaining = %v, want 45m untouched", back.TimerRemaining)
	}
}

func TestFinishClearsSnapshotAndSetsEndTime(t *testing.T) {
	current := time.Date(2025, 6, 7, 8, 0, 0, 0, time.UTC)
	e, store, _ := newTestEngine(t, &current)
	startReady(t, e, current)

	if _, err := e.JumpTo(context.Background(), 4, true); err != nil {
		t.Fatalf("JumpTo: %v", err)
	}
	mustComplete(t, e, nil) // bake, 45m timer
	current = current.Add(45 * time.Minute)

	st, err := e.Advance(context.Background())
	if err != nil {
		t.Fatalf("Advance: %v", err)
	}
	if st.Phase != PhaseComplete {
		t.Fatalf("phase = %s, want complete", st.Phase)
	}

	log := e.BakeLog()
	if !log.Finished() || !log.EndTime.Equal(current) {
		t.Fatalf("end time = %v, want %v", log.EndTime, current)
	}

	snap, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("loading snapshot: %v", err)
	}
	if snap != nil {
		t.Fatal("snapshot not cleared after finish")
	}

	// Everything after completion is rejected.
	if _, err := e.Advance(context.Background()); !errors.Is(err, domain.ErrBakeFinished) {
		t.Fatalf("err = %v, want ErrBakeFinished", err)
	}
}

func TestRestoreRoundTrip(t *testing.T) {
	current := time.Date(2025, 6, 7, 8, 0, 0, 0, time.UTC)
	e, store, _ := newTestEngine(t, &current)
	startReady(t, e, current)
	mustComplete(t, e, map[string]int{"bread-flour": 480})
	mustComplete(t, e, nil) // autolyse timer running

	// Ten minutes pass before the process comes back.
	current = current.Add(10 * time.Minute)

	e2, _ := newTestEngineWithStore(t, &current, store)
	st, restored, err := e2.Restore(context.Background())
	if err != nil {
		t.Fatalf("Restore: %v", err)
	}
	if !restored {
		t.Fatal("expected a restorable session")
	}
	if st.Phase != PhaseStageTimer {
		t.Fatalf("phase = %s, want stage-timer", st.Phase)
	}
	if st.Cursor != 1 {
		t.Fatalf("cursor = %d, want 1", st.Cursor)
	}
	if st.TimerRemaining != 35*time.Minute {
		t.Fatalf("remaining = %v, want 35m (45m deadline minus 10m away)", st.TimerRemaining)
	}

	log := e2.BakeLog()
	if got := log.Ingredients["bread-flour"].Amount; got != 480 {
		t.Fatalf("bread-flour = %d, want 480 preserved across restart", got)
	}
	if !log.Stages[0].StartTime.Equal(time.Date(2025, 6, 7, 8, 0, 0, 0, time.UTC)) {
		t.Fatalf("stage start time did not round-trip: %v", log.Stages[0].StartTime)
	}
}

func TestRestoreExpiredDeadlineReRaisesAlert(t *testing.T) {
	current := time.Date(2025, 6, 7, 8, 0, 0, 0, time.UTC)
	e, store, _ := newTestEngine(t, &current)
	startReady(t, e, current)
	mustComplete(t, e, nil) // prep
	mustComplete(t, e, nil) // autolyse, deadline now+45m

	// The process was away well past the deadline.
	current = current.Add(2 * time.Hour)

	e2, notif := newTestEngineWithStore(t, &current, store)
	st, restored, err := e2.Restore(context.Background())
	if err != nil {
		t.Fatalf("Restore: %v", err)
	}
	if !restored {
		t.Fatal("expected a restorable session")
	}
	if st.Phase != PhaseStageTimer || !st.TimerDone {
		t.Fatalf("state = %s done=%t, want stage-timer in completed state", st.Phase, st.TimerDone)
	}
	if st.TimerRemaining != 0 {
		t.Fatalf("remaining = %v, want 0", st.TimerRemaining)
	}

	waitForUrgent(t, notif)

	// Acknowledging after the late return logs the true overage.
	if _, err := e2.Advance(context.Background()); err != nil {
		t.Fatalf("Advance: %v", err)
	}
	rec := e2.BakeLog().StageByID("autolyse")
	if *rec.TimerDifference != 75*time.Minute {
		t.Fatalf("timer difference = %v, want 75m", *rec.TimerDifference)
	}
}

func TestRestoreCorruptSnapshotStartsFresh(t *testing.T) {
	current := time.Date(2025, 6, 7, 8, 0, 0, 0, time.UTC)
	e, store, _ := newTestEngine(t, &current)
	startReady(t, e, current)

	store.Corrupt()

	e2, _ := newTestEngineWithStore(t, &current, store)
	st, restored, err := e2.Restore(context.Background())
	if err != nil {
		t.Fatalf("Restore: %v", err)
	}
	if restored || st != nil {
		t.Fatal("corrupt snapshot must look like no session")
	}
}

func TestRestoreUnknownRecipeStartsFresh(t *testing.T) {
	current := time.Date(2025, 6, 7, 8, 0, 0, 0, time.UTC)
	store := snapshot.NewMemoryStore()

	start := current
	if err := store.Save(context.Background(), &domain.Snapshot{
		RecipeID:   "vanished",
		Multiplier: 1,
		BakeLog:    &domain.BakeLog{StartTime: &start, Ingredients: map[string]domain.IngredientRecord{}},
	}); err != nil {
		t.Fatalf("seeding snapshot: %v", err)
	}

	e, _ := newTestEngineWithStore(t, &current, store)
	_, restored, err := e.Restore(context.Background())
	if err != nil {
		t.Fatalf("Restore: %v", err)
	}
	if restored {
		t.Fatal("restored a bake for a recipe that no longer exists")
	}

	snap, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("loading snapshot: %v", err)
	}
	if snap != nil {
		t.Fatal("stale snapshot not cleared")
	}
}

func TestResetTearsEverythingDown(t *testing.T) {
	current := time.Date(2025, 6, 7, 8, 0, 0, 0, time.UTC)
	e, store, _ := newTestEngine(t, &current)
	startReady(t, e, current)
	mustComplete(t, e, nil)
	mustComplete(t, e, nil) // timer running

	st, err := e.Reset(context.Background())
	if err != nil {
		t.Fatalf("Reset: %v", err)
	}
	if st.Phase != PhaseIdle || st.Cursor != 0 {
		t.Fatalf("state after reset = %s cursor=%d, want idle at 0", st.Phase, st.Cursor)
	}

	snap, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("loading snapshot: %v", err)
	}
	if snap != nil {
		t.Fatal("snapshot survived reset")
	}

	// A fresh bake starts cleanly afterwards.
	startReady(t, e, current)
}

func TestHelperTimerToggleAndReset(t *testing.T) {
	current := time.Date(2025, 6, 7, 8, 0, 0, 0, time.UTC)
	e, _, _ := newTestEngine(t, &current)
	startReady(t, e, current)

	// Prep has no helper.
	if _, err := e.ToggleHelper(context.Background()); !errors.Is(err, domain.ErrInvalidNavigation) {
		t.Fatalf("err = %v, want ErrInvalidNavigation on helper-less stage", err)
	}

	if _, err := e.JumpTo(context.Background(), 2, true); err != nil { // fold-1, helper 4m
		t.Fatalf("JumpTo: %v", err)
	}

	st := e.State()
	if !st.HelperConfigured || st.HelperRunning || st.HelperRemaining != 4*time.Minute {
		t.Fatalf("helper = %+v, want configured idle 4m", st)
	}

	st, err := e.ToggleHelper(context.Background())
	if err != nil {
		t.Fatalf("ToggleHelper: %v", err)
	}
	if !st.HelperRunning {
		t.Fatal("helper did not start")
	}

	// Pause three minutes in.
	current = current.Add(3 * time.Minute)
	st, err = e.ToggleHelper(context.Background())
	if err != nil {
		t.Fatalf("ToggleHelper: %v", err)
	}
	if st.HelperRunning {
		t.Fatal("helper still running after pause")
	}
	if st.HelperRemaining != time.Minute {
		t.Fatalf("helper remaining = %v, want 1m", st.HelperRemaining)
	}
}

func TestViewAndBackLeaveHelperRunning(t *testing.T) {
	current := time.Date(2025, 6, 7, 8, 0, 0, 0, time.UTC)
	e, _, _ := newTestEngine(t, &current)
	startReady(t, e, current)

	if _, err := e.JumpTo(context.Background(), 2, true); err != nil { // fold-1, helper 4m
		t.Fatalf("JumpTo: %v", err)
	}
	if _, err := e.ToggleHelper(context.Background()); err != nil {
		t.Fatalf("ToggleHelper: %v", err)
	}

	current = current.Add(time.Minute)
	if _, err := e.ViewStage(0); err != nil {
		t.Fatalf("ViewStage: %v", err)
	}
	st := e.Back()
	if !st.HelperRunning {
		t.Fatal("helper stopped by view/back round trip")
	}
	if st.HelperRemaining != 3*time.Minute {
		t.Fatalf("helper remaining = %v, want 3m", st.HelperRemaining)
	}
}

func TestStartBakeRejectedMidBake(t *testing.T) {
	current := time.Date(2025, 6, 7, 8, 0, 0, 0, time.UTC)
	e, _, _ := newTestEngine(t, &current)
	startReady(t, e, current)

	if _, err := e.StartBake(context.Background(), current, 1); !errors.Is(err, domain.ErrBakeInProgress) {
		t.Fatalf("err = %v, want ErrBakeInProgress", err)
	}
	if _, err := e.SelectRecipe(context.Background(), "test-loaf"); !errors.Is(err, domain.ErrBakeInProgress) {
		t.Fatalf("err = %v, want ErrBakeInProgress", err)
	}
}

// ── helpers ──────────────────────────────────────────────────────

func mustComplete(t *testing.T, e *Engine, inputs map[string]int) *State {
	t.Helper()
	st, err := e.CompleteStage(context.Background(), inputs)
	if err != nil {
		t.Fatalf("CompleteStage: %v", err)
	}
	return st
}

func mustAdvance(t *testing.T, e *Engine) *State {
	t.Helper()
	st, err := e.Advance(context.Background())
	if err != nil {
		t.Fatalf("Advance: %v", err)
	}
	return st
}

func newTestEngineWithStore(t *testing.T, current *time.Time, store *snapshot.MemoryStore) (*Engine, *recordingNotifier) {
	t.Helper()
	notif := &recordingNotifier{}
	e := New(stubRecipes{testRecipe()}, store, notif, logger.New(logger.LevelOff, nil),
		WithClock(func() time.Time { return *current }),
		WithTickInterval(time.Hour),
	)
	return e, notif
}

func waitForUrgent(t *testing.T, n *recordingNotifier) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if n.urgentCount() > 0 {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("expired-deadline alert never re-raised")
}
