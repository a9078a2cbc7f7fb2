// Package engine implements the bake progression state machine.
//
// The engine owns the cursor over the flattened stage sequence, the bake log,
// and the three countdowns (stage, starter wait, helper). Every mutating
// operation persists a snapshot after it fully completes, so a crash mid
// operation never leaves a half-applied state on disk. Rejected operations
// return a sentinel error and leave all state untouched.
package engine

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/bakelab/levain/internal/domain"
	"github.com/bakelab/levain/internal/logger"
	"github.com/bakelab/levain/internal/timer"
)

// Starter wait policy. The tolerance band is asymmetric: a starter used a
// minute early is fine, one used ten minutes late is still fine, anything
// beyond that is flagged.
const (
	targetStarterWait      = 2 * time.Hour
	starterEarlyTolerance  = time.Minute
	starterLateTolerance   = 10 * time.Minute
	fallbackHelperDuration = 4 * time.Minute
)

// Mode is the navigation mode: on the current stage, or inspecting another
// stage without moving the cursor.
type Mode int

const (
	ModeCurrent Mode = iota
	ModeViewingPast
)

// Option configures the engine.
type Option func(*Engine)

// WithClock overrides the wall-clock source. Countdowns started by the
// engine inherit it.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// WithTickInterval sets the countdown tick interval.
func WithTickInterval(d time.Duration) Option {
	return func(e *Engine) {
		e.tick = d
	}
}

// Engine manages one bake at a time. It depends only on ports and is fully
// testable with in-memory implementations.
type Engine struct {
	recipes  domain.RecipeSource
	store    domain.SnapshotStore
	notifier domain.Notifier
	log      *logger.Logger
	now      func() time.Time
	tick     time.Duration

	mu       sync.Mutex
	recipeID string
	recipe   *domain.Recipe
	flat     []domain.FlatStage

	multiplier float64
	bakeLog    *domain.BakeLog
	cursor     int
	mode       Mode
	viewing    int

	stageTimer     *timer.Countdown
	stageDeadline  time.Time
	stageDuration  time.Duration
	stageTimerDone bool

	starterTimer *timer.Countdown
	starterDone  bool

	helper *helperState
}

// helperState is the advisory per-stage countdown. Never logged, never
// persisted.
type helperState struct {
	configured time.Duration
	remaining  time.Duration
	countdown  *timer.Countdown
	done       bool
}

// New creates a bake engine with the given dependencies and options.
func New(recipes domain.RecipeSource, store domain.SnapshotStore, notifier domain.Notifier, log *logger.Logger, opts ...Option) *Engine {
	e := &Engine{
		recipes:    recipes,
		store:      store,
		notifier:   notifier,
		log:        log,
		now:        time.Now,
		tick:       time.Second,
		multiplier: 1,
		viewing:    -1,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// SetNotifier replaces the notifier. The terminal UI polls the engine for
// its timer bar while the notifier prints through the UI, so wiring closes
// the loop here after both exist.
func (e *Engine) SetNotifier(n domain.Notifier) {
	e.mu.Lock()
	e.notifier = n
	e.mu.Unlock()
}

// ListRecipes returns all available recipes.
func (e *Engine) ListRecipes(ctx context.Context) ([]domain.RecipeSummary, error) {
	return e.recipes.List(ctx)
}

// SelectRecipe loads a recipe and recomputes the flattened stage sequence.
// Rejected while a bake is in progress.
func (e *Engine) SelectRecipe(ctx context.Context, id string) (*State, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.bakeLog.Started() && !e.bakeLog.Finished() {
		return nil, domain.ErrBakeInProgress
	}

	r, err := e.recipes.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("loading recipe %q: %w", id, err)
	}

	e.recipe = r
	e.recipeID = r.ID
	e.flat = domain.Flatten(r.Stages)
	e.bakeLog = nil
	e.cursor = 0
	e.mode = ModeCurrent
	e.viewing = -1

	e.log.Info("recipe selected: %s (%d stages)", r.Name, len(e.flat))
	return e.stateLocked(), nil
}

// Recipe returns the currently loaded recipe, or nil.
func (e *Engine) Recipe() *domain.Recipe {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.recipe
}

// FlatStages returns a copy of the flattened stage sequence.
func (e *Engine) FlatStages() []domain.FlatStage {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]domain.FlatStage(nil), e.flat...)
}

// BakeLog returns the live bake log, or nil before a bake starts.
func (e *Engine) BakeLog() *domain.BakeLog {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.bakeLog
}

// StartBake initializes a fresh bake log and evaluates the starter wait.
// A zero starterFedAt means "just now"; multiplier <= 0 defaults to 1.
//
// Three outcomes, visible in the returned state: proceed straight to the
// first stage, wait out the remaining starter time, or proceed with the
// overage recorded for advisory display.
func (e *Engine) StartBake(ctx context.Context, starterFedAt time.Time, multiplier float64) (*State, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.recipe == nil {
		return nil, domain.ErrRecipeNotFound
	}
	if e.bakeLog.Started() && !e.bakeLog.Finished() {
		return nil, domain.ErrBakeInProgress
	}

	now := e.now()
	if multiplier <= 0 {
		multiplier = 1
	}
	if starterFedAt.IsZero() {
		starterFedAt = now
	}

	e.multiplier = multiplier
	e.bakeLog = e.newBakeLogLocked(starterFedAt, now)
	e.cursor = 0
	e.mode = ModeCurrent
	e.viewing = -1
	e.clearTimersLocked()

	elapsed := now.Sub(starterFedAt)
	switch {
	case elapsed >= targetStarterWait-starterEarlyTolerance && elapsed <= targetStarterWait+starterLateTolerance:
		e.enterStageLocked()
	case elapsed < targetStarterWait-starterEarlyTolerance:
		e.startStarterTimerLocked(targetStarterWait - elapsed)
	default:
		e.bakeLog.StarterExtraTime = elapsed - targetStarterWait
		e.log.Info("starter rested %s past target", e.bakeLog.StarterExtraTime)
		e.enterStageLocked()
	}

	e.saveLocked(ctx)
	e.log.Info("bake started: %s (x%.2g, starter fed %s ago)", e.bakeLog.RecipeName, multiplier, elapsed.Round(time.Second))
	return e.stateLocked(), nil
}

// StarterReady proceeds from the starter wait to the first stage. Works
// whether the wait timer finished or the user chose to proceed early. The
// wait itself is never logged as a stage.
func (e *Engine) StarterReady(ctx context.Context) (*State, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.bakeLog.Started() {
		return nil, domain.ErrNoBake
	}
	if e.starterTimer == nil && !e.starterDone {
		return nil, domain.ErrInvalidNavigation
	}

	if e.starterTimer != nil {
		e.starterTimer.Stop()
		e.starterTimer = nil
	}
	e.starterDone = false
	e.enterStageLocked()
	return e.stateLocked(), nil
}

// CompleteStage records the current stage as done. Required ingredient
// inputs fall back to scaled defaults when omitted. A stage with an expected
// duration starts the stage timer; an instantaneous stage closes its record
// and advances the cursor synchronously.
func (e *Engine) CompleteStage(ctx context.Context, inputs map[string]int) (*State, error) {
	return e.beginStage(ctx, inputs, false)
}

// SkipStage records the current stage as skipped with default ingredient
// amounts. The stage timer still runs when the stage has an expected
// duration — skipping changes what is logged, not the physical rest the
// dough needs.
func (e *Engine) SkipStage(ctx context.Context) (*State, error) {
	return e.beginStage(ctx, nil, true)
}

func (e *Engine) beginStage(ctx context.Context, inputs map[string]int, skipped bool) (*State, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.bakeLog.Started() {
		return nil, domain.ErrNoBake
	}
	if e.bakeLog.Finished() {
		return nil, domain.ErrBakeFinished
	}
	if e.mode == ModeViewingPast {
		return nil, domain.ErrInvalidNavigation
	}
	if e.starterTimer != nil || !e.stageDeadline.IsZero() || e.stageTimerDone {
		return nil, domain.ErrInvalidNavigation
	}
	if e.cursor >= len(e.flat) {
		return nil, domain.ErrBakeFinished
	}

	stage := e.flat[e.cursor]
	e.stopHelperLocked()

	if skipped {
		e.recordDefaultsLocked(stage)
	} else {
		e.collectIngredientsLocked(stage, inputs)
	}

	now := e.now()
	rec := &domain.StageRecord{
		ID:               stage.ID,
		Name:             stage.Name,
		Skipped:          skipped,
		StartTime:        now,
		ExpectedDuration: stage.ExpectedDuration(),
		TimerStarted:     now,
	}
	e.bakeLog.Stages = append(e.bakeLog.Stages, rec)

	if stage.DurationMinutes > 0 {
		e.startStageTimerLocked(stage.ExpectedDuration())
		e.saveLocked(ctx)
		e.log.Debug("stage %s started, timer %s (skipped=%t)", stage.ID, stage.ExpectedDuration(), skipped)
		return e.stateLocked(), nil
	}

	// Instantaneous stage: close the record and move on in one step.
	end := now
	d := end.Sub(rec.StartTime)
	rec.EndTime = &end
	rec.Duration = &d
	e.cursor++
	if !e.maybeFinishLocked(ctx) {
		e.enterStageLocked()
		e.saveLocked(ctx)
	}
	e.log.Debug("stage %s closed instantly (skipped=%t), cursor=%d", stage.ID, skipped, e.cursor)
	return e.stateLocked(), nil
}

// Advance closes the in-progress stage record and moves the cursor forward.
// This is the user's acknowledgment of the stage timer — it also works
// before the timer completes, in which case the logged timer difference is
// negative. The difference is signed and never clamped.
func (e *Engine) Advance(ctx context.Context) (*State, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.bakeLog.Started() {
		return nil, domain.ErrNoBake
	}
	if e.bakeLog.Finished() {
		return nil, domain.ErrBakeFinished
	}
	rec := e.bakeLog.LastStage()
	if rec == nil || !rec.Open() {
		return nil, domain.ErrInvalidNavigation
	}

	// Cancel the scheduled tick before mutating the state it reads.
	if e.stageTimer != nil {
		e.stageTimer.Stop()
		e.stageTimer = nil
	}
	e.stageDeadline = time.Time{}
	e.stageDuration = 0
	e.stageTimerDone = false

	now := e.now()
	end := now
	d := end.Sub(rec.StartTime)
	rec.EndTime = &end
	rec.Duration = &d
	diff := end.Sub(rec.TimerStarted) - rec.ExpectedDuration
	rec.TimerDifference = &diff

	e.cursor++
	e.mode = ModeCurrent
	e.viewing = -1

	if !e.maybeFinishLocked(ctx) {
		e.enterStageLocked()
		e.saveLocked(ctx)
	}
	e.log.Debug("advanced to %d/%d (timer diff %s)", e.cursor, len(e.flat), diff)
	return e.stateLocked(), nil
}

// JumpTo skips ahead to a future stage, synthesizing a zero-duration skipped
// record for every stage passed over and recording their default ingredient
// amounts. Running timers are cancelled silently — no completion fires. When
// no bake is in progress yet, a bake is started implicitly with the current
// inputs and no starter-wait evaluation.
//
// Jumps backward, to the cursor, or past the last stage are rejected without
// touching state. Unconfirmed jumps are rejected with
// domain.ErrConfirmationRequired so the caller can ask first.
func (e *Engine) JumpTo(ctx context.Context, target int, confirmed bool) (*State, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.recipe == nil {
		return nil, domain.ErrRecipeNotFound
	}
	if e.bakeLog.Finished() {
		return nil, domain.ErrBakeFinished
	}
	if target <= e.cursor || target >= len(e.flat) {
		return nil, domain.ErrInvalidNavigation
	}
	if !confirmed {
		return nil, domain.ErrConfirmationRequired
	}

	now := e.now()
	if !e.bakeLog.Started() {
		e.bakeLog = e.newBakeLogLocked(now, now)
	}

	// Silence every running countdown before touching the cursor.
	e.clearTimersLocked()
	e.stopHelperLocked()

	// A stage caught mid-timer closes as skipped with its actual elapsed
	// time; only stages never entered get synthesized zero-duration records.
	first := e.cursor
	if rec := e.bakeLog.LastStage(); rec != nil && rec.Open() {
		rec.Skipped = true
		end := now
		d := end.Sub(rec.StartTime)
		rec.EndTime = &end
		rec.Duration = &d
		if e.cursor < len(e.flat) && rec.ID == e.flat[e.cursor].ID {
			first = e.cursor + 1
		}
	}

	for i := first; i < target; i++ {
		st := e.flat[i]
		e.recordDefaultsLocked(st)
		end := now
		zero := time.Duration(0)
		e.bakeLog.Stages = append(e.bakeLog.Stages, &domain.StageRecord{
			ID:               st.ID,
			Name:             st.Name,
			Skipped:          true,
			StartTime:        now,
			EndTime:          &end,
			Duration:         &zero,
			ExpectedDuration: st.ExpectedDuration(),
		})
	}

	skipped := target - e.cursor
	e.cursor = target
	e.mode = ModeCurrent
	e.viewing = -1
	e.enterStageLocked()
	e.saveLocked(ctx)
	e.log.Info("jumped over %d stage(s) to %d (%s)", skipped, target, e.flat[target].ID)
	return e.stateLocked(), nil
}

// ViewStage inspects another stage without moving the cursor. Purely a
// display-mode change; the bake log and timers are untouched.
func (e *Engine) ViewStage(index int) (*State, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.recipe == nil {
		return nil, domain.ErrRecipeNotFound
	}
	if index < 0 || index >= len(e.flat) || index == e.cursor {
		return nil, domain.ErrInvalidNavigation
	}
	e.mode = ModeViewingPast
	e.viewing = index
	return e.stateLocked(), nil
}

// Back returns from viewing another stage. When a stage timer is running or
// waiting for acknowledgment, the returned state is the timer phase, not the
// stage card. Like ViewStage, it leaves every timer alone, the helper
// countdown included.
func (e *Engine) Back() *State {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.mode = ModeCurrent
	e.viewing = -1
	return e.stateLocked()
}

// ToggleHelper starts or pauses the current stage's advisory helper
// countdown. Restarting after completion resets it to the configured
// duration. Never logged, never persisted.
func (e *Engine) ToggleHelper(ctx context.Context) (*State, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.helper == nil {
		return nil, domain.ErrInvalidNavigation
	}

	h := e.helper
	if h.countdown != nil {
		h.remaining = h.countdown.Remaining()
		h.countdown.Stop()
		h.countdown = nil
		return e.stateLocked(), nil
	}

	if h.remaining <= 0 {
		h.remaining = h.configured
		if h.remaining <= 0 {
			h.remaining = fallbackHelperDuration
		}
	}
	h.done = false
	h.countdown = timer.Start(timer.KindHelper, h.remaining, e.onHelperComplete, e.timerOpts()...)
	return e.stateLocked(), nil
}

// Reset tears the bake down: cursor reset, bake log cleared, timers
// cancelled, persisted snapshot erased.
func (e *Engine) Reset(ctx context.Context) (*State, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.clearTimersLocked()
	e.stopHelperLocked()
	e.helper = nil
	e.bakeLog = nil
	e.cursor = 0
	e.multiplier = 1
	e.mode = ModeCurrent
	e.viewing = -1

	if err := e.store.Clear(ctx); err != nil {
		e.log.Error("clearing snapshot: %v", err)
	}
	e.log.Info("bake reset")
	return e.stateLocked(), nil
}

// Restore replays a persisted snapshot. Returns (nil, false, nil) when there
// is nothing usable to restore — absent, finished, corrupt, or referencing a
// recipe that no longer exists. A stored stage-timer deadline still in the
// future is reattached; one already in the past re-raises the completion
// alert immediately.
func (e *Engine) Restore(ctx context.Context) (*State, bool, error) {
	snap, err := e.store.Load(ctx)
	if err != nil {
		return nil, false, fmt.Errorf("loading snapshot: %w", err)
	}
	if !snap.Resumable() {
		return nil, false, nil
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.recipeID != snap.RecipeID {
		r, err := e.recipes.Get(ctx, snap.RecipeID)
		if err != nil {
			e.log.Warn("snapshot references unknown recipe %q, starting fresh: %v", snap.RecipeID, err)
			if cerr := e.store.Clear(ctx); cerr != nil {
				e.log.Error("clearing stale snapshot: %v", cerr)
			}
			return nil, false, nil
		}
		e.recipe = r
		e.recipeID = r.ID
		e.flat = domain.Flatten(r.Stages)
	}

	e.bakeLog = snap.BakeLog
	e.cursor = snap.Cursor
	e.multiplier = snap.Multiplier
	e.mode = ModeCurrent
	e.viewing = -1

	switch {
	case snap.TimerDeadline == nil:
		e.enterStageLocked()
	case snap.TimerDeadline.After(e.now()):
		e.stageDeadline = *snap.TimerDeadline
		e.stageDuration = snap.TimerDuration
		e.stageTimer = timer.ResumeAt(timer.KindStage, e.stageDeadline, e.stageDuration, e.onStageTimerComplete, e.timerOpts()...)
		e.log.Info("resumed stage timer, %s remaining", e.stageTimer.Remaining().Round(time.Second))
	default:
		// Expired while the process was away. Completed state, alert
		// re-raised, user still has to acknowledge.
		e.stageDeadline = *snap.TimerDeadline
		e.stageDuration = snap.TimerDuration
		e.stageTimerDone = true
		if n := e.notifier; n != nil {
			msg := e.stageDoneMessageLocked()
			go n.NotifyUrgent(ctx, msg)
		}
		e.log.Info("stage timer expired while away")
	}

	e.log.Info("session restored: %s, stage %d/%d", e.bakeLog.RecipeName, e.cursor+1, len(e.flat))
	return e.stateLocked(), true, nil
}

// ── internals ────────────────────────────────────────────────────

func (e *Engine) newBakeLogLocked(starterFedAt, start time.Time) *domain.BakeLog {
	return &domain.BakeLog{
		ID:             uuid.NewString(),
		RecipeName:     e.recipe.Name,
		StarterFedTime: starterFedAt,
		Multiplier:     e.multiplier,
		StartTime:      &start,
		Ingredients:    make(map[string]domain.IngredientRecord),
	}
}

func (e *Engine) startStageTimerLocked(d time.Duration) {
	e.stageDuration = d
	e.stageTimerDone = false
	e.stageTimer = timer.Start(timer.KindStage, d, e.onStageTimerComplete, e.timerOpts()...)
	e.stageDeadline = e.stageTimer.Deadline()
}

func (e *Engine) startStarterTimerLocked(d time.Duration) {
	e.starterDone = false
	e.starterTimer = timer.Start(timer.KindStarter, d, e.onStarterComplete, e.timerOpts()...)
	e.log.Info("starter wait: %s remaining", d.Round(time.Second))
}

// clearTimersLocked cancels the stage and starter countdowns without firing
// completion, and drops the persisted-deadline bookkeeping.
func (e *Engine) clearTimersLocked() {
	if e.stageTimer != nil {
		e.stageTimer.Stop()
		e.stageTimer = nil
	}
	if e.starterTimer != nil {
		e.starterTimer.Stop()
		e.starterTimer = nil
	}
	e.stageDeadline = time.Time{}
	e.stageDuration = 0
	e.stageTimerDone = false
	e.starterDone = false
}

func (e *Engine) stopHelperLocked() {
	if e.helper != nil && e.helper.countdown != nil {
		e.helper.countdown.Stop()
		e.helper.countdown = nil
	}
}

// enterStageLocked prepares per-stage display state (the helper countdown)
// for the stage under the cursor.
func (e *Engine) enterStageLocked() {
	e.stopHelperLocked()
	e.helper = nil
	if e.cursor >= len(e.flat) {
		return
	}
	if m := e.flat[e.cursor].HelperTimerMinutes; m > 0 {
		d := time.Duration(m) * time.Minute
		e.helper = &helperState{configured: d, remaining: d}
	}
}

// maybeFinishLocked finalizes the bake when the cursor has passed the last
// stage: end time set, snapshot erased. Returns true when finished.
func (e *Engine) maybeFinishLocked(ctx context.Context) bool {
	if e.cursor < len(e.flat) {
		return false
	}
	now := e.now()
	e.bakeLog.EndTime = &now
	e.stopHelperLocked()
	e.helper = nil
	if err := e.store.Clear(ctx); err != nil {
		e.log.Error("clearing snapshot after finish: %v", err)
	}
	if n := e.notifier; n != nil {
		go n.Notify(ctx, "Bake complete! Your summary is ready.")
	}
	e.log.Info("bake finished: %s", e.bakeLog.RecipeName)
	return true
}

func (e *Engine) saveLocked(ctx context.Context) {
	snap := &domain.Snapshot{
		RecipeID:   e.recipeID,
		Cursor:     e.cursor,
		Multiplier: e.multiplier,
		BakeLog:    e.bakeLog,
	}
	if !e.stageDeadline.IsZero() {
		d := e.stageDeadline
		snap.TimerDeadline = &d
		snap.TimerDuration = e.stageDuration
	}
	if err := e.store.Save(ctx, snap); err != nil {
		e.log.Error("saving snapshot: %v", err)
	}
}

func (e *Engine) timerOpts() []timer.Option {
	return []timer.Option{
		timer.WithTickInterval(e.tick),
		timer.WithClock(e.now),
	}
}

func (e *Engine) findIngredientLocked(id string) *domain.Ingredient {
	for i := range e.recipe.Ingredients {
		if e.recipe.Ingredients[i].ID == id {
			return &e.recipe.Ingredients[i]
		}
	}
	return nil
}

func (e *Engine) scaledDefaultLocked(ing *domain.Ingredient) int {
	return int(math.Round(float64(ing.DefaultAmount) * e.multiplier))
}

// collectIngredientsLocked records amounts for a stage's required inputs,
// using the provided value when present and the scaled default otherwise.
// Overwrites earlier records for the same ingredient.
func (e *Engine) collectIngredientsLocked(stage domain.FlatStage, inputs map[string]int) {
	for _, id := range stage.IngredientInputs {
		ing := e.findIngredientLocked(id)
		if ing == nil {
			e.log.Warn("stage %s references unknown ingredient %q", stage.ID, id)
			continue
		}
		scaled := e.scaledDefaultLocked(ing)
		rec := domain.IngredientRecord{
			Name:          ing.Name,
			Amount:        scaled,
			DefaultAmount: scaled,
			Unit:          ing.Unit,
			IsDefault:     true,
		}
		if v, ok := inputs[id]; ok && v >= 0 {
			rec.Amount = v
			rec.IsDefault = false
		}
		e.bakeLog.RecordIngredient(id, rec)
	}
}

// recordDefaultsLocked records scaled defaults for a stage's required inputs
// without overwriting anything already recorded.
func (e *Engine) recordDefaultsLocked(stage domain.FlatStage) {
	for _, id := range stage.IngredientInputs {
		if e.bakeLog.HasIngredient(id) {
			continue
		}
		ing := e.findIngredientLocked(id)
		if ing == nil {
			continue
		}
		scaled := e.scaledDefaultLocked(ing)
		e.bakeLog.RecordIngredient(id, domain.IngredientRecord{
			Name:          ing.Name,
			Amount:        scaled,
			DefaultAmount: scaled,
			Unit:          ing.Unit,
			IsDefault:     true,
		})
	}
}

func (e *Engine) stageDoneMessageLocked() string {
	if e.cursor+1 < len(e.flat) {
		return "Time's up! Next: " + e.flat[e.cursor+1].Name
	}
	return "Time's up! Final stage done — your bake is complete."
}

// ── countdown completion handlers ────────────────────────────────
// These run on countdown goroutines. Each checks that its countdown was not
// superseded before touching engine state.

func (e *Engine) onStageTimerComplete(c *timer.Countdown) {
	e.mu.Lock()
	if e.stageTimer != c {
		e.mu.Unlock()
		return
	}
	e.stageTimer = nil
	e.stageTimerDone = true
	msg := e.stageDoneMessageLocked()
	n := e.notifier
	e.mu.Unlock()

	if n == nil {
		return
	}
	if err := n.NotifyUrgent(context.Background(), msg); err != nil {
		e.log.Error("stage timer alert: %v", err)
	}
}

func (e *Engine) onStarterComplete(c *timer.Countdown) {
	e.mu.Lock()
	if e.starterTimer != c {
		e.mu.Unlock()
		return
	}
	e.starterTimer = nil
	e.starterDone = true
	n := e.notifier
	e.mu.Unlock()

	if n == nil {
		return
	}
	if err := n.NotifyUrgent(context.Background(), "Starter is ready! Begin your first stage."); err != nil {
		e.log.Error("starter alert: %v", err)
	}
}

func (e *Engine) onHelperComplete(c *timer.Countdown) {
	e.mu.Lock()
	if e.helper == nil || e.helper.countdown != c {
		e.mu.Unlock()
		return
	}
	e.helper.countdown = nil
	e.helper.remaining = 0
	e.helper.done = true
	n := e.notifier
	e.mu.Unlock()

	if n == nil {
		return
	}
	if err := n.Notify(context.Background(), "Helper timer done."); err != nil {
		e.log.Error("helper chime: %v", err)
	}
}
