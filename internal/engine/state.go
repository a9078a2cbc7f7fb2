package engine

import (
	"time"

	"github.com/bakelab/levain/internal/domain"
)

// Phase is what the engine is waiting on right now.
type Phase int

const (
	// PhaseIdle means no bake is running.
	PhaseIdle Phase = iota
	// PhaseStarterWait means the pre-bake starter wait is counting down.
	PhaseStarterWait
	// PhaseStage means the current stage card is up, awaiting complete/skip.
	PhaseStage
	// PhaseStageTimer means the stage timer is running or awaiting
	// acknowledgment after completing.
	PhaseStageTimer
	// PhaseComplete means the bake finished and the summary is available.
	PhaseComplete
)

// String returns a human-readable phase.
func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseStarterWait:
		return "starter-wait"
	case PhaseStage:
		return "stage"
	case PhaseStageTimer:
		return "stage-timer"
	case PhaseComplete:
		return "complete"
	default:
		return "unknown"
	}
}

// State is a point-in-time view of the engine for callers and the UI. It is
// a value copy; holding one never blocks the engine.
type State struct {
	Phase      Phase
	RecipeID   string
	RecipeName string
	Multiplier float64

	Cursor     int
	StageCount int
	Stage      *domain.FlatStage // stage under the cursor, nil when past the end
	NextStage  string            // name of the stage after the cursor, "" on the last

	Viewing *ViewingState // non-nil while inspecting another stage

	TimerRemaining time.Duration
	TimerDone      bool

	StarterRemaining time.Duration
	StarterDone      bool
	StarterExtraTime time.Duration

	HelperConfigured bool
	HelperRunning    bool
	HelperDone       bool
	HelperRemaining  time.Duration
}

// ViewingState describes the stage being inspected in viewing mode.
type ViewingState struct {
	Index     int
	Stage     domain.FlatStage
	IsFuture  bool
	Completed bool
	Skipped   bool
	Duration  *time.Duration
}

// TimerInfo is one line of the always-visible timer bar.
type TimerInfo struct {
	Label     string
	Remaining time.Duration
	Done      bool
}

// State returns the current engine state.
func (e *Engine) State() *State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.stateLocked()
}

func (e *Engine) stateLocked() *State {
	st := &State{
		RecipeID:   e.recipeID,
		Multiplier: e.multiplier,
		Cursor:     e.cursor,
		StageCount: len(e.flat),
	}
	if e.recipe != nil {
		st.RecipeName = e.recipe.Name
	}
	if e.bakeLog != nil {
		st.StarterExtraTime = e.bakeLog.StarterExtraTime
	}

	switch {
	case !e.bakeLog.Started():
		st.Phase = PhaseIdle
	case e.bakeLog.Finished():
		st.Phase = PhaseComplete
	case e.starterTimer != nil || e.starterDone:
		st.Phase = PhaseStarterWait
		if e.starterTimer != nil {
			st.StarterRemaining = e.starterTimer.Remaining()
		}
		st.StarterDone = e.starterDone
	case e.stageTimer != nil || e.stageTimerDone:
		st.Phase = PhaseStageTimer
		if e.stageTimer != nil {
			st.TimerRemaining = e.stageTimer.Remaining()
		}
		st.TimerDone = e.stageTimerDone
	default:
		st.Phase = PhaseStage
	}

	if e.cursor < len(e.flat) {
		s := e.flat[e.cursor]
		st.Stage = &s
	}
	if e.cursor+1 < len(e.flat) {
		st.NextStage = e.flat[e.cursor+1].Name
	}

	if e.mode == ModeViewingPast && e.viewing >= 0 && e.viewing < len(e.flat) {
		v := &ViewingState{
			Index:    e.viewing,
			Stage:    e.flat[e.viewing],
			IsFuture: e.viewing > e.cursor,
		}
		if e.bakeLog != nil {
			if rec := e.bakeLog.StageByID(v.Stage.ID); rec != nil && !rec.Open() {
				v.Completed = true
				v.Skipped = rec.Skipped
				v.Duration = rec.Duration
			}
		}
		st.Viewing = v
	}

	if h := e.helper; h != nil {
		st.HelperConfigured = true
		st.HelperDone = h.done
		if h.countdown != nil {
			st.HelperRunning = true
			st.HelperRemaining = h.countdown.Remaining()
		} else {
			st.HelperRemaining = h.remaining
		}
	}

	return st
}

// Timers returns one entry per live countdown for the status bar, in stable
// order: stage, starter, helper.
func (e *Engine) Timers() []TimerInfo {
	e.mu.Lock()
	defer e.mu.Unlock()

	var out []TimerInfo
	if e.stageTimer != nil || e.stageTimerDone {
		info := TimerInfo{Label: "Stage", Done: e.stageTimerDone}
		if e.cursor < len(e.flat) {
			if short := e.flat[e.cursor].ShortName; short != "" {
				info.Label = short
			} else {
				info.Label = e.flat[e.cursor].Name
			}
		}
		if e.stageTimer != nil {
			info.Remaining = e.stageTimer.Remaining()
		}
		out = append(out, info)
	}
	if e.starterTimer != nil || e.starterDone {
		info := TimerInfo{Label: "Starter", Done: e.starterDone}
		if e.starterTimer != nil {
			info.Remaining = e.starterTimer.Remaining()
		}
		out = append(out, info)
	}
	if h := e.helper; h != nil && (h.countdown != nil || h.done) {
		info := TimerInfo{Label: "Helper", Done: h.done}
		if h.countdown != nil {
			info.Remaining = h.countdown.Remaining()
		}
		out = append(out, info)
	}
	return out
}

// IngredientPrompt is what the UI needs to ask for one required ingredient
// input: identity, unit, and the multiplier-scaled default.
type IngredientPrompt struct {
	ID            string
	Name          string
	Unit          string
	ScaledDefault int
}

// IngredientPrompts returns the prompts for a stage's required inputs, in
// authored order. Unknown ingredient ids are dropped.
func (e *Engine) IngredientPrompts(stage domain.FlatStage) []IngredientPrompt {
	e.mu.Lock()
	defer e.mu.Unlock()

	var out []IngredientPrompt
	for _, id := range stage.IngredientInputs {
		ing := e.findIngredientLocked(id)
		if ing == nil {
			continue
		}
		out = append(out, IngredientPrompt{
			ID:            id,
			Name:          ing.Name,
			Unit:          ing.Unit,
			ScaledDefault: e.scaledDefaultLocked(ing),
		})
	}
	return out
}
