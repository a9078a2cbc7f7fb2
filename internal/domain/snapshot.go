package domain

import "time"

// Snapshot is the minimal durable state needed to resume an in-progress bake:
// which recipe, where the cursor is, the full bake log, and the active stage
// timer's deadline. Timestamps must round-trip exactly.
//
// The pre-bake starter timer is deliberately not part of the snapshot; an
// interrupted starter wait resumes at the first stage ready to proceed.
type Snapshot struct {
	RecipeID      string        `json:"currentRecipeId"`
	Cursor        int           `json:"currentStageIndex"`
	Multiplier    float64       `json:"recipeMultiplier"`
	BakeLog       *BakeLog      `json:"bakeLog"`
	TimerDeadline *time.Time    `json:"timerEndTime"`
	TimerDuration time.Duration `json:"timerDuration"`
}

// Resumable reports whether the snapshot holds a bake worth restoring:
// started but not finished.
func (s *Snapshot) Resumable() bool {
	return s != nil && s.BakeLog.Started() && !s.BakeLog.Finished()
}
