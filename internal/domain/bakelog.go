package domain

import "time"

// BakeLog is the single mutable record of one baking session. Stage records
// are append-only and ordered by creation; ingredient records are keyed by
// ingredient id, later writes overwrite.
type BakeLog struct {
	ID               string                      `json:"id"`
	RecipeName       string                      `json:"recipeName"`
	StarterFedTime   time.Time                   `json:"starterFedTime"`
	Multiplier       float64                     `json:"recipeMultiplier"`
	StartTime        *time.Time                  `json:"startTime"`
	EndTime          *time.Time                  `json:"endTime"`
	StarterExtraTime time.Duration               `json:"starterExtraTime"`
	Ingredients      map[string]IngredientRecord `json:"ingredients"`
	IngredientOrder  []string                    `json:"ingredientOrder"`
	Stages           []*StageRecord              `json:"stages"`
}

// Started reports whether the bake has begun. A nil start time is the
// "not started" sentinel.
func (b *BakeLog) Started() bool {
	return b != nil && b.StartTime != nil
}

// Finished reports whether the bake ran to completion.
func (b *BakeLog) Finished() bool {
	return b != nil && b.EndTime != nil
}

// RecordIngredient stores an ingredient amount, overwriting any earlier
// record for the same id and preserving first-recorded order.
func (b *BakeLog) RecordIngredient(id string, rec IngredientRecord) {
	if _, seen := b.Ingredients[id]; !seen {
		b.IngredientOrder = append(b.IngredientOrder, id)
	}
	b.Ingredients[id] = rec
}

// HasIngredient reports whether an amount was already recorded for the id.
func (b *BakeLog) HasIngredient(id string) bool {
	_, ok := b.Ingredients[id]
	return ok
}

// LastStage returns the most recent stage record, or nil.
func (b *BakeLog) LastStage() *StageRecord {
	if len(b.Stages) == 0 {
		return nil
	}
	return b.Stages[len(b.Stages)-1]
}

// StageByID returns the first stage record with the given stage id, or nil.
func (b *BakeLog) StageByID(id string) *StageRecord {
	for _, s := range b.Stages {
		if s.ID == id {
			return s
		}
	}
	return nil
}

// IngredientRecord is one recorded ingredient amount. DefaultAmount is the
// scaled default the amount is measured against; IsDefault marks amounts the
// user never overrode.
type IngredientRecord struct {
	Name          string `json:"name"`
	Amount        int    `json:"amount"`
	DefaultAmount int    `json:"defaultAmount"`
	Unit          string `json:"unit"`
	IsDefault     bool   `json:"isDefault"`
}

// StageRecord is one logged outcome for a single flattened stage. EndTime and
// Duration stay nil while the stage is running. TimerDifference is the signed
// gap between actual timer time and the expected duration — negative when the
// stage was advanced early. It is set only when the record is closed through
// the timer path.
type StageRecord struct {
	ID               string         `json:"id"`
	Name             string         `json:"name"`
	Skipped          bool           `json:"skipped"`
	StartTime        time.Time      `json:"startTime"`
	EndTime          *time.Time     `json:"endTime"`
	Duration         *time.Duration `json:"duration"`
	ExpectedDuration time.Duration  `json:"expectedDuration"`
	TimerStarted     time.Time      `json:"timerStarted"`
	TimerDifference  *time.Duration `json:"timerDifference,omitempty"`
}

// Open reports whether the record is still running.
func (r *StageRecord) Open() bool {
	return r.EndTime == nil
}
