// Package domain defines the core types and interfaces for the bake tracker.
// All other packages depend on domain; domain depends on nothing.
package domain

import (
	"fmt"
	"time"
)

// Recipe is a complete loaded bake recipe: authored stage tree, display
// sections, ingredients, and color groups.
type Recipe struct {
	ID          string            `yaml:"id"`
	Name        string            `yaml:"name"`
	Description string            `yaml:"description"`
	ColorGroups map[string]string `yaml:"colorGroups"`
	Ingredients []Ingredient      `yaml:"ingredients"`
	Stages      []Stage           `yaml:"stages"`
	Sections    []Section         `yaml:"sections"`
}

// RecipeSummary is a lightweight view of a recipe for listing.
type RecipeSummary struct {
	ID          string
	Name        string
	Description string
}

// Ingredient is a recipe ingredient with its unscaled default amount.
// Stable for the lifetime of a loaded recipe.
type Ingredient struct {
	ID            string `yaml:"id"`
	Name          string `yaml:"name"`
	Unit          string `yaml:"unit"`
	DefaultAmount int    `yaml:"defaultAmount"`
}

// Stage is one authored stage. A stage either leafs directly (and may carry
// its own duration) or delegates to sub-stages; never both.
type Stage struct {
	ID                 string   `yaml:"id"`
	Name               string   `yaml:"name"`
	ShortName          string   `yaml:"shortName"`
	ColorGroup         string   `yaml:"colorGroup"`
	DurationMinutes    int      `yaml:"durationMinutes"`
	IngredientInputs   []string `yaml:"ingredientInputs"`
	HelperTimerMinutes int      `yaml:"helperTimerMinutes"`
	InstructionsFile   string   `yaml:"instructionsFile"`
	SubStages          []Stage  `yaml:"subStages"`
}

// ExpectedDuration returns the stage's expected duration. Zero means the
// stage is instantaneous and gets no timer.
func (s Stage) ExpectedDuration() time.Duration {
	return time.Duration(s.DurationMinutes) * time.Minute
}

// Section groups stages for progress display. Purely presentational; never a
// unit of progression.
type Section struct {
	ID          string    `yaml:"id"`
	Name        string    `yaml:"name"`
	StageIDs    []string  `yaml:"stageIds"`
	SubSections []Section `yaml:"subSections"`
}

// AllStageIDs returns the section's stage ids including nested sub-sections,
// in order.
func (s Section) AllStageIDs() []string {
	ids := append([]string(nil), s.StageIDs...)
	for _, sub := range s.SubSections {
		ids = append(ids, sub.StageIDs...)
	}
	return ids
}

// FlatStage is one entry of the flattened stage sequence — the linear index
// space the progression cursor moves through.
type FlatStage struct {
	Stage
	DisplayNumber string
	ParentName    string
}

// Flatten expands the authored stage tree into the flat sequence. Sub-stages
// inherit the parent's color group and name and are numbered "N.M"; leaf
// top-level stages are numbered "N". The top-level ordinal advances once per
// authored stage no matter how many entries it expands to. Pure and
// deterministic.
func Flatten(stages []Stage) []FlatStage {
	var out []FlatStage
	for i, stage := range stages {
		ordinal := i + 1
		if len(stage.SubStages) > 0 {
			for j, sub := range stage.SubStages {
				flat := FlatStage{
					Stage:         sub,
					DisplayNumber: fmt.Sprintf("%d.%d", ordinal, j+1),
					ParentName:    stage.Name,
				}
				flat.ColorGroup = stage.ColorGroup
				out = append(out, flat)
			}
			continue
		}
		out = append(out, FlatStage{
			Stage:         stage,
			DisplayNumber: fmt.Sprintf("%d", ordinal),
		})
	}
	return out
}

// FindFlatIndex returns the flattened index of the stage with the given id,
// or -1.
func FindFlatIndex(flat []FlatStage, id string) int {
	for i, s := range flat {
		if s.ID == id {
			return i
		}
	}
	return -1
}
