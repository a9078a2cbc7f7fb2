// Package summary derives the end-of-bake report from a bake log.
package summary

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/bakelab/levain/internal/domain"
)

// Flour ids recognized for the baker's percentage base, beyond the generic
// "flour" substring match.
var knownFlours = map[string]bool{
	"bread-flour":       true,
	"whole-wheat-flour": true,
	"ap-flour":          true,
	"rye-flour":         true,
}

// Report is the derived summary of one bake. Built once from the log; never
// written back.
type Report struct {
	RecipeName       string
	StarterFedTime   time.Time
	StartTime        *time.Time
	EndTime          *time.Time
	TotalDuration    *time.Duration
	ActiveTime       time.Duration
	Multiplier       float64
	StarterExtraTime time.Duration
	FlourTotal       int
	Ingredients      []IngredientLine
	Stages           []StageLine
}

// IngredientLine is one ingredient row. BakersPercent is set only for
// non-flour ingredients (flour is the 100% base and reported in aggregate);
// Deviation is the percent difference from the scaled default, set only when
// the baker overrode the amount.
type IngredientLine struct {
	ID            string
	Name          string
	Amount        int
	Unit          string
	IsDefault     bool
	BakersPercent *float64
	Deviation     *float64
}

// StageLine is one stage row of the timeline.
type StageLine struct {
	Name             string
	Skipped          bool
	Duration         *time.Duration
	ExpectedDuration time.Duration
	TimerDifference  *time.Duration
}

// isFlour reports whether an ingredient counts toward the percentage base.
func isFlour(id, name string) bool {
	return knownFlours[id] ||
		strings.Contains(id, "flour") ||
		strings.Contains(strings.ToLower(name), "flour")
}

// Build derives the report. Total duration runs from the starter feeding to
// the end of the bake; active time sums only the non-skipped stage durations.
// Ingredient rows come out in first-recorded order; percentages are relative
// to total flour weight, rounded to one decimal place.
func Build(log *domain.BakeLog) *Report {
	r := &Report{
		RecipeName:       log.RecipeName,
		StarterFedTime:   log.StarterFedTime,
		StartTime:        log.StartTime,
		EndTime:          log.EndTime,
		Multiplier:       log.Multiplier,
		StarterExtraTime: log.StarterExtraTime,
	}
	if log.EndTime != nil {
		if !log.StarterFedTime.IsZero() {
			d := log.EndTime.Sub(log.StarterFedTime)
			r.TotalDuration = &d
		} else if log.StartTime != nil {
			d := log.EndTime.Sub(*log.StartTime)
			r.TotalDuration = &d
		}
	}

	for _, id := range log.IngredientOrder {
		rec := log.Ingredients[id]
		if isFlour(id, rec.Name) {
			r.FlourTotal += rec.Amount
		}
	}

	for _, id := range log.IngredientOrder {
		rec := log.Ingredients[id]
		line := IngredientLine{
			ID:        id,
			Name:      rec.Name,
			Amount:    rec.Amount,
			Unit:      rec.Unit,
			IsDefault: rec.IsDefault,
		}
		if r.FlourTotal > 0 && !isFlour(id, rec.Name) {
			pct := math.Round(float64(rec.Amount)/float64(r.FlourTotal)*1000) / 10
			line.BakersPercent = &pct
		}
		if !rec.IsDefault && rec.DefaultAmount > 0 && rec.Amount != rec.DefaultAmount {
			dev := float64(rec.Amount-rec.DefaultAmount) / float64(rec.DefaultAmount) * 100
			line.Deviation = &dev
		}
		r.Ingredients = append(r.Ingredients, line)
	}

	for _, rec := range log.Stages {
		if !rec.Skipped && rec.Duration != nil {
			r.ActiveTime += *rec.Duration
		}
		r.Stages = append(r.Stages, StageLine{
			Name:             rec.Name,
			Skipped:          rec.Skipped,
			Duration:         rec.Duration,
			ExpectedDuration: rec.ExpectedDuration,
			TimerDifference:  rec.TimerDifference,
		})
	}
	return r
}

// Render produces the plain-text report.
func (r *Report) Render() string {
	var b strings.Builder

	fmt.Fprintf(&b, "Bake Summary — %s\n", r.RecipeName)
	if !r.StarterFedTime.IsZero() {
		fmt.Fprintf(&b, "Fed:      %s\n", r.StarterFedTime.Format("Mon Jan 2 15:04"))
	}
	if r.StartTime != nil {
		fmt.Fprintf(&b, "Started:  %s\n", r.StartTime.Format("Mon Jan 2 15:04"))
	}
	if r.EndTime != nil {
		fmt.Fprintf(&b, "Finished: %s\n", r.EndTime.Format("Mon Jan 2 15:04"))
	}
	if r.TotalDuration != nil {
		fmt.Fprintf(&b, "Total:    %s\n", formatDuration(*r.TotalDuration))
	}
	if r.ActiveTime > 0 {
		fmt.Fprintf(&b, "Active:   %s\n", formatDuration(r.ActiveTime))
	}
	if r.Multiplier != 1 {
		fmt.Fprintf(&b, "Batch:    x%.2g\n", r.Multiplier)
	}
	if r.StarterExtraTime > 0 {
		fmt.Fprintf(&b, "Note:     starter rested %s past target\n", formatDuration(r.StarterExtraTime))
	}

	if len(r.Ingredients) > 0 {
		b.WriteString("\nIngredients\n")
		for _, ing := range r.Ingredients {
			fmt.Fprintf(&b, "  %-20s %4d%s", ing.Name, ing.Amount, ing.Unit)
			if ing.BakersPercent != nil {
				fmt.Fprintf(&b, "  %5.1f%%", *ing.BakersPercent)
			}
			if ing.Deviation != nil {
				fmt.Fprintf(&b, "  (%+.0f%% of plan)", *ing.Deviation)
			}
			if ing.IsDefault {
				b.WriteString("  (default)")
			}
			b.WriteString("\n")
		}
		if r.FlourTotal > 0 {
			fmt.Fprintf(&b, "  Total flour: %d g (100%%)\n", r.FlourTotal)
		} else {
			b.WriteString("  baker's percentages unavailable: no flour recorded\n")
		}
	}

	if len(r.Stages) > 0 {
		b.WriteString("\nStages\n")
		for _, st := range r.Stages {
			marker := "✓"
			if st.Skipped {
				marker = "–"
			}
			fmt.Fprintf(&b, "  %s %-24s", marker, st.Name)
			if st.Duration != nil {
				fmt.Fprintf(&b, " %8s", formatDuration(*st.Duration))
			} else {
				fmt.Fprintf(&b, " %8s", "running")
			}
			// Timer deviations within a minute of plan are noise.
			if st.TimerDifference != nil {
				switch d := *st.TimerDifference; {
				case d > time.Minute:
					fmt.Fprintf(&b, "  (+%s extra)", formatDuration(d))
				case d < -time.Minute:
					fmt.Fprintf(&b, "  (%s early)", formatDuration(-d))
				}
			}
			b.WriteString("\n")
		}
	}

	return b.String()
}

// formatDuration renders a duration as "1h 23m" / "45m" / "30s".
func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	switch {
	case h > 0:
		return fmt.Sprintf("%dh %dm", h, m)
	case m > 0:
		return fmt.Sprintf("%dm", m)
	default:
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
}
