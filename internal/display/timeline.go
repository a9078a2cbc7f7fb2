package display

import (
	"fmt"
	"strings"

	"github.com/bakelab/levain/internal/domain"
)

// RenderTimeline draws the recipe's stage list grouped by its display
// sections, marking each stage done, skipped, current, or upcoming from the
// bake log. Sections are presentation only — the numbering comes from the
// flattened sequence.
func RenderTimeline(r *domain.Recipe, flat []domain.FlatStage, cursor int, log *domain.BakeLog) string {
	index := make(map[string]int, len(flat))
	for i, s := range flat {
		index[s.ID] = i
	}

	var b strings.Builder
	writeStage := func(id string) {
		if i, ok := index[id]; ok {
			b.WriteString(stageLine(flat[i], i, cursor, log))
		}
	}

	if len(r.Sections) == 0 {
		for i := range flat {
			b.WriteString(stageLine(flat[i], i, cursor, log))
		}
		return b.String()
	}

	for _, section := range r.Sections {
		b.WriteString(secondaryStyle.Render("  " + section.Name))
		b.WriteByte('\n')
		for _, id := range section.StageIDs {
			writeStage(id)
		}
		for _, sub := range section.SubSections {
			for _, id := range sub.StageIDs {
				writeStage(id)
			}
		}
	}
	return b.String()
}

func stageLine(stage domain.FlatStage, index, cursor int, log *domain.BakeLog) string {
	label := fmt.Sprintf("%-4s %s", stage.DisplayNumber, stage.Name)

	var duration string
	if stage.DurationMinutes > 0 {
		duration = secondaryStyle.Render(fmt.Sprintf("  ~%dm", stage.DurationMinutes))
	}

	var rec *domain.StageRecord
	if log != nil {
		rec = log.StageByID(stage.ID)
	}

	var styled string
	switch {
	case index == cursor:
		styled = currentStageStyle.Render("▶ " + label)
	case rec != nil && rec.Skipped:
		styled = skippedStageStyle.Render("– " + label)
	case rec != nil && !rec.Open():
		styled = doneStageStyle.Render("✓ " + label)
	case rec != nil:
		// Open record: the stage is running its timer.
		styled = doneStageStyle.Render("… " + label)
	default:
		styled = "  " + secondaryStyle.Render(label)
	}
	return "  " + styled + duration + "\n"
}
