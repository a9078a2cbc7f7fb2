package domain

// IntentType classifies what the user wants to do.
type IntentType int

const (
	IntentUnknown IntentType = iota
	IntentListRecipes
	IntentSelectRecipe
	IntentStartBake
	IntentCompleteStage
	IntentSkipStage
	IntentAdvance      // acknowledge the stage timer and move on
	IntentStarterReady // proceed from the starter wait
	IntentViewStage
	IntentBack
	IntentJump
	IntentHelperTimer // start/pause the helper timer
	IntentStatus
	IntentSummary
	IntentReset
	IntentHelp
	IntentQuit
)

// String returns a human-readable intent type.
func (i IntentType) String() string {
	switch i {
	case IntentListRecipes:
		return "list_recipes"
	case IntentSelectRecipe:
		return "select_recipe"
	case IntentStartBake:
		return "start_bake"
	case IntentCompleteStage:
		return "complete_stage"
	case IntentSkipStage:
		return "skip_stage"
	case IntentAdvance:
		return "advance"
	case IntentStarterReady:
		return "starter_ready"
	case IntentViewStage:
		return "view_stage"
	case IntentBack:
		return "back"
	case IntentJump:
		return "jump"
	case IntentHelperTimer:
		return "helper_timer"
	case IntentStatus:
		return "status"
	case IntentSummary:
		return "summary"
	case IntentReset:
		return "reset"
	case IntentHelp:
		return "help"
	case IntentQuit:
		return "quit"
	default:
		return "unknown"
	}
}

// Intent represents a parsed user action.
type Intent struct {
	Type    IntentType
	Payload string // optional context, e.g. a stage number for view/jump
}
