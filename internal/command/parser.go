// Package command provides intent parsing and terminal notification
// implementations for the interactive prompt.
package command

import (
	"context"
	"regexp"
	"strings"

	"github.com/bakelab/levain/internal/domain"
	"github.com/bakelab/levain/internal/logger"
)

// Compile-time interface check.
var _ domain.IntentParser = (*KeywordParser)(nil)

// KeywordParser matches user input to intents using keywords and simple
// patterns.
type KeywordParser struct {
	log      *logger.Logger
	patterns []patternRule
}

type patternRule struct {
	regex   *regexp.Regexp
	intent  domain.IntentType
	payload bool // carry the first capture group as payload
}

// NewKeywordParser creates a keyword-based intent parser.
func NewKeywordParser(log *logger.Logger) *KeywordParser {
	p := &KeywordParser{log: log}
	p.patterns = []patternRule{
		{regexp.MustCompile(`(?i)^(list|recipes|browse)$`), domain.IntentListRecipes, false},
		{regexp.MustCompile(`(?i)^(?:select|pick|recipe)\s+(.+)$`), domain.IntentSelectRecipe, true},
		// Reset phrasings before the start rule, so "start over" is not a bake.
		{regexp.MustCompile(`(?i)^(reset|abandon|start over)$`), domain.IntentReset, false},
		{regexp.MustCompile(`(?i)^(?:start|begin|bake)(?:\s+(.*))?$`), domain.IntentStartBake, true},
		{regexp.MustCompile(`(?i)^(?:complete|done|finish|c)(?:\s+(.*))?$`), domain.IntentCompleteStage, true},
		{regexp.MustCompile(`(?i)^(skip|s)$`), domain.IntentSkipStage, false},
		{regexp.MustCompile(`(?i)^(next|continue|advance|ok|n)$`), domain.IntentAdvance, false},
		{regexp.MustCompile(`(?i)^(ready|starter ready|proceed)$`), domain.IntentStarterReady, false},
		{regexp.MustCompile(`(?i)^(?:view|show|stage)\s+(\S+)$`), domain.IntentViewStage, true},
		{regexp.MustCompile(`(?i)^(back|return|b)$`), domain.IntentBack, false},
		{regexp.MustCompile(`(?i)^(?:jump|goto|go to)\s+(\S+)$`), domain.IntentJump, true},
		{regexp.MustCompile(`(?i)^(helper|pause|timer|t)$`), domain.IntentHelperTimer, false},
		{regexp.MustCompile(`(?i)^(status|where|progress|info)$`), domain.IntentStatus, false},
		{regexp.MustCompile(`(?i)^(summary|report|log)$`), domain.IntentSummary, false},
		{regexp.MustCompile(`(?i)^(help|h|\?)$`), domain.IntentHelp, false},
		{regexp.MustCompile(`(?i)^(quit|exit|q)$`), domain.IntentQuit, false},
	}
	return p
}

// Parse converts user input into an intent. Bare numbers select a recipe
// before any recipe is chosen and are otherwise ambiguous, so they map to
// view — the prompt resolves context itself.
func (p *KeywordParser) Parse(ctx context.Context, input string) (*domain.Intent, error) {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return &domain.Intent{Type: domain.IntentUnknown}, nil
	}

	p.log.Debug("parsing input: %q", trimmed)

	// Bare stage numbers, including sub-stage form "3.2", mean view.
	if isStageNumber(trimmed) {
		return &domain.Intent{Type: domain.IntentViewStage, Payload: trimmed}, nil
	}

	for _, rule := range p.patterns {
		m := rule.regex.FindStringSubmatch(trimmed)
		if m == nil {
			continue
		}
		p.log.Debug("matched intent: %s", rule.intent)
		intent := &domain.Intent{Type: rule.intent}
		if rule.payload && len(m) > 1 {
			intent.Payload = strings.TrimSpace(m[1])
		}
		return intent, nil
	}

	p.log.Debug("no match, returning unknown intent")
	return &domain.Intent{Type: domain.IntentUnknown, Payload: trimmed}, nil
}

// isStageNumber accepts "4" and "3.2" style display numbers.
var stageNumberRe = regexp.MustCompile(`^\d{1,2}(\.\d{1,2})?$`)

func isStageNumber(s string) bool {
	return stageNumberRe.MatchString(s)
}
