// Levain — a guided sourdough baking companion.
//
// Usage:
//
//	levain [-verbose] [-quiet] [-recipes DIR] [-state FILE]
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	stdlog "log"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/bakelab/levain/internal/command"
	"github.com/bakelab/levain/internal/content"
	"github.com/bakelab/levain/internal/display"
	"github.com/bakelab/levain/internal/domain"
	"github.com/bakelab/levain/internal/engine"
	"github.com/bakelab/levain/internal/logger"
	"github.com/bakelab/levain/internal/recipe"
	"github.com/bakelab/levain/internal/snapshot"
	"github.com/bakelab/levain/internal/summary"
)

func main() {
	_ = godotenv.Load()

	verbose := flag.Bool("verbose", false, "enable verbose/debug logging")
	quiet := flag.Bool("quiet", false, "disable all logging")
	logFile := flag.String("log-file", defaultEnv("LEVAIN_LOG_FILE", ".levain/levain.log"), "file to write logs to (use \"stderr\" to log to console)")
	recipesDir := flag.String("recipes", os.Getenv("LEVAIN_RECIPES_DIR"), "directory of recipe YAML files (default: built-in collection)")
	statePath := flag.String("state", defaultEnv("LEVAIN_STATE_DB", ".levain/levain.db"), "path to the session database")
	flag.Parse()

	// Configure logger.
	logLevel := logger.LevelNormal
	if *verbose {
		logLevel = logger.LevelVerbose
	}
	if *quiet {
		logLevel = logger.LevelOff
	}

	// Direct logs to a file by default so the REPL stays clean.
	var logOut io.Writer = os.Stderr
	if *logFile != "" && *logFile != "stderr" {
		dir := filepath.Dir(*logFile)
		if dir != "" && dir != "." {
			os.MkdirAll(dir, 0o755)
		}
		f, err := os.OpenFile(*logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: could not open log file %s: %v (falling back to stderr)\n", *logFile, err)
		} else {
			logOut = f
			defer f.Close()
		}
	}

	// Redirect Go's default log package to the same output so third-party
	// libs don't spam the terminal.
	stdlog.SetOutput(logOut)
	stdlog.SetFlags(stdlog.Ltime)

	log := logger.New(logLevel, logOut)

	// Set up context — cancelled when the UI quits.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Wire dependencies. Recipes and their instruction files share one
	// filesystem so user collections can override both together.
	var recipesFS fs.FS = recipe.DefaultFS()
	if *recipesDir != "" {
		recipesFS = os.DirFS(*recipesDir)
		log.Info("using recipe collection at %s", *recipesDir)
	}
	recipes := recipe.NewSource(recipesFS, log)
	pages := content.NewSource(recipesFS, log)

	if dir := filepath.Dir(*statePath); dir != "" && dir != "." {
		os.MkdirAll(dir, 0o755)
	}
	store, err := snapshot.NewSQLiteStore(*statePath, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: opening session database: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	eng := engine.New(recipes, store, nil, log)
	ui := display.NewUI(eng)
	notifier := command.NewCLINotifier(log, ui.Printf)
	eng.SetNotifier(notifier)
	parser := command.NewKeywordParser(log)

	app := &cliApp{
		engine:      eng,
		parser:      parser,
		content:     pages,
		log:         log,
		ui:          ui,
		pendingJump: -1,
	}

	fmt.Println(display.RenderBanner())
	fmt.Println(display.BannerStyle.Render("  Type 'help' for commands, 'quit' to exit."))
	fmt.Println()

	// Run app logic in a background goroutine.
	go func() {
		ui.WaitReady()
		app.run(ctx)
		ui.Quit()
	}()

	// Bubble Tea owns the terminal — blocks until quit.
	if err := ui.Run(); err != nil {
		log.Error("display: %v", err)
	}
	cancel()
}

func defaultEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

type cliApp struct {
	engine  *engine.Engine
	parser  domain.IntentParser
	content *content.Source
	log     *logger.Logger
	ui      *display.UI

	pendingJump  int  // stage index awaiting jump confirmation, -1 when none
	confirmReset bool // next "reset" actually resets
}

func (a *cliApp) run(ctx context.Context) {
	// Pick up an interrupted bake before anything else.
	if st, restored, err := a.engine.Restore(ctx); err != nil {
		a.ui.PrintUrgent(fmt.Sprintf("Error restoring session: %v", err))
	} else if restored {
		a.ui.PrintNote(fmt.Sprintf("Welcome back — resuming your %s bake.", st.RecipeName))
		a.ui.Println("")
		a.showCurrent(ctx)
	} else {
		a.showRecipes(ctx)
	}

	uiCh := a.ui.InputChan()
	for {
		var input string
		var ok bool

		select {
		case <-ctx.Done():
			return
		case input, ok = <-uiCh:
			if !ok {
				return
			}
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}

		intent, err := a.parser.Parse(ctx, input)
		if err != nil {
			a.log.Error("parsing input: %v", err)
			continue
		}

		a.log.Debug("intent: %s (payload=%q)", intent.Type, intent.Payload)
		a.handleIntent(ctx, intent)
	}
}

func (a *cliApp) handleIntent(ctx context.Context, intent *domain.Intent) {
	// Any intent other than a repeated jump or reset drops the pending
	// confirmation.
	if intent.Type != domain.IntentJump {
		a.pendingJump = -1
	}
	if intent.Type != domain.IntentReset {
		a.confirmReset = false
	}

	switch intent.Type {
	case domain.IntentHelp:
		a.showHelp()
	case domain.IntentListRecipes:
		a.showRecipes(ctx)
	case domain.IntentSelectRecipe:
		a.selectRecipe(ctx, intent.Payload)
	case domain.IntentStartBake:
		a.startBake(ctx, intent.Payload)
	case domain.IntentStarterReady:
		a.starterReady(ctx)
	case domain.IntentCompleteStage:
		a.completeStage(ctx, intent.Payload)
	case domain.IntentSkipStage:
		a.skipStage(ctx)
	case domain.IntentAdvance:
		a.advance(ctx)
	case domain.IntentViewStage:
		a.viewStage(ctx, intent.Payload)
	case domain.IntentBack:
		a.back(ctx)
	case domain.IntentJump:
		a.jump(ctx, intent.Payload)
	case domain.IntentHelperTimer:
		a.toggleHelper(ctx)
	case domain.IntentStatus:
		a.status(ctx)
	case domain.IntentSummary:
		a.showSummary()
	case domain.IntentReset:
		a.reset(ctx)
	case domain.IntentQuit:
		a.quit(ctx)
	case domain.IntentUnknown:
		if intent.Payload != "" {
			a.ui.PrintHint(fmt.Sprintf("Didn't catch that (%q). Type 'help' for commands.", intent.Payload))
		}
	}
}

func (a *cliApp) showRecipes(ctx context.Context) {
	list, err := a.engine.ListRecipes(ctx)
	if err != nil {
		a.ui.PrintUrgent(fmt.Sprintf("Error loading recipes: %v", err))
		return
	}

	a.ui.PrintStage("Available recipes:")
	a.ui.Println("")
	for i, r := range list {
		a.ui.PrintInstruction(fmt.Sprintf("[%d] %s", i+1, r.Name))
		a.ui.PrintHint(r.Description)
		a.ui.Println("")
	}
	a.ui.PrintNote("Pick a recipe by number or id, then 'start' when your starter is fed.")
}

func (a *cliApp) selectRecipe(ctx context.Context, payload string) {
	list, err := a.engine.ListRecipes(ctx)
	if err != nil {
		a.ui.PrintUrgent(fmt.Sprintf("Error: %v", err))
		return
	}

	id := payload
	if idx, err := strconv.Atoi(payload); err == nil {
		if idx < 1 || idx > len(list) {
			a.ui.PrintHint(fmt.Sprintf("No recipe number %d — type 'list' to see them.", idx))
			return
		}
		id = list[idx-1].ID
	}

	st, err := a.engine.SelectRecipe(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrBakeInProgress) {
			a.ui.PrintHint("Finish or reset the current bake before switching recipes.")
			return
		}
		if errors.Is(err, domain.ErrRecipeNotFound) {
			a.ui.PrintHint(fmt.Sprintf("No recipe %q — type 'list' to see them.", id))
			return
		}
		a.ui.PrintUrgent(fmt.Sprintf("Error: %v", err))
		return
	}

	r := a.engine.Recipe()
	a.ui.PrintStage(fmt.Sprintf("=== %s ===", r.Name))
	a.ui.PrintInstruction(r.Description)
	a.ui.Println("")
	a.ui.PrintStage("Ingredients:")
	for _, ing := range r.Ingredients {
		a.ui.PrintInstruction(fmt.Sprintf("  - %d%s %s", ing.DefaultAmount, ing.Unit, ing.Name))
	}
	a.ui.Println("")
	a.ui.Println(display.RenderTimeline(r, a.engine.FlatStages(), -1, nil))
	a.ui.PrintNote(fmt.Sprintf("%d stages. Type 'start' when your starter is fed — or 'start x1.5' for a bigger batch, 'start fed 30m ago' if it's been resting.", st.StageCount))
}

var fedRe = regexp.MustCompile(`(?i)fed\s+(\S+)\s+ago`)

// parseStartArgs reads "x1.5" batch multipliers and "fed 30m ago" starter
// times out of the free-form start payload.
func parseStartArgs(payload string, now time.Time) (multiplier float64, fedAt time.Time, err error) {
	multiplier = 1
	for _, tok := range strings.Fields(payload) {
		if strings.HasPrefix(strings.ToLower(tok), "x") {
			m, perr := strconv.ParseFloat(tok[1:], 64)
			if perr != nil || m <= 0 {
				return 0, time.Time{}, fmt.Errorf("bad multiplier %q", tok)
			}
			multiplier = m
		}
	}
	if m := fedRe.FindStringSubmatch(payload); m != nil {
		d, perr := time.ParseDuration(m[1])
		if perr != nil || d < 0 {
			return 0, time.Time{}, fmt.Errorf("bad starter time %q", m[1])
		}
		fedAt = now.Add(-d)
	}
	return multiplier, fedAt, nil
}

func (a *cliApp) startBake(ctx context.Context, payload string) {
	multiplier, fedAt, err := parseStartArgs(payload, time.Now())
	if err != nil {
		a.ui.PrintHint(fmt.Sprintf("%v — try 'start x1.5 fed 30m ago'.", err))
		return
	}

	st, err := a.engine.StartBake(ctx, fedAt, multiplier)
	if err != nil {
		if errors.Is(err, domain.ErrRecipeNotFound) {
			a.ui.PrintHint("Pick a recipe first — type 'list'.")
			return
		}
		if errors.Is(err, domain.ErrBakeInProgress) {
			a.ui.PrintHint("A bake is already running. 'status' shows where you are; 'reset' abandons it.")
			return
		}
		a.ui.PrintUrgent(fmt.Sprintf("Error: %v", err))
		return
	}

	a.ui.PrintNote(fmt.Sprintf("Bake started: %s", st.RecipeName))
	if st.StarterExtraTime > 0 {
		a.ui.PrintHint(fmt.Sprintf("Your starter rested %s past its 2h target — it may be extra sour. Carrying on.", roundMinute(st.StarterExtraTime)))
	}
	a.showCurrent(ctx)
}

func (a *cliApp) starterReady(ctx context.Context) {
	_, err := a.engine.StarterReady(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrNoBake) {
			a.ui.PrintHint("No bake running — 'start' begins one.")
			return
		}
		a.ui.PrintHint("Nothing is waiting on your starter right now.")
		return
	}
	a.showCurrent(ctx)
}

// parseIngredientArgs reads "water=320 salt=9" overrides.
func parseIngredientArgs(payload string) (map[string]int, error) {
	if strings.TrimSpace(payload) == "" {
		return nil, nil
	}
	inputs := make(map[string]int)
	for _, tok := range strings.Fields(payload) {
		id, val, ok := strings.Cut(tok, "=")
		if !ok {
			return nil, fmt.Errorf("expected id=amount, got %q", tok)
		}
		n, err := strconv.Atoi(val)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("bad amount %q for %s", val, id)
		}
		inputs[id] = n
	}
	return inputs, nil
}

func (a *cliApp) completeStage(ctx context.Context, payload string) {
	inputs, err := parseIngredientArgs(payload)
	if err != nil {
		a.ui.PrintHint(fmt.Sprintf("%v — try 'complete water=320'.", err))
		return
	}

	st, err := a.engine.CompleteStage(ctx, inputs)
	if err != nil {
		a.printNavError(err)
		return
	}
	a.afterStageBegin(ctx, st)
}

func (a *cliApp) skipStage(ctx context.Context) {
	st, err := a.engine.SkipStage(ctx)
	if err != nil {
		a.printNavError(err)
		return
	}
	a.ui.PrintHint("Stage skipped — logged with default amounts.")
	a.afterStageBegin(ctx, st)
}

// afterStageBegin reports what complete/skip led to: a running timer, the
// next stage card, or the finished bake.
func (a *cliApp) afterStageBegin(ctx context.Context, st *engine.State) {
	switch st.Phase {
	case engine.PhaseStageTimer:
		a.ui.PrintNote(fmt.Sprintf("Timer running: %s. I'll call you — 'next' moves on when you're ready.", roundMinute(st.TimerRemaining)))
	case engine.PhaseComplete:
		a.showSummary()
	default:
		a.showCurrent(ctx)
	}
}

func (a *cliApp) advance(ctx context.Context) {
	st, err := a.engine.Advance(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidNavigation) {
			a.ui.PrintHint("Nothing to advance from — 'complete' or 'skip' the current stage first.")
			return
		}
		a.printNavError(err)
		return
	}

	if st.Phase == engine.PhaseComplete {
		a.ui.PrintNote("That was the last stage — your bake is done!")
		a.ui.Println("")
		a.showSummary()
		return
	}
	a.showCurrent(ctx)
}

// resolveStage maps a display number like "4" or "3.2" to a flat index.
func (a *cliApp) resolveStage(payload string) (int, bool) {
	for i, s := range a.engine.FlatStages() {
		if s.DisplayNumber == payload {
			return i, true
		}
	}
	return 0, false
}

func (a *cliApp) viewStage(ctx context.Context, payload string) {
	// Before a recipe is loaded, a bare number is a recipe pick.
	if a.engine.Recipe() == nil {
		a.selectRecipe(ctx, payload)
		return
	}

	idx, ok := a.resolveStage(payload)
	if !ok {
		a.ui.PrintHint(fmt.Sprintf("No stage %q — 'status' shows the timeline.", payload))
		return
	}

	st, err := a.engine.ViewStage(idx)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidNavigation) {
			a.ui.PrintHint("You're already on that stage.")
			return
		}
		a.printNavError(err)
		return
	}
	a.showViewing(ctx, st)
}

func (a *cliApp) back(ctx context.Context) {
	a.engine.Back()
	a.showCurrent(ctx)
}

func (a *cliApp) jump(ctx context.Context, payload string) {
	idx, ok := a.resolveStage(payload)
	if !ok {
		a.ui.PrintHint(fmt.Sprintf("No stage %q to jump to.", payload))
		return
	}

	_, err := a.engine.JumpTo(ctx, idx, a.pendingJump == idx)
	if errors.Is(err, domain.ErrConfirmationRequired) {
		a.pendingJump = idx
		skipped := idx - a.engine.State().Cursor
		a.ui.PrintHint(fmt.Sprintf("That skips %d stage(s); they'll be logged as skipped with default amounts. Type 'jump %s' again to confirm.", skipped, payload))
		return
	}
	if err != nil {
		if errors.Is(err, domain.ErrInvalidNavigation) {
			a.ui.PrintHint("Jumps only go forward — pick a later stage.")
			return
		}
		a.printNavError(err)
		return
	}

	a.pendingJump = -1
	a.ui.PrintHint(fmt.Sprintf("Jumped to stage %s.", payload))
	a.showCurrent(ctx)
}

func (a *cliApp) toggleHelper(ctx context.Context) {
	st, err := a.engine.ToggleHelper(ctx)
	if err != nil {
		a.ui.PrintHint("This stage has no helper timer.")
		return
	}
	if st.HelperRunning {
		a.ui.PrintNote(fmt.Sprintf("Helper timer running: %s.", roundSecond(st.HelperRemaining)))
	} else {
		a.ui.PrintNote(fmt.Sprintf("Helper timer paused at %s — 'helper' resumes it.", roundSecond(st.HelperRemaining)))
	}
}

func (a *cliApp) status(ctx context.Context) {
	st := a.engine.State()
	r := a.engine.Recipe()
	if r == nil {
		a.ui.PrintHint("No recipe selected. 'list' shows the collection.")
		return
	}

	a.ui.PrintStage(fmt.Sprintf("=== %s ===", st.RecipeName))
	switch st.Phase {
	case engine.PhaseIdle:
		a.ui.PrintHint("Not started — 'start' begins the bake.")
	case engine.PhaseStarterWait:
		if st.StarterDone {
			a.ui.PrintInstruction("Starter is ready — type 'ready' to begin.")
		} else {
			a.ui.PrintInstruction(fmt.Sprintf("Waiting on the starter: %s to go ('ready' proceeds early).", roundMinute(st.StarterRemaining)))
		}
	case engine.PhaseStageTimer:
		if st.TimerDone {
			a.ui.PrintInstruction("Stage timer is done — 'next' moves on.")
		} else {
			a.ui.PrintInstruction(fmt.Sprintf("Stage %d/%d, timer %s remaining.", st.Cursor+1, st.StageCount, roundMinute(st.TimerRemaining)))
		}
	case engine.PhaseComplete:
		a.ui.PrintInstruction("Bake complete — 'summary' shows the report.")
	default:
		a.ui.PrintInstruction(fmt.Sprintf("On stage %d/%d.", st.Cursor+1, st.StageCount))
	}
	if st.Multiplier != 1 {
		a.ui.PrintHint(fmt.Sprintf("Batch: x%.2g", st.Multiplier))
	}
	a.ui.Println("")
	a.ui.Println(display.RenderTimeline(r, a.engine.FlatStages(), st.Cursor, a.engine.BakeLog()))
	a.ui.PrintHint("Type a stage number to peek at it.")
}

func (a *cliApp) showSummary() {
	log := a.engine.BakeLog()
	if log == nil || !log.Started() {
		a.ui.PrintHint("Nothing to summarize yet.")
		return
	}
	for _, line := range strings.Split(strings.TrimRight(summary.Build(log).Render(), "\n"), "\n") {
		a.ui.PrintInstruction(line)
	}
}

func (a *cliApp) reset(ctx context.Context) {
	if !a.confirmReset {
		a.confirmReset = true
		a.ui.PrintHint("This abandons the bake and erases its log. Type 'reset' again to confirm.")
		return
	}
	a.confirmReset = false
	if _, err := a.engine.Reset(ctx); err != nil {
		a.ui.PrintUrgent(fmt.Sprintf("Error: %v", err))
		return
	}
	a.ui.PrintNote("Bake abandoned. 'list' to start fresh.")
}

func (a *cliApp) quit(ctx context.Context) {
	if st := a.engine.State(); st.Phase != engine.PhaseIdle && st.Phase != engine.PhaseComplete {
		a.ui.PrintNote("Progress saved — run levain again to pick up where you left off.")
		// Brief pause so the line lands before teardown.
		time.Sleep(200 * time.Millisecond)
	}
	a.ui.Quit()
}

// ── stage rendering ──────────────────────────────────────────────

// showCurrent draws whatever the engine is waiting on.
func (a *cliApp) showCurrent(ctx context.Context) {
	st := a.engine.State()
	switch st.Phase {
	case engine.PhaseIdle:
		a.ui.PrintHint("No bake running — 'start' begins one.")
	case engine.PhaseStarterWait:
		if st.StarterDone {
			a.ui.PrintNote("Starter is ready! Type 'ready' to begin the first stage.")
		} else {
			a.ui.PrintNote(fmt.Sprintf("Starter is resting: %s until it hits the 2h mark. 'ready' proceeds early.", roundMinute(st.StarterRemaining)))
		}
	case engine.PhaseStageTimer:
		if st.TimerDone {
			next := st.NextStage
			if next == "" {
				next = "the finish line"
			}
			a.ui.PrintNote(fmt.Sprintf("Time's up! 'next' takes you to %s.", next))
		} else {
			a.ui.PrintNote(fmt.Sprintf("Timer running: %s remaining. 'next' moves on early if the dough says so.", roundMinute(st.TimerRemaining)))
		}
	case engine.PhaseComplete:
		a.showSummary()
	default:
		a.showStageCard(ctx, st)
	}
}

func (a *cliApp) showStageCard(ctx context.Context, st *engine.State) {
	stage := st.Stage
	if stage == nil {
		return
	}

	header := fmt.Sprintf("Stage %s — %s", stage.DisplayNumber, stage.Name)
	if stage.ParentName != "" {
		header = fmt.Sprintf("Stage %s — %s: %s", stage.DisplayNumber, stage.ParentName, stage.Name)
	}
	if stage.DurationMinutes > 0 {
		header += fmt.Sprintf(" (~%dm)", stage.DurationMinutes)
	}
	a.ui.PrintStage(header)

	a.printInstructions(ctx, stage.InstructionsFile)

	if prompts := a.engine.IngredientPrompts(*stage); len(prompts) > 0 {
		a.ui.Println("")
		a.ui.PrintStage("Measure out:")
		var example []string
		for _, p := range prompts {
			a.ui.PrintInstruction(fmt.Sprintf("  - %s: %d%s", p.Name, p.ScaledDefault, p.Unit))
			example = append(example, fmt.Sprintf("%s=%d", p.ID, p.ScaledDefault))
		}
		a.ui.PrintHint(fmt.Sprintf("'complete' uses those amounts, or override: complete %s", strings.Join(example, " ")))
	} else {
		a.ui.PrintHint("'complete' when done, 'skip' to pass, or a stage number to peek around.")
	}

	if st.HelperConfigured && !st.HelperRunning {
		a.ui.PrintHint(fmt.Sprintf("Helper timer available (%s) — type 'helper' to run it.", roundSecond(st.HelperRemaining)))
	}
}

func (a *cliApp) printInstructions(ctx context.Context, ref string) {
	page, err := a.content.Page(ctx, ref)
	if err != nil {
		if !errors.Is(err, domain.ErrContentUnavailable) {
			a.log.Error("loading instructions: %v", err)
		}
		a.ui.PrintHint("(no written instructions for this stage)")
		return
	}
	for _, p := range page.Body {
		a.ui.PrintInstruction(p)
	}
	for _, tip := range page.Tips {
		a.ui.PrintTip(tip)
	}
}

func (a *cliApp) showViewing(ctx context.Context, st *engine.State) {
	v := st.Viewing
	if v == nil {
		return
	}

	header := fmt.Sprintf("Stage %s — %s", v.Stage.DisplayNumber, v.Stage.Name)
	switch {
	case v.Skipped:
		header += " (skipped)"
	case v.Completed && v.Duration != nil:
		header += fmt.Sprintf(" (done in %s)", roundMinute(*v.Duration))
	case v.IsFuture:
		header += " (upcoming)"
	}
	a.ui.PrintStage(header)
	a.printInstructions(ctx, v.Stage.InstructionsFile)
	a.ui.PrintHint("'back' returns to where you were.")
}

func (a *cliApp) printNavError(err error) {
	switch {
	case errors.Is(err, domain.ErrNoBake):
		a.ui.PrintHint("No bake running — 'start' begins one.")
	case errors.Is(err, domain.ErrBakeFinished):
		a.ui.PrintHint("This bake is finished — 'summary' shows the report, 'reset' clears it.")
	case errors.Is(err, domain.ErrInvalidNavigation):
		a.ui.PrintHint("Can't do that from here — 'status' shows where you are.")
	default:
		a.ui.PrintUrgent(fmt.Sprintf("Error: %v", err))
	}
}

func (a *cliApp) showHelp() {
	a.ui.PrintStage("Commands:")
	a.ui.PrintInstruction("  list / recipes      Show the recipe collection")
	a.ui.PrintInstruction("  select N            Choose a recipe by number or id")
	a.ui.PrintInstruction("  start [x1.5] [fed 30m ago]   Begin the bake")
	a.ui.PrintInstruction("  ready               Proceed when the starter wait is over")
	a.ui.PrintInstruction("  complete [id=amt]   Finish the stage (override ingredient amounts)")
	a.ui.PrintInstruction("  skip                Skip the stage, logging defaults")
	a.ui.PrintInstruction("  next / ok           Acknowledge the timer and move on")
	a.ui.PrintInstruction("  3.2                 Peek at a stage by number ('back' returns)")
	a.ui.PrintInstruction("  jump N              Skip ahead (asks for confirmation)")
	a.ui.PrintInstruction("  helper / pause      Start or pause the stage's helper timer")
	a.ui.PrintInstruction("  status / where      Show the timeline and timers")
	a.ui.PrintInstruction("  summary             Show the bake report")
	a.ui.PrintInstruction("  reset / abandon     Abandon the bake (asks for confirmation)")
	a.ui.PrintInstruction("  quit                Exit — an unfinished bake resumes next run")
}

func roundMinute(d time.Duration) string {
	return fmtShort(d.Round(time.Minute))
}

func roundSecond(d time.Duration) string {
	return fmtShort(d.Round(time.Second))
}

func fmtShort(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	switch {
	case h > 0:
		return fmt.Sprintf("%dh %dm", h, m)
	case m > 0 && s > 0:
		return fmt.Sprintf("%dm %ds", m, s)
	case m > 0:
		return fmt.Sprintf("%dm", m)
	default:
		return fmt.Sprintf("%ds", s)
	}
}
