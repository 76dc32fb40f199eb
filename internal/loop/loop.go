package loop

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/thruflo/rustlings/internal/catalogue"
	"github.com/thruflo/rustlings/internal/check"
	"github.com/thruflo/rustlings/internal/logging"
	"github.com/thruflo/rustlings/internal/state"
	"github.com/thruflo/rustlings/internal/tui"
	"github.com/thruflo/rustlings/internal/verify"
)

// ExitReason indicates why the loop stopped.
type ExitReason int

const (
	ExitReasonUnknown     ExitReason = iota
	ExitReasonQuit                   // User pressed q or ctrl+c
	ExitReasonFinished               // Every exercise verified
	ExitReasonCancelled              // Context cancelled
	ExitReasonInputClosed            // Keyboard input ended
	ExitReasonError                  // Fatal error, see Result.Error
)

// String returns a human-readable description of the exit reason.
func (r ExitReason) String() string {
	switch r {
	case ExitReasonQuit:
		return "quit"
	case ExitReasonFinished:
		return "finished"
	case ExitReasonCancelled:
		return "cancelled"
	case ExitReasonInputClosed:
		return "input closed"
	case ExitReasonError:
		return "error"
	default:
		return "unknown"
	}
}

// Result contains the outcome of a loop execution.
type Result struct {
	Reason ExitReason
	Error  error
}

// Checker checks a single exercise.
type Checker interface {
	Check(ctx context.Context, ex catalogue.Exercise) (check.Outcome, error)
}

// Verifier re-checks the whole catalogue.
type Verifier interface {
	Verify(ctx context.Context, progress verify.ProgressFunc) (verify.Result, error)
}

type phase int

const (
	phaseIdle phase = iota
	phaseRunning
	phaseVerifying
	phaseWelcome
	phaseHint
	phaseNext
	phaseList
	phaseFinished
)

// defaultFinalMessage is shown when the manifest has none.
const defaultFinalMessage = "You finished all the exercises. Congratulations!"

// Options holds the loop's dependencies and settings.
type Options struct {
	Catalogue *catalogue.Catalogue
	Store     *state.Store
	Checker   Checker
	Verifier  Verifier
	Renderer  tui.Renderer
	// Events is the single input queue. Closing it ends the loop.
	Events <-chan Event

	// ManualRun disables re-checking on file changes; 'r' re-runs instead.
	ManualRun bool
	// ConfirmAdvance waits for 'n' or enter after a successful check.
	ConfirmAdvance bool
	// Width is the initial terminal width.
	Width int
	// Link formats an exercise path for display. Defaults to the plain path.
	Link func(ex catalogue.Exercise) string
	// Welcome is shown before the first check when non-empty.
	Welcome string
}

// Loop is the interactive watch-mode state machine. All state is owned by
// the goroutine calling Run; checks run on a separate goroutine and report
// back through an internal channel.
type Loop struct {
	cat      *catalogue.Catalogue
	store    *state.Store
	checker  Checker
	verifier Verifier
	renderer tui.Renderer
	events   <-chan Event

	manualRun      bool
	confirmAdvance bool
	width          int
	link           func(ex catalogue.Exercise) string
	welcome        string

	jobs      chan jobEvent
	gen       int
	cancelJob context.CancelFunc
	jobDone   chan struct{}
	cancelled bool

	// A file change seen while a check was running or an overlay was open.
	pendingRerun bool
	rerunIndex   int

	phase       phase
	returnPhase phase
	output      []byte
	succeeded   bool
	showHint    bool
	notices     []string
	verified    int
	selected    int
}

// New creates a Loop.
func New(opts Options) *Loop {
	width := opts.Width
	if width <= 0 {
		width = tui.DefaultWidth
	}
	link := opts.Link
	if link == nil {
		link = func(ex catalogue.Exercise) string { return ex.Path }
	}

	return &Loop{
		cat:            opts.Catalogue,
		store:          opts.Store,
		checker:        opts.Checker,
		verifier:       opts.Verifier,
		renderer:       opts.Renderer,
		events:         opts.Events,
		manualRun:      opts.ManualRun,
		confirmAdvance: opts.ConfirmAdvance,
		width:          width,
		link:           link,
		welcome:        opts.Welcome,
		jobs:           make(chan jobEvent, 16),
	}
}

// Run drives the loop until the learner quits, every exercise is verified,
// or a fatal error occurs. A running check is cancelled before Run returns.
func (l *Loop) Run(ctx context.Context) Result {
	defer l.saveOnExit()
	defer l.stopJob()

	if l.welcome != "" {
		l.phase = phaseWelcome
		l.render()
	} else {
		l.startCheck(ctx)
	}

	for {
		select {
		case <-ctx.Done():
			return Result{Reason: ExitReasonCancelled}

		case ev, ok := <-l.events:
			if !ok {
				return Result{Reason: ExitReasonInputClosed}
			}
			if res, done := l.handleEvent(ctx, ev); done {
				return res
			}

		case ev := <-l.jobs:
			if res, done := l.handleJob(ctx, ev); done {
				return res
			}
		}
	}
}

func (l *Loop) handleEvent(ctx context.Context, ev Event) (Result, bool) {
	switch ev := ev.(type) {
	case FileChanged:
		l.onFileChanged(ctx, ev.Index)

	case KeyPressed:
		return l.onKey(ctx, ev.Shortcut)

	case TerminalResized:
		if ev.Width > 0 {
			l.width = ev.Width
		}
		l.render()

	case WatcherFailed:
		return Result{Reason: ExitReasonError, Error: fmt.Errorf("file watcher failed: %w", ev.Err)}, true

	case InputClosed:
		err := ev.Err
		if errors.Is(err, io.EOF) {
			err = nil
		}
		return Result{Reason: ExitReasonInputClosed, Error: err}, true
	}
	return Result{}, false
}

func (l *Loop) onFileChanged(ctx context.Context, i int) {
	if l.manualRun {
		return
	}
	cur := l.store.Current()
	if i < 0 || i >= l.cat.Len() || i > cur {
		return
	}
	logging.Debug("exercise changed", "exercise", l.cat.Get(i).Name)

	switch l.phase {
	case phaseFinished:
	case phaseRunning, phaseVerifying:
		l.queueRerun(i)
		l.cancelRunning()
	case phaseList, phaseWelcome:
		l.queueRerun(i)
	default:
		l.checkAt(ctx, i)
	}
}

func (l *Loop) queueRerun(i int) {
	if !l.pendingRerun || i < l.rerunIndex {
		l.rerunIndex = i
	}
	l.pendingRerun = true
}

func (l *Loop) onKey(ctx context.Context, sc tui.Shortcut) (Result, bool) {
	if sc == tui.ShortcutQuit {
		return Result{Reason: ExitReasonQuit}, true
	}

	switch l.phase {
	case phaseRunning, phaseVerifying, phaseFinished:
		// Input other than quit is ignored while a check runs.

	case phaseWelcome:
		if sc == tui.ShortcutContinue {
			l.resume(ctx)
		}

	case phaseList:
		l.onListKey(ctx, sc)

	case phaseHint:
		switch sc {
		case tui.ShortcutContinue, tui.ShortcutHint, tui.ShortcutBack:
			l.showHint = false
			l.phase = l.returnPhase
			l.render()
		default:
			l.showHint = false
			l.phase = l.returnPhase
			l.onIdleKey(ctx, sc)
		}

	case phaseNext:
		if sc == tui.ShortcutNext || sc == tui.ShortcutContinue {
			l.advance(ctx)
			return Result{}, false
		}
		l.onIdleKey(ctx, sc)

	default:
		l.onIdleKey(ctx, sc)
	}
	return Result{}, false
}

func (l *Loop) onIdleKey(ctx context.Context, sc tui.Shortcut) {
	switch sc {
	case tui.ShortcutHint:
		l.returnPhase = l.phase
		l.showHint = true
		l.phase = phaseHint
		l.render()

	case tui.ShortcutRun:
		if l.manualRun {
			l.startCheck(ctx)
		}

	case tui.ShortcutNext:
		cur := l.store.Current()
		if err := l.store.MarkDone(cur); err != nil {
			l.noteStateError(err)
		}
		l.advance(ctx)

	case tui.ShortcutList:
		l.returnPhase = l.phase
		l.selected = l.store.Current()
		l.phase = phaseList
		l.render()
	}
}

func (l *Loop) onListKey(ctx context.Context, sc tui.Shortcut) {
	switch sc {
	case tui.ShortcutUp:
		if l.selected > 0 {
			l.selected--
		}
		l.render()

	case tui.ShortcutDown:
		if l.selected < l.cat.Len()-1 {
			l.selected++
		}
		l.render()

	case tui.ShortcutContinue:
		l.checkAt(ctx, l.selected)

	case tui.ShortcutBack, tui.ShortcutList:
		if l.pendingRerun {
			l.resume(ctx)
			return
		}
		l.phase = l.returnPhase
		l.render()
	}
}

// resume leaves an overlay that deferred checking.
func (l *Loop) resume(ctx context.Context) {
	if l.pendingRerun {
		l.checkAt(ctx, l.rerunIndex)
		return
	}
	l.startCheck(ctx)
}

func (l *Loop) checkAt(ctx context.Context, i int) {
	l.setCurrent(i)
	l.startCheck(ctx)
}

func (l *Loop) setCurrent(i int) {
	if err := l.store.SetCurrent(i); err != nil {
		l.noteStateError(err)
	}
}

// advance moves to the next pending exercise, or verifies everything when
// none is left. The state flush happens before the next screen is drawn.
func (l *Loop) advance(ctx context.Context) {
	next, ok := l.store.NextPending()
	if !ok {
		l.startVerify(ctx)
		return
	}
	l.checkAt(ctx, next)
}

func (l *Loop) startCheck(ctx context.Context) {
	i := l.store.Current()
	ex := l.cat.Get(i)

	l.pendingRerun = false
	l.output = nil
	l.succeeded = false
	l.showHint = false
	l.phase = phaseRunning
	l.render()

	l.startJob(ctx, func(jobCtx context.Context, gen int) jobEvent {
		out, err := l.checker.Check(jobCtx, ex)
		return checkDone{gen: gen, index: i, outcome: out, err: err}
	})
}

func (l *Loop) startVerify(ctx context.Context) {
	l.pendingRerun = false
	l.output = nil
	l.succeeded = false
	l.showHint = false
	l.verified = 0
	l.phase = phaseVerifying
	l.render()

	jobs := l.jobs
	l.startJob(ctx, func(jobCtx context.Context, gen int) jobEvent {
		res, err := l.verifier.Verify(jobCtx, func(done, total int) error {
			select {
			case jobs <- verifyProgress{gen: gen, done: done, total: total}:
				return nil
			case <-jobCtx.Done():
				return jobCtx.Err()
			}
		})
		return verifyDone{gen: gen, result: res, err: err}
	})
}

// startJob runs fn on its own goroutine. At most one job exists at a time;
// its final event is always delivered on l.jobs.
func (l *Loop) startJob(ctx context.Context, fn func(ctx context.Context, gen int) jobEvent) {
	l.gen++
	gen := l.gen
	jobCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})

	l.cancelJob = cancel
	l.jobDone = done
	l.cancelled = false

	jobs := l.jobs
	go func() {
		defer close(done)
		jobs <- fn(jobCtx, gen)
	}()
}

// cancelRunning kills the running job. Its final event still arrives and is
// discarded.
func (l *Loop) cancelRunning() {
	if l.cancelJob != nil && !l.cancelled {
		l.cancelled = true
		l.cancelJob()
	}
}

// finishJob releases the finished job and reports whether it was cancelled.
func (l *Loop) finishJob() bool {
	if l.cancelJob != nil {
		l.cancelJob()
	}
	l.cancelJob = nil
	l.jobDone = nil
	cancelled := l.cancelled
	l.cancelled = false
	return cancelled
}

// stopJob cancels the running job and waits for its goroutine to exit.
func (l *Loop) stopJob() {
	if l.cancelJob == nil {
		return
	}
	l.cancelJob()
	for {
		select {
		case <-l.jobs:
		case <-l.jobDone:
			l.cancelJob = nil
			l.jobDone = nil
			return
		}
	}
}

func (l *Loop) handleJob(ctx context.Context, ev jobEvent) (Result, bool) {
	if ctx.Err() != nil {
		return Result{Reason: ExitReasonCancelled}, true
	}
	if ev.jobGen() != l.gen {
		return Result{}, false
	}

	switch ev := ev.(type) {
	case verifyProgress:
		if l.cancelled {
			return Result{}, false
		}
		l.verified = ev.done
		l.render()

	case checkDone:
		if l.finishJob() {
			l.afterCancel(ctx)
			return Result{}, false
		}
		if ev.err != nil {
			return Result{
				Reason: ExitReasonError,
				Error:  fmt.Errorf("failed to check %s: %w", l.cat.Get(ev.index).Name, ev.err),
			}, true
		}
		l.onCheckDone(ctx, ev.index, ev.outcome)

	case verifyDone:
		if l.finishJob() {
			l.afterCancel(ctx)
			return Result{}, false
		}
		if ev.err != nil {
			return Result{Reason: ExitReasonError, Error: fmt.Errorf("failed to verify exercises: %w", ev.err)}, true
		}
		return l.onVerifyDone(ev.result)
	}
	return Result{}, false
}

func (l *Loop) afterCancel(ctx context.Context) {
	if l.pendingRerun {
		l.checkAt(ctx, l.rerunIndex)
		return
	}
	l.phase = phaseIdle
	l.render()
}

func (l *Loop) onCheckDone(ctx context.Context, i int, outcome check.Outcome) {
	l.output = outcome.Output

	if !outcome.Success {
		l.phase = phaseIdle
		if err := l.store.MarkPending(i); err != nil {
			l.noteStateError(err)
		}
		l.render()
		return
	}

	l.succeeded = true
	if err := l.store.MarkDone(i); err != nil {
		l.noteStateError(err)
	}
	if l.confirmAdvance {
		l.phase = phaseNext
		l.render()
		return
	}
	l.advance(ctx)
}

func (l *Loop) onVerifyDone(res verify.Result) (Result, bool) {
	if res.AllDone {
		l.phase = phaseFinished
		l.render()
		return Result{Reason: ExitReasonFinished}, true
	}

	k := res.Failed
	logging.Info("verification found a failing exercise", "exercise", l.cat.Get(k).Name)
	if err := l.store.MarkPending(k); err != nil {
		l.noteStateError(err)
	}
	l.setCurrent(k)
	l.output = res.Outcome.Output
	l.succeeded = false
	l.phase = phaseIdle
	l.render()
	return Result{}, false
}

func (l *Loop) noteStateError(err error) {
	logging.Warn("failed to save progress", "error", err)
	l.addNotice("Failed to save your progress: " + err.Error())
}

// saveOnExit makes a last attempt to write progress a failed flush left
// only in memory.
func (l *Loop) saveOnExit() {
	if !l.store.Dirty() {
		return
	}
	if err := l.store.Flush(); err != nil {
		logging.Warn("failed to save progress on exit", "error", err)
	}
}

func (l *Loop) addNotice(msg string) {
	if slices.Contains(l.notices, msg) {
		return
	}
	l.notices = append(l.notices, msg)
}

func (l *Loop) render() {
	if err := l.draw(); err != nil {
		logging.Warn("failed to render", "error", err)
		// Pending notices stay queued for the next frame that draws.
		l.addNotice("Failed to draw the screen: " + err.Error())
		return
	}
	l.notices = l.notices[:0]
}

// screen collects the first renderer error so draw reads top to bottom.
type screen struct {
	r   tui.Renderer
	err error
}

func (s *screen) do(fn func(r tui.Renderer) error) {
	if s.err == nil {
		s.err = fn(s.r)
	}
}

func (s *screen) text(str string) {
	s.do(func(r tui.Renderer) error { return r.WriteOutput([]byte(str)) })
}

type listWriter interface {
	WriteList(rows []tui.ListRow, selected, width int) error
}

func (l *Loop) draw() error {
	s := &screen{r: l.renderer}
	s.do(tui.Renderer.Clear)

	switch l.phase {
	case phaseWelcome:
		s.text(strings.TrimRight(l.welcome, "\n") + "\n\n")
		s.do(func(r tui.Renderer) error { return r.Prompt(tui.PromptContinue) })
		return s.err

	case phaseList:
		rows := l.listRows()
		if lw, ok := l.renderer.(listWriter); ok {
			s.do(func(tui.Renderer) error { return lw.WriteList(rows, l.selected, l.width) })
		} else {
			s.text(tui.RenderList(rows, l.selected, l.width, false))
		}
		s.do(func(r tui.Renderer) error { return r.Prompt(tui.PromptList) })
		return s.err

	case phaseVerifying:
		s.text("All exercises seem to be done.\nRecompiling and running all exercises to make sure that all of them are actually done.\n\n")
		s.do(func(r tui.Renderer) error { return r.WriteProgressBar(l.verified, l.cat.Len(), l.width) })
		s.do(func(r tui.Renderer) error { return r.Prompt(tui.PromptChecking) })
		return s.err

	case phaseFinished:
		s.do(func(r tui.Renderer) error { return r.WriteProgressBar(l.store.NDone(), l.cat.Len(), l.width) })
		msg := l.cat.FinalMessage()
		if msg == "" {
			msg = defaultFinalMessage
		}
		s.text("\n" + strings.TrimRight(msg, "\n") + "\n")
		return s.err
	}

	ex := l.cat.Get(l.store.Current())
	if len(l.output) > 0 {
		s.text(string(l.output))
		if l.output[len(l.output)-1] != '\n' {
			s.text("\n")
		}
		s.text("\n")
	}
	if l.succeeded {
		s.text("✓ Successfully ran " + ex.Path + "\n\n")
	}
	if l.showHint {
		hint := ex.Hint
		if hint == "" {
			hint = "No hint for this exercise."
		}
		s.do(func(r tui.Renderer) error { return r.ShowHint(hint) })
	}
	for _, n := range l.notices {
		s.text(n + "\n")
	}
	s.do(func(r tui.Renderer) error { return r.WriteProgressBar(l.store.NDone(), l.cat.Len(), l.width) })
	s.text("Current exercise: " + l.link(ex) + "\n\n")
	s.do(func(r tui.Renderer) error { return r.Prompt(l.promptKind()) })
	return s.err
}

func (l *Loop) promptKind() tui.PromptKind {
	switch l.phase {
	case phaseRunning:
		return tui.PromptChecking
	case phaseHint:
		return tui.PromptContinue
	case phaseNext:
		return tui.PromptNext
	}
	if l.manualRun {
		return tui.PromptManual
	}
	return tui.PromptWatch
}

func (l *Loop) listRows() []tui.ListRow {
	cur := l.store.Current()
	rows := make([]tui.ListRow, 0, l.cat.Len())
	for i, ex := range l.cat.All() {
		rows = append(rows, tui.ListRow{
			Name:    ex.Name,
			Path:    ex.Path,
			Done:    l.store.Done(i),
			Current: i == cur,
		})
	}
	return rows
}
