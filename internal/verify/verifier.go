// Package verify re-checks every exercise when the learner believes the
// whole catalogue is done.
package verify

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/thruflo/rustlings/internal/catalogue"
	"github.com/thruflo/rustlings/internal/check"
	"github.com/thruflo/rustlings/internal/cmdrunner"
	"github.com/thruflo/rustlings/internal/logging"
)

// Checker checks a single exercise.
type Checker interface {
	Check(ctx context.Context, ex catalogue.Exercise) (check.Outcome, error)
}

// ProgressFunc is called with the number of finished checks. An error
// aborts verification and is returned to the caller.
type ProgressFunc func(done, total int) error

// Result is the verification outcome. When AllDone is false, Failed is the
// lowest failing index and Outcome its check output.
type Result struct {
	AllDone bool
	Failed  int
	Outcome check.Outcome
}

// Options tunes the verifier.
type Options struct {
	// MaxWorkers caps concurrent checks. Zero means one per exercise.
	MaxWorkers int
}

// Verifier checks the whole catalogue in parallel.
type Verifier struct {
	checker    Checker
	exercises  []catalogue.Exercise
	maxWorkers int
}

// New creates a Verifier over exercises.
func New(checker Checker, exercises []catalogue.Exercise, opts Options) *Verifier {
	return &Verifier{
		checker:    checker,
		exercises:  exercises,
		maxWorkers: opts.MaxWorkers,
	}
}

// Verify checks every exercise and returns the lowest failing index, or
// AllDone. Checks run concurrently; if a worker cannot spawn its process
// the parallel phase is abandoned and the remaining exercises are checked
// one at a time, reusing results that already completed.
func (v *Verifier) Verify(ctx context.Context, progress ProgressFunc) (Result, error) {
	n := len(v.exercises)
	if progress == nil {
		progress = func(int, int) error { return nil }
	}
	if err := progress(0, n); err != nil {
		return Result{}, err
	}
	if n == 0 {
		return Result{AllDone: true}, nil
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gctx := errgroup.WithContext(runCtx)
	if v.maxWorkers > 0 {
		g.SetLimit(v.maxWorkers)
	}

	// results[i] is written by worker i before it sends i on completed.
	results := make([]check.Outcome, n)
	completed := make(chan int, n)
	launched := make(chan struct{})

	go func() {
		defer close(launched)
		for i := range n {
			if gctx.Err() != nil {
				return
			}
			g.Go(func() error {
				out, err := v.checker.Check(gctx, v.exercises[i])
				if err != nil {
					return err
				}
				results[i] = out
				completed <- i
				return nil
			})
		}
	}()

	stop := func() error {
		cancel()
		<-launched
		return g.Wait()
	}

	known := make([]bool, n)
	nDone := 0
	cursor := 0

	receive := func(i int) error {
		known[i] = true
		nDone++
		return progress(nDone, n)
	}

parallel:
	for {
		for cursor < n && known[cursor] {
			if !results[cursor].Success {
				_ = stop()
				return failed(cursor, results[cursor]), nil
			}
			cursor++
		}
		if cursor == n {
			break
		}

		select {
		case i := <-completed:
			if err := receive(i); err != nil {
				_ = stop()
				return Result{}, err
			}
		case <-gctx.Done():
			break parallel
		}
	}

	err := stop()
	if cursor == n {
		return Result{AllDone: true}, nil
	}

	// Pick up checks that finished before the group was cancelled.
	for drained := false; !drained; {
		select {
		case i := <-completed:
			if perr := receive(i); perr != nil {
				return Result{}, perr
			}
		default:
			drained = true
		}
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		return Result{}, ctxErr
	}
	if !cmdrunner.IsSpawnError(err) {
		if err == nil {
			err = errors.New("verification stopped unexpectedly")
		}
		return Result{}, err
	}

	logging.Warn("failed to spawn a parallel check, continuing sequentially",
		"from", v.exercises[cursor].Name, "error", err)

	for i := cursor; i < n; i++ {
		if !known[i] {
			out, err := v.checker.Check(ctx, v.exercises[i])
			if err != nil {
				return Result{}, fmt.Errorf("failed to check %s: %w", v.exercises[i].Name, err)
			}
			results[i] = out
			if err := receive(i); err != nil {
				return Result{}, err
			}
		}
		if !results[i].Success {
			return failed(i, results[i]), nil
		}
	}

	return Result{AllDone: true}, nil
}

func failed(i int, out check.Outcome) Result {
	return Result{Failed: i, Outcome: out}
}
