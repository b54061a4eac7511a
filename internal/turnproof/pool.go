package turnproof

import (
	"context"
	"sync"

	"golang.org/x/sync/semaphore"

	"zkarena/internal/phase"
)

// Job is one Step request.
type Job struct {
	Prior    *Proof
	Claimed  phase.PhaseState
	Evidence Evidence
}

type Result struct {
	Proof *Proof
	Err   error
}

// Pool runs Step off the caller's goroutine with bounded parallelism. Steps
// of one chain still depend on each other; the pool only lets the caller
// move on while a proof is built.
type Pool struct {
	prover *Prover
	sem    *semaphore.Weighted
	wg     sync.WaitGroup
}

func NewPool(p *Prover, workers int64) *Pool {
	if workers < 1 {
		workers = 1
	}
	return &Pool{prover: p, sem: semaphore.NewWeighted(workers)}
}

// Submit schedules job. The returned channel yields exactly one Result and
// is then closed. A cancelled ctx yields its error and no proof.
func (pl *Pool) Submit(ctx context.Context, job Job) <-chan Result {
	out := make(chan Result, 1)
	pl.wg.Add(1)
	go func() {
		defer pl.wg.Done()
		defer close(out)
		if err := pl.sem.Acquire(ctx, 1); err != nil {
			out <- Result{Err: err}
			return
		}
		defer pl.sem.Release(1)
		proof, err := pl.prover.Step(ctx, job.Prior, job.Claimed, job.Evidence)
		out <- Result{Proof: proof, Err: err}
	}()
	return out
}

// Wait blocks until every submitted job has finished.
func (pl *Pool) Wait() { pl.wg.Wait() }
