package turnproof

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"zkarena/internal/game"
)

func TestPool_RunsStep(t *testing.T) {
	f := newChainFixture(t)
	pool := NewPool(f.prover, 2)

	ev, s1 := f.move(f.base, 0, game.Position{X: 15, Y: 5}, 3, 1)
	res := <-pool.Submit(context.Background(), Job{Prior: f.base, Claimed: s1, Evidence: ev})
	require.NoError(t, res.Err)
	require.NoError(t, f.prover.Verifier().Verify(res.Proof))
	pool.Wait()
}

func TestPool_IndependentJobsInParallel(t *testing.T) {
	f := newChainFixture(t)
	pool := NewPool(f.prover, 2)

	// Two alternative first moves from the same base.
	evA, sA := f.move(f.base, 0, game.Position{X: 15, Y: 5}, 3, 1)
	evB, sB := f.move(f.base, 1, game.Position{X: 12, Y: 7}, 3, 1)
	chA := pool.Submit(context.Background(), Job{Prior: f.base, Claimed: sA, Evidence: evA})
	chB := pool.Submit(context.Background(), Job{Prior: f.base, Claimed: sB, Evidence: evB})
	pool.Wait()

	a, b := <-chA, <-chB
	require.NoError(t, a.Err)
	require.NoError(t, b.Err)
	require.False(t, a.Proof.State.Equal(b.Proof.State))
}

func TestPool_CancelledJobYieldsNoProof(t *testing.T) {
	f := newChainFixture(t)
	pool := NewPool(f.prover, 1)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ev, s1 := f.move(f.base, 0, game.Position{X: 15, Y: 5}, 3, 1)
	res, ok := <-pool.Submit(ctx, Job{Prior: f.base, Claimed: s1, Evidence: ev})
	require.True(t, ok)
	require.Error(t, res.Err)
	require.Nil(t, res.Proof)
	pool.Wait()
}
