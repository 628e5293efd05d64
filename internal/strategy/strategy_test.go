package strategy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/causimlabs/causim/internal/graph"
)

// =============================================================================
// SinglePass Tests
// =============================================================================

func TestSinglePass_RunsExactlyOnce(t *testing.T) {
	s := NewSinglePass()

	assert.True(t, s.ShouldContinue(0, nil))
	assert.False(t, s.ShouldContinue(1, Outputs{}))
	assert.False(t, s.ShouldContinue(2, Outputs{}))
}

func TestSinglePass_BackEdgeDefaultsAlwaysEmpty(t *testing.T) {
	s := NewSinglePass()

	previous := Outputs{"A": graph.Record{"out": 5.0}}
	assert.Empty(t, s.BackEdgeDefaults(1, nil))
	assert.Empty(t, s.BackEdgeDefaults(2, previous))
}

// =============================================================================
// MultiPass Tests
// =============================================================================

func TestNewMultiPass_RejectsNonPositiveCount(t *testing.T) {
	for _, n := range []int{0, -1, -100} {
		_, err := NewMultiPass(n)
		require.Error(t, err)
		assert.True(t, IsConfigError(err))
		assert.Contains(t, err.Error(), "CONFIG_ERROR")
	}
}

func TestMultiPass_RunsFixedIterations(t *testing.T) {
	s, err := NewMultiPass(3)
	require.NoError(t, err)

	assert.True(t, s.ShouldContinue(1, Outputs{}))
	assert.True(t, s.ShouldContinue(2, Outputs{}))
	assert.False(t, s.ShouldContinue(3, Outputs{}))
}

func TestMultiPass_BackEdgeDefaults_EmptyOnFirstIteration(t *testing.T) {
	s, err := NewMultiPass(3)
	require.NoError(t, err)

	assert.Empty(t, s.BackEdgeDefaults(1, nil))
}

func TestMultiPass_BackEdgeDefaults_ScansNumericFields(t *testing.T) {
	s, err := NewMultiPass(3)
	require.NoError(t, err)

	previous := Outputs{
		"A": graph.Record{"out": 2.5, "label": "steady"},
		"B": graph.Record{"out": 7, "aux": int64(3)},
	}

	defaults := s.BackEdgeDefaults(2, previous)
	assert.Equal(t, map[string]float64{
		"A.out": 2.5,
		"B.out": 7,
		"B.aux": 3,
	}, defaults)
}

// =============================================================================
// Convergence Tests
// =============================================================================

func TestNewConvergence_RejectsNegativeThreshold(t *testing.T) {
	_, err := NewConvergence(-0.5)
	require.Error(t, err)
	assert.True(t, IsConfigError(err))
}

func TestNewConvergence_RejectsBadCap(t *testing.T) {
	_, err := NewConvergence(0.1, WithMaxIterations(0))
	require.Error(t, err)
	assert.True(t, IsConfigError(err))
}

func TestConvergence_DefaultCap(t *testing.T) {
	s, err := NewConvergence(0.1)
	require.NoError(t, err)
	assert.Equal(t, DefaultConvergenceMaxIterations, s.maxIterations)
}

func TestConvergence_FirstCallEstablishesBaseline(t *testing.T) {
	s, err := NewConvergence(0.1)
	require.NoError(t, err)

	// No previous snapshot yet: must continue regardless of the outputs.
	assert.True(t, s.ShouldContinue(1, Outputs{"A": graph.Record{"out": 1.0}}))
}

func TestConvergence_StopsWhenStable(t *testing.T) {
	s, err := NewConvergence(0.1)
	require.NoError(t, err)

	require.True(t, s.ShouldContinue(1, Outputs{"A": graph.Record{"out": 1.0}}))
	require.True(t, s.ShouldContinue(2, Outputs{"A": graph.Record{"out": 1.5}}))
	assert.False(t, s.ShouldContinue(3, Outputs{"A": graph.Record{"out": 1.55}}))
}

func TestConvergence_ThresholdIsStrict(t *testing.T) {
	s, err := NewConvergence(0.1)
	require.NoError(t, err)

	require.True(t, s.ShouldContinue(1, Outputs{"A": graph.Record{"out": 1.0}}))
	// Delta exactly equal to the threshold is not converged.
	assert.True(t, s.ShouldContinue(2, Outputs{"A": graph.Record{"out": 1.1}}))
}

func TestConvergence_CapStopsDivergentRun(t *testing.T) {
	s, err := NewConvergence(0.001, WithMaxIterations(5))
	require.NoError(t, err)

	value := 0.0
	for i := 1; i < 5; i++ {
		value += 10
		require.True(t, s.ShouldContinue(i, Outputs{"A": graph.Record{"out": value}}), "iteration %d", i)
	}
	assert.False(t, s.ShouldContinue(5, Outputs{"A": graph.Record{"out": value + 10}}))
}

func TestConvergence_NodeCountMismatch_NotConverged(t *testing.T) {
	s, err := NewConvergence(0.1)
	require.NoError(t, err)

	require.True(t, s.ShouldContinue(1, Outputs{"A": graph.Record{"out": 1.0}}))
	assert.True(t, s.ShouldContinue(2, Outputs{
		"A": graph.Record{"out": 1.0},
		"B": graph.Record{"out": 1.0},
	}))
}

func TestConvergence_FieldShapeMismatch_NotConverged(t *testing.T) {
	s, err := NewConvergence(0.1)
	require.NoError(t, err)

	require.True(t, s.ShouldContinue(1, Outputs{"A": graph.Record{"out": 1.0}}))
	assert.True(t, s.ShouldContinue(2, Outputs{"A": graph.Record{"total": 1.0}}))
}

func TestConvergence_NumericFlip_NotConverged(t *testing.T) {
	s, err := NewConvergence(0.1)
	require.NoError(t, err)

	require.True(t, s.ShouldContinue(1, Outputs{"A": graph.Record{"out": 1.0}}))
	assert.True(t, s.ShouldContinue(2, Outputs{"A": graph.Record{"out": "done"}}))
}

func TestConvergence_NonNumericFieldsIgnoredWhenStable(t *testing.T) {
	s, err := NewConvergence(0.1)
	require.NoError(t, err)

	require.True(t, s.ShouldContinue(1, Outputs{"A": graph.Record{"out": 1.0, "label": "x"}}))
	// label changed but stayed non-numeric; only numeric movement counts.
	assert.False(t, s.ShouldContinue(2, Outputs{"A": graph.Record{"out": 1.0, "label": "y"}}))
}

func TestConvergence_SnapshotIsDetached(t *testing.T) {
	s, err := NewConvergence(0.1)
	require.NoError(t, err)

	outputs := Outputs{"A": graph.Record{"out": 1.0}}
	require.True(t, s.ShouldContinue(1, outputs))

	// Mutating the caller's map must not disturb the stored baseline.
	outputs["A"]["out"] = 99.0
	assert.False(t, s.ShouldContinue(2, Outputs{"A": graph.Record{"out": 1.0}}))
}

// =============================================================================
// Helper Tests
// =============================================================================

func TestDefaultKey(t *testing.T) {
	assert.Equal(t, "A.out", DefaultKey("A", "out"))
}
