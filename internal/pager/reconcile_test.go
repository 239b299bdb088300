package pager

import (
	"math/rand"
	"slices"
	"testing"

	"github.com/stretchr/testify/require"
)

// applyPlan applies a delta to a sorted index set the way the pager does
func applyPlan(loaded []int, d Delta) []int {
	out := slices.Clone(loaded)
	for _, idx := range d.Evicts {
		if i := slices.Index(out, idx); i >= 0 {
			out = slices.Delete(out, i, i+1)
		}
	}
	for _, l := range d.Loads {
		if l.Edge == EdgeFront {
			out = slices.Insert(out, 0, l.Index)
		} else {
			out = append(out, l.Index)
		}
	}
	return out
}

func TestPlanInitialFillOrder(t *testing.T) {
	d := Plan(5, 20, 3, nil)
	require.Empty(t, d.Evicts)
	require.Equal(t, []int{4, 3, 2, 5, 6, 7, 8}, d.Indices(), "center neighbours load before far edges")
	require.Equal(t, []int{2, 3, 4, 5, 6, 7, 8}, applyPlan(nil, d))
}

func TestPlanInitialFillCappedAtBounds(t *testing.T) {
	d := Plan(0, 5, 3, nil)
	require.Equal(t, []int{0, 1, 2, 3}, applyPlan(nil, d))

	d = Plan(4, 5, 3, nil)
	require.Equal(t, []int{1, 2, 3, 4}, applyPlan(nil, d))
}

func TestPlanZeroRadiusKeepsCurrent(t *testing.T) {
	d := Plan(3, 10, 0, nil)
	require.Equal(t, []int{3}, applyPlan(nil, d))

	d = Plan(4, 10, 0, []int{3})
	require.Equal(t, []int{3}, d.Evicts)
	require.Equal(t, []int{4}, applyPlan([]int{3}, d))
}

func TestPlanEmptySequenceEvictsAll(t *testing.T) {
	d := Plan(2, 0, 3, []int{0, 1, 2, 3})
	require.Empty(t, d.Loads)
	require.Equal(t, []int{0, 1, 2, 3}, d.Evicts)
}

func TestPlanIncrementalStep(t *testing.T) {
	loaded := []int{2, 3, 4, 5, 6, 7, 8}
	d := Plan(6, 20, 3, loaded)
	require.Equal(t, []int{2}, d.Evicts)
	require.Equal(t, []Load{{Index: 9, Edge: EdgeBack}}, d.Loads)
	require.Equal(t, []int{3, 4, 5, 6, 7, 8, 9}, applyPlan(loaded, d))
}

func TestPlanShrinkRecovery(t *testing.T) {
	loaded := []int{12, 13, 14, 15, 16, 17, 18}
	d := Plan(15, 10, 3, loaded)
	require.Equal(t, loaded, d.Evicts, "nothing survives a shrink below the band")
	require.Equal(t, []int{6, 7, 8, 9}, applyPlan(loaded, d))
}

func TestPlanShrinkWithoutIndexChange(t *testing.T) {
	loaded := []int{2, 3, 4, 5, 6, 7, 8}
	d := Plan(5, 7, 3, loaded)
	require.Equal(t, []int{7, 8}, d.Evicts)
	require.Empty(t, d.Loads)
}

func TestPlanFarJumpRefillsInBulk(t *testing.T) {
	loaded := []int{0, 1, 2, 3}
	d := Plan(50, 100, 3, loaded)
	require.Equal(t, loaded, d.Evicts)
	require.Equal(t, []int{49, 48, 47, 50, 51, 52, 53}, d.Indices())
}

func TestPlanProperties(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for round := 0; round < 200; round++ {
		length := rng.Intn(40)
		radius := rng.Intn(5)
		current := 0
		var loaded []int
		for step := 0; step < 30; step++ {
			switch rng.Intn(4) {
			case 0:
				current += rng.Intn(3) - 1
			case 1:
				current = rng.Intn(length + 2)
			case 2:
				length = max(0, length+rng.Intn(7)-3)
			default:
				current += rng.Intn(radius*2+1) - radius
			}
			current = Clamp(current, length)

			d := Plan(current, length, radius, loaded)
			loaded = applyPlan(loaded, d)

			if length == 0 {
				require.Empty(t, loaded)
				continue
			}
			require.True(t, slices.IsSorted(loaded), "window stays ordered: %v", loaded)
			require.Contains(t, loaded, current, "window contains the center")
			for i, idx := range loaded {
				require.GreaterOrEqual(t, idx, 0)
				require.Less(t, idx, length)
				require.LessOrEqual(t, abs(idx-current), radius)
				if i > 0 {
					require.Equal(t, loaded[i-1]+1, idx, "no gaps in %v", loaded)
				}
			}
			require.True(t, Plan(current, length, radius, loaded).Empty(), "plan is idempotent")
		}
	}
}

func TestClamp(t *testing.T) {
	require.Equal(t, 0, Clamp(5, 0))
	require.Equal(t, 0, Clamp(-3, 10))
	require.Equal(t, 9, Clamp(1000, 10))
	require.Equal(t, 4, Clamp(4, 10))
}
