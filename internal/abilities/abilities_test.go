package abilities

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestEngine builds an engine with a seeded source and synchronous
// commits, so every roll settles before the call returns.
func newTestEngine(t *testing.T, seed int64) *Engine {
	t.Helper()
	e, err := New(WithRand(rand.New(rand.NewSource(seed))), WithDwell(0), WithStagger(0))
	require.NoError(t, err)
	return e
}

func TestModifier_Table(t *testing.T) {
	cases := map[int]int{
		3:  -4,
		4:  -3,
		6:  -2,
		8:  -1,
		9:  -1,
		10: 0,
		11: 0,
		12: 1,
		15: 2,
		18: 4,
	}
	for value, want := range cases {
		assert.Equalf(t, want, Modifier(value), "modifier of %d", value)
	}
}

func TestNew_RollsAllSixInRange(t *testing.T) {
	for seed := int64(0); seed < 20; seed++ {
		e := newTestEngine(t, seed)
		for _, a := range All {
			s := e.Score(a)
			assert.GreaterOrEqual(t, s.Value, 3)
			assert.LessOrEqual(t, s.Value, 18)
			assert.Equal(t, Modifier(s.Value), s.Modifier)
		}
	}
}

func TestNew_InitialBudgets(t *testing.T) {
	e := newTestEngine(t, 1)

	for _, a := range All {
		assert.Equal(t, 3, e.RemainingRolls(a))
		assert.True(t, e.CanRollIndividual(a))
	}
	assert.Equal(t, 2, e.RemainingAllRolls())
	assert.True(t, e.CanRollAll())
}

func TestTotals_AlwaysSumOfScores(t *testing.T) {
	e := newTestEngine(t, 7)

	check := func() {
		wantScore, wantMod := 0, 0
		for _, s := range e.Scores() {
			wantScore += s.Value
			wantMod += s.Modifier
		}
		assert.Equal(t, wantScore, e.TotalScore())
		assert.Equal(t, wantMod, e.TotalModifier())
	}

	check()
	e.RollSingle(Strength)
	check()
	e.RollAll()
	check()
	e.RollSingle(Charisma)
	check()
}

func TestRollSingle_CapEnforced(t *testing.T) {
	e := newTestEngine(t, 3)

	for i := 0; i < MaxIndividualRolls; i++ {
		assert.True(t, e.RollSingle(Dexterity))
	}
	assert.Equal(t, 0, e.RemainingRolls(Dexterity))
	assert.False(t, e.CanRollIndividual(Dexterity))

	frozen := e.Score(Dexterity)
	for i := 0; i < 5; i++ {
		assert.False(t, e.RollSingle(Dexterity))
		assert.Equal(t, frozen, e.Score(Dexterity))
	}
	// Counter never exceeds the cap.
	assert.Equal(t, 0, e.RemainingRolls(Dexterity))

	// Other abilities are unaffected.
	assert.Equal(t, 3, e.RemainingRolls(Wisdom))
}

func TestRollAll_CapEnforced_AndIndependentOfIndividualBudgets(t *testing.T) {
	e := newTestEngine(t, 9)

	assert.True(t, e.RollAll())
	assert.Equal(t, 1, e.RemainingAllRolls())
	for _, a := range All {
		assert.Equal(t, 3, e.RemainingRolls(a))
	}

	assert.True(t, e.RollAll())
	assert.Equal(t, 0, e.RemainingAllRolls())
	assert.False(t, e.CanRollAll())

	before := e.Scores()
	assert.False(t, e.RollAll())
	assert.Equal(t, before, e.Scores())
	assert.Equal(t, 0, e.RemainingAllRolls())
}

func TestRollSingle_BusyAbilityIgnored(t *testing.T) {
	// Long dwell: the first roll is still settling when the second arrives.
	e, err := New(WithRand(rand.New(rand.NewSource(5))), WithDwell(time.Hour))
	require.NoError(t, err)

	assert.True(t, e.RollSingle(Strength))
	assert.True(t, e.Rolling(Strength))

	// Counter was consumed eagerly at request time.
	assert.Equal(t, 2, e.RemainingRolls(Strength))

	assert.False(t, e.RollSingle(Strength))
	assert.Equal(t, 2, e.RemainingRolls(Strength))

	// A different ability is not busy.
	assert.True(t, e.RollSingle(Wisdom))
}

func TestRollAll_BusyWhileSettling(t *testing.T) {
	e, err := New(WithRand(rand.New(rand.NewSource(5))), WithDwell(time.Hour))
	require.NoError(t, err)

	assert.True(t, e.RollAll())
	assert.False(t, e.RollAll())
	assert.Equal(t, 1, e.RemainingAllRolls())
}

func TestQualityBands(t *testing.T) {
	cases := []struct {
		total int
		want  QualityLevel
	}{
		{95, QualityExceptional},
		{90, QualityExceptional},
		{89, QualityExcellent},
		{80, QualityExcellent},
		{79, QualityGood},
		{70, QualityGood},
		{69, QualityAverage},
		{60, QualityAverage},
		{59, QualityBelowAverage},
		{18, QualityBelowAverage},
	}
	for _, tc := range cases {
		q := qualityFor(tc.total)
		assert.Equalf(t, tc.want, q.Level, "total %d", tc.total)
		assert.NotEmpty(t, q.Label)
	}
}

func TestShouldRecommendReroll_Boundaries(t *testing.T) {
	set := func(values map[Ability]int) *Engine {
		e := newTestEngine(t, 1)
		e.mu.Lock()
		for a, v := range values {
			e.scores[a] = Score{Value: v, Modifier: Modifier(v)}
		}
		e.mu.Unlock()
		return e
	}

	// Total exactly 60, min value 7: no recommendation.
	e := set(map[Ability]int{
		Strength: 10, Dexterity: 10, Intelligence: 10,
		Constitution: 10, Wisdom: 13, Charisma: 7,
	})
	assert.False(t, e.ShouldRecommendReroll())

	// Total 59: recommend.
	e = set(map[Ability]int{
		Strength: 10, Dexterity: 10, Intelligence: 10,
		Constitution: 10, Wisdom: 12, Charisma: 7,
	})
	assert.True(t, e.ShouldRecommendReroll())

	// Total well above 60 but one value at 6: recommend.
	e = set(map[Ability]int{
		Strength: 18, Dexterity: 18, Intelligence: 18,
		Constitution: 18, Wisdom: 18, Charisma: 6,
	})
	assert.True(t, e.ShouldRecommendReroll())

	// Same but min value 7: no recommendation.
	e = set(map[Ability]int{
		Strength: 18, Dexterity: 18, Intelligence: 18,
		Constitution: 18, Wisdom: 18, Charisma: 7,
	})
	assert.False(t, e.ShouldRecommendReroll())
}

func TestFreeze_MakesRollsNoOps(t *testing.T) {
	e := newTestEngine(t, 11)
	e.Freeze()

	before := e.Scores()
	assert.False(t, e.RollSingle(Strength))
	assert.False(t, e.RollAll())
	assert.Equal(t, before, e.Scores())
	assert.True(t, e.Frozen())

	// Budgets are not consumed by rejected rolls.
	assert.Equal(t, 3, e.RemainingRolls(Strength))
	assert.Equal(t, 2, e.RemainingAllRolls())
}

func TestSubmission_MatchesScores(t *testing.T) {
	e := newTestEngine(t, 13)

	sub := e.Submission()
	assert.Equal(t, e.Score(Strength).Value, sub.Strength)
	assert.Equal(t, e.Score(Dexterity).Value, sub.Dexterity)
	assert.Equal(t, e.Score(Intelligence).Value, sub.Intelligence)
	assert.Equal(t, e.Score(Constitution).Value, sub.Constitution)
	assert.Equal(t, e.Score(Wisdom).Value, sub.Wisdom)
	assert.Equal(t, e.Score(Charisma).Value, sub.Charisma)
}

func TestRollSingle_ChangesComeFromInjectedSource(t *testing.T) {
	// Two engines with the same seed produce identical score sets and
	// identical rerolls.
	a := newTestEngine(t, 99)
	b := newTestEngine(t, 99)
	assert.Equal(t, a.Scores(), b.Scores())

	a.RollSingle(Constitution)
	b.RollSingle(Constitution)
	assert.Equal(t, a.Scores(), b.Scores())
}
