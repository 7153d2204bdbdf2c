// Package abilities implements the locally-owned ability-score roll engine:
// six 3d6 scores with derived modifiers, independent retry budgets for
// per-ability and whole-set rerolls, and aggregate quality metrics.
package abilities

import (
	"math/rand"
	"sync"
	"time"

	"github.com/questforge/tabletop-client/internal/dice"
	"github.com/questforge/tabletop-client/internal/session"
)

// Ability names one of the six character attributes.
type Ability string

const (
	Strength     Ability = "strength"
	Dexterity    Ability = "dexterity"
	Intelligence Ability = "intelligence"
	Constitution Ability = "constitution"
	Wisdom       Ability = "wisdom"
	Charisma     Ability = "charisma"
)

// All lists the abilities in settle order for whole-set rerolls.
var All = []Ability{Strength, Dexterity, Intelligence, Constitution, Wisdom, Charisma}

// Retry budgets. The whole-set budget is independent of the per-ability ones.
const (
	MaxIndividualRolls = 3
	MaxAllRolls        = 2
)

// Score is one ability value and its derived modifier. Modifier is never set
// independently of Value.
type Score struct {
	Value    int
	Modifier int
}

// Modifier returns floor((value-10)/2), the D&D-style bonus for a score.
func Modifier(value int) int {
	d := value - 10
	if d < 0 {
		// Integer division truncates toward zero; negatives need a floor.
		return -((-d + 1) / 2)
	}
	return d / 2
}

// RollScore returns the sum of three independent d6 draws, in [3, 18].
// Pure function of the rng state.
func RollScore(rng *rand.Rand) int {
	res, err := dice.Roll(rng, 3, 6)
	if err != nil {
		// Unreachable: 3d6 is always a valid spec for dice.Roll.
		panic(err)
	}
	return res.Total
}

// QualityLevel is an ordered band classifying the total score.
type QualityLevel string

const (
	QualityExceptional  QualityLevel = "exceptional"
	QualityExcellent    QualityLevel = "excellent"
	QualityGood         QualityLevel = "good"
	QualityAverage      QualityLevel = "average"
	QualityBelowAverage QualityLevel = "below_average"
)

// Quality pairs a band with its descriptive label.
type Quality struct {
	Level QualityLevel
	Label string
}

func qualityFor(total int) Quality {
	switch {
	case total >= 90:
		return Quality{QualityExceptional, "Exceptional abilities"}
	case total >= 80:
		return Quality{QualityExcellent, "Excellent abilities"}
	case total >= 70:
		return Quality{QualityGood, "Good abilities"}
	case total >= 60:
		return Quality{QualityAverage, "Average abilities"}
	default:
		return Quality{QualityBelowAverage, "Below-average abilities"}
	}
}

// Engine holds one player's score set and its retry budgets.
//
// Rolled values are authoritative at request time; the dwell only delays when
// the new value becomes visible, for presentation pacing. A zero dwell
// commits synchronously, which is what tests use.
type Engine struct {
	mu      sync.Mutex
	rng     *rand.Rand
	dwell   time.Duration
	stagger time.Duration

	scores     map[Ability]Score
	rolling    map[Ability]bool
	rollCounts map[Ability]int
	allCount   int
	frozen     bool
}

// Option configures an Engine.
type Option func(*Engine)

// WithRand injects the random source. Tests pass a seeded source for exact
// outputs.
func WithRand(rng *rand.Rand) Option {
	return func(e *Engine) { e.rng = rng }
}

// WithDwell sets the presentational delay before a rolled value is committed.
// Zero commits synchronously.
func WithDwell(d time.Duration) Option {
	return func(e *Engine) { e.dwell = d }
}

// WithStagger sets the per-ability settle offset used by whole-set rerolls.
func WithStagger(d time.Duration) Option {
	return func(e *Engine) { e.stagger = d }
}

// New builds an engine with all six abilities freshly rolled, so a player
// always has a complete score set to inspect before any interaction.
func New(opts ...Option) (*Engine, error) {
	e := &Engine{
		dwell:      800 * time.Millisecond,
		stagger:    200 * time.Millisecond,
		scores:     make(map[Ability]Score, len(All)),
		rolling:    make(map[Ability]bool, len(All)),
		rollCounts: make(map[Ability]int, len(All)),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.rng == nil {
		seed, err := dice.NewSeed()
		if err != nil {
			return nil, err
		}
		e.rng = rand.New(rand.NewSource(seed))
	}

	for _, a := range All {
		v := RollScore(e.rng)
		e.scores[a] = Score{Value: v, Modifier: Modifier(v)}
	}
	return e, nil
}

// RollSingle rerolls one ability, consuming one of its individual retries.
//
// The call is a silent no-op when the ability's budget is exhausted, when it
// is still settling from a previous roll, or when the set is frozen; those
// are expected boundaries, not failures. The counter is incremented eagerly
// at request time so a burst of requests cannot exceed the cap before the
// first roll settles. Reports whether the roll was accepted.
func (e *Engine) RollSingle(a Ability) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.frozen || e.rolling[a] || e.rollCounts[a] >= MaxIndividualRolls {
		return false
	}

	e.rollCounts[a]++
	e.rolling[a] = true
	v := RollScore(e.rng)
	e.commitAfter(a, v, e.dwell)
	return true
}

// RollAll rerolls all six abilities, consuming one whole-set retry and none
// of the individual budgets. No-op when the whole-set budget is exhausted,
// while any ability is still settling, or when the set is frozen. Each
// ability settles at a distinct staggered offset. Reports whether the roll
// was accepted.
func (e *Engine) RollAll() bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.frozen || e.allCount >= MaxAllRolls {
		return false
	}
	for _, a := range All {
		if e.rolling[a] {
			return false
		}
	}

	e.allCount++
	for i, a := range All {
		e.rolling[a] = true
		v := RollScore(e.rng)
		e.commitAfter(a, v, e.dwell+time.Duration(i)*e.stagger)
	}
	return true
}

// commitAfter schedules the visible update for a value already rolled.
// Caller holds e.mu.
func (e *Engine) commitAfter(a Ability, value int, delay time.Duration) {
	if delay <= 0 {
		e.commit(a, value)
		return
	}
	time.AfterFunc(delay, func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		e.commit(a, value)
	})
}

// commit applies a settled value. Caller holds e.mu.
func (e *Engine) commit(a Ability, value int) {
	e.rolling[a] = false
	if e.frozen {
		// Submission was accepted while the roll was settling; keep the
		// frozen values.
		return
	}
	e.scores[a] = Score{Value: value, Modifier: Modifier(value)}
}

// Freeze makes the score set read-only. Called once the character submission
// is accepted; every later roll request is a no-op.
func (e *Engine) Freeze() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.frozen = true
}

// Frozen reports whether the set has been locked by a submission.
func (e *Engine) Frozen() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.frozen
}

// Score returns the current value and modifier for one ability.
func (e *Engine) Score(a Ability) Score {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.scores[a]
}

// Scores returns a copy of all six current scores.
func (e *Engine) Scores() map[Ability]Score {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make(map[Ability]Score, len(e.scores))
	for a, s := range e.scores {
		out[a] = s
	}
	return out
}

// Rolling reports whether an ability is still settling.
func (e *Engine) Rolling(a Ability) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.rolling[a]
}

// TotalScore sums the six current values. Always computed from the scores,
// never cached.
func (e *Engine) TotalScore() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	total := 0
	for _, s := range e.scores {
		total += s.Value
	}
	return total
}

// TotalModifier sums the six current modifiers.
func (e *Engine) TotalModifier() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	total := 0
	for _, s := range e.scores {
		total += s.Modifier
	}
	return total
}

// Quality classifies the current total into its band.
func (e *Engine) Quality() Quality {
	return qualityFor(e.TotalScore())
}

// ShouldRecommendReroll reports whether the set is weak enough to suggest
// rerolling: total below 60, or any single value of 6 or less.
func (e *Engine) ShouldRecommendReroll() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	total := 0
	for _, s := range e.scores {
		total += s.Value
		if s.Value <= 6 {
			return true
		}
	}
	return total < 60
}

// CanRollIndividual reports whether an ability has retries left. Mutating
// operations re-check this internally; UI state is advisory only.
func (e *Engine) CanRollIndividual(a Ability) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.rollCounts[a] < MaxIndividualRolls
}

// CanRollAll reports whether a whole-set retry remains.
func (e *Engine) CanRollAll() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.allCount < MaxAllRolls
}

// RemainingRolls returns the unspent individual retries for an ability.
func (e *Engine) RemainingRolls(a Ability) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return MaxIndividualRolls - e.rollCounts[a]
}

// RemainingAllRolls returns the unspent whole-set retries.
func (e *Engine) RemainingAllRolls() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return MaxAllRolls - e.allCount
}

// Submission converts the current scores into the wire shape submitted with
// a character.
func (e *Engine) Submission() session.CharacterAbilities {
	e.mu.Lock()
	defer e.mu.Unlock()
	return session.CharacterAbilities{
		Strength:     e.scores[Strength].Value,
		Dexterity:    e.scores[Dexterity].Value,
		Intelligence: e.scores[Intelligence].Value,
		Constitution: e.scores[Constitution].Value,
		Wisdom:       e.scores[Wisdom].Value,
		Charisma:     e.scores[Charisma].Value,
	}
}
