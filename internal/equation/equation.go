package equation

import (
	"fmt"
	"math"
	"math/rand"
	"slices"
	"sync"
	"time"
)

// MaxStrength bounds the size of a single perturbation
const MaxStrength = 0.5

// Coefficients parameterize a sum of sigmoids plus linear terms:
// f(x) = Σ Alpha[i] / (1 + e^(-K[i]·x)) + Beta[i]·x
type Coefficients struct {
	Alpha []float64 `json:"alpha"`
	K     []float64 `json:"k"`
	Beta  []float64 `json:"beta"`
}

// DefaultCoefficients returns the three-term starting point
func DefaultCoefficients() Coefficients {
	return Coefficients{
		Alpha: []float64{1.0, 0.5, 0.3},
		K:     []float64{2, 3, 4},
		Beta:  []float64{0.1, 0.05, 0.02},
	}
}

// Clone returns a deep copy
func (c Coefficients) Clone() Coefficients {
	return Coefficients{
		Alpha: slices.Clone(c.Alpha),
		K:     slices.Clone(c.K),
		Beta:  slices.Clone(c.Beta),
	}
}

// Validate checks that the three arrays line up
func (c Coefficients) Validate() error {
	if len(c.Alpha) == 0 {
		return fmt.Errorf("no coefficients")
	}
	if len(c.Alpha) != len(c.K) || len(c.Alpha) != len(c.Beta) {
		return fmt.Errorf("coefficient length mismatch: alpha=%d k=%d beta=%d", len(c.Alpha), len(c.K), len(c.Beta))
	}
	return nil
}

// Snapshot records one perturbation
type Snapshot struct {
	Step        int          `json:"step"`
	Strength    float64      `json:"strength"`
	Before      Coefficients `json:"before"`
	After       Coefficients `json:"after"`
	ScoreBefore float64      `json:"score_before"`
	ScoreAfter  float64      `json:"score_after"`
	Timestamp   time.Time    `json:"timestamp"`
}

// Config holds random-walk settings
type Config struct {
	LearningRate float64 `mapstructure:"learning_rate"`
	HistorySize  int     `mapstructure:"history_size"`
	Seed         int64   `mapstructure:"seed"` // Zero seeds from the clock
}

// DefaultConfig returns the default walk configuration
func DefaultConfig() *Config {
	return &Config{
		LearningRate: 0.01,
		HistorySize:  100,
	}
}

// Equation is a coefficient set that can be evaluated and randomly perturbed.
// Perturbations are a bounded random walk; nothing guarantees they improve
// any score, they are only recorded.
type Equation struct {
	coeffs  Coefficients
	config  *Config
	rng     *rand.Rand
	history []Snapshot
	steps   int
	mu      sync.Mutex
}

// New creates an equation starting from coeffs
func New(coeffs Coefficients, config *Config) (*Equation, error) {
	if err := coeffs.Validate(); err != nil {
		return nil, err
	}
	if config == nil {
		config = DefaultConfig()
	}
	seed := config.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Equation{
		coeffs: coeffs.Clone(),
		config: config,
		rng:    rand.New(rand.NewSource(seed)),
	}, nil
}

// Coefficients returns a copy of the current coefficients
func (e *Equation) Coefficients() Coefficients {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.coeffs.Clone()
}

// Evaluate computes f(x) for every input
func (e *Equation) Evaluate(xs []float64) []float64 {
	return Evaluate(e.Coefficients(), xs)
}

// Evaluate computes f(x) for every input with the given coefficients
func Evaluate(c Coefficients, xs []float64) []float64 {
	out := make([]float64, len(xs))
	for i, x := range xs {
		y := 0.0
		for j := range c.Alpha {
			y += c.Alpha[j]/(1+math.Exp(-c.K[j]*x)) + c.Beta[j]*x
		}
		out[i] = y
	}
	return out
}

// Score rates the current coefficients on xs. It never fails: invalid
// numbers or evaluation panics score 0.
func (e *Equation) Score(xs, target []float64) float64 {
	return Score(e.Coefficients(), xs, target)
}

// Score rates coefficients against target (1/(1+MSE)) or, without a target,
// by the smoothness of the curve over xs
func Score(c Coefficients, xs, target []float64) float64 {
	return SafeEval(func() float64 {
		if err := c.Validate(); err != nil {
			panic(err)
		}
		ys := Evaluate(c, xs)
		if len(target) > 0 {
			if len(target) != len(ys) {
				panic(fmt.Sprintf("target length %d does not match inputs %d", len(target), len(ys)))
			}
			mse := 0.0
			for i := range ys {
				d := ys[i] - target[i]
				mse += d * d
			}
			mse /= float64(len(ys))
			return 1 / (1 + mse)
		}
		if len(ys) < 3 {
			return 0
		}
		curvature := 0.0
		for i := 1; i < len(ys)-1; i++ {
			curvature += math.Abs(ys[i+1] - 2*ys[i] + ys[i-1])
		}
		return 1 / (1 + curvature/float64(len(ys)-2))
	}, 0)
}

// SafeEval runs fn and substitutes def when it panics or yields NaN or Inf
func SafeEval(fn func() float64, def float64) (v float64) {
	defer func() {
		if r := recover(); r != nil {
			v = def
		}
	}()
	v = fn()
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return def
	}
	return v
}

// Strength returns the perturbation size for the next step. It grows with
// the number of recorded steps and is capped at MaxStrength.
func (e *Equation) Strength() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.strengthLocked()
}

func (e *Equation) strengthLocked() float64 {
	s := e.config.LearningRate * (1 + float64(len(e.history))*0.1)
	return math.Min(math.Max(s, 0), MaxStrength)
}

// Perturb shifts every coefficient by a uniform offset in [-strength, strength]
// and records the change. Strength is capped at MaxStrength.
func (e *Equation) Perturb(strength float64, xs, target []float64) Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()

	strength = math.Min(math.Abs(strength), MaxStrength)
	before := e.coeffs.Clone()

	jitter := func(vals []float64) {
		for i := range vals {
			vals[i] += (e.rng.Float64() - 0.5) * 2 * strength
		}
	}
	jitter(e.coeffs.Alpha)
	jitter(e.coeffs.K)
	jitter(e.coeffs.Beta)

	e.steps++
	snap := Snapshot{
		Step:        e.steps,
		Strength:    strength,
		Before:      before,
		After:       e.coeffs.Clone(),
		ScoreBefore: Score(before, xs, target),
		ScoreAfter:  Score(e.coeffs, xs, target),
		Timestamp:   time.Now(),
	}

	e.history = append(e.history, snap)
	if limit := e.config.HistorySize; limit > 0 && len(e.history) > limit {
		e.history = e.history[len(e.history)-limit:]
	}

	return snap
}

// Walk performs up to steps perturbations at the scheduled strength and
// stops early once a step lowers the score
func (e *Equation) Walk(xs, target []float64, steps int) []Snapshot {
	snaps := make([]Snapshot, 0, steps)
	for i := 0; i < steps; i++ {
		snap := e.Perturb(e.Strength(), xs, target)
		snaps = append(snaps, snap)
		if snap.ScoreAfter < snap.ScoreBefore {
			break
		}
	}
	return snaps
}

// History returns the recorded snapshots, oldest first
func (e *Equation) History() []Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]Snapshot(nil), e.history...)
}
