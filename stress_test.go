package cannon

import (
	"fmt"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// StressTestMatrix is a numerically awkward operand family.
type StressTestMatrix struct {
	Name        string
	Generator   func(rng *rand.Rand, n int) []float64
	Description string
	// Tolerance overrides DefaultTolerance when set
	Tolerance *ToleranceConfig
}

const (
	CancellationBase    = 1e6
	DenormalBase        = 1e-310
	LargeValueThreshold = 1e150

	NaNProbability    = 0.01
	InfProbability    = 0.02
	NegInfProbability = 0.03
)

var stressMatrices = []StressTestMatrix{
	{
		Name:        "IllConditioned",
		Description: "Exponentially decaying diagonal with tiny off-diagonal noise",
		Generator: func(rng *rand.Rand, n int) []float64 {
			data := make([]float64, n*n)
			for i := 0; i < n; i++ {
				for j := 0; j < n; j++ {
					if i == j {
						data[i*n+j] = math.Pow(10, float64(-i)/2)
					} else {
						data[i*n+j] = rng.NormFloat64() * 1e-6
					}
				}
			}
			return data
		},
	},
	{
		Name:        "CatastrophicCancellation",
		Description: "Alternating large values that cancel in every row",
		Generator: func(rng *rand.Rand, n int) []float64 {
			data := make([]float64, n*n)
			for i := range data {
				sign := 1.0
				if i%2 == 1 {
					sign = -1
				}
				data[i] = sign*CancellationBase + rng.Float64()
			}
			return data
		},
		// Products are ~1e12, so rounding in the partial sums is ~1e-4 each.
		Tolerance: &ToleranceConfig{AbsTol: 1, RelTol: 1e-6, CheckNaN: true, CheckInf: true},
	},
	{
		Name:        "DenormalHeavy",
		Description: "Subnormal values whose products underflow",
		Generator: func(rng *rand.Rand, n int) []float64 {
			data := make([]float64, n*n)
			for i := range data {
				data[i] = DenormalBase * rng.Float64()
			}
			return data
		},
	},
	{
		Name:        "LargeValues",
		Description: "Values whose products approach the top of the float64 range",
		Generator: func(rng *rand.Rand, n int) []float64 {
			data := make([]float64, n*n)
			for i := range data {
				data[i] = LargeValueThreshold * (1 + rng.NormFloat64()*0.1)
			}
			return data
		},
	},
	{
		Name:        "NaNInfected",
		Description: "Scattered NaN and ±Inf that must propagate identically",
		Generator: func(rng *rand.Rand, n int) []float64 {
			data := make([]float64, n*n)
			for i := range data {
				switch r := rng.Float64(); {
				case r < NaNProbability:
					data[i] = math.NaN()
				case r < InfProbability:
					data[i] = math.Inf(1)
				case r < NegInfProbability:
					data[i] = math.Inf(-1)
				default:
					data[i] = rng.Float64()
				}
			}
			return data
		},
	},
	{
		Name:        "HighFrequency",
		Description: "Rapid oscillation pattern",
		Generator: func(_ *rand.Rand, n int) []float64 {
			data := make([]float64, n*n)
			for i := range data {
				x := float64(i) * 0.1
				data[i] = math.Sin(x) * math.Cos(x*17) * math.Sin(x*31)
			}
			return data
		},
	},
}

// TestStressMatrices compares the distributed product with the sequential
// one on awkward operands, for every kernel and for the default one. NaN and
// Inf must propagate exactly as in Reference.Multiply.
func TestStressMatrices(t *testing.T) {
	if testing.Short() {
		t.Skip("stress")
	}
	rng := rand.New(rand.NewSource(1234))
	for _, n := range []int{7, 32, 45} {
		for _, procs := range []int{4, 9} {
			for _, sm := range stressMatrices {
				for _, kernel := range []string{"", "reference", "gonum"} {
					t.Run(fmt.Sprintf("%s/n=%d/P=%d/kernel=%q", sm.Name, n, procs, kernel), func(t *testing.T) {
						a, b := sm.Generator(rng, n), sm.Generator(rng, n)
						want := make([]float64, n*n)
						Reference{}.Multiply(n, a, b, want)

						data := newData(n, a, b)
						_, err := MultiplyLocal(procs, data, Options{Kernel: kernel})
						require.NoError(t, err)

						tol := DefaultTolerance()
						if sm.Tolerance != nil {
							tol = *sm.Tolerance
						}
						res := VerifyFloat64Array(want, data.C, tol)
						assert.True(t, res.Passed(), "%s\n%s", sm.Description, res)
					})
				}
			}
		}
	}
}
