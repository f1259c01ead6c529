package damage

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCalculateWorkedExamples(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name                 string
		attack, defense, pen int
		want                 int
	}{
		{"player vs boss", 20, 8, 5, 19},
		{"boss vs player", 15, 10, 0, 13},
		{"penetration exceeds defense", 50, 10, 30, 50},
		{"floor at ten percent", 100, 100000, 0, 10},
		{"tiny attack still lands", 3, 5000, 0, 1},
		{"zero attack", 0, 0, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, Calculate(tt.attack, tt.defense, tt.pen))
		})
	}
}

func TestCalculateBounds(t *testing.T) {
	t.Parallel()

	for _, atk := range []int{1, 7, 20, 150, 2000} {
		prev := math.MaxInt
		for def := 0; def <= 3000; def += 7 {
			got := Calculate(atk, def, 0)
			assert.GreaterOrEqual(t, got, int(math.Floor(float64(atk)*MinRatio)))
			assert.GreaterOrEqual(t, got, 1)
			assert.LessOrEqual(t, got, atk)
			assert.LessOrEqual(t, got, prev, "damage must not grow with defense")
			prev = got
		}
	}
}

func TestReductionStrictlyIncreasing(t *testing.T) {
	t.Parallel()

	prev := -1.0
	for d := 0; d < 100000; d += 97 {
		r := Reduction(d)
		assert.Greater(t, r, prev)
		assert.Less(t, r, 1.0)
		prev = r
	}
	assert.Equal(t, 0.0, Reduction(-5))
}

func TestCritical(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 30, Critical(20, 0.5))
	assert.Equal(t, 20, Critical(20, 0))
	assert.Equal(t, 41, Critical(19, 1.2))
}
