package random

import (
	"fmt"
	"strconv"

	"github.com/xtding233/progression-engine/internal/gameerr"
)

// Draw reports whether an event of probability p happens. Certain outcomes
// (p of exactly 0 or 1) are decided without reading src, so scripted
// sequences only advance on real rolls.
func Draw(p float64, src Source) (bool, error) {
	if err := ValidateProb(p); err != nil {
		return false, err
	}
	switch p {
	case 0:
		return false, nil
	case 1:
		return true, nil
	}
	return OrDefault(src).Float64() < p, nil
}

// ValidateProb returns a CodeInvalidProbability error unless p is a finite
// value in [0, 1].
func ValidateProb(p float64) error {
	if p >= 0 && p <= 1 {
		return nil
	}
	return gameerr.WithMetadata(gameerr.CodeInvalidProbability,
		fmt.Sprintf("probability %v is outside [0, 1]", p),
		map[string]string{"p": strconv.FormatFloat(p, 'g', -1, 64)})
}
