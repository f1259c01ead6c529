package item

import (
	"fmt"
	"strings"
)

// Grade is the item rarity ordinal: Common < Rare < Epic < Legendary < Mythic.
type Grade int

const (
	Common Grade = iota
	Rare
	Epic
	Legendary
	Mythic
)

// GradeCount is the number of grades.
const GradeCount = int(Mythic) + 1

// Grades lists every grade from commonest to rarest.
var Grades = []Grade{Common, Rare, Epic, Legendary, Mythic}

var gradeNames = [...]string{"common", "rare", "epic", "legendary", "mythic"}

func (g Grade) Valid() bool { return g >= Common && g <= Mythic }

func (g Grade) String() string {
	if !g.Valid() {
		return fmt.Sprintf("grade(%d)", int(g))
	}
	return gradeNames[g]
}

// ParseGrade accepts the lower-case grade name.
func ParseGrade(s string) (Grade, error) {
	for i, n := range gradeNames {
		if strings.EqualFold(s, n) {
			return Grade(i), nil
		}
	}
	return 0, fmt.Errorf("unknown grade %q", s)
}

func (g Grade) MarshalText() ([]byte, error) {
	if !g.Valid() {
		return nil, fmt.Errorf("invalid grade %d", int(g))
	}
	return []byte(g.String()), nil
}

func (g *Grade) UnmarshalText(b []byte) error {
	v, err := ParseGrade(string(b))
	if err != nil {
		return err
	}
	*g = v
	return nil
}
