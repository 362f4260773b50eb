package model

import "strings"

// Grade is a discrete performance tier, F through SSS. "?" marks an
// unrecognized grade.
type Grade string

// Known grades.
const (
	GradeUnknown Grade = "?"
	GradeF       Grade = "F"
	GradeD       Grade = "D"
	GradeDPlus   Grade = "D+"
	GradeC       Grade = "C"
	GradeCPlus   Grade = "C+"
	GradeB       Grade = "B"
	GradeBPlus   Grade = "B+"
	GradeA       Grade = "A"
	GradeAPlus   Grade = "A+"
	GradeS       Grade = "S"
	GradeSS      Grade = "SS"
	GradeSSS     Grade = "SSS"
)

var gradeOrder = map[Grade]int{
	GradeUnknown: 0,
	GradeF:       1,
	GradeD:       2,
	GradeDPlus:   3,
	GradeC:       4,
	GradeCPlus:   5,
	GradeB:       6,
	GradeBPlus:   7,
	GradeA:       8,
	GradeAPlus:   9,
	GradeS:       10,
	GradeSS:      11,
	GradeSSS:     12,
}

// Rank returns the comparable position of g in the grade order.
// Unknown spellings rank alongside "?".
func (g Grade) Rank() int {
	return gradeOrder[g]
}

// Bucket strips the "+" suffix for histogram bucketing, so A and A+
// land in the same bucket. Comparison order is unaffected.
func (g Grade) Bucket() string {
	return strings.TrimSuffix(string(g), "+")
}

// IsKnown reports whether g is a recognized, non-"?" grade.
func (g Grade) IsKnown() bool {
	return g != GradeUnknown && gradeOrder[g] > 0
}
