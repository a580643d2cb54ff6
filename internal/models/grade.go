package models

// LetterGrade is the fixed five-step grade scale. LetterGradeNone is the
// sentinel used before any grade has been recorded.
type LetterGrade string

const (
	LetterGradeNone LetterGrade = "-"
	LetterGradeA    LetterGrade = "A"
	LetterGradeB    LetterGrade = "B"
	LetterGradeC    LetterGrade = "C"
	LetterGradeD    LetterGrade = "D"
	LetterGradeF    LetterGrade = "F"
)

// Numeric grade bounds and the fixed letter thresholds (inclusive lower
// bounds).
const (
	MinGrade = 0.0
	MaxGrade = 100.0

	gradeAMin = 90.0
	gradeBMin = 80.0
	gradeCMin = 70.0
	gradeDMin = 60.0
)

// ValidGrade reports whether the numeric score is inside [0, 100].
func ValidGrade(score float64) bool {
	return score >= MinGrade && score <= MaxGrade
}

// LetterGradeFor converts a numeric score to its letter grade.
func LetterGradeFor(score float64) LetterGrade {
	switch {
	case score >= gradeAMin:
		return LetterGradeA
	case score >= gradeBMin:
		return LetterGradeB
	case score >= gradeCMin:
		return LetterGradeC
	case score >= gradeDMin:
		return LetterGradeD
	default:
		return LetterGradeF
	}
}

// Points returns the GPA value for the letter grade (A=4.0 down to F=0.0).
func (g LetterGrade) Points() float64 {
	switch g {
	case LetterGradeA:
		return 4.0
	case LetterGradeB:
		return 3.0
	case LetterGradeC:
		return 2.0
	case LetterGradeD:
		return 1.0
	default:
		return 0.0
	}
}
