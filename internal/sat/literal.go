package sat

import "fmt"

// Literal represents a literal, which either represent a boolean variable or
// its negation.
type Literal int

// PositiveLiteral returns the positive literal of variable v.
func PositiveLiteral(v int) Literal {
	return Literal(v * 2)
}

// NegativeLiteral returns the negative literal of variable v.
func NegativeLiteral(v int) Literal {
	return Literal(v*2 + 1)
}

// FromDIMACS returns the Literal corresponding to a non-zero DIMACS literal.
// DIMACS literals are 1-based: l and -l both refer to variable l-1.
func FromDIMACS(l int) Literal {
	if l < 0 {
		return NegativeLiteral(-l - 1)
	}
	return PositiveLiteral(l - 1)
}

// VarID returns the ID of the literal's variable.
func (l Literal) VarID() int {
	return int(l) / 2
}

// IsPositive returns true if and only if the literal represent the value of
// its boolean variable (i.e. not its negation)
func (l Literal) IsPositive() bool {
	return l&1 == 0
}

// Opposite returns the opposite literal.
func (l Literal) Opposite() Literal {
	return l ^ 1
}

// DIMACS returns the 1-based signed integer form of the literal.
func (l Literal) DIMACS() int {
	if l.IsPositive() {
		return l.VarID() + 1
	}
	return -(l.VarID() + 1)
}

func (l Literal) String() string {
	if l.IsPositive() {
		return fmt.Sprintf("%d", l.VarID())
	} else {
		return fmt.Sprintf("!%d", l.VarID())
	}
}
