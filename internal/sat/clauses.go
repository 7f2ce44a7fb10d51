package sat

import (
	"strings"
)

// Clause is a disjunction of at least two literals. Clauses are immutable
// once attached to a solver, except for the internal rotation of their
// literals performed by Propagate to maintain the two watches in positions
// 0 and 1.
type Clause struct {
	literals []Literal
}

// NewClause normalizes the given literals and attaches the resulting clause
// to the solver. The second return value is false if the clause makes the
// instance trivially unsatisfiable (i.e. it is empty, or it is unit and its
// literal is already false at the root level).
//
// Normalization drops duplicated literals, discards tautological clauses,
// and removes literals that are already false at the root level. Unit
// clauses are not materialized: their literal is enqueued directly.
func NewClause(s *Solver, tmpLiterals []Literal) (*Clause, bool) {
	size := len(tmpLiterals)
	seen := map[Literal]struct{}{}

	for i := size - 1; i >= 0; i-- {
		// If the opposite literal is in the clause, then the clause is
		// always true.
		if _, ok := seen[tmpLiterals[i].Opposite()]; ok {
			return nil, true
		}

		// Remove the literal if it is already present.
		if _, ok := seen[tmpLiterals[i]]; ok {
			size--
			tmpLiterals[i], tmpLiterals[size] = tmpLiterals[size], tmpLiterals[i]
			continue
		}

		seen[tmpLiterals[i]] = struct{}{}

		switch s.LitValue(tmpLiterals[i]) {
		case True:
			return nil, true // clause is already true at the root
		case False:
			size--
			tmpLiterals[i], tmpLiterals[size] = tmpLiterals[size], tmpLiterals[i]
		}
	}

	tmpLiterals = tmpLiterals[:size]

	switch size {
	case 0:
		// Empty clauses cannot be valid.
		return nil, false
	case 1:
		// Directly enqueue unit facts.
		return nil, s.enqueue(tmpLiterals[0])
	default:
		c := &Clause{}
		c.literals = make([]Literal, 0, len(tmpLiterals))
		c.literals = append(c.literals, tmpLiterals...)

		s.Watch(c, c.literals[0].Opposite(), c.literals[1])
		s.Watch(c, c.literals[1].Opposite(), c.literals[0])

		return c, true
	}
}

// Literals returns the clause's literals. The returned slice is owned by the
// clause and must not be modified.
func (c *Clause) Literals() []Literal {
	return c.literals
}

// Propagate reacts to literal l having been assigned true, which falsifies
// one of the clause's two watched literals. It either moves the watch to a
// non-false literal, detects that the clause is satisfied, or enqueues the
// remaining watched literal as a unit consequence. It returns false if the
// clause is conflicting under the current assignment.
func (c *Clause) Propagate(s *Solver, l Literal) bool {
	// Make sure that the triggering literal is c.literals[1]. This simplifies
	// the rest of this function as c.literals[0] is always the literal to be
	// potentially enqueued (if all other literals are false).
	opp := l.Opposite()
	if c.literals[0] == opp {
		c.literals[0] = c.literals[1]
		c.literals[1] = opp
	}

	// If c.literals[0] is True, then the clause is already true.
	if s.LitValue(c.literals[0]) == True {
		s.Watch(c, l, c.literals[0])
		return true
	}

	// Look for a new literal to watch. If another literal set to true is found,
	// then the clause is already true.
	for i := 2; i < len(c.literals); i++ {
		if s.LitValue(c.literals[i]) != False {
			c.literals[1] = c.literals[i]
			c.literals[i] = l.Opposite()
			s.Watch(c, c.literals[1].Opposite(), c.literals[0])
			return true
		}
	}

	// The first literal must be true if all other literals are false.
	s.Watch(c, l, c.literals[0])
	return s.enqueue(c.literals[0])
}

// isSatisfied returns true if at least one of the clause's literals is true
// under the current assignment.
func (c *Clause) isSatisfied(s *Solver) bool {
	for _, l := range c.literals {
		if s.LitValue(l) == True {
			return true
		}
	}
	return false
}

func (c *Clause) String() string {
	if len(c.literals) == 0 {
		return "Clause[]"
	}
	sb := strings.Builder{}
	sb.WriteString("Clause[")
	sb.WriteString(c.literals[0].String())
	for _, l := range c.literals[1:] {
		sb.WriteByte(' ')
		sb.WriteString(l.String())
	}
	sb.WriteByte(']')
	return sb.String()
}
