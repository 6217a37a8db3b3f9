package expr

import "github.com/bitsysim/bitsysim/internal/diagnostics"

// Pattern is a match-arm pattern (spec.md §9).
type Pattern interface {
	Pos() diagnostics.Pos
	patternNode()
}

type patBase struct{ pos diagnostics.Pos }

func (b patBase) Pos() diagnostics.Pos { return b.pos }

// CtorPattern matches "@Name(subpats...)" structurally against an AltValue
// (or a ValidValue via @Valid/@Invalid).
type CtorPattern struct {
	patBase
	Name    string
	SubPats []Pattern
}

func NewCtorPattern(pos diagnostics.Pos, name string, sub []Pattern) *CtorPattern {
	return &CtorPattern{patBase: patBase{pos}, Name: name, SubPats: sub}
}
func (*CtorPattern) patternNode() {}

// BindPattern always matches, binding the value to Name in the arm body.
type BindPattern struct {
	patBase
	Name string
}

func NewBindPattern(pos diagnostics.Pos, name string) *BindPattern {
	return &BindPattern{patBase: patBase{pos}, Name: name}
}
func (*BindPattern) patternNode() {}

// WildcardPattern always matches, binding nothing ("otherwise").
type WildcardPattern struct{ patBase }

func NewWildcardPattern(pos diagnostics.Pos) *WildcardPattern {
	return &WildcardPattern{patBase: patBase{pos}}
}
func (*WildcardPattern) patternNode() {}

// MatchArm is one "pattern => body" arm.
type MatchArm struct {
	Pattern Pattern
	Body    Expr
}

// Match selects the first arm whose pattern structurally unifies with the
// scrutinee (spec.md §9); falling off the end evaluates to X.
type Match struct {
	base
	Scrutinee Expr
	Arms      []MatchArm
}

func NewMatch(pos diagnostics.Pos, scrutinee Expr, arms []MatchArm) *Match {
	return &Match{base: newBase(pos), Scrutinee: scrutinee, Arms: arms}
}
func (*Match) exprNode() {}
