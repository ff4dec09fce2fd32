// Package expr implements the tiny stack-machine scoring-override language
// (spec.md §4.13): a lexer, recursive-descent parser emitting RPN
// bytecode, and an evaluator.
package expr

import (
	"fmt"
	"math"
	"strings"
)

// Vars is the variable lookup table passed to Eval, keyed by the
// unnormalized canonical name (e.g. "avg_land_value"); NormalizeKey is
// applied on both sides so callers needn't worry about case/punctuation.
type Vars map[string]float64

// Op is one bytecode instruction opcode.
type Op int

const (
	OpPushConst Op = iota
	OpPushVar
	OpAdd
	OpSub
	OpMul
	OpDiv
	OpPow
	OpNeg
	OpNot
	OpLt
	OpLe
	OpGt
	OpGe
	OpEq
	OpNe
	OpAnd
	OpOr
	OpAbs
	OpSqrt
	OpLog
	OpExp
	OpFloor
	OpCeil
	OpRound
	OpMin
	OpMax
	OpStep
	OpClamp
	OpLerp
	OpSmoothstep
)

// Instr is one compiled instruction.
type Instr struct {
	Op  Op
	C   float64 // constant operand for OpPushConst
	Var string  // normalized variable name for OpPushVar
}

// Program is a compiled expression: the source text plus its RPN bytecode.
type Program struct {
	Source string
	Code   []Instr
}

// NormalizeKey folds case and treats '_', '-', ' ', '.' as equivalent
// separators (spec.md §4.13: "case-insensitive; _, -, space, . are
// equivalent").
func NormalizeKey(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		switch r {
		case '_', '-', ' ', '.':
			continue
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// ParseError is a compile-time error with a caret pointing at the failing
// token position (spec.md §4.13: "compile errors include an arrow pointing
// to the failing token position").
type ParseError struct {
	Source  string
	Pos     int
	Message string
}

func (e *ParseError) Error() string {
	return FormatError(e.Source, e.Pos, e.Message)
}

// FormatError renders a source line, a caret line pointing at pos, and the
// message, matching the original's exact phrasing style.
func FormatError(source string, pos int, message string) string {
	if pos > len(source) {
		pos = len(source)
	}
	if pos < 0 {
		pos = 0
	}
	caret := strings.Repeat(" ", pos) + "^"
	return fmt.Sprintf("%s\n%s\n%s at position %d", source, caret, message, pos)
}

// Compile parses and compiles src into a Program (spec.md §4.13).
func Compile(src string) (*Program, error) {
	toks, err := lex(src)
	if err != nil {
		return nil, err
	}
	p := &parser{src: src, toks: toks}
	code, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if p.peek().kind != tokEOF {
		return nil, &ParseError{Source: src, Pos: p.peek().pos, Message: "unexpected trailing tokens"}
	}
	return &Program{Source: src, Code: code}, nil
}

// runtimeError signals stack underflow / malformed bytecode at evaluation
// time (spec.md §4.13: "errors on stack underflow or if the final stack
// depth is not exactly 1").
type runtimeError struct{ msg string }

func (e *runtimeError) Error() string { return e.msg }

// Eval evaluates the compiled program against vars. Runtime failures
// (stack underflow, non-finite results) are the caller's responsibility to
// demote to a sentinel (spec.md §4.4 step 6) — Eval itself always returns
// the raw result or an error.
func (p *Program) Eval(vars Vars) (float64, error) {
	var stack []float64
	push := func(v float64) { stack = append(stack, v) }
	pop := func() (float64, error) {
		if len(stack) == 0 {
			return 0, &runtimeError{"stack underflow"}
		}
		v := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		return v, nil
	}
	pop2 := func() (float64, float64, error) {
		b, err := pop()
		if err != nil {
			return 0, 0, err
		}
		a, err := pop()
		if err != nil {
			return 0, 0, err
		}
		return a, b, nil
	}
	pop3 := func() (float64, float64, float64, error) {
		c, err := pop()
		if err != nil {
			return 0, 0, 0, err
		}
		b, err := pop()
		if err != nil {
			return 0, 0, 0, err
		}
		a, err := pop()
		if err != nil {
			return 0, 0, 0, err
		}
		return a, b, c, nil
	}

	boolVal := func(b bool) float64 {
		if b {
			return 1.0
		}
		return 0.0
	}

	for _, ins := range p.Code {
		switch ins.Op {
		case OpPushConst:
			push(ins.C)
		case OpPushVar:
			push(lookupVar(vars, ins.Var))
		case OpAdd:
			a, b, err := pop2()
			if err != nil {
				return 0, err
			}
			push(a + b)
		case OpSub:
			a, b, err := pop2()
			if err != nil {
				return 0, err
			}
			push(a - b)
		case OpMul:
			a, b, err := pop2()
			if err != nil {
				return 0, err
			}
			push(a * b)
		case OpDiv:
			a, b, err := pop2()
			if err != nil {
				return 0, err
			}
			push(a / b)
		case OpPow:
			a, b, err := pop2()
			if err != nil {
				return 0, err
			}
			push(math.Pow(a, b))
		case OpNeg:
			a, err := pop()
			if err != nil {
				return 0, err
			}
			push(-a)
		case OpNot:
			a, err := pop()
			if err != nil {
				return 0, err
			}
			push(boolVal(a == 0))
		case OpLt:
			a, b, err := pop2()
			if err != nil {
				return 0, err
			}
			push(boolVal(a < b))
		case OpLe:
			a, b, err := pop2()
			if err != nil {
				return 0, err
			}
			push(boolVal(a <= b))
		case OpGt:
			a, b, err := pop2()
			if err != nil {
				return 0, err
			}
			push(boolVal(a > b))
		case OpGe:
			a, b, err := pop2()
			if err != nil {
				return 0, err
			}
			push(boolVal(a >= b))
		case OpEq:
			a, b, err := pop2()
			if err != nil {
				return 0, err
			}
			push(boolVal(a == b))
		case OpNe:
			a, b, err := pop2()
			if err != nil {
				return 0, err
			}
			push(boolVal(a != b))
		case OpAnd:
			a, b, err := pop2()
			if err != nil {
				return 0, err
			}
			push(boolVal(a != 0 && b != 0))
		case OpOr:
			a, b, err := pop2()
			if err != nil {
				return 0, err
			}
			push(boolVal(a != 0 || b != 0))
		case OpAbs:
			a, err := pop()
			if err != nil {
				return 0, err
			}
			push(math.Abs(a))
		case OpSqrt:
			a, err := pop()
			if err != nil {
				return 0, err
			}
			push(math.Sqrt(a))
		case OpLog:
			a, err := pop()
			if err != nil {
				return 0, err
			}
			push(math.Log(a))
		case OpExp:
			a, err := pop()
			if err != nil {
				return 0, err
			}
			push(math.Exp(a))
		case OpFloor:
			a, err := pop()
			if err != nil {
				return 0, err
			}
			push(math.Floor(a))
		case OpCeil:
			a, err := pop()
			if err != nil {
				return 0, err
			}
			push(math.Ceil(a))
		case OpRound:
			a, err := pop()
			if err != nil {
				return 0, err
			}
			push(math.Round(a))
		case OpMin:
			a, b, err := pop2()
			if err != nil {
				return 0, err
			}
			push(math.Min(a, b))
		case OpMax:
			a, b, err := pop2()
			if err != nil {
				return 0, err
			}
			push(math.Max(a, b))
		case OpStep:
			edge, x, err := pop2()
			if err != nil {
				return 0, err
			}
			push(boolVal(x >= edge))
		case OpClamp:
			x, lo, hi, err := pop3()
			if err != nil {
				return 0, err
			}
			push(clamp(x, lo, hi))
		case OpLerp:
			a, b, t, err := pop3()
			if err != nil {
				return 0, err
			}
			push(a + (b-a)*t)
		case OpSmoothstep:
			edge0, edge1, x, err := pop3()
			if err != nil {
				return 0, err
			}
			t := clamp((x-edge0)/(edge1-edge0), 0, 1)
			push(t * t * (3 - 2*t))
		default:
			return 0, &runtimeError{fmt.Sprintf("unknown opcode %d", ins.Op)}
		}
	}

	if len(stack) != 1 {
		return 0, &runtimeError{fmt.Sprintf("final stack depth %d, expected 1", len(stack))}
	}
	return stack[0], nil
}

func clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

func lookupVar(vars Vars, normalized string) float64 {
	if normalized == "pi" {
		return math.Pi
	}
	if normalized == "e" {
		return math.E
	}
	for k, v := range vars {
		if NormalizeKey(k) == normalized {
			return v
		}
	}
	return 0
}

// HelpText returns a short usage string listing supported variables and
// functions (spec.md §C.4, original_source MineExprHelpText).
func HelpText() string {
	return "" +
		"variables: seed, w, h, area, day, population, happiness, money,\n" +
		"  avg_land_value, traffic_congestion, goods_satisfaction,\n" +
		"  services_overall_satisfaction, pop_density, road_density,\n" +
		"  zone_density, *_tiles, *_frac, sea_flood_frac, sea_max_depth,\n" +
		"  pond_frac, pond_max_depth, pond_volume, flood_risk, score,\n" +
		"  objective_score, pi, e\n" +
		"functions: abs(x) sqrt(x) log(x) exp(x) floor(x) ceil(x) round(x)\n" +
		"  min(a,b) max(a,b) pow(a,b) step(edge,x)\n" +
		"  clamp(x,lo,hi) lerp(a,b,t) smoothstep(e0,e1,x)\n" +
		"operators: + - * / ^ ( ) , < <= > >= == != && || !\n"
}
