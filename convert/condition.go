package convert

import (
	"fmt"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// Condition decides whether a property mapping applies to the current context.
type Condition interface {
	Applies(ctx *Context) bool
}

// ConditionFunc adapts a function to Condition.
type ConditionFunc func(ctx *Context) bool

func (f ConditionFunc) Applies(ctx *Context) bool {
	return f(ctx)
}

var (
	// IsNotNull applies when the source value is present.
	IsNotNull Condition = ConditionFunc(func(ctx *Context) bool { return !IsNil(ctx.Source) })

	// IsNull applies when the source value is absent.
	IsNull Condition = ConditionFunc(func(ctx *Context) bool { return IsNil(ctx.Source) })
)

// And applies when every condition applies.
func And(conditions ...Condition) Condition {
	return ConditionFunc(func(ctx *Context) bool {
		for _, c := range conditions {
			if !c.Applies(ctx) {
				return false
			}
		}

		return true
	})
}

// Or applies when at least one condition applies.
func Or(conditions ...Condition) Condition {
	return ConditionFunc(func(ctx *Context) bool {
		for _, c := range conditions {
			if c.Applies(ctx) {
				return true
			}
		}

		return false
	})
}

// Not negates c.
func Not(c Condition) Condition {
	return ConditionFunc(func(ctx *Context) bool { return !c.Applies(ctx) })
}

// exprEnv is the environment visible to expression conditions.
type exprEnv struct {
	Source          any    `expr:"source"`
	Destination     any    `expr:"destination"`
	SourcePath      string `expr:"sourcePath"`
	DestinationPath string `expr:"destinationPath"`
}

// ExprCondition is a Condition written in the expr language, for example
//
//	source != nil && source > 0
//	sourcePath == "Email" && destination == ""
type ExprCondition struct {
	code    string
	program *vm.Program
}

// Expr compiles code into a Condition. The expression must evaluate to a bool.
func Expr(code string) (*ExprCondition, error) {
	program, err := expr.Compile(code, expr.Env(exprEnv{}), expr.AsBool())
	if err != nil {
		return nil, fmt.Errorf("compile condition %q: %w", code, err)
	}

	return &ExprCondition{code: code, program: program}, nil
}

// MustExpr is like Expr but panics on error.
func MustExpr(code string) *ExprCondition {
	c, err := Expr(code)
	if err != nil {
		panic(err)
	}

	return c
}

// Applies runs the expression. A runtime error counts as "does not apply".
func (c *ExprCondition) Applies(ctx *Context) bool {
	out, err := expr.Run(c.program, exprEnv{
		Source:          ctx.SourceValue(),
		Destination:     ctx.DestinationValue(),
		SourcePath:      ctx.SourcePath,
		DestinationPath: ctx.DestinationPath,
	})
	if err != nil {
		return false
	}

	ok, _ := out.(bool)

	return ok
}

func (c *ExprCondition) String() string {
	return c.code
}
