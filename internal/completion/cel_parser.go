package completion

import (
	"fmt"

	"github.com/google/cel-go/cel"
	exprpb "google.golang.org/genproto/googleapis/api/expr/v1alpha1"
)

// selectPath parses expr and, when it is a plain navigation chain such as
// `_.user["name"]`, returns its segments ("_", "user", "name"). Anything
// else, including calls and operators, reports false.
func selectPath(env *cel.Env, expr string) ([]string, bool) {
	ast, issues := env.Parse(expr)
	if issues != nil && issues.Err() != nil {
		return nil, false
	}
	parsed, err := cel.AstToParsedExpr(ast)
	if err != nil {
		return nil, false
	}
	var segs []string
	if !collectPath(parsed.GetExpr(), &segs) {
		return nil, false
	}
	return segs, true
}

func collectPath(e *exprpb.Expr, segs *[]string) bool {
	if e == nil {
		return false
	}
	switch k := e.ExprKind.(type) {
	case *exprpb.Expr_IdentExpr:
		*segs = append(*segs, k.IdentExpr.GetName())
		return true
	case *exprpb.Expr_SelectExpr:
		sel := k.SelectExpr
		if sel.GetTestOnly() || !collectPath(sel.GetOperand(), segs) {
			return false
		}
		*segs = append(*segs, sel.GetField())
		return true
	case *exprpb.Expr_CallExpr:
		call := k.CallExpr
		if call.GetFunction() != "_[_]" || len(call.GetArgs()) != 2 {
			return false
		}
		c := call.GetArgs()[1].GetConstExpr()
		if c == nil || !collectPath(call.GetArgs()[0], segs) {
			return false
		}
		*segs = append(*segs, constString(c))
		return true
	default:
		return false
	}
}

func constString(c *exprpb.Constant) string {
	switch k := c.ConstantKind.(type) {
	case *exprpb.Constant_StringValue:
		return k.StringValue
	case *exprpb.Constant_Int64Value:
		return fmt.Sprint(k.Int64Value)
	case *exprpb.Constant_Uint64Value:
		return fmt.Sprint(k.Uint64Value)
	case *exprpb.Constant_BoolValue:
		return fmt.Sprint(k.BoolValue)
	case *exprpb.Constant_DoubleValue:
		return fmt.Sprint(k.DoubleValue)
	default:
		return ""
	}
}
