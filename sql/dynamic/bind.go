package dynamic

import "github.com/gosqlmapper/sqlmapper/sql/expression"

// Bind evaluates ValueExpr once and stores it in the context under Name,
// overwriting any previous value. Always contributes nothing to the SQL
// text itself but always "succeeds" (apply never abstains).
type Bind struct {
	Name      string
	ValueExpr expression.Expr
}

func (n *Bind) Apply(ctx *DynamicContext) (bool, error) {
	v, err := expression.Evaluate(n.ValueExpr, ctx.Environment())
	if err != nil {
		return false, err
	}
	ctx.Bind(n.Name, v)
	return true, nil
}

// Include is an `include refid=...` reference whose target (the referenced
// `sql` fragment) was resolved at parse time into Resolved; Apply renders
// that sub-tree in place. A loader may instead splice the fragment's own
// nodes into the tree, in which case no Include node appears at all.
type Include struct {
	FragmentID string
	Resolved   SqlNode
}

func (n *Include) Apply(ctx *DynamicContext) (bool, error) {
	return n.Resolved.Apply(ctx)
}
