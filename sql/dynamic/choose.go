package dynamic

import "github.com/gosqlmapper/sqlmapper/sql/expression"

// If evaluates Test; on true it applies Inner and contributes iff Inner
// did.
type If struct {
	Test  expression.Expr
	Inner SqlNode
}

func (n *If) Apply(ctx *DynamicContext) (bool, error) {
	ok, err := n.evalTest(ctx)
	if err != nil || !ok {
		return false, err
	}
	return n.Inner.Apply(ctx)
}

func (n *If) evalTest(ctx *DynamicContext) (bool, error) {
	return expression.EvaluateBoolean(n.Test, ctx.Environment())
}

// Choose applies the first When whose test is true, else Otherwise if
// present.
type Choose struct {
	Whens     []*If
	Otherwise SqlNode
}

func (n *Choose) Apply(ctx *DynamicContext) (bool, error) {
	for _, when := range n.Whens {
		ok, err := when.evalTest(ctx)
		if err != nil {
			return false, err
		}
		if ok {
			return when.Inner.Apply(ctx)
		}
	}
	if n.Otherwise != nil {
		return n.Otherwise.Apply(ctx)
	}
	return false, nil
}
