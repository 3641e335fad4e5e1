package dynamic

// SqlNode is one of the nine dynamic-SQL tree variants. Apply renders the
// node into ctx and reports whether it contributed any output, which the
// trimming nodes (Where, Set, Trim) use to decide whether to abstain.
type SqlNode interface {
	Apply(ctx *DynamicContext) (contributed bool, err error)
}

// Text appends a literal string verbatim. Always contributes, even if the
// literal is all whitespace, matching teacher's "leaf always succeeds"
// iterator convention.
type Text struct {
	Literal string
}

func (t *Text) Apply(ctx *DynamicContext) (bool, error) {
	ctx.AppendSql(t.Literal)
	return true, nil
}

// Mixed applies each child in order, contributing if any child did.
type Mixed struct {
	Children []SqlNode
}

func (m *Mixed) Apply(ctx *DynamicContext) (bool, error) {
	contributed := false
	for _, child := range m.Children {
		ok, err := child.Apply(ctx)
		if err != nil {
			return false, err
		}
		contributed = contributed || ok
	}
	return contributed, nil
}
