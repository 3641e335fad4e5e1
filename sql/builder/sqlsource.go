package builder

import (
	"github.com/gosqlmapper/sqlmapper/sql/dynamic"
	"github.com/gosqlmapper/sqlmapper/sql/expression"
)

// SqlSource produces a BoundSql for a given caller parameter. A mapped
// statement's compiled SqlSource is either a DynamicSqlSource (wraps a
// dynamic SQL tree) or a StaticSqlSource (a template with no dynamic tags
// at all, resolved without a tree walk).
type SqlSource interface {
	BoundSql(param any) (*BoundSql, error)
}

// StaticSqlSource is the degenerate builder for statements authored
// without any dynamic tags. Every BoundSql call runs the two-phase
// resolution of the template against that call's parameter (so `${...}`
// substitution sees runtime values); no tree walk is needed, and no
// pre-parsed BoundSql is kept between calls.
type StaticSqlSource struct {
	template string
}

// NewStaticSqlSource stores template as authored; it does no parsing up
// front.
func NewStaticSqlSource(template string) *StaticSqlSource {
	return &StaticSqlSource{template: template}
}

func (s *StaticSqlSource) BoundSql(param any) (*BoundSql, error) {
	env := expression.NewEnvironment(param)
	return Resolve(s.template, env, nil)
}

// DynamicSqlSource wraps a compiled dynamic SQL tree (§4.2): evaluating it
// produces a template string that itself still needs the two-phase
// resolution of §4.3.
type DynamicSqlSource struct {
	Root dynamic.SqlNode
}

func NewDynamicSqlSource(root dynamic.SqlNode) *DynamicSqlSource {
	return &DynamicSqlSource{Root: root}
}

func (s *DynamicSqlSource) BoundSql(param any) (*BoundSql, error) {
	ctx := dynamic.NewDynamicContext(param)
	if _, err := s.Root.Apply(ctx); err != nil {
		return nil, err
	}
	env := expression.NewEnvironment(param)
	for name, value := range ctx.Bindings() {
		env.Bind(name, value)
	}
	return Resolve(ctx.SQL(), env, ctx.Bindings())
}
