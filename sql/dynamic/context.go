// Package dynamic implements the tree-interpreted dynamic SQL templating
// language (if/choose/foreach/where/set/trim/bind/include) described in
// §4.2. Each SqlNode, given a DynamicContext, either appends to the SQL
// buffer / binding map or abstains; Apply reports whether it contributed.
package dynamic

import (
	"strconv"
	"strings"

	"github.com/gosqlmapper/sqlmapper/sql/expression"
)

// DynamicContext is the mutable, per-execution, single-threaded builder
// that accumulates SQL text and bindings while a tree is evaluated.
type DynamicContext struct {
	sql      strings.Builder
	bindings map[string]any
	env      *expression.Environment
	counter  int
}

// NewDynamicContext creates a context over the given top-level parameter.
func NewDynamicContext(param any) *DynamicContext {
	return &DynamicContext{
		bindings: map[string]any{},
		env:      expression.NewEnvironment(param),
	}
}

// AppendSql appends literal text to the SQL buffer.
func (c *DynamicContext) AppendSql(text string) {
	if c.sql.Len() > 0 && !strings.HasSuffix(c.sql.String(), " ") && !strings.HasPrefix(text, " ") && text != "" {
		c.sql.WriteByte(' ')
	}
	c.sql.WriteString(text)
}

// Bind stores an explicit binding, visible to both the expression
// evaluator and (via Bindings) the SQL source builder's
// additionalParameters.
func (c *DynamicContext) Bind(name string, value any) {
	c.bindings[name] = value
	c.env.Bind(name, value)
}

// UniqueNumber returns a context-scoped monotonically increasing counter,
// used to build collision-free `foreach` placeholder names.
func (c *DynamicContext) UniqueNumber() int {
	n := c.counter
	c.counter++
	return n
}

// Environment exposes the expression-evaluation environment backing this
// context, merging bindings with the parameter view as described in §4.1.
func (c *DynamicContext) Environment() *expression.Environment {
	return c.env
}

// SQL returns the accumulated SQL text, trimmed of leading/trailing space.
func (c *DynamicContext) SQL() string {
	return strings.TrimSpace(c.sql.String())
}

// Bindings returns the accumulated explicit bindings (additionalParameters
// contributed by bind/foreach).
func (c *DynamicContext) Bindings() map[string]any {
	return c.bindings
}

// uniquePlaceholder builds the `__frch_<name>_<n>` placeholder naming
// convention used by Foreach.
func uniquePlaceholder(name string, n int) string {
	return "__frch_" + name + "_" + strconv.Itoa(n)
}
