package dynamic

import (
	"fmt"
	"reflect"
	"regexp"
	"sort"
	"strings"

	"github.com/gosqlmapper/sqlmapper/sql/expression"
)

// Foreach iterates Collection, rendering Inner once per element with
// per-iteration bindings reachable through uniquely-numbered placeholder
// names, per §4.2.
type Foreach struct {
	Collection expression.Expr
	ItemName   string
	IndexName  string // optional
	Inner      SqlNode
	Open       string
	Close      string
	Separator  string
}

var frchMarker = regexp.MustCompile(`#\{\s*([A-Za-z_][A-Za-z0-9_.]*)`)

func (n *Foreach) Apply(ctx *DynamicContext) (bool, error) {
	collection, err := expression.Evaluate(n.Collection, ctx.Environment())
	if err != nil {
		return false, err
	}
	items, keys := toIterable(collection)
	if len(items) == 0 {
		return false, nil
	}

	var parts []string
	for i, item := range items {
		uniqueN := ctx.UniqueNumber()
		itemPlaceholder := uniquePlaceholder(n.ItemName, uniqueN)
		ctx.Bind(itemPlaceholder, item)

		var indexPlaceholder string
		if n.IndexName != "" {
			indexPlaceholder = uniquePlaceholder(n.IndexName, uniqueN)
			ctx.Bind(indexPlaceholder, keys[i])
		}

		scratch := &DynamicContext{bindings: ctx.bindings, env: ctx.env, counter: ctx.counter}
		_, err := n.Inner.Apply(scratch)
		if err != nil {
			return false, err
		}
		ctx.counter = scratch.counter

		text := scratch.SQL()
		text = rewritePlaceholder(text, n.ItemName, itemPlaceholder)
		if n.IndexName != "" {
			text = rewritePlaceholder(text, n.IndexName, indexPlaceholder)
		}
		parts = append(parts, text)
	}

	ctx.AppendSql(n.Open + strings.Join(parts, n.Separator) + n.Close)
	return true, nil
}

// rewritePlaceholder rewrites `#{name}` / `#{name, attr=val}` and
// `#{name.property...}` occurrences of name to reference unique, leaving
// the dotted remainder (if any) in place and leaving occurrences of
// other identifiers that merely share name as a prefix untouched.
func rewritePlaceholder(text, name, unique string) string {
	return frchMarker.ReplaceAllStringFunc(text, func(match string) string {
		sub := frchMarker.FindStringSubmatch(match)
		if len(sub) < 2 {
			return match
		}
		path := sub[1]
		switch {
		case path == name:
			return strings.Replace(match, path, unique, 1)
		case strings.HasPrefix(path, name+"."):
			return strings.Replace(match, path, unique+path[len(name):], 1)
		default:
			return match
		}
	})
}

// toIterable resolves a collection expression result into a positional
// sequence of values plus parallel "index/key" values: for a slice the
// keys are 0,1,2,...; for a map[string]any the keys are the map's own
// keys, and for any other map type they are the keys' string forms. Maps
// are iterated in a stable (sorted) order so repeated evaluations are
// deterministic.
func toIterable(collection any) (items []any, keys []any) {
	switch c := collection.(type) {
	case nil:
		return nil, nil
	case []any:
		items = c
		keys = make([]any, len(c))
		for i := range c {
			keys[i] = i
		}
		return items, keys
	case map[string]any:
		names := make([]string, 0, len(c))
		for k := range c {
			names = append(names, k)
		}
		sort.Strings(names)
		for _, k := range names {
			items = append(items, c[k])
			keys = append(keys, k)
		}
		return items, keys
	}

	rv := reflect.ValueOf(collection)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		n := rv.Len()
		items = make([]any, n)
		keys = make([]any, n)
		for i := 0; i < n; i++ {
			items[i] = rv.Index(i).Interface()
			keys[i] = i
		}
		return items, keys
	case reflect.Map:
		mapKeys := rv.MapKeys()
		names := make([]string, len(mapKeys))
		for i, k := range mapKeys {
			names[i] = fmt.Sprintf("%v", k.Interface())
		}
		sort.Strings(names)
		byName := map[string]reflect.Value{}
		for _, k := range mapKeys {
			byName[fmt.Sprintf("%v", k.Interface())] = k
		}
		for _, name := range names {
			items = append(items, rv.MapIndex(byName[name]).Interface())
			keys = append(keys, name)
		}
		return items, keys
	}
	return nil, nil
}
