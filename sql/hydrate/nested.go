package hydrate

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/gosqlmapper/sqlmapper/configuration"
	"github.com/gosqlmapper/sqlmapper/errs"
	"github.com/gosqlmapper/sqlmapper/sql/types"
)

// Options configures one hydration pass over a row stream.
type Options struct {
	Mode             configuration.HydrationMode
	ResultMap        *configuration.ResultMap
	TypeName         string
	MapUnderscore    bool
	TypeHandlers     *types.Registry
	Adapters         *Registry
	ColumnOrder      []string // used by scalar mode to find the leading column

	// ResolveResultMap looks up a registered result map by id, following
	// `extends` chains. Required only when ResultMap.Discriminator is set.
	ResolveResultMap func(id string) (*configuration.ResultMap, bool)
}

// Rows hydrates a full row stream into its final shape: a flat list for
// scalar/array/object modes without nested mappings, or the grouped
// parent list the nested-result algorithm of §4.4 produces when the
// result map declares associations or collections.
func Rows(rows []Row, opt Options) ([]any, error) {
	if opt.Mode == configuration.HydrationScalar {
		out := make([]any, 0, len(rows))
		for _, row := range rows {
			v, err := Scalar(row, opt.ColumnOrder, opt.TypeName, opt.TypeHandlers)
			if err != nil {
				return nil, err
			}
			out = append(out, v)
		}
		return out, nil
	}

	if opt.Mode == configuration.HydrationArray &&
		(opt.ResultMap == nil || len(opt.ResultMap.Associations)+len(opt.ResultMap.Collections) == 0) {
		out := make([]any, 0, len(rows))
		for _, row := range rows {
			out = append(out, Array(row, opt.ResultMap, opt.MapUnderscore, opt.TypeHandlers))
		}
		return out, nil
	}

	g := &grouper{opt: opt, seen: map[string]int{}, collState: map[string]map[string]bool{}}
	for _, row := range rows {
		if err := g.absorb(row); err != nil {
			return nil, err
		}
	}
	return g.results, nil
}

// grouper implements the nested-result reduction: a first-seen-order list
// of parent instances plus, per parent, per-collection dedup state keyed
// by the collection item's identity tuple.
type grouper struct {
	opt       Options
	results   []any
	seen      map[string]int            // parent identity key -> index into results
	collState map[string]map[string]bool // "parentKey\x00property" -> seen child keys
}

func (g *grouper) absorb(row Row) error {
	rm := g.resolveDiscriminated(g.opt.ResultMap, row)
	if rm == nil {
		rm = &configuration.ResultMap{AutoMapping: true}
	}

	parentKey, hasIdentity := identityKey(row, rm.IDMappings, "")
	var (
		parent any
		idx    int
		isNew  = true
	)

	if hasIdentity {
		if existing, ok := g.seen[parentKey]; ok {
			parent = g.results[existing]
			idx = existing
			isNew = false
		}
	}

	if isNew {
		var err error
		if g.opt.Mode == configuration.HydrationArray {
			parent = Array(row, rm, g.opt.MapUnderscore, g.opt.TypeHandlers)
		} else {
			parent, err = Object(row, rm, effectiveTypeName(rm, g.opt.TypeName), g.opt.MapUnderscore, g.opt.TypeHandlers, g.opt.Adapters)
		}
		if err != nil {
			return err
		}
		idx = len(g.results)
		g.results = append(g.results, parent)
		if hasIdentity {
			g.seen[parentKey] = idx
		}
	}

	for _, assoc := range rm.Associations {
		sub := subRow(row, assoc.ColumnPrefix)
		nestedRM := &configuration.ResultMap{
			IDMappings:     assoc.IDMappings,
			ResultMappings: assoc.ResultMappings,
			AutoMapping:    len(assoc.ResultMappings) == 0,
		}
		if allColumnsNil(sub, nestedRM) {
			continue
		}
		value, err := Object(sub, nestedRM, assoc.TargetTypeName, g.opt.MapUnderscore, g.opt.TypeHandlers, g.opt.Adapters)
		if err != nil {
			return err
		}
		if err := Assign(parent, assoc.Property, value); err != nil {
			return err
		}
	}

	for _, coll := range rm.Collections {
		sub := subRow(row, coll.ColumnPrefix)
		nestedRM := &configuration.ResultMap{
			IDMappings:     coll.IDMappings,
			ResultMappings: coll.ResultMappings,
			AutoMapping:    len(coll.ResultMappings) == 0,
		}
		if allColumnsNil(sub, nestedRM) {
			continue
		}

		stateKey := parentKey + "\x00" + coll.Property
		childKey, childHasIdentity := identityKey(sub, coll.IDMappings, "")
		if childHasIdentity {
			if g.collState[stateKey] == nil {
				g.collState[stateKey] = map[string]bool{}
			}
			if g.collState[stateKey][childKey] {
				continue
			}
			g.collState[stateKey][childKey] = true
		}

		item, err := Object(sub, nestedRM, coll.ItemTypeName, g.opt.MapUnderscore, g.opt.TypeHandlers, g.opt.Adapters)
		if err != nil {
			return err
		}
		if err := appendItem(parent, coll.Property, item); err != nil {
			return err
		}
	}

	return nil
}

func effectiveTypeName(rm *configuration.ResultMap, fallback string) string {
	if rm != nil && rm.TypeName != "" {
		return rm.TypeName
	}
	return fallback
}

// resolveDiscriminated dispatches to the case-matched result map (§4.4's
// discriminator), falling back to rm itself when no case matches, no
// column value is present, or the caller never wired ResolveResultMap.
func (g *grouper) resolveDiscriminated(rm *configuration.ResultMap, row Row) *configuration.ResultMap {
	if rm == nil || rm.Discriminator == nil {
		return rm
	}
	raw, ok := row[rm.Discriminator.Column]
	if !ok {
		return rm
	}
	caseID, ok := rm.Discriminator.Cases[fmt.Sprintf("%v", raw)]
	if !ok || g.opt.ResolveResultMap == nil {
		return rm
	}
	resolved, ok := g.opt.ResolveResultMap(caseID)
	if !ok {
		return rm
	}
	return resolved
}

// identityKey builds a stable string key from an identity-column tuple.
// Returns ok=false when no identity columns are declared, meaning "never
// dedup at this level" per §4.4.
func identityKey(row Row, idMappings []configuration.ResultMapping, prefix string) (string, bool) {
	if len(idMappings) == 0 {
		return "", false
	}
	var b strings.Builder
	allNil := true
	for _, m := range idMappings {
		v := row[prefix+m.Column]
		if v != nil {
			allNil = false
		}
		b.WriteString(fmt.Sprintf("%v", v))
		b.WriteByte(0x1f)
	}
	if allNil {
		return "", false
	}
	return b.String(), true
}

// subRow shifts a row into the column namespace a nested result map
// expects, stripping columnPrefix from matching keys (§4.4's column
// prefix rule for joined nested selects).
func subRow(row Row, prefix string) Row {
	if prefix == "" {
		return row
	}
	out := make(Row, len(row))
	lower := strings.ToLower(prefix)
	for k, v := range row {
		if strings.HasPrefix(strings.ToLower(k), lower) {
			out[k[len(prefix):]] = v
		}
	}
	return out
}

// allColumnsNil reports whether every column a nested result map
// references is nil/absent in row, meaning the outer join produced no
// match for this nested value (§4.4: "a wholly-null nested row yields a
// nil association, not a zero-valued one").
func allColumnsNil(row Row, rm *configuration.ResultMap) bool {
	if len(rm.ResultMappings) == 0 {
		for _, v := range row {
			if v != nil {
				return false
			}
		}
		return len(row) > 0
	}
	for _, m := range rm.ResultMappings {
		if row[m.Column] != nil {
			return false
		}
	}
	for _, m := range rm.IDMappings {
		if row[m.Column] != nil {
			return false
		}
	}
	return true
}

// appendItem appends item to the slice-valued property on target, which
// must be a map[string]any or a pointer to a struct with an exported
// slice field (or a SetX([]T) setter accepting the item's element type is
// not supported: collections always use direct slice append, matching
// §4.4's "collections are reconciled with append-on-match").
func appendItem(target any, property string, item any) error {
	if m, ok := target.(map[string]any); ok {
		existing, _ := m[property].([]any)
		m[property] = append(existing, item)
		return nil
	}

	rv := reflect.ValueOf(target)
	if rv.Kind() != reflect.Ptr || rv.IsNil() {
		return errs.HydrationError.New("collection hydration target must be a pointer to a struct")
	}
	exported := upperFirst(property)
	field := rv.Elem().FieldByName(exported)
	if !field.IsValid() || !field.CanSet() || field.Kind() != reflect.Slice {
		return errs.HydrationError.New("collection property " + strconv.Quote(property) + " is not a settable slice field")
	}
	itemValue, err := coerceArg(item, field.Type().Elem())
	if err != nil {
		return err
	}
	field.Set(reflect.Append(field, itemValue))
	return nil
}
