package hydrate

import strcase "github.com/stoewer/go-strcase"

// propertyName resolves the property name a column maps to when no
// explicit ResultMapping names one: the raw column name, or its
// camelCase conversion when mapUnderscoreToCamelCase is enabled (§6).
// toExported additionally upper-cases the leading rune so the name is
// usable as a Go struct field.
func propertyName(column string, mapUnderscore, toExported bool) string {
	name := column
	if mapUnderscore {
		name = strcase.LowerCamelCase(column)
	}
	if toExported && len(name) > 0 {
		name = upperFirst(name)
	}
	return name
}

func upperFirst(s string) string {
	b := []byte(s)
	if b[0] >= 'a' && b[0] <= 'z' {
		b[0] -= 'a' - 'A'
	}
	return string(b)
}
