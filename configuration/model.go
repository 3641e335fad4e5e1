// Package configuration implements the in-memory configuration registry
// (§3, §6): the catalog of result maps, mapped statements, type aliases,
// environments, and type handlers that an external mapper-file parser
// populates once at load time. Everything here is immutable after load.
package configuration

import (
	"github.com/gosqlmapper/sqlmapper/sql/builder"
)

// StatementKind is the kind of a mapped statement.
type StatementKind int

const (
	Select StatementKind = iota
	Insert
	Update
	Delete
	Callable
)

// HydrationMode selects the hydration engine's output shape for a SELECT.
type HydrationMode int

const (
	// HydrationUnset means "use the statement's own default" (Object).
	HydrationUnset HydrationMode = iota
	HydrationObject
	HydrationArray
	HydrationScalar
)

// MappedStatement is a named, parameterizable SQL template with metadata
// for parameter and result shaping (§3).
type MappedStatement struct {
	ID                string
	Namespace         string
	Kind              StatementKind
	ResultMapID       string
	ResultTypeName    string
	ParameterTypeName string
	UseGeneratedKeys  bool
	KeyProperty       string
	KeyColumn         string
	TimeoutMillis     int
	FetchSize         int
	Hydration         HydrationMode
	SqlSource         builder.SqlSource
}

// EffectiveHydrationMode returns the statement's hydration mode, defaulting
// to Object per §3's "hydrationMode ?? OBJECT" invariant.
func (s *MappedStatement) EffectiveHydrationMode() HydrationMode {
	if s.Hydration == HydrationUnset {
		return HydrationObject
	}
	return s.Hydration
}

// ResultMapping is a single column -> attribute binding (§3).
type ResultMapping struct {
	Property        string
	Column          string
	TypeName        string
	SqlType         string
	TypeHandlerName string
}

// Association is a cardinality-one nested result (§3). Either
// NestedResultMapID is set (referencing a registered ResultMap) or the
// mapping is declared inline via IDMappings/ResultMappings.
type Association struct {
	Property          string
	TargetTypeName    string
	NestedResultMapID string
	IDMappings        []ResultMapping
	ResultMappings    []ResultMapping
	ColumnPrefix      string
}

// Collection is a cardinality-many nested result (§3), grouped by the
// identity-column tuple of the item under its parent.
type Collection struct {
	Property          string
	ItemTypeName      string
	NestedResultMapID string
	IDMappings        []ResultMapping
	ResultMappings    []ResultMapping
	ColumnPrefix      string
}

// Discriminator selects the effective ResultMap for a row by the
// stringified value of Column (§3).
type Discriminator struct {
	Column string
	Cases  map[string]string // stringified column value -> resultMapID
}

// ResultMap is a declarative recipe that shapes database rows into
// application values (§3).
type ResultMap struct {
	ID             string
	Namespace      string
	TypeName       string
	IDMappings     []ResultMapping
	ResultMappings []ResultMapping
	Associations   []Association
	Collections    []Collection
	Discriminator  *Discriminator
	AutoMapping    bool
	ExtendsID      string
}
