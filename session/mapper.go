package session

import (
	"context"
	"fmt"
	"reflect"
	"sync"

	"github.com/gosqlmapper/sqlmapper/configuration"
	"github.com/gosqlmapper/sqlmapper/errs"
)

// MapperFactory builds the concrete value GetMapper returns for a given
// session. Go has no runtime mechanism for synthesizing a new type that
// implements an arbitrary interface (unlike the dynamic proxies §4.7
// describes) so the binding is explicit: register, at package init or
// start-up, a small constructor whose methods call DispatchMapperCall.
// This mirrors §9's "reflection-heavy construction -> explicit
// constructors" guidance applied to mapper binding instead of result
// hydration.
type MapperFactory func(s *Session) any

var (
	mapperMu        sync.RWMutex
	mapperFactories = map[string]MapperFactory{}
)

// RegisterMapper records the constructor used for interfaceName. Calling
// it twice for the same name overwrites the previous registration.
func RegisterMapper(interfaceName string, factory MapperFactory) {
	mapperMu.Lock()
	defer mapperMu.Unlock()
	mapperFactories[interfaceName] = factory
}

func lookupMapperFactory(interfaceName string) (MapperFactory, bool) {
	mapperMu.RLock()
	defer mapperMu.RUnlock()
	f, ok := mapperFactories[interfaceName]
	return f, ok
}

// GetMapper returns the cached proxy for interfaceName, constructing and
// caching it on first use (§4.7). The cache is session-scoped: a proxy
// built for one session must never be shared with another, since it
// closes over this session's executor and transaction.
func (s *Session) GetMapper(interfaceName string) (any, error) {
	s.mu.Lock()
	if err := s.ensureOpen(); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	if cached, ok := s.mapperCache[interfaceName]; ok {
		s.mu.Unlock()
		return cached, nil
	}
	s.mu.Unlock()

	factory, ok := lookupMapperFactory(interfaceName)
	if !ok {
		return nil, errs.ConfigurationError.New("no mapper registered: " + interfaceName)
	}
	proxy := factory(s)

	s.mu.Lock()
	s.mapperCache[interfaceName] = proxy
	s.mu.Unlock()
	s.logger.WithField("mapper", interfaceName).Debug("constructed mapper proxy")
	return proxy, nil
}

// DispatchMapperCall implements the binding rules of §4.7's mapper
// contract for one interface method call: the bound statement id is
// "<interfaceName>.<methodName>"; args are bound under argNames
// (positionally, "argN" if a name is missing) except that a single-arg
// method forwards the raw argument as the parameter; and the result is
// shaped by returnType — a slice/array return selects selectList,
// anything else selects selectOne, and an INSERT/UPDATE/DELETE-kind
// statement always dispatches to the update path regardless of
// returnType. A hand-written mapper implementation calls this once per
// method instead of duplicating the dispatch rules itself.
func (s *Session) DispatchMapperCall(ctx context.Context, interfaceName, methodName string, argNames []string, args []any, returnType reflect.Type) (any, error) {
	id := interfaceName + "." + methodName
	ms, ok := s.cfg.Statement(id)
	if !ok {
		return nil, errs.ConfigurationError.New("no mapped statement for mapper method: " + id)
	}
	param := bindMapperParams(argNames, args)

	switch ms.Kind {
	case configuration.Insert, configuration.Update, configuration.Delete:
		return s.mutate(ctx, id, param)
	default:
		if isSequenceType(returnType) {
			return s.SelectList(ctx, id, param, configuration.HydrationUnset)
		}
		if isScalarType(returnType) {
			return s.selectOneWithMode(ctx, id, param, configuration.HydrationScalar)
		}
		return s.SelectOne(ctx, id, param)
	}
}

func bindMapperParams(argNames []string, args []any) any {
	if len(args) == 1 {
		return args[0]
	}
	m := make(map[string]any, len(args))
	for i, a := range args {
		name := fmt.Sprintf("arg%d", i)
		if i < len(argNames) && argNames[i] != "" {
			name = argNames[i]
		}
		m[name] = a
	}
	return m
}

func isSequenceType(t reflect.Type) bool {
	if t == nil {
		return false
	}
	return t.Kind() == reflect.Slice || t.Kind() == reflect.Array
}

func isScalarType(t reflect.Type) bool {
	if t == nil {
		return false
	}
	switch t.Kind() {
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64,
		reflect.String:
		return true
	default:
		return false
	}
}
