package configuration

import (
	"strings"
	"sync"

	"github.com/gosqlmapper/sqlmapper/errs"
	"github.com/gosqlmapper/sqlmapper/sql/types"
	"gopkg.in/yaml.v2"
)

// Configuration is the in-memory catalog an external mapper-file parser
// populates. It is built once at load time and is safe for concurrent
// read access from many sessions thereafter (§5: "Configuration is
// immutable after initial population; reading it from many sessions
// requires no locking").
type Configuration struct {
	Settings Settings

	mu                 sync.RWMutex
	resultMaps         map[string]*ResultMap
	statements         map[string]*MappedStatement
	typeAliases        map[string]string
	environments       map[string]*Environment
	defaultEnvironment string
	caches             map[string]*CacheConfig
	secondLevelCaches  map[string]SecondLevelCache

	TypeHandlers *types.Registry
}

// New builds an empty Configuration with default settings and the §4.5
// built-in type handlers registered.
func New() *Configuration {
	return &Configuration{
		Settings:          DefaultSettings(),
		resultMaps:        map[string]*ResultMap{},
		statements:        map[string]*MappedStatement{},
		typeAliases:       map[string]string{},
		environments:      map[string]*Environment{},
		caches:            map[string]*CacheConfig{},
		secondLevelCaches: map[string]SecondLevelCache{},
		TypeHandlers:      types.NewRegistry(),
	}
}

// LoadSettingsYAML decodes a YAML settings document (the Settings bullet
// of §6) over the current defaults.
func (c *Configuration) LoadSettingsYAML(doc []byte) error {
	if err := yaml.Unmarshal(doc, &c.Settings); err != nil {
		return errs.ConfigurationError.New(err.Error())
	}
	c.Settings.resolveExecutorType()
	return nil
}

// RegisterTypeAlias adds a case-insensitive type alias.
func (c *Configuration) RegisterTypeAlias(alias, typeName string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.typeAliases[strings.ToLower(alias)] = typeName
}

// ResolveTypeAlias returns the type name an alias maps to, or the input
// unchanged if no alias was registered under that name.
func (c *Configuration) ResolveTypeAlias(name string) string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if resolved, ok := c.typeAliases[strings.ToLower(name)]; ok {
		return resolved
	}
	return name
}

// AddResultMap registers a ResultMap, failing with ConfigurationError on a
// duplicate id.
func (c *Configuration) AddResultMap(rm *ResultMap) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.resultMaps[rm.ID]; exists {
		return errs.ConfigurationError.New("duplicate result map id: " + rm.ID)
	}
	c.resultMaps[rm.ID] = rm
	return nil
}

// ResultMap resolves a result map by its full dotted id, following
// `extends` chains by merging the base map's mappings under the child
// (child mappings win on property collision).
func (c *Configuration) ResultMap(id string) (*ResultMap, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.resolveResultMapLocked(id, map[string]bool{})
}

func (c *Configuration) resolveResultMapLocked(id string, seen map[string]bool) (*ResultMap, bool) {
	rm, ok := c.resultMaps[id]
	if !ok || seen[id] {
		return nil, false
	}
	if rm.ExtendsID == "" {
		return rm, true
	}
	seen[id] = true
	base, ok := c.resolveResultMapLocked(rm.ExtendsID, seen)
	if !ok {
		return rm, true
	}
	merged := *rm
	merged.IDMappings = append(append([]ResultMapping{}, base.IDMappings...), rm.IDMappings...)
	merged.ResultMappings = append(append([]ResultMapping{}, base.ResultMappings...), rm.ResultMappings...)
	merged.Associations = append(append([]Association{}, base.Associations...), rm.Associations...)
	merged.Collections = append(append([]Collection{}, base.Collections...), rm.Collections...)
	if merged.Discriminator == nil {
		merged.Discriminator = base.Discriminator
	}
	return &merged, true
}

// AddStatement registers a MappedStatement, failing with
// ConfigurationError on a duplicate id.
func (c *Configuration) AddStatement(ms *MappedStatement) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.statements[ms.ID]; exists {
		return errs.ConfigurationError.New("duplicate statement id: " + ms.ID)
	}
	c.statements[ms.ID] = ms
	return nil
}

// Statement resolves a mapped statement by its full dotted id.
func (c *Configuration) Statement(id string) (*MappedStatement, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	ms, ok := c.statements[id]
	return ms, ok
}

// AddEnvironment registers a named environment.
func (c *Configuration) AddEnvironment(env *Environment) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.environments[env.ID] = env
}

// SetDefaultEnvironment names the environment the session factory opens
// against when none is specified explicitly.
func (c *Configuration) SetDefaultEnvironment(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.defaultEnvironment = id
}

// DefaultEnvironment resolves the default environment, failing with
// ConfigurationError if none was configured (§4.7).
func (c *Configuration) DefaultEnvironment() (*Environment, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.defaultEnvironment == "" {
		return nil, errs.ConfigurationError.New("no default environment configured")
	}
	env, ok := c.environments[c.defaultEnvironment]
	if !ok {
		return nil, errs.ConfigurationError.New("unknown default environment: " + c.defaultEnvironment)
	}
	return env, nil
}

// Environment resolves a named environment.
func (c *Configuration) Environment(id string) (*Environment, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	env, ok := c.environments[id]
	return env, ok
}

// AddCacheConfig registers the optional per-namespace second-level cache
// configuration (§6), and binds an LRU-backed SecondLevelCache when the
// eviction policy is LRU (§4.9 of SPEC_FULL).
func (c *Configuration) AddCacheConfig(cfg *CacheConfig) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.caches[cfg.Namespace] = cfg
	if cfg.Eviction == EvictionLRU {
		c.secondLevelCaches[cfg.Namespace] = NewLRUSecondLevelCache(cfg.Size)
	}
}

// CacheConfig resolves the cache configuration registered for a
// namespace, if any.
func (c *Configuration) CacheConfig(namespace string) (*CacheConfig, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	cfg, ok := c.caches[namespace]
	return cfg, ok
}

// SecondLevelCache resolves the bound second-level cache for a namespace,
// if its eviction policy has a concrete implementation.
func (c *Configuration) SecondLevelCache(namespace string) (SecondLevelCache, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	cache, ok := c.secondLevelCaches[namespace]
	return cache, ok
}
