package configuration

// ExecutorType selects the default executor strategy (§6).
type ExecutorType int

const (
	Simple ExecutorType = iota
	Reuse
	Batch
)

// Settings are the engine-wide switches of §6.
type Settings struct {
	CacheEnabled             bool         `yaml:"cacheEnabled"`
	LazyLoadingEnabled       bool         `yaml:"lazyLoadingEnabled"`
	MapUnderscoreToCamelCase bool         `yaml:"mapUnderscoreToCamelCase"`
	DefaultExecutorType      ExecutorType `yaml:"-"`
	DefaultExecutorTypeName  string       `yaml:"defaultExecutorType"`
	DefaultStatementTimeout  int          `yaml:"defaultStatementTimeout"`
	UseGeneratedKeys         bool         `yaml:"useGeneratedKeys"`
	DebugMode                bool         `yaml:"debugMode"`
}

// DefaultSettings returns the conservative defaults a fresh Configuration
// starts with before a document is decoded over them.
func DefaultSettings() Settings {
	return Settings{
		CacheEnabled:            true,
		DefaultExecutorTypeName: "SIMPLE",
		DefaultExecutorType:     Simple,
	}
}

func (s *Settings) resolveExecutorType() {
	switch s.DefaultExecutorTypeName {
	case "REUSE":
		s.DefaultExecutorType = Reuse
	case "BATCH":
		s.DefaultExecutorType = Batch
	default:
		s.DefaultExecutorType = Simple
	}
}

// DataSourceKind selects which of the three §4.8 connection sources a
// session factory opens for an environment.
type DataSourceKind int

const (
	DataSourceSimple DataSourceKind = iota
	DataSourceUnpooled
	DataSourcePooled
)

// Environment describes one named data-source/transaction-factory pairing
// (§6). TransactionFactoryName selects "JDBC" (the session factory opens
// a real `*sql.Tx` and owns commit/rollback) or "MANAGED" (transaction
// lifecycle is left to an external container; commit/rollback become
// no-ops) — the two stock MyBatis transaction factories, modeled as a
// closed two-case dispatch per §9's "closed enum dispatch" guidance.
type Environment struct {
	ID                     string
	DataSourceDriver       string
	DataSourceDSN          string
	DataSourceKind         DataSourceKind
	DataSourcePoolSize     int
	TransactionFactoryName string
}

// CacheEvictionPolicy is the per-namespace second-level cache eviction
// policy named in §6. Only LRU has a concrete implementation bound to it
// (via hashicorp/golang-lru); the rest are accepted and stored, matching
// the Non-goals' "a hook exists but the policy is external".
type CacheEvictionPolicy int

const (
	EvictionLRU CacheEvictionPolicy = iota
	EvictionFIFO
	EvictionSOFT
	EvictionWEAK
)

// CacheConfig is the optional per-namespace second-level cache
// configuration of §6.
type CacheConfig struct {
	Namespace     string
	Eviction      CacheEvictionPolicy
	Size          int
	FlushInterval int
	ReadOnly      bool
}
