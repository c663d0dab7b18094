package rvdata

// Config holds options shared by Database, ScriptSet and Project.
// The zero value is ready to use.
type Config struct {
	Schema       *Schema // Data directory layout (default VX Ace)
	TagAlgorithm int     // Script tag hash: 1=xxHash3, 2=FNV1a, 3=Blake2b
	SyncWrites   bool    // fsync each file before it replaces the old one
}

// withDefaults fills zero fields. The schema is cloned so later changes
// by the caller do not reach an open Database.
func (c Config) withDefaults() Config {
	if c.Schema == nil {
		c.Schema = DefaultSchema()
	} else {
		c.Schema = c.Schema.clone()
	}
	if c.Schema.Extension == "" {
		c.Schema.Extension = Extension
	}
	if c.TagAlgorithm == 0 {
		c.TagAlgorithm = AlgXXHash3
	}
	return c
}
