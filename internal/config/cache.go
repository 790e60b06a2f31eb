package config

type CacheConfig struct {
	NodeHosts  []string `yaml:"hosts"`
	SessionKey string   `yaml:"session-key"`
	LedgerKey  string   `yaml:"ledger-key"`
}

func (c *CacheConfig) Hosts() []string {
	return c.NodeHosts
}

func (c *CacheConfig) SessionSnapshotKey() string {
	return c.SessionKey
}

func (c *CacheConfig) LedgerSnapshotKey() string {
	return c.LedgerKey
}
