package config

type ServerConfig struct {
	ListenAddr string `yaml:"addr"`
	Backend    string `yaml:"storage"`
}

func (s *ServerConfig) Addr() string {
	return s.ListenAddr
}

// Storage selects the record storage backend, "memory" or "postgres".
func (s *ServerConfig) Storage() string {
	if s.Backend == "" {
		return "memory"
	}
	return s.Backend
}
