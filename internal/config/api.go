package config

type ApiConfig struct {
	Url            string `yaml:"base-url"`
	TimeoutSeconds int64  `yaml:"timeout-seconds"`
}

func (a *ApiConfig) BaseUrl() string {
	return a.Url
}

func (a *ApiConfig) Timeout() int64 {
	return a.TimeoutSeconds
}
