package config

const defaultPageSize = 10

type AppConfig struct {
	ListPageSize int `yaml:"page-size"`
}

func (a *AppConfig) PageSize() int {
	if a.ListPageSize <= 0 {
		return defaultPageSize
	}
	return a.ListPageSize
}
