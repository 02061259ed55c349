package config

import "time"

type Config interface {
	EnvConfig
	APIConfig
	StorageConfig
	MockConfig
}

type EnvConfig interface {
	GetPort() string
	GetAppName() string
	GetEnv() string
	GetLogLevel() string
}

// APIConfig describes the remote API the client talks to.
type APIConfig interface {
	GetBaseURL() string
	GetLoginPath() string
	GetRefreshPath() string
	GetLogoutPath() string
	GetRefreshExemptPaths() []string
	GetRequestTimeout() time.Duration
	GetIssuerURL() string
}

type StorageConfig interface {
	GetCredentialsFile() string
}

// MockConfig seeds the mock remote API.
type MockConfig interface {
	GetAdminID() string
	GetAdminPassword() string
	GetSigningSecret() string
	GetAccessTokenExpiry() time.Duration
	GetRefreshTokenExpiry() time.Duration
}

type mainConfig struct {
	EnvVars
	API
	Storage
	Mock
}

// New builds a Config from the environment, overlaid on the YAML file named by CONFIG_FILE when set.
// An unreadable config file is ignored and defaults apply.
func New() Config {
	c, err := Load(GetEnv(configFileVar, ""))
	if err != nil {
		return newMainConfig(source{})
	}
	return c
}

// Load builds a Config using the YAML file at path as the fallback for unset environment variables.
// An empty path or a missing file yields a config backed by the environment and defaults only.
func Load(path string) (Config, error) {
	values, err := readFile(path)
	if err != nil {
		return nil, err
	}
	return newMainConfig(source{file: values}), nil
}

func newMainConfig(src source) mainConfig {
	return mainConfig{
		EnvVars: EnvVars{src: src},
		API:     API{src: src},
		Storage: Storage{src: src},
		Mock:    Mock{src: src},
	}
}
