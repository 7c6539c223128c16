package config

import "os"

// APIKeySource says where a credential was found.
type APIKeySource string

const (
	KeySourceEnv    APIKeySource = "env"
	KeySourceConfig APIKeySource = "config"
	KeySourceNone   APIKeySource = "none"
)

// KeyStatus is the display status of one credential. Masked never holds
// more than the first and last three characters.
type KeyStatus struct {
	Name     string       `json:"name"`
	Source   APIKeySource `json:"source"`
	EnvVar   string       `json:"env_var,omitempty"`
	IsSet    bool         `json:"is_set"`
	Masked   string       `json:"masked,omitempty"`
	Required bool         `json:"required"`
}

// apiKey describes a credential marketpulse reads and the env vars that
// can supply it, in precedence order.
type apiKey struct {
	name     string
	required bool
	value    func(*Config) string
	env      []string
}

var apiKeys = []apiKey{
	{
		name:     "FRED API Key",
		required: true,
		value:    func(c *Config) string { return c.Sources.FRED.APIKey },
		env:      []string{"MARKETPULSE_SOURCES_FRED_API_KEY", "FRED_API_KEY"},
	},
}

// CheckAPIKeys reports every credential's status for `marketpulse status`.
func CheckAPIKeys(cfg *Config) []KeyStatus {
	out := make([]KeyStatus, 0, len(apiKeys))
	for _, k := range apiKeys {
		out = append(out, k.status(cfg))
	}
	return out
}

func (k apiKey) status(cfg *Config) KeyStatus {
	v := k.value(cfg)
	st := KeyStatus{Name: k.name, Required: k.required, IsSet: v != "", Source: KeySourceNone}
	if v == "" {
		return st
	}

	st.Source = KeySourceConfig
	st.Masked = maskKey(v)
	for _, env := range k.env {
		if os.Getenv(env) == v {
			st.Source = KeySourceEnv
			st.EnvVar = env
			break
		}
	}
	return st
}

func maskKey(key string) string {
	if len(key) <= 8 {
		return "***"
	}
	return key[:3] + "..." + key[len(key)-3:]
}
