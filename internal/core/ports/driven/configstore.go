package driven

// ConfigStore holds raw configuration values under dot-separated keys
// such as "llm.model". SettingsService layers typing and defaults on top.
type ConfigStore interface {
	// Get returns the stored value and whether the key is present.
	Get(key string) (any, bool)

	// Typed getters return the zero value for missing or mistyped keys.
	// GetFloat also accepts integers.
	GetString(key string) string
	GetInt(key string) int
	GetFloat(key string) float64
	GetBool(key string) bool

	// Keys lists the stored keys, sorted.
	Keys() []string

	// Set stores value and persists immediately.
	Set(key string, value any) error

	Save() error
	Load() error

	// Path is the backing file, or a pseudo path for in-memory stores.
	Path() string
}
