package driving

import "github.com/custodia-labs/bookbot/internal/core/domain"

// SettingsService resolves and edits application settings.
type SettingsService interface {
	// Get returns the settings with defaults applied and the credential
	// resolved from the environment. It does not validate.
	Get() (domain.Settings, error)

	// Set stores one config key. Known keys are type-checked.
	Set(key, value string) error

	// Keys returns the recognised config keys in display order.
	Keys() []string
}
