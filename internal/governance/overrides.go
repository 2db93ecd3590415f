package governance

import (
	"errors"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"ChannelGovernor/internal/domain"
)

// LoadOverrides reads operator directives from a YAML file keyed by channel
// name. A missing file means no overrides; an unreadable or malformed file is
// an error because silently dropping operator intent is worse than failing.
// Unknown directives are skipped with a warning.
func LoadOverrides(path string, logger *slog.Logger) (map[string]domain.Override, error) {
	if logger == nil {
		logger = slog.Default()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return map[string]domain.Override{}, nil
		}
		return nil, err
	}

	var raw map[string]string
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, err
	}

	overrides := make(map[string]domain.Override, len(raw))
	for channel, directive := range raw {
		ov := domain.Override(directive)
		if !ov.Valid() {
			logger.Warn("skipping unknown override directive",
				"channel", channel, "directive", directive)
			continue
		}
		overrides[channel] = ov
	}
	return overrides, nil
}
