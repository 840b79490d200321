package agent

import (
	"errors"
	"fmt"
)

// ErrConfig is the sentinel wrapped by every configuration error.
var ErrConfig = errors.New("invalid agent configuration")

// ConfigError reports an invalid agent option.
type ConfigError struct {
	Agent  string
	Option string
	Value  any
	Reason string
}

func (e *ConfigError) Error() string {
	if e.Option == "" {
		return fmt.Sprintf("%s: %s", e.Agent, e.Reason)
	}
	return fmt.Sprintf("%s: option %s=%v: %s", e.Agent, e.Option, e.Value, e.Reason)
}

// Unwrap lets errors.Is match ErrConfig.
func (e *ConfigError) Unwrap() error {
	return ErrConfig
}

func configErr(agent, option string, value any, reason string) error {
	return &ConfigError{Agent: agent, Option: option, Value: value, Reason: reason}
}
