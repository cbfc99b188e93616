package config

import (
	"fmt"
	"slices"
	"strings"
)

// Upper bounds that keep a misconfigured run from exhausting the machine.
const (
	MaxThreads    = 4096
	MaxIterations = 100_000_000
)

// ValidationError reports one config key holding an unusable value.
type ValidationError struct {
	Field   string // dotted viper key, such as "stress.threads"
	Value   any
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s (got: %v)", e.Field, e.Message, e.Value)
}

// ValidationErrors lists every problem Validate found, in key order of
// the Config struct. Load returns it as its error.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	switch len(e) {
	case 0:
		return ""
	case 1:
		return e[0].Error()
	}

	lines := make([]string, 0, len(e)+1)
	lines = append(lines, fmt.Sprintf("%d validation errors:", len(e)))
	for i, err := range e {
		lines = append(lines, fmt.Sprintf("  %d. %s", i+1, err))
	}
	return strings.Join(lines, "\n") + "\n"
}

// ValidLogLevels returns the accepted log levels
func ValidLogLevels() []string {
	return []string{"debug", "info", "warn", "error"}
}

// ValidScenarios returns the names of the stress scenarios
func ValidScenarios() []string {
	return []string{"spinlock", "mutex", "condvar", "rwlock", "oneshot", "arc"}
}

// Validate checks the Config and returns every problem found
func (c *Config) Validate() []ValidationError {
	var errs []ValidationError

	if c.Stress.Threads < 1 || c.Stress.Threads > MaxThreads {
		errs = append(errs, ValidationError{
			Field:   "stress.threads",
			Value:   c.Stress.Threads,
			Message: fmt.Sprintf("must be between 1 and %d", MaxThreads),
		})
	}
	if c.Stress.Iterations < 1 || c.Stress.Iterations > MaxIterations {
		errs = append(errs, ValidationError{
			Field:   "stress.iterations",
			Value:   c.Stress.Iterations,
			Message: fmt.Sprintf("must be between 1 and %d", MaxIterations),
		})
	}
	for _, name := range c.Stress.Scenarios {
		if !slices.Contains(ValidScenarios(), name) {
			errs = append(errs, ValidationError{
				Field:   "stress.scenarios",
				Value:   name,
				Message: fmt.Sprintf("unknown scenario; valid: %s", strings.Join(ValidScenarios(), ", ")),
			})
		}
	}

	if !slices.Contains(ValidLogLevels(), strings.ToLower(c.Log.Level)) {
		errs = append(errs, ValidationError{
			Field:   "log.level",
			Value:   c.Log.Level,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(ValidLogLevels(), ", ")),
		})
	}

	return errs
}
