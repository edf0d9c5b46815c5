package logging

import (
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Component derives a logger from the global one, tagged with the
// subsystem name under the "cmp" key so log lines can be filtered per
// service.
func Component(name string) zerolog.Logger {
	return log.With().Str("cmp", name).Logger()
}
