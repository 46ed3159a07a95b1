// Package logging configures the process-wide logger.
package logging

import (
	"io"

	log "github.com/sirupsen/logrus"
)

// Setup directs the standard logrus logger to w. Debug enables debug level
// output; otherwise only Info and above are written.
func Setup(w io.Writer, debug bool) {
	log.SetOutput(w)
	log.SetFormatter(&log.TextFormatter{
		DisableTimestamp:       true,
		DisableLevelTruncation: true,
		PadLevelText:           true,
	})

	level := log.InfoLevel
	if debug {
		level = log.DebugLevel
	}
	log.SetLevel(level)
}
