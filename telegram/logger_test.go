package telegram

import (
	"os"
	"testing"

	"github.com/Strum355/log"
)

// TestMain initializes the logger the same way main() does; the log
// package panics on use before initialization.
func TestMain(m *testing.M) {
	log.InitSimpleLogger(&log.Config{Output: os.Stdout})
	os.Exit(m.Run())
}
