// Package guard switches the binaries into test mode when imported from a
// test, so calling main() returns before touching Redis or the network.
package guard

import (
	"os"
	"sync"
)

var once sync.Once

func init() {
	once.Do(func() {
		if os.Getenv("CHILLZONE_TEST_MODE") == "" {
			_ = os.Setenv("CHILLZONE_TEST_MODE", "1")
		}
	})
}
