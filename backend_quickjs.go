//go:build quickjs

package bridge

import "github.com/pysbridge/bridge/internal/quickjs"

func newTransport() (Transport, error) {
	return quickjs.New()
}
