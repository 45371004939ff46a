//go:build !quickjs

package bridge

import "github.com/pysbridge/bridge/internal/gojart"

func newTransport() (Transport, error) {
	return gojart.New()
}
