package bridge

import (
	"fmt"
	"strings"

	esbuild "github.com/evanw/esbuild/pkg/api"
)

// ValidateJS syntax-checks generated JavaScript without executing it, so
// malformed wiring fails the page build instead of surfacing in the browser.
func ValidateJS(src string) error {
	result := esbuild.Transform(src, esbuild.TransformOptions{
		Loader: esbuild.LoaderJS,
		Target: esbuild.ES2022,
	})
	if len(result.Errors) > 0 {
		var msgs []string
		for _, e := range result.Errors {
			msgs = append(msgs, e.Text)
		}
		return fmt.Errorf("validating generated script: %s", strings.Join(msgs, "; "))
	}
	return nil
}
