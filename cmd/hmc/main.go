// Command hmc is a small CLI front-end for the type-inference engine:
// it elaborates a source file of top-level forms and dumps the resulting
// environment, or manages a host macro manifest.
package main

import (
	"os"

	"github.com/mlcore/hindley/cmd/hmc/cmd"
)

func main() {
	os.Exit(cmd.Main())
}
