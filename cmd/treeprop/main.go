// Command treeprop computes partition functions, marginals and exact joint
// samples of tree-structured discrete factor graphs described in YAML.
//
//	treeprop logz      --model m.yaml
//	treeprop marginals --model m.yaml
//	treeprop sample    --model m.yaml --samples 100 --seed 7 [--prior]
package main

import (
	"os"
)

func main() {
	if err := newRootCmd(os.Stdout, os.Stderr).Execute(); err != nil {
		os.Exit(1)
	}
}
