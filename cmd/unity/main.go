// Command unity reads Unity asset records into an editable tree and writes
// edited trees back as asset data.
//
//	unity read  -i asset.dat -t LanguageSourceAsset -s '$.mSource.mTerms[*].Term'
//	unity write -i asset.json -t LanguageSourceAsset -o asset.dat
//	unity types -c config.yaml
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
