package main

import (
	"os"

	"github.com/grocyscan/grocy-scanner/cmd/grocy-scanner/subcmd"
)

func main() {
	if err := subcmd.Execute(); err != nil {
		os.Exit(1)
	}
}
