package main

import (
	"os"

	"github.com/yilane/rag-related/cmd/ragcli"
)

func main() {
	if err := ragcli.Execute(); err != nil {
		os.Exit(1)
	}
}
