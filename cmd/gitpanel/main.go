// cmd/gitpanel/main.go
package main

import (
	"os"
)

func main() {
	rootCmd, a := newRootCmd()
	err := rootCmd.Execute()
	a.shutdown()
	if err != nil {
		os.Exit(1)
	}
}
