// cmd/hetero/main.go
package main

import (
	cmd "github.com/strin/HeteroSampler/internal/cli"
)

// main starts the hetero CLI by delegating to the cobra root command.
func main() {
	cmd.Execute()
}
