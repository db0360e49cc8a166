package main

import (
	"github.com/vast-data/vast-admin-mcp/pkg/cli"
)

func main() {
	cli.Execute()
}
