package main

import (
	"context"

	"newspaper-etl/cmd/newsetl/commands"
)

func main() {
	commands.ExecuteContext(context.Background())
}
