package main

import (
	"xorkevin.dev/sqlrun/cmd"
)

func main() {
	cmd.New().Execute()
}
