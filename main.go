package main

import (
	"os"

	"github.com/pentesthub/pentest-hub/cmd"
)

func main() {
	cmd.Execute(os.Args[1:])
}
