package main

import (
	"os"

	"github.com/gnolang/later/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
