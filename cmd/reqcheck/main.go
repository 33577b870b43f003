package main

import (
	"os"

	"reqcheck/internal/ui/cli"

	"github.com/joho/godotenv"
)

func main() {
	// A missing .env is normal; REQCHECK_* variables may come from the shell.
	_ = godotenv.Load()

	os.Exit(cli.Run(os.Args[1:]))
}
