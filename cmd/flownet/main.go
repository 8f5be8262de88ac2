package main

import (
	"github.com/joho/godotenv"

	"github.com/flownetlab/flownet/cmd/flownet/cmd"
)

func main() {
	// A missing .env file is fine, environment variables still apply.
	_ = godotenv.Load()

	cmd.Execute()
}
