package main

import (
	"github.com/joho/godotenv"

	"github.com/KaramelBytes/docchat-cli/cmd"
)

func main() {
	// A .env file in the working directory may carry DOCCHAT_* settings.
	_ = godotenv.Load()
	cmd.Execute()
}
