package initializers

import (
	"log"

	"github.com/joho/godotenv"
)

// LoadEnv reads .env into the process environment when the file exists.
// Variables already set win over the file.
func LoadEnv() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using process environment")
	}
}
