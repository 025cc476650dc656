package config

import (
	"os"
	"sync"

	"github.com/joho/godotenv"
)

var dotenvOnce sync.Once

// LoadDotenv loads variables from ENV_FILE, or ./.env when unset. Variables
// already in the environment win. NO_DOTENV=1 disables loading.
func LoadDotenv() {
	dotenvOnce.Do(func() {
		if os.Getenv("NO_DOTENV") == "1" {
			return
		}
		path := ".env"
		if v := os.Getenv("ENV_FILE"); v != "" {
			path = v
		}
		_ = godotenv.Load(path)
	})
}
