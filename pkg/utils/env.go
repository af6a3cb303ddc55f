package utils

import (
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// LoadConfig reads an optional .env file from the given path and binds
// environment variables through viper so the cmd layer can read them.
func LoadConfig(path string) {
	_ = godotenv.Load(filepath.Join(path, ".env"))

	viper.AddConfigPath(path)
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AutomaticEnv()

	// Missing .env is fine, environment variables still apply.
	_ = viper.ReadInConfig()
}
