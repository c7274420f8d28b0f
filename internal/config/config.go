package config

import (
	"fmt"
	"os"

	"github.com/go-yaml/yaml"
)

type Config struct {
	Server Server `yaml:"server"`
}

type Server struct {
	ListenAddr    string `yaml:"listenAddr"`
	PostgresDsn   string `yaml:"postgresDsn"`
	RedisAddr     string `yaml:"redisAddr"`
	RedisDB       int    `yaml:"redisDB"`
	EnableTrace   bool   `yaml:"enableTrace"`
	TraceEndpoint string `yaml:"traceEndpoint"`
}

// Load reads the yaml config at path. Environment variables DATABASE_URL
// and REDIS_ADDR override the file values, so a connection string alone is
// enough to run the service. Path may be empty if the environment supplies
// everything.
func Load(path string) (Config, error) {

	var config Config

	if path != "" {
		file, err := os.Open(path)
		if err != nil {
			return Config{}, err
		}
		defer file.Close()

		err = yaml.NewDecoder(file).Decode(&config)
		if err != nil {
			return Config{}, err
		}
	}

	if dsn := os.Getenv("DATABASE_URL"); dsn != "" {
		config.Server.PostgresDsn = dsn
	}
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		config.Server.RedisAddr = addr
	}

	if config.Server.PostgresDsn == "" {
		return Config{}, fmt.Errorf("postgres dsn is not set (config or DATABASE_URL)")
	}
	if config.Server.ListenAddr == "" {
		config.Server.ListenAddr = ":8000"
	}

	return config, nil
}
