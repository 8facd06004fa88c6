package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
)

func GetConfig(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	var cfg Config
	if err = json.NewDecoder(f).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	// Override with environment variables
	if port := os.Getenv("PORT"); port != "" {
		p, err := strconv.Atoi(port)
		if err != nil {
			return nil, err
		}
		cfg.App.Port = p
	}

	// Feed environment variables
	if host := os.Getenv("FEED_HOST"); host != "" {
		cfg.Feed.Host = host
	}
	if port := os.Getenv("FEED_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			cfg.Feed.Port = p
		}
	}

	// Archive environment variables
	if dir := os.Getenv("SAVE_DIR"); dir != "" {
		cfg.Archive.SaveDir = dir
	}

	// Recipe database environment variables
	if host := os.Getenv("DB_HOST"); host != "" {
		cfg.RecipeDB.DBHost = host
	}
	if port := os.Getenv("DB_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			cfg.RecipeDB.DBPort = p
		}
	}
	if user := os.Getenv("DB_USER"); user != "" {
		cfg.RecipeDB.DBUsername = user
	}
	if password := os.Getenv("DB_PASSWORD"); password != "" {
		cfg.RecipeDB.DBPassword = password
	}
	if name := os.Getenv("DB_NAME"); name != "" {
		cfg.RecipeDB.DBName = name
	}

	// Redis environment variables
	if redisHost := os.Getenv("REDIS_HOST"); redisHost != "" {
		cfg.Cache.RedisHost = redisHost
	}
	if redisPort := os.Getenv("REDIS_PORT"); redisPort != "" {
		cfg.Cache.RedisPort, _ = strconv.Atoi(redisPort)
	}
	if redisPassword := os.Getenv("REDIS_PASSWORD"); redisPassword != "" {
		cfg.Cache.RedisPassword = redisPassword
	}
	if redisDB := os.Getenv("REDIS_DB"); redisDB != "" {
		cfg.Cache.RedisDB, _ = strconv.Atoi(redisDB)
	}
	if poolSize := os.Getenv("REDIS_POOL_SIZE"); poolSize != "" {
		cfg.Cache.PoolSize, _ = strconv.Atoi(poolSize)
	}
	if minIdleConns := os.Getenv("REDIS_MIN_IDLE_CONNS"); minIdleConns != "" {
		cfg.Cache.MinIdleConns, _ = strconv.Atoi(minIdleConns)
	}

	return &cfg, nil
}

type Config struct {
	App      App      `json:"app"`
	Feed     Feed     `json:"feed"`
	Archive  Archive  `json:"archive"`
	Cache    Cache    `json:"cache"`
	RecipeDB RecipeDB `json:"recipe_db"`
}

type App struct {
	Port int `json:"port"`
}

type Feed struct {
	Host string `json:"host"`
	Port int    `json:"port"`
}

type Archive struct {
	// SaveDir overrides save directory auto-detection when set.
	SaveDir string `json:"save_dir"`
}

type Cache struct {
	RedisHost     string `json:"redis_host"`
	RedisPort     int    `json:"redis_port"`
	RedisPassword string `json:"redis_password"`
	RedisDB       int    `json:"redis_db"`
	PoolSize      int    `json:"pool_size"`
	MinIdleConns  int    `json:"min_idle_conns"`
}

type RecipeDB struct {
	DBHost     string `json:"db_host"`
	DBPort     int    `json:"db_port"`
	DBUsername string `json:"db_username"`
	DBPassword string `json:"db_password"`
	DBName     string `json:"db_name"`
	DBSSLMode  string `json:"db_ssl_mode"`
}
