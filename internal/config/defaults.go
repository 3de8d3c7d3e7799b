package config

import (
	"time"

	"github.com/spf13/viper"
)

// InitDefaults registers the default value of every setting on v.
func InitDefaults(v *viper.Viper) {
	// Dashboard session
	v.SetDefault("backend.url", "ws://localhost:8000/ws")
	v.SetDefault("backend.dial_attempts", 5)
	v.SetDefault("dashboard.addr", "127.0.0.1:3000")
	v.SetDefault("dashboard.access_log", false)

	// Backend hub
	v.SetDefault("serve.addr", "127.0.0.1:8000")
	v.SetDefault("docker.host", "") // empty uses DOCKER_HOST
	v.SetDefault("docker.stop_timeout", 15*time.Second)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}
