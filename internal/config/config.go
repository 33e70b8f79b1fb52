package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
// The values are read by Viper from a config file or environment variables.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	JWT      JWTConfig      `mapstructure:"jwt"`
	Email    EmailConfig    `mapstructure:"email"`
	S3       S3Config       `mapstructure:"s3"`
	Booking  BookingConfig  `mapstructure:"booking"`
}

type ServerConfig struct {
	Address string `mapstructure:"address"`
	Env     string `mapstructure:"env"` // "development" or "production"
}

type DatabaseConfig struct {
	URI  string `mapstructure:"uri"`
	Name string `mapstructure:"name"`
}

// JWTConfig defines JWT specific configuration
type JWTConfig struct {
	Secret     string        `mapstructure:"secret"`
	Expiration time.Duration `mapstructure:"expiration"`
}

// EmailConfig defines SMTP settings for outbound notification mail.
type EmailConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	From     string `mapstructure:"from"`
}

type S3Config struct {
	Endpoint        string `mapstructure:"endpoint"`
	Region          string `mapstructure:"region"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	BucketName      string `mapstructure:"bucket_name"`
	UseSSL          bool   `mapstructure:"use_ssl"`
}

// BookingConfig carries the scheduling business rules. The defaults mirror
// the gym's physical constraints but every value is tunable per deployment.
type BookingConfig struct {
	// CapacityCeiling is the maximum number of overlapping active sessions.
	CapacityCeiling int `mapstructure:"capacity_ceiling"`
	// MaxSessionDuration caps a single session's length.
	MaxSessionDuration time.Duration `mapstructure:"max_session_duration"`
	// DailySessionLimit is the number of sessions a client may hold per
	// calendar day.
	DailySessionLimit int `mapstructure:"daily_session_limit"`
}

// LoadConfig reads configuration from file or environment variables.
func LoadConfig(path string) (config Config, err error) {
	viper.AddConfigPath(path)
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	// Environment variables override file values, e.g. jwt.secret -> JWT_SECRET
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(`.`, `_`))

	viper.SetDefault("server.address", ":8080")
	viper.SetDefault("server.env", "development")
	viper.SetDefault("database.uri", "mongodb://localhost:27017")
	viper.SetDefault("database.name", "gym_booking")
	viper.SetDefault("jwt.expiration", "168h") // 7 days
	viper.SetDefault("email.host", "smtp.gmail.com")
	viper.SetDefault("email.port", 587)
	viper.SetDefault("email.from", `"Gym Web" <noreply@gymweb.com>`)
	viper.SetDefault("s3.use_ssl", true)
	viper.SetDefault("booking.capacity_ceiling", 8)
	viper.SetDefault("booking.max_session_duration", "3h")
	viper.SetDefault("booking.daily_session_limit", 1)

	err = viper.ReadInConfig()
	// Missing config file is fine; env vars and defaults still apply.
	if _, ok := err.(viper.ConfigFileNotFoundError); ok {
		err = nil
	} else if err != nil {
		return
	}

	err = viper.Unmarshal(&config)
	return
}
