package config

import (
	"log"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Environment string `mapstructure:"ENVIRONMENT"`
	ServerAddr  string `mapstructure:"SERVER_ADDR"`
	DBUrl       string `mapstructure:"DB_URL"`
	RedisURL    string `mapstructure:"REDIS_URL"`
	JWTSecret   string `mapstructure:"JWT_SECRET"`

	LogLevel  string `mapstructure:"LOG_LEVEL"`
	LogFormat string `mapstructure:"LOG_FORMAT"`

	SMTPHost     string `mapstructure:"SMTP_HOST"`
	SMTPPort     string `mapstructure:"SMTP_PORT"`
	SMTPUsername string `mapstructure:"SMTP_USERNAME"`
	SMTPPassword string `mapstructure:"SMTP_PASSWORD"`
	SMTPFrom     string `mapstructure:"SMTP_FROM"`

	OTPExpiryMinutes  int `mapstructure:"OTP_EXPIRY_MINUTES"`
	OTPMaxAttempts    int `mapstructure:"OTP_MAX_ATTEMPTS"`
	OTPResendCooldown int `mapstructure:"OTP_RESEND_COOLDOWN_SECONDS"`
	OTPHourlyCap      int `mapstructure:"OTP_HOURLY_CAP"`

	// Password policy parameters, not constants
	BcryptCost        int `mapstructure:"BCRYPT_COST"`
	PasswordMinLength int `mapstructure:"PASSWORD_MIN_LENGTH"`

	SweepIntervalMinutes int `mapstructure:"SWEEP_INTERVAL_MINUTES"`
}

func (c *Config) OTPExpiry() time.Duration {
	return time.Duration(c.OTPExpiryMinutes) * time.Minute
}

func (c *Config) ResendCooldown() time.Duration {
	return time.Duration(c.OTPResendCooldown) * time.Second
}

func (c *Config) SweepInterval() time.Duration {
	return time.Duration(c.SweepIntervalMinutes) * time.Minute
}

func LoadConfig() Config {
	viper.SetConfigFile(".env")
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		log.Println("No .env file found, using env variables only")
	}

	var c Config
	if err := viper.Unmarshal(&c); err != nil {
		log.Fatal("config unmarshal error:", err)
	}

	if c.JWTSecret == "" {
		log.Fatal("JWT_SECRET must be set")
	}

	return c
}

func setDefaults() {
	viper.SetDefault("ENVIRONMENT", "development")
	viper.SetDefault("SERVER_ADDR", ":8080")
	viper.SetDefault("REDIS_URL", "redis://localhost:6379/0")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("LOG_FORMAT", "console")
	viper.SetDefault("SMTP_PORT", "465")
	viper.SetDefault("OTP_EXPIRY_MINUTES", 10)
	viper.SetDefault("OTP_MAX_ATTEMPTS", 3)
	viper.SetDefault("OTP_RESEND_COOLDOWN_SECONDS", 60)
	viper.SetDefault("OTP_HOURLY_CAP", 5)
	viper.SetDefault("BCRYPT_COST", 12)
	viper.SetDefault("PASSWORD_MIN_LENGTH", 8)
	viper.SetDefault("SWEEP_INTERVAL_MINUTES", 15)
}
