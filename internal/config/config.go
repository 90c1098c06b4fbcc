package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config agrupa toda la configuración del servicio.
// Todo viene de env vars (o de un .env local en dev); no hay flags.
type Config struct {
	AppName string `mapstructure:"APP_NAME"`
	Env     string `mapstructure:"ENV"`
	Port    string `mapstructure:"PORT"`

	// DBDSN vacío => repos in-memory (modo dev / tests).
	DBDSN string `mapstructure:"DB_DSN"`

	LogLevel  string `mapstructure:"LOG_LEVEL"`
	LogFormat string `mapstructure:"LOG_FORMAT"`

	// Formulario de medicamentos (directorio externo). Opcional:
	// si BaseURL viene vacío, el lookup queda deshabilitado.
	FormularyBaseURL string `mapstructure:"FORMULARY_BASE_URL"`
	FormularyAPIKey  string `mapstructure:"FORMULARY_API_KEY"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("APP_NAME", "med-adherence")
	v.SetDefault("ENV", "development")
	v.SetDefault("PORT", "8080")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "text")

	// BindEnv explícito para que Unmarshal los levante aunque no haya .env
	for _, key := range []string{
		"APP_NAME", "ENV", "PORT", "DB_DSN",
		"LOG_LEVEL", "LOG_FORMAT",
		"FORMULARY_BASE_URL", "FORMULARY_API_KEY",
	} {
		_ = v.BindEnv(key)
	}

	// .env es opcional; si no existe seguimos con env puro.
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}

	cfg.Port = strings.TrimPrefix(strings.TrimSpace(cfg.Port), ":")
	if cfg.Port == "" {
		cfg.Port = "8080"
	}

	return cfg, nil
}

// Addr devuelve la dirección de escucha del server HTTP.
func (c *Config) Addr() string {
	return ":" + c.Port
}

// IsDev ayuda a decidir defaults amigables (logs con color, etc).
func (c *Config) IsDev() bool {
	return strings.EqualFold(strings.TrimSpace(c.Env), "development")
}
