package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/jinzhu/configor"
)

const DefaultPath = "config/config.dev.json"

type Config struct {
	AppConfig      AppConfig      `env:"APPCONFIG"`
	DBConfig       DBConfig       `env:"DBCONFIG"`
	AIConfig       AIConfig       `env:"AICONFIG"`
	SecurityConfig SecurityConfig `env:"SECURITYCONFIG"`
	IRCConfig      IRCConfig      `env:"IRCCONFIG"`
}

type AppConfig struct {
	APPName       string        `default:"heavenly"`
	Version       string        `default:"x.x.x" env:"VERSION"`
	Port          int           `default:"8080" env:"APP_PORT"`
	HealthPort    int           `default:"0" env:"HEALTH_PORT"`
	GinMode       string        `default:"release" env:"GIN_MODE"`
	SweepInterval time.Duration `default:"1m" env:"SWEEP_INTERVAL"`
	// MeetingBaseURL prefixes generated meeting rooms; empty leaves meeting_link unset.
	MeetingBaseURL string `default:"" env:"MEETING_BASE_URL"`
}

type DBConfig struct {
	Driver     string `default:"postgres" env:"DBDRIVER"`
	Host       string `default:"localhost" env:"DBHOST"`
	DataBase   string `default:"heavenly" env:"DBNAME"`
	User       string `default:"postgres" env:"DBUSERNAME"`
	Password   string `required:"true" env:"DBPASSWORD" default:"mysecretpassword"`
	Port       uint   `default:"5432" env:"DBPORT"`
	SSLMode    string `default:"disable" env:"DBSSL"`
	SQLitePath string `default:"data/heavenly.db" env:"SQLITE_PATH"`
}

// DSN is the gorm postgres connection string.
func (c DBConfig) DSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d sslmode=%s",
		c.Host, c.User, c.Password, c.DataBase, c.Port, c.SSLMode)
}

// MigrationURL is the golang-migrate URL for the pgx/v5 driver.
func (c DBConfig) MigrationURL() string {
	return fmt.Sprintf("pgx5://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.DataBase, c.SSLMode)
}

type AIConfig struct {
	APIKey  string        `env:"OPENAI_API_KEY" default:""`
	BaseURL string        `env:"OPENAI_BASE_URL" default:""`
	Model   string        `default:"gpt-4o-mini" env:"AI_MODEL"`
	Timeout time.Duration `default:"30s" env:"AI_TIMEOUT"`
}

type SecurityConfig struct {
	SessionTTL time.Duration `default:"168h" env:"SESSION_TTL"`
	// MessageKey is a hex encoded 32 byte key; empty stores messages in clear text.
	MessageKey string `env:"MESSAGE_KEY" default:""`
}

// IRCConfig configures the on-call crisis alert relay. Empty Host disables it.
type IRCConfig struct {
	Host             string `env:"IRC_HOST"`
	Port             int    `env:"IRC_PORT" default:"6697"`
	SSL              bool   `env:"IRC_SSL"`
	Nick             string `env:"IRC_NICK" default:"heavenly-alerts"`
	ChannelsString   string `env:"IRC_CHANNELS"`
	Channels         []string
	Network          string `env:"IRC_NETWORK"`
	NickservCommand  string `env:"NICKSERV_COMMAND" default:"PRIVMSG NickServ IDENTIFY %s"`
	NickservPassword string `env:"NICKSERV_PASSWORD" default:""`
}

func (c IRCConfig) Enabled() bool {
	return c.Host != "" && len(c.Channels) > 0
}

func LoadConfig(path string) (Config, error) {
	var config = Config{}
	if err := configor.Load(&config, path); err != nil {
		return Config{}, err
	}

	config.IRCConfig.Channels = splitChannels(config.IRCConfig.ChannelsString)
	return config, nil
}

func LoadConfigOrPanic() Config {
	config, err := LoadConfig(DefaultPath)
	if err != nil {
		panic(fmt.Errorf("load config: %w", err))
	}
	return config
}

func splitChannels(s string) []string {
	var out []string
	for _, ch := range strings.Split(s, ",") {
		ch = strings.TrimSpace(ch)
		if ch != "" {
			out = append(out, ch)
		}
	}
	return out
}
