package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

const defaultConfigPath = "configs/config.yaml"

var ErrInvalidChatID = errors.New("invalid chat id")

type Config struct {
	App       AppConfig       `yaml:"app"`
	VK        VKConfig        `yaml:"vk"`
	Telegram  TelegramConfig  `yaml:"telegram"`
	Captioner CaptionerConfig `yaml:"captioner"`
	Storage   StorageConfig   `yaml:"storage"`
	NATS      NATSConfig      `yaml:"nats"`
	Schedule  ScheduleConfig  `yaml:"schedule"`
	Health    HealthConfig    `yaml:"health"`
}

type AppConfig struct {
	Name        string `yaml:"name" env:"APP_NAME" env-default:"vk-compliment-bot"`
	Environment string `yaml:"environment" env:"APP_ENVIRONMENT" env-default:"production"`
	LogLevel    string `yaml:"log_level" env:"APP_LOG_LEVEL" env-default:"info"`
	CatalogPath string `yaml:"catalog_path" env:"CATALOG_PATH"`
}

type VKConfig struct {
	Token      string        `yaml:"token" env:"VK_TOKEN"`
	GroupID    string        `yaml:"group_id" env:"GROUP_ID"`
	APIVersion string        `yaml:"api_version" env:"VK_API_VERSION" env-default:"5.131"`
	BaseURL    string        `yaml:"base_url" env:"VK_BASE_URL" env-default:"https://api.vk.com/method"`
	PageSize   int           `yaml:"page_size" env:"VK_PAGE_SIZE" env-default:"5"`
	Timeout    time.Duration `yaml:"timeout" env:"VK_TIMEOUT" env-default:"10s"`
}

type TelegramConfig struct {
	Token           string        `yaml:"token" env:"TELEGRAM_TOKEN"`
	TrackingChatID  string        `yaml:"tracking_chat_id" env:"CHAT_ID"`
	RecipientChatID string        `yaml:"recipient_chat_id" env:"CHAT_ID_HER"`
	APIURL          string        `yaml:"api_url" env:"TELEGRAM_API_URL" env-default:"https://api.telegram.org"`
	Timeout         time.Duration `yaml:"timeout" env:"TELEGRAM_TIMEOUT" env-default:"10s"`
}

// ChatIDs returns the configured destination chats, skipping empty values.
func (t TelegramConfig) ChatIDs() ([]int64, error) {
	var ids []int64
	for _, raw := range []string{t.TrackingChatID, t.RecipientChatID} {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w %q: %v", ErrInvalidChatID, raw, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

type CaptionerConfig struct {
	HFToken          string        `yaml:"hf_token" env:"HF_TOKEN"`
	HFURL            string        `yaml:"hf_url" env:"HF_URL" env-default:"https://api-inference.huggingface.co/models/Salesforce/blip-image-captioning-base"`
	AlternativeURL   string        `yaml:"alternative_url" env:"CAPTION_ALT_URL" env-default:"https://api.ttt.tf/v1/caption"`
	OpenAIKey        string        `yaml:"openai_key" env:"OPENAI_API_KEY"`
	OpenAIModel      string        `yaml:"openai_model" env:"OPENAI_MODEL" env-default:"gpt-4o-mini"`
	OpenAIBaseURL    string        `yaml:"openai_base_url" env:"OPENAI_BASE_URL" env-default:"https://api.openai.com/v1"`
	GeminiKey        string        `yaml:"gemini_key" env:"GEMINI_API_KEY"`
	GeminiModel      string        `yaml:"gemini_model" env:"GEMINI_MODEL" env-default:"gemini-2.5-flash-lite"`
	GeminiBaseURL    string        `yaml:"gemini_base_url" env:"GEMINI_BASE_URL"`
	DownloadTimeout  time.Duration `yaml:"download_timeout" env:"CAPTION_DOWNLOAD_TIMEOUT" env-default:"10s"`
	TranslateTimeout time.Duration `yaml:"translate_timeout" env:"TRANSLATE_TIMEOUT" env-default:"8s"`
	GoogleURL        string        `yaml:"google_translate_url" env:"GOOGLE_TRANSLATE_URL" env-default:"https://translate.googleapis.com/translate_a/single"`
	LibreURL         string        `yaml:"libre_translate_url" env:"LIBRE_TRANSLATE_URL" env-default:"https://libretranslate.de/translate"`
}

type StorageConfig struct {
	Backend  string         `yaml:"backend" env:"STATE_BACKEND" env-default:"file"`
	File     FileConfig     `yaml:"file"`
	Database DatabaseConfig `yaml:"database"`
	S3       S3Config       `yaml:"s3"`
}

type FileConfig struct {
	Path      string `yaml:"path" env:"STATE_FILE" env-default:"bot_state.json"`
	GitSync   bool   `yaml:"git_sync" env:"STATE_GIT_SYNC" env-default:"false"`
	GitRemote string `yaml:"git_remote" env:"STATE_GIT_REMOTE" env-default:"origin"`
	GitBranch string `yaml:"git_branch" env:"STATE_GIT_BRANCH" env-default:"main"`
}

type DatabaseConfig struct {
	Host           string `yaml:"host" env:"DB_HOST" env-default:"localhost"`
	Port           int    `yaml:"port" env:"DB_PORT" env-default:"5432"`
	User           string `yaml:"user" env:"DB_USER" env-default:"vkbot"`
	Password       string `yaml:"password" env:"DB_PASSWORD"`
	Name           string `yaml:"name" env:"DB_NAME" env-default:"vkbot"`
	MaxConnections int    `yaml:"max_connections" env:"DB_MAX_CONNECTIONS" env-default:"4"`
	MinConnections int    `yaml:"min_connections" env:"DB_MIN_CONNECTIONS" env-default:"1"`
	StateKey       string `yaml:"state_key" env:"DB_STATE_KEY" env-default:"default"`
}

func (d DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=disable",
		d.User, d.Password, d.Host, d.Port, d.Name,
	)
}

type S3Config struct {
	Bucket    string `yaml:"bucket" env:"S3_BUCKET"`
	Key       string `yaml:"key" env:"S3_KEY" env-default:"bot_state.json"`
	Region    string `yaml:"region" env:"S3_REGION" env-default:"auto"`
	Endpoint  string `yaml:"endpoint" env:"S3_ENDPOINT"`
	AccessKey string `yaml:"access_key" env:"S3_ACCESS_KEY"`
	SecretKey string `yaml:"secret_key" env:"S3_SECRET_KEY"`
}

type NATSConfig struct {
	Enabled    bool   `yaml:"enabled" env:"NATS_ENABLED" env-default:"false"`
	URL        string `yaml:"url" env:"NATS_URL" env-default:"nats://localhost:4222"`
	StreamName string `yaml:"stream_name" env:"NATS_STREAM_NAME" env-default:"VKBOT"`
}

// ScheduleRule fires a scheduled category on the given cron weekdays at a
// random minute inside [WindowStart, WindowEnd).
type ScheduleRule struct {
	Category    string `yaml:"category"`
	Days        string `yaml:"days"`
	WindowStart string `yaml:"window_start"`
	WindowEnd   string `yaml:"window_end"`
}

type ScheduleConfig struct {
	PollInterval          time.Duration  `yaml:"poll_interval" env:"POLL_INTERVAL" env-default:"1m"`
	Timezone              string         `yaml:"timezone" env:"SCHEDULE_TIMEZONE" env-default:"Europe/Moscow"`
	EquipmentStudioChance float64        `yaml:"equipment_studio_chance" env:"EQUIPMENT_STUDIO_CHANCE" env-default:"0.142857"`
	Rules                 []ScheduleRule `yaml:"rules"`
}

// DefaultRules mirror the weekly rhythm the bot has always used.
func DefaultRules() []ScheduleRule {
	return []ScheduleRule{
		{Category: "weekly", Days: "MON", WindowStart: "10:00", WindowEnd: "13:00"},
		{Category: "tattoo_ideas", Days: "WED", WindowStart: "10:00", WindowEnd: "13:00"},
		{Category: "client_interactions", Days: "FRI", WindowStart: "10:00", WindowEnd: "13:00"},
		{Category: "equipment_and_studio", Days: "*", WindowStart: "10:00", WindowEnd: "13:00"},
	}
}

type HealthConfig struct {
	Port     int    `yaml:"port" env:"HEALTH_PORT" env-default:"8080"`
	Endpoint string `yaml:"endpoint" env:"HEALTH_ENDPOINT" env-default:"/healthz"`
}

// Load reads CONFIG_PATH when the file exists and the environment otherwise.
// Environment variables always win over file values.
func Load() (*Config, error) {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = defaultConfigPath
	}

	var cfg Config

	if _, err := os.Stat(configPath); err == nil {
		if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
			return nil, fmt.Errorf("failed to read config from %s: %w", configPath, err)
		}
	} else if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("failed to read config from environment: %w", err)
	}

	if len(cfg.Schedule.Rules) == 0 {
		cfg.Schedule.Rules = DefaultRules()
	}

	return &cfg, nil
}

// Missing lists the secrets and identifiers that are not set. The bot keeps
// running without them; the affected calls become logged no-ops.
func (c *Config) Missing() []string {
	var missing []string
	required := []struct {
		name  string
		value string
	}{
		{"VK_TOKEN", c.VK.Token},
		{"GROUP_ID", c.VK.GroupID},
		{"TELEGRAM_TOKEN", c.Telegram.Token},
		{"CHAT_ID", c.Telegram.TrackingChatID},
		{"CHAT_ID_HER", c.Telegram.RecipientChatID},
		{"HF_TOKEN", c.Captioner.HFToken},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			missing = append(missing, r.name)
		}
	}
	return missing
}
