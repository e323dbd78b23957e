package cfg

import (
	"errors"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type RedisConfig struct {
	Host     string
	Port     string
	Password string
}

type WeChatConfig struct {
	AppID        string
	AppSecret    string
	RedirectURL  string
	DefaultScope string
	UIDField     string
}

type ObservabilityConfig struct {
	ServiceName  string
	Environment  string
	OTLPEndpoint string
}

type Config struct {
	AppEnv            string
	AppPort           string
	RedisConfig       RedisConfig
	WeChatConfig      WeChatConfig
	Observability     ObservabilityConfig
	StateTTLMinutes   int
	SessionTTLMinutes int
}

func Load() (*Config, error) {
	var errs []error

	// .env is optional; deployments may set the environment directly
	_ = godotenv.Load()

	appEnv := mustEnv("APP_ENV", &errs)
	appPort := mustEnv("APP_PORT", &errs)

	redisHost := mustEnv("REDIS_HOST", &errs)
	redisPort := mustEnv("REDIS_PORT", &errs)
	redisPassword := os.Getenv("REDIS_PASSWORD")

	wechatAppID := mustEnv("WECHAT_APP_ID", &errs)
	wechatAppSecret := mustEnv("WECHAT_APP_SECRET", &errs)
	wechatRedirectURL := mustEnv("WECHAT_REDIRECT_URL", &errs)
	wechatDefaultScope := os.Getenv("WECHAT_DEFAULT_SCOPE")
	wechatUIDField := os.Getenv("WECHAT_UID_FIELD")

	stateTTL := intEnv("STATE_TTL_MINUTES", 10, &errs)
	sessionTTL := intEnv("SESSION_TTL_MINUTES", 1440, &errs)

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	return &Config{
		AppEnv:  appEnv,
		AppPort: appPort,
		RedisConfig: RedisConfig{
			Host:     redisHost,
			Port:     redisPort,
			Password: redisPassword,
		},
		WeChatConfig: WeChatConfig{
			AppID:        wechatAppID,
			AppSecret:    wechatAppSecret,
			RedirectURL:  wechatRedirectURL,
			DefaultScope: wechatDefaultScope,
			UIDField:     wechatUIDField,
		},
		Observability: ObservabilityConfig{
			ServiceName:  "socialauth",
			Environment:  appEnv,
			OTLPEndpoint: os.Getenv("OTLP_ENDPOINT"),
		},
		StateTTLMinutes:   stateTTL,
		SessionTTLMinutes: sessionTTL,
	}, nil
}

func mustEnv(key string, errs *[]error) string {
	value, exists := os.LookupEnv(key)
	if !exists || value == "" {
		*errs = append(*errs, errors.New("missing env: "+key))
	}
	return value
}

func intEnv(key string, fallback int, errs *[]error) int {
	value, exists := os.LookupEnv(key)
	if !exists || value == "" {
		return fallback
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		*errs = append(*errs, errors.New("conversion failed env: "+key))
		return fallback
	}
	return n
}
