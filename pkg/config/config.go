package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	HTTP struct {
		Port int
	}
	Redis struct {
		Addr string
	}
	Bot struct {
		Token            string
		WebhookBase      string
		WebhookSecret    string
		BankPassword     string
		BaseCurrency     string
		WatchdogInterval int
	}
}

func Read(appName string, cfg *Config) error {
	v := viper.New()

	v.SetConfigName(appName)
	v.AddConfigPath("./configs/")
	v.AddConfigPath("../../configs/")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("HTTP.Port", 8080)
	v.SetDefault("Bot.BaseCurrency", "UAH")
	v.SetDefault("Bot.WatchdogInterval", 60)

	// ключи должны быть известны viper, иначе AutomaticEnv их не подхватит
	v.SetDefault("Redis.Addr", "")
	v.SetDefault("Bot.Token", "")
	v.SetDefault("Bot.WebhookBase", "")
	v.SetDefault("Bot.WebhookSecret", "")
	v.SetDefault("Bot.BankPassword", "")

	err := v.ReadInConfig()
	if err != nil {
		// конфиг может приезжать целиком из переменных окружения
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return err
		}
	}
	if cfg != nil {
		err := v.Unmarshal(cfg)
		if err != nil {
			return err
		}
	}

	if cfg.Bot.Token == "" {
		return fmt.Errorf("BOT_TOKEN is required")
	}

	return nil
}
