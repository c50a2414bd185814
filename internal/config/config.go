package config

import (
	"fmt"
	"log"
	"sync"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	Env      string `yaml:"env" env-default:"local"`
	Telegram struct {
		ApiKey        string `yaml:"api_key" env-default:""`
		BotName       string `yaml:"bot_name" env-default:"AutoLeadBot"`
		WebhookSecret string `yaml:"webhook_secret" env-default:""`
		Enabled       bool   `yaml:"enabled" env-default:"false"`
	} `yaml:"telegram"`
	WhatsApp struct {
		AccessToken   string `yaml:"access_token" env-default:""`
		VerifyToken   string `yaml:"verify_token" env-default:""`
		AppSecret     string `yaml:"app_secret" env-default:""`
		PhoneNumberID string `yaml:"phone_number_id" env-default:""`
		Enabled       bool   `yaml:"enabled" env-default:"false"`
	} `yaml:"whatsapp"`
	OpenAI struct {
		ApiKey  string `yaml:"api_key" env-default:""`
		Model   string `yaml:"model" env-default:"gpt-4o-mini"`
		Timeout int    `yaml:"timeout_seconds" env-default:"20"`
	} `yaml:"openai"`
	Mongo struct {
		Enabled  bool   `yaml:"enabled" env-default:"false"`
		Host     string `yaml:"host" env-default:"127.0.0.1"`
		Port     string `yaml:"port" env-default:"27017"`
		User     string `yaml:"user" env-default:"admin"`
		Password string `yaml:"password" env-default:"pass"`
		Database string `yaml:"database" env-default:""`
	} `yaml:"mongo"`
	Redis struct {
		Addr       string `yaml:"addr" env-default:"127.0.0.1:6379"`
		Password   string `yaml:"password" env-default:""`
		DB         int    `yaml:"db" env-default:"0"`
		SessionTTL int    `yaml:"session_ttl_seconds" env-default:"1800"`
	} `yaml:"redis"`
	Listen struct {
		BindIP string `yaml:"bind_ip" env-default:"127.0.0.1"`
		Port   string `yaml:"port" env-default:"9100"`
		ApiKey string `yaml:"key" env-default:""`
	} `yaml:"listen"`
}

var instance *Config
var once sync.Once

func MustLoad(path string) *Config {
	var err error
	once.Do(func() {
		instance = &Config{}
		if err = cleanenv.ReadConfig(path, instance); err != nil {
			desc, _ := cleanenv.GetDescription(instance, nil)
			err = fmt.Errorf("%s; %s", err, desc)
			instance = nil
			log.Fatal(err)
		}
	})
	return instance
}
