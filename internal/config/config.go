package config

import (
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/pkg/errors"
)

type Config struct {
	Port        string `envconfig:"port" default:"8080"`
	DatabaseURL string `envconfig:"database_url"`

	RedisAddr     string `envconfig:"redis_addr" default:"localhost:6379"`
	RedisPassword string `envconfig:"redis_password" default:""`
	RedisDB       int    `envconfig:"redis_db" default:"0"`
	RedisPrefix   string `envconfig:"redis_prefix" default:"mp"`

	RabbitUser string `envconfig:"rabbit_user" default:"guest"`
	RabbitPass string `envconfig:"rabbit_pass" default:"guest"`
	RabbitHost string `envconfig:"rabbit_host" default:"localhost"`
	RabbitPort string `envconfig:"rabbit_port" default:"5672"`

	StripeAPIKey        string `envconfig:"stripe_api_key"`
	StripeWebhookSecret string `envconfig:"stripe_webhook_secret"`

	MailHost     string `envconfig:"mail_host"`
	MailPort     int    `envconfig:"mail_port" default:"587"`
	MailUser     string `envconfig:"mail_user"`
	MailPass     string `envconfig:"mail_pass"`
	MailFrom     string `envconfig:"mail_from" default:"no-reply@kovaleads.com"`
	OperatorMail string `envconfig:"operator_mail" default:"ops@kovaleads.com"`

	CompanyName    string `envconfig:"company_name" default:"Kova Leads LLC"`
	CompanyAddress string `envconfig:"company_address" default:""`
	CompanyPhone   string `envconfig:"company_phone" default:""`
	CompanyEmail   string `envconfig:"company_email" default:"billing@kovaleads.com"`

	CORSOrigins []string `envconfig:"cors_origins" default:"*"`
}

func NewLoadedConfig() (*Config, error) {
	godotenv.Load()

	var c Config
	err := envconfig.Process("mp", &c)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return &c, nil
}
