// Package config provides configuration management for the Robokassa merchant service.
// Configuration can be loaded from YAML files and overridden by environment variables.
package config

import (
	"fmt"
	"github.com/ilyakaznacheev/cleanenv"
	"sync"
	"time"
)

// Config holds all configuration for the Robokassa merchant service.
// Values can be set via YAML configuration file or environment variables.
// Environment variables take precedence over YAML values.
type Config struct {
	IsDebug bool `yaml:"is_debug" env:"DEBUG" env-default:"false"`
	Listen  struct {
		BindIP   string `yaml:"bind_ip" env:"BIND_IP" env-default:"0.0.0.0"`
		Port     string `yaml:"port" env:"PORT" env-default:"5200"`
		TLS      bool   `yaml:"tls_enabled" env:"TLS_ENABLED" env-default:"false"`
		CertFile string `yaml:"cert_file" env:"TLS_CERT_FILE" env-default:""`
		KeyFile  string `yaml:"key_file" env:"TLS_KEY_FILE" env-default:""`
	} `yaml:"listen"`
	Mongo struct {
		Enabled  bool   `yaml:"enabled" env:"MONGO_ENABLED" env-default:"false"`
		Host     string `yaml:"host" env:"MONGO_HOST" env-default:"127.0.0.1"`
		Port     string `yaml:"port" env:"MONGO_PORT" env-default:"27017"`
		User     string `yaml:"user" env:"MONGO_USER" env-default:""`
		Password string `yaml:"password" env:"MONGO_PASSWORD" env-default:""`
		Database string `yaml:"database" env:"MONGO_DATABASE" env-default:"robokassa"`
	} `yaml:"mongo"`
	Merchant Merchant `yaml:"merchant"`
}

// Merchant holds the shop credentials and gateway endpoints.
// Password1 signs outgoing requests, Password2 verifies ResultURL callbacks.
type Merchant struct {
	Login          string `yaml:"login" env:"MERCHANT_LOGIN" env-default:""`
	Password1      string `yaml:"password1" env:"MERCHANT_PASSWORD1" env-default:""`
	Password2      string `yaml:"password2" env:"MERCHANT_PASSWORD2" env-default:""`
	HashAlgo       string `yaml:"hash_algo" env:"MERCHANT_HASH_ALGO" env-default:"md5"`
	IsTest         bool   `yaml:"is_test" env:"MERCHANT_IS_TEST" env-default:"false"`
	Culture        string `yaml:"culture" env:"MERCHANT_CULTURE" env-default:""`
	Encoding       string `yaml:"encoding" env:"MERCHANT_ENCODING" env-default:""`
	SubmitLabel    string `yaml:"submit_label" env:"MERCHANT_SUBMIT_LABEL" env-default:"Оплатить"`
	BaseUrl        string `yaml:"base_url" env:"MERCHANT_BASE_URL" env-default:"https://auth.robokassa.ru/Merchant/Index.aspx"`
	RecurringUrl   string `yaml:"recurring_url" env:"MERCHANT_RECURRING_URL" env-default:"https://auth.robokassa.ru/Merchant/Recurring"`
	SmsUrl         string `yaml:"sms_url" env:"MERCHANT_SMS_URL" env-default:"https://services.robokassa.ru/SMS/"`
	RequestTimeout int    `yaml:"request_timeout" env:"MERCHANT_REQUEST_TIMEOUT" env-default:"30"`
}

// Timeout returns the outbound request timeout, never less than one second.
func (m Merchant) Timeout() time.Duration {
	if m.RequestTimeout <= 0 {
		return time.Second
	}
	return time.Duration(m.RequestTimeout) * time.Second
}

// Validate reports missing merchant credentials.
// The hash algorithm name is resolved by the signer, which owns the list of supported digests.
func (m Merchant) Validate() error {
	if m.Login == "" {
		return fmt.Errorf("merchant login is empty")
	}
	if m.Password1 == "" || m.Password2 == "" {
		return fmt.Errorf("merchant passwords are not configured")
	}
	if m.BaseUrl == "" {
		return fmt.Errorf("merchant base url is empty")
	}
	return nil
}

var instance *Config
var once sync.Once

// GetConfig loads configuration from the specified YAML file path.
// Configuration values can be overridden by environment variables.
// This function uses a singleton pattern and only loads the config once.
//
// Example:
//
//	cfg, err := config.GetConfig("config.yml")
//	if err != nil {
//	    log.Fatal(err)
//	}
func GetConfig(path string) (*Config, error) {
	var err error
	once.Do(func() {
		instance, err = Load(path)
	})
	return instance, err
}

// Load reads a fresh configuration without touching the singleton.
func Load(path string) (*Config, error) {
	conf := &Config{}
	if err := cleanenv.ReadConfig(path, conf); err != nil {
		desc, _ := cleanenv.GetDescription(conf, nil)
		return nil, fmt.Errorf("load config: %w; %s", err, desc)
	}
	if err := conf.Merchant.Validate(); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return conf, nil
}
