package config

import (
	_ "embed"
	"fmt"
	"strconv"

	"github.com/trevor-gituru/solaris-conexus/bot"
	"github.com/trevor-gituru/solaris-conexus/chain"
	"github.com/trevor-gituru/solaris-conexus/internal/util"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

//go:embed config.yaml
var configByte []byte

type Config struct {
	Log string `yaml:"log"`
	App struct {
		Port    int    `yaml:"port"`
		JwtKey  string `yaml:"jwtkey"`
		Passkey string `yaml:"passkey"`
	} `yaml:"app"`
	Api struct {
		BaseUrl string `yaml:"base-url"`
	} `yaml:"api"`
	Chain struct {
		ProviderUrl string `yaml:"provider-url"`
		SctAddress  string `yaml:"sct-address"`
		StrkAddress string `yaml:"strk-address"`
	} `yaml:"chain"`
	Wallet struct {
		Id        string `yaml:"id"`
		BridgeUrl string `yaml:"bridge-url"`
	} `yaml:"wallet"`
	Power struct {
		StreamUrl string `yaml:"stream-url"`
	} `yaml:"power"`
	Telegram struct {
		ChatId string `yaml:"chatId"`
		Token  string `yaml:"token"`
	} `yaml:"telegram"`

	Db struct {
		User     string `yaml:"user"`
		Password string `yaml:"pwd"`
		IP       string `yaml:"ip"`
		Port     string `yaml:"port"`
		Scheme   string `yaml:"scheme"`
	} `yaml:"db"`
}

func NewConfig() (*Config, error) {

	var ConfigInfo Config = Config{}

	err := yaml.Unmarshal(configByte, &ConfigInfo)
	if err != nil {
		return nil, err
	}

	decode(&ConfigInfo)

	return &ConfigInfo, nil
}

func (c Config) LogLevel() (zerolog.Level, error) {

	level, err := zerolog.ParseLevel(c.Log)
	if err != nil {
		return zerolog.InfoLevel, err
	}

	return level, nil
}

func (c Config) BotConfig() (*bot.TeleBotConfig, error) {

	chatId, err := strconv.ParseInt(c.Telegram.ChatId, 10, 64)
	if err != nil {
		return nil, err
	}

	return &bot.TeleBotConfig{
		Token:  c.Telegram.Token,
		ChatId: chatId,
	}, nil
}

// InitTelegram decrypts the bot token with the key handed over at startup.
func (c *Config) InitTelegram(key string) (err error) {
	c.Telegram.Token, err = util.Decrypt([]byte(key), c.Telegram.Token)
	return err
}

// SctToken is the estate's energy-credit token. SCT trades in whole units.
func (c Config) SctToken() chain.Token {
	return chain.Token{Symbol: "SCT", Address: c.Chain.SctAddress, Decimals: 0}
}

// StrkToken is the payment token at its 18-decimal chain scale.
func (c Config) StrkToken() chain.Token {
	return chain.Token{Symbol: "STRK", Address: c.Chain.StrkAddress, Decimals: 18}
}

func (c Config) Dsn() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local", c.Db.User, c.Db.Password, c.Db.IP, c.Db.Port, c.Db.Scheme)
}

func decode(conf *Config) {
	util.Decode(&conf.Telegram.ChatId)
	util.Decode(&conf.App.JwtKey)
	util.Decode(&conf.App.Passkey)
}
