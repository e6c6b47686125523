package configs

import (
	"log"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// Config struct
type Config struct {
	App         `mapstructure:"app"`
	Postgres    `mapstructure:"postgres"`
	Redis       `mapstructure:"redis"`
	Deck        `mapstructure:"deck"`
	MediaServer `mapstructure:"mediaserver"`
	AdServer    `mapstructure:"adserver"`
	Entitlement `mapstructure:"entitlement"`
}

// App struct
type App struct {
	Debug bool   `mapstructure:"debug"`
	Env   string `mapstructure:"env"`
	Port  string `mapstructure:"port"`
}

// Postgres struct
type Postgres struct {
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	DbName   string `mapstructure:"database"`
	SSLMode  bool   `mapstructure:"sslmode"`
}

// Redis struct - optional seen-set backend; used when Addr is non-empty
type Redis struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	Db       int    `mapstructure:"db"`
}

// Deck struct - session deck engine tunables.
// Zero values signal the application layer to apply defaults
// (ad frequency 4, prefetch window 4).
type Deck struct {
	AdFrequency    int `mapstructure:"ad_frequency"`
	PrefetchWindow int `mapstructure:"prefetch_window"`
}

// MediaServer struct - the media library that owns the physical assets
type MediaServer struct {
	BaseURL string `mapstructure:"base_url"`
	Timeout int    `mapstructure:"timeout"`
}

// AdServer struct - the sponsored-content network
type AdServer struct {
	BaseURL   string `mapstructure:"base_url"`
	Timeout   int    `mapstructure:"timeout"`
	Placement string `mapstructure:"placement"`
}

// Entitlement struct - ad-free entitlement seed value
type Entitlement struct {
	Pro bool `mapstructure:"pro"`
}

var config Config

// InitViper func
func InitViper(path, env string) {
	getConfig(path, env)
}

// GetViper func
func GetViper() *Config {
	return &config
}

func getConfig(path, env string) {
	viper.SetConfigName("config")
	viper.AddConfigPath(path)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	err := viper.ReadInConfig()
	if err != nil {
		panic(err)
	}
	viper.WatchConfig()
	viper.OnConfigChange(func(e fsnotify.Event) {
		log.Println("Config file has changed: ", e.Name)
	})
	err = viper.Unmarshal(&config)
	if err != nil {
		log.Fatalln(err)
	}
}
