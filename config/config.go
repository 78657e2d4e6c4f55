package config

import (
	"os"
	"path/filepath"

	"github.com/spf13/cast"
	"gopkg.in/yaml.v3"
)

type SysConfig struct {
	Appid    string `yaml:"appid" json:"appid"`
	Location string `yaml:"location" json:"location"`
	Workdir  string `yaml:"workdir" json:"workdir"`
	Debug    bool   `yaml:"debug" json:"debug"`
}

type WebConfig struct {
	Host string `yaml:"host" json:"host"`
	Port int    `yaml:"port" json:"port"`
	// PublicURL is the externally visible base URL used to build
	// blob download links, e.g. https://shop.example.com
	PublicURL string `yaml:"public_url" json:"public_url"`
}

type DBConfig struct {
	// Type selects the document store backend: "postgres" or "bolt"
	Type     string `yaml:"type" json:"type"`
	Host     string `yaml:"host" json:"host"`
	Port     int    `yaml:"port" json:"port"`
	Name     string `yaml:"name" json:"name"`
	User     string `yaml:"user" json:"user"`
	Passwd   string `yaml:"passwd" json:"passwd"`
	Debug    bool   `yaml:"debug" json:"debug"`
	BoltFile string `yaml:"bolt_file" json:"bolt_file"`
}

type LogConfig struct {
	Mode       string `yaml:"mode" json:"mode"`
	FileEnable bool   `yaml:"file_enable" json:"file_enable"`
	Filename   string `yaml:"filename" json:"filename"`
}

type MailerConfig struct {
	// Driver selects the confirmation mail transport: "smtp" or "log"
	Driver string `yaml:"driver" json:"driver"`
}

type AppConfig struct {
	System   SysConfig    `yaml:"system" json:"system"`
	Web      WebConfig    `yaml:"web" json:"web"`
	Database DBConfig     `yaml:"database" json:"database"`
	Logger   LogConfig    `yaml:"logger" json:"logger"`
	Mailer   MailerConfig `yaml:"mailer" json:"mailer"`
}

func (c *AppConfig) InitDirs() {
	_ = os.MkdirAll(filepath.Join(c.System.Workdir, "public"), 0755)
	_ = os.MkdirAll(filepath.Join(c.System.Workdir, "logs"), 0755)
	_ = os.MkdirAll(filepath.Join(c.System.Workdir, "data"), 0755)
}

var DefaultAppConfig = &AppConfig{
	System: SysConfig{
		Appid:    "nexshop",
		Location: "Asia/Kolkata",
		Workdir:  "/var/nexshop",
		Debug:    true,
	},
	Web: WebConfig{
		Host:      "0.0.0.0",
		Port:      1816,
		PublicURL: "http://127.0.0.1:1816",
	},
	Database: DBConfig{
		Type:     "postgres",
		Host:     "127.0.0.1",
		Port:     5432,
		Name:     "nexshop",
		User:     "postgres",
		Passwd:   "",
		BoltFile: "nexshop.db",
	},
	Logger: LogConfig{
		Mode:       "development",
		FileEnable: true,
		Filename:   "/var/nexshop/logs/nexshop.log",
	},
	Mailer: MailerConfig{
		Driver: "log",
	},
}

func setEnvValue(name string, f func(v string)) {
	if v, ok := os.LookupEnv(name); ok {
		f(v)
	}
}

// LoadConfig reads the YAML configuration file and applies NEXSHOP_*
// environment overrides. A missing file falls back to defaults.
func LoadConfig(cfile string) *AppConfig {
	cfg := new(AppConfig)
	*cfg = *DefaultAppConfig
	if cfile != "" {
		if data, err := os.ReadFile(cfile); err == nil {
			_ = yaml.Unmarshal(data, cfg)
		}
	}

	setEnvValue("NEXSHOP_SYSTEM_WORKDIR", func(v string) { cfg.System.Workdir = v })
	setEnvValue("NEXSHOP_SYSTEM_DEBUG", func(v string) { cfg.System.Debug = cast.ToBool(v) })
	setEnvValue("NEXSHOP_WEB_HOST", func(v string) { cfg.Web.Host = v })
	setEnvValue("NEXSHOP_WEB_PORT", func(v string) { cfg.Web.Port = cast.ToInt(v) })
	setEnvValue("NEXSHOP_WEB_PUBLIC_URL", func(v string) { cfg.Web.PublicURL = v })
	setEnvValue("NEXSHOP_DB_TYPE", func(v string) { cfg.Database.Type = v })
	setEnvValue("NEXSHOP_DB_HOST", func(v string) { cfg.Database.Host = v })
	setEnvValue("NEXSHOP_DB_PORT", func(v string) { cfg.Database.Port = cast.ToInt(v) })
	setEnvValue("NEXSHOP_DB_NAME", func(v string) { cfg.Database.Name = v })
	setEnvValue("NEXSHOP_DB_USER", func(v string) { cfg.Database.User = v })
	setEnvValue("NEXSHOP_DB_PWD", func(v string) { cfg.Database.Passwd = v })
	setEnvValue("NEXSHOP_DB_BOLT_FILE", func(v string) { cfg.Database.BoltFile = v })
	setEnvValue("NEXSHOP_LOGGER_MODE", func(v string) { cfg.Logger.Mode = v })
	setEnvValue("NEXSHOP_MAILER_DRIVER", func(v string) { cfg.Mailer.Driver = v })

	return cfg
}
