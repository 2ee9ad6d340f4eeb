package config

import (
	"strings"

	"github.com/spf13/viper"

	"github.com/terrydolan/catmon-img-tag/internal/domain"
	"github.com/terrydolan/catmon-img-tag/internal/imaging"
)

type Config struct {
	Server ServerConfig
	S3     S3Config
	App    AppConfig
}

type ServerConfig struct {
	Host string
	Port string
}

type S3Config struct {
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	UseSSL          bool
	BucketName      string
	Region          string
}

type AppConfig struct {
	SourcePrefix      string
	BooPrefix         string
	SimbaPrefix       string
	UnclearPrefix     string
	AutoDiscardPrefix string

	// BrightnessThreshold is the perceived-brightness cutoff (0..255 scale);
	// images at or below it are auto-discarded without being presented.
	BrightnessThreshold float64

	// ListLimit caps how many source objects a session pulls per listing.
	ListLimit int
}

func Load() (*Config, error) {
	viper.SetDefault("SERVER_HOST", "localhost")
	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("S3_ENDPOINT", "localhost:9000")
	viper.SetDefault("S3_ACCESS_KEY_ID", "minioadmin")
	viper.SetDefault("S3_SECRET_ACCESS_KEY", "minioadmin")
	viper.SetDefault("S3_USE_SSL", false)
	viper.SetDefault("S3_BUCKET_NAME", "catmon-pics")
	viper.SetDefault("S3_REGION", "us-east-1")
	viper.SetDefault("APP_SOURCE_PREFIX", "incoming/")
	viper.SetDefault("APP_BOO_PREFIX", "boo_images/")
	viper.SetDefault("APP_SIMBA_PREFIX", "simba_images/")
	viper.SetDefault("APP_UNCLEAR_PREFIX", "unclear_images/")
	viper.SetDefault("APP_AUTO_DISCARD_PREFIX", "auto_discard_images/")
	viper.SetDefault("APP_BRIGHTNESS_THRESHOLD", imaging.DefaultBrightnessThreshold)
	viper.SetDefault("APP_LIST_LIMIT", 500)

	viper.AutomaticEnv()

	cfg := &Config{
		Server: ServerConfig{
			Host: viper.GetString("SERVER_HOST"),
			Port: viper.GetString("SERVER_PORT"),
		},
		S3: S3Config{
			Endpoint:        viper.GetString("S3_ENDPOINT"),
			AccessKeyID:     viper.GetString("S3_ACCESS_KEY_ID"),
			SecretAccessKey: viper.GetString("S3_SECRET_ACCESS_KEY"),
			UseSSL:          viper.GetBool("S3_USE_SSL"),
			BucketName:      viper.GetString("S3_BUCKET_NAME"),
			Region:          viper.GetString("S3_REGION"),
		},
		App: AppConfig{
			SourcePrefix:        normalizePrefix(viper.GetString("APP_SOURCE_PREFIX")),
			BooPrefix:           normalizePrefix(viper.GetString("APP_BOO_PREFIX")),
			SimbaPrefix:         normalizePrefix(viper.GetString("APP_SIMBA_PREFIX")),
			UnclearPrefix:       normalizePrefix(viper.GetString("APP_UNCLEAR_PREFIX")),
			AutoDiscardPrefix:   normalizePrefix(viper.GetString("APP_AUTO_DISCARD_PREFIX")),
			BrightnessThreshold: viper.GetFloat64("APP_BRIGHTNESS_THRESHOLD"),
			ListLimit:           viper.GetInt("APP_LIST_LIMIT"),
		},
	}

	return cfg, nil
}

// Folders builds the static label-to-prefix mapping used by the workflow.
func (c *Config) Folders() domain.FolderMapping {
	return domain.NewFolderMapping(
		c.App.SourcePrefix,
		c.App.AutoDiscardPrefix,
		c.App.BooPrefix,
		c.App.SimbaPrefix,
		c.App.UnclearPrefix,
	)
}

// normalizePrefix ensures a non-empty prefix ends with a single slash so key
// joins are unambiguous.
func normalizePrefix(p string) string {
	p = strings.Trim(p, "/")
	if p == "" {
		return ""
	}
	return p + "/"
}
