package cmd

import (
	"errors"
	"io/fs"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/spigell/job-scout/internal/journal"
	"github.com/spigell/job-scout/internal/scoring"
	"github.com/spigell/job-scout/internal/stats"
	"github.com/spigell/job-scout/internal/store"
)

const (
	app       = "scout"
	envPrefix = "SCOUT"
)

type Config struct {
	DataDir  string          `mapstructure:"data-dir"`
	Store    *StoreConfig    `mapstructure:"store"`
	Scoring  scoring.Profile `mapstructure:"scoring"`
	Filters  *FiltersConfig  `mapstructure:"filters"`
	Merge    *MergeConfig    `mapstructure:"merge"`
	Log      *LogConfig      `mapstructure:"log"`
	Stats    stats.Options   `mapstructure:"stats"`
	Notify   *NotifyConfig   `mapstructure:"notify"`
	Schedule *ScheduleConfig `mapstructure:"schedule"`
}

type StoreConfig struct {
	Backend string       `mapstructure:"backend"`
	Redis   *RedisConfig `mapstructure:"redis"`
}

type RedisConfig struct {
	Addr         string        `mapstructure:"addr"`
	DB           int           `mapstructure:"db"`
	Prefix       string        `mapstructure:"prefix"`
	Password     string        `mapstructure:"password"`
	PasswordFile string        `mapstructure:"password-file"`
	LockTTL      time.Duration `mapstructure:"lock-ttl"`
}

type FiltersConfig struct {
	ExcludeCompanies []string `mapstructure:"exclude-companies"`
	ExcludeFile      bool     `mapstructure:"exclude-file"`
}

type MergeConfig struct {
	PreservePipelineState bool `mapstructure:"preserve-pipeline-state"`
}

type LogConfig struct {
	Retention int `mapstructure:"retention"`
}

type NotifyConfig struct {
	Kafka *KafkaConfig `mapstructure:"kafka"`
}

type KafkaConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Broker  string `mapstructure:"broker"`
	Topic   string `mapstructure:"topic"`
}

type ScheduleConfig struct {
	Spec       string `mapstructure:"spec"`
	Input      string `mapstructure:"input"`
	Query      string `mapstructure:"query"`
	RunOnStart bool   `mapstructure:"run-on-start"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "scout scores scraped job listings, keeps a deduplicated collection and builds dashboard stats",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is scout.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")
	rootCmd.PersistentFlags().String("data-dir", "", "directory holding the json documents (default is ./data)")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
	viper.BindPFlag("data-dir", rootCmd.PersistentFlags().Lookup("data-dir"))
}

func initConfig() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Fatalf("loading .env: %v", err)
	}

	if err := configure(viper.GetViper(), cfgFile); err != nil {
		log.Fatal(err)
	}
}

// configure sets defaults and environment binding, then reads the config file.
// A missing default config file is fine; an explicit one must exist.
func configure(v *viper.Viper, file string) error {
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName(app)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file == "" && errors.As(err, &notFound) {
			return nil
		}
		return err
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	p := scoring.DefaultProfile()
	s := stats.DefaultOptions()

	defaults := map[string]any{
		"data-dir": "data",

		"store.backend":             "file",
		"store.redis.addr":          "localhost:6379",
		"store.redis.db":            0,
		"store.redis.prefix":        store.DefaultRedisPrefix,
		"store.redis.password":      "",
		"store.redis.password-file": "",
		"store.redis.lock-ttl":      store.DefaultLockTTL,

		"scoring.title-keywords":          p.TitleKeywords,
		"scoring.description-must":        p.DescriptionMust,
		"scoring.description-nice":        p.DescriptionNice,
		"scoring.exclude-title":           p.ExcludeTitle,
		"scoring.min-score":               p.MinScore,
		"scoring.salary.preferred":        p.Salary.Preferred,
		"scoring.salary.boost":            p.Salary.Boost,
		"scoring.points.title-hit":        p.Points.TitleHit,
		"scoring.points.title-cap":        p.Points.TitleCap,
		"scoring.points.must-hit":         p.Points.MustHit,
		"scoring.points.must-cap":         p.Points.MustCap,
		"scoring.points.nice-hit":         p.Points.NiceHit,
		"scoring.points.nice-cap":         p.Points.NiceCap,
		"scoring.points.salary-boost":     p.Points.SalaryBoost,
		"scoring.points.salary-preferred": p.Points.SalaryPreferred,

		"filters.exclude-companies": []string{},
		"filters.exclude-file":      true,

		"merge.preserve-pipeline-state": true,

		"log.retention": journal.DefaultRetention,

		"stats.top-companies":  s.TopCompanies,
		"stats.top-locations":  s.TopLocations,
		"stats.trailing-days":  s.TrailingDays,
		"stats.relevant-score": s.RelevantScore,

		"notify.kafka.enabled": false,
		"notify.kafka.broker":  "localhost:9092",
		"notify.kafka.topic":   "scout.jobs.new",

		"schedule.spec":         "@every 6h",
		"schedule.input":        "",
		"schedule.query":        "",
		"schedule.run-on-start": true,
	}
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
}

func getConfig() (*Config, error) {
	return decodeConfig(viper.GetViper())
}

func decodeConfig(v *viper.Viper) (*Config, error) {
	var config *Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}
	if config == nil {
		return nil, errors.New("config is empty")
	}
	return config, nil
}
