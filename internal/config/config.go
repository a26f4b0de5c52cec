// internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"holter-distributor/internal/domain"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment overrides, e.g. DISTRIBUTOR_INPUT_PATH.
const EnvPrefix = "DISTRIBUTOR"

// Config holds all configuration for our application.
// The mapstructure tags are used by Viper to unmarshal the data.
type Config struct {
	HttpListenAddr     string        `mapstructure:"http_listen_addr" validate:"required"`
	PassSchedule       string        `mapstructure:"pass_schedule" validate:"required,cron"`
	SchedulerAutostart bool          `mapstructure:"scheduler_autostart"`
	LockBackend        string        `mapstructure:"lock_backend" validate:"oneof=memory etcd"`
	HistoryBackend     string        `mapstructure:"history_backend" validate:"oneof=memory etcd"`
	HistorySize        int           `mapstructure:"history_size" validate:"gte=1"`
	EtcdEndpoints      []string      `mapstructure:"etcd_endpoints"`
	EtcdTimeout        time.Duration `mapstructure:"etcd_timeout"`
	LogLevel           string        `mapstructure:"log_level" validate:"oneof=debug info warn error"`

	Policy `mapstructure:",squash"`
}

// Policy is the part of the configuration a distribution pass reads.
// It is reloaded at the start of every pass.
type Policy struct {
	InputPath       string         `mapstructure:"input_path" validate:"required"`
	OutputPath      string         `mapstructure:"output_path" validate:"required"`
	RejectedPath    string         `mapstructure:"rejected_path" validate:"required"`
	EveningHours    int            `mapstructure:"evening_hours" validate:"gte=-23,lte=23"`
	StationLimitKey string         `mapstructure:"station_limit_key" validate:"oneof=item_name station"`
	Doctors         []DoctorConfig `mapstructure:"doctors" validate:"required,min=1,unique=FolderName,dive"`
}

// DoctorConfig is one entry of the doctors roster.
type DoctorConfig struct {
	Name           string         `mapstructure:"name" validate:"required"`
	FolderName     string         `mapstructure:"folder_name" validate:"required,excludesall=/\\"`
	Limit          *int           `mapstructure:"limit" validate:"omitempty,gte=-1"`
	SkipStations   []string       `mapstructure:"skip_stations" validate:"dive,station"`
	StationsLimits map[string]int `mapstructure:"stations_limits" validate:"dive,keys,required,endkeys,gte=0"`
	IsWorking      *bool          `mapstructure:"is_working"`
	DaysOff        []string       `mapstructure:"days_off" validate:"dive,ddmmyyyy"`
}

func newViper(path string) *viper.Viper {
	v := viper.New()

	// Set default values
	v.SetDefault("http_listen_addr", ":8080")
	v.SetDefault("pass_schedule", "@every 5s")
	v.SetDefault("scheduler_autostart", true)
	v.SetDefault("lock_backend", "memory")
	v.SetDefault("history_backend", "memory")
	v.SetDefault("history_size", 200)
	v.SetDefault("etcd_timeout", "5s")
	v.SetDefault("log_level", "info")
	v.SetDefault("evening_hours", 0)
	v.SetDefault("station_limit_key", string(domain.StationLimitKeyItemName))

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")    // name of config file (without extension)
		v.SetConfigType("yaml")      // or "json", "toml"
		v.AddConfigPath("./configs") // path to look for the config file in
		v.AddConfigPath(".")         // optionally look for config in the working directory
	}

	// Read environment variables
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func read(v *viper.Viper) error {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			// Rely on defaults and env vars; validation reports what is missing.
			return nil
		}
		return fmt.Errorf("%w: %v", domain.ErrInvalidConfig, err)
	}
	return nil
}

// Load loads configuration from file and environment variables.
// An empty path searches ./configs and the working directory for config.yaml.
func Load(path string) (*Config, error) {
	v := newViper(path)
	if err := read(v); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the process settings and the policy.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %s", domain.ErrInvalidConfig, describe(err))
	}
	if (c.LockBackend == "etcd" || c.HistoryBackend == "etcd") && len(c.EtcdEndpoints) == 0 {
		return fmt.Errorf("%w: etcd_endpoints is required for the etcd backend", domain.ErrInvalidConfig)
	}
	return c.Policy.checkPaths()
}

// Validate checks the policy on its own.
func (p *Policy) Validate() error {
	if err := validate.Struct(p); err != nil {
		return fmt.Errorf("%w: %s", domain.ErrInvalidConfig, describe(err))
	}
	return p.checkPaths()
}

// checkPaths rejects an inbound directory inside the output tree: the
// duplicate walk would find every pending item and reject it as its own copy.
func (p *Policy) checkPaths() error {
	if within(p.InputPath, p.OutputPath) {
		return fmt.Errorf("%w: input_path %q must not be inside output_path %q",
			domain.ErrInvalidConfig, p.InputPath, p.OutputPath)
	}
	return nil
}

// within reports whether path is root itself or lies below it.
func within(path, root string) bool {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return false
	}
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return false
	}
	rel, err := filepath.Rel(absRoot, absPath)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}

// Workers builds the roster of workers from the doctors list.
func (p *Policy) Workers() []*domain.Worker {
	key := domain.StationLimitKey(p.StationLimitKey)
	workers := make([]*domain.Worker, 0, len(p.Doctors))
	for _, d := range p.Doctors {
		workers = append(workers, d.toWorker(key))
	}
	return workers
}

func (d DoctorConfig) toWorker(key domain.StationLimitKey) *domain.Worker {
	w := &domain.Worker{
		Name:          d.Name,
		FolderName:    d.FolderName,
		DailyLimit:    domain.Unlimited,
		SkipStations:  make(map[string]bool, len(d.SkipStations)),
		StationLimits: make(map[string]int, len(d.StationsLimits)),
		LimitKey:      key,
		IsWorking:     true,
		DaysOff:       make(map[string]bool, len(d.DaysOff)),
	}
	if d.Limit != nil {
		w.DailyLimit = *d.Limit
	}
	if d.IsWorking != nil {
		w.IsWorking = *d.IsWorking
	}
	for _, s := range d.SkipStations {
		w.SkipStations[strings.ToUpper(s)] = true
	}
	// Viper folds map keys to lower case, so limits are matched case-insensitively.
	for k, n := range d.StationsLimits {
		w.StationLimits[strings.ToUpper(k)] = n
	}
	for _, day := range d.DaysOff {
		w.DaysOff[day] = true
	}
	return w
}
