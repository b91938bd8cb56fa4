package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/AIR-DISCOVER/ExpertDrivingDataset/domain/signal"
	"github.com/AIR-DISCOVER/ExpertDrivingDataset/internal/errors"

	"github.com/spf13/viper"
)

// EnvPrefix namespaces environment overrides, e.g. EDD_SEGMENT_POINTS_PER_SEGMENT
const EnvPrefix = "EDD"

// Config represents the complete application configuration
type Config struct {
	Log      LogConfig      `mapstructure:"log"`
	Segment  signal.Options `mapstructure:"segment"`
	Events   EventsConfig   `mapstructure:"events"`
	CAN      CANConfig      `mapstructure:"can"`
	Gaze     GazeConfig     `mapstructure:"gaze"`
	Physio   PhysioConfig   `mapstructure:"physio"`
	Database DatabaseConfig `mapstructure:"database"`
	Output   OutputConfig   `mapstructure:"output"`
	Server   ServerConfig   `mapstructure:"server"`
}

// LogConfig holds logger level and the optional rotating file sink
type LogConfig struct {
	Level      string `mapstructure:"level"`
	File       string `mapstructure:"file"` // empty disables the file sink
	MaxSize    int    `mapstructure:"max_size"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAge     int    `mapstructure:"max_age"`
	Compress   bool   `mapstructure:"compress"`
}

// EventsConfig locates the event interval table. When File is empty,
// Labels are laid out back to back, Width samples each.
type EventsConfig struct {
	File   string   `mapstructure:"file"`
	Width  int      `mapstructure:"width"`
	Labels []string `mapstructure:"labels"`
}

// CANConfig names the CAN-bus columns
type CANConfig struct {
	TimestampColumn    string `mapstructure:"timestamp_column"`
	SpeedColumn        string `mapstructure:"speed_column"`
	AccelerationColumn string `mapstructure:"acceleration_column"`
}

// GazeConfig describes the eye-tracker screen and columns
type GazeConfig struct {
	Width      float64 `mapstructure:"width"`
	Height     float64 `mapstructure:"height"`
	XColumn    string  `mapstructure:"x_column"`
	YColumn    string  `mapstructure:"y_column"`
	GridColumn string  `mapstructure:"grid_column"`
	Suffix     string  `mapstructure:"suffix"`
}

// PhysioConfig holds BVP processing settings
type PhysioConfig struct {
	SamplingRate float64           `mapstructure:"sampling_rate"`
	Window       int               `mapstructure:"window"`
	Overlap      int               `mapstructure:"overlap"`
	Pattern      string            `mapstructure:"pattern"`
	Subjects     map[string]string `mapstructure:"subjects"` // device code -> subject name
	OutputName   string            `mapstructure:"output_name"`
	Precision    int               `mapstructure:"precision"`
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	URL     string `mapstructure:"url"`
	Enabled bool   `mapstructure:"enabled"`
}

// OutputConfig controls which artifacts a run writes
type OutputConfig struct {
	Dir         string   `mapstructure:"dir"`
	Formats     []string `mapstructure:"formats"` // csv, wide, xlsx, parquet
	Charts      []string `mapstructure:"charts"`  // png, html
	Compression string   `mapstructure:"compression"`
	Precision   int      `mapstructure:"precision"`
	Report      bool     `mapstructure:"report"`
}

// ServerConfig holds the preview server settings
type ServerConfig struct {
	Addr string `mapstructure:"addr"`
}

func setDefaults(v *viper.Viper) {
	opts := signal.DefaultOptions()
	v.SetDefault("log.level", "INFO")
	v.SetDefault("log.file", "")
	v.SetDefault("log.max_size", 10) // MB
	v.SetDefault("log.max_backups", 3)
	v.SetDefault("log.max_age", 7) // days
	v.SetDefault("log.compress", true)

	v.SetDefault("segment.points_per_segment", opts.PointsPerSegment)
	v.SetDefault("segment.baseline_window.lo", opts.BaselineWindow.Lo)
	v.SetDefault("segment.baseline_window.hi", opts.BaselineWindow.Hi)
	v.SetDefault("segment.expert_prefix", opts.ExpertPrefix)
	v.SetDefault("segment.novice_prefix", opts.NovicePrefix)
	v.SetDefault("segment.subject_counts.expert", opts.SubjectCounts.Expert)
	v.SetDefault("segment.subject_counts.novice", opts.SubjectCounts.Novice)
	v.SetDefault("segment.index_base", opts.IndexBase)
	v.SetDefault("segment.pairing", string(opts.Pairing))
	v.SetDefault("segment.workers", opts.Workers)

	v.SetDefault("events.file", "")
	v.SetDefault("events.width", 100)
	v.SetDefault("events.labels", []string{})

	v.SetDefault("can.timestamp_column", "timestamp")
	v.SetDefault("can.speed_column", "speed_mps")
	v.SetDefault("can.acceleration_column", "acceleration")

	v.SetDefault("gaze.width", 1920)
	v.SetDefault("gaze.height", 1080)
	v.SetDefault("gaze.x_column", "Gaze point X")
	v.SetDefault("gaze.y_column", "Gaze point Y")
	v.SetDefault("gaze.grid_column", "Grid Number")
	v.SetDefault("gaze.suffix", "_grid")

	v.SetDefault("physio.sampling_rate", 64)
	v.SetDefault("physio.window", 320)  // 5 s
	v.SetDefault("physio.overlap", 288) // 90%
	v.SetDefault("physio.pattern", filepath.Join("*", "*", "*BVP_addtime.csv"))
	v.SetDefault("physio.subjects", map[string]string{
		"A04A07": "01",
		"A042AE": "02",
		"A03E19": "03",
	})
	v.SetDefault("physio.output_name", "rmssd-320,90%.csv")
	v.SetDefault("physio.precision", 2)

	v.SetDefault("database.url", "")
	v.SetDefault("database.enabled", false)

	v.SetDefault("output.dir", "output")
	v.SetDefault("output.formats", []string{"csv", "wide", "parquet"})
	v.SetDefault("output.charts", []string{"png", "html"})
	v.SetDefault("output.compression", "snappy")
	v.SetDefault("output.precision", -1)
	v.SetDefault("output.report", true)

	v.SetDefault("server.addr", ":8080")
}

// Load reads defaults, then an optional YAML file, then EDD_* environment
// overrides. An empty path searches ./config/config.yaml.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath("config")
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || path != "" {
			return nil, errors.WithCode(errors.CodeConfigInvalid, fmt.Errorf("error reading config file: %w", err))
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errors.WithCode(errors.CodeConfigInvalid, fmt.Errorf("unable to decode config into struct: %w", err))
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}
	return cfg, nil
}

// Validate checks cross-field consistency
func (c *Config) Validate() error {
	if err := c.Segment.Validate(); err != nil {
		return errors.WithCode(errors.CodeConfigInvalid, err)
	}
	if c.Physio.SamplingRate <= 0 {
		return errors.ConfigInvalid("physio.sampling_rate must be positive")
	}
	if c.Physio.Window < 2 || c.Physio.Overlap < 0 || c.Physio.Overlap >= c.Physio.Window {
		return errors.ConfigInvalid(fmt.Sprintf("physio window/overlap invalid: %d/%d", c.Physio.Window, c.Physio.Overlap))
	}
	if c.Gaze.Width <= 0 || c.Gaze.Height <= 0 {
		return errors.ConfigInvalid("gaze screen size must be positive")
	}
	if c.Events.File == "" && len(c.Events.Labels) > 0 && c.Events.Width < 1 {
		return errors.ConfigInvalid("events.width must be positive when labels are set")
	}
	if c.Database.Enabled && c.Database.URL == "" {
		return errors.ConfigInvalid("database.url is required when the database is enabled")
	}
	for _, f := range c.Output.Formats {
		switch f {
		case "csv", "wide", "xlsx", "parquet":
		default:
			return errors.ConfigInvalid(fmt.Sprintf("unknown output format %q", f))
		}
	}
	for _, ch := range c.Output.Charts {
		switch ch {
		case "png", "html":
		default:
			return errors.ConfigInvalid(fmt.Sprintf("unknown chart type %q", ch))
		}
	}
	return nil
}

// HasFormat reports whether an output format is enabled
func (o OutputConfig) HasFormat(name string) bool {
	for _, f := range o.Formats {
		if f == name {
			return true
		}
	}
	return false
}
