package common

import (
	"flag"
	"io"
	"os"
	"time"

	"github.com/kodek/obdlive/kml"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

type Configuration struct {
	Server   Server   `yaml:"server"`
	Database Database `yaml:"database"`
	Gauge    Gauge    `yaml:"gauge"`
	LiveKML  LiveKML  `yaml:"livekml"`
}

type Server struct {
	Port int    `yaml:"port"`
	Name string `yaml:"name"`
	// PublicURL is the base URL viewers reach the server at. Empty means derive it from each request.
	PublicURL string `yaml:"public_url"`
}

type Database struct {
	Path string `yaml:"path"`
	// OpenTimeout is how long startup keeps retrying to open the database.
	OpenTimeout time.Duration `yaml:"open_timeout"`
}

type Gauge struct {
	DefaultStartDelta int `yaml:"default_start_delta"`
}

type LiveKML struct {
	SampleLength int     `yaml:"sample_length"`
	TargetMPG    float64 `yaml:"target_mpg"`
	StartDelta   int     `yaml:"start_delta"`
	UpdateRate   int     `yaml:"update_rate"`
	// ReplayStart is the unix time of the first logged sample. When set, the form offers to replay the
	// log from there.
	ReplayStart int64              `yaml:"replay_start"`
	Gauges      []kml.OverlaySpec `yaml:"gauges"`
}

// DefaultConfig is used for every setting missing from the config file.
func DefaultConfig() Configuration {
	return Configuration{
		Server: Server{
			Port: 8080,
			Name: "OBD Live",
		},
		Database: Database{
			Path:        "obdgpslogger.db",
			OpenTimeout: 30 * time.Second,
		},
		Gauge: Gauge{
			DefaultStartDelta: 10,
		},
		LiveKML: LiveKML{
			SampleLength: 10,
			TargetMPG:    20,
			StartDelta:   10,
			UpdateRate:   4,
			Gauges: []kml.OverlaySpec{
				{Column: "vss", Name: "Vehicle Speed", Min: 0, Max: 255, X: 0, Y: 1},
				{Column: "rpm", Name: "RPM", Min: 0, Max: 8000, X: 0, Y: 0.8},
				{Column: "throttlepos", Name: "Throttle Position", Min: 0, Max: 100, X: 0, Y: 0.6},
			},
		},
	}
}

var configPath = flag.String("config", "", "The path to the config file")

// LoadConfig reads the file named by -config, or ~/.obdlive_conf.yaml. A missing default file means
// all defaults; a missing explicit file is an error.
func LoadConfig() (Configuration, error) {
	path := *configPath
	explicit := path != ""
	if !explicit {
		path = os.Getenv("HOME") + "/.obdlive_conf.yaml"
	}

	f, err := os.Open(path)
	if os.IsNotExist(err) && !explicit {
		return DefaultConfig(), nil
	}
	if err != nil {
		return Configuration{}, errors.Wrap(err, "cannot open config")
	}
	defer f.Close()
	return ReadConfig(f)
}

// ReadConfig parses a YAML config, filling in defaults.
func ReadConfig(r io.Reader) (Configuration, error) {
	conf := DefaultConfig()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&conf); err != nil && err != io.EOF {
		return Configuration{}, errors.Wrap(err, "cannot parse config")
	}
	if err := conf.Validate(); err != nil {
		return Configuration{}, err
	}
	return conf, nil
}

// Validate rejects settings the server can't run with.
func (c *Configuration) Validate() error {
	if c.Server.Port <= 0 {
		return errors.Errorf("server.port must be positive, got %d", c.Server.Port)
	}
	if c.Database.Path == "" {
		return errors.New("database.path is required")
	}
	if c.LiveKML.SampleLength <= 0 {
		return errors.Errorf("livekml.sample_length must be positive, got %d", c.LiveKML.SampleLength)
	}
	for _, g := range c.LiveKML.Gauges {
		if g.Column == "" {
			return errors.Errorf("livekml gauge %q has no column", g.Name)
		}
		if g.Min >= g.Max {
			return errors.Errorf("livekml gauge %s: min %v must be below max %v", g.Column, g.Min, g.Max)
		}
	}
	return nil
}

// WriteRedacted writes the effective configuration. Nothing in it is secret.
func (c *Configuration) WriteRedacted(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	defer enc.Close()
	return errors.Wrap(enc.Encode(c), "cannot write config")
}
