package main

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/claytonsingh/scan-exporter/scanbuf"
	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

const (
	defaultInterval = 100 * time.Millisecond
	defaultMaxRange = 30.0 // meters
)

type Config struct {
	Sensors []SensorConfig `yaml:"sensors"`
}

type SensorConfig struct {
	Name       string        `yaml:"name"`
	Resolution float64       `yaml:"resolution"`
	Capacity   int           `yaml:"capacity"`
	Interval   time.Duration `yaml:"interval"`
	MaxRange   float64       `yaml:"max_range"`
}

// LoadConfig reads a sensor list from a YAML file, filling in defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseConfig(data)
}

func ParseConfig(data []byte) (*Config, error) {
	var config Config
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	for i := range config.Sensors {
		config.Sensors[i].setDefaults()
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

func (this *SensorConfig) setDefaults() {
	if this.Capacity == 0 {
		this.Capacity = scanbuf.DefaultCapacity
	}
	if this.Interval == 0 {
		this.Interval = defaultInterval
	}
	if this.MaxRange == 0 {
		this.MaxRange = defaultMaxRange
	}
}

func (this *Config) Validate() error {
	var errs []string
	if len(this.Sensors) == 0 {
		errs = append(errs, "no sensors configured")
	}
	seen := make(map[string]bool)
	for i, sensor := range this.Sensors {
		prefix := fmt.Sprintf("sensor %d", i)
		if sensor.Name == "" {
			errs = append(errs, prefix+": name is required")
		} else {
			prefix = fmt.Sprintf("sensor %q", sensor.Name)
			if seen[sensor.Name] {
				errs = append(errs, prefix+": duplicate name")
			}
			seen[sensor.Name] = true
		}
		if _, err := scanbuf.NewWithCapacity(sensor.Resolution, sensor.Capacity); err != nil {
			errs = append(errs, prefix+": "+err.Error())
		}
		if sensor.Interval < time.Millisecond {
			errs = append(errs, prefix+": interval must be 1ms or more")
		}
		if sensor.MaxRange < 0 {
			errs = append(errs, prefix+": max_range must not be negative")
		}
	}
	if errs != nil {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

// BuildRegistry allocates a buffer for every sensor and registers its
// metrics with reg.
func (this *Config) BuildRegistry(reg prometheus.Registerer) (*scanbuf.Registry, error) {
	registry := scanbuf.NewRegistry()
	for _, sensor := range this.Sensors {
		buffer, err := scanbuf.NewWithCapacity(sensor.Resolution, sensor.Capacity)
		if err != nil {
			return nil, fmt.Errorf("sensor %q: %w", sensor.Name, err)
		}
		safe := scanbuf.NewSafeScanBuffer(buffer)
		if !registry.Add(sensor.Name, safe) {
			return nil, fmt.Errorf("sensor %q: duplicate name", sensor.Name)
		}
		RegisterSensorMetrics(reg, sensor.Name, safe)

		log.WithFields(log.Fields{
			"sensor":      sensor.Name,
			"resolution":  sensor.Resolution,
			"scan_length": buffer.ScanLength(),
			"capacity":    buffer.Cap(),
		}).Info("sensor buffer allocated")
	}
	return registry, nil
}
