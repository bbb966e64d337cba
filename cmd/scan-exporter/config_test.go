package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/claytonsingh/scan-exporter/scanbuf"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleConfig = `
sensors:
  - name: front
    resolution: 0.5
    capacity: 4
    interval: 50ms
    max_range: 12
  - name: rear
    resolution: 1
`

func TestParseConfig(t *testing.T) {
	config, err := ParseConfig([]byte(sampleConfig))
	require.NoError(t, err)
	require.Len(t, config.Sensors, 2)

	assert.Equal(t, SensorConfig{
		Name:       "front",
		Resolution: 0.5,
		Capacity:   4,
		Interval:   50 * time.Millisecond,
		MaxRange:   12,
	}, config.Sensors[0])

	// defaults
	assert.Equal(t, scanbuf.DefaultCapacity, config.Sensors[1].Capacity)
	assert.Equal(t, defaultInterval, config.Sensors[1].Interval)
	assert.Equal(t, defaultMaxRange, config.Sensors[1].MaxRange)
}

func TestParseConfigErrors(t *testing.T) {
	cases := map[string]string{
		"empty":          ``,
		"no sensors":     `sensors: []`,
		"unknown field":  "sensors:\n  - name: a\n    resolution: 1\n    colour: red\n",
		"missing name":   "sensors:\n  - resolution: 1\n",
		"duplicate":      "sensors:\n  - name: a\n    resolution: 1\n  - name: a\n    resolution: 0.5\n",
		"bad resolution": "sensors:\n  - name: a\n    resolution: 2\n",
		"no resolution":  "sensors:\n  - name: a\n",
		"bad capacity":   "sensors:\n  - name: a\n    resolution: 1\n    capacity: -1\n",
		"bad interval":   "sensors:\n  - name: a\n    resolution: 1\n    interval: 10us\n",
	}
	for name, data := range cases {
		_, err := ParseConfig([]byte(data))
		assert.Error(t, err, name)
	}
}

func TestParseConfigReportsEverySensor(t *testing.T) {
	_, err := ParseConfig([]byte("sensors:\n  - name: a\n    resolution: 2\n  - name: b\n    resolution: 0\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), `sensor "a": resolution out of range: 2`)
	assert.Contains(t, err.Error(), `sensor "b": resolution out of range: 0`)
}

func TestParseConfigRejectsOversizedBuffers(t *testing.T) {
	_, err := ParseConfig([]byte("sensors:\n  - name: a\n    resolution: 1e-300\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), `sensor "a": resolution out of range: 1e-300`)

	_, err = ParseConfig([]byte("sensors:\n  - name: a\n    resolution: 1\n    capacity: 100000000\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), `sensor "a": capacity out of range`)
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sensors.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleConfig), 0o644))

	config, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Len(t, config.Sensors, 2)

	_, err = LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestBuildRegistry(t *testing.T) {
	config, err := ParseConfig([]byte(sampleConfig))
	require.NoError(t, err)

	reg := prometheus.NewRegistry()
	registry, err := config.BuildRegistry(reg)
	require.NoError(t, err)
	assert.Equal(t, []string{"front", "rear"}, registry.Names())

	front, ok := registry.Get("front")
	require.True(t, ok)
	assert.Equal(t, 4, front.Cap())
	assert.Equal(t, 361, front.ScanLength())

	families, err := reg.Gather()
	require.NoError(t, err)
	names := make([]string, 0, len(families))
	for _, family := range families {
		names = append(names, family.GetName())
		if family.GetName() == "scan_buffer_capacity" {
			assert.Len(t, family.GetMetric(), 2)
		}
	}
	assert.Contains(t, names, "scan_buffer_scans")
	assert.Contains(t, names, "scan_buffer_scans_evicted_total")
}
