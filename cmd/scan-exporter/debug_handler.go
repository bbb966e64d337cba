package main

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/claytonsingh/scan-exporter/scanbuf"
)

// DebugSensorsHandler dumps all sensors and their buffer statistics
func DebugSensorsHandler(registry *scanbuf.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		sensors := make([]map[string]any, 0)
		for _, entry := range registry.Entries() {
			stats := entry.Buffer.Stats()
			var lastPush int64
			if !stats.LastPush.IsZero() {
				lastPush = stats.LastPush.Unix()
			}
			sensors = append(sensors, map[string]any{
				"name":        entry.Name,
				"resolution":  entry.Buffer.Resolution(),
				"scan_length": entry.Buffer.ScanLength(),
				"capacity":    entry.Buffer.Cap(),
				"scans":       entry.Buffer.Len(),
				"pushed":      stats.Pushed,
				"popped":      stats.Popped,
				"evicted":     stats.Evicted,
				"cleared":     stats.Cleared,
				"queries":     stats.Queries,
				"last_push":   lastPush,
			})
		}

		response := map[string]any{
			"timestamp":     time.Now().Unix(),
			"total_sensors": len(sensors),
			"sensors":       sensors,
		}

		jsonData, err := json.MarshalIndent(response, "", "  ")
		if err != nil {
			http.Error(w, "Failed to marshal JSON", http.StatusInternalServerError)
			return
		}

		w.Write(jsonData)
	}
}
