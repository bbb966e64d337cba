package main

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/claytonsingh/scan-exporter/scanbuf"
	log "github.com/sirupsen/logrus"
)

const maxScanBody = 1 << 20

func writeText(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(status)
	w.Write(([]byte)(body))
}

// lookupSensor finds the buffer named by the sensor parameter, or the first
// sensor when the parameter is absent.
func lookupSensor(registry *scanbuf.Registry, w http.ResponseWriter, r *http.Request) (string, *scanbuf.SafeScanBuffer, bool) {
	params := r.URL.Query()
	if params.Has("sensor") {
		name := params.Get("sensor")
		if buffer, ok := registry.Get(name); ok {
			return name, buffer, true
		}
		writeText(w, http.StatusNotFound, "# 404 - unknown sensor=\""+name+"\"")
		return "", nil, false
	}
	name, buffer, ok := registry.Front()
	if !ok {
		writeText(w, http.StatusNotFound, "# 404 - no sensors configured")
		return "", nil, false
	}
	return name, buffer, true
}

// DistanceHandler answers the distance at an angle of the latest scan.
// Without data the body is -1.
func DistanceHandler(registry *scanbuf.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			w.Header().Set("Allow", "GET, HEAD")
			writeText(w, http.StatusMethodNotAllowed, "# 405 - method not allowed")
			return
		}

		params := r.URL.Query()
		if !params.Has("angle") {
			writeText(w, http.StatusBadRequest, "# 400 - missing parameter angle")
			return
		}
		angle, err := strconv.ParseFloat(params.Get("angle"), 64)
		if err != nil {
			writeText(w, http.StatusBadRequest, "# 400 - invalid angle=\""+params.Get("angle")+"\"")
			return
		}

		_, buffer, ok := lookupSensor(registry, w, r)
		if !ok {
			return
		}

		distance, err := buffer.GetDistance(angle)
		if errors.Is(err, scanbuf.ErrInvalidAngle) {
			writeText(w, http.StatusBadRequest, "# 400 - "+err.Error())
			return
		} else if err != nil {
			writeText(w, http.StatusInternalServerError, "# 500 - "+err.Error())
			return
		}
		writeText(w, http.StatusOK, strconv.FormatFloat(distance, 'g', -1, 64)+"\n")
	}
}

// ScanHandler reads (GET), pushes (POST) or clears (DELETE) a sensor buffer.
func ScanHandler(registry *scanbuf.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name, buffer, ok := lookupSensor(registry, w, r)
		if !ok {
			return
		}

		switch r.Method {
		case http.MethodGet, http.MethodHead:
			w.Header().Set("Content-Type", "text/plain")
			// only the latest scan is copied, producers are not blocked by a slow client
			if _, err := buffer.WriteTo(w); err != nil {
				log.WithError(err).WithField("sensor", name).Debug("failed to write scan")
			}

		case http.MethodPost:
			scan, err := scanbuf.ParseScan(http.MaxBytesReader(w, r.Body, maxScanBody))
			if err != nil {
				writeText(w, http.StatusBadRequest, "# 400 - invalid scan: "+err.Error())
				return
			}
			evicted := buffer.NewScan(scan)
			log.WithFields(log.Fields{
				"sensor":  name,
				"values":  len(scan),
				"evicted": evicted,
			}).Debug("scan pushed")
			writeText(w, http.StatusAccepted, strconv.Itoa(buffer.Len())+"\n")

		case http.MethodDelete:
			buffer.Clear()
			log.WithField("sensor", name).Info("buffer cleared")
			w.WriteHeader(http.StatusNoContent)

		default:
			w.Header().Set("Allow", "GET, HEAD, POST, DELETE")
			writeText(w, http.StatusMethodNotAllowed, "# 405 - method not allowed")
		}
	}
}
