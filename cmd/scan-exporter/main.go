package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/claytonsingh/golib/syncsignal"
	"github.com/claytonsingh/scan-exporter/scanbuf"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
	"golang.org/x/sys/unix"
	"kernel.org/pub/linux/libs/security/libcap/cap"
)

var versionString = "unknown"

type Settings struct {
	listenAddr       string
	resolution       float64
	capacity         int
	interval         time.Duration
	configFile       string
	dropCapabilities bool
	logLevel         log.Level
	simulate         bool
	popRatio         float64
}

var flags = []cli.Flag{
	&cli.StringFlag{
		Name:    "listen",
		Value:   ":9117",
		Usage:   "Ip and port to listen on.",
		EnvVars: []string{"SCAN_EXPORTER_LISTEN"},
	},
	&cli.Float64Flag{
		Name:    "resolution",
		Value:   1,
		Usage:   "Angular resolution in degrees of the default sensor, in (0, 1].",
		EnvVars: []string{"SCAN_EXPORTER_RESOLUTION"},
	},
	&cli.IntFlag{
		Name:    "capacity",
		Value:   scanbuf.DefaultCapacity,
		Usage:   "Number of scans kept per sensor.",
		EnvVars: []string{"SCAN_EXPORTER_CAPACITY"},
	},
	&cli.DurationFlag{
		Name:    "interval",
		Value:   100 * time.Millisecond,
		Usage:   "Time between simulated scans. Minimum 1ms.",
		EnvVars: []string{"SCAN_EXPORTER_INTERVAL"},
	},
	&cli.StringFlag{
		Name:    "config",
		Value:   "",
		Usage:   "YAML file listing the sensors. When empty a single sensor named \"default\" is built from the flags.",
		EnvVars: []string{"SCAN_EXPORTER_CONFIG"},
	},
	&cli.BoolFlag{
		Name:    "drop",
		Value:   false,
		Usage:   "Drop capabilities after starting.",
		EnvVars: []string{"SCAN_EXPORTER_DROP"},
	},
	&cli.StringFlag{
		Name:    "log-level",
		Value:   "info",
		Usage:   "One of panic, fatal, error, warn, info, debug, trace.",
		EnvVars: []string{"SCAN_EXPORTER_LOG_LEVEL"},
	},
	&cli.BoolFlag{
		Name:    "simulate",
		Value:   true,
		Usage:   "Feed every sensor with generated scans.",
		EnvVars: []string{"SCAN_EXPORTER_SIMULATE"},
	},
	&cli.Float64Flag{
		Name:    "pop-ratio",
		Value:   0.5,
		Usage:   "Probability that the simulated consumer removes a scan each time one is produced, in [0, 1].",
		EnvVars: []string{"SCAN_EXPORTER_POP_RATIO"},
	},
}

func parseArguments(c *cli.Context) (Settings, error) {
	var errs []string
	settings := Settings{
		listenAddr:       c.String("listen"),
		resolution:       c.Float64("resolution"),
		capacity:         c.Int("capacity"),
		interval:         c.Duration("interval"),
		configFile:       c.String("config"),
		dropCapabilities: c.Bool("drop"),
		simulate:         c.Bool("simulate"),
		popRatio:         c.Float64("pop-ratio"),
	}

	level, err := log.ParseLevel(c.String("log-level"))
	if err != nil {
		errs = append(errs, err.Error())
	}
	settings.logLevel = level

	if settings.capacity < 1 {
		errs = append(errs, "capacity must be 1 or more")
	}
	if settings.interval < time.Millisecond {
		errs = append(errs, "interval must be 1ms or more")
	}
	if !(settings.popRatio >= 0 && settings.popRatio <= 1) {
		errs = append(errs, "pop-ratio must be between 0 and 1")
	}
	if settings.configFile == "" {
		if _, err := scanbuf.New(settings.resolution); err != nil {
			errs = append(errs, err.Error())
		}
	}

	if errs != nil {
		return settings, errors.New(strings.Join(errs, "; "))
	}
	return settings, nil
}

func main() {
	app := cli.NewApp()
	app.Name = "scan-exporter"
	app.Usage = "Buffer LIDAR scans and export them over http"
	app.Version = versionString
	app.Flags = flags
	app.Action = run

	if err := app.Run(os.Args); err != nil {
		log.WithError(err).Fatal("Failed to run scan-exporter")
	}
}

func run(c *cli.Context) error {
	settings, err := parseArguments(c)
	if err != nil {
		return fmt.Errorf("invalid arguments: %w", err)
	}
	log.SetLevel(settings.logLevel)
	log.WithField("version", versionString).Info("scan-exporter starting")

	config, err := loadSettingsConfig(settings)
	if err != nil {
		return err
	}

	registry, err := config.BuildRegistry(prometheus.DefaultRegisterer)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), unix.SIGINT, unix.SIGTERM)
	defer stop()

	if settings.simulate {
		for _, sensor := range config.Sensors {
			buffer, _ := registry.Get(sensor.Name)
			sim := NewSimulator(sensor, buffer, syncsignal.NewSignal(), settings.popRatio, time.Now().UnixNano())
			go sim.Produce(ctx)
			go sim.Consume(ctx)
		}
	}

	ln, err := net.Listen("tcp", settings.listenAddr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", settings.listenAddr, err)
	}
	log.WithField("addr", ln.Addr().String()).Info("listening")

	// Drop capabilities after binding
	if settings.dropCapabilities {
		if err := dropCapabilities(); err != nil {
			return err
		}
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(prometheus.DefaultGatherer, promhttp.HandlerOpts{}))
	mux.Handle("/scan", ScanHandler(registry))
	mux.Handle("/distance", DistanceHandler(registry))
	mux.Handle("/debug/sensors", DebugSensorsHandler(registry))

	srv := &http.Server{Handler: PromtheusMiddlewareHandler(mux)}
	go func() {
		<-ctx.Done()
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.WithError(err).Warn("http shutdown")
		}
	}()

	if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

func loadSettingsConfig(settings Settings) (*Config, error) {
	if settings.configFile != "" {
		config, err := LoadConfig(settings.configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", settings.configFile, err)
		}
		return config, nil
	}
	return &Config{
		Sensors: []SensorConfig{{
			Name:       "default",
			Resolution: settings.resolution,
			Capacity:   settings.capacity,
			Interval:   settings.interval,
			MaxRange:   defaultMaxRange,
		}},
	}, nil
}

func dropCapabilities() error {
	// Read and display the capabilities of the running process
	c := cap.GetProc()
	log.WithField("caps", c.String()).Info("process started with caps")

	// Drop any privilege a process might have (including for root,
	// but note root 'owns' a lot of system files so a cap-limited
	// root can still do considerable damage to a running system).
	old := cap.GetProc()
	empty := cap.NewSet()
	if err := empty.SetProc(); err != nil {
		return fmt.Errorf("failed to drop privilege: %q -> %q: %w", old, empty, err)
	}
	now := cap.GetProc()
	if cf, _ := now.Cf(empty); cf != 0 {
		return fmt.Errorf("failed to fully drop privilege: have=%q, wanted=%q", now, empty)
	}

	log.Info("successfully dropped all caps")
	return nil
}
