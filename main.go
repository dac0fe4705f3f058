// Package main provides the suntrack entry point and CLI interface.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/devskill-org/suntrack/inverter"
	"github.com/devskill-org/suntrack/panel"
	"github.com/devskill-org/suntrack/service"
	"github.com/devskill-org/suntrack/solarpos"
	"github.com/devskill-org/suntrack/utils"
)

func main() {
	// Command line flags
	var (
		configFile = flag.String("config", "config.json", "Configuration file path")
		info       = flag.Bool("info", false, "Show inverter information")
		position   = flag.Bool("position", false, "Print the current sun position and exit")
		day        = flag.String("day", "", "Print the day summary for a date (YYYY-MM-DD, empty = today) and exit")
		serverOnly = flag.Bool("serverOnly", false, "Run only web server without periodic tasks")
		help       = flag.Bool("help", false, "Show help message")
	)
	flag.Parse()

	if *help {
		showHelp()
		return
	}

	config, err := service.LoadConfig(*configFile)
	if err != nil {
		fmt.Println("Error loading configuration:", err)
		return
	}

	if *info {
		if err := inverter.ShowInverterInfo(config.InverterModbusAddress, byte(config.InverterSlaveID)); err != nil {
			fmt.Println("Error:", err)
			return
		}
		return
	}

	if *position {
		printPosition(config)
		return
	}

	if isFlagSet("day") {
		printDaySummary(config, *day)
		return
	}

	fmt.Printf("Starting solar energy estimator with the following configuration:\n")
	fmt.Printf("  Site: %.4f, %.4f (%.0f m)\n", config.Latitude, config.Longitude, config.Elevation)
	fmt.Printf("  Panel: tilt %.1f°, azimuth %.1f°, %.2f m² at %.0f%% efficiency\n",
		config.PanelTilt, config.PanelAzimuth, config.PanelArea, config.PanelEfficiency*100)
	fmt.Printf("  Sample Interval: %s\n", config.SampleInterval)
	fmt.Printf("  Integration Period: %s\n", config.IntegrationPeriod)

	if config.DryRun {
		fmt.Printf("  Mode: DRY-RUN (nothing will be persisted)\n")
	}
	fmt.Println()

	// Create logger
	logger := log.New(os.Stdout, "[ESTIMATOR] ", log.LstdFlags)

	// Create estimator
	estimator := service.NewEstimatorWithWebServer(config, logger)

	// Set up context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Set up signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	// Start estimator in a goroutine
	go func() {
		if err := estimator.Start(ctx, *serverOnly); err != nil {
			if err != context.Canceled {
				logger.Printf("Estimator error: %v", err)
			}
		}
	}()

	logger.Printf("Estimator started. Press Ctrl+C to stop...")

	// Wait for shutdown signal
	<-sigChan
	logger.Printf("Shutdown signal received, stopping estimator...")

	// Cancel context to stop estimator
	cancel()

	// Give the estimator a moment to clean up
	estimator.Stop()

	logger.Printf("Estimator stopped successfully")
}

func isFlagSet(name string) bool {
	set := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == name {
			set = true
		}
	})
	return set
}

func printPosition(config *service.Config) {
	now := time.Now()
	pos, err := solarpos.Position(now, config.Location())
	if err != nil {
		fmt.Println("Error:", err)
		return
	}

	fmt.Printf("Sun position at %s for %.4f, %.4f:\n", utils.UTCString(now), config.Latitude, config.Longitude)
	fmt.Printf("  Altitude:         %8.2f°\n", pos.Altitude)
	fmt.Printf("  Azimuth:          %8.2f° (from north, clockwise)\n", pos.Azimuth)
	fmt.Printf("  Declination:      %8.2f°\n", pos.Declination)
	fmt.Printf("  Hour Angle:       %8.2f°\n", pos.HourAngle)
	fmt.Printf("  Equation of Time: %8.2f min\n", pos.EquationOfTime)
}

func printDaySummary(config *service.Config, dateStr string) {
	date := time.Now().UTC()
	if dateStr != "" {
		parsed, err := time.Parse("2006-01-02", dateStr)
		if err != nil {
			fmt.Println("Error: invalid date, expected YYYY-MM-DD:", err)
			return
		}
		date = parsed
	}

	summary, err := solarpos.DaySummaryAltitude(date, config.Location(), solarpos.StandardHorizon)
	if err != nil {
		fmt.Println("Error:", err)
		return
	}

	fmt.Printf("Day summary for %s at %.4f, %.4f:\n", utils.DateString(date), config.Latitude, config.Longitude)
	fmt.Printf("  Kind:       %s\n", summary.Kind)
	switch summary.Kind {
	case solarpos.NormalDay:
		fmt.Printf("  Sunrise:    %s\n", summary.Sunrise.Format("15:04:05 MST"))
		fmt.Printf("  Sunset:     %s\n", summary.Sunset.Format("15:04:05 MST"))
	case solarpos.PolarDay:
		fmt.Printf("  The sun stays above the horizon all day\n")
	case solarpos.PolarNight:
		fmt.Printf("  The sun stays below the horizon all day\n")
	}
	fmt.Printf("  Solar Noon: %s\n", summary.SolarNoon.Format("15:04:05 MST"))
	fmt.Printf("  Day Length: %s\n", summary.DayLength)

	pnl, err := config.Panel()
	if err != nil {
		fmt.Println("Error:", err)
		return
	}
	model := panel.ConstantIrradiance(config.ClearSkyIrradiance)
	energy, err := pnl.DailyEnergy(config.Location(), date, model, 0)
	if err != nil {
		fmt.Println("Error:", err)
		return
	}
	fmt.Printf("  Expected clear-sky energy: %.0f Wh\n", energy)
}

func showHelp() {
	fmt.Println("suntrack - Solar position and panel energy estimator")
	fmt.Println()
	fmt.Println("DESCRIPTION:")
	fmt.Println("  Computes the sun's position for a configured site, derives sunrise, sunset")
	fmt.Println("  and day length, and models the power and daily energy of a fixed-tilt panel.")
	fmt.Println("  When run as a service it samples the model continuously, compares it against")
	fmt.Println("  a PV inverter read over Modbus, and persists integrated energy periods.")
	fmt.Println()
	fmt.Println("  Key Features:")
	fmt.Println("  - Sun position (altitude/azimuth) from a low-precision solar ephemeris")
	fmt.Println("  - Sunrise/sunset with polar day and polar night handling")
	fmt.Println("  - Fixed-tilt panel incidence and energy model")
	fmt.Println("  - Irradiance forecasts from the Open-Meteo API")
	fmt.Println("  - Inverter power readings via Modbus")
	fmt.Println("  - Real-time web dashboard")
	fmt.Println()
	fmt.Println("USAGE:")
	fmt.Println("  suntrack [OPTIONS]")
	fmt.Println()
	fmt.Println("OPTIONS:")
	flag.PrintDefaults()
	fmt.Println()
	fmt.Println("EXAMPLES:")
	fmt.Println("  # Basic usage with default settings")
	fmt.Println("  suntrack")
	fmt.Println()
	fmt.Println("  # Custom configuration")
	fmt.Println("  suntrack --config=config.json")
	fmt.Println()
	fmt.Println("  # Show inverter information")
	fmt.Println("  suntrack -info")
	fmt.Println()
	fmt.Println("  # Print the current sun position")
	fmt.Println("  suntrack -position")
	fmt.Println()
	fmt.Println("  # Print the day summary for a date")
	fmt.Println("  suntrack -day 2026-06-21")
	fmt.Println()
	fmt.Println("  # Run only web server without periodic tasks")
	fmt.Println("  suntrack -serverOnly")
	fmt.Println()
	fmt.Println("  # Show this help")
	fmt.Println("  suntrack -help")
}
