// Package main provides an example of fetching an hourly irradiance
// forecast and using it as a panel irradiance model.
package main

import (
	"fmt"
	"log"
	"time"

	"github.com/devskill-org/suntrack/panel"
	"github.com/devskill-org/suntrack/radiation"
	"github.com/devskill-org/suntrack/solarpos"
)

func main() {
	client := radiation.NewClient("SuntrackExample/1.0 (username@example.com)")

	loc := radiation.Location{
		Latitude:  56.9496, // Riga, Latvia
		Longitude: 24.1052,
	}

	forecast, err := client.GetHourly(radiation.QueryParams{
		Location:     loc,
		ForecastDays: 1,
	})
	if err != nil {
		log.Fatal(err)
	}

	samples, err := forecast.DirectNormalSeries()
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println("Hourly direct normal irradiance:")
	for _, s := range samples {
		fmt.Printf("  %s  %6.1f W/m²\n", s.Time.Format("15:04"), s.Value)
	}

	// Drive the panel model with the forecast series.
	irrSamples := make([]panel.IrradianceSample, len(samples))
	for i, s := range samples {
		irrSamples[i] = panel.IrradianceSample{Time: s.Time, Irradiance: s.Value}
	}
	series, err := panel.NewSeries(irrSamples)
	if err != nil {
		log.Fatal(err)
	}

	p, err := panel.New(35, 180, 1.6, 0.20)
	if err != nil {
		log.Fatal(err)
	}

	energy, err := p.DailyEnergy(
		solarpos.Location{Latitude: loc.Latitude, Longitude: loc.Longitude},
		time.Now(), series, time.Minute)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("Forecast daily energy: %.1f Wh\n", energy)
}
