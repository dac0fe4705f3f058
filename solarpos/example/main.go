// Package main provides an example of using the solarpos package to
// report sun position and day summaries.
package main

import (
	"fmt"
	"log"
	"time"

	"github.com/devskill-org/suntrack/solarpos"
)

func main() {
	loc := solarpos.Location{
		Latitude:  56.9496, // Riga, Latvia
		Longitude: 24.1052,
	}

	pos, err := solarpos.Position(time.Now(), loc)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("Sun now: altitude %.2f°, azimuth %.2f° (declination %.2f°, hour angle %.2f°)\n",
		pos.Altitude, pos.Azimuth, pos.Declination, pos.HourAngle)

	day, err := solarpos.DaySummaryAltitude(time.Now(), loc, solarpos.StandardHorizon)
	if err != nil {
		log.Fatal(err)
	}

	switch day.Kind {
	case solarpos.NormalDay:
		fmt.Println("Sunrise:   ", day.Sunrise.Format(time.RFC3339))
		fmt.Println("Sunset:    ", day.Sunset.Format(time.RFC3339))
		fmt.Println("Solar noon:", day.SolarNoon.Format(time.RFC3339))
		fmt.Println("Day length:", day.DayLength)
	default:
		fmt.Printf("%s today (no sunrise or sunset)\n", day.Kind)
	}

	// Hourly sun path for charting.
	samples, err := solarpos.Profile(time.Now(), loc, time.Hour)
	if err != nil {
		log.Fatal(err)
	}
	for _, s := range samples {
		fmt.Printf("%s  altitude %7.2f°  azimuth %7.2f°\n",
			s.Time.Format("15:04"), s.Altitude, s.Azimuth)
	}
}
