// Package main provides an example of estimating panel power and daily
// energy from computed sun positions.
package main

import (
	"fmt"
	"log"
	"time"

	"github.com/devskill-org/suntrack/panel"
	"github.com/devskill-org/suntrack/solarpos"
)

func main() {
	loc := solarpos.Location{
		Latitude:  56.9496, // Riga, Latvia
		Longitude: 24.1052,
	}

	// A typical residential panel: 1.6 m², 20% efficient, facing south
	// at a 35 degree tilt.
	p, err := panel.New(35, 180, 1.6, 0.20)
	if err != nil {
		log.Fatal(err)
	}

	pos, err := solarpos.Position(time.Now(), loc)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Printf("Incidence angle: %.2f°\n", p.IncidenceAngle(pos))
	fmt.Printf("Instant power:   %.1f W (clear sky)\n",
		p.InstantPower(pos, panel.DefaultClearSkyIrradiance))

	energy, err := p.DailyEnergy(loc, time.Now(),
		panel.ConstantIrradiance(panel.DefaultClearSkyIrradiance), time.Minute)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("Daily energy:    %.1f Wh (clear sky)\n", energy)
}
