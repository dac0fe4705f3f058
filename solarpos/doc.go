// Package solarpos computes the apparent position of the sun for an
// observer on Earth, along with sunrise, sunset, solar noon and day
// length for a given date.
//
// The calculations use the standard low-precision solar formulas
// (polynomial approximations in Julian centuries since J2000.0) and are
// accurate to a small fraction of a degree, which is sufficient for
// solar-panel geometry, lighting control and similar applications. This
// is not a full ephemeris: nutation, aberration and atmospheric
// refraction are not modelled beyond the optional horizon-altitude
// correction accepted by DaySummaryAltitude.
//
// Basic Usage:
//
//	loc := solarpos.Location{Latitude: 56.9496, Longitude: 24.1052}
//
//	pos, err := solarpos.Position(time.Now(), loc)
//	if err != nil {
//		log.Fatal(err)
//	}
//	fmt.Printf("Altitude: %.2f°, Azimuth: %.2f°\n", pos.Altitude, pos.Azimuth)
//
//	day, err := solarpos.DaySummary(time.Now(), loc)
//	if err != nil {
//		log.Fatal(err)
//	}
//	fmt.Println("Sunrise:", day.Sunrise, "Sunset:", day.Sunset)
//
// Conventions:
//
// All public angles are in degrees. Longitude is positive east of
// Greenwich. Azimuth is measured clockwise from true north in [0, 360),
// so the sun at solar noon in northern mid-latitudes sits near 180°.
// The hour angle is negative before solar noon and positive after, at
// 15° per hour. Timestamps are normalized to UTC internally; callers
// are responsible for supplying timestamps with the intended offset.
//
// Every function is a pure computation with no shared state, so calls
// may run concurrently without synchronization.
package solarpos
