// Package radiation provides a Go client library for the Open-Meteo
// forecast API, restricted to the solar radiation variables needed to
// drive a panel energy model.
//
// The client retrieves hourly shortwave (global horizontal), direct
// normal and diffuse irradiance forecasts for a location. The series
// can be fed into the panel package as a caller-supplied irradiance
// model instead of a flat clear-sky assumption.
//
// Basic Usage:
//
//	client := radiation.NewClient("YourApp/1.0 (your-email@example.com)")
//
//	location := radiation.Location{
//		Latitude:  59.9139, // Oslo
//		Longitude: 10.7522,
//	}
//
//	forecast, err := client.GetHourly(radiation.QueryParams{Location: location})
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	samples, err := forecast.DirectNormalSeries()
//	if err != nil {
//		log.Fatal(err)
//	}
//	for _, s := range samples {
//		fmt.Printf("%v  %.0f W/m²\n", s.Time, s.Value)
//	}
//
// The client handles JSON deserialization of the Open-Meteo response
// and includes proper error handling for HTTP and validation errors.
//
// For more information about the API, visit: https://open-meteo.com/en/docs
package radiation
