package inverter

import (
	"fmt"
)

// ShowInverterInfo displays live inverter readings in a formatted table
func ShowInverterInfo(modbusAddress string, slaveID byte) error {
	if modbusAddress == "" {
		return fmt.Errorf("inverter modbus address is not configured")
	}

	// Create TCP modbus client (address already includes port)
	client, err := NewTCPClient(modbusAddress, slaveID)
	if err != nil {
		return fmt.Errorf("error connecting to inverter modbus server at %s: %w", modbusAddress, err)
	}
	defer client.Close()

	status, err := client.ReadStatus(slaveID)
	if err != nil {
		return fmt.Errorf("error reading inverter status: %w", err)
	}

	fmt.Println()
	fmt.Println("======================== INVERTER STATUS ========================")
	fmt.Println()

	fmt.Println("OPERATION")
	fmt.Println("--------------------------------------------------")
	fmt.Printf("  Operating State:                %s\n", getOperatingState(status.OperatingState))
	fmt.Printf("  Heatsink Temperature:           %.1f °C\n", status.HeatsinkTemperature)
	fmt.Println()

	fmt.Println("POWER")
	fmt.Println("--------------------------------------------------")
	fmt.Printf("  AC Power:                       %.0f W\n", status.ACPower)
	fmt.Printf("  DC Power:                       %.0f W\n", status.DCPower)
	fmt.Printf("  DC Voltage:                     %.1f V\n", status.DCVoltage)
	fmt.Printf("  DC Current:                     %.2f A\n", status.DCCurrent)
	fmt.Printf("  AC Voltage:                     %.1f V\n", status.ACVoltage)
	fmt.Printf("  AC Current:                     %.2f A\n", status.ACCurrent)
	fmt.Printf("  Grid Frequency:                 %.2f Hz\n", status.GridFrequency)
	fmt.Println()

	fmt.Println("ENERGY")
	fmt.Println("--------------------------------------------------")
	fmt.Printf("  Energy Today:                   %.2f kWh\n", status.EnergyToday)
	fmt.Printf("  Energy Total:                   %.1f kWh\n", status.EnergyTotal)
	fmt.Println()

	info, err := client.ReadDeviceInfo(slaveID)
	if err == nil {
		fmt.Println("DEVICE")
		fmt.Println("--------------------------------------------------")
		fmt.Printf("  Rated AC Power:                 %.0f W\n", info.RatedACPower)
		fmt.Printf("  Max DC Voltage:                 %.1f V\n", info.MaxDCVoltage)
		fmt.Printf("  Max DC Current:                 %.2f A\n", info.MaxDCCurrent)
		fmt.Printf("  Firmware Version:               %d\n", info.FirmwareVersion)
		fmt.Printf("  String Count:                   %d\n", info.StringCount)
		fmt.Println()
	}

	fmt.Println("=================================================================")
	fmt.Println()

	return nil
}

func getOperatingState(state uint16) string {
	switch state {
	case StateOff:
		return "Off"
	case StateSleeping:
		return "Sleeping"
	case StateStarting:
		return "Starting"
	case StateRunning:
		return "Running"
	case StateThrottle:
		return "Throttled"
	case StateFault:
		return "Fault"
	default:
		return fmt.Sprintf("Unknown (%d)", state)
	}
}
