package inverter

import (
	"encoding/binary"
	"fmt"
	"time"

	"github.com/goburrow/modbus"
)

// Modbus client configuration
const (
	DefaultSlaveAddress = 1
	MinSlaveAddress     = 1
	MaxSlaveAddress     = 246
)

// Operating states reported in the status register
const (
	StateOff      = 0
	StateSleeping = 1
	StateStarting = 2
	StateRunning  = 3
	StateThrottle = 4
	StateFault    = 5
)

// ModbusClient represents a PV inverter Modbus client
type ModbusClient struct {
	client     modbus.Client
	handler    *modbus.RTUClientHandler
	tcpHandler *modbus.TCPClientHandler
}

// NewRTUClient connects to an inverter over a serial RTU line
func NewRTUClient(device string, baudRate int, slaveID byte) (*ModbusClient, error) {
	handler := modbus.NewRTUClientHandler(device)
	handler.BaudRate = baudRate
	handler.DataBits = 8
	handler.Parity = "N"
	handler.StopBits = 1
	handler.SlaveId = slaveID
	handler.Timeout = 1 * time.Second

	err := handler.Connect()
	if err != nil {
		return nil, fmt.Errorf("failed to connect: %v", err)
	}

	return &ModbusClient{
		client:  modbus.NewClient(handler),
		handler: handler,
	}, nil
}

// NewTCPClient connects to an inverter over Modbus TCP
func NewTCPClient(address string, slaveID byte) (*ModbusClient, error) {
	handler := modbus.NewTCPClientHandler(address)
	handler.SlaveId = slaveID
	handler.Timeout = 1 * time.Second

	err := handler.Connect()
	if err != nil {
		return nil, fmt.Errorf("failed to connect: %v", err)
	}

	return &ModbusClient{
		client:     modbus.NewClient(handler),
		tcpHandler: handler,
	}, nil
}

// Close closes the Modbus connection
func (c *ModbusClient) Close() error {
	if c.handler != nil {
		return c.handler.Close()
	}
	if c.tcpHandler != nil {
		return c.tcpHandler.Close()
	}
	return nil
}

// SetSlaveID changes the slave ID for subsequent operations
func (c *ModbusClient) SetSlaveID(slaveID byte) {
	if c.handler != nil {
		c.handler.SlaveId = slaveID
	}
	if c.tcpHandler != nil {
		c.tcpHandler.SlaveId = slaveID
	}
}

// Helper functions for data conversion
func bytesToU16(data []byte) uint16 {
	return binary.BigEndian.Uint16(data)
}

func bytesToS16(data []byte) int16 {
	return int16(binary.BigEndian.Uint16(data))
}

func bytesToU32(data []byte) uint32 {
	return binary.BigEndian.Uint32(data)
}

func bytesToS32(data []byte) int32 {
	return int32(binary.BigEndian.Uint32(data))
}

// Status holds the live readings of a PV inverter (register block 30000)
type Status struct {
	OperatingState      uint16
	ACPower             float64 // W
	DCPower             float64 // W
	DCVoltage           float64 // V
	DCCurrent           float64 // A
	ACVoltage           float64 // V
	ACCurrent           float64 // A
	GridFrequency       float64 // Hz
	HeatsinkTemperature float64 // °C
	EnergyToday         float64 // kWh
	EnergyTotal         float64 // kWh
}

// ReadStatus reads the live status block from the given slave
func (c *ModbusClient) ReadStatus(slaveID byte) (*Status, error) {
	if slaveID < MinSlaveAddress || slaveID > MaxSlaveAddress {
		return nil, fmt.Errorf("invalid slave ID: must be between %d and %d", MinSlaveAddress, MaxSlaveAddress)
	}
	c.SetSlaveID(slaveID)

	// Read status block (30000-30014, 15 registers)
	data, err := c.client.ReadInputRegisters(30000, 15)
	if err != nil {
		return nil, fmt.Errorf("failed to read inverter status: %v", err)
	}

	status := &Status{
		OperatingState:      bytesToU16(data[0:2]),
		ACPower:             float64(bytesToS32(data[2:6])),
		DCPower:             float64(bytesToS32(data[6:10])),
		DCVoltage:           float64(bytesToU16(data[10:12])) / 10.0,
		DCCurrent:           float64(bytesToS16(data[12:14])) / 100.0,
		ACVoltage:           float64(bytesToU16(data[14:16])) / 10.0,
		ACCurrent:           float64(bytesToS16(data[16:18])) / 100.0,
		GridFrequency:       float64(bytesToU16(data[18:20])) / 100.0,
		HeatsinkTemperature: float64(bytesToS16(data[20:22])) / 10.0,
		EnergyToday:         float64(bytesToU32(data[22:26])) / 100.0,
		EnergyTotal:         float64(bytesToU32(data[26:30])) / 10.0,
	}

	return status, nil
}

// DeviceInfo holds the static nameplate data of an inverter (register block 30100)
type DeviceInfo struct {
	RatedACPower    float64 // W
	MaxDCVoltage    float64 // V
	MaxDCCurrent    float64 // A
	FirmwareVersion uint16
	StringCount     uint16
}

// ReadDeviceInfo reads the nameplate block from the given slave
func (c *ModbusClient) ReadDeviceInfo(slaveID byte) (*DeviceInfo, error) {
	if slaveID < MinSlaveAddress || slaveID > MaxSlaveAddress {
		return nil, fmt.Errorf("invalid slave ID: must be between %d and %d", MinSlaveAddress, MaxSlaveAddress)
	}
	c.SetSlaveID(slaveID)

	// Read nameplate block (30100-30105, 6 registers)
	data, err := c.client.ReadInputRegisters(30100, 6)
	if err != nil {
		return nil, fmt.Errorf("failed to read inverter device info: %v", err)
	}

	info := &DeviceInfo{
		RatedACPower:    float64(bytesToU32(data[0:4])),
		MaxDCVoltage:    float64(bytesToU16(data[4:6])) / 10.0,
		MaxDCCurrent:    float64(bytesToS16(data[6:8])) / 100.0,
		FirmwareVersion: bytesToU16(data[8:10]),
		StringCount:     bytesToU16(data[10:12]),
	}

	return info, nil
}
