// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package config

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/relabs-tech/inertial_compass/internal/ak0991x"
	"github.com/relabs-tech/inertial_compass/internal/orientation"
)

// Sample sources selectable with SAMPLE_SOURCE.
const (
	SourceHardware = "hardware"
	SourceMock     = "mock"
)

// Config holds all application configuration values.
type Config struct {
	// MQTT
	MQTTBroker           string
	MQTTClientIDProducer string
	MQTTClientIDConsole  string
	MQTTClientIDWeb      string
	MQTTClientIDDisplay  string
	MQTTClientIDGPS      string

	// Topics
	TopicHeading     string
	TopicPose        string
	TopicIMU         string
	TopicDeclination string
	TopicGPS         string

	// Sample source: "hardware" or "mock"
	SampleSource string
	MockYawRate  float64 // deg/s, mock source only

	// Magnetometer
	MagI2CBus  string // "" selects the first bus
	MagI2CAddr uint16
	MagChip    ak0991x.Chip
	MagMode    ak0991x.Mode

	// IMU Hardware
	IMUSPIDevice string
	IMUCSPin     string
	// Accelerometer: 0=±2g, 1=±4g, 2=±8g, 3=±16g
	IMUAccelRange byte
	// Gyroscope: 0=±250°/s, 1=±500°/s, 2=±1000°/s, 3=±2000°/s
	IMUGyroRange byte

	// Fusion
	FusionUpCorrectionRate float64
	FusionAccelMinG        float64
	FusionAccelMaxG        float64
	DeclinationDeg         float64 // east positive

	// GPS
	GPSSerialPort string
	GPSBaudRate   int

	// Timing
	SampleInterval     int // milliseconds
	ConsoleLogInterval int // milliseconds

	// Web Server
	WebServerPort int
	MetricsPort   int // 0 disables the metrics endpoint

	// Display
	DisplayI2CBus         string
	DisplayUpdateInterval int // milliseconds
}

// globalConfig is only reachable through InitGlobal and Get.
// configOnce makes InitGlobal run once, configMu guards readers against it.
var (
	globalConfig *Config
	initErr      error
	configOnce   sync.Once
	configMu     sync.RWMutex
)

// defaults returns the values used for keys missing from the file.
func defaults() *Config {
	fusion := orientation.DefaultFusionConfig()
	return &Config{
		TopicHeading:     "compass/heading",
		TopicPose:        "compass/pose",
		TopicIMU:         "compass/imu",
		TopicDeclination: "compass/declination",
		TopicGPS:         "compass/gps",

		SampleSource: SourceHardware,
		MockYawRate:  10,

		MagI2CAddr: ak0991x.DefaultOpts.Addr,
		MagChip:    ak0991x.DefaultOpts.Chip,
		MagMode:    ak0991x.DefaultOpts.Mode,

		FusionUpCorrectionRate: fusion.UpCorrectionRate,
		FusionAccelMinG:        fusion.AccelMinG,
		FusionAccelMaxG:        fusion.AccelMaxG,

		GPSBaudRate: 9600,

		WebServerPort: 8080,

		DisplayUpdateInterval: 500,
	}
}

// Load reads the configuration file and returns a Config struct.
func Load(configPath string) (*Config, error) {
	file, err := os.Open(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer file.Close()

	cfg := defaults()
	scanner := bufio.NewScanner(file)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		// Parse KEY=VALUE
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid config line %d: %q", lineNum, line)
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		if err := cfg.setValue(key, value); err != nil {
			return nil, fmt.Errorf("config line %d: %w", lineNum, err)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// setValue sets a config value based on the key.
func (c *Config) setValue(key, value string) error {
	var err error
	switch key {
	// MQTT
	case "MQTT_BROKER":
		c.MQTTBroker = value
	case "MQTT_CLIENT_ID_PRODUCER":
		c.MQTTClientIDProducer = value
	case "MQTT_CLIENT_ID_CONSOLE":
		c.MQTTClientIDConsole = value
	case "MQTT_CLIENT_ID_WEB":
		c.MQTTClientIDWeb = value
	case "MQTT_CLIENT_ID_DISPLAY":
		c.MQTTClientIDDisplay = value
	case "MQTT_CLIENT_ID_GPS":
		c.MQTTClientIDGPS = value

	// Topics
	case "TOPIC_HEADING":
		c.TopicHeading = value
	case "TOPIC_POSE":
		c.TopicPose = value
	case "TOPIC_IMU":
		c.TopicIMU = value
	case "TOPIC_DECLINATION":
		c.TopicDeclination = value
	case "TOPIC_GPS":
		c.TopicGPS = value

	// Sample source
	case "SAMPLE_SOURCE":
		if value != SourceHardware && value != SourceMock {
			return fmt.Errorf("SAMPLE_SOURCE must be %q or %q, got %q", SourceHardware, SourceMock, value)
		}
		c.SampleSource = value
	case "MOCK_YAW_RATE":
		c.MockYawRate, err = parseFloat(key, value)

	// Magnetometer
	case "MAG_I2C_BUS":
		c.MagI2CBus = value
	case "MAG_I2C_ADDR":
		addr, perr := strconv.ParseUint(value, 0, 16)
		if perr != nil {
			return fmt.Errorf("invalid MAG_I2C_ADDR %q: %w", value, perr)
		}
		c.MagI2CAddr = uint16(addr)
	case "MAG_CHIP":
		c.MagChip, err = ak0991x.ParseChip(value)
	case "MAG_MODE":
		c.MagMode, err = ak0991x.ParseMode(value)

	// IMU Hardware
	case "IMU_SPI_DEVICE":
		c.IMUSPIDevice = value
	case "IMU_CS_PIN":
		c.IMUCSPin = value
	case "IMU_ACCEL_RANGE":
		c.IMUAccelRange, err = parseRange(key, value, "0=±2g, 1=±4g, 2=±8g, 3=±16g")
	case "IMU_GYRO_RANGE":
		c.IMUGyroRange, err = parseRange(key, value, "0=±250°/s, 1=±500°/s, 2=±1000°/s, 3=±2000°/s")

	// Fusion
	case "FUSION_UP_CORRECTION_RATE":
		c.FusionUpCorrectionRate, err = parseFloat(key, value)
	case "FUSION_ACCEL_MIN_G":
		c.FusionAccelMinG, err = parseFloat(key, value)
	case "FUSION_ACCEL_MAX_G":
		c.FusionAccelMaxG, err = parseFloat(key, value)
	case "DECLINATION_DEG":
		c.DeclinationDeg, err = parseFloat(key, value)

	// GPS
	case "GPS_SERIAL_PORT":
		c.GPSSerialPort = value
	case "GPS_BAUD_RATE":
		c.GPSBaudRate, err = parseInt(key, value)

	// Timing
	case "SAMPLE_INTERVAL":
		c.SampleInterval, err = parseInt(key, value)
	case "CONSOLE_LOG_INTERVAL":
		c.ConsoleLogInterval, err = parseInt(key, value)

	// Web Server
	case "WEB_SERVER_PORT":
		c.WebServerPort, err = parseInt(key, value)
	case "METRICS_PORT":
		c.MetricsPort, err = parseInt(key, value)

	// Display
	case "DISPLAY_I2C_BUS":
		c.DisplayI2CBus = value
	case "DISPLAY_UPDATE_INTERVAL":
		c.DisplayUpdateInterval, err = parseInt(key, value)

	default:
		return fmt.Errorf("unknown config key: %q", key)
	}

	return err
}

func parseInt(key, value string) (int, error) {
	v, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	return v, nil
}

func parseFloat(key, value string) (float64, error) {
	v, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	return v, nil
}

func parseRange(key, value, meaning string) (byte, error) {
	v, err := parseInt(key, value)
	if err != nil {
		return 0, err
	}
	if v < 0 || v > 3 {
		return 0, fmt.Errorf("%s must be 0-3 (%s), got %d", key, meaning, v)
	}
	return byte(v), nil
}

// validate checks that all required fields are set.
func (c *Config) validate() error {
	if c.MQTTBroker == "" {
		return fmt.Errorf("MQTT_BROKER is required")
	}
	if c.SampleSource == SourceHardware && c.IMUSPIDevice == "" {
		return fmt.Errorf("IMU_SPI_DEVICE is required")
	}
	if c.SampleInterval <= 0 {
		return fmt.Errorf("SAMPLE_INTERVAL is required")
	}
	if c.ConsoleLogInterval <= 0 {
		return fmt.Errorf("CONSOLE_LOG_INTERVAL is required")
	}
	if !c.MagChip.SupportsMode(c.MagMode) {
		return fmt.Errorf("MAG_MODE 0x%02X is not supported by MAG_CHIP %s", byte(c.MagMode), c.MagChip)
	}
	if _, err := c.FusionConfig(); err != nil {
		return err
	}
	return nil
}

// FusionConfig returns the heading filter parameters, checked by the same
// setters the filter exposes at runtime.
func (c *Config) FusionConfig() (orientation.FusionConfig, error) {
	fc := orientation.DefaultFusionConfig()
	if err := fc.SetUpCorrectionRate(c.FusionUpCorrectionRate); err != nil {
		return fc, fmt.Errorf("FUSION_UP_CORRECTION_RATE: %w", err)
	}
	if err := fc.SetAccelGate(c.FusionAccelMinG, c.FusionAccelMaxG); err != nil {
		return fc, fmt.Errorf("FUSION_ACCEL_MIN_G/FUSION_ACCEL_MAX_G: %w", err)
	}
	if err := fc.SetDeclination(c.DeclinationDeg); err != nil {
		return fc, fmt.Errorf("DECLINATION_DEG: %w", err)
	}
	return fc, nil
}

// InitGlobal initializes the global configuration from file.
// Only the first call loads the file; later calls return its error again.
func InitGlobal(configPath string) error {
	configOnce.Do(func() {
		configMu.Lock()
		defer configMu.Unlock()
		globalConfig, initErr = Load(configPath)
	})
	return initErr
}

// Get returns the global configuration instance.
// InitGlobal must be called first, or this will return nil.
func Get() *Config {
	configMu.RLock()
	defer configMu.RUnlock()
	return globalConfig
}
