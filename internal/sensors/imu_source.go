// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensors

import (
	"fmt"
	"log"
	"time"

	"github.com/relabs-tech/inertial_compass/internal/ak0991x"
	"github.com/relabs-tech/inertial_compass/internal/config"
	"github.com/relabs-tech/inertial_compass/internal/imu"
	"github.com/relabs-tech/inertial_compass/internal/vecmath"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/devices/v3/mpu9250"
	"periph.io/x/host/v3"
)

// Full-scale sensitivities indexed by the MPU9250 range setting (0-3).
var (
	accelLSBPerG   = [4]float64{16384, 8192, 4096, 2048}
	gyroLSBPerDegS = [4]float64{131, 65.5, 32.8, 16.4}
)

// countsToG converts a raw accelerometer reading to g.
func countsToG(counts int16, accelRange byte) float64 {
	return float64(counts) / accelLSBPerG[accelRange&0x03]
}

// countsToDPS converts a raw gyroscope reading to degrees per second.
func countsToDPS(counts int16, gyroRange byte) float64 {
	return float64(counts) / gyroLSBPerDegS[gyroRange&0x03]
}

// gravityFromCounts turns the accelerometer's specific force into the gravity
// vector the attitude estimator expects: a device lying flat reads +1 g on Z
// and yields (0, 0, -1).
func gravityFromCounts(ax, ay, az int16, accelRange byte) vecmath.Vector3 {
	return vecmath.New(
		-countsToG(ax, accelRange),
		-countsToG(ay, accelRange),
		-countsToG(az, accelRange),
	)
}

// Source reads accelerometer and gyroscope from an MPU9250 on SPI and the
// magnetic field from an AK0991x on I2C. Both boards are expected to share
// the same axis orientation.
type Source struct {
	imu        *mpu9250.MPU9250
	mag        *ak0991x.Dev
	magBus     i2c.BusCloser
	accelRange byte
	gyroRange  byte
}

var _ imu.SampleSource = (*Source)(nil)

// Open initializes both sensors from cfg.
func Open(cfg *config.Config) (*Source, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("periph host init: %w", err)
	}

	dev, err := openMPU9250(cfg)
	if err != nil {
		return nil, err
	}

	bus, err := i2creg.Open(cfg.MagI2CBus)
	if err != nil {
		return nil, fmt.Errorf("magnetometer: open I2C bus %q: %w", cfg.MagI2CBus, err)
	}
	mag, err := ak0991x.New(bus, &ak0991x.Opts{
		Chip: cfg.MagChip,
		Addr: cfg.MagI2CAddr,
		Mode: cfg.MagMode,
	})
	if err != nil {
		bus.Close()
		return nil, fmt.Errorf("magnetometer: %w", err)
	}
	log.Printf("magnetometer: %s ready (mode 0x%02X)", mag, byte(cfg.MagMode))

	return &Source{
		imu:        dev,
		mag:        mag,
		magBus:     bus,
		accelRange: cfg.IMUAccelRange,
		gyroRange:  cfg.IMUGyroRange,
	}, nil
}

func openMPU9250(cfg *config.Config) (*mpu9250.MPU9250, error) {
	cs := gpioreg.ByName(cfg.IMUCSPin)
	if cs == nil {
		return nil, fmt.Errorf("IMU: CS pin %q not found", cfg.IMUCSPin)
	}

	tr, err := mpu9250.NewSpiTransport(cfg.IMUSPIDevice, cs)
	if err != nil {
		return nil, fmt.Errorf("IMU: SPI transport (%s): %w", cfg.IMUSPIDevice, err)
	}

	dev, err := mpu9250.New(tr)
	if err != nil {
		return nil, fmt.Errorf("IMU: device creation: %w", err)
	}

	if err := dev.Init(); err != nil {
		return nil, fmt.Errorf("IMU: initialization: %w", err)
	}

	if err := dev.SetAccelRange(cfg.IMUAccelRange); err != nil {
		return nil, fmt.Errorf("IMU: set accel range: %w", err)
	}
	log.Printf("IMU: accelerometer range set to %d (±%dg)", cfg.IMUAccelRange, []int{2, 4, 8, 16}[cfg.IMUAccelRange])

	if err := dev.SetGyroRange(cfg.IMUGyroRange); err != nil {
		return nil, fmt.Errorf("IMU: set gyro range: %w", err)
	}
	log.Printf("IMU: gyroscope range set to %d (±%d°/s)", cfg.IMUGyroRange, []int{250, 500, 1000, 2000}[cfg.IMUGyroRange])

	// Gyro bias removal; the device must be still at startup.
	if err := dev.Calibrate(); err != nil {
		log.Printf("Warning: IMU calibration failed: %v", err)
	} else {
		log.Printf("IMU calibration complete")
	}
	return dev, nil
}

// Next reads one sample from both sensors.
func (s *Source) Next() (imu.Sample, error) {
	ax, err := s.imu.GetAccelerationX()
	if err != nil {
		return imu.Sample{}, fmt.Errorf("IMU accel X: %w", err)
	}
	ay, err := s.imu.GetAccelerationY()
	if err != nil {
		return imu.Sample{}, fmt.Errorf("IMU accel Y: %w", err)
	}
	az, err := s.imu.GetAccelerationZ()
	if err != nil {
		return imu.Sample{}, fmt.Errorf("IMU accel Z: %w", err)
	}

	gx, err := s.imu.GetRotationX()
	if err != nil {
		return imu.Sample{}, fmt.Errorf("IMU gyro X: %w", err)
	}
	gy, err := s.imu.GetRotationY()
	if err != nil {
		return imu.Sample{}, fmt.Errorf("IMU gyro Y: %w", err)
	}
	gz, err := s.imu.GetRotationZ()
	if err != nil {
		return imu.Sample{}, fmt.Errorf("IMU gyro Z: %w", err)
	}

	mag, err := s.mag.ReadMagneticField()
	if err != nil {
		return imu.Sample{}, fmt.Errorf("magnetometer: %w", err)
	}

	return imu.Sample{
		Source: s.mag.Chip().String(),
		Accel:  gravityFromCounts(ax, ay, az, s.accelRange),
		Gyro: vecmath.New(
			countsToDPS(gx, s.gyroRange),
			countsToDPS(gy, s.gyroRange),
			countsToDPS(gz, s.gyroRange),
		),
		Mag:  mag,
		Time: time.Now(),
	}, nil
}

// Close powers down the magnetometer and releases its bus.
func (s *Source) Close() error {
	if err := s.mag.Halt(); err != nil {
		log.Printf("magnetometer: halt: %v", err)
	}
	return s.magBus.Close()
}
