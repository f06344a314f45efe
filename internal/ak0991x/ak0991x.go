// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package ak0991x drives the AsahiKASEI AK09911, AK09912, AK09916 and AK09918
// 3-axis magnetometers over I2C.
//
// The four parts share one register layout: status 1, six little-endian data
// bytes, a dummy byte and status 2 starting at 0x10, and the mode and reset
// controls at 0x31 and 0x32. They differ in sensitivity, WIA2 value and
// supported modes. The AK09911 and AK09912 also carry per-axis sensitivity
// adjustment values in fuse ROM.
package ak0991x

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang/geo/r3"
	"periph.io/x/conn/v3/i2c"
)

// I2C register map shared by the AK0991x family.
const (
	regWIA1  = 0x00
	regWIA2  = 0x01
	regST1   = 0x10
	regHXL   = 0x11 // HXL, HXH, HYL, HYH, HZL, HZH, TMPS, ST2
	regST2   = 0x18
	regCNTL2 = 0x31
	regCNTL3 = 0x32
	regASAX  = 0x60 // ASAX, ASAY, ASAZ; fuse ROM mode only
)

const (
	st1DRDY   = 0x01
	st2HOFL   = 0x08
	cntl3SRST = 0x01
)

// DefaultAddr is the address with CAD pins tied low.
const DefaultAddr = 0x0C

var (
	// ErrOverflow is returned when the magnetic field exceeded the
	// measurement range and the sample is invalid.
	ErrOverflow = errors.New("ak0991x: magnetic sensor overflow")
	// ErrNotReady is returned when no sample became available while polling.
	ErrNotReady = errors.New("ak0991x: data not ready")
)

// Chip selects the part variant.
type Chip int

const (
	AK09916 Chip = iota
	AK09911
	AK09912
	AK09918
)

func (c Chip) String() string {
	switch c {
	case AK09911:
		return "AK09911"
	case AK09912:
		return "AK09912"
	case AK09916:
		return "AK09916"
	case AK09918:
		return "AK09918"
	}
	return fmt.Sprintf("Chip(%d)", int(c))
}

// DeviceID is the WIA2 value the chip reports.
func (c Chip) DeviceID() byte {
	switch c {
	case AK09911:
		return 0x05
	case AK09912:
		return 0x04
	case AK09918:
		return 0x0C
	}
	return 0x09
}

// SupportsMode reports whether the chip implements mode. The AK09911 has no
// continuous measurement modes.
func (c Chip) SupportsMode(m Mode) bool {
	switch m {
	case ModeSingle:
		return true
	case ModeContinuous10Hz, ModeContinuous20Hz, ModeContinuous50Hz, ModeContinuous100Hz:
		return c != AK09911
	}
	return false
}

func (c Chip) hasFuseROM() bool {
	return c == AK09911 || c == AK09912
}

// MicroTeslaPerLSB is the data register resolution.
func (c Chip) MicroTeslaPerLSB() float64 {
	if c == AK09911 {
		return 0.6
	}
	return 0.15
}

// ParseChip accepts a part name such as "AK09916" (case insensitive).
func ParseChip(s string) (Chip, error) {
	for _, c := range []Chip{AK09911, AK09912, AK09916, AK09918} {
		if strings.EqualFold(s, c.String()) {
			return c, nil
		}
	}
	return 0, fmt.Errorf("ak0991x: unknown chip %q", s)
}

// Mode is the CNTL2 operating mode.
type Mode byte

const (
	ModePowerDown       Mode = 0x00
	ModeSingle          Mode = 0x01
	ModeContinuous10Hz  Mode = 0x02
	ModeContinuous20Hz  Mode = 0x04
	ModeContinuous50Hz  Mode = 0x06
	ModeContinuous100Hz Mode = 0x08

	modeFuseROM Mode = 0x1F
)

var modeNames = map[string]Mode{
	"single": ModeSingle,
	"10hz":   ModeContinuous10Hz,
	"20hz":   ModeContinuous20Hz,
	"50hz":   ModeContinuous50Hz,
	"100hz":  ModeContinuous100Hz,
}

// ParseMode accepts "single", "10hz", "20hz", "50hz" or "100hz".
func ParseMode(s string) (Mode, error) {
	m, ok := modeNames[strings.ToLower(s)]
	if !ok {
		return 0, fmt.Errorf("ak0991x: unknown mode %q", s)
	}
	return m, nil
}

// Opts holds initialization options.
//
// Addr defaults to DefaultAddr when zero. Mode must be single or a continuous
// rate the chip supports; power-down is what Halt is for.
type Opts struct {
	Chip Chip
	Addr uint16
	Mode Mode
}

// DefaultOpts is an AK09916 at 0x0C sampling continuously at 100 Hz.
var DefaultOpts = Opts{
	Chip: AK09916,
	Addr: DefaultAddr,
	Mode: ModeContinuous100Hz,
}

// Dev is a handle to one AK0991x magnetometer.
type Dev struct {
	dev  i2c.Dev
	opts Opts

	// Per-axis sensitivity adjustment from fuse ROM, 1 for chips without it.
	adj [3]float64

	// DRDY polling for ReadMagneticField.
	pollInterval time.Duration
	pollAttempts int
}

// New soft resets the chip, reads its sensitivity adjustment if it has one and
// puts it in the requested mode.
func New(bus i2c.Bus, opts *Opts) (*Dev, error) {
	o := *opts
	if o.Addr == 0 {
		o.Addr = DefaultAddr
	}
	if !o.Chip.SupportsMode(o.Mode) {
		return nil, fmt.Errorf("ak0991x: %s does not support mode 0x%02X", o.Chip, byte(o.Mode))
	}

	d := &Dev{
		dev:          i2c.Dev{Addr: o.Addr, Bus: bus},
		opts:         o,
		adj:          [3]float64{1, 1, 1},
		pollInterval: time.Millisecond,
		pollAttempts: 20,
	}

	if err := d.writeReg(regCNTL3, cntl3SRST); err != nil {
		return nil, fmt.Errorf("%s: soft reset: %w", o.Chip, err)
	}
	// Registers are back to defaults (power-down) after reset.
	time.Sleep(time.Millisecond)

	if o.Chip.hasFuseROM() {
		if err := d.readAdjustment(); err != nil {
			return nil, fmt.Errorf("%s: read fuse ROM: %w", o.Chip, err)
		}
	}

	// Single mode is triggered per read.
	if o.Mode != ModeSingle {
		if err := d.writeReg(regCNTL2, byte(o.Mode)); err != nil {
			return nil, fmt.Errorf("%s: set mode: %w", o.Chip, err)
		}
	}
	return d, nil
}

func (d *Dev) String() string {
	return fmt.Sprintf("%s{%s}", d.opts.Chip, d.dev.String())
}

// Chip returns the configured part variant.
func (d *Dev) Chip() Chip {
	return d.opts.Chip
}

// ID returns the WIA1 company code (0x48) and WIA2 device code.
func (d *Dev) ID() (byte, byte, error) {
	buf := make([]byte, 2)
	if err := d.readRegBlock(regWIA1, buf); err != nil {
		return 0, 0, err
	}
	return buf[0], buf[1], nil
}

// SenseRaw waits for a sample and returns X, Y and Z in counts.
//
// In single mode it triggers the measurement first. The block read always
// runs through ST2 so the chip releases its data registers for the next
// sample.
func (d *Dev) SenseRaw() (int16, int16, int16, error) {
	if d.opts.Mode == ModeSingle {
		if err := d.writeReg(regCNTL2, byte(ModeSingle)); err != nil {
			return 0, 0, 0, fmt.Errorf("%s: trigger: %w", d.opts.Chip, err)
		}
	}

	if err := d.waitReady(); err != nil {
		return 0, 0, 0, err
	}

	data := make([]byte, regST2-regHXL+1)
	if err := d.readRegBlock(regHXL, data); err != nil {
		return 0, 0, 0, fmt.Errorf("%s: read data: %w", d.opts.Chip, err)
	}
	if data[len(data)-1]&st2HOFL != 0 {
		return 0, 0, 0, fmt.Errorf("%s: %w", d.opts.Chip, ErrOverflow)
	}

	x := int16(uint16(data[0]) | uint16(data[1])<<8)
	y := int16(uint16(data[2]) | uint16(data[3])<<8)
	z := int16(uint16(data[4]) | uint16(data[5])<<8)
	return x, y, z, nil
}

// ReadMagneticField returns the field in µT along the chip axes.
func (d *Dev) ReadMagneticField() (r3.Vector, error) {
	x, y, z, err := d.SenseRaw()
	if err != nil {
		return r3.Vector{}, err
	}
	s := d.opts.Chip.MicroTeslaPerLSB()
	return r3.Vector{
		X: float64(x) * s * d.adj[0],
		Y: float64(y) * s * d.adj[1],
		Z: float64(z) * s * d.adj[2],
	}, nil
}

// Halt puts the chip in power-down mode.
func (d *Dev) Halt() error {
	return d.writeReg(regCNTL2, byte(ModePowerDown))
}

// readAdjustment loads ASAX..ASAZ and leaves the chip powered down.
// Each axis is scaled by (ASA + 128) / 256.
func (d *Dev) readAdjustment() error {
	if err := d.writeReg(regCNTL2, byte(modeFuseROM)); err != nil {
		return err
	}
	asa := make([]byte, 3)
	if err := d.readRegBlock(regASAX, asa); err != nil {
		return err
	}
	if err := d.writeReg(regCNTL2, byte(ModePowerDown)); err != nil {
		return err
	}
	// Mode changes need 100 µs in power-down.
	time.Sleep(100 * time.Microsecond)

	for i, v := range asa {
		d.adj[i] = (float64(v) + 128) / 256
	}
	return nil
}

func (d *Dev) waitReady() error {
	st1 := make([]byte, 1)
	for i := 0; i < d.pollAttempts; i++ {
		if err := d.readRegBlock(regST1, st1); err != nil {
			return fmt.Errorf("%s: read status: %w", d.opts.Chip, err)
		}
		if st1[0]&st1DRDY != 0 {
			return nil
		}
		time.Sleep(d.pollInterval)
	}
	return fmt.Errorf("%s: %w", d.opts.Chip, ErrNotReady)
}

func (d *Dev) writeReg(addr byte, val byte) error {
	return d.dev.Tx([]byte{addr, val}, nil)
}

func (d *Dev) readRegBlock(addr byte, out []byte) error {
	if len(out) == 0 {
		return errors.New("readRegBlock: empty buffer")
	}
	return d.dev.Tx([]byte{addr}, out)
}
