package tfluna

import (
	"fmt"

	"github.com/mbalug7/go-tfluna/pkg/hal"
)

const (
	cmdSave      byte = 0x01
	cmdSoftReset byte = 0x02
	cmdHardReset byte = 0x01
	cmdTrigger   byte = 0x01
	cmdEnable    byte = 0x01
	cmdDisable   byte = 0x00
)

// Version is the firmware version of the sensor
type Version struct {
	Major    uint8
	Minor    uint8
	Revision uint8
}

func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Revision)
}

// GetTime returns the device tick counter in milliseconds
func (obj *Client) GetTime(addr hal.DeviceAddress) (uint16, error) {
	tick, err := obj.readUint16(TICK_LO, TICK_HI, addr)
	if err != nil {
		return 0, fmt.Errorf("failed to get device time: %w", err)
	}
	return tick, nil
}

// GetErrorCode returns the device error word
func (obj *Client) GetErrorCode(addr hal.DeviceAddress) (uint16, error) {
	code, err := obj.readUint16(ERR_LO, ERR_HI, addr)
	if err != nil {
		return 0, fmt.Errorf("failed to get error code: %w", err)
	}
	return code, nil
}

// GetProductionCode reads the 14 byte serial number.
// On failure buf may be partially filled.
func (obj *Client) GetProductionCode(addr hal.DeviceAddress, buf *[ProductionCodeLength]byte) error {
	if err := obj.readRegisters(PROD_CODE, addr, buf[:]); err != nil {
		return fmt.Errorf("failed to get production code: %w", err)
	}
	return nil
}

// GetFirmwareVersion reads revision, minor and major version bytes in register order
func (obj *Client) GetFirmwareVersion(addr hal.DeviceAddress, buf *[FirmwareVersionLength]byte) error {
	if err := obj.readRegisters(VER_REV, addr, buf[:]); err != nil {
		return fmt.Errorf("failed to get firmware version: %w", err)
	}
	return nil
}

func (obj *Client) GetVersion(addr hal.DeviceAddress) (Version, error) {
	var buf [FirmwareVersionLength]byte
	if err := obj.GetFirmwareVersion(addr, &buf); err != nil {
		return Version{}, err
	}
	return Version{Revision: buf[0], Minor: buf[1], Major: buf[2]}, nil
}

// SaveSettings stores the current settings in flash
func (obj *Client) SaveSettings(addr hal.DeviceAddress) error {
	return obj.command("save settings", SAVE_SETTINGS, addr, cmdSave)
}

func (obj *Client) SoftReset(addr hal.DeviceAddress) error {
	return obj.command("soft reset", SOFT_RESET, addr, cmdSoftReset)
}

// HardReset restores factory defaults
func (obj *Client) HardReset(addr hal.DeviceAddress) error {
	return obj.command("hard reset", HARD_RESET, addr, cmdHardReset)
}

// SetDeviceAddress assigns a new bus address, range 0x08-0x77.
// It takes effect after SaveSettings and a power cycle.
func (obj *Client) SetDeviceAddress(addr hal.DeviceAddress, newAddr hal.DeviceAddress) error {
	if newAddr < MinAddress || newAddr > MaxAddress {
		return fmt.Errorf("failed to set device address 0x%02X: %w", uint8(newAddr),
			&Error{Op: "set device address", Reg: SET_I2C_ADDR, Status: StatusInvalidCommand, Err: ErrAddressRange})
	}
	return obj.command("set device address", SET_I2C_ADDR, addr, uint8(newAddr))
}

// Enable writes 1 to the DISABLE register, the naming is inverted on the device
func (obj *Client) Enable(addr hal.DeviceAddress) error {
	return obj.command("enable", DISABLE, addr, cmdEnable)
}

func (obj *Client) Disable(addr hal.DeviceAddress) error {
	return obj.command("disable", DISABLE, addr, cmdDisable)
}

// SetFrameRate writes the low byte then the high byte, the high byte is skipped if the first write fails
func (obj *Client) SetFrameRate(addr hal.DeviceAddress, fps uint16) error {
	if err := obj.writeRegister(FPS_LO, addr, uint8(fps&0xFF)); err != nil {
		return fmt.Errorf("failed to set frame rate: %w", err)
	}
	if err := obj.writeRegister(FPS_HI, addr, uint8(fps>>8)); err != nil {
		return fmt.Errorf("failed to set frame rate: %w", err)
	}
	return nil
}

func (obj *Client) GetFrameRate(addr hal.DeviceAddress) (uint16, error) {
	fps, err := obj.readUint16(FPS_LO, FPS_HI, addr)
	if err != nil {
		return 0, fmt.Errorf("failed to get frame rate: %w", err)
	}
	return fps, nil
}

// SetContinuousMode samples continuously at the frame rate
func (obj *Client) SetContinuousMode(addr hal.DeviceAddress) error {
	return obj.command("set continuous mode", SET_TRIG_MODE, addr, uint8(MODE_CONTINUOUS))
}

// SetTriggerMode samples once per Trigger call
func (obj *Client) SetTriggerMode(addr hal.DeviceAddress) error {
	return obj.command("set trigger mode", SET_TRIG_MODE, addr, uint8(MODE_TRIGGER))
}

func (obj *Client) Trigger(addr hal.DeviceAddress) error {
	return obj.command("trigger", TRIGGER, addr, cmdTrigger)
}

func (obj *Client) SetLowPower(addr hal.DeviceAddress, on bool) error {
	var value byte
	if on {
		value = 1
	}
	return obj.command("set low power", SET_LO_PWR, addr, value)
}

func (obj *Client) command(name string, reg hal.RegAddress, addr hal.DeviceAddress, value byte) error {
	if err := obj.writeRegister(reg, addr, value); err != nil {
		return fmt.Errorf("failed to %s: %w", name, err)
	}
	return nil
}
