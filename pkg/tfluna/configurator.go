package tfluna

import (
	"errors"
	"fmt"

	"github.com/mbalug7/go-tfluna/pkg/hal"
)

// ErrNoChanges is returned when the staged settings are the same as the settings on the device
var ErrNoChanges = errors.New("new register setup is the same as the setup on the device")

// Settings is a snapshot of the writable registers of one sensor
type Settings struct {
	registers registersCollection
}

// ReadSettings reads the writable registers from the device
func (obj *Client) ReadSettings(addr hal.DeviceAddress) (*Settings, error) {
	s := &Settings{registers: newRegistersCollection()}
	for _, reg := range s.registers {
		value, err := obj.readRegister(reg.GetAddress(), addr)
		if err != nil {
			return nil, fmt.Errorf("failed to read settings: %w", err)
		}
		reg.SetValue(value)
	}
	return s, nil
}

func (obj *Settings) Address() hal.DeviceAddress {
	return obj.registers[regIdxAddr].(*AddrReg).address
}

func (obj *Settings) Mode() SamplingMode {
	return obj.registers[regIdxTrigMode].(*TrigModeReg).mode
}

func (obj *Settings) Enabled() bool {
	return obj.registers[regIdxEnable].(*EnableReg).enabled == 1
}

func (obj *Settings) FrameRate() uint16 {
	lo := obj.registers[regIdxFpsLo].GetValue()
	hi := obj.registers[regIdxFpsHi].GetValue()
	return uint16(lo) | uint16(hi)<<8
}

func (obj *Settings) LowPower() bool {
	return obj.registers[regIdxLowPower].(*LowPowerReg).lowPower == 1
}

func (obj *Settings) String() string {
	var conf string
	for _, reg := range obj.registers {
		conf = conf + fmt.Sprintf("\nREG [0x%02X]: 0x%02X", reg.GetAddress().ToByte(), reg.GetValue())
	}
	return conf
}

// ConfigBuilder stages settings changes, only registers that differ from the device are written
type ConfigBuilder struct {
	client          *Client
	addr            hal.DeviceAddress
	current         *Settings
	stagedRegisters registersCollection
	err             error
}

// NewConfigBuilder constructs ConfigBuilder for the device at addr, current is the result of ReadSettings
func NewConfigBuilder(client *Client, addr hal.DeviceAddress, current *Settings) *ConfigBuilder {
	return &ConfigBuilder{
		client:          client,
		addr:            addr,
		current:         current,
		stagedRegisters: current.registers.Copy(), // copy current values
	}
}

// Address stages a new bus address, it takes effect after saving and a power cycle
func (obj *ConfigBuilder) Address(addr hal.DeviceAddress) *ConfigBuilder {
	if addr < MinAddress || addr > MaxAddress {
		obj.err = fmt.Errorf("failed to stage address 0x%02X: %w", uint8(addr),
			&Error{Op: "stage address", Reg: SET_I2C_ADDR, Status: StatusInvalidCommand, Err: ErrAddressRange})
		return obj
	}
	obj.stagedRegisters[regIdxAddr].SetValue(uint8(addr))
	return obj
}

func (obj *ConfigBuilder) Mode(mode SamplingMode) *ConfigBuilder {
	obj.stagedRegisters[regIdxTrigMode].SetValue(uint8(mode))
	return obj
}

func (obj *ConfigBuilder) Enabled(enabled bool) *ConfigBuilder {
	var value uint8
	if enabled {
		value = cmdEnable
	}
	obj.stagedRegisters[regIdxEnable].SetValue(value)
	return obj
}

func (obj *ConfigBuilder) FrameRate(fps uint16) *ConfigBuilder {
	obj.stagedRegisters[regIdxFpsLo].SetValue(uint8(fps & 0xFF))
	obj.stagedRegisters[regIdxFpsHi].SetValue(uint8(fps >> 8))
	return obj
}

func (obj *ConfigBuilder) LowPower(on bool) *ConfigBuilder {
	var value uint8
	if on {
		value = 1
	}
	obj.stagedRegisters[regIdxLowPower].SetValue(value)
	return obj
}

// Apply writes the changed registers in register order and stops at the first failure.
// Settings are lost on reboot unless ApplyAndSave is used.
func (obj *ConfigBuilder) Apply() error {
	if obj.err != nil {
		return obj.err
	}
	if obj.stagedRegisters.EqualTo(obj.current.registers) {
		return ErrNoChanges
	}
	for i, reg := range obj.stagedRegisters {
		if reg.GetValue() == obj.current.registers[i].GetValue() {
			continue
		}
		err := obj.client.writeRegister(reg.GetAddress(), obj.addr, reg.GetValue())
		if err != nil {
			return fmt.Errorf("failed to write config to the device: %w", err)
		}
		obj.current.registers[i].SetValue(reg.GetValue())
	}
	return nil
}

// ApplyAndSave writes the changed registers and stores them in flash
func (obj *ConfigBuilder) ApplyAndSave() error {
	if err := obj.Apply(); err != nil {
		return err
	}
	return obj.client.SaveSettings(obj.addr)
}
