package tfluna

import "github.com/mbalug7/go-tfluna/pkg/hal"

// Register map of the sensor, offsets are fixed by the datasheet
const (
	DIST_LO       hal.RegAddress = 0x00 // R, cm
	DIST_HI       hal.RegAddress = 0x01 // R
	FLUX_LO       hal.RegAddress = 0x02 // R
	FLUX_HI       hal.RegAddress = 0x03 // R
	TEMP_LO       hal.RegAddress = 0x04 // R, 0.01 Celsius
	TEMP_HI       hal.RegAddress = 0x05 // R
	TICK_LO       hal.RegAddress = 0x06 // R, timestamp
	TICK_HI       hal.RegAddress = 0x07 // R
	ERR_LO        hal.RegAddress = 0x08 // R
	ERR_HI        hal.RegAddress = 0x09 // R
	VER_REV       hal.RegAddress = 0x0A // R
	VER_MIN       hal.RegAddress = 0x0B // R
	VER_MAJ       hal.RegAddress = 0x0C // R
	PROD_CODE     hal.RegAddress = 0x10 // R, 14 bytes
	SAVE_SETTINGS hal.RegAddress = 0x20 // W, 1 saves
	SOFT_RESET    hal.RegAddress = 0x21 // W, 2 reboots
	SET_I2C_ADDR  hal.RegAddress = 0x22 // W/R, 0x08-0x77
	SET_TRIG_MODE hal.RegAddress = 0x23 // W/R, 0 continuous, 1 trigger
	TRIGGER       hal.RegAddress = 0x24 // W, 1 triggers once
	DISABLE       hal.RegAddress = 0x25 // W/R, 0 disable, 1 enable
	FPS_LO        hal.RegAddress = 0x26 // W/R
	FPS_HI        hal.RegAddress = 0x27 // W/R
	SET_LO_PWR    hal.RegAddress = 0x28 // W/R, 0 normal, 1 low power
	HARD_RESET    hal.RegAddress = 0x29 // W, 1 restores factory settings
)

const (
	// DefaultAddress is the factory I2C address
	DefaultAddress hal.DeviceAddress = 0x10
	// DefaultFrameRate is the factory frame rate in Hz
	DefaultFrameRate uint16 = 100

	MinAddress hal.DeviceAddress = 0x08
	MaxAddress hal.DeviceAddress = 0x77

	ProductionCodeLength  = 14
	FirmwareVersionLength = 3
	dataFrameLength       = 6
)

// registersCollection holds the writable settings registers in the order they are applied
type registersCollection [6]hal.Register

func newRegistersCollection() registersCollection {
	return registersCollection{
		&AddrReg{},
		&TrigModeReg{},
		&EnableReg{},
		&FpsLoReg{},
		&FpsHiReg{},
		&LowPowerReg{},
	}
}

const (
	regIdxAddr = iota
	regIdxTrigMode
	regIdxEnable
	regIdxFpsLo
	regIdxFpsHi
	regIdxLowPower
)

// Copy returns a deep copy, builders stage changes on a copy and compare it with the original
func (obj registersCollection) Copy() registersCollection {
	cp := newRegistersCollection()
	for i, reg := range obj {
		cp[i].SetValue(reg.GetValue())
	}
	return cp
}

func (obj registersCollection) EqualTo(other registersCollection) bool {
	for i, reg := range obj {
		if reg.GetValue() != other[i].GetValue() {
			return false
		}
	}
	return true
}

// SET_I2C_ADDR register

type AddrReg struct {
	address hal.DeviceAddress
}

func (obj *AddrReg) GetAddress() hal.RegAddress {
	return SET_I2C_ADDR
}

func (obj *AddrReg) GetValue() uint8 {
	return uint8(obj.address)
}

func (obj *AddrReg) SetValue(value uint8) {
	obj.address = hal.DeviceAddress(value)
}

// SET_TRIG_MODE register

type SamplingMode uint8

const (
	MODE_CONTINUOUS SamplingMode = 0x00
	MODE_TRIGGER    SamplingMode = 0x01
)

func (m SamplingMode) String() string {
	if m == MODE_TRIGGER {
		return "trigger"
	}
	return "continuous"
}

type TrigModeReg struct {
	mode SamplingMode
}

func (obj *TrigModeReg) GetAddress() hal.RegAddress {
	return SET_TRIG_MODE
}

func (obj *TrigModeReg) GetValue() uint8 {
	return uint8(obj.mode)
}

func (obj *TrigModeReg) SetValue(value uint8) {
	obj.mode = SamplingMode(value & 0x01)
}

// DISABLE register
// the register is named DISABLE but writing 1 enables the device

type EnableReg struct {
	enabled uint8
}

func (obj *EnableReg) GetAddress() hal.RegAddress {
	return DISABLE
}

func (obj *EnableReg) GetValue() uint8 {
	return obj.enabled
}

func (obj *EnableReg) SetValue(value uint8) {
	obj.enabled = value & 0x01
}

// FPS_LO register

type FpsLoReg struct {
	value uint8
}

func (obj *FpsLoReg) GetAddress() hal.RegAddress {
	return FPS_LO
}

func (obj *FpsLoReg) GetValue() uint8 {
	return obj.value
}

func (obj *FpsLoReg) SetValue(value uint8) {
	obj.value = value
}

// FPS_HI register

type FpsHiReg struct {
	value uint8
}

func (obj *FpsHiReg) GetAddress() hal.RegAddress {
	return FPS_HI
}

func (obj *FpsHiReg) GetValue() uint8 {
	return obj.value
}

func (obj *FpsHiReg) SetValue(value uint8) {
	obj.value = value
}

// SET_LO_PWR register

type LowPowerReg struct {
	lowPower uint8
}

func (obj *LowPowerReg) GetAddress() hal.RegAddress {
	return SET_LO_PWR
}

func (obj *LowPowerReg) GetValue() uint8 {
	return obj.lowPower
}

func (obj *LowPowerReg) SetValue(value uint8) {
	obj.lowPower = value & 0x01
}
