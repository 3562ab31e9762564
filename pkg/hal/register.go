package hal

// RegAddress is an offset into a device register map
type RegAddress uint8

func (obj RegAddress) ToByte() byte {
	return byte(obj)
}

// Register is a single byte wide register of a device
type Register interface {
	GetAddress() RegAddress
	GetValue() uint8
	SetValue(value uint8)
}
