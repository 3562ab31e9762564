package hal

// Ranger interface defines set of methods that are needed to take distance readings from a sensor,
// regardless of the interface the sensor is connected with
type Ranger interface {
	// ReadDistance returns distance in centimeters
	ReadDistance() (int16, error)
}
