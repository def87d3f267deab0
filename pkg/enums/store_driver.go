package enums

import "fmt"

// StoreDriver selects the durable blob store holding the cart snapshot.
type StoreDriver string

const (
	StoreDriverMemory   StoreDriver = "memory"
	StoreDriverRedis    StoreDriver = "redis"
	StoreDriverPostgres StoreDriver = "postgres"
	StoreDriverSQLite   StoreDriver = "sqlite"
)

var validStoreDrivers = []StoreDriver{
	StoreDriverMemory,
	StoreDriverRedis,
	StoreDriverPostgres,
	StoreDriverSQLite,
}

// String implements fmt.Stringer.
func (d StoreDriver) String() string {
	return string(d)
}

// IsValid reports whether the value is a known StoreDriver.
func (d StoreDriver) IsValid() bool {
	for _, candidate := range validStoreDrivers {
		if candidate == d {
			return true
		}
	}
	return false
}

// IsSQL reports whether the driver is backed by gorm.
func (d StoreDriver) IsSQL() bool {
	return d == StoreDriverPostgres || d == StoreDriverSQLite
}

// ParseStoreDriver converts raw input into a StoreDriver.
func ParseStoreDriver(value string) (StoreDriver, error) {
	for _, candidate := range validStoreDrivers {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid store driver %q", value)
}
