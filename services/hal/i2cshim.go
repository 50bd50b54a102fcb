// services/hal/i2cshim.go
package hal

import (
	"go.uber.org/zap"
	"tinygo.org/x/drivers"
)

// tracedI2C logs every transaction at debug level.
type tracedI2C struct {
	bus drivers.I2C
	log *zap.Logger
}

// TraceI2C wraps bus so each Tx is logged with its address, the bytes written
// and the bytes read back. With a nil logger it returns bus unchanged.
func TraceI2C(bus drivers.I2C, log *zap.Logger) drivers.I2C {
	if log == nil {
		return bus
	}
	return tracedI2C{bus: bus, log: log}
}

func (s tracedI2C) Tx(addr uint16, w, r []byte) error {
	err := s.bus.Tx(addr, w, r)
	if ce := s.log.Check(zap.DebugLevel, "i2c tx"); ce != nil {
		ce.Write(
			zap.Uint16("addr", addr),
			zap.Binary("w", w),
			zap.Binary("r", r),
			zap.Error(err),
		)
	}
	return err
}
