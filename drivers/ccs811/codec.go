package ccs811

// Pure register encoding and decoding. No I/O.

// MeasurementMode selects the sampling cadence (MEAS_MODE DRIVE_MODE field).
type MeasurementMode uint8

const (
	Idle                    MeasurementMode = iota // 0: no measurements
	ConstantPower1s                                // 1: IAQ every second
	PulseHeating10s                                // 2: every 10 s
	LowPowerPulseHeating60s                        // 3: every 60 s
	ConstantPower250ms                             // 4: raw data only, every 250 ms
)

// Valid reports whether m is one of the defined drive modes.
func (m MeasurementMode) Valid() bool { return m <= ConstantPower250ms }

func (m MeasurementMode) String() string {
	switch m {
	case Idle:
		return "idle"
	case ConstantPower1s:
		return "constant_power_1s"
	case PulseHeating10s:
		return "pulse_heating_10s"
	case LowPowerPulseHeating60s:
		return "low_power_pulse_heating_60s"
	case ConstantPower250ms:
		return "constant_power_250ms"
	default:
		return "unknown"
	}
}

// ParseMeasurementMode accepts the String() form of a mode.
func ParseMeasurementMode(s string) (MeasurementMode, bool) {
	for m := Idle; m <= ConstantPower250ms; m++ {
		if m.String() == s {
			return m, true
		}
	}
	return Idle, false
}

// AlgorithmResult is one decoded ALG_RESULT_DATA block.
type AlgorithmResult struct {
	ECO2       uint16 // ppm
	ETVOC      uint16 // ppb
	RawCurrent uint8  // µA, 0..63
	RawVoltage uint16 // ADC counts, 0..1023 (1.65 V full scale)
}

// encodeMeasMode keeps the interrupt bits (3:2) of prev, clears bits 7 and 1:0
// and places the drive mode code in bits 6:4.
func encodeMeasMode(mode MeasurementMode, prev byte) byte {
	return (prev & measModeIntMask) | (byte(mode)<<measModeDriveLSB)&measModeDriveMask
}

// driveModeOf extracts the drive mode from a MEAS_MODE value.
func driveModeOf(reg byte) MeasurementMode {
	return MeasurementMode((reg & measModeDriveMask) >> measModeDriveLSB)
}

// decodeRaw splits RAW_DATA: current in the top 6 bits of b[1], voltage in
// b[0] plus the low 2 bits of b[1].
func decodeRaw(b []byte) (current uint8, voltage uint16) {
	current = b[1] >> 2
	voltage = uint16(b[0]) | uint16(b[1]&0x03)<<8
	return
}

// decodeResult decodes the full 8-byte ALG_RESULT_DATA block. It also
// returns the embedded status and error id bytes.
func decodeResult(b []byte) (res AlgorithmResult, status, errorID byte) {
	res.ECO2 = uint16(b[0])<<8 | uint16(b[1])
	res.ETVOC = uint16(b[2])<<8 | uint16(b[3])
	status = b[4]
	errorID = b[5]
	res.RawCurrent, res.RawVoltage = decodeRaw(b[6:8])
	return
}

// decodeErrors masks an ERROR_ID byte down to the defined causes.
func decodeErrors(b byte) DeviceErrors {
	return DeviceErrors(b) & allDeviceErrors
}

// encodeEnvironment packs ENV_DATA: humidity and temperature+25 °C, each as
// an unsigned 16-bit big-endian value in 1/512 units. Inputs are tenths.
func encodeEnvironment(dst []byte, humidityDeciPct, temperatureDeciC int32) {
	h := clamp16u((int64(humidityDeciPct)*512 + 5) / 10)
	t := clamp16u((int64(temperatureDeciC+250)*512 + 5) / 10)
	dst[0] = byte(h >> 8)
	dst[1] = byte(h)
	dst[2] = byte(t >> 8)
	dst[3] = byte(t)
}

// encodeThresholds packs THRESHOLDS: low and high eCO2 (ppm, big-endian)
// followed by the hysteresis byte.
func encodeThresholds(dst []byte, low, high uint16, hysteresis uint8) {
	dst[0] = byte(low >> 8)
	dst[1] = byte(low)
	dst[2] = byte(high >> 8)
	dst[3] = byte(high)
	dst[4] = hysteresis
}

// Version is a firmware or hardware version triple.
type Version struct {
	Major, Minor, Trivial uint8
}

// String formats as "major.minor.trivial".
func (v Version) String() string {
	var buf [11]byte
	b := appendUint8(buf[:0], v.Major)
	b = append(b, '.')
	b = appendUint8(b, v.Minor)
	b = append(b, '.')
	b = appendUint8(b, v.Trivial)
	return string(b)
}

func appendUint8(b []byte, n uint8) []byte {
	if n >= 100 {
		b = append(b, '0'+n/100)
	}
	if n >= 10 {
		b = append(b, '0'+n/10%10)
	}
	return append(b, '0'+n%10)
}

// decodeFWVersion: b[0] = major<<4 | minor, b[1] = trivial.
func decodeFWVersion(b []byte) Version {
	return Version{Major: b[0] >> 4, Minor: b[0] & 0x0F, Trivial: b[1]}
}

// decodeHWVersion: major in the high nibble, build in the low nibble.
func decodeHWVersion(b byte) Version {
	return Version{Major: b >> 4, Minor: b & 0x0F}
}

func clamp16u(v int64) uint16 {
	if v < 0 {
		return 0
	}
	if v > 0xFFFF {
		return 0xFFFF
	}
	return uint16(v)
}
