package ccs811

const (
	// 7-bit I2C addresses (ADDR pin low / high).
	AddressDefault = 0x5A
	AddressAlt     = 0x5B

	// Expected HW_ID value.
	HardwareIDValue = 0x81

	// --- Register addresses ---

	regStatus        = 0x00 // R, 1 byte
	regMeasMode      = 0x01 // R/W, 1 byte
	regAlgResultData = 0x02 // R, up to 8 bytes
	regRawData       = 0x03 // R, 2 bytes
	regEnvData       = 0x05 // W, 4 bytes
	regThresholds    = 0x10 // W, 5 bytes
	regBaseline      = 0x11 // R/W, 2 bytes
	regHWID          = 0x20 // R, 1 byte
	regHWVersion     = 0x21 // R, 1 byte
	regFWBootVersion = 0x23 // R, 2 bytes
	regFWAppVersion  = 0x24 // R, 2 bytes
	regErrorID       = 0xE0 // R, 1 byte

	// Boot mode command registers.
	regAppErase  = 0xF1 // W, 4 byte magic
	regAppVerify = 0xF3 // W, no data
	regAppStart  = 0xF4 // W, no data
)

// Status register bits.
const (
	statusError     = 1 << 0
	statusDataReady = 1 << 3
	statusAppValid  = 1 << 4
	statusAppVerify = 1 << 5
	statusAppErase  = 1 << 6
	statusFWMode    = 1 << 7
)

// MEAS_MODE bits. Drive mode lives in bits 6:4.
const (
	measModeThresh    = 1 << 2
	measModeInterrupt = 1 << 3
	measModeIntMask   = measModeThresh | measModeInterrupt
	measModeDriveMask = 0b0111_0000
	measModeDriveLSB  = 4
)

// ERROR_ID bits.
const (
	errWriteRegInvalid = 1 << 0
	errReadRegInvalid  = 1 << 1
	errMeasModeInvalid = 1 << 2
	errMaxResistance   = 1 << 3
	errHeaterFault     = 1 << 4
	errHeaterSupply    = 1 << 5
)

// APP_ERASE unlock sequence.
var eraseMagic = [4]byte{0xE7, 0xA7, 0xE6, 0x09}
