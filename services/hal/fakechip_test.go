package hal

import (
	"errors"
	"sync"

	"tinygo.org/x/drivers"

	"ccs811-go/drivers/ccs811"
)

// Compile-time check.
var _ drivers.I2C = (*fakeCCS811)(nil)

var errNack = errors.New("nack")

// fakeCCS811 is a register-level CCS811 model: boot loader with a valid
// application image, APP_VERIFY that completes after verifyPolls status
// reads, and an application that produces a result every readyEvery reads.
type fakeCCS811 struct {
	mu sync.Mutex

	fwMode      bool
	appValid    bool
	verifying   int
	verified    bool
	verifyPolls int

	measMode   byte
	env        [4]byte
	baseline   [2]byte
	readyEvery int
	reads      int
	eco2       uint16
	etvoc      uint16
	errorID    byte

	nackReg  int // register to NACK, -1 for none
	writes   [][]byte
	startCnt int
}

func newFakeCCS811() *fakeCCS811 {
	return &fakeCCS811{
		appValid:    true,
		verifyPolls: 2,
		readyEvery:  1,
		eco2:        400,
		etvoc:       12,
		baseline:    [2]byte{0x84, 0x1F},
		nackReg:     -1,
	}
}

func (f *fakeCCS811) status() byte {
	var s byte
	if f.errorID != 0 {
		s |= 0x01
	}
	if f.appValid {
		s |= 0x10
	}
	if f.verified {
		s |= 0x20
	}
	if f.fwMode {
		s |= 0x80
	}
	return s
}

func (f *fakeCCS811) Tx(addr uint16, w, r []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if addr != ccs811.AddressDefault || len(w) == 0 {
		return errNack
	}
	reg := w[0]
	if int(reg) == f.nackReg {
		return errNack
	}
	if r == nil {
		f.writes = append(f.writes, append([]byte(nil), w...))
		return f.write(reg, w[1:])
	}
	return f.read(reg, r)
}

func (f *fakeCCS811) write(reg byte, p []byte) error {
	switch reg {
	case 0xF4: // APP_START
		f.startCnt++
		if f.appValid {
			f.fwMode = true
		}
	case 0xF3: // APP_VERIFY
		f.verifying = f.verifyPolls
	case 0x01:
		f.measMode = p[0]
	case 0x05:
		copy(f.env[:], p)
	case 0x11:
		copy(f.baseline[:], p)
	}
	return nil
}

func (f *fakeCCS811) read(reg byte, r []byte) error {
	switch reg {
	case 0x00:
		if f.verifying > 0 {
			f.verifying--
			if f.verifying == 0 {
				f.verified = true
			}
		}
		r[0] = f.status()
	case 0x01:
		r[0] = f.measMode
	case 0x02:
		f.reads++
		st := f.status()
		if f.reads%f.readyEvery == 0 {
			st |= 0x08
		}
		r[0], r[1] = byte(f.eco2>>8), byte(f.eco2)
		r[2], r[3] = byte(f.etvoc>>8), byte(f.etvoc)
		r[4], r[5] = st, f.errorID
		r[6], r[7] = 0x34, 0x12
	case 0x11:
		copy(r, f.baseline[:])
	case 0x20:
		r[0] = ccs811.HardwareIDValue
	case 0x21:
		r[0] = 0x12
	case 0x23:
		r[0], r[1] = 0x10, 0x00
	case 0x24:
		r[0], r[1] = 0x20, 0x00
	case 0xE0:
		r[0] = f.errorID
		f.errorID = 0
	default:
		return errNack
	}
	return nil
}
