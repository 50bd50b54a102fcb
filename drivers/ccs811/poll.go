package ccs811

// VerifyApplication runs the boot loader's application checksum. It is
// non-blocking: the first call issues APP_VERIFY and returns ErrPending;
// later calls return ErrPending until the chip sets APP_VERIFY in STATUS,
// then nil or the chip's DeviceErrors. If the chip already reports the
// application verified, the first call returns nil without a command.
func (b *Boot) VerifyApplication() error {
	d, err := b.take()
	if err != nil {
		return err
	}
	return d.pollCommand(pendingVerify, statusAppVerify, regAppVerify, nil)
}

// EraseApplication erases the application image. Same calling convention as
// VerifyApplication; completion is gated on the APP_ERASE status bit.
func (b *Boot) EraseApplication() error {
	d, err := b.take()
	if err != nil {
		return err
	}
	return d.pollCommand(pendingErase, statusAppErase, regAppErase, eraseMagic[:])
}

// pollCommand is one wake cycle of a verify/erase sequence.
func (d *device) pollCommand(op pendingOp, doneBit, reg byte, payload []byte) error {
	return d.awaken(func() error {
		st, err := d.readStatus()
		if err != nil {
			d.pending = pendingNone
			return err
		}
		if st&doneBit == 0 {
			if d.pending == op {
				return ErrPending
			}
			if err := d.writeRegister(reg, payload); err != nil {
				d.pending = pendingNone
				return err
			}
			d.pending = op
			return ErrPending
		}
		if d.pending != op {
			// Already done before we asked.
			return nil
		}
		d.pending = pendingNone
		if st&statusError != 0 {
			return d.readDeviceErrors()
		}
		return nil
	})
}

// Data reads the algorithm result block. It returns ErrPending while
// DATA_READY is clear and the chip's DeviceErrors when STATUS.ERROR is set.
// A result is only returned whole.
func (a *App) Data() (AlgorithmResult, error) {
	d, err := a.take()
	if err != nil {
		return AlgorithmResult{}, err
	}
	var res AlgorithmResult
	err = d.awaken(func() error {
		if err := d.readRegister(regAlgResultData, d.r[:8]); err != nil {
			return err
		}
		r, st, eid := decodeResult(d.r[:8])
		if st&statusError != 0 {
			return decodeErrors(eid)
		}
		if st&statusDataReady == 0 {
			return ErrPending
		}
		res = r
		return nil
	})
	if err != nil {
		return AlgorithmResult{}, err
	}
	return res, nil
}
