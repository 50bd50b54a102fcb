// Package conv appends numbers to byte slices without fmt or strconv, for
// log lines on MCU targets.
package conv

// AppendUint appends the base-10 form of n.
func AppendUint(dst []byte, n uint64) []byte {
	var buf [20]byte
	i := len(buf)
	for {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
		if n == 0 {
			break
		}
	}
	return append(dst, buf[i:]...)
}

// AppendInt appends the base-10 form of n, with a leading '-' when negative.
func AppendInt(dst []byte, n int64) []byte {
	if n < 0 {
		dst = append(dst, '-')
		return AppendUint(dst, uint64(-n))
	}
	return AppendUint(dst, uint64(n))
}

// AppendHex8 appends b as two uppercase hex digits, without 0x.
func AppendHex8(dst []byte, b byte) []byte {
	const hexd = "0123456789ABCDEF"
	return append(dst, hexd[b>>4], hexd[b&0x0F])
}

// AppendField appends " key=value" for an unsigned value.
func AppendField(dst []byte, key string, v uint64) []byte {
	dst = append(dst, ' ')
	dst = append(dst, key...)
	dst = append(dst, '=')
	return AppendUint(dst, v)
}
