package conv

import (
	"math"
	"testing"
)

func TestAppend(t *testing.T) {
	cases := []struct {
		got, want string
	}{
		{string(AppendUint(nil, 0)), "0"},
		{string(AppendUint(nil, math.MaxUint64)), "18446744073709551615"},
		{string(AppendInt(nil, -1234)), "-1234"},
		{string(AppendInt([]byte("x="), 42)), "x=42"},
		{string(AppendHex8(nil, 0x5A)), "5A"},
		{string(AppendHex8(nil, 0x0F)), "0F"},
		{string(AppendField([]byte("ccs811"), "eco2", 400)), "ccs811 eco2=400"},
	}
	for _, c := range cases {
		if c.got != c.want {
			t.Errorf("got %q, want %q", c.got, c.want)
		}
	}
}
