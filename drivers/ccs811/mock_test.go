package ccs811

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"tinygo.org/x/drivers"
)

// Compile-time check.
var _ drivers.I2C = (*mockI2C)(nil)

var (
	errBus = errors.New("nack")
	errPin = errors.New("gpio fault")
)

// tx is one scripted bus transaction. R holds the bytes served to a read;
// it is nil for plain writes.
type tx struct {
	W   []byte
	R   []byte
	Err error
}

func wr(w ...byte) tx { return tx{W: w} }

func rd(reg byte, resp ...byte) tx { return tx{W: []byte{reg}, R: resp} }

func fail(x tx, err error) tx { x.Err = err; return x }

func status(st byte) tx { return rd(regStatus, st) }

func errorID(bits DeviceErrors) tx { return rd(regErrorID, byte(bits)) }

// mockI2C serves a fixed script in order and records what was sent.
type mockI2C struct {
	t      *testing.T
	script []tx
	got    []tx
}

func newMockI2C(t *testing.T, script ...tx) *mockI2C {
	return &mockI2C{t: t, script: script}
}

func (m *mockI2C) Tx(addr uint16, w, r []byte) error {
	m.t.Helper()
	if addr != AddressDefault {
		m.t.Errorf("tx to address 0x%02X, want 0x%02X", addr, AddressDefault)
	}
	rec := tx{W: append([]byte(nil), w...)}
	if r != nil {
		rec.R = make([]byte, len(r))
	}
	n := len(m.got)
	m.got = append(m.got, rec)
	if n >= len(m.script) {
		m.t.Errorf("unexpected tx #%d w=%X", n, w)
		return errBus
	}
	exp := m.script[n]
	copy(r, exp.R)
	return exp.Err
}

// done asserts the full script was consumed with matching writes and read
// lengths.
func (m *mockI2C) done() {
	m.t.Helper()
	want := make([]tx, len(m.script))
	for i, s := range m.script {
		want[i].W = s.W
		if s.R != nil {
			want[i].R = make([]byte, len(s.R))
		}
	}
	if diff := cmp.Diff(want, m.got); diff != "" {
		m.t.Fatalf("bus transactions mismatch (-want +got):\n%s", diff)
	}
}

// mockPin records nWAKE transitions.
type mockPin struct {
	events  []string
	lowErr  error
	highErr error
}

func (p *mockPin) SetLow() error {
	p.events = append(p.events, "low")
	return p.lowErr
}

func (p *mockPin) SetHigh() error {
	p.events = append(p.events, "high")
	return p.highErr
}

// cycles returns the expected event log for n wake cycles.
func cycles(n int) []string {
	out := make([]string, 0, 2*n)
	for i := 0; i < n; i++ {
		out = append(out, "low", "high")
	}
	return out
}

func (p *mockPin) expect(t *testing.T, n int) {
	t.Helper()
	if diff := cmp.Diff(cycles(n), p.events); diff != "" {
		t.Fatalf("wake pin mismatch (-want +got):\n%s", diff)
	}
}

type mockDelay struct{ calls []uint32 }

func (d *mockDelay) DelayMicroseconds(us uint32) { d.calls = append(d.calls, us) }

func newBoot(t *testing.T, bus *mockI2C, pin *mockPin) *Boot {
	t.Helper()
	cfg := DefaultConfig()
	if pin != nil {
		cfg.Wake = pin
	}
	b, err := New(bus, cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return b
}

// newApp builds an App handle directly, as if StartApplication had
// succeeded with the given MEAS_MODE cached.
func newApp(t *testing.T, bus *mockI2C, pin *mockPin, meas byte) *App {
	t.Helper()
	b := newBoot(t, bus, pin)
	return b.promote(meas)
}
