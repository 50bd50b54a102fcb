// services/hal/adaptor_ccs811.go
package hal

import (
	"context"
	"errors"
	"time"

	"ccs811-go/drivers/ccs811"
	"ccs811-go/x/mathx"
)

// CCS811Params configures the adaptor. Zero values select defaults.
type CCS811Params struct {
	Mode ccs811.MeasurementMode
	// CollectAfter overrides the mode's sampling period as the Trigger hint.
	CollectAfter time.Duration
	// Environment, if set, is written once before the first measurement.
	Environment *EnvPayload
}

// EnvPayload is the set_environment control shape, in tenths of units.
type EnvPayload struct {
	DeciPercent int32 `json:"deci_percent" yaml:"deci_percent"`
	DeciC       int32 `json:"deci_c" yaml:"deci_c"`
}

var errIdle = errors.New("hal: ccs811 is idle; set a measurement mode")

type ccs811Adaptor struct {
	id  string
	app *ccs811.App
	p   CCS811Params

	modeSet bool
	envSet  bool
}

// NewCCS811Adaptor wraps an App-mode handle. The handle must not be used
// elsewhere while the adaptor is owned by a worker.
func NewCCS811Adaptor(id string, app *ccs811.App, p CCS811Params) Adaptor {
	return &ccs811Adaptor{id: id, app: app, p: p}
}

func (a *ccs811Adaptor) ID() string { return a.id }

func (a *ccs811Adaptor) Capabilities() []CapInfo {
	base := func(unit string) map[string]any {
		return map[string]any{"unit": unit, "schema_version": 1, "driver": "ccs811", "mode": a.p.Mode.String()}
	}
	return []CapInfo{
		{Kind: "eco2", Info: base("ppm")},
		{Kind: "etvoc", Info: base("ppb")},
		{Kind: "raw", Info: map[string]any{"current_unit": "uA", "voltage_unit": "counts", "driver": "ccs811"}},
	}
}

// modePeriod is the chip's sampling interval for a drive mode.
func modePeriod(m ccs811.MeasurementMode) time.Duration {
	switch m {
	case ccs811.ConstantPower1s:
		return time.Second
	case ccs811.PulseHeating10s:
		return 10 * time.Second
	case ccs811.LowPowerPulseHeating60s:
		return 60 * time.Second
	case ccs811.ConstantPower250ms:
		return 250 * time.Millisecond
	}
	return 0
}

// Trigger applies pending configuration. The chip samples on its own once a
// drive mode is set, so there is nothing to start per measurement.
func (a *ccs811Adaptor) Trigger(ctx context.Context) (time.Duration, error) {
	if a.p.Mode == ccs811.Idle {
		return 0, errIdle
	}
	if !a.modeSet || a.app.Mode() != a.p.Mode {
		if err := a.app.SetMode(a.p.Mode); err != nil {
			return 0, err
		}
		a.modeSet = true
	}
	if a.p.Environment != nil && !a.envSet {
		e := a.p.Environment
		if err := a.app.SetEnvironment(e.DeciPercent, e.DeciC); err != nil {
			return 0, err
		}
		a.envSet = true
	}
	if a.p.CollectAfter > 0 {
		return a.p.CollectAfter, nil
	}
	return modePeriod(a.p.Mode), nil
}

func (a *ccs811Adaptor) Collect(ctx context.Context) (Sample, error) {
	res, err := a.app.Data()
	if err != nil {
		if errors.Is(err, ccs811.ErrPending) {
			return nil, ErrNotReady
		}
		return nil, err
	}
	ts := time.Now().UnixMilli()
	return Sample{
		{Kind: "eco2", Payload: map[string]any{"ppm": int(res.ECO2), "ts_ms": ts}, TsMs: ts},
		{Kind: "etvoc", Payload: map[string]any{"ppb": int(res.ETVOC), "ts_ms": ts}, TsMs: ts},
		{Kind: "raw", Payload: map[string]any{"current_ua": int(res.RawCurrent), "voltage": int(res.RawVoltage), "ts_ms": ts}, TsMs: ts},
	}, nil
}

func (a *ccs811Adaptor) Control(method string, payload any) (any, error) {
	switch method {
	case "set_mode":
		m, ok := parseModePayload(payload)
		if !ok {
			return nil, ccs811.ErrInvalidMode
		}
		if err := a.app.SetMode(m); err != nil {
			return nil, err
		}
		a.p.Mode = m
		a.modeSet = true
		return map[string]any{"mode": m.String()}, nil

	case "set_environment":
		e, ok := parseEnvPayload(payload)
		if !ok {
			return nil, errInvalidPayload
		}
		if err := a.app.SetEnvironment(e.DeciPercent, e.DeciC); err != nil {
			return nil, err
		}
		a.p.Environment = &e
		a.envSet = true
		return nil, nil

	case "baseline":
		bl, err := a.app.Baseline()
		if err != nil {
			return nil, err
		}
		return map[string]any{"baseline": int(bl[0])<<8 | int(bl[1])}, nil

	case "set_baseline":
		v, ok := asInt(payloadField(payload, "baseline"))
		if !ok || v < 0 || v > 0xFFFF {
			return nil, errInvalidPayload
		}
		return nil, a.app.SetBaseline([2]byte{byte(v >> 8), byte(v)})

	case "info":
		in, err := a.app.Info()
		if err != nil {
			return nil, err
		}
		return infoMap(in), nil

	case "status":
		st, err := a.app.Status()
		if err != nil {
			return nil, err
		}
		return map[string]any{
			"error":      st.HasError(),
			"data_ready": st.DataReady(),
			"app_valid":  st.AppValid(),
			"fw_mode":    st.FirmwareMode().String(),
		}, nil

	case "last_error":
		e, err := a.app.LastError()
		if err != nil {
			return nil, err
		}
		return map[string]any{"error_id": int(e), "causes": e.Error()}, nil
	}
	return nil, ErrUnsupported
}

var errInvalidPayload = errors.New("hal: invalid payload")

func infoMap(in ccs811.Info) map[string]any {
	return map[string]any{
		"hw_id":      int(in.HardwareID),
		"hw_version": in.HardwareVersion.String(),
		"fw_boot":    in.BootVersion.String(),
		"fw_app":     in.AppVersion.String(),
	}
}

func parseModePayload(p any) (ccs811.MeasurementMode, bool) {
	switch v := p.(type) {
	case ccs811.MeasurementMode:
		return v, v.Valid()
	case string:
		return ccs811.ParseMeasurementMode(v)
	case map[string]any:
		if s, ok := v["mode"].(string); ok {
			return ccs811.ParseMeasurementMode(s)
		}
	}
	if n, ok := asInt(p); ok {
		m := ccs811.MeasurementMode(n)
		return m, n >= 0 && m.Valid()
	}
	return 0, false
}

func parseEnvPayload(p any) (EnvPayload, bool) {
	var e EnvPayload
	switch v := p.(type) {
	case EnvPayload:
		e = v
	case *EnvPayload:
		if v == nil {
			return EnvPayload{}, false
		}
		e = *v
	case map[string]any:
		h, ok1 := asInt(v["deci_percent"])
		t, ok2 := asInt(v["deci_c"])
		if !ok1 || !ok2 {
			return EnvPayload{}, false
		}
		// Bound in int first so huge values cannot wrap int32.
		e = EnvPayload{
			DeciPercent: int32(mathx.Clamp(h, ccs811.MinHumidityDeciPct, ccs811.MaxHumidityDeciPct)),
			DeciC:       int32(mathx.Clamp(t, ccs811.MinTemperatureDeciC, ccs811.MaxTemperatureDeciC)),
		}
	default:
		return EnvPayload{}, false
	}
	e.DeciPercent, e.DeciC = ccs811.ClampEnvironment(e.DeciPercent, e.DeciC)
	return e, true
}

func payloadField(p any, key string) any {
	if m, ok := p.(map[string]any); ok {
		return m[key]
	}
	return p
}

func asInt(v any) (int, bool) {
	switch x := v.(type) {
	case int:
		return x, true
	case int32:
		return int(x), true
	case int64:
		return int(x), true
	case uint:
		return int(x), true
	case uint16:
		return int(x), true
	case uint32:
		return int(x), true
	case float64:
		return int(x), true
	default:
		return 0, false
	}
}
