// cmd/bk1785/render.go
package main

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"

	"github.com/tamzrod/bk1785/internal/psu"
)

type format int

const (
	formatText format = iota
	formatJSON
)

func parseFormat(s string) (format, error) {
	switch s {
	case "", "text":
		return formatText, nil
	case "json":
		return formatJSON, nil
	default:
		return 0, fmt.Errorf("unknown --format %q (want text or json)", s)
	}
}

// ---- JSON views ----

type ackView struct {
	Command string `json:"command"`
	Status  string `json:"status"`
	Data    string `json:"data"`
}

type telemetryView struct {
	PresentVoltageMV   uint32 `json:"present_voltage_mv"`
	PresentCurrentMA   uint16 `json:"present_current_ma"`
	OutputVoltageMV    uint32 `json:"output_voltage_mv"`
	MaxOutputVoltageMV uint32 `json:"max_output_voltage_mv"`
	State              byte   `json:"state"`
	OutputOn           bool   `json:"output_on"`
	Heat               bool   `json:"heat"`
	Mode               byte   `json:"mode"`
	FanSpeed           byte   `json:"fan_speed"`
	Operation          bool   `json:"operation"`
	Low                byte   `json:"low"`
	High               byte   `json:"high"`
}

type identityView struct {
	Model    string `json:"model"`
	Serial   string `json:"serial"`
	Firmware string `json:"firmware"`
}

func newTelemetryView(t psu.Telemetry) telemetryView {
	return telemetryView{
		PresentVoltageMV:   t.PresentVoltage,
		PresentCurrentMA:   t.PresentCurrent,
		OutputVoltageMV:    t.OutputVoltage,
		MaxOutputVoltageMV: t.MaxOutputVoltage,
		State:              t.State,
		OutputOn:           t.OutputOn(),
		Heat:               t.Heat(),
		Mode:               t.Mode(),
		FanSpeed:           t.FanSpeed(),
		Operation:          t.Operation(),
		Low:                t.Low,
		High:               t.High,
	}
}

// render prints one decoded result to w.
func render(w io.Writer, f format, r psu.Result) error {
	if f == formatJSON {
		return renderJSON(w, r)
	}

	switch v := r.(type) {
	case psu.Telemetry:
		fmt.Fprintf(w, "Voltage:      %s V\n", milli(v.PresentVoltage))
		fmt.Fprintf(w, "Current:      %s A\n", milli(uint32(v.PresentCurrent)))
		fmt.Fprintf(w, "Set voltage:  %s V\n", milli(v.OutputVoltage))
		fmt.Fprintf(w, "Max voltage:  %s V\n", milli(v.MaxOutputVoltage))
		fmt.Fprintf(w, "Output:       %s\n", onOff(v.OutputOn()))
		fmt.Fprintf(w, "Heat:         %s\n", yesNo(v.Heat()))
		fmt.Fprintf(w, "Mode:         %d\n", v.Mode())
		fmt.Fprintf(w, "Fan speed:    %d\n", v.FanSpeed())
		fmt.Fprintf(w, "Operation:    %s\n", yesNo(v.Operation()))
		fmt.Fprintf(w, "State byte:   0x%02X\n", v.State)
	case psu.Identity:
		fmt.Fprintf(w, "Model:    %s\n", v.ModelString())
		fmt.Fprintf(w, "Serial:   %s\n", v.SerialString())
		fmt.Fprintf(w, "Firmware: %s\n", v.FirmwareVersion())
	case psu.Ack:
		fmt.Fprintf(w, "%s: %s\n", v.Cmd, v.Status)
	default:
		return fmt.Errorf("render: unexpected result %T", r)
	}
	return nil
}

func renderJSON(w io.Writer, r psu.Result) error {
	var view any
	switch v := r.(type) {
	case psu.Telemetry:
		view = newTelemetryView(v)
	case psu.Identity:
		view = identityView{
			Model:    v.ModelString(),
			Serial:   v.SerialString(),
			Firmware: v.FirmwareVersion(),
		}
	case psu.Ack:
		view = ackView{
			Command: v.Cmd.String(),
			Status:  v.Status.String(),
			Data:    hex.EncodeToString(v.Data[:]),
		}
	default:
		return fmt.Errorf("render: unexpected result %T", r)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(view)
}

// milli formats a milli-unit value as units with three decimals.
func milli(v uint32) string {
	return fmt.Sprintf("%d.%03d", v/1000, v%1000)
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
