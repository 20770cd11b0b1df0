// internal/psu/commands.go
package psu

import (
	"fmt"
	"strconv"
)

// Command is a request command code.
type Command byte

// Command codes understood by the 1785B series.
const (
	CmdSetRemoteMode         Command = 0x20
	CmdSetOutputPower        Command = 0x21
	CmdSetMaxOutputVoltage   Command = 0x22 // mV
	CmdSetOutputVoltage      Command = 0x23 // mV
	CmdSetOutputCurrent      Command = 0x24 // mA
	CmdSetCommAddr           Command = 0x25
	CmdRead                  Command = 0x26
	CmdCalibMode             Command = 0x27
	CmdReadCalibState        Command = 0x28
	CmdCalibVoltage          Command = 0x29
	CmdSendActualVoltage     Command = 0x2A
	CmdCalibCurrent          Command = 0x2B
	CmdSendActualCurrent     Command = 0x2C
	CmdSaveCalibData         Command = 0x2D
	CmdSetCalibInfo          Command = 0x2E
	CmdReadCalibInfo         Command = 0x2F
	CmdReadProductInfo       Command = 0x31
	CmdRestoreFactoryDefault Command = 0x32
	CmdEnableLocalKey        Command = 0x37
)

// Argument values.
const (
	FrontPanelControl uint32 = 0x00
	RemoteControl     uint32 = 0x01

	OutputOff uint32 = 0x00
	OutputOn  uint32 = 0x01

	// CalibPassword unlocks calibration mode.
	CalibPassword uint32 = 0x0128
)

// replyKind selects how a reply payload is interpreted.
type replyKind int

const (
	replyStatus replyKind = iota
	replyTelemetry
	replyIdentity
)

type commandInfo struct {
	name  string
	reply replyKind
}

var commandTable = map[Command]commandInfo{
	CmdSetRemoteMode:         {"set-remote-mode", replyStatus},
	CmdSetOutputPower:        {"set-output-power", replyStatus},
	CmdSetMaxOutputVoltage:   {"set-max-output-voltage", replyStatus},
	CmdSetOutputVoltage:      {"set-output-voltage", replyStatus},
	CmdSetOutputCurrent:      {"set-output-current", replyStatus},
	CmdSetCommAddr:           {"set-comm-addr", replyStatus},
	CmdRead:                  {"read", replyTelemetry},
	CmdCalibMode:             {"calib-mode", replyStatus},
	CmdReadCalibState:        {"read-calib-state", replyStatus},
	CmdCalibVoltage:          {"calib-voltage", replyStatus},
	CmdSendActualVoltage:     {"send-actual-voltage", replyStatus},
	CmdCalibCurrent:          {"calib-current", replyStatus},
	CmdSendActualCurrent:     {"send-actual-current", replyStatus},
	CmdSaveCalibData:         {"save-calib-data", replyStatus},
	CmdSetCalibInfo:          {"set-calib-info", replyStatus},
	CmdReadCalibInfo:         {"read-calib-info", replyStatus},
	CmdReadProductInfo:       {"read-product-info", replyIdentity},
	CmdRestoreFactoryDefault: {"restore-factory-default", replyStatus},
	CmdEnableLocalKey:        {"enable-local-key", replyStatus},
}

// Known reports whether c is in the command table.
func (c Command) Known() bool {
	_, ok := commandTable[c]
	return ok
}

func (c Command) String() string {
	if info, ok := commandTable[c]; ok {
		return info.name
	}
	return fmt.Sprintf("command(0x%02X)", byte(c))
}

// replyKind is keyed by the request, never by the reply: the device does
// not echo a self-describing command byte.
func (c Command) replyKind() replyKind {
	if info, ok := commandTable[c]; ok {
		return info.reply
	}
	return replyStatus
}

// Commands returns every known command, ordered by code.
func Commands() []Command {
	out := make([]Command, 0, len(commandTable))
	for c := Command(0); c < 0xFF; c++ {
		if c.Known() {
			out = append(out, c)
		}
	}
	return out
}

// ParseCommand accepts a command name or a numeric code.
func ParseCommand(s string) (Command, error) {
	for c, info := range commandTable {
		if info.name == s {
			return c, nil
		}
	}
	v, err := strconv.ParseUint(s, 0, 8)
	if err != nil {
		return 0, fmt.Errorf("psu: unknown command %q", s)
	}
	return Command(v), nil
}
