// cmd/bk1785/commands.go
package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tamzrod/bk1785/internal/psu"
	"github.com/tamzrod/bk1785/internal/serialport"
)

func init() {
	rootCmd.AddCommand(
		remoteCmd,
		outputCmd,
		voltageCmd,
		currentCmd,
		maxVoltageCmd,
		stateCmd,
		infoCmd,
		setAddrCmd,
		localKeyCmd,
		factoryResetCmd,
		rawCmd,
	)
}

// ---- argument parsing ----

// parseSwitch accepts 0/1, on/off and true/false.
func parseSwitch(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "1", "on", "true":
		return true, nil
	case "0", "off", "false":
		return false, nil
	default:
		return false, fmt.Errorf("invalid switch %q (want 0 or 1)", s)
	}
}

// parseUint32 accepts decimal or 0x-prefixed hex.
func parseUint32(s string) (uint32, error) {
	v, err := strconv.ParseUint(s, 0, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid value %q: %w", s, err)
	}
	return uint32(v), nil
}

func parseAddr(s string) (byte, error) {
	v, err := strconv.ParseUint(s, 0, 8)
	if err != nil {
		return 0, fmt.Errorf("invalid address %q (want 0-255)", s)
	}
	return byte(v), nil
}

// printResult renders r in the selected --format.
func printResult(cmd *cobra.Command, r psu.Result) error {
	f, err := parseFormat(outputFormat)
	if err != nil {
		return err
	}
	return render(cmd.OutOrStdout(), f, r)
}

// ---- switch commands ----

func switchCmd(use, short string, op func(*psu.Dispatcher, context.Context, bool) (psu.Ack, error)) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <0|1>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: withSession(func(cmd *cobra.Command, s *session, args []string) error {
			on, err := parseSwitch(args[0])
			if err != nil {
				return err
			}
			ack, err := op(s.psu, cmd.Context(), on)
			if err != nil {
				return err
			}
			return printResult(cmd, ack)
		}),
	}
}

var remoteCmd = switchCmd("remote", "Switch between front panel (0) and remote (1) control",
	(*psu.Dispatcher).SetRemoteMode)

var outputCmd = switchCmd("output", "Turn the output off (0) or on (1)",
	(*psu.Dispatcher).SetOutputPower)

var localKeyCmd = switchCmd("local-key", "Disable (0) or enable (1) the front panel LOCAL key",
	(*psu.Dispatcher).EnableLocalKey)

// ---- value commands ----

func valueCmd(use, unit, short, example string, op func(*psu.Dispatcher, context.Context, uint32) (psu.Ack, error)) *cobra.Command {
	return &cobra.Command{
		Use:     use + " <" + unit + ">",
		Short:   short,
		Example: example,
		Args:    cobra.ExactArgs(1),
		RunE: withSession(func(cmd *cobra.Command, s *session, args []string) error {
			v, err := parseUint32(args[0])
			if err != nil {
				return err
			}
			ack, err := op(s.psu, cmd.Context(), v)
			if err != nil {
				return err
			}
			return printResult(cmd, ack)
		}),
	}
}

var voltageCmd = valueCmd("voltage", "mV", "Set the output voltage",
	"  # 12.5 V\n  bk1785 voltage 12500",
	(*psu.Dispatcher).SetOutputVoltage)

var currentCmd = valueCmd("current", "mA", "Set the output current limit",
	"  # 1.5 A\n  bk1785 current 1500",
	(*psu.Dispatcher).SetOutputCurrent)

var maxVoltageCmd = valueCmd("max-voltage", "mV", "Set the output voltage upper limit",
	"  bk1785 max-voltage 18000",
	(*psu.Dispatcher).SetMaxOutputVoltage)

// ---- read commands ----

var stateCmd = &cobra.Command{
	Use:   "state",
	Short: "Read present voltage, current and state",
	Args:  cobra.NoArgs,
	RunE: withSession(func(cmd *cobra.Command, s *session, args []string) error {
		t, err := s.psu.ReadState(cmd.Context())
		if err != nil {
			return err
		}
		return printResult(cmd, t)
	}),
}

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Read model, serial number and firmware version",
	Args:  cobra.NoArgs,
	RunE: withSession(func(cmd *cobra.Command, s *session, args []string) error {
		id, err := s.psu.ReadProductInfo(cmd.Context())
		if err != nil {
			return err
		}
		return printResult(cmd, id)
	}),
}

// ---- maintenance commands ----

var setAddrCmd = &cobra.Command{
	Use:   "set-addr <n>",
	Short: "Change the device communication address",
	Long: `Change the device communication address.

The new address takes effect for every following command; pass it with
--addr (or serial.address) from then on.`,
	Args: cobra.ExactArgs(1),
	RunE: withSession(func(cmd *cobra.Command, s *session, args []string) error {
		addr, err := parseAddr(args[0])
		if err != nil {
			return err
		}
		ack, err := s.psu.SetCommAddr(cmd.Context(), addr)
		if err != nil {
			return err
		}
		return printResult(cmd, ack)
	}),
}

var factoryResetCmd = &cobra.Command{
	Use:   "factory-reset",
	Short: "Restore factory default settings",
	Args:  cobra.NoArgs,
	RunE: withSession(func(cmd *cobra.Command, s *session, args []string) error {
		ack, err := s.psu.RestoreFactoryDefault(cmd.Context())
		if err != nil {
			return err
		}
		return printResult(cmd, ack)
	}),
}

var rawCmd = &cobra.Command{
	Use:   "raw <cmd> [arg]",
	Short: "Send any command with an optional 32-bit argument",
	Long: `Send any command by name or code with an optional 32-bit little-endian
argument. The reply is decoded by the command: read gives telemetry,
read-product-info gives identity, everything else a status byte.`,
	Example: `  bk1785 raw read
  bk1785 raw 0x23 5000
  bk1785 raw calib-mode 0x0128`,
	Args: cobra.RangeArgs(1, 2),
	RunE: withSession(func(cmd *cobra.Command, s *session, args []string) error {
		c, err := psu.ParseCommand(args[0])
		if err != nil {
			return err
		}

		var arg uint32
		if len(args) == 2 {
			if arg, err = parseUint32(args[1]); err != nil {
				return err
			}
		}

		res, err := s.psu.SendCommand(cmd.Context(), c, arg)
		if err != nil {
			return err
		}
		return printResult(cmd, res)
	}),
}

func init() {
	var names []string
	for _, c := range psu.Commands() {
		names = append(names, c.String())
	}
	rawCmd.Long += "\n\nCommands: " + strings.Join(names, ", ")
}

// ---- host commands ----

var portsCmd = &cobra.Command{
	Use:   "ports",
	Short: "List serial ports on this host",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ports, err := serialport.List()
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if len(ports) == 0 {
			fmt.Fprintln(out, "No serial ports found.")
			return nil
		}
		for _, p := range ports {
			fmt.Fprintln(out, p)
		}
		return nil
	},
}
