// cmd/bk1785/main.go

// Bk1785 drives a BK Precision 1785B-series bench power supply over its
// serial command/response protocol.
//
// Each subcommand performs one exchange and prints the decoded reply.
// The monitor subcommand polls telemetry on an interval, mirrors it into
// Modbus TCP holding registers and exposes Prometheus metrics.
//
// Usage:
//
//	bk1785 [command] [flags]
//
// See 'bk1785 --help' for available commands.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tamzrod/bk1785/internal/config"
	"github.com/tamzrod/bk1785/internal/logging"
	"github.com/tamzrod/bk1785/internal/psu"
	"github.com/tamzrod/bk1785/internal/serialport"
	"github.com/tamzrod/bk1785/internal/version"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// first signal cancels ctx; restore default handling so a second one kills
	go func() {
		<-ctx.Done()
		stop()
	}()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

// Global flags
var (
	configPath   string
	deviceFlag   string
	driverFlag   string
	addrFlag     int
	outputFormat string
	logLevel     string
)

var rootCmd = &cobra.Command{
	Use:   "bk1785",
	Short: "BK Precision 1785B power supply control",
	Long: `Control a BK Precision 1785B-series power supply over its serial
interface (26-byte command frames, 9600 8N1 by default).

Settings come from an optional YAML file (--config); flags override it.`,
	Version:       version.String(),
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	// Disable automatic completion command generation
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "YAML config file")
	rootCmd.PersistentFlags().StringVarP(&deviceFlag, "device", "d", "", "Serial device (default "+config.DefaultDevice+")")
	rootCmd.PersistentFlags().StringVar(&driverFlag, "driver", "", "Serial driver (goburrow, bugst)")
	rootCmd.PersistentFlags().IntVarP(&addrFlag, "addr", "a", -1, "Device address 0-255 (default from config, else 0)")
	rootCmd.PersistentFlags().StringVar(&outputFormat, "format", "text", "Output format (text, json)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(portsCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "bk1785 %s\n", version.String())
	},
}

// ---- session setup ----

// session is everything a device command needs.
// The port is closed when ctx ends, so a read stuck on a silent device
// fails with a transport error instead of blocking forever.
type session struct {
	cfg *config.Config
	log *zap.Logger
	psu *psu.Dispatcher

	closePort func() error
	unwatch   func() bool
}

func newSession(ctx context.Context, cfg *config.Config, log *zap.Logger, port io.ReadWriteCloser, opts ...psu.Option) *session {
	var once sync.Once
	closePort := func() error {
		var err error
		once.Do(func() { err = port.Close() })
		return err
	}

	all := append([]psu.Option{
		psu.WithAddress(cfg.Serial.Address),
		psu.WithLogger(log),
	}, opts...)

	return &session{
		cfg:       cfg,
		log:       log,
		psu:       psu.New(psu.NewStreamTransport(port), all...),
		closePort: closePort,
		unwatch:   context.AfterFunc(ctx, func() { _ = closePort() }),
	}
}

func (s *session) Close() {
	s.unwatch()
	_ = s.closePort()
	_ = s.log.Sync()
}

// interrupted reports err as an interruption when ctx ended first.
func interrupted(ctx context.Context, err error) error {
	if err != nil && ctx.Err() != nil {
		return fmt.Errorf("interrupted: %w", ctx.Err())
	}
	return err
}

// loadConfig loads the file, applies flag overrides, validates and fills defaults.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	if err := applyFlags(cfg); err != nil {
		return nil, err
	}

	if err := config.Validate(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	config.Normalize(cfg)

	if _, err := parseFormat(outputFormat); err != nil {
		return nil, err
	}

	return cfg, nil
}

func applyFlags(cfg *config.Config) error {
	if deviceFlag != "" {
		cfg.Serial.Device = deviceFlag
	}
	if driverFlag != "" {
		cfg.Serial.Driver = driverFlag
	}
	if addrFlag >= 0 {
		if addrFlag > 255 {
			return fmt.Errorf("--addr %d out of range 0-255", addrFlag)
		}
		cfg.Serial.Address = uint8(addrFlag)
	}
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}
	return nil
}

// openSession opens the serial port and builds a dispatcher on it.
// opts are appended after the address and logger options.
func openSession(ctx context.Context, opts ...psu.Option) (*session, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	log, err := logging.InitLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("logger init failed: %w", err)
	}

	sc := serialport.FromConfig(cfg.Serial)
	port, err := serialport.Open(sc)
	if err != nil {
		_ = log.Sync()
		return nil, err
	}

	log.Debug("serial port open",
		zap.String("device", sc.Device),
		zap.String("driver", cfg.Serial.Driver),
		zap.Int("baud", sc.BaudRate),
		zap.Uint8("addr", cfg.Serial.Address),
	)

	return newSession(ctx, cfg, log, port, opts...), nil
}

// withSession wraps a device command: open, run, close.
func withSession(run func(cmd *cobra.Command, s *session, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		s, err := openSession(ctx)
		if err != nil {
			return err
		}
		defer s.Close()

		return interrupted(ctx, run(cmd, s, args))
	}
}
