// xdpy is a diagnostic tool for display server connections: it parses
// display specifiers and performs the connection handshake, printing the
// negotiated setup information.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/x11go/xwire"
)

var (
	flagDisplay  string
	flagConfig   string
	flagAuthFile string
	flagLogLevel string
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "xdpy",
		Short:         "Inspect display server connections",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVarP(&flagDisplay, "display", "d", "", "display specifier (default $DISPLAY)")
	rootCmd.PersistentFlags().StringVarP(&flagConfig, "config", "c", "", "path to a TOML config file")
	rootCmd.PersistentFlags().StringVar(&flagAuthFile, "auth-file", "", "Xauthority file (default $XAUTHORITY)")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "log level: trace, debug, info, warn, error")

	rootCmd.AddCommand(infoCmd(), parseCmd(), eventsCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

func setup() (fileConfig, error) {
	cfg, err := loadConfig(flagConfig)
	if err != nil {
		return fileConfig{}, err
	}
	level := flagLogLevel
	if level == "" {
		level = cfg.LogLevel
	}
	xwire.SetLogLevel(level)
	return cfg, nil
}

// connect resolves the display and credentials and opens the connection.
func connect(cfg fileConfig) (*xwire.Client, error) {
	display, err := resolveDisplay(flagDisplay, cfg)
	if err != nil {
		return nil, err
	}

	var auth *xwire.AuthInfo
	if path := resolveAuthFile(flagAuthFile, cfg); path != "" {
		name, err := xwire.ParseDisplay(display)
		if err != nil {
			return nil, err
		}
		hostname := ""
		if name.Host != nil {
			hostname = name.Host.Name
		}
		auth, err = xwire.ReadAuthority(path, hostname, name.Display)
		if err != nil {
			// Missing credentials are not fatal; local servers often
			// accept the connection anyway.
			logrus.WithError(err).Debug("no usable authority entry")
			auth = nil
		}
	}

	return xwire.Connect(display, auth)
}

func infoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Connect and print the negotiated setup information",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := setup()
			if err != nil {
				return err
			}
			client, err := connect(cfg)
			if err != nil {
				return err
			}
			defer client.Close()

			s := client.Setup()
			fmt.Printf("protocol version:   %d.%d\n", s.ProtocolMajor, s.ProtocolMinor)
			fmt.Printf("vendor:             %s (release %d)\n", s.Vendor, s.ReleaseNumber)
			fmt.Printf("resource ids:       base 0x%08x mask 0x%08x\n", s.ResourceIDBase, s.ResourceIDMask)
			fmt.Printf("max request length: %d blocks\n", s.MaximumRequestLength)
			fmt.Printf("image byte order:   %d\n", s.ImageByteOrder)
			fmt.Printf("keycode range:      %d-%d\n", s.MinKeycode, s.MaxKeycode)
			fmt.Printf("screens:            %d (%d pixmap formats)\n", s.NumScreens, s.NumFormats)
			return nil
		},
	}
}

func parseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "parse <specifier>",
		Short: "Parse a display specifier and print its canonical form",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, err := xwire.ParseDisplay(args[0])
			if err != nil {
				return err
			}
			fmt.Printf("canonical: %s\n", name)
			if tok := name.Protocol.String(); tok != "" {
				fmt.Printf("protocol:  %s\n", tok)
			}
			if name.Host != nil {
				fmt.Printf("host:      %s (kind %d)\n", name.Host.Name, name.Host.Kind)
			}
			fmt.Printf("display:   %d\n", name.Display)
			if name.Screen != nil {
				fmt.Printf("screen:    %d\n", *name.Screen)
			}
			return nil
		},
	}
}

func eventsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "events",
		Short: "Connect and print raw frames until the stream ends",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := setup()
			if err != nil {
				return err
			}
			client, err := connect(cfg)
			if err != nil {
				return err
			}
			defer client.Close()

			for {
				frame, err := client.ReadFrame()
				if err == io.EOF {
					return nil
				}
				if err != nil {
					return err
				}
				switch f := frame.(type) {
				case *xwire.Event:
					fmt.Printf("event   code=%d\n", f.Code)
				case *xwire.Error:
					fmt.Printf("error   %s\n", f)
				case *xwire.Reply:
					fmt.Printf("reply   seq=%d length=%d\n", f.Sequence, f.Length)
				}
			}
		},
	}
}
