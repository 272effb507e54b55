package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/gophgate/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
// Only the flags listed in the package doc are considered; the rest of
// os.Args is filtered out with flagx.FilterArgs.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-u", "-a", "-e", "-n", "-r", "-t", "-s"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.ServerURL, "u", cfg.ServerURL, "base URL of the HTTP API")
	fs.StringVar(&cfg.PresenceAddr, "a", cfg.PresenceAddr, "address and port of the presence endpoint")
	fs.StringVar(&cfg.Email, "e", cfg.Email, "account email")
	fs.StringVar(&cfg.FullName, "n", cfg.FullName, "full name for registration")
	fs.BoolVar(&cfg.Register, "r", cfg.Register, "register a new account")
	fs.StringVar(&cfg.SessionFile, "s", cfg.SessionFile, "session cache file (empty disables caching)")
	timeout := fs.Int("t", int(cfg.RequestTimeout.Seconds()), "request timeout (in seconds)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.RequestTimeout = time.Duration(*timeout) * time.Second
}
