package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	flag "github.com/spf13/pflag"
	"go.uber.org/automaxprocs/maxprocs"
)

// Version is set at build time via ldflags.
var Version = "dev"

func main() {
	os.Exit(realMain())
}

func realMain() int {
	flags, args, err := parseFlags(os.Args, os.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return ExitSuccess
		}
		return ExitUsage
	}

	if flags.version {
		fmt.Printf("markup-docx %s\n", Version)
		return ExitSuccess
	}

	if len(args) > 0 && args[0] == "doctor" {
		return runDoctorCmd(args[1:], os.Stdout)
	}

	log := newLogger(flags)

	// Error ignored: maxprocs.Set only fails if GOMAXPROCS env is invalid,
	// in which case Go runtime defaults apply and the program continues safely.
	_, _ = maxprocs.Set(maxprocs.Logger(log.Debugf))

	ctx, stop := notifyContext(context.Background())
	defer stop()

	if err := run(ctx, flags, log); err != nil {
		log.WithError(err).Error("startup failed")
		return exitCodeFor(err)
	}
	return ExitSuccess
}

// newLogger builds the process logger; the library core never logs, so
// this is the only place verbosity applies.
func newLogger(flags *appFlags) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(os.Stderr)
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	switch {
	case flags.quiet:
		log.SetLevel(logrus.ErrorLevel)
	case flags.verbose:
		log.SetLevel(logrus.DebugLevel)
	default:
		log.SetLevel(logrus.InfoLevel)
	}
	return log
}
