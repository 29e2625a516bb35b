// Command timerdemo runs two timer tasks to completion, one after the other,
// on a single reactor, printing the time each completed at.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/joeycumines/go-timerfuture"
	"github.com/joeycumines/logiface"
	"github.com/joeycumines/stumpy"
)

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(args []string, stdout, stderr io.Writer) (err error) {
	fs := flag.NewFlagSet(`timerdemo`, flag.ContinueOnError)
	fs.SetOutput(stderr)
	unit := fs.Duration(`unit`, time.Second, `length of one task duration unit`)
	levelName := fs.String(`log-level`, logiface.LevelInformational.String(), `log level, e.g. trace, debug, info, disabled`)
	if err := fs.Parse(args); err != nil {
		return err
	}

	level, err := parseLevel(*levelName)
	if err != nil {
		return err
	}

	logger := stumpy.L.New(
		stumpy.L.WithStumpy(stumpy.WithWriter(stderr)),
		stumpy.L.WithLevel(level),
	).Logger()

	r, err := timerfuture.New(
		timerfuture.WithLogger(logger),
		timerfuture.WithTimeUnit(*unit),
	)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := r.Close(); err == nil {
			err = closeErr
		}
	}()

	start := time.Now()
	report := func(id int) {
		_, _ = fmt.Fprintf(stdout, "Got %d at time: %.2f.\n", id, time.Since(start).Seconds())
	}

	timerfuture.BlockOn(timerfuture.Then[int, struct{}](timerfuture.NewTask(r, 1, 1), func(id int) timerfuture.Future[struct{}] {
		report(id)
		return timerfuture.Map[int, struct{}](timerfuture.NewTask(r, 2, 2), func(id int) struct{} {
			report(id)
			return struct{}{}
		})
	}))

	return nil
}

func parseLevel(s string) (logiface.Level, error) {
	for level := logiface.LevelDisabled; level <= logiface.LevelTrace; level++ {
		if level.String() == s {
			return level, nil
		}
	}
	return 0, fmt.Errorf(`timerdemo: unknown log level %q`, s)
}
