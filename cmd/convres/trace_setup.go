package main

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"convres/internal/trace"
)

// traceOptions mirrors the persistent --trace* flags.
type traceOptions struct {
	output    string
	level     trace.Level
	mode      trace.StorageMode
	ringSize  int
	heartbeat time.Duration
}

func readTraceOptions(fs *pflag.FlagSet) (traceOptions, error) {
	var (
		opts           traceOptions
		level, mode    string
		errOut, errLvl error
		errMode, errRS error
		errHB          error
	)
	opts.output, errOut = fs.GetString("trace")
	level, errLvl = fs.GetString("trace-level")
	mode, errMode = fs.GetString("trace-mode")
	opts.ringSize, errRS = fs.GetInt("trace-ring-size")
	opts.heartbeat, errHB = fs.GetDuration("trace-heartbeat")
	if err := errors.Join(errOut, errLvl, errMode, errRS, errHB); err != nil {
		return opts, fmt.Errorf("failed to read trace flags: %w", err)
	}

	var err error
	if opts.level, err = trace.ParseLevel(level); err != nil {
		return opts, fmt.Errorf("invalid trace level: %w", err)
	}
	if opts.mode, err = trace.ParseMode(mode); err != nil {
		return opts, fmt.Errorf("invalid trace mode: %w", err)
	}
	return opts, nil
}

// setupTracing attaches a tracer to the command context and opens a
// command span tagged with the session id. The returned func closes it.
func setupTracing(cmd *cobra.Command) (func(), error) {
	opts, err := readTraceOptions(cmd.Root().PersistentFlags())
	if err != nil {
		return nil, err
	}
	if opts.level == trace.LevelOff {
		cmd.SetContext(trace.WithTracer(cmd.Context(), trace.Nop))
		return func() {}, nil
	}

	tracer, err := trace.New(trace.Config{
		Level:      opts.level,
		Mode:       opts.mode,
		OutputPath: opts.output,
		RingSize:   opts.ringSize,
		Heartbeat:  opts.heartbeat,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create tracer: %w", err)
	}
	session := trace.NewSession(tracer)
	ctx, span := trace.Start(trace.WithTracer(cmd.Context(), session), trace.ScopeCommand, cmd.CommandPath())
	span.WithExtra("session", session.ID())
	cmd.SetContext(ctx)
	heartbeat := trace.StartHeartbeat(session, opts.heartbeat)

	return func() {
		heartbeat.Stop()
		span.End("")
		var dumpErr error
		if ring, ok := tracer.(*trace.RingTracer); ok {
			dumpErr = ring.DumpFile(opts.output)
		}
		reportTraceError(cmd.ErrOrStderr(), errors.Join(dumpErr, session.Flush(), session.Close()))
	}, nil
}

func reportTraceError(w io.Writer, err error) {
	if err != nil {
		fmt.Fprintf(w, "trace: %v\n", err)
	}
}
