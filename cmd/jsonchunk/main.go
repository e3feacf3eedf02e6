// SPDX-License-Identifier: MIT

// Command jsonchunk decodes the first JSON value of a file (or stdin) incrementally.
//
// By default the value is written back as compact JSON. With -tokens the lexer's item stream is
// printed instead, one item per line.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/davecgh/go-spew/spew"
	"github.com/fatih/color"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
	"github.com/sirupsen/logrus"

	"gitlab.com/fisherprime/jsonchunk"
	"gitlab.com/fisherprime/jsonchunk/lexer"
)

type options struct {
	tokens    bool
	dump      bool
	debug     bool
	chunkSize int
	maxDepth  int
	colorMode string
}

func main() {
	var opts options

	flag.BoolVar(&opts.tokens, "tokens", false, "print the lexer item stream instead of the value")
	flag.BoolVar(&opts.dump, "dump", false, "dump the decoded value's Go representation")
	flag.BoolVar(&opts.debug, "debug", false, "enable debug logging")
	flag.IntVar(&opts.chunkSize, "chunk", lexer.DefaultChunkSize, "number of bytes read per chunk")
	flag.IntVar(&opts.maxDepth, "depth", 0, "maximum nesting depth, 0 for unlimited")
	flag.StringVar(&opts.colorMode, "color", "auto", "colorize output: auto, always, never")
	flag.Parse()

	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	if opts.debug {
		logger.SetLevel(logrus.DebugLevel)
	}

	var out io.Writer = os.Stdout
	switch opts.colorMode {
	case "always":
		color.NoColor = false
	case "never":
		color.NoColor = true
	case "auto":
		color.NoColor = !isatty.IsTerminal(os.Stdout.Fd()) && !isatty.IsCygwinTerminal(os.Stdout.Fd())
	default:
		logger.Fatalf("invalid -color value: %q (use auto, always, or never)", opts.colorMode)
	}
	if !color.NoColor {
		out = colorable.NewColorableStdout()
	}

	var input io.Reader = os.Stdin
	switch flag.NArg() {
	case 0:
	case 1:
		file, err := os.Open(flag.Arg(0))
		if err != nil {
			logger.Fatal(err)
		}
		defer file.Close()
		input = file
	default:
		logger.Fatal("at most one input file may be supplied")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, input, out, logger, opts); err != nil {
		stop()
		logger.Fatal(err)
	}
}

func run(ctx context.Context, input io.Reader, out io.Writer, logger logrus.FieldLogger, opts options) (err error) {
	if opts.tokens {
		return printItems(ctx, input, out, logger, opts)
	}

	v, err := jsonchunk.Parse(ctx, input,
		jsonchunk.WithLogger(logger),
		jsonchunk.WithDebug(opts.debug),
		jsonchunk.WithChunkSize(opts.chunkSize),
		jsonchunk.WithMaxDepth(opts.maxDepth),
	).Wait(ctx)
	if err != nil {
		return
	}

	if opts.dump {
		spew.Fdump(out, v)
		return
	}

	output, err := jsonchunk.Serialize(ctx, v)
	if err != nil {
		return
	}
	_, err = fmt.Fprintln(out, output)

	return
}

// printItems lexes the whole input, printing every item until the terminal one.
func printItems(ctx context.Context, input io.Reader, out io.Writer, logger logrus.FieldLogger, opts options) error {
	lexOpts := []lexer.Option{lexer.WithLogger(logger), lexer.WithDebug(opts.debug)}
	if opts.maxDepth > 0 {
		lexOpts = append(lexOpts, lexer.WithMaxDepth(opts.maxDepth))
	}
	l := lexer.New(lexOpts...)

	go func() {
		if err := l.Lex(ctx, input, opts.chunkSize); err != nil {
			logger.Debugf("lex: %v", err)
		}
	}()

	for {
		item, err := l.Next(ctx)
		if err != nil {
			return err
		}

		if _, err = fmt.Fprintln(out, colorItem(item)); err != nil {
			return err
		}

		switch item.ID {
		case lexer.ItemError:
			return item.Err
		case lexer.ItemEOF:
			return nil
		}
	}
}
