package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"strconv"

	"github.com/mattn/go-isatty"
	"github.com/nullreff/redpile/sim"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Options configures the command loop.
type Options struct {
	World  *sim.World
	Runner sim.BehaviorRunner

	Interactive bool   // show a prompt when Out is a terminal
	Port        uint16 // serve over TCP instead of stdin when non-zero
	Host        string
	Prompt      string

	In  io.Reader
	Out io.Writer
	Err io.Writer
}

// Run executes commands until the input ends or ctx is cancelled. With a port
// it listens on Host:Port and serves one connection at a time; otherwise it
// reads In line by line.
func Run(ctx context.Context, opts Options) error {
	if opts.Port > 0 {
		addr := net.JoinHostPort(opts.Host, strconv.Itoa(int(opts.Port)))
		ln, err := net.Listen("tcp", addr)
		if err != nil {
			return fmt.Errorf("listen on %s: %w", addr, err)
		}
		fmt.Fprintf(opts.Out, "Listening on %s\n", addr)
		return Serve(ctx, ln, opts)
	}

	it := &Interpreter{World: opts.World, Runner: opts.Runner, Out: opts.Out, Err: opts.Err}
	prompt := ""
	if opts.Interactive && isTerminal(opts.Out) {
		prompt = opts.Prompt
	}
	return readLoop(ctx, opts.In, opts.Out, prompt, it)
}

// Serve accepts connections on ln until ctx is cancelled. Each connection gets
// its own interpreter writing output and errors back to the peer.
func Serve(ctx context.Context, ln net.Listener, opts Options) error {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		<-gctx.Done()
		return ln.Close()
	})
	g.Go(func() error {
		for {
			conn, err := ln.Accept()
			if err != nil {
				if gctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("accept: %w", err)
			}
			logrus.Infof("console: connection from %s", conn.RemoteAddr())
			it := &Interpreter{World: opts.World, Runner: opts.Runner, Out: conn, Err: conn}
			if err := serveConn(gctx, conn, it); err != nil {
				logrus.Warnf("console: %s: %v", conn.RemoteAddr(), err)
			}
		}
	})
	err := g.Wait()
	if errors.Is(err, net.ErrClosed) {
		return nil
	}
	return err
}

func serveConn(ctx context.Context, conn net.Conn, it *Interpreter) error {
	defer conn.Close()
	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()
	return readLoop(ctx, conn, conn, "", it)
}

// readLoop feeds lines from r to the interpreter. Reading happens on a
// separate goroutine so cancellation is noticed while a read blocks.
func readLoop(ctx context.Context, r io.Reader, w io.Writer, prompt string, it *Interpreter) error {
	lines := make(chan string)
	errc := make(chan error, 1)
	go func() {
		scanner := bufio.NewScanner(r)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		errc <- scanner.Err()
	}()

	for {
		if prompt != "" {
			fmt.Fprint(w, prompt)
		}
		select {
		case <-ctx.Done():
			return nil
		case err := <-errc:
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return nil
			}
			return err
		case line := <-lines:
			it.Exec(ctx, line)
		}
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
