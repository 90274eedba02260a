package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/HerbHall/govify/internal/history"
	"github.com/HerbHall/govify/internal/store"
	"github.com/HerbHall/govify/internal/widget"
	"go.uber.org/zap"
)

// runChat runs an interactive terminal conversation against a running
// proxy. Lines starting with / are commands; everything else is submitted.
func runChat(args []string) int {
	fs := flag.NewFlagSet("chat", flag.ContinueOnError)
	url := fs.String("url", "http://localhost:3000", "base URL of the Govify server")
	historyPath := fs.String("history", "", "SQLite file keeping your question history across sessions (default: in memory)")
	logInteractions := fs.Bool("log-interactions", false, "send questions and replies to the server's interaction log")
	userID := fs.String("user-id", "", "user id attached to logged interactions")
	verbose := fs.Bool("verbose", false, "log client diagnostics to stderr")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	logger := zap.NewNop()
	if *verbose {
		if l, err := zap.NewDevelopment(); err == nil {
			logger = l
		}
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	opts := []widget.Option{widget.WithLogger(logger.Named("widget"))}
	if *historyPath != "" {
		hs, closeHistory, err := openHistory(ctx, *historyPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to open history: %v\n", err)
			return 1
		}
		defer closeHistory()
		opts = append(opts, widget.WithHistory(hs))
	}
	if *logInteractions {
		opts = append(opts, widget.WithInteractionLogging(*userID))
	}

	c := widget.New(*url, opts...)
	return chatLoop(ctx, c, os.Stdin, os.Stdout)
}

// openHistory opens a persistent question history owned by this user.
func openHistory(ctx context.Context, path string) (history.Store, func(), error) {
	db, err := store.New(path)
	if err != nil {
		return nil, nil, err
	}
	hs, err := history.NewSQLiteStore(ctx, db, history.DefaultMaxItems)
	if err != nil {
		_ = db.Close()
		return nil, nil, err
	}
	return hs, func() { _ = db.Close() }, nil
}

func chatLoop(ctx context.Context, c *widget.Client, in io.Reader, out io.Writer) int {
	// Liveness only feeds the debug line; it never blocks the session.
	_ = c.CheckLiveness(ctx)
	if d := c.Snapshot().Debug; d != "" {
		fmt.Fprintf(out, "[%s]\n", d)
	}
	fmt.Fprintln(out, "Ask a question about the borough. /clear resets, /quit exits.")

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return 0
		}
		line := strings.TrimSpace(scanner.Text())

		switch line {
		case "":
			continue
		case "/quit", "/exit":
			return 0
		case "/clear":
			if err := c.Clear(ctx); err != nil {
				fmt.Fprintf(out, "clear failed: %v\n", err)
			}
			continue
		}

		err := c.Submit(ctx, line)
		if widget.IsRejection(err) {
			continue
		}

		st := c.Snapshot()
		if n := len(st.Messages); n > 0 {
			fmt.Fprintf(out, "\n%s\n\n", st.Messages[n-1].Content)
		}
		if st.LastError != "" {
			fmt.Fprintf(out, "[%s]\n", st.LastError)
		}
		if qs := c.Suggestions(); err == nil && len(qs) > 0 {
			fmt.Fprintln(out, "You might also ask:")
			for _, q := range qs {
				fmt.Fprintf(out, "  - %s\n", q)
			}
		}

		if ctx.Err() != nil {
			return 130
		}
	}
}
