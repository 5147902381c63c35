// ABOUTME: The interactive run command: loads settings, redirects logs and starts the UI
// ABOUTME: Submitted messages are written to the sink as JSON lines

package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"sync"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/mauromedda/msgcomposer/internal/config"
	pilog "github.com/mauromedda/msgcomposer/internal/log"
	"github.com/mauromedda/msgcomposer/internal/notify"
	"github.com/mauromedda/msgcomposer/internal/termfix"
	"github.com/mauromedda/msgcomposer/internal/ui"
	"github.com/mauromedda/msgcomposer/pkg/composer/linear"
	"github.com/mauromedda/msgcomposer/pkg/tui/clipboard"
	"github.com/mauromedda/msgcomposer/pkg/tui/image"
)

type runArgs struct {
	out      string
	rooms    string
	author   string
	mac      bool
	logLevel string
	project  string
}

func (a *runArgs) register(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVarP(&a.out, "out", "o", "", "append sent messages as JSON lines to this file (default: discard)")
	f.StringVar(&a.rooms, "rooms", "", "YAML file listing conversations (default: built-in demo rooms)")
	f.StringVar(&a.author, "author", "you", "name shown for sent messages")
	f.BoolVar(&a.mac, "mac", runtime.GOOS == "darwin", "use macOS shortcut keys")
	f.StringVar(&a.logLevel, "log-level", "", "log level: debug, info, warn, error")
	f.StringVar(&a.project, "project", "", "project root holding .msgcomposer/config.yaml (default: cwd)")
}

func runCmd() *cobra.Command {
	var args runArgs
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Start the interactive composer",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runComposer(cmd, args)
		},
	}
	args.register(cmd)
	return cmd
}

func runComposer(_ *cobra.Command, args runArgs) error {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return errors.New("composer needs an interactive terminal; use 'composer tokenize' for pipes")
	}

	root := args.project
	if root == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("getting working directory: %w", err)
		}
		root = cwd
	}

	settings, err := config.Load(root)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	closeLog, err := setupLogging(settings, args.logLevel)
	if err != nil {
		return err
	}
	defer closeLog()

	opts, err := settings.ComposerOptions(args.mac)
	if err != nil {
		return fmt.Errorf("configuring composer: %w", err)
	}

	convs := demoRooms()
	if args.rooms != "" {
		if convs, err = loadRooms(args.rooms); err != nil {
			return err
		}
	}

	sink, closeSink, err := openSink(args.out)
	if err != nil {
		return err
	}
	defer closeSink()

	termfix.Apply(settings.DarkTheme())
	pilog.Info("composer %s starting with %d rooms", version, len(convs))

	return ui.Run(ui.Deps{
		Conversations: convs,
		Options:       opts,
		Notifier:      notify.NewNotifier(notify.DefaultInterval, notify.DefaultBurst),
		Clipboard:     clipboard.System{},
		ReadImage:     image.ClipboardImage,
		Sink:          sink,
		Log:           pilog.Component("composer"),
		Author:        args.author,
		Dark:          settings.DarkTheme(),
		Swipe:         settings.SwipeOptions(),
		Reload:        func() (*config.Settings, error) { return config.Load(root) },
		ConfigFiles:   config.ConfigFiles(root),
	})
}

// setupLogging redirects log output to a file so it never draws over the UI.
func setupLogging(s *config.Settings, level string) (func(), error) {
	if level == "" {
		level = s.LogLevel
	}
	if level != "" {
		l, err := pilog.ParseLevel(level)
		if err != nil {
			return nil, fmt.Errorf("parsing log level: %w", err)
		}
		pilog.SetLevel(l)
	}

	path := s.LogFile
	if path == "" {
		path = config.DefaultLogFile()
	}
	if err := config.EnsureDir(filepath.Dir(path)); err != nil {
		return nil, fmt.Errorf("creating log dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, fmt.Errorf("opening log file: %w", err)
	}
	pilog.SetOutput(f)
	return func() {
		pilog.SetOutput(os.Stderr)
		_ = f.Close()
	}, nil
}

// openSink returns a sink writing one JSON object per message.
func openSink(path string) (func([]linear.OutboundMessage) error, func(), error) {
	if path == "" {
		return writeSink(io.Discard), func() {}, nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, nil, fmt.Errorf("opening sink: %w", err)
	}
	return writeSink(f), func() { _ = f.Close() }, nil
}

func writeSink(w io.Writer) func([]linear.OutboundMessage) error {
	var mu sync.Mutex
	return func(msgs []linear.OutboundMessage) error {
		mu.Lock()
		defer mu.Unlock()
		bw := bufio.NewWriter(w)
		for _, m := range msgs {
			data, err := m.MarshalJSON()
			if err != nil {
				return fmt.Errorf("encoding message: %w", err)
			}
			bw.Write(data)
			bw.WriteByte('\n')
		}
		if err := bw.Flush(); err != nil {
			return fmt.Errorf("writing sink: %w", err)
		}
		pilog.Debug("sink: wrote %d messages", len(msgs))
		return nil
	}
}
