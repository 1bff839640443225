package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/dkeye/huddle/internal/client"
	"github.com/dkeye/huddle/internal/client/audio"
	"github.com/dkeye/huddle/internal/config"
	"github.com/dkeye/huddle/internal/logging"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var cfgFile string
	root := &cobra.Command{
		Use:          "huddle",
		Short:        "Text and voice chat client for a huddle server",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default config/config.$CONFIG_ENV.yaml)")
	root.PersistentFlags().String("server", "http://localhost:8000", "server base URL")
	root.PersistentFlags().String("log-level", "warn", "log level")

	load := func(cmd *cobra.Command) (*config.ClientConfig, error) {
		logging.Setup("warn", nil)
		cfg, err := config.LoadClient(cfgFile, cmd.Flags())
		if err != nil {
			return nil, err
		}
		logging.Setup(cfg.LogLevel, nil)
		return cfg, nil
	}

	root.AddCommand(newJoinCmd(load), newRoomsCmd(load))
	return root
}

type loader func(cmd *cobra.Command) (*config.ClientConfig, error)

func newJoinCmd(load loader) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "join ROOM USER",
		Short: "Join a room's chat and voice",
		Long: `Join connects to the room's chat and voice channels. Lines typed on
stdin are sent to the chat; lines starting with "/" are local commands,
type /help to list them.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load(cmd)
			if err != nil {
				return err
			}
			ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()
			return join(ctx, cfg, args[0], args[1], os.Stdin, cmd.OutOrStdout())
		},
	}
	cmd.Flags().String("ptt-key", "space", "push-to-talk key")
	cmd.Flags().String("audio-driver", "portaudio", "audio driver: null, wav or portaudio")
	cmd.Flags().String("capture-device", "", "capture device name (default system input)")
	cmd.Flags().String("playback-device", "", "playback device name (default system output)")
	cmd.Flags().String("wav-input", "", "wav file looped as microphone input (wav driver)")
	cmd.Flags().String("wav-output", "", "wav file recording playback (wav driver)")
	return cmd
}

func join(ctx context.Context, cfg *config.ClientConfig, room, user string, in io.Reader, out io.Writer) error {
	driver, err := audio.NewDriver(cfg.Audio)
	if err != nil {
		return err
	}
	printer := client.PrinterFunc(func(line string) { fmt.Fprintln(out, line) })
	state := client.NewState(audio.NewGate(cfg.PTTKey, nil))
	dialer := client.NewDialer()

	chat := &client.ChatSession{
		ServerURL: cfg.ServerURL,
		Room:      room,
		User:      user,
		Input:     readLines(ctx, in),
		Commands:  &client.Commands{State: state, Printer: printer},
		Dialer:    dialer,
		Printer:   printer,
	}
	coord := &client.Coordinator{
		ServerURL: cfg.ServerURL,
		Room:      room,
		Precheck:  true,
		Chat:      chat,
		NewVoice: func() client.Runner {
			return &client.VoiceSession{
				ServerURL:    cfg.ServerURL,
				Room:         room,
				User:         user,
				Driver:       driver,
				BlockSamples: cfg.Audio.BlockSamples,
				State:        state,
				Dialer:       dialer,
				Printer:      printer,
			}
		},
		State:        state,
		Printer:      printer,
		PollInterval: cfg.PollInterval,
		RestartGrace: cfg.RestartGrace,
	}
	err = coord.Run(ctx)
	if errors.Is(err, client.ErrRoomNotFound) {
		log.Debug().Str("module", "cmd.client").Str("room", room).Msg("room not listed")
	}
	return err
}

// readLines feeds stdin lines to the chat session. The channel closes at EOF.
func readLines(ctx context.Context, in io.Reader) <-chan string {
	lines := make(chan string)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(in)
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-ctx.Done():
				return
			}
		}
	}()
	return lines
}

func newRoomsCmd(load loader) *cobra.Command {
	return &cobra.Command{
		Use:   "rooms",
		Short: "List the server's rooms",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load(cmd)
			if err != nil {
				return err
			}
			rooms, err := client.FetchRooms(cmd.Context(), nil, cfg.ServerURL)
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME\tUSERS")
			for _, r := range rooms {
				fmt.Fprintf(tw, "%s\t%s\t%d/%d\n", r.ID, r.Name, r.Users, r.Capacity)
			}
			return tw.Flush()
		},
	}
}
