package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"liarsdice-client/internal/client"
	"liarsdice-client/internal/config"
	"liarsdice-client/internal/dice"
)

const shutdownGrace = 10 * time.Second

func newController(ctx context.Context, cfg config.Config) *client.Controller {
	var reporter client.Reporter = client.NopReporter{}
	if cfg.ReportingEnabled() {
		reporter = client.NewHTTPReporter(cfg.ReportURL)
	}

	slot := dice.Slot(cfg.LocalSlot)
	return client.NewController(ctx, client.Options{
		Dialer:   &client.WebsocketDialer{URL: cfg.ServerURL, LocalSlot: slot},
		Reporter: reporter,
		Profile: client.Profile{
			UserName:       cfg.UserName,
			UserID:         cfg.UserID,
			AvatarURL:      cfg.AvatarURL,
			FallbackAvatar: cfg.FallbackAvatarURL,
			AIAvatarBase:   cfg.AIAvatarBase,
			LocalSlot:      slot,
		},
		TeardownDelay: cfg.TeardownDelay,
		ReportTimeout: cfg.ReportTimeout,
	})
}

func readLines(lines chan<- string) {
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		lines <- scanner.Text()
	}
	close(lines)
}

// handle runs one input line. It returns false when the user quits.
func handle(ctrl *client.Controller, line string) bool {
	in, err := client.ParseInput(line)
	if err != nil {
		fmt.Println(err)
		return true
	}

	switch in.Kind {
	case client.InputQuit:
		return false
	case client.InputAction:
		err = ctrl.Submit(in.Action)
	case client.InputSay:
		err = ctrl.Chat(in.Text)
	case client.InputAgain:
		err = ctrl.PlayAgain(in.Room)
	}

	// gate rejections are already on the view
	if err != nil && !isGateError(err) {
		fmt.Println(err)
	}
	return true
}

func isGateError(err error) bool {
	for _, target := range []error{
		client.ErrNotConnected, client.ErrGameOver, client.ErrNoGameState,
		client.ErrNotYourTurn, client.ErrIllegalBid, client.ErrNoBidToChallenge,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	zerolog.SetGlobalLevel(cfg.LogLevel)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})

	// Create context that listens for the interrupt signal from the OS.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	ctrl := newController(ctx, cfg)
	if err := ctrl.Start(cfg.Room); err != nil {
		log.Fatal().Err(err).Str("room", cfg.Room).Msg("failed to start session")
	}

	lines := make(chan string)
	go readLines(lines)

loop:
	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("shutdown signal received")
			break loop

		case v := <-ctrl.Updates():
			fmt.Print(render(v))

		case line, ok := <-lines:
			if !ok || !handle(ctrl, line) {
				break loop
			}
		}
	}
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	if err := ctrl.Close(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("pending match reports abandoned")
	}
	log.Info().Msg("graceful shutdown complete")
}
