package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"fleetyard/internal/config"
	"fleetyard/internal/domain"
	"fleetyard/internal/repository/sqlite"
	"fleetyard/internal/storage"
)

func main() {
	configPath := flag.String("config", "", "config file path (overrides discovery)")
	dbPath := flag.String("db", "", "database path (overrides config)")
	flag.Parse()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	var (
		cfg        *config.Config
		loadedFrom string
		err        error
	)
	if *configPath != "" {
		cfg, loadedFrom, err = config.LoadFromPath(*configPath)
	} else {
		cfg, loadedFrom, err = config.Load()
	}
	if err != nil {
		log.Fatal().Err(err).Str("path", loadedFrom).Msg("failed to load config")
	}
	if loadedFrom != "" {
		log.Info().Str("path", loadedFrom).Msg("config loaded")
	}

	if level, err := zerolog.ParseLevel(cfg.Log.Level); err == nil {
		zerolog.SetGlobalLevel(level)
	}
	if *dbPath != "" {
		cfg.Database.Path = *dbPath
	}

	srv := storage.NewServer(storage.Options{
		Path:         cfg.Database.Path,
		SeedAccounts: cfg.SeedAccounts(),
	})

	ctx := context.Background()
	if err := srv.EnsureStarted(ctx); err != nil {
		// Lifecycle failures are fatal: abort rather than retry.
		log.Fatal().Err(err).Msg("failed to start embedded store")
	}
	defer func() {
		if err := srv.Stop(); err != nil {
			log.Error().Err(err).Msg("failed to stop embedded store")
		}
	}()

	trains := sqlite.NewTrainRepository(srv)
	creds := sqlite.NewCredentialRepository(srv)

	if err := run(ctx, trains, creds, flag.Args()); err != nil {
		log.Error().Err(err).Msg("command failed")
		_ = srv.Stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, trains *sqlite.TrainRepository, creds *sqlite.CredentialRepository, args []string) error {
	if len(args) == 0 {
		return usage()
	}

	switch args[0] {
	case "list":
		all, err := trains.ListAll(ctx)
		if err != nil {
			return err
		}
		for _, t := range all {
			fmt.Println(t.Number())
		}
		return nil

	case "show":
		if len(args) != 2 {
			return usage()
		}
		train, err := trains.Load(ctx, args[1])
		if err != nil {
			return err
		}
		if train == nil {
			fmt.Printf("train %q not found\n", args[1])
			return nil
		}
		fmt.Printf("%s: %d cars, passenger capacity %d, baggage capacity %.1f\n",
			train.Number(), train.Len(), train.TotalPassengerCapacity(), train.TotalBaggageCapacity())
		for i, car := range train.Cars() {
			fmt.Printf("  %d. %s\n", i+1, car)
		}
		return nil

	case "delete":
		if len(args) != 2 {
			return usage()
		}
		return trains.Delete(ctx, args[1])

	case "register":
		if len(args) != 3 {
			return usage()
		}
		secret, err := readSecret()
		if err != nil {
			return err
		}
		return creds.Register(ctx, args[1], secret, domain.Role(args[2]))

	default:
		return usage()
	}
}

func readSecret() (string, error) {
	fmt.Fprint(os.Stderr, "password: ")
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func usage() error {
	return fmt.Errorf("usage: fleetyard [flags] list | show <number> | delete <number> | register <username> <role>")
}
