package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/amethyst-extra/packs/pkg/assets"
	"github.com/amethyst-extra/packs/pkg/config"

	"github.com/go-redis/redis/v9"
	"github.com/repeale/fp-go/option"
	"github.com/rs/zerolog/log"
)

func loadConfig() (*config.Config, error) {
	cfg, err := config.Process(CLI.Configs)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	if CLI.Base != "" {
		cfg.Assets.Base = CLI.Base
	}

	if CLI.Pack != "" {
		pack, err := assets.ParsePack(CLI.Pack)
		if err != nil {
			return nil, fmt.Errorf("invalid default pack %q: %w", CLI.Pack, err)
		}
		cfg.Assets.DefaultPack = pack
	}

	return cfg, nil
}

func loadResolver() (*config.Config, *assets.Resolver, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}

	resolver := assets.NewOSResolver(cfg.Assets.Base, cfg.Assets.DefaultPack)
	return cfg, resolver, nil
}

func openCache(ctx context.Context, settings config.CacheSettings) (assets.Store, func(), error) {
	if settings.Redis.Address != "" {
		client := redis.NewClient(&redis.Options{
			Addr: settings.Redis.Address,
			DB:   settings.Redis.DB,
		})
		closer := func() { client.Close() }

		if err := client.Ping(ctx).Err(); err != nil {
			closer()
			return nil, nil, fmt.Errorf("could not connect to redis at %s: %w", settings.Redis.Address, err)
		}

		expiry, err := settings.Redis.Expiry()
		if err != nil {
			closer()
			return nil, nil, err
		}

		if expiry > 0 {
			return assets.NewRedisCache(client, expiry), closer, nil
		}
		return assets.NewRedisStore(client), closer, nil
	}

	if settings.Directory != "" {
		err := os.MkdirAll(settings.Directory, 0755)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to make cache dir %s: %w", settings.Directory, err)
		}
		return assets.FSStore(settings.Directory), func() {}, nil
	}

	return nil, func() {}, nil
}

func writeOutput(out string, data []byte) error {
	if out == "" {
		_, err := os.Stdout.Write(data)
		return err
	}

	return assets.WriteBytes(data, out)
}

func packsCommand() error {
	_, resolver, err := loadResolver()
	if err != nil {
		return err
	}

	fmt.Println(resolver.DefaultPack())
	for _, pack := range resolver.Packs() {
		if pack == resolver.DefaultPack() {
			continue
		}
		fmt.Println(pack)
	}

	return nil
}

func resolveCommand(targets []string) error {
	_, resolver, err := loadResolver()
	if err != nil {
		return err
	}

	missing := make([]string, 0)
	for _, target := range targets {
		resolved := resolver.Resolve(target)
		if opt.IsNone(resolved) {
			missing = append(missing, target)
			continue
		}

		fmt.Println(resolved.Value)
	}

	if len(missing) > 0 {
		return fmt.Errorf("not found in any pack: %s", strings.Join(missing, ", "))
	}

	return nil
}

func fetchCommand(target string, out string) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	cfg, resolver, err := loadResolver()
	if err != nil {
		return err
	}

	cache, closeCache, err := openCache(ctx, cfg.Cache)
	if err != nil {
		return err
	}
	defer closeCache()

	fetcher := assets.NewAssetFetcher(resolver, cache)
	fetcher.PollDownloads(ctx)

	data, err := fetcher.Fetch(ctx, target)
	if err != nil {
		return fmt.Errorf("could not fetch %s: %w", target, err)
	}

	log.Debug().Str("asset", target).Int("size", len(data)).Msg("fetched asset")
	return writeOutput(out, data)
}

func indexCommand(format string, out string) error {
	_, resolver, err := loadResolver()
	if err != nil {
		return err
	}

	index, err := assets.BuildIndex(resolver)
	if err != nil {
		return err
	}

	var data []byte
	switch format {
	case "cbor":
		data, err = index.EncodeCBOR()
	default:
		data, err = index.EncodeYAML()
	}
	if err != nil {
		return fmt.Errorf("could not encode index: %w", err)
	}

	log.Debug().
		Int("assets", len(index.Entries)).
		Int("overridden", len(index.Overridden())).
		Msg("built index")

	return writeOutput(out, data)
}
