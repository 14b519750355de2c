package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"Cadence/commands"
	"Cadence/config"
	"Cadence/db_client"
	"Cadence/discord"
	"Cadence/playlist"
	"Cadence/queue"
	"Cadence/redis_client"
	"Cadence/stream"
	"Cadence/telegram"
	"Cadence/utils"
	"Cadence/web"
	"Cadence/yt"

	"github.com/Strum355/log"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/viper"
)

// cacheMaxAge is how long a leftover download may sit in the cache directory
const cacheMaxAge = time.Hour

var production *bool

// chat is a running chat transport
type chat interface {
	commands.Messenger
	Events(ctx context.Context) <-chan commands.Event
}

func main() {
	// Sets Flag to Debug Mode
	production = flag.Bool("p", false, "enables production with json logging")
	flag.Parse()
	if *production {
		log.InitJSONLogger(&log.Config{Output: os.Stdout})
	} else {
		log.InitSimpleLogger(&log.Config{Output: os.Stdout})
	}

	// Sets up Configurations for Viper
	config.InitConfig()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rdb, err := redis_client.New(ctx, viper.GetString("redis.address"))
	if err != nil {
		log.WithError(err).Error("Redis unavailable, metadata cache disabled")
	}

	store, err := db_client.Open(viper.GetString("database.driver"), viper.GetString("database.dsn"))
	if err != nil {
		log.WithError(err).Error("Failed to open settings store")
		return
	}

	cacheDir := viper.GetString("download.dir")
	lookup := yt.NewYouTubeManager(rdb, cacheDir)
	resolver := stream.NewResolver(viper.GetString("api.url"), viper.GetString("api.key"))

	server := web.NewServer(playlist.NewSession(), lookup, resolver, viper.GetInt("search.limit"))
	httpDone := make(chan struct{})
	go func() {
		defer close(httpDone)
		if err := server.Run(ctx, viper.GetString("http.address")); err != nil {
			log.WithError(err).Error("HTTP server stopped")
			stop()
		}
	}()

	closeChat, err := startChat(ctx, lookup, store, queue.New())
	if err != nil {
		log.WithError(err).Error("Chat front door disabled")
	}

	StartCacheCleaning(ctx, cacheDir, rdb)
	log.Info("Cadence is running")

	<-ctx.Done()
	gracefulShutdown(httpDone, closeChat, store, rdb, cacheDir)
}

// startChat connects the configured chat transport and starts dispatching its events
func startChat(ctx context.Context, lookup commands.Lookup, store db_client.Store, downloads *queue.Queue) (func(), error) {
	var (
		transport chat
		closer    = func() {}
	)
	switch name := viper.GetString("chat.transport"); name {
	case "telegram":
		mode, credential := config.Auth()
		token, err := telegram.BotToken(mode, credential, viper.GetString("telegram.bot.token"))
		if err != nil {
			return closer, err
		}
		client, err := telegram.New(token, viper.GetString("telegram.api.endpoint"))
		if err != nil {
			return closer, err
		}
		transport = client
	case "discord":
		client, err := discord.New(viper.GetString("discord.token"), viper.GetString("prefix"))
		if err != nil {
			return closer, err
		}
		events := client.Events(ctx)
		if err := client.Open(); err != nil {
			return closer, err
		}
		closer = func() {
			if err := client.Close(); err != nil {
				log.WithError(err).Error("Failed to close discord session")
			}
		}
		bot := newBot(client, lookup, store, downloads)
		go bot.Run(ctx, events)
		return closer, nil
	case "", "none":
		log.Info("No chat transport configured")
		return closer, nil
	default:
		return closer, errors.New("unknown chat transport " + name)
	}

	bot := newBot(transport, lookup, store, downloads)
	go bot.Run(ctx, transport.Events(ctx))
	return closer, nil
}

func newBot(m commands.Messenger, lookup commands.Lookup, store db_client.Store, downloads *queue.Queue) *commands.Bot {
	return commands.NewBot(m, lookup, store, downloads, commands.Options{
		SearchLimit:   viper.GetInt("search.limit"),
		AddToGroupURL: viper.GetString("chat.add_url"),
		SupportURL:    viper.GetString("chat.support_url"),
	})
}

// gracefulShutdown handles cleaning up after the bot is shutdown
func gracefulShutdown(httpDone <-chan struct{}, closeChat func(), store db_client.Store, rdb *redis.Client, cacheDir string) {
	log.Info("Starting graceful shutdown...")

	closeChat()

	select {
	case <-httpDone:
	case <-time.After(10 * time.Second):
		log.Info("HTTP server did not stop in time")
	}

	if err := store.Close(); err != nil {
		log.WithError(err).Error("Failed to close settings store")
	}
	if rdb != nil {
		if err := rdb.Close(); err != nil {
			log.WithError(err).Error("Failed to close redis client")
		}
	}

	cleanUpCache(cacheDir)

	log.Info("Cleanly exiting")
}

// cleanUpCache removes every cached download. Files not named like a
// download are left alone since the directory is configurable.
func cleanUpCache(cacheDir string) {
	files, err := os.ReadDir(cacheDir)
	if err != nil {
		return
	}

	for _, file := range files {
		if !file.Type().IsRegular() || !utils.IsMediaFile(file.Name()) {
			continue
		}
		_ = os.Remove(filepath.Join(cacheDir, file.Name()))
	}

	log.Info("Cache cleanup completed")
}

// StartCacheCleaning starts the hourly background cleanup
func StartCacheCleaning(ctx context.Context, cacheDir string, rdb *redis.Client) {
	go func() {
		ticker := time.NewTicker(time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				routineCacheCleaning(ctx, cacheDir, rdb, time.Now())
			}
		}
	}()
}

// routineCacheCleaning removes downloads left behind by failed uploads once
// they are older than cacheMaxAge and their cached metadata has expired
func routineCacheCleaning(ctx context.Context, cacheDir string, rdb *redis.Client, now time.Time) int {
	log.Info("Beginning cache cleanup!")
	files, err := os.ReadDir(cacheDir)
	if err != nil {
		return 0
	}

	removed := 0
	for _, file := range files {
		if !file.Type().IsRegular() || !utils.IsMediaFile(file.Name()) {
			continue
		}
		info, err := file.Info()
		if err != nil || now.Sub(info.ModTime()) < cacheMaxAge {
			continue
		}
		if rdb != nil {
			if _, err := rdb.Get(ctx, "ytmeta:"+utils.GetMediaID(file.Name())).Result(); err != redis.Nil {
				continue
			}
		}
		if err := os.Remove(filepath.Join(cacheDir, file.Name())); err == nil {
			removed++
		}
	}
	return removed
}
