package main

import (
	"context"
	"crypto/tls"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"

	"tasks-api/api"
	"tasks-api/notify"
	"tasks-api/security"
	"tasks-api/storage"
	"tasks-api/store"
)

func main() {
	_ = godotenv.Load()

	logger := log.New()
	if dbg, err := strconv.ParseBool(os.Getenv("DEBUG")); err == nil && dbg {
		logger.SetLevel(log.DebugLevel)
	}
	if logFile := os.Getenv("LOG_FILE"); logFile != "" {
		logger.SetOutput(&lumberjack.Logger{
			Filename:   logFile,
			MaxSize:    50, // megabytes
			MaxBackups: 5,
			MaxAge:     28, // days
		})
	}

	tasksKey := os.Getenv("TASKS_KEY")
	if tasksKey == "" {
		tasksKey = "darklinca_todos"
	}

	var kv store.KV
	if redisConn := os.Getenv("REDIS_CONNECTION_STRING"); redisConn != "" {
		redisOpts, err := redis.ParseURL(redisConn)
		if err != nil {
			parts := strings.Split(redisConn, ",")
			redisOpts = &redis.Options{Addr: parts[0]}
			for _, p := range parts[1:] {
				opt := strings.SplitN(p, "=", 2)
				if len(opt) != 2 {
					continue
				}
				switch strings.ToLower(opt[0]) {
				case "password":
					redisOpts.Password = opt[1]
				case "ssl":
					if strings.ToLower(opt[1]) == "true" {
						redisOpts.TLSConfig = &tls.Config{}
					}
				}
			}
		}
		kv = storage.NewRedisKV(redis.NewClient(redisOpts))
		logger.Info("using redis persistence")
	} else {
		dataDir := os.Getenv("DATA_DIR")
		if dataDir == "" {
			dataDir = "./data"
		}
		fileKV, err := storage.NewFileKV(dataDir)
		if err != nil {
			log.Fatalf("storage: %v", err)
		}
		kv = fileKV
		logger.Infof("using file persistence in %s", dataDir)
	}

	tasks := store.New(context.Background(), kv, tasksKey, security.Sanitize, logger)

	var notifier api.Notifier = notify.Disabled{}
	if webhookURL := os.Getenv("DISCORD_WEBHOOK_URL"); webhookURL != "" {
		cfg := notify.Config{}
		if v := os.Getenv("NOTIFY_WORKERS"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n <= 0 {
				log.Fatalf("invalid NOTIFY_WORKERS: %v", err)
			}
			cfg.Workers = n
		}
		if v := os.Getenv("NOTIFY_BUFFER"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n <= 0 {
				log.Fatalf("invalid NOTIFY_BUFFER: %v", err)
			}
			cfg.Buffer = n
		}
		if v := os.Getenv("NOTIFY_TIMEOUT"); v != "" {
			d, err := time.ParseDuration(v)
			if err != nil || d <= 0 {
				log.Fatalf("invalid NOTIFY_TIMEOUT: %v", err)
			}
			cfg.Timeout = d
		}
		sender := notify.NewSender(notify.NewWebhook(webhookURL), cfg, logger)
		defer sender.Close()
		notifier = sender
	}

	e := echo.New()
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept},
	}))

	api.Register(e, tasks, notifier, logger)

	listenAddr := ":3000"
	if val, ok := os.LookupEnv("PORT"); ok {
		listenAddr = ":" + val
	}

	e.Logger.Fatal(e.Start(listenAddr))
}
