package main

import (
	"context"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"

	"github.com/grovekeep/grove/pkg/config"
	"github.com/grovekeep/grove/pkg/dedup"
	"github.com/grovekeep/grove/pkg/directory"
	"github.com/grovekeep/grove/pkg/directory/directoryinfra"
	"github.com/grovekeep/grove/pkg/fsx"
	"github.com/grovekeep/grove/pkg/fsx/fsxlocal"
	"github.com/grovekeep/grove/pkg/fsx/fsxs3"
	"github.com/grovekeep/grove/pkg/ingest/caption"
	"github.com/grovekeep/grove/pkg/ingest/classify"
	"github.com/grovekeep/grove/pkg/ingest/ingesthttp"
	"github.com/grovekeep/grove/pkg/ingest/ingestinfra"
	"github.com/grovekeep/grove/pkg/ingest/ingestsrv"
	"github.com/grovekeep/grove/pkg/ingest/parse"
	"github.com/grovekeep/grove/pkg/ingest/resolve"
	"github.com/grovekeep/grove/pkg/ingest/webhookauth"
	"github.com/grovekeep/grove/pkg/logx"
	"github.com/grovekeep/grove/pkg/notifx"
	"github.com/grovekeep/grove/pkg/notifx/notifxconsole"
	"github.com/grovekeep/grove/pkg/notifx/notifxses"
	"github.com/grovekeep/grove/pkg/notifx/notifxsns"
	"github.com/grovekeep/grove/pkg/outbox/outboxhttp"
	"github.com/grovekeep/grove/pkg/outbox/outboxinfra"
	"github.com/grovekeep/grove/pkg/outbox/outboxsrv"
)

// Container holds all wired dependencies. Constructed once at startup.
type Container struct {
	Config *config.Config

	DB    *sqlx.DB
	Redis *redis.Client
	Store fsx.MediaStore

	Authenticator  *webhookauth.Authenticator
	IngestHandlers *ingesthttp.Handlers
	OutboxHandlers *outboxhttp.Handlers
	Drainer        *outboxsrv.Drainer

	cancelBackground context.CancelFunc
}

// NewContainer wires the full dependency graph from configuration.
func NewContainer(cfg *config.Config) *Container {
	c := &Container{Config: cfg}

	c.initDatabase()
	c.initRedis()
	c.initStorage()

	notifyClient := c.initNotify()
	dir := directoryinfra.NewPostgresDirectory(c.DB)

	c.initIngest(dir)
	c.initOutbox(notifyClient, dir)

	return c
}

func (c *Container) initDatabase() {
	db, err := sqlx.Connect("postgres", c.Config.Database.DSN())
	if err != nil {
		logx.Fatalf("Failed to connect to database: %v", err)
	}

	db.SetMaxOpenConns(c.Config.Database.MaxOpenConns)
	db.SetMaxIdleConns(c.Config.Database.MaxIdleConns)
	db.SetConnMaxLifetime(c.Config.Database.ConnMaxLifetime)

	c.DB = db
	logx.Info("✓ Database connected")
}

func (c *Container) initRedis() {
	rdb := redis.NewClient(&redis.Options{
		Addr:     c.Config.Redis.Address(),
		Password: c.Config.Redis.Password,
		DB:       c.Config.Redis.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		logx.Fatalf("Failed to connect to redis: %v", err)
	}

	c.Redis = rdb
	logx.Info("✓ Redis connected")
}

func (c *Container) initStorage() {
	switch c.Config.Storage.Mode {
	case "s3":
		awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
			awsconfig.WithRegion(c.Config.Storage.AWSRegion))
		if err != nil {
			logx.Fatalf("Failed to load AWS config: %v", err)
		}
		c.Store = fsxs3.NewS3FileStore(
			s3.NewFromConfig(awsCfg),
			c.Config.Storage.Bucket,
			c.Config.Storage.AWSRegion,
			"",
		)
		logx.Infof("✓ Storage: s3 bucket %s", c.Config.Storage.Bucket)

	default:
		store, err := fsxlocal.NewLocalFileStore(
			c.Config.Storage.LocalDir,
			c.Config.Storage.PublicBaseURL,
		)
		if err != nil {
			logx.Fatalf("Failed to initialize local storage: %v", err)
		}
		c.Store = store
		logx.Infof("✓ Storage: local dir %s", c.Config.Storage.LocalDir)
	}
}

func (c *Container) initNotify() *notifx.Client {
	if c.Config.Notify.Provider == "aws" {
		awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
			awsconfig.WithRegion(c.Config.Notify.AWSRegion))
		if err != nil {
			logx.Fatalf("Failed to load AWS config: %v", err)
		}
		client := notifx.NewClient(
			notifxses.NewSESProvider(ses.NewFromConfig(awsCfg), c.Config.Notify.FromAddress),
			notifxsns.NewSNSProvider(sns.NewFromConfig(awsCfg), c.Config.Notify.SMSSenderID),
		)
		logx.Info("✓ Notifications: SES + SNS")
		return client
	}

	console := notifxconsole.NewConsoleProvider()
	logx.Info("✓ Notifications: console (development)")
	return notifx.NewClient(console, console)
}

func (c *Container) initIngest(dir directory.Directory) {
	c.Authenticator = webhookauth.NewAuthenticator(
		webhookauth.NewAPIKeyStrategy(c.Config.Webhook.APIKey),
		webhookauth.NewSignatureStrategy(c.Config.Webhook.SigningKey, c.Config.Webhook.MaxTimestampSkew),
		webhookauth.NewOriginStrategy(c.Config.Webhook.TrustedUserAgent, c.Config.Webhook.TrustedCIDRs),
	)

	var captioner caption.Generator = caption.NewStaticGenerator()
	if c.Config.Caption.AIEnabled && c.Config.Caption.APIKey != "" {
		captioner = caption.NewAnthropicGenerator(c.Config.Caption.APIKey, c.Config.Caption.Model)
		logx.Info("✓ AI captioning enabled")
	}

	service := ingestsrv.NewService(
		parse.NewParser(),
		resolve.NewResolver(c.Config.Webhook.ServingDomain),
		classify.NewClassifier(),
		captioner,
		ingestsrv.NewAttachmentPipeline(c.Store, c.Config.Webhook.UploadWorkers),
		ingestinfra.NewPostgresLeafStore(c.DB, dir),
		dedup.NewFilter(c.Redis),
	)

	c.IngestHandlers = ingesthttp.NewHandlers(c.Authenticator, service)
}

func (c *Container) initOutbox(notifyClient *notifx.Client, dir directory.Directory) {
	emailWorker, err := outboxsrv.NewEmailWorker(notifyClient, c.Config.Notify.FromAddress, c.Config.Outbox.EmailBatchSize)
	if err != nil {
		logx.Fatalf("Failed to initialize email worker: %v", err)
	}

	c.Drainer = outboxsrv.NewDrainer(
		outboxinfra.NewPostgresRepository(c.DB),
		dir,
		emailWorker,
		outboxsrv.NewSMSWorker(notifyClient, c.Config.Outbox.SMSBatchSize),
	)

	c.OutboxHandlers = outboxhttp.NewHandlers(c.Drainer)
}

// StartBackgroundServices launches the periodic outbox drain.
func (c *Container) StartBackgroundServices() {
	if c.Config.Outbox.DrainInterval <= 0 {
		logx.Info("Outbox drain loop disabled; use the trigger endpoint")
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	c.cancelBackground = cancel
	go c.Drainer.Start(ctx, c.Config.Outbox.DrainInterval)
}

// Cleanup releases all held resources.
func (c *Container) Cleanup() {
	if c.cancelBackground != nil {
		c.cancelBackground()
	}
	if c.Redis != nil {
		if err := c.Redis.Close(); err != nil {
			logx.Errorf("Failed to close redis: %v", err)
		}
	}
	if c.DB != nil {
		if err := c.DB.Close(); err != nil {
			logx.Errorf("Failed to close database: %v", err)
		}
	}
	logx.Info("✓ Container cleaned up")
}
