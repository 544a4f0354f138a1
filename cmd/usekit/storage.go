package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/jackc/pgx/v5"

	"github.com/vango-dev/usekit/internal/config"
	"github.com/vango-dev/usekit/internal/errors"
	"github.com/vango-dev/usekit/pkg/host"
)

// openStorage opens the configured storage backend. The returned close
// function releases it.
func openStorage(ctx context.Context, cfg config.StorageConfig, logger *slog.Logger) (host.Storage, func(), error) {
	switch cfg.Driver {
	case config.DriverMemory, "":
		return host.NewMemoryStorage(), func() {}, nil

	case config.DriverFile:
		fs, err := host.OpenFileStorage(cfg.Path, logger)
		if err != nil {
			return nil, nil, errors.New("U004").WithDetailf("open %s", cfg.Path).Wrap(err)
		}
		return fs, func() { _ = fs.Close() }, nil

	case config.DriverS3:
		return host.NewS3Storage(newS3Client(cfg), cfg.Bucket, cfg.Prefix), func() {}, nil

	case config.DriverPostgres:
		return openPostgres(ctx, cfg, logger)

	default:
		return nil, nil, errors.New("U012").WithDetailf("driver %q", cfg.Driver)
	}
}

// newS3Client builds a client from the config and the standard AWS
// credential environment variables. A custom endpoint (MinIO, LocalStack)
// switches to path-style addressing.
func newS3Client(cfg config.StorageConfig) *s3.Client {
	opts := s3.Options{
		Region: cfg.Region,
		Credentials: aws.NewCredentialsCache(aws.CredentialsProviderFunc(
			func(context.Context) (aws.Credentials, error) {
				return aws.Credentials{
					AccessKeyID:     os.Getenv("AWS_ACCESS_KEY_ID"),
					SecretAccessKey: os.Getenv("AWS_SECRET_ACCESS_KEY"),
					SessionToken:    os.Getenv("AWS_SESSION_TOKEN"),
					Source:          "environment",
				}, nil
			},
		)),
	}
	if opts.Region == "" {
		opts.Region = os.Getenv("AWS_REGION")
	}
	if cfg.Endpoint != "" {
		opts.BaseEndpoint = aws.String(cfg.Endpoint)
		opts.UsePathStyle = true
	}
	return s3.New(opts)
}

// openPostgres connects twice: one connection serves reads and writes,
// the other blocks in LISTEN.
func openPostgres(ctx context.Context, cfg config.StorageConfig, logger *slog.Logger) (host.Storage, func(), error) {
	conn, err := pgx.Connect(ctx, cfg.DSN)
	if err != nil {
		return nil, nil, errors.New("U004").WithDetail("connect to postgres").Wrap(err)
	}
	store := host.NewPGStorage(conn, cfg.Table)
	if err := store.EnsureSchema(ctx); err != nil {
		conn.Close(context.Background())
		return nil, nil, errors.New("U004").WithDetail("create storage table").Wrap(err)
	}

	listenConn, err := pgx.Connect(ctx, cfg.DSN)
	if err != nil {
		conn.Close(context.Background())
		return nil, nil, errors.New("U004").WithDetail("connect listener").Wrap(err)
	}
	listenCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := store.Listen(listenCtx, listenConn); err != nil {
			logger.Error("storage listener stopped", "error", err)
		}
	}()

	closeFn := func() {
		cancel()
		<-done
		listenConn.Close(context.Background())
		conn.Close(context.Background())
	}
	return store, closeFn, nil
}
