// Command server runs the OSCE insight HTTP service: audio upload,
// transcription, report generation, and report retrieval.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"

	"github.com/skillsenselab/osce-insight/internal/config"
	"github.com/skillsenselab/osce-insight/internal/llm"
	"github.com/skillsenselab/osce-insight/internal/llm/bedrock"
	"github.com/skillsenselab/osce-insight/internal/logger"
	"github.com/skillsenselab/osce-insight/internal/report"
	"github.com/skillsenselab/osce-insight/internal/server"
	"github.com/skillsenselab/osce-insight/internal/storage"
	locals "github.com/skillsenselab/osce-insight/internal/storage/local"
	"github.com/skillsenselab/osce-insight/internal/storage/s3"
	"github.com/skillsenselab/osce-insight/internal/transcribe"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run() error {
	configFile := flag.String("config", "", "path to config file")
	envFile := flag.String("env", "", "path to .env file")
	flag.Parse()

	var opts []config.LoaderOption
	if *configFile != "" {
		opts = append(opts, config.WithConfigFile(*configFile))
	}
	if *envFile != "" {
		opts = append(opts, config.WithEnvFile(*envFile))
	}

	var cfg config.Config
	if err := config.Load(&cfg, opts...); err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger.Init(cfg.Log)
	log := logger.GetGlobalLogger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	awsCfg, err := resolveAWSConfig(ctx, cfg.AWS)
	if err != nil {
		return fmt.Errorf("resolve aws config: %w", err)
	}

	input, output, mediaPrefix, err := buildStorages(ctx, cfg)
	if err != nil {
		return fmt.Errorf("build storage: %w", err)
	}

	poller := transcribe.NewPoller(
		transcribe.NewAWSClient(awsCfg),
		nil,
		transcribe.PollerConfig{
			Interval:    cfg.Transcribe.PollInterval,
			MaxAttempts: cfg.Transcribe.MaxPollAttempts,
			Language:    cfg.Transcribe.Language,
			MaxSpeakers: cfg.Transcribe.MaxSpeakers,
		},
		log,
	)

	prompts := llm.NewPromptStore(cfg.LLM.PromptDir, cfg.LLM.DefaultPrompt)
	generator := bedrock.NewGenerator(awsCfg, bedrock.Config{ModelID: cfg.LLM.ModelID})

	store := report.NewStore(output)
	svc := report.NewService(report.ServiceConfig{
		Generator:      report.NewGenerator(generator, prompts, cfg.LLM.ModelID),
		Store:          store,
		Transcriber:    poller,
		Input:          input,
		Output:         output,
		MediaURIPrefix: mediaPrefix,
	}, log)

	handlers := server.NewHandlers(svc, store, input, log)
	srv := server.New(cfg.Server, handlers, log)
	if err := srv.Start(ctx); err != nil {
		return err
	}

	<-ctx.Done()
	return srv.Stop(context.Background())
}

// resolveAWSConfig loads the shared AWS configuration, preferring explicit
// static credentials when configured.
func resolveAWSConfig(ctx context.Context, cfg config.AWSConfig) (aws.Config, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}
	return awsconfig.LoadDefaultConfig(ctx, opts...)
}

// buildStorages creates the input and output backends and the media URI
// prefix handed to the transcription service for input objects.
func buildStorages(ctx context.Context, cfg config.Config) (input, output storage.Storage, mediaPrefix string, err error) {
	switch cfg.Storage.Provider {
	case "local":
		base := cfg.Storage.LocalPath
		input, err = locals.NewStorage(filepath.Join(base, "input"))
		if err != nil {
			return nil, nil, "", err
		}
		output, err = locals.NewStorage(filepath.Join(base, "output"))
		if err != nil {
			return nil, nil, "", err
		}
		mediaPrefix = "file://" + filepath.Join(base, "input") + "/"
		return input, output, mediaPrefix, nil
	default:
		input, err = s3.NewStorage(ctx, &s3.Config{
			Bucket:    cfg.Storage.InputBucket,
			Region:    cfg.AWS.Region,
			AccessKey: cfg.AWS.AccessKey,
			SecretKey: cfg.AWS.SecretKey,
		})
		if err != nil {
			return nil, nil, "", err
		}
		output, err = s3.NewStorage(ctx, &s3.Config{
			Bucket:    cfg.Storage.OutputBucket,
			Region:    cfg.AWS.Region,
			AccessKey: cfg.AWS.AccessKey,
			SecretKey: cfg.AWS.SecretKey,
		})
		if err != nil {
			return nil, nil, "", err
		}
		mediaPrefix = "s3://" + cfg.Storage.InputBucket + "/"
		return input, output, mediaPrefix, nil
	}
}
