package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	sqstypes "github.com/aws/aws-sdk-go-v2/service/sqs/types"

	"github.com/arnelahh/eDiploma-app-sub000/internal/bootstrap"
	"github.com/arnelahh/eDiploma-app-sub000/internal/notify"
	"github.com/arnelahh/eDiploma-app-sub000/internal/shared/config"
	"github.com/arnelahh/eDiploma-app-sub000/internal/shared/telemetry"
)

const (
	defaultVisibilitySeconds  = 300
	defaultWorkerConcurrency  = 4
	defaultShutdownTimeoutSec = 30
)

// sqsAPI is the slice of the SQS client the worker uses.
type sqsAPI interface {
	ReceiveMessage(ctx context.Context, in *sqs.ReceiveMessageInput, opts ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error)
	DeleteMessage(ctx context.Context, in *sqs.DeleteMessageInput, opts ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error)
}

// deliveryProcessor handles one decoded notification.
type deliveryProcessor interface {
	Process(ctx context.Context, msg notify.Message) error
}

func main() {
	cfg := config.Load()

	queueURL := strings.TrimSpace(cfg.QueueURL)
	if queueURL == "" {
		log.Fatal("ED_SQS_QUEUE_URL is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	visibilitySeconds := envInt("ED_SQS_VISIBILITY_TIMEOUT_SECONDS", defaultVisibilitySeconds)
	concurrency := envInt("ED_WORKER_CONCURRENCY", defaultWorkerConcurrency)
	shutdownTimeout := time.Duration(envInt("ED_SHUTDOWN_TIMEOUT_SECONDS", defaultShutdownTimeoutSec)) * time.Second

	loadOpts := []func(*awsconfig.LoadOptions) error{}
	if cfg.AWSRegion != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(cfg.AWSRegion))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		log.Fatalf("load aws config: %v", err)
	}
	var sqsClient sqsAPI = sqs.NewFromConfig(awsCfg)

	app, err := bootstrap.Build(cfg)
	if err != nil {
		log.Fatalf("bootstrap build: %v", err)
	}

	sem := make(chan struct{}, maxInt(1, concurrency))
	var wg sync.WaitGroup

	log.Printf("worker started queue=%s concurrency=%d visibility=%ds", queueURL, concurrency, visibilitySeconds)

pollLoop:
	for {
		select {
		case <-ctx.Done():
			break pollLoop
		default:
		}

		resp, err := sqsClient.ReceiveMessage(ctx, &sqs.ReceiveMessageInput{
			QueueUrl:            aws.String(queueURL),
			MaxNumberOfMessages: 10,
			WaitTimeSeconds:     20,
			VisibilityTimeout:   int32(visibilitySeconds),
			AttributeNames:      []sqstypes.QueueAttributeName{sqstypes.QueueAttributeName("ApproximateReceiveCount")},
		})
		if err != nil {
			if ctx.Err() != nil {
				break pollLoop
			}
			telemetry.Error("worker.receive_failed", map[string]any{"error": err.Error()})
			time.Sleep(2 * time.Second)
			continue
		}

		for _, raw := range resp.Messages {
			raw := raw
			sem <- struct{}{}
			wg.Add(1)
			go func() {
				defer wg.Done()
				defer func() { <-sem }()
				handleMessage(ctx, sqsClient, queueURL, app.Delivery, raw)
			}()
		}
	}

	// Drain in-flight deliveries before exiting.
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(shutdownTimeout):
		log.Printf("shutdown timeout after %s; exiting with in-flight work", shutdownTimeout)
	}
}

func handleMessage(ctx context.Context, client sqsAPI, queueURL string, proc deliveryProcessor, raw sqstypes.Message) {
	body := ""
	if raw.Body != nil {
		body = *raw.Body
	}
	msg, err := notify.DecodeMessage([]byte(body))
	if err != nil {
		telemetry.Error("worker.decode_failed", map[string]any{"error": err.Error()})
		// A malformed message will never decode; delete instead of redelivering.
		deleteMessage(ctx, client, queueURL, raw)
		return
	}

	if err := proc.Process(ctx, msg); err != nil {
		telemetry.Error("worker.process_failed", map[string]any{
			"thesis_id":  msg.ThesisID,
			"stage":      msg.Stage,
			"message_id": msg.MessageID,
			"error":      err.Error(),
		})
		// Leave the message for redelivery; Process is idempotent.
		return
	}

	deleteMessage(ctx, client, queueURL, raw)
}

func deleteMessage(ctx context.Context, client sqsAPI, queueURL string, raw sqstypes.Message) {
	if raw.ReceiptHandle == nil {
		return
	}
	_, err := client.DeleteMessage(ctx, &sqs.DeleteMessageInput{
		QueueUrl:      aws.String(queueURL),
		ReceiptHandle: raw.ReceiptHandle,
	})
	if err != nil {
		telemetry.Error("worker.delete_failed", map[string]any{"error": err.Error()})
	}
}

func envInt(key string, def int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	val, err := strconv.Atoi(raw)
	if err != nil {
		log.Printf("env %s invalid int: %v", key, err)
		return def
	}
	return val
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
