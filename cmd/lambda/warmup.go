package main

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	lambdasdk "github.com/aws/aws-sdk-go-v2/service/lambda"
	"github.com/aws/aws-sdk-go-v2/service/lambda/types"
)

const (
	// warmupSource marks self-addressed keep-warm events
	warmupSource = "emailwriter.warmup"
	// scheduledSource is the EventBridge source of scheduled rules
	scheduledSource = "aws.events"

	maxWarmupConcurrency = 10
	// warmupHold keeps this instance busy so parallel invokes land elsewhere
	warmupHold = 75 * time.Millisecond
)

// WarmupEvent is the payload of a keep-warm invocation
type WarmupEvent struct {
	Source      string `json:"source"`
	Concurrency int    `json:"concurrency,omitempty"`
}

// WarmupResponse reports how many instances were kept warm
type WarmupResponse struct {
	Status          string `json:"status"`
	InstancesWarmed int    `json:"instancesWarmed"`
}

// IsWarmupEvent reports whether event is a keep-warm or scheduled event
// rather than an API Gateway request.
func IsWarmupEvent(event json.RawMessage) (*WarmupEvent, bool) {
	var probe struct {
		Source      string  `json:"source"`
		Concurrency float64 `json:"concurrency"`
	}
	if err := json.Unmarshal(event, &probe); err != nil {
		return nil, false
	}
	if probe.Source != warmupSource && probe.Source != scheduledSource {
		return nil, false
	}

	concurrency := int(probe.Concurrency)
	if concurrency < 0 {
		concurrency = 0
	}
	if concurrency > maxWarmupConcurrency {
		concurrency = maxWarmupConcurrency
	}
	return &WarmupEvent{Source: probe.Source, Concurrency: concurrency}, true
}

// HandleWarmup initializes the application and fans out to Concurrency
// additional instances.
func HandleWarmup(ctx context.Context, warmup *WarmupEvent) (*WarmupResponse, error) {
	if _, err := getApp(ctx); err != nil {
		return nil, err
	}

	warmed := 1
	if warmup.Concurrency > 0 {
		warmed += invokeSelf(ctx, warmup.Concurrency)
	}

	time.Sleep(warmupHold)

	return &WarmupResponse{Status: "warm", InstancesWarmed: warmed}, nil
}

// invokeSelf asynchronously invokes this function count times and returns
// the number of accepted invocations.
func invokeSelf(ctx context.Context, count int) int {
	functionName := os.Getenv("AWS_LAMBDA_FUNCTION_NAME")
	if functionName == "" {
		return 0
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return 0
	}
	client := lambdasdk.NewFromConfig(cfg)

	// Children must not fan out again
	payload, err := json.Marshal(WarmupEvent{Source: warmupSource})
	if err != nil {
		return 0
	}

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		accepted int
		errs     []error
	)
	for i := 0; i < count; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := client.Invoke(ctx, &lambdasdk.InvokeInput{
				FunctionName:   aws.String(functionName),
				InvocationType: types.InvocationTypeEvent,
				Payload:        payload,
			})
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = append(errs, err)
				return
			}
			accepted++
		}()
	}
	wg.Wait()

	if err := errors.Join(errs...); err != nil && appInst != nil {
		appInst.Log.Warn().Err(err).Int("accepted", accepted).Msg("warmup self-invoke failed")
	}
	return accepted
}
