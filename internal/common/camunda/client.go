// internal/common/camunda/client.go
package camunda

import (
	"context"
	"fmt"
	"strings"
	"time"

	"lead-distribution-workers/internal/common/errors"

	"github.com/camunda/zeebe/clients/go/v8/pkg/pb"
	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
)

// Client wraps the Zeebe gRPC client with connection verification, retry
// logic, and error normalization. The worker manager shares one Client
// across all job workers, so a single broker connection backs every
// job stream.
type Client struct {
	client zbc.Client
	config *ClientConfig
}

// ClientConfig holds connection settings for the Zeebe gateway.
type ClientConfig struct {
	GatewayAddress         string
	UsePlaintextConnection bool
	ConnectionTimeout      time.Duration
	RequestTimeout         time.Duration
	RetryConfig            *RetryConfig
}

// RetryConfig bounds the exponential backoff applied to transient
// broker failures.
type RetryConfig struct {
	MaxRetries int
	BaseDelay  time.Duration
	MaxDelay   time.Duration
}

// delay returns the backoff for the given attempt, capped at MaxDelay.
func (r *RetryConfig) delay(attempt int) time.Duration {
	d := r.BaseDelay * time.Duration(1<<attempt)
	if d > r.MaxDelay {
		d = r.MaxDelay
	}
	return d
}

// DefaultRetryConfig provides sensible defaults for transient broker failures.
var DefaultRetryConfig = &RetryConfig{
	MaxRetries: 3,
	BaseDelay:  1 * time.Second,
	MaxDelay:   10 * time.Second,
}

// NewClient connects to the gateway at address with default settings.
// Plaintext is fine for local and in-cluster traffic; production setups
// should use NewClientWithConfig and enable TLS.
func NewClient(address string) (*Client, error) {
	return NewClientWithConfig(&ClientConfig{
		GatewayAddress:         address,
		UsePlaintextConnection: true,
		ConnectionTimeout:      10 * time.Second,
		RequestTimeout:         30 * time.Second,
		RetryConfig:            DefaultRetryConfig,
	})
}

// NewClientWithConfig connects with explicit settings and verifies broker
// topology before returning, so a non-nil Client is known to have a live
// gateway behind it.
func NewClientWithConfig(config *ClientConfig) (*Client, error) {
	if config.RetryConfig == nil {
		config.RetryConfig = DefaultRetryConfig
	}

	zeebeClient, err := zbc.NewClient(&zbc.ClientConfig{
		GatewayAddress:         config.GatewayAddress,
		UsePlaintextConnection: config.UsePlaintextConnection,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Zeebe client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), config.ConnectionTimeout)
	defer cancel()

	if _, err := zeebeClient.NewTopologyCommand().Send(ctx); err != nil {
		zeebeClient.Close()
		return nil, fmt.Errorf("failed to connect to Zeebe broker at %s: %w", config.GatewayAddress, err)
	}

	return &Client{
		client: zeebeClient,
		config: config,
	}, nil
}

// GetClient returns the raw Zeebe client for job worker registration.
func (c *Client) GetClient() zbc.Client {
	return c.client
}

// Close releases the underlying gRPC connection.
func (c *Client) Close() error {
	return c.client.Close()
}

// DeployResources sends the given BPMN files to the broker as one atomic
// deployment and returns its key. Deployment is idempotent on the broker
// side: resending an unchanged model keeps the existing version.
func (c *Client) DeployResources(ctx context.Context, paths ...string) (int64, error) {
	if len(paths) == 0 {
		return 0, nil
	}

	result, err := c.ExecuteWithRetry(ctx, func(ctx context.Context) (interface{}, error) {
		cmd := c.client.NewDeployResourceCommand()
		for _, path := range paths {
			cmd = cmd.AddResourceFile(path)
		}
		return cmd.Send(ctx)
	}, "deploy resources")
	if err != nil {
		return 0, err
	}

	resp, ok := result.(*pb.DeployResourceResponse)
	if !ok {
		return 0, fmt.Errorf("unexpected deploy response type %T", result)
	}
	return resp.GetKey(), nil
}

// ExecuteWithRetry runs a Zeebe command with exponential backoff. Only
// transient failures (broker unreachable, timeouts) are retried; anything
// else is mapped to a standardized error immediately.
func (c *Client) ExecuteWithRetry(
	ctx context.Context,
	commandFunc func(context.Context) (interface{}, error),
	operationName string,
) (interface{}, error) {
	retry := c.config.RetryConfig

	var lastErr error
	for attempt := 0; attempt <= retry.MaxRetries; attempt++ {
		result, err := commandFunc(ctx)
		if err == nil {
			return result, nil
		}
		lastErr = err

		class := classifyBrokerError(err)
		if !class.retryable() || attempt == retry.MaxRetries {
			return nil, mapBrokerError(err, class, operationName, attempt)
		}

		select {
		case <-time.After(retry.delay(attempt)):
		case <-ctx.Done():
			return nil, fmt.Errorf("operation %s cancelled after %d attempts: %w", operationName, attempt, ctx.Err())
		}
	}

	return nil, fmt.Errorf("operation %s failed after %d retries: %w", operationName, retry.MaxRetries, lastErr)
}

// errorClass buckets broker failures for retry and mapping decisions.
type errorClass int

const (
	classOther errorClass = iota
	classUnavailable
	classTimeout
	classNotFound
	classAlreadyExists
	classUnauthorized
)

func (e errorClass) retryable() bool {
	return e == classUnavailable || e == classTimeout
}

// classifyBrokerError buckets an error by message text. The Zeebe client
// flattens gRPC status codes into the message, so substring matching is
// the reliable signal here.
func classifyBrokerError(err error) errorClass {
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "connection refused"),
		strings.Contains(msg, "connection reset"),
		strings.Contains(msg, "unavailable"),
		strings.Contains(msg, "unreachable"),
		strings.Contains(msg, "broken pipe"):
		return classUnavailable
	case strings.Contains(msg, "timeout"),
		strings.Contains(msg, "deadline exceeded"):
		return classTimeout
	case strings.Contains(msg, "not found"):
		return classNotFound
	case strings.Contains(msg, "already exists"):
		return classAlreadyExists
	case strings.Contains(msg, "permission denied"),
		strings.Contains(msg, "unauthorized"):
		return classUnauthorized
	default:
		return classOther
	}
}

// mapBrokerError converts a broker failure into a standardized error
// carrying the operation name and attempt count.
func mapBrokerError(err error, class errorClass, operation string, attempt int) error {
	msg := fmt.Sprintf("Zeebe operation '%s' failed", operation)
	if attempt > 0 {
		msg += fmt.Sprintf(" after %d attempts", attempt)
	}

	switch class {
	case classTimeout:
		return errors.NewTimeoutError("zeebe", fmt.Errorf("%s: %s", msg, err))
	case classNotFound:
		return errors.NewResourceNotFoundError("zeebe", fmt.Sprintf("%s: %s", msg, err))
	case classAlreadyExists:
		return errors.NewBusinessRuleError(fmt.Sprintf("%s: %s", msg, err), "Resource already exists")
	case classUnauthorized:
		return errors.NewAuthenticationError(fmt.Sprintf("%s: %s", msg, err))
	default:
		return errors.NewExternalServiceError("zeebe", fmt.Errorf("%s: %s", msg, err))
	}
}

// HealthCheck probes broker topology; the readiness endpoint calls this
// on every poll.
func (c *Client) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, c.config.ConnectionTimeout)
	defer cancel()

	if _, err := c.client.NewTopologyCommand().Send(ctx); err != nil {
		return fmt.Errorf("zeebe health check failed: %w", err)
	}
	return nil
}
