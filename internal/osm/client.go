package osm

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/pos-catalog/internal/fetcher"
	"github.com/sells-group/pos-catalog/internal/model"
	"github.com/sells-group/pos-catalog/internal/resilience"
)

// DefaultBaseURL is the public OSM API v0.6 endpoint.
const DefaultBaseURL = "https://api.openstreetmap.org/api/0.6"

// maxPayloadBytes bounds a single node response; real nodes are a few KB.
const maxPayloadBytes = 1 << 20

// ErrPayloadTooLarge is returned when a node response exceeds maxPayloadBytes.
var ErrPayloadTooLarge = eris.New("osm: node payload too large")

// Client fetches raw OSM node payloads.
type Client interface {
	// FetchNode returns the raw payload of the node. Every failure, including a
	// missing node, a non-success status and transport errors, is reported as
	// a *model.NodeNotFoundError.
	FetchNode(ctx context.Context, nodeID int64) (string, error)
}

// HTTPClient implements Client against the OSM HTTP API.
type HTTPClient struct {
	fetcher fetcher.Fetcher
	baseURL string
	breaker *resilience.CircuitBreaker
}

// ClientOption configures an HTTPClient.
type ClientOption func(*HTTPClient)

// WithBreaker guards fetches with cb. While the circuit is open FetchNode
// fails fast with a transient *model.NodeNotFoundError.
func WithBreaker(cb *resilience.CircuitBreaker) ClientOption {
	return func(c *HTTPClient) {
		c.breaker = cb
	}
}

// NewBreaker returns a circuit breaker that opens after threshold consecutive
// transient fetch failures. Missing nodes never count.
func NewBreaker(threshold, resetTimeoutSecs int) *resilience.CircuitBreaker {
	cfg := resilience.FromCircuitConfig(threshold, resetTimeoutSecs)
	cfg.ShouldTrip = isTransientFailure
	cfg.OnStateChange = func(from, to resilience.CircuitState) {
		zap.L().Warn("osm: circuit breaker state change",
			zap.Stringer("from", from),
			zap.Stringer("to", to),
		)
	}
	return resilience.NewCircuitBreaker(cfg)
}

func isTransientFailure(err error) bool {
	var nf *model.NodeNotFoundError
	return errors.As(err, &nf) && nf.Transient
}

// NewHTTPClient creates an HTTPClient. An empty baseURL selects DefaultBaseURL.
func NewHTTPClient(f fetcher.Fetcher, baseURL string, opts ...ClientOption) *HTTPClient {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &HTTPClient{
		fetcher: f,
		baseURL: strings.TrimRight(baseURL, "/"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NodeURL returns the API URL of a node.
func (c *HTTPClient) NodeURL(nodeID int64) string {
	return c.baseURL + "/node/" + strconv.FormatInt(nodeID, 10)
}

// FetchNode implements Client.
func (c *HTTPClient) FetchNode(ctx context.Context, nodeID int64) (string, error) {
	if c.breaker == nil {
		return c.fetchNode(ctx, nodeID)
	}
	if err := c.breaker.Allow(); err != nil {
		zap.L().Warn("osm: fetch skipped", zap.Int64("node_id", nodeID), zap.Error(err))
		return "", &model.NodeNotFoundError{NodeID: nodeID, Transient: true, Err: err}
	}
	payload, err := c.fetchNode(ctx, nodeID)
	c.breaker.Record(err)
	return payload, err
}

func (c *HTTPClient) fetchNode(ctx context.Context, nodeID int64) (string, error) {
	url := c.NodeURL(nodeID)
	log := zap.L().With(zap.Int64("node_id", nodeID), zap.String("url", url))

	body, err := c.fetcher.Download(ctx, url)
	if err != nil {
		nf := &model.NodeNotFoundError{NodeID: nodeID, Err: err}
		var se *fetcher.StatusError
		if errors.As(err, &se) {
			nf.StatusCode = se.StatusCode
			nf.Transient = resilience.IsTransientHTTPStatus(se.StatusCode)
		} else {
			nf.Transient = resilience.IsTransient(err)
		}
		if nf.StatusCode == http.StatusNotFound || nf.StatusCode == http.StatusGone {
			log.Info("osm: node does not exist", zap.Int("status", nf.StatusCode))
		} else {
			log.Warn("osm: fetch node failed", zap.Bool("transient", nf.Transient), zap.Error(err))
		}
		return "", nf
	}
	defer body.Close() //nolint:errcheck

	data, err := io.ReadAll(io.LimitReader(body, maxPayloadBytes+1))
	if err != nil {
		log.Warn("osm: read node payload failed", zap.Error(err))
		return "", &model.NodeNotFoundError{
			NodeID:    nodeID,
			Transient: resilience.IsTransient(err),
			Err:       eris.Wrap(err, "osm: read body"),
		}
	}
	if len(data) > maxPayloadBytes {
		log.Warn("osm: node payload too large", zap.Int("limit_bytes", maxPayloadBytes))
		return "", &model.NodeNotFoundError{NodeID: nodeID, Err: ErrPayloadTooLarge}
	}
	return string(data), nil
}
