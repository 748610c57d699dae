// Package analysis asks an external text service for a written review of
// the current stock position. Failures never reach the caller as errors.
package analysis

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/sony/gobreaker"

	"stockledger/domain"
	"stockledger/metrics"
	"stockledger/report"
)

const (
	// FallbackMessage is returned whenever the service cannot be used.
	FallbackMessage = "Could not reach the analysis service. Check that the backend service is running."
	// EmptyMessage is returned when the service answers with no text.
	EmptyMessage = "No analysis report is available right now."
	// NoDataMessage is returned without calling the service when the
	// catalog is empty.
	NoDataMessage = "There are no products in the catalog to analyse yet."

	SystemInstruction = "You are a professional logistics and inventory assistant."

	recentTransactions = 5
)

// Snapshot is the read-only data the prompt is built from.
type Snapshot struct {
	Warehouses   []domain.Warehouse       `json:"warehouses"`
	Products     []domain.Product         `json:"products"`
	Inventory    []domain.InventoryRecord `json:"inventory"`
	Transactions []domain.Transaction     `json:"transactions"`
}

// TakeSnapshot copies the catalog, warehouses, ledger and the most recent
// transactions out of the store.
func TakeSnapshot(ctx context.Context, s domain.Store) (Snapshot, error) {
	var snap Snapshot
	err := s.View(ctx, func(st *domain.State) error {
		snap.Warehouses = append([]domain.Warehouse(nil), st.Warehouses...)
		snap.Products = append([]domain.Product(nil), st.Products...)
		snap.Inventory = st.Inventory.Records()
		return nil
	})
	if err != nil {
		return Snapshot{}, err
	}
	hist, err := report.New(s).History(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	if len(hist) > recentTransactions {
		hist = hist[:recentTransactions]
	}
	snap.Transactions = hist
	return snap, nil
}

type Config struct {
	Endpoint string
	Timeout  time.Duration
	// Breaker trips after this many consecutive failures.
	FailureThreshold uint32
	OpenTimeout      time.Duration
}

func DefaultConfig(endpoint string) Config {
	return Config{
		Endpoint:         endpoint,
		Timeout:          30 * time.Second,
		FailureThreshold: 3,
		OpenTimeout:      60 * time.Second,
	}
}

type Client struct {
	cfg     Config
	http    *http.Client
	cb      *gobreaker.CircuitBreaker
	logger  *slog.Logger
	metrics *metrics.Metrics
}

func NewClient(cfg Config, logger *slog.Logger, m *metrics.Metrics) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.FailureThreshold == 0 {
		cfg.FailureThreshold = 3
	}
	settings := gobreaker.Settings{
		Name:        "analysis",
		MaxRequests: 1,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.FailureThreshold
		},
		// a caller giving up says nothing about the service's health
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed",
				"name", name,
				"from", from.String(),
				"to", to.String(),
			)
		},
	}
	return &Client{
		cfg:     cfg,
		http:    &http.Client{Timeout: cfg.Timeout},
		cb:      gobreaker.NewCircuitBreaker(settings),
		logger:  logger,
		metrics: m,
	}
}

type request struct {
	Prompt            string `json:"prompt"`
	SystemInstruction string `json:"systemInstruction"`
}

type response struct {
	Text string `json:"text"`
}

// Analyze returns the service's report for snap, NoDataMessage when snap has
// no products, or FallbackMessage on any failure.
func (c *Client) Analyze(ctx context.Context, snap Snapshot) string {
	if c.cfg.Endpoint == "" {
		c.logger.Warn("analysis endpoint not configured")
		c.metrics.RecordAnalysis("fallback")
		return FallbackMessage
	}

	prompt, err := BuildPrompt(snap)
	if errors.Is(err, errEmptySnapshot) {
		c.metrics.RecordAnalysis("empty")
		return NoDataMessage
	}
	if err != nil {
		c.logger.Error("build analysis prompt", "error", err)
		c.metrics.RecordAnalysis("fallback")
		return FallbackMessage
	}

	if err := ctx.Err(); err != nil {
		c.logger.Warn("analysis request abandoned", "error", err)
		c.metrics.RecordAnalysis("fallback")
		return FallbackMessage
	}

	start := time.Now()
	out, err := c.cb.Execute(func() (interface{}, error) {
		return c.call(ctx, prompt)
	})
	if err != nil {
		c.logger.Error("analysis request failed",
			"error", err,
			"breaker", c.cb.State().String(),
			"duration_ms", time.Since(start).Milliseconds(),
		)
		c.metrics.RecordAnalysis("fallback")
		return FallbackMessage
	}

	text := strings.TrimSpace(out.(string))
	if text == "" {
		c.metrics.RecordAnalysis("empty")
		return EmptyMessage
	}
	c.metrics.RecordAnalysis("ok")
	c.logger.Info("analysis completed", "duration_ms", time.Since(start).Milliseconds())
	return text
}

func (c *Client) call(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(request{Prompt: prompt, SystemInstruction: SystemInstruction})
	if err != nil {
		return "", fmt.Errorf("encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.Endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("analysis service returned %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var out response
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	return out.Text, nil
}

// State exposes the breaker state for health reporting.
func (c *Client) State() gobreaker.State {
	return c.cb.State()
}

var errEmptySnapshot = errors.New("snapshot has no products")

// BuildPrompt renders snap into the instruction text sent to the service.
func BuildPrompt(snap Snapshot) (string, error) {
	if len(snap.Products) == 0 {
		return "", errEmptySnapshot
	}
	sections := []struct {
		label string
		v     interface{}
	}{
		{"Warehouses", snap.Warehouses},
		{"Products", snap.Products},
		{"Stock levels", snap.Inventory},
		{"Recent transactions", snap.Transactions},
	}

	var b strings.Builder
	b.WriteString("You are an expert in inventory management and logistics analysis.\n")
	b.WriteString("Analyse the current stock, transaction records and warehouse distribution.\n\n")
	b.WriteString("Data provided:\n")
	for _, s := range sections {
		raw, err := json.Marshal(s.v)
		if err != nil {
			return "", fmt.Errorf("encode %s: %w", strings.ToLower(s.label), err)
		}
		fmt.Fprintf(&b, "- %s: %s\n", s.label, raw)
	}
	b.WriteString("\nWrite a concise report covering:\n")
	b.WriteString("1. Stock health: products that are dangerously low or overstocked.\n")
	b.WriteString("2. Distribution: whether goods should be moved between warehouses.\n")
	b.WriteString("3. Sales trend: which products move fastest based on the transactions.\n")
	b.WriteString("4. Actions: three concrete recommendations for the warehouse manager.\n\n")
	b.WriteString("Answer in Markdown with a professional tone.\n")
	return b.String(), nil
}
