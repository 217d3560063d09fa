package services

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/dohigg1/advisory-hub/internal/data/repos"
	types "github.com/dohigg1/advisory-hub/internal/domain"
	"github.com/dohigg1/advisory-hub/internal/pkg/dbctx"
	"github.com/dohigg1/advisory-hub/internal/pkg/httpx"
	"github.com/dohigg1/advisory-hub/internal/pkg/logger"
)

const (
	SignatureHeader        = "X-Webhook-Signature"
	WebhookEventCompleted  = "lead.completed"
	maxLoggedResponseBytes = 1000
	defaultWebhookTimeout  = 10 * time.Second
)

type DispatchStatus string

const (
	DispatchDelivered DispatchStatus = "delivered"
	DispatchFailed    DispatchStatus = "failed"
	DispatchSkipped   DispatchStatus = "skipped"
)

// DefaultWebhookDelays waits 2s before attempt 2 and 4s before attempt 3.
var DefaultWebhookDelays = []time.Duration{2 * time.Second, 4 * time.Second}

// CompletionEvent is everything needed to describe one completed lead to a receiver.
type CompletionEvent struct {
	Org           *types.Organization
	Assessment    *types.Assessment
	Lead          *types.Lead
	Score         *types.Score
	CategoryNames map[string]string
}

type DispatchResult struct {
	Status     DispatchStatus `json:"status"`
	Attempts   int            `json:"attempts"`
	StatusCode int            `json:"status_code,omitempty"`
}

type WebhookPayload struct {
	Event       string            `json:"event"`
	Lead        WebhookLead       `json:"lead"`
	Assessment  WebhookAssessment `json:"assessment"`
	Score       WebhookScore      `json:"score"`
	CompletedAt string            `json:"completed_at"`
}

type WebhookLead struct {
	ID        string            `json:"id"`
	Email     string            `json:"email"`
	FirstName string            `json:"first_name"`
	LastName  string            `json:"last_name"`
	Company   string            `json:"company"`
	Phone     string            `json:"phone"`
	JobTitle  string            `json:"job_title"`
	UTM       map[string]string `json:"utm"`
}

type WebhookAssessment struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

type WebhookScore struct {
	TotalPoints   float64           `json:"total_points"`
	TotalPossible float64           `json:"total_possible"`
	Percentage    int               `json:"percentage"`
	TierLabel     string            `json:"tier_label"`
	Categories    []WebhookCategory `json:"categories"`
}

type WebhookCategory struct {
	CategoryID string  `json:"category_id"`
	Name       string  `json:"name,omitempty"`
	Points     float64 `json:"points"`
	Possible   float64 `json:"possible"`
	Percentage int     `json:"percentage"`
	TierLabel  string  `json:"tier_label,omitempty"`
}

// Sign returns hex(HMAC-SHA256(secret, body)).
func Sign(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

// Verify checks sig against body in constant time.
func Verify(secret string, body []byte, sig string) bool {
	want, err := hex.DecodeString(strings.TrimSpace(sig))
	if err != nil {
		return false
	}
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hmac.Equal(mac.Sum(nil), want)
}

// BuildWebhookPayload serialises ev. The bytes returned are the bytes that get signed.
func BuildWebhookPayload(ev CompletionEvent) ([]byte, error) {
	if ev.Lead == nil || ev.Assessment == nil || ev.Score == nil {
		return nil, fmt.Errorf("completion event missing lead, assessment or score")
	}
	utm := ev.Lead.UTMMap()
	cats := ev.Score.Categories()
	ids := make([]string, 0, len(cats))
	for id := range cats {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	breakdown := make([]WebhookCategory, 0, len(ids))
	for _, id := range ids {
		c := cats[id]
		breakdown = append(breakdown, WebhookCategory{
			CategoryID: id,
			Name:       ev.CategoryNames[id],
			Points:     c.Points,
			Possible:   c.Possible,
			Percentage: c.Percentage,
			TierLabel:  c.TierLabel,
		})
	}

	completedAt := ev.Score.CreatedAt
	if ev.Lead.CompletedAt != nil {
		completedAt = *ev.Lead.CompletedAt
	}
	p := WebhookPayload{
		Event: WebhookEventCompleted,
		Lead: WebhookLead{
			ID:        ev.Lead.ID.String(),
			Email:     ev.Lead.Email,
			FirstName: ev.Lead.FirstName,
			LastName:  ev.Lead.LastName,
			Company:   ev.Lead.Company,
			Phone:     ev.Lead.Phone,
			JobTitle:  ev.Lead.JobTitle,
			UTM:       utm,
		},
		Assessment: WebhookAssessment{ID: ev.Assessment.ID.String(), Title: ev.Assessment.Title},
		Score: WebhookScore{
			TotalPoints:   ev.Score.TotalPoints,
			TotalPossible: ev.Score.TotalPossible,
			Percentage:    ev.Score.Percentage,
			TierLabel:     ev.Score.TierLabel,
			Categories:    breakdown,
		},
		CompletedAt: completedAt.UTC().Format(time.RFC3339),
	}
	return json.Marshal(p)
}

type WebhookDispatcher interface {
	Dispatch(ctx context.Context, ev CompletionEvent) DispatchResult
}

type WebhookDispatcherOptions struct {
	Delays     []time.Duration
	Sleep      func(ctx context.Context, d time.Duration) error
	HTTPClient *http.Client
	Timeout    time.Duration
}

type webhookDispatcher struct {
	log    *logger.Logger
	logs   repos.WebhookDeliveryLogRepo
	client *http.Client
	delays []time.Duration
	sleep  func(ctx context.Context, d time.Duration) error
	tracer trace.Tracer
}

func NewWebhookDispatcher(log *logger.Logger, logs repos.WebhookDeliveryLogRepo, opts WebhookDispatcherOptions) WebhookDispatcher {
	delays := opts.Delays
	if delays == nil {
		delays = DefaultWebhookDelays
	}
	sleep := opts.Sleep
	if sleep == nil {
		sleep = httpx.SleepContext
	}
	client := opts.HTTPClient
	if client == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = defaultWebhookTimeout
		}
		client = &http.Client{Timeout: timeout}
	}
	return &webhookDispatcher{
		log:    log.With("service", "WebhookDispatcher"),
		logs:   logs,
		client: client,
		delays: delays,
		sleep:  sleep,
		tracer: otel.Tracer("advisory-hub/webhooks"),
	}
}

// Dispatch never returns an error; the outcome lives in the result and the delivery log.
func (d *webhookDispatcher) Dispatch(ctx context.Context, ev CompletionEvent) DispatchResult {
	if ev.Org == nil || strings.TrimSpace(ev.Org.WebhookURL) == "" {
		return DispatchResult{Status: DispatchSkipped}
	}
	url := strings.TrimSpace(ev.Org.WebhookURL)

	body, err := BuildWebhookPayload(ev)
	if err != nil {
		d.log.Error("webhook payload build failed", "org_id", ev.Org.ID, "error", err)
		return DispatchResult{Status: DispatchFailed}
	}
	signature := ""
	if ev.Org.WebhookSecret != "" {
		signature = Sign(ev.Org.WebhookSecret, body)
	}

	ctx, span := d.tracer.Start(ctx, "webhook.dispatch", trace.WithAttributes(
		attribute.String("org_id", ev.Org.ID.String()),
		attribute.String("lead_id", ev.Lead.ID.String()),
	))
	defer span.End()

	attempts := len(d.delays) + 1
	res := DispatchResult{Status: DispatchFailed}
	for attempt := 1; attempt <= attempts; attempt++ {
		if attempt > 1 {
			if err := d.sleep(ctx, d.delays[attempt-2]); err != nil {
				d.log.Warn("webhook retry wait interrupted", "lead_id", ev.Lead.ID, "attempt", attempt, "error", err)
				break
			}
		}
		res.Attempts = attempt
		code, ok := d.attempt(ctx, ev, url, body, signature, attempt)
		res.StatusCode = code
		if ok {
			res.Status = DispatchDelivered
			break
		}
	}

	span.SetAttributes(attribute.Int("webhook.attempts", res.Attempts), attribute.String("webhook.status", string(res.Status)))
	if res.Status == DispatchFailed {
		span.SetStatus(codes.Error, "webhook delivery exhausted")
		d.log.Warn("webhook delivery failed", "org_id", ev.Org.ID, "lead_id", ev.Lead.ID, "attempts", res.Attempts)
	}
	return res
}

func (d *webhookDispatcher) attempt(ctx context.Context, ev CompletionEvent, url string, body []byte, signature string, n int) (int, bool) {
	ctx, span := d.tracer.Start(ctx, "webhook.attempt", trace.WithAttributes(attribute.Int("webhook.attempt", n)))
	defer span.End()

	entry := &types.WebhookDeliveryLog{
		ID:           uuid.New(),
		OrgID:        ev.Org.ID,
		AssessmentID: ev.Assessment.ID,
		LeadID:       ev.Lead.ID,
		URL:          url,
		Attempt:      n,
	}
	start := time.Now()
	code, respBody, err := d.post(ctx, url, body, signature)
	entry.DurationMS = time.Since(start).Milliseconds()

	if err != nil {
		entry.ErrorMessage = httpx.Truncate(err.Error(), maxLoggedResponseBytes)
		span.RecordError(err)
		span.SetStatus(codes.Error, "network error")
	} else {
		entry.StatusCode = &code
		entry.ResponseBody = httpx.Truncate(respBody, maxLoggedResponseBytes)
		entry.Success = httpx.IsSuccessStatus(code)
		span.SetAttributes(attribute.Int("http.status_code", code))
		if !entry.Success {
			entry.ErrorMessage = fmt.Sprintf("non-2xx response: %d", code)
			span.SetStatus(codes.Error, entry.ErrorMessage)
		}
	}

	// the delivery outcome must be recorded even when the caller has gone away
	logCtx := context.WithoutCancel(ctx)
	if lerr := d.logs.Create(dbctx.Context{Ctx: logCtx}, entry); lerr != nil {
		d.log.Error("webhook delivery log write failed", "lead_id", ev.Lead.ID, "attempt", n, "error", lerr)
	}
	return code, entry.Success
}

func (d *webhookDispatcher) post(ctx context.Context, url string, body []byte, signature string) (int, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return 0, "", err
	}
	req.Header.Set("Content-Type", "application/json")
	if signature != "" {
		req.Header.Set(SignatureHeader, signature)
	}
	resp, err := d.client.Do(req)
	if err != nil {
		return 0, "", err
	}
	defer resp.Body.Close()
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxLoggedResponseBytes*4))
	return resp.StatusCode, string(raw), nil
}
