package enrich

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RecoveryAshes/bookmarkscope/internal/models"
)

func TestParseDescription(t *testing.T) {
	tests := []struct {
		name      string
		raw       string
		wantOK    bool
		wantDesc  string
		wantStage int
	}{
		{"整体JSON", `{"description": "A Go tutorial"}`, true, "A Go tutorial", 1},
		{"json代码块", "Sure!\n```json\n{\"description\": \"fenced\"}\n```", true, "fenced", 2},
		{"无语言标记代码块", "```\n{\"description\": \"plain fence\"}\n```", true, "plain fence", 2},
		{"夹在文字中的对象", `Here you go: {"description": "inline"} hope it helps`, true, "inline", 3},
		{"没有JSON", "I cannot help with that.", false, "", 0},
		{"缺少description字段", `{"summary": "x"}`, false, "", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseDescription(tt.raw)
			assert.Equal(t, tt.wantOK, got.Parsed)
			assert.Equal(t, tt.wantDesc, got.Description)
			assert.Equal(t, tt.wantStage, got.Stage)
			assert.Equal(t, tt.raw, got.Raw)
		})
	}
}

func TestFormatPrompt(t *testing.T) {
	record := models.Record{
		Text:        "Check this out",
		QuotedTweet: &models.QuotedRecord{Text: "original"},
		Media: models.Media{
			Photos: []string{"a.jpg", "b.jpg"},
			Links:  []string{"https://go.dev"},
		},
	}

	want := "Tweet: Check this out\nQuoted Tweet: original\nImages: 2 photos\nLinks:\n- https://go.dev"
	assert.Equal(t, want, FormatPrompt(record))
	assert.Equal(t, "Tweet: plain", FormatPrompt(models.Record{Text: "plain"}))
}

type fakeDescriber struct {
	mu       sync.Mutex
	calls    []string
	inFlight int32
	maxSeen  int32
	fail     map[string]bool
}

func (f *fakeDescriber) Describe(ctx context.Context, record models.Record) (string, error) {
	cur := atomic.AddInt32(&f.inFlight, 1)
	defer atomic.AddInt32(&f.inFlight, -1)
	for {
		prev := atomic.LoadInt32(&f.maxSeen)
		if cur <= prev || atomic.CompareAndSwapInt32(&f.maxSeen, prev, cur) {
			break
		}
	}
	time.Sleep(5 * time.Millisecond)

	f.mu.Lock()
	f.calls = append(f.calls, record.Text)
	f.mu.Unlock()

	if f.fail[record.Text] {
		return "", errors.New("rate limited")
	}
	return "about " + record.Text, nil
}

func textRecords(n int) []models.Record {
	out := make([]models.Record, n)
	for i := range out {
		out[i] = models.Record{ID: models.StringPtr(fmt.Sprint(i)), Text: fmt.Sprintf("t%d", i)}
	}
	return out
}

func TestBatchEnricher_Enrich(t *testing.T) {
	describer := &fakeDescriber{fail: map[string]bool{"t3": true}}
	var waits []time.Duration
	var snapshots []int

	be := NewBatchEnricher(describer, 5, 2*time.Second).OnBatch(func(done []models.EnrichedRecord) error {
		snapshots = append(snapshots, len(done))
		return nil
	})
	be.sleep = func(ctx context.Context, d time.Duration) error {
		waits = append(waits, d)
		return nil
	}

	results, summary, err := be.Enrich(context.Background(), textRecords(12))
	require.NoError(t, err)
	require.Len(t, results, 12)

	for i, r := range results {
		assert.Equal(t, fmt.Sprintf("t%d", i), r.Text, "结果顺序应与输入一致")
	}
	assert.Equal(t, models.FailedDescription, results[3].Description)
	assert.Equal(t, models.DescriptionFailed, results[3].DescriptionStatus)
	assert.Equal(t, "about t4", results[4].Description)
	assert.Equal(t, models.DescriptionOK, results[4].DescriptionStatus)

	assert.Equal(t, 3, summary.Batches)
	assert.Equal(t, 11, summary.SuccessCount)
	assert.Equal(t, 1, summary.FailCount)
	assert.Equal(t, []int{5, 10, 12}, snapshots)
	assert.Equal(t, []time.Duration{2 * time.Second, 2 * time.Second}, waits, "最后一批之后不等待")
	assert.LessOrEqual(t, atomic.LoadInt32(&describer.maxSeen), int32(5))
}

func TestBatchEnricher_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	be := NewBatchEnricher(&fakeDescriber{}, 2, time.Second)
	be.sleep = func(c context.Context, d time.Duration) error {
		cancel()
		return c.Err()
	}

	results, _, err := be.Enrich(ctx, textRecords(5))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Len(t, results, 2, "返回已完成的批次")
}

func TestAnthropicDescriber_Describe(t *testing.T) {
	var gotBody map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/messages") {
			http.NotFound(w, r)
			return
		}
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "msg_01",
			"type": "message",
			"role": "assistant",
			"model": "test-model",
			"content": [{"type": "text", "text": "` + "```json\\n{\\\"description\\\": \\\"A Go tutorial\\\"}\\n```" + `"}],
			"stop_reason": "end_turn",
			"stop_sequence": null,
			"usage": {"input_tokens": 10, "output_tokens": 8}
		}`))
	}))
	defer server.Close()

	d := NewAnthropicDescriber(
		models.EnrichConfig{APIKey: "sk-test", Model: "test-model", MaxTokens: 1024},
		option.WithBaseURL(server.URL+"/"),
		option.WithMaxRetries(0),
	)

	desc, err := d.Describe(context.Background(), models.Record{Text: "How to learn Go"})
	require.NoError(t, err)
	assert.Equal(t, "A Go tutorial", desc)

	assert.Equal(t, "test-model", gotBody["model"])
	assert.EqualValues(t, 1024, gotBody["max_tokens"])
	assert.InDelta(t, 0.2, gotBody["temperature"], 1e-9)
}

func TestAnthropicDescriber_Unparseable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"msg_02","type":"message","role":"assistant","model":"m",
			"content":[{"type":"text","text":"no json here"}],
			"stop_reason":"end_turn","stop_sequence":null,"usage":{"input_tokens":1,"output_tokens":1}}`))
	}))
	defer server.Close()

	d := NewAnthropicDescriber(
		models.EnrichConfig{APIKey: "sk-test", Model: "m", MaxTokens: 16},
		option.WithBaseURL(server.URL+"/"),
		option.WithMaxRetries(0),
	)

	_, err := d.Describe(context.Background(), models.Record{Text: "x"})
	assert.Error(t, err)
}
