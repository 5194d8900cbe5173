package cli

import (
	"bytes"
	"context"
	"io"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/toolshed/internal/model"
)

// syncBuffer provides thread-safe access to a bytes.Buffer.
type syncBuffer struct {
	buf bytes.Buffer
	mu  sync.Mutex
}

func (s *syncBuffer) Write(p []byte) (n int, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf.Write(p)
}

func (s *syncBuffer) String() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf.String()
}

func TestStars(t *testing.T) {
	tests := []struct {
		rating float64
		filled int
		label  string
	}{
		{rating: 0, filled: 0, label: "0.0"},
		{rating: 3.4, filled: 3, label: "3.4"},
		{rating: 3.5, filled: 4, label: "3.5"},
		{rating: 5, filled: 5, label: "5.0"},
	}
	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			got := Stars(tt.rating)
			assert.Equal(t, tt.filled, strings.Count(got, StarIcon))
			assert.Equal(t, model.MaxRating-tt.filled, strings.Count(got, EmptyStar))
			assert.True(t, strings.HasSuffix(got, tt.label))
		})
	}
}

func TestToolTable(t *testing.T) {
	out := ToolTable([]model.Tool{
		{ID: "1", Name: "Seer", Category: model.CategoryComputerVision, PricingModel: model.PricingPaid, AverageRating: 4.5, TotalReviews: 2},
		{ID: "2", Name: strings.Repeat("n", 60), Category: model.CategoryNLP, PricingModel: model.PricingFree},
	})

	lines := strings.Split(out, "\n")
	require.GreaterOrEqual(t, len(lines), 3)
	assert.Contains(t, out, "CATEGORY")
	assert.Contains(t, out, "Computer Vision")
	assert.Contains(t, out, "4.5")
	assert.Contains(t, out, "…")
	assert.NotContains(t, out, strings.Repeat("n", 60))

	assert.Contains(t, ToolTable(nil), "No tools match.")
}

func TestReviewTable(t *testing.T) {
	out := ReviewTable([]model.Review{
		{ID: "r1", ToolID: "1", UserName: "ana", Rating: 4, Status: model.ReviewPending, Comment: "Solid"},
	})
	assert.Contains(t, out, "r1")
	assert.Contains(t, out, "pending")
	assert.Contains(t, out, "Solid")

	assert.Contains(t, ReviewTable(nil), "No reviews.")
}

func TestToolDetail(t *testing.T) {
	out := ToolDetail(
		model.Tool{ID: "1", Name: "Seer", Description: "Tags images", UseCase: "Retail", Website: "https://seer.example.com", AverageRating: 4, TotalReviews: 1},
		[]model.Review{{UserName: "ana", Rating: 4, Comment: "Solid"}},
	)
	for _, want := range []string{"Seer", "Tags images", "Retail", "https://seer.example.com", "(1 reviews)", "ana", "Solid"} {
		assert.Contains(t, out, want)
	}
}

func TestLoadProgress(t *testing.T) {
	var out syncBuffer
	p := NewLoadProgress(&out)

	p.Advance()
	p.Finish()
	assert.Empty(t, out.String(), "no bar before Start")

	p.Start(2)
	p.Advance()
	p.Advance()
	p.Finish()
	assert.Contains(t, out.String(), "Loading reviews")
	assert.Contains(t, out.String(), "2/2")
}

func TestPrompter_Ask(t *testing.T) {
	var out bytes.Buffer
	p := NewPrompter(strings.NewReader("  ana  \n\nfinal"), &out)
	ctx := context.Background()

	got, err := p.Ask(ctx, "Username", "")
	require.NoError(t, err)
	assert.Equal(t, "ana", got)

	got, err = p.Ask(ctx, "Role", "user")
	require.NoError(t, err)
	assert.Equal(t, "user", got)

	got, err = p.Ask(ctx, "Last", "")
	require.NoError(t, err)
	assert.Equal(t, "final", got)

	_, err = p.Ask(ctx, "Nothing left", "")
	assert.ErrorIs(t, err, io.EOF)

	assert.Contains(t, out.String(), "Role [user]")
}

func TestPrompter_Confirm(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{input: "y\n", want: true},
		{input: "YES\n", want: true},
		{input: "n\n"},
		{input: "\n"},
		{input: "maybe\n"},
	}
	for _, tt := range tests {
		t.Run(strings.TrimSpace(tt.input), func(t *testing.T) {
			p := NewPrompter(strings.NewReader(tt.input), io.Discard)
			got, err := p.Confirm(context.Background(), "Delete?")
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPrompter_Cancellation(t *testing.T) {
	pr, pw := io.Pipe()
	defer func() { _ = pr.Close() }()
	defer func() { _ = pw.Close() }()

	p := NewPrompter(pr, io.Discard)
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := p.Ask(ctx, "Password", "")
	assert.ErrorIs(t, err, ErrInputCancelled)
}

func newTestHandler(out io.Writer) (*InterruptHandler, chan chan<- os.Signal) {
	registered := make(chan chan<- os.Signal, 1)
	h := NewInterruptHandler(out)
	h.notify = func(c chan<- os.Signal) { registered <- c }
	h.stop = func(chan<- os.Signal) {}
	return h, registered
}

func TestInterruptHandler(t *testing.T) {
	tests := []struct {
		name        string
		pendingSync bool
		wantSync    bool
	}{
		{name: "idle", pendingSync: false},
		{name: "sync in flight", pendingSync: true, wantSync: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := &syncBuffer{}
			h, registered := newTestHandler(out)

			ctx, release := h.Watch(context.Background(), func() bool { return tt.pendingSync })
			defer release()

			sig := <-registered
			sig <- os.Interrupt

			select {
			case <-ctx.Done():
			case <-time.After(time.Second):
				t.Fatal("context not canceled on interrupt")
			}

			assert.True(t, h.WasInterrupted())
			assert.Contains(t, out.String(), "Interrupted.")
			if tt.wantSync {
				assert.Contains(t, out.String(), "may not have been saved")
			} else {
				assert.NotContains(t, out.String(), "may not have been saved")
			}
		})
	}
}

func TestInterruptHandler_Release(t *testing.T) {
	out := &syncBuffer{}
	h, _ := newTestHandler(out)

	ctx, release := h.Watch(context.Background(), nil)
	release()
	release()

	<-ctx.Done()
	assert.False(t, h.WasInterrupted())
	assert.Empty(t, out.String())
}
