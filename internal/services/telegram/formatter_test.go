package telegram

import (
	"fmt"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"SwingRadar/internal/domain/models"
)

func TestFormatSignal(t *testing.T) {
	sig := models.TradingSignal{
		Pair:           "BTC/USDT",
		Exchange:       "bybit",
		Classification: models.StrongBuy,
		Price:          50000,
		Probability:    0.9,
		Confidence:     0.85,
		Entry:          50000,
		StopLoss:       48000,
		TakeProfit:     56000,
		RiskLevel:      models.RiskModerate,
		Horizon:        "3-7 days",
	}

	msg := NewFormatter(4000).FormatSignal(sig)

	for _, want := range []string{"🚀", "STRONG_BUY", "BTC/USDT", "50000.00", "90%", "85%", "MODERATE"} {
		if !strings.Contains(msg, want) {
			t.Errorf("signal message missing %q:\n%s", want, msg)
		}
	}
}

func TestFormatSignalEmojis(t *testing.T) {
	cases := map[models.Classification]string{
		models.StrongBuy:  "🚀",
		models.Buy:        "🟢",
		models.Hold:       "⚪",
		models.Sell:       "🔴",
		models.StrongSell: "💥",
	}
	f := NewFormatter(4000)
	for cls, emoji := range cases {
		msg := f.FormatSignal(models.TradingSignal{Pair: "BTC/USDT", Classification: cls})
		if !strings.HasPrefix(msg, emoji) {
			t.Errorf("%s message does not start with %s: %q", cls, emoji, msg[:12])
		}
	}
}

func testSnapshot(pairs int) models.BatchSnapshot {
	snap := models.BatchSnapshot{UpdatedAt: time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)}
	for i := 0; i < pairs; i++ {
		snap.Analyses = append(snap.Analyses, models.Recommendation{
			Pair:           fmt.Sprintf("PAIR%03d/USDT", i),
			Classification: models.Hold,
			Price:          1234.56,
			Probability:    0.5,
		})
	}
	snap.Conditions = models.ComputeConditions(snap.Analyses)
	return snap
}

func TestFormatReportSingleChunk(t *testing.T) {
	chunks := NewFormatter(4000).FormatReport(testSnapshot(5))

	if len(chunks) != 1 {
		t.Fatalf("got %d chunks, want 1", len(chunks))
	}
	if !strings.Contains(chunks[0], "Market report") {
		t.Errorf("missing header:\n%s", chunks[0])
	}
	if !strings.Contains(chunks[0], "No active signals this pass.") {
		t.Errorf("missing empty-signals line:\n%s", chunks[0])
	}
	if !strings.Contains(chunks[0], "PAIR004/USDT") {
		t.Errorf("missing pair line:\n%s", chunks[0])
	}
}

func TestFormatReportChunkingUnderLimit(t *testing.T) {
	const maxLen = 500
	chunks := NewFormatter(maxLen).FormatReport(testSnapshot(60))

	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	for i, c := range chunks {
		if len(c) > maxLen {
			t.Errorf("chunk %d exceeds limit: %d > %d", i, len(c), maxLen)
		}
		if i > 0 && !strings.HasPrefix(c, "📊 <b>Market report</b> (continued)") {
			t.Errorf("chunk %d missing continuation header: %q", i, c[:40])
		}
	}

	// Every pair must survive the chunking.
	all := strings.Join(chunks, "\n")
	for i := 0; i < 60; i++ {
		pair := fmt.Sprintf("PAIR%03d/USDT", i)
		if !strings.Contains(all, pair) {
			t.Errorf("pair %s lost during chunking", pair)
		}
	}
}

func TestFormatReportListsSignals(t *testing.T) {
	snap := testSnapshot(2)
	snap.Signals = []models.TradingSignal{{
		Pair:           "ETH/USDT",
		Classification: models.Buy,
		Price:          2500,
		Confidence:     0.72,
		RiskLevel:      models.RiskModerate,
	}}

	chunks := NewFormatter(4000).FormatReport(snap)
	if !strings.Contains(chunks[0], "Active signals") || !strings.Contains(chunks[0], "ETH/USDT") {
		t.Fatalf("signal section missing:\n%s", chunks[0])
	}
}

func TestChunkSplitsOversizedLine(t *testing.T) {
	const maxLen = 200
	f := NewFormatter(maxLen)

	long := strings.Repeat("x", 3*maxLen)
	chunks := f.chunk([]string{"short line", long, "tail line"})

	for i, c := range chunks {
		if len(c) > maxLen {
			t.Errorf("chunk %d exceeds limit: %d > %d", i, len(c), maxLen)
		}
	}

	all := strings.Join(chunks, "")
	if got := strings.Count(all, "x"); got != 3*maxLen {
		t.Errorf("oversized line lost content: %d of %d chars survive", got, 3*maxLen)
	}
	if !strings.Contains(all, "tail line") {
		t.Error("line after the oversized one was lost")
	}
}

func TestChunkSplitsOnRuneBoundaries(t *testing.T) {
	const maxLen = 200
	f := NewFormatter(maxLen)

	long := strings.Repeat("é", 2*maxLen)
	for i, c := range f.chunk([]string{long}) {
		if !utf8.ValidString(c) {
			t.Errorf("chunk %d is not valid UTF-8", i)
		}
		if len(c) > maxLen {
			t.Errorf("chunk %d exceeds limit: %d > %d", i, len(c), maxLen)
		}
	}
}

func TestFormatPrice(t *testing.T) {
	cases := map[float64]string{
		50000:      "50000.00",
		1234.5:     "1234.50",
		2.5:        "2.5000",
		0.00004521: "0.00004521",
	}
	for in, want := range cases {
		if got := formatPrice(in); got != want {
			t.Errorf("formatPrice(%v) = %q, want %q", in, got, want)
		}
	}
}
