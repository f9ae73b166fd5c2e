package telegram

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"SwingRadar/internal/domain/models"
)

const reportContinuationHeader = "📊 <b>Market report</b> (continued)\n\n"

func classificationEmoji(c models.Classification) string {
	switch c {
	case models.StrongBuy:
		return "🚀"
	case models.Buy:
		return "🟢"
	case models.Sell:
		return "🔴"
	case models.StrongSell:
		return "💥"
	default:
		return "⚪"
	}
}

// Formatter renders signals and batch reports as HTML messages bounded
// by the sink's maximum message size.
type Formatter struct {
	maxLen int
}

func NewFormatter(maxLen int) *Formatter {
	if maxLen <= 0 {
		maxLen = 4000
	}
	return &Formatter{maxLen: maxLen}
}

// FormatSignal renders one trading signal notification.
func (f *Formatter) FormatSignal(sig models.TradingSignal) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s <b>%s: %s</b>\n", classificationEmoji(sig.Classification), sig.Classification, sig.Pair)
	fmt.Fprintf(&b, "Exchange: %s\n", sig.Exchange)
	fmt.Fprintf(&b, "Price: %s\n", formatPrice(sig.Price))
	fmt.Fprintf(&b, "Probability: %.0f%% | Confidence: %.0f%%\n", sig.Probability*100, sig.Confidence*100)
	fmt.Fprintf(&b, "Entry: %s\n", formatPrice(sig.Entry))
	fmt.Fprintf(&b, "Stop loss: %s\n", formatPrice(sig.StopLoss))
	fmt.Fprintf(&b, "Take profit: %s\n", formatPrice(sig.TakeProfit))
	fmt.Fprintf(&b, "Risk: %s | Horizon: %s", sig.RiskLevel, sig.Horizon)

	return b.String()
}

// FormatReport renders the full batch as one or more chunks, each
// within the message size bound. Chunks after the first carry a
// continuation header.
func (f *Formatter) FormatReport(snap models.BatchSnapshot) []string {
	var lines []string

	lines = append(lines, "📊 <b>Market report</b>")
	lines = append(lines, fmt.Sprintf("Updated: %s", snap.UpdatedAt.UTC().Format("2006-01-02 15:04 UTC")))
	lines = append(lines, fmt.Sprintf("Sentiment: %s (avg confidence %.0f%%)",
		snap.Conditions.Sentiment, snap.Conditions.AverageConfidence*100))
	lines = append(lines, fmt.Sprintf("Bullish: %d | Bearish: %d | Neutral: %d",
		snap.Conditions.Bullish, snap.Conditions.Bearish, snap.Conditions.Neutral))
	lines = append(lines, "")

	if len(snap.Signals) > 0 {
		lines = append(lines, "<b>Active signals</b>")
		for _, sig := range snap.Signals {
			lines = append(lines, fmt.Sprintf("%s %s %s at %s (confidence %.0f%%, %s)",
				classificationEmoji(sig.Classification), sig.Classification, sig.Pair,
				formatPrice(sig.Price), sig.Confidence*100, sig.RiskLevel))
		}
		lines = append(lines, "")
	} else {
		lines = append(lines, "No active signals this pass.")
		lines = append(lines, "")
	}

	lines = append(lines, "<b>All pairs</b>")
	for _, a := range snap.Analyses {
		lines = append(lines, fmt.Sprintf("%s %s %s at %s (probability %.0f%%)",
			classificationEmoji(a.Classification), a.Pair, a.Classification,
			formatPrice(a.Price), a.Probability*100))
	}

	return f.chunk(lines)
}

// chunk greedily packs lines into messages below the size limit.
// Lines that alone exceed the limit are hard-split first so a single
// pathological line can never push a chunk past the sink's bound.
func (f *Formatter) chunk(lines []string) []string {
	var chunks []string
	var cur strings.Builder

	flush := func() {
		if cur.Len() > 0 {
			chunks = append(chunks, strings.TrimRight(cur.String(), "\n"))
			cur.Reset()
		}
	}

	for _, line := range f.splitOversized(lines) {
		need := len(line) + 1
		if cur.Len() > 0 && cur.Len()+need > f.maxLen {
			flush()
			cur.WriteString(reportContinuationHeader)
		}
		cur.WriteString(line)
		cur.WriteString("\n")
	}
	flush()

	return chunks
}

// splitOversized breaks lines down so every line fits a chunk body
// even after the continuation header, cutting on rune boundaries.
func (f *Formatter) splitOversized(lines []string) []string {
	limit := f.maxLen - len(reportContinuationHeader) - 1
	if limit < 1 {
		limit = 1
	}

	out := make([]string, 0, len(lines))
	for _, line := range lines {
		for len(line) > limit {
			cut := limit
			for cut > 0 && !utf8.RuneStart(line[cut]) {
				cut--
			}
			if cut == 0 {
				cut = limit
			}
			out = append(out, line[:cut])
			line = line[cut:]
		}
		out = append(out, line)
	}
	return out
}

// formatPrice keeps sensible precision for both large and sub-unit
// prices.
func formatPrice(p float64) string {
	switch {
	case p >= 1000:
		return fmt.Sprintf("%.2f", p)
	case p >= 1:
		return fmt.Sprintf("%.4f", p)
	default:
		return fmt.Sprintf("%.8f", p)
	}
}
