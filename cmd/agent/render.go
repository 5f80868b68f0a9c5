package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"

	"stock-analysis-agent/internal/types"
)

// render formats an analysis for a terminal.
func render(resp *types.AnalysisResponse) string {
	var b strings.Builder

	if info := resp.StockInfo; info != nil {
		name := info.LongName
		if name == "" {
			name = info.Symbol
		}
		fmt.Fprintf(&b, "%s (%s)\n", name, info.Symbol)
		if info.Sector != "" {
			fmt.Fprintf(&b, "%s / %s\n", info.Sector, info.Industry)
		}
		fmt.Fprintf(&b, "Price: %s  52w: %s - %s  Market cap: %s\n\n",
			num(info.RegularMarketPrice), num(info.FiftyTwoWeekLow), num(info.FiftyTwoWeekHigh), num(info.MarketCap))
	}
	if resp.ErrorMessage != "" {
		fmt.Fprintf(&b, "Warning: %s\n\n", resp.ErrorMessage)
	}

	b.WriteString("Technical indicators:\n")
	if ind := resp.TechnicalIndicators; ind != nil && ind.Error != "" {
		fmt.Fprintf(&b, "  %s\n", ind.Error)
	} else if ind != nil {
		t := newTable(&b, []string{"Indicator", "Value"})
		t.Append([]string{"SMA 50", num(ind.SMA50)})
		t.Append([]string{"SMA 200", num(ind.SMA200)})
		t.Append([]string{"RSI 14", num(ind.RSI14)})
		t.Append([]string{"MACD", num(ind.MACDLine)})
		t.Append([]string{"MACD signal", num(ind.MACDSignal)})
		t.Append([]string{"MACD histogram", num(ind.MACDHistogram)})
		t.Append([]string{"MACD cross", string(ind.MACDSignalCross)})
		t.Render()
	}

	fmt.Fprintf(&b, "\nNews: %d fetched, %d analyzed\n", resp.RawNewsFetchedCount, resp.RelevantNewsAnalyzedCount)
	if len(resp.NewsWithSentiment) > 0 {
		t := newTable(&b, []string{"Relevance", "Sentiment", "Title", "Source"})
		for _, n := range resp.NewsWithSentiment {
			t.Append([]string{strconv.Itoa(n.RelevanceScore), string(n.Sentiment), n.Title, n.Source})
		}
		t.Render()
	}

	fmt.Fprintf(&b, "\nOutlook: %s (confidence: %s, score %.2f)\n",
		resp.OverallAssessment, resp.AssessmentConfidence, resp.AssessmentBreakdown.FinalScore)
	for _, d := range resp.AssessmentDrivers {
		fmt.Fprintf(&b, "  - %s\n", d)
	}
	return b.String()
}

func newTable(b *strings.Builder, header []string) *tablewriter.Table {
	t := tablewriter.NewWriter(b)
	t.SetHeader(header)
	t.SetAutoWrapText(false)
	t.SetAlignment(tablewriter.ALIGN_LEFT)
	return t
}

func num(v *float64) string {
	if v == nil {
		return "N/A"
	}
	return strconv.FormatFloat(*v, 'f', 2, 64)
}
