package cli

import (
	"context"
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/omnipulse/omnipulse/internal/services"
	"github.com/omnipulse/omnipulse/internal/shared"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "View analytics dashboards in the terminal",
	Long:  `Render the operational dashboard, or the lead-insight funnel, from the aggregated day buckets.`,
	RunE:  runStats,
}

var statsInsightsCmd = &cobra.Command{
	Use:   "insights",
	Short: "View the lead-insight funnel",
	RunE:  runStatsInsights,
}

func init() {
	statsCmd.AddCommand(statsInsightsCmd)
}

func runStats(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	dashboard := services.NewDashboardService(database)
	payload, err := dashboard.GetStats(ctx)
	if err != nil {
		return fmt.Errorf("failed to assemble dashboard: %w", err)
	}

	fmt.Printf("%s📊 Omnipulse Dashboard%s\n", HeaderStyle, Reset)
	fmt.Printf("%s======================%s\n", DimStyle, Reset)
	fmt.Println()

	fmt.Printf("%sMessages Today: %s\n", LabelStyle, FormatCount(payload.Summary.TotalMessagesToday))
	fmt.Printf("%sNew Leads Today: %s\n", LabelStyle, FormatCount(payload.Summary.NewLeadsToday))
	fmt.Printf("%sTop Category: %s\n", LabelStyle, FormatValue(string(payload.Summary.MostCommonCategory)))
	fmt.Printf("%sAvg Response Time: %s\n", LabelStyle, FormatValue(fmt.Sprintf("%.2fs", payload.Summary.AvgResponseTime)))
	fmt.Printf("%sConversion Rate: %s\n", LabelStyle, FormatValue(fmt.Sprintf("%.1f%%", payload.Summary.ConversionRate*100)))
	fmt.Printf("%sAvg Sentiment: %s\n", LabelStyle, FormatValue(fmt.Sprintf("%.2f", payload.Summary.AvgSentiment)))
	fmt.Printf("%sActive Users: %s\n", LabelStyle, FormatCount(payload.ActiveUsers))
	fmt.Printf("%sLearning Efficiency: %s\n", LabelStyle, FormatValue(fmt.Sprintf("%.3f", payload.LearningEfficiency)))
	fmt.Println()

	fmt.Printf("%sDaily Messages:%s\n", SuccessStyle, Reset)
	fmt.Printf("%s───────────────%s\n", DimStyle, Reset)
	for _, point := range payload.Charts.DailyMessages {
		fmt.Printf("  %s: %s\n", FormatMeta(point.Label), FormatCount(point.Value))
	}
	fmt.Println()

	fmt.Printf("%sPlatforms:%s\n", SuccessStyle, Reset)
	fmt.Printf("%s──────────%s\n", DimStyle, Reset)

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%sPLATFORM\tMESSAGES\tLEADS\tAVG RESP\tSENTIMENT\tCONV%%%s\n", LabelStyle, Reset)
	fmt.Fprintf(w, "%s────────\t────────\t─────\t────────\t─────────\t─────%s\n", DimStyle, Reset)
	for _, row := range payload.PlatformMetrics {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			FormatValue(string(row.Platform)),
			FormatCount(row.Messages),
			FormatCount(row.Leads),
			FormatMeta(fmt.Sprintf("%.2fs", row.AvgResponseTime)),
			FormatMeta(fmt.Sprintf("%.2f", row.AvgSentiment)),
			FormatMeta(fmt.Sprintf("%.1f", row.ConversionRate*100)),
		)
	}
	w.Flush()
	fmt.Println()

	fmt.Printf("%sCategories:%s\n", SuccessStyle, Reset)
	fmt.Printf("%s───────────%s\n", DimStyle, Reset)
	for _, point := range payload.CategoryBreakdown {
		fmt.Printf("  %s: %s\n", FormatValue(point.Label), FormatCount(point.Value))
	}
	fmt.Println()

	if len(payload.TopConversations) > 0 {
		fmt.Printf("%sRecent Conversations:%s\n", SuccessStyle, Reset)
		fmt.Printf("%s─────────────────────%s\n", DimStyle, Reset)
		for i, conv := range payload.TopConversations {
			preview := conv.LastMessage
			if len(preview) > 60 {
				preview = preview[:60] + "..."
			}
			fmt.Printf("  %s%d. %s[%s] %s %s\n", CountStyle, i+1, Reset,
				FormatValue(string(conv.Platform)), FormatCount(conv.MessageCount)+" msgs", FormatMeta(preview))
		}
	}

	return nil
}

func runStatsInsights(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	insights := services.NewLeadInsightService(database)
	payload, err := insights.GetLeadInsights(ctx)

	var partial *shared.PartialDataError
	if errors.As(err, &partial) {
		fmt.Printf("%s⚠️  Partial data: %v unavailable%s\n\n", WarningStyle, partial.Scans, Reset)
	} else if err != nil {
		return fmt.Errorf("failed to assemble lead insights: %w", err)
	}

	fmt.Printf("%s🎯 Lead Insights%s\n", HeaderStyle, Reset)
	fmt.Printf("%s================%s\n", DimStyle, Reset)
	fmt.Println()

	fmt.Printf("%sLead Tiers:%s\n", SuccessStyle, Reset)
	fmt.Printf("%s───────────%s\n", DimStyle, Reset)
	fmt.Printf("  %s🔥 Hot: %s\n", LabelStyle, FormatCount(payload.LeadTiers.Hot))
	fmt.Printf("  %s🌤  Warm: %s\n", LabelStyle, FormatCount(payload.LeadTiers.Warm))
	fmt.Printf("  %s❄️  Cold: %s\n", LabelStyle, FormatCount(payload.LeadTiers.Cold))
	fmt.Println()

	fmt.Printf("%sSentiment:%s\n", SuccessStyle, Reset)
	fmt.Printf("%s──────────%s\n", DimStyle, Reset)
	fmt.Printf("  %sPositive: %s\n", LabelStyle, FormatCount(payload.SentimentBuckets.Positive))
	fmt.Printf("  %sNeutral: %s\n", LabelStyle, FormatCount(payload.SentimentBuckets.Neutral))
	fmt.Printf("  %sNegative: %s\n", LabelStyle, FormatCount(payload.SentimentBuckets.Negative))
	fmt.Println()

	fmt.Printf("%sIntent Breakdown:%s\n", SuccessStyle, Reset)
	fmt.Printf("%s─────────────────%s\n", DimStyle, Reset)
	for _, point := range payload.IntentBreakdown {
		fmt.Printf("  %s: %s\n", FormatValue(point.Label), FormatCount(point.Value))
	}
	fmt.Println()

	fmt.Printf("%sResponse Mix:%s\n", SuccessStyle, Reset)
	fmt.Printf("%s─────────────%s\n", DimStyle, Reset)
	for _, point := range payload.ResponseMix {
		fmt.Printf("  %s: %s\n", FormatValue(point.Label), FormatCount(point.Value))
	}
	fmt.Println()

	fmt.Printf("%sConversion Trend:%s\n", SuccessStyle, Reset)
	fmt.Printf("%s─────────────────%s\n", DimStyle, Reset)
	for _, point := range payload.ConversionTrend {
		fmt.Printf("  %s: %s%%\n", FormatMeta(point.Label), FormatCount(point.Value))
	}
	fmt.Println()

	fmt.Printf("%sFunnel:%s\n", SuccessStyle, Reset)
	fmt.Printf("%s───────%s\n", DimStyle, Reset)
	fmt.Printf("  %sFollow-ups Sent: %s (pending %s, success %.1f%%)\n", LabelStyle,
		FormatCount(payload.FollowUp.Sent), FormatCount(payload.FollowUp.Pending), payload.FollowUp.SuccessRate*100)
	fmt.Printf("  %sOutreach Sent: %s (replies %s, rate %.1f%%)\n", LabelStyle,
		FormatCount(payload.Outreach.Sent), FormatCount(payload.Outreach.Replies), payload.Outreach.ReplyRate*100)
	fmt.Printf("  %sBookings: %s\n", LabelStyle, FormatCount(payload.ROI.Bookings))
	fmt.Printf("  %sLearning Efficiency: %s\n", LabelStyle, FormatValue(fmt.Sprintf("%.3f", payload.ROI.LearningEfficiency)))

	return nil
}
