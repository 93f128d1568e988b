package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/omnipulse/omnipulse/internal/scheduler"
)

var schedulerCmd = &cobra.Command{
	Use:   "scheduler",
	Short: "Manage the daily digest scheduler",
	Long:  `Run the scheduler that writes the daily digest and pre-creates the day bucket after midnight.`,
}

var schedulerStartCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the scheduler",
	RunE:  runSchedulerStart,
}

var schedulerRunCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the daily digest once and exit",
	RunE:  runSchedulerOnce,
}

func init() {
	schedulerCmd.AddCommand(schedulerStartCmd)
	schedulerCmd.AddCommand(schedulerRunCmd)
}

func runSchedulerStart(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	fmt.Printf("%s🚀 Start Scheduler%s\n", HeaderStyle, Reset)
	fmt.Printf("%s=================%s\n", DimStyle, Reset)
	fmt.Println()

	sched := scheduler.New(database)
	if err := sched.Start(ctx); err != nil {
		return fmt.Errorf("failed to start scheduler: %w", err)
	}

	fmt.Printf("%s✅ Scheduler started%s\n", SuccessStyle, Reset)
	fmt.Printf("%s📝 Press Ctrl+C to stop the scheduler%s\n", DimStyle, Reset)

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	<-c
	fmt.Printf("\n%s⏹️  Stopping scheduler...%s\n", DimStyle, Reset)
	sched.Stop()
	fmt.Printf("%s✅ Scheduler stopped%s\n", SuccessStyle, Reset)

	return nil
}

func runSchedulerOnce(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	sched := scheduler.New(database)
	if err := sched.RunDigest(ctx); err != nil {
		return fmt.Errorf("digest run failed: %w", err)
	}

	fmt.Printf("%s✅ Daily digest complete%s\n", SuccessStyle, Reset)
	return nil
}
