package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"chewing-love-service/pkg/client"
	"chewing-love-service/pkg/logger"
)

var (
	reportURL         string
	reportUser        string
	reportPassword    string
	reportMember      string
	reportRange       string
	reportBench       int
	reportConcurrency int
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Print dashboard numbers from a running server",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		api := client.New(reportURL, logger.L())

		password := reportPassword
		if password == "" {
			password = os.Getenv("DEFAULT_ADMIN_PASSWORD")
		}
		if err := api.Login(reportUser, password); err != nil {
			return err
		}

		elders, err := api.Elders()
		if err != nil {
			return err
		}
		for _, e := range elders {
			fmt.Fprintf(out, "elder: %s (%s)\n", e.Name, e.ID)
		}

		chewing, err := api.Chewing(reportMember, reportRange)
		if err != nil {
			return err
		}
		if chewing.Empty {
			fmt.Fprintln(out, chewing.Message)
		} else {
			for _, p := range chewing.Points {
				fmt.Fprintf(out, "%s  %d\n", p.FormattedDate, p.Count)
			}
		}
		fmt.Fprintf(out, "range=%s average=%d days=%d max=%d\n",
			chewing.Range, chewing.Stats.Average, chewing.Stats.Days, chewing.Stats.Max)

		if reportBench > 0 {
			api.Benchmark(cmd.Context(), "/dashboard/chewing?range="+chewing.Range, reportConcurrency, reportBench).Print(out)
		}
		return nil
	},
}

func init() {
	reportCmd.Flags().StringVar(&reportURL, "url", "http://localhost:8080/api", "API base URL")
	reportCmd.Flags().StringVarP(&reportUser, "username", "u", "admin", "Admin username")
	reportCmd.Flags().StringVarP(&reportPassword, "password", "p", "", "Admin password (defaults to DEFAULT_ADMIN_PASSWORD)")
	reportCmd.Flags().StringVar(&reportMember, "member", "", "Family member ID (defaults to the first elder)")
	reportCmd.Flags().StringVar(&reportRange, "range", "daily", "daily | weekly | monthly")
	reportCmd.Flags().IntVar(&reportBench, "bench", 0, "Also send this many chart requests and print latency")
	reportCmd.Flags().IntVar(&reportConcurrency, "concurrency", 10, "Concurrent requests for --bench")
}
