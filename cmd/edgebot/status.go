package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/teslashibe/go-edgebot/internal/httpc"
	"github.com/teslashibe/go-edgebot/pkg/web"
)

var statusCmd = &cobra.Command{
	Use:   "status <addr|url>",
	Short: "Show the status of a running edgebot",
	Long: `Fetch /api/status from a running edgebot dashboard.

Examples:
  edgebot status localhost:8080`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var st web.Status
		url := statusURL(args[0])
		if err := httpc.GetJSON(cmd.Context(), url, &st); err != nil {
			return fmt.Errorf("get %s: %w", url, err)
		}
		printStatus(cmd, st)
		return nil
	},
}

func statusURL(arg string) string {
	if !strings.HasPrefix(arg, "http://") && !strings.HasPrefix(arg, "https://") {
		arg = "http://" + arg
	}
	return strings.TrimSuffix(arg, "/") + "/api/status"
}

func printStatus(cmd *cobra.Command, st web.Status) {
	cmd.Printf("mode %s, run %s, up %.0fs\n", st.Mode, st.RunID, st.UptimeS)
	if st.Baseline != nil {
		cmd.Printf("baseline left=%d right=%d\n", st.Baseline.Left, st.Baseline.Right)
	} else {
		cmd.Println("not calibrated")
	}
	if st.Frame != nil {
		cmd.Println(formatFrame(*st.Frame))
	}
	cmd.Printf("frames sent %d, throttled %d, clients %d\n", st.Sent, st.Throttled, st.Hub.Clients)
}
