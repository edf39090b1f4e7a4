package main

import (
	"fmt"
	"strings"

	"github.com/gorilla/websocket"
	"github.com/spf13/cobra"

	"github.com/teslashibe/go-edgebot/pkg/telemetry"
)

var watchCount int

var watchCmd = &cobra.Command{
	Use:   "watch <addr|url>",
	Short: "Print live telemetry from a running edgebot",
	Long: `Connect to the telemetry websocket of a running edgebot and print one
line per frame.

Examples:
  edgebot watch localhost:8080
  edgebot watch ws://robot.local:8080/ws/telemetry --count 50`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().IntVarP(&watchCount, "count", "n", 0, "exit after n frames (0 = until interrupted)")
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	url := watchURL(args[0])

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return fmt.Errorf("dial %s: %w", url, err)
	}
	defer conn.Close()

	go func() {
		<-ctx.Done()
		conn.Close()
	}()

	out := cmd.OutOrStdout()
	for n := 0; watchCount == 0 || n < watchCount; n++ {
		var f telemetry.Frame
		if err := conn.ReadJSON(&f); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("read frame: %w", err)
		}
		fmt.Fprintln(out, formatFrame(f))
	}
	return nil
}

// watchURL accepts host:port or a full websocket URL.
func watchURL(arg string) string {
	if strings.HasPrefix(arg, "ws://") || strings.HasPrefix(arg, "wss://") {
		return arg
	}
	arg = strings.TrimPrefix(arg, "http://")
	return "ws://" + strings.TrimSuffix(arg, "/") + "/ws/telemetry"
}

func formatFrame(f telemetry.Frame) string {
	var b strings.Builder
	fmt.Fprintf(&b, "#%-6d %8dms %-10s L=%-5d R=%-5d %-13s cmd=%d/%d",
		f.Seq, f.TimeMS, f.StateName(), f.Sample.Left, f.Sample.Right, f.Reason,
		f.Command.Left, f.Command.Right)
	if f.BlackSide != nil {
		fmt.Fprintf(&b, " black=%s", *f.BlackSide)
	}
	if f.Memory.Active {
		fmt.Fprintf(&b, " mem=%s", f.Memory.Direction)
	}
	if f.Pose != nil {
		fmt.Fprintf(&b, " pose=(%.3f,%.3f,%.2f)", f.Pose.X, f.Pose.Y, f.Pose.Heading)
	}
	if f.Error != "" {
		fmt.Fprintf(&b, " err=%q", f.Error)
	}
	return b.String()
}
