package commands

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/rohitbhushankumariift2022-coder/easeTransfer/internal/bytesize"
	"github.com/rohitbhushankumariift2022-coder/easeTransfer/internal/cli/output"
	"github.com/rohitbhushankumariift2022-coder/easeTransfer/internal/cli/timeutil"
	"github.com/rohitbhushankumariift2022-coder/easeTransfer/pkg/apiclient"
	"github.com/spf13/cobra"
)

var (
	statusOutput  string
	statusPidFile string
	statusAPIPort int
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show hub status",
	Long: `Display the current status of the easeTransfer hub.

This command checks the hub health endpoint and shows uptime, the LAN
address devices should connect to, lifetime usage counters, and the
devices and files currently held in sessions.

Examples:
  # Check status (port read from config)
  easetransfer status

  # Check status with custom API port
  easetransfer status --api-port 8080

  # Output as JSON
  easetransfer status --output json`,
	RunE: runStatus,
}

func init() {
	statusCmd.Flags().StringVar(&statusPidFile, "pid-file", "", "Path to PID file (default: $XDG_STATE_HOME/easetransfer/easetransfer.pid)")
	statusCmd.Flags().IntVar(&statusAPIPort, "api-port", 0, "API server port (default: from config)")
	statusCmd.Flags().StringVarP(&statusOutput, "output", "o", "table", "Output format (table|json|yaml)")
}

// HubStatus represents the hub status information.
type HubStatus struct {
	Running   bool   `json:"running" yaml:"running"`
	PID       int    `json:"pid,omitempty" yaml:"pid,omitempty"`
	Message   string `json:"message" yaml:"message"`
	Version   string `json:"version,omitempty" yaml:"version,omitempty"`
	StartedAt string `json:"started_at,omitempty" yaml:"started_at,omitempty"`
	Uptime    string `json:"uptime,omitempty" yaml:"uptime,omitempty"`
	Healthy   bool   `json:"healthy" yaml:"healthy"`

	Info    *apiclient.HubInfo     `json:"info,omitempty" yaml:"info,omitempty"`
	Stats   *apiclient.Stats       `json:"stats,omitempty" yaml:"stats,omitempty"`
	Devices []apiclient.DeviceInfo `json:"devices,omitempty" yaml:"devices,omitempty"`
	Files   []apiclient.FileInfo   `json:"files,omitempty" yaml:"files,omitempty"`
}

// healthPayload mirrors the hub's /health liveness response.
type healthPayload struct {
	Status string `json:"status"`
	Data   struct {
		Version   string `json:"version"`
		Uptime    string `json:"uptime"`
		StartedAt string `json:"started_at"`
	} `json:"data"`
	Error string `json:"error,omitempty"`
}

func runStatus(cmd *cobra.Command, args []string) error {
	format, err := output.ParseFormat(statusOutput)
	if err != nil {
		return err
	}

	status := HubStatus{
		Running: false,
		Healthy: false,
		Message: "Hub is not running",
	}

	// Use default PID file if not specified
	pidPath := statusPidFile
	if pidPath == "" {
		pidPath = GetDefaultPidFile()
	}

	// Check PID file first
	if pid, err := readPidFile(pidPath); err == nil && processAlive(pid) {
		status.Running = true
		status.PID = pid
	}

	// Check health endpoint (works for both daemon and foreground mode)
	baseURL := fmt.Sprintf("http://localhost:%d", resolveAPIPort(statusAPIPort))
	httpClient := &http.Client{Timeout: 2 * time.Second}

	resp, err := httpClient.Get(baseURL + "/health")
	if err == nil {
		defer func() { _ = resp.Body.Close() }()

		var healthResp healthPayload
		if err := json.NewDecoder(resp.Body).Decode(&healthResp); err == nil {
			status.Running = true
			status.Healthy = healthResp.Status == "healthy"
			status.Version = healthResp.Data.Version
			status.StartedAt = healthResp.Data.StartedAt
			status.Uptime = healthResp.Data.Uptime
			if status.Healthy {
				status.Message = "Hub is running and healthy"
			} else {
				status.Message = fmt.Sprintf("Hub is running but unhealthy: %s", healthResp.Error)
			}
		} else {
			status.Running = true
			status.Message = "Hub is running but health response invalid"
		}
	} else if status.Running {
		// PID file says running but health check failed
		status.Message = "Hub process exists but health check failed"
	}

	// Fetch the richer sections over the typed client; each is optional
	// and failures leave its section empty rather than failing status.
	if status.Running {
		client := apiclient.New(baseURL).WithTimeout(2 * time.Second)
		status.Info, _ = client.Info()
		status.Stats, _ = client.Stats()
		status.Devices, _ = client.Devices()
		status.Files, _ = client.Files()
	}

	switch format {
	case output.FormatJSON:
		return output.PrintJSON(os.Stdout, status)
	case output.FormatYAML:
		return output.PrintYAML(os.Stdout, status)
	default:
		printStatusTable(status)
	}

	return nil
}

func printStatusTable(status HubStatus) {
	fmt.Println()
	fmt.Println("easeTransfer Hub Status")
	fmt.Println("=======================")
	fmt.Println()

	if status.Running {
		if status.Healthy {
			fmt.Printf("  Status:     \033[32m● Running\033[0m\n")
		} else {
			fmt.Printf("  Status:     \033[33m● Running (unhealthy)\033[0m\n")
		}
		if status.PID != 0 {
			fmt.Printf("  PID:        %d\n", status.PID)
		}
		if status.Version != "" {
			fmt.Printf("  Version:    %s\n", status.Version)
		}
		if status.StartedAt != "" {
			fmt.Printf("  Started:    %s\n", timeutil.Local(status.StartedAt))
		}
		if status.Uptime != "" {
			fmt.Printf("  Uptime:     %s\n", timeutil.Uptime(status.Uptime))
		}
	} else {
		fmt.Printf("  Status:     \033[31m○ Stopped\033[0m\n")
	}

	fmt.Println()
	fmt.Printf("  %s\n", status.Message)
	fmt.Println()

	if status.Info != nil {
		fmt.Println("Connection")
		_ = output.KeyValues(os.Stdout, [][2]string{
			{"  URL", status.Info.URL},
			{"  Devices connected", strconv.Itoa(status.Info.ConnectedDevices)},
		})
		fmt.Println()
	}

	if status.Stats != nil {
		fmt.Println("Lifetime usage")
		_ = output.KeyValues(os.Stdout, [][2]string{
			{"  Sessions created", strconv.FormatInt(status.Stats.TotalSessions, 10)},
			{"  Devices served", strconv.FormatInt(status.Stats.TotalUsers, 10)},
		})
		fmt.Println()
	}

	if len(status.Devices) > 0 {
		fmt.Println("Devices")
		devices := output.NewListing("NAME", "TYPE", "IN SESSION", "CONNECTED")
		for _, d := range status.Devices {
			inSession := "no"
			if d.InSession {
				inSession = "yes"
			}
			devices.AddRow(d.Name, d.Type, inSession, timeutil.Ago(d.ConnectedAt))
		}
		_ = devices.Render(os.Stdout)
		fmt.Println()
	}

	if len(status.Files) > 0 {
		fmt.Println("Buffered files")
		files := output.NewListing("NAME", "SIZE", "TYPE", "UPLOADED")
		for _, f := range status.Files {
			files.AddRow(f.OriginalName, bytesize.Format(f.Size), f.Mimetype,
				timeutil.Ago(f.UploadedAt))
		}
		_ = files.Render(os.Stdout)
		fmt.Println()
	}
}
