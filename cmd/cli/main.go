package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var (
	serverURL    string
	serverBinary string
	noAutoStart  bool
	rootCmd      = &cobra.Command{
		Use:   "downly",
		Short: "Downly CLI - Download videos and audio from YouTube",
		Long:  `A command-line interface for downloading YouTube videos and audio via yt-dlp and ffmpeg.`,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "http://localhost:8093", "Server URL")
	rootCmd.PersistentFlags().StringVar(&serverBinary, "server-bin", "", "Path to the downly-server binary for auto-start")
	rootCmd.PersistentFlags().BoolVar(&noAutoStart, "no-auto-start", false, "Don't auto-start server if not running")

	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(cancelCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(getCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(presetsCmd)
}

// ensureServer checks if server is running and starts it if needed (unless --no-auto-start)
func ensureServer() {
	if noAutoStart {
		return
	}
	if err := ensureServerRunning(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}
}

var addCmd = &cobra.Command{
	Use:   "add [url]",
	Short: "Start a download",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ensureServer()

		preset, _ := cmd.Flags().GetString("preset")
		format, _ := cmd.Flags().GetString("format")
		quality, _ := cmd.Flags().GetString("quality")
		audioQuality, _ := cmd.Flags().GetString("audio-quality")
		dir, _ := cmd.Flags().GetString("dir")
		filename, _ := cmd.Flags().GetString("filename")
		start, _ := cmd.Flags().GetString("start")
		end, _ := cmd.Flags().GetString("end")
		subs, _ := cmd.Flags().GetBool("subs")
		metadata, _ := cmd.Flags().GetBool("metadata")

		payload := map[string]interface{}{
			"url": args[0],
		}
		if preset != "" {
			payload["preset"] = preset
		}
		if format != "" {
			payload["format"] = format
		}
		if quality != "" {
			payload["video_quality"] = quality
		}
		if audioQuality != "" {
			payload["audio_quality"] = audioQuality
		}
		if dir != "" {
			payload["destination_dir"] = dir
		}
		if filename != "" {
			payload["filename"] = filename
		}
		if start != "" {
			payload["start_time"] = start
		}
		if end != "" {
			payload["end_time"] = end
		}
		if subs {
			payload["subtitles"] = true
		}
		if metadata {
			payload["metadata"] = true
		}

		data, _ := json.Marshal(payload)
		resp, err := http.Post(serverURL+"/api/v1/downloads", "application/json", bytes.NewBuffer(data))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer resp.Body.Close()

		body, _ := io.ReadAll(resp.Body)
		if resp.StatusCode != http.StatusCreated {
			printRequestError(resp.StatusCode, body)
			os.Exit(1)
		}

		var job struct {
			ID     string `json:"id"`
			URL    string `json:"url"`
			Format string `json:"format"`
			Status string `json:"status"`
		}
		if err := json.Unmarshal(body, &job); err != nil {
			fmt.Fprintf(os.Stderr, "Error parsing response: %v\n", err)
			os.Exit(1)
		}

		fmt.Printf("Download started\n")
		fmt.Printf("  ID:     %s\n", job.ID)
		fmt.Printf("  URL:    %s\n", job.URL)
		fmt.Printf("  Format: %s\n", job.Format)
	},
}

// printRequestError renders an API error body, listing validation
// violations individually when the server reports them
func printRequestError(statusCode int, body []byte) {
	var apiErr struct {
		Error      string   `json:"error"`
		Violations []string `json:"violations"`
		Tool       string   `json:"tool"`
	}
	if err := json.Unmarshal(body, &apiErr); err != nil || apiErr.Error == "" {
		fmt.Fprintf(os.Stderr, "Error (%d): %s\n", statusCode, string(body))
		return
	}

	if len(apiErr.Violations) > 0 {
		fmt.Fprintln(os.Stderr, "Invalid request:")
		for _, v := range apiErr.Violations {
			fmt.Fprintf(os.Stderr, "  - %s\n", v)
		}
		return
	}
	fmt.Fprintf(os.Stderr, "Error: %s\n", apiErr.Error)
}

func init() {
	addCmd.Flags().StringP("preset", "p", "", "Preset name (video-high, video-standard, video-low, audio-high, audio-standard, audio-low)")
	addCmd.Flags().StringP("format", "f", "", "Output format (mp4, webm, mkv, mp3, m4a)")
	addCmd.Flags().StringP("quality", "q", "", "Video quality (best, 1080p, 720p, 480p, 360p, 240p)")
	addCmd.Flags().String("audio-quality", "", "Audio quality (best, 256k, 192k, 128k, 64k)")
	addCmd.Flags().StringP("dir", "d", "", "Destination directory")
	addCmd.Flags().StringP("filename", "o", "", "Custom output filename (without extension)")
	addCmd.Flags().String("start", "", "Clip start time (HH:MM:SS, MM:SS or seconds)")
	addCmd.Flags().String("end", "", "Clip end time (HH:MM:SS, MM:SS or seconds)")
	addCmd.Flags().Bool("subs", false, "Embed subtitles")
	addCmd.Flags().Bool("metadata", false, "Embed metadata and thumbnail")
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the current download",
	Run: func(cmd *cobra.Command, args []string) {
		resp, err := http.Get(serverURL + "/api/v1/downloads/current")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer resp.Body.Close()

		var current struct {
			Running bool `json:"running"`
			Job     *struct {
				ID     string `json:"id"`
				URL    string `json:"url"`
				Format string `json:"format"`
				Status string `json:"status"`
			} `json:"job"`
			LastEvent *struct {
				Phase   string   `json:"phase"`
				Percent *float64 `json:"percent"`
				Speed   string   `json:"speed"`
				ETA     string   `json:"eta"`
			} `json:"last_event"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&current); err != nil {
			fmt.Fprintf(os.Stderr, "Error parsing response: %v\n", err)
			os.Exit(1)
		}

		if !current.Running {
			fmt.Println("No download in progress")
			return
		}

		fmt.Printf("Downloading %s\n", current.Job.URL)
		fmt.Printf("  ID:     %s\n", current.Job.ID)
		fmt.Printf("  Format: %s\n", current.Job.Format)
		if current.LastEvent != nil {
			line := fmt.Sprintf("  Phase:  %s", current.LastEvent.Phase)
			if current.LastEvent.Percent != nil {
				line += fmt.Sprintf(" %.1f%%", *current.LastEvent.Percent)
			}
			if current.LastEvent.Speed != "" {
				line += fmt.Sprintf(" at %s", current.LastEvent.Speed)
			}
			if current.LastEvent.ETA != "" {
				line += fmt.Sprintf(" ETA %s", current.LastEvent.ETA)
			}
			fmt.Println(line)
		}
	},
}

var cancelCmd = &cobra.Command{
	Use:   "cancel [id]",
	Short: "Cancel the current download",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		id := ""
		if len(args) > 0 {
			id = args[0]
		} else {
			// No ID given: cancel whatever is running
			resp, err := http.Get(serverURL + "/api/v1/downloads/current")
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}
			var current struct {
				Running bool `json:"running"`
				Job     *struct {
					ID string `json:"id"`
				} `json:"job"`
			}
			err = json.NewDecoder(resp.Body).Decode(&current)
			resp.Body.Close()
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error parsing response: %v\n", err)
				os.Exit(1)
			}
			if !current.Running {
				fmt.Println("No download in progress")
				return
			}
			id = current.Job.ID
		}

		resp, err := http.Post(serverURL+"/api/v1/downloads/"+id+"/cancel", "application/json", nil)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			body, _ := io.ReadAll(resp.Body)
			printRequestError(resp.StatusCode, body)
			os.Exit(1)
		}
		fmt.Printf("Cancellation requested for %s\n", id)
	},
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent downloads",
	Run: func(cmd *cobra.Command, args []string) {
		limit, _ := cmd.Flags().GetInt("limit")

		resp, err := http.Get(fmt.Sprintf("%s/api/v1/downloads?limit=%d", serverURL, limit))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer resp.Body.Close()

		var jobs []struct {
			ID     string `json:"id"`
			URL    string `json:"url"`
			Format string `json:"format"`
			Status string `json:"status"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&jobs); err != nil {
			fmt.Fprintf(os.Stderr, "Error parsing response: %v\n", err)
			os.Exit(1)
		}

		if len(jobs) == 0 {
			fmt.Println("No downloads yet")
			return
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tSTATUS\tFORMAT\tURL")
		for _, job := range jobs {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", job.ID, job.Status, job.Format, truncate(job.URL, 60))
		}
		w.Flush()
	},
}

func init() {
	listCmd.Flags().IntP("limit", "n", 20, "Maximum number of downloads to show")
}

var getCmd = &cobra.Command{
	Use:   "get [id]",
	Short: "Show details of a download",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		resp, err := http.Get(serverURL + "/api/v1/downloads/" + args[0])
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer resp.Body.Close()

		body, _ := io.ReadAll(resp.Body)
		if resp.StatusCode != http.StatusOK {
			printRequestError(resp.StatusCode, body)
			os.Exit(1)
		}

		var pretty bytes.Buffer
		if err := json.Indent(&pretty, body, "", "  "); err != nil {
			fmt.Println(string(body))
			return
		}
		fmt.Println(pretty.String())
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show download statistics",
	Run: func(cmd *cobra.Command, args []string) {
		resp, err := http.Get(serverURL + "/api/v1/downloads/stats")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer resp.Body.Close()

		var stats struct {
			Total     int64 `json:"total"`
			Completed int64 `json:"completed"`
			Failed    int64 `json:"failed"`
			Cancelled int64 `json:"cancelled"`
			Running   int64 `json:"running"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&stats); err != nil {
			fmt.Fprintf(os.Stderr, "Error parsing response: %v\n", err)
			os.Exit(1)
		}

		fmt.Printf("Total:     %d\n", stats.Total)
		fmt.Printf("Completed: %d\n", stats.Completed)
		fmt.Printf("Failed:    %d\n", stats.Failed)
		fmt.Printf("Cancelled: %d\n", stats.Cancelled)
		fmt.Printf("Running:   %d\n", stats.Running)
	},
}

var presetsCmd = &cobra.Command{
	Use:   "presets",
	Short: "List available download presets",
	Run: func(cmd *cobra.Command, args []string) {
		resp, err := http.Get(serverURL + "/api/v1/presets")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer resp.Body.Close()

		var presets []struct {
			Name         string `json:"name"`
			Format       string `json:"format"`
			VideoQuality string `json:"video_quality"`
			AudioQuality string `json:"audio_quality"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&presets); err != nil {
			fmt.Fprintf(os.Stderr, "Error parsing response: %v\n", err)
			os.Exit(1)
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "NAME\tFORMAT\tVIDEO\tAUDIO")
		for _, p := range presets {
			video := p.VideoQuality
			if video == "" {
				video = "-"
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", p.Name, p.Format, video, p.AudioQuality)
		}
		w.Flush()
	},
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
