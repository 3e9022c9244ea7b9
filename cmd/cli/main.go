package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/yourusername/clipnest-go/internal/domain"
)

var (
	serverURL   string
	configFile  string
	noAutoStart bool
	rootCmd     = &cobra.Command{
		Use:   "clipnest",
		Short: "ClipNest CLI - fetch Instagram, Facebook and YouTube media",
		Long:  `A command-line client for the ClipNest media gateway.`,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "http://localhost:5000", "Server URL")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Config file passed to an auto-started server")
	rootCmd.PersistentFlags().BoolVar(&noAutoStart, "no-auto-start", false, "Don't auto-start server if not running")

	rootCmd.AddCommand(metadataCmd)
	rootCmd.AddCommand(downloadCmd)
	rootCmd.AddCommand(getCmd)
	rootCmd.AddCommand(healthCmd)
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

var metadataCmd = &cobra.Command{
	Use:   "metadata [platform] [url]",
	Short: "Show metadata for a post or video",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ensureServer()
		contentType, _ := cmd.Flags().GetString("type")

		record, err := fetchMetadata(args[0], args[1], contentType)
		if err != nil {
			return err
		}
		printMetadata(record)
		return nil
	},
}

var downloadCmd = &cobra.Command{
	Use:   "download [download_url | platform id type]",
	Short: "Download media by download reference",
	Args: func(cmd *cobra.Command, args []string) error {
		if len(args) != 1 && len(args) != 3 {
			return fmt.Errorf("expected a download reference or platform, id and type")
		}
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		ensureServer()
		quality, _ := cmd.Flags().GetString("quality")
		outDir, _ := cmd.Flags().GetString("output")

		ref, err := parseDownloadArgs(args)
		if err != nil {
			return err
		}
		path, err := downloadFile(ref.DownloadReference(), quality, outDir)
		if err != nil {
			return err
		}
		fmt.Printf("Saved %s\n", path)
		return nil
	},
}

var getCmd = &cobra.Command{
	Use:   "get [platform] [url]",
	Short: "Fetch metadata and download in one step",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ensureServer()
		contentType, _ := cmd.Flags().GetString("type")
		quality, _ := cmd.Flags().GetString("quality")
		outDir, _ := cmd.Flags().GetString("output")

		record, err := fetchMetadata(args[0], args[1], contentType)
		if err != nil {
			return err
		}
		printMetadata(record)

		path, err := downloadFile(record.DownloadURL, quality, outDir)
		if err != nil {
			return err
		}
		fmt.Printf("Saved %s\n", path)
		return nil
	},
}

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check server health",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := checkHealth(http.DefaultClient, serverURL); err != nil {
			return err
		}
		fmt.Printf("%s is %s\n", serverURL, healthyStatus)
		return nil
	},
}

func init() {
	metadataCmd.Flags().StringP("type", "t", "", "Content type (Photo, Reel, Video); inferred when empty")
	getCmd.Flags().StringP("type", "t", "", "Content type (Photo, Reel, Video); inferred when empty")
	for _, c := range []*cobra.Command{downloadCmd, getCmd} {
		c.Flags().StringP("quality", "q", "", "Video quality, e.g. 720p")
		c.Flags().StringP("output", "o", ".", "Output directory")
	}
}

// fetchMetadata posts a metadata request and decodes the record
func fetchMetadata(platform, rawURL, contentType string) (*domain.MetadataRecord, error) {
	p, err := domain.ParsePlatform(platform)
	if err != nil {
		return nil, err
	}

	payload := map[string]string{"url": rawURL}
	if contentType != "" {
		payload["contentType"] = contentType
	}
	data, _ := json.Marshal(payload)

	resp, err := http.Post(fmt.Sprintf("%s/api/%s/metadata", serverURL, p), "application/json", bytes.NewBuffer(data))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return nil, apiError(resp.StatusCode, body)
	}

	var record domain.MetadataRecord
	if err := json.Unmarshal(body, &record); err != nil {
		return nil, fmt.Errorf("failed to decode metadata: %w", err)
	}
	return &record, nil
}

// downloadFile fetches a download reference and saves it under outDir using
// the server-suggested filename
func downloadFile(reference, quality, outDir string) (string, error) {
	target := serverURL + reference
	if quality != "" {
		target += "?quality=" + url.QueryEscape(quality)
	}

	resp, err := http.Get(target)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", apiError(resp.StatusCode, body)
	}

	name := attachmentName(resp.Header.Get("Content-Disposition"))
	if name == "" {
		name = filepath.Base(reference)
	}
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	path := filepath.Join(outDir, name)
	out, err := os.Create(path)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(out, resp.Body); err != nil {
		out.Close()
		os.Remove(path)
		return "", fmt.Errorf("failed to save file: %w", err)
	}
	return path, out.Close()
}

// parseDownloadArgs accepts either a download reference or platform, id and type
func parseDownloadArgs(args []string) (domain.ContentReference, error) {
	if len(args) == 1 {
		return domain.ParseDownloadReference(args[0])
	}

	platform, err := domain.ParsePlatform(args[0])
	if err != nil {
		return domain.ContentReference{}, err
	}
	contentType, err := domain.ParseContentType(args[2])
	if err != nil || contentType == "" {
		return domain.ContentReference{}, fmt.Errorf("invalid content type: %s", args[2])
	}
	return domain.ContentReference{Platform: platform, Identifier: args[1], ContentType: contentType}, nil
}

// attachmentName extracts a safe filename from a Content-Disposition header
func attachmentName(header string) string {
	_, params, err := mime.ParseMediaType(header)
	if err != nil {
		return ""
	}
	name := filepath.Base(params["filename"])
	if name == "." || name == "/" || name == ".." {
		return ""
	}
	return name
}

// apiError turns an {"error": msg} body into an error
func apiError(status int, body []byte) error {
	var payload struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(body, &payload) == nil && payload.Error != "" {
		return fmt.Errorf("server returned %d: %s", status, payload.Error)
	}
	return fmt.Errorf("server returned %d: %s", status, strings.TrimSpace(string(body)))
}

func printMetadata(record *domain.MetadataRecord) {
	fmt.Printf("Type:        %s\n", record.Type)
	fmt.Printf("Description: %s\n", truncate(record.Description, 80))
	fmt.Printf("Thumbnail:   %s\n", record.Thumbnail)
	if record.Duration != nil {
		if record.Duration.Valid {
			fmt.Printf("Duration:    %ds\n", record.Duration.Seconds)
		} else {
			fmt.Printf("Duration:    N/A\n")
		}
	}
	if len(record.Qualities) > 0 {
		fmt.Printf("Qualities:   %s\n", strings.Join(record.Qualities, ", "))
	}
	fmt.Printf("Download:    %s\n", record.DownloadURL)
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
