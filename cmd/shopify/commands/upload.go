package commands

import (
	"context"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/lastseal/micro-shopify/pkg/shopify"
)

// NewUploadCommand creates the upload command
func NewUploadCommand() *cobra.Command {
	var (
		name     string
		mimeType string
		alt      string
		timeout  time.Duration
	)

	cmd := &cobra.Command{
		Use:   "upload PATH",
		Short: "Upload a file",
		Long: `Upload a local file to the shop's files through a staged upload.

The command waits until the file is processed. Failed processing is reported
with the file errors returned by the API.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			upload, err := loadUpload(args[0], name, mimeType, alt)
			if err != nil {
				return err
			}

			client, err := createClient(cmd)
			if err != nil {
				return err
			}

			ctx := commandContext(cmd)
			if timeout > 0 {
				var cancel context.CancelFunc

				ctx, cancel = context.WithTimeout(ctx, timeout)
				defer cancel()
			}

			file, err := client.Files().Upload(ctx, upload)
			if err != nil {
				return fmt.Errorf("failed to upload %s: %w", args[0], err)
			}

			return printProperties(cmd.OutOrStdout(), file, [][2]string{
				{"ID", file.ID},
				{"Status", string(file.Status)},
				{"URL", file.URL},
			})
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "file name sent to the shop (default: base name of PATH)")
	cmd.Flags().StringVar(&mimeType, "mime-type", "", "MIME type (default: guessed from the extension)")
	cmd.Flags().StringVar(&alt, "alt", "", "alternative text")
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "give up after this long (0 waits forever)")

	return cmd
}

func loadUpload(path, name, mimeType, alt string) (*shopify.FileUpload, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	if name == "" {
		name = filepath.Base(path)
	}

	if mimeType == "" {
		mimeType = mime.TypeByExtension(filepath.Ext(name))
	}

	if mimeType == "" {
		mimeType = "application/octet-stream"
	}

	return &shopify.FileUpload{
		Filename: name,
		MimeType: mimeType,
		Content:  content,
		Alt:      alt,
	}, nil
}
