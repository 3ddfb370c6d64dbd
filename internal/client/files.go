package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/textproto"
	"strconv"

	"github.com/lastseal/micro-shopify/internal/constants"
	"github.com/lastseal/micro-shopify/internal/logging"
	"github.com/lastseal/micro-shopify/internal/retry"
	"github.com/lastseal/micro-shopify/pkg/shopify"
)

// FilesClient implements shopify.FilesClient.
type FilesClient struct {
	client *Client
}

type stagedUploadsCreateData struct {
	StagedUploadsCreate struct {
		StagedTargets []shopify.StagedTarget `json:"stagedTargets"`
		UserErrors    []userError            `json:"userErrors"`
	} `json:"stagedUploadsCreate"`
}

type fileCreateData struct {
	FileCreate struct {
		Files []struct {
			ID         string `json:"id"`
			FileStatus string `json:"fileStatus"`
		} `json:"files"`
		UserErrors []userError `json:"userErrors"`
	} `json:"fileCreate"`
}

// Upload implements shopify.FilesClient.Upload.
func (f *FilesClient) Upload(ctx context.Context, upload *shopify.FileUpload) (*shopify.File, error) {
	err := validateUpload(upload)
	if err != nil {
		return nil, err
	}

	ctx = logging.WithOperation(ctx, "files.upload", map[string]interface{}{"filename": upload.Filename})

	target, err := f.StageUpload(ctx, upload)
	if err != nil {
		return nil, err
	}

	err = f.TransferFile(ctx, target, upload)
	if err != nil {
		return nil, err
	}

	id, err := f.CreateFile(ctx, target, upload)
	if err != nil {
		return nil, err
	}

	file, err := f.WaitForFile(ctx, id)
	if err != nil {
		return nil, err
	}

	f.client.logger.Info("File uploaded", logging.Fields(ctx, map[string]interface{}{
		"file_id": file.ID,
		"url":     file.URL,
	}))

	return file, nil
}

// StageUpload implements shopify.FilesClient.StageUpload.
func (f *FilesClient) StageUpload(ctx context.Context, upload *shopify.FileUpload) (*shopify.StagedTarget, error) {
	err := validateUpload(upload)
	if err != nil {
		return nil, err
	}

	variables := map[string]interface{}{
		"input": []map[string]interface{}{{
			"filename":   upload.Filename,
			"mimeType":   upload.MimeType,
			"resource":   upload.StagedResource(),
			"httpMethod": constants.StagedHTTPMethod,
			"fileSize":   strconv.Itoa(len(upload.Content)),
		}},
	}

	target, err := retry.Do(ctx, f.client.uploadRetrier, "files.stage", func(ctx context.Context) (*shopify.StagedTarget, error) {
		data, err := f.client.graphql.execute(ctx, constants.StagedUploadsCreateMutation, variables)
		if err != nil {
			return nil, err
		}

		var result stagedUploadsCreateData

		err = json.Unmarshal(data, &result)
		if err != nil {
			return nil, fmt.Errorf("parsing staged upload: %w", err)
		}

		err = checkUserErrors(result.StagedUploadsCreate.UserErrors)
		if err != nil {
			return nil, err
		}

		if len(result.StagedUploadsCreate.StagedTargets) == 0 {
			return nil, shopify.ErrNoStagedTarget
		}

		return &result.StagedUploadsCreate.StagedTargets[0], nil
	})
	if err != nil {
		return nil, fmt.Errorf("staging upload of %s: %w", upload.Filename, err)
	}

	f.client.logger.Debug("Upload staged", logging.Fields(ctx, map[string]interface{}{
		"url":          target.URL,
		"resource_url": target.ResourceURL,
		"parameters":   len(target.Parameters),
	}))

	return target, nil
}

// TransferFile implements shopify.FilesClient.TransferFile. The form carries
// every target parameter in order followed by the file part.
func (f *FilesClient) TransferFile(ctx context.Context, target *shopify.StagedTarget, upload *shopify.FileUpload) error {
	err := validateUpload(upload)
	if err != nil {
		return err
	}

	if target == nil || target.URL == "" {
		return shopify.ErrNoStagedTarget
	}

	body, contentType, err := buildUploadForm(target, upload)
	if err != nil {
		return fmt.Errorf("building upload form: %w", err)
	}

	f.client.logger.Debug("Transferring file", logging.Fields(ctx, map[string]interface{}{
		"url":  target.URL,
		"size": len(upload.Content),
	}))

	err = retry.Run(ctx, f.client.uploadRetrier, "files.transfer", func(ctx context.Context) error {
		_, err := f.client.transferClient.PostRaw(ctx, target.URL, body, contentType)

		return err
	})
	if err != nil {
		return fmt.Errorf("transferring %s: %w", upload.Filename, err)
	}

	return nil
}

// CreateFile implements shopify.FilesClient.CreateFile.
func (f *FilesClient) CreateFile(ctx context.Context, target *shopify.StagedTarget, upload *shopify.FileUpload) (string, error) {
	err := validateUpload(upload)
	if err != nil {
		return "", err
	}

	if target == nil || target.ResourceURL == "" {
		return "", shopify.ErrNoStagedTarget
	}

	input := map[string]interface{}{
		"originalSource": target.ResourceURL,
		"contentType":    upload.StagedResource(),
	}
	if upload.Alt != "" {
		input["alt"] = upload.Alt
	}

	variables := map[string]interface{}{"files": []map[string]interface{}{input}}

	id, err := retry.Do(ctx, f.client.uploadRetrier, "files.create", func(ctx context.Context) (string, error) {
		data, err := f.client.graphql.execute(ctx, constants.FileCreateMutation, variables)
		if err != nil {
			return "", err
		}

		var result fileCreateData

		err = json.Unmarshal(data, &result)
		if err != nil {
			return "", fmt.Errorf("parsing file create: %w", err)
		}

		err = checkUserErrors(result.FileCreate.UserErrors)
		if err != nil {
			return "", err
		}

		if len(result.FileCreate.Files) == 0 || result.FileCreate.Files[0].ID == "" {
			return "", shopify.ErrNoFileCreated
		}

		return result.FileCreate.Files[0].ID, nil
	})
	if err != nil {
		return "", fmt.Errorf("registering %s: %w", upload.Filename, err)
	}

	f.client.logger.Debug("File registered", logging.Fields(ctx, map[string]interface{}{
		"file_id": id,
	}))

	return id, nil
}

// WaitForFile implements shopify.FilesClient.WaitForFile.
func (f *FilesClient) WaitForFile(ctx context.Context, id string) (*shopify.File, error) {
	if id == "" {
		return nil, shopify.ErrIDRequired
	}

	config := f.client.config

	for polls := 1; ; polls++ {
		file, err := retry.Do(ctx, f.client.uploadRetrier, "files.poll", func(ctx context.Context) (*shopify.File, error) {
			return f.fetchFile(ctx, id)
		})
		if err != nil {
			return nil, fmt.Errorf("polling file %s: %w", id, err)
		}

		f.client.metrics.RecordFilePoll(string(file.Status))
		f.client.logger.Debug("File status", logging.Fields(ctx, map[string]interface{}{
			"file_id": id,
			"status":  string(file.Status),
			"poll":    polls,
		}))

		switch file.Status {
		case shopify.FileStatusReady:
			return file, nil
		case shopify.FileStatusFailed:
			return nil, &shopify.FileFailedError{ID: id, Node: file.Node}
		}

		if config.UploadMaxPolls > 0 && polls >= config.UploadMaxPolls {
			return file, fmt.Errorf("%w: %s is %s after %d polls", shopify.ErrPollLimitReached, id, file.Status, polls)
		}

		err = f.client.sleep(ctx, config.UploadPollInterval)
		if err != nil {
			return nil, fmt.Errorf("polling file %s: %w", id, err)
		}
	}
}

// fetchFile queries the node once.
func (f *FilesClient) fetchFile(ctx context.Context, id string) (*shopify.File, error) {
	data, err := f.client.graphql.execute(ctx, constants.FileNodeQuery, map[string]interface{}{"id": id})
	if err != nil {
		return nil, err
	}

	payload, err := decodeData(data)
	if err != nil {
		return nil, err
	}

	node, ok := payload["node"].(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("%w: %s", shopify.ErrNodeNotFound, id)
	}

	status, _ := node["fileStatus"].(string)

	return &shopify.File{
		ID:     id,
		Status: shopify.FileStatus(status),
		URL:    fileURL(node),
		Node:   node,
	}, nil
}

// fileURL returns the final URL of a generic file, image or video node.
func fileURL(node map[string]interface{}) string {
	if url, ok := node["url"].(string); ok && url != "" {
		return url
	}

	for _, key := range []string{"image", "originalSource"} {
		nested, ok := node[key].(map[string]interface{})
		if !ok {
			continue
		}

		if url, ok := nested["url"].(string); ok && url != "" {
			return url
		}
	}

	return ""
}

func buildUploadForm(target *shopify.StagedTarget, upload *shopify.FileUpload) ([]byte, string, error) {
	var buf bytes.Buffer

	writer := multipart.NewWriter(&buf)

	for _, param := range target.Parameters {
		err := writer.WriteField(param.Name, param.Value)
		if err != nil {
			return nil, "", fmt.Errorf("writing field %s: %w", param.Name, err)
		}
	}

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, constants.UploadFileField, upload.Filename))

	mimeType := upload.MimeType
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}

	header.Set("Content-Type", mimeType)

	part, err := writer.CreatePart(header)
	if err != nil {
		return nil, "", fmt.Errorf("creating form file: %w", err)
	}

	_, err = part.Write(upload.Content)
	if err != nil {
		return nil, "", fmt.Errorf("writing file to form: %w", err)
	}

	err = writer.Close()
	if err != nil {
		return nil, "", fmt.Errorf("closing multipart writer: %w", err)
	}

	return buf.Bytes(), writer.FormDataContentType(), nil
}

func validateUpload(upload *shopify.FileUpload) error {
	if upload == nil || upload.Filename == "" {
		return shopify.ErrUploadRequired
	}

	return nil
}
