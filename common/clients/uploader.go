package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"time"
)

// Logger interface for client logging
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
	Debug(msg string, keysAndValues ...interface{})
}

// DefaultChunkSize matches the server's expected chunk size
const DefaultChunkSize = int64(5 * 1024 * 1024)

// DefaultDirectThreshold is the size under which a single PUT is used
// instead of the chunk protocol
const DefaultDirectThreshold = int64(10 * 1024 * 1024)

// UploaderClient talks to the assetd upload API. It registers the upload,
// then streams the payload either in one PUT or as sequential chunks.
type UploaderClient struct {
	baseURL         string
	adminToken      string
	chunkSize       int64
	directThreshold int64
	http            *http.Client
	logger          Logger
}

// NewUploaderClient creates a new uploader client
func NewUploaderClient(baseURL, adminToken string, logger Logger) *UploaderClient {
	return &UploaderClient{
		baseURL:         baseURL,
		adminToken:      adminToken,
		chunkSize:       DefaultChunkSize,
		directThreshold: DefaultDirectThreshold,
		http: &http.Client{
			Timeout: 5 * time.Minute,
		},
		logger: logger,
	}
}

// PresignResult is the server's answer to an upload registration
type PresignResult struct {
	AssetID    string `json:"assetId"`
	UploadURL  string `json:"uploadUrl"`
	StorageKey string `json:"storageKey"`
	CDNUrl     string `json:"cdnUrl"`
}

// UploadResult reports where the finished asset landed
type UploadResult struct {
	AssetID string
	URL     string
	Size    int64
}

// Upload pushes size bytes from r to the server as fileName.
// Small non-video payloads take the direct PUT path; everything else is
// split into chunks and sent in order, one request per chunk.
func (c *UploaderClient) Upload(ctx context.Context, r io.Reader, fileName, mimeType, category string, size int64) (*UploadResult, error) {
	presign, err := c.Presign(ctx, fileName, mimeType, category, size)
	if err != nil {
		return nil, err
	}

	c.logger.Info("upload registered", "asset_id", presign.AssetID, "file", fileName, "size", size)

	if size < c.directThreshold && category != "video" {
		return c.uploadDirect(ctx, presign, r, size)
	}
	return c.uploadChunked(ctx, presign, r, fileName, size)
}

// Presign registers an upload and returns the allocated asset id
func (c *UploaderClient) Presign(ctx context.Context, fileName, mimeType, category string, size int64) (*PresignResult, error) {
	body, err := json.Marshal(map[string]interface{}{
		"fileName": fileName,
		"mimeType": mimeType,
		"category": category,
		"fileSize": size,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode presign request: %w", err)
	}

	url := fmt.Sprintf("%s/api/admin/assets/presign", c.baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	c.setAuth(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("presign request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("presign failed: status=%d, body=%s", resp.StatusCode, string(respBody))
	}

	var result PresignResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode presign response: %w", err)
	}
	return &result, nil
}

// ChunkCount returns how many chunks a payload of size bytes needs
func (c *UploaderClient) ChunkCount(size int64) int {
	if size <= 0 {
		return 1
	}
	return int((size + c.chunkSize - 1) / c.chunkSize)
}

func (c *UploaderClient) uploadDirect(ctx context.Context, presign *PresignResult, r io.Reader, size int64) (*UploadResult, error) {
	url := c.baseURL + presign.UploadURL
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, r)
	if err != nil {
		return nil, err
	}
	req.ContentLength = size
	req.Header.Set("Content-Type", "application/octet-stream")
	c.setAuth(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("direct upload failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("direct upload failed: status=%d, body=%s", resp.StatusCode, string(respBody))
	}

	var result struct {
		URL  string `json:"url"`
		Size int64  `json:"size"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode upload response: %w", err)
	}

	return &UploadResult{AssetID: presign.AssetID, URL: result.URL, Size: result.Size}, nil
}

func (c *UploaderClient) uploadChunked(ctx context.Context, presign *PresignResult, r io.Reader, fileName string, size int64) (*UploadResult, error) {
	totalChunks := c.ChunkCount(size)
	buf := make([]byte, c.chunkSize)

	var final *UploadResult
	for index := 0; index < totalChunks; index++ {
		n, err := io.ReadFull(r, buf)
		if err == io.ErrUnexpectedEOF || err == io.EOF {
			if n == 0 && index < totalChunks-1 {
				return nil, fmt.Errorf("payload ended early: chunk %d of %d", index, totalChunks)
			}
		} else if err != nil {
			return nil, fmt.Errorf("failed to read chunk %d: %w", index, err)
		}

		result, err := c.sendChunk(ctx, presign.AssetID, fileName, index, totalChunks, buf[:n])
		if err != nil {
			return nil, err
		}

		c.logger.Debug("chunk accepted", "asset_id", presign.AssetID, "chunk", index, "total", totalChunks)

		if result.Complete {
			final = &UploadResult{AssetID: presign.AssetID, URL: result.URL, Size: result.Size}
		}
	}

	if final == nil {
		return nil, fmt.Errorf("server never reported completion for asset %s", presign.AssetID)
	}
	return final, nil
}

func (c *UploaderClient) sendChunk(ctx context.Context, assetID, fileName string, index, total int, payload []byte) (*chunkResponse, error) {
	var body bytes.Buffer
	w := multipart.NewWriter(&body)

	part, err := w.CreateFormFile("chunk", fmt.Sprintf("%s.part%d", fileName, index))
	if err != nil {
		return nil, err
	}
	if _, err := part.Write(payload); err != nil {
		return nil, err
	}

	fields := map[string]string{
		"assetId":     assetID,
		"fileName":    fileName,
		"chunkIndex":  strconv.Itoa(index),
		"totalChunks": strconv.Itoa(total),
	}
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			return nil, err
		}
	}
	if err := w.Close(); err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/api/admin/assets/upload-chunk", c.baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	c.setAuth(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("chunk %d upload failed: %w", index, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("chunk %d rejected: status=%d, body=%s", index, resp.StatusCode, string(respBody))
	}

	var result chunkResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode chunk response: %w", err)
	}
	return &result, nil
}

type chunkResponse struct {
	Success    bool   `json:"success"`
	Complete   bool   `json:"complete"`
	ChunkIndex int    `json:"chunkIndex"`
	URL        string `json:"url,omitempty"`
	Size       int64  `json:"size,omitempty"`
}

func (c *UploaderClient) setAuth(req *http.Request) {
	if c.adminToken != "" {
		req.Header.Set("X-Admin-Token", c.adminToken)
	}
}
