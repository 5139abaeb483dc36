package feed

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	domainerrors "github.com/maksimkurb/keen-threatfeed/src/internal/errors"
	"github.com/maksimkurb/keen-threatfeed/src/internal/hashing"
	"github.com/maksimkurb/keen-threatfeed/src/internal/log"
	"github.com/maksimkurb/keen-threatfeed/src/internal/utils"
)

const (
	DefaultTimeout   = 10 * time.Second
	DefaultUserAgent = "keen-threatfeed/1.0"
)

// HTTPRemoteConfig configures HTTPRemote.
type HTTPRemoteConfig struct {
	FeedURL    string
	ProbeURL   string
	OutputPath string
	// Timeout bounds each request. Zero means DefaultTimeout.
	Timeout time.Duration
	// Client overrides the HTTP client; its Timeout is left untouched.
	Client    *http.Client
	UserAgent string
}

// HTTPRemote implements Remote over HTTP(S).
type HTTPRemote struct {
	client     *http.Client
	feedURL    string
	probeURL   string
	outputPath string
	userAgent  string
}

func NewHTTPRemote(cfg HTTPRemoteConfig) *HTTPRemote {
	client := cfg.Client
	if client == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		client = &http.Client{Timeout: timeout}
	}
	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	return &HTTPRemote{
		client:     client,
		feedURL:    cfg.FeedURL,
		probeURL:   cfg.ProbeURL,
		outputPath: cfg.OutputPath,
		userAgent:  userAgent,
	}
}

func (r *HTTPRemote) FeedURL() string {
	return r.feedURL
}

func (r *HTTPRemote) ProbeURL() string {
	return r.probeURL
}

func (r *HTTPRemote) OutputPath() string {
	return r.outputPath
}

func (r *HTTPRemote) CheckConnectivity(ctx context.Context) error {
	resp, err := r.do(ctx, http.MethodGet, r.probeURL)
	if err != nil {
		return domainerrors.NewConnectivityError(fmt.Sprintf("failed to reach %s", r.probeURL), err)
	}
	defer utils.CloseOrWarn(resp.Body)

	if resp.StatusCode >= http.StatusBadRequest {
		return domainerrors.NewConnectivityError(fmt.Sprintf("%s answered %s", r.probeURL, resp.Status), nil)
	}
	return nil
}

func (r *HTTPRemote) FetchValidator(ctx context.Context) (string, bool) {
	etag, err := r.fetchValidator(ctx)
	if err != nil {
		log.Debugf("ETag of %s is unavailable: %v", r.feedURL, err)
		return "", false
	}
	return etag, true
}

func (r *HTTPRemote) fetchValidator(ctx context.Context) (string, error) {
	resp, err := r.do(ctx, http.MethodHead, r.feedURL)
	if err != nil {
		return "", domainerrors.NewValidatorError("HEAD request failed", err)
	}
	utils.CloseOrWarn(resp.Body)

	if resp.StatusCode == http.StatusMethodNotAllowed || resp.StatusCode == http.StatusNotImplemented {
		// The body is never read, only the headers are needed.
		resp, err = r.do(ctx, http.MethodGet, r.feedURL)
		if err != nil {
			return "", domainerrors.NewValidatorError("GET request failed", err)
		}
		utils.CloseOrWarn(resp.Body)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		return "", domainerrors.NewValidatorError(fmt.Sprintf("unexpected status %s", resp.Status), nil)
	}

	etag := resp.Header.Get("ETag")
	if etag == "" {
		return "", domainerrors.NewValidatorError("response has no ETag header", nil)
	}
	return etag, nil
}

func (r *HTTPRemote) Download(ctx context.Context) error {
	log.Infof("Downloading feed from URL: %s", r.feedURL)

	resp, err := r.do(ctx, http.MethodGet, r.feedURL)
	if err != nil {
		return domainerrors.NewDownloadError("failed to download feed", err)
	}
	defer utils.CloseOrWarn(resp.Body)

	if resp.StatusCode != http.StatusOK {
		return domainerrors.NewDownloadError(fmt.Sprintf("failed to download feed: %s", resp.Status), nil)
	}

	bodyProxy := hashing.NewMD5ReaderProxy(resp.Body)
	content, err := io.ReadAll(bodyProxy)
	if err != nil {
		return domainerrors.NewDownloadError("failed to read feed response", err)
	}

	if changed, err := IsFileChanged(bodyProxy, r.outputPath); err != nil {
		log.Errorf("Failed to calculate feed checksum: %v", err)
	} else if !changed {
		log.Infof("Feed content is not changed, skipping write to disk")
		return nil
	}

	if err := utils.WriteFileAtomic(r.outputPath, bytes.NewReader(content), 0644); err != nil {
		return domainerrors.NewDownloadError("failed to write feed file", err)
	}
	if err := WriteChecksum(bodyProxy, r.outputPath); err != nil {
		return domainerrors.NewDownloadError("failed to write feed checksum", err)
	}

	log.Infof("Feed downloaded successfully to %s (%d bytes)", r.outputPath, bodyProxy.Size())
	return nil
}

func (r *HTTPRemote) do(ctx context.Context, method, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", r.userAgent)
	return r.client.Do(req)
}
