// Package publisher posts tweets to the X API: v2 tweet creation with
// optional v1.1 media uploads, authenticated with OAuth 1.0a user
// context.
package publisher

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	defaultTweetURL  = "https://api.twitter.com/2/tweets"
	defaultUploadURL = "https://upload.twitter.com/1.1/media/upload.json"
)

type Publisher struct {
	signer     *oauth1Signer
	httpClient *http.Client
	tweetURL   string
	uploadURL  string
	log        *zap.Logger
}

func New(apiKey, apiSecret, accessToken, accessSecret string, timeout time.Duration, log *zap.Logger) *Publisher {
	return &Publisher{
		signer: newOAuth1Signer(apiKey, apiSecret, accessToken, accessSecret),
		httpClient: &http.Client{
			Timeout: timeout,
		},
		tweetURL:  defaultTweetURL,
		uploadURL: defaultUploadURL,
		log:       log,
	}
}

type tweetRequest struct {
	Text  string      `json:"text"`
	Media *tweetMedia `json:"media,omitempty"`
}

type tweetMedia struct {
	MediaIDs []string `json:"media_ids"`
}

// Publish uploads any staged media, then creates the tweet. A non-2xx
// response comes back as a *PublishError with a classified kind.
func (p *Publisher) Publish(ctx context.Context, text string, mediaPaths []string) error {
	var mediaIDs []string
	for _, path := range mediaPaths {
		id, err := p.uploadMedia(ctx, path)
		if err != nil {
			return fmt.Errorf("media upload %s: %w", filepath.Base(path), err)
		}
		p.log.Info("media uploaded", zap.String("media_id", id))
		mediaIDs = append(mediaIDs, id)
	}

	reqBody := tweetRequest{Text: text}
	if len(mediaIDs) > 0 {
		reqBody.Media = &tweetMedia{MediaIDs: mediaIDs}
	}
	body, err := json.Marshal(reqBody)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.tweetURL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	auth, err := p.signer.authorizationHeader(http.MethodPost, p.tweetURL, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", auth)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("x api unavailable: %w", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return classify(resp.StatusCode, string(respBody))
	}

	p.log.Info("tweet posted", zap.Int("media_count", len(mediaIDs)))
	return nil
}

type uploadResponse struct {
	MediaIDString string `json:"media_id_string"`
}

func (p *Publisher) uploadMedia(ctx context.Context, path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer file.Close()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("media", filepath.Base(path))
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(part, file); err != nil {
		return "", err
	}
	if err := writer.Close(); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.uploadURL, &buf)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	auth, err := p.signer.authorizationHeader(http.MethodPost, p.uploadURL, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", auth)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("upload api unavailable: %w", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", classify(resp.StatusCode, string(respBody))
	}

	var out uploadResponse
	if err := json.Unmarshal(respBody, &out); err != nil {
		return "", fmt.Errorf("decode upload response: %w", err)
	}
	if out.MediaIDString == "" {
		return "", fmt.Errorf("upload response missing media id")
	}
	return out.MediaIDString, nil
}

func classify(status int, body string) *PublishError {
	kind := FailureOther
	switch {
	case status == http.StatusTooManyRequests:
		kind = FailureRateLimited
	case status == http.StatusForbidden && strings.Contains(strings.ToLower(body), "duplicate"):
		kind = FailureDuplicate
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		kind = FailureAuth
	}
	return &PublishError{Kind: kind, StatusCode: status, Message: body}
}
