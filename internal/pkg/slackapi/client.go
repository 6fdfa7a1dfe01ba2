// Package slackapi is a thin Slack Web API client covering the handful of
// calls the bot needs: posting messages, opening DMs, and fetching file
// metadata and content.
package slackapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const DefaultBaseURL = "https://slack.com/api"

// Client talks to the Slack Web API with a bot token.
type Client struct {
	http     *http.Client
	baseURL  string
	botToken string
}

// NewClient builds a client; nil httpClient and empty baseURL get sane
// defaults.
func NewClient(httpClient *http.Client, baseURL, botToken string) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	baseURL = strings.TrimSpace(strings.TrimRight(baseURL, "/"))
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		http:     httpClient,
		baseURL:  baseURL,
		botToken: strings.TrimSpace(botToken),
	}
}

// File is the slice of files.info metadata the pipeline cares about.
type File struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Mimetype   string `json:"mimetype"`
	Filetype   string `json:"filetype"`
	Size       int64  `json:"size"`
	URLPrivate string `json:"url_private"`
}

// IsPDF reports whether the file looks like a PDF by mimetype or filetype.
func (f File) IsPDF() bool {
	return f.Mimetype == "application/pdf" || strings.EqualFold(f.Filetype, "pdf")
}

type apiEnvelope struct {
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

func (e apiEnvelope) err(method string) error {
	code := strings.TrimSpace(e.Error)
	if code == "" {
		code = "unknown_error"
	}
	return fmt.Errorf("slack %s failed: %s", method, code)
}

func (c *Client) postJSON(ctx context.Context, method string, payload any, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/"+method, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json; charset=utf-8")
	req.Header.Set("Authorization", "Bearer "+c.botToken)

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("slack %s http %d", method, resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

type postMessageResponse struct {
	apiEnvelope
	Channel string `json:"channel,omitempty"`
	TS      string `json:"ts,omitempty"`
}

// PostMessage posts text to a channel or conversation ID. A non-empty
// threadTS makes the message a threaded reply.
func (c *Client) PostMessage(ctx context.Context, channel, text, threadTS string) error {
	payload := map[string]string{"channel": channel, "text": text}
	if threadTS != "" {
		payload["thread_ts"] = threadTS
	}
	var out postMessageResponse
	if err := c.postJSON(ctx, "chat.postMessage", payload, &out); err != nil {
		return err
	}
	if !out.OK {
		return out.err("chat.postMessage")
	}
	return nil
}

type openConversationResponse struct {
	apiEnvelope
	Channel struct {
		ID string `json:"id"`
	} `json:"channel"`
}

// OpenDM opens (or reuses) a direct-message conversation with a user and
// returns its channel ID.
func (c *Client) OpenDM(ctx context.Context, userID string) (string, error) {
	payload := map[string]string{"users": userID}
	var out openConversationResponse
	if err := c.postJSON(ctx, "conversations.open", payload, &out); err != nil {
		return "", err
	}
	if !out.OK {
		return "", out.err("conversations.open")
	}
	if out.Channel.ID == "" {
		return "", fmt.Errorf("slack conversations.open returned empty channel id")
	}
	return out.Channel.ID, nil
}

type fileInfoResponse struct {
	apiEnvelope
	File File `json:"file"`
}

// FileInfo fetches metadata for an uploaded file.
func (c *Client) FileInfo(ctx context.Context, fileID string) (File, error) {
	url := fmt.Sprintf("%s/files.info?file=%s", c.baseURL, fileID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return File{}, err
	}
	req.Header.Set("Authorization", "Bearer "+c.botToken)

	resp, err := c.http.Do(req)
	if err != nil {
		return File{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return File{}, fmt.Errorf("slack files.info http %d", resp.StatusCode)
	}
	var out fileInfoResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return File{}, err
	}
	if !out.OK {
		return File{}, out.err("files.info")
	}
	return out.File, nil
}

// DownloadFile fetches a file's bytes from its url_private, which requires
// the bot token as a bearer credential.
func (c *Client) DownloadFile(ctx context.Context, urlPrivate string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, urlPrivate, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.botToken)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("slack file download http %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}
