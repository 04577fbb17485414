package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/sirupsen/logrus"

	"vaultchat/config"
	"vaultchat/model"
	"vaultchat/storage"
)

const (
	DefaultEndpoint = config.DefaultEndpoint
	DefaultModel    = config.DefaultModel

	completionsPath = "chat/completions"
)

// OpenRouterClient is the Completer for OpenRouter and other
// OpenAI-compatible endpoints. The official OpenAI SDK provides transport,
// bearer auth and headers; response classification is done here from the raw
// HTTP response so each outcome maps onto exactly one error kind.
type OpenRouterClient struct {
	client   openai.Client
	creds    CredentialSource
	model    string
	endpoint string
	usage    UsageRecorder
}

// ClientOption customizes an OpenRouterClient.
type ClientOption func(*OpenRouterClient)

// WithUsageRecorder records token usage after each successful completion.
func WithUsageRecorder(r UsageRecorder) ClientOption {
	return func(c *OpenRouterClient) {
		c.usage = r
	}
}

// NewOpenRouterClient creates a client. The API key is not read here; it is
// resolved from creds on every Complete call.
//
// Defaults: Endpoint "https://openrouter.ai/api/v1", Model "openai/gpt-4o-mini".
func NewOpenRouterClient(cfg Config, creds CredentialSource, opts ...ClientOption) (*OpenRouterClient, error) {
	if creds == nil {
		return nil, fmt.Errorf("credential source is required")
	}
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultEndpoint
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}

	// A trailing slash makes the relative completions path resolve under
	// the endpoint's own path (/api/v1/chat/completions).
	endpoint := strings.TrimRight(cfg.Endpoint, "/") + "/"

	clientOpts := []option.RequestOption{
		option.WithBaseURL(endpoint),
		option.WithMaxRetries(0),
		option.WithHeader("Content-Type", "application/json"),
		// The SDK defaults copy OPENAI_ORG_ID / OPENAI_PROJECT_ID into these;
		// they are OpenAI account identifiers and never go to OpenRouter.
		option.WithHeaderDel("OpenAI-Organization"),
		option.WithHeaderDel("OpenAI-Project"),
	}
	if cfg.Referer != "" {
		clientOpts = append(clientOpts, option.WithHeader("HTTP-Referer", cfg.Referer))
	}
	if cfg.Title != "" {
		clientOpts = append(clientOpts, option.WithHeader("X-Title", cfg.Title))
	}
	if cfg.HTTPClient != nil {
		clientOpts = append(clientOpts, option.WithHTTPClient(cfg.HTTPClient))
	}

	c := &OpenRouterClient{
		client:   openai.NewClient(clientOpts...),
		creds:    creds,
		model:    cfg.Model,
		endpoint: endpoint,
	}
	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// Model returns the model identifier sent with each request.
func (c *OpenRouterClient) Model() string {
	return c.model
}

// SetModel changes the model for subsequent requests.
func (c *OpenRouterClient) SetModel(modelName string) {
	c.model = modelName
}

type wireMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []wireMessage `json:"messages"`
}

type chatResponse struct {
	Choices []struct {
		Message wireMessage `json:"message"`
	} `json:"choices"`
	Usage *struct {
		PromptTokens     int64 `json:"prompt_tokens"`
		CompletionTokens int64 `json:"completion_tokens"`
	} `json:"usage,omitempty"`
}

type errorResponse struct {
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// rawResponse is what the capture middleware saw on the wire.
type rawResponse struct {
	status  int
	body    []byte
	readErr error
}

// Complete implements model.Completer.
func (c *OpenRouterClient) Complete(ctx context.Context, messages []model.ChatMessage) (model.Message, error) {
	apiKey, ok, err := c.creds.Get()
	if err != nil {
		return model.Message{}, err
	}
	if !ok || apiKey == "" {
		return model.Message{}, model.ErrCredentialMissing
	}

	payload := chatRequest{
		Model:    c.model,
		Messages: make([]wireMessage, len(messages)),
	}
	for i, m := range messages {
		payload.Messages[i] = wireMessage{Role: string(m.Role), Content: m.Content}
	}

	var (
		raw     *rawResponse
		httpRes *http.Response
	)
	postErr := c.client.Post(ctx, completionsPath, payload, &httpRes,
		option.WithAPIKey(apiKey),
		option.WithMiddleware(captureResponse(&raw)),
	)
	if httpRes != nil && httpRes.Body != nil {
		httpRes.Body.Close()
	}

	reply, err := c.classify(raw, postErr)
	entry := c.log().WithField("messages", len(messages))
	if raw != nil {
		entry = entry.WithField("status", raw.status)
	}
	if err != nil {
		entry.WithError(err).Warn("completion failed")
		return model.Message{}, err
	}
	entry.Debug("completion succeeded")
	return reply, nil
}

// captureResponse buffers the response body so it can be classified after
// the SDK is done with it.
func captureResponse(dst **rawResponse) option.Middleware {
	return func(req *http.Request, next option.MiddlewareNext) (*http.Response, error) {
		res, err := next(req)
		if err != nil || res == nil {
			return res, err
		}

		body, readErr := io.ReadAll(res.Body)
		res.Body.Close()
		res.Body = io.NopCloser(bytes.NewReader(body))

		*dst = &rawResponse{
			status:  res.StatusCode,
			body:    body,
			readErr: readErr,
		}
		return res, nil
	}
}

func (c *OpenRouterClient) classify(raw *rawResponse, postErr error) (model.Message, error) {
	if raw == nil {
		if postErr == nil {
			postErr = errors.New("no response received")
		}
		return model.Message{}, &model.TransportError{Cause: postErr}
	}

	if raw.status < 200 || raw.status >= 300 {
		return model.Message{}, remoteError(raw.status, raw.body)
	}

	if raw.readErr != nil {
		return model.Message{}, &model.DecodeError{Cause: raw.readErr}
	}

	var resp chatResponse
	if err := json.Unmarshal(raw.body, &resp); err != nil {
		return model.Message{}, &model.DecodeError{Cause: err}
	}

	// A well-formed body with no choices key is an empty reply, not a decode failure
	if len(resp.Choices) == 0 {
		return model.Message{}, model.ErrEmptyResponse
	}

	c.recordUsage(resp)

	first := resp.Choices[0].Message
	return model.NewMessage(model.ParseRole(first.Role), first.Content), nil
}

func remoteError(status int, body []byte) *model.RemoteError {
	var er errorResponse
	if err := json.Unmarshal(body, &er); err == nil && er.Error != nil && er.Error.Message != "" {
		return &model.RemoteError{StatusCode: status, Message: er.Error.Message}
	}
	return &model.RemoteError{StatusCode: status, Message: fmt.Sprintf("status %d", status)}
}

func (c *OpenRouterClient) recordUsage(resp chatResponse) {
	if c.usage == nil || resp.Usage == nil {
		return
	}
	err := c.usage.Record(storage.Usage{
		Model:            c.model,
		PromptTokens:     resp.Usage.PromptTokens,
		CompletionTokens: resp.Usage.CompletionTokens,
	})
	if err != nil {
		c.log().WithError(err).Warn("failed to record usage")
	}
}

func (c *OpenRouterClient) log() *logrus.Entry {
	return config.Log.WithFields(logrus.Fields{
		"component": "provider",
		"endpoint":  c.endpoint,
		"model":     c.model,
	})
}
