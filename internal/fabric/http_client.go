package fabric

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/turbot/pipe-fittings/perr"

	"github.com/turbot/adfupgrade/internal/cache"
	"github.com/turbot/adfupgrade/internal/types"
)

const (
	DefaultBaseURL      = "https://api.fabric.microsoft.com/v1"
	DefaultPollInterval = 2 * time.Second
	DefaultCacheTTL     = 5 * time.Minute

	pipelineContentPart = "pipeline-content.json"
)

type HTTPClientConfig struct {
	BaseURL      string `validate:"omitempty,url"`
	WorkspaceID  string `validate:"required"`
	Token        string `validate:"required"`
	HTTPClient   *http.Client
	Cache        *cache.InMemoryCache
	CacheTTL     time.Duration
	PollInterval time.Duration
}

// HTTPClient talks to the Fabric REST API. Data pipelines are stored as items whose definition
// carries the pipeline payload; schedules are attached to the job scheduler of their item.
type HTTPClient struct {
	cfg HTTPClientConfig
}

func NewHTTPClient(cfg HTTPClientConfig) (*HTTPClient, error) {
	if err := validator.New().Struct(cfg); err != nil {
		return nil, perr.BadRequestWithMessage("invalid fabric client configuration: " + err.Error())
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	cfg.BaseURL = strings.TrimSuffix(cfg.BaseURL, "/")
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: 60 * time.Second}
	}
	if cfg.CacheTTL == 0 {
		cfg.CacheTTL = DefaultCacheTTL
	}
	if cfg.PollInterval == 0 {
		cfg.PollInterval = DefaultPollInterval
	}
	return &HTTPClient{cfg: cfg}, nil
}

func (c *HTTPClient) CreateOrUpdate(ctx context.Context, resourceType, name, description string, payload map[string]any) (map[string]any, error) {
	slog.Debug("fabric create or update", "type", resourceType, "name", name)

	switch resourceType {
	case types.FabricDataPipeline:
		return c.upsertItem(ctx, resourceType, name, description, payload)
	case types.FabricPipelineSchedule:
		return c.upsertSchedule(ctx, name, payload)
	}
	return nil, perr.BadRequestWithMessage("fabric client cannot create resources of type " + resourceType)
}

type item struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
	Type        string `json:"type"`
	Description string `json:"description,omitempty"`
}

type schedule struct {
	ID      string `json:"id"`
	Enabled bool   `json:"enabled"`
}

type apiError struct {
	ErrorCode string `json:"errorCode"`
	Message   string `json:"message"`
}

func (c *HTTPClient) itemsCacheKey(itemType string) string {
	return "items:" + c.cfg.WorkspaceID + ":" + itemType
}

func (c *HTTPClient) listItems(ctx context.Context, itemType string) ([]item, error) {
	key := c.itemsCacheKey(itemType)
	if c.cfg.Cache != nil {
		if v, ok := c.cfg.Cache.Get(key); ok {
			if items, ok := v.([]item); ok {
				return items, nil
			}
		}
	}

	var items []item
	next := fmt.Sprintf("/workspaces/%s/items?type=%s", url.PathEscape(c.cfg.WorkspaceID), url.QueryEscape(itemType))
	for next != "" {
		var page struct {
			Value           []item `json:"value"`
			ContinuationURI string `json:"continuationUri"`
		}
		if err := c.do(ctx, http.MethodGet, next, nil, &page); err != nil {
			return nil, err
		}
		items = append(items, page.Value...)
		next = page.ContinuationURI
	}

	if c.cfg.Cache != nil {
		c.cfg.Cache.SetWithTTL(key, items, c.cfg.CacheTTL)
	}
	return items, nil
}

func pipelineDefinition(payload map[string]any) (map[string]any, error) {
	content, err := json.Marshal(payload)
	if err != nil {
		return nil, perr.BadRequestWithMessage("pipeline payload cannot be encoded: " + err.Error())
	}
	return map[string]any{
		"parts": []any{
			map[string]any{
				"path":        pipelineContentPart,
				"payload":     base64.StdEncoding.EncodeToString(content),
				"payloadType": "InlineBase64",
			},
		},
	}, nil
}

func (c *HTTPClient) upsertItem(ctx context.Context, itemType, name, description string, payload map[string]any) (map[string]any, error) {
	definition, err := pipelineDefinition(payload)
	if err != nil {
		return nil, err
	}

	items, err := c.listItems(ctx, itemType)
	if err != nil {
		return nil, err
	}

	ws := url.PathEscape(c.cfg.WorkspaceID)
	var existing *item
	for i := range items {
		if items[i].DisplayName == name {
			existing = &items[i]
			break
		}
	}

	var result item
	if existing != nil {
		path := fmt.Sprintf("/workspaces/%s/items/%s/updateDefinition", ws, url.PathEscape(existing.ID))
		if err := c.do(ctx, http.MethodPost, path, map[string]any{"definition": definition}, nil); err != nil {
			return nil, err
		}
		result = *existing
	} else {
		body := map[string]any{
			"displayName": name,
			"type":        itemType,
			"definition":  definition,
		}
		if description != "" {
			body["description"] = description
		}
		if err := c.do(ctx, http.MethodPost, fmt.Sprintf("/workspaces/%s/items", ws), body, &result); err != nil {
			return nil, err
		}
		if c.cfg.Cache != nil {
			c.cfg.Cache.Delete(c.itemsCacheKey(itemType))
		}
	}

	if result.ID == "" {
		return nil, perr.InternalWithMessage("fabric returned no id for " + itemType + " " + name)
	}
	return map[string]any{
		"id":          result.ID,
		"type":        itemType,
		"displayName": name,
		"workspaceId": c.cfg.WorkspaceID,
	}, nil
}

func (c *HTTPClient) upsertSchedule(ctx context.Context, name string, payload map[string]any) (map[string]any, error) {
	itemID, _ := payload["itemId"].(string)
	if itemID == "" {
		return nil, perr.BadRequestWithMessage("schedule " + name + " has no item id")
	}
	jobType, _ := payload["jobType"].(string)
	if jobType == "" {
		jobType = "Pipeline"
	}

	path := fmt.Sprintf("/workspaces/%s/items/%s/jobs/%s/schedules",
		url.PathEscape(c.cfg.WorkspaceID), url.PathEscape(itemID), url.PathEscape(jobType))
	body := map[string]any{
		"enabled":       payload["enabled"],
		"configuration": payload["configuration"],
	}

	var existing struct {
		Value []schedule `json:"value"`
	}
	if err := c.do(ctx, http.MethodGet, path, nil, &existing); err != nil {
		return nil, err
	}

	var result schedule
	if len(existing.Value) > 0 {
		id := existing.Value[0].ID
		if err := c.do(ctx, http.MethodPatch, path+"/"+url.PathEscape(id), body, &result); err != nil {
			return nil, err
		}
		if result.ID == "" {
			result.ID = id
		}
	} else if err := c.do(ctx, http.MethodPost, path, body, &result); err != nil {
		return nil, err
	}

	if result.ID == "" {
		return nil, perr.InternalWithMessage("fabric returned no id for schedule " + name)
	}
	return map[string]any{
		"id":          result.ID,
		"type":        types.FabricPipelineSchedule,
		"displayName": name,
		"itemId":      itemID,
	}, nil
}

// do sends one request. A 202 response is a long running operation which is polled to completion
// before its result is decoded into out.
func (c *HTTPClient) do(ctx context.Context, method, path string, body any, out any) error {
	resp, err := c.send(ctx, method, path, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusAccepted && resp.Header.Get("Location") != "" {
		return c.wait(ctx, resp.Header.Get("Location"), out)
	}
	return decode(resp, out)
}

func (c *HTTPClient) send(ctx context.Context, method, path string, body any) (*http.Response, error) {
	target := path
	if !strings.HasPrefix(path, "http://") && !strings.HasPrefix(path, "https://") {
		target = c.cfg.BaseURL + path
	}

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, perr.BadRequestWithMessage("request body cannot be encoded: " + err.Error())
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, perr.InternalWithMessage("error creating request: " + err.Error())
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.Token)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.cfg.HTTPClient.Do(req)
	if err != nil {
		slog.Error("fabric request failed", "method", method, "url", target, "error", err)
		return nil, perr.InternalWithMessage("fabric request failed: " + err.Error())
	}
	return resp, nil
}

func (c *HTTPClient) wait(ctx context.Context, location string, out any) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(c.cfg.PollInterval):
		}

		var op struct {
			Status string    `json:"status"`
			Error  *apiError `json:"error"`
		}
		resp, err := c.send(ctx, http.MethodGet, location, nil)
		if err != nil {
			return err
		}
		err = decode(resp, &op)
		resp.Body.Close()
		if err != nil {
			return err
		}

		slog.Debug("fabric operation status", "location", location, "status", op.Status)
		switch op.Status {
		case "Succeeded":
			if out == nil {
				return nil
			}
			resp, err := c.send(ctx, http.MethodGet, strings.TrimSuffix(location, "/")+"/result", nil)
			if err != nil {
				return err
			}
			defer resp.Body.Close()
			return decode(resp, out)
		case "Failed", "Undefined":
			msg := "fabric operation failed"
			if op.Error != nil && op.Error.Message != "" {
				msg += ": " + op.Error.Message
			}
			return perr.InternalWithMessage(msg)
		}
	}
}

func decode(resp *http.Response, out any) error {
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return perr.InternalWithMessage("error reading fabric response: " + err.Error())
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var apiErr apiError
		_ = json.Unmarshal(data, &apiErr)
		msg := fmt.Sprintf("fabric returned %d", resp.StatusCode)
		if apiErr.Message != "" {
			msg += ": " + apiErr.Message
		}
		switch resp.StatusCode {
		case http.StatusNotFound:
			return perr.NotFoundWithMessage(msg)
		case http.StatusBadRequest:
			return perr.BadRequestWithMessage(msg)
		}
		return perr.InternalWithMessage(msg)
	}

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return perr.InternalWithMessage("error decoding fabric response: " + err.Error())
	}
	return nil
}
