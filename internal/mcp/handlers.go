package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"github.com/sourcegraph/jsonrpc2"

	"github.com/alucardeht/outliner/internal/logger"
	"github.com/alucardeht/outliner/internal/tools"
)

var log = logger.ForComponent("mcp")

type Handler struct {
	registry    *tools.Registry
	timeout     time.Duration
	startTime   time.Time
	mu          sync.Mutex
	initialized bool
	clientInfo  ClientInfo
}

func NewHandler(registry *tools.Registry, timeout time.Duration) *Handler {
	return &Handler{
		registry:  registry,
		timeout:   timeout,
		startTime: time.Now(),
	}
}

// Handle dispatches one request. A non-nil *jsonrpc2.Error is sent back to
// the client as the error response.
func (h *Handler) Handle(ctx context.Context, _ *jsonrpc2.Conn, req *jsonrpc2.Request) (interface{}, error) {
	var params json.RawMessage
	if req.Params != nil {
		params = *req.Params
	}

	result, rpcErr := h.Dispatch(ctx, req.Method, params)
	if rpcErr != nil {
		log.Debug("request failed", "method", req.Method, "code", rpcErr.Code, "error", rpcErr.Message)
		return nil, rpcErr
	}
	return result, nil
}

func (h *Handler) Dispatch(ctx context.Context, method string, params json.RawMessage) (interface{}, *jsonrpc2.Error) {
	switch method {
	case "initialize":
		return h.handleInitialize(params)
	case "ping":
		return map[string]interface{}{}, nil
	case "tools/list":
		return h.handleListTools(), nil
	case "tools/call":
		return h.handleCallTool(ctx, params)
	case "notifications/initialized":
		h.mu.Lock()
		h.initialized = true
		h.mu.Unlock()
		return map[string]interface{}{}, nil
	default:
		return nil, &jsonrpc2.Error{
			Code:    jsonrpc2.CodeMethodNotFound,
			Message: fmt.Sprintf("Method not found: %s", method),
		}
	}
}

func (h *Handler) handleInitialize(params json.RawMessage) (interface{}, *jsonrpc2.Error) {
	var initReq InitializeRequest
	if len(params) > 0 {
		if err := json.Unmarshal(params, &initReq); err != nil {
			return nil, &jsonrpc2.Error{
				Code:    jsonrpc2.CodeInvalidParams,
				Message: fmt.Sprintf("failed to parse initialize request: %v", err),
			}
		}
	}

	h.mu.Lock()
	h.clientInfo = initReq.ClientInfo
	h.mu.Unlock()

	log.Info("client connected", "client", initReq.ClientInfo.Name, "version", initReq.ClientInfo.Version)

	return InitializeResponse{
		ProtocolVersion: negotiateProtocolVersion(initReq.ProtocolVersion),
		Capabilities: map[string]interface{}{
			"tools": map[string]interface{}{},
		},
		ServerInfo: ClientInfo{Name: ServerName, Version: ServerVersion},
	}, nil
}

func negotiateProtocolVersion(clientVersion string) string {
	for _, v := range SupportedProtocolVersions {
		if clientVersion == v {
			return v
		}
	}
	return ProtocolVersion
}

func (h *Handler) handleListTools() ListToolsResponse {
	toolsList := h.registry.List()
	infos := make([]ToolInfo, 0, len(toolsList))

	for _, t := range toolsList {
		info := ToolInfo{
			Name:        t.Name(),
			Description: t.Description(),
			InputSchema: t.Schema(),
		}
		if !json.Valid(info.InputSchema) {
			info.InputSchema = json.RawMessage(`{"type":"object"}`)
		}

		if annotated, ok := t.(tools.AnnotatedTool); ok {
			info.Title = annotated.Title()
			info.Annotations = annotated.Annotations()
		}

		infos = append(infos, info)
	}

	return ListToolsResponse{Tools: infos}
}

func (h *Handler) handleCallTool(ctx context.Context, params json.RawMessage) (result interface{}, rpcErr *jsonrpc2.Error) {
	var callReq CallToolRequest

	defer func() {
		if r := recover(); r != nil {
			log.Error("tool panic recovered",
				"tool", callReq.Name,
				"panic", r,
				"stack", string(debug.Stack()))
			result = nil
			rpcErr = &jsonrpc2.Error{
				Code:    jsonrpc2.CodeInternalError,
				Message: fmt.Sprintf("tool execution panicked: %v", r),
			}
		}
	}()

	if err := json.Unmarshal(params, &callReq); err != nil {
		return nil, &jsonrpc2.Error{
			Code:    jsonrpc2.CodeInvalidParams,
			Message: fmt.Sprintf("failed to parse tool call request: %v", err),
		}
	}

	if callReq.Name == "" {
		return nil, &jsonrpc2.Error{Code: jsonrpc2.CodeInvalidParams, Message: "tool name is required"}
	}

	out, err := h.registry.ExecuteWithTimeout(ctx, callReq.Name, callReq.Arguments, h.timeout)
	if err != nil {
		return nil, toRPCError(callReq.Name, err)
	}

	resultJSON, err := json.Marshal(out)
	if err != nil {
		return nil, &jsonrpc2.Error{
			Code:    jsonrpc2.CodeInternalError,
			Message: fmt.Sprintf("failed to marshal result: %v", err),
		}
	}

	return CallToolResponse{
		Content: []Content{{Type: "text", Text: string(resultJSON)}},
	}, nil
}

func toRPCError(name string, err error) *jsonrpc2.Error {
	te := tools.AsToolError(name, err)
	rpcErr := &jsonrpc2.Error{Code: int64(te.Code), Message: te.Message}
	if te.Kind != "" {
		rpcErr.SetError(map[string]string{"kind": string(te.Kind)})
	}
	return rpcErr
}
