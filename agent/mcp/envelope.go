package mcp

import "encoding/json"

// Wire error codes, JSON-RPC numbering.
const (
	CodeParseError     = -32700
	CodeMethodNotFound = -32601
	CodeInvalidParams  = -32602
	CodeInternalError  = -32603
)

// Request is one inbound envelope. ID is a pointer so a missing id can be
// echoed back as null rather than an empty string.
type Request struct {
	Method string          `json:"method"`
	ID     *string         `json:"id"`
	Params json.RawMessage `json:"params"`
}

// Response is one outbound envelope. Exactly one of Result or Error is set.
type Response struct {
	JSONRPC string         `json:"jsonrpc"`
	ID      *string        `json:"id"`
	Result  map[string]any `json:"result,omitempty"`
	Error   *ErrorDetail   `json:"error,omitempty"`
}

// MarshalJSON emits exactly one of result/error even when a success result
// is an empty map, which omitempty would otherwise drop from the wire.
func (r Response) MarshalJSON() ([]byte, error) {
	if r.Error != nil {
		return json.Marshal(struct {
			JSONRPC string       `json:"jsonrpc"`
			ID      *string      `json:"id"`
			Error   *ErrorDetail `json:"error"`
		}{r.JSONRPC, r.ID, r.Error})
	}

	result := r.Result
	if result == nil {
		result = map[string]any{}
	}
	return json.Marshal(struct {
		JSONRPC string         `json:"jsonrpc"`
		ID      *string        `json:"id"`
		Result  map[string]any `json:"result"`
	}{r.JSONRPC, r.ID, result})
}

type ErrorDetail struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func resultResponse(id *string, result map[string]any) Response {
	return Response{JSONRPC: "2.0", ID: id, Result: result}
}

func errorResponse(id *string, code int, message string) Response {
	return Response{
		JSONRPC: "2.0",
		ID:      id,
		Error:   &ErrorDetail{Code: code, Message: message},
	}
}
