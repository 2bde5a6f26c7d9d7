// Package handler adapts inbound invocation payloads to the core packages:
// it sniffs the event shape, dispatches to the tracker, reader, or health
// validator, and renders the HTTP-style response envelope the platform
// expects. Status codes are embedded in the payload, never process exits.
package handler

import "encoding/json"

// Response is the invocation result envelope. StatusCode is an HTTP-style
// integer; Body is a JSON document or plain message.
type Response struct {
	StatusCode int               `json:"statusCode"`
	Headers    map[string]string `json:"headers,omitempty"`
	Body       string            `json:"body,omitempty"`
}

// jsonResponse renders v as the response body with a JSON content type.
func jsonResponse(status int, v interface{}) Response {
	body, err := json.Marshal(v)
	if err != nil {
		return Response{StatusCode: 500, Body: `{"message":"response encoding failed"}`}
	}
	return Response{
		StatusCode: status,
		Headers:    map[string]string{"Content-Type": "application/json"},
		Body:       string(body),
	}
}

// messageResponse renders a {"message": ...} body.
func messageResponse(status int, message string) Response {
	return jsonResponse(status, map[string]string{"message": message})
}
