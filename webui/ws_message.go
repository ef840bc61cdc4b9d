// Package webui provides the embedded web interface for the meme studio.
// This file contains WebSocket message types and constants.
package webui

import (
	"encoding/json"
	"time"
)

// Message type constants for WebSocket communication.
// These define the types of real-time updates sent to connected clients.
const (
	// MessageTypeTaskUpdate indicates a task status change (started, completed, error).
	MessageTypeTaskUpdate = "task_update"

	// MessageTypeSystemStatus indicates overall system health status change.
	MessageTypeSystemStatus = "system_status"

	// MessageTypeError indicates a server-side error message.
	MessageTypeError = "error"

	// MessageTypePing is a keep-alive message from the server.
	MessageTypePing = "ping"

	// MessageTypePong is a keep-alive response from the client.
	MessageTypePong = "pong"

	// MessageTypeInitial contains the initial state snapshot on connection.
	MessageTypeInitial = "initial"
)

// WSMessage is the base structure for all WebSocket messages.
// It uses a common envelope format with type-specific data in the Data field.
//
// This is a pure data structure atom with no behavior beyond JSON marshaling.
type WSMessage struct {
	// Type identifies the message kind (use MessageType* constants)
	Type string `json:"type"`

	// Timestamp is when the message was created
	Timestamp time.Time `json:"timestamp"`

	// Data contains the type-specific payload (decoded based on Type)
	Data interface{} `json:"data,omitempty"`
}

// NewWSMessage creates a new WebSocket message with the current timestamp.
func NewWSMessage(msgType string, data interface{}) WSMessage {
	return WSMessage{
		Type:      msgType,
		Timestamp: time.Now(),
		Data:      data,
	}
}

// MarshalJSON serializes the message to JSON bytes.
// This is a convenience method for sending messages over WebSocket.
func (m WSMessage) MarshalJSON() ([]byte, error) {
	type Alias WSMessage
	return json.Marshal(Alias(m))
}

// TaskUpdateData contains details for an AI task status update.
type TaskUpdateData struct {
	// TaskID is the unique identifier for the task
	TaskID string `json:"task_id"`

	// TaskType identifies the kind of task (load, captions, edit, analyze)
	TaskType string `json:"task_type"`

	// SessionID identifies which studio session this task belongs to
	SessionID string `json:"session_id,omitempty"`

	// Status is the current state (processing, success, error)
	Status string `json:"status"`

	// Duration is how long the task took (only set on completion)
	Duration time.Duration `json:"duration,omitempty"`

	// Error contains error details if Status is "error"
	Error string `json:"error,omitempty"`
}

// SystemStatusData contains overall system health information.
type SystemStatusData struct {
	// Status indicates system state: "running", "error", "stopped"
	Status string `json:"status"`

	// Uptime is how long the system has been running
	Uptime time.Duration `json:"uptime"`

	// ActiveSessions is the count of live studio sessions
	ActiveSessions int `json:"active_sessions"`

	// TotalProcessed is the total count of tasks processed since start
	TotalProcessed int64 `json:"total_processed"`

	// ErrorRate is the percentage of failed tasks (0-100)
	ErrorRate float64 `json:"error_rate"`

	// Version is the application version string
	Version string `json:"version,omitempty"`
}

// ErrorData contains error information sent to clients.
type ErrorData struct {
	// Code is an application-specific error code
	Code string `json:"code"`

	// Message is a human-readable error description
	Message string `json:"message"`
}

// InitialData contains the complete state snapshot sent on connection.
type InitialData struct {
	// System contains current system status
	System SystemStatusData `json:"system"`

	// RecentTasks contains the last N task records
	RecentTasks []TaskUpdateData `json:"recent_tasks"`
}

// Helper functions for creating common messages

// NewTaskUpdateMessage creates a task update message.
func NewTaskUpdateMessage(data TaskUpdateData) WSMessage {
	return NewWSMessage(MessageTypeTaskUpdate, data)
}

// NewSystemStatusMessage creates a system status message.
func NewSystemStatusMessage(data SystemStatusData) WSMessage {
	return NewWSMessage(MessageTypeSystemStatus, data)
}

// NewErrorMessage creates an error message.
func NewErrorMessage(code, message string) WSMessage {
	return NewWSMessage(MessageTypeError, ErrorData{Code: code, Message: message})
}

// NewPingMessage creates a ping keep-alive message.
func NewPingMessage() WSMessage {
	return NewWSMessage(MessageTypePing, nil)
}

// NewInitialMessage creates the initial state snapshot message.
func NewInitialMessage(data InitialData) WSMessage {
	return NewWSMessage(MessageTypeInitial, data)
}
