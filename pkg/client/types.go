package client

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Chat turn roles
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Response statuses
const (
	StatusSuccess        = "success"
	StatusPartialSuccess = "partial_success"
	StatusError          = "error"
)

// ChatTurn is one message of a conversation
type ChatTurn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest carries the whole transcript; the server keeps no state between calls
type ChatRequest struct {
	ScenarioID  string     `json:"scenario_id"`
	PartnerRole string     `json:"partner_role,omitempty"`
	Messages    []ChatTurn `json:"messages"`
}

// ChatResponse represents a persona reply
type ChatResponse struct {
	Reply  string `json:"reply"`
	Status string `json:"status"`
}

// EvaluationResult represents an evaluation response
type EvaluationResult struct {
	Score       int    `json:"score"`
	Feedback    string `json:"feedback"`
	Improvement string `json:"improvement,omitempty"`
	Status      string `json:"status"`
}

// Position is a node's canvas coordinate
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// DiagramNode is one placed component
type DiagramNode struct {
	ID       string   `json:"id"`
	Type     string   `json:"type"`
	Position Position `json:"position"`
}

// DiagramEdge connects two nodes
type DiagramEdge struct {
	Source string `json:"source"`
	Target string `json:"target"`
}

// Diagram is an architecture drawing
type Diagram struct {
	Nodes []DiagramNode `json:"nodes"`
	Edges []DiagramEdge `json:"edges"`
}

// Project represents a saved project
type Project struct {
	ID           uuid.UUID       `json:"id"`
	Title        string          `json:"title"`
	ScenarioID   string          `json:"scenario_id"`
	Diagram      Diagram         `json:"diagram_data"`
	ChatHistory  []ChatTurn      `json:"chat_history"`
	Evaluation   json.RawMessage `json:"evaluation,omitempty"`
	LastModified time.Time       `json:"last_modified"`
}

// SaveProjectRequest represents a project save request. Leave ID empty to create.
type SaveProjectRequest struct {
	ID          string          `json:"id,omitempty"`
	Title       string          `json:"title"`
	ScenarioID  string          `json:"scenario_id"`
	Diagram     Diagram         `json:"diagram_data"`
	ChatHistory []ChatTurn      `json:"chat_history"`
	Evaluation  json.RawMessage `json:"evaluation,omitempty"`
}

// SaveProjectResponse represents a project save response
type SaveProjectResponse struct {
	ID      string `json:"id,omitempty"`
	Status  string `json:"status"`
	Message string `json:"message"`
}

// Requirements are the public requirement figures of a scenario
type Requirements struct {
	Users        string `json:"users"`
	Traffic      string `json:"traffic"`
	Budget       string `json:"budget"`
	Availability string `json:"availability"`
}

// ScenarioSummary represents a scenario listing entry
type ScenarioSummary struct {
	ID           string       `json:"id"`
	Title        string       `json:"title"`
	Description  string       `json:"description"`
	Requirements Requirements `json:"requirements"`
}
