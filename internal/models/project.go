package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Position is a node's canvas coordinate
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// DiagramNode is one component placed on the canvas
type DiagramNode struct {
	ID       string   `json:"id"`
	Type     string   `json:"type"`
	Position Position `json:"position"`
}

// DiagramEdge connects two nodes. Endpoints are not checked against the node set.
type DiagramEdge struct {
	Source string `json:"source"`
	Target string `json:"target"`
}

// Diagram is the learner's architecture drawing
type Diagram struct {
	Nodes []DiagramNode `json:"nodes"`
	Edges []DiagramEdge `json:"edges"`
}

// EmptyDiagram returns a diagram with non-nil, empty node and edge lists
func EmptyDiagram() Diagram {
	return Diagram{Nodes: []DiagramNode{}, Edges: []DiagramEdge{}}
}

// Project is a saved practice session
type Project struct {
	ID           uuid.UUID       `json:"id"`
	Title        string          `json:"title"`
	ScenarioID   ScenarioID      `json:"scenario_id"`
	Diagram      Diagram         `json:"diagram_data"`
	ChatHistory  []ChatTurn      `json:"chat_history"`
	Evaluation   json.RawMessage `json:"evaluation,omitempty"`
	LastModified time.Time       `json:"last_modified"`
}

// NewProject creates a project stamped with the current time
func NewProject(id uuid.UUID, title string, scenarioID ScenarioID, diagram Diagram, history []ChatTurn) *Project {
	if history == nil {
		history = []ChatTurn{}
	}
	return &Project{
		ID:           id,
		Title:        title,
		ScenarioID:   scenarioID,
		Diagram:      diagram,
		ChatHistory:  history,
		LastModified: time.Now().UTC(),
	}
}

// ChangeTitle renames the project; empty titles are ignored
func (p *Project) ChangeTitle(title string) {
	if title == "" {
		return
	}
	p.Title = title
	p.LastModified = time.Now().UTC()
}

// Normalize fills absent collections so stored projects always read back
// with empty lists rather than null.
func (p *Project) Normalize() {
	if p.Diagram.Nodes == nil {
		p.Diagram.Nodes = []DiagramNode{}
	}
	if p.Diagram.Edges == nil {
		p.Diagram.Edges = []DiagramEdge{}
	}
	if p.ChatHistory == nil {
		p.ChatHistory = []ChatTurn{}
	}
}

// SaveProjectRequest is the body of POST /api/projects. An empty id creates a new project.
type SaveProjectRequest struct {
	ID          string          `json:"id,omitempty"`
	Title       string          `json:"title"`
	ScenarioID  ScenarioID      `json:"scenario_id"`
	Diagram     Diagram         `json:"diagram_data"`
	ChatHistory []ChatTurn      `json:"chat_history"`
	Evaluation  json.RawMessage `json:"evaluation,omitempty"`
}

// SaveProjectResponse is the save envelope
type SaveProjectResponse struct {
	ID      string `json:"id,omitempty"`
	Status  string `json:"status"`
	Message string `json:"message"`
}
