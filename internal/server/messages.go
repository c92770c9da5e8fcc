package server

import (
	"github.com/udisondev/jumppath/internal/gridmap"
	"github.com/udisondev/jumppath/internal/pathfinder"
	"github.com/udisondev/jumppath/internal/pathfinding"
)

// Message types.
const (
	TypeCompute  = "compute"
	TypeCancel   = "cancel"
	TypeAccepted = "accepted"
	TypePath     = "path"
	TypeError    = "error"
)

// clientMessage is any message a client sends. Vectors are [x, y], rects
// [x, y, w, h].
type clientMessage struct {
	Type          string                `json:"type"`
	Seq           uint64                `json:"seq,omitempty"`
	ID            int                   `json:"id,omitempty"`
	Initial       *[2]float64           `json:"initial,omitempty"`
	Goal          *[2]float64           `json:"goal,omitempty"`
	Character     *pathfinding.Settings `json:"character,omitempty"`
	Region        *[4]int               `json:"region,omitempty"`
	DynamicMasses [][4]float64          `json:"dynamic_masses,omitempty"`
}

type acceptedMessage struct {
	Type string `json:"type"`
	Seq  uint64 `json:"seq"`
	ID   int    `json:"id"`
}

type pathMessage struct {
	Type      string   `json:"type"`
	ID        int      `json:"id"`
	Path      [][2]int `json:"path"`
	Scenarios []int    `json:"scenarios"`
}

type errorMessage struct {
	Type  string `json:"type"`
	Seq   uint64 `json:"seq,omitempty"`
	Error string `json:"error"`
}

func (m clientMessage) request(defaults *pathfinding.Settings) pathfinder.Request {
	req := pathfinder.Request{
		Initial:   gridmap.Vec2{X: m.Initial[0], Y: m.Initial[1]},
		Goal:      gridmap.Vec2{X: m.Goal[0], Y: m.Goal[1]},
		Character: m.Character,
	}
	if req.Character == nil {
		req.Character = defaults
	}
	if m.Region != nil {
		req.Region = pathfinding.Region{X: m.Region[0], Y: m.Region[1], W: m.Region[2], H: m.Region[3]}
	}
	for _, r := range m.DynamicMasses {
		req.DynamicMasses = append(req.DynamicMasses, gridmap.Rect{X: r[0], Y: r[1], W: r[2], H: r[3]})
	}
	return req
}

func newPathMessage(id int, res pathfinder.Result) pathMessage {
	msg := pathMessage{
		Type:      TypePath,
		ID:        id,
		Path:      make([][2]int, len(res.Path)),
		Scenarios: make([]int, len(res.Scenarios)),
	}
	for i, c := range res.Path {
		msg.Path[i] = [2]int{c.X, c.Y}
	}
	// Scenario is a byte; a []Scenario would encode as base64.
	for i, sc := range res.Scenarios {
		msg.Scenarios[i] = int(sc)
	}
	return msg
}
