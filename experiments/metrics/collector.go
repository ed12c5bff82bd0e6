package metrics

import (
	"sync/atomic"
	"time"
)

type SearchMetric struct {
	Depth      int
	Duration   time.Duration
	Nodes      int // Positions expanded
	Leaves     int // Positions scored statically
	Cutoffs    int
	Score      int  // Score of the chosen move
	Disfavored bool // A repeating move was penalised
}

type MoveMetric struct {
	Step int
	Side int // game.Side
	Move string
	SearchMetric
}

type GameMetric struct {
	Winner     int // game.Side, 0 for a draw or an unfinished game
	Reason     string
	StartTime  time.Time
	EndTime    time.Time
	Duration   time.Duration
	TotalMoves int
}

type Collector interface {
	Start(depth int)
	AddNode()
	AddLeaf()
	AddCutoff()
	SetDisfavored(value bool)
	Complete(score int) SearchMetric
}

type collector struct {
	depth      int
	startTime  time.Time
	nodes      atomic.Int64
	leaves     atomic.Int64
	cutoffs    atomic.Int64
	disfavored atomic.Bool
}

func NewCollector() Collector {
	return &collector{}
}

func (m *collector) Start(depth int) {
	m.startTime = time.Now()
	m.depth = depth
	m.nodes.Store(0)
	m.leaves.Store(0)
	m.cutoffs.Store(0)
	m.disfavored.Store(false)
}

func (m *collector) AddNode() {
	m.nodes.Add(1)
}

func (m *collector) AddLeaf() {
	m.leaves.Add(1)
}

func (m *collector) AddCutoff() {
	m.cutoffs.Add(1)
}

func (m *collector) SetDisfavored(value bool) {
	m.disfavored.Store(value)
}

func (m *collector) Complete(score int) SearchMetric {
	return SearchMetric{
		Depth:      m.depth,
		Duration:   time.Since(m.startTime),
		Nodes:      int(m.nodes.Load()),
		Leaves:     int(m.leaves.Load()),
		Cutoffs:    int(m.cutoffs.Load()),
		Score:      score,
		Disfavored: m.disfavored.Load(),
	}
}

type dummyCollector struct{}

func NewDummyCollector() Collector {
	return &dummyCollector{}
}

func (m *dummyCollector) Start(depth int)                 {}
func (m *dummyCollector) AddNode()                        {}
func (m *dummyCollector) AddLeaf()                        {}
func (m *dummyCollector) AddCutoff()                      {}
func (m *dummyCollector) SetDisfavored(value bool)        {}
func (m *dummyCollector) Complete(score int) SearchMetric { return SearchMetric{} }
