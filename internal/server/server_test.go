package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/jumppath/internal/gridmap"
	"github.com/udisondev/jumppath/internal/pathfinder"
	"github.com/udisondev/jumppath/internal/pathfinding"
)

// gapGraph is a 5x3 level with a one-cell gap, 1 world unit per cell:
//
//	.....
//	S...G
//	##.##
func gapGraph() *gridmap.Graph {
	g := gridmap.New(gridmap.Step{X: 1, Y: 1})
	g.Update(func(grid *pathfinding.Grid) {
		for _, x := range []int{0, 1, 3, 4} {
			grid.Set(x, 2, pathfinding.Floor)
		}
	})
	return g
}

type fixture struct {
	pf   *pathfinder.Pathfinder
	srv  *Server
	http *httptest.Server
}

// newFixture starts a pathfinder and a test server. With flush set, results
// are delivered by a background flush loop.
func newFixture(t *testing.T, flush bool) *fixture {
	t.Helper()

	pf := pathfinder.New(pathfinder.Options{Workers: 1, Filtered: true})
	pf.SetGraph(gapGraph())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{}, 2)
	go func() { _ = pf.Start(ctx); done <- struct{}{} }()
	if flush {
		go func() { _ = pf.Run(ctx, time.Millisecond); done <- struct{}{} }()
	} else {
		done <- struct{}{}
	}

	srv := New(pf, Config{})
	hs := httptest.NewServer(srv.Handler())

	t.Cleanup(func() {
		hs.Close()
		cancel()
		<-done
		<-done
	})

	return &fixture{pf: pf, srv: srv, http: hs}
}

func (f *fixture) dial(t *testing.T) *websocket.Conn {
	t.Helper()

	url := "ws" + strings.TrimPrefix(f.http.URL, "http") + "/ws"
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if resp != nil {
		resp.Body.Close()
	}
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func send(t *testing.T, conn *websocket.Conn, v any) {
	t.Helper()
	require.NoError(t, conn.WriteJSON(v))
}

func read(t *testing.T, conn *websocket.Conn) map[string]any {
	t.Helper()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var msg map[string]any
	require.NoError(t, conn.ReadJSON(&msg))
	return msg
}

func computeMessage(seq int) map[string]any {
	return map[string]any{
		"type":      TypeCompute,
		"seq":       seq,
		"initial":   []float64{0.5, 1.5},
		"goal":      []float64{4.5, 1.5},
		"character": map[string]any{"max_jump_height": 2, "air_stride": 2, "width": 1, "height": 1},
		"region":    []int{0, 0, 5, 3},
	}
}

func TestComputeRoundTrip(t *testing.T) {
	f := newFixture(t, true)
	conn := f.dial(t)

	send(t, conn, computeMessage(7))

	accepted := read(t, conn)
	assert.Equal(t, TypeAccepted, accepted["type"])
	assert.Equal(t, float64(7), accepted["seq"])
	id := accepted["id"]

	path := read(t, conn)
	assert.Equal(t, TypePath, path["type"])
	assert.Equal(t, id, path["id"])
	assert.Equal(t, []any{
		[]any{0.0, 1.0},
		[]any{1.0, 1.0},
		[]any{2.0, 0.0},
		[]any{3.0, 1.0},
		[]any{4.0, 1.0},
	}, path["path"])
	assert.Equal(t, []any{1.0, 1.0, 2.0, 1.0, 1.0}, path["scenarios"])
}

func TestComputeWithoutPath(t *testing.T) {
	f := newFixture(t, true)
	conn := f.dial(t)

	msg := computeMessage(1)
	msg["character"] = map[string]any{"max_jump_height": 0, "air_stride": 2, "width": 1, "height": 1}
	send(t, conn, msg)

	assert.Equal(t, TypeAccepted, read(t, conn)["type"])

	path := read(t, conn)
	assert.Equal(t, TypePath, path["type"])
	assert.Equal(t, []any{}, path["path"])
	assert.Equal(t, []any{}, path["scenarios"])
}

func TestRequestFromMessage(t *testing.T) {
	jumper := &pathfinding.Settings{MaxJumpHeight: 2}

	req := clientMessage{Initial: &[2]float64{1, 2}, Goal: &[2]float64{3, 4}}.request(jumper)
	assert.Same(t, jumper, req.Character)
	assert.Equal(t, gridmap.Vec2{X: 1, Y: 2}, req.Initial)
	assert.True(t, req.Region.Empty())

	own := &pathfinding.Settings{Width: 2}
	req = clientMessage{
		Initial:       &[2]float64{0, 0},
		Goal:          &[2]float64{0, 0},
		Character:     own,
		Region:        &[4]int{1, 2, 3, 4},
		DynamicMasses: [][4]float64{{1, 1, 2, 2}},
	}.request(jumper)
	assert.Same(t, own, req.Character)
	assert.Equal(t, pathfinding.Region{X: 1, Y: 2, W: 3, H: 4}, req.Region)
	assert.Equal(t, []gridmap.Rect{{X: 1, Y: 1, W: 2, H: 2}}, req.DynamicMasses)
}

func TestInvalidMessages(t *testing.T) {
	f := newFixture(t, true)
	conn := f.dial(t)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("{not json")))
	assert.Equal(t, TypeError, read(t, conn)["type"])

	send(t, conn, map[string]any{"type": "teleport", "seq": 3})
	msg := read(t, conn)
	assert.Equal(t, TypeError, msg["type"])
	assert.Equal(t, float64(3), msg["seq"])

	send(t, conn, map[string]any{"type": TypeCompute, "seq": 4})
	msg = read(t, conn)
	assert.Equal(t, TypeError, msg["type"])
	assert.Contains(t, msg["error"], "required")
}

func TestCancelDropsPath(t *testing.T) {
	f := newFixture(t, false)
	conn := f.dial(t)

	send(t, conn, computeMessage(1))
	accepted := read(t, conn)
	id := int(accepted["id"].(float64))

	send(t, conn, map[string]any{"type": TypeCancel, "id": id})
	// Messages are handled in order: once this error arrives the cancel is done.
	send(t, conn, map[string]any{"type": "sync"})
	assert.Equal(t, TypeError, read(t, conn)["type"])

	require.Eventually(t, func() bool {
		f.pf.Flush()
		return f.pf.Stats().Dropped == 1
	}, 2*time.Second, time.Millisecond)
}

func TestCancelIgnoresOtherSessions(t *testing.T) {
	f := newFixture(t, false)
	owner := f.dial(t)
	other := f.dial(t)

	send(t, owner, computeMessage(1))
	accepted := read(t, owner)
	require.Equal(t, TypeAccepted, accepted["type"])
	id := int(accepted["id"].(float64))

	send(t, other, map[string]any{"type": TypeCancel, "id": id})
	send(t, other, map[string]any{"type": "sync"})
	assert.Equal(t, TypeError, read(t, other)["type"])

	require.Eventually(t, func() bool {
		return f.pf.Flush() > 0
	}, 2*time.Second, time.Millisecond)

	path := read(t, owner)
	assert.Equal(t, TypePath, path["type"])
	assert.Equal(t, float64(id), path["id"])
	assert.Zero(t, f.pf.Stats().Dropped)
}

func TestCloseCancelsPending(t *testing.T) {
	f := newFixture(t, false)
	conn := f.dial(t)

	send(t, conn, computeMessage(1))
	assert.Equal(t, TypeAccepted, read(t, conn)["type"])
	require.Equal(t, 1, f.srv.Sessions())

	require.NoError(t, conn.Close())
	require.Eventually(t, func() bool { return f.srv.Sessions() == 0 }, 2*time.Second, time.Millisecond)

	require.Eventually(t, func() bool {
		f.pf.Flush()
		return f.pf.Stats().Dropped == 1
	}, 2*time.Second, time.Millisecond)
}

func TestStats(t *testing.T) {
	f := newFixture(t, true)
	conn := f.dial(t)

	send(t, conn, computeMessage(1))
	read(t, conn)
	read(t, conn)

	resp, err := http.Get(f.http.URL + "/stats")
	require.NoError(t, err)
	defer resp.Body.Close()

	var stats pathfinder.Stats
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&stats))
	assert.Equal(t, int64(1), stats.Requests)
	assert.Equal(t, int64(1), stats.Completed)
}
