package valueobjects

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPosition_Snap(t *testing.T) {
	tests := []struct {
		name string
		in   Position
		grid float64
		want Position
	}{
		{name: "already on grid", in: NewPosition(300, 200), grid: 20, want: NewPosition(300, 200)},
		{name: "rounds down", in: NewPosition(309, 191), grid: 20, want: NewPosition(300, 200)},
		{name: "rounds up at half", in: NewPosition(310, 210), grid: 20, want: NewPosition(320, 220)},
		{name: "negative coordinates", in: NewPosition(-29, -31), grid: 20, want: NewPosition(-20, -40)},
		{name: "zero grid is identity", in: NewPosition(13, 17), grid: 0, want: NewPosition(13, 17)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.in.Snap(tt.grid))
		})
	}
}

func TestPosition_Arithmetic(t *testing.T) {
	p := NewPosition(3, 4)
	assert.Equal(t, NewPosition(4, 6), p.Add(NewPosition(1, 2)))
	assert.Equal(t, NewPosition(2, 2), p.Sub(NewPosition(1, 2)))
	assert.Equal(t, NewPosition(6, 8), p.Scale(2))
	assert.InDelta(t, 5.0, p.Distance(Position{}), 1e-9)
}

func TestRect_Contains(t *testing.T) {
	r := NewRect(NewPosition(100, 100), 200, 80)

	assert.True(t, r.Contains(NewPosition(100, 100)))
	assert.True(t, r.Contains(NewPosition(300, 180)))
	assert.True(t, r.Contains(NewPosition(200, 140)))
	assert.False(t, r.Contains(NewPosition(301, 140)))
	assert.False(t, r.Contains(NewPosition(200, 99)))
	assert.Equal(t, 200.0, r.Width())
	assert.Equal(t, 80.0, r.Height())
}

func TestNodeID(t *testing.T) {
	a := NewNodeID()
	b := NewNodeID()
	assert.False(t, a.Equals(b))
	assert.False(t, a.IsZero())

	_, err := NewNodeIDFromString("")
	assert.Error(t, err)

	id, err := NewNodeIDFromString("1")
	require.NoError(t, err)

	raw, err := json.Marshal(id)
	require.NoError(t, err)
	assert.Equal(t, `"1"`, string(raw))

	var back NodeID
	require.NoError(t, json.Unmarshal(raw, &back))
	assert.True(t, back.Equals(id))
	assert.Error(t, json.Unmarshal([]byte(`42`), &back))
}

func TestNodeKind_Family(t *testing.T) {
	assert.Equal(t, "web3", KindDefi.Family())
	assert.Equal(t, "web2", KindSocial.Family())
	assert.Equal(t, "custom", NodeKind("custom").Family())
	assert.True(t, NodeKind("  ").IsZero())
}
