package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionRef(t *testing.T) {
	a := Session{Key: 5, Year: 2021}
	b := Session{Key: 5, Year: 2022}

	assert.NotEqual(t, a.Ref(), b.Ref(), "round keys repeat across seasons")
	assert.Equal(t, "2021/5", a.Ref().String())

	seen := map[SessionRef]bool{a.Ref(): true}
	assert.False(t, seen[b.Ref()])
}

func TestSessionStarted(t *testing.T) {
	now := time.Date(2024, 3, 2, 16, 0, 0, 0, time.UTC)

	assert.True(t, Session{Start: now.Add(-time.Hour)}.Started(now))
	assert.False(t, Session{Start: now.Add(time.Hour)}.Started(now))
	assert.False(t, Session{}.Started(now))
}

func TestSessionJSONOmitsZeroEnd(t *testing.T) {
	data, err := json.Marshal(Session{Key: 1, Year: 2021, Start: time.Date(2021, 3, 28, 15, 0, 0, 0, time.UTC)})
	require.NoError(t, err)
	assert.NotContains(t, string(data), "date_end")
	assert.Contains(t, string(data), `"date_start":"2021-03-28T15:00:00Z"`)
}

func TestPlaceholderDriver(t *testing.T) {
	d := PlaceholderDriver(77)
	assert.Equal(t, 77, d.Number)
	assert.Equal(t, "Driver #77", d.FullName)
	assert.Equal(t, "Unknown Team", d.TeamName)
	assert.Equal(t, "333333", d.TeamColour)
}

func TestPodium(t *testing.T) {
	r := &SessionResult{Rows: []ResultRow{{Position: 1}, {Position: 2}}}
	assert.Len(t, r.Podium(), 2)

	r.Rows = append(r.Rows, ResultRow{Position: 3}, ResultRow{Position: 4})
	podium := r.Podium()
	require.Len(t, podium, 3)
	assert.Equal(t, 3, podium[2].Position)
}
