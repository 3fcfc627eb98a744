package source

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sells-group/paddock/internal/model"
)

func TestSelectorFor(t *testing.T) {
	live := NewLive(&fakeOpenF1{})
	legacy := NewLegacy(&fakeErgast{})
	sel := NewSelector(live, legacy, 0)

	tests := []struct {
		year int
		want model.Provenance
	}{
		{1950, model.ProvenanceLegacy},
		{2022, model.ProvenanceLegacy},
		{2023, model.ProvenanceLive},
		{2026, model.ProvenanceLive},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, sel.For(tt.year).Provenance(), "year %d", tt.year)
	}
	assert.Equal(t, DefaultLegacyCutoff, sel.Cutoff())
}

func TestSelectorCustomCutoff(t *testing.T) {
	sel := NewSelector(NewLive(&fakeOpenF1{}), NewLegacy(&fakeErgast{}), 2018)
	assert.Equal(t, model.ProvenanceLive, sel.For(2018).Provenance())
	assert.Equal(t, model.ProvenanceLegacy, sel.For(2017).Provenance())
}

func TestSelectorStandings(t *testing.T) {
	legacy := NewLegacy(&fakeErgast{})
	sel := NewSelector(NewLive(&fakeOpenF1{}), legacy, 0)
	assert.Same(t, legacy, sel.Standings())

	sel = NewSelector(NewLive(&fakeOpenF1{}), NewLive(&fakeOpenF1{}), 0)
	assert.Nil(t, sel.Standings())
}
