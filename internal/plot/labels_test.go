package plot

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLabels(t *testing.T) {
	tests := []struct {
		name    string
		doc     string
		want    func() Labels
		wantErr bool
	}{
		{
			name: "english base with overrides",
			doc:  "benchmark: IMOEX\nreturns_title: Strategy vs IMOEX\n",
			want: func() Labels {
				l := English()
				l.Benchmark = "IMOEX"
				l.ReturnsTitle = "Strategy vs IMOEX"
				return l
			},
		},
		{
			name: "russian base",
			doc:  "base: ru\nstrategy: Моментум\n",
			want: func() Labels {
				l := Russian()
				l.Strategy = "Моментум"
				return l
			},
		},
		{name: "empty document", doc: "", wantErr: true},
		{name: "unknown key", doc: "title: nope\n", wantErr: true},
		{name: "unknown base", doc: "base: de\n", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseLabels([]byte(tt.doc))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want(), got)
		})
	}
}

func TestLoadLabels(t *testing.T) {
	path := filepath.Join(t.TempDir(), "labels.yaml")
	require.NoError(t, os.WriteFile(path, []byte("sharpe: Sharpe\nmax_drawdown: MDD\n"), 0o644))

	l, err := LoadLabels(path)
	require.NoError(t, err)
	assert.Equal(t, "Sharpe", l.Sharpe)
	assert.Equal(t, "MDD", l.MaxDrawdown)
	assert.Equal(t, English().DrawdownTitle, l.DrawdownTitle)

	_, err = LoadLabels(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
