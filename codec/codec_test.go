package codec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sidecar struct {
	Split string   `json:"split"`
	Rows  int      `json:"rows"`
	Tags  []string `json:"tags,omitempty"`
}

func TestCodecs(t *testing.T) {
	in := sidecar{Split: "train", Rows: 42, Tags: []string{"a"}}

	for _, name := range []string{"json", "go-json"} {
		t.Run(name, func(t *testing.T) {
			c, ok := ByName(name)
			require.True(t, ok)
			assert.Equal(t, name, c.Name())

			b, err := c.Marshal(in)
			require.NoError(t, err)
			assert.JSONEq(t, `{"split":"train","rows":42,"tags":["a"]}`, string(b))

			var out sidecar
			require.NoError(t, c.Unmarshal(b, &out))
			assert.Equal(t, in, out)
		})
	}

	_, ok := ByName("msgpack")
	assert.False(t, ok)
}

func TestMustMarshal(t *testing.T) {
	assert.Equal(t, `{"split":"","rows":0}`, string(MustMarshal(nil, sidecar{})))
	assert.Panics(t, func() { MustMarshal(JSON{}, make(chan int)) })
}
