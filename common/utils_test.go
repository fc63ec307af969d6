package common

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCoalesce(t *testing.T) {
	assert.Equal(t, 3, Coalesce(0, 0, 3, 4))
	assert.Equal(t, "", Coalesce[string]())
	assert.Equal(t, "a", Coalesce("", "a"))
}

func TestNameFromPath(t *testing.T) {
	assert.Equal(t, "basic.wgsl", NameFromPath("shaders/basic.wgsl"))
	assert.Equal(t, "basic.wgsl", NameFromPath("basic.wgsl"))
	assert.Equal(t, "", NameFromPath(""))
}

func TestSetLogger(t *testing.T) {
	defer SetLogger(nil)

	assert.False(t, Logger().Enabled(t.Context(), slog.LevelError))

	var buf bytes.Buffer
	SetLogger(slog.New(slog.NewTextHandler(&buf, nil)))
	Logger().Info("hello")
	assert.Contains(t, buf.String(), "hello")

	SetLogger(nil)
	Logger().Error("dropped")
	assert.NotContains(t, buf.String(), "dropped")
}

func TestSliceToBytes(t *testing.T) {
	assert.Nil(t, SliceToBytes[float32](nil))
	assert.Equal(t, []byte{0x01, 0x00, 0x02, 0x00}, SliceToBytes([]uint16{1, 2}))

	v := struct{ A, B uint8 }{A: 3, B: 4}
	assert.Equal(t, []byte{3, 4}, StructToBytes(&v))
}
