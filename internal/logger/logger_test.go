package logger

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDebugOnlyWhenEnabled(t *testing.T) {
	var buf bytes.Buffer
	prev := SetOutput(&buf)
	t.Cleanup(func() {
		SetOutput(prev)
		Init(false)
	})

	Init(false)
	Debug("[DEBUG] hidden %d\n", 1)
	assert.Empty(t, buf.String())

	Init(true)
	Debug("[DEBUG] shown %d\n", 2)
	assert.Contains(t, buf.String(), "[DEBUG] shown 2")
}

func TestLevelsWriteToOutput(t *testing.T) {
	var buf bytes.Buffer
	prev := SetOutput(&buf)
	t.Cleanup(func() { SetOutput(prev) })

	Info("[INFO] one\n")
	Warn("[WARN] two\n")
	Error("[ERROR] three\n")

	got := buf.String()
	assert.Contains(t, got, "[INFO] one")
	assert.Contains(t, got, "[WARN] two")
	assert.Contains(t, got, "[ERROR] three")
	assert.Same(t, &buf, Writer())
}
