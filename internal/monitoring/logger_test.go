package monitoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSetLogger(t *testing.T) {
	orig := Logf
	defer func() { Logf = orig }()

	var captured string
	SetLogger(func(format string, v ...interface{}) {
		captured = format
	})
	Logf("bus servo %d moved", 3)
	assert.Equal(t, "bus servo %d moved", captured)

	// nil installs a no-op, not a nil func
	SetLogger(nil)
	assert.NotPanics(t, func() { Logf("dropped") })
}

func TestDefaultLoggerIsSet(t *testing.T) {
	assert.NotNil(t, Logf)
}
