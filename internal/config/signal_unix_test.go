//go:build unix

package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

func TestParseSignal(t *testing.T) {
	for in, want := range map[string]unix.Signal{
		"":        unix.SIGHUP,
		"SIGHUP":  unix.SIGHUP,
		"hup":     unix.SIGHUP,
		"usr1":    unix.SIGUSR1,
		"SIGUSR2": unix.SIGUSR2,
	} {
		got, err := ParseSignal(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	for _, in := range []string{"NOPE", "SIGKILL", "stop"} {
		_, err := ParseSignal(in)
		assert.Error(t, err, in)
	}
}
