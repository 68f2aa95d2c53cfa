package board

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openWith(port Porter) PortOpener {
	return func(path string, baud int) (Porter, error) {
		return port, nil
	}
}

func failOpener(path string, baud int) (Porter, error) {
	return nil, errors.New("no such device")
}

func TestLegacyBoardFrames(t *testing.T) {
	t.Parallel()

	t.Run("bus servo move", func(t *testing.T) {
		t.Parallel()
		port := NewTestablePort()
		b, err := newLegacyBoard(openWith(port), "/dev/test")
		require.NoError(t, err)

		require.NoError(t, b.SetBusServo(3, 650, 80*time.Millisecond))

		// 0x55 0x55 | id | len | cmd | pos lo/hi | time lo/hi | checksum
		want := []byte{0x55, 0x55, 0x03, 0x07, 0x01, 0x8A, 0x02, 0x50, 0x00}
		var sum byte
		for _, v := range want[2:] {
			sum += v
		}
		want = append(want, ^sum)
		assert.Equal(t, want, port.WrittenData())
	})

	t.Run("pwm move addresses the controller", func(t *testing.T) {
		t.Parallel()
		port := NewTestablePort()
		b, err := newLegacyBoard(openWith(port), "/dev/test")
		require.NoError(t, err)

		require.NoError(t, b.SetPWMServo(2, 1500, 80*time.Millisecond))

		data := port.WrittenData()
		require.GreaterOrEqual(t, len(data), 5)
		assert.Equal(t, []byte{0x55, 0x55}, data[:2])
		assert.Equal(t, byte(lxControllerID), data[2])
		assert.Equal(t, byte(lxCmdPWMMove), data[4])
	})

	t.Run("re-clamps pulse defensively", func(t *testing.T) {
		t.Parallel()
		port := NewTestablePort()
		b, err := newLegacyBoard(openWith(port), "/dev/test")
		require.NoError(t, err)

		require.NoError(t, b.SetBusServo(1, 4000, 0))

		data := port.WrittenData()
		pulse := int(data[5]) | int(data[6])<<8
		assert.Equal(t, 1000, pulse)
	})

	t.Run("rejects non-positive servo id", func(t *testing.T) {
		t.Parallel()
		port := NewTestablePort()
		b, err := newLegacyBoard(openWith(port), "/dev/test")
		require.NoError(t, err)

		assert.Error(t, b.SetBusServo(0, 500, 0))
		assert.Zero(t, port.WriteCalls)
	})

	t.Run("short write surfaces ErrWriteFailed", func(t *testing.T) {
		t.Parallel()
		port := NewTestablePort()
		port.ShortWrite = true
		b, err := newLegacyBoard(openWith(port), "/dev/test")
		require.NoError(t, err)

		assert.ErrorIs(t, b.SetBusServo(1, 500, 0), ErrWriteFailed)
	})
}

func TestRRCBoardPackets(t *testing.T) {
	t.Parallel()

	t.Run("bus servo packet carries a valid crc", func(t *testing.T) {
		t.Parallel()
		port := NewTestablePort()
		b, err := newRRCBoard(openWith(port), "/dev/test")
		require.NoError(t, err)

		require.NoError(t, b.SetBusServo(7, 500, 80*time.Millisecond))

		data := port.WrittenData()
		require.GreaterOrEqual(t, len(data), 5)
		assert.Equal(t, []byte{0xAA, 0x55}, data[:2])
		assert.Equal(t, byte(rrcFuncBusServo), data[2])
		payloadLen := int(data[3])
		require.Len(t, data, 4+payloadLen+1)
		assert.Equal(t, crc8(data[2:len(data)-1]), data[len(data)-1])
	})

	t.Run("pwm packet uses the pwm function code", func(t *testing.T) {
		t.Parallel()
		port := NewTestablePort()
		b, err := newRRCBoard(openWith(port), "/dev/test")
		require.NoError(t, err)

		require.NoError(t, b.SetPWMServo(1, 9999, 0))

		data := port.WrittenData()
		assert.Equal(t, byte(rrcFuncPWMServo), data[2])
		// microseconds re-clamped to the PWM ceiling: duration lo/hi,
		// count, channel, then pulse width
		us := int(data[8]) | int(data[9])<<8
		assert.Equal(t, 2500, us)
	})

	t.Run("write error passes through", func(t *testing.T) {
		t.Parallel()
		port := NewTestablePort()
		port.WriteError = errors.New("bus fault")
		b, err := newRRCBoard(openWith(port), "/dev/test")
		require.NoError(t, err)

		assert.EqualError(t, b.SetBusServo(1, 500, 0), "bus fault")
	})
}

func TestProbe(t *testing.T) {
	t.Parallel()

	t.Run("prefers the legacy board", func(t *testing.T) {
		t.Parallel()
		backend, err := Probe(openWith(NewTestablePort()), "/dev/a", "/dev/b")
		require.NoError(t, err)
		assert.Equal(t, "legacy-board", backend.Mode())
	})

	t.Run("falls back to the ros-robot-controller", func(t *testing.T) {
		t.Parallel()
		port := NewTestablePort()
		opener := func(path string, baud int) (Porter, error) {
			if path == "/dev/rrc" {
				return port, nil
			}
			return nil, errors.New("no such device")
		}
		backend, err := Probe(opener, "/dev/legacy", "/dev/rrc")
		require.NoError(t, err)
		assert.Equal(t, "ros-robot-controller", backend.Mode())
	})

	t.Run("degrades to simulated when nothing opens", func(t *testing.T) {
		t.Parallel()
		backend, err := Probe(failOpener, "/dev/a", "/dev/b")
		assert.ErrorIs(t, err, ErrUnavailable)
		require.NotNil(t, backend)
		assert.Equal(t, "simulated", backend.Mode())

		// degraded mode still accepts the full command surface
		assert.NoError(t, backend.SetBusServo(1, 500, time.Second))
		assert.NoError(t, backend.SetPWMServo(1, 1500, time.Second))
	})
}

func TestMotionMS(t *testing.T) {
	t.Parallel()
	assert.Equal(t, 80, motionMS(80*time.Millisecond))
	assert.Equal(t, 0, motionMS(-time.Second))
	assert.Equal(t, 0xFFFF, motionMS(time.Hour))
}
