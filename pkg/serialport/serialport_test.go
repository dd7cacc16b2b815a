package serialport

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	testCases := []struct {
		name string
		conf Config
		ok   bool
	}{
		{"ok", Config{Name: "/dev/ttyUSB0", Baud: 1000000}, true},
		{"no name", Config{Baud: 115200}, false},
		{"no baud", Config{Name: "/dev/ttyACM0"}, false},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.conf.Validate()
			if tc.ok {
				require.NoError(t, err)
			} else {
				require.Error(t, err)
			}
		})
	}
}

func TestOpenMissing(t *testing.T) {
	_, err := Open("/dev/gservo-does-not-exist", 115200, 0)
	require.Error(t, err)
	require.Contains(t, err.Error(), "gservo-does-not-exist")
}
