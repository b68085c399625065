//go:build linux

package tcp

import (
	"net"
	"testing"

	"github.com/stretchr/testify/require"
)

// Two listeners must be able to share one port, which is what lets the
// server run one accept loop per reactor.
func TestReusePortDoubleBind(t *testing.T) {
	first, err := listenReusePort("127.0.0.1:0")
	require.NoError(t, err)
	defer first.Close()

	addr := first.Addr().(*net.TCPAddr).String()
	second, err := listenReusePort(addr)
	require.NoError(t, err)
	defer second.Close()
}
