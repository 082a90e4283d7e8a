//go:build !linux

package pool

import "errors"

var errAffinityUnsupported = errors.New("pool: cpu affinity is only supported on linux")

func pin(int) (int, error) {
	return -1, errAffinityUnsupported
}
