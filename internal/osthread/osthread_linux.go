//go:build linux

package osthread

import (
	"golang.org/x/sys/unix"
)

func id() int { return unix.Gettid() }
