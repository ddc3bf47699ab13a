//go:build linux || darwin || freebsd || netbsd || openbsd

package eventsource

import (
	"golang.org/x/sys/unix"
)

// FDReadable reports whether fd has readable data, using poll(2) with
// a zero timeout. Engine implementations backed by a daemon socket use
// this for the ServiceRef.Readable contract.
func FDReadable(fd int) (bool, error) {
	fds := []unix.PollFd{{
		Fd:     int32(fd),
		Events: unix.POLLIN | unix.POLLHUP | unix.POLLERR,
	}}
	for {
		n, err := unix.Poll(fds, 0)
		if err == unix.EINTR {
			continue
		}
		if err != nil {
			return false, err
		}
		return n == 1, nil
	}
}
