//go:build linux || darwin

package rlimit

import "golang.org/x/sys/unix"

func setStack(limit Limit) error {
	return unix.Setrlimit(unix.RLIMIT_STACK, &unix.Rlimit{Cur: limit.Cur, Max: limit.Max})
}

func getStack() (Limit, error) {
	var rl unix.Rlimit
	if err := unix.Getrlimit(unix.RLIMIT_STACK, &rl); err != nil {
		return Limit{}, err
	}
	return Limit{Cur: rl.Cur, Max: rl.Max}, nil
}
