//go:build !linux && !darwin

package rlimit

func setStack(Limit) error {
	return ErrUnsupportedPlatform
}

func getStack() (Limit, error) {
	return Limit{}, ErrUnsupportedPlatform
}
