//go:build !libmpv

package player

import (
	"errors"
	"testing"
)

func TestNewMPVWithoutTagIsDisabled(t *testing.T) {
	t.Parallel()

	handle, err := NewMPV(Container{}, Options{ID: "1"})
	if handle != nil || !errors.Is(err, ErrBackendDisabled) {
		t.Fatalf("expected ErrBackendDisabled, got %v / %v", handle, err)
	}
}
