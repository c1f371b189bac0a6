//go:build !libmpv

package player

func NewMPV(_ Container, _ Options) (Handle, error) {
	return nil, ErrBackendDisabled
}
