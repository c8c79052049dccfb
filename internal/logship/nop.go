package logship

import "context"

// Nop returns a Shipper that accepts and discards every event. Wiring code
// uses it when the collector is not configured.
func Nop() Shipper { return nopShipper{} }

type nopShipper struct{}

func (nopShipper) Send(context.Context, Stack, Level, string, string) (Receipt, error) {
	return Receipt{}, nil
}

func (nopShipper) Debug(context.Context, Stack, string, string) (Receipt, bool) {
	return Receipt{}, true
}

func (nopShipper) Info(context.Context, Stack, string, string) (Receipt, bool) {
	return Receipt{}, true
}

func (nopShipper) Warn(context.Context, Stack, string, string) (Receipt, bool) {
	return Receipt{}, true
}

func (nopShipper) Error(context.Context, Stack, string, string) (Receipt, bool) {
	return Receipt{}, true
}

func (nopShipper) Fatal(context.Context, Stack, string, string) (Receipt, bool) {
	return Receipt{}, true
}
