package adapter

import (
	"github.com/danlabrador/myamazonguy-api-request-throttlers/rate"
	"github.com/danlabrador/myamazonguy-api-request-throttlers/transport"
)

// Fixed ignores responses entirely: the caller-supplied configuration
// stays in force, credentials never rotate, and no wait is ever
// overridden. This is the default adapter for services that publish a
// static limit.
type Fixed struct {
}

var _ Adapter = Fixed{}

func (Fixed) DeriveLimits(_ *transport.Response) (rate.Config, bool) {
	return rate.Config{}, false
}

func (Fixed) Interpret(_ *transport.Response) Signal {
	return Signal{}
}
