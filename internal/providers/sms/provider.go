package sms

import "context"

type Provider interface {
	Send(ctx context.Context, to string, message string) error
}

type NoOpProvider struct{}

func (p *NoOpProvider) Send(ctx context.Context, to string, message string) error {
	return nil
}
