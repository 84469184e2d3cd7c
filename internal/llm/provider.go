package llm

import "strings"

// Provider is either a configured Client or an explicit "unconfigured"
// value carrying the reason. Callers branch on Client()'s ok result instead
// of checking for nil.
type Provider struct {
	client Client
	reason string
}

func Configured(c Client) Provider {
	if c == nil {
		return Unconfigured("nil client")
	}
	return Provider{client: c}
}

func Unconfigured(reason string) Provider {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		reason = "no credentials"
	}
	return Provider{reason: reason}
}

// Client returns the configured client, or false when unconfigured.
func (p Provider) Client() (Client, bool) { return p.client, p.client != nil }

func (p Provider) Configured() bool { return p.client != nil }

// Reason explains why the provider is unconfigured.
func (p Provider) Reason() string { return p.reason }

func (p Provider) Name() string {
	if p.client == nil {
		return "unconfigured"
	}
	return p.client.Name()
}

func (p Provider) Close() error {
	if p.client == nil {
		return nil
	}
	return p.client.Close()
}
