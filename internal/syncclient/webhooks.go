package syncclient

import (
	"context"
	"net/http"
	"net/url"
	"sort"

	ferrors "git.home.luguber.info/inful/kaizen/internal/foundation/errors"
)

type samplePayload struct {
	path        string
	contentType string
	body        string
}

var samples = map[string]samplePayload{
	"twilio": {
		path:        "/webhook/twilio-sms",
		contentType: "application/x-www-form-urlencoded",
		body: url.Values{
			"From":       {"+447700900000"},
			"Body":       {"YES"},
			"MessageSid": {"SM123"},
		}.Encode(),
	},
	"wa": {
		path:        "/webhook/whatsapp",
		contentType: "application/json",
		body:        `{"object":"whatsapp_business_account","entry":[{"changes":[{"value":{"messages":[{"from":"+447700900000","id":"wamid.1","text":{"body":"YES"}}],"contacts":[{"profile":{"name":"Ali"}}]}}]}]}`,
	},
	"vapi": {
		path:        "/webhook/vapi",
		contentType: "application/json",
		body:        `{"callId":"call-123","from":"+44...","transcript":"I will attend","intent":"confirm","confidence":0.92,"tags":["WA-Valid","OPT-In"]}`,
	},
	"webhook": {
		path:        "/webhook/sample",
		contentType: "application/json",
		body:        `{"event":"sample","detail":"test webhook"}`,
	},
	"ghl": {
		path:        "/webhook/ghl",
		contentType: "application/json",
		body:        `{"event":"ghl_test","status":"ok"}`,
	},
}

// WebhookKinds lists the sample payloads SendWebhookTest knows.
func WebhookKinds() []string {
	kinds := make([]string, 0, len(samples))
	for k := range samples {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	return kinds
}

// SendWebhookTest posts the sample payload for kind to its webhook path.
func (c *Client) SendWebhookTest(ctx context.Context, kind string) error {
	s, ok := samples[kind]
	if !ok {
		return ferrors.ValidationError("unknown webhook test").
			WithContext("kind", kind).WithContext("known", WebhookKinds()).Build()
	}
	_, err := c.do(ctx, http.MethodPost, s.path, s.contentType, []byte(s.body))
	return err
}
