package notify

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const pushoverAPI = "https://api.pushover.net/1/messages.json"

type Pushover struct {
	Token    string
	User     string
	Device   string
	Priority int
	Client   *http.Client
	// APIURL overrides the endpoint in tests.
	APIURL string
}

// NewPushover returns nil when token or user is empty, which disables
// the notifier.
func NewPushover(token, user, device string, priority int) *Pushover {
	if token == "" || user == "" {
		return nil
	}
	return &Pushover{
		Token:    token,
		User:     user,
		Device:   device,
		Priority: priority,
		Client:   &http.Client{Timeout: 10 * time.Second},
	}
}

func (p *Pushover) Send(ctx context.Context, title, text string) error {
	form := url.Values{}
	form.Set("token", p.Token)
	form.Set("user", p.User)
	form.Set("title", title)
	form.Set("message", text)
	form.Set("priority", strconv.Itoa(p.Priority))
	if p.Device != "" {
		form.Set("device", p.Device)
	}

	endpoint := p.APIURL
	if endpoint == "" {
		endpoint = pushoverAPI
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := p.Client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		return fmt.Errorf("pushover status %d: %s", resp.StatusCode, bodySnippet(resp.Body))
	}
	return nil
}
