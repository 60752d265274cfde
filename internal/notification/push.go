// Package notification sends rest decisions as push notifications through
// shoutrrr, so the same decision can reach Telegram, Slack, email or any
// other service shoutrrr supports.
package notification

import (
	"context"
	"fmt"
	"io"
	"log"
	"log/slog"
	"strings"

	shoutrrr "github.com/nicholas-fedor/shoutrrr"
	stypes "github.com/nicholas-fedor/shoutrrr/pkg/types"

	"github.com/bahria/bahria-go/internal/analysis"
	"github.com/bahria/bahria-go/internal/conf"
	"github.com/bahria/bahria-go/internal/errors"
	"github.com/bahria/bahria-go/internal/logging"
	"github.com/bahria/bahria-go/internal/privacy"
)

// Sender delivers a message to every configured service.
type Sender interface {
	Send(message string, params *stypes.Params) []error
}

// PushNotifier implements analysis.Publisher with a shoutrrr sender.
type PushNotifier struct {
	sender Sender
	node   string
	logger *slog.Logger
}

// Option customizes a PushNotifier.
type Option func(*PushNotifier)

// WithSender replaces the shoutrrr router.
func WithSender(s Sender) Option {
	return func(p *PushNotifier) { p.sender = s }
}

// NewPushNotifier builds a notifier from settings. Service URLs are parsed up
// front so a typo fails at startup rather than on the first decision.
func NewPushNotifier(settings conf.PushSettings, node string, opts ...Option) (*PushNotifier, error) {
	p := &PushNotifier{
		node:   node,
		logger: logging.ForService("notification"),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.sender != nil {
		return p, nil
	}

	if len(settings.URLs) == 0 {
		return nil, errors.Newf("at least one push notification URL is required").
			Component("notification").
			Category(errors.CategoryConfiguration).
			Build()
	}

	router, err := shoutrrr.CreateSender(settings.URLs...)
	if err != nil {
		return nil, errors.New(privacy.WrapError(err)).
			Component("notification").
			Category(errors.CategoryConfiguration).
			Context("url_count", len(settings.URLs)).
			Build()
	}
	if settings.Timeout > 0 {
		router.Timeout = settings.Timeout
	}
	router.SetLogger(log.New(io.Discard, "", 0))
	p.sender = router

	return p, nil
}

// PublishDecision implements analysis.Publisher.
func (p *PushNotifier) PublishDecision(_ context.Context, r *analysis.Report) error {
	if r == nil || !r.RestRecommended() {
		return nil
	}

	params := stypes.Params{}
	params.SetTitle(Title(r))

	for _, err := range p.sender.Send(Message(r, p.node), &params) {
		if err != nil {
			return errors.New(privacy.WrapError(err)).
				Component("notification").
				Category(errors.CategoryIntegration).
				Context("report_id", r.ID).
				Context("species", r.Species.Code).
				Build()
		}
	}

	p.logger.Debug("Push notification sent", "report_id", r.ID, "species", r.Species.Code)
	return nil
}

// Title returns the notification title for a report.
func Title(r *analysis.Report) string {
	return fmt.Sprintf("Biological rest recommended: %s", r.Species.CommonName)
}

// Message returns the notification body for a report.
func Message(r *analysis.Report, node string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s, zone %s, sample of %s\n",
		r.Species.Icon, r.Species.CommonName, r.Sample.Zone, r.Sample.Date.Format("2006-01-02"))
	fmt.Fprintf(&b, "Risk score %d/100, urgency %s\n", r.Prediction.RiskScore, r.Prediction.Urgency)
	if r.Impact != nil {
		fmt.Fprintf(&b, "Suggested duration %d days, %d workers affected\n",
			r.Impact.DurationDays, r.Impact.WorkersAffected)
	}
	if r.Recommendation.Text != "" {
		b.WriteString(r.Recommendation.Text)
		b.WriteString("\n")
	}
	if node != "" {
		fmt.Fprintf(&b, "Node %s", node)
	}
	return strings.TrimRight(b.String(), "\n")
}

var _ analysis.Publisher = (*PushNotifier)(nil)
