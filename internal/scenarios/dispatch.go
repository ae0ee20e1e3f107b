package scenarios

import (
	"context"
	"fmt"
	"strings"

	"omc/internal/notify"
	"omc/internal/telemetry"
	"omc/internal/types"
)

// DeliveryObserver is told about every send attempt. Implementations must not
// block.
type DeliveryObserver interface {
	ObserveDelivery(ctx context.Context, kind Kind, method types.NotifyMethod, succeeded bool)
}

// Dispatcher implements phase 2: it sends the prepared message over the
// recipient's channels and reports every attempt.
//
// With DistributionBoth email is the primary channel and is sent first. SMS is
// attempted after it regardless of the email outcome; the notification
// succeeds when at least one channel succeeded.
type Dispatcher struct {
	sender    notify.Sender
	reporter  telemetry.Reporter
	templates map[Kind]Templates
	observer  DeliveryObserver
	logger    types.Logger
}

// NewDispatcher creates a Dispatcher. reporter and observer are optional.
func NewDispatcher(sender notify.Sender, reporter telemetry.Reporter, templates map[Kind]Templates, observer DeliveryObserver, logger types.Logger) *Dispatcher {
	if logger == nil {
		logger = types.NopLogger{}
	}
	return &Dispatcher{
		sender:    sender,
		reporter:  reporter,
		templates: templates,
		observer:  observer,
		logger:    logger,
	}
}

type attempt struct {
	method   types.NotifyMethod
	address  string
	template string
}

// Dispatch delivers data for the workflow kind.
func (d *Dispatcher) Dispatch(ctx context.Context, kind Kind, event types.NotificationEvent, data PreparedData) types.ProcessingResult {
	logger := types.LoggerFromContext(ctx, d.logger)
	party := data.Party

	if party.DistributionChannel == types.DistributionNone || party.DistributionChannel == "" {
		return types.ProcessingResult{
			Status:      types.StatusSkipped,
			Description: "recipient has no distribution channel",
			Code:        types.ErrCodeSkipNoDistribution,
		}
	}

	attempts := d.plan(kind, party)
	if len(attempts) == 0 {
		return types.ProcessingResult{
			Status:      types.StatusNotPossible,
			Description: fmt.Sprintf("no %s template or address available for %s", party.DistributionChannel, kind),
			Code:        types.ErrCodeValidationMissingField,
		}
	}

	pkg := notify.Package{
		Personalization: personalize(party, data.Personalization),
		Reference: types.NotifyReference{
			Notification: event,
			CaseID:       data.CaseURI,
			PartyID:      party.URI,
		},
	}

	var sent []string
	var failures []string
	for _, a := range attempts {
		pkg.Address = a.address
		pkg.TemplateID = a.template

		var res notify.SendResult
		if a.method == types.NotifyMethodEmail {
			res = d.sender.SendEmail(ctx, pkg)
		} else {
			res = d.sender.SendSms(ctx, pkg)
		}

		if res.Success {
			sent = append(sent, string(a.method))
		} else {
			failures = append(failures, fmt.Sprintf("%s: %s", a.method, res.ErrorMessage))
		}
		if d.observer != nil {
			d.observer.ObserveDelivery(ctx, kind, a.method, res.Success)
		}
		d.report(ctx, logger, kind, event, data, a.method, res)
	}

	if len(sent) == 0 {
		return types.ProcessingResult{
			Status:      types.StatusFailure,
			Description: "delivery failed: " + strings.Join(failures, "; "),
			Code:        types.ErrCodeDeliveryFailed,
		}
	}
	if len(failures) > 0 {
		logger.Warn("partial delivery", "sent", sent, "failed", failures)
	}
	return types.Success(fmt.Sprintf("%s notification sent via %s", kind, strings.Join(sent, " and ")))
}

// plan lists the sends for the recipient's channel, email first. Channels
// without a template or without an address are left out.
func (d *Dispatcher) plan(kind Kind, party types.CommonPartyData) []attempt {
	tpl := d.templates[kind]
	email := attempt{method: types.NotifyMethodEmail, address: party.EmailAddress, template: tpl.Email}
	sms := attempt{method: types.NotifyMethodSms, address: party.TelephoneNumber, template: tpl.Sms}

	var planned []attempt
	switch party.DistributionChannel {
	case types.DistributionEmail:
		planned = []attempt{email}
	case types.DistributionSms:
		planned = []attempt{sms}
	case types.DistributionBoth:
		planned = []attempt{email, sms}
	}

	out := planned[:0]
	for _, a := range planned {
		if a.template != "" && a.address != "" {
			out = append(out, a)
		}
	}
	return out
}

func (d *Dispatcher) report(ctx context.Context, logger types.Logger, kind Kind, event types.NotificationEvent, data PreparedData, method types.NotifyMethod, res notify.SendResult) {
	if d.reporter == nil {
		return
	}

	message := fmt.Sprintf("%s notification sent via %s", kind, method)
	if !res.Success {
		message = fmt.Sprintf("%s notification via %s failed: %s", kind, method, res.ErrorMessage)
	}

	uri, err := d.reporter.ReportCompletion(ctx, telemetry.Completion{
		Party:     data.Party,
		CaseURI:   data.CaseURI,
		Method:    method,
		Message:   message,
		Succeeded: res.Success,
		SourceOrg: event.Attributes.SourceOrganization,
	})
	if err != nil {
		logger.Warn("telemetry not recorded", "method", method, "code", types.CodeOf(err), "error", err)
		return
	}
	if uri != "" {
		logger.Info("telemetry recorded", "method", method, "feedback", uri)
	}
}
