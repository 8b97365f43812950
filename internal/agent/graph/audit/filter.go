package audit

import (
	"github.com/samber/lo"

	"github.com/tanpawarit/tripcomposer/internal/agent/graph/prompts"
	"github.com/tanpawarit/tripcomposer/internal/agent/model"
)

// FilterServices strips sub-drafts of disabled services and drops options left without
// a selection. When anything was removed a localized notice is appended to followUps.
// The input reply is not modified.
func FilterServices(reply model.AssistantReply, flags model.ServiceFlags, locale prompts.Locale) (model.AssistantReply, bool) {
	out := cloneReply(reply)
	removed := false

	kept := make([]model.PackageOption, 0, len(out.PackageOptions))
	for _, opt := range out.PackageOptions {
		if stripDisabled(&opt.Draft, flags) {
			removed = true
		}
		if !opt.Draft.HasSelection() {
			removed = true
			continue
		}
		kept = append(kept, opt)
	}
	out.PackageOptions = kept

	if !removed {
		return out, false
	}

	notice := prompts.DisabledServicesNotice(locale)
	if !lo.Contains(out.FollowUps, notice) {
		if len(out.FollowUps) >= model.MaxFollowUps {
			out.FollowUps = out.FollowUps[:model.MaxFollowUps-1]
		}
		out.FollowUps = append(out.FollowUps, notice)
	}
	if len(out.PackageOptions) == 0 {
		out.Stage = model.StageCollecting
	}
	out.EnforceStage()
	return out, true
}

func stripDisabled(d *model.PackageDraft, flags model.ServiceFlags) bool {
	removed := false
	if d.Hotel != nil && !flags.Hotel {
		d.Hotel, removed = nil, true
	}
	if d.Transfer != nil && !flags.Transfer {
		d.Transfer, removed = nil, true
	}
	if d.Flight != nil && !flags.Flight {
		d.Flight, removed = nil, true
	}
	if d.Excursion != nil && !flags.Excursion {
		d.Excursion, removed = nil, true
	}
	if d.Insurance != nil && !flags.Insurance {
		d.Insurance, removed = nil, true
	}
	return removed
}
