package audit

import "github.com/tanpawarit/tripcomposer/internal/agent/model"

// cloneReply copies everything the filter and audit may rewrite. Pointed-to values
// are shared; both passes only replace pointers, never write through them.
func cloneReply(r model.AssistantReply) model.AssistantReply {
	out := r
	out.Missing = append([]string{}, r.Missing...)
	out.FollowUps = append([]string{}, r.FollowUps...)
	out.PackageOptions = make([]model.PackageOption, len(r.PackageOptions))
	for i, o := range r.PackageOptions {
		out.PackageOptions[i] = cloneOption(o)
	}
	return out
}

func cloneOption(o model.PackageOption) model.PackageOption {
	out := o
	out.Highlights = append([]string{}, o.Highlights...)
	out.Draft = model.PackageDraft{}
	if o.Draft.Hotel != nil {
		h := *o.Draft.Hotel
		out.Draft.Hotel = &h
	}
	if o.Draft.Transfer != nil {
		t := *o.Draft.Transfer
		out.Draft.Transfer = &t
	}
	if o.Draft.Flight != nil {
		f := *o.Draft.Flight
		out.Draft.Flight = &f
	}
	if o.Draft.Excursion != nil {
		e := *o.Draft.Excursion
		e.Items = append([]model.ExcursionItem{}, o.Draft.Excursion.Items...)
		out.Draft.Excursion = &e
	}
	if o.Draft.Insurance != nil {
		in := *o.Draft.Insurance
		out.Draft.Insurance = &in
	}
	return out
}
